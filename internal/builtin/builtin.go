// Package builtin ships the default symbol and model library, embedded in
// the binary, plus loaders for user-supplied library files in the same
// format.
package builtin

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matsolve/propgraph/internal/model"
	"github.com/matsolve/propgraph/internal/registry"
	"github.com/matsolve/propgraph/internal/symbol"
)

//go:embed symbols.yaml
var symbolsYAML []byte

//go:embed models.yaml
var modelsYAML []byte

// Load registers the embedded library into the registry. Entries are marked
// builtin so registry.Namespace.PurgeUser leaves them in place. Symbols load
// before models since model variables resolve against registered symbols.
func Load(reg *registry.Registry) error {
	if err := loadSymbols(reg, symbolsYAML, true); err != nil {
		return fmt.Errorf("builtin: %w", err)
	}
	if err := loadModels(reg, modelsYAML, true); err != nil {
		return fmt.Errorf("builtin: %w", err)
	}
	return nil
}

// LoadSymbolFile registers user symbols from a YAML file holding a list of
// symbol dicts.
func LoadSymbolFile(reg *registry.Registry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := loadSymbols(reg, data, false); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// LoadModelFile registers user models from a YAML file holding a list of
// model dicts. Symbols referenced by the models must already be registered.
func LoadModelFile(reg *registry.Registry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := loadModels(reg, data, false); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func loadSymbols(reg *registry.Registry, data []byte, builtin bool) error {
	var dicts []symbol.Dict
	if err := yaml.Unmarshal(data, &dicts); err != nil {
		return err
	}
	for _, d := range dicts {
		s, err := symbol.FromDict(d)
		if err != nil {
			return fmt.Errorf("symbol %q: %w", d.Name, err)
		}
		s.Builtin = builtin
		reg.RegisterSymbol(s)
	}
	return nil
}

func loadModels(reg *registry.Registry, data []byte, builtin bool) error {
	var dicts []model.Dict
	if err := yaml.Unmarshal(data, &dicts); err != nil {
		return err
	}
	for _, d := range dicts {
		opts := model.Options{Register: true, OverwriteRegistry: true, Builtin: builtin}
		if _, err := model.FromDict(reg, d, opts); err != nil {
			return fmt.Errorf("model %q: %w", d.Name, err)
		}
	}
	return nil
}
