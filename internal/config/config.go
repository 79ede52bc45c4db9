package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDataDir    = "propgraph-data"
	DefaultSweepSteps = 50
)

type Config struct {
	DataDir     string      `yaml:"data_dir"`
	SymbolFiles []string    `yaml:"symbol_files"`
	ModelFiles  []string    `yaml:"model_files"`
	Sweep       SweepConfig `yaml:"sweep"`
}

type SweepConfig struct {
	Steps int `yaml:"steps"`
}

func DefaultConfig() *Config {
	return &Config{
		DataDir: DefaultDataDir,
		Sweep: SweepConfig{
			Steps: DefaultSweepSteps,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}
	if cfg.Sweep.Steps <= 0 {
		cfg.Sweep.Steps = DefaultSweepSteps
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
