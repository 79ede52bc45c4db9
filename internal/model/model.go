// Package model implements equation models: named, registrable units of
// computation that relate symbols through algebraic equations. A model
// evaluates by coercing input quantities to canonical units, solving its
// equation set to a fixed point, and validating the numeric results.
package model

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/matsolve/propgraph/internal/equation"
	"github.com/matsolve/propgraph/internal/quantity"
	"github.com/matsolve/propgraph/internal/registry"
	"github.com/matsolve/propgraph/internal/symbol"
)

// Domain errors for model configuration and evaluation.
var (
	ErrNoEquations      = errors.New("model: at least one equation required")
	ErrUnmappedVariable = errors.New("model: equation variable missing from symbol map")
	ErrUnknownVariable  = errors.New("model: input variable not defined by model")
	ErrEvaluationFailed = errors.New("model: evaluation failed")
)

// Messages surfaced when evaluation produces invalid numbers.
const (
	MsgInvalidNaN     = "Evaluation returned invalid values (NaN)"
	MsgInvalidComplex = "Evaluation returned invalid values (complex)"
	MsgNothingSolved  = "Unable to solve for any new outputs"
)

// Options controls construction-time registration.
type Options struct {
	Register          bool
	OverwriteRegistry bool
	Description       string
	Builtin           bool
}

// EquationModel owns a parsed equation set and the mapping from equation
// variables to symbols. By convention, variables on an equation's left-hand
// side are the model's outputs.
type EquationModel struct {
	name        string
	description string
	sources     []string
	equations   []*equation.Equation
	symbolMap   map[string]*symbol.Symbol
	reg         *registry.Registry
	registered  bool
	builtin     bool
}

// New parses the equations, validates the variable map, and registers the
// model (overwriting any existing entry), mirroring the default lifecycle.
func New(reg *registry.Registry, name string, equations []string, symbolMap map[string]*symbol.Symbol) (*EquationModel, error) {
	return NewWithOptions(reg, name, equations, symbolMap, Options{Register: true, OverwriteRegistry: true})
}

// NewWithOptions is New with explicit registration behavior. With
// Register=false the model is constructed detached and inert until
// Register is called.
func NewWithOptions(reg *registry.Registry, name string, equations []string, symbolMap map[string]*symbol.Symbol, opts Options) (*EquationModel, error) {
	if name == "" {
		return nil, errors.New("model: name must not be empty")
	}
	if len(equations) == 0 {
		return nil, ErrNoEquations
	}

	parsed := make([]*equation.Equation, 0, len(equations))
	for _, src := range equations {
		eq, err := equation.Parse(src)
		if err != nil {
			return nil, err
		}
		for _, v := range eq.Vars() {
			if symbolMap[v] == nil {
				return nil, fmt.Errorf("%w: %q in %q", ErrUnmappedVariable, v, src)
			}
		}
		parsed = append(parsed, eq)
	}

	m := &EquationModel{
		name:        name,
		description: opts.Description,
		sources:     append([]string(nil), equations...),
		equations:   parsed,
		symbolMap:   symbolMap,
		reg:         reg,
		builtin:     opts.Builtin,
	}
	if opts.Register {
		if err := m.Register(opts.OverwriteRegistry); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Name returns the registry key of the model.
func (m *EquationModel) Name() string { return m.name }

// Description returns the human-readable summary, if any.
func (m *EquationModel) Description() string { return m.description }

// Equations returns the source strings of the equation set.
func (m *EquationModel) Equations() []string {
	return append([]string(nil), m.sources...)
}

// Registered reports current registry membership.
func (m *EquationModel) Registered() bool { return m.registered }

// IsBuiltin reports whether the model ships with the library.
func (m *EquationModel) IsBuiltin() bool { return m.builtin }

func (m *EquationModel) outputVarSet() map[string]bool {
	outs := make(map[string]bool)
	for _, eq := range m.equations {
		for _, v := range eq.OutputVars() {
			outs[v] = true
		}
	}
	return outs
}

// InputVariables maps each input variable name to its symbol name.
func (m *EquationModel) InputVariables() map[string]string {
	outs := m.outputVarSet()
	in := make(map[string]string)
	for _, eq := range m.equations {
		for _, v := range eq.Vars() {
			if !outs[v] {
				in[v] = m.symbolMap[v].Name
			}
		}
	}
	return in
}

// InputSymbols returns the sorted, deduplicated symbol names the model
// consumes.
func (m *EquationModel) InputSymbols() []string {
	set := make(map[string]bool)
	for _, symName := range m.InputVariables() {
		set[symName] = true
	}
	return sortedKeys(set)
}

// OutputSymbols returns the sorted, deduplicated symbol names the model
// produces.
func (m *EquationModel) OutputSymbols() []string {
	set := make(map[string]bool)
	for v := range m.outputVarSet() {
		set[m.symbolMap[v].Name] = true
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Register inserts the model into the registry's models namespace. With
// overwrite=false an existing entry under the same name is an error; with
// overwrite=true the previous instance is detached but remains usable.
func (m *EquationModel) Register(overwrite bool) error {
	if !overwrite {
		if err := m.reg.Models.SetStrict(m.name, m); err != nil {
			return err
		}
	} else {
		if old, ok := m.reg.Models.Get(m.name); ok {
			if prev, ok := old.(*EquationModel); ok && prev != m {
				prev.registered = false
			}
		}
		m.reg.Models.Set(m.name, m)
	}
	m.registered = true
	if m.builtin {
		m.reg.Models.MarkBuiltin(m.name)
	}
	return nil
}

// Unregister removes the model from the registry if it is the current
// entry; safe to call on an already-detached model.
func (m *EquationModel) Unregister() {
	if !m.registered {
		return
	}
	if cur, ok := m.reg.Models.Get(m.name); ok {
		if em, ok := cur.(*EquationModel); ok && em == m {
			m.reg.Models.Pop(m.name)
		}
	}
	m.registered = false
}

// Result is the outcome of one evaluation. On success Quantities holds a
// canonical-unit quantity per newly solved variable; on failure Message
// names the reason.
type Result struct {
	Quantities map[string]*quantity.Quantity
	Successful bool
	Message    string
}

// Evaluate solves the equation set given input quantities keyed by variable
// name. Inputs are converted to their symbols' canonical units first and
// never mutated. Newly solved values are validated: NaN anywhere fails, and
// a non-zero imaginary part fails unless some input was itself complex or
// the output symbol's domain permits complex values. With allowFailure the
// failure is returned as a Result; otherwise it becomes an error.
func (m *EquationModel) Evaluate(inputs map[string]*quantity.Quantity, allowFailure bool) (*Result, error) {
	env := make(map[string]complex128, len(inputs))
	inputIDs := make([]uuid.UUID, 0, len(inputs))
	complexInput := false

	varNames := make([]string, 0, len(inputs))
	for v := range inputs {
		varNames = append(varNames, v)
	}
	sort.Strings(varNames)

	for _, v := range varNames {
		q := inputs[v]
		sym, ok := m.symbolMap[v]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, v)
		}
		canonical, err := q.To(sym.Units)
		if err != nil {
			return m.fail(allowFailure, err.Error())
		}
		env[v] = canonical.Magnitude
		if canonical.IsComplex() {
			complexInput = true
		}
		inputIDs = append(inputIDs, q.ID)
	}

	solved := equation.SolveSet(m.equations, env)
	if len(solved) == 0 {
		return m.fail(allowFailure, MsgNothingSolved)
	}

	for _, name := range solved {
		val := env[name]
		if math.IsNaN(real(val)) || math.IsNaN(imag(val)) {
			return m.fail(allowFailure, MsgInvalidNaN)
		}
	}
	for _, name := range solved {
		if !isComplexValue(env[name]) {
			continue
		}
		if !complexInput && !m.symbolMap[name].Complex {
			return m.fail(allowFailure, MsgInvalidComplex)
		}
	}

	out := make(map[string]*quantity.Quantity, len(solved))
	for _, name := range solved {
		q, err := quantity.Create(m.symbolMap[name], env[name])
		if err != nil {
			return nil, err
		}
		q.Provenance = &quantity.Provenance{Model: m.name, Inputs: inputIDs}
		out[name] = q
	}
	return &Result{Quantities: out, Successful: true}, nil
}

func (m *EquationModel) fail(allow bool, msg string) (*Result, error) {
	if allow {
		return &Result{Successful: false, Message: msg}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrEvaluationFailed, msg)
}

func isComplexValue(v complex128) bool {
	im := imag(v)
	if im == 0 {
		return false
	}
	return math.Abs(im) > 1e-12*math.Max(1, math.Abs(real(v)))
}
