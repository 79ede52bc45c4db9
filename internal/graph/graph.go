// Package graph builds the bipartite derivation graph over a registry
// snapshot: symbol nodes and model nodes, with a directed edge from each
// input symbol into its model and from each model out to the symbols it
// produces. The graph answers shortest-path distance queries and performs
// forward-chaining derivation to a fixed point.
package graph

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/matsolve/propgraph/internal/material"
	"github.com/matsolve/propgraph/internal/model"
	"github.com/matsolve/propgraph/internal/quantity"
	"github.com/matsolve/propgraph/internal/registry"
)

// ErrNodeNotFound indicates a distance query over a name absent from the
// graph.
var ErrNodeNotFound = errors.New("graph: node not found")

// NodeKind discriminates the two node flavors.
type NodeKind int

const (
	SymbolNode NodeKind = iota
	ModelNode
)

func (k NodeKind) String() string {
	if k == ModelNode {
		return "model"
	}
	return "symbol"
}

// Node is one vertex of the derivation graph.
type Node struct {
	Kind NodeKind
	Name string
}

// evaluator is the model surface the graph needs beyond registration
// metadata. *model.EquationModel satisfies it; registry entries that do not
// are skipped during derivation.
type evaluator interface {
	Name() string
	InputVariables() map[string]string
	Evaluate(inputs map[string]*quantity.Quantity, allowFailure bool) (*model.Result, error)
}

// Graph is a cheap, disposable view of a registry. Build a fresh one after
// registry mutations; concurrent read-only queries are safe, concurrent
// mutation of the underlying registry is not.
type Graph struct {
	reg       *registry.Registry
	inputs    map[string][]string // model -> input symbol names
	outputs   map[string][]string // model -> output symbol names
	consumers map[string][]string // symbol -> models consuming it
	paths     *cache.Cache
}

// New snapshots the registry's current models and symbols into a graph.
func New(reg *registry.Registry) *Graph {
	g := &Graph{
		reg:       reg,
		inputs:    make(map[string][]string),
		outputs:   make(map[string][]string),
		consumers: make(map[string][]string),
		paths:     cache.New(10*time.Minute, 30*time.Minute),
	}
	for _, name := range reg.Models.Names() {
		m, _ := reg.Models.Get(name)
		g.inputs[name] = m.InputSymbols()
		g.outputs[name] = m.OutputSymbols()
		for _, symName := range m.InputSymbols() {
			g.consumers[symName] = append(g.consumers[symName], name)
		}
	}
	return g
}

// Nodes lists every vertex, symbols first, each group sorted by name.
func (g *Graph) Nodes() []Node {
	nodes := make([]Node, 0, g.reg.Symbols.Len()+len(g.inputs))
	for _, name := range g.reg.Symbols.Names() {
		nodes = append(nodes, Node{Kind: SymbolNode, Name: name})
	}
	modelNames := make([]string, 0, len(g.inputs))
	for name := range g.inputs {
		modelNames = append(modelNames, name)
	}
	sort.Strings(modelNames)
	for _, name := range modelNames {
		nodes = append(nodes, Node{Kind: ModelNode, Name: name})
	}
	return nodes
}

// Producers returns the models whose outputs include the symbol.
func (g *Graph) Producers(symbolName string) []string {
	var out []string
	for m, syms := range g.outputs {
		for _, s := range syms {
			if s == symbolName {
				out = append(out, m)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// Consumers returns the models whose inputs include the symbol.
func (g *Graph) Consumers(symbolName string) []string {
	out := append([]string(nil), g.consumers[symbolName]...)
	sort.Strings(out)
	return out
}

type pathResult struct {
	dist  int
	found bool
}

// DegreeOfSeparation returns the shortest directed path length in edges
// from symbol a to symbol b, walking symbol -> model -> symbol edges. The
// two directions are independent. found is false when no directed path
// exists; an unknown symbol name is an error.
func (g *Graph) DegreeOfSeparation(a, b string) (int, bool, error) {
	if !g.reg.Symbols.Contains(a) {
		return 0, false, fmt.Errorf("%w: %q", ErrNodeNotFound, a)
	}
	if !g.reg.Symbols.Contains(b) {
		return 0, false, fmt.Errorf("%w: %q", ErrNodeNotFound, b)
	}

	key := a + "\x00" + b
	if cached, ok := g.paths.Get(key); ok {
		res := cached.(pathResult)
		return res.dist, res.found, nil
	}

	res := g.bfs(a, b)
	g.paths.Set(key, res, cache.DefaultExpiration)
	return res.dist, res.found, nil
}

func (g *Graph) bfs(a, b string) pathResult {
	if a == b {
		return pathResult{dist: 0, found: true}
	}
	type queued struct {
		node Node
		dist int
	}
	visited := map[Node]bool{{Kind: SymbolNode, Name: a}: true}
	queue := []queued{{node: Node{Kind: SymbolNode, Name: a}, dist: 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		var next []Node
		if cur.node.Kind == SymbolNode {
			for _, m := range g.consumers[cur.node.Name] {
				next = append(next, Node{Kind: ModelNode, Name: m})
			}
		} else {
			for _, s := range g.outputs[cur.node.Name] {
				next = append(next, Node{Kind: SymbolNode, Name: s})
			}
		}
		for _, n := range next {
			if visited[n] {
				continue
			}
			if n.Kind == SymbolNode && n.Name == b {
				return pathResult{dist: cur.dist + 1, found: true}
			}
			visited[n] = true
			queue = append(queue, queued{node: n, dist: cur.dist + 1})
		}
	}
	return pathResult{}
}

// Evaluate forward-chains from the initial quantities: every model whose
// input symbols all have at least one known quantity is evaluated over each
// new combination of inputs, and successful outputs feed the next pass,
// until a pass derives nothing new. A model's failure removes only that
// combination from consideration; independent branches continue. Returns
// the derived quantities.
//
// Termination: a quantity is never fed back into any model in its
// provenance lineage, so derivation chains are bounded by the number of
// registered models, and each (model, inputs) combination runs once.
func (g *Graph) Evaluate(initial []*quantity.Quantity) []*quantity.Quantity {
	bySymbol := make(map[string][]*quantity.Quantity)
	lineage := make(map[string]map[string]bool) // quantity id -> ancestor models
	for _, q := range initial {
		bySymbol[q.Symbol.Name] = append(bySymbol[q.Symbol.Name], q)
	}

	modelNames := make([]string, 0, len(g.inputs))
	for name := range g.inputs {
		modelNames = append(modelNames, name)
	}
	sort.Strings(modelNames)

	tried := make(map[string]bool)
	var derived []*quantity.Quantity

	for {
		progress := false
		for _, name := range modelNames {
			entry, ok := g.reg.Models.Get(name)
			if !ok {
				continue
			}
			ev, ok := entry.(evaluator)
			if !ok {
				continue
			}
			ready := true
			for _, symName := range g.inputs[name] {
				if len(bySymbol[symName]) == 0 {
					ready = false
					break
				}
			}
			if !ready {
				continue
			}

			for _, combo := range g.combinations(ev, bySymbol, lineage) {
				sig := signature(name, combo)
				if tried[sig] {
					continue
				}
				tried[sig] = true

				res, err := ev.Evaluate(combo, true)
				if err != nil || !res.Successful {
					continue
				}
				ancestors := map[string]bool{name: true}
				for _, in := range combo {
					for m := range lineage[in.ID.String()] {
						ancestors[m] = true
					}
				}
				for _, q := range res.Quantities {
					lineage[q.ID.String()] = ancestors
					bySymbol[q.Symbol.Name] = append(bySymbol[q.Symbol.Name], q)
					derived = append(derived, q)
					progress = true
				}
			}
		}
		if !progress {
			return derived
		}
	}
}

// combinations enumerates every assignment of known quantities to the
// model's input variables, skipping quantities whose lineage already
// includes the model.
func (g *Graph) combinations(ev evaluator, bySymbol map[string][]*quantity.Quantity, lineage map[string]map[string]bool) []map[string]*quantity.Quantity {
	inputVars := ev.InputVariables()
	varNames := make([]string, 0, len(inputVars))
	for v := range inputVars {
		varNames = append(varNames, v)
	}
	sort.Strings(varNames)

	combos := []map[string]*quantity.Quantity{{}}
	for _, v := range varNames {
		candidates := bySymbol[inputVars[v]]
		var next []map[string]*quantity.Quantity
		for _, combo := range combos {
			for _, q := range candidates {
				if lineage[q.ID.String()][ev.Name()] {
					continue
				}
				extended := make(map[string]*quantity.Quantity, len(combo)+1)
				for k, val := range combo {
					extended[k] = val
				}
				extended[v] = q
				next = append(next, extended)
			}
		}
		combos = next
	}
	return combos
}

func signature(modelName string, combo map[string]*quantity.Quantity) string {
	parts := make([]string, 0, len(combo)+1)
	parts = append(parts, modelName)
	vars := make([]string, 0, len(combo))
	for v := range combo {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	for _, v := range vars {
		parts = append(parts, v+"="+combo[v].ID.String())
	}
	return strings.Join(parts, "|")
}

// AddMaterial derives everything reachable from the material's quantities
// and attaches the results to the material.
func (g *Graph) AddMaterial(mat *material.Material) {
	for _, q := range g.Evaluate(mat.Quantities()) {
		mat.Add(q)
	}
}
