// Package equation parses algebraic equations into expression trees and
// solves them numerically over complex values. An equation relates named
// variables; given values for all but one variable the remaining unknown is
// isolated by applying inverse operations from the root of the tree down.
package equation

import (
	"errors"
	"fmt"
	"math/cmplx"
	"sort"
	"strings"
)

// Domain errors for parsing and solving.
var (
	ErrParse         = errors.New("equation: parse error")
	ErrUnknownVar    = errors.New("equation: unknown variable")
	ErrCannotIsolate = errors.New("equation: cannot isolate variable")
	ErrUnknownFunc   = errors.New("equation: unknown function")
)

// Node is one node of an expression tree.
type Node interface {
	Eval(env map[string]complex128) (complex128, error)
	collectVars(set map[string]int)
	String() string
}

// Num is a numeric literal, possibly imaginary (written with a j suffix).
type Num struct {
	Val complex128
}

func (n *Num) Eval(map[string]complex128) (complex128, error) { return n.Val, nil }
func (n *Num) collectVars(map[string]int)                     {}
func (n *Num) String() string {
	if imag(n.Val) == 0 {
		return fmt.Sprintf("%g", real(n.Val))
	}
	if real(n.Val) == 0 {
		return fmt.Sprintf("%gj", imag(n.Val))
	}
	return fmt.Sprintf("(%g+%gj)", real(n.Val), imag(n.Val))
}

// Var is a named variable reference.
type Var struct {
	Name string
}

func (v *Var) Eval(env map[string]complex128) (complex128, error) {
	val, ok := env[v.Name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownVar, v.Name)
	}
	return val, nil
}

func (v *Var) collectVars(set map[string]int) { set[v.Name]++ }
func (v *Var) String() string                 { return v.Name }

// Neg is unary negation.
type Neg struct {
	X Node
}

func (n *Neg) Eval(env map[string]complex128) (complex128, error) {
	v, err := n.X.Eval(env)
	if err != nil {
		return 0, err
	}
	return -v, nil
}

func (n *Neg) collectVars(set map[string]int) { n.X.collectVars(set) }
func (n *Neg) String() string                 { return "-" + n.X.String() }

// Binary is one of + - * / ^.
type Binary struct {
	Op   byte
	L, R Node
}

func (b *Binary) Eval(env map[string]complex128) (complex128, error) {
	l, err := b.L.Eval(env)
	if err != nil {
		return 0, err
	}
	r, err := b.R.Eval(env)
	if err != nil {
		return 0, err
	}
	switch b.Op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	case '/':
		return l / r, nil
	case '^':
		return cmplx.Pow(l, r), nil
	}
	return 0, fmt.Errorf("%w: operator %q", ErrParse, string(b.Op))
}

func (b *Binary) collectVars(set map[string]int) {
	b.L.collectVars(set)
	b.R.collectVars(set)
}

func (b *Binary) String() string {
	return fmt.Sprintf("(%s %c %s)", b.L, b.Op, b.R)
}

// Call is a named single-argument function application.
type Call struct {
	Fn  string
	Arg Node
}

var funcs = map[string]func(complex128) complex128{
	"sqrt": cmplx.Sqrt,
	"exp":  cmplx.Exp,
	"log":  cmplx.Log,
	"sin":  cmplx.Sin,
	"cos":  cmplx.Cos,
	"tan":  cmplx.Tan,
	"abs":  func(v complex128) complex128 { return complex(cmplx.Abs(v), 0) },
}

func (c *Call) Eval(env map[string]complex128) (complex128, error) {
	fn, ok := funcs[c.Fn]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownFunc, c.Fn)
	}
	v, err := c.Arg.Eval(env)
	if err != nil {
		return 0, err
	}
	return fn(v), nil
}

func (c *Call) collectVars(set map[string]int) { c.Arg.collectVars(set) }
func (c *Call) String() string                 { return c.Fn + "(" + c.Arg.String() + ")" }

// Equation is a parsed "lhs = rhs" relation.
type Equation struct {
	LHS, RHS Node
	src      string
}

// Parse splits an equation string at its equals sign and parses both sides.
func Parse(src string) (*Equation, error) {
	parts := strings.SplitN(src, "=", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: missing '=' in %q", ErrParse, src)
	}
	lhs, err := parseExpr(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w in %q: %v", ErrParse, src, err)
	}
	rhs, err := parseExpr(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w in %q: %v", ErrParse, src, err)
	}
	return &Equation{LHS: lhs, RHS: rhs, src: src}, nil
}

// Vars returns the sorted variable names appearing in the equation.
func (e *Equation) Vars() []string {
	set := make(map[string]int)
	e.LHS.collectVars(set)
	e.RHS.collectVars(set)
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OutputVars returns the sorted variable names on the left-hand side. By
// convention these are what the equation produces.
func (e *Equation) OutputVars() []string {
	set := make(map[string]int)
	e.LHS.collectVars(set)
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unknowns returns the sorted variables not present in env.
func (e *Equation) Unknowns(env map[string]complex128) []string {
	var unknowns []string
	for _, name := range e.Vars() {
		if _, ok := env[name]; !ok {
			unknowns = append(unknowns, name)
		}
	}
	return unknowns
}

func (e *Equation) String() string { return e.src }

func countVar(n Node, name string) int {
	set := make(map[string]int)
	n.collectVars(set)
	return set[name]
}
