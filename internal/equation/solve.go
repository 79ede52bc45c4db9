package equation

import (
	"fmt"
	"math/cmplx"
)

var inverses = map[string]func(complex128) complex128{
	"sqrt": func(v complex128) complex128 { return v * v },
	"exp":  cmplx.Log,
	"log":  cmplx.Exp,
	"sin":  cmplx.Asin,
	"cos":  cmplx.Acos,
	"tan":  cmplx.Atan,
}

// SolveFor isolates the named variable given values for every other
// variable in the equation. The variable must occur exactly once; the
// isolation walks from the root of the side containing it, applying the
// inverse of each operation to the accumulated value of the other side.
func (e *Equation) SolveFor(name string, env map[string]complex128) (complex128, error) {
	inLHS := countVar(e.LHS, name)
	inRHS := countVar(e.RHS, name)
	if inLHS+inRHS == 0 {
		return 0, fmt.Errorf("%w: %s not in %q", ErrUnknownVar, name, e.src)
	}
	if inLHS+inRHS > 1 {
		return 0, fmt.Errorf("%w: %s occurs more than once in %q", ErrCannotIsolate, name, e.src)
	}

	side, other := e.LHS, e.RHS
	if inRHS == 1 {
		side, other = e.RHS, e.LHS
	}
	value, err := other.Eval(env)
	if err != nil {
		return 0, err
	}

	for {
		switch n := side.(type) {
		case *Var:
			if n.Name != name {
				return 0, fmt.Errorf("%w: %s in %q", ErrCannotIsolate, name, e.src)
			}
			return value, nil
		case *Neg:
			value = -value
			side = n.X
		case *Binary:
			value, side, err = invertBinary(n, name, value, env)
			if err != nil {
				return 0, err
			}
		case *Call:
			inv, ok := inverses[n.Fn]
			if !ok {
				return 0, fmt.Errorf("%w: no inverse for %s in %q", ErrCannotIsolate, n.Fn, e.src)
			}
			value = inv(value)
			side = n.Arg
		default:
			return 0, fmt.Errorf("%w: %s in %q", ErrCannotIsolate, name, e.src)
		}
	}
}

func invertBinary(n *Binary, name string, value complex128, env map[string]complex128) (complex128, Node, error) {
	varInLeft := countVar(n.L, name) > 0
	known := n.R
	if !varInLeft {
		known = n.L
	}
	kv, err := known.Eval(env)
	if err != nil {
		return 0, nil, err
	}

	switch n.Op {
	case '+':
		value -= kv
	case '-':
		if varInLeft {
			value += kv
		} else {
			value = kv - value
		}
	case '*':
		value /= kv
	case '/':
		if varInLeft {
			value *= kv
		} else {
			value = kv / value
		}
	case '^':
		if varInLeft {
			// x^k = v  =>  x = v^(1/k)
			value = cmplx.Pow(value, 1/kv)
		} else {
			// k^x = v  =>  x = log(v)/log(k)
			value = cmplx.Log(value) / cmplx.Log(kv)
		}
	default:
		return 0, nil, fmt.Errorf("%w: operator %q", ErrCannotIsolate, string(n.Op))
	}

	if varInLeft {
		return value, n.L, nil
	}
	return value, n.R, nil
}

// SolveSet resolves as many unknowns as possible across a set of equations
// by fixed-point iteration: any equation with exactly one unknown is solved
// and its result feeds the next pass. env is extended in place; the names
// solved are returned in resolution order.
func SolveSet(eqs []*Equation, env map[string]complex128) []string {
	var solved []string
	for {
		progress := false
		for _, eq := range eqs {
			unknowns := eq.Unknowns(env)
			if len(unknowns) != 1 {
				continue
			}
			val, err := eq.SolveFor(unknowns[0], env)
			if err != nil {
				continue
			}
			env[unknowns[0]] = val
			solved = append(solved, unknowns[0])
			progress = true
		}
		if !progress {
			return solved
		}
	}
}
