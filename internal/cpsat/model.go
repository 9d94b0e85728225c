package cpsat

import (
	"fmt"
	"math"
)

// Status reports the outcome of a solve.
type Status int

const (
	// StatusUnknown means the budget expired before any solution was found.
	StatusUnknown Status = iota
	// StatusOptimal means a solution was found and proven optimal.
	StatusOptimal
	// StatusFeasible means a solution was found but the budget expired
	// before optimality was proven.
	StatusFeasible
	// StatusInfeasible means the search space was exhausted without a
	// solution.
	StatusInfeasible
	// StatusModelInvalid means the model is malformed (empty variable
	// domain or constraint over unknown variables).
	StatusModelInvalid
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusModelInvalid:
		return "MODEL_INVALID"
	default:
		return "UNKNOWN"
	}
}

// Var is a handle to a model variable.
type Var int

const (
	noBound    = int64(math.MaxInt64 / 4)
	negNoBound = -noBound
)

type term struct {
	v    Var
	coef int64
}

// LinearExpr is a linear combination of variables plus a constant offset.
type LinearExpr struct {
	terms  []term
	offset int64
}

// NewLinearExpr returns an empty linear expression.
func NewLinearExpr() *LinearExpr {
	return &LinearExpr{}
}

// Sum returns an expression adding the given variables with coefficient 1.
func Sum(vars ...Var) *LinearExpr {
	e := NewLinearExpr()
	for _, v := range vars {
		e.AddTerm(v, 1)
	}
	return e
}

// AddTerm appends coef*v to the expression and returns it for chaining.
func (e *LinearExpr) AddTerm(v Var, coef int64) *LinearExpr {
	if coef != 0 {
		e.terms = append(e.terms, term{v: v, coef: coef})
	}
	return e
}

// AddExpr appends every term of other, scaled by coef.
func (e *LinearExpr) AddExpr(other *LinearExpr, coef int64) *LinearExpr {
	if other == nil || coef == 0 {
		return e
	}
	for _, t := range other.terms {
		e.terms = append(e.terms, term{v: t.v, coef: t.coef * coef})
	}
	e.offset += other.offset * coef
	return e
}

// AddConstant adds a constant to the expression.
func (e *LinearExpr) AddConstant(c int64) *LinearExpr {
	e.offset += c
	return e
}

type varInfo struct {
	name   string
	lo, hi int64
	isBool bool
}

// lo <= expr <= hi, with noBound sentinels for one-sided constraints.
type linConstraint struct {
	expr   *LinearExpr
	lo, hi int64
}

// target == |operand|.
type absLink struct {
	target  Var
	operand Var
}

// Model accumulates variables, constraints, and the objective.
type Model struct {
	vars      []varInfo
	cons      []linConstraint
	abs       []absLink
	objective *LinearExpr
	invalid   error
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{}
}

// NewBoolVar creates a 0/1 decision variable.
func (m *Model) NewBoolVar(name string) Var {
	m.vars = append(m.vars, varInfo{name: name, lo: 0, hi: 1, isBool: true})
	return Var(len(m.vars) - 1)
}

// NewIntVar creates a bounded integer variable. Integer variables must be
// functionally determined by equality constraints for the search to fix them.
func (m *Model) NewIntVar(lo, hi int64, name string) Var {
	if lo > hi {
		m.invalid = fmt.Errorf("variable %q has empty domain [%d,%d]", name, lo, hi)
	}
	m.vars = append(m.vars, varInfo{name: name, lo: lo, hi: hi})
	return Var(len(m.vars) - 1)
}

// AddEquality constrains expr == value.
func (m *Model) AddEquality(expr *LinearExpr, value int64) {
	m.addConstraint(expr, value, value)
}

// AddLessOrEqual constrains expr <= value.
func (m *Model) AddLessOrEqual(expr *LinearExpr, value int64) {
	m.addConstraint(expr, negNoBound, value)
}

// AddGreaterOrEqual constrains expr >= value.
func (m *Model) AddGreaterOrEqual(expr *LinearExpr, value int64) {
	m.addConstraint(expr, value, noBound)
}

// AddVarEquality constrains v == expr.
func (m *Model) AddVarEquality(v Var, expr *LinearExpr) {
	combined := NewLinearExpr().AddTerm(v, 1).AddExpr(expr, -1)
	m.AddEquality(combined, 0)
}

// AddAbsEquality constrains target == |expr|. A hidden variable carries the
// expression value so the absolute link propagates over simple bounds.
func (m *Model) AddAbsEquality(target Var, expr *LinearExpr) {
	lo, hi := m.exprBounds(expr)
	operand := m.NewIntVar(lo, hi, fmt.Sprintf("abs_op_%d", len(m.abs)))
	m.AddVarEquality(operand, expr)
	m.abs = append(m.abs, absLink{target: target, operand: operand})
}

// Minimize sets the objective expression.
func (m *Model) Minimize(expr *LinearExpr) {
	m.objective = expr
}

func (m *Model) addConstraint(expr *LinearExpr, lo, hi int64) {
	for _, t := range expr.terms {
		if int(t.v) < 0 || int(t.v) >= len(m.vars) {
			m.invalid = fmt.Errorf("constraint references unknown variable %d", t.v)
			return
		}
	}
	m.cons = append(m.cons, linConstraint{expr: expr, lo: lo, hi: hi})
}

func (m *Model) exprBounds(expr *LinearExpr) (int64, int64) {
	lo, hi := expr.offset, expr.offset
	for _, t := range expr.terms {
		info := m.vars[t.v]
		if t.coef > 0 {
			lo += t.coef * info.lo
			hi += t.coef * info.hi
		} else {
			lo += t.coef * info.hi
			hi += t.coef * info.lo
		}
	}
	return lo, hi
}
