// Package cpsat provides a small constraint-programming facade for boolean
// assignment models: boolean and bounded integer variables, linear
// constraints, absolute-value links, and linear minimisation under a
// wall-clock budget with parallel workers.
//
// The builder API follows the CP-SAT model-builder idiom. The implementation
// behind it is a native branch-and-bound search over the boolean variables
// with bounds-consistency propagation on the linear constraints; integer
// variables are expected to be functionally determined by equality
// constraints over the booleans, which is the shape every scheduling model
// in this repository produces.
//
// # Usage
//
//	m := cpsat.NewModel()
//	x := m.NewBoolVar("x")
//	y := m.NewBoolVar("y")
//	m.AddEquality(cpsat.Sum(x, y), 1)
//	m.Minimize(cpsat.NewLinearExpr().AddTerm(x, 3).AddTerm(y, 1))
//
//	res := cpsat.NewSolver(cpsat.Params{MaxTime: 10 * time.Second, Workers: 8}).Solve(m)
//	if res.Status == cpsat.StatusOptimal || res.Status == cpsat.StatusFeasible {
//	    _ = res.BoolValue(y)
//	}
package cpsat
