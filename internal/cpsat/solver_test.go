package cpsat_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolga/rota/internal/cpsat"
)

func solve(t *testing.T, m *cpsat.Model) *cpsat.Result {
	t.Helper()
	return cpsat.NewSolver(cpsat.Params{MaxTime: 5 * time.Second, Workers: 2}).Solve(m)
}

func TestSolve_ExactlyOne(t *testing.T) {
	m := cpsat.NewModel()
	x := m.NewBoolVar("x")
	y := m.NewBoolVar("y")
	m.AddEquality(cpsat.Sum(x, y), 1)
	m.Minimize(cpsat.NewLinearExpr().AddTerm(x, 3).AddTerm(y, 1))

	res := solve(t, m)
	require.Equal(t, cpsat.StatusOptimal, res.Status)
	assert.False(t, res.BoolValue(x))
	assert.True(t, res.BoolValue(y))
	assert.Equal(t, int64(1), res.Objective)
}

func TestSolve_Infeasible(t *testing.T) {
	m := cpsat.NewModel()
	x := m.NewBoolVar("x")
	y := m.NewBoolVar("y")
	m.AddEquality(cpsat.Sum(x, y), 1)
	m.AddGreaterOrEqual(cpsat.Sum(x, y), 2)

	res := solve(t, m)
	assert.Equal(t, cpsat.StatusInfeasible, res.Status)
}

func TestSolve_NoObjectiveFirstSolutionIsOptimal(t *testing.T) {
	m := cpsat.NewModel()
	vars := make([]cpsat.Var, 6)
	for i := range vars {
		vars[i] = m.NewBoolVar(fmt.Sprintf("b%d", i))
	}
	m.AddEquality(cpsat.Sum(vars...), 3)

	res := solve(t, m)
	require.Equal(t, cpsat.StatusOptimal, res.Status)
	count := 0
	for _, v := range vars {
		if res.BoolValue(v) {
			count++
		}
	}
	assert.Equal(t, 3, count)
}

func TestSolve_DerivedIntVarTracksSum(t *testing.T) {
	m := cpsat.NewModel()
	x := m.NewBoolVar("x")
	y := m.NewBoolVar("y")
	z := m.NewBoolVar("z")
	load := m.NewIntVar(0, 3, "load")
	m.AddVarEquality(load, cpsat.Sum(x, y, z))
	m.AddEquality(cpsat.Sum(x, y, z), 2)
	m.Minimize(cpsat.NewLinearExpr().AddTerm(x, 5))

	res := solve(t, m)
	require.Equal(t, cpsat.StatusOptimal, res.Status)
	assert.Equal(t, int64(2), res.Value(load))
	assert.False(t, res.BoolValue(x))
}

func TestSolve_AbsEquality(t *testing.T) {
	// One bool decides between deviation |0-2|=2 and |3-2|=1.
	m := cpsat.NewModel()
	x := m.NewBoolVar("x")
	dev := m.NewIntVar(0, 10, "dev")
	expr := cpsat.NewLinearExpr().AddTerm(x, 3).AddConstant(-2)
	m.AddAbsEquality(dev, expr)
	m.Minimize(cpsat.NewLinearExpr().AddTerm(dev, 1))

	res := solve(t, m)
	require.Equal(t, cpsat.StatusOptimal, res.Status)
	assert.True(t, res.BoolValue(x))
	assert.Equal(t, int64(1), res.Value(dev))
	assert.Equal(t, int64(1), res.Objective)
}

func TestSolve_AtMostOnePairs(t *testing.T) {
	// Three slots, pairwise conflicting, two people: no person may take two.
	m := cpsat.NewModel()
	type key struct{ p, s int }
	vars := make(map[key]cpsat.Var)
	for p := 0; p < 2; p++ {
		for s := 0; s < 3; s++ {
			vars[key{p, s}] = m.NewBoolVar(fmt.Sprintf("assign_p%d_s%d", p, s))
		}
	}
	for s := 0; s < 3; s++ {
		m.AddEquality(cpsat.Sum(vars[key{0, s}], vars[key{1, s}]), 1)
	}
	for p := 0; p < 2; p++ {
		for a := 0; a < 3; a++ {
			for b := a + 1; b < 3; b++ {
				m.AddLessOrEqual(cpsat.Sum(vars[key{p, a}], vars[key{p, b}]), 1)
			}
		}
	}

	// Two people cannot cover three pairwise-conflicting slots.
	res := solve(t, m)
	assert.Equal(t, cpsat.StatusInfeasible, res.Status)
}

func TestSolve_ModelInvalid(t *testing.T) {
	m := cpsat.NewModel()
	m.NewIntVar(5, 2, "broken")
	res := solve(t, m)
	assert.Equal(t, cpsat.StatusModelInvalid, res.Status)
}

func TestSolve_ObjectiveProvenOptimalAcrossWorkers(t *testing.T) {
	// Minimize the number of "expensive" slots used while covering 4 slots
	// with 4 people; optimum assigns every slot to the cheap person pool.
	m := cpsat.NewModel()
	people, slots := 4, 4
	type key struct{ p, s int }
	vars := make(map[key]cpsat.Var)
	obj := cpsat.NewLinearExpr()
	for p := 0; p < people; p++ {
		for s := 0; s < slots; s++ {
			v := m.NewBoolVar(fmt.Sprintf("assign_p%d_s%d", p, s))
			vars[key{p, s}] = v
			if p == 0 {
				obj.AddTerm(v, 10)
			}
		}
	}
	for s := 0; s < slots; s++ {
		e := cpsat.NewLinearExpr()
		for p := 0; p < people; p++ {
			e.AddTerm(vars[key{p, s}], 1)
		}
		m.AddEquality(e, 1)
	}
	m.Minimize(obj)

	res := cpsat.NewSolver(cpsat.Params{MaxTime: 5 * time.Second, Workers: 8}).Solve(m)
	require.Equal(t, cpsat.StatusOptimal, res.Status)
	assert.Equal(t, int64(0), res.Objective)
	for s := 0; s < slots; s++ {
		assert.False(t, res.BoolValue(vars[key{0, s}]))
	}
}
