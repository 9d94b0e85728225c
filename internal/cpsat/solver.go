package cpsat

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// Params bound a solve.
type Params struct {
	// MaxTime is the wall-clock budget. Zero means 10 seconds.
	MaxTime time.Duration
	// Workers is the number of parallel search workers. Zero means 1.
	Workers int
}

// Solver runs branch-and-bound searches over models.
type Solver struct {
	params Params
}

// NewSolver creates a solver with the given parameters.
func NewSolver(params Params) *Solver {
	if params.MaxTime <= 0 {
		params.MaxTime = 10 * time.Second
	}
	if params.Workers <= 0 {
		params.Workers = 1
	}
	return &Solver{params: params}
}

// Result carries the solve outcome and, when a solution exists, the variable
// values of the best one found.
type Result struct {
	Status    Status
	Objective int64
	values    []int64
}

// BoolValue returns the solution value of a boolean variable.
func (r *Result) BoolValue(v Var) bool {
	return r.values != nil && r.values[v] != 0
}

// Value returns the solution value of a variable.
func (r *Result) Value(v Var) int64 {
	if r.values == nil {
		return 0
	}
	return r.values[v]
}

type sharedState struct {
	mu       sync.Mutex
	bestObj  atomic.Int64
	hasBest  atomic.Bool
	bestVals []int64
	// stopAll short-circuits the race once any solution satisfies a model
	// with no objective.
	stopAll atomic.Bool
}

func (s *sharedState) offer(obj int64, vals []int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasBest.Load() && obj >= s.bestObj.Load() {
		return false
	}
	s.bestVals = append(s.bestVals[:0], vals...)
	s.bestObj.Store(obj)
	s.hasBest.Store(true)
	return true
}

// Solve explores the model within the configured budget.
func (s *Solver) Solve(m *Model) *Result {
	if m.invalid != nil {
		return &Result{Status: StatusModelInvalid}
	}

	order := make([]int, 0, len(m.vars))
	for i, info := range m.vars {
		if info.isBool {
			order = append(order, i)
		}
	}

	shared := &sharedState{}
	shared.bestObj.Store(math.MaxInt64)
	deadline := time.Now().Add(s.params.MaxTime)

	workers := s.params.Workers
	if workers > len(order) && len(order) > 0 {
		workers = len(order)
	}
	if workers < 1 {
		workers = 1
	}

	completed := make([]bool, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(seat int) {
			defer wg.Done()
			w := newWorker(m, seat, order, shared, deadline)
			completed[seat] = w.run()
		}(i)
	}
	wg.Wait()

	proven := false
	for _, done := range completed {
		if done {
			proven = true
			break
		}
	}

	res := &Result{}
	switch {
	case shared.hasBest.Load() && (proven || shared.stopAll.Load()):
		res.Status = StatusOptimal
	case shared.hasBest.Load():
		res.Status = StatusFeasible
	case proven:
		res.Status = StatusInfeasible
	default:
		res.Status = StatusUnknown
	}
	if shared.hasBest.Load() {
		res.Objective = shared.bestObj.Load()
		res.values = append([]int64(nil), shared.bestVals...)
	}
	return res
}

type trailEntry struct {
	v      int
	lo, hi int64
}

type worker struct {
	m        *Model
	shared   *sharedState
	deadline time.Time

	order    []int
	valFirst int64

	lo, hi []int64
	trail  []trailEntry

	// watchers map a variable to the constraints that mention it; abs links
	// are addressed as len(m.cons)+k.
	watchers [][]int
	queue    []int
	inQueue  []bool

	nodes uint64
}

func newWorker(m *Model, seat int, baseOrder []int, shared *sharedState, deadline time.Time) *worker {
	w := &worker{
		m:        m,
		shared:   shared,
		deadline: deadline,
		valFirst: 1,
	}
	if seat%2 == 1 {
		w.valFirst = 0
	}

	// Rotate the branching order per seat so workers explore different
	// regions of the tree first.
	n := len(baseOrder)
	w.order = make([]int, n)
	if n > 0 {
		shift := (seat * 7919) % n
		for i := 0; i < n; i++ {
			w.order[i] = baseOrder[(i+shift)%n]
		}
	}

	w.lo = make([]int64, len(m.vars))
	w.hi = make([]int64, len(m.vars))
	for i, info := range m.vars {
		w.lo[i] = info.lo
		w.hi[i] = info.hi
	}

	total := len(m.cons) + len(m.abs)
	w.watchers = make([][]int, len(m.vars))
	for ci, c := range m.cons {
		for _, t := range c.expr.terms {
			w.watchers[t.v] = append(w.watchers[t.v], ci)
		}
	}
	for ai, link := range m.abs {
		id := len(m.cons) + ai
		w.watchers[link.target] = append(w.watchers[link.target], id)
		w.watchers[link.operand] = append(w.watchers[link.operand], id)
	}
	w.inQueue = make([]bool, total)
	return w
}

// run returns true when the worker exhausted its search soundly.
func (w *worker) run() bool {
	for ci := range w.m.cons {
		w.enqueue(ci)
	}
	for ai := range w.m.abs {
		w.enqueue(len(w.m.cons) + ai)
	}
	if !w.propagate() {
		return true // proven infeasible at the root
	}
	return w.dfs(0)
}

// dfs explores decisions from position idx in the branching order. It
// returns false when the wall clock expired mid-subtree.
func (w *worker) dfs(idx int) bool {
	w.nodes++
	if w.nodes&255 == 0 {
		if w.shared.stopAll.Load() || time.Now().After(w.deadline) {
			return false
		}
	}
	if w.pruned() {
		return true
	}

	for idx < len(w.order) && w.lo[w.order[idx]] == w.hi[w.order[idx]] {
		idx++
	}
	if idx == len(w.order) {
		w.atLeaf()
		return true
	}
	v := w.order[idx]

	for _, val := range [2]int64{w.valFirst, 1 - w.valFirst} {
		mark := len(w.trail)
		if w.assign(v, val) && w.propagate() {
			if !w.dfs(idx + 1) {
				w.undo(mark)
				return false
			}
		}
		w.undo(mark)
		if w.pruned() {
			return true
		}
	}
	return true
}

// pruned reports whether the current objective lower bound cannot beat the
// incumbent.
func (w *worker) pruned() bool {
	if w.m.objective == nil || !w.shared.hasBest.Load() {
		return false
	}
	return w.objectiveLowerBound() >= w.shared.bestObj.Load()
}

func (w *worker) objectiveLowerBound() int64 {
	obj := w.m.objective
	bound := obj.offset
	for _, t := range obj.terms {
		if t.coef > 0 {
			bound += t.coef * w.lo[t.v]
		} else {
			bound += t.coef * w.hi[t.v]
		}
	}
	return bound
}

// atLeaf fixes any remaining slack variables, verifies the full assignment,
// and offers it as an incumbent.
func (w *worker) atLeaf() {
	mark := len(w.trail)
	defer w.undo(mark)

	objCoef := make(map[int]int64)
	if w.m.objective != nil {
		for _, t := range w.m.objective.terms {
			objCoef[int(t.v)] += t.coef
		}
	}
	for v := range w.m.vars {
		if w.lo[v] == w.hi[v] {
			continue
		}
		val := w.lo[v]
		if objCoef[v] < 0 {
			val = w.hi[v]
		}
		if !w.assign(v, val) || !w.propagate() {
			return
		}
	}

	vals := make([]int64, len(w.m.vars))
	for v := range w.m.vars {
		vals[v] = w.lo[v]
	}
	if !w.verify(vals) {
		return
	}

	obj := int64(0)
	if w.m.objective != nil {
		obj = w.m.objective.offset
		for _, t := range w.m.objective.terms {
			obj += t.coef * vals[t.v]
		}
	}
	w.shared.offer(obj, vals)
	if w.m.objective == nil {
		w.shared.stopAll.Store(true)
	}
}

func (w *worker) verify(vals []int64) bool {
	for _, c := range w.m.cons {
		total := c.expr.offset
		for _, t := range c.expr.terms {
			total += t.coef * vals[t.v]
		}
		if total < c.lo || total > c.hi {
			return false
		}
	}
	for _, link := range w.m.abs {
		operand := vals[link.operand]
		if operand < 0 {
			operand = -operand
		}
		if vals[link.target] != operand {
			return false
		}
	}
	return true
}

func (w *worker) assign(v int, val int64) bool {
	return w.setBounds(v, val, val)
}

func (w *worker) setBounds(v int, lo, hi int64) bool {
	if lo < w.lo[v] {
		lo = w.lo[v]
	}
	if hi > w.hi[v] {
		hi = w.hi[v]
	}
	if lo > hi {
		return false
	}
	if lo == w.lo[v] && hi == w.hi[v] {
		return true
	}
	w.trail = append(w.trail, trailEntry{v: v, lo: w.lo[v], hi: w.hi[v]})
	w.lo[v] = lo
	w.hi[v] = hi
	for _, id := range w.watchers[v] {
		w.enqueue(id)
	}
	return true
}

func (w *worker) enqueue(id int) {
	if !w.inQueue[id] {
		w.inQueue[id] = true
		w.queue = append(w.queue, id)
	}
}

func (w *worker) undo(mark int) {
	for len(w.trail) > mark {
		e := w.trail[len(w.trail)-1]
		w.trail = w.trail[:len(w.trail)-1]
		w.lo[e.v] = e.lo
		w.hi[e.v] = e.hi
	}
	for _, id := range w.queue {
		w.inQueue[id] = false
	}
	w.queue = w.queue[:0]
}

// propagate runs the constraint queue to a fixpoint with bounds tightening.
func (w *worker) propagate() bool {
	for len(w.queue) > 0 {
		id := w.queue[0]
		w.queue = w.queue[1:]
		w.inQueue[id] = false

		var ok bool
		if id < len(w.m.cons) {
			ok = w.propagateLinear(w.m.cons[id])
		} else {
			ok = w.propagateAbs(w.m.abs[id-len(w.m.cons)])
		}
		if !ok {
			for _, rest := range w.queue {
				w.inQueue[rest] = false
			}
			w.queue = w.queue[:0]
			return false
		}
	}
	return true
}

func (w *worker) propagateLinear(c linConstraint) bool {
	sumMin, sumMax := c.expr.offset, c.expr.offset
	for _, t := range c.expr.terms {
		if t.coef > 0 {
			sumMin += t.coef * w.lo[t.v]
			sumMax += t.coef * w.hi[t.v]
		} else {
			sumMin += t.coef * w.hi[t.v]
			sumMax += t.coef * w.lo[t.v]
		}
	}
	if sumMin > c.hi || sumMax < c.lo {
		return false
	}

	for _, t := range c.expr.terms {
		v := int(t.v)
		var restMin, restMax int64
		if t.coef > 0 {
			restMin = sumMin - t.coef*w.lo[v]
			restMax = sumMax - t.coef*w.hi[v]
		} else {
			restMin = sumMin - t.coef*w.hi[v]
			restMax = sumMax - t.coef*w.lo[v]
		}

		// restMin <= rest <= restMax, so coef*v must fit inside
		// [c.lo-restMax, c.hi-restMin].
		newLo, newHi := w.lo[v], w.hi[v]
		if c.hi < noBound {
			bound := c.hi - restMin
			if t.coef > 0 {
				newHi = minInt64(newHi, floorDiv(bound, t.coef))
			} else {
				newLo = maxInt64(newLo, ceilDiv(bound, t.coef))
			}
		}
		if c.lo > negNoBound {
			bound := c.lo - restMax
			if t.coef > 0 {
				newLo = maxInt64(newLo, ceilDiv(bound, t.coef))
			} else {
				newHi = minInt64(newHi, floorDiv(bound, t.coef))
			}
		}
		if !w.setBounds(v, newLo, newHi) {
			return false
		}
	}
	return true
}

func (w *worker) propagateAbs(link absLink) bool {
	t, d := int(link.target), int(link.operand)
	dlo, dhi := w.lo[d], w.hi[d]

	var tlo, thi int64
	switch {
	case dlo >= 0:
		tlo, thi = dlo, dhi
	case dhi <= 0:
		tlo, thi = -dhi, -dlo
	default:
		tlo, thi = 0, maxInt64(-dlo, dhi)
	}
	if !w.setBounds(t, tlo, thi) {
		return false
	}
	return w.setBounds(d, -w.hi[t], w.hi[t])
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) == (b < 0) {
		q++
	}
	return q
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
