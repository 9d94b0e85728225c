package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/tolga/rota/internal/cpsat"
	"github.com/tolga/rota/internal/timeutil"
)

type varKey struct {
	p, s int
}

// modelBuilder translates a SolveRequest into a cpsat model. Construction
// order is deterministic: people and slots in input order, rule maps by
// sorted key.
type modelBuilder struct {
	req   SolveRequest
	model *cpsat.Model

	vars         map[varKey]cpsat.Var
	repeatVars   []cpsat.Var
	fallbackVars []cpsat.Var

	loadVars    []cpsat.Var
	hourVars    []cpsat.Var
	weekendVars []cpsat.Var

	weekendSlots map[int]bool
	totalSlots   int
	totalHours   int
}

func newModelBuilder(req SolveRequest) *modelBuilder {
	b := &modelBuilder{
		req:          req,
		model:        cpsat.NewModel(),
		vars:         make(map[varKey]cpsat.Var),
		weekendSlots: make(map[int]bool),
		totalSlots:   len(req.Slots),
	}
	for sIdx := range req.Slots {
		slot := &req.Slots[sIdx]
		b.totalHours += slot.DurationHours
		if slot.DutyType == SlotTypeDuty && timeutil.IsWeekend(slot.Start) {
			b.weekendSlots[sIdx] = true
		}
	}
	return b
}

func (b *modelBuilder) build() error {
	b.buildAssignmentVars()
	if err := b.enforceSlotCoverage(); err != nil {
		return err
	}
	b.enforceClinicRotationAndSeniority()
	b.enforceDutySeniorityRules()
	b.enforceNonOverlapAndRest()
	b.enforcePersonLimits()
	b.buildPersonTotals()
	b.buildObjective()
	return nil
}

// buildAssignmentVars creates one boolean per eligible person-slot pair.
func (b *modelBuilder) buildAssignmentVars() {
	for pIdx := range b.req.People {
		person := &b.req.People[pIdx]
		for sIdx := range b.req.Slots {
			slot := &b.req.Slots[sIdx]
			if !person.MayCover(slot.DutyType) {
				continue
			}
			// Night exemption covers overnight duties only, never mesa day
			// shifts, which share the duty slot type.
			if slot.DutyType == SlotTypeDuty && slot.RequiresExtendedRest() && person.NightDutyExempt {
				continue
			}
			if slot.DutyType == SlotTypeClinic {
				allowSpecialist := false
				if clinicID, _, ok := ParseClinicSlotID(slot.Identifier); ok {
					allowSpecialist = b.req.ClinicSeniorityRules[clinicID][SeniorityUzman] > 0
					if b.req.ClinicForbiddenPeople[clinicID][person.Identifier] {
						continue
					}
				}
				if !allowSpecialist && !person.IsResident() {
					continue
				}
			}
			if b.personOnLeaveDuringSlot(person, slot) {
				continue
			}

			v := b.model.NewBoolVar(fmt.Sprintf("assign_p%d_s%d", pIdx, sIdx))
			b.vars[varKey{p: pIdx, s: sIdx}] = v
			if b.clinicAssignmentRepeat(person, slot) {
				b.repeatVars = append(b.repeatVars, v)
			}
		}
	}
}

func (b *modelBuilder) personOnLeaveDuringSlot(person *Person, slot *DutySlot) bool {
	for _, window := range b.req.LeaveWindows[person.Identifier] {
		if window.OverlapsInterval(slot.Start, slot.End()) {
			return true
		}
	}
	return false
}

func (b *modelBuilder) clinicAssignmentRepeat(person *Person, slot *DutySlot) bool {
	if slot.DutyType != SlotTypeClinic {
		return false
	}
	clinicID, _, ok := ParseClinicSlotID(slot.Identifier)
	if !ok {
		return false
	}
	return b.req.ClinicRepeatHistory[clinicID][person.Identifier]
}

// enforceSlotCoverage requires exactly one occupant per slot.
func (b *modelBuilder) enforceSlotCoverage() error {
	for sIdx := range b.req.Slots {
		expr := cpsat.NewLinearExpr()
		found := false
		for pIdx := range b.req.People {
			if v, ok := b.vars[varKey{p: pIdx, s: sIdx}]; ok {
				expr.AddTerm(v, 1)
				found = true
			}
		}
		if !found {
			return &NoEligibleStaffError{SlotID: b.req.Slots[sIdx].Identifier}
		}
		b.model.AddEquality(expr, 1)
	}
	return nil
}

type slotRef struct {
	idx  int
	slot *DutySlot
}

// enforceClinicRotationAndSeniority links every slot of a rotation block to
// a representative occupant and applies per-block seniority composition.
func (b *modelBuilder) enforceClinicRotationAndSeniority() {
	if len(b.req.ClinicRotationDays) == 0 && len(b.req.ClinicSeniorityRules) == 0 {
		return
	}

	grouped := b.collectClinicSlotGroups()
	clinicIDs := sortedKeys(grouped)

	for _, clinicID := range clinicIDs {
		positionMap := grouped[clinicID]
		rotationDays, ok := b.req.ClinicRotationDays[clinicID]
		if !ok {
			rotationDays = 1
		}
		clinicRules := b.req.ClinicSeniorityRules[clinicID]

		var baseDate time.Time
		for _, refs := range positionMap {
			for _, ref := range refs {
				day := timeutil.DateOnly(ref.slot.Start)
				if baseDate.IsZero() || day.Before(baseDate) {
					baseDate = day
				}
			}
		}
		if baseDate.IsZero() {
			continue
		}

		blockRepresentatives := make(map[int][]int)
		for _, posIdx := range sortedKeys(positionMap) {
			refs := positionMap[posIdx]
			blocks := make(map[int][]slotRef)
			for _, ref := range refs {
				blockKey := 0
				if rotationDays > 0 {
					deltaDays := int(timeutil.DateOnly(ref.slot.Start).Sub(baseDate).Hours() / 24)
					blockKey = deltaDays / rotationDays
				}
				blocks[blockKey] = append(blocks[blockKey], ref)
			}

			for _, blockKey := range sortedKeys(blocks) {
				blockRefs := blocks[blockKey]
				sort.SliceStable(blockRefs, func(i, j int) bool {
					return blockRefs[i].slot.Start.Before(blockRefs[j].slot.Start)
				})
				repIdx := blockRefs[0].idx
				blockRepresentatives[blockKey] = append(blockRepresentatives[blockKey], repIdx)
				for _, ref := range blockRefs[1:] {
					for pIdx := range b.req.People {
						varRep, okRep := b.vars[varKey{p: pIdx, s: repIdx}]
						varOther, okOther := b.vars[varKey{p: pIdx, s: ref.idx}]
						if !okRep || !okOther {
							continue
						}
						link := cpsat.NewLinearExpr().AddTerm(varOther, 1).AddTerm(varRep, -1)
						b.model.AddEquality(link, 0)
					}
				}
			}
		}

		if len(clinicRules) == 0 {
			continue
		}
		for _, blockKey := range sortedKeys(blockRepresentatives) {
			reps := blockRepresentatives[blockKey]
			if len(reps) == 0 {
				continue
			}
			for _, seniority := range SeniorityLevels {
				required := clinicRules[seniority]
				if required <= 0 {
					continue
				}
				name := fmt.Sprintf("fallback_clinic_%d_%d_%s", clinicID, blockKey, seniority)
				b.addCompositionConstraint(reps, seniority, required, name)
			}
		}
	}
}

// enforceDutySeniorityRules applies per-day composition to duty slots.
func (b *modelBuilder) enforceDutySeniorityRules() {
	if len(b.req.DutySeniorityRules) == 0 {
		return
	}

	grouped := make(map[int]map[string][]int)
	for sIdx := range b.req.Slots {
		slot := &b.req.Slots[sIdx]
		if slot.DutyType != SlotTypeDuty {
			continue
		}
		dutyID, ok := ParseDutySlotID(slot.Identifier)
		if !ok {
			continue
		}
		dateKey := slot.Start.Format("2006-01-02")
		if grouped[dutyID] == nil {
			grouped[dutyID] = make(map[string][]int)
		}
		grouped[dutyID][dateKey] = append(grouped[dutyID][dateKey], sIdx)
	}

	for _, dutyID := range sortedKeys(grouped) {
		rules := b.req.DutySeniorityRules[dutyID]
		if len(rules) == 0 {
			continue
		}
		dateMap := grouped[dutyID]
		dateKeys := make([]string, 0, len(dateMap))
		for dateKey := range dateMap {
			dateKeys = append(dateKeys, dateKey)
		}
		sort.Strings(dateKeys)
		for _, dateKey := range dateKeys {
			slotIndices := dateMap[dateKey]
			if len(slotIndices) == 0 {
				continue
			}
			for _, seniority := range SeniorityLevels {
				required := rules[seniority]
				if required <= 0 {
					continue
				}
				name := fmt.Sprintf("fallback_duty_%d_%s_%s", dutyID, dateKey, seniority)
				b.addCompositionConstraint(slotIndices, seniority, required, name)
			}
		}
	}
}

// addCompositionConstraint requires exact-seniority occupants plus resident
// fallbacks to reach at least the required count, tracking fallback usage for
// the objective.
func (b *modelBuilder) addCompositionConstraint(slotIndices []int, seniority Seniority, required int, fallbackName string) {
	exact := cpsat.NewLinearExpr()
	total := cpsat.NewLinearExpr()
	any := false
	for _, sIdx := range slotIndices {
		for pIdx := range b.req.People {
			v, ok := b.vars[varKey{p: pIdx, s: sIdx}]
			if !ok {
				continue
			}
			person := &b.req.People[pIdx]
			switch {
			case person.Seniority == seniority:
				exact.AddTerm(v, 1)
				total.AddTerm(v, 1)
				any = true
			case person.IsResident():
				total.AddTerm(v, 1)
				any = true
			}
		}
	}
	if !any {
		// No exact matches and no fallbacks: 0 >= required, trivially
		// infeasible for a positive requirement.
		b.model.AddGreaterOrEqual(cpsat.NewLinearExpr(), int64(required))
		return
	}
	b.model.AddGreaterOrEqual(total, int64(required))

	// fallback >= required - sum(exact), clamped to [0, required]; the
	// objective minimises it, so it settles at the exact-seniority deficit.
	fallback := b.model.NewIntVar(0, int64(required), fallbackName)
	balance := cpsat.NewLinearExpr().AddTerm(fallback, 1).AddExpr(exact, 1)
	b.model.AddGreaterOrEqual(balance, int64(required))
	b.fallbackVars = append(b.fallbackVars, fallback)
}

func (b *modelBuilder) collectClinicSlotGroups() map[int]map[int][]slotRef {
	groups := make(map[int]map[int][]slotRef)
	for sIdx := range b.req.Slots {
		slot := &b.req.Slots[sIdx]
		if slot.DutyType != SlotTypeClinic {
			continue
		}
		clinicID, posIdx, ok := ParseClinicSlotID(slot.Identifier)
		if !ok {
			continue
		}
		if groups[clinicID] == nil {
			groups[clinicID] = make(map[int][]slotRef)
		}
		groups[clinicID][posIdx] = append(groups[clinicID][posIdx], slotRef{idx: sIdx, slot: slot})
	}
	for _, positionMap := range groups {
		for _, refs := range positionMap {
			sort.SliceStable(refs, func(i, j int) bool {
				return refs[i].slot.Start.Before(refs[j].slot.Start)
			})
		}
	}
	return groups
}

// enforceNonOverlapAndRest forbids one person holding two conflicting slots:
// overlapping intervals, or two extended-rest duties closer than the rest
// buffer.
func (b *modelBuilder) enforceNonOverlapAndRest() {
	pairs := b.conflictingSlotPairs()
	for pIdx := range b.req.People {
		for _, pair := range pairs {
			varA, okA := b.vars[varKey{p: pIdx, s: pair[0]}]
			varB, okB := b.vars[varKey{p: pIdx, s: pair[1]}]
			if okA && okB {
				b.model.AddLessOrEqual(cpsat.Sum(varA, varB), 1)
			}
		}
	}
}

func (b *modelBuilder) conflictingSlotPairs() [][2]int {
	restBuffer := time.Duration(b.req.RestBufferHours) * time.Hour
	if b.req.RestBufferHours <= 0 {
		restBuffer = DefaultRestBufferHours * time.Hour
	}

	var pairs [][2]int
	for i := range b.req.Slots {
		for j := i + 1; j < len(b.req.Slots); j++ {
			slotA, slotB := &b.req.Slots[i], &b.req.Slots[j]
			if slotsOverlap(slotA, slotB) || violatesRest(slotA, slotB, restBuffer) {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	return pairs
}

func slotsOverlap(a, b *DutySlot) bool {
	latestStart := a.Start
	if b.Start.After(latestStart) {
		latestStart = b.Start
	}
	earliestEnd := a.End()
	if b.End().Before(earliestEnd) {
		earliestEnd = b.End()
	}
	return latestStart.Before(earliestEnd)
}

func violatesRest(a, b *DutySlot, buffer time.Duration) bool {
	if !a.RequiresExtendedRest() || !b.RequiresExtendedRest() {
		return false
	}
	earlier, later := a, b
	if b.Start.Before(a.Start) {
		earlier, later = b, a
	}
	return later.Start.Before(earlier.End().Add(buffer))
}

// enforcePersonLimits bounds per-person totals by configured night limits.
func (b *modelBuilder) enforcePersonLimits() {
	if !b.req.EnforcePersonLimits {
		return
	}
	for pIdx := range b.req.People {
		person := &b.req.People[pIdx]
		expr := cpsat.NewLinearExpr()
		count := 0
		for sIdx := range b.req.Slots {
			if v, ok := b.vars[varKey{p: pIdx, s: sIdx}]; ok {
				expr.AddTerm(v, 1)
				count++
			}
		}
		if count == 0 {
			continue
		}
		if person.MinNightDuties != nil {
			minLimit := *person.MinNightDuties
			if minLimit < 0 {
				minLimit = 0
			}
			b.model.AddGreaterOrEqual(expr, int64(minLimit))
		}
		if person.MaxNightDuties != nil {
			maxLimit := *person.MaxNightDuties
			if maxLimit < 0 {
				maxLimit = 0
			}
			b.model.AddLessOrEqual(expr, int64(maxLimit))
		}
	}
}

// buildPersonTotals creates the per-person aggregate variables the
// objectives are written against.
func (b *modelBuilder) buildPersonTotals() {
	for pIdx := range b.req.People {
		loadExpr := cpsat.NewLinearExpr()
		hourExpr := cpsat.NewLinearExpr()
		weekendExpr := cpsat.NewLinearExpr()
		for sIdx := range b.req.Slots {
			v, ok := b.vars[varKey{p: pIdx, s: sIdx}]
			if !ok {
				continue
			}
			loadExpr.AddTerm(v, 1)
			hourExpr.AddTerm(v, int64(b.req.Slots[sIdx].DurationHours))
			if b.weekendSlots[sIdx] {
				weekendExpr.AddTerm(v, 1)
			}
		}

		loadVar := b.model.NewIntVar(0, int64(b.totalSlots), fmt.Sprintf("load_p%d", pIdx))
		b.model.AddVarEquality(loadVar, loadExpr)
		b.loadVars = append(b.loadVars, loadVar)

		hourVar := b.model.NewIntVar(0, int64(b.totalHours), fmt.Sprintf("hours_p%d", pIdx))
		b.model.AddVarEquality(hourVar, hourExpr)
		b.hourVars = append(b.hourVars, hourVar)

		weekendVar := b.model.NewIntVar(0, int64(len(b.weekendSlots)), fmt.Sprintf("weekend_p%d", pIdx))
		b.model.AddVarEquality(weekendVar, weekendExpr)
		b.weekendVars = append(b.weekendVars, weekendVar)
	}
}

func (b *modelBuilder) buildObjective() {
	obj := cpsat.NewLinearExpr()

	switch NormalizeObjectiveMode(b.req.ObjectiveMode) {
	case ObjectiveBalanced:
		b.addBalancedTerms(obj)
	default:
		b.addSeniorityTerms(obj)
	}

	for _, term := range b.buildWeekendFairnessVars() {
		obj.AddTerm(term, WeekendPenaltyWeight)
	}

	fallbackWeight := int64(b.totalSlots)
	if fallbackWeight < MinFallbackPenaltyWeight {
		fallbackWeight = MinFallbackPenaltyWeight
	}
	for _, fallback := range b.fallbackVars {
		obj.AddTerm(fallback, fallbackWeight)
	}
	for _, repeat := range b.repeatVars {
		obj.AddTerm(repeat, RepeatPenaltyWeight)
	}

	b.model.Minimize(obj)
}

// addSeniorityTerms penalises weighted deviation from per-seniority
// preferred loads.
func (b *modelBuilder) addSeniorityTerms(obj *cpsat.LinearExpr) {
	for pIdx := range b.req.People {
		person := &b.req.People[pIdx]
		weight := person.Weight()
		if weight == 0 {
			continue
		}
		dev := b.model.NewIntVar(0, int64(b.totalSlots), fmt.Sprintf("seniority_abs_diff_p%d", pIdx))
		expr := cpsat.NewLinearExpr().
			AddTerm(b.loadVars[pIdx], 1).
			AddConstant(-person.PreferredLoad())
		b.model.AddAbsEquality(dev, expr)
		obj.AddTerm(dev, weight)
	}
}

// addBalancedTerms drives slot counts and hours toward the exact mean,
// scaling count deviations by the average slot duration so the two families
// of terms stay comparable.
func (b *modelBuilder) addBalancedTerms(obj *cpsat.LinearExpr) {
	numPeople := int64(len(b.req.People))
	if numPeople == 0 {
		return
	}
	totalSlots := int64(b.totalSlots)
	totalHours := int64(b.totalHours)

	averageDuration := int64(1)
	if totalSlots > 0 {
		averageDuration = totalHours / totalSlots
		if averageDuration < 1 {
			averageDuration = 1
		}
	}

	slotBound := totalSlots * numPeople
	hourBound := totalHours * numPeople

	for pIdx := range b.req.People {
		slotAbs := b.model.NewIntVar(0, slotBound, fmt.Sprintf("balanced_slot_abs_p%d", pIdx))
		slotExpr := cpsat.NewLinearExpr().
			AddTerm(b.loadVars[pIdx], numPeople).
			AddConstant(-totalSlots)
		b.model.AddAbsEquality(slotAbs, slotExpr)
		obj.AddTerm(slotAbs, averageDuration)

		hourAbs := b.model.NewIntVar(0, hourBound, fmt.Sprintf("balanced_hour_abs_p%d", pIdx))
		hourExpr := cpsat.NewLinearExpr().
			AddTerm(b.hourVars[pIdx], numPeople).
			AddConstant(-totalHours)
		b.model.AddAbsEquality(hourAbs, hourExpr)
		obj.AddTerm(hourAbs, 1)
	}
}

// buildWeekendFairnessVars creates deviation variables steering each
// person's historic plus new weekend count toward the shared mean.
func (b *modelBuilder) buildWeekendFairnessVars() []cpsat.Var {
	if len(b.weekendSlots) == 0 || len(b.req.People) == 0 {
		return nil
	}
	numPeople := int64(len(b.req.People))
	totalHistory := int64(0)
	for pIdx := range b.req.People {
		totalHistory += int64(b.req.WeekendHistoryCounts[b.req.People[pIdx].Identifier])
	}
	totalFinal := totalHistory + int64(len(b.weekendSlots))
	if totalFinal == 0 {
		return nil
	}

	scaledBound := totalFinal * numPeople
	terms := make([]cpsat.Var, 0, len(b.req.People))
	for pIdx := range b.req.People {
		history := int64(b.req.WeekendHistoryCounts[b.req.People[pIdx].Identifier])
		dev := b.model.NewIntVar(0, scaledBound, fmt.Sprintf("weekend_abs_p%d", pIdx))
		expr := cpsat.NewLinearExpr().
			AddTerm(b.weekendVars[pIdx], numPeople).
			AddConstant(history*numPeople - totalFinal)
		b.model.AddAbsEquality(dev, expr)
		terms = append(terms, dev)
	}
	return terms
}

func sortedKeys[M ~map[int]V, V any](m M) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
