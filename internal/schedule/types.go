package schedule

import (
	"strconv"
	"strings"
	"time"

	"github.com/tolga/rota/internal/timeutil"
)

// Seniority levels, from most senior resident to specialist.
type Seniority string

const (
	SeniorityKidemli Seniority = "kidemli"
	SeniorityAra     Seniority = "ara"
	SeniorityComez   Seniority = "comez"
	SeniorityUzman   Seniority = "uzman"
)

// SeniorityLevels lists every valid seniority value.
var SeniorityLevels = []Seniority{SeniorityKidemli, SeniorityAra, SeniorityComez, SeniorityUzman}

// Objective weight per slot of deviation (over or under) from the preferred
// load. Specialists carry no weight:
// their clinic load is steered entirely by composition rules.
var seniorityWeights = map[Seniority]int64{
	SeniorityKidemli: 1,
	SeniorityAra:     2,
	SeniorityComez:   3,
	SeniorityUzman:   0,
}

// Preferred monthly rota load per seniority.
var seniorityTargets = map[Seniority]int64{
	SeniorityKidemli: 2,
	SeniorityAra:     1,
	SeniorityComez:   1,
	SeniorityUzman:   0,
}

// Valid reports whether the value is a known seniority level.
func (s Seniority) Valid() bool {
	_, ok := seniorityWeights[s]
	return ok
}

// ParseSeniority normalises a stored seniority string. Unknown values fall
// back to the intermediate level.
func ParseSeniority(raw string) Seniority {
	s := Seniority(strings.ToLower(strings.TrimSpace(raw)))
	if s.Valid() {
		return s
	}
	return SeniorityAra
}

// Plan types.
const (
	PlanTypeClinic = "clinic"
	PlanTypeNobet  = "nobet"
)

// NormalizePlanType maps arbitrary input onto a valid plan type.
func NormalizePlanType(raw string) string {
	if strings.ToLower(strings.TrimSpace(raw)) == PlanTypeNobet {
		return PlanTypeNobet
	}
	return PlanTypeClinic
}

// Slot duty types.
const (
	SlotTypeClinic = "clinic"
	SlotTypeDuty   = "duty"
)

// Rotation period identifiers and their block size in days. Monthly keeps
// the whole month as a single block.
var rotationPeriodDays = map[string]int{
	"daily":    1,
	"weekly":   7,
	"biweekly": 14,
	"monthly":  0,
}

// DefaultRotationPeriod applies when a clinic's stored period is unknown.
const DefaultRotationPeriod = "daily"

// RotationPeriodDays converts a rotation period string to a day span.
func RotationPeriodDays(period string) int {
	if days, ok := rotationPeriodDays[strings.ToLower(strings.TrimSpace(period))]; ok {
		return days
	}
	return rotationPeriodDays[DefaultRotationPeriod]
}

// AllDutyTypes is the wildcard entry in a person's allowed duty types.
const AllDutyTypes = "*"

// Extended-rest threshold: duties of at least this many hours demand the
// rest buffer afterwards.
const extendedRestThresholdHours = 16

// Person is a staff member as seen by the solver.
type Person struct {
	Identifier       string
	DisplayName      string
	Title            string
	Seniority        Seniority
	AllowedDutyTypes []string
	MinNightDuties   *int
	MaxNightDuties   *int
	EducationYear    *int
	NightDutyExempt  bool
}

// Weight returns the objective weight per slot of deviation from the
// preferred load.
func (p *Person) Weight() int64 {
	return seniorityWeights[p.Seniority]
}

// PreferredLoad returns the preferred monthly rota load.
func (p *Person) PreferredLoad() int64 {
	return seniorityTargets[p.Seniority]
}

// IsResident reports whether the person is a resident doctor: an assistant
// title or a recorded education year.
func (p *Person) IsResident() bool {
	title := strings.ToLower(strings.TrimSpace(p.Title))
	return strings.HasPrefix(title, "asst") || p.EducationYear != nil
}

// IsSpecialist reports whether the person carries a specialist title.
func (p *Person) IsSpecialist() bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(p.Title)), "uzm")
}

// MayCover reports whether the person may take slots of the given duty type.
func (p *Person) MayCover(dutyType string) bool {
	if len(p.AllowedDutyTypes) == 0 {
		return true
	}
	for _, allowed := range p.AllowedDutyTypes {
		if allowed == AllDutyTypes || allowed == dutyType {
			return true
		}
	}
	return false
}

// StaffID extracts the numeric staff id from a "staff_<N>" identifier.
func (p *Person) StaffID() (int, bool) {
	return ParseStaffIdentifier(p.Identifier)
}

// StaffIdentifier formats the solver identifier for a staff id.
func StaffIdentifier(staffID int) string {
	return "staff_" + strconv.Itoa(staffID)
}

// ParseStaffIdentifier extracts the numeric id from "staff_<N>".
func ParseStaffIdentifier(identifier string) (int, bool) {
	rest, ok := strings.CutPrefix(identifier, "staff_")
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return id, true
}

// LeaveWindow is an inclusive, date-granular leave interval with Start <= End.
type LeaveWindow struct {
	Start time.Time
	End   time.Time
}

// NormalizeLeaveWindow canonicalises a window so Start <= End.
func NormalizeLeaveWindow(start, end time.Time) LeaveWindow {
	start = timeutil.DateOnly(start)
	end = timeutil.DateOnly(end)
	if end.Before(start) {
		start, end = end, start
	}
	return LeaveWindow{Start: start, End: end}
}

// ContainsDay reports whether the given date falls inside the window.
func (w LeaveWindow) ContainsDay(day time.Time) bool {
	day = timeutil.DateOnly(day)
	return !day.Before(w.Start) && !day.After(w.End)
}

// OverlapsInterval reports whether a slot interval touches the window. The
// window end is inclusive through the end of its day.
func (w LeaveWindow) OverlapsInterval(start, end time.Time) bool {
	return !start.After(timeutil.EndOfDay(w.End)) && !end.Before(timeutil.StartOfDay(w.Start))
}

// DutySlot is an atomic schedulable unit.
type DutySlot struct {
	Identifier    string
	DutyType      string
	Start         time.Time
	DurationHours int
	Label         string
}

// End returns the slot's end time.
func (s *DutySlot) End() time.Time {
	return s.Start.Add(time.Duration(s.DurationHours) * time.Hour)
}

// RequiresExtendedRest reports whether the slot demands the rest buffer
// afterwards. Only long overnight or full-day duties do.
func (s *DutySlot) RequiresExtendedRest() bool {
	return s.DurationHours >= extendedRestThresholdHours
}

// ObjectiveMode selects how the solver shapes workloads.
type ObjectiveMode string

const (
	// ObjectiveSeniority steers loads toward per-seniority targets.
	ObjectiveSeniority ObjectiveMode = "seniority"
	// ObjectiveBalanced equalises counts and hours across people.
	ObjectiveBalanced ObjectiveMode = "balanced"
)

// NormalizeObjectiveMode falls back to the seniority objective for unknown
// values.
func NormalizeObjectiveMode(raw ObjectiveMode) ObjectiveMode {
	if raw == ObjectiveBalanced {
		return ObjectiveBalanced
	}
	return ObjectiveSeniority
}
