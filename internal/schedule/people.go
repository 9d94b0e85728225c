package schedule

import (
	"encoding/json"
	"strings"

	"github.com/tolga/rota/internal/model"
)

// PeopleFromStaff normalises staff rows into solver persons. A specialist
// title forces the uzman seniority; unknown stored values fall back to ara.
// Night-duty limits are dropped as a pair when min exceeds max.
func PeopleFromStaff(rows []model.Staff) []Person {
	people := make([]Person, 0, len(rows))
	for _, row := range rows {
		title := strings.TrimSpace(row.Title)

		var seniority Seniority
		if strings.HasPrefix(strings.ToLower(title), "uzm") {
			seniority = SeniorityUzman
		} else {
			seniority = ParseSeniority(row.Seniority)
		}

		name := strings.TrimSpace(row.Name)
		if name == "" {
			name = "Bilinmeyen"
		}

		minLimit := normalizeLimit(row.MinNightDuties)
		maxLimit := normalizeLimit(row.MaxNightDuties)
		if minLimit != nil && maxLimit != nil && *minLimit > *maxLimit {
			minLimit, maxLimit = nil, nil
		}

		var educationYear *int
		if row.EducationYear != nil && *row.EducationYear >= 0 {
			year := *row.EducationYear
			educationYear = &year
		}

		people = append(people, Person{
			Identifier:       StaffIdentifier(int(row.ID)),
			DisplayName:      name,
			Title:            title,
			Seniority:        seniority,
			AllowedDutyTypes: decodeAllowedDutyTypes(row.AllowedDutyTypes),
			MinNightDuties:   minLimit,
			MaxNightDuties:   maxLimit,
			EducationYear:    educationYear,
			NightDutyExempt:  row.NightDutyExempt,
		})
	}
	return people
}

func normalizeLimit(value *int) *int {
	if value == nil || *value < 0 {
		return nil
	}
	limit := *value
	return &limit
}

func decodeAllowedDutyTypes(raw []byte) []string {
	if len(raw) == 0 {
		return []string{AllDutyTypes}
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil || len(values) == 0 {
		return []string{AllDutyTypes}
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{AllDutyTypes}
	}
	return out
}
