package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Slot identifier grammar:
//
//	clinic_<clinicID>_<YYYY-MM-DD>[_<posIdx>]
//	duty_<dutyID>_<YYYY-MM-DD>[_<posIdx>]
//
// posIdx starts at 1 and is omitted when the group size is 1.

// ClinicSlotID formats a clinic slot identifier.
func ClinicSlotID(clinicID int, day time.Time, posIdx, groupSize int) string {
	base := fmt.Sprintf("clinic_%d_%s", clinicID, day.Format("2006-01-02"))
	if groupSize > 1 {
		return fmt.Sprintf("%s_%d", base, posIdx)
	}
	return base
}

// DutySlotID formats a duty slot identifier.
func DutySlotID(dutyID int, day time.Time, posIdx, groupSize int) string {
	base := fmt.Sprintf("duty_%d_%s", dutyID, day.Format("2006-01-02"))
	if groupSize > 1 {
		return fmt.Sprintf("%s_%d", base, posIdx)
	}
	return base
}

// ParseClinicSlotID extracts the clinic id and position index from a clinic
// slot identifier. The position defaults to 1 when omitted or malformed.
func ParseClinicSlotID(identifier string) (clinicID, posIdx int, ok bool) {
	rest, found := strings.CutPrefix(identifier, "clinic_")
	if !found {
		return 0, 0, false
	}
	parts := strings.Split(rest, "_")
	if len(parts) < 2 {
		return 0, 0, false
	}
	clinicID, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	posIdx = 1
	if len(parts) >= 3 {
		if idx, err := strconv.Atoi(parts[2]); err == nil {
			posIdx = idx
		}
	}
	return clinicID, posIdx, true
}

// ParseDutySlotID extracts the duty type id from a duty slot identifier.
func ParseDutySlotID(identifier string) (dutyID int, ok bool) {
	rest, found := strings.CutPrefix(identifier, "duty_")
	if !found {
		return 0, false
	}
	parts := strings.SplitN(rest, "_", 2)
	if len(parts) < 1 {
		return 0, false
	}
	dutyID, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	return dutyID, true
}
