package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolga/rota/internal/schedule"
)

func TestClinicSlotID_FormatParseIdentity(t *testing.T) {
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		clinicID  int
		posIdx    int
		groupSize int
		want      string
	}{
		{3, 1, 1, "clinic_3_2025-03-10"},
		{3, 1, 2, "clinic_3_2025-03-10_1"},
		{3, 2, 2, "clinic_3_2025-03-10_2"},
		{12, 4, 5, "clinic_12_2025-03-10_4"},
	}
	for _, tc := range cases {
		id := schedule.ClinicSlotID(tc.clinicID, day, tc.posIdx, tc.groupSize)
		assert.Equal(t, tc.want, id)

		clinicID, posIdx, ok := schedule.ParseClinicSlotID(id)
		require.True(t, ok, "parse %q", id)
		assert.Equal(t, tc.clinicID, clinicID)
		assert.Equal(t, tc.posIdx, posIdx)
	}
}

func TestParseClinicSlotID_OmittedPositionDefaultsToOne(t *testing.T) {
	clinicID, posIdx, ok := schedule.ParseClinicSlotID("clinic_7_2025-01-02")
	require.True(t, ok)
	assert.Equal(t, 7, clinicID)
	assert.Equal(t, 1, posIdx)
}

func TestParseClinicSlotID_Rejects(t *testing.T) {
	for _, id := range []string{"duty_1_2025-01-02", "clinic_x_2025-01-02", "clinic_5", ""} {
		_, _, ok := schedule.ParseClinicSlotID(id)
		assert.False(t, ok, "input %q", id)
	}
}

func TestDutySlotID_FormatParseIdentity(t *testing.T) {
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	id := schedule.DutySlotID(9, day, 1, 1)
	assert.Equal(t, "duty_9_2025-03-10", id)
	dutyID, ok := schedule.ParseDutySlotID(id)
	require.True(t, ok)
	assert.Equal(t, 9, dutyID)

	id = schedule.DutySlotID(9, day, 2, 3)
	assert.Equal(t, "duty_9_2025-03-10_2", id)
	dutyID, ok = schedule.ParseDutySlotID(id)
	require.True(t, ok)
	assert.Equal(t, 9, dutyID)
}

func TestParseDutySlotID_Rejects(t *testing.T) {
	for _, id := range []string{"clinic_1_2025-01-02", "duty_x_2025-01-02", ""} {
		_, ok := schedule.ParseDutySlotID(id)
		assert.False(t, ok, "input %q", id)
	}
}

func TestParseStaffIdentifier(t *testing.T) {
	id, ok := schedule.ParseStaffIdentifier("staff_42")
	require.True(t, ok)
	assert.Equal(t, 42, id)
	assert.Equal(t, "staff_42", schedule.StaffIdentifier(42))

	for _, raw := range []string{"staff_", "staff_x", "demo_aksoy", ""} {
		_, ok := schedule.ParseStaffIdentifier(raw)
		assert.False(t, ok, "input %q", raw)
	}
}
