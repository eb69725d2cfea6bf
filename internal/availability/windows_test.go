package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonflow/scheduling-service/internal/domain"
	"github.com/salonflow/scheduling-service/pkg/timerange"
	"github.com/salonflow/scheduling-service/pkg/types"
)

var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // Monday

func entry(start, end string, blocked bool) *domain.StaffSchedule {
	return &domain.StaffSchedule{
		StaffID:   1,
		DayOfWeek: time.Monday,
		StartTime: types.TimeString(start),
		EndTime:   types.TimeString(end),
		StartDate: monday.AddDate(-1, 0, 0),
		IsBlocked: blocked,
	}
}

func mondayRange(startHour, startMin, endHour, endMin int) timerange.Range {
	return timerange.Range{
		Start: time.Date(2026, 3, 2, startHour, startMin, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 2, endHour, endMin, 0, 0, time.UTC),
	}
}

func TestResolve_SingleOpenWindow(t *testing.T) {
	w, err := Resolve([]*domain.StaffSchedule{entry("09:00", "17:00", false)}, monday, 1, "hair")

	require.NoError(t, err)
	require.Len(t, w.Open, 1)
	assert.Equal(t, mondayRange(9, 0, 17, 0), w.Open[0])
	assert.Empty(t, w.Blocked)
}

func TestResolve_SplitShiftsStayDisjoint(t *testing.T) {
	w, err := Resolve([]*domain.StaffSchedule{
		entry("14:00", "18:00", false),
		entry("09:00", "12:00", false),
	}, monday, 1, "hair")

	require.NoError(t, err)
	require.Len(t, w.Open, 2)
	assert.Equal(t, mondayRange(9, 0, 12, 0), w.Open[0])
	assert.Equal(t, mondayRange(14, 0, 18, 0), w.Open[1])
}

func TestResolve_OverlappingOpenEntriesUnion(t *testing.T) {
	w, err := Resolve([]*domain.StaffSchedule{
		entry("09:00", "13:00", false),
		entry("12:00", "17:00", false),
	}, monday, 1, "hair")

	require.NoError(t, err)
	require.Len(t, w.Open, 1)
	assert.Equal(t, mondayRange(9, 0, 17, 0), w.Open[0])
}

func TestResolve_BlockedWinsRegardlessOfOrder(t *testing.T) {
	// Блокировка объявлена раньше открытого окна - всё равно побеждает
	w, err := Resolve([]*domain.StaffSchedule{
		entry("12:00", "13:00", true),
		entry("09:00", "17:00", false),
	}, monday, 1, "hair")

	require.NoError(t, err)
	require.Len(t, w.Open, 2)
	assert.Equal(t, mondayRange(9, 0, 12, 0), w.Open[0])
	assert.Equal(t, mondayRange(13, 0, 17, 0), w.Open[1])
	require.Len(t, w.Blocked, 1)
	assert.Equal(t, mondayRange(12, 0, 13, 0), w.Blocked[0])
}

func TestResolve_BlockSwallowsWholeShift(t *testing.T) {
	w, err := Resolve([]*domain.StaffSchedule{
		entry("10:00", "11:00", false),
		entry("09:00", "12:00", true),
	}, monday, 1, "hair")

	require.NoError(t, err)
	assert.Empty(t, w.Open)
}

func TestResolve_PartialBlockTrimsEdge(t *testing.T) {
	w, err := Resolve([]*domain.StaffSchedule{
		entry("09:00", "17:00", false),
		entry("08:00", "10:00", true),
	}, monday, 1, "hair")

	require.NoError(t, err)
	require.Len(t, w.Open, 1)
	assert.Equal(t, mondayRange(10, 0, 17, 0), w.Open[0])
}

func TestResolve_NoApplicableEntryMeansNotWorking(t *testing.T) {
	tuesday := monday.AddDate(0, 0, 1)
	w, err := Resolve([]*domain.StaffSchedule{entry("09:00", "17:00", false)}, tuesday, 1, "hair")

	require.NoError(t, err)
	assert.Empty(t, w.Open)
}

func TestResolve_CategoryScopedEntry(t *testing.T) {
	scoped := entry("09:00", "17:00", false)
	scoped.ServiceCategories = []string{"nails"}

	w, err := Resolve([]*domain.StaffSchedule{scoped}, monday, 1, "hair")
	require.NoError(t, err)
	assert.Empty(t, w.Open)

	w, err = Resolve([]*domain.StaffSchedule{scoped}, monday, 1, "nails")
	require.NoError(t, err)
	assert.Len(t, w.Open, 1)
}

func TestFree_SubtractsOccupied(t *testing.T) {
	w := DayWindows{Open: []timerange.Range{mondayRange(9, 0, 17, 0)}}

	free := w.Free([]timerange.Range{mondayRange(10, 0, 11, 15)})

	require.Len(t, free, 2)
	assert.Equal(t, mondayRange(9, 0, 10, 0), free[0])
	assert.Equal(t, mondayRange(11, 15, 17, 0), free[1])
}

func TestCoversAndIntersectsBlocked(t *testing.T) {
	w := DayWindows{
		Open:    []timerange.Range{mondayRange(9, 0, 12, 0), mondayRange(13, 0, 17, 0)},
		Blocked: []timerange.Range{mondayRange(12, 0, 13, 0)},
	}

	assert.True(t, w.Covers(mondayRange(9, 30, 10, 30)))
	assert.False(t, w.Covers(mondayRange(11, 30, 13, 30)))
	assert.True(t, w.IntersectsBlocked(mondayRange(12, 30, 13, 30)))
	assert.False(t, w.IntersectsBlocked(mondayRange(13, 0, 14, 0)))
}
