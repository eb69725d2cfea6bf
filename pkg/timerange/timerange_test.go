package timerange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 2, hour, min, 0, 0, time.UTC)
}

func rng(startHour, startMin, endHour, endMin int) Range {
	return Range{Start: at(startHour, startMin), End: at(endHour, endMin)}
}

func TestNew_RejectsInvertedRange(t *testing.T) {
	_, err := New(at(10, 0), at(9, 0))
	assert.Error(t, err)

	_, err = New(at(10, 0), at(10, 0))
	assert.Error(t, err)
}

func TestOverlaps_TouchingRangesDoNotOverlap(t *testing.T) {
	a := rng(9, 0, 10, 0)
	b := rng(10, 0, 11, 0)

	assert.False(t, a.Overlaps(b))
	assert.False(t, b.Overlaps(a))
	assert.True(t, a.Overlaps(rng(9, 30, 10, 30)))
}

func TestPad(t *testing.T) {
	padded := rng(10, 0, 11, 0).Pad(10*time.Minute, 15*time.Minute)
	assert.Equal(t, at(9, 50), padded.Start)
	assert.Equal(t, at(11, 15), padded.End)
}

func TestNormalize_MergesOverlappingAndTouching(t *testing.T) {
	got := Normalize([]Range{
		rng(13, 0, 17, 0),
		rng(9, 0, 12, 0),
		rng(11, 0, 13, 0), // overlaps first, touches second
	})

	require.Len(t, got, 1)
	assert.Equal(t, rng(9, 0, 17, 0), got[0])
}

func TestNormalize_DropsEmptyRanges(t *testing.T) {
	got := Normalize([]Range{
		{Start: at(10, 0), End: at(10, 0)},
		rng(9, 0, 10, 0),
	})

	require.Len(t, got, 1)
	assert.Equal(t, rng(9, 0, 10, 0), got[0])
}

func TestNormalize_KeepsDisjointSplitShifts(t *testing.T) {
	got := Normalize([]Range{
		rng(14, 0, 18, 0),
		rng(9, 0, 12, 0),
	})

	require.Len(t, got, 2)
	assert.Equal(t, rng(9, 0, 12, 0), got[0])
	assert.Equal(t, rng(14, 0, 18, 0), got[1])
}

func TestSubtract_PartialOverlap(t *testing.T) {
	got := Subtract([]Range{rng(9, 0, 17, 0)}, []Range{rng(8, 0, 10, 0)})

	require.Len(t, got, 1)
	assert.Equal(t, rng(10, 0, 17, 0), got[0])
}

func TestSubtract_CutSwallowsBase(t *testing.T) {
	got := Subtract([]Range{rng(12, 0, 13, 0)}, []Range{rng(11, 0, 14, 0)})
	assert.Empty(t, got)
}

func TestSubtract_CutSplitsBaseInTwo(t *testing.T) {
	got := Subtract([]Range{rng(9, 0, 17, 0)}, []Range{rng(12, 0, 13, 0)})

	require.Len(t, got, 2)
	assert.Equal(t, rng(9, 0, 12, 0), got[0])
	assert.Equal(t, rng(13, 0, 17, 0), got[1])
}

func TestSubtract_MultipleCuts(t *testing.T) {
	base := []Range{rng(9, 0, 12, 0), rng(13, 0, 18, 0)}
	cuts := []Range{rng(10, 0, 10, 30), rng(11, 30, 14, 0), rng(17, 0, 19, 0)}

	got := Subtract(base, cuts)

	require.Len(t, got, 3)
	assert.Equal(t, rng(9, 0, 10, 0), got[0])
	assert.Equal(t, rng(10, 30, 11, 30), got[1])
	assert.Equal(t, rng(14, 0, 17, 0), got[2])
}

func TestSubtract_NoOverlapLeavesBaseIntact(t *testing.T) {
	base := []Range{rng(9, 0, 12, 0)}
	got := Subtract(base, []Range{rng(13, 0, 14, 0)})

	require.Len(t, got, 1)
	assert.Equal(t, base[0], got[0])
}

func TestUnion(t *testing.T) {
	got := Union([]Range{rng(9, 0, 11, 0)}, []Range{rng(10, 0, 12, 0), rng(15, 0, 16, 0)})

	require.Len(t, got, 2)
	assert.Equal(t, rng(9, 0, 12, 0), got[0])
	assert.Equal(t, rng(15, 0, 16, 0), got[1])
}

func TestTotalDuration(t *testing.T) {
	total := TotalDuration([]Range{rng(9, 0, 10, 0), rng(11, 0, 11, 30)})
	assert.Equal(t, 90*time.Minute, total)
}
