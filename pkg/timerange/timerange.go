// Package timerange provides half-open time interval algebra: normalized
// interval lists with union and subtraction. Scheduling code builds free
// windows as (open ∪ open) − blocked − occupied, so split shifts and partial
// blocks reduce to these two operations.
package timerange

import (
	"fmt"
	"sort"
	"time"
)

// Range is a half-open time interval [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

// New constructs a Range. Start must be strictly before End.
func New(start, end time.Time) (Range, error) {
	if !start.Before(end) {
		return Range{}, fmt.Errorf("timerange: start %s is not before end %s",
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Range{Start: start, End: end}, nil
}

// IsZero returns true for the empty range.
func (r Range) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Duration returns the length of the range.
func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Overlaps reports whether two half-open ranges share any instant.
// Touching ranges ([a,b) and [b,c)) do not overlap.
func (r Range) Overlaps(other Range) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Contains reports whether other lies entirely within r.
func (r Range) Contains(other Range) bool {
	return !other.Start.Before(r.Start) && !other.End.After(r.End)
}

// ContainsTime reports whether t lies within the half-open range.
func (r Range) ContainsTime(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Pad extends the range by before/after on each side.
func (r Range) Pad(before, after time.Duration) Range {
	return Range{Start: r.Start.Add(-before), End: r.End.Add(after)}
}

// Normalize sorts ranges by start and merges overlapping or touching ones
// into a minimal list of disjoint ranges. Empty and inverted ranges are dropped.
func Normalize(ranges []Range) []Range {
	filtered := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if r.Start.Before(r.End) {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		return []Range{}
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Start.Before(filtered[j].Start)
	})

	merged := []Range{filtered[0]}
	for _, r := range filtered[1:] {
		last := &merged[len(merged)-1]
		// Touching ranges merge too: [9,12) + [12,17) = [9,17).
		if !r.Start.After(last.End) {
			if r.End.After(last.End) {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}

	return merged
}

// Union merges two range lists into a normalized disjoint list.
func Union(a, b []Range) []Range {
	combined := make([]Range, 0, len(a)+len(b))
	combined = append(combined, a...)
	combined = append(combined, b...)
	return Normalize(combined)
}

// Subtract removes every cut interval from the base list. A cut may trim a
// base range on either side, swallow it entirely, or split it into two
// remaining ranges. The result is normalized.
func Subtract(base, cuts []Range) []Range {
	result := Normalize(base)
	for _, cut := range Normalize(cuts) {
		next := make([]Range, 0, len(result)+1)
		for _, r := range result {
			if !r.Overlaps(cut) {
				next = append(next, r)
				continue
			}
			// Left remainder before the cut.
			if r.Start.Before(cut.Start) {
				next = append(next, Range{Start: r.Start, End: cut.Start})
			}
			// Right remainder after the cut.
			if cut.End.Before(r.End) {
				next = append(next, Range{Start: cut.End, End: r.End})
			}
		}
		result = next
	}
	return result
}

// TotalDuration sums the lengths of all ranges in the list.
func TotalDuration(ranges []Range) time.Duration {
	var total time.Duration
	for _, r := range ranges {
		total += r.Duration()
	}
	return total
}
