package model

import (
	"fmt"
	"iter"
	"log"
	"math"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Interval is a closed integer range [Lower, Upper]; it is empty when Lower > Upper
type Interval struct {
	Lower int64
	Upper int64
}

func (interval Interval) IsEmpty() bool {
	return interval.Lower > interval.Upper
}

func (interval Interval) String() string {
	if interval.Lower == interval.Upper {
		return fmt.Sprintf("%d", interval.Lower)
	}
	return fmt.Sprintf("%d..%d", interval.Lower, interval.Upper)
}

// Domain is a finite set of integers stored as sorted, disjoint and non-adjacent intervals
type Domain struct {
	intervals []Interval
}

// NewDomain normalizes the intervals: empty ones are dropped, overlapping or adjacent ones are merged
func NewDomain(intervals ...Interval) Domain {
	sorted := lo.Filter(intervals, func(interval Interval, _ int) bool { return !interval.IsEmpty() })
	slices.SortFunc(sorted, func(a, b Interval) int {
		if a.Lower < b.Lower {
			return -1
		} else if a.Lower > b.Lower {
			return 1
		}
		return 0
	})

	merged := make([]Interval, 0, len(sorted))
	for _, interval := range sorted {
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			// last.Upper+1 would overflow at MaxInt64
			if last.Upper == math.MaxInt64 || interval.Lower <= last.Upper+1 {
				last.Upper = max(last.Upper, interval.Upper)
				continue
			}
		}
		merged = append(merged, interval)
	}
	return Domain{intervals: merged}
}

func Range(lower, upper int64) Domain {
	return NewDomain(Interval{Lower: lower, Upper: upper})
}

func Values(values ...int64) Domain {
	return NewDomain(lo.Map(values, func(value int64, _ int) Interval { return Interval{Lower: value, Upper: value} })...)
}

// Boolean is the {0, 1} domain
func Boolean() Domain {
	return Range(0, 1)
}

func (domain Domain) Intervals() []Interval {
	return slices.Clone(domain.intervals)
}

// Size returns the number of values, saturating at math.MaxUint64
func (domain Domain) Size() uint64 {
	var size uint64
	for _, interval := range domain.intervals {
		width := uint64(interval.Upper-interval.Lower) + 1
		if width == 0 || size+width < size {
			return math.MaxUint64
		}
		size += width
	}
	return size
}

func (domain Domain) IsEmpty() bool {
	return len(domain.intervals) == 0
}

func (domain Domain) IsBoolean() bool {
	return len(domain.intervals) == 1 && domain.intervals[0] == Interval{Lower: 0, Upper: 1}
}

// Bounds returns the smallest and the largest value; the domain must not be empty
func (domain Domain) Bounds() (lower, upper int64) {
	if domain.IsEmpty() {
		log.Panic("bounds of an empty domain")
	}
	return domain.intervals[0].Lower, domain.intervals[len(domain.intervals)-1].Upper
}

func (domain Domain) Contains(value int64) bool {
	_, found := slices.BinarySearchFunc(domain.intervals, value, func(interval Interval, value int64) int {
		if interval.Upper < value {
			return -1
		} else if interval.Lower > value {
			return 1
		}
		return 0
	})
	return found
}

// Floor returns the largest value of the domain that is not greater than value
func (domain Domain) Floor(value int64) (int64, bool) {
	floor, ok := int64(0), false
	for _, interval := range domain.intervals {
		if interval.Lower > value {
			break
		}
		floor, ok = min(interval.Upper, value), true
	}
	return floor, ok
}

// All iterates the values in increasing order
func (domain Domain) All() iter.Seq[int64] {
	return func(yield func(int64) bool) {
		for _, interval := range domain.intervals {
			for value := interval.Lower; ; value++ {
				if !yield(value) {
					return
				}
				// Checked before the increment so MaxInt64 does not wrap around
				if value == interval.Upper {
					break
				}
			}
		}
	}
}

// Values collects every value of the domain; callers must keep domains small
func (domain Domain) Values() []int64 {
	return slices.Collect(domain.All())
}

func (domain Domain) Equal(other Domain) bool {
	return slices.Equal(domain.intervals, other.intervals)
}

func (domain Domain) String() string {
	return "{" + strings.Join(lo.Map(domain.intervals, func(interval Interval, _ int) string { return interval.String() }), ",") + "}"
}
