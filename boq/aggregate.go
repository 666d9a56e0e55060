package boq

import (
	"errors"
	"fmt"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrInvalidCrewCount is returned when the crew count is not a positive integer.
var ErrInvalidCrewCount = errors.New("crew count must be a positive integer")

// WorkTypeBucket groups the items sharing one work type.
type WorkTypeBucket struct {
	WorkType           WorkType `json:"workType"`
	Count              int      `json:"count"`
	CostTotal          float64  `json:"costTotal"`
	CostShare          float64  `json:"costShare"`
	SerialDurationDays int      `json:"serialDurationDays"`
	UnestimatedItems   int      `json:"unestimatedItems"`
}

// Totals are the aggregate cost and duration figures of a set of items.
type Totals struct {
	TotalCost            float64          `json:"totalCost"`
	TotalItems           int              `json:"totalItems"`
	CrewCount            int              `json:"crewCount"`
	SerialDurationDays   int              `json:"serialDurationDays"`
	ParallelDurationDays int              `json:"parallelDurationDays"`
	UnestimatedItems     int              `json:"unestimatedItems"`
	Buckets              []WorkTypeBucket `json:"buckets"`
}

func validateCrewCount(crewCount int) error {
	err := validation.Validate(crewCount, validation.Required, validation.Min(1))
	if err != nil {
		return fmt.Errorf("%w: got %d", ErrInvalidCrewCount, crewCount)
	}
	return nil
}

// Aggregate computes cost totals, per work type buckets and the serial and
// parallel duration of items. Items without a duration estimate are left
// out of both duration sums and counted in UnestimatedItems.
func Aggregate(items []LineItem, crewCount int) (Totals, error) {
	if err := validateCrewCount(crewCount); err != nil {
		return Totals{}, err
	}

	t := Totals{TotalItems: len(items), CrewCount: crewCount}
	index := map[WorkType]int{}
	for _, it := range items {
		t.TotalCost += it.Total

		i, ok := index[it.WorkType]
		if !ok {
			i = len(t.Buckets)
			index[it.WorkType] = i
			t.Buckets = append(t.Buckets, WorkTypeBucket{WorkType: it.WorkType})
		}
		b := &t.Buckets[i]
		b.Count++
		b.CostTotal += it.Total

		if it.Estimated() {
			days := *it.EstimatedDurationDays
			t.SerialDurationDays += days
			b.SerialDurationDays += days
		} else {
			t.UnestimatedItems++
			b.UnestimatedItems++
		}
	}

	for i := range t.Buckets {
		if t.TotalCost > 0 {
			t.Buckets[i].CostShare = t.Buckets[i].CostTotal / t.TotalCost
		}
	}
	sort.SliceStable(t.Buckets, func(i, j int) bool {
		if t.Buckets[i].CostTotal != t.Buckets[j].CostTotal {
			return t.Buckets[i].CostTotal > t.Buckets[j].CostTotal
		}
		return t.Buckets[i].WorkType < t.Buckets[j].WorkType
	})
	if t.Buckets == nil {
		t.Buckets = []WorkTypeBucket{}
	}

	t.ParallelDurationDays = ParallelDays(t.SerialDurationDays, crewCount)
	return t, nil
}

// ParallelDays spreads a serial duration over crewCount crews.
func ParallelDays(serialDays, crewCount int) int {
	if crewCount <= 0 {
		return serialDays
	}
	return (serialDays + crewCount - 1) / crewCount
}
