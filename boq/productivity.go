package boq

import (
	"errors"
	"fmt"
	"math"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrInvalidRate is returned when a rate table holds a non-positive rate.
var ErrInvalidRate = errors.New("productivity rates must be positive")

// RateTable holds expected daily output per crew, keyed by work type and
// canonical unit, with a unit-agnostic default per work type.
type RateTable struct {
	ByUnit  map[WorkType]map[string]float64 `yaml:"byUnit" json:"byUnit"`
	Default map[WorkType]float64            `yaml:"default" json:"default"`
}

// DefaultRates returns the built-in productivity table.
func DefaultRates() RateTable {
	return RateTable{
		ByUnit: map[WorkType]map[string]float64{
			Demolition:    {"m3": 15, "m2": 40, "m": 30, "no": 10},
			Earthworks:    {"m3": 100, "m2": 200, "m": 60},
			Structural:    {"m3": 15, "m2": 20, "m": 25, "kg": 800, "t": 1, "no": 4},
			Masonry:       {"m2": 12, "m3": 3, "m": 20},
			Waterproofing: {"m2": 60, "m": 80},
			Plumbing:      {"m": 30, "no": 6, "set": 2},
			HVAC:          {"m2": 15, "m": 20, "no": 3, "set": 1},
			Electrical:    {"m": 100, "no": 10, "set": 2},
			Finishing:     {"m2": 25, "m": 40, "no": 8},
			Landscaping:   {"m2": 80, "m": 50, "no": 20},
		},
		Default: map[WorkType]float64{
			Demolition:    20,
			Earthworks:    80,
			Structural:    10,
			Masonry:       10,
			Waterproofing: 50,
			Plumbing:      10,
			HVAC:          8,
			Electrical:    20,
			Finishing:     20,
			Landscaping:   40,
			Unclassified:  10,
		},
	}
}

// Merge returns a copy of t with every entry of override applied on top.
func (t RateTable) Merge(override RateTable) RateTable {
	out := RateTable{
		ByUnit:  make(map[WorkType]map[string]float64, len(t.ByUnit)),
		Default: make(map[WorkType]float64, len(t.Default)),
	}
	copyInto := func(src map[WorkType]map[string]float64) {
		for wt, units := range src {
			if out.ByUnit[wt] == nil {
				out.ByUnit[wt] = make(map[string]float64, len(units))
			}
			for u, r := range units {
				out.ByUnit[wt][NormalizeUnit(u)] = r
			}
		}
	}
	copyInto(t.ByUnit)
	copyInto(override.ByUnit)
	for wt, r := range t.Default {
		out.Default[wt] = r
	}
	for wt, r := range override.Default {
		out.Default[wt] = r
	}
	return out
}

// Validate checks that every rate in the table is strictly positive.
func (t RateTable) Validate() error {
	positive := validation.By(func(v interface{}) error {
		if r, _ := v.(float64); r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
			return ErrInvalidRate
		}
		return nil
	})

	for _, wt := range sortedWorkTypes(t.Default) {
		if err := validation.Validate(t.Default[wt], positive); err != nil {
			return fmt.Errorf("default rate for %s: %w", wt, err)
		}
	}
	for _, wt := range sortedWorkTypes(t.ByUnit) {
		units := t.ByUnit[wt]
		keys := make([]string, 0, len(units))
		for u := range units {
			keys = append(keys, u)
		}
		sort.Strings(keys)
		for _, u := range keys {
			if err := validation.Validate(units[u], positive); err != nil {
				return fmt.Errorf("rate for %s/%s: %w", wt, u, err)
			}
		}
	}
	return nil
}

func sortedWorkTypes[V any](m map[WorkType]V) []WorkType {
	out := make([]WorkType, 0, len(m))
	for wt := range m {
		out = append(out, wt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Estimator looks up productivity rates. It never mutates its table and is
// safe for concurrent use.
type Estimator struct {
	table RateTable
}

// NewEstimator builds an estimator over table.
func NewEstimator(table RateTable) *Estimator {
	return &Estimator{table: table.Merge(RateTable{})}
}

// EstimateRate returns the expected units per day for (workType, unit).
// The (workType, unit) entry wins, then the work type's default; ok is
// false when neither exists.
func (e *Estimator) EstimateRate(workType WorkType, unit string) (float64, bool) {
	if units, found := e.table.ByUnit[workType]; found {
		if r, found := units[NormalizeUnit(unit)]; found && r > 0 {
			return r, true
		}
	}
	if r, found := e.table.Default[workType]; found && r > 0 {
		return r, true
	}
	return 0, false
}

// DurationDays is ceil(quantity / rate), at least one day for any positive
// quantity. The relative tolerance keeps float noise such as 4.0000000001
// from adding a day.
func DurationDays(quantity, rate float64) int {
	if rate <= 0 || quantity <= 0 {
		return 0
	}
	ratio := quantity / rate
	days := int(math.Ceil(ratio - ratio*1e-9))
	return max(days, 1)
}
