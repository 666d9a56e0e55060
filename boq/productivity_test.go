package boq

import (
	"errors"
	"testing"
)

func TestEstimateRate(t *testing.T) {
	e := NewEstimator(DefaultRates())

	tests := []struct {
		name     string
		workType WorkType
		unit     string
		want     float64
		ok       bool
	}{
		{"unit specific", Finishing, "m2", 25, true},
		{"unit alias normalized", Finishing, "Sqm", 25, true},
		{"work type default", Finishing, "ls", 20, true},
		{"unclassified uses unit agnostic default only", Unclassified, "m2", 10, true},
		{"unknown work type", WorkType("marine"), "m3", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.EstimateRate(tt.workType, tt.unit)
			if ok != tt.ok || got != tt.want {
				t.Errorf("EstimateRate(%s, %s) = (%v, %v), want (%v, %v)", tt.workType, tt.unit, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestEstimateRate_NoDefaultPropagates(t *testing.T) {
	e := NewEstimator(RateTable{
		ByUnit: map[WorkType]map[string]float64{Plumbing: {"m": 30}},
	})
	if _, ok := e.EstimateRate(Plumbing, "no"); ok {
		t.Error("expected no estimate without a default rate")
	}
	if r, ok := e.EstimateRate(Plumbing, "m"); !ok || r != 30 {
		t.Errorf("got (%v, %v), want (30, true)", r, ok)
	}
}

func TestRateTableMerge(t *testing.T) {
	merged := DefaultRates().Merge(RateTable{
		ByUnit:  map[WorkType]map[string]float64{Finishing: {"Sqm": 40}},
		Default: map[WorkType]float64{Unclassified: 5},
	})
	if got := merged.ByUnit[Finishing]["m2"]; got != 40 {
		t.Errorf("finishing m2 = %v, want 40", got)
	}
	if got := merged.ByUnit[Finishing]["m"]; got != 40 {
		t.Errorf("finishing m = %v, want untouched 40", got)
	}
	if got := merged.Default[Unclassified]; got != 5 {
		t.Errorf("unclassified default = %v, want 5", got)
	}
	if got := DefaultRates().ByUnit[Finishing]["m2"]; got != 25 {
		t.Errorf("Merge mutated the receiver: %v", got)
	}
}

func TestRateTableValidate(t *testing.T) {
	if err := DefaultRates().Validate(); err != nil {
		t.Fatalf("default rates invalid: %v", err)
	}
	bad := RateTable{ByUnit: map[WorkType]map[string]float64{Electrical: {"m": 0}}}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("Validate() = %v, want ErrInvalidRate", err)
	}
	bad = RateTable{Default: map[WorkType]float64{Electrical: -1}}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("Validate() = %v, want ErrInvalidRate", err)
	}
}

func TestDurationDays(t *testing.T) {
	tests := []struct {
		qty, rate float64
		want      int
	}{
		{100, 25, 4},
		{101, 25, 5},
		{0.3, 0.1, 3},
		{1, 10, 1},
		{4.0000000001, 1, 4},
		{1e-12, 1, 1},
		{0.5, 1e9, 1},
		{1e-10, 0.5, 1},
		{10, 0, 0},
		{0, 10, 0},
	}
	for _, tt := range tests {
		if got := DurationDays(tt.qty, tt.rate); got != tt.want {
			t.Errorf("DurationDays(%v, %v) = %d, want %d", tt.qty, tt.rate, got, tt.want)
		}
	}
}
