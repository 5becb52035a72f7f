// Package cost turns plan quantities into a bill of materials and an
// installed-cost estimate.
package cost

import (
	"fmt"
	"math"
	"sort"
)

// Quantities are the counted materials of one plan.
type Quantities struct {
	// PipeLengthM is the total pipe length per pipe type.
	PipeLengthM     map[string]float64
	Valves          int
	Sprinklers      int
	IrrigatedAreaM2 float64
}

// TotalPipeLength sums pipe length across all types.
func (q Quantities) TotalPipeLength() float64 {
	total := 0.0
	for _, l := range q.PipeLengthM {
		total += l
	}
	return total
}

// UnitCosts are the prices used by Estimate.
type UnitCosts struct {
	Currency      string             `json:"currency" yaml:"currency"`
	PipePerM      map[string]float64 `json:"pipe_per_m" yaml:"pipe_per_m"`
	ValveEach     float64            `json:"valve_each" yaml:"valve_each"`
	SprinklerEach float64            `json:"sprinkler_each" yaml:"sprinkler_each"`
	TrenchPerM3   float64            `json:"trench_per_m3" yaml:"trench_per_m3"`
}

// DefaultUnitCosts returns the built-in price list.
func DefaultUnitCosts() UnitCosts {
	pipes := make(map[string]float64, len(DefaultPipeCostPerM))
	for k, v := range DefaultPipeCostPerM {
		pipes[k] = v
	}
	return UnitCosts{
		Currency:      DefaultCurrency,
		PipePerM:      pipes,
		ValveEach:     ValveCostEach,
		SprinklerEach: SprinklerCostEach,
		TrenchPerM3:   TrenchCostPerM3,
	}
}

// WithDefaults fills every zero field from DefaultUnitCosts. Pipe prices
// given explicitly override the default for that type only.
func (u UnitCosts) WithDefaults() UnitCosts {
	d := DefaultUnitCosts()
	if u.Currency == "" {
		u.Currency = d.Currency
	}
	if u.ValveEach == 0 {
		u.ValveEach = d.ValveEach
	}
	if u.SprinklerEach == 0 {
		u.SprinklerEach = d.SprinklerEach
	}
	if u.TrenchPerM3 == 0 {
		u.TrenchPerM3 = d.TrenchPerM3
	}
	for k, v := range u.PipePerM {
		d.PipePerM[k] = v
	}
	u.PipePerM = d.PipePerM
	return u
}

// Validate rejects negative or non-finite prices.
func (u UnitCosts) Validate() error {
	check := func(name string, v float64) error {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("cost %s: invalid price %v", name, v)
		}
		return nil
	}
	if err := check("valve_each", u.ValveEach); err != nil {
		return err
	}
	if err := check("sprinkler_each", u.SprinklerEach); err != nil {
		return err
	}
	if err := check("trench_per_m3", u.TrenchPerM3); err != nil {
		return err
	}
	for k, v := range u.PipePerM {
		if err := check("pipe_per_m."+k, v); err != nil {
			return err
		}
	}
	return nil
}

// LineItem is one row of the bill of materials.
type LineItem struct {
	Item     string  `json:"item"`
	Unit     string  `json:"unit"`
	Quantity float64 `json:"quantity"`
	UnitCost float64 `json:"unit_cost"`
	Total    float64 `json:"total"`
}

// Report is the complete materials output.
type Report struct {
	Currency string     `json:"currency"`
	Items    []LineItem `json:"items"`

	Summary struct {
		PipeLengthM    float64 `json:"pipe_length_m"`
		TrenchVolume   float64 `json:"trench_volume_m3"`
		Total          float64 `json:"total"`
		PerM2Irrigated float64 `json:"per_m2_irrigated"`
	} `json:"summary"`
}

// Estimate prices the quantities. Pipe types without a price are listed
// with a zero unit cost so the length still shows in the bill.
func Estimate(q Quantities, u UnitCosts) *Report {
	report := &Report{Currency: u.Currency}

	types := make([]string, 0, len(q.PipeLengthM))
	for t := range q.PipeLengthM {
		types = append(types, t)
	}
	sort.Strings(types)

	for _, t := range types {
		l := q.PipeLengthM[t]
		report.add(LineItem{Item: "pipe " + t, Unit: "m", Quantity: l, UnitCost: u.PipePerM[t]})
	}
	if q.Valves > 0 {
		report.add(LineItem{Item: "valve", Unit: "pc", Quantity: float64(q.Valves), UnitCost: u.ValveEach})
	}
	if q.Sprinklers > 0 {
		report.add(LineItem{Item: "sprinkler", Unit: "pc", Quantity: float64(q.Sprinklers), UnitCost: u.SprinklerEach})
	}

	pipeLen := q.TotalPipeLength()
	trench := pipeLen * TrenchDepthM * TrenchWidthM
	if trench > 0 {
		report.add(LineItem{Item: "trench", Unit: "m3", Quantity: trench, UnitCost: u.TrenchPerM3})
	}

	report.Summary.PipeLengthM = pipeLen
	report.Summary.TrenchVolume = trench
	if q.IrrigatedAreaM2 > 0 {
		report.Summary.PerM2Irrigated = report.Summary.Total / q.IrrigatedAreaM2
	}
	return report
}

func (r *Report) add(it LineItem) {
	it.Total = it.Quantity * it.UnitCost
	r.Items = append(r.Items, it)
	r.Summary.Total += it.Total
}
