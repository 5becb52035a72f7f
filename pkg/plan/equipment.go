package plan

import (
	"fmt"
	"math"
	"strings"
)

// PipeType is the nominal polyethylene class of a pipe, named by outer
// diameter in millimeters.
type PipeType string

const (
	PipePE16 PipeType = "PE16"
	PipePE20 PipeType = "PE20"
	PipePE25 PipeType = "PE25"
	PipePE32 PipeType = "PE32"
	PipePE40 PipeType = "PE40"
	PipePE50 PipeType = "PE50"

	DefaultPipeType = PipePE25
)

// PipeTypes lists every accepted pipe class, smallest first.
var PipeTypes = []PipeType{PipePE16, PipePE20, PipePE25, PipePE32, PipePE40, PipePE50}

// ParsePipeType accepts a pipe class case-insensitively. The empty string
// yields DefaultPipeType.
func ParsePipeType(s string) (PipeType, error) {
	if s == "" {
		return DefaultPipeType, nil
	}
	t := PipeType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown pipe type %q (want one of %v)", s, PipeTypes)
	}
	return t, nil
}

// Valid reports whether t is one of PipeTypes.
func (t PipeType) Valid() bool {
	for _, k := range PipeTypes {
		if t == k {
			return true
		}
	}
	return false
}

func (t PipeType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("unknown pipe type %q", string(t))
	}
	return []byte(t), nil
}

func (t *PipeType) UnmarshalText(b []byte) error {
	v, err := ParsePipeType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ValveType is the solenoid supply of a zone valve.
type ValveType string

const (
	Valve24VAC ValveType = "24VAC"
	Valve9VDC  ValveType = "9VDC"

	DefaultValveType = Valve24VAC
)

// ValveTypes lists every accepted valve supply.
var ValveTypes = []ValveType{Valve24VAC, Valve9VDC}

// ParseValveType accepts a valve supply case-insensitively. The empty string
// yields DefaultValveType.
func ParseValveType(s string) (ValveType, error) {
	if s == "" {
		return DefaultValveType, nil
	}
	t := ValveType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown valve type %q (want one of %v)", s, ValveTypes)
	}
	return t, nil
}

// Valid reports whether t is one of ValveTypes.
func (t ValveType) Valid() bool {
	for _, k := range ValveTypes {
		if t == k {
			return true
		}
	}
	return false
}

func (t ValveType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("unknown valve type %q", string(t))
	}
	return []byte(t), nil
}

func (t *ValveType) UnmarshalText(b []byte) error {
	v, err := ParseValveType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// DefaultSprinklerRadiusM is the throw radius of a standard spray head.
const DefaultSprinklerRadiusM = 5.0

// Equipment is the fixed hardware catalogue a plan is drawn with.
type Equipment struct {
	PipeType         PipeType  `json:"pipe_type" yaml:"pipe_type"`
	ValveType        ValveType `json:"valve_type" yaml:"valve_type"`
	SprinklerRadiusM float64   `json:"sprinkler_radius_m" yaml:"sprinkler_radius_m"`
}

// DefaultEquipment returns PE25 pipe, 24VAC valves and 5 m sprinklers.
func DefaultEquipment() Equipment {
	return Equipment{
		PipeType:         DefaultPipeType,
		ValveType:        DefaultValveType,
		SprinklerRadiusM: DefaultSprinklerRadiusM,
	}
}

// WithDefaults fills zero fields from DefaultEquipment.
func (e Equipment) WithDefaults() Equipment {
	d := DefaultEquipment()
	if e.PipeType == "" {
		e.PipeType = d.PipeType
	}
	if e.ValveType == "" {
		e.ValveType = d.ValveType
	}
	if e.SprinklerRadiusM == 0 {
		e.SprinklerRadiusM = d.SprinklerRadiusM
	}
	return e
}

// Validate rejects unknown tags and non-positive radii.
func (e Equipment) Validate() error {
	if !e.PipeType.Valid() {
		return fmt.Errorf("equipment: unknown pipe type %q", e.PipeType)
	}
	if !e.ValveType.Valid() {
		return fmt.Errorf("equipment: unknown valve type %q", e.ValveType)
	}
	if e.SprinklerRadiusM <= 0 || math.IsNaN(e.SprinklerRadiusM) || math.IsInf(e.SprinklerRadiusM, 0) {
		return fmt.Errorf("equipment: sprinkler radius must be positive, got %v", e.SprinklerRadiusM)
	}
	return nil
}
