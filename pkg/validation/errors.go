package validation

import (
	"errors"
	"fmt"
)

// Kind is the closed set of planning failure categories.
type Kind string

const (
	// KindInvalidZoneGeometry marks a zone boundary with fewer than three
	// points. The zone degrades to area 0 and stays out of the network.
	KindInvalidZoneGeometry Kind = "invalid_zone_geometry"
	// KindNoWaterSource aborts planning: nothing can root the pipe network.
	KindNoWaterSource Kind = "no_water_source"
	// KindDisconnectedZone marks a zone no source could reach.
	KindDisconnectedZone Kind = "disconnected_zone"
	// KindProjectionFailure rejects coordinates outside the geographic range
	// or outside what the projection can represent.
	KindProjectionFailure Kind = "projection_failure"
	// KindMalformedRequest covers payloads that cannot be decoded or carry
	// values no plan can be built from.
	KindMalformedRequest Kind = "malformed_request"
)

// Sentinel errors matching each kind, usable with errors.Is.
var (
	ErrInvalidZoneGeometry = errors.New("invalid zone geometry")
	ErrNoWaterSource       = errors.New("no water source")
	ErrDisconnectedZone    = errors.New("disconnected zone")
	ErrProjectionFailure   = errors.New("projection failure")
	ErrMalformedRequest    = errors.New("malformed request")
)

// Sentinel returns the sentinel error for a kind.
func (k Kind) Sentinel() error {
	switch k {
	case KindInvalidZoneGeometry:
		return ErrInvalidZoneGeometry
	case KindNoWaterSource:
		return ErrNoWaterSource
	case KindDisconnectedZone:
		return ErrDisconnectedZone
	case KindProjectionFailure:
		return ErrProjectionFailure
	default:
		return ErrMalformedRequest
	}
}

// Error wraps a planning failure with the operation that hit it, its kind
// and the diagnostics gathered so far.
type Error struct {
	Op     string
	Kind   Kind
	Report *Report
	Err    error
}

// NewError builds an Error whose cause defaults to the kind's sentinel.
func NewError(op string, kind Kind, report *Report, err error) *Error {
	if err == nil {
		err = kind.Sentinel()
	}
	return &Error{Op: op, Kind: kind, Report: report, Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is lets errors.Is match the kind's sentinel even when Err is a more
// specific cause.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	return target == e.Kind.Sentinel()
}

// IsKind classifies err without callers depending on the concrete type.
func IsKind(err error, kind Kind) bool {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or "" if err is not a planning error.
func KindOf(err error) Kind {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}
