// Package raildef defines the baked rail definition and its binary codec.
//
// A baked rail is a single Core Deterministic CBOR map:
//
//	{
//	  "name":              text,
//	  "ordering":          int,
//	  "positions":         [[x, y, z], ...],
//	  "total_time":        float,   // optional
//	  "reliable_distance": float,   // optional
//	}
//
// Optional fields that are absent decode to Unset. Encoding omits any optional
// field equal to Unset, so the same definition always produces the same bytes.
package raildef

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/cxd309/rail-engine/internal/curve"
)

// Unset is the sentinel for an absent optional float.
const Unset = curve.Unset

// ErrNoWaypoints is returned for a definition with an empty position list.
var ErrNoWaypoints = errors.New("rail definition has no waypoints")

// Definition is a parsed rail: metadata plus the ordered waypoint list.
type Definition struct {
	Name             string   `json:"name" yaml:"name"`
	Ordering         int      `json:"ordering" yaml:"ordering"`
	Waypoints        []r3.Vec `json:"waypoints" yaml:"waypoints"`
	TotalTime        float64  `json:"total_time" yaml:"total_time"`               // seconds; Unset = builder default
	ReliableDistance float64  `json:"reliable_distance" yaml:"reliable_distance"` // units; Unset = builder default
}

// New returns a definition with both optional hints unset.
func New(name string, waypoints ...r3.Vec) *Definition {
	return &Definition{
		Name:             name,
		Waypoints:        waypoints,
		TotalTime:        Unset,
		ReliableDistance: Unset,
	}
}

// HasTotalTime reports whether a total time hint is present.
func (d *Definition) HasTotalTime() bool { return d.TotalTime != Unset }

// HasReliableDistance reports whether a reliable distance hint is present.
func (d *Definition) HasReliableDistance() bool { return d.ReliableDistance != Unset }

// Validate checks the definition invariants the codec is responsible for.
func (d *Definition) Validate() error {
	if len(d.Waypoints) == 0 {
		return fmt.Errorf("rail %q: %w", d.Name, ErrNoWaypoints)
	}
	if d.HasTotalTime() && d.TotalTime <= 0 {
		return fmt.Errorf("rail %q: total time %g must be positive", d.Name, d.TotalTime)
	}
	if d.HasReliableDistance() && d.ReliableDistance < 0 {
		return fmt.Errorf("rail %q: reliable distance %g must not be negative", d.Name, d.ReliableDistance)
	}
	return nil
}
