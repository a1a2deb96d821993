// Package follower defines entities that ride a rail and the SimFollower
// state machine that advances them through rail time.
package follower

import (
	"encoding/json"
	"fmt"

	"github.com/cxd309/rail-engine/internal/playback"
	"github.com/cxd309/rail-engine/internal/rail"
)

// EntityID identifies the entity driven by a follower.
type EntityID = string

// State describes what a follower is doing this step.
type State string

const (
	StateStationary   State = "stationary"
	StateAccelerating State = "accelerating"
	StateCruising     State = "cruising"
	StateBraking      State = "braking"
	StateDwelling     State = "dwelling"
	StateFinished     State = "finished"
)

// Follower is the static definition of an entity riding a rail.
// Playback is set by UnmarshalJSON from the "playback" object's "model"
// discriminator.
type Follower struct {
	EntityID EntityID `json:"entity_id"`
	RailID   rail.ID  `json:"rail_id"`
	// DepartureDelay is how long the follower waits at the rail start
	// before moving. Zero = immediate.
	DepartureDelay float64 `json:"departure_delay,omitempty"` // seconds
	// TDwell is the hold at the rail end before looping or finishing.
	TDwell float64 `json:"t_dwell,omitempty"` // seconds
	// Loop restarts the rail from its start after each dwell.
	Loop     bool             `json:"loop,omitempty"`
	Playback playback.Profile `json:"-"`
}

type playbackDisc struct {
	Model string `json:"model"`
}

type followerJSON struct {
	EntityID       EntityID        `json:"entity_id"`
	RailID         rail.ID         `json:"rail_id"`
	DepartureDelay float64         `json:"departure_delay"`
	TDwell         float64         `json:"t_dwell"`
	Loop           bool            `json:"loop"`
	Playback       json.RawMessage `json:"playback"`
}

// UnmarshalJSON implements json.Unmarshaler for Follower.
// An absent "playback" object plays the rail at its authored speed.
//
// Supported models:
//   - "constant": fixed rate, instant start/stop.
//   - "ramp": accel / decel towards max_rate.
func (f *Follower) UnmarshalJSON(data []byte) error {
	var aux followerJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*f = Follower{
		EntityID:       aux.EntityID,
		RailID:         aux.RailID,
		DepartureDelay: aux.DepartureDelay,
		TDwell:         aux.TDwell,
		Loop:           aux.Loop,
	}

	if len(aux.Playback) == 0 {
		f.Playback = playback.Constant{Rate: 1}
		return nil
	}

	var disc playbackDisc
	if err := json.Unmarshal(aux.Playback, &disc); err != nil {
		return fmt.Errorf("follower %q: reading playback model discriminator: %w", f.EntityID, err)
	}

	switch disc.Model {
	case playback.ConstantModelName:
		var c playback.Constant
		if err := json.Unmarshal(aux.Playback, &c); err != nil {
			return fmt.Errorf("follower %q: parsing constant playback: %w", f.EntityID, err)
		}
		f.Playback = c
	case playback.RampModelName:
		var r playback.Ramp
		if err := json.Unmarshal(aux.Playback, &r); err != nil {
			return fmt.Errorf("follower %q: parsing ramp playback: %w", f.EntityID, err)
		}
		f.Playback = r
	default:
		return fmt.Errorf("follower %q: unknown playback model %q", f.EntityID, disc.Model)
	}
	return nil
}

// Validate checks the static definition.
func (f Follower) Validate() error {
	switch {
	case f.EntityID == "":
		return fmt.Errorf("follower on rail %q has no entity id", f.RailID)
	case f.RailID == "":
		return fmt.Errorf("follower %q has no rail id", f.EntityID)
	case f.Playback == nil:
		return fmt.Errorf("follower %q has no playback model", f.EntityID)
	case !(f.Playback.MaxRate() > 0):
		return fmt.Errorf("follower %q: playback rate must be positive", f.EntityID)
	case f.DepartureDelay < 0 || f.TDwell < 0:
		return fmt.Errorf("follower %q: negative delay or dwell", f.EntityID)
	}
	return nil
}
