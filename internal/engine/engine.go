// Package engine runs followers along rails in fixed timesteps.
//
// Each step, every follower is advanced in rail time by its playback profile:
//
//  1. Stationary followers wait out their departure delay.
//  2. Moving followers brake for the rail end when the remaining rail time
//     is within their stopping span, otherwise ramp towards their cruise rate.
//  3. Followers at the end dwell, then loop back to the start or finish.
//
// Rails are fetched from a rail.Manager every step rather than held, so a
// follower never keeps a Rail across a cache clear.
package engine

import (
	"encoding/json"
	"fmt"

	"github.com/cxd309/rail-engine/internal/curve"
	"github.com/cxd309/rail-engine/internal/follower"
	"github.com/cxd309/rail-engine/internal/rail"
	"github.com/cxd309/rail-engine/internal/raildef"
	"github.com/cxd309/rail-engine/internal/railstore"
)

// arrivalEpsilon absorbs float error when a step lands exactly on the rail end.
const arrivalEpsilon = 1e-9

// New constructs an Engine from a SimulationInput, loading every follower's
// rail through rails and placing the follower at the rail start.
func New(input SimulationInput, rails *rail.Manager) (*Engine, error) {
	if !(input.Meta.TimeStep > 0) {
		return nil, fmt.Errorf("time step %g must be positive", input.Meta.TimeStep)
	}
	followers := make([]*follower.SimFollower, 0, len(input.Followers))
	for _, f := range input.Followers {
		r, err := rails.GetRail(f.RailID)
		if err != nil {
			return nil, fmt.Errorf("follower %q: %w", f.EntityID, err)
		}
		sf, err := follower.NewSimFollower(f, r.StartTime())
		if err != nil {
			return nil, err
		}
		followers = append(followers, sf)
	}
	return &Engine{
		meta:      input.Meta,
		rails:     rails,
		followers: followers,
	}, nil
}

// Run executes the full simulation and returns the log.
func (e *Engine) Run() (SimulationLog, error) {
	log := SimulationLog{Meta: e.meta}
	for e.curTime <= e.meta.RunTime {
		row, err := e.step()
		if err != nil {
			return SimulationLog{}, fmt.Errorf("at t=%.2f: %w", e.curTime, err)
		}
		log.Output = append(log.Output, row)
		e.curTime += e.meta.TimeStep
	}
	return log, nil
}

// step advances the simulation by one timestep and returns the resulting log row.
func (e *Engine) step() (SimulationLogRow, error) {
	dt := e.meta.TimeStep
	logs := make([]follower.Log, len(e.followers))

	for i, f := range e.followers {
		r, err := e.rails.GetRail(f.RailID)
		if err != nil {
			return SimulationLogRow{}, fmt.Errorf("follower %q: %w", f.EntityID, err)
		}

		switch f.State {
		case follower.StateStationary:
			if e.curTime >= f.DepartureDelay {
				f.Depart()
			}
		case follower.StateDwelling:
			f.AdvanceDwell(dt, r.StartTime())
		case follower.StateFinished:
		default:
			advance(f, r.EndTime(), dt)
		}

		pos, vel := r.PositionAndVelocity(f.RailTime)
		logs[i] = f.GetLog(pos, vel)
	}
	return SimulationLogRow{Timestamp: e.curTime, FollowerLogs: logs}, nil
}

// advance moves a travelling follower along its rail for dt seconds,
// arriving when it reaches endTime or comes to rest while braking for it.
// When the end cuts a braking step short the follower arrives at the rate
// left after braking over the remaining span.
func advance(f *follower.SimFollower, endTime, dt float64) {
	remaining := endTime - f.RailTime
	span, rate, state := proposeMovement(f, remaining, dt)
	braking := state == follower.StateBraking
	if span >= remaining-arrivalEpsilon || (braking && rate <= 0) {
		if braking && span > remaining {
			rate = f.Playback.RateAfterSpan(f.Rate, remaining)
		}
		f.ArriveAtEnd(endTime, max(rate, 0))
		return
	}
	f.RailTime += span
	f.Rate = rate
	f.State = state
}

// proposeMovement returns the rail time covered, resulting rate and state
// for f over dt, given the rail time remaining to the end.
//
// Priority (highest first):
//  1. Braking to stop at the rail end
//  2. Slowing to the cruise rate (if currently over it)
//  3. Normal state machine (accelerate / cruise)
func proposeMovement(f *follower.SimFollower, remaining, dt float64) (float64, float64, follower.State) {
	p := f.Playback
	rate := f.Rate
	maxRate := p.MaxRate()

	if remaining <= p.StoppingSpan(rate, 0) {
		span, newRate := p.Step(rate, 0, dt)
		return span, newRate, follower.StateBraking
	}

	if rate > maxRate {
		span, newRate := p.Step(rate, maxRate, dt)
		return span, newRate, follower.StateBraking
	}

	span, newRate := p.Step(rate, maxRate, dt)
	if newRate >= maxRate {
		return span, maxRate, follower.StateCruising
	}
	return span, newRate, follower.StateAccelerating
}

// NewRailManager returns a Manager whose loader serves the inline rails of
// input first and falls back to fallback (which may be nil).
func NewRailManager(input SimulationInput, fallback rail.Loader, builder curve.Builder, opts ...rail.Option) (*rail.Manager, error) {
	inline := make(railstore.MapLoader, len(input.Rails))
	for id, def := range input.Rails {
		data, err := raildef.Marshal(def)
		if err != nil {
			return nil, fmt.Errorf("inline rail %q: %w", id, err)
		}
		inline[id] = data
	}
	return rail.NewManager(layeredLoader{inline: inline, fallback: fallback}, raildef.Codec{}, builder, opts...), nil
}

type layeredLoader struct {
	inline   railstore.MapLoader
	fallback rail.Loader
}

func (l layeredLoader) Load(id rail.ID) ([]byte, error) {
	if _, ok := l.inline[id]; ok || l.fallback == nil {
		return l.inline.Load(id)
	}
	return l.fallback.Load(id)
}

// Env supplies what RunJSON needs beyond the input itself.
type Env struct {
	// Loader serves rails not given inline. May be nil.
	Loader rail.Loader
	// Builder fits rail timelines. Nil means curve.NewConstSpeed().
	Builder curve.Builder
	// DefaultTimeStep replaces a zero time_step in the input, seconds.
	DefaultTimeStep float64
	// RailOptions configure the rail.Manager.
	RailOptions []rail.Option
}

// RunJSON is the entry point shared by the CLI and WASM targets.
// It accepts a JSON-encoded SimulationInput, runs the simulation, and returns a
// JSON-encoded SimulationLog.
func RunJSON(jsonInput string, env Env) (string, error) {
	var input SimulationInput
	if err := json.Unmarshal([]byte(jsonInput), &input); err != nil {
		return "", fmt.Errorf("invalid input JSON: %w", err)
	}
	for id, def := range input.Rails {
		if def == nil {
			return "", fmt.Errorf("inline rail %q is null", id)
		}
		normalizeHints(def)
	}
	if input.Meta.TimeStep == 0 {
		input.Meta.TimeStep = env.DefaultTimeStep
	}
	builder := env.Builder
	if builder == nil {
		builder = curve.NewConstSpeed()
	}

	rails, err := NewRailManager(input, env.Loader, builder, env.RailOptions...)
	if err != nil {
		return "", err
	}
	e, err := New(input, rails)
	if err != nil {
		return "", err
	}

	simLog, err := e.Run()
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(simLog)
	if err != nil {
		return "", fmt.Errorf("marshaling output: %w", err)
	}
	return string(out), nil
}

// normalizeHints treats omitted (zero) JSON hints as unset.
func normalizeHints(def *raildef.Definition) {
	if def.TotalTime == 0 {
		def.TotalTime = raildef.Unset
	}
	if def.ReliableDistance == 0 {
		def.ReliableDistance = raildef.Unset
	}
}
