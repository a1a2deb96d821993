package follower

import "gonum.org/v1/gonum/spatial/r3"

// SimFollower is a Follower enriched with live simulation state.
// It does not hold its Rail; the engine looks the rail up each step.
type SimFollower struct {
	Follower
	State          State   `json:"state"`
	RailTime       float64 `json:"rail_time"`       // seconds along the rail
	Rate           float64 `json:"rate"`            // rail seconds per second
	RemainingDwell float64 `json:"remaining_dwell"` // seconds
	Laps           int     `json:"laps"`
	ArrivalRate    float64 `json:"arrival_rate"` // rate on reaching the rail end, 0 for a full stop
}

// NewSimFollower places f at startTime on its rail, stationary.
func NewSimFollower(f Follower, startTime float64) (*SimFollower, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &SimFollower{Follower: f, State: StateStationary, RailTime: startTime}, nil
}

// Depart starts the follower moving.
func (s *SimFollower) Depart() {
	s.State = StateAccelerating
}

// ArriveAtEnd pins the follower to endTime, records the rate it arrived at
// and starts its dwell.
func (s *SimFollower) ArriveAtEnd(endTime, arrivalRate float64) {
	s.RailTime = endTime
	s.ArrivalRate = arrivalRate
	s.Rate = 0
	s.State = StateDwelling
	s.RemainingDwell = s.TDwell
}

// AdvanceDwell counts the dwell down by dt. When it runs out the follower
// either restarts from startTime (Loop) or finishes.
func (s *SimFollower) AdvanceDwell(dt, startTime float64) {
	s.RemainingDwell -= dt
	if s.RemainingDwell > 0 {
		return
	}
	s.RemainingDwell = 0
	s.Laps++
	if !s.Loop {
		s.State = StateFinished
		return
	}
	s.RailTime = startTime
	s.State = StateAccelerating
}

// Log is a point-in-time snapshot of a SimFollower on its rail.
type Log struct {
	EntityID       EntityID `json:"entity_id"`
	State          State    `json:"state"`
	RailTime       float64  `json:"rail_time"`
	Rate           float64  `json:"rate"`
	Position       r3.Vec   `json:"position"`
	Velocity       r3.Vec   `json:"velocity"` // units per second, scaled by Rate
	RemainingDwell float64  `json:"remaining_dwell"`
	Laps           int      `json:"laps"`
	ArrivalRate    float64  `json:"arrival_rate"`
}

// GetLog snapshots the follower with its evaluated position and velocity.
func (s *SimFollower) GetLog(pos, railVel r3.Vec) Log {
	return Log{
		EntityID:       s.EntityID,
		State:          s.State,
		RailTime:       s.RailTime,
		Rate:           s.Rate,
		Position:       pos,
		Velocity:       r3.Scale(s.Rate, railVel),
		RemainingDwell: s.RemainingDwell,
		Laps:           s.Laps,
		ArrivalRate:    s.ArrivalRate,
	}
}
