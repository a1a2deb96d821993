package engine

import (
	"github.com/cxd309/rail-engine/internal/follower"
	"github.com/cxd309/rail-engine/internal/rail"
	"github.com/cxd309/rail-engine/internal/raildef"
)

// SimulationMeta holds the identity and timing parameters for a simulation run.
type SimulationMeta struct {
	SimulationID string  `json:"simulation_id"`
	RunTime      float64 `json:"run_time"`  // seconds
	TimeStep     float64 `json:"time_step"` // seconds
}

// SimulationInput is the JSON-serialisable input to the engine.
// Rails lists inline definitions keyed by rail ID; followers may also name
// rails that only the fallback loader can provide.
type SimulationInput struct {
	Meta      SimulationMeta                  `json:"simulation_meta"`
	Rails     map[rail.ID]*raildef.Definition `json:"rails,omitempty"`
	Followers []follower.Follower             `json:"followers"`
}

// SimulationLogRow is the state of all followers at a single simulation timestep.
type SimulationLogRow struct {
	Timestamp    float64        `json:"timestamp"` // seconds
	FollowerLogs []follower.Log `json:"follower_logs"`
}

// SimulationLog is the complete output of a simulation run.
type SimulationLog struct {
	Meta   SimulationMeta     `json:"simulation_meta"`
	Output []SimulationLogRow `json:"output"`
}

// Engine is the follower simulation state.
type Engine struct {
	meta      SimulationMeta
	rails     *rail.Manager
	followers []*follower.SimFollower
	curTime   float64
}
