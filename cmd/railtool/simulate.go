package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cxd309/rail-engine/internal/engine"
	"github.com/cxd309/rail-engine/internal/rail"
	"github.com/cxd309/rail-engine/internal/railstore"
)

// runSimulate reads a SimulationInput JSON from a file argument (or stdin),
// runs the simulation, and writes the SimulationLog JSON to stdout.
func runSimulate(env *cmdEnv, args []string) error {
	var (
		data []byte
		err  error
	)
	switch len(args) {
	case 0:
		data, err = io.ReadAll(env.stdin)
	case 1:
		data, err = os.ReadFile(args[0])
	default:
		return fmt.Errorf("simulate: expected at most one input file")
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	result, err := engine.RunJSON(string(data), engine.Env{
		Loader:          railstore.NewDirLoader(env.cfg.RailRoot),
		Builder:         env.cfg.Curve,
		DefaultTimeStep: env.cfg.Simulation.TimeStep,
		RailOptions: []rail.Option{
			rail.WithGranularity(env.cfg.Granularity),
			rail.WithLogger(env.logger),
		},
	})
	if err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	fmt.Fprintln(env.stdout, result)
	return nil
}
