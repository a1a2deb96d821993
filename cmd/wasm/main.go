//go:build js && wasm

// Command wasm exposes the rail follower simulation to the browser via
// WebAssembly. After loading, it registers a global JavaScript function:
//
//	runSimulation(jsonString) -> jsonString
//
// The input and output are JSON-encoded SimulationInput and SimulationLog,
// matching the contract of "railtool simulate". There is no file system in
// the browser, so every rail must be given inline in the input's "rails".
package main

import (
	"syscall/js"

	"github.com/cxd309/rail-engine/internal/config"
	"github.com/cxd309/rail-engine/internal/engine"
	"github.com/cxd309/rail-engine/internal/rail"
)

func main() {
	js.Global().Set("runSimulation", js.FuncOf(runSimulation))
	select {} // keep the WASM module alive until the page is closed
}

func runSimulation(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return map[string]any{"error": "no input provided"}
	}

	cfg := config.Default()
	result, err := engine.RunJSON(args[0].String(), engine.Env{
		Builder:         cfg.Curve,
		DefaultTimeStep: cfg.Simulation.TimeStep,
		RailOptions:     []rail.Option{rail.WithGranularity(cfg.Granularity)},
	})
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return result
}
