// Command railtool bakes, inspects, samples, plots and simulates rails.
//
//	railtool bake     [flags] NODES.yaml...   assemble authored rail nodes into baked rail files
//	railtool inspect  [flags] [ID...]         load rails through the cache and print a summary
//	railtool sample   [flags] ID              write a CSV of positions and velocities
//	railtool plot     [flags] ID              render plan and elevation PNGs
//	railtool simulate [flags] [INPUT.json]    run followers along rails, JSON log to stdout
//
// Every command accepts --config (or RAIL_ENGINE_CONFIG) and --root.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/cxd309/rail-engine/internal/config"
	"github.com/cxd309/rail-engine/internal/rail"
	"github.com/cxd309/rail-engine/internal/raildef"
	"github.com/cxd309/rail-engine/internal/railstore"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// command is one railtool subcommand.
type command struct {
	name    string
	summary string
	run     func(env *cmdEnv, args []string) error
	flags   func(fs *pflag.FlagSet, env *cmdEnv)
}

var commands = []command{
	{name: "bake", summary: "assemble rail nodes into baked rail files", run: runBake, flags: bakeFlags},
	{name: "inspect", summary: "load rails and print a summary", run: runInspect, flags: inspectFlags},
	{name: "sample", summary: "write rail samples as CSV", run: runSample, flags: sampleFlags},
	{name: "plot", summary: "render rail plan and elevation plots", run: runPlot, flags: plotFlags},
	{name: "simulate", summary: "run a follower simulation", run: runSimulate, flags: nil},
}

// cmdEnv carries shared state into subcommands.
type cmdEnv struct {
	stdin          io.Reader
	stdout, stderr io.Writer

	configPath string
	root       string

	cfg    config.Config
	logger *slog.Logger

	// Subcommand flags.
	outDir  string
	ext     string
	all     bool
	diag    bool
	samples int
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage(stderr)
		return nil
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}

	env := &cmdEnv{stdin: stdin, stdout: stdout, stderr: stderr}
	flagSet := pflag.NewFlagSet("railtool "+cmd.name, pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&env.configPath, "config", "", "path to YAML config (default $"+config.EnvVar+")")
	flagSet.StringVar(&env.root, "root", "", "directory rail IDs are resolved against (overrides rail_root)")
	if cmd.flags != nil {
		cmd.flags(flagSet, env)
	}
	if err := flagSet.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(config.Path(env.configPath))
	if err != nil {
		return err
	}
	if env.root != "" {
		cfg.RailRoot = env.root
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	env.cfg = cfg
	env.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	return cmd.run(env, flagSet.Args())
}

// manager returns a rail cache over the configured rail root.
func (e *cmdEnv) manager() *rail.Manager {
	return rail.NewManager(
		railstore.NewDirLoader(e.cfg.RailRoot),
		raildef.Codec{},
		e.cfg.Curve,
		rail.WithGranularity(e.cfg.Granularity),
		rail.WithLogger(e.logger),
	)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "railtool - build and inspect constant-speed rails")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  railtool <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-9s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'railtool <command> --help' for command flags.")
}
