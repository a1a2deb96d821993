package main

import (
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/cxd309/rail-engine/internal/rail"
	"github.com/cxd309/rail-engine/internal/raildef"
	"github.com/cxd309/rail-engine/internal/railplot"
	"github.com/cxd309/rail-engine/internal/railstore"
	"github.com/cxd309/rail-engine/internal/spline"
)

func inspectFlags(fs *pflag.FlagSet, env *cmdEnv) {
	fs.BoolVarP(&env.all, "all", "a", false, "inspect every file under the rail root")
	fs.BoolVar(&env.diag, "diag", false, "also print spline bounds and the baked definition in CBOR diagnostic notation")
}

func runInspect(env *cmdEnv, args []string) error {
	ids := args
	if env.all {
		listed, err := railstore.NewDirLoader(env.cfg.RailRoot).List()
		if err != nil {
			return err
		}
		ids = listed
	}
	if len(ids) == 0 {
		return fmt.Errorf("inspect: no rail ids given (use --all for every rail)")
	}

	m := env.manager()
	loader := railstore.NewDirLoader(env.cfg.RailRoot)
	for _, id := range ids {
		r, err := m.GetRail(id)
		if err != nil {
			return err
		}
		digest, _ := m.Digest(id)
		fmt.Fprintf(env.stdout, "%s\n", id)
		fmt.Fprintf(env.stdout, "  name       %s (ordering %d)\n", r.Name(), r.Ordering())
		fmt.Fprintf(env.stdout, "  nodes      %d\n", r.NumNodes())
		fmt.Fprintf(env.stdout, "  duration   %.3f s\n", r.Duration())
		fmt.Fprintf(env.stdout, "  length     %.3f\n", r.Length(256))
		for i := 0; i < spline.Dimensions; i++ {
			a := spline.Axis(i)
			fmt.Fprintf(env.stdout, "  range %s    %s\n", a, r.Spline(a).Range())
		}
		fmt.Fprintf(env.stdout, "  digest     %s\n", digest)
		if env.diag {
			if err := printDiag(env, loader, id, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func printDiag(env *cmdEnv, loader *railstore.DirLoader, id string, r *rail.Rail) error {
	lo, hi := r.Bounds()
	fmt.Fprintf(env.stdout, "  bounds     (%g, %g, %g) .. (%g, %g, %g)\n", lo.X, lo.Y, lo.Z, hi.X, hi.Y, hi.Z)

	data, err := loader.Load(id)
	if err != nil {
		return err
	}
	diag, err := raildef.Diagnose(data)
	if err != nil {
		return fmt.Errorf("rail %q: %w", id, err)
	}
	fmt.Fprintf(env.stdout, "  cbor       %s\n", diag)
	return nil
}

func sampleFlags(fs *pflag.FlagSet, env *cmdEnv) {
	fs.IntVarP(&env.samples, "samples", "n", 100, "number of evenly spaced samples")
}

func runSample(env *cmdEnv, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("sample: expected exactly one rail id")
	}
	r, err := env.manager().GetRail(args[0])
	if err != nil {
		return err
	}

	w := csv.NewWriter(env.stdout)
	if err := w.Write([]string{"t", "x", "y", "z", "vx", "vy", "vz"}); err != nil {
		return err
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	for _, s := range r.Sample(env.samples) {
		row := []string{
			f(s.Time),
			f(s.Position.X), f(s.Position.Y), f(s.Position.Z),
			f(s.Velocity.X), f(s.Velocity.Y), f(s.Velocity.Z),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func plotFlags(fs *pflag.FlagSet, env *cmdEnv) {
	fs.StringVarP(&env.outDir, "out", "o", ".", "output directory for PNG files")
	fs.IntVarP(&env.samples, "samples", "n", 400, "number of evenly spaced samples")
}

func runPlot(env *cmdEnv, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("plot: expected exactly one rail id")
	}
	r, err := env.manager().GetRail(args[0])
	if err != nil {
		return err
	}
	opts := railplot.DefaultOptions()
	opts.Samples = env.samples
	files, err := railplot.Write(r, env.outDir, r.Name(), opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(env.stdout, files.Plan)
	fmt.Fprintln(env.stdout, files.Elevation)
	return nil
}
