package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/cxd309/rail-engine/internal/raildef"
	"github.com/cxd309/rail-engine/internal/railstore"
)

// nodesFile is the authored input to bake. JSON input is accepted too.
type nodesFile struct {
	Nodes []raildef.Node `yaml:"nodes"`
}

func bakeFlags(fs *pflag.FlagSet, env *cmdEnv) {
	fs.StringVarP(&env.outDir, "out", "o", "", "output directory (default rail_root)")
	fs.StringVar(&env.ext, "ext", ".rail.zst", "file extension; .zst and .lz4 select compression")
}

func runBake(env *cmdEnv, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("bake: no node files given")
	}
	var nodes []raildef.Node
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var f nodesFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		nodes = append(nodes, f.Nodes...)
	}

	defs, err := raildef.Assemble(nodes)
	if err != nil {
		return err
	}

	out := env.outDir
	if out == "" {
		out = env.cfg.RailRoot
	}
	for _, d := range defs {
		data, err := raildef.Marshal(d)
		if err != nil {
			return err
		}
		id := d.Name + env.ext
		if err := railstore.Write(out, id, data); err != nil {
			return err
		}
		env.logger.Info("rail baked", "id", id, "waypoints", len(d.Waypoints), "bytes", len(data))
		fmt.Fprintln(env.stdout, filepath.ToSlash(id))
	}
	return nil
}
