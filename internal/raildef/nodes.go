package raildef

import (
	"cmp"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

// Node is one authored waypoint as placed in a level: the rail it belongs to,
// its position in that rail's traversal order, and optional per-rail hints.
type Node struct {
	RailName         string  `json:"rail_name" yaml:"rail_name"`
	Ordering         int     `json:"ordering" yaml:"ordering"`
	Position         r3.Vec  `json:"position" yaml:"position"`
	TotalTime        float64 `json:"total_time,omitempty" yaml:"total_time,omitempty"`               // 0 or Unset = not set
	ReliableDistance float64 `json:"reliable_distance,omitempty" yaml:"reliable_distance,omitempty"` // 0 or Unset = not set
}

// Assemble groups nodes by rail name and orders each rail's waypoints by
// Ordering. A rail takes its hints from the first node, in traversal order,
// that sets them. Definitions are returned sorted by name; each definition's
// Ordering is the smallest ordering among its nodes.
func Assemble(nodes []Node) ([]*Definition, error) {
	byName := make(map[string][]Node)
	for _, n := range nodes {
		if n.RailName == "" {
			return nil, fmt.Errorf("rail node at %v has no rail name", n.Position)
		}
		byName[n.RailName] = append(byName[n.RailName], n)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	slices.Sort(names)

	defs := make([]*Definition, 0, len(names))
	for _, name := range names {
		group := byName[name]
		slices.SortStableFunc(group, func(a, b Node) int { return cmp.Compare(a.Ordering, b.Ordering) })

		d := New(name)
		d.Ordering = group[0].Ordering
		for i, n := range group {
			if i > 0 && n.Ordering == group[i-1].Ordering {
				return nil, fmt.Errorf("rail %q: two nodes share ordering %d", name, n.Ordering)
			}
			d.Waypoints = append(d.Waypoints, n.Position)
			if !d.HasTotalTime() && n.TotalTime > 0 {
				d.TotalTime = n.TotalTime
			}
			if !d.HasReliableDistance() && n.ReliableDistance > 0 {
				d.ReliableDistance = n.ReliableDistance
			}
		}
		defs = append(defs, d)
	}
	return defs, nil
}
