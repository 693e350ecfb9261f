package project

import (
	"slices"
)

// UnitGraph is the import graph between compilation units of one
// project, keyed by module path.
type UnitGraph struct {
	names   []string
	index   map[string]int
	edges   [][]int // dependency -> dependents
	indeg   []int
	present []bool
}

// NewUnitGraph builds the graph from each unit's import list. Imports
// pointing outside the unit set are ignored; they resolve through the
// module search path instead.
func NewUnitGraph(units map[string][]string) *UnitGraph {
	names := make([]string, 0, len(units))
	for name := range units {
		names = append(names, name)
	}
	slices.Sort(names)

	g := &UnitGraph{
		names:   names,
		index:   make(map[string]int, len(names)),
		edges:   make([][]int, len(names)),
		indeg:   make([]int, len(names)),
		present: make([]bool, len(names)),
	}
	for i, name := range names {
		g.index[name] = i
		g.present[i] = true
	}
	for name, imports := range units {
		to := g.index[name]
		for _, imp := range imports {
			from, ok := g.index[imp]
			if !ok || from == to {
				continue
			}
			g.edges[from] = append(g.edges[from], to)
			g.indeg[to]++
		}
	}
	for i := range g.edges {
		slices.Sort(g.edges[i])
	}
	return g
}

// Schedule is a topological order of units plus the parallel waves the
// driver can check concurrently: every unit in one batch depends only on
// earlier batches.
type Schedule struct {
	Order   []string
	Batches [][]string
	Cyclic  bool
	Cycles  []string
}

// Plan runs Kahn's algorithm, collecting same-depth units into batches.
// Units left with nonzero in-degree form an import cycle.
func (g *UnitGraph) Plan() *Schedule {
	indeg := make([]int, len(g.indeg))
	copy(indeg, g.indeg)

	s := &Schedule{Order: make([]string, 0, len(g.names))}

	current := make([]int, 0, len(g.names))
	for i := range g.names {
		if indeg[i] == 0 {
			current = append(current, i)
		}
	}

	for len(current) > 0 {
		batch := make([]string, 0, len(current))
		next := make([]int, 0)
		for _, id := range current {
			batch = append(batch, g.names[id])
			s.Order = append(s.Order, g.names[id])
			for _, to := range g.edges[id] {
				indeg[to]--
				if indeg[to] == 0 {
					next = append(next, to)
				}
			}
		}
		s.Batches = append(s.Batches, batch)
		slices.Sort(next)
		current = next
	}

	if len(s.Order) != len(g.names) {
		s.Cyclic = true
		for i, name := range g.names {
			if indeg[i] > 0 {
				s.Cycles = append(s.Cycles, name)
			}
		}
	}
	return s
}
