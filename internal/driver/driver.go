// Package driver runs the semantic pipeline over a set of compilation
// units: load serialized modules, check each in its own environment,
// and lower clean units to LLVM text.
package driver

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"tml/internal/ast"
	"tml/internal/backend/llvm"
	"tml/internal/diag"
	"tml/internal/mir"
	"tml/internal/modfile"
	"tml/internal/mono"
	"tml/internal/observ"
	"tml/internal/project"
	"tml/internal/sema"
	"tml/internal/types"
)

// maxDiagnostics caps collected diagnostics per unit.
const maxDiagnostics = 256

// Unit is one compilation unit flowing through the pipeline.
type Unit struct {
	Path   string
	Module *ast.Module
	Digest project.Digest
}

// UnitResult is the outcome of checking one unit. Types and Insts stay
// alive so lowering and reporting can consume them.
type UnitResult struct {
	Unit  *Unit
	Bag   *diag.Bag
	Types *types.Interner
	Insts *mono.InstantiationMap
}

// Broken reports whether the unit has errors and must not be lowered.
func (r *UnitResult) Broken() bool {
	return r.Bag.HasErrors()
}

// Driver coordinates checking and lowering for one project.
type Driver struct {
	cfg   project.Config
	cache *DiskCache
	timer *observ.Timer

	// Workers bounds parallel unit checking; zero means GOMAXPROCS.
	Workers int
}

// New creates a driver for the given configuration.
func New(cfg project.Config) *Driver {
	return &Driver{cfg: cfg, timer: observ.NewTimer()}
}

// Timings reports the durations of completed pipeline phases.
func (d *Driver) Timings() observ.Report {
	return d.timer.Report()
}

// WithCache attaches a lowering cache.
func (d *Driver) WithCache(cache *DiskCache) *Driver {
	d.cache = cache
	return d
}

// LoadUnit reads one serialized module file.
func (d *Driver) LoadUnit(path string) (*Unit, error) {
	phase := d.timer.Begin("load")
	mod, digest, err := modfile.Load(path)
	if err != nil {
		d.timer.End(phase, path+" (failed)")
		return nil, fmt.Errorf("failed to load unit %s: %w", path, err)
	}
	d.timer.End(phase, path)
	return &Unit{Path: path, Module: mod, Digest: digest}, nil
}

// CheckUnit runs registration and validation for one unit in a fresh
// environment.
func (d *Driver) CheckUnit(unit *Unit) *UnitResult {
	bag := diag.NewBag(maxDiagnostics)
	in := types.NewInterner()
	checker := sema.NewChecker(sema.NewEnv(), in, diag.BagReporter{Bag: bag})
	checker.Check(unit.Module)
	bag.Sort()
	return &UnitResult{
		Unit:  unit,
		Bag:   bag,
		Types: in,
		Insts: checker.Instantiations(),
	}
}

// CheckAll checks units in dependency waves: units inside one wave are
// independent and run concurrently, each with its own environment.
// Results come back keyed by module path.
func (d *Driver) CheckAll(ctx context.Context, units []*Unit) (map[string]*UnitResult, error) {
	imports := make(map[string][]string, len(units))
	byName := make(map[string]*Unit, len(units))
	for _, u := range units {
		imports[u.Module.Path] = u.Module.Imports
		byName[u.Module.Path] = u
	}
	schedule := project.NewUnitGraph(imports).Plan()
	if schedule.Cyclic {
		return nil, fmt.Errorf("import cycle between units: %v", schedule.Cycles)
	}

	results := make(map[string]*UnitResult, len(units))
	var mu sync.Mutex
	for wave, batch := range schedule.Batches {
		phase := d.timer.Begin("check")
		g, _ := errgroup.WithContext(ctx)
		if d.Workers > 0 {
			g.SetLimit(d.Workers)
		}
		for _, name := range batch {
			unit := byName[name]
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				res := d.CheckUnit(unit)
				mu.Lock()
				results[unit.Module.Path] = res
				mu.Unlock()
				return nil
			})
		}
		err := g.Wait()
		d.timer.End(phase, fmt.Sprintf("wave %d, %d unit(s)", wave, len(batch)))
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// Lower validates and lowers one MIR module to LLVM text. A unit whose
// check produced errors must never get here; the caller gates on
// Broken(). Cached output is reused when the content digest matches.
func (d *Driver) Lower(res *UnitResult, mod *mir.Module) (string, error) {
	if res.Broken() {
		return "", fmt.Errorf("unit %s has errors, refusing to lower", res.Unit.Module.Path)
	}
	if d.cache != nil {
		if text, ok, err := d.cache.Get(res.Unit.Digest); err == nil && ok {
			phase := d.timer.Begin("lower")
			d.timer.End(phase, res.Unit.Module.Path+" (cached)")
			return text, nil
		}
	}
	phase := d.timer.Begin("lower")
	if err := mir.Validate(mod, res.Types); err != nil {
		d.timer.End(phase, res.Unit.Module.Path+" (invalid)")
		return "", fmt.Errorf("invalid lowering input for %s: %w", res.Unit.Module.Path, err)
	}
	text, err := llvm.EmitModule(mod, res.Types)
	if err != nil {
		d.timer.End(phase, res.Unit.Module.Path+" (failed)")
		return "", err
	}
	d.timer.End(phase, res.Unit.Module.Path)
	if d.cache != nil {
		if err := d.cache.Put(res.Unit.Digest, text); err != nil {
			return text, fmt.Errorf("lowered %s but failed to cache: %w", res.Unit.Module.Path, err)
		}
	}
	return text, nil
}
