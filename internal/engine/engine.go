// Package engine orchestrates scaffolding and generation runs.
//
// A run walks the pipeline config → load → render → materialize →
// insert. Everything through plan construction is a dry pass over
// read-only input: when it fails, the report's phase is Aborted and
// the destination is untouched. Later phases write, and each write is
// atomic and safe to re-run.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/simonhull/firebird-suite/plume/internal/config"
	"github.com/simonhull/firebird-suite/plume/internal/fsutil"
	"github.com/simonhull/firebird-suite/plume/internal/insert"
	"github.com/simonhull/firebird-suite/plume/internal/ledger"
	"github.com/simonhull/firebird-suite/plume/internal/materialize"
	"github.com/simonhull/firebird-suite/plume/internal/registry"
	"github.com/simonhull/firebird-suite/plume/internal/template"
)

// Engine runs the scaffold and generate pipelines over a template
// corpus and a generator registry.
type Engine struct {
	scaffold     fs.FS
	scaffoldRoot string
	reg          *registry.Registry
}

// New creates an engine. The scaffold tree is rooted at scaffoldRoot
// within scaffold; reg supplies the generators.
func New(scaffold fs.FS, scaffoldRoot string, reg *registry.Registry) *Engine {
	return &Engine{scaffold: scaffold, scaffoldRoot: scaffoldRoot, reg: reg}
}

// Registry exposes the engine's generator registry.
func (e *Engine) Registry() *registry.Registry {
	return e.reg
}

// ScaffoldOptions configures one scaffold run.
type ScaffoldOptions struct {
	Dir     string // destination project directory
	AppName string
	Flags   map[string]string // option values from CLI flags
	Answers map[string]string // option values from the interview
	Force   bool
	DryRun  bool
	Workers int
}

// Scaffold stamps out a new project. The configuration is resolved
// and persisted; the whole scaffold tree is rendered and written.
func (e *Engine) Scaffold(ctx context.Context, opts ScaffoldOptions) (*Report, error) {
	report := &Report{Phase: Validating}

	r := config.NewResolver()
	for name, value := range opts.Flags {
		r.SetFlag(name, value)
	}
	for name, value := range opts.Answers {
		r.SetAnswer(name, value)
	}
	r.SetAnswer("appName", opts.AppName)

	cfg, err := r.Resolve()
	if err != nil {
		report.Phase = Aborted
		return report, err
	}
	report.Config = cfg

	nodes, err := template.Load(e.scaffold, e.scaffoldRoot)
	if err != nil {
		report.Phase = Aborted
		return report, err
	}

	report.Phase = Rendering
	rendered, err := template.NewRenderer(cfg).Render(nodes)
	if err != nil {
		report.Phase = Aborted
		return report, err
	}

	report.Phase = Materializing
	plan, err := materialize.NewPlan(opts.Dir, rendered, opts.Force)
	if err != nil {
		report.Phase = Aborted
		return report, err
	}
	report.Items = plan.Items
	report.Created, report.Skipped, report.Overwritten = plan.Counts()

	if opts.DryRun {
		report.Phase = Done
		return report, nil
	}

	if err := plan.Apply(ctx, opts.Workers); err != nil {
		return report, err
	}
	if err := config.Save(cfg, opts.Dir); err != nil {
		return report, err
	}

	report.Phase = Done
	return report, nil
}

// GenerateOptions configures one generator run.
type GenerateOptions struct {
	Dir           string // project root, scaffolded earlier
	Generator     string
	Subject       string
	Force         bool
	DryRun        bool
	StrictAnchors bool
	Workers       int
}

// Generate renders one generator bundle into an existing project and
// applies its insertion points.
func (e *Engine) Generate(ctx context.Context, opts GenerateOptions) (*Report, error) {
	report := &Report{Phase: Validating}

	cfg, err := config.Load(opts.Dir)
	if err != nil {
		report.Phase = Aborted
		return report, err
	}
	report.Config = cfg

	gen, ok := e.reg.Get(opts.Generator)
	if !ok {
		report.Phase = Aborted
		return report, &UnknownGeneratorError{Name: opts.Generator, Known: e.reg.Names()}
	}

	nodes, err := template.Load(gen.FS, gen.Root)
	if err != nil {
		report.Phase = Aborted
		return report, err
	}

	report.Phase = Rendering
	renderer := template.NewRenderer(cfg)
	renderer.BindSubject(opts.Subject)
	rendered, err := renderer.Render(nodes)
	if err != nil {
		report.Phase = Aborted
		return report, err
	}

	points, err := resolvePoints(gen.Points, renderer.Vars(), cfg)
	if err != nil {
		report.Phase = Aborted
		return report, err
	}

	report.Phase = Materializing
	plan, err := materialize.NewPlan(opts.Dir, rendered, opts.Force)
	if err != nil {
		report.Phase = Aborted
		return report, err
	}
	report.Items = plan.Items
	report.Created, report.Skipped, report.Overwritten = plan.Counts()

	if opts.DryRun {
		report.Insertions = planInsertions(points)
		report.Phase = Done
		return report, nil
	}

	if err := plan.Apply(ctx, opts.Workers); err != nil {
		return report, err
	}

	report.Phase = Inserting
	rec, err := ledger.Load(opts.Dir)
	if err != nil {
		return report, err
	}
	results, err := applyInsertions(ctx, opts.Dir, points, rec)
	report.Insertions = results
	if err != nil {
		return report, err
	}

	if opts.StrictAnchors {
		var failures []*insert.AnchorError
		for _, res := range results {
			var anchorErr *insert.AnchorError
			if res.Status == InsertFailed && errors.As(res.Err, &anchorErr) {
				failures = append(failures, anchorErr)
			}
		}
		if len(failures) > 0 {
			return report, &AnchorFailureError{Failures: failures}
		}
	}

	report.Phase = Done
	return report, nil
}

// resolvedPoint is an insertion point with its target and fragment
// substituted and its condition evaluated.
type resolvedPoint struct {
	point    insert.Point
	target   string
	fragment string
	active   bool
}

// resolvePoints substitutes every point up front so placeholder
// defects surface before any write. Problems are collected across all
// points, not just the first.
func resolvePoints(points []insert.Point, vars template.Vars, cfg *config.Context) ([]resolvedPoint, error) {
	resolved := make([]resolvedPoint, 0, len(points))
	var problems []error

	for _, p := range points {
		target, err := template.SubstituteString(p.Target, p.Target, vars)
		if err != nil {
			problems = append(problems, err)
			continue
		}
		fragment, err := template.SubstituteString(target, p.Fragment, vars)
		if err != nil {
			problems = append(problems, err)
			continue
		}

		active := true
		if p.When != "" {
			cond, err := template.ParseCondition(p.When)
			if err != nil {
				problems = append(problems, fmt.Errorf("insertion into %s: %w", target, err))
				continue
			}
			active = cond.Eval(cfg)
		}

		rp := resolvedPoint{point: p, target: target, fragment: fragment, active: active}
		rp.point.Target = target
		resolved = append(resolved, rp)
	}

	if len(problems) > 0 {
		return nil, &template.Problems{Items: problems}
	}
	return resolved, nil
}

// planInsertions reports what a dry run would do with each point.
func planInsertions(points []resolvedPoint) []InsertionResult {
	results := make([]InsertionResult, 0, len(points))
	for _, p := range points {
		status := InsertPlanned
		if !p.active {
			status = InsertSkipped
		}
		results = append(results, InsertionResult{Target: p.target, Status: status, Fragment: p.fragment})
	}
	return results
}

// applyInsertions runs the points in manifest order. Each application
// re-reads its target, splices, and writes back atomically; the hash
// is recorded only after the write commits. Anchor failures become
// warning results and the run continues; I/O failures stop it.
func applyInsertions(ctx context.Context, dir string, points []resolvedPoint, rec *ledger.Record) ([]InsertionResult, error) {
	var results []InsertionResult

	for _, p := range points {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if !p.active {
			results = append(results, InsertionResult{Target: p.target, Status: InsertSkipped, Fragment: p.fragment})
			continue
		}

		hash := ledger.Hash(p.fragment)
		if rec.Contains(p.target, hash) {
			results = append(results, InsertionResult{Target: p.target, Status: InsertRecorded, Fragment: p.fragment})
			continue
		}

		path := filepath.Join(dir, filepath.FromSlash(p.target))
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			missing := &insert.AnchorError{Target: p.target, Detail: "target file"}
			results = append(results, InsertionResult{Target: p.target, Status: InsertFailed, Fragment: p.fragment, Err: missing})
			continue
		}
		if err != nil {
			return results, fmt.Errorf("reading %s: %w", p.target, err)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return results, fmt.Errorf("reading %s: %w", p.target, err)
		}

		out, changed, err := insert.Apply(content, p.point, p.fragment)
		if err != nil {
			var anchorErr *insert.AnchorError
			if errors.As(err, &anchorErr) {
				results = append(results, InsertionResult{Target: p.target, Status: InsertFailed, Fragment: p.fragment, Err: anchorErr})
				continue
			}
			return results, err
		}

		if changed {
			if err := fsutil.WriteAtomic(path, out, info.Mode()); err != nil {
				return results, err
			}
		}
		rec.Add(p.target, hash)
		if err := rec.Save(); err != nil {
			return results, err
		}

		status := InsertApplied
		if !changed {
			status = InsertPresent
		}
		results = append(results, InsertionResult{Target: p.target, Status: status, Fragment: p.fragment})
	}

	return results, nil
}
