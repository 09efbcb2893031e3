// Package materialize plans and applies filesystem changes for a set of
// rendered nodes.
//
// Planning classifies every node against the destination tree before a
// single byte is written: new files are creates, byte-identical files
// are skips, and everything else is a conflict. Conflicts are collected
// across the whole plan and reported together; only --force turns them
// into overwrites. Applying a plan writes files through atomic
// temp-and-rename, with a bounded worker pool. Because rendering
// guarantees unique destination paths, no two workers ever touch the
// same file.
package materialize

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/simonhull/firebird-suite/plume/internal/fsutil"
	"github.com/simonhull/firebird-suite/plume/internal/template"
)

// Action classifies one planned change.
type Action int

const (
	// Create writes a file or directory that does not exist yet.
	Create Action = iota
	// Skip leaves a byte-identical file untouched.
	Skip
	// Overwrite replaces a differing file; only planned under force.
	Overwrite
)

// Item is one planned filesystem change.
type Item struct {
	Path    string // relative to the destination root
	Dir     bool
	Content []byte
	Action  Action
}

// Plan is a validated set of filesystem changes for one destination.
type Plan struct {
	root  string
	Items []Item
}

// NewPlan classifies rendered nodes against the destination root. All
// conflicts are gathered before returning, so one failed run shows the
// complete list. With force, differing files become overwrites; a
// file/directory mismatch stays a conflict even then, because no write
// can resolve it.
func NewPlan(root string, nodes []template.RenderedNode, force bool) (*Plan, error) {
	plan := &Plan{root: root}
	var conflicts []Conflict

	for _, node := range nodes {
		dest := filepath.Join(root, filepath.FromSlash(node.Path))

		info, err := os.Stat(dest)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("checking %s: %w", dest, err)
			}
			plan.Items = append(plan.Items, Item{Path: node.Path, Dir: node.Dir, Content: node.Content, Action: Create})
			continue
		}

		if node.Dir {
			if info.IsDir() {
				plan.Items = append(plan.Items, Item{Path: node.Path, Dir: true, Action: Skip})
				continue
			}
			conflicts = append(conflicts, Conflict{Path: node.Path, Detail: "a file is in the way of a directory"})
			continue
		}

		if info.IsDir() {
			conflicts = append(conflicts, Conflict{Path: node.Path, Detail: "a directory is in the way of a file"})
			continue
		}

		existing, err := os.ReadFile(dest)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", dest, err)
		}

		if bytes.Equal(existing, node.Content) {
			plan.Items = append(plan.Items, Item{Path: node.Path, Content: node.Content, Action: Skip})
			continue
		}

		if force {
			plan.Items = append(plan.Items, Item{Path: node.Path, Content: node.Content, Action: Overwrite})
			continue
		}

		conflicts = append(conflicts, Conflict{Path: node.Path, Existing: existing, Incoming: node.Content})
	}

	if len(conflicts) > 0 {
		return nil, &ConflictError{Conflicts: conflicts}
	}

	return plan, nil
}

// Counts tallies the plan by action.
func (p *Plan) Counts() (created, skipped, overwritten int) {
	for _, item := range p.Items {
		if item.Dir {
			continue
		}
		switch item.Action {
		case Create:
			created++
		case Skip:
			skipped++
		case Overwrite:
			overwritten++
		}
	}
	return created, skipped, overwritten
}

// Apply writes the plan to disk. Directories are created first; file
// writes run on a bounded worker pool, each one atomic. The context is
// honored between writes: cancellation stops new writes, while an
// in-flight write completes or is discarded whole. The first write
// error aborts the remaining writes; files already committed stay.
func (p *Plan) Apply(ctx context.Context, workers int) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, item := range p.Items {
		if item.Dir && item.Action == Create {
			if err := os.MkdirAll(filepath.Join(p.root, filepath.FromSlash(item.Path)), 0755); err != nil {
				return fmt.Errorf("creating directory %s: %w", item.Path, err)
			}
		}
	}

	var files []Item
	for _, item := range p.Items {
		if !item.Dir && item.Action != Skip {
			files = append(files, item)
		}
	}
	if len(files) == 0 {
		return ctx.Err()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan Item, len(files))
	results := make(chan error, len(files))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go p.writeWorker(ctx, jobs, results, &wg)
	}

	go func() {
		for _, item := range files {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			case jobs <- item:
			}
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var firstErr error
	for err := range results {
		if err != nil && firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

func (p *Plan) writeWorker(ctx context.Context, jobs <-chan Item, results chan<- error, wg *sync.WaitGroup) {
	defer wg.Done()

	for item := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		dest := filepath.Join(p.root, filepath.FromSlash(item.Path))
		if err := fsutil.WriteAtomic(dest, item.Content, 0644); err != nil {
			results <- fmt.Errorf("writing %s: %w", item.Path, err)
			continue
		}
		results <- nil
	}
}
