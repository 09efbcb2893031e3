package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/simonhull/firebird-suite/plume/internal/config"
	"github.com/simonhull/firebird-suite/plume/internal/diff"
	"github.com/simonhull/firebird-suite/plume/internal/engine"
	"github.com/simonhull/firebird-suite/plume/internal/input"
	"github.com/simonhull/firebird-suite/plume/internal/materialize"
	"github.com/simonhull/firebird-suite/plume/internal/output"
	"github.com/simonhull/firebird-suite/plume/internal/registry"
	"github.com/simonhull/firebird-suite/plume/internal/template"
	"github.com/simonhull/firebird-suite/plume/internal/templates"
)

// dirHasFiles reports whether dir exists and contains any entries.
func dirHasFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err == nil && len(entries) > 0
}

// buildEngine assembles the engine over the embedded corpus.
func buildEngine() (*engine.Engine, error) {
	reg, err := registry.LoadDir(templates.FS, templates.GeneratorsRoot)
	if err != nil {
		return nil, fmt.Errorf("loading embedded generators: %w", err)
	}
	return engine.New(templates.FS, templates.ScaffoldRoot, reg), nil
}

// runInterview prompts for every option the flags leave open, in table
// order, and stores the choices in answers. A gated option is only
// asked while its requirement holds against the values chosen so far.
func runInterview(flags, answers map[string]string) error {
	current := func(name string) string {
		if v, ok := answers[name]; ok {
			return v
		}
		if v, ok := flags[name]; ok {
			return v
		}
		opt, _ := config.Lookup(name)
		return opt.Default
	}

	for _, opt := range config.Table() {
		if opt.Name == "appName" {
			// Comes from the positional argument.
			continue
		}
		if _, ok := flags[opt.Name]; ok {
			continue
		}
		if opt.OnlyIf != nil && current(opt.OnlyIf.Option) != opt.OnlyIf.Equals {
			continue
		}

		if opt.Enumerated() {
			if len(opt.Values) == 1 {
				// Nothing to ask when the domain has one value.
				continue
			}
			defaultIndex := 0
			for i, v := range opt.Values {
				if v == opt.Default {
					defaultIndex = i
				}
			}
			choice, err := input.Select(opt.Prompt, opt.Values, defaultIndex)
			if err != nil {
				return err
			}
			answers[opt.Name] = choice
			continue
		}

		if value := input.Prompt(opt.Prompt, opt.Default); value != "" {
			answers[opt.Name] = value
		}
	}
	return nil
}

// printReport lists the validated options and the planned file
// changes, then a summary line.
func printReport(report *engine.Report, dryRun bool) {
	if report.Config != nil {
		pairs := make([]string, 0, len(report.Config.Names()))
		for _, name := range report.Config.Names() {
			pairs = append(pairs, name+"="+report.Config.Value(name))
		}
		output.Info("Options: " + strings.Join(pairs, ", "))
	}

	for _, item := range report.Items {
		if item.Dir {
			continue
		}
		switch item.Action {
		case materialize.Create:
			output.Step("create " + item.Path)
		case materialize.Skip:
			output.Verbose("skip " + item.Path + " (up to date)")
		case materialize.Overwrite:
			output.Step("overwrite " + item.Path)
		}
	}

	summary := fmt.Sprintf("%d created, %d skipped, %d overwritten", report.Created, report.Skipped, report.Overwritten)
	if dryRun {
		summary = "would be: " + summary
	}
	output.Info(summary)
}

// printConflicts shows every conflicting path with a diff of what the
// run wanted to write there.
func printConflicts(conflictErr *materialize.ConflictError) {
	suffix := ""
	if len(conflictErr.Conflicts) > 1 {
		suffix = "s"
	}
	output.Error(fmt.Sprintf("%d file%s already exist with different content:", len(conflictErr.Conflicts), suffix))

	for _, c := range conflictErr.Conflicts {
		if c.Detail != "" {
			output.Warn(fmt.Sprintf("%s: %s", c.Path, c.Detail))
			continue
		}
		output.Warn(c.Path)
		fmt.Print(diff.Unified(c.Path, c.Existing, c.Incoming))
	}

	output.Info("Re-run with --force to overwrite.")
}

// printInsertions reports each insertion point. A failed anchor is a
// warning, and the fragment is printed so it can be applied by hand.
func printInsertions(results []engine.InsertionResult) {
	for _, res := range results {
		switch res.Status {
		case engine.InsertApplied:
			output.Step("update " + res.Target)
		case engine.InsertRecorded:
			output.Verbose("skip " + res.Target + " (already applied)")
		case engine.InsertPresent:
			output.Verbose("skip " + res.Target + " (fragment already present)")
		case engine.InsertSkipped:
			output.Verbose("skip " + res.Target + " (condition not met)")
		case engine.InsertPlanned:
			output.Step("would update " + res.Target)
		case engine.InsertFailed:
			output.Warn(fmt.Sprintf("%v; apply this fragment by hand:", res.Err))
			fmt.Println(indentFragment(res.Fragment))
		}
	}
}

// indentFragment indents a fragment for display under a warning.
func indentFragment(fragment string) string {
	lines := strings.Split(strings.TrimRight(fragment, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}
	return strings.Join(lines, "\n")
}

// exitCode maps an error to the CLI's exit code contract: 1 for
// validation and usage problems, 2 for conflicts, 4 for anchor
// failures under --strict-anchors, 3 for everything else.
func exitCode(err error) int {
	var (
		validation *config.ValidationError
		missing    *config.MissingConfigError
		problems   *template.Problems
		loadErr    *template.LoadError
		unknown    *engine.UnknownGeneratorError
		conflicts  *materialize.ConflictError
		anchors    *engine.AnchorFailureError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &missing),
		errors.As(err, &problems), errors.As(err, &loadErr),
		errors.As(err, &unknown), errors.Is(err, input.ErrCancelled):
		return 1
	case errors.As(err, &conflicts):
		return 2
	case errors.As(err, &anchors):
		return 4
	default:
		return 3
	}
}
