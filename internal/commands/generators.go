package commands

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/simonhull/firebird-suite/plume/internal/insert"
	"github.com/simonhull/firebird-suite/plume/internal/output"
	"github.com/simonhull/firebird-suite/plume/internal/registry"
	"github.com/spf13/cobra"
)

// GeneratorsCmd creates and returns the 'generators' command
func GeneratorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generators",
		Short: "List available generators",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			describeGenerators()
		},
	}
}

// describeGenerators prints every registered generator with its bundle
// size and insertion targets. Bare 'plume generate' shows the same
// listing.
func describeGenerators() {
	eng, err := buildEngine()
	if err != nil {
		output.Error(err.Error())
		os.Exit(exitCode(err))
	}

	output.Info("Available generators:")
	for _, gen := range eng.Registry().All() {
		output.Step(fmt.Sprintf("%-14s %s", gen.Name, gen.Description))

		count := bundleTemplateCount(gen)
		suffix := "s"
		if count == 1 {
			suffix = ""
		}
		detail := fmt.Sprintf("%d template%s", count, suffix)
		if targets := insertionTargets(gen.Points); len(targets) > 0 {
			detail += ", inserts into " + strings.Join(targets, ", ")
		}
		output.Step(fmt.Sprintf("%-14s %s", "", detail))
	}
	output.Info("\nRun 'plume generate [generator] [name]' to use one.")
}

// bundleTemplateCount counts the template files in a generator bundle.
func bundleTemplateCount(gen *registry.Generator) int {
	count := 0
	_ = fs.WalkDir(gen.FS, gen.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	return count
}

// insertionTargets lists a generator's distinct targets in manifest
// order.
func insertionTargets(points []insert.Point) []string {
	var targets []string
	seen := make(map[string]bool)
	for _, p := range points {
		if !seen[p.Target] {
			seen[p.Target] = true
			targets = append(targets, p.Target)
		}
	}
	return targets
}
