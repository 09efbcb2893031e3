package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/simonhull/firebird-suite/plume/internal/engine"
	"github.com/simonhull/firebird-suite/plume/internal/materialize"
	"github.com/simonhull/firebird-suite/plume/internal/output"
	"github.com/spf13/cobra"
)

// GenerateCmd creates and returns the 'generate' command
func GenerateCmd() *cobra.Command {
	var force, dryRun, strictAnchors bool

	cmd := &cobra.Command{
		Use:   "generate [generator] [name]",
		Short: "Generate code into an existing project",
		Long: `Runs a generator against the project in the current directory.
The generator renders its templates with the project's recorded
configuration and splices registration lines into the files that
aggregate them.

Insertions are idempotent: everything applied is recorded in
.plume/generation-record.yml and never applied twice. When an
anchor comment has been edited away, the insertion becomes a
warning and the fragment is printed for manual application; use
--strict-anchors to fail instead.

Examples:
  plume generate api-router organization
  plume generate page organization
  plume generate component OrganizationCard

Run 'plume generators' for the full list.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || len(args) == 2 {
				return nil
			}
			return fmt.Errorf("accepts 0 or 2 args, received %d", len(args))
		},
		Run: func(cmd *cobra.Command, args []string) {
			// Bare 'plume generate' lists what can be generated.
			if len(args) == 0 {
				describeGenerators()
				return
			}

			generator, subject := args[0], args[1]

			eng, err := buildEngine()
			if err != nil {
				output.Error(err.Error())
				os.Exit(exitCode(err))
			}

			output.Verbose(fmt.Sprintf("Generating %s: %s (dry-run=%v, force=%v)", generator, subject, dryRun, force))

			report, err := eng.Generate(context.Background(), engine.GenerateOptions{
				Dir:           ".",
				Generator:     generator,
				Subject:       subject,
				Force:         force,
				DryRun:        dryRun,
				StrictAnchors: strictAnchors,
			})
			if err != nil {
				var conflictErr *materialize.ConflictError
				var anchorErr *engine.AnchorFailureError
				var unknownErr *engine.UnknownGeneratorError
				switch {
				case errors.As(err, &conflictErr):
					printConflicts(conflictErr)
				case errors.As(err, &anchorErr):
					printInsertions(report.Insertions)
					output.Error(err.Error())
				case errors.As(err, &unknownErr):
					output.Error(err.Error())
					output.Info("Run 'plume generators' to list what is available.")
				default:
					output.Error(err.Error())
				}
				os.Exit(exitCode(err))
			}

			printReport(report, dryRun)
			printInsertions(report.Insertions)

			if dryRun {
				output.Info("Dry run complete. Run without --dry-run to write files.")
				return
			}
			output.Success(fmt.Sprintf("Generated %s: %s", generator, subject))
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite files that already exist with different content")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be generated without writing files")
	cmd.Flags().BoolVar(&strictAnchors, "strict-anchors", false, "Treat missing anchors as errors instead of warnings")

	return cmd
}
