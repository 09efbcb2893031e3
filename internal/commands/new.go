package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/simonhull/firebird-suite/plume/internal/engine"
	"github.com/simonhull/firebird-suite/plume/internal/exec"
	"github.com/simonhull/firebird-suite/plume/internal/input"
	"github.com/simonhull/firebird-suite/plume/internal/materialize"
	"github.com/simonhull/firebird-suite/plume/internal/output"
	"github.com/spf13/cobra"
)

// NewCmd creates and returns the 'new' command for scaffolding projects
func NewCmd() *cobra.Command {
	var host, api, database, edgeRuntime, packageScope string
	var nonInteractive, force, dryRun, noGit bool

	cmd := &cobra.Command{
		Use:   "new [app-name]",
		Short: "Create a new full-stack TypeScript application",
		Long: `Creates a new application with:
• Next.js + TypeScript project layout
• tRPC or GraphQL API wiring
• Prisma on PostgreSQL
• Deployment config for Vercel or Heroku
• Jest with request tests and factories

Options not given as flags are asked interactively. In a
non-interactive shell (or with --non-interactive) the environment
and the defaults apply instead.

Example:
  plume new myapp
  plume new myapp --host heroku --api graphql`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			appName := args[0]

			if !dryRun && input.Interactive() && !nonInteractive && dirHasFiles(appName) {
				if !input.Confirm(fmt.Sprintf("Directory %s already exists. Scaffold into it?", appName), false) {
					output.Info("Cancelled.")
					os.Exit(1)
				}
			}

			flags := map[string]string{}
			setIfGiven := func(name, value string) {
				if value != "" {
					flags[name] = value
				}
			}
			setIfGiven("host", host)
			setIfGiven("apiStyle", api)
			setIfGiven("database", database)
			setIfGiven("edgeRuntime", edgeRuntime)
			setIfGiven("packageScope", packageScope)

			answers := map[string]string{}
			if input.Interactive() && !nonInteractive {
				if err := runInterview(flags, answers); err != nil {
					if errors.Is(err, input.ErrCancelled) {
						output.Info("Cancelled.")
					} else {
						output.Error(err.Error())
					}
					os.Exit(1)
				}
			}

			eng, err := buildEngine()
			if err != nil {
				output.Error(err.Error())
				os.Exit(exitCode(err))
			}

			ctx := context.Background()
			output.Verbose(fmt.Sprintf("Creating new Plume project: %s", appName))

			report, err := eng.Scaffold(ctx, engine.ScaffoldOptions{
				Dir:     appName,
				AppName: appName,
				Flags:   flags,
				Answers: answers,
				Force:   force,
				DryRun:  dryRun,
			})
			if err != nil {
				var conflictErr *materialize.ConflictError
				if errors.As(err, &conflictErr) {
					printConflicts(conflictErr)
				} else {
					output.Error(err.Error())
				}
				os.Exit(exitCode(err))
			}

			printReport(report, dryRun)
			if dryRun {
				return
			}

			if !noGit {
				if err := exec.NewExecutor(nil).GitInit(ctx, appName); err != nil {
					output.Warn(fmt.Sprintf("git init failed: %v", err))
				}
			}

			output.Success(fmt.Sprintf("Created %s", appName))
			output.Info("Next steps:")
			output.Step(fmt.Sprintf("cd %s", appName))
			output.Step("npm install")
			output.Step("npm run db:migrate")
			output.Step("npm run dev")
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Deployment host (vercel, heroku)")
	cmd.Flags().StringVar(&api, "api", "", "API style (trpc, graphql)")
	cmd.Flags().StringVar(&database, "database", "", "Database (postgres)")
	cmd.Flags().StringVar(&edgeRuntime, "edge-runtime", "", "Function runtime on Vercel (node, edge)")
	cmd.Flags().StringVar(&packageScope, "package-scope", "", "npm package scope, e.g. @acme")
	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "Never prompt; use flags, environment, and defaults")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite files that already exist with different content")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be created without writing files")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "Skip git repository initialization")

	return cmd
}
