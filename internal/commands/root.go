package commands

import (
	"github.com/simonhull/firebird-suite/plume"
	"github.com/simonhull/firebird-suite/plume/internal/output"
	"github.com/spf13/cobra"
)

// RootCmd creates and returns the root command for the Plume CLI
func RootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "plume",
		Short: "Full-stack TypeScript application scaffolding",
		Long: `Plume stamps out conventionally-structured full-stack TypeScript
applications and grows them with generators that stay consistent with
the choices made at scaffold time.

• Next.js projects wired for tRPC or GraphQL
• Prisma on PostgreSQL
• Deployment config for Vercel or Heroku
• Generators for routers, pages, components, cells, and tests

Learn more: https://github.com/simonhull/firebird-suite`,
		Version: plume.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetVerbose(verbose)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")

	return cmd
}
