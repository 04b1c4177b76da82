// Package cmd assembles the rel command-line tool.
package cmd

import (
	"fmt"
	"io"

	"github.com/featurebasedb/rel/logger"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the `rel` root command. Subcommand output goes to
// stdout; logging goes to stderr through logdest.
func NewRootCommand(stdout io.Writer, logdest logger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rel",
		Short: "Inspect and seed rel data layers.",
		Long: `
Loads a declarative TOML data-layer configuration and lets you validate it,
apply its seed tuples to the configured store, and dump relations.
`,
		SilenceUsage: true,
	}
	cmd.AddCommand(newCheckCommand(stdout, logdest))
	cmd.AddCommand(newSeedCommand(stdout, logdest))
	cmd.AddCommand(newShowCommand(stdout, logdest))
	return cmd
}

func configArg(args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("config file path required")
	} else if len(args) > 1 {
		return "", fmt.Errorf("too many command line arguments")
	}
	return args[0], nil
}
