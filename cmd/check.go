package cmd

import (
	"fmt"
	"io"

	"github.com/featurebasedb/rel/config"
	"github.com/featurebasedb/rel/logger"
	"github.com/spf13/cobra"
)

func newCheckCommand(stdout io.Writer, logdest logger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] CONFIG",
		Short: "Validate a data-layer config.",
		Long: `
Parses and validates a data-layer configuration without touching storage.
`,
		Args: func(cmd *cobra.Command, args []string) error {
			_, err := configArg(args)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := configArg(args)

			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			fmt.Fprintf(stdout, "ok: %d relations\n", len(cfg.Relations))
			return nil
		},
	}
	return cmd
}
