package cmd

import (
	"fmt"
	"io"

	"github.com/featurebasedb/rel/config"
	"github.com/featurebasedb/rel/logger"
	"github.com/spf13/cobra"
)

func newSeedCommand(stdout io.Writer, logdest logger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed [flags] CONFIG",
		Short: "Apply a config's seed tuples to the configured store.",
		Long: `
Builds every relation in the config, applying each relation's seed block to
the configured storage backend. Seeding a bolt store twice fails on the
second run's primary-key collisions.
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

			registry, closeFn, err := config.Build(cfg, logdest, config.BuildOptions{})
			if err != nil {
				return err
			}
			defer closeFn()

			for _, name := range registry.RelationNames() {
				fmt.Fprintf(stdout, "seeded relation %s\n", name)
			}
			return nil
		},
	}
	return cmd
}
