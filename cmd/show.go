package cmd

import (
	"fmt"
	"io"

	"github.com/featurebasedb/rel/config"
	"github.com/featurebasedb/rel/logger"
	"github.com/spf13/cobra"
)

func newShowCommand(stdout io.Writer, logdest logger.Logger) *cobra.Command {
	var ordered bool

	cmd := &cobra.Command{
		Use:   "show [flags] CONFIG RELATION",
		Short: "Dump a relation's tuples.",
		Long: `
Builds the data layer without reapplying seeds and prints the named
relation's tuples.
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("config file path and relation name required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}

			registry, closeFn, err := config.Build(cfg, logdest, config.BuildOptions{SkipSeeds: true})
			if err != nil {
				return err
			}
			defer closeFn()

			relation, err := registry.Relation(args[1])
			if err != nil {
				return err
			}
			if ordered {
				relation = relation.OrderByPrimaryKey()
			}

			tuples, err := relation.Tuples()
			if err != nil {
				return err
			}
			for _, t := range tuples {
				fmt.Fprintln(stdout, t.String())
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&ordered, "ordered", false, "Order output by primary key rather than natural order")

	return cmd
}
