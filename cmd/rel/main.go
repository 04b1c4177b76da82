package main

import (
	"os"

	"github.com/featurebasedb/rel/cmd"
	"github.com/featurebasedb/rel/logger"
)

func main() {
	rc := cmd.NewRootCommand(os.Stdout, logger.NewStandardLogger(os.Stderr))
	if err := rc.Execute(); err != nil {
		os.Exit(1)
	}
}
