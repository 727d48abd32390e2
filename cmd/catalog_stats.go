package cmd

import (
	hclog "github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/pkimoto/gphoto-tidy/core"
)

func CatalogStats(logger hclog.Logger) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &catalogStats{
			logger: logger,
		}, nil
	}
}

type catalogStats struct {
	logger hclog.Logger
}

func (c *catalogStats) Synopsis() string {
	return "Shows catalog counts by container class and date source"
}

func (c *catalogStats) Help() string {
	return `
Prints a summary of a catalog database: how many files of each container
class were recorded, where their capture dates come from, and how many
still have no date source at all.

gphoto-tidy catalog stats <dbPath>

dbPath: Path to the catalog database`
}

func (c *catalogStats) Run(args []string) int {
	if len(args) != 1 {
		return cli.RunResultHelp
	}
	dbPath := args[0]
	if err := core.CatalogStats(c.logger, dbPath); err != nil {
		c.logger.Error(err.Error())
		return 1
	}
	return 0
}
