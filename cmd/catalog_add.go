package cmd

import (
	hclog "github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/pkimoto/gphoto-tidy/core"
)

func CatalogAdd(logger hclog.Logger) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &catalogAdd{
			logger: logger,
		}, nil
	}
}

type catalogAdd struct {
	logger hclog.Logger
}

func (c *catalogAdd) Synopsis() string {
	return "Records media files and their date sources in a catalog"
}

func (c *catalogAdd) Help() string {
	return `
Recursively scans a folder tree and records every media file in a catalog
database: its container class, size, and whether a capture-date source
(sidecar or folder name) exists for it. No media file is modified.

gphoto-tidy catalog add <dbPath> <rootPath>

dbPath:   Path to the catalog database (will create or append)
rootPath: Path of the root folder to scan`
}

func (c *catalogAdd) Run(args []string) int {
	if len(args) != 2 {
		return cli.RunResultHelp
	}
	dbPath := args[0]
	rootPath := args[1]
	if err := core.CatalogAdd(c.logger, dbPath, rootPath); err != nil {
		c.logger.Error(err.Error())
		return 1
	}
	return 0
}
