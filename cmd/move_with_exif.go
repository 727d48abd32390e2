package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/pkimoto/gphoto-tidy/core"
)

func MoveWithExif(logger hclog.Logger) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &moveWithExif{
			logger: logger,
		}, nil
	}
}

type moveWithExif struct {
	logger hclog.Logger
}

func (c *moveWithExif) Synopsis() string {
	return "Moves files with a trustworthy capture date into one folder"
}

func (c *moveWithExif) Help() string {
	return `
Scans a folder tree for media files whose metadata already carries a
capture date and moves them into a single destination folder, renaming on
name collisions with a _1, _2, ... suffix. Files with no date stay put.
Anything already under the destination is ignored.

The default is a dry run: the plan is computed and counted but no file is
moved. The destination folder is only created when executing.

gphoto-tidy move-with-exif [options] <input_dir> <output_dir>

input_dir:  Root of the tree to scan
output_dir: Folder to collect dated files into

Options:
  --execute    Perform the moves (default is dry-run)
  --verbose    Per-file diagnostics
  --jobs N     Worker pool width (default: logical CPU count)`
}

func (c *moveWithExif) Run(args []string) int {
	fs := flag.NewFlagSet("move-with-exif", flag.ContinueOnError)
	execute := fs.Bool("execute", false, "perform moves")
	verbose := fs.Bool("verbose", false, "per-file diagnostics")
	jobs := fs.Int("jobs", 0, "worker pool width")
	if err := fs.Parse(args); err != nil {
		return cli.RunResultHelp
	}
	if fs.NArg() != 2 {
		return cli.RunResultHelp
	}
	inputDir := fs.Arg(0)
	outputDir := fs.Arg(1)

	if *verbose {
		c.logger.SetLevel(hclog.Debug)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Mode: %s\n", modeString(*execute))
	factory := func() (core.Metadata, error) {
		return core.NewExifTool(c.logger)
	}
	counters, err := core.Move(ctx, c.logger, factory, inputDir, outputDir, core.RunOptions{
		DryRun: !*execute,
		Jobs:   *jobs,
	}, os.Stdout)
	if err != nil {
		c.logger.Error(err.Error())
		return 1
	}

	fmt.Println(counters.Summary())
	return 0
}
