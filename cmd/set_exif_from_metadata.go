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

func SetExifFromMetadata(logger hclog.Logger) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &setExifFromMetadata{
			logger: logger,
		}, nil
	}
}

type setExifFromMetadata struct {
	logger hclog.Logger
}

func (c *setExifFromMetadata) Synopsis() string {
	return "Sets capture dates from Takeout sidecars and folder names"
}

func (c *setExifFromMetadata) Help() string {
	return `
Scans a folder tree for media files, resolves each file's capture date from
its Takeout sidecar JSON (or, failing that, from an enclosing folder name
that encodes a date), and writes the date into the file's own metadata.
Files that already carry DateTimeOriginal are left untouched.

The default is a dry run: decisions are made and counted but nothing on
disk changes.

gphoto-tidy set-exif-from-metadata [options] <input_dir>

input_dir: Root of the tree to process

Options:
  --execute    Apply the changes (default is dry-run)
  --verbose    Per-file diagnostics
  --jobs N     Worker pool width (default: logical CPU count)`
}

func (c *setExifFromMetadata) Run(args []string) int {
	fs := flag.NewFlagSet("set-exif-from-metadata", flag.ContinueOnError)
	execute := fs.Bool("execute", false, "apply changes")
	verbose := fs.Bool("verbose", false, "per-file diagnostics")
	jobs := fs.Int("jobs", 0, "worker pool width")
	if err := fs.Parse(args); err != nil {
		return cli.RunResultHelp
	}
	if fs.NArg() != 1 {
		return cli.RunResultHelp
	}
	inputDir := fs.Arg(0)

	if *verbose {
		c.logger.SetLevel(hclog.Debug)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Mode: %s\n", modeString(*execute))
	factory := func() (core.Metadata, error) {
		return core.NewExifTool(c.logger)
	}
	counters, err := core.Fill(ctx, c.logger, factory, inputDir, core.RunOptions{
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

func modeString(execute bool) string {
	if execute {
		return "execute"
	}
	return "dry-run"
}
