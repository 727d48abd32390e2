package main

import (
	"os"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	tidycmd "github.com/pkimoto/gphoto-tidy/cmd"
)

var appName = "gphoto-tidy"
var appVersion = "0.1.0"

func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  appName,
		Level: hclog.LevelFromString("INFO"),
	})

	c := cli.NewCLI(appName, appVersion)
	c.Args = os.Args[1:]
	c.Commands = map[string]cli.CommandFactory{
		"set-exif-from-metadata": tidycmd.SetExifFromMetadata(logger),
		"move-with-exif":         tidycmd.MoveWithExif(logger),
		"catalog add":            tidycmd.CatalogAdd(logger),
		"catalog stats":          tidycmd.CatalogStats(logger),
	}

	exitStatus, err := c.Run()
	if err != nil {
		logger.Error(err.Error())
	}

	os.Exit(exitStatus)
}
