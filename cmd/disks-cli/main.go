package main

import (
	"fmt"
	"os"

	"github.com/go-bond/disks/archive"
	"github.com/go-bond/disks/inspect"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var logger = logrus.New()

var _FlagConfig = &cli.StringFlag{
	Name:     "config",
	Usage:    "sets toml config file",
	Required: false,
}

var _FlagTrace = &cli.BoolFlag{
	Name:  "trace",
	Usage: "enables trace log",
}

var _FlagVerbose = &cli.BoolFlag{
	Name:    "verbose",
	Aliases: []string{"debug", "v"},
	Usage:   "enables debug log",
}

var _FlagQuiet = &cli.BoolFlag{
	Name:    "quiet",
	Aliases: []string{"q"},
	Usage:   "only warnings and errors",
}

func main() {
	app := newApp()

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "[Error] %s\n", err.Error())
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := inspect.NewInspectCLI(openArchive)
	app.Flags = append(app.Flags, _FlagConfig, _FlagTrace, _FlagVerbose, _FlagQuiet)
	app.Commands = append(app.Commands, ServeCommand)

	inspectBefore := app.Before
	app.Before = func(ctx *cli.Context) error {
		cfg, err := LoadConfig(ctx.String(_FlagConfig.Name))
		if err != nil {
			return err
		}

		if err = cfg.Apply(ctx); err != nil {
			return err
		}

		level, err := cfg.Level(ctx)
		if err != nil {
			return err
		}
		setupLogger(level)

		ctx.App.Metadata[_MetadataConfig] = cfg
		return inspectBefore(ctx)
	}

	return app
}

func setupLogger(level logrus.Level) {
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetOutput(os.Stderr)
	logger.SetLevel(level)
}

func openArchive(dir string) (inspect.Inspect, error) {
	a, err := archive.Open(dir, archive.DefaultOptions())
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"dir":     dir,
		"version": a.Version(),
	}).Debug("opened archive")

	return inspect.NewInspect(a)
}
