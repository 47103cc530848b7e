package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cnosuke/redirect-checker/config"
	"github.com/cnosuke/redirect-checker/logger"
	"github.com/cnosuke/redirect-checker/runner"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var (
	// Version and Revision are replaced when building with -ldflags.
	Version  = "0.0.1"
	Revision = "xxx"

	Name  = "redirect-checker"
	Usage = "Verify that legacy URLs redirect to their expected targets"
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s (%s)", Version, Revision)
	app.Name = Name
	app.Usage = Usage

	runFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to the config file",
		},
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Usage:   "dataset of legacy URLs and expected targets (.xlsx or .csv)",
		},
		&cli.StringFlag{
			Name:  "sheet",
			Usage: "workbook sheet to read (default: first sheet)",
		},
		&cli.StringFlag{
			Name:  "reports-dir",
			Usage: "directory the HTML report is written to",
		},
		&cli.StringFlag{
			Name:  "engine",
			Usage: "navigation engine: rod (Chrome) or http",
		},
		&cli.BoolFlag{
			Name:  "show-browser",
			Usage: "run Chrome with a visible window",
		},
		&cli.BoolFlag{
			Name:  "markdown",
			Usage: "also write a Markdown copy of the report",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging",
		},
	}

	app.Flags = runFlags
	app.Action = run
	app.Commands = []*cli.Command{
		{
			Name:   "run",
			Usage:  "Check every redirection in the dataset and write a report",
			Flags:  runFlags,
			Action: run,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return errors.Wrap(err, "failed to load configuration file")
	}
	applyFlags(c, cfg)

	if err := logger.InitLogger(cfg.Log.Debug, cfg.Log.Path); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	defer logger.Sync()

	zap.S().Infow("starting redirect checker",
		"version", c.App.Version,
		"input", cfg.Check.InputPath,
		"engine", cfg.Browser.Engine)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runner.Execute(ctx, cfg, os.Stdout); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

// applyFlags lets explicitly set command-line flags override the loaded configuration.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("input") {
		cfg.Check.InputPath = c.String("input")
	}
	if c.IsSet("sheet") {
		cfg.Check.Sheet = c.String("sheet")
	}
	if c.IsSet("reports-dir") {
		cfg.Report.Dir = c.String("reports-dir")
	}
	if c.IsSet("engine") {
		cfg.Browser.Engine = c.String("engine")
	}
	if c.IsSet("show-browser") {
		cfg.Browser.Show = c.Bool("show-browser")
	}
	if c.IsSet("markdown") {
		cfg.Report.Markdown = c.Bool("markdown")
	}
	if c.IsSet("debug") {
		cfg.Log.Debug = c.Bool("debug")
	}
}
