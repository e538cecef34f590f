package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/inkwell/internal/shared"
	"github.com/urfave/cli/v3"
)

// appCommand assembles the root command from the runner's registered
// subcommands.
func appCommand(runner *Runner) *cli.Command {
	return &cli.Command{
		Name:     "inkwell",
		Usage:    "Generate, track and download books from the terminal",
		Version:  "0.1.0",
		Commands: runner.register(),
	}
}

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	configPath := "config.toml"
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Logger:     logger,
	})

	app := appCommand(runner)

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
