package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

var (
	keyFlag = &cli.StringFlag{
		Name:    "key",
		Aliases: []string{"k"},
		Usage:   "Planet API key",
		Sources: cli.EnvVars("PL_API_KEY"),
	}
	timeoutFlag = &cli.DurationFlag{
		Name:    "timeout",
		Aliases: []string{"t"},
		Usage:   "HTTP client timeout (e.g. 30s, 1m)",
		Value:   60 * time.Second,
	}
	verboseFlag = &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Enable debug logging",
	}
)

func main() {
	// Best effort; a missing .env is fine.
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "planet-cli",
		Usage: "Search and download clipped Planet imagery",
		Flags: []cli.Flag{keyFlag, timeoutFlag, verboseFlag},
		Commands: []*cli.Command{
			newSearchCommand(),
			newDownloadCommand(),
			newAOICommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
