package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "sedad",
		Usage: "Run in-process SEDA channels backed by the shared queue registry",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Produce heartbeats onto each channel and log what the consumers receive",
				Flags:  runFlags(),
				Action: run,
			},
		},
	}
	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
