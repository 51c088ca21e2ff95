package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/gemusage/internal/config"
	"github.com/janekbaraniewski/gemusage/internal/version"
)

type rootFlags struct {
	since   string
	until   string
	offline bool
	dirs    []string
	jsonOut bool
	debug   bool
}

func main() {
	flags := &rootFlags{}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		fmt.Fprintf(os.Stderr, "Config path: %s\n", config.ConfigPath())
		os.Exit(1)
	}

	root := cobra.Command{
		Use:   "gemusage",
		Short: "gemusage reports token usage and spend for the Gemini CLI.",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if flags.debug || os.Getenv("GEMUSAGE_DEBUG") != "" {
				log.SetOutput(os.Stderr)
			} else {
				log.SetOutput(io.Discard)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, cfg, flags, reportDaily)
		},
	}

	root.PersistentFlags().StringVar(&flags.since, "since", "", "include buckets on or after this date (YYYYMMDD or YYYY-MM-DD)")
	root.PersistentFlags().StringVar(&flags.until, "until", "", "include buckets on or before this date (YYYYMMDD or YYYY-MM-DD)")
	root.PersistentFlags().BoolVar(&flags.offline, "offline", false, "skip the pricing fetch and use the bundled snapshot")
	root.PersistentFlags().StringArrayVar(&flags.dirs, "dir", nil, "telemetry directory to scan (repeatable; default: Gemini CLI locations)")
	root.PersistentFlags().BoolVar(&flags.jsonOut, "json", false, "emit the report as JSON")
	root.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging")

	root.AddCommand(newDailyCommand(cfg, flags))
	root.AddCommand(newMonthlyCommand(cfg, flags))
	root.AddCommand(newLiveCommand(cfg, flags))
	root.AddCommand(newVersionCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the gemusage version.",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
