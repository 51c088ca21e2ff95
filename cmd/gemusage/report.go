package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/gemusage/internal/aggregate"
	"github.com/janekbaraniewski/gemusage/internal/appupdate"
	"github.com/janekbaraniewski/gemusage/internal/config"
	"github.com/janekbaraniewski/gemusage/internal/pricing"
	"github.com/janekbaraniewski/gemusage/internal/render"
	"github.com/janekbaraniewski/gemusage/internal/telemetry"
	"github.com/janekbaraniewski/gemusage/internal/version"
)

type reportKind int

const (
	reportDaily reportKind = iota
	reportMonthly
)

func newDailyCommand(cfg config.Config, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "daily",
		Short: "Show usage and spend per calendar day.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, cfg, flags, reportDaily)
		},
	}
}

func newMonthlyCommand(cfg config.Config, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "monthly",
		Short: "Show usage and spend per calendar month.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, cfg, flags, reportMonthly)
		},
	}
}

func runReport(cmd *cobra.Command, cfg config.Config, flags *rootFlags, kind reportKind) error {
	dirs := flags.dirs
	if len(dirs) == 0 {
		dirs = cfg.TelemetryDirs
	}

	events, drops := telemetry.ReadAll(dirs)
	if drops.Total() > 0 {
		log.Printf("telemetry: dropped %d records (invalid json: %d, no attributes: %d, other events: %d, invalid: %d)",
			drops.Total(), drops.InvalidJSON, drops.NoAttributes, drops.IgnoredEvent, drops.InvalidRecord)
	}

	catalog := pricing.NewCatalog(flags.offline || cfg.Offline)
	records := aggregate.ExtractUsage(events, catalog)

	var (
		buckets []aggregate.Bucket
		title   string
	)
	switch kind {
	case reportMonthly:
		buckets = aggregate.RollupMonthly(records, flags.since, flags.until)
		title = "Month"
	default:
		buckets = aggregate.RollupDaily(records, flags.since, flags.until)
		title = "Date"
	}

	if flags.jsonOut {
		return render.JSON(cmd.OutOrStdout(), buckets)
	}

	cmd.Print(render.Table(title, buckets))
	maybePrintUpdateHint(cmd.Context(), cfg)
	return nil
}

// maybePrintUpdateHint runs a short, best-effort release check after a report.
// Any failure is ignored.
func maybePrintUpdateHint(ctx context.Context, cfg config.Config) {
	if !cfg.CheckUpdates || os.Getenv("GEMUSAGE_NO_UPDATE_CHECK") != "" {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := appupdate.Check(ctx, appupdate.CheckOptions{CurrentVersion: version.Version})
	if err != nil || !result.UpdateAvailable {
		return
	}
	fmt.Fprintf(os.Stderr, "\nUpdate available: %s -> %s\n  go install github.com/janekbaraniewski/gemusage/cmd/gemusage@latest\n",
		result.CurrentVersion, result.LatestVersion)
}
