package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/gemusage/internal/config"
	"github.com/janekbaraniewski/gemusage/internal/pricing"
	"github.com/janekbaraniewski/gemusage/internal/telemetry"
	"github.com/janekbaraniewski/gemusage/internal/tui"
	"github.com/janekbaraniewski/gemusage/internal/watch"
)

func newLiveCommand(cfg config.Config, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "live [file]",
		Short: "Follow a telemetry file and show usage as it happens.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = telemetry.ExpandHome(args[0])
			} else {
				dirs := flags.dirs
				if len(dirs) == 0 {
					dirs = cfg.TelemetryDirs
				}
				path = newestTelemetryFile(dirs)
			}
			if path == "" {
				return fmt.Errorf("no telemetry file found; pass one explicitly or run the Gemini CLI with telemetry enabled")
			}

			catalog := pricing.NewCatalog(flags.offline || cfg.Offline)
			watcher := watch.New(path, cfg.PollInterval())

			program := tea.NewProgram(tui.NewModel(watcher, catalog, path), tea.WithAltScreen())
			if _, err := program.Run(); err != nil {
				watcher.Stop()
				return fmt.Errorf("live view: %w", err)
			}
			watcher.Stop()
			return nil
		},
	}
}

// newestTelemetryFile picks the most recently modified telemetry file, the
// one an active Gemini CLI session is most likely appending to.
func newestTelemetryFile(dirs []string) string {
	newest := ""
	var newestMod int64
	for _, path := range telemetry.CollectFiles(dirs) {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest = path
			newestMod = mod
		}
	}
	return newest
}
