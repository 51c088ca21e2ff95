package telemetry

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var telemetryExts = map[string]bool{
	".log":  true,
	".json": true,
}

// DefaultTelemetryDirs returns the Gemini CLI locations scanned when no
// override is configured.
func DefaultTelemetryDirs() []string {
	home, _ := os.UserHomeDir()
	if strings.TrimSpace(home) == "" {
		return nil
	}
	return []string{
		filepath.Join(home, ".gemini", "telemetry"),
		filepath.Join(home, ".gemini", "tmp"),
	}
}

// CollectFiles walks the given roots (or the defaults when empty) and returns
// every telemetry file found, deduplicated and sorted. Missing roots are
// skipped; an empty result is not an error.
func CollectFiles(roots []string) []string {
	if len(roots) == 0 {
		roots = DefaultTelemetryDirs()
	}

	var files []string
	for _, root := range roots {
		root = ExpandHome(root)
		if root == "" {
			continue
		}
		info, err := os.Stat(root)
		if err != nil || info == nil {
			continue
		}
		if !info.IsDir() {
			if telemetryExts[strings.ToLower(filepath.Ext(root))] {
				files = append(files, root)
			}
			continue
		}
		_ = filepath.Walk(root, func(path string, fi os.FileInfo, walkErr error) error {
			if walkErr != nil || fi == nil || fi.IsDir() {
				return nil
			}
			if telemetryExts[strings.ToLower(filepath.Ext(path))] {
				files = append(files, path)
			}
			return nil
		})
	}
	return uniqueStrings(files)
}

// ReadAll parses every telemetry file under the given roots. Unreadable files
// are skipped so one bad file never hides the rest.
func ReadAll(roots []string) ([]UsageEvent, DropStats) {
	var (
		events []UsageEvent
		stats  DropStats
	)
	for _, path := range CollectFiles(roots) {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		parsed, fileStats := Parse(string(data))
		events = append(events, parsed...)
		stats.add(fileStats)
	}
	return events, stats
}

// ExpandHome resolves a leading ~ against the user home directory.
func ExpandHome(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err == nil && home != "" {
			if path == "~" {
				return home
			}
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, item := range in {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}
