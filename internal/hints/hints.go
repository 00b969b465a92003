// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"path/filepath"
	"strings"
)

// userConfigDir is swappable for tests.
var userConfigDir = os.UserConfigDir

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config and the per-user config directory.
func ForConfigNotFound() string {
	hint := "use --config /path/to/file.yaml"
	if dir, err := userConfigDir(); err == nil {
		hint += " or create " + filepath.Join(dir, "go-mdstyle", "<name>.yaml")
	}
	return format(hint)
}

// ForTimeout returns a hint about slow image hosts.
func ForTimeout() string {
	return format("slow image hosts need a longer --timeout (or image.timeout)")
}

// ForReadMarkdown returns hints for unreadable inputs.
func ForReadMarkdown() string {
	return formatHints([]string{"check the file exists and is readable", "pass - to read stdin"})
}

// ForUsage returns a pointer to the help text.
func ForUsage() string {
	return format("run mdstyle --help for usage")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
