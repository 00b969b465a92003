package main

import (
	"context"
	"errors"
	"os"

	"github.com/alnah/go-mdstyle/internal/config"
	"github.com/alnah/go-mdstyle/internal/hints"
)

// Exit codes for the mdstyle CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // All files rendered
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags or config
	ExitIO      = 3 // Input not readable
)

// Sentinel errors for CLI operations.
var (
	ErrUsage        = errors.New("invalid usage")
	ErrReadMarkdown = errors.New("failed to read markdown")
	ErrRenderFailed = errors.New("some files failed to render")
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrUsage),
		errors.Is(err, config.ErrConfigNotFound),
		errors.Is(err, config.ErrConfigParse),
		errors.Is(err, config.ErrInvalidValue),
		errors.Is(err, config.ErrFieldTooLong),
		errors.Is(err, config.ErrEmptyConfigName):
		return ExitUsage
	case errors.Is(err, ErrReadMarkdown),
		errors.Is(err, os.ErrNotExist),
		errors.Is(err, os.ErrPermission):
		return ExitIO
	default:
		return ExitGeneral
	}
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound()
	case errors.Is(err, ErrReadMarkdown), errors.Is(err, os.ErrNotExist):
		return hints.ForReadMarkdown()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, ErrUsage):
		return hints.ForUsage()
	default:
		return ""
	}
}
