package tui

import (
	"fmt"
	"strings"
)

// StatusKind is the severity of a CLI status line.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusWarn
	StatusError
)

// Canonical short status messages used by the CLI.
const (
	MsgWarming   = "Warming cache…"
	MsgNoResults = "No results"
	MsgNoData    = "No language data"
)

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

// MsgWarmed summarizes one warmed cache key.
func MsgWarmed(key string, fromCache bool) string {
	if fromCache {
		return fmt.Sprintf("%s already fresh", key)
	}
	return fmt.Sprintf("%s refreshed", key)
}

// Status renders msg styled for its severity.
func Status(kind StatusKind, msg string) string {
	msg = strings.TrimSpace(msg)
	switch kind {
	case StatusSuccess:
		return StatusSuccessStyle.Render("✓ " + msg)
	case StatusWarn:
		return StatusWarnStyle.Render("! " + msg)
	case StatusError:
		return StatusErrorStyle.Render("✗ " + msg)
	default:
		return StatusInfoStyle.Render("• " + msg)
	}
}
