package main

import (
	"fmt"
	"io"
	"strings"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

// readUIMode parses --ui. Case and surrounding space are ignored; empty means auto.
func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// shouldUseTUI decides whether to show the progress view on w. In auto mode
// it is only shown for pretty output on a terminal.
func shouldUseTUI(mode uiMode, w io.Writer, format string) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return format == "pretty" && isTerminal(w)
	}
}
