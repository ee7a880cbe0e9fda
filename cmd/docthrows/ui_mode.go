package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	mode := uiMode(strings.ToLower(strings.TrimSpace(value)))
	switch mode {
	case "":
		return uiModeAuto, nil
	case uiModeAuto, uiModeOn, uiModeOff:
		return mode, nil
	}
	return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

// progressEnabled decides whether the progress view runs for cmd. In auto
// mode both output streams must be terminals.
func progressEnabled(cmd *cobra.Command, mode uiMode) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	}
	return writerIsTerminal(cmd.OutOrStdout()) && writerIsTerminal(cmd.ErrOrStderr())
}

func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}
