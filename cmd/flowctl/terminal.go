package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dukex/docflow/pkg/views"
)

// terminal implements the view ports on a line based terminal.
type terminal struct {
	in     *bufio.Reader
	out    io.Writer
	logger *slog.Logger

	assumeYes bool
	outDir    string
}

var (
	_ views.Notifier   = (*terminal)(nil)
	_ views.Confirmer  = (*terminal)(nil)
	_ views.Downloader = (*terminal)(nil)
	_ views.Navigator  = (*terminal)(nil)
)

func newTerminal(in io.Reader, out io.Writer, logger *slog.Logger) *terminal {
	return &terminal{
		in:     bufio.NewReader(in),
		out:    out,
		logger: logger,
		outDir: ".",
	}
}

func (t *terminal) ports() views.Ports {
	return views.Ports{
		Notifier:   t,
		Confirmer:  t,
		Downloader: t,
		Navigator:  t,
	}
}

func (t *terminal) Alert(message string) {
	fmt.Fprintln(t.out, message)
}

// Confirm reads a y/yes answer. Anything else, including end of input, declines.
func (t *terminal) Confirm(prompt string) bool {
	if t.assumeYes {
		return true
	}

	fmt.Fprintf(t.out, "%s [y/N]: ", prompt)

	answer, err := t.in.ReadString('\n')
	if err != nil && answer == "" {
		fmt.Fprintln(t.out)

		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// Download writes the file into the output directory.
func (t *terminal) Download(fileName string, data []byte) error {
	if err := os.MkdirAll(t.outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(t.outDir, filepath.Base(fileName))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Fprintf(t.out, "Exported to %s\n", path)

	return nil
}

func (t *terminal) ToList() {
	t.logger.Debug("Navigated to list")
}

func (t *terminal) ToEdit(id string) {
	t.logger.Debug("Navigated to editor", "flow_id", id)
}
