// Package extract pulls printable text out of opaque storage-engine files.
// The binary structure of the files is never interpreted; extraction is the
// same best-effort pass strings(1) performs.
package extract

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
)

// minRunLength matches the strings(1) default: printable runs shorter than
// this are noise from the binary encoding, not recoverable text.
const minRunLength = 4

// Extractor returns the printable text content of a file.
type Extractor interface {
	Text(ctx context.Context, path string) (string, error)
}

// New returns the external strings-based extractor when the utility is on
// PATH, falling back to the built-in scanner otherwise.
func New() Extractor {
	if path, err := exec.LookPath("strings"); err == nil {
		return &CommandExtractor{binPath: path}
	}
	slog.Debug("strings utility not found, using built-in extractor")
	return runeExtractor{}
}

// CommandExtractor delegates extraction to the external strings utility.
type CommandExtractor struct {
	binPath string
}

// Text runs strings(1) against the file and returns its stdout.
func (e *CommandExtractor) Text(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, e.binPath, path)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("strings %s: %w", path, err)
	}
	return out.String(), nil
}

// runeExtractor scans for runs of printable ASCII, one run per output line.
// It exists so the scanner still works on hosts without binutils.
type runeExtractor struct{}

func (runeExtractor) Text(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var out bytes.Buffer
	var run []byte
	flush := func() {
		if len(run) >= minRunLength {
			out.Write(run)
			out.WriteByte('\n')
		}
		run = run[:0]
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	r := bufio.NewReader(f)
	for {
		b, err := r.ReadByte()
		if err != nil {
			break
		}
		if b >= 0x20 && b < 0x7f || b == '\t' {
			run = append(run, b)
			continue
		}
		flush()
	}
	flush()
	return out.String(), nil
}
