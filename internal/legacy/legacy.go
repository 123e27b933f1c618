// Package legacy converts binary PowerPoint (.ppt) decks to .pptx with a
// headless LibreOffice so they can go through the normal conversion path.
package legacy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/richardlehane/mscfb"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single conversion when none is configured.
const DefaultTimeout = 60 * time.Second

// pptStream is the stream every binary PowerPoint compound file carries.
const pptStream = "PowerPoint Document"

var (
	// ErrToolNotFound indicates no LibreOffice executable could be located.
	ErrToolNotFound = errors.New("LibreOffice executable not found")
	// ErrNoOutput indicates the tool exited cleanly but wrote no .pptx.
	ErrNoOutput = errors.New("conversion produced no output file")
	// ErrNotLegacyDeck indicates the input is not a binary PowerPoint file.
	ErrNotLegacyDeck = errors.New("not a legacy PowerPoint file")
)

// ToolError reports a failed or timed out LibreOffice run.
type ToolError struct {
	// Output is the combined stdout/stderr of the tool.
	Output string
	Err    error
}

func (e *ToolError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("LibreOffice conversion failed: %v", e.Err)
	}
	return fmt.Sprintf("LibreOffice conversion failed: %v: %s", e.Err, out)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// Sniff checks that r holds a compound file with a PowerPoint Document stream.
func Sniff(r io.ReaderAt) error {
	doc, err := mscfb.New(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotLegacyDeck, err)
	}
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if entry.Name == pptStream {
			return nil
		}
	}
	return fmt.Errorf("%w: no %q stream", ErrNotLegacyDeck, pptStream)
}

// Converter runs LibreOffice to turn .ppt bytes into .pptx bytes.
type Converter struct {
	// Path is the executable; empty searches PATH for soffice, then libreoffice.
	Path    string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// NewConverter returns a Converter; a non-positive timeout means DefaultTimeout.
func NewConverter(path string, timeout time.Duration, log zerolog.Logger) *Converter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Converter{Path: path, Timeout: timeout, Logger: log}
}

// executable resolves the LibreOffice binary.
func (c *Converter) executable() (string, error) {
	candidates := []string{"soffice", "libreoffice"}
	if c.Path != "" {
		candidates = []string{c.Path}
	}
	for _, name := range candidates {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w (tried %s)", ErrToolNotFound, strings.Join(candidates, ", "))
}

// Convert writes data to a temporary directory, converts it and returns the
// resulting .pptx bytes. name is the original file name, used for the
// temporary file only.
func (c *Converter) Convert(ctx context.Context, data []byte, name string) ([]byte, error) {
	if err := Sniff(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	exe, err := c.executable()
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "matrixplan-legacy-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	base := tempBase(name)
	inPath := filepath.Join(dir, base+".ppt")
	outDir := filepath.Join(dir, "out")
	if err := os.WriteFile(inPath, data, 0o600); err != nil {
		return nil, fmt.Errorf("write input: %w", err)
	}
	if err := os.Mkdir(outDir, 0o700); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, exe, "--headless", "--norestore", "--nolockcheck",
		"--convert-to", "pptx", "--outdir", outDir, inPath)
	output, err := cmd.CombinedOutput()
	c.Logger.Debug().Str("tool", exe).Dur("elapsed", time.Since(start)).Bytes("output", output).Msg("legacy conversion finished")
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		return nil, &ToolError{Output: string(output), Err: fmt.Errorf("timed out after %v: %w", c.Timeout, ctxErr)}
	}
	if err != nil {
		return nil, &ToolError{Output: string(output), Err: err}
	}

	result, err := os.ReadFile(filepath.Join(outDir, base+".pptx"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoOutput, strings.TrimSpace(string(output)))
	}
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}
	return result, nil
}

// tempBase reduces an uploaded file name to a safe base name without extension.
func tempBase(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, base)
	if strings.Trim(base, "_") == "" {
		return "deck"
	}
	return base
}
