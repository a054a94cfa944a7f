// Package pdf turns certificate HTML into a PDF by invoking wkhtmltopdf.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"certificate-pipeline/internal/common/config"
	apperrors "certificate-pipeline/internal/common/errors"
	"certificate-pipeline/internal/common/logger"
)

// DefaultTimeout bounds a single conversion. wkhtmltopdf can hang on broken
// asset references, so the process is killed hard at the deadline.
const DefaultTimeout = 30 * time.Second

// wellKnownPaths are checked before falling back to PATH lookup.
var wellKnownPaths = []string{
	"/usr/bin/wkhtmltopdf",
	"/usr/local/bin/wkhtmltopdf",
}

// CommandRunner abstracts command execution to enable testing without real
// subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec. The context deadline
// kills the child process when exceeded.
type ExecRunner struct{}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stderr.String(), err
}

// Converter runs wkhtmltopdf against rendered certificate HTML.
type Converter struct {
	binary  string
	timeout time.Duration
	opts    config.PDFConfig
	runner  CommandRunner
	log     logger.Logger
}

// New locates the converter binary and builds a Converter. A configured
// binary_path wins; otherwise well-known install locations are probed, then
// PATH. A missing binary is not an error here so the pipeline can start and
// report RENDER_UNAVAILABLE per attempt instead of crashing at boot.
func New(cfg config.PDFConfig, log logger.Logger) *Converter {
	timeout := config.GetDuration(cfg.TimeoutMs)
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Converter{
		binary:  discoverBinary(cfg),
		timeout: timeout,
		opts:    cfg,
		runner:  &ExecRunner{},
		log:     log,
	}
}

// NewWithRunner is the test seam.
func NewWithRunner(cfg config.PDFConfig, log logger.Logger, binary string, runner CommandRunner) *Converter {
	c := New(cfg, log)
	c.binary = binary
	c.runner = runner
	return c
}

func discoverBinary(cfg config.PDFConfig) string {
	if cfg.BinaryPath != "" {
		if _, err := os.Stat(cfg.BinaryPath); err == nil {
			return cfg.BinaryPath
		}
	}

	candidates := append([]string{}, cfg.FallbackPaths...)
	candidates = append(candidates, wellKnownPaths...)
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	if path, err := exec.LookPath("wkhtmltopdf"); err == nil {
		return path
	}
	return ""
}

// Available reports whether a converter binary was found.
func (c *Converter) Available() bool {
	return c.binary != ""
}

// Convert renders html to PDF bytes. The parent context is honored on top of
// the converter's own timeout.
func (c *Converter) Convert(ctx context.Context, html string) ([]byte, error) {
	if c.binary == "" {
		return nil, apperrors.NewRenderUnavailableError("wkhtmltopdf not found in configured or well-known paths")
	}

	htmlPath, cleanupHTML, err := writeTempFile("certificate-*.html", html)
	if err != nil {
		return nil, apperrors.NewRenderFailedError(err)
	}
	defer cleanupHTML()

	pdfFile, err := os.CreateTemp("", "certificate-*.pdf")
	if err != nil {
		return nil, apperrors.NewRenderFailedError(err)
	}
	pdfPath := pdfFile.Name()
	pdfFile.Close()
	defer os.Remove(pdfPath)

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := c.args(htmlPath, pdfPath)
	start := time.Now()
	stderr, err := c.runner.Run(runCtx, c.binary, args...)
	elapsed := time.Since(start)

	if runCtx.Err() == context.DeadlineExceeded {
		c.log.Error("pdf conversion timed out", map[string]interface{}{
			"binary":  c.binary,
			"timeout": c.timeout.String(),
			"elapsed": elapsed.String(),
		})
		return nil, apperrors.NewRenderTimeoutError(c.timeout)
	}
	if err != nil {
		c.log.Error("pdf conversion failed", map[string]interface{}{
			"binary": c.binary,
			"stderr": stderr,
		})
		return nil, apperrors.NewRenderFailedError(fmt.Errorf("%s: %w", stderr, err))
	}

	out, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, apperrors.NewRenderFailedError(err)
	}
	if len(out) == 0 {
		return nil, apperrors.NewRenderFailedError(fmt.Errorf("converter produced an empty file"))
	}

	c.log.Debug("pdf conversion complete", map[string]interface{}{
		"bytes":   len(out),
		"elapsed": elapsed.String(),
	})
	return out, nil
}

// args builds the wkhtmltopdf command line. Local file access is required for
// the logo and signature images referenced by file:// URIs.
func (c *Converter) args(htmlPath, pdfPath string) []string {
	margin := c.opts.MarginInches

	return []string{
		"--page-size", c.opts.PageSize,
		"--orientation", c.opts.Orientation,
		"--margin-top", margin,
		"--margin-right", margin,
		"--margin-bottom", margin,
		"--margin-left", margin,
		"--encoding", "UTF-8",
		"--no-outline",
		"--enable-local-file-access",
		"--print-media-type",
		"--disable-smart-shrinking",
		"--load-error-handling", "ignore",
		"--javascript-delay", fmt.Sprintf("%d", c.opts.JavascriptWait),
		htmlPath,
		pdfPath,
	}
}

// writeTempFile creates a temporary file with the given content.
// Returns the file path and a cleanup function to remove the file.
func writeTempFile(pattern, content string) (path string, cleanup func(), err error) {
	tmpFile, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}

	path = tmpFile.Name()
	cleanup = func() { _ = os.Remove(path) }

	if _, err := tmpFile.WriteString(content); err != nil {
		_ = tmpFile.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing temp file: %w", err)
	}

	return path, cleanup, nil
}
