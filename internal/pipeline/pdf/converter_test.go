package pdf

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certificate-pipeline/internal/common/config"
	apperrors "certificate-pipeline/internal/common/errors"
	"certificate-pipeline/internal/common/logger"
)

type fakeRunner struct {
	stderr string
	err    error
	// output is written to the pdf path (last argument) on success.
	output []byte
	// delay simulates a slow converter.
	delay time.Duration

	gotArgs []string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	f.gotArgs = args

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return f.stderr, f.err
	}

	pdfPath := args[len(args)-1]
	if err := os.WriteFile(pdfPath, f.output, 0o644); err != nil {
		return "", err
	}
	return f.stderr, nil
}

func testConfig() config.PDFConfig {
	return config.PDFConfig{
		TimeoutMs:      30000,
		PageSize:       "A4",
		Orientation:    "Landscape",
		MarginInches:   "0.3in",
		JavascriptWait: 200,
	}
}

func TestConvert_Success(t *testing.T) {
	runner := &fakeRunner{output: []byte("%PDF-1.4 fake")}
	c := NewWithRunner(testConfig(), logger.NewNoOpLogger(), "/usr/bin/wkhtmltopdf", runner)

	out, err := c.Convert(context.Background(), "<html></html>")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 fake"), out)
}

func TestConvert_PassesLayoutFlags(t *testing.T) {
	runner := &fakeRunner{output: []byte("pdf")}
	c := NewWithRunner(testConfig(), logger.NewNoOpLogger(), "/usr/bin/wkhtmltopdf", runner)

	_, err := c.Convert(context.Background(), "<html></html>")
	require.NoError(t, err)

	assert.Contains(t, runner.gotArgs, "--orientation")
	assert.Contains(t, runner.gotArgs, "Landscape")
	assert.Contains(t, runner.gotArgs, "--enable-local-file-access")
	assert.Contains(t, runner.gotArgs, "--disable-smart-shrinking")
}

func TestConvert_Timeout(t *testing.T) {
	cfg := testConfig()
	cfg.TimeoutMs = 20

	runner := &fakeRunner{delay: time.Second}
	c := NewWithRunner(cfg, logger.NewNoOpLogger(), "/usr/bin/wkhtmltopdf", runner)

	_, err := c.Convert(context.Background(), "<html></html>")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeRenderTimeout, apperrors.CodeOf(err))
}

func TestConvert_BinaryMissing(t *testing.T) {
	c := NewWithRunner(testConfig(), logger.NewNoOpLogger(), "", &fakeRunner{})

	_, err := c.Convert(context.Background(), "<html></html>")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeRenderUnavailable, apperrors.CodeOf(err))
	assert.False(t, c.Available())
}

func TestConvert_ConverterError(t *testing.T) {
	runner := &fakeRunner{stderr: "Exit with code 1", err: errors.New("exit status 1")}
	c := NewWithRunner(testConfig(), logger.NewNoOpLogger(), "/usr/bin/wkhtmltopdf", runner)

	_, err := c.Convert(context.Background(), "<html></html>")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeRenderFailed, apperrors.CodeOf(err))
}

func TestConvert_EmptyOutput(t *testing.T) {
	runner := &fakeRunner{output: nil}
	c := NewWithRunner(testConfig(), logger.NewNoOpLogger(), "/usr/bin/wkhtmltopdf", runner)

	_, err := c.Convert(context.Background(), "<html></html>")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeRenderFailed, apperrors.CodeOf(err))
}

func TestDiscoverBinary_PrefersConfiguredPath(t *testing.T) {
	dir := t.TempDir()
	bin := dir + "/wkhtmltopdf"
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh"), 0o755))

	cfg := testConfig()
	cfg.BinaryPath = bin

	c := New(cfg, logger.NewNoOpLogger())
	assert.Equal(t, bin, c.binary)
}
