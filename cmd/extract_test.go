package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visionocr/internal/config"
	"visionocr/internal/ocr"
)

type stubDetector struct {
	result *ocr.Result
	err    error
}

func (s *stubDetector) DetectDocumentText(ctx context.Context, content []byte) (*ocr.Result, error) {
	return s.result, s.err
}

func (s *stubDetector) Close() error { return nil }

// setupCommand isolates the package-level command state for one test and
// returns the buffer receiving stdout plus the options each detector was built with.
func setupCommand(t *testing.T, detector ocr.TextDetector) (*bytes.Buffer, *[]ocr.Options) {
	t.Helper()

	for _, key := range []string{"OCR_IMAGE_PATH", "OCR_PROVIDER", "OCR_TIMEOUT", "GOOGLE_CLOUD_PROJECT", "DOCUMENT_AI_PROCESSOR_ID"} {
		t.Setenv(key, "")
	}
	t.Setenv(config.CredentialsEnvVar, "key.json")

	var built []ocr.Options
	previous := newDetector
	newDetector = func(ctx context.Context, opts ocr.Options) (ocr.TextDetector, error) {
		built = append(built, opts)
		return detector, nil
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)

	t.Cleanup(func() {
		newDetector = previous
		rootCmd.SetOut(nil)
		resetFlags()
	})
	resetFlags()

	return &out, &built
}

func resetFlags() {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.Flags().VisitAll(reset)
	rootCmd.PersistentFlags().VisitAll(reset)
	serveCmd.Flags().VisitAll(reset)
}

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.jpg")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xd8, 0xff}, 0o644))
	return path
}

func TestRun_PrintsCredentialsAndText(t *testing.T) {
	out, built := setupCommand(t, &stubDetector{result: &ocr.Result{Text: "Hello World"}})

	err := run(config.Load(), []string{"--image", writeImage(t)})
	require.NoError(t, err)
	assert.Equal(t, "CREDS: key.json\nHello World\n", out.String())
	require.Len(t, *built, 1)
	assert.Equal(t, ocr.ProviderVision, (*built)[0].Provider)
}

func TestRun_MissingImageFailsBeforeRemoteCall(t *testing.T) {
	out, built := setupCommand(t, &stubDetector{result: &ocr.Result{Text: "unused"}})

	err := run(config.Load(), []string{"--image", filepath.Join(t.TempDir(), "image.jpg")})
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Empty(t, *built)
	assert.Equal(t, "CREDS: key.json\n", out.String())

	var stderr bytes.Buffer
	reportError(&stderr, err)
	assert.Contains(t, stderr.String(), "Error: failed to read image file:")
}

func TestRun_RemoteErrorIsReportedVerbatim(t *testing.T) {
	out, _ := setupCommand(t, &stubDetector{err: &ocr.RemoteError{Code: 3, Message: "Bad image data."}})

	err := run(config.Load(), []string{"--image", writeImage(t)})
	require.Error(t, err)
	assert.Equal(t, "CREDS: key.json\n", out.String(), "no text line on failure")

	var stderr bytes.Buffer
	reportError(&stderr, err)
	assert.Equal(t, "Error: Bad image data.\n", stderr.String())
}

func TestRun_ProviderFlagOverridesEnvironment(t *testing.T) {
	_, built := setupCommand(t, &stubDetector{result: &ocr.Result{Text: "ok"}})
	t.Setenv("OCR_PROVIDER", ocr.ProviderDocumentAI)

	err := run(config.Load(), []string{"--image", writeImage(t), "--provider", ocr.ProviderVision})
	require.NoError(t, err)
	require.Len(t, *built, 1)
	assert.Equal(t, ocr.ProviderVision, (*built)[0].Provider)
}

func TestRun_TimeoutFlagOverridesInvalidEnvironment(t *testing.T) {
	_, _ = setupCommand(t, &stubDetector{result: &ocr.Result{Text: "ok"}})
	t.Setenv("OCR_TIMEOUT", "soon")

	c := config.Load()
	require.NoError(t, run(c, []string{"--image", writeImage(t), "--timeout", "30"}))
	assert.Equal(t, 30, c.TimeoutSeconds)
}

func TestRun_InvalidEnvironmentWithoutOverride(t *testing.T) {
	out, built := setupCommand(t, &stubDetector{result: &ocr.Result{Text: "ok"}})
	t.Setenv("OCR_PROVIDER", ocr.ProviderDocumentAI)

	err := run(config.Load(), []string{"--image", writeImage(t)})
	assert.ErrorContains(t, err, "GOOGLE_CLOUD_PROJECT is required")
	assert.Empty(t, *built)
	assert.Empty(t, out.String())
}

func TestRun_RejectsArguments(t *testing.T) {
	_, built := setupCommand(t, &stubDetector{})

	err := run(config.Load(), []string{"image.jpg"})
	assert.Error(t, err)
	assert.Empty(t, *built)
}

func TestHandleOCRError(t *testing.T) {
	remote := &ocr.RemoteError{Message: "quota exceeded"}
	plain := errors.New("connection reset")

	tests := []struct {
		name     string
		err      error
		target   error
		contains string
	}{
		{"remote error kept verbatim", fmt.Errorf("wrapped: %w", remote), remote, "quota exceeded"},
		{"deadline exceeded", fmt.Errorf("call: %w", context.DeadlineExceeded), context.DeadlineExceeded, "timed out"},
		{"canceled", fmt.Errorf("call: %w", context.Canceled), context.Canceled, "was canceled"},
		{"other errors unchanged", plain, plain, "connection reset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := handleOCRError(tt.err)
			assert.ErrorIs(t, got, tt.target)
			assert.Contains(t, got.Error(), tt.contains)
		})
	}

	assert.Same(t, remote, handleOCRError(fmt.Errorf("wrapped: %w", remote)))
	assert.Equal(t, "quota exceeded", handleOCRError(remote).Error())
}

func TestExecute_ExitsWithStatusOne(t *testing.T) {
	if os.Getenv("VISIONOCR_EXECUTE_CHILD") == "1" {
		os.Args = []string{"visionocr", "--image", os.Getenv("VISIONOCR_IMAGE")}
		Execute(config.Load())
		return
	}

	missing := filepath.Join(t.TempDir(), "image.jpg")
	child := exec.Command(os.Args[0], "-test.run=^TestExecute_ExitsWithStatusOne$")
	child.Env = append(os.Environ(),
		"VISIONOCR_EXECUTE_CHILD=1",
		"VISIONOCR_IMAGE="+missing,
		"GOOGLE_APPLICATION_CREDENTIALS=key.json",
	)
	var stdout, stderr bytes.Buffer
	child.Stdout = &stdout
	child.Stderr = &stderr

	err := child.Run()
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode())
	assert.Contains(t, stdout.String(), "CREDS: key.json\n")
	assert.Contains(t, stderr.String(), "Error: failed to read image file:")
}
