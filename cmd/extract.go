package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"visionocr/internal/extract"
	"visionocr/internal/logger"
	"visionocr/internal/ocr"
)

// newDetector builds the OCR client; replaced in tests.
var newDetector = ocr.NewDetector

func runExtract(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("extract")

	if err := applyFlags(cmd); err != nil {
		return err
	}

	log.Debug().
		Str("file", cfg.ImagePath).
		Str("provider", cfg.Provider).
		Int("timeout", cfg.TimeoutSeconds).
		Msg("Starting text extraction")

	ctx, cancel := createContext(cfg.TimeoutSeconds, log)
	defer cancel()

	opts := cfg.OCROptions()
	runner := extract.NewRunner(cfg.ImagePath, cmd.OutOrStdout(), func(ctx context.Context) (ocr.TextDetector, error) {
		return newDetector(ctx, opts)
	})

	if err := runner.Run(ctx); err != nil {
		return handleOCRError(err)
	}
	return nil
}

// createContext returns a context canceled on SIGINT/SIGTERM and, when
// timeoutSecs > 0, after the timeout.
func createContext(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if timeoutSecs <= 0 {
		return ctx, stop
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSecs)*time.Second)
	log.Debug().Int("timeout", timeoutSecs).Msg("Request timeout set")
	return timeoutCtx, func() {
		cancel()
		stop()
	}
}

// handleOCRError keeps remote error messages verbatim and explains timeouts.
func handleOCRError(err error) error {
	var remoteErr *ocr.RemoteError
	switch {
	case errors.As(err, &remoteErr):
		return remoteErr
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("OCR request timed out. Try increasing --timeout: %w", err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("OCR request was canceled: %w", err)
	default:
		return err
	}
}
