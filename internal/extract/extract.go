// Package extract runs a single image through document text detection and
// prints the result.
package extract

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"visionocr/internal/config"
	"visionocr/internal/logger"
	"visionocr/internal/ocr"
)

// Unset is printed in place of the credential path when the variable is absent.
const Unset = "<unset>"

// DetectorFactory builds the detector used for the remote call.
type DetectorFactory func(ctx context.Context) (ocr.TextDetector, error)

// Runner prints the credential status, reads the image and prints the text
// the detector found in it.
type Runner struct {
	ImagePath   string
	Out         io.Writer
	NewDetector DetectorFactory

	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(key string) (string, bool)

	log zerolog.Logger
}

// NewRunner returns a Runner writing to out.
func NewRunner(imagePath string, out io.Writer, newDetector DetectorFactory) *Runner {
	return &Runner{
		ImagePath:   imagePath,
		Out:         out,
		NewDetector: newDetector,
		LookupEnv:   os.LookupEnv,
		log:         logger.WithComponent("extract"),
	}
}

// Run executes the extraction once. The credential line is always printed.
// The text line is printed only when detection succeeds; a *ocr.RemoteError
// is returned unchanged so its message surfaces verbatim.
func (r *Runner) Run(ctx context.Context) error {
	lookup := r.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	creds, ok := lookup(config.CredentialsEnvVar)
	if !ok {
		creds = Unset
	}
	if _, err := fmt.Fprintf(r.Out, "CREDS: %s\n", creds); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	content, err := os.ReadFile(r.ImagePath)
	if err != nil {
		r.log.Error().
			Err(err).
			Str("file", r.ImagePath).
			Msg("Failed to read image file")
		return fmt.Errorf("failed to read image file: %w", err)
	}

	r.log.Info().
		Str("file", r.ImagePath).
		Int("size", len(content)).
		Msg("Processing image")

	detector, err := r.NewDetector(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := detector.Close(); closeErr != nil {
			r.log.Warn().Err(closeErr).Msg("Failed to close OCR client")
		}
	}()

	result, err := detector.DetectDocumentText(ctx, content)
	if err != nil {
		r.log.Error().Err(err).Msg("Document text detection failed")
		return err
	}

	r.log.Info().
		Int("text_length", len(result.Text)).
		Msg("Document text detection completed")

	if _, err := fmt.Fprintln(r.Out, result.Text); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
