package ocr

import (
	"context"
	"fmt"
)

// Supported OCR backends.
const (
	ProviderVision     = "vision"
	ProviderDocumentAI = "documentai"
)

// Options selects and configures a TextDetector.
type Options struct {
	Provider    string
	Credentials Credentials
	DocumentAI  DocumentAIConfig
}

// NewDetector builds the TextDetector named by opts.Provider.
// An empty provider selects Cloud Vision.
func NewDetector(ctx context.Context, opts Options) (TextDetector, error) {
	switch opts.Provider {
	case "", ProviderVision:
		detector, err := NewVisionDetector(ctx, opts.Credentials)
		if err != nil {
			return nil, err
		}
		return detector, nil
	case ProviderDocumentAI:
		detector, err := NewDocumentAIDetector(ctx, opts.Credentials, opts.DocumentAI)
		if err != nil {
			return nil, err
		}
		return detector, nil
	default:
		return nil, NewOCRError("NewDetector", fmt.Errorf("%w: unknown provider %q", ErrInvalidConfiguration, opts.Provider), "")
	}
}
