package ocr

import (
	"context"
	"fmt"
	"net/http"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/googleapis/gax-go/v2"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"visionocr/internal/logger"
)

// DocumentProcessor is the subset of documentai.DocumentProcessorClient used here.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, req *documentaipb.ProcessRequest, opts ...gax.CallOption) (*documentaipb.ProcessResponse, error)
	Close() error
}

// DocumentAIConfig holds the location of a Document AI OCR processor.
type DocumentAIConfig struct {
	// ProjectID is the Google Cloud project ID where Document AI is enabled.
	ProjectID string

	// Location is the processor location (e.g., "us", "eu").
	Location string

	// ProcessorID is the ID of an OCR processor.
	ProcessorID string

	// ProcessorVersion pins a processor version. Empty uses the default.
	ProcessorVersion string
}

func (c DocumentAIConfig) validate() error {
	if c.ProjectID == "" {
		return fmt.Errorf("%w: GOOGLE_CLOUD_PROJECT is required for Document AI", ErrInvalidConfiguration)
	}
	if c.ProcessorID == "" {
		return fmt.Errorf("%w: DOCUMENT_AI_PROCESSOR_ID is required for Document AI", ErrInvalidConfiguration)
	}
	return nil
}

// ProcessorName returns the full resource name of the processor.
func (c DocumentAIConfig) ProcessorName() string {
	location := c.Location
	if location == "" {
		location = "us"
	}
	if c.ProcessorVersion != "" {
		return fmt.Sprintf("projects/%s/locations/%s/processors/%s/processorVersions/%s",
			c.ProjectID, location, c.ProcessorID, c.ProcessorVersion)
	}
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		c.ProjectID, location, c.ProcessorID)
}

// DocumentAIDetector implements TextDetector with a Document AI OCR processor.
type DocumentAIDetector struct {
	client DocumentProcessor
	config DocumentAIConfig
	log    zerolog.Logger
}

// NewDocumentAIDetector creates a Document AI client for the configured location.
func NewDocumentAIDetector(ctx context.Context, creds Credentials, config DocumentAIConfig) (*DocumentAIDetector, error) {
	const op = "NewDocumentAIDetector"

	if err := config.validate(); err != nil {
		return nil, NewOCRError(op, err, "")
	}

	clientOpts := clientOptions(creds)
	if config.Location != "" && config.Location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)
		clientOpts = append(clientOpts, option.WithEndpoint(endpoint))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOpts...)
	if err != nil {
		if creds.isEmpty() {
			return nil, NewOCRError(op, fmt.Errorf("%w: %w", ErrMissingCredentials, err), "no credentials found in environment")
		}
		return nil, WrapOCRError(op, err, fmt.Sprintf("failed to create Document AI client for location: %s", config.Location))
	}

	return NewDocumentAIDetectorWithClient(client, config), nil
}

// NewDocumentAIDetectorWithClient creates a detector around an existing client (for testing).
func NewDocumentAIDetectorWithClient(client DocumentProcessor, config DocumentAIConfig) *DocumentAIDetector {
	return &DocumentAIDetector{
		client: client,
		config: config,
		log:    logger.WithComponent("document-ai"),
	}
}

// DetectDocumentText sends the image as a raw document to the OCR processor.
func (d *DocumentAIDetector) DetectDocumentText(ctx context.Context, content []byte) (*Result, error) {
	const op = "DetectDocumentText"

	mimeType := http.DetectContentType(content)
	req := &documentaipb.ProcessRequest{
		Name: d.config.ProcessorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  content,
				MimeType: mimeType,
			},
		},
	}

	d.log.Debug().
		Str("processor", req.Name).
		Str("mime_type", mimeType).
		Int("bytes", len(content)).
		Msg("Sending process request")

	resp, err := d.client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, NewOCRError(op, fmt.Errorf("%w: %w", ErrOCRFailed, err), "Document AI call failed")
	}

	doc := resp.GetDocument()
	if doc == nil {
		return nil, NewOCRError(op, ErrNoResponse, "no document in response")
	}
	if status := doc.GetError(); status.GetMessage() != "" {
		return nil, &RemoteError{Code: status.GetCode(), Message: status.GetMessage()}
	}

	return &Result{Text: doc.GetText()}, nil
}

// Close closes the underlying Document AI client.
func (d *DocumentAIDetector) Close() error {
	if d.client != nil {
		return d.client.Close()
	}
	return nil
}
