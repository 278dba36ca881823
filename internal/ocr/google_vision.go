package ocr

import (
	"context"
	"fmt"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"visionocr/internal/logger"
)

// ImageAnnotator is the subset of vision.ImageAnnotatorClient used here.
type ImageAnnotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	Close() error
}

// VisionDetector implements TextDetector using the Cloud Vision API.
type VisionDetector struct {
	client ImageAnnotator
	log    zerolog.Logger
}

// NewVisionDetector creates a Vision client authenticated with creds.
// Empty creds fall back to Application Default Credentials.
func NewVisionDetector(ctx context.Context, creds Credentials) (*VisionDetector, error) {
	const op = "NewVisionDetector"

	client, err := vision.NewImageAnnotatorClient(ctx, clientOptions(creds)...)
	if err != nil {
		if creds.isEmpty() {
			return nil, NewOCRError(op, fmt.Errorf("%w: %w", ErrMissingCredentials, err), "no credentials found in environment")
		}
		return nil, WrapOCRError(op, err, "failed to create Vision client")
	}

	return NewVisionDetectorWithClient(client), nil
}

// NewVisionDetectorWithClient creates a detector around an existing client (for testing).
func NewVisionDetectorWithClient(client ImageAnnotator) *VisionDetector {
	return &VisionDetector{
		client: client,
		log:    logger.WithComponent("vision"),
	}
}

// DetectDocumentText runs DOCUMENT_TEXT_DETECTION on the raw image bytes.
func (v *VisionDetector) DetectDocumentText(ctx context.Context, content []byte) (*Result, error) {
	const op = "DetectDocumentText"

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: content},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	v.log.Debug().
		Int("bytes", len(content)).
		Msg("Sending document text detection request")

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, NewOCRError(op, fmt.Errorf("%w: %w", ErrOCRFailed, err), "Vision API call failed")
	}

	if len(resp.GetResponses()) == 0 {
		return nil, NewOCRError(op, ErrNoResponse, "empty BatchAnnotateImages response")
	}

	imageResp := resp.GetResponses()[0]
	if status := imageResp.GetError(); status.GetMessage() != "" {
		v.log.Debug().
			Int32("code", status.GetCode()).
			Str("message", status.GetMessage()).
			Msg("Vision API returned an error")
		return nil, &RemoteError{Code: status.GetCode(), Message: status.GetMessage()}
	}

	text := imageResp.GetFullTextAnnotation().GetText()
	v.log.Debug().
		Int("text_length", len(text)).
		Msg("Document text detection completed")

	return &Result{Text: text}, nil
}

// Close closes the underlying Vision client.
func (v *VisionDetector) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}

// clientOptions uses JSON only when it looks like a JSON object; anything
// else falls through to File and then Application Default Credentials.
func clientOptions(creds Credentials) []option.ClientOption {
	var opts []option.ClientOption
	if creds.hasInlineJSON() {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds.JSON)))
	} else if creds.File != "" {
		opts = append(opts, option.WithCredentialsFile(creds.File))
	}
	return opts
}

func (c Credentials) hasInlineJSON() bool {
	return strings.HasPrefix(strings.TrimSpace(c.JSON), "{")
}

func (c Credentials) isEmpty() bool {
	return !c.hasInlineJSON() && c.File == ""
}
