// Package ocr provides document text detection backed by Google Cloud.
//
// Two backends are available: Cloud Vision (DOCUMENT_TEXT_DETECTION on an
// inline image) and Document AI (an OCR processor fed a raw document). Both
// implement TextDetector and return the full-text annotation as-is.
//
// Credentials are resolved in this order:
//   - GOOGLE_APPLICATION_CREDENTIALS_JSON: inline service account JSON
//   - GOOGLE_CREDENTIALS: inline service account JSON
//   - GOOGLE_APPLICATION_CREDENTIALS: path to a service account file
//   - Application Default Credentials
//
// Inline values are used only when they start with '{'.
//
// None of these values is validated here; the client library reports bad or
// missing credentials when the client is built or the call is made.
package ocr

import (
	"context"
)

// TextDetector runs document text detection on a single image.
type TextDetector interface {
	// DetectDocumentText sends content to the remote service and returns the
	// recognized text. A non-empty error message in the response is returned
	// as a *RemoteError.
	DetectDocumentText(ctx context.Context, content []byte) (*Result, error)

	// Close releases the underlying client connection.
	Close() error
}

// Result is the part of the detection response this program uses.
type Result struct {
	// Text is the full-text annotation. Empty when nothing was detected.
	Text string `json:"text"`
}

// Credentials selects how the Google client authenticates.
type Credentials struct {
	// JSON is an inline service account key. Takes precedence over File
	// when it starts with '{'; other values are ignored.
	JSON string

	// File is a path to a service account key file.
	File string
}
