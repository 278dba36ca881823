package ocr

import (
	"errors"
	"fmt"
)

// Common OCR errors
var (
	// ErrOCRFailed is returned when the remote call itself fails (transport,
	// authentication, quota).
	ErrOCRFailed = errors.New("OCR request failed")

	// ErrNoResponse is returned when the service answers with no annotation.
	ErrNoResponse = errors.New("no response from OCR service")

	// ErrMissingCredentials is returned when a client cannot be built and no
	// credentials were configured in the environment.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS, GOOGLE_APPLICATION_CREDENTIALS_JSON or GOOGLE_CREDENTIALS")

	// ErrInvalidConfiguration is returned when a backend is missing required settings.
	ErrInvalidConfiguration = errors.New("invalid OCR configuration")
)

// RemoteError is the error message the service put in its response.
// Error returns that message unchanged.
type RemoteError struct {
	Code    int32
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// OCRError wraps errors with the operation that produced them.
type OCRError struct {
	// Op is the operation that failed (e.g., "DetectDocumentText").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *OCRError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *OCRError) Unwrap() error {
	return e.Err
}

// NewOCRError creates a new OCRError with the specified operation and underlying error.
func NewOCRError(op string, err error, details string) *OCRError {
	return &OCRError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

// WrapOCRError wraps an error as an OCRError if it isn't already one.
// A *RemoteError is passed through so its message reaches the user verbatim.
func WrapOCRError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var ocrErr *OCRError
	if errors.As(err, &ocrErr) {
		return err
	}
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return err
	}

	return NewOCRError(op, err, details)
}
