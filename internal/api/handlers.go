package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"visionocr/internal/logger"
	"visionocr/internal/ocr"
)

// OCRRequest is the body of POST /ocr.
type OCRRequest struct {
	ImageBase64 string `json:"imageBase64"`
}

// OCRResponse is the success body of POST /ocr.
type OCRResponse struct {
	Text string `json:"text"`
}

type OCRHandler struct {
	detector     ocr.TextDetector
	maxBodyBytes int64
	log          zerolog.Logger
}

func NewOCRHandler(detector ocr.TextDetector) *OCRHandler {
	return &OCRHandler{
		detector:     detector,
		maxBodyBytes: MaxBodyBytes,
		log:          logger.WithComponent("api"),
	}
}

// Detect decodes the base64 image and returns the detected text.
func (h *OCRHandler) Detect(w http.ResponseWriter, r *http.Request) {
	var req OCRRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ImageBase64 == "" {
		writeError(w, http.StatusBadRequest, "imageBase64 is required")
		return
	}

	content, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "imageBase64 is not valid base64")
		return
	}

	result, err := h.detector.DetectDocumentText(r.Context(), content)
	if err != nil {
		h.log.Error().Err(err).Msg("OCR handler failed")
		var remoteErr *ocr.RemoteError
		if errors.As(err, &remoteErr) {
			writeError(w, http.StatusInternalServerError, remoteErr.Message)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, OCRResponse{Text: result.Text})
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
