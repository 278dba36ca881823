// Package api exposes document text detection over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"visionocr/internal/logger"
	"visionocr/internal/ocr"
)

// MaxBodyBytes bounds the JSON request body. Base64 inflates images by a third.
const MaxBodyBytes = 32 << 20

// NewRouter wires the OCR and health endpoints.
func NewRouter(detector ocr.TextDetector) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)

	h := NewOCRHandler(detector)
	r.Get("/healthz", Healthz)
	r.Post("/ocr", h.Detect)

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log := logger.WithRequestID(chimiddleware.GetReqID(r.Context()))
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}
