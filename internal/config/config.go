package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"visionocr/internal/logger"
	"visionocr/internal/ocr"
)

// CredentialsEnvVar names the variable holding the credential file path.
const CredentialsEnvVar = "GOOGLE_APPLICATION_CREDENTIALS"

type Config struct {
	// Google Cloud credentials
	CredentialsFile string
	CredentialsJSON string

	// OCR
	ImagePath      string
	Provider       string
	TimeoutSeconds int

	// Document AI backend
	GoogleCloudProject         string
	GoogleCloudLocation        string
	DocumentAIProcessorID      string
	DocumentAIProcessorVersion string

	// HTTP server
	Port string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string

	timeoutErr error
}

// Load reads the configuration from the environment. It does not validate:
// command-line flags may still override values, so callers run Validate
// once those are applied.
func Load() *Config {
	timeout, err := strconv.Atoi(getEnv("OCR_TIMEOUT", "0"))
	if err != nil {
		err = fmt.Errorf("OCR_TIMEOUT must be an integer: %w", err)
	}

	config := &Config{
		CredentialsFile:            os.Getenv(CredentialsEnvVar),
		CredentialsJSON:            inlineCredentials("GOOGLE_APPLICATION_CREDENTIALS_JSON", "GOOGLE_CREDENTIALS"),
		ImagePath:                  getEnv("OCR_IMAGE_PATH", "image.jpg"),
		Provider:                   getEnv("OCR_PROVIDER", ocr.ProviderVision),
		TimeoutSeconds:             timeout,
		GoogleCloudProject:         getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:        getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID:      getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		DocumentAIProcessorVersion: getEnv("DOCUMENT_AI_PROCESSOR_VERSION", ""),
		Port:                       getEnv("PORT", "8080"),
		LogLevel:                   getEnv("LOG_LEVEL", "info"),
		LogFormat:                  getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:              getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:                  getEnv("LOG_OUTPUT", "stderr"),
		timeoutErr:                 err,
	}

	return config
}

// SetTimeout overrides the OCR_TIMEOUT value, including one that failed to parse.
func (c *Config) SetTimeout(seconds int) {
	c.TimeoutSeconds = seconds
	c.timeoutErr = nil
}

// Validate checks the settings of the selected provider.
// Credentials are left to the client library.
func (c *Config) Validate() error {
	if c.timeoutErr != nil {
		return c.timeoutErr
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("OCR_TIMEOUT must not be negative")
	}
	switch c.Provider {
	case ocr.ProviderVision:
	case ocr.ProviderDocumentAI:
		if c.GoogleCloudProject == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required")
		}
		if c.DocumentAIProcessorID == "" {
			return fmt.Errorf("DOCUMENT_AI_PROCESSOR_ID is required")
		}
	default:
		return fmt.Errorf("unknown OCR_PROVIDER %q", c.Provider)
	}
	return nil
}

// OCROptions returns the options for building the configured TextDetector.
func (c *Config) OCROptions() ocr.Options {
	return ocr.Options{
		Provider: c.Provider,
		Credentials: ocr.Credentials{
			JSON: c.CredentialsJSON,
			File: c.CredentialsFile,
		},
		DocumentAI: ocr.DocumentAIConfig{
			ProjectID:        c.GoogleCloudProject,
			Location:         c.GoogleCloudLocation,
			ProcessorID:      c.DocumentAIProcessorID,
			ProcessorVersion: c.DocumentAIProcessorVersion,
		},
	}
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// inlineCredentials returns the first of keys whose value looks like a JSON
// object. Paths or stray values are skipped so the credential file still applies.
func inlineCredentials(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); strings.HasPrefix(strings.TrimSpace(value), "{") {
			return value
		}
	}
	return ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
