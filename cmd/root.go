package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"visionocr/internal/config"
	"visionocr/internal/logger"
)

var version = "1.0.0"

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "visionocr",
	Short: "Extract text from an image using Google Cloud Vision OCR",
	Long: `Read an image file, send it to Google Cloud Vision document text detection
and print the recognized text.

The first output line shows the GOOGLE_APPLICATION_CREDENTIALS value the client
will use; the second line is the extracted text.

Environment variables:
  GOOGLE_APPLICATION_CREDENTIALS       - Path to service account JSON file
  GOOGLE_APPLICATION_CREDENTIALS_JSON  - Inline service account JSON (optional)
  OCR_IMAGE_PATH                       - Image to analyze (default: image.jpg)
  OCR_PROVIDER                         - vision or documentai (default: vision)
  OCR_TIMEOUT                          - Timeout in seconds, 0 for none`,
	Example: `  # Extract text from ./image.jpg
  visionocr

  # Use another file and give up after a minute
  visionocr --image receipt.png --timeout 60`,
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runExtract,
}

// Execute runs the root command with the loaded configuration and exits
// with status 1 on failure.
func Execute(c *config.Config) {
	if err := run(c, os.Args[1:]); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *config.Config, args []string) error {
	cfg = c
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	if err != nil {
		log := logger.WithComponent("cmd")
		log.Debug().
			Err(err).
			Msg("Command execution failed")
	}
	return err
}

// reportError writes the single diagnostic line for a failed run.
func reportError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
}

func init() {
	rootCmd.Flags().String("image", "", "Image file to analyze (default: $OCR_IMAGE_PATH or image.jpg)")
	rootCmd.PersistentFlags().Int("timeout", -1, "Request timeout in seconds, 0 for none (default: $OCR_TIMEOUT)")
	rootCmd.PersistentFlags().String("provider", "", "OCR backend: vision or documentai (default: $OCR_PROVIDER)")
}

// applyFlags overrides configuration values with the flags that were set.
func applyFlags(cmd *cobra.Command) error {
	if cmd.Flags().Changed("image") {
		cfg.ImagePath, _ = cmd.Flags().GetString("image")
	}
	if cmd.Flags().Changed("timeout") {
		timeout, _ := cmd.Flags().GetInt("timeout")
		cfg.SetTimeout(timeout)
	}
	if cmd.Flags().Changed("provider") {
		cfg.Provider, _ = cmd.Flags().GetString("provider")
	}
	return cfg.Validate()
}
