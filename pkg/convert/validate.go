package convert

import (
	"fmt"
	"os"
)

// MinValidDimension is the smallest acceptable width or height for an
// input photo.
const MinValidDimension = 100

// supportedFormats is the allow-list of input encodings. Keys match the
// format names registered with image.Decode plus common extensions.
var supportedFormats = map[string]bool{
	"jpeg": true,
	"jpg":  true,
	"png":  true,
	"webp": true,
	"tiff": true,
}

// ValidationResult collects every problem found with an input image
// rather than stopping at the first.
type ValidationResult struct {
	IsValid  bool           `json:"isValid"`
	Errors   []string       `json:"errors"`
	Metadata *ImageMetadata `json:"metadata,omitempty"`
}

// Validate checks an image file against the engine's input requirements:
// readable dimensions, a 100px minimum per axis and a supported format.
// All violations are accumulated.
func (e *Engine) Validate(path string) ValidationResult {
	result := ValidationResult{IsValid: true}

	f, err := os.Open(path)
	if err != nil {
		result.IsValid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read image: %v", err))
		return result
	}
	f.Close()

	cfg, format, err := decodeDimensions(path)
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		result.IsValid = false
		result.Errors = append(result.Errors, ErrUnreadableDimensions.Error())
		return result
	}

	if cfg.Width < MinValidDimension {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Image width is too small (minimum %dpx)", MinValidDimension))
	}
	if cfg.Height < MinValidDimension {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Image height is too small (minimum %dpx)", MinValidDimension))
	}
	if !supportedFormats[format] {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Unsupported image format: %s", format))
	}

	if len(result.Errors) > 0 {
		result.IsValid = false
	}
	if meta, err := e.Metadata(path); err == nil {
		result.Metadata = &meta
	}
	return result
}
