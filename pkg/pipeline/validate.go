package pipeline

import (
	"time"

	"github.com/pankaj139/pixelforge/pkg/types"
)

// ValidationResult lists every problem found with a set of processing
// options. Validation failures are data, never errors.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// ValidateProcessingOptions checks job options before execution,
// accumulating all violations rather than failing on the first.
func ValidateProcessingOptions(opts types.ProcessingOptions) ValidationResult {
	var errs []string

	if opts.AspectRatio.Width <= 0 {
		errs = append(errs, "aspect ratio width must be positive")
	}
	if opts.AspectRatio.Height <= 0 {
		errs = append(errs, "aspect ratio height must be positive")
	}
	if opts.AspectRatio.Name == "" {
		errs = append(errs, "aspect ratio name must not be empty")
	}

	if opts.SheetComposition != nil && opts.SheetComposition.Enabled {
		layout := opts.SheetComposition.GridLayout
		if layout.Rows <= 0 {
			errs = append(errs, "grid layout rows must be positive")
		}
		if layout.Columns <= 0 {
			errs = append(errs, "grid layout columns must be positive")
		}
		if layout.Name == "" {
			errs = append(errs, "grid layout name must not be empty")
		}
		switch opts.SheetComposition.Orientation {
		case types.Portrait, types.Landscape:
		default:
			errs = append(errs, "orientation must be portrait or landscape")
		}
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// Stats summarizes a pipeline result for reporting.
type Stats struct {
	TotalImages      int           `json:"totalImages"`
	SuccessfulImages int           `json:"successfulImages"`
	TotalSheets      int           `json:"totalSheets"`
	HasPDF           bool          `json:"hasPDF"`
	ProcessingTime   time.Duration `json:"processingTime"`
}

// GetProcessingStats derives summary statistics from a result. The
// processing time is the sum of each image's individual conversion
// time, not the wall-clock pipeline duration.
func GetProcessingStats(result *Result) Stats {
	stats := Stats{
		TotalImages:      len(result.ProcessedImages) + len(result.Failures),
		SuccessfulImages: len(result.ProcessedImages),
		TotalSheets:      len(result.ComposedSheets),
		HasPDF:           result.PDFPath != "",
	}
	for _, img := range result.ProcessedImages {
		stats.ProcessingTime += img.ProcessingTime
	}
	return stats
}
