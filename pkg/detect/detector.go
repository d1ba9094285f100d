// Package detect defines the subject detector contract consumed by the
// pipeline and the crop suggestion strategies built on detector output.
package detect

import (
	"context"

	"github.com/pankaj139/pixelforge/pkg/types"
)

// Result is what a detector reports for one image. Regions may be empty
// with Confidence 0 when no subject was found; crop suggestion then
// falls back to a deterministic center crop.
type Result struct {
	Detections []types.Detection `json:"detections"`
	Confidence float64           `json:"confidence"`
}

// Detector locates subject regions in an image file.
type Detector interface {
	Detect(ctx context.Context, imagePath string) (Result, error)
}

// Disabled is a Detector that never finds anything. Used when face
// detection is turned off for a job.
type Disabled struct{}

// Detect always returns an empty result.
func (Disabled) Detect(context.Context, string) (Result, error) {
	return Result{}, nil
}
