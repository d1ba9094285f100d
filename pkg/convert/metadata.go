package convert

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"

	"github.com/pankaj139/pixelforge/pkg/types"
)

// ImageMetadata describes an image file on disk.
type ImageMetadata struct {
	Width       int        `json:"width"`
	Height      int        `json:"height"`
	Format      string     `json:"format"`
	Size        int64      `json:"size"`
	AspectRatio float64    `json:"aspectRatio"`
	TakenAt     *time.Time `json:"takenAt,omitempty"`
}

// Metadata reads image metadata without decoding pixel data. A missing
// format is reported as "unknown" and a missing file size as 0.
func (e *Engine) Metadata(path string) (ImageMetadata, error) {
	cfg, format, err := decodeDimensions(path)
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return ImageMetadata{}, ErrUnreadableDimensions
	}

	if format == "" {
		format = "unknown"
	}

	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}

	meta := ImageMetadata{
		Width:       cfg.Width,
		Height:      cfg.Height,
		Format:      format,
		Size:        size,
		AspectRatio: float64(cfg.Width) / float64(cfg.Height),
	}
	meta.TakenAt = exifTakenAt(path)
	return meta, nil
}

// exifTakenAt extracts the capture time from EXIF data when present.
func exifTakenAt(path string) *time.Time {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return nil
	}
	t, err := x.DateTime()
	if err != nil {
		return nil
	}
	return &t
}

// DefaultThumbnailSize is the default long-edge size for thumbnails.
const DefaultThumbnailSize = 300

// CreateThumbnail scales the longer edge of the source image down to
// maxSize, preserving aspect ratio, and writes the result to outPath.
// It returns the final thumbnail dimensions.
func (e *Engine) CreateThumbnail(path, outPath string, maxSize int) (types.ImageSize, error) {
	if maxSize <= 0 {
		maxSize = DefaultThumbnailSize
	}

	cfg, _, err := decodeDimensions(path)
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return types.ImageSize{}, ErrUnreadableDimensions
	}

	img, err := LoadImage(path)
	if err != nil {
		return types.ImageSize{}, ErrUnreadableDimensions
	}

	size := fitInside(cfg.Width, cfg.Height, maxSize)
	thumb := imaging.Resize(img, size.Width, size.Height, imaging.Lanczos)
	if err := SaveImage(thumb, outPath, "", e.thumbnailQuality()); err != nil {
		return types.ImageSize{}, fmt.Errorf("failed to write thumbnail: %w", err)
	}
	return size, nil
}

func (e *Engine) thumbnailQuality() int {
	return 80
}

// fitInside computes fit-inside dimensions: the longer edge becomes
// maxSize and the shorter edge is rounded from the same scale factor,
// so landscape and portrait sources round consistently.
func fitInside(width, height, maxSize int) types.ImageSize {
	if width >= height {
		scale := float64(maxSize) / float64(width)
		return types.ImageSize{
			Width:  maxSize,
			Height: int(math.Round(float64(height) * scale)),
		}
	}
	scale := float64(maxSize) / float64(height)
	return types.ImageSize{
		Width:  int(math.Round(float64(width) * scale)),
		Height: maxSize,
	}
}
