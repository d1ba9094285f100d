// Package sheet arranges converted images onto fixed-size A4 print
// sheets using a gridded layout.
package sheet

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/pankaj139/pixelforge/internal/utils"
	"github.com/pankaj139/pixelforge/pkg/convert"
	"github.com/pankaj139/pixelforge/pkg/types"
)

// A4 canvas dimensions in pixels at 300 DPI print resolution.
const (
	A4PortraitWidth  = 2480
	A4PortraitHeight = 3508
)

// ErrNoImages is returned when composition is requested with an empty
// image list. The message is part of the compositor's contract.
var ErrNoImages = errors.New("No images provided for sheet composition")

// Composer packs converted images into grid sheets.
type Composer struct {
	quality int
	logger  *slog.Logger
}

// NewComposer creates a sheet composer. A nil logger falls back to the
// default slog logger.
func NewComposer(logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{quality: 95, logger: logger}
}

// CanvasSize returns the fixed sheet dimensions for an orientation.
// Landscape is the transposed portrait canvas.
func CanvasSize(orientation types.Orientation) types.ImageSize {
	if orientation == types.Landscape {
		return types.ImageSize{Width: A4PortraitHeight, Height: A4PortraitWidth}
	}
	return types.ImageSize{Width: A4PortraitWidth, Height: A4PortraitHeight}
}

// ComposeSheets partitions images into consecutive chunks of the grid
// capacity, preserving input order, and renders one sheet per chunk.
// A single image that fails to composite is skipped on the canvas but
// still recorded in the sheet's image list.
func (c *Composer) ComposeSheets(images []types.ProcessedImage, layout types.GridLayout, orientation types.Orientation, outputDir string) ([]types.ComposedSheet, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	capacity := layout.Capacity()
	if capacity <= 0 {
		return nil, fmt.Errorf("invalid grid layout %q: %dx%d", layout.Name, layout.Rows, layout.Columns)
	}
	if err := utils.EnsureDir(outputDir); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var sheets []types.ComposedSheet
	for start := 0; start < len(images); start += capacity {
		end := min(start+capacity, len(images))
		chunk := images[start:end]

		composed, err := c.composeOne(chunk, layout, orientation, outputDir)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, composed)
	}
	return sheets, nil
}

// composeOne renders a single sheet from at most capacity images.
func (c *Composer) composeOne(chunk []types.ProcessedImage, layout types.GridLayout, orientation types.Orientation, outputDir string) (types.ComposedSheet, error) {
	size := CanvasSize(orientation)
	canvas := imaging.New(size.Width, size.Height, color.White)

	cellWidth := size.Width / layout.Columns
	cellHeight := size.Height / layout.Rows

	for i, img := range chunk {
		row := i / layout.Columns
		col := i % layout.Columns

		src, err := convert.LoadImage(img.ProcessedPath)
		if err != nil {
			c.logger.Warn("skipping image on sheet",
				"image", img.ProcessedPath, "cell", i, "error", err)
			continue
		}

		cell := imaging.Fill(src, cellWidth, cellHeight, imaging.Center, imaging.Lanczos)
		canvas = imaging.Paste(canvas, cell, image.Pt(col*cellWidth, row*cellHeight))
	}

	id := uuid.NewString()
	sheetPath := filepath.Join(outputDir, fmt.Sprintf("sheet_%s.jpg", id))
	if err := convert.SaveImage(canvas, sheetPath, "jpg", c.quality); err != nil {
		return types.ComposedSheet{}, fmt.Errorf("failed to write sheet: %w", err)
	}

	return types.ComposedSheet{
		ID:          id,
		SheetPath:   sheetPath,
		Layout:      layout,
		Orientation: orientation,
		Images:      chunk,
		EmptySlots:  layout.Capacity() - len(chunk),
		CreatedAt:   time.Now(),
	}, nil
}
