// Package render turns composed sheets into a single print document.
package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdftypes "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/pankaj139/pixelforge/pkg/types"
)

// DocumentRenderer consumes composed sheets and emits a document path.
type DocumentRenderer interface {
	Render(ctx context.Context, sheets []types.ComposedSheet, outputDir string) (string, error)
}

// PDFRenderer renders each sheet image as one A4 PDF page.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDF document renderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render imports every sheet image as a full A4 page of a single PDF.
// It fails if any referenced sheet file is missing.
func (r *PDFRenderer) Render(ctx context.Context, sheets []types.ComposedSheet, outputDir string) (string, error) {
	if len(sheets) == 0 {
		return "", fmt.Errorf("no sheets to render")
	}

	paths := make([]string, 0, len(sheets))
	for _, s := range sheets {
		if _, err := os.Stat(s.SheetPath); err != nil {
			return "", fmt.Errorf("sheet file missing: %s", s.SheetPath)
		}
		paths = append(paths, s.SheetPath)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	// Sheets are rendered at A4 print resolution, so scale each image to
	// the full page.
	imp, err := api.Import("form:A4, pos:c, sc:1.0 rel", pdftypes.POINTS)
	if err != nil {
		return "", fmt.Errorf("failed to build import config: %w", err)
	}

	outPath := filepath.Join(outputDir, fmt.Sprintf("document_%s.pdf", uuid.NewString()))
	if err := api.ImportImagesFile(paths, outPath, imp, nil); err != nil {
		return "", fmt.Errorf("failed to render PDF: %w", err)
	}
	return outPath, nil
}
