// Package pipeline orchestrates a batch print job: per-image conversion
// with bounded retry, optional sheet composition and optional document
// rendering. Individual image failures never sink the whole job.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/pankaj139/pixelforge/internal/naming"
	"github.com/pankaj139/pixelforge/internal/utils"
	"github.com/pankaj139/pixelforge/pkg/convert"
	"github.com/pankaj139/pixelforge/pkg/detect"
	"github.com/pankaj139/pixelforge/pkg/render"
	"github.com/pankaj139/pixelforge/pkg/types"
)

// ErrAllImagesFailed is returned when every image in a batch failed
// conversion. The message is part of the pipeline's contract.
var ErrAllImagesFailed = errors.New("Image processing failed")

// Converter is the per-image conversion engine consumed by the pipeline.
type Converter interface {
	Convert(sourcePath, outputPath string, target types.AspectRatio, crop types.CropArea, opts convert.Options) (types.ConversionMetrics, error)
	Metadata(path string) (convert.ImageMetadata, error)
}

// Composer packs processed images onto grid sheets.
type Composer interface {
	ComposeSheets(images []types.ProcessedImage, layout types.GridLayout, orientation types.Orientation, outputDir string) ([]types.ComposedSheet, error)
}

// Pipeline drives one job through conversion, composition and rendering.
type Pipeline struct {
	converter Converter
	composer  Composer
	detector  detect.Detector
	renderer  render.DocumentRenderer
	namer     *naming.Service
	convOpts  convert.Options
	logger    *slog.Logger
}

// New wires a pipeline from its collaborators. detector and renderer
// may be nil when detection or PDF generation are never requested; a
// nil namer gets a fresh naming service and a nil logger the default.
func New(converter Converter, composer Composer, detector detect.Detector, renderer render.DocumentRenderer, namer *naming.Service, convOpts convert.Options, logger *slog.Logger) *Pipeline {
	if namer == nil {
		namer = naming.NewService()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		converter: converter,
		composer:  composer,
		detector:  detector,
		renderer:  renderer,
		namer:     namer,
		convOpts:  convOpts,
		logger:    logger,
	}
}

// RunOptions configures one pipeline run.
type RunOptions struct {
	OutputDir      string
	TempDir        string
	CleanupOnError bool
	MaxRetries     int
	// OnProgress, when set, observes every progress update.
	OnProgress func(types.Progress)
}

// Result aggregates everything a job produced. DownloadURLs is
// populated by a separate URL construction concern and stays empty
// here.
type Result struct {
	JobID           string                 `json:"jobId"`
	ProcessedImages []types.ProcessedImage `json:"processedImages"`
	ComposedSheets  []types.ComposedSheet  `json:"composedSheets"`
	PDFPath         string                 `json:"pdfPath,omitempty"`
	DownloadURLs    map[string]string      `json:"downloadUrls"`
	Failures        []ImageFailure         `json:"failures,omitempty"`
}

// ImageFailure records one image that exhausted its retries.
type ImageFailure struct {
	FileID   string `json:"fileId"`
	Path     string `json:"path"`
	Attempts int    `json:"attempts"`
	Reason   string `json:"reason"`
}

// outcome is the discriminated per-image result of stage 1: either a
// processed image or a failure reason, always with an attempt count.
type outcome struct {
	file     types.JobFile
	image    types.ProcessedImage
	attempts int
	err      error
}

// Run executes the job. The job's status and progress are mutated as
// stages advance; the processed image order always matches the input
// file order.
func (p *Pipeline) Run(ctx context.Context, job *types.Job, opts RunOptions) (*Result, error) {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if err := utils.EnsureDir(opts.OutputDir); err != nil {
		job.Status = types.JobFailed
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	job.Status = types.JobProcessing
	result := &Result{JobID: job.ID, DownloadURLs: map[string]string{}}

	// Stage 1: per-image conversion with retry-before-advance.
	outcomes := p.convertAll(ctx, job, opts)
	for _, o := range outcomes {
		if o.err != nil {
			p.logger.Warn("image conversion failed",
				"file", o.file.Path, "attempts", o.attempts, "error", o.err)
			result.Failures = append(result.Failures, ImageFailure{
				FileID:   o.file.ID,
				Path:     o.file.Path,
				Attempts: o.attempts,
				Reason:   o.err.Error(),
			})
			continue
		}
		result.ProcessedImages = append(result.ProcessedImages, o.image)
	}
	if len(result.ProcessedImages) == 0 {
		job.Status = types.JobFailed
		p.cleanup(opts, result)
		return nil, fmt.Errorf("%w: all %d images failed conversion", ErrAllImagesFailed, len(job.Files))
	}

	// Stage 2: sheet composition. Failures here are absorbed.
	comp := job.Options.SheetComposition
	if comp != nil && comp.Enabled {
		p.setProgress(job, opts, len(job.Files), "composing sheets")
		sheets, err := p.composer.ComposeSheets(result.ProcessedImages, comp.GridLayout, comp.Orientation, opts.OutputDir)
		if err != nil {
			p.logger.Warn("sheet composition failed, continuing without sheets",
				"job", job.ID, "error", err)
		} else {
			result.ComposedSheets = sheets
		}
	}

	// Stage 3: document rendering, only when composition produced sheets.
	if comp != nil && comp.Enabled && comp.GeneratePDF && len(result.ComposedSheets) > 0 {
		p.setProgress(job, opts, len(job.Files), "rendering document")
		pdfPath, err := p.renderDocument(ctx, result.ComposedSheets, opts.OutputDir)
		if err != nil {
			job.Status = types.JobFailed
			p.cleanup(opts, result)
			return nil, err
		}
		result.PDFPath = pdfPath
	}

	job.Status = types.JobCompleted
	p.setProgress(job, opts, len(job.Files), "completed")
	return result, nil
}

// convertAll runs stage 1 sequentially, retrying each image up to
// MaxRetries attempts before recording it as failed and moving on.
func (p *Pipeline) convertAll(ctx context.Context, job *types.Job, opts RunOptions) []outcome {
	outcomes := make([]outcome, 0, len(job.Files))
	for i, file := range job.Files {
		p.setProgress(job, opts, i, "converting images")
		outcomes = append(outcomes, p.convertOne(ctx, job, file, opts))
		p.setProgress(job, opts, i+1, "converting images")
	}
	return outcomes
}

// convertOne computes a crop suggestion for a single file and converts
// it, with a bounded immediate-retry loop.
func (p *Pipeline) convertOne(ctx context.Context, job *types.Job, file types.JobFile, opts RunOptions) outcome {
	start := time.Now()

	meta, err := p.converter.Metadata(file.Path)
	if err != nil {
		return outcome{file: file, attempts: 1, err: err}
	}

	detections, strategy := p.detectSubjects(ctx, job, file)
	crop := detect.SuggestCrop(
		types.ImageSize{Width: meta.Width, Height: meta.Height},
		detections,
		job.Options.AspectRatio,
		strategy,
	)

	ext := p.convOpts.Format
	if ext == "" {
		ext = "jpg"
	}
	outputPath := filepath.Join(opts.OutputDir, p.namer.Name(file.ID, ext))

	var lastErr error
	for attempt := 1; attempt <= opts.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return outcome{file: file, attempts: attempt, err: err}
		}
		_, err := p.converter.Convert(file.Path, outputPath, job.Options.AspectRatio, crop, p.convOpts)
		if err == nil {
			return outcome{
				file:     file,
				attempts: attempt,
				image: types.ProcessedImage{
					ID:             uuid.NewString(),
					OriginalFileID: file.ID,
					ProcessedPath:  outputPath,
					CropArea:       crop,
					AspectRatio:    job.Options.AspectRatio,
					Detections:     detections,
					ProcessingTime: time.Since(start),
				},
			}
		}
		lastErr = err
		p.logger.Debug("conversion attempt failed",
			"file", file.Path, "attempt", attempt, "error", err)
	}
	return outcome{file: file, attempts: opts.MaxRetries, err: lastErr}
}

// detectSubjects runs the detector when the job asks for it. Detector
// errors degrade to an empty detection set so the crop falls back to
// center.
func (p *Pipeline) detectSubjects(ctx context.Context, job *types.Job, file types.JobFile) ([]types.Detection, types.CropStrategy) {
	strategy := job.Options.CropStrategy
	if strategy == "" {
		strategy = types.StrategyCenter
	}

	if !job.Options.FaceDetectionEnabled || p.detector == nil {
		return nil, strategy
	}
	if job.Options.CropStrategy == "" {
		strategy = types.StrategyCenterFaces
	}

	res, err := p.detector.Detect(ctx, file.Path)
	if err != nil {
		p.logger.Warn("subject detection failed, falling back to center crop",
			"file", file.Path, "error", err)
		return nil, strategy
	}
	return res.Detections, strategy
}

// renderDocument validates sheet files and delegates to the renderer.
func (p *Pipeline) renderDocument(ctx context.Context, sheets []types.ComposedSheet, outputDir string) (string, error) {
	for _, s := range sheets {
		if !utils.FileExists(s.SheetPath) {
			return "", fmt.Errorf("sheet file missing: %s", s.SheetPath)
		}
	}
	if p.renderer == nil {
		return "", fmt.Errorf("document rendering requested but no renderer configured")
	}
	return p.renderer.Render(ctx, sheets, outputDir)
}

// setProgress mutates the job's progress record. The processed count
// never decreases.
func (p *Pipeline) setProgress(job *types.Job, opts RunOptions, processed int, stage string) {
	if processed < job.Progress.ProcessedImages {
		processed = job.Progress.ProcessedImages
	}
	total := len(job.Files)
	pct := 0.0
	if total > 0 {
		pct = float64(processed) / float64(total) * 100
	}
	job.Progress = types.Progress{
		ProcessedImages: processed,
		TotalImages:     total,
		Stage:           stage,
		Percentage:      pct,
	}
	if opts.OnProgress != nil {
		opts.OnProgress(job.Progress)
	}
}

// cleanup removes partial outputs after a fatal failure when requested.
func (p *Pipeline) cleanup(opts RunOptions, result *Result) {
	if !opts.CleanupOnError {
		return
	}
	for _, img := range result.ProcessedImages {
		_ = os.Remove(img.ProcessedPath)
	}
	for _, s := range result.ComposedSheets {
		_ = os.Remove(s.SheetPath)
	}
}
