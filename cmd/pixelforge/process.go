package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/pankaj139/pixelforge/internal/naming"
	"github.com/pankaj139/pixelforge/internal/utils"
	"github.com/pankaj139/pixelforge/pkg/convert"
	"github.com/pankaj139/pixelforge/pkg/detect"
	"github.com/pankaj139/pixelforge/pkg/pipeline"
	"github.com/pankaj139/pixelforge/pkg/render"
	"github.com/pankaj139/pixelforge/pkg/sheet"
	"github.com/pankaj139/pixelforge/pkg/types"
)

var (
	processAspect      string
	processGrid        string
	processOrientation string
	processPDF         bool
	processDetect      bool
	processOut         string
	processRetries     int
)

var processCmd = &cobra.Command{
	Use:   "process [files or directory]",
	Short: "Convert a batch of photos and optionally compose print sheets",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProcess,
}

func init() {
	processCmd.Flags().StringVar(&processAspect, "aspect-ratio", "4x6", "target aspect ratio (WxH, e.g. 4x6)")
	processCmd.Flags().StringVar(&processGrid, "grid", "", "grid layout name (1x1..3x3), enables sheet composition")
	processCmd.Flags().StringVar(&processOrientation, "orientation", "portrait", "sheet orientation: portrait or landscape")
	processCmd.Flags().BoolVar(&processPDF, "pdf", false, "render composed sheets into a PDF document")
	processCmd.Flags().BoolVar(&processDetect, "detect", false, "enable subject detection for crop placement")
	processCmd.Flags().StringVarP(&processOut, "out", "o", "", "output directory (default from config)")
	processCmd.Flags().IntVar(&processRetries, "retries", 0, "per-image retry attempts (default from config)")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no image files found in %v", args)
	}

	aspect, err := parseAspectRatio(processAspect)
	if err != nil {
		return err
	}

	opts := types.ProcessingOptions{
		AspectRatio:          aspect,
		FaceDetectionEnabled: processDetect,
	}
	if processGrid != "" {
		layout, ok := sheet.LayoutByName(processGrid)
		if !ok {
			return fmt.Errorf("grid layout not found: %s", processGrid)
		}
		opts.SheetComposition = &types.SheetCompositionOptions{
			Enabled:     true,
			GridLayout:  layout,
			Orientation: types.Orientation(processOrientation),
			GeneratePDF: processPDF,
		}
	}

	if v := pipeline.ValidateProcessingOptions(opts); !v.IsValid {
		return fmt.Errorf("invalid processing options:\n  %s", strings.Join(v.Errors, "\n  "))
	}

	var detector detect.Detector = detect.Disabled{}
	if processDetect {
		detector, err = detect.NewOllamaDetector(cfg.Detector.URL, cfg.Detector.Model)
		if err != nil {
			return err
		}
	}

	outDir := processOut
	if outDir == "" {
		outDir = cfg.Output.Dir
	}
	retries := processRetries
	if retries <= 0 {
		retries = cfg.Pipeline.MaxRetries
	}

	job := &types.Job{
		ID:      uuid.NewString(),
		Status:  types.JobPending,
		Options: opts,
	}
	for _, f := range files {
		job.Files = append(job.Files, types.JobFile{ID: uuid.NewString(), Path: f})
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("Processing images"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
	)

	p := pipeline.New(
		convert.NewEngine(),
		sheet.NewComposer(logger),
		detector,
		render.NewPDFRenderer(),
		naming.NewService(),
		convert.Options{
			Quality:          cfg.Engine.Quality,
			MinOutputSize:    types.ImageSize{Width: cfg.Engine.MinOutputWidth, Height: cfg.Engine.MinOutputHeight},
			MaxUpscaleFactor: cfg.Engine.MaxUpscaleFactor,
			Format:           cfg.Engine.Format,
		},
		logger,
	)

	result, err := p.Run(cmd.Context(), job, pipeline.RunOptions{
		OutputDir:      outDir,
		TempDir:        cfg.Output.TempDir,
		CleanupOnError: cfg.Pipeline.CleanupOnError,
		MaxRetries:     retries,
		OnProgress: func(prog types.Progress) {
			_ = bar.Set(prog.ProcessedImages)
		},
	})
	fmt.Println()
	if err != nil {
		return err
	}

	stats := pipeline.GetProcessingStats(result)
	fmt.Printf("Processed %d/%d images", stats.SuccessfulImages, stats.TotalImages)
	if stats.TotalSheets > 0 {
		fmt.Printf(", %d sheet(s)", stats.TotalSheets)
	}
	if stats.HasPDF {
		fmt.Printf(", PDF: %s", result.PDFPath)
	}
	fmt.Printf(" in %s\n", stats.ProcessingTime)

	for _, f := range result.Failures {
		fmt.Fprintf(os.Stderr, "failed: %s (%d attempts): %s\n", f.Path, f.Attempts, f.Reason)
	}
	return nil
}

// collectFiles expands the arguments into a flat image file list,
// recursing into directories.
func collectFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			found, err := utils.ListImageFiles(arg)
			if err != nil {
				return nil, err
			}
			files = append(files, found...)
			continue
		}
		files = append(files, arg)
	}
	return files, nil
}

// parseAspectRatio accepts "WxH" strings like "4x6".
func parseAspectRatio(s string) (types.AspectRatio, error) {
	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(parts) != 2 {
		return types.AspectRatio{}, fmt.Errorf("invalid aspect ratio %q, expected WxH", s)
	}
	w, err1 := strconv.Atoi(parts[0])
	h, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return types.AspectRatio{}, fmt.Errorf("invalid aspect ratio %q, expected WxH", s)
	}
	return types.AspectRatio{Width: w, Height: h, Name: s}, nil
}
