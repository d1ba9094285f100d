package convert

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/pankaj139/pixelforge/pkg/types"
)

// createTestImage creates a simple test image with a bright center
// region
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x > width/3 && x < 2*width/3 && y > height/3 && y < 2*height/3 {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.Set(x, y, color.RGBA{64, 64, 64, 255})
			}
		}
	}
	return img
}

func writeTestJPEG(t *testing.T, dir string, width, height int) string {
	t.Helper()
	path := filepath.Join(dir, "test.jpg")
	if err := imaging.Save(createTestImage(width, height), path); err != nil {
		t.Fatalf("failed to write test image: %v", err)
	}
	return path
}

func TestUpscaleFactor(t *testing.T) {
	minSize := types.ImageSize{Width: 800, Height: 600}

	tests := []struct {
		name       string
		cropW      int
		cropH      int
		maxFactor  float64
		wantFactor float64
	}{
		{"no upscale needed", 1000, 800, 2.0, 1},
		{"exact minimum", 800, 600, 2.0, 1},
		{"moderate upscale", 640, 480, 2.0, 1.25},
		{"clamped to max", 100, 100, 2.0, 2.0},
		{"clamped to custom max", 100, 100, 6.0, 6.0},
		{"height drives factor", 900, 400, 2.0, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UpscaleFactor(tt.cropW, tt.cropH, minSize, tt.maxFactor)
			if got != tt.wantFactor {
				t.Errorf("UpscaleFactor(%d, %d) = %v, want %v", tt.cropW, tt.cropH, got, tt.wantFactor)
			}
			if got > tt.maxFactor {
				t.Errorf("factor %v exceeds max %v", got, tt.maxFactor)
			}
		})
	}
}

func TestQualityScore(t *testing.T) {
	t.Run("high confidence no upscale stays good", func(t *testing.T) {
		if got := QualityScore(0.85, 1.0); got <= 80 {
			t.Errorf("QualityScore(0.85, 1.0) = %v, want > 80", got)
		}
	})

	t.Run("high confidence moderate upscale stays good", func(t *testing.T) {
		if got := QualityScore(0.95, 1.3); got <= 80 {
			t.Errorf("QualityScore(0.95, 1.3) = %v, want > 80", got)
		}
	})

	t.Run("heavy upscale drops below good threshold", func(t *testing.T) {
		if got := QualityScore(0.95, 6.0); got >= 80 {
			t.Errorf("QualityScore(0.95, 6.0) = %v, want < 80", got)
		}
	})

	t.Run("bounded to [0,100]", func(t *testing.T) {
		if got := QualityScore(0.1, 10.0); got != 0 {
			t.Errorf("expected floor of 0, got %v", got)
		}
		if got := QualityScore(1.0, 1.0); got > 100 {
			t.Errorf("expected ceiling of 100, got %v", got)
		}
	})

	t.Run("non-increasing in upscale factor", func(t *testing.T) {
		prev := QualityScore(0.9, 1.0)
		for _, f := range []float64{1.2, 1.5, 2.0, 3.0, 6.0} {
			cur := QualityScore(0.9, f)
			if cur > prev {
				t.Errorf("score increased from %v to %v at factor %v", prev, cur, f)
			}
			prev = cur
		}
	})

	t.Run("non-decreasing in confidence", func(t *testing.T) {
		prev := QualityScore(0.1, 1.2)
		for _, c := range []float64{0.3, 0.5, 0.7, 0.9, 1.0} {
			cur := QualityScore(c, 1.2)
			if cur < prev {
				t.Errorf("score decreased from %v to %v at confidence %v", prev, cur, c)
			}
			prev = cur
		}
	})
}

func TestPlanFor(t *testing.T) {
	t.Run("no enhancement at factor 1", func(t *testing.T) {
		plan := PlanFor(1.0)
		if plan.Denoise || plan.Sharpen != (SharpenParams{}) {
			t.Errorf("expected empty plan, got %+v", plan)
		}
	})

	t.Run("moderate upscale sharpens without denoise", func(t *testing.T) {
		plan := PlanFor(1.3)
		if plan.Denoise {
			t.Error("moderate tier must not denoise")
		}
		want := SharpenParams{Sigma: 0.5, M1: 0.5, M2: 2.0}
		if plan.Sharpen != want {
			t.Errorf("sharpen params = %+v, want %+v", plan.Sharpen, want)
		}
	})

	t.Run("significant upscale denoises then sharpens harder", func(t *testing.T) {
		for _, f := range []float64{2.0, 4.0, 6.0} {
			plan := PlanFor(f)
			if !plan.Denoise {
				t.Errorf("factor %v: expected denoise", f)
			}
			if plan.DenoiseRadius != 1 {
				t.Errorf("factor %v: denoise radius = %d, want 1", f, plan.DenoiseRadius)
			}
			want := SharpenParams{Sigma: 0.8, M1: 0.8, M2: 2.5}
			if plan.Sharpen != want {
				t.Errorf("factor %v: sharpen params = %+v, want %+v", f, plan.Sharpen, want)
			}
		}
	})
}

func TestConvert(t *testing.T) {
	engine := NewEngine()
	dir := t.TempDir()

	t.Run("crop without upscale", func(t *testing.T) {
		src := writeTestJPEG(t, dir, 1600, 1200)
		out := filepath.Join(dir, "out.jpg")

		crop := types.CropArea{X: 100, Y: 100, Width: 1000, Height: 800, Confidence: 0.9}
		metrics, err := engine.Convert(src, out, types.Print4x6, crop, DefaultOptions())
		if err != nil {
			t.Fatalf("Convert failed: %v", err)
		}

		if metrics.UpscaleFactor != 1 {
			t.Errorf("upscale factor = %v, want 1", metrics.UpscaleFactor)
		}
		if metrics.OriginalSize != (types.ImageSize{Width: 1600, Height: 1200}) {
			t.Errorf("original size = %+v", metrics.OriginalSize)
		}
		if metrics.FinalSize != (types.ImageSize{Width: 1000, Height: 800}) {
			t.Errorf("final size = %+v, want 1000x800", metrics.FinalSize)
		}
		if metrics.QualityScore <= 80 {
			t.Errorf("quality score = %v, want > 80", metrics.QualityScore)
		}
	})

	t.Run("small crop is upscaled", func(t *testing.T) {
		src := writeTestJPEG(t, dir, 1600, 1200)
		out := filepath.Join(dir, "out_upscaled.jpg")

		crop := types.CropArea{X: 0, Y: 0, Width: 400, Height: 300, Confidence: 0.9}
		metrics, err := engine.Convert(src, out, types.Print4x6, crop, DefaultOptions())
		if err != nil {
			t.Fatalf("Convert failed: %v", err)
		}

		if metrics.UpscaleFactor != 2.0 {
			t.Errorf("upscale factor = %v, want clamp at 2.0", metrics.UpscaleFactor)
		}
		if metrics.FinalSize.Width != 800 || metrics.FinalSize.Height != 600 {
			t.Errorf("final size = %+v, want 800x600", metrics.FinalSize)
		}
	})

	t.Run("unreadable source fails with contract message", func(t *testing.T) {
		bad := filepath.Join(dir, "garbage.jpg")
		if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := engine.Convert(bad, filepath.Join(dir, "never.jpg"), types.Print4x6,
			types.CropArea{Width: 10, Height: 10}, DefaultOptions())
		if !errors.Is(err, ErrUnreadableDimensions) {
			t.Fatalf("expected ErrUnreadableDimensions, got %v", err)
		}
		if err.Error() != "Unable to read image dimensions" {
			t.Errorf("error message = %q", err.Error())
		}
	})

	t.Run("crop outside bounds fails", func(t *testing.T) {
		src := writeTestJPEG(t, dir, 400, 300)
		_, err := engine.Convert(src, filepath.Join(dir, "never2.jpg"), types.Print4x6,
			types.CropArea{X: 500, Y: 500, Width: 100, Height: 100}, DefaultOptions())
		if err == nil {
			t.Fatal("expected error for out-of-bounds crop")
		}
	})
}
