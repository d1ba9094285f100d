package detect

import (
	"github.com/pankaj139/pixelforge/pkg/types"
)

// centerConfidence is the confidence assigned to a blind center crop.
const centerConfidence = 0.5

// SuggestCrop computes the crop window for a target aspect ratio. The
// window is always the largest target-ratio rectangle that fits inside
// the image; the strategy only decides where it sits. Empty detections
// always fall back to a deterministic center crop.
func SuggestCrop(size types.ImageSize, detections []types.Detection, target types.AspectRatio, strategy types.CropStrategy) types.CropArea {
	cropW, cropH := windowSize(size, target)

	var x, y int
	confidence := centerConfidence

	switch strategy {
	case types.StrategyCenterFaces:
		subjects := preferFaces(detections)
		if len(subjects) > 0 {
			cx, cy := weightedCenter(subjects)
			x, y = cx-cropW/2, cy-cropH/2
			confidence = averageConfidence(subjects)
		} else {
			x, y = centerPosition(size, cropW, cropH)
		}
	case types.StrategyPreserveAll:
		if len(detections) > 0 {
			x, y = preserveAllPosition(detections, cropW, cropH)
			confidence = averageConfidence(detections)
		} else {
			x, y = centerPosition(size, cropW, cropH)
		}
	default: // center
		x, y = centerPosition(size, cropW, cropH)
	}

	// Keep the window inside the image
	x = max(0, min(x, size.Width-cropW))
	y = max(0, min(y, size.Height-cropH))

	return types.CropArea{X: x, Y: y, Width: cropW, Height: cropH, Confidence: confidence}
}

// windowSize returns the largest target-ratio rectangle fitting inside
// the image.
func windowSize(size types.ImageSize, target types.AspectRatio) (int, int) {
	targetRatio := target.Ratio()
	currentRatio := float64(size.Width) / float64(size.Height)

	var w, h int
	if currentRatio > targetRatio {
		// Image is wider than the target, crop width
		h = size.Height
		w = int(float64(h) * targetRatio)
	} else {
		// Image is taller than the target, crop height
		w = size.Width
		h = int(float64(w) / targetRatio)
	}
	return min(w, size.Width), min(h, size.Height)
}

func centerPosition(size types.ImageSize, cropW, cropH int) (int, int) {
	return (size.Width - cropW) / 2, (size.Height - cropH) / 2
}

// preferFaces returns the face detections when any exist, otherwise the
// person detections.
func preferFaces(detections []types.Detection) []types.Detection {
	var faces, persons []types.Detection
	for _, d := range detections {
		if d.Type == types.DetectionFace {
			faces = append(faces, d)
		} else {
			persons = append(persons, d)
		}
	}
	if len(faces) > 0 {
		return faces
	}
	return persons
}

// weightedCenter computes the confidence-and-area weighted centroid of
// the detections.
func weightedCenter(detections []types.Detection) (int, int) {
	var totalX, totalY, totalWeight float64
	for _, d := range detections {
		weight := d.Confidence * float64(d.Width*d.Height)
		totalX += float64(d.X+d.Width/2) * weight
		totalY += float64(d.Y+d.Height/2) * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return 0, 0
	}
	return int(totalX / totalWeight), int(totalY / totalWeight)
}

// preserveAllPosition places the window over the union of all detected
// regions, shifting edges inward so every detection stays inside when
// the union fits at all.
func preserveAllPosition(detections []types.Detection, cropW, cropH int) (int, int) {
	minX, minY := detections[0].X, detections[0].Y
	maxX := detections[0].X + detections[0].Width
	maxY := detections[0].Y + detections[0].Height
	for _, d := range detections[1:] {
		minX = min(minX, d.X)
		minY = min(minY, d.Y)
		maxX = max(maxX, d.X+d.Width)
		maxY = max(maxY, d.Y+d.Height)
	}

	x := (minX+maxX)/2 - cropW/2
	y := (minY+maxY)/2 - cropH/2

	if maxX-minX > cropW || maxY-minY > cropH {
		// Union does not fit, center on it and accept the loss
		return x, y
	}

	if x > minX {
		x = minX
	}
	if y > minY {
		y = minY
	}
	if x+cropW < maxX {
		x = maxX - cropW
	}
	if y+cropH < maxY {
		y = maxY - cropH
	}
	return x, y
}

func averageConfidence(detections []types.Detection) float64 {
	if len(detections) == 0 {
		return centerConfidence
	}
	var sum float64
	for _, d := range detections {
		sum += d.Confidence
	}
	avg := sum / float64(len(detections))
	return clamp01(avg)
}
