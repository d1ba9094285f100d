package types

import "time"

// AspectRatio is a target width:height proportion for converted images.
type AspectRatio struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Name   string `json:"name"`
}

// Ratio returns the aspect ratio as a single float (width / height).
func (a AspectRatio) Ratio() float64 {
	return float64(a.Width) / float64(a.Height)
}

// Common print aspect ratios
var (
	Print4x6  = AspectRatio{4, 6, "4x6"}
	Print5x7  = AspectRatio{5, 7, "5x7"}
	Print8x10 = AspectRatio{8, 10, "8x10"}
	Square    = AspectRatio{1, 1, "square"}
	Instagram = AspectRatio{4, 5, "instagram"}
)

// CropArea is a rectangle in source-image pixel space together with a
// [0,1] confidence describing how well it satisfies composition goals.
type CropArea struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Confidence float64 `json:"confidence"`
}

// DetectionType classifies a detected subject region.
type DetectionType string

const (
	DetectionFace   DetectionType = "face"
	DetectionPerson DetectionType = "person"
)

// Detection is one subject region reported by a detector.
type Detection struct {
	Type       DetectionType `json:"type"`
	Confidence float64       `json:"confidence"`
	X          int           `json:"x"`
	Y          int           `json:"y"`
	Width      int           `json:"width"`
	Height     int           `json:"height"`
}

// ImageSize holds pixel dimensions.
type ImageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ConversionMetrics is the ephemeral result of one conversion call.
type ConversionMetrics struct {
	OriginalSize  ImageSize `json:"originalSize"`
	FinalSize     ImageSize `json:"finalSize"`
	CropArea      CropArea  `json:"cropArea"`
	UpscaleFactor float64   `json:"upscaleFactor"`
	QualityScore  float64   `json:"qualityScore"`
}

// ProcessedImage is the immutable output of one successful conversion.
type ProcessedImage struct {
	ID             string        `json:"id"`
	OriginalFileID string        `json:"originalFileId"`
	ProcessedPath  string        `json:"processedPath"`
	CropArea       CropArea      `json:"cropArea"`
	AspectRatio    AspectRatio   `json:"aspectRatio"`
	Detections     []Detection   `json:"detections,omitempty"`
	ProcessingTime time.Duration `json:"processingTime"`
}

// GridLayout describes how many images fit on one composed sheet.
type GridLayout struct {
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
	Name    string `json:"name"`
}

// Capacity returns the number of grid cells.
func (g GridLayout) Capacity() int {
	return g.Rows * g.Columns
}

// Orientation of a composed sheet.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// ComposedSheet is one rendered A4 page holding a grid of placed images.
// Images references the input slice; the sheet does not own the images.
type ComposedSheet struct {
	ID          string           `json:"id"`
	SheetPath   string           `json:"sheetPath"`
	Layout      GridLayout       `json:"layout"`
	Orientation Orientation      `json:"orientation"`
	Images      []ProcessedImage `json:"images"`
	EmptySlots  int              `json:"emptySlots"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// CropStrategy selects how the crop window is positioned.
type CropStrategy string

const (
	StrategyCenter      CropStrategy = "center"
	StrategyCenterFaces CropStrategy = "center_faces"
	StrategyPreserveAll CropStrategy = "preserve_all"
)

// SheetCompositionOptions configures the optional sheet composition stage.
type SheetCompositionOptions struct {
	Enabled     bool        `json:"enabled"`
	GridLayout  GridLayout  `json:"gridLayout"`
	Orientation Orientation `json:"orientation"`
	GeneratePDF bool        `json:"generatePDF"`
}

// ProcessingOptions configures one pipeline job.
type ProcessingOptions struct {
	AspectRatio          AspectRatio              `json:"aspectRatio"`
	FaceDetectionEnabled bool                     `json:"faceDetectionEnabled"`
	CropStrategy         CropStrategy             `json:"cropStrategy,omitempty"`
	SheetComposition     *SheetCompositionOptions `json:"sheetComposition,omitempty"`
}

// JobStatus is the lifecycle state of a pipeline job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Progress is mutated by the orchestrator while a job advances. The
// processed count only ever increases.
type Progress struct {
	ProcessedImages int     `json:"processedImages"`
	TotalImages     int     `json:"totalImages"`
	Stage           string  `json:"stage"`
	Percentage      float64 `json:"percentage"`
}

// JobFile is one source file submitted with a job.
type JobFile struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

// Job is the unit of orchestration.
type Job struct {
	ID       string            `json:"id"`
	Status   JobStatus         `json:"status"`
	Files    []JobFile         `json:"files"`
	Options  ProcessingOptions `json:"options"`
	Progress Progress          `json:"progress"`
}
