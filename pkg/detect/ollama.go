package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/pankaj139/pixelforge/pkg/convert"
	"github.com/pankaj139/pixelforge/pkg/types"
)

// subjectPrompt asks the vision model for the dominant subjects as
// normalized bounding boxes.
const subjectPrompt = `You are an image subject locator for photo printing.

Return JSON only:
{
  "subjects": [
    {"type": "face|person", "confidence": 0.0, "box": {"x": 0.0, "y": 0.0, "w": 0.0, "h": 0.0}}
  ],
  "confidence": 0.0
}

HARD RULES
- All coordinates are normalized to [0,1] (NOT pixels).
- Each box must tightly include one face or one person.
- Report faces and the people they belong to as separate entries.
- "confidence" is your overall certainty that the listed subjects are correct.
- If no face or person is visible, return {"subjects": [], "confidence": 0.0}.
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// modelResponse mirrors the JSON shape requested by subjectPrompt.
type modelResponse struct {
	Subjects []struct {
		Type       string  `json:"type"`
		Confidence float64 `json:"confidence"`
		Box        struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
			W float64 `json:"w"`
			H float64 `json:"h"`
		} `json:"box"`
	} `json:"subjects"`
	Confidence float64 `json:"confidence"`
}

// OllamaDetector locates faces and persons using an Ollama vision model.
type OllamaDetector struct {
	client *api.Client
	model  string
}

// NewOllamaDetector creates a detector backed by the Ollama chat API at
// the given base URL.
func NewOllamaDetector(serverURL, model string) (*OllamaDetector, error) {
	parsed, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama URL: %w", err)
	}
	base := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}
	return &OllamaDetector{
		client: api.NewClient(base, http.DefaultClient),
		model:  model,
	}, nil
}

// Detect sends the image to the vision model and converts the reported
// normalized boxes into pixel-space detections. Responses that cannot
// be parsed degrade to an empty result so the caller can fall back to a
// center crop.
func (d *OllamaDetector) Detect(ctx context.Context, imagePath string) (Result, error) {
	meta, err := readImageBytes(imagePath)
	if err != nil {
		return Result{}, err
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 120*time.Second)
		defer cancel()
	}

	streamFalse := false
	req := &api.ChatRequest{
		Model: d.model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: subjectPrompt,
				Images:  []api.ImageData{api.ImageData(meta.data)},
			},
		},
		Stream: &streamFalse,
	}

	var content string
	err = d.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content = resp.Message.Content
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("ollama chat error: %w", err)
	}

	return parseDetections(content, meta.width, meta.height), nil
}

// parseDetections turns a model reply into a Result. Anything that does
// not parse as the requested JSON yields an empty, zero-confidence
// result rather than an error.
func parseDetections(raw string, imgWidth, imgHeight int) Result {
	raw = sanitizeModelJSON(raw)
	if !strings.HasPrefix(raw, "{") {
		return Result{}
	}

	var resp modelResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return Result{}
	}

	result := Result{Confidence: clamp01(resp.Confidence)}
	for _, s := range resp.Subjects {
		dt := types.DetectionPerson
		if strings.EqualFold(s.Type, "face") {
			dt = types.DetectionFace
		}
		w := int(clamp01(s.Box.W) * float64(imgWidth))
		h := int(clamp01(s.Box.H) * float64(imgHeight))
		if w <= 0 || h <= 0 {
			continue
		}
		result.Detections = append(result.Detections, types.Detection{
			Type:       dt,
			Confidence: clamp01(s.Confidence),
			X:          int(clamp01(s.Box.X) * float64(imgWidth)),
			Y:          int(clamp01(s.Box.Y) * float64(imgHeight)),
			Width:      w,
			Height:     h,
		})
	}
	return result
}

// sanitizeModelJSON removes code fences, comments and trailing commas
// from a model response before JSON parsing.
func sanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.Trim(strings.TrimSpace(raw), "`")

	raw = regexp.MustCompile(`(?s)/\*.*?\*/`).ReplaceAllString(raw, "")
	raw = regexp.MustCompile(`(?m)^\s*//.*$`).ReplaceAllString(raw, "")
	raw = regexp.MustCompile(`,(\s*[}\]])`).ReplaceAllString(raw, "$1")

	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}

type imageBytes struct {
	data   []byte
	width  int
	height int
}

// readImageBytes loads the raw file plus its dimensions, downscaling is
// left to the model side.
func readImageBytes(path string) (imageBytes, error) {
	meta, err := (&convert.Engine{}).Metadata(path)
	if err != nil {
		return imageBytes{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return imageBytes{}, fmt.Errorf("failed to read image: %w", err)
	}
	return imageBytes{data: data, width: meta.Width, height: meta.Height}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
