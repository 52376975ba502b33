package detection

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"frame-guide/internal/domain/entity"
	"frame-guide/internal/domain/geometry"
	"frame-guide/internal/domain/port"
)

// ollamaTimeout bounds one chat call; vision models on CPU are slow.
const ollamaTimeout = 5 * time.Minute

const ollamaPrompt = `List the distinct physical objects visible in this image.
Answer with JSON only, no prose, in this exact shape:
{"objects":[{"name":"cup","score":0.9,"box":{"x":0.1,"y":0.2,"w":0.3,"h":0.4}}]}
name is a short lowercase noun. score is your confidence between 0 and 1.
box is the object's bounding box: x,y is the top-left corner and w,h the size,
all as fractions of the image width and height between 0 and 1.
If nothing is visible answer {"objects":[]}.`

var (
	reBlockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reLineComment  = regexp.MustCompile(`(?m)//.*$`)
	reTrailing     = regexp.MustCompile(`,(\s*[}\]])`)
)

type ollamaBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type ollamaObject struct {
	Name  string    `json:"name"`
	Score float64   `json:"score"`
	Box   ollamaBox `json:"box"`
}

type ollamaAnswer struct {
	Objects []ollamaObject `json:"objects"`
}

// OllamaDetector asks a local vision-language model for object boxes and
// turns them into detection polygons.
type OllamaDetector struct {
	client     *api.Client
	httpClient *http.Client
	model      string
}

// NewOllamaDetector creates a detector talking to the Ollama server at rawURL.
// A nil httpClient gets a 5 minute timeout.
func NewOllamaDetector(rawURL, model string, httpClient *http.Client) (*OllamaDetector, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid ollama url %q", rawURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: ollamaTimeout}
	}

	// drop any path such as /api/chat, the client adds its own
	base := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}

	return &OllamaDetector{
		client:     api.NewClient(base, httpClient),
		httpClient: httpClient,
		model:      model,
	}, nil
}

func (d *OllamaDetector) Detect(ctx context.Context, frame *entity.Frame) ([]entity.DetectedObject, error) {
	if frame == nil || len(frame.Data) == 0 {
		return nil, fmt.Errorf("%w: empty frame", port.ErrDetectionTransport)
	}

	stream := false
	req := &api.ChatRequest{
		Model: d.model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: ollamaPrompt,
				Images:  []api.ImageData{api.ImageData(frame.Data)},
			},
		},
		Stream:  &stream,
		Options: map[string]any{"temperature": 0},
	}

	var content strings.Builder
	err := d.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: ollama chat: %v", port.ErrDetectionTransport, err)
	}

	objects, err := parseObjects(content.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrDetectionTransport, err)
	}
	return objects, nil
}

// parseObjects reads the model answer. Boxes are clamped to the unit square
// and boxes with no area are dropped.
func parseObjects(raw string) ([]entity.DetectedObject, error) {
	raw = sanitizeModelJSON(raw)
	if !strings.HasPrefix(raw, "{") {
		return nil, fmt.Errorf("model answer is not JSON")
	}

	var answer ollamaAnswer
	if err := json.Unmarshal([]byte(raw), &answer); err != nil {
		return nil, fmt.Errorf("decode model answer: %w", err)
	}

	objects := make([]entity.DetectedObject, 0, len(answer.Objects))
	for _, o := range answer.Objects {
		name := strings.ToLower(strings.TrimSpace(o.Name))
		if name == "" {
			continue
		}
		minX, minY := clamp01(o.Box.X), clamp01(o.Box.Y)
		maxX, maxY := clamp01(o.Box.X+o.Box.W), clamp01(o.Box.Y+o.Box.H)
		if maxX <= minX || maxY <= minY {
			continue
		}
		objects = append(objects, entity.DetectedObject{
			Name:  name,
			Score: clamp01(o.Score),
			BoundingPoly: entity.BoundingPoly{
				NormalizedVertices: geometry.Rect(minX, minY, maxX, maxY),
			},
		})
	}
	return objects, nil
}

// sanitizeModelJSON strips code fences, comments and trailing commas, and
// keeps only the outermost object.
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

	raw = reBlockComment.ReplaceAllString(raw, "")
	raw = reLineComment.ReplaceAllString(raw, "")
	raw = reTrailing.ReplaceAllString(raw, "$1")

	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

var _ port.ObjectDetector = (*OllamaDetector)(nil)
