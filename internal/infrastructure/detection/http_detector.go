// Package detection holds the object-detection service adapters.
package detection

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"frame-guide/internal/domain/entity"
	"frame-guide/internal/domain/port"
)

const defaultTimeout = 30 * time.Second

// maxResponseSize bounds the detector response body.
const maxResponseSize = 4 << 20

type detectRequest struct {
	Image string `json:"image"`
}

// HTTPDetector posts frames to a JSON object-detection endpoint. The
// endpoint answers with an array of detected objects.
type HTTPDetector struct {
	url    string
	client *http.Client
}

// NewHTTPDetector creates a detector for url. A nil client gets a 30s timeout.
func NewHTTPDetector(url string, client *http.Client) *HTTPDetector {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &HTTPDetector{url: url, client: client}
}

func (d *HTTPDetector) Detect(ctx context.Context, frame *entity.Frame) ([]entity.DetectedObject, error) {
	if frame == nil || len(frame.Data) == 0 {
		return nil, fmt.Errorf("%w: empty frame", port.ErrDetectionTransport)
	}

	body, err := json.Marshal(detectRequest{Image: dataURL(frame.Data)})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", port.ErrDetectionTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", port.ErrDetectionTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrDetectionTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", port.ErrDetectionTransport, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var objects []entity.DetectedObject
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&objects); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", port.ErrDetectionTransport, err)
	}
	if objects == nil {
		objects = []entity.DetectedObject{}
	}
	return objects, nil
}

func dataURL(jpeg []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpeg)
}

var _ port.ObjectDetector = (*HTTPDetector)(nil)
