package vision

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register WebP for image.Decode

	"frame-guide/internal/domain/entity"
	"frame-guide/internal/domain/port"
)

// ErrEmptyImage is returned for zero-length input.
var ErrEmptyImage = errors.New("empty image")

// FramePreparer decodes photos of any supported format, bounds their size
// and re-encodes them as JPEG for the detector.
type FramePreparer struct {
	MaxSide int // longest side after downscaling, 0 keeps the original size
	Quality int // JPEG quality 1-100
}

// NewFramePreparer creates a preparer with JPEG quality 85.
func NewFramePreparer(maxSide int) *FramePreparer {
	return &FramePreparer{
		MaxSide: maxSide,
		Quality: 85,
	}
}

// PrepareFrame decodes data (JPEG, PNG, GIF, BMP, TIFF or WebP) and returns
// a JPEG frame whose dimensions match the encoded image.
func (p *FramePreparer) PrepareFrame(data []byte) (*entity.Frame, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	if p.MaxSide > 0 && (b.Dx() > p.MaxSide || b.Dy() > p.MaxSide) {
		img = imaging.Fit(img, p.MaxSide, p.MaxSide, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(p.Quality)); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	return &entity.Frame{
		Data: buf.Bytes(),
		Dimensions: entity.FrameDimensions{
			Width:  img.Bounds().Dx(),
			Height: img.Bounds().Dy(),
		},
		CapturedAt: time.Now(),
	}, nil
}

var _ port.FramePreparer = (*FramePreparer)(nil)
