// Package geometry holds the pure polygon math used to judge framing:
// centroids, areas, clipping and overlap of detection polygons.
package geometry

import (
	"errors"
	"fmt"
	"math"
)

// MinVertices is the smallest vertex count of a closed polygon.
const MinVertices = 3

// epsilon below which an area is treated as zero
const epsilon = 1e-12

// ErrInvalidPolygon matches every *InvalidPolygonError.
var ErrInvalidPolygon = errors.New("invalid polygon")

// InvalidPolygonError reports a polygon with too few vertices.
type InvalidPolygonError struct {
	Vertices int
}

func (e *InvalidPolygonError) Error() string {
	return fmt.Sprintf("invalid polygon: %d vertices, need at least %d", e.Vertices, MinVertices)
}

// Is makes errors.Is(err, ErrInvalidPolygon) hold.
func (e *InvalidPolygonError) Is(target error) bool {
	return target == ErrInvalidPolygon
}

// Polygon is an ordered, closed sequence of normalized vertices.
// The winding direction is not fixed.
type Polygon []Point

// Validate returns an *InvalidPolygonError when p has fewer than MinVertices.
func (p Polygon) Validate() error {
	if len(p) < MinVertices {
		return &InvalidPolygonError{Vertices: len(p)}
	}
	return nil
}

// Reversed returns a copy of p with the opposite winding.
func (p Polygon) Reversed() Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[len(p)-1-i] = v
	}
	return out
}

// Centroid returns the vertex mean of poly converted to pixel space.
func Centroid(poly Polygon, width, height float64) (PixelPoint, error) {
	if err := poly.Validate(); err != nil {
		return PixelPoint{}, err
	}

	var sumX, sumY float64
	for _, v := range poly {
		px := v.ToPixel(width, height)
		sumX += px.X
		sumY += px.Y
	}
	n := float64(len(poly))
	return PixelPoint{X: sumX / n, Y: sumY / n}, nil
}

// signedArea is positive for counter-clockwise winding (y up).
func signedArea(poly Polygon) float64 {
	if len(poly) < MinVertices {
		return 0
	}
	var sum float64
	for i := range poly {
		a := poly[i]
		b := poly[(i+1)%len(poly)]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

// Area returns the absolute shoelace area of poly.
func Area(poly Polygon) float64 {
	return math.Abs(signedArea(poly))
}

// Clip clips subject against the convex polygon clip (Sutherland–Hodgman).
// Either polygon may be wound in either direction. The result is empty
// when the polygons do not intersect.
func Clip(subject, clip Polygon) Polygon {
	if len(subject) < MinVertices || len(clip) < MinVertices {
		return nil
	}
	if signedArea(clip) < 0 {
		clip = clip.Reversed()
	}

	out := append(Polygon(nil), subject...)
	for i := range clip {
		if len(out) == 0 {
			break
		}
		a := clip[i]
		b := clip[(i+1)%len(clip)]

		in := out
		out = make(Polygon, 0, len(in)+1)
		prev := in[len(in)-1]
		for _, cur := range in {
			curIn := isLeft(a, b, cur)
			prevIn := isLeft(a, b, prev)
			switch {
			case curIn && prevIn:
				out = append(out, cur)
			case curIn && !prevIn:
				out = append(out, intersect(prev, cur, a, b), cur)
			case !curIn && prevIn:
				out = append(out, intersect(prev, cur, a, b))
			}
			prev = cur
		}
	}
	return out
}

// OverlapFraction returns the share of reference's area covered by subject,
// in [0,1]. reference must be convex. Degenerate inputs yield 0.
func OverlapFraction(subject, reference Polygon) float64 {
	refArea := Area(reference)
	if refArea < epsilon || len(subject) < MinVertices {
		return 0
	}

	inter := Clip(subject, reference)
	if len(inter) < MinVertices {
		return 0
	}

	frac := Area(inter) / refArea
	return math.Min(1, math.Max(0, frac))
}

// Contains reports whether p lies inside poly (even-odd rule).
func Contains(poly Polygon, p Point) bool {
	if len(poly) < MinVertices {
		return false
	}
	inside := false
	j := len(poly) - 1
	for i := range poly {
		vi, vj := poly[i], poly[j]
		if (vi.Y > p.Y) != (vj.Y > p.Y) &&
			p.X < (vj.X-vi.X)*(p.Y-vi.Y)/(vj.Y-vi.Y)+vi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// isLeft reports whether p is on the inner side of edge a->b of a
// counter-clockwise polygon. Points on the edge count as inside.
func isLeft(a, b, p Point) bool {
	return (b.X-a.X)*(p.Y-a.Y)-(b.Y-a.Y)*(p.X-a.X) >= 0
}

// intersect returns the intersection of segment p1-p2 with the line a-b.
func intersect(p1, p2, a, b Point) Point {
	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	ex, ey := b.X-a.X, b.Y-a.Y
	denom := dx*ey - dy*ex
	if denom == 0 {
		return p2
	}
	t := ((a.X-p1.X)*ey - (a.Y-p1.Y)*ex) / denom
	return Point{X: p1.X + t*dx, Y: p1.Y + t*dy}
}
