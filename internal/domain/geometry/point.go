package geometry

// Point is a vertex in normalized image space, both axes in [0,1].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PixelPoint is a coordinate in absolute pixel space.
type PixelPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ToPixel converts a normalized point to pixel space for a frame of the given size.
func (p Point) ToPixel(width, height float64) PixelPoint {
	return PixelPoint{X: p.X * width, Y: p.Y * height}
}

// Sub returns the offset from q to p.
func (p PixelPoint) Sub(q PixelPoint) PixelPoint {
	return PixelPoint{X: p.X - q.X, Y: p.Y - q.Y}
}
