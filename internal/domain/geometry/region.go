package geometry

// Rect returns the axis-aligned rectangle polygon spanning [minX,maxX]x[minY,maxY].
func Rect(minX, minY, maxX, maxY float64) Polygon {
	return Polygon{
		{X: minX, Y: minY},
		{X: maxX, Y: minY},
		{X: maxX, Y: maxY},
		{X: minX, Y: maxY},
	}
}

// DefaultTargetRegion is the centered square an object should fill: 40%–60% of each axis.
func DefaultTargetRegion() Polygon {
	return Rect(0.4, 0.4, 0.6, 0.6)
}
