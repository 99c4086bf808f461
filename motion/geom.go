package motion

import (
	"math"
)

// Point is a 2D position in the tracking plane
type Point struct {
	X float64
	Y float64
}

// NewPoint creates a new Point
func NewPoint(x, y float64) Point {
	return Point{
		X: x,
		Y: y,
	}
}

func euclideanDistance(p1, p2 Point) float64 {
	return math.Sqrt(math.Pow(p1.X-p2.X, 2) + math.Pow(p1.Y-p2.Y, 2))
}
