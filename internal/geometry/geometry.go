// Package geometry holds the point math shared by landmark lookup and filter placement.
package geometry

import "math"

// Point represents a 2D point, either in pixels or normalized to [0,1]
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Distance returns the Euclidean distance between two points
func Distance(p1, p2 Point) float64 {
	dx := p1.X - p2.X
	dy := p1.Y - p2.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Angle returns the signed angle in degrees of the vector p1->p2, in (-180, 180]
func Angle(p1, p2 Point) float64 {
	deg := math.Atan2(p2.Y-p1.Y, p2.X-p1.X) * 180 / math.Pi
	if deg <= -180 {
		return 180
	}
	return deg
}
