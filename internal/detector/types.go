package detector

import (
	"github.com/dudu/snapfilter/internal/geometry"
	"github.com/dudu/snapfilter/internal/landmarks"
)

// Point represents a 2D point in frame pixels
type Point struct {
	X, Y float32
}

func (p Point) geometry() geometry.Point {
	return geometry.Pt(float64(p.X), float64(p.Y))
}

// BoundingBox represents a face bounding box
type BoundingBox struct {
	X1, Y1 float32 // top-left
	X2, Y2 float32 // bottom-right
}

// Width returns box width
func (b BoundingBox) Width() float32 {
	return b.X2 - b.X1
}

// Height returns box height
func (b BoundingBox) Height() float32 {
	return b.Y2 - b.Y1
}

// Center returns box center point
func (b BoundingBox) Center() Point {
	return Point{
		X: (b.X1 + b.X2) / 2,
		Y: (b.Y1 + b.Y2) / 2,
	}
}

// Area returns box area
func (b BoundingBox) Area() float32 {
	return b.Width() * b.Height()
}

// Keypoints are the 5 coarse points SCRFD predicts with each box
type Keypoints struct {
	LeftEye    Point // index 0
	RightEye   Point // index 1
	Nose       Point // index 2
	LeftMouth  Point // index 3
	RightMouth Point // index 4
}

// Roll returns the in-plane head tilt in degrees, measured along the eye line
func (k Keypoints) Roll() float64 {
	return geometry.Angle(k.LeftEye.geometry(), k.RightEye.geometry())
}

// Face represents a detected face
type Face struct {
	BoundingBox BoundingBox
	Keypoints   Keypoints
	Score       float32
	Mesh        landmarks.Set // normalized face mesh, nil until FaceMesh has run
	Presence    float32       // face-mesh presence confidence
}
