package pipeline

import (
	"gocv.io/x/gocv"

	"github.com/dudu/snapfilter/internal/landmarks"
)

// Detector produces one normalized landmark set per detected face
type Detector interface {
	Detect(img gocv.Mat) ([]landmarks.Set, error)
	Close() error
}
