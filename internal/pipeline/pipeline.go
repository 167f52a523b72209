package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/dudu/snapfilter/internal/filter"
)

// Timing holds performance timing information
type Timing struct {
	Detection time.Duration
	Composite time.Duration
	Total     time.Duration
}

// Result describes one processed frame
type Result struct {
	Faces  int
	Timing Timing
}

// LandmarksDetected reports whether any face had landmarks
func (r Result) LandmarksDetected() bool {
	return r.Faces > 0
}

// Pipeline detects faces and applies filters to frames
type Pipeline struct {
	detector   Detector
	dispatcher *Dispatcher
	log        logrus.FieldLogger

	// Inference sessions are not assumed reentrant
	detectMu sync.Mutex
}

// New creates a pipeline. The pipeline owns detector and closes it.
func New(detector Detector, dispatcher *Dispatcher, log logrus.FieldLogger) *Pipeline {
	return &Pipeline{
		detector:   detector,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Process applies the named filter to frame in place.
// With an empty filter name faces are still detected and counted.
// An unrecognized filter name leaves the frame untouched with zero faces.
func (p *Pipeline) Process(frame *gocv.Mat, filterName string) (Result, error) {
	totalStart := time.Now()
	var result Result

	if frame == nil || frame.Empty() {
		return result, fmt.Errorf("empty frame")
	}

	if filterName != "" {
		if _, ok := filter.ParseKind(filterName); !ok {
			p.log.WithField("filter", filterName).Debug("Unknown filter requested")
			result.Timing.Total = time.Since(totalStart)
			return result, nil
		}
	}

	detectStart := time.Now()
	p.detectMu.Lock()
	faces, err := p.detector.Detect(*frame)
	p.detectMu.Unlock()
	result.Timing.Detection = time.Since(detectStart)

	if err != nil {
		return result, fmt.Errorf("detection failed: %w", err)
	}

	if filterName == "" {
		result.Faces = CountFaces(faces)
	} else {
		compositeStart := time.Now()
		result.Faces = p.dispatcher.Apply(frame, filterName, faces)
		result.Timing.Composite = time.Since(compositeStart)
	}

	result.Timing.Total = time.Since(totalStart)

	p.log.WithFields(logrus.Fields{
		"filter":    filterName,
		"faces":     result.Faces,
		"detection": result.Timing.Detection,
		"total":     result.Timing.Total,
	}).Trace("Processed frame")

	return result, nil
}

// Close releases pipeline resources
func (p *Pipeline) Close() error {
	if p.detector != nil {
		if err := p.detector.Close(); err != nil {
			return fmt.Errorf("cleanup errors: %w", err)
		}
	}
	return nil
}
