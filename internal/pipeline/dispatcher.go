package pipeline

import (
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/dudu/snapfilter/internal/filter"
	"github.com/dudu/snapfilter/internal/landmarks"
	"github.com/dudu/snapfilter/internal/overlay"
)

// AssetCache supplies decoded filter assets
type AssetCache interface {
	Get(kind filter.Kind) (*filter.Asset, bool)
}

// Dispatcher composites one filter kind onto every detected face of a frame
type Dispatcher struct {
	assets AssetCache
	log    logrus.FieldLogger
}

// NewDispatcher creates a dispatcher reading assets from cache
func NewDispatcher(assets AssetCache, log logrus.FieldLogger) *Dispatcher {
	return &Dispatcher{assets: assets, log: log}
}

// Apply blends the named filter onto each face in detector order, mutating
// frame in place. It returns the number of faces with landmarks, which
// includes faces skipped for insufficient landmarks or a missing asset.
// Unknown or empty filter names leave the frame untouched and return 0, as
// does a nil or empty frame.
func (d *Dispatcher) Apply(frame *gocv.Mat, filterName string, faces []landmarks.Set) int {
	if frame == nil || frame.Empty() {
		return 0
	}
	kind, ok := filter.ParseKind(filterName)
	if !ok {
		return 0
	}
	resolve, ok := filter.ResolverFor(kind)
	if !ok {
		return 0
	}

	width, height := frame.Cols(), frame.Rows()
	count := 0

	for i, face := range faces {
		if len(face) == 0 {
			continue
		}
		count++

		placement, ok := resolve(face, width, height)
		if !ok {
			d.log.WithFields(logrus.Fields{
				"filter": kind,
				"face":   i,
				"points": len(face),
			}).Debug("Insufficient landmarks, skipping face")
			continue
		}

		asset, ok := d.assets.Get(kind)
		if !ok {
			continue
		}

		overlay.Blend(frame, asset.Image, placement)
	}

	return count
}

// CountFaces returns the number of faces with landmarks
func CountFaces(faces []landmarks.Set) int {
	count := 0
	for _, face := range faces {
		if len(face) > 0 {
			count++
		}
	}
	return count
}
