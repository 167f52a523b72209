package detector

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/dudu/snapfilter/internal/inference"
	"github.com/dudu/snapfilter/internal/landmarks"
)

// MeshConfig configures a MeshDetector
type MeshConfig struct {
	FaceModel              string
	MeshModel              string
	MaxFaces               int
	MinDetectionConfidence float32
	MinPresenceConfidence  float32
	Session                inference.Options
}

// MeshDetector finds faces with SCRFD and runs the face mesh model on each,
// producing one normalized landmark set per face
type MeshDetector struct {
	faces       *SCRFD
	mesh        *FaceMesh
	minPresence float32
	log         logrus.FieldLogger
}

// NewMeshDetector loads both models. inference.Initialize must have been called.
func NewMeshDetector(cfg MeshConfig, log logrus.FieldLogger) (*MeshDetector, error) {
	faces, err := NewSCRFD(cfg.FaceModel, 640, cfg.MinDetectionConfidence, 0.4, cfg.MaxFaces, cfg.Session, log)
	if err != nil {
		return nil, err
	}

	mesh, err := NewFaceMesh(cfg.MeshModel, cfg.Session, log)
	if err != nil {
		faces.Close()
		return nil, err
	}

	return &MeshDetector{
		faces:       faces,
		mesh:        mesh,
		minPresence: cfg.MinPresenceConfidence,
		log:         log,
	}, nil
}

// Detect returns landmark sets for up to MaxFaces faces, most confident first
func (d *MeshDetector) Detect(img gocv.Mat) ([]landmarks.Set, error) {
	if img.Empty() {
		return nil, nil
	}

	faces, err := d.faces.Detect(img)
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}

	sets := make([]landmarks.Set, 0, len(faces))
	for i := range faces {
		face := &faces[i]
		if err := d.mesh.Detect(img, face); err != nil {
			return nil, err
		}
		if face.Presence < d.minPresence {
			d.log.WithFields(logrus.Fields{
				"score":    face.Score,
				"presence": face.Presence,
			}).Debug("Dropping face below presence threshold")
			continue
		}
		sets = append(sets, face.Mesh)
	}

	return sets, nil
}

// Close releases both models
func (d *MeshDetector) Close() error {
	err := d.faces.Close()
	if merr := d.mesh.Close(); err == nil {
		err = merr
	}
	return err
}
