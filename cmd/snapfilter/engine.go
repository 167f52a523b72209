package main

import (
	"fmt"

	"github.com/dudu/snapfilter/internal/detector"
	"github.com/dudu/snapfilter/internal/filter"
	"github.com/dudu/snapfilter/internal/inference"
	"github.com/dudu/snapfilter/internal/pipeline"
)

// engine bundles the pipeline with the resources it depends on
type engine struct {
	pipeline *pipeline.Pipeline
	assets   *filter.Cache
}

// newEngine initializes ONNX Runtime, loads both detector models and the
// asset cache
func newEngine() (*engine, error) {
	if err := inference.Initialize(cfg.ORTLibrary); err != nil {
		return nil, fmt.Errorf("failed to initialize inference: %w", err)
	}

	det, err := detector.NewMeshDetector(detector.MeshConfig{
		FaceModel:              cfg.FaceModel,
		MeshModel:              cfg.MeshModel,
		MaxFaces:               cfg.MaxFaces,
		MinDetectionConfidence: float32(cfg.MinDetectionConfidence),
		MinPresenceConfidence:  float32(cfg.MinPresenceConfidence),
	}, log)
	if err != nil {
		inference.Shutdown()
		return nil, fmt.Errorf("failed to create detector: %w", err)
	}

	assets := filter.NewCache(filter.DirSource{Dir: cfg.AssetsDir}, log)
	dispatcher := pipeline.NewDispatcher(assets, log)

	return &engine{
		pipeline: pipeline.New(det, dispatcher, log),
		assets:   assets,
	}, nil
}

// Close releases pipeline resources
func (e *engine) Close() error {
	var errs []error

	if err := e.pipeline.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := e.assets.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := inference.Shutdown(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}
