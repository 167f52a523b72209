package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds process configuration read from the environment
type Config struct {
	Addr string

	AssetsDir string

	ScreenshotBackend string
	ScreenshotDir     string
	S3Bucket          string
	S3Region          string
	S3Prefix          string

	ORTLibrary             string
	FaceModel              string
	MeshModel              string
	MaxFaces               int
	MinDetectionConfidence float64
	MinPresenceConfidence  float64

	JPEGQuality int
	RateLimit   float64

	LogLevel string
	LogFile  string
	Debug    bool
}

// Screenshot backends
const (
	BackendDisk = "disk"
	BackendS3   = "s3"
)

// Load reads .env (if present) and the SNAPFILTER_* environment variables.
// Variables already set in the environment take precedence over .env.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	r := reader{}
	cfg := &Config{
		Addr:                   r.getString("SNAPFILTER_ADDR", ":5000"),
		AssetsDir:              r.getString("SNAPFILTER_ASSETS_DIR", "static/filters"),
		ScreenshotBackend:      r.getString("SNAPFILTER_SCREENSHOT_BACKEND", BackendDisk),
		ScreenshotDir:          r.getString("SNAPFILTER_SCREENSHOT_DIR", "static/screenshots"),
		S3Bucket:               r.getString("SNAPFILTER_S3_BUCKET", ""),
		S3Region:               r.getString("SNAPFILTER_S3_REGION", "us-east-1"),
		S3Prefix:               r.getString("SNAPFILTER_S3_PREFIX", "screenshots/"),
		ORTLibrary:             r.getString("SNAPFILTER_ORT_LIBRARY", "lib/libonnxruntime.so"),
		FaceModel:              r.getString("SNAPFILTER_FACE_MODEL", "models/scrfd_500m.onnx"),
		MeshModel:              r.getString("SNAPFILTER_MESH_MODEL", "models/face_landmark.onnx"),
		MaxFaces:               r.getInt("SNAPFILTER_MAX_FACES", 5),
		MinDetectionConfidence: r.getFloat("SNAPFILTER_MIN_DETECTION_CONFIDENCE", 0.5),
		MinPresenceConfidence:  r.getFloat("SNAPFILTER_MIN_PRESENCE_CONFIDENCE", 0.5),
		JPEGQuality:            r.getInt("SNAPFILTER_JPEG_QUALITY", 85),
		RateLimit:              r.getFloat("SNAPFILTER_RATE_LIMIT", 30),
		LogLevel:               r.getString("SNAPFILTER_LOG_LEVEL", "info"),
		LogFile:                r.getString("SNAPFILTER_LOG_FILE", ""),
		Debug:                  r.getBool("SNAPFILTER_DEBUG", false),
	}
	if r.err != nil {
		return nil, r.err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	switch c.ScreenshotBackend {
	case BackendDisk:
	case BackendS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("SNAPFILTER_S3_BUCKET is required for the s3 screenshot backend")
		}
	default:
		return fmt.Errorf("unknown screenshot backend %q", c.ScreenshotBackend)
	}

	if c.MaxFaces < 1 {
		return fmt.Errorf("SNAPFILTER_MAX_FACES must be at least 1, got %d", c.MaxFaces)
	}
	if c.MinDetectionConfidence < 0 || c.MinDetectionConfidence > 1 {
		return fmt.Errorf("SNAPFILTER_MIN_DETECTION_CONFIDENCE must be in [0, 1], got %v", c.MinDetectionConfidence)
	}
	if c.MinPresenceConfidence < 0 || c.MinPresenceConfidence > 1 {
		return fmt.Errorf("SNAPFILTER_MIN_PRESENCE_CONFIDENCE must be in [0, 1], got %v", c.MinPresenceConfidence)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("SNAPFILTER_JPEG_QUALITY must be in [1, 100], got %d", c.JPEGQuality)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("SNAPFILTER_RATE_LIMIT must not be negative, got %v", c.RateLimit)
	}
	return nil
}

// reader parses variables, keeping the first error
type reader struct {
	err error
}

func (r *reader) getString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func (r *reader) getInt(key string, def int) int {
	v := r.getString(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return n
}

func (r *reader) getFloat(key string, def float64) float64 {
	v := r.getString(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return f
}

func (r *reader) getBool(key string, def bool) bool {
	v := r.getString(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return b
}

func (r *reader) fail(key, value string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid %s=%q: %w", key, value, err)
	}
}
