package screenshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// DiskStore writes screenshots to a local directory, creating it on demand
type DiskStore struct {
	dir string
	log logrus.FieldLogger
	now func() time.Time
}

// NewDiskStore creates a store rooted at dir
func NewDiskStore(dir string, log logrus.FieldLogger) *DiskStore {
	return &DiskStore{dir: dir, log: log, now: time.Now}
}

// Save writes image to <dir>/<filename>
func (s *DiskStore) Save(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", ErrEmptyImage
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	name := Filename(s.now())
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, image, 0644); err != nil {
		return "", fmt.Errorf("failed to write screenshot: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"path": path,
		"size": humanize.Bytes(uint64(len(image))),
	}).Info("Screenshot saved")

	return name, nil
}
