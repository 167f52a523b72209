package filter

import (
	"fmt"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"
)

// Asset is a decoded filter image with 3 (BGR) or 4 (BGRA) channels.
// It is shared read-only once cached.
type Asset struct {
	Kind  Kind
	Image gocv.Mat
}

// HasAlpha reports whether the asset carries a per-pixel alpha channel
func (a *Asset) HasAlpha() bool {
	return a.Image.Channels() == 4
}

// Source loads raw filter images
type Source interface {
	Load(kind Kind) (gocv.Mat, error)
}

// DirSource loads <Dir>/<kind>.png from disk
type DirSource struct {
	Dir string
}

// Path returns the asset path for kind
func (s DirSource) Path(kind Kind) string {
	return filepath.Join(s.Dir, kind.AssetFile())
}

// Load decodes the asset keeping its alpha channel. Grayscale images are
// expanded to BGR. On error the returned Mat must not be used.
func (s DirSource) Load(kind Kind) (gocv.Mat, error) {
	path := s.Path(kind)
	if _, err := os.Stat(path); err != nil {
		return gocv.Mat{}, fmt.Errorf("filter asset %s: %w", path, err)
	}

	img := gocv.IMRead(path, gocv.IMReadUnchanged)
	if img.Empty() {
		img.Close()
		return gocv.Mat{}, fmt.Errorf("failed to decode filter asset: %s", path)
	}

	return normalize(img, path)
}

// normalize converts img to 8-bit BGR or BGRA, taking ownership of img
func normalize(img gocv.Mat, path string) (gocv.Mat, error) {
	switch img.Type() {
	case gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4:
		return img, nil
	case gocv.MatTypeCV8UC1:
		bgr := gocv.NewMat()
		gocv.CvtColor(img, &bgr, gocv.ColorGrayToBGR)
		img.Close()
		return bgr, nil
	}

	t := img.Type()
	img.Close()
	return gocv.Mat{}, fmt.Errorf("unsupported pixel type %v in %s", t, path)
}
