package filter

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"gocv.io/x/gocv"
)

// placeholderColors are the solid BGR fills of the sample assets
var placeholderColors = map[Kind]gocv.Scalar{
	KindSunglasses:   gocv.NewScalar(0, 0, 0, 0),
	KindHat:          gocv.NewScalar(255, 0, 0, 0),
	KindMask:         gocv.NewScalar(0, 255, 0, 0),
	KindCrown:        gocv.NewScalar(255, 255, 0, 0),
	KindSpiderman:    gocv.NewScalar(255, 0, 255, 0),
	KindFullFaceMask: gocv.NewScalar(128, 128, 128, 0),
}

// WritePlaceholders writes a 300x150 solid-colour PNG labelled with the kind
// name for every filter kind into dir, returning the written paths
func WritePlaceholders(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create asset directory: %w", err)
	}

	src := DirSource{Dir: dir}
	paths := make([]string, 0, len(kinds))

	for _, kind := range kinds {
		img := gocv.NewMatWithSizeFromScalar(placeholderColors[kind], 150, 300, gocv.MatTypeCV8UC3)
		gocv.PutText(&img, kind.String(), image.Pt(30, 80), gocv.FontHersheySimplex, 1.2,
			color.RGBA{R: 255, G: 255, B: 255, A: 255}, 2)

		path := src.Path(kind)
		ok := gocv.IMWrite(path, img)
		img.Close()
		if !ok {
			return paths, fmt.Errorf("failed to write placeholder: %s", path)
		}
		paths = append(paths, path)
	}

	return paths, nil
}
