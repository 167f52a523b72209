package overlay

import "image"

// Placement describes where and how a filter asset is composited onto a frame
type Placement struct {
	CenterX int     // pixels
	CenterY int     // pixels
	Width   int     // pixels, must be > 0 to blend
	Height  int     // pixels, must be > 0 to blend
	Angle   float64 // degrees, 0 = no rotation
	Opacity float64 // 0..1
}

// Valid reports whether the placement has a drawable size
func (p Placement) Valid() bool {
	return p.Width > 0 && p.Height > 0
}

// Bounds returns the placed asset rectangle in frame coordinates
func (p Placement) Bounds() image.Rectangle {
	x1 := p.CenterX - p.Width/2
	y1 := p.CenterY - p.Height/2
	return image.Rect(x1, y1, x1+p.Width, y1+p.Height)
}

// Clip intersects the placement with a frame of the given size. It returns the
// overlapping rectangle in frame space and the same rectangle in asset-local
// space, or ok=false when they do not overlap.
func (p Placement) Clip(frameWidth, frameHeight int) (frameRect, assetRect image.Rectangle, ok bool) {
	bounds := p.Bounds()
	frameRect = bounds.Intersect(image.Rect(0, 0, frameWidth, frameHeight))
	if frameRect.Empty() {
		return image.Rectangle{}, image.Rectangle{}, false
	}
	return frameRect, frameRect.Sub(bounds.Min), true
}

func (p Placement) opacity() float64 {
	switch {
	case p.Opacity < 0:
		return 0
	case p.Opacity > 1:
		return 1
	}
	return p.Opacity
}
