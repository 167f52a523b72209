package filter

import (
	"github.com/dudu/snapfilter/internal/geometry"
	"github.com/dudu/snapfilter/internal/landmarks"
	"github.com/dudu/snapfilter/internal/overlay"
)

// Resolver computes a filter placement for one face. It returns false when
// a required landmark is missing from the set.
type Resolver func(set landmarks.Set, frameWidth, frameHeight int) (overlay.Placement, bool)

// Tuning holds the empirically tuned size and offset constants of a filter kind.
// They are not derived geometrically and changing them changes how filters look.
type Tuning struct {
	WidthScale  float64
	HeightScale float64
	Offset      float64 // vertical center offset, as a fraction of the reference size
	Opacity     float64
}

// Tunings is the per-kind constant table
var Tunings = map[Kind]Tuning{
	KindSunglasses:   {WidthScale: 2.2, HeightScale: 0.6, Offset: 0, Opacity: 0.9},
	KindHat:          {WidthScale: 1.8, HeightScale: 1.2, Offset: 0.3, Opacity: 0.9},
	KindCrown:        {WidthScale: 1.5, HeightScale: 1.0, Offset: 0.4, Opacity: 0.9},
	KindMask:         {WidthScale: 1.60, HeightScale: 2.0, Offset: 0.30, Opacity: 0.95},
	KindSpiderman:    {WidthScale: 1.4, HeightScale: 1.55, Offset: 0.05, Opacity: 0.95},
	KindFullFaceMask: {WidthScale: 2.2, HeightScale: 1.8, Offset: 0, Opacity: 0.9},
}

var resolvers = map[Kind]Resolver{
	KindSunglasses:   resolveSunglasses,
	KindHat:          headwear(KindHat),
	KindCrown:        headwear(KindCrown),
	KindMask:         resolveMask,
	KindSpiderman:    resolveSpiderman,
	KindFullFaceMask: resolveFullFaceMask,
}

// ResolverFor returns the placement strategy for k
func ResolverFor(k Kind) (Resolver, bool) {
	r, ok := resolvers[k]
	return r, ok
}

// lookupPixels resolves names and denormalizes them to whole-pixel points
func lookupPixels(set landmarks.Set, frameWidth, frameHeight int, names ...landmarks.Name) ([]geometry.Point, bool) {
	points, ok := landmarks.LookupAll(set, names...)
	if !ok {
		return nil, false
	}
	for i, p := range points {
		x, y := landmarks.Denormalize(p, frameWidth, frameHeight)
		points[i] = geometry.Pt(float64(x), float64(y))
	}
	return points, true
}

// floorMid is the floored integer midpoint of two pixel coordinates
func floorMid(a, b float64) int {
	s := int(a) + int(b)
	if s < 0 && s%2 != 0 {
		return s/2 - 1
	}
	return s / 2
}

// truncMid is the midpoint truncated toward zero
func truncMid(a, b float64) int {
	return int((a + b) / 2)
}

func resolveSunglasses(set landmarks.Set, frameWidth, frameHeight int) (overlay.Placement, bool) {
	pts, ok := lookupPixels(set, frameWidth, frameHeight, landmarks.LeftEyeLeft, landmarks.RightEyeRight)
	if !ok {
		return overlay.Placement{}, false
	}
	left, right := pts[0], pts[1]
	t := Tunings[KindSunglasses]

	eyeWidth := geometry.Distance(left, right)

	return overlay.Placement{
		CenterX: floorMid(left.X, right.X),
		CenterY: floorMid(left.Y, right.Y),
		Width:   int(eyeWidth * t.WidthScale),
		Height:  int(eyeWidth * t.HeightScale),
		Angle:   geometry.Angle(left, right),
		Opacity: t.Opacity,
	}, true
}

// headwear sits above the forehead and tilts with the ear line
func headwear(kind Kind) Resolver {
	return func(set landmarks.Set, frameWidth, frameHeight int) (overlay.Placement, bool) {
		pts, ok := lookupPixels(set, frameWidth, frameHeight, landmarks.Forehead, landmarks.LeftEar, landmarks.RightEar)
		if !ok {
			return overlay.Placement{}, false
		}
		forehead, leftEar, rightEar := pts[0], pts[1], pts[2]
		t := Tunings[kind]

		headWidth := geometry.Distance(leftEar, rightEar)

		return overlay.Placement{
			CenterX: int(forehead.X),
			CenterY: int(forehead.Y - headWidth*t.Offset),
			Width:   int(headWidth * t.WidthScale),
			Height:  int(headWidth * t.HeightScale),
			Angle:   geometry.Angle(leftEar, rightEar),
			Opacity: t.Opacity,
		}, true
	}
}

// resolveMask covers the lower face and never rotates
func resolveMask(set landmarks.Set, frameWidth, frameHeight int) (overlay.Placement, bool) {
	pts, ok := lookupPixels(set, frameWidth, frameHeight,
		landmarks.NoseTip, landmarks.ChinBottom, landmarks.RightCheek, landmarks.LeftCheek)
	if !ok {
		return overlay.Placement{}, false
	}
	noseTip, chin, rightCheek, leftCheek := pts[0], pts[1], pts[2], pts[3]
	t := Tunings[KindMask]

	faceWidth := geometry.Distance(leftCheek, rightCheek)
	faceHeight := geometry.Distance(noseTip, chin)

	return overlay.Placement{
		CenterX: truncMid(noseTip.X, chin.X),
		CenterY: int(noseTip.Y + faceHeight*t.Offset),
		Width:   int(faceWidth * t.WidthScale),
		Height:  int(faceHeight * t.HeightScale),
		Opacity: t.Opacity,
	}, true
}

// resolveSpiderman covers the whole face and never rotates
func resolveSpiderman(set landmarks.Set, frameWidth, frameHeight int) (overlay.Placement, bool) {
	pts, ok := lookupPixels(set, frameWidth, frameHeight,
		landmarks.ChinBottom, landmarks.Forehead, landmarks.LeftSide, landmarks.RightSide)
	if !ok {
		return overlay.Placement{}, false
	}
	chin, forehead, leftSide, rightSide := pts[0], pts[1], pts[2], pts[3]
	t := Tunings[KindSpiderman]

	faceWidth := geometry.Distance(rightSide, leftSide)
	faceHeight := geometry.Distance(forehead, chin)

	return overlay.Placement{
		CenterX: truncMid(leftSide.X, rightSide.X),
		CenterY: truncMid(forehead.Y, chin.Y) - int(faceHeight*t.Offset),
		Width:   int(faceWidth * t.WidthScale),
		Height:  int(faceHeight * t.HeightScale),
		Opacity: t.Opacity,
	}, true
}

func resolveFullFaceMask(set landmarks.Set, frameWidth, frameHeight int) (overlay.Placement, bool) {
	pts, ok := lookupPixels(set, frameWidth, frameHeight,
		landmarks.Chin, landmarks.Forehead, landmarks.LeftEar, landmarks.RightEar)
	if !ok {
		return overlay.Placement{}, false
	}
	chin, forehead, leftEar, rightEar := pts[0], pts[1], pts[2], pts[3]
	t := Tunings[KindFullFaceMask]

	headWidth := geometry.Distance(leftEar, rightEar)
	headHeight := geometry.Distance(forehead, chin)

	return overlay.Placement{
		CenterX: floorMid(leftEar.X, rightEar.X),
		CenterY: floorMid(forehead.Y, chin.Y),
		Width:   int(headWidth * t.WidthScale),
		Height:  int(headHeight * t.HeightScale),
		Angle:   geometry.Angle(leftEar, rightEar),
		Opacity: t.Opacity,
	}, true
}
