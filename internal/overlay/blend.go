// Package overlay composites filter assets onto BGR frames.
package overlay

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

// Blend resizes and rotates asset per p and alpha-blends it into frame in place.
// Degenerate placements and placements entirely outside the frame are no-ops.
// The asset itself is never modified.
func Blend(frame *gocv.Mat, asset gocv.Mat, p Placement) {
	if frame == nil || frame.Empty() || asset.Empty() || !p.Valid() {
		return
	}
	if frame.Channels() < 3 {
		return
	}
	if c := asset.Channels(); c != 3 && c != 4 {
		return
	}

	frameRect, assetRect, ok := p.Clip(frame.Cols(), frame.Rows())
	if !ok {
		return
	}

	prepared := Prepare(asset, p)
	defer prepared.Close()

	target := frame
	if !frame.IsContinuous() {
		// Regions of a larger Mat are strided; blend into a packed copy
		packed := frame.Clone()
		defer packed.Close()
		defer packed.CopyTo(frame)
		target = &packed
	}

	// Opaque assets are mixed like addWeighted (rounded); alpha mixing truncates
	rounded := asset.Channels() == 3
	blendRegion(target, prepared, frameRect, assetRect.Min, p.opacity(), rounded)
}

// Prepare returns a transient copy of asset resized to the placement size and,
// when the placement is rotated, rotated about its center on a canvas of the
// same size. Rotated output always carries alpha so uncovered corners are
// fully transparent. The caller owns the returned Mat.
func Prepare(asset gocv.Mat, p Placement) gocv.Mat {
	size := image.Pt(p.Width, p.Height)

	resized := gocv.NewMat()
	gocv.Resize(asset, &resized, size, 0, 0, gocv.InterpolationLinear)

	if p.Angle == 0 {
		return resized
	}

	if resized.Channels() == 3 {
		bgra := gocv.NewMat()
		gocv.CvtColor(resized, &bgra, gocv.ColorBGRToBGRA)
		resized.Close()
		resized = bgra
	}
	defer resized.Close()

	rotation := gocv.GetRotationMatrix2D(image.Pt(p.Width/2, p.Height/2), p.Angle, 1.0)
	defer rotation.Close()

	rotated := gocv.NewMat()
	gocv.WarpAffineWithParams(resized, &rotated, rotation, size,
		gocv.InterpolationLinear, gocv.BorderConstant, color.RGBA{})

	return rotated
}

// blendRegion writes src (starting at srcMin) over dst within dstRect.
// With an alpha channel the per-pixel weight is alpha/255*opacity, otherwise
// opacity is applied uniformly. Mixed values are rounded to nearest when
// rounded is set and truncated otherwise.
func blendRegion(dst *gocv.Mat, src gocv.Mat, dstRect image.Rectangle, srcMin image.Point, opacity float64, rounded bool) {
	dstData, err := dst.DataPtrUint8()
	if err != nil {
		return
	}
	srcData, err := src.DataPtrUint8()
	if err != nil {
		return
	}

	dstStep, dstCh := dst.Step(), dst.Channels()
	srcStep, srcCh := src.Step(), src.Channels()
	hasAlpha := srcCh == 4

	for y := 0; y < dstRect.Dy(); y++ {
		dstRow := (dstRect.Min.Y+y)*dstStep + dstRect.Min.X*dstCh
		srcRow := (srcMin.Y+y)*srcStep + srcMin.X*srcCh

		for x := 0; x < dstRect.Dx(); x++ {
			d := dstData[dstRow+x*dstCh:]
			s := srcData[srcRow+x*srcCh:]

			weight := opacity
			if hasAlpha {
				weight = float64(s[3]) / 255.0 * opacity
			}
			if weight == 0 {
				continue
			}

			for c := 0; c < 3; c++ {
				v := float64(d[c])*(1-weight) + float64(s[c])*weight
				if rounded {
					v = math.Round(v)
				}
				d[c] = uint8(v)
			}
		}
	}
}
