package detector

import "sort"

// suppress keeps the highest scoring faces whose boxes overlap no already
// kept face by more than iouThreshold, stopping once limit faces are kept.
// Equal scores keep decode order (stride, then anchor). limit <= 0 keeps all.
// faces is reordered in place.
func suppress(faces []Face, iouThreshold float32, limit int) []Face {
	sort.SliceStable(faces, func(i, j int) bool {
		return faces[i].Score > faces[j].Score
	})

	kept := make([]Face, 0, min(len(faces), max(limit, 1)))
	for _, face := range faces {
		if limit > 0 && len(kept) == limit {
			break
		}
		if overlapsAny(face.BoundingBox, kept, iouThreshold) {
			continue
		}
		kept = append(kept, face)
	}
	return kept
}

func overlapsAny(box BoundingBox, kept []Face, iouThreshold float32) bool {
	for _, k := range kept {
		if box.IoU(k.BoundingBox) > iouThreshold {
			return true
		}
	}
	return false
}

// Intersect returns the overlap of two boxes; it is empty (zero area) when
// they do not touch
func (b BoundingBox) Intersect(o BoundingBox) BoundingBox {
	r := BoundingBox{
		X1: max(b.X1, o.X1),
		Y1: max(b.Y1, o.Y1),
		X2: min(b.X2, o.X2),
		Y2: min(b.Y2, o.Y2),
	}
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return BoundingBox{}
	}
	return r
}

// IoU returns intersection over union, 0 for disjoint or degenerate boxes
func (b BoundingBox) IoU(o BoundingBox) float32 {
	inter := b.Intersect(o).Area()
	if inter == 0 {
		return 0
	}
	union := b.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}
