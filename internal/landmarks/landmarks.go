// Package landmarks maps semantic facial features to face-mesh landmark indices.
package landmarks

import "github.com/dudu/snapfilter/internal/geometry"

// Set is one face's landmarks, normalized to the frame width/height
type Set []geometry.Point

// Name identifies a semantic facial landmark
type Name string

// Face-mesh landmark names (468 points, 478 with iris refinement)
const (
	Chin       Name = "chin"
	ChinBottom Name = "chin_bottom"
	JawLeft    Name = "jaw_left"
	JawRight   Name = "jaw_right"

	LeftEyeLeft   Name = "left_eye_left"
	LeftEyeRight  Name = "left_eye_right"
	LeftEyeTop    Name = "left_eye_top"
	LeftEyeBottom Name = "left_eye_bottom"
	LeftEyeCenter Name = "left_eye_center"

	RightEyeLeft   Name = "right_eye_left"
	RightEyeRight  Name = "right_eye_right"
	RightEyeTop    Name = "right_eye_top"
	RightEyeBottom Name = "right_eye_bottom"
	RightEyeCenter Name = "right_eye_center"

	NoseTip       Name = "nose_tip"
	NoseBridgeTop Name = "nose_bridge_top"
	NoseLeft      Name = "nose_left"
	NoseRight     Name = "nose_right"

	MouthLeft   Name = "mouth_left"
	MouthRight  Name = "mouth_right"
	MouthTop    Name = "mouth_top"
	MouthBottom Name = "mouth_bottom"

	Forehead Name = "forehead"
	HeadTop  Name = "head_top"

	LeftEar  Name = "left_ear"
	RightEar Name = "right_ear"

	// Cheek and side names share the ear points; the cheek labels are mirrored
	// relative to the ear labels.
	RightCheek Name = "right_cheek"
	LeftCheek  Name = "left_cheek"
	LeftSide   Name = "left_side"
	RightSide  Name = "right_side"
)

// MeshSize is the landmark count of the face mesh without iris refinement
const MeshSize = 468

// RefinedMeshSize is the landmark count with iris refinement enabled
const RefinedMeshSize = 478

var indices = map[Name]int{
	Chin:       18,
	ChinBottom: 152,
	JawLeft:    172,
	JawRight:   397,

	LeftEyeLeft:   33,
	LeftEyeRight:  133,
	LeftEyeTop:    159,
	LeftEyeBottom: 145,
	LeftEyeCenter: 468,

	RightEyeLeft:   362,
	RightEyeRight:  263,
	RightEyeTop:    386,
	RightEyeBottom: 374,
	RightEyeCenter: 469,

	NoseTip:       1,
	NoseBridgeTop: 6,
	NoseLeft:      131,
	NoseRight:     360,

	MouthLeft:   61,
	MouthRight:  291,
	MouthTop:    13,
	MouthBottom: 14,

	Forehead: 10,
	HeadTop:  10,

	LeftEar:  234,
	RightEar: 454,

	RightCheek: 234,
	LeftCheek:  454,
	LeftSide:   234,
	RightSide:  454,
}

// Index returns the mesh index for a name
func Index(name Name) (int, bool) {
	idx, ok := indices[name]
	return idx, ok
}

// Lookup returns the normalized point for name, or false when the name is
// unknown or its index is out of range for the set.
func Lookup(set Set, name Name) (geometry.Point, bool) {
	idx, ok := indices[name]
	if !ok || idx < 0 || idx >= len(set) {
		return geometry.Point{}, false
	}
	return set[idx], true
}

// LookupAll resolves every name, failing if any one is missing
func LookupAll(set Set, names ...Name) ([]geometry.Point, bool) {
	points := make([]geometry.Point, len(names))
	for i, name := range names {
		p, ok := Lookup(set, name)
		if !ok {
			return nil, false
		}
		points[i] = p
	}
	return points, true
}

// Denormalize converts a normalized point to integer pixel coordinates,
// truncating toward zero.
func Denormalize(p geometry.Point, frameWidth, frameHeight int) (int, int) {
	return int(p.X * float64(frameWidth)), int(p.Y * float64(frameHeight))
}
