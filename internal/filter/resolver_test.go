package filter

import (
	"math"
	"testing"

	"github.com/dudu/snapfilter/internal/geometry"
	"github.com/dudu/snapfilter/internal/landmarks"
	"github.com/dudu/snapfilter/internal/overlay"
)

// face builds a full mesh with the named points set and everything else at the origin
func face(t *testing.T, size int, points map[landmarks.Name]geometry.Point) landmarks.Set {
	t.Helper()
	set := make(landmarks.Set, size)
	for name, p := range points {
		idx, ok := landmarks.Index(name)
		if !ok {
			t.Fatalf("Unknown landmark %q", name)
		}
		set[idx] = p
	}
	return set
}

func TestResolvers(t *testing.T) {
	tests := []struct {
		kind   Kind
		points map[landmarks.Name]geometry.Point
		want   overlay.Placement
	}{
		{
			kind: KindSunglasses,
			points: map[landmarks.Name]geometry.Point{
				landmarks.LeftEyeLeft:   geometry.Pt(0.3, 0.45),
				landmarks.RightEyeRight: geometry.Pt(0.7, 0.45),
			},
			want: overlay.Placement{CenterX: 320, CenterY: 216, Width: 563, Height: 153, Angle: 0, Opacity: 0.9},
		},
		{
			kind: KindHat,
			points: map[landmarks.Name]geometry.Point{
				landmarks.Forehead: geometry.Pt(0.5, 0.3),
				landmarks.LeftEar:  geometry.Pt(0.3, 0.4),
				landmarks.RightEar: geometry.Pt(0.7, 0.4),
			},
			want: overlay.Placement{CenterX: 320, CenterY: 67, Width: 460, Height: 307, Angle: 0, Opacity: 0.9},
		},
		{
			kind: KindCrown,
			points: map[landmarks.Name]geometry.Point{
				landmarks.Forehead: geometry.Pt(0.5, 0.3),
				landmarks.LeftEar:  geometry.Pt(0.3, 0.4),
				landmarks.RightEar: geometry.Pt(0.7, 0.4),
			},
			want: overlay.Placement{CenterX: 320, CenterY: 41, Width: 384, Height: 256, Angle: 0, Opacity: 0.9},
		},
		{
			kind: KindMask,
			points: map[landmarks.Name]geometry.Point{
				landmarks.NoseTip:    geometry.Pt(0.5, 0.5),
				landmarks.ChinBottom: geometry.Pt(0.5, 0.75),
				landmarks.RightCheek: geometry.Pt(0.3, 0.5),
				landmarks.LeftCheek:  geometry.Pt(0.7, 0.5),
			},
			want: overlay.Placement{CenterX: 320, CenterY: 276, Width: 409, Height: 240, Angle: 0, Opacity: 0.95},
		},
		{
			kind: KindSpiderman,
			points: map[landmarks.Name]geometry.Point{
				landmarks.ChinBottom: geometry.Pt(0.5, 0.8),
				landmarks.Forehead:   geometry.Pt(0.5, 0.2),
				landmarks.LeftSide:   geometry.Pt(0.3, 0.5),
				landmarks.RightSide:  geometry.Pt(0.7, 0.5),
			},
			want: overlay.Placement{CenterX: 320, CenterY: 226, Width: 358, Height: 446, Angle: 0, Opacity: 0.95},
		},
		{
			kind: KindFullFaceMask,
			points: map[landmarks.Name]geometry.Point{
				landmarks.Chin:     geometry.Pt(0.5, 0.7),
				landmarks.Forehead: geometry.Pt(0.5, 0.2),
				landmarks.LeftEar:  geometry.Pt(0.3, 0.5),
				landmarks.RightEar: geometry.Pt(0.7, 0.5),
			},
			want: overlay.Placement{CenterX: 320, CenterY: 216, Width: 563, Height: 432, Angle: 0, Opacity: 0.9},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			resolve, ok := ResolverFor(tt.kind)
			if !ok {
				t.Fatalf("No resolver for %s", tt.kind)
			}

			got, ok := resolve(face(t, landmarks.MeshSize, tt.points), 640, 480)
			if !ok {
				t.Fatal("Expected landmarks to be sufficient")
			}
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestResolversInsufficientLandmarks(t *testing.T) {
	// 200 points covers the nose tip and forehead but none of the eye corners, ears or chin bottom
	short := face(t, 200, map[landmarks.Name]geometry.Point{
		landmarks.NoseTip:  geometry.Pt(0.5, 0.5),
		landmarks.Forehead: geometry.Pt(0.5, 0.2),
	})

	for _, kind := range Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			resolve, _ := ResolverFor(kind)
			if p, ok := resolve(short, 640, 480); ok {
				t.Errorf("Expected insufficient landmarks, got %+v", p)
			}
			if _, ok := resolve(nil, 640, 480); ok {
				t.Error("Expected insufficient landmarks for an empty set")
			}
		})
	}
}

func TestRotationSources(t *testing.T) {
	tilted := face(t, landmarks.MeshSize, map[landmarks.Name]geometry.Point{
		landmarks.LeftEyeLeft:   geometry.Pt(0.3, 0.4),
		landmarks.RightEyeRight: geometry.Pt(0.7, 0.5),
		landmarks.Forehead:      geometry.Pt(0.5, 0.2),
		landmarks.LeftEar:       geometry.Pt(0.3, 0.4),
		landmarks.RightEar:      geometry.Pt(0.7, 0.5),
		landmarks.NoseTip:       geometry.Pt(0.5, 0.5),
		landmarks.ChinBottom:    geometry.Pt(0.5, 0.8),
		landmarks.Chin:          geometry.Pt(0.5, 0.7),
	})
	// Pixel vector between the tilted points is (256, 48)
	want := math.Atan2(48, 256) * 180 / math.Pi

	for _, kind := range []Kind{KindSunglasses, KindHat, KindCrown, KindFullFaceMask} {
		resolve, _ := ResolverFor(kind)
		p, ok := resolve(tilted, 640, 480)
		if !ok {
			t.Fatalf("%s: expected sufficient landmarks", kind)
		}
		if math.Abs(p.Angle-want) > 1e-9 {
			t.Errorf("%s: expected angle %f, got %f", kind, want, p.Angle)
		}
	}

	for _, kind := range []Kind{KindMask, KindSpiderman} {
		resolve, _ := ResolverFor(kind)
		p, ok := resolve(tilted, 640, 480)
		if !ok {
			t.Fatalf("%s: expected sufficient landmarks", kind)
		}
		if p.Angle != 0 {
			t.Errorf("%s: expected no rotation, got %f", kind, p.Angle)
		}
	}
}

func TestFloorMid(t *testing.T) {
	tests := []struct {
		a, b float64
		want int
	}{
		{192, 448, 320},
		{3, 4, 3},
		{-3, 0, -2},
		{-4, 0, -2},
		{-1, -2, -2},
	}
	for _, tt := range tests {
		if got := floorMid(tt.a, tt.b); got != tt.want {
			t.Errorf("floorMid(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestKinds(t *testing.T) {
	for _, kind := range Kinds() {
		if _, ok := Tunings[kind]; !ok {
			t.Errorf("Missing tuning for %s", kind)
		}
		if k, ok := ParseKind(string(kind)); !ok || k != kind {
			t.Errorf("ParseKind(%q) = %q, %v", kind, k, ok)
		}
	}

	for _, name := range []string{"", "nonexistent_filter", "Sunglasses"} {
		if _, ok := ParseKind(name); ok {
			t.Errorf("Expected %q to be rejected", name)
		}
	}
}
