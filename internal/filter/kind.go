// Package filter resolves landmark-driven placements and caches filter assets.
package filter

// Kind identifies a decorative overlay
type Kind string

const (
	KindSunglasses   Kind = "sunglasses"
	KindHat          Kind = "hat"
	KindCrown        Kind = "crown"
	KindMask         Kind = "mask"
	KindSpiderman    Kind = "spiderman"
	KindFullFaceMask Kind = "full_face_mask"
)

var kinds = []Kind{
	KindSunglasses,
	KindHat,
	KindCrown,
	KindMask,
	KindSpiderman,
	KindFullFaceMask,
}

// Kinds returns all recognized filter kinds in display order
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// ParseKind validates a filter name
func ParseKind(name string) (Kind, bool) {
	k := Kind(name)
	return k, k.Valid()
}

// Valid reports whether k is a recognized filter kind
func (k Kind) Valid() bool {
	_, ok := resolvers[k]
	return ok
}

// AssetFile returns the asset file name for k
func (k Kind) AssetFile() string {
	return string(k) + ".png"
}

func (k Kind) String() string {
	return string(k)
}
