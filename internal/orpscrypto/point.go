package orpscrypto

import (
	"fmt"

	"github.com/gtank/ristretto255"
)

const PointBytes = 32

// Point is a ristretto255 group element. The zero value is not a valid point;
// obtain points from PointBase, MulBase or PointFromBytesCanonical.
type Point struct {
	v ristretto255.Element
}

func wrapPoint(e *ristretto255.Element) Point { return Point{v: *e} }

func PointBase() Point { return wrapPoint(ristretto255.NewElement().Base()) }

func PointFromBytesCanonical(b []byte) (Point, error) {
	if len(b) != PointBytes {
		return Point{}, fmt.Errorf("point: want %d bytes, got %d", PointBytes, len(b))
	}
	e, err := ristretto255.NewElement().SetCanonicalBytes(b)
	if err != nil {
		return Point{}, fmt.Errorf("point: %w", err)
	}
	return wrapPoint(e), nil
}

func (p Point) Bytes() []byte { return p.v.Bytes() }

func PointEq(a, b Point) bool { return a.v.Equal(&b.v) == 1 }

func PointAdd(a, b Point) Point { return wrapPoint(ristretto255.NewElement().Add(&a.v, &b.v)) }

func PointSub(a, b Point) Point { return wrapPoint(ristretto255.NewElement().Subtract(&a.v, &b.v)) }

func MulBase(k Scalar) Point { return wrapPoint(ristretto255.NewElement().ScalarBaseMult(&k.v)) }

func MulPoint(p Point, k Scalar) Point {
	return wrapPoint(ristretto255.NewElement().ScalarMult(&k.v, &p.v))
}

// SmallMultiple returns n*G; negative n gives the inverse point.
func SmallMultiple(n int64) Point { return MulBase(ScalarFromInt64(n)) }
