package orpscrypto

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gtank/ristretto255"
)

const ScalarBytes = 32

// Scalar is an integer mod the ristretto255 group order, encoded as 32
// canonical little-endian bytes.
type Scalar struct {
	v ristretto255.Scalar
}

func wrapScalar(s *ristretto255.Scalar) Scalar { return Scalar{v: *s} }

func ScalarZero() Scalar { return Scalar{} }

func ScalarFromUint64(x uint64) Scalar {
	var b [ScalarBytes]byte
	binary.LittleEndian.PutUint64(b[:], x)
	s, err := ristretto255.NewScalar().SetCanonicalBytes(b[:])
	if err != nil {
		// Any uint64 is below the group order.
		panic(err)
	}
	return wrapScalar(s)
}

// ScalarFromInt64 maps negative values to their additive inverse mod l.
func ScalarFromInt64(x int64) Scalar {
	if x < 0 {
		return ScalarNeg(ScalarFromUint64(uint64(-x)))
	}
	return ScalarFromUint64(uint64(x))
}

func ScalarFromBytesCanonical(b []byte) (Scalar, error) {
	if len(b) != ScalarBytes {
		return Scalar{}, fmt.Errorf("scalar: want %d bytes, got %d", ScalarBytes, len(b))
	}
	s, err := ristretto255.NewScalar().SetCanonicalBytes(b)
	if err != nil {
		return Scalar{}, fmt.Errorf("scalar: %w", err)
	}
	return wrapScalar(s), nil
}

// ScalarFromUniformBytes reduces 64 uniform bytes mod l.
func ScalarFromUniformBytes(b []byte) (Scalar, error) {
	if len(b) != 64 {
		return Scalar{}, fmt.Errorf("scalar: want 64 uniform bytes, got %d", len(b))
	}
	return wrapScalar(ristretto255.NewScalar().FromUniformBytes(b)), nil
}

// RandomScalar draws a non-zero scalar from r (normally crypto/rand.Reader).
func RandomScalar(r io.Reader) (Scalar, error) {
	var buf [64]byte
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return Scalar{}, fmt.Errorf("scalar: read randomness: %w", err)
		}
		if s, _ := ScalarFromUniformBytes(buf[:]); !s.IsZero() {
			return s, nil
		}
	}
}

func (s Scalar) Bytes() []byte { return s.v.Bytes() }

func (s Scalar) IsZero() bool { return ScalarEq(s, ScalarZero()) }

func ScalarEq(a, b Scalar) bool { return a.v.Equal(&b.v) == 1 }

func ScalarAdd(a, b Scalar) Scalar { return wrapScalar(ristretto255.NewScalar().Add(&a.v, &b.v)) }

func ScalarSub(a, b Scalar) Scalar {
	return wrapScalar(ristretto255.NewScalar().Subtract(&a.v, &b.v))
}

func ScalarMul(a, b Scalar) Scalar {
	return wrapScalar(ristretto255.NewScalar().Multiply(&a.v, &b.v))
}

func ScalarNeg(a Scalar) Scalar { return wrapScalar(ristretto255.NewScalar().Negate(&a.v)) }
