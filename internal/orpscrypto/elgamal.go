package orpscrypto

import "fmt"

const CiphertextBytes = 2 * PointBytes

type ElGamalCiphertext struct {
	C1 Point
	C2 Point
}

// ElGamal in additive notation:
//
//	PK = Y = x*G
//	Enc(Y, M; r) = (r*G, M + r*Y)
func ElGamalEncrypt(pk Point, m Point, r Scalar) (ElGamalCiphertext, error) {
	if r.IsZero() {
		return ElGamalCiphertext{}, fmt.Errorf("elgamal: r must be non-zero")
	}
	c1 := MulBase(r)
	c2 := PointAdd(m, MulPoint(pk, r))
	return ElGamalCiphertext{C1: c1, C2: c2}, nil
}

// Dec(x, (c1,c2)) = c2 - x*c1
func ElGamalDecrypt(sk Scalar, ct ElGamalCiphertext) Point {
	return PointSub(ct.C2, MulPoint(ct.C1, sk))
}

// ElGamalSub is the homomorphic difference: Enc(M1) - Enc(M2) = Enc(M1 - M2).
func ElGamalSub(a, b ElGamalCiphertext) ElGamalCiphertext {
	return ElGamalCiphertext{C1: PointSub(a.C1, b.C1), C2: PointSub(a.C2, b.C2)}
}

// Bytes encodes c1(32) || c2(32).
func (ct ElGamalCiphertext) Bytes() []byte {
	return append(ct.C1.Bytes(), ct.C2.Bytes()...)
}

func DecodeElGamalCiphertext(b []byte) (ElGamalCiphertext, error) {
	if len(b) != CiphertextBytes {
		return ElGamalCiphertext{}, fmt.Errorf("elgamal: expected %d bytes", CiphertextBytes)
	}
	c1, err := PointFromBytesCanonical(b[:PointBytes])
	if err != nil {
		return ElGamalCiphertext{}, fmt.Errorf("elgamal c1: %w", err)
	}
	c2, err := PointFromBytesCanonical(b[PointBytes:])
	if err != nil {
		return ElGamalCiphertext{}, fmt.Errorf("elgamal c2: %w", err)
	}
	return ElGamalCiphertext{C1: c1, C2: c2}, nil
}
