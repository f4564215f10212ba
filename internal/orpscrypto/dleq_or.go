package orpscrypto

import (
	"fmt"
	"io"
	"strconv"
)

// DLEQOrStatement is the public side of a 1-of-n discrete-log-equality proof:
//
//	exists i, w such that X = w*A and Y[i] = w*B
//
// Context is absorbed into the challenge and binds the proof to its use
// (a player identity, a correlation id).
type DLEQOrStatement struct {
	A       Point
	B       Point
	X       Point
	Y       []Point
	Context []byte
}

// DLEQOrProof holds one (challenge, response) pair per branch. Commitments are
// recomputed by the verifier, so only 64 bytes per branch go on the wire.
type DLEQOrProof struct {
	E []Scalar
	Z []Scalar
}

func dleqOrChallenge(domain string, st DLEQOrStatement, t1 []Point, t2 []Point) (Scalar, error) {
	tr := NewTranscript(domain)
	tr.AppendBytes("ctx", st.Context)
	tr.AppendPoint("A", st.A)
	tr.AppendPoint("B", st.B)
	tr.AppendPoint("X", st.X)
	for i := range st.Y {
		idx := strconv.Itoa(i)
		tr.AppendPoint("Y."+idx, st.Y[i])
		tr.AppendPoint("t1."+idx, t1[i])
		tr.AppendPoint("t2."+idx, t2[i])
	}
	return tr.Challenge()
}

// simulateDLEQCommitments returns commitments that satisfy the verification
// equations for a chosen (e, z).
func simulateDLEQCommitments(A, B, X, Y Point, e, z Scalar) (Point, Point) {
	t1 := PointSub(MulPoint(A, z), MulPoint(X, e))
	t2 := PointSub(MulPoint(B, z), MulPoint(Y, e))
	return t1, t2
}

// ProveDLEQOr proves the statement for branch `real` with witness w.
func ProveDLEQOr(domain string, st DLEQOrStatement, real int, w Scalar, rnd io.Reader) (DLEQOrProof, error) {
	n := len(st.Y)
	if n == 0 {
		return DLEQOrProof{}, fmt.Errorf("dleq-or: no branches")
	}
	if real < 0 || real >= n {
		return DLEQOrProof{}, fmt.Errorf("dleq-or: real branch %d out of range", real)
	}

	t1 := make([]Point, n)
	t2 := make([]Point, n)
	e := make([]Scalar, n)
	z := make([]Scalar, n)

	simSum := ScalarZero()
	for i := 0; i < n; i++ {
		if i == real {
			continue
		}
		ei, err := RandomScalar(rnd)
		if err != nil {
			return DLEQOrProof{}, err
		}
		zi, err := RandomScalar(rnd)
		if err != nil {
			return DLEQOrProof{}, err
		}
		e[i], z[i] = ei, zi
		t1[i], t2[i] = simulateDLEQCommitments(st.A, st.B, st.X, st.Y[i], ei, zi)
		simSum = ScalarAdd(simSum, ei)
	}

	k, err := RandomScalar(rnd)
	if err != nil {
		return DLEQOrProof{}, err
	}
	t1[real] = MulPoint(st.A, k)
	t2[real] = MulPoint(st.B, k)

	c, err := dleqOrChallenge(domain, st, t1, t2)
	if err != nil {
		return DLEQOrProof{}, err
	}
	e[real] = ScalarSub(c, simSum)
	z[real] = ScalarAdd(k, ScalarMul(e[real], w))
	return DLEQOrProof{E: e, Z: z}, nil
}

func VerifyDLEQOr(domain string, st DLEQOrStatement, proof DLEQOrProof) (bool, error) {
	n := len(st.Y)
	if n == 0 {
		return false, fmt.Errorf("dleq-or: no branches")
	}
	if len(proof.E) != n || len(proof.Z) != n {
		return false, nil
	}

	t1 := make([]Point, n)
	t2 := make([]Point, n)
	sum := ScalarZero()
	for i := 0; i < n; i++ {
		t1[i], t2[i] = simulateDLEQCommitments(st.A, st.B, st.X, st.Y[i], proof.E[i], proof.Z[i])
		sum = ScalarAdd(sum, proof.E[i])
	}
	c, err := dleqOrChallenge(domain, st, t1, t2)
	if err != nil {
		return false, err
	}
	return ScalarEq(c, sum), nil
}

// Encoding: n * (e(32) || z(32))
func EncodeDLEQOrProof(p DLEQOrProof) []byte {
	out := make([]byte, 0, len(p.E)*2*ScalarBytes)
	for i := range p.E {
		out = append(out, p.E[i].Bytes()...)
		out = append(out, p.Z[i].Bytes()...)
	}
	return out
}

func DecodeDLEQOrProof(b []byte, branches int) (DLEQOrProof, error) {
	if branches <= 0 {
		return DLEQOrProof{}, fmt.Errorf("dleq-or: invalid branch count %d", branches)
	}
	want := branches * 2 * ScalarBytes
	if len(b) != want {
		return DLEQOrProof{}, fmt.Errorf("dleq-or: expected %d bytes, got %d", want, len(b))
	}
	p := DLEQOrProof{E: make([]Scalar, branches), Z: make([]Scalar, branches)}
	for i := 0; i < branches; i++ {
		off := i * 2 * ScalarBytes
		e, err := ScalarFromBytesCanonical(b[off : off+ScalarBytes])
		if err != nil {
			return DLEQOrProof{}, err
		}
		z, err := ScalarFromBytesCanonical(b[off+ScalarBytes : off+2*ScalarBytes])
		if err != nil {
			return DLEQOrProof{}, err
		}
		p.E[i], p.Z[i] = e, z
	}
	return p, nil
}
