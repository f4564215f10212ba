package orpscrypto

import (
	"crypto/sha512"
	"encoding/binary"
	"hash"
)

const transcriptTag = "ORPSv1|transcript|"

// Transcript absorbs labelled, length-prefixed values and derives one
// Fiat-Shamir challenge from them.
type Transcript struct {
	h hash.Hash
}

func NewTranscript(domain string) *Transcript {
	t := &Transcript{h: sha512.New()}
	t.h.Write([]byte(transcriptTag))
	t.write([]byte(domain))
	return t
}

func (t *Transcript) write(b []byte) {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(b)))
	t.h.Write(n[:])
	t.h.Write(b)
}

func (t *Transcript) AppendBytes(label string, b []byte) {
	t.write([]byte(label))
	t.write(b)
}

func (t *Transcript) AppendPoint(label string, p Point) {
	t.AppendBytes(label, p.Bytes())
}

// Challenge finalizes the transcript. Appending afterwards is not supported.
func (t *Transcript) Challenge() (Scalar, error) {
	t.h.Write([]byte("challenge"))
	return ScalarFromUniformBytes(t.h.Sum(nil))
}
