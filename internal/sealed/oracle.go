package sealed

import (
	"fmt"
	"io"

	"onchainrps/internal/orpscrypto"
)

const decryptionDomain = "orps/v1/decryption"

// Oracle holds the decryption key. It runs off-chain, next to the relayer.
type Oracle struct {
	sk orpscrypto.Scalar
	pk orpscrypto.Point
}

func GenerateOracleKey(rnd io.Reader) (*Oracle, error) {
	sk, err := orpscrypto.RandomScalar(rnd)
	if err != nil {
		return nil, err
	}
	return &Oracle{sk: sk, pk: orpscrypto.MulBase(sk)}, nil
}

func NewOracle(secret []byte) (*Oracle, error) {
	sk, err := orpscrypto.ScalarFromBytesCanonical(secret)
	if err != nil {
		return nil, fmt.Errorf("oracle secret: %w", err)
	}
	if sk.IsZero() {
		return nil, fmt.Errorf("oracle secret must be non-zero")
	}
	return &Oracle{sk: sk, pk: orpscrypto.MulBase(sk)}, nil
}

func (o *Oracle) PublicKey() []byte { return o.pk.Bytes() }

func (o *Oracle) SecretKey() []byte { return o.sk.Bytes() }

func decryptionStatement(pk orpscrypto.Point, ct orpscrypto.ElGamalCiphertext, members []int64, correlationID string) orpscrypto.DLEQOrStatement {
	ys := make([]orpscrypto.Point, len(members))
	for i, d := range members {
		ys[i] = orpscrypto.PointSub(ct.C2, orpscrypto.SmallMultiple(d))
	}
	return orpscrypto.DLEQOrStatement{
		A:       orpscrypto.PointBase(),
		B:       ct.C1,
		X:       pk,
		Y:       ys,
		Context: bindContext(correlationID),
	}
}

// Decrypt returns the outcome code for a pending request and a proof that
// binds it to the correlation id.
func (o *Oracle) Decrypt(rnd io.Reader, correlationID string, handles [][]byte) (uint64, []byte, error) {
	if correlationID == "" {
		return 0, nil, fmt.Errorf("missing correlation id")
	}
	if len(handles) != 1 {
		return 0, nil, fmt.Errorf("expected exactly one handle, got %d", len(handles))
	}
	ct, err := orpscrypto.DecodeElGamalCiphertext(handles[0])
	if err != nil {
		return 0, nil, err
	}
	m := orpscrypto.ElGamalDecrypt(o.sk, ct)

	d, found := int64(0), false
	for cand := int64(-2); cand <= 2; cand++ {
		if orpscrypto.PointEq(m, orpscrypto.SmallMultiple(cand)) {
			d, found = cand, true
			break
		}
	}
	if !found {
		return 0, nil, fmt.Errorf("plaintext outside outcome range")
	}
	code, branch, _ := classify(d)

	st := decryptionStatement(o.pk, ct, outcomeClasses[code], correlationID)
	p, err := orpscrypto.ProveDLEQOr(decryptionDomain, st, branch, o.sk, rnd)
	if err != nil {
		return 0, nil, err
	}
	return code, orpscrypto.EncodeDLEQOrProof(p), nil
}

// Verifier authenticates oracle responses against the oracle public key.
type Verifier struct {
	pk orpscrypto.Point
}

func NewVerifier(oraclePK []byte) (*Verifier, error) {
	pk, err := orpscrypto.PointFromBytesCanonical(oraclePK)
	if err != nil {
		return nil, fmt.Errorf("oracle pk: %w", err)
	}
	return &Verifier{pk: pk}, nil
}

func (v *Verifier) VerifyDecryption(correlationID string, handles [][]byte, clear uint64, proof []byte) error {
	if len(handles) != 1 {
		return fmt.Errorf("expected exactly one handle, got %d", len(handles))
	}
	members, ok := outcomeClasses[clear]
	if !ok {
		return fmt.Errorf("no proof system for clear value %d", clear)
	}
	ct, err := orpscrypto.DecodeElGamalCiphertext(handles[0])
	if err != nil {
		return err
	}
	p, err := orpscrypto.DecodeDLEQOrProof(proof, len(members))
	if err != nil {
		return err
	}
	ok, err = orpscrypto.VerifyDLEQOr(decryptionDomain, decryptionStatement(v.pk, ct, members, correlationID), p)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("decryption proof does not verify")
	}
	return nil
}
