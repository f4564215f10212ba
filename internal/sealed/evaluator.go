package sealed

import (
	"fmt"

	"onchainrps/internal/orpscrypto"
)

// Evaluator is the homomorphic side of the oracle network. It holds only the
// public key, so it can validate inputs and combine ciphertexts but never
// learns a plaintext.
type Evaluator struct {
	pk       orpscrypto.Point
	contract string
}

func NewEvaluator(oraclePK []byte, contract string) (*Evaluator, error) {
	pk, err := orpscrypto.PointFromBytesCanonical(oraclePK)
	if err != nil {
		return nil, fmt.Errorf("oracle pk: %w", err)
	}
	if contract == "" {
		return nil, fmt.Errorf("missing contract address")
	}
	return &Evaluator{pk: pk, contract: contract}, nil
}

func (e *Evaluator) VerifyInput(owner string, handle []byte, proof []byte) error {
	return VerifyMove(e.pk, e.contract, owner, handle, proof)
}

// Outcome returns Enc(a-b) for first=Enc(a), second=Enc(b).
func (e *Evaluator) Outcome(first []byte, second []byte) ([]byte, error) {
	a, err := orpscrypto.DecodeElGamalCiphertext(first)
	if err != nil {
		return nil, fmt.Errorf("first handle: %w", err)
	}
	b, err := orpscrypto.DecodeElGamalCiphertext(second)
	if err != nil {
		return nil, fmt.Errorf("second handle: %w", err)
	}
	if orpscrypto.PointEq(a.C1, b.C1) {
		// Identical randomness would cancel and expose the plaintext difference.
		return nil, fmt.Errorf("handles share randomness")
	}
	return orpscrypto.ElGamalSub(a, b).Bytes(), nil
}
