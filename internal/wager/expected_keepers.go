package wager

// Evaluator is the homomorphic evaluation capability. Handles and proofs are
// opaque to the keeper.
type Evaluator interface {
	VerifyInput(owner string, handle []byte, proof []byte) error
	Outcome(first []byte, second []byte) ([]byte, error)
}

// DecryptionVerifier authenticates an oracle response for one correlation id.
type DecryptionVerifier interface {
	VerifyDecryption(correlationID string, handles [][]byte, clear uint64, proof []byte) error
}

// BankKeeper moves funds out of the escrow account.
type BankKeeper interface {
	SendFromEscrow(ctx *Context, to string, amount uint64) error
	EscrowBalance(ctx *Context) uint64
}
