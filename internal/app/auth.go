package app

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strconv"

	"onchainrps/internal/codec"
	"onchainrps/internal/state"
)

// envelopeShape checks the signed-envelope fields without touching state.
func envelopeShape(env codec.TxEnvelope) error {
	switch {
	case env.Nonce == "":
		return errors.New("missing tx.nonce")
	case env.Signer == "":
		return errors.New("missing tx.signer")
	case len(env.Sig) != ed25519.SignatureSize:
		return fmt.Errorf("tx.sig must be %d bytes, got %d", ed25519.SignatureSize, len(env.Sig))
	}
	return nil
}

// signedBy checks that env was signed by account with pub.
func signedBy(env codec.TxEnvelope, account string, pub []byte) error {
	if account == "" {
		return errors.New("missing account")
	}
	if err := envelopeShape(env); err != nil {
		return err
	}
	if env.Signer != account {
		return fmt.Errorf("signer %q cannot act for %q", env.Signer, account)
	}
	if len(pub) != ed25519.PublicKeySize {
		return fmt.Errorf("account %q has no registered key (auth/register_account first)", account)
	}
	msg := codec.SignBytes(env.Type, env.Value, env.Funds, env.Nonce, env.Signer)
	if !ed25519.Verify(ed25519.PublicKey(pub), msg, env.Sig) {
		return errors.New("invalid signature")
	}
	return nil
}

// requireFreshNonce enforces strictly increasing nonces per signer and
// returns the parsed value for the caller to record on success.
func requireFreshNonce(st *state.State, env codec.TxEnvelope) (uint64, error) {
	n, err := strconv.ParseUint(env.Nonce, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid tx.nonce %q", env.Nonce)
	}
	if last, ok := st.NonceMax[env.Signer]; ok && n <= last {
		return 0, fmt.Errorf("stale nonce: got %d, last %d", n, last)
	}
	return n, nil
}

// requireRegisterAccountAuth accepts a self-signed first registration. Key
// rotation must be signed by the key being replaced.
func requireRegisterAccountAuth(st *state.State, env codec.TxEnvelope, msg codec.AuthRegisterAccountTx) error {
	if msg.Account == state.EscrowAccount {
		return fmt.Errorf("account %q is reserved", msg.Account)
	}
	if len(msg.PubKey) != ed25519.PublicKeySize {
		return fmt.Errorf("pubKey must be %d bytes", ed25519.PublicKeySize)
	}
	signer := st.AccountKeys[msg.Account]
	if len(signer) == 0 {
		signer = msg.PubKey
	}
	return signedBy(env, msg.Account, signer)
}

func requireAccountAuth(st *state.State, env codec.TxEnvelope, account string) error {
	return signedBy(env, account, st.AccountKeys[account])
}
