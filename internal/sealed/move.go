package sealed

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"onchainrps/internal/orpscrypto"
)

type Choice uint8

const (
	Rock     Choice = 0
	Paper    Choice = 1
	Scissors Choice = 2
)

const moveInputDomain = "orps/v1/move-input"

var choiceValues = []int64{int64(Rock), int64(Paper), int64(Scissors)}

func (c Choice) String() string {
	switch c {
	case Rock:
		return "rock"
	case Paper:
		return "paper"
	case Scissors:
		return "scissors"
	default:
		return fmt.Sprintf("choice(%d)", uint8(c))
	}
}

func ParseChoice(s string) (Choice, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rock", "r", "0":
		return Rock, nil
	case "paper", "p", "1":
		return Paper, nil
	case "scissors", "s", "2":
		return Scissors, nil
	}
	return 0, fmt.Errorf("unknown choice %q (want rock|paper|scissors)", s)
}

// bindContext length-prefixes each part so ("ab","c") and ("a","bc") differ.
func bindContext(parts ...string) []byte {
	var out []byte
	for _, p := range parts {
		var n [4]byte
		binary.LittleEndian.PutUint32(n[:], uint32(len(p)))
		out = append(out, n[:]...)
		out = append(out, p...)
	}
	return out
}

func moveStatement(pk orpscrypto.Point, ct orpscrypto.ElGamalCiphertext, contract, user string) orpscrypto.DLEQOrStatement {
	ys := make([]orpscrypto.Point, len(choiceValues))
	for i, m := range choiceValues {
		ys[i] = orpscrypto.PointSub(ct.C2, orpscrypto.SmallMultiple(m))
	}
	return orpscrypto.DLEQOrStatement{
		A:       orpscrypto.PointBase(),
		B:       pk,
		X:       ct.C1,
		Y:       ys,
		Context: bindContext(contract, user),
	}
}

// EncryptMove produces an opaque move handle and an input proof bound to the
// contract and the submitting user.
func EncryptMove(rnd io.Reader, oraclePK []byte, contract, user string, choice Choice) (handle []byte, proof []byte, err error) {
	if choice > Scissors {
		return nil, nil, fmt.Errorf("invalid choice %d", choice)
	}
	if user == "" {
		return nil, nil, fmt.Errorf("missing user")
	}
	pk, err := orpscrypto.PointFromBytesCanonical(oraclePK)
	if err != nil {
		return nil, nil, fmt.Errorf("oracle pk: %w", err)
	}
	r, err := orpscrypto.RandomScalar(rnd)
	if err != nil {
		return nil, nil, err
	}
	ct, err := orpscrypto.ElGamalEncrypt(pk, orpscrypto.SmallMultiple(int64(choice)), r)
	if err != nil {
		return nil, nil, err
	}
	p, err := orpscrypto.ProveDLEQOr(moveInputDomain, moveStatement(pk, ct, contract, user), int(choice), r, rnd)
	if err != nil {
		return nil, nil, err
	}
	return ct.Bytes(), orpscrypto.EncodeDLEQOrProof(p), nil
}

// VerifyMove checks that handle encrypts a valid choice and that proof was
// produced for this contract and user.
func VerifyMove(pk orpscrypto.Point, contract, user string, handle []byte, proof []byte) error {
	ct, err := orpscrypto.DecodeElGamalCiphertext(handle)
	if err != nil {
		return fmt.Errorf("move handle: %w", err)
	}
	p, err := orpscrypto.DecodeDLEQOrProof(proof, len(choiceValues))
	if err != nil {
		return fmt.Errorf("move proof: %w", err)
	}
	ok, err := orpscrypto.VerifyDLEQOr(moveInputDomain, moveStatement(pk, ct, contract, user), p)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("move proof does not verify for %q", user)
	}
	return nil
}
