package wager

import (
	"errors"

	errorsmod "cosmossdk.io/errors"
)

const ModuleName = "wager"

// wager sentinel errors.
var (
	ErrInvalidRequest    = errorsmod.Register(ModuleName, 1, "invalid request")
	ErrInvalidStake      = errorsmod.Register(ModuleName, 2, "invalid stake")
	ErrUnknownGame       = errorsmod.Register(ModuleName, 3, "unknown game")
	ErrGameFull          = errorsmod.Register(ModuleName, 4, "game full")
	ErrSelfJoin          = errorsmod.Register(ModuleName, 5, "cannot join own game")
	ErrStakeMismatch     = errorsmod.Register(ModuleName, 6, "stake mismatch")
	ErrDeadlineExceeded  = errorsmod.Register(ModuleName, 7, "move deadline exceeded")
	ErrAlreadyRequested  = errorsmod.Register(ModuleName, 8, "decryption already requested")
	ErrNotAParticipant   = errorsmod.Register(ModuleName, 9, "not a participant")
	ErrAlreadySubmitted  = errorsmod.Register(ModuleName, 10, "move already submitted")
	ErrUnknownRequest    = errorsmod.Register(ModuleName, 11, "unknown or consumed decryption request")
	ErrInvalidProof      = errorsmod.Register(ModuleName, 12, "invalid decryption proof")
	ErrNoPendingRequest  = errorsmod.Register(ModuleName, 13, "no pending decryption request")
	ErrInvalidOutcome    = errorsmod.Register(ModuleName, 14, "invalid outcome code")
	ErrAlreadyCompleted  = errorsmod.Register(ModuleName, 15, "decryption already completed")
	ErrAlreadyExpired    = errorsmod.Register(ModuleName, 16, "game already expired")
	ErrNoBalance         = errorsmod.Register(ModuleName, 17, "no balance")
	ErrTransferFailed    = errorsmod.Register(ModuleName, 18, "transfer failed")
	ErrUnauthorized      = errorsmod.Register(ModuleName, 19, "unauthorized")
	ErrPaused            = errorsmod.Register(ModuleName, 20, "paused")
	ErrInvalidFeeRate    = errorsmod.Register(ModuleName, 21, "invalid fee rate")
	ErrInvalidDeadline   = errorsmod.Register(ModuleName, 22, "invalid move timeout")
	ErrInvalidMove       = errorsmod.Register(ModuleName, 23, "invalid encrypted move")
	ErrReentrantCall     = errorsmod.Register(ModuleName, 24, "reentrant call")
	ErrInsufficientFunds = errorsmod.Register(ModuleName, 25, "insufficient funds")
	ErrInvalidConfig     = errorsmod.Register(ModuleName, 26, "invalid configuration")
	ErrNotPaused         = errorsmod.Register(ModuleName, 27, "not paused")
)

// Class groups errors by how a caller should react to them.
type Class int

const (
	// ClassInternal covers unregistered errors and failed transfers.
	ClassInternal Class = iota
	// ClassValidation: bad input; safe to retry with corrected input.
	ClassValidation
	// ClassAuthorization: never retried automatically.
	ClassAuthorization
	// ClassProtocol: a race or duplicate call; re-read state before retrying.
	ClassProtocol
	// ClassIntegrity: hostile or malfunctioning oracle; the game stays
	// pending and becomes eligible for expiry.
	ClassIntegrity
)

func (c Class) String() string {
	switch c {
	case ClassValidation:
		return "validation"
	case ClassAuthorization:
		return "authorization"
	case ClassProtocol:
		return "protocol"
	case ClassIntegrity:
		return "integrity"
	default:
		return "internal"
	}
}

var classes = []struct {
	err   *errorsmod.Error
	class Class
}{
	{ErrInvalidRequest, ClassValidation},
	{ErrInvalidStake, ClassValidation},
	{ErrStakeMismatch, ClassValidation},
	{ErrDeadlineExceeded, ClassValidation},
	{ErrInvalidDeadline, ClassValidation},
	{ErrAlreadySubmitted, ClassValidation},
	{ErrInvalidMove, ClassValidation},
	{ErrInvalidFeeRate, ClassValidation},
	{ErrInvalidConfig, ClassValidation},
	{ErrNoBalance, ClassValidation},
	{ErrInsufficientFunds, ClassValidation},

	{ErrNotAParticipant, ClassAuthorization},
	{ErrSelfJoin, ClassAuthorization},
	{ErrUnauthorized, ClassAuthorization},

	{ErrUnknownGame, ClassProtocol},
	{ErrGameFull, ClassProtocol},
	{ErrAlreadyRequested, ClassProtocol},
	{ErrUnknownRequest, ClassProtocol},
	{ErrNoPendingRequest, ClassProtocol},
	{ErrAlreadyCompleted, ClassProtocol},
	{ErrAlreadyExpired, ClassProtocol},
	{ErrPaused, ClassProtocol},
	{ErrNotPaused, ClassProtocol},
	{ErrReentrantCall, ClassProtocol},

	{ErrInvalidProof, ClassIntegrity},
	{ErrInvalidOutcome, ClassIntegrity},
}

// ClassOf maps an error (possibly wrapped, or rebuilt from an ABCI result with
// errorsmod.ABCIError) to its class.
func ClassOf(err error) Class {
	for _, c := range classes {
		if errors.Is(err, c.err) {
			return c.class
		}
	}
	return ClassInternal
}
