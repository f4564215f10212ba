package wager

import (
	"sync/atomic"

	"cosmossdk.io/log"
)

type Keeper struct {
	evaluator Evaluator
	verifier  DecryptionVerifier
	bank      BankKeeper
	logger    log.Logger

	// busy is the reentrancy guard, see guard.go.
	busy atomic.Bool
}

func NewKeeper(evaluator Evaluator, verifier DecryptionVerifier, bank BankKeeper, logger log.Logger) *Keeper {
	if evaluator == nil {
		panic("wager keeper: evaluator is nil")
	}
	if verifier == nil {
		panic("wager keeper: verifier is nil")
	}
	if bank == nil {
		panic("wager keeper: bank keeper is nil")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Keeper{
		evaluator: evaluator,
		verifier:  verifier,
		bank:      bank,
		logger:    logger.With("module", "x/"+ModuleName),
	}
}

func (k *Keeper) Logger() log.Logger { return k.logger }
