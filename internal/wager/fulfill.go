package wager

import (
	"onchainrps/internal/sealed"
	"onchainrps/internal/state"
)

// FulfillDecryption applies an oracle response. It is permissionless: the
// proof, not the caller, authenticates the clear outcome.
//
// Checks run in a fixed order: pause, correlation id, proof, completion,
// pending flag, outcome code. Nothing is mutated until all pass.
func (k *Keeper) FulfillDecryption(ctx *Context, correlationID string, clear uint64, proof []byte) (*state.Game, error) {
	release, err := k.enter()
	if err != nil {
		return nil, err
	}
	defer release()

	st := ctx.State
	if st.Paused {
		return nil, ErrPaused.Wrap("fulfillment is paused")
	}
	req, ok := st.Requests[correlationID]
	if !ok || req.Consumed {
		return nil, ErrUnknownRequest.Wrapf("correlation id %q", correlationID)
	}
	if err := k.verifier.VerifyDecryption(correlationID, req.Handles, clear, proof); err != nil {
		return nil, ErrInvalidProof.Wrap(err.Error())
	}
	g, err := getGame(st, req.GameID)
	if err != nil {
		return nil, err
	}
	if g.Completed {
		return nil, ErrAlreadyCompleted.Wrapf("game %d", g.ID)
	}
	if !g.Requested || g.CorrelationID != correlationID {
		return nil, ErrNoPendingRequest.Wrapf("game %d", g.ID)
	}
	if clear > sealed.OutcomeDraw {
		return nil, ErrInvalidOutcome.Wrapf("code %d", clear)
	}

	req.Consumed = true
	g.Completed = true
	g.Requested = false

	ctx.EmitEvent(EventTypeDecryptionCompleted, map[string]string{
		AttrGameID:        u64str(g.ID),
		AttrCorrelationID: correlationID,
		AttrOutcome:       u64str(clear),
	})

	if err := k.settle(ctx, g, clear); err != nil {
		return nil, err
	}
	return g, nil
}
