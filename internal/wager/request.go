package wager

import (
	"encoding/hex"
	"strconv"

	"onchainrps/internal/state"
)

// pendingOutcome is a sealed outcome that has been evaluated but not yet
// recorded on the game.
type pendingOutcome struct {
	handle   []byte
	deadline int64
}

// prepareOutcome evaluates the sealed outcome for a pair of move handles
// without touching the game, so callers can fail before mutating anything.
func (k *Keeper) prepareOutcome(ctx *Context, g *state.Game, first, second []byte) (pendingOutcome, error) {
	if g.Requested || g.Completed || g.CorrelationID != "" {
		return pendingOutcome{}, ErrAlreadyRequested.Wrapf("game %d", g.ID)
	}
	handle, err := k.evaluator.Outcome(first, second)
	if err != nil {
		return pendingOutcome{}, ErrInvalidMove.Wrapf("evaluate outcome: %v", err)
	}
	deadline, err := addInt64AndU64Checked(ctx.Now, ctx.State.Params.OracleBudgetSecs, "decryption deadline")
	if err != nil {
		return pendingOutcome{}, ErrInvalidConfig.Wrap(err.Error())
	}
	return pendingOutcome{handle: handle, deadline: deadline}, nil
}

// openRequest opens exactly one decryption request for a prepared outcome.
// Only the outcome handle leaves the game record; the move handles are never
// sent for decryption.
func (k *Keeper) openRequest(ctx *Context, g *state.Game, out pendingOutcome) {
	cid := requestDecryption(ctx, g.ID, [][]byte{out.handle})
	g.Requested = true
	g.RequestedAt = ctx.Now
	g.DecryptionDeadline = out.deadline
	g.CorrelationID = cid
	g.OutcomeHandle = out.handle

	ctx.EmitEvent(EventTypeDecryptionRequested, map[string]string{
		AttrGameID:        u64str(g.ID),
		AttrCorrelationID: cid,
		AttrHandle:        hex.EncodeToString(out.handle),
		AttrDeadline:      strconv.FormatInt(out.deadline, 10),
	})
	k.logger.Debug("decryption requested", "gameId", g.ID, "correlationId", cid)
}
