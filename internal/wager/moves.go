package wager

import (
	"onchainrps/internal/state"
)

// JoinGame seats the second participant and, in the same call, requests the
// outcome decryption.
func (k *Keeper) JoinGame(ctx *Context, gameID uint64, player string, attached uint64, move []byte, proof []byte) error {
	release, err := k.enter()
	if err != nil {
		return err
	}
	defer release()

	st := ctx.State
	if player == "" {
		return ErrInvalidRequest.Wrap("missing player")
	}
	if st.Paused {
		return ErrPaused.Wrap("joining is paused")
	}
	g, err := getGame(st, gameID)
	if err != nil {
		return err
	}
	if g.HasSecond() {
		return ErrGameFull.Wrapf("game %d", gameID)
	}
	if player == g.FirstMover {
		return ErrSelfJoin.Wrapf("game %d", gameID)
	}
	if attached != g.Stake {
		return ErrStakeMismatch.Wrapf("attached %d, stake %d", attached, g.Stake)
	}
	if g.Expired {
		return ErrAlreadyExpired.Wrapf("game %d", gameID)
	}
	if ctx.Now > g.MoveDeadline {
		return ErrDeadlineExceeded.Wrapf("now %d > deadline %d", ctx.Now, g.MoveDeadline)
	}
	if g.Requested || g.Completed {
		return ErrAlreadyRequested.Wrapf("game %d", gameID)
	}
	if err := k.evaluator.VerifyInput(player, move, proof); err != nil {
		return ErrInvalidMove.Wrap(err.Error())
	}
	pot, err := mulUint64Checked(g.Stake, 2, "pot")
	if err != nil {
		return ErrInvalidStake.Wrap(err.Error())
	}
	var out pendingOutcome
	if g.Moves[0].Submitted {
		if out, err = k.prepareOutcome(ctx, g, g.Moves[0].Handle, move); err != nil {
			return err
		}
	}

	g.SecondMover = player
	g.Moves[1] = state.MoveSlot{Handle: append([]byte(nil), move...), Submitted: true}
	g.Pot = pot

	ctx.EmitEvent(EventTypeGameJoined, map[string]string{
		AttrGameID: u64str(gameID),
		AttrPlayer: player,
		AttrPot:    u64str(pot),
	})

	if g.BothSubmitted() {
		k.openRequest(ctx, g, out)
	}
	return nil
}

// SubmitMove fills a participant's empty slot before the move deadline.
// Once both slots are sealed the outcome is requested.
func (k *Keeper) SubmitMove(ctx *Context, gameID uint64, player string, move []byte, proof []byte) error {
	release, err := k.enter()
	if err != nil {
		return err
	}
	defer release()

	st := ctx.State
	if st.Paused {
		return ErrPaused.Wrap("move submission is paused")
	}
	g, err := getGame(st, gameID)
	if err != nil {
		return err
	}
	slot := g.Slot(player)
	if slot < 0 {
		return ErrNotAParticipant.Wrapf("%q in game %d", player, gameID)
	}
	if g.Expired {
		return ErrAlreadyExpired.Wrapf("game %d", gameID)
	}
	if g.Requested || g.Completed {
		return ErrAlreadyRequested.Wrapf("game %d", gameID)
	}
	if ctx.Now > g.MoveDeadline {
		return ErrDeadlineExceeded.Wrapf("now %d > deadline %d", ctx.Now, g.MoveDeadline)
	}
	if g.Moves[slot].Submitted {
		return ErrAlreadySubmitted.Wrapf("slot %d of game %d", slot, gameID)
	}
	if err := k.evaluator.VerifyInput(player, move, proof); err != nil {
		return ErrInvalidMove.Wrap(err.Error())
	}
	var out pendingOutcome
	if other := g.Moves[1-slot]; g.HasSecond() && other.Submitted {
		first, second := other.Handle, move
		if slot == 0 {
			first, second = move, other.Handle
		}
		if out, err = k.prepareOutcome(ctx, g, first, second); err != nil {
			return err
		}
	}

	g.Moves[slot] = state.MoveSlot{Handle: append([]byte(nil), move...), Submitted: true}
	ctx.EmitEvent(EventTypeMoveSubmitted, map[string]string{
		AttrGameID: u64str(gameID),
		AttrPlayer: player,
		AttrSlot:   u64str(uint64(slot)),
	})

	if g.BothSubmitted() {
		k.openRequest(ctx, g, out)
	}
	return nil
}
