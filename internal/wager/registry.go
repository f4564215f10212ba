package wager

import (
	"errors"
	"strconv"
	"strings"

	"onchainrps/internal/state"
)

// CreateGame escrows the creator's stake as a new game with the first move
// already sealed in slot 0. attached is the amount the host already moved
// into escrow for this call.
func (k *Keeper) CreateGame(ctx *Context, creator string, stake uint64, attached uint64, moveTimeoutSecs uint64, move []byte, proof []byte) (uint64, error) {
	release, err := k.enter()
	if err != nil {
		return 0, err
	}
	defer release()

	st := ctx.State
	if creator == "" {
		return 0, ErrInvalidRequest.Wrap("missing creator")
	}
	if st.Paused {
		return 0, ErrPaused.Wrap("game creation is paused")
	}
	if err := validateStake(st.Params, stake, attached); err != nil {
		return 0, err
	}
	if moveTimeoutSecs < st.Params.MinMoveTimeoutSecs || moveTimeoutSecs > st.Params.MaxMoveTimeoutSecs {
		return 0, ErrInvalidDeadline.Wrapf("move timeout %ds outside [%d, %d]",
			moveTimeoutSecs, st.Params.MinMoveTimeoutSecs, st.Params.MaxMoveTimeoutSecs)
	}
	if err := k.evaluator.VerifyInput(creator, move, proof); err != nil {
		return 0, ErrInvalidMove.Wrap(err.Error())
	}
	deadline, err := addInt64AndU64Checked(ctx.Now, moveTimeoutSecs, "move deadline")
	if err != nil {
		return 0, ErrInvalidDeadline.Wrap(err.Error())
	}

	id := st.NextGameID
	st.NextGameID++
	st.Games[id] = &state.Game{
		ID:           id,
		FirstMover:   creator,
		Stake:        stake,
		Pot:          stake,
		Moves:        [2]state.MoveSlot{{Handle: append([]byte(nil), move...), Submitted: true}},
		CreatedAt:    ctx.Now,
		MoveDeadline: deadline,
	}

	ctx.EmitEvent(EventTypeGameCreated, map[string]string{
		AttrGameID:   u64str(id),
		AttrPlayer:   creator,
		AttrStake:    u64str(stake),
		AttrDeadline: strconv.FormatInt(deadline, 10),
	})
	k.logger.Info("game created", "gameId", id, "creator", creator, "stake", stake)
	return id, nil
}

// GetGame returns the record for id. Ids are allocated from 1 and never
// reused, so any id in [1, GameCount] exists.
func (k *Keeper) GetGame(ctx *Context, id uint64) (*state.Game, error) {
	return getGame(ctx.State, id)
}

func getGame(st *state.State, id uint64) (*state.Game, error) {
	if id == 0 || id > st.GameCount() {
		return nil, ErrUnknownGame.Wrapf("game %d", id)
	}
	g, ok := st.Games[id]
	if !ok {
		return nil, ErrUnknownGame.Wrapf("game %d missing from registry", id)
	}
	return g, nil
}

// ParseGameID parses a game id from user input. Negative and zero ids are
// unknown games rather than malformed input.
func ParseGameID(raw string) (uint64, error) {
	if digits, neg := strings.CutPrefix(raw, "-"); neg {
		if _, err := strconv.ParseUint(digits, 10, 64); err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, ErrInvalidRequest.Wrapf("invalid game id %q", raw)
		}
		return 0, ErrUnknownGame.Wrapf("game %s", raw)
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, ErrInvalidRequest.Wrapf("invalid game id %q", raw)
	}
	if n == 0 {
		return 0, ErrUnknownGame.Wrap("game 0")
	}
	return n, nil
}

func (k *Keeper) GameCount(ctx *Context) uint64 { return ctx.State.GameCount() }

func (k *Keeper) Params(ctx *Context) state.Params { return ctx.State.Params }

func (k *Keeper) Paused(ctx *Context) bool { return ctx.State.Paused }

func (k *Keeper) FeesCollected(ctx *Context) uint64 { return ctx.State.FeesCollected }

func (k *Keeper) Withdrawable(ctx *Context, addr string) uint64 {
	return ctx.State.Withdrawable[addr]
}

func u64str(x uint64) string { return strconv.FormatUint(x, 10) }
