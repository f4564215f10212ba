package wager

import (
	errorsmod "cosmossdk.io/errors"

	"onchainrps/internal/state"
)

// MaxBatchExpire bounds the ids accepted by one BatchExpireGames call.
const MaxBatchExpire = 256

type BatchMode int

const (
	// BatchBestEffort expires each id independently; failures are reported
	// per id and do not affect siblings.
	BatchBestEffort BatchMode = iota
	// BatchAtomic validates every id first and rejects the whole batch on
	// the first error.
	BatchAtomic
)

type ExpiryResult struct {
	GameID  uint64 `json:"gameId"`
	Expired bool   `json:"expired"`
	Err     error  `json:"-"`
}

// expiryReason reports why g may be expired at now, if it may.
func expiryReason(g *state.Game, now int64) (string, bool) {
	if g.Expired || g.Completed {
		return "", false
	}
	if !g.HasSecond() && now > g.MoveDeadline {
		return "move-deadline", true
	}
	if g.Requested && now > g.DecryptionDeadline {
		return "decryption-deadline", true
	}
	return "", false
}

// CheckAndExpireGame refunds a stalled game. It returns false with no error
// when the game is not (yet) eligible.
func (k *Keeper) CheckAndExpireGame(ctx *Context, gameID uint64) (bool, error) {
	release, err := k.enter()
	if err != nil {
		return false, err
	}
	defer release()
	return k.checkAndExpire(ctx, gameID)
}

func (k *Keeper) checkAndExpire(ctx *Context, gameID uint64) (bool, error) {
	st := ctx.State
	g, err := getGame(st, gameID)
	if err != nil {
		return false, err
	}
	if g.Expired {
		return false, ErrAlreadyExpired.Wrapf("game %d", gameID)
	}
	reason, ok := expiryReason(g, ctx.Now)
	if !ok {
		return false, nil
	}

	// Participants are distinct, so checking each credit alone is enough.
	participants := g.Participants()
	for _, p := range participants {
		if _, err := addUint64Checked(st.Withdrawable[p], g.Stake, "withdrawable balance"); err != nil {
			return false, ErrInvalidRequest.Wrap(err.Error())
		}
	}

	g.Expired = true
	g.Refunded = true
	g.EndedAt = ctx.Now
	if g.Requested {
		// Cancel the outstanding request; a late oracle answer then fails
		// with ErrNoPendingRequest.
		g.Requested = false
		if req, ok := st.Requests[g.CorrelationID]; ok {
			req.Cancelled = true
		}
	}
	for _, p := range participants {
		if err := creditWithdrawable(st, p, g.Stake); err != nil {
			return false, err
		}
		ctx.EmitEvent(EventTypeRefundCredited, map[string]string{
			AttrGameID: u64str(gameID),
			AttrTo:     p,
			AttrAmount: u64str(g.Stake),
		})
	}
	ctx.EmitEvent(EventTypeGameExpired, map[string]string{
		AttrGameID: u64str(gameID),
		AttrReason: reason,
		AttrAmount: u64str(g.Pot),
	})
	k.logger.Info("game expired", "gameId", gameID, "reason", reason, "refunded", g.Pot)
	return true, nil
}

// BatchExpireGames sweeps ids. In BatchAtomic mode the returned error is the
// first per-id failure and nothing is applied. Ids that are simply not yet
// eligible are a no-op in both modes.
func (k *Keeper) BatchExpireGames(ctx *Context, ids []uint64, mode BatchMode) ([]ExpiryResult, error) {
	release, err := k.enter()
	if err != nil {
		return nil, err
	}
	defer release()

	if len(ids) == 0 {
		return nil, ErrInvalidRequest.Wrap("no game ids")
	}
	if len(ids) > MaxBatchExpire {
		return nil, ErrInvalidRequest.Wrapf("at most %d ids per batch, got %d", MaxBatchExpire, len(ids))
	}

	if mode == BatchAtomic {
		seen := make(map[uint64]bool, len(ids))
		for _, id := range ids {
			g, err := getGame(ctx.State, id)
			if err != nil {
				return nil, errorsmod.Wrapf(err, "batch entry %d", id)
			}
			if g.Expired || seen[id] {
				return nil, ErrAlreadyExpired.Wrapf("batch entry %d", id)
			}
			seen[id] = true
		}
	}

	results := make([]ExpiryResult, 0, len(ids))
	for _, id := range ids {
		expired, err := k.checkAndExpire(ctx, id)
		if err != nil && mode == BatchAtomic {
			return nil, errorsmod.Wrapf(err, "batch entry %d", id)
		}
		results = append(results, ExpiryResult{GameID: id, Expired: expired, Err: err})
	}
	return results, nil
}

// ExpirableGames lists ids an expiry sweep would act on right now.
func (k *Keeper) ExpirableGames(ctx *Context) []uint64 {
	out := make([]uint64, 0)
	for id := uint64(1); id <= ctx.State.GameCount(); id++ {
		g, ok := ctx.State.Games[id]
		if !ok {
			continue
		}
		if _, ok := expiryReason(g, ctx.Now); ok {
			out = append(out, id)
		}
	}
	return out
}
