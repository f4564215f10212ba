package wager

import (
	"strconv"

	"onchainrps/internal/state"
)

func requireOwner(st *state.State, caller string) error {
	if caller == "" || caller != st.Owner {
		return ErrUnauthorized.Wrapf("%q is not the owner", caller)
	}
	return nil
}

// adminOp runs fn under the reentrancy guard after the owner check.
func (k *Keeper) adminOp(ctx *Context, caller string, fn func(st *state.State) error) error {
	release, err := k.enter()
	if err != nil {
		return err
	}
	defer release()

	if err := requireOwner(ctx.State, caller); err != nil {
		return err
	}
	return fn(ctx.State)
}

func (k *Keeper) Pause(ctx *Context, caller string) error {
	return k.adminOp(ctx, caller, func(st *state.State) error {
		if st.Paused {
			return ErrPaused.Wrap("already paused")
		}
		st.Paused = true
		ctx.EmitEvent(EventTypePaused, map[string]string{AttrBy: caller})
		k.logger.Info("paused", "by", caller)
		return nil
	})
}

func (k *Keeper) Unpause(ctx *Context, caller string) error {
	return k.adminOp(ctx, caller, func(st *state.State) error {
		if !st.Paused {
			return ErrNotPaused.Wrap("already running")
		}
		st.Paused = false
		ctx.EmitEvent(EventTypeUnpaused, map[string]string{AttrBy: caller})
		k.logger.Info("unpaused", "by", caller)
		return nil
	})
}

func (k *Keeper) SetFeeRate(ctx *Context, caller string, bps uint32) error {
	return k.adminOp(ctx, caller, func(st *state.State) error {
		if bps > state.MaxFeeBps {
			return ErrInvalidFeeRate.Wrapf("%d bps exceeds cap %d", bps, state.MaxFeeBps)
		}
		old := st.Params.FeeBps
		st.Params.FeeBps = bps
		ctx.EmitEvent(EventTypeFeeRateChanged, map[string]string{
			AttrOld: strconv.FormatUint(uint64(old), 10),
			AttrNew: strconv.FormatUint(uint64(bps), 10),
		})
		return nil
	})
}

func (k *Keeper) SetFeeRecipient(ctx *Context, caller string, recipient string) error {
	return k.adminOp(ctx, caller, func(st *state.State) error {
		if recipient == "" {
			return ErrInvalidRequest.Wrap("missing recipient")
		}
		old := st.Params.FeeRecipient
		st.Params.FeeRecipient = recipient
		ctx.EmitEvent(EventTypeFeeRecipientChanged, map[string]string{
			AttrOld: old,
			AttrNew: recipient,
		})
		return nil
	})
}

func (k *Keeper) SetStakeBounds(ctx *Context, caller string, minStake uint64, maxStake uint64) error {
	return k.adminOp(ctx, caller, func(st *state.State) error {
		if minStake == 0 || minStake > maxStake {
			return ErrInvalidConfig.Wrapf("stake bounds [%d, %d]", minStake, maxStake)
		}
		st.Params.MinStake = minStake
		st.Params.MaxStake = maxStake
		ctx.EmitEvent(EventTypeStakeBoundsChanged, map[string]string{
			AttrMin: u64str(minStake),
			AttrMax: u64str(maxStake),
		})
		return nil
	})
}

// EmergencyWithdraw sends the entire escrow balance to the owner. It is only
// available while paused and leaves the withdrawable ledger untouched.
func (k *Keeper) EmergencyWithdraw(ctx *Context, caller string) (uint64, error) {
	var amount uint64
	err := k.adminOp(ctx, caller, func(st *state.State) error {
		if !st.Paused {
			return ErrNotPaused.Wrap("emergency withdrawal requires pause")
		}
		amount = k.bank.EscrowBalance(ctx)
		if amount == 0 {
			return ErrNoBalance.Wrap("escrow is empty")
		}
		if err := k.bank.SendFromEscrow(ctx, st.Owner, amount); err != nil {
			return ErrTransferFailed.Wrapf("send %d to %s: %v", amount, st.Owner, err)
		}
		ctx.EmitEvent(EventTypeEmergencyWithdrawal, map[string]string{
			AttrTo:     st.Owner,
			AttrAmount: u64str(amount),
		})
		k.logger.Error("emergency withdrawal", "owner", st.Owner, "amount", amount)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return amount, nil
}

func (k *Keeper) TransferOwnership(ctx *Context, caller string, newOwner string) error {
	return k.adminOp(ctx, caller, func(st *state.State) error {
		if newOwner == "" {
			return ErrInvalidRequest.Wrap("missing new owner")
		}
		st.Owner = newOwner
		ctx.EmitEvent(EventTypeOwnershipTransferred, map[string]string{
			AttrOld: caller,
			AttrNew: newOwner,
		})
		return nil
	})
}

// Config is the read-only configuration surface.
type Config struct {
	Owner     string       `json:"owner"`
	Paused    bool         `json:"paused"`
	GameCount uint64       `json:"gameCount"`
	Params    state.Params `json:"params"`
}

func (k *Keeper) Config(ctx *Context) Config {
	st := ctx.State
	return Config{
		Owner:     st.Owner,
		Paused:    st.Paused,
		GameCount: st.GameCount(),
		Params:    st.Params,
	}
}
