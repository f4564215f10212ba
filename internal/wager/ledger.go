package wager

import (
	"onchainrps/internal/state"
)

// creditWithdrawable is the only way balances grow. Entries are created on
// first credit and never removed.
func creditWithdrawable(st *state.State, addr string, amount uint64) error {
	next, err := addUint64Checked(st.Withdrawable[addr], amount, "withdrawable balance")
	if err != nil {
		return ErrInvalidRequest.Wrap(err.Error())
	}
	st.Withdrawable[addr] = next
	return nil
}

// Withdraw pays out the caller's whole balance. The ledger entry is zeroed
// before the transfer and is not restored if the transfer fails.
func (k *Keeper) Withdraw(ctx *Context, caller string) (uint64, error) {
	release, err := k.enter()
	if err != nil {
		return 0, err
	}
	defer release()

	if caller == "" {
		return 0, ErrInvalidRequest.Wrap("missing account")
	}
	st := ctx.State
	amount := st.Withdrawable[caller]
	if amount == 0 {
		return 0, ErrNoBalance.Wrapf("%s", caller)
	}
	st.Withdrawable[caller] = 0

	if err := k.bank.SendFromEscrow(ctx, caller, amount); err != nil {
		k.logger.Error("withdraw transfer failed", "account", caller, "amount", amount, "err", err)
		return 0, ErrTransferFailed.Wrapf("send %d to %s: %v", amount, caller, err)
	}
	ctx.EmitEvent(EventTypeWithdrawn, map[string]string{
		AttrTo:     caller,
		AttrAmount: u64str(amount),
	})
	return amount, nil
}

// WithdrawFees drains the fee counter to recipient, falling back to the
// configured fee recipient and then the owner.
func (k *Keeper) WithdrawFees(ctx *Context, caller string, recipient string) (uint64, error) {
	release, err := k.enter()
	if err != nil {
		return 0, err
	}
	defer release()

	st := ctx.State
	if err := requireOwner(st, caller); err != nil {
		return 0, err
	}
	if recipient == "" {
		recipient = st.Params.FeeRecipient
	}
	if recipient == "" {
		recipient = st.Owner
	}
	amount := st.FeesCollected
	if amount == 0 {
		return 0, ErrNoBalance.Wrap("no fees collected")
	}
	st.FeesCollected = 0

	if err := k.bank.SendFromEscrow(ctx, recipient, amount); err != nil {
		k.logger.Error("fee transfer failed", "recipient", recipient, "amount", amount, "err", err)
		return 0, ErrTransferFailed.Wrapf("send %d to %s: %v", amount, recipient, err)
	}
	ctx.EmitEvent(EventTypeFeesWithdrawn, map[string]string{
		AttrTo:     recipient,
		AttrAmount: u64str(amount),
	})
	return amount, nil
}
