package wager

import (
	"fmt"

	"onchainrps/internal/state"
)

// StateBank pays out of the escrow account held in the replicated bank.
type StateBank struct {
	blocked map[string]bool
}

// NewStateBank returns a bank that refuses transfers to the escrow account
// itself and to any of blocked.
func NewStateBank(blocked ...string) *StateBank {
	b := &StateBank{blocked: map[string]bool{state.EscrowAccount: true}}
	for _, addr := range blocked {
		b.blocked[addr] = true
	}
	return b
}

func (b *StateBank) SendFromEscrow(ctx *Context, to string, amount uint64) error {
	if to == "" {
		return fmt.Errorf("missing recipient")
	}
	if b.blocked[to] {
		return fmt.Errorf("%s is not allowed to receive funds", to)
	}
	return ctx.State.Transfer(state.EscrowAccount, to, amount)
}

func (b *StateBank) EscrowBalance(ctx *Context) uint64 {
	return ctx.State.Balance(state.EscrowAccount)
}
