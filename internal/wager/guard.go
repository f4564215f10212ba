package wager

// enter acquires the keeper-wide reentrancy guard. Every state-changing
// operation holds it until it returns; a nested call, e.g. from a bank
// transfer hook, fails with ErrReentrantCall.
func (k *Keeper) enter() (release func(), err error) {
	if !k.busy.CompareAndSwap(false, true) {
		return nil, ErrReentrantCall.Wrap("another keeper operation is in progress")
	}
	return func() { k.busy.Store(false) }, nil
}
