package wager

import "onchainrps/internal/state"

// validateStake requires attached == stake and min <= stake <= max.
func validateStake(p state.Params, stake uint64, attached uint64) error {
	if attached != stake {
		return ErrInvalidStake.Wrapf("attached funds %d != declared stake %d", attached, stake)
	}
	if stake < p.MinStake || stake > p.MaxStake {
		return ErrInvalidStake.Wrapf("stake %d outside [%d, %d]", stake, p.MinStake, p.MaxStake)
	}
	return nil
}
