package state

import "fmt"

// Amounts are integer base units; one unit is 1e9 base units.
const (
	BaseUnitsPerUnit uint64 = 1_000_000_000

	// MaxFeeBps caps the settlement fee at 10%.
	MaxFeeBps uint32 = 1000
	BpsDenom  uint64 = 10_000

	// MaxTimeoutSecs bounds every configured duration so deadlines derived
	// from block time cannot overflow.
	MaxTimeoutSecs uint64 = 365 * 24 * 3600
)

type Params struct {
	MinStake uint64 `json:"minStake"`
	MaxStake uint64 `json:"maxStake"`

	FeeBps       uint32 `json:"feeBps"`
	FeeRecipient string `json:"feeRecipient,omitempty"`

	// OracleBudgetSecs bounds how long a decryption request may stay
	// outstanding before the game becomes expirable.
	OracleBudgetSecs uint64 `json:"oracleBudgetSecs"`

	MinMoveTimeoutSecs uint64 `json:"minMoveTimeoutSecs"`
	MaxMoveTimeoutSecs uint64 `json:"maxMoveTimeoutSecs"`
}

func DefaultParams() Params {
	return Params{
		MinStake:           BaseUnitsPerUnit / 1000,
		MaxStake:           10 * BaseUnitsPerUnit,
		FeeBps:             250,
		OracleBudgetSecs:   3600,
		MinMoveTimeoutSecs: 60,
		MaxMoveTimeoutSecs: 7 * 24 * 3600,
	}
}

func (p Params) Validate() error {
	if p.MinStake == 0 {
		return fmt.Errorf("min_stake must be > 0")
	}
	if p.MinStake > p.MaxStake {
		return fmt.Errorf("min_stake must be <= max_stake")
	}
	if p.FeeBps > MaxFeeBps {
		return fmt.Errorf("fee_bps must be <= %d", MaxFeeBps)
	}
	if p.OracleBudgetSecs == 0 {
		return fmt.Errorf("oracle_budget_secs must be > 0")
	}
	if p.OracleBudgetSecs > MaxTimeoutSecs {
		return fmt.Errorf("oracle_budget_secs must be <= %d", MaxTimeoutSecs)
	}
	if p.MinMoveTimeoutSecs == 0 {
		return fmt.Errorf("min_move_timeout_secs must be > 0")
	}
	if p.MinMoveTimeoutSecs > p.MaxMoveTimeoutSecs {
		return fmt.Errorf("min_move_timeout_secs must be <= max_move_timeout_secs")
	}
	if p.MaxMoveTimeoutSecs > MaxTimeoutSecs {
		return fmt.Errorf("max_move_timeout_secs must be <= %d", MaxTimeoutSecs)
	}
	return nil
}
