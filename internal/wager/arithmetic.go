package wager

import (
	"fmt"
	"math"

	sdkmath "cosmossdk.io/math"

	"onchainrps/internal/state"
)

func addUint64Checked(a uint64, b uint64, field string) (uint64, error) {
	if a > ^uint64(0)-b {
		return 0, fmt.Errorf("%s overflows uint64", field)
	}
	return a + b, nil
}

func mulUint64Checked(a uint64, b uint64, field string) (uint64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > ^uint64(0)/b {
		return 0, fmt.Errorf("%s overflows uint64", field)
	}
	return a * b, nil
}

func addInt64AndU64Checked(a int64, b uint64, field string) (int64, error) {
	if b > uint64(math.MaxInt64) {
		return 0, fmt.Errorf("%s overflows int64", field)
	}
	if a > math.MaxInt64-int64(b) {
		return 0, fmt.Errorf("%s overflows int64", field)
	}
	return a + int64(b), nil
}

// computeFee returns floor(pot * bps / 10000).
func computeFee(pot uint64, bps uint32) uint64 {
	return sdkmath.NewIntFromUint64(pot).
		MulRaw(int64(bps)).
		QuoRaw(int64(state.BpsDenom)).
		Uint64()
}
