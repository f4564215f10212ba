package sealed

import "fmt"

// Outcome codes as delivered by the oracle.
const (
	OutcomeFirstWins  uint64 = 0
	OutcomeSecondWins uint64 = 1
	OutcomeDraw       uint64 = 2
)

// outcomeClasses lists, per outcome code, the plaintext differences a-b that
// belong to it.
var outcomeClasses = map[uint64][]int64{
	OutcomeFirstWins:  {1, -2},
	OutcomeSecondWins: {-1, 2},
	OutcomeDraw:       {0},
}

func OutcomeName(code uint64) string {
	switch code {
	case OutcomeFirstWins:
		return "first-wins"
	case OutcomeSecondWins:
		return "second-wins"
	case OutcomeDraw:
		return "draw"
	default:
		return fmt.Sprintf("unknown(%d)", code)
	}
}

// classify maps a plaintext difference to its outcome code and branch index.
func classify(d int64) (code uint64, branch int, ok bool) {
	for c, members := range outcomeClasses {
		for i, m := range members {
			if m == d {
				return c, i, true
			}
		}
	}
	return 0, 0, false
}

// Play computes the outcome of two clear choices. Used by tooling and tests;
// the engine never sees clear choices.
func Play(first, second Choice) uint64 {
	code, _, _ := classify(int64(first) - int64(second))
	return code
}
