package wager

import (
	"onchainrps/internal/sealed"
	"onchainrps/internal/state"
)

// settle credits the withdrawable ledger for a decrypted outcome. A draw
// refunds each stake with no fee; otherwise the winner receives pot - fee.
func (k *Keeper) settle(ctx *Context, g *state.Game, outcome uint64) error {
	st := ctx.State

	var winner string
	switch outcome {
	case sealed.OutcomeFirstWins:
		winner = g.FirstMover
	case sealed.OutcomeSecondWins:
		winner = g.SecondMover
	case sealed.OutcomeDraw:
	default:
		return ErrInvalidOutcome.Wrapf("code %d", outcome)
	}

	g.Resolved = true
	g.ResultCode = &outcome
	g.Winner = winner
	g.EndedAt = ctx.Now

	if winner == "" {
		g.Fee = 0
		g.Payout = g.Pot
		for _, p := range g.Participants() {
			if err := creditWithdrawable(st, p, g.Stake); err != nil {
				return err
			}
			ctx.EmitEvent(EventTypeRefundCredited, map[string]string{
				AttrGameID: u64str(g.ID),
				AttrTo:     p,
				AttrAmount: u64str(g.Stake),
			})
		}
	} else {
		fee := computeFee(g.Pot, st.Params.FeeBps)
		payout := g.Pot - fee
		fees, err := addUint64Checked(st.FeesCollected, fee, "fees collected")
		if err != nil {
			return ErrInvalidRequest.Wrap(err.Error())
		}
		if err := creditWithdrawable(st, winner, payout); err != nil {
			return err
		}
		st.FeesCollected = fees
		g.Fee = fee
		g.Payout = payout
		ctx.EmitEvent(EventTypePayoutCredited, map[string]string{
			AttrGameID: u64str(g.ID),
			AttrTo:     winner,
			AttrAmount: u64str(payout),
		})
	}

	ctx.EmitEvent(EventTypeGameResolved, map[string]string{
		AttrGameID:  u64str(g.ID),
		AttrOutcome: sealed.OutcomeName(outcome),
		AttrWinner:  winner,
		AttrFee:     u64str(g.Fee),
		AttrPayout:  u64str(g.Payout),
	})
	k.logger.Info("game resolved", "gameId", g.ID, "outcome", sealed.OutcomeName(outcome), "winner", winner, "fee", g.Fee)
	return nil
}
