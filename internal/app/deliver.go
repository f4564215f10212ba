package app

import (
	"encoding/json"

	errorsmod "cosmossdk.io/errors"
	abci "github.com/cometbft/cometbft/abci/types"

	"onchainrps/internal/codec"
	"onchainrps/internal/state"
	"onchainrps/internal/wager"
)

// needsAuth reports whether a tx type must be signed by a registered
// account. Fulfillment and expiry are open to anyone.
func needsAuth(typ string) bool {
	switch typ {
	case codec.TypeBankMint, codec.TypeFulfillDecryption, codec.TypeExpireGame, codec.TypeBatchExpire:
		return false
	default:
		return true
	}
}

func errResult(err error) *abci.ExecTxResult {
	space, code, log := errorsmod.ABCIInfo(err, false)
	return &abci.ExecTxResult{Codespace: space, Code: code, Log: log}
}

func checkErr(err error) *abci.CheckTxResponse {
	space, code, log := errorsmod.ABCIInfo(err, false)
	return &abci.CheckTxResponse{Codespace: space, Code: code, Log: log}
}

// deliverTx executes one tx on a staged copy of state. The copy replaces the
// live state only if the tx succeeds, so rejected txs (including a failed
// withdrawal transfer) leave balances and games untouched.
func (a *ORPSApp) deliverTx(txBytes []byte, height int64, now int64) *abci.ExecTxResult {
	env, err := codec.DecodeTxEnvelope(txBytes)
	if err != nil {
		return errResult(wager.ErrInvalidRequest.Wrap(err.Error()))
	}
	if a.keeper == nil {
		return errResult(wager.ErrInvalidConfig.Wrap("chain not initialized"))
	}

	staged, err := a.st.Clone()
	if err != nil {
		return errResult(err)
	}
	ctx := wager.NewContext(staged, height, now)

	data, err := a.execute(ctx, env)
	if err != nil {
		a.logger.Debug("tx rejected", "type", env.Type, "height", height, "err", err)
		return errResult(err)
	}

	raw, err := resultData(data)
	if err != nil {
		a.logger.Error("encode tx result", "type", env.Type, "height", height, "err", err)
		return errResult(err)
	}
	a.st = staged
	return &abci.ExecTxResult{Code: 0, Data: raw, Events: ctx.Events()}
}

// resultData encodes the tx response payload. It runs before the staged
// state is adopted, so an unencodable result rejects the whole tx.
func resultData(data any) ([]byte, error) {
	if data == nil {
		return nil, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, errorsmod.Wrap(err, "encode tx result")
	}
	return raw, nil
}

func decodeValue(env codec.TxEnvelope, v any) error {
	if err := json.Unmarshal(env.Value, v); err != nil {
		return wager.ErrInvalidRequest.Wrapf("bad %s value: %v", env.Type, err)
	}
	return nil
}

// authorize checks signature and nonce for account and records the nonce.
// The nonce write lands in staged state, so it only sticks if the tx does.
func authorize(st *state.State, env codec.TxEnvelope, account string) error {
	if err := requireAccountAuth(st, env, account); err != nil {
		return wager.ErrUnauthorized.Wrap(err.Error())
	}
	n, err := requireFreshNonce(st, env)
	if err != nil {
		return wager.ErrUnauthorized.Wrap(err.Error())
	}
	st.NonceMax[env.Signer] = n
	return nil
}

// escrowFunds moves the envelope's attached funds from the signer to escrow.
func escrowFunds(st *state.State, env codec.TxEnvelope) error {
	if env.Funds == 0 {
		return nil
	}
	if err := st.Transfer(env.Signer, state.EscrowAccount, env.Funds); err != nil {
		return wager.ErrInsufficientFunds.Wrap(err.Error())
	}
	return nil
}

func (a *ORPSApp) execute(ctx *wager.Context, env codec.TxEnvelope) (any, error) {
	st := ctx.State
	k := a.keeper

	if env.Funds != 0 && env.Type != codec.TypeCreateGame && env.Type != codec.TypeJoinGame {
		return nil, wager.ErrInvalidRequest.Wrapf("%s does not accept funds", env.Type)
	}

	switch env.Type {
	case codec.TypeBankMint:
		var msg codec.BankMintTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		if !st.FaucetEnabled {
			return nil, wager.ErrUnauthorized.Wrap("faucet disabled")
		}
		if msg.To == "" || msg.Amount == 0 || msg.To == state.EscrowAccount {
			return nil, wager.ErrInvalidRequest.Wrap("missing or invalid to/amount")
		}
		if err := st.Credit(msg.To, msg.Amount); err != nil {
			return nil, wager.ErrInvalidRequest.Wrap(err.Error())
		}
		ctx.EmitEvent("BankMinted", map[string]string{
			wager.AttrTo:     msg.To,
			wager.AttrAmount: u64str(msg.Amount),
		})
		return nil, nil

	case codec.TypeAuthRegisterAccount:
		var msg codec.AuthRegisterAccountTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		if err := requireRegisterAccountAuth(st, env, msg); err != nil {
			return nil, wager.ErrUnauthorized.Wrap(err.Error())
		}
		n, err := requireFreshNonce(st, env)
		if err != nil {
			return nil, wager.ErrUnauthorized.Wrap(err.Error())
		}
		st.NonceMax[env.Signer] = n
		st.AccountKeys[msg.Account] = append([]byte(nil), msg.PubKey...)
		ctx.EmitEvent("AccountRegistered", map[string]string{"account": msg.Account})
		return nil, nil

	case codec.TypeCreateGame:
		var msg codec.CreateGameTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		if err := authorize(st, env, msg.Creator); err != nil {
			return nil, err
		}
		if err := escrowFunds(st, env); err != nil {
			return nil, err
		}
		id, err := k.CreateGame(ctx, msg.Creator, msg.Stake, env.Funds, msg.MoveTimeoutSecs, msg.Move, msg.Proof)
		if err != nil {
			return nil, err
		}
		return map[string]uint64{"gameId": id}, nil

	case codec.TypeJoinGame:
		var msg codec.JoinGameTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		if err := authorize(st, env, msg.Player); err != nil {
			return nil, err
		}
		if err := escrowFunds(st, env); err != nil {
			return nil, err
		}
		if err := k.JoinGame(ctx, msg.GameID, msg.Player, env.Funds, msg.Move, msg.Proof); err != nil {
			return nil, err
		}
		return map[string]string{"correlationId": st.Games[msg.GameID].CorrelationID}, nil

	case codec.TypeSubmitMove:
		var msg codec.SubmitMoveTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		if err := authorize(st, env, msg.Player); err != nil {
			return nil, err
		}
		return nil, k.SubmitMove(ctx, msg.GameID, msg.Player, msg.Move, msg.Proof)

	case codec.TypeFulfillDecryption:
		var msg codec.FulfillDecryptionTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		g, err := k.FulfillDecryption(ctx, msg.CorrelationID, msg.Outcome, msg.Proof)
		if err != nil {
			return nil, err
		}
		return map[string]any{"gameId": g.ID, "winner": g.Winner, "payout": g.Payout, "fee": g.Fee}, nil

	case codec.TypeExpireGame:
		var msg codec.ExpireGameTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		expired, err := k.CheckAndExpireGame(ctx, msg.GameID)
		if err != nil {
			return nil, err
		}
		return map[string]bool{"expired": expired}, nil

	case codec.TypeBatchExpire:
		var msg codec.BatchExpireTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		mode := wager.BatchBestEffort
		if msg.Atomic {
			mode = wager.BatchAtomic
		}
		results, err := k.BatchExpireGames(ctx, msg.GameIDs, mode)
		if err != nil {
			return nil, err
		}
		return batchResultView(results), nil

	case codec.TypeWithdraw:
		var msg codec.WithdrawTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		if err := authorize(st, env, msg.Account); err != nil {
			return nil, err
		}
		amt, err := k.Withdraw(ctx, msg.Account)
		if err != nil {
			return nil, err
		}
		return map[string]uint64{"amount": amt}, nil

	case codec.TypeWithdrawFees:
		var msg codec.WithdrawFeesTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		if err := authorize(st, env, msg.Owner); err != nil {
			return nil, err
		}
		amt, err := k.WithdrawFees(ctx, msg.Owner, msg.Recipient)
		if err != nil {
			return nil, err
		}
		return map[string]uint64{"amount": amt}, nil

	case codec.TypePause, codec.TypeUnpause, codec.TypeEmergencyWithdraw:
		var msg codec.AdminTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		if err := authorize(st, env, msg.Owner); err != nil {
			return nil, err
		}
		switch env.Type {
		case codec.TypePause:
			return nil, k.Pause(ctx, msg.Owner)
		case codec.TypeUnpause:
			return nil, k.Unpause(ctx, msg.Owner)
		default:
			amt, err := k.EmergencyWithdraw(ctx, msg.Owner)
			if err != nil {
				return nil, err
			}
			return map[string]uint64{"amount": amt}, nil
		}

	case codec.TypeSetFeeRate:
		var msg codec.SetFeeRateTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		if err := authorize(st, env, msg.Owner); err != nil {
			return nil, err
		}
		return nil, k.SetFeeRate(ctx, msg.Owner, msg.FeeBps)

	case codec.TypeSetFeeRecipient:
		var msg codec.SetFeeRecipientTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		if err := authorize(st, env, msg.Owner); err != nil {
			return nil, err
		}
		return nil, k.SetFeeRecipient(ctx, msg.Owner, msg.Recipient)

	case codec.TypeSetStakeBounds:
		var msg codec.SetStakeBoundsTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		if err := authorize(st, env, msg.Owner); err != nil {
			return nil, err
		}
		return nil, k.SetStakeBounds(ctx, msg.Owner, msg.MinStake, msg.MaxStake)

	case codec.TypeTransferOwnership:
		var msg codec.TransferOwnershipTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		if err := authorize(st, env, msg.Owner); err != nil {
			return nil, err
		}
		return nil, k.TransferOwnership(ctx, msg.Owner, msg.NewOwner)

	default:
		return nil, wager.ErrInvalidRequest.Wrapf("unknown tx type %q", env.Type)
	}
}

type batchEntry struct {
	GameID  uint64 `json:"gameId"`
	Expired bool   `json:"expired"`
	Error   string `json:"error,omitempty"`
}

func batchResultView(results []wager.ExpiryResult) []batchEntry {
	out := make([]batchEntry, 0, len(results))
	for _, r := range results {
		e := batchEntry{GameID: r.GameID, Expired: r.Expired}
		if r.Err != nil {
			e.Error = r.Err.Error()
		}
		out = append(out, e)
	}
	return out
}
