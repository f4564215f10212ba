package app

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	errorsmod "cosmossdk.io/errors"
	abci "github.com/cometbft/cometbft/abci/types"

	"onchainrps/internal/state"
	"onchainrps/internal/wager"
)

// Query paths:
//   - /game/<id>
//   - /games/count
//   - /games/expirable
//   - /config
//   - /withdrawable/<addr>
//   - /account/<addr>
//   - /fees
//   - /requests/pending
//   - /request/<correlationId>
func (a *ORPSApp) Query(_ context.Context, req *abci.QueryRequest) (*abci.QueryResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	v, err := a.query(strings.TrimSpace(req.Path))
	if err != nil {
		space, code, log := errorsmod.ABCIInfo(err, false)
		return &abci.QueryResponse{Codespace: space, Code: code, Log: log, Height: a.st.Height}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return &abci.QueryResponse{Code: 1, Log: err.Error(), Height: a.st.Height}, nil
	}
	return &abci.QueryResponse{Code: 0, Value: b, Height: a.st.Height}, nil
}

type configView struct {
	wager.Config
	Contract     string `json:"contract"`
	OraclePubKey []byte `json:"oraclePubKey"`
}

type requestView struct {
	*state.DecryptionRequest
	Deadline int64 `json:"deadline"`
}

func (a *ORPSApp) query(path string) (any, error) {
	if a.keeper == nil {
		return nil, wager.ErrInvalidConfig.Wrap("chain not initialized")
	}
	// Read-only view of committed state at the last block time.
	ctx := wager.NewContext(a.st, a.st.Height, a.st.Time)
	k := a.keeper

	switch {
	case strings.HasPrefix(path, "/game/"):
		id, err := wager.ParseGameID(strings.TrimPrefix(path, "/game/"))
		if err != nil {
			return nil, err
		}
		return k.GetGame(ctx, id)
	case path == "/games/count":
		return map[string]uint64{"count": k.GameCount(ctx)}, nil
	case path == "/games/expirable":
		return k.ExpirableGames(ctx), nil
	case path == "/config":
		return configView{Config: k.Config(ctx), Contract: a.st.Contract, OraclePubKey: a.st.OraclePubKey}, nil
	case strings.HasPrefix(path, "/withdrawable/"):
		addr := strings.TrimPrefix(path, "/withdrawable/")
		return map[string]any{"addr": addr, "balance": k.Withdrawable(ctx, addr)}, nil
	case strings.HasPrefix(path, "/account/"):
		addr := strings.TrimPrefix(path, "/account/")
		return map[string]any{
			"addr":    addr,
			"balance": a.st.Balance(addr),
			"nonce":   a.st.NonceMax[addr],
			"pubKey":  a.st.AccountKeys[addr],
		}, nil
	case path == "/fees":
		return map[string]uint64{"feesCollected": k.FeesCollected(ctx)}, nil
	case path == "/requests/pending":
		reqs := k.PendingRequests(ctx)
		out := make([]requestView, 0, len(reqs))
		for _, r := range reqs {
			out = append(out, requestView{DecryptionRequest: r, Deadline: a.st.Games[r.GameID].DecryptionDeadline})
		}
		return out, nil
	case strings.HasPrefix(path, "/request/"):
		return k.GetRequest(ctx, strings.TrimPrefix(path, "/request/"))
	default:
		return nil, wager.ErrInvalidRequest.Wrapf("unknown query path %q", path)
	}
}

func u64str(x uint64) string { return strconv.FormatUint(x, 10) }
