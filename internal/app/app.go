package app

import (
	"context"
	"fmt"
	"sync"

	"cosmossdk.io/log"
	abci "github.com/cometbft/cometbft/abci/types"

	"onchainrps/internal/codec"
	"onchainrps/internal/sealed"
	"onchainrps/internal/state"
	"onchainrps/internal/wager"
)

const (
	AppVersion uint64 = 1
)

type Options struct {
	// Store defaults to the goleveldb store under <Home>/data.
	Home  string
	Store *state.Store

	Logger log.Logger

	// BlockedAddrs can never receive funds from escrow.
	BlockedAddrs []string
}

type ORPSApp struct {
	*abci.BaseApplication

	store   *state.Store
	logger  log.Logger
	blocked []string

	mu       sync.Mutex
	st       *state.State
	keeper   *wager.Keeper
	lastHash []byte
}

func New(opts Options) (*ORPSApp, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	store := opts.Store
	if store == nil {
		s, err := state.OpenStore(opts.Home)
		if err != nil {
			return nil, err
		}
		store = s
	}
	st, err := store.Load()
	if err != nil {
		return nil, err
	}
	a := &ORPSApp{
		BaseApplication: abci.NewBaseApplication(),
		store:           store,
		logger:          logger.With("module", "app"),
		blocked:         opts.BlockedAddrs,
		st:              st,
		lastHash:        st.AppHash(),
	}
	if len(st.OraclePubKey) != 0 {
		if err := a.wireKeeper(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// wireKeeper builds the keeper from the oracle key and contract in state.
func (a *ORPSApp) wireKeeper() error {
	ev, err := sealed.NewEvaluator(a.st.OraclePubKey, a.st.Contract)
	if err != nil {
		return fmt.Errorf("evaluator: %w", err)
	}
	v, err := sealed.NewVerifier(a.st.OraclePubKey)
	if err != nil {
		return fmt.Errorf("verifier: %w", err)
	}
	a.keeper = wager.NewKeeper(ev, v, wager.NewStateBank(a.blocked...), a.logger)
	return nil
}

func (a *ORPSApp) Close() error { return a.store.Close() }

func (a *ORPSApp) Info(_ context.Context, _ *abci.InfoRequest) (*abci.InfoResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return &abci.InfoResponse{
		Data:             "ORPS",
		Version:          "v1",
		AppVersion:       AppVersion,
		LastBlockHeight:  a.st.Height,
		LastBlockAppHash: a.lastHash,
	}, nil
}

// CheckTx only validates structure. Execution against state happens in
// FinalizeBlock, so dependent txs from one sender can share a block.
func (a *ORPSApp) CheckTx(_ context.Context, req *abci.CheckTxRequest) (*abci.CheckTxResponse, error) {
	env, err := codec.DecodeTxEnvelope(req.Tx)
	if err != nil {
		return checkErr(wager.ErrInvalidRequest.Wrap(err.Error())), nil
	}
	if env.Funds != 0 && env.Type != codec.TypeCreateGame && env.Type != codec.TypeJoinGame {
		return checkErr(wager.ErrInvalidRequest.Wrapf("%s does not accept funds", env.Type)), nil
	}
	if needsAuth(env.Type) {
		if err := envelopeShape(env); err != nil {
			return checkErr(wager.ErrUnauthorized.Wrap(err.Error())), nil
		}
	}
	return &abci.CheckTxResponse{Code: 0}, nil
}

func (a *ORPSApp) InitChain(_ context.Context, req *abci.InitChainRequest) (*abci.InitChainResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	g, err := ParseGenesis(req.AppStateBytes)
	if err != nil {
		return nil, err
	}
	st := state.NewState()
	if err := g.apply(st); err != nil {
		return nil, err
	}
	st.Time = req.Time.Unix()
	a.st = st
	if err := a.wireKeeper(); err != nil {
		return nil, err
	}
	a.lastHash = a.st.AppHash()
	a.logger.Info("genesis applied", "owner", st.Owner, "contract", st.Contract, "faucet", st.FaucetEnabled)
	return &abci.InitChainResponse{AppHash: a.lastHash}, nil
}

func (a *ORPSApp) FinalizeBlock(_ context.Context, req *abci.FinalizeBlockRequest) (*abci.FinalizeBlockResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.st.Height = req.Height
	a.st.Time = req.Time.Unix()

	txResults := make([]*abci.ExecTxResult, 0, len(req.Txs))
	for _, txBytes := range req.Txs {
		txResults = append(txResults, a.deliverTx(txBytes, req.Height, a.st.Time))
	}

	a.lastHash = a.st.AppHash()

	return &abci.FinalizeBlockResponse{
		TxResults: txResults,
		AppHash:   a.lastHash,
	}, nil
}

func (a *ORPSApp) Commit(_ context.Context, _ *abci.CommitRequest) (*abci.CommitResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.store.Save(a.st); err != nil {
		// Returning the error halts the node rather than diverging silently.
		a.logger.Error("persist state", "height", a.st.Height, "err", err)
		return nil, err
	}
	return &abci.CommitResponse{}, nil
}
