// Package relayer runs the decryption oracle against a live chain. Each pass
// answers pending decryption requests and sweeps stalled games into expiry.
package relayer

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"

	"onchainrps/internal/codec"
	"onchainrps/internal/sealed"
	"onchainrps/internal/wager"
)

const (
	DefaultPollInterval = 2 * time.Second
)

type Config struct {
	PollInterval time.Duration
	// Sweep enables batch expiry of stalled games.
	Sweep bool
	// AtomicSweep submits sweeps in all-or-nothing mode.
	AtomicSweep bool
}

type Stats struct {
	Fulfilled int
	Expired   int
	Skipped   int
	Failed    int
}

type Relayer struct {
	client ChainClient
	oracle *sealed.Oracle
	cfg    Config
	logger log.Logger
	rnd    io.Reader

	// dead holds correlation ids the chain rejected for good.
	dead map[string]struct{}
}

type pendingRequest struct {
	CorrelationID string   `json:"correlationId"`
	GameID        uint64   `json:"gameId"`
	Handles       [][]byte `json:"handles"`
	Deadline      int64    `json:"deadline"`
}

type chainConfig struct {
	Owner        string `json:"owner"`
	Paused       bool   `json:"paused"`
	Contract     string `json:"contract"`
	OraclePubKey []byte `json:"oraclePubKey"`
}

func New(client ChainClient, oracle *sealed.Oracle, cfg Config, logger log.Logger) *Relayer {
	if client == nil || oracle == nil {
		panic("relayer: client and oracle are required")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	return &Relayer{
		client: client,
		oracle: oracle,
		cfg:    cfg,
		logger: logger.With("module", "relayer"),
		rnd:    rand.Reader,
		dead:   make(map[string]struct{}),
	}
}

// CheckKey fails when the chain expects a different oracle key.
func (r *Relayer) CheckKey(ctx context.Context) error {
	var cfg chainConfig
	if err := r.query(ctx, "/config", &cfg); err != nil {
		return err
	}
	if !bytes.Equal(cfg.OraclePubKey, r.oracle.PublicKey()) {
		return wager.ErrInvalidConfig.Wrapf("oracle key mismatch: chain has %x, relayer holds %x", cfg.OraclePubKey, r.oracle.PublicKey())
	}
	r.logger.Info("oracle key matches chain", "contract", cfg.Contract, "paused", cfg.Paused)
	return nil
}

// Run polls until ctx is cancelled. Pass errors are logged, not returned.
func (r *Relayer) Run(ctx context.Context) error {
	if err := r.CheckKey(ctx); err != nil {
		return err
	}
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()
	for {
		if _, err := r.Tick(ctx); err != nil {
			r.logger.Error("relayer pass failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick runs a single pass.
func (r *Relayer) Tick(ctx context.Context) (Stats, error) {
	var stats Stats

	var pending []pendingRequest
	if err := r.query(ctx, "/requests/pending", &pending); err != nil {
		return stats, fmt.Errorf("list pending requests: %w", err)
	}
	live := make(map[string]struct{}, len(pending))
	for _, req := range pending {
		live[req.CorrelationID] = struct{}{}
		if _, ok := r.dead[req.CorrelationID]; ok {
			stats.Skipped++
			continue
		}
		if err := r.fulfill(ctx, req); err != nil {
			stats.Failed++
			r.recordFailure(req, err)
			continue
		}
		stats.Fulfilled++
	}
	for cid := range r.dead {
		if _, ok := live[cid]; !ok {
			delete(r.dead, cid)
		}
	}

	if r.cfg.Sweep {
		n, err := r.sweep(ctx)
		stats.Expired += n
		if err != nil {
			return stats, fmt.Errorf("sweep: %w", err)
		}
	}
	return stats, nil
}

func (r *Relayer) fulfill(ctx context.Context, req pendingRequest) error {
	code, proof, err := r.oracle.Decrypt(r.rnd, req.CorrelationID, req.Handles)
	if err != nil {
		return wager.ErrInvalidProof.Wrapf("decrypt: %v", err)
	}
	if _, err := r.broadcast(ctx, codec.TypeFulfillDecryption, codec.FulfillDecryptionTx{
		CorrelationID: req.CorrelationID,
		Outcome:       code,
		Proof:         proof,
	}); err != nil {
		return err
	}
	r.logger.Info("decryption fulfilled", "gameId", req.GameID, "correlationId", req.CorrelationID, "outcome", sealed.OutcomeName(code))
	return nil
}

// recordFailure decides whether a failed request is worth retrying.
// Ordering failures mean someone else already answered or the game expired.
func (r *Relayer) recordFailure(req pendingRequest, err error) {
	class := wager.ClassOf(err)
	switch {
	case class == wager.ClassInternal, errors.Is(err, wager.ErrPaused):
		r.logger.Warn("fulfill failed, will retry", "gameId", req.GameID, "correlationId", req.CorrelationID, "err", err)
		return
	case class == wager.ClassProtocol:
		r.logger.Info("request no longer pending", "gameId", req.GameID, "correlationId", req.CorrelationID, "err", err)
	default:
		r.logger.Error("fulfill rejected", "gameId", req.GameID, "correlationId", req.CorrelationID, "class", class.String(), "err", err)
	}
	r.dead[req.CorrelationID] = struct{}{}
}

func (r *Relayer) sweep(ctx context.Context) (int, error) {
	var ids []uint64
	if err := r.query(ctx, "/games/expirable", &ids); err != nil {
		return 0, err
	}
	expired := 0
	for len(ids) > 0 {
		n := min(len(ids), wager.MaxBatchExpire)
		chunk := ids[:n]
		ids = ids[n:]

		data, err := r.broadcast(ctx, codec.TypeBatchExpire, codec.BatchExpireTx{GameIDs: chunk, Atomic: r.cfg.AtomicSweep})
		if err != nil {
			return expired, err
		}
		var entries []struct {
			GameID  uint64 `json:"gameId"`
			Expired bool   `json:"expired"`
			Error   string `json:"error,omitempty"`
		}
		if err := json.Unmarshal(data, &entries); err != nil {
			return expired, fmt.Errorf("decode batch result: %w", err)
		}
		for _, e := range entries {
			switch {
			case e.Expired:
				expired++
				r.logger.Info("game expired", "gameId", e.GameID)
			case e.Error != "":
				r.logger.Debug("game not expired", "gameId", e.GameID, "err", e.Error)
			}
		}
	}
	return expired, nil
}

func (r *Relayer) query(ctx context.Context, path string, out any) error {
	res, err := r.client.ABCIQuery(ctx, path, nil)
	if err != nil {
		return err
	}
	if res.Response.Code != 0 {
		return errorsmod.ABCIError(res.Response.Codespace, res.Response.Code, res.Response.Log)
	}
	return json.Unmarshal(res.Response.Value, out)
}

// broadcast submits an unsigned tx and waits for it to be committed. Both
// relayer tx types are permissionless.
func (r *Relayer) broadcast(ctx context.Context, typ string, msg any) ([]byte, error) {
	env, err := codec.NewTx(typ, msg, 0)
	if err != nil {
		return nil, err
	}
	tx, err := env.Encode()
	if err != nil {
		return nil, err
	}
	res, err := r.client.BroadcastTxCommit(ctx, tx)
	if err != nil {
		return nil, err
	}
	if res.CheckTx.Code != 0 {
		return nil, errorsmod.ABCIError(res.CheckTx.Codespace, res.CheckTx.Code, res.CheckTx.Log)
	}
	if res.TxResult.Code != 0 {
		return nil, errorsmod.ABCIError(res.TxResult.Codespace, res.TxResult.Code, res.TxResult.Log)
	}
	return res.TxResult.Data, nil
}
