package relayer

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"testing"
	"time"

	abci "github.com/cometbft/cometbft/abci/types"
	cmtbytes "github.com/cometbft/cometbft/libs/bytes"
	ctypes "github.com/cometbft/cometbft/rpc/core/types"
	cmttypes "github.com/cometbft/cometbft/types"
	"github.com/stretchr/testify/require"

	"onchainrps/internal/app"
	"onchainrps/internal/codec"
	"onchainrps/internal/sealed"
	"onchainrps/internal/state"
	"onchainrps/internal/wager"
)

const stake uint64 = 10_000_000

// appClient drives an in-process app as if it were a single-validator node
// that commits one block per broadcast.
type appClient struct {
	a      *app.ORPSApp
	height int64
	now    int64
}

func (c *appClient) ABCIQuery(ctx context.Context, path string, _ cmtbytes.HexBytes) (*ctypes.ResultABCIQuery, error) {
	res, err := c.a.Query(ctx, &abci.QueryRequest{Path: path})
	if err != nil {
		return nil, err
	}
	return &ctypes.ResultABCIQuery{Response: *res}, nil
}

func (c *appClient) BroadcastTxCommit(ctx context.Context, tx cmttypes.Tx) (*ctypes.ResultBroadcastTxCommit, error) {
	chk, err := c.a.CheckTx(ctx, &abci.CheckTxRequest{Tx: tx})
	if err != nil {
		return nil, err
	}
	if chk.Code != 0 {
		return &ctypes.ResultBroadcastTxCommit{CheckTx: *chk}, nil
	}
	c.height++
	fin, err := c.a.FinalizeBlock(ctx, &abci.FinalizeBlockRequest{
		Height: c.height,
		Time:   time.Unix(c.now, 0),
		Txs:    [][]byte{tx},
	})
	if err != nil {
		return nil, err
	}
	if _, err := c.a.Commit(ctx, &abci.CommitRequest{}); err != nil {
		return nil, err
	}
	return &ctypes.ResultBroadcastTxCommit{CheckTx: *chk, TxResult: *fin.TxResults[0], Height: c.height}, nil
}

type testNet struct {
	client *appClient
	oracle *sealed.Oracle
	nonces map[string]uint64
}

func testKey(id string) (ed25519.PublicKey, ed25519.PrivateKey) {
	seed := sha256.Sum256([]byte("orps-test-key:" + id))
	priv := ed25519.NewKeyFromSeed(seed[:])
	return priv.Public().(ed25519.PublicKey), priv
}

func newTestNet(t *testing.T) *testNet {
	t.Helper()
	o, err := sealed.GenerateOracleKey(rand.Reader)
	require.NoError(t, err)
	a, err := app.New(app.Options{Store: state.NewMemStore()})
	require.NoError(t, err)

	g := app.DefaultGenesis("owner", o.PublicKey())
	g.Faucet = true
	g.Balances = map[string]uint64{"alice": 10 * stake, "bob": 10 * stake}
	g.AccountKeys = map[string][]byte{}
	for _, id := range []string{"alice", "bob"} {
		pub, _ := testKey(id)
		g.AccountKeys[id] = pub
	}
	raw, err := json.Marshal(g)
	require.NoError(t, err)
	now := int64(1_700_000_000)
	_, err = a.InitChain(context.Background(), &abci.InitChainRequest{Time: time.Unix(now, 0), AppStateBytes: raw})
	require.NoError(t, err)

	return &testNet{client: &appClient{a: a, now: now}, oracle: o, nonces: map[string]uint64{}}
}

func (n *testNet) send(t *testing.T, signer, typ string, msg any, funds uint64) *ctypes.ResultBroadcastTxCommit {
	t.Helper()
	env, err := codec.NewTx(typ, msg, funds)
	require.NoError(t, err)
	if signer != "" {
		_, priv := testKey(signer)
		n.nonces[signer]++
		codec.SignEnvelope(&env, signer, n.nonces[signer], priv)
	}
	tx, err := env.Encode()
	require.NoError(t, err)
	res, err := n.client.BroadcastTxCommit(context.Background(), tx)
	require.NoError(t, err)
	require.Equal(t, uint32(0), res.TxResult.Code, res.TxResult.Log)
	return res
}

func (n *testNet) move(t *testing.T, player string, c sealed.Choice) ([]byte, []byte) {
	t.Helper()
	h, p, err := sealed.EncryptMove(rand.Reader, n.oracle.PublicKey(), app.DefaultContract, player, c)
	require.NoError(t, err)
	return h, p
}

func (n *testNet) create(t *testing.T, player string, c sealed.Choice) uint64 {
	t.Helper()
	h, p := n.move(t, player, c)
	res := n.send(t, player, codec.TypeCreateGame, codec.CreateGameTx{Creator: player, Stake: stake, MoveTimeoutSecs: 600, Move: h, Proof: p}, stake)
	var out map[string]uint64
	require.NoError(t, json.Unmarshal(res.TxResult.Data, &out))
	return out["gameId"]
}

func (n *testNet) withdrawable(t *testing.T, addr string) uint64 {
	t.Helper()
	res, err := n.client.ABCIQuery(context.Background(), "/withdrawable/"+addr, nil)
	require.NoError(t, err)
	var out struct {
		Balance uint64 `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(res.Response.Value, &out))
	return out.Balance
}

func TestRelayer_FulfillsPendingRequest(t *testing.T) {
	n := newTestNet(t)
	id := n.create(t, "alice", sealed.Paper)
	h, p := n.move(t, "bob", sealed.Scissors)
	n.send(t, "bob", codec.TypeJoinGame, codec.JoinGameTx{Player: "bob", GameID: id, Move: h, Proof: p}, stake)

	r := New(n.client, n.oracle, Config{}, nil)
	require.NoError(t, r.CheckKey(context.Background()))

	stats, err := r.Tick(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.Fulfilled)
	require.Equal(t, 0, stats.Failed)

	// Scissors cuts paper.
	require.Equal(t, uint64(19_500_000), n.withdrawable(t, "bob"))
	require.Equal(t, uint64(0), n.withdrawable(t, "alice"))

	stats, err = r.Tick(context.Background())
	require.NoError(t, err)
	require.Equal(t, Stats{}, stats)
}

func TestRelayer_SweepsStalledGames(t *testing.T) {
	n := newTestNet(t)
	id := n.create(t, "alice", sealed.Rock)

	// Advance block time past the move deadline.
	n.client.now += 601
	n.send(t, "", codec.TypeBankMint, codec.BankMintTx{To: "carol", Amount: 1}, 0)

	r := New(n.client, n.oracle, Config{Sweep: true}, nil)
	stats, err := r.Tick(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.Expired)
	require.Equal(t, stake, n.withdrawable(t, "alice"))

	res, err := n.client.ABCIQuery(context.Background(), "/game/1", nil)
	require.NoError(t, err)
	var g state.Game
	require.NoError(t, json.Unmarshal(res.Response.Value, &g))
	require.Equal(t, id, g.ID)
	require.True(t, g.Expired)
	require.True(t, g.Refunded)
}

func TestRelayer_CheckKeyMismatch(t *testing.T) {
	n := newTestNet(t)
	other, err := sealed.GenerateOracleKey(rand.Reader)
	require.NoError(t, err)

	err = New(n.client, other, Config{}, nil).CheckKey(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, wager.ErrInvalidConfig))
}

// stubClient serves a fixed pending list and a fixed broadcast outcome.
type stubClient struct {
	pending   []pendingRequest
	result    abci.ExecTxResult
	netErr    error
	broadcast int
}

func (s *stubClient) ABCIQuery(_ context.Context, path string, _ cmtbytes.HexBytes) (*ctypes.ResultABCIQuery, error) {
	var v any = []uint64{}
	if path == "/requests/pending" {
		v = s.pending
	}
	b, _ := json.Marshal(v)
	return &ctypes.ResultABCIQuery{Response: abci.QueryResponse{Value: b}}, nil
}

func (s *stubClient) BroadcastTxCommit(context.Context, cmttypes.Tx) (*ctypes.ResultBroadcastTxCommit, error) {
	s.broadcast++
	if s.netErr != nil {
		return nil, s.netErr
	}
	return &ctypes.ResultBroadcastTxCommit{TxResult: s.result}, nil
}

func TestRelayer_RetryClassification(t *testing.T) {
	o, err := sealed.GenerateOracleKey(rand.Reader)
	require.NoError(t, err)
	h, _, err := sealed.EncryptMove(rand.Reader, o.PublicKey(), app.DefaultContract, "alice", sealed.Paper)
	require.NoError(t, err)
	req := pendingRequest{CorrelationID: "cid-1", GameID: 1, Handles: [][]byte{h}}

	cases := []struct {
		name        string
		result      abci.ExecTxResult
		netErr      error
		wantRetried bool
	}{
		{"transport error retries", abci.ExecTxResult{}, errors.New("connection refused"), true},
		{"already answered is dropped", abci.ExecTxResult{Codespace: wager.ModuleName, Code: wager.ErrAlreadyCompleted.ABCICode()}, nil, false},
		{"paused engine retries", abci.ExecTxResult{Codespace: wager.ModuleName, Code: wager.ErrPaused.ABCICode()}, nil, true},
		{"bad proof is dropped", abci.ExecTxResult{Codespace: wager.ModuleName, Code: wager.ErrInvalidProof.ABCICode()}, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := &stubClient{pending: []pendingRequest{req}, result: tc.result, netErr: tc.netErr}
			r := New(c, o, Config{}, nil)

			stats, err := r.Tick(context.Background())
			require.NoError(t, err)
			require.Equal(t, 1, stats.Failed)

			stats, err = r.Tick(context.Background())
			require.NoError(t, err)
			if tc.wantRetried {
				require.Equal(t, 2, c.broadcast)
				require.Equal(t, 1, stats.Failed)
			} else {
				require.Equal(t, 1, c.broadcast)
				require.Equal(t, 1, stats.Skipped)
			}
		})
	}
}
