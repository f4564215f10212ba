package app

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"testing"
	"time"

	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/stretchr/testify/require"

	"onchainrps/internal/codec"
	"onchainrps/internal/sealed"
	"onchainrps/internal/state"
	"onchainrps/internal/wager"
)

const (
	owner = "owner"
	alice = "alice"
	bob   = "bob"

	stake uint64 = 10_000_000
	t0    int64  = 1_700_000_000
)

type testChain struct {
	a      *ORPSApp
	oracle *sealed.Oracle
	store  *state.Store
	nonces map[string]uint64
	height int64
	now    int64
}

func testEd25519Key(id string) (ed25519.PublicKey, ed25519.PrivateKey) {
	seed := sha256.Sum256([]byte("orps-test-key:" + id))
	priv := ed25519.NewKeyFromSeed(seed[:])
	return priv.Public().(ed25519.PublicKey), priv
}

func mustOk(t *testing.T, res *abci.ExecTxResult) *abci.ExecTxResult {
	t.Helper()
	if res.Code != 0 {
		t.Fatalf("expected ok, got codespace=%s code=%d log=%q", res.Codespace, res.Code, res.Log)
	}
	return res
}

func requireCode(t *testing.T, res *abci.ExecTxResult, want interface {
	Codespace() string
	ABCICode() uint32
}) {
	t.Helper()
	require.Equal(t, want.Codespace(), res.Codespace, "log=%q", res.Log)
	require.Equal(t, want.ABCICode(), res.Code, "log=%q", res.Log)
}

func newTestChain(t *testing.T, opts Options, mutate func(g *GenesisState)) *testChain {
	t.Helper()
	o, err := sealed.GenerateOracleKey(rand.Reader)
	require.NoError(t, err)

	store := state.NewMemStore()
	opts.Store = store
	a, err := New(opts)
	require.NoError(t, err)

	g := DefaultGenesis(owner, o.PublicKey())
	g.Faucet = true
	g.Balances = map[string]uint64{alice: 100 * stake, bob: 100 * stake}
	if mutate != nil {
		mutate(&g)
	}
	raw, err := json.Marshal(g)
	require.NoError(t, err)
	_, err = a.InitChain(context.Background(), &abci.InitChainRequest{
		Time:          time.Unix(t0, 0),
		AppStateBytes: raw,
	})
	require.NoError(t, err)

	c := &testChain{a: a, oracle: o, store: store, nonces: map[string]uint64{}, height: 1, now: t0}
	for _, id := range []string{owner, alice, bob} {
		pub, _ := testEd25519Key(id)
		mustOk(t, c.signed(t, id, codec.TypeAuthRegisterAccount, codec.AuthRegisterAccountTx{Account: id, PubKey: pub}, 0))
	}
	return c
}

func (c *testChain) envelope(t *testing.T, signer string, typ string, msg any, funds uint64) codec.TxEnvelope {
	t.Helper()
	env, err := codec.NewTx(typ, msg, funds)
	require.NoError(t, err)
	if signer != "" {
		_, priv := testEd25519Key(signer)
		c.nonces[signer]++
		codec.SignEnvelope(&env, signer, c.nonces[signer], priv)
	}
	return env
}

func (c *testChain) deliver(t *testing.T, env codec.TxEnvelope) *abci.ExecTxResult {
	t.Helper()
	raw, err := env.Encode()
	require.NoError(t, err)
	return c.a.deliverTx(raw, c.height, c.now)
}

func (c *testChain) signed(t *testing.T, signer string, typ string, msg any, funds uint64) *abci.ExecTxResult {
	t.Helper()
	return c.deliver(t, c.envelope(t, signer, typ, msg, funds))
}

func (c *testChain) unsigned(t *testing.T, typ string, msg any) *abci.ExecTxResult {
	t.Helper()
	return c.deliver(t, c.envelope(t, "", typ, msg, 0))
}

func (c *testChain) query(t *testing.T, path string, out any) *abci.QueryResponse {
	t.Helper()
	res, err := c.a.Query(context.Background(), &abci.QueryRequest{Path: path})
	require.NoError(t, err)
	if out != nil && res.Code == 0 {
		require.NoError(t, json.Unmarshal(res.Value, out))
	}
	return res
}

func (c *testChain) createGame(t *testing.T, player string, choice sealed.Choice) uint64 {
	t.Helper()
	h, p, err := sealed.EncryptMove(rand.Reader, c.oracle.PublicKey(), DefaultContract, player, choice)
	require.NoError(t, err)
	res := mustOk(t, c.signed(t, player, codec.TypeCreateGame, codec.CreateGameTx{
		Creator: player, Stake: stake, MoveTimeoutSecs: 600, Move: h, Proof: p,
	}, stake))
	var out map[string]uint64
	require.NoError(t, json.Unmarshal(res.Data, &out))
	return out["gameId"]
}

func (c *testChain) joinGame(t *testing.T, id uint64, player string, choice sealed.Choice) *abci.ExecTxResult {
	t.Helper()
	h, p, err := sealed.EncryptMove(rand.Reader, c.oracle.PublicKey(), DefaultContract, player, choice)
	require.NoError(t, err)
	return c.signed(t, player, codec.TypeJoinGame, codec.JoinGameTx{Player: player, GameID: id, Move: h, Proof: p}, stake)
}

func withdrawable(t *testing.T, c *testChain, addr string) uint64 {
	t.Helper()
	var out struct {
		Balance uint64 `json:"balance"`
	}
	res := c.query(t, "/withdrawable/"+addr, &out)
	require.Equal(t, uint32(0), res.Code, res.Log)
	return out.Balance
}

func TestEndToEnd_OverTransactions(t *testing.T) {
	c := newTestChain(t, Options{}, nil)

	id := c.createGame(t, alice, sealed.Rock)
	require.Equal(t, uint64(1), id)
	require.Equal(t, 99*stake, c.a.st.Balance(alice))
	require.Equal(t, stake, c.a.st.Balance(state.EscrowAccount))

	res := mustOk(t, c.joinGame(t, id, bob, sealed.Scissors))
	require.NotNil(t, findEvent(res.Events, wager.EventTypeDecryptionRequested))

	// The oracle discovers the job through the pending-requests query.
	var pending []struct {
		CorrelationID string   `json:"correlationId"`
		GameID        uint64   `json:"gameId"`
		Handles       [][]byte `json:"handles"`
		Deadline      int64    `json:"deadline"`
	}
	c.query(t, "/requests/pending", &pending)
	require.Len(t, pending, 1)
	require.Equal(t, id, pending[0].GameID)
	require.Equal(t, t0+3600, pending[0].Deadline)

	// A pending game reports no result code at all.
	var view map[string]json.RawMessage
	c.query(t, "/game/1", &view)
	require.NotContains(t, view, "resultCode")

	code, proof, err := c.oracle.Decrypt(rand.Reader, pending[0].CorrelationID, pending[0].Handles)
	require.NoError(t, err)
	res = mustOk(t, c.unsigned(t, codec.TypeFulfillDecryption, codec.FulfillDecryptionTx{
		CorrelationID: pending[0].CorrelationID, Outcome: code, Proof: proof,
	}))
	require.Equal(t, alice, attr(findEvent(res.Events, wager.EventTypeGameResolved), wager.AttrWinner))
	view = nil
	c.query(t, "/game/1", &view)
	require.JSONEq(t, "0", string(view["resultCode"]))

	require.Equal(t, uint64(19_500_000), withdrawable(t, c, alice))
	require.Equal(t, uint64(0), withdrawable(t, c, bob))
	var fees map[string]uint64
	c.query(t, "/fees", &fees)
	require.Equal(t, uint64(500_000), fees["feesCollected"])

	// Replaying the same answer is rejected.
	res = c.unsigned(t, codec.TypeFulfillDecryption, codec.FulfillDecryptionTx{
		CorrelationID: pending[0].CorrelationID, Outcome: code, Proof: proof,
	})
	requireCode(t, res, wager.ErrUnknownRequest)

	mustOk(t, c.signed(t, alice, codec.TypeWithdraw, codec.WithdrawTx{Account: alice}, 0))
	require.Equal(t, 99*stake+19_500_000, c.a.st.Balance(alice))
	requireCode(t, c.signed(t, alice, codec.TypeWithdraw, codec.WithdrawTx{Account: alice}, 0), wager.ErrNoBalance)

	mustOk(t, c.signed(t, owner, codec.TypeWithdrawFees, codec.WithdrawFeesTx{Owner: owner}, 0))
	require.Equal(t, uint64(0), c.a.st.Balance(state.EscrowAccount))
}

func TestInitChain_RejectsBadGenesis(t *testing.T) {
	a, err := New(Options{Store: state.NewMemStore()})
	require.NoError(t, err)

	_, err = a.InitChain(context.Background(), &abci.InitChainRequest{})
	require.Error(t, err)

	raw, _ := json.Marshal(GenesisState{Owner: owner, OraclePubKey: "0x1234"})
	_, err = a.InitChain(context.Background(), &abci.InitChainRequest{AppStateBytes: raw})
	require.Error(t, err)

	env, err := codec.NewTx(codec.TypeExpireGame, codec.ExpireGameTx{GameID: 1}, 0)
	require.NoError(t, err)
	tx, err := env.Encode()
	require.NoError(t, err)
	requireCode(t, a.deliverTx(tx, 1, t0), wager.ErrInvalidConfig)
}

func TestConfigQuery(t *testing.T) {
	c := newTestChain(t, Options{}, nil)
	var cfg struct {
		Owner     string       `json:"owner"`
		Paused    bool         `json:"paused"`
		GameCount uint64       `json:"gameCount"`
		Params    state.Params `json:"params"`
		Contract  string       `json:"contract"`
	}
	res := c.query(t, "/config", &cfg)
	require.Equal(t, uint32(0), res.Code)
	require.Equal(t, owner, cfg.Owner)
	require.Equal(t, DefaultContract, cfg.Contract)
	require.Equal(t, state.DefaultParams(), cfg.Params)
}

func TestQuery_GameIDs(t *testing.T) {
	c := newTestChain(t, Options{}, nil)
	c.createGame(t, alice, sealed.Paper)

	var g state.Game
	res := c.query(t, "/game/1", &g)
	require.Equal(t, uint32(0), res.Code)
	require.Equal(t, alice, g.FirstMover)

	for _, path := range []string{"/game/-1", "/game/0", "/game/2", "/game/-99999999999999999999"} {
		res := c.query(t, path, nil)
		require.Equal(t, wager.ErrUnknownGame.ABCICode(), res.Code, path)
		require.Equal(t, wager.ModuleName, res.Codespace)
	}
	require.Equal(t, wager.ErrInvalidRequest.ABCICode(), c.query(t, "/game/x", nil).Code)
	require.Equal(t, wager.ErrInvalidRequest.ABCICode(), c.query(t, "/nope", nil).Code)
	require.Equal(t, wager.ErrUnknownRequest.ABCICode(), c.query(t, "/request/missing", nil).Code)

	var count map[string]uint64
	c.query(t, "/games/count", &count)
	require.Equal(t, uint64(1), count["count"])
}

func TestAuth_Rejections(t *testing.T) {
	c := newTestChain(t, Options{}, nil)
	h, p, err := sealed.EncryptMove(rand.Reader, c.oracle.PublicKey(), DefaultContract, alice, sealed.Rock)
	require.NoError(t, err)
	msg := codec.CreateGameTx{Creator: alice, Stake: stake, MoveTimeoutSecs: 600, Move: h, Proof: p}

	// Unsigned.
	env, err := codec.NewTx(codec.TypeCreateGame, msg, stake)
	require.NoError(t, err)
	requireCode(t, c.deliver(t, env), wager.ErrUnauthorized)

	// Signed by someone else.
	requireCode(t, c.signed(t, bob, codec.TypeCreateGame, msg, stake), wager.ErrUnauthorized)

	// Stale nonce.
	_, priv := testEd25519Key(alice)
	env, err = codec.NewTx(codec.TypeCreateGame, msg, stake)
	require.NoError(t, err)
	codec.SignEnvelope(&env, alice, c.nonces[alice], priv)
	requireCode(t, c.deliver(t, env), wager.ErrUnauthorized)

	// Tampered funds after signing.
	env = c.envelope(t, alice, codec.TypeCreateGame, msg, stake)
	env.Funds = stake + 1
	requireCode(t, c.deliver(t, env), wager.ErrUnauthorized)

	// Funds on a type that does not take them.
	requireCode(t, c.signed(t, alice, codec.TypeWithdraw, codec.WithdrawTx{Account: alice}, 1), wager.ErrInvalidRequest)

	// Insufficient bank balance.
	requireCode(t, c.signed(t, alice, codec.TypeCreateGame, codec.CreateGameTx{
		Creator: alice, Stake: 200 * stake, MoveTimeoutSecs: 600, Move: h, Proof: p,
	}, 200*stake), wager.ErrInsufficientFunds)

	// Admin ops need the owner's signature.
	requireCode(t, c.signed(t, alice, codec.TypePause, codec.AdminTx{Owner: owner}, 0), wager.ErrUnauthorized)
	requireCode(t, c.signed(t, alice, codec.TypePause, codec.AdminTx{Owner: alice}, 0), wager.ErrUnauthorized)
	mustOk(t, c.signed(t, owner, codec.TypePause, codec.AdminTx{Owner: owner}, 0))
}

func TestFaucet(t *testing.T) {
	c := newTestChain(t, Options{}, nil)
	mustOk(t, c.unsigned(t, codec.TypeBankMint, codec.BankMintTx{To: "dave", Amount: 5}))
	require.Equal(t, uint64(5), c.a.st.Balance("dave"))
	requireCode(t, c.unsigned(t, codec.TypeBankMint, codec.BankMintTx{To: state.EscrowAccount, Amount: 5}), wager.ErrInvalidRequest)

	off := newTestChain(t, Options{}, func(g *GenesisState) { g.Faucet = false })
	requireCode(t, off.unsigned(t, codec.TypeBankMint, codec.BankMintTx{To: "dave", Amount: 5}), wager.ErrUnauthorized)
}

func TestCheckTx(t *testing.T) {
	c := newTestChain(t, Options{}, nil)
	check := func(env codec.TxEnvelope) *abci.CheckTxResponse {
		raw, err := env.Encode()
		require.NoError(t, err)
		res, err := c.a.CheckTx(context.Background(), &abci.CheckTxRequest{Tx: raw})
		require.NoError(t, err)
		return res
	}

	res, err := c.a.CheckTx(context.Background(), &abci.CheckTxRequest{Tx: []byte("{")})
	require.NoError(t, err)
	require.Equal(t, wager.ErrInvalidRequest.ABCICode(), res.Code)

	env, _ := codec.NewTx(codec.TypeExpireGame, codec.ExpireGameTx{GameID: 1}, 0)
	require.Equal(t, uint32(0), check(env).Code)

	env, _ = codec.NewTx(codec.TypeExpireGame, codec.ExpireGameTx{GameID: 1}, 5)
	require.Equal(t, wager.ErrInvalidRequest.ABCICode(), check(env).Code)

	env, _ = codec.NewTx(codec.TypeWithdraw, codec.WithdrawTx{Account: alice}, 0)
	require.Equal(t, wager.ErrUnauthorized.ABCICode(), check(env).Code)

	require.Equal(t, uint32(0), check(c.envelope(t, alice, codec.TypeWithdraw, codec.WithdrawTx{Account: alice}, 0)).Code)
}

func TestFinalizeCommit_PersistsAcrossRestart(t *testing.T) {
	c := newTestChain(t, Options{}, nil)

	h, p, err := sealed.EncryptMove(rand.Reader, c.oracle.PublicKey(), DefaultContract, alice, sealed.Rock)
	require.NoError(t, err)
	env := c.envelope(t, alice, codec.TypeCreateGame, codec.CreateGameTx{
		Creator: alice, Stake: stake, MoveTimeoutSecs: 600, Move: h, Proof: p,
	}, stake)
	raw, err := env.Encode()
	require.NoError(t, err)

	fin, err := c.a.FinalizeBlock(context.Background(), &abci.FinalizeBlockRequest{
		Height: 5,
		Time:   time.Unix(t0+10, 0),
		Txs:    [][]byte{raw, []byte("junk")},
	})
	require.NoError(t, err)
	require.Len(t, fin.TxResults, 2)
	mustOk(t, fin.TxResults[0])
	require.NotEqual(t, uint32(0), fin.TxResults[1].Code)
	_, err = c.a.Commit(context.Background(), &abci.CommitRequest{})
	require.NoError(t, err)

	g := c.a.st.Games[1]
	require.Equal(t, t0+10, g.CreatedAt, "block time drives the clock")

	restarted, err := New(Options{Store: c.store})
	require.NoError(t, err)
	info, err := restarted.Info(context.Background(), &abci.InfoRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(5), info.LastBlockHeight)
	require.Equal(t, fin.AppHash, info.LastBlockAppHash)
	require.NotNil(t, restarted.keeper, "keeper is rewired from persisted state")
}

func findEvent(events []abci.Event, typ string) *abci.Event {
	for i := range events {
		if events[i].Type == typ {
			return &events[i]
		}
	}
	return nil
}

func attr(ev *abci.Event, key string) string {
	if ev == nil {
		return ""
	}
	for _, a := range ev.Attributes {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}
