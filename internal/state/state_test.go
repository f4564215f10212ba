package state

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleState() *State {
	s := NewState()
	s.Height = 7
	s.Time = 1_700_000_000
	s.Owner = "owner"
	s.Accounts["bob"] = 2
	s.Accounts["alice"] = 1
	s.Withdrawable["alice"] = 0
	s.Withdrawable["bob"] = 19_500_000
	s.AccountKeys["alice"] = bytes.Repeat([]byte{1}, 32)
	s.NonceMax["alice"] = 3
	s.FeesCollected = 500_000
	s.NextGameID = 3
	s.NextRequestSeq = 1
	s.Games[1] = &Game{ID: 1, FirstMover: "alice", Stake: 10, Pot: 10, Moves: [2]MoveSlot{{Handle: []byte{9}, Submitted: true}}}
	s.Games[2] = &Game{ID: 2, FirstMover: "bob", SecondMover: "alice", Stake: 10, Pot: 20, Requested: true, CorrelationID: "cid-1"}
	s.Requests["cid-1"] = &DecryptionRequest{CorrelationID: "cid-1", GameID: 2, Handles: [][]byte{{1, 2}}, RequestedAt: 5}
	return s
}

func TestAppHash_StableAcrossMapOrder(t *testing.T) {
	s1 := NewState()
	s1.Height = 7
	s1.Accounts["bob"] = 2
	s1.Accounts["alice"] = 1
	s1.NextGameID = 42

	s2 := NewState()
	s2.Height = 7
	s2.Accounts["alice"] = 1
	s2.Accounts["bob"] = 2
	s2.NextGameID = 42

	h1 := s1.AppHash()
	h2 := s2.AppHash()
	if !bytes.Equal(h1, h2) {
		t.Fatalf("expected stable app hash; h1=%x h2=%x", h1, h2)
	}

	s2.Accounts["alice"] = 9
	if bytes.Equal(h1, s2.AppHash()) {
		t.Fatalf("expected hash to change after state mutation")
	}
}

func TestClone_IsDeep(t *testing.T) {
	s := sampleState()
	c, err := s.Clone()
	require.NoError(t, err)
	require.Equal(t, s.AppHash(), c.AppHash())

	c.Games[1].Pot = 99
	c.Withdrawable["bob"] = 0
	c.Requests["cid-1"].Consumed = true
	require.Equal(t, uint64(10), s.Games[1].Pot)
	require.Equal(t, uint64(19_500_000), s.Withdrawable["bob"])
	require.False(t, s.Requests["cid-1"].Consumed)

	var nilState *State
	_, err = nilState.Clone()
	require.Error(t, err)
}

func TestStore_RoundTripPreservesAppHash(t *testing.T) {
	store := NewMemStore()
	defer store.Close()

	empty, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, uint64(1), empty.NextGameID)
	require.Equal(t, DefaultParams(), empty.Params)

	s := sampleState()
	require.NoError(t, store.Save(s))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, s.AppHash(), loaded.AppHash())
	require.Equal(t, "alice", loaded.Games[2].SecondMover)
	require.Equal(t, uint64(0), loaded.Withdrawable["alice"])
	_, ok := loaded.Withdrawable["alice"]
	require.True(t, ok, "zero ledger entries persist")

	// Later saves upsert on top of earlier ones.
	loaded.Games[1].Expired = true
	loaded.Height++
	require.NoError(t, store.Save(loaded))
	again, err := store.Load()
	require.NoError(t, err)
	require.True(t, again.Games[1].Expired)
	require.Equal(t, loaded.AppHash(), again.AppHash())
}

func TestPrefixEnd(t *testing.T) {
	require.Equal(t, []byte{0x03}, prefixEnd([]byte{0x02}))
	require.Equal(t, []byte{0x02}, prefixEnd([]byte{0x01, 0xff}))
	require.Nil(t, prefixEnd([]byte{0xff, 0xff}))
}

func TestBank_CreditDebitTransfer(t *testing.T) {
	s := NewState()
	require.NoError(t, s.Credit("alice", 10))
	require.Error(t, s.Debit("alice", 11))
	require.NoError(t, s.Transfer("alice", EscrowAccount, 4))
	require.Equal(t, uint64(6), s.Balance("alice"))
	require.Equal(t, uint64(4), s.Balance(EscrowAccount))

	s.Accounts["bob"] = ^uint64(0)
	require.Error(t, s.Transfer("alice", "bob", 1))
	require.Equal(t, uint64(6), s.Balance("alice"), "failed transfer leaves sender untouched")
}

func TestParams_Validate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())

	cases := []struct {
		name string
		mut  func(p *Params)
	}{
		{"zero min stake", func(p *Params) { p.MinStake = 0 }},
		{"min above max", func(p *Params) { p.MinStake = p.MaxStake + 1 }},
		{"fee above cap", func(p *Params) { p.FeeBps = MaxFeeBps + 1 }},
		{"zero oracle budget", func(p *Params) { p.OracleBudgetSecs = 0 }},
		{"oracle budget above cap", func(p *Params) { p.OracleBudgetSecs = MaxTimeoutSecs + 1 }},
		{"move timeout above cap", func(p *Params) { p.MaxMoveTimeoutSecs = MaxTimeoutSecs + 1 }},
		{"zero move timeout", func(p *Params) { p.MinMoveTimeoutSecs = 0 }},
		{"inverted move timeouts", func(p *Params) { p.MaxMoveTimeoutSecs = p.MinMoveTimeoutSecs - 1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultParams()
			tc.mut(&p)
			require.Error(t, p.Validate())
		})
	}

	p := DefaultParams()
	p.FeeBps = MaxFeeBps
	require.NoError(t, p.Validate(), "cap is inclusive")

	p = DefaultParams()
	p.OracleBudgetSecs = MaxTimeoutSecs
	require.NoError(t, p.Validate())
}

func TestGame_Slots(t *testing.T) {
	g := &Game{FirstMover: "alice"}
	require.Equal(t, 0, g.Slot("alice"))
	require.Equal(t, -1, g.Slot("bob"))
	require.Equal(t, -1, g.Slot(""))
	require.Equal(t, []string{"alice"}, g.Participants())
	require.False(t, g.BothSubmitted())

	g.SecondMover = "bob"
	g.Moves[0].Submitted = true
	g.Moves[1].Submitted = true
	require.Equal(t, 1, g.Slot("bob"))
	require.True(t, g.BothSubmitted())
}
