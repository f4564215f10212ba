package state

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
)

// EscrowAccount is the bank account holding every stake in flight.
const EscrowAccount = "orps/escrow"

type State struct {
	Height int64 `json:"height"`
	Time   int64 `json:"time"` // unix seconds of the last finalized block

	NextGameID     uint64 `json:"nextGameId"`
	NextRequestSeq uint64 `json:"nextRequestSeq"`

	Params        Params `json:"params"`
	Owner         string `json:"owner"`
	Paused        bool   `json:"paused"`
	FeesCollected uint64 `json:"feesCollected"`
	FaucetEnabled bool   `json:"faucetEnabled,omitempty"`
	OraclePubKey  []byte `json:"oraclePubKey,omitempty"`
	// Contract is the engine address every move proof is bound to.
	Contract string `json:"contract,omitempty"`

	Games        map[uint64]*Game              `json:"games"`
	Requests     map[string]*DecryptionRequest `json:"requests"`
	Withdrawable map[string]uint64             `json:"withdrawable"`

	Accounts    map[string]uint64 `json:"accounts"`
	AccountKeys map[string][]byte `json:"accountKeys,omitempty"` // addr -> ed25519 pubkey
	NonceMax    map[string]uint64 `json:"nonceMax,omitempty"`    // signer -> last accepted nonce
}

func NewState() *State {
	s := &State{Params: DefaultParams()}
	s.normalize()
	return s
}

func (s *State) normalize() {
	if s.NextGameID == 0 {
		s.NextGameID = 1
	}
	if s.Games == nil {
		s.Games = map[uint64]*Game{}
	}
	if s.Requests == nil {
		s.Requests = map[string]*DecryptionRequest{}
	}
	if s.Withdrawable == nil {
		s.Withdrawable = map[string]uint64{}
	}
	if s.Accounts == nil {
		s.Accounts = map[string]uint64{}
	}
	if s.AccountKeys == nil {
		s.AccountKeys = map[string][]byte{}
	}
	if s.NonceMax == nil {
		s.NonceMax = map[string]uint64{}
	}
}

// Clone returns a deep copy of state suitable for staged tx execution.
func (s *State) Clone() (*State, error) {
	if s == nil {
		return nil, fmt.Errorf("state is nil")
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode state clone: %w", err)
	}
	var out State
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode state clone: %w", err)
	}
	out.normalize()
	return &out, nil
}

// GameCount is the highest allocated game id.
func (s *State) GameCount() uint64 { return s.NextGameID - 1 }

func (s *State) AppHash() []byte {
	// Hash a normalized view: every map becomes a slice sorted by key.
	type u64KV struct {
		Key   string `json:"key"`
		Value uint64 `json:"value"`
	}
	type bytesKV struct {
		Key   string `json:"key"`
		Value []byte `json:"value"`
	}
	sortedU64 := func(m map[string]uint64) []u64KV {
		out := make([]u64KV, 0, len(m))
		for k, v := range m {
			out = append(out, u64KV{Key: k, Value: v})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
		return out
	}

	keys := make([]bytesKV, 0, len(s.AccountKeys))
	for k, v := range s.AccountKeys {
		keys = append(keys, bytesKV{Key: k, Value: v})
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Key < keys[j].Key })

	games := make([]*Game, 0, len(s.Games))
	for _, g := range s.Games {
		games = append(games, g)
	}
	sort.Slice(games, func(i, j int) bool { return games[i].ID < games[j].ID })

	reqs := make([]*DecryptionRequest, 0, len(s.Requests))
	for _, r := range s.Requests {
		reqs = append(reqs, r)
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].CorrelationID < reqs[j].CorrelationID })

	normalized := struct {
		Height         int64                `json:"height"`
		Time           int64                `json:"time"`
		NextGameID     uint64               `json:"nextGameId"`
		NextRequestSeq uint64               `json:"nextRequestSeq"`
		Params         Params               `json:"params"`
		Owner          string               `json:"owner"`
		Paused         bool                 `json:"paused"`
		FeesCollected  uint64               `json:"feesCollected"`
		FaucetEnabled  bool                 `json:"faucetEnabled"`
		OraclePubKey   []byte               `json:"oraclePubKey,omitempty"`
		Contract       string               `json:"contract,omitempty"`
		Games          []*Game              `json:"games"`
		Requests       []*DecryptionRequest `json:"requests"`
		Withdrawable   []u64KV              `json:"withdrawable"`
		Accounts       []u64KV              `json:"accounts"`
		AccountKeys    []bytesKV            `json:"accountKeys,omitempty"`
		NonceMax       []u64KV              `json:"nonceMax,omitempty"`
	}{
		Height:         s.Height,
		Time:           s.Time,
		NextGameID:     s.NextGameID,
		NextRequestSeq: s.NextRequestSeq,
		Params:         s.Params,
		Owner:          s.Owner,
		Paused:         s.Paused,
		FeesCollected:  s.FeesCollected,
		FaucetEnabled:  s.FaucetEnabled,
		OraclePubKey:   s.OraclePubKey,
		Contract:       s.Contract,
		Games:          games,
		Requests:       reqs,
		Withdrawable:   sortedU64(s.Withdrawable),
		Accounts:       sortedU64(s.Accounts),
		AccountKeys:    keys,
		NonceMax:       sortedU64(s.NonceMax),
	}

	b, _ := json.Marshal(normalized)
	sum := sha256.Sum256(b)
	return sum[:]
}

// ---- Bank ----

func (s *State) Balance(addr string) uint64 {
	return s.Accounts[addr]
}

func (s *State) Credit(addr string, amount uint64) error {
	bal := s.Accounts[addr]
	if bal > ^uint64(0)-amount {
		return fmt.Errorf("balance overflow: have=%d add=%d", bal, amount)
	}
	s.Accounts[addr] = bal + amount
	return nil
}

func (s *State) Debit(addr string, amount uint64) error {
	bal := s.Accounts[addr]
	if bal < amount {
		return fmt.Errorf("insufficient funds: have=%d need=%d", bal, amount)
	}
	s.Accounts[addr] = bal - amount
	return nil
}

// Transfer moves amount between two bank accounts.
func (s *State) Transfer(from, to string, amount uint64) error {
	if err := s.Debit(from, amount); err != nil {
		return err
	}
	if err := s.Credit(to, amount); err != nil {
		// Undo the debit; Credit on from cannot overflow since it held amount.
		s.Accounts[from] += amount
		return err
	}
	return nil
}
