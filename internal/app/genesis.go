package app

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"

	"onchainrps/internal/orpscrypto"
	"onchainrps/internal/sealed"
	"onchainrps/internal/state"
)

// DefaultContract is the engine address move proofs are bound to when the
// genesis does not name one.
const DefaultContract = "orps1engine"

// GenesisState is the app_state section of the CometBFT genesis file.
type GenesisState struct {
	Owner        string            `json:"owner"`
	Contract     string            `json:"contract,omitempty"`
	OraclePubKey string            `json:"oraclePubKey"` // hex, 32 bytes
	Params       *state.Params     `json:"params,omitempty"`
	Faucet       bool              `json:"faucet,omitempty"`
	Balances     map[string]uint64 `json:"balances,omitempty"`
	AccountKeys  map[string][]byte `json:"accountKeys,omitempty"`
}

func DefaultGenesis(owner string, oraclePK []byte) GenesisState {
	p := state.DefaultParams()
	return GenesisState{
		Owner:        owner,
		Contract:     DefaultContract,
		OraclePubKey: orpscrypto.BytesToHex(oraclePK),
		Params:       &p,
	}
}

func (g GenesisState) Validate() error {
	if g.Owner == "" {
		return fmt.Errorf("genesis: missing owner")
	}
	if _, err := sealed.ParsePublicKeyHex(g.OraclePubKey); err != nil {
		return fmt.Errorf("genesis: %w", err)
	}
	if g.Params != nil {
		if err := g.Params.Validate(); err != nil {
			return fmt.Errorf("genesis params: %w", err)
		}
	}
	if _, ok := g.Balances[state.EscrowAccount]; ok {
		return fmt.Errorf("genesis: %s cannot hold an initial balance", state.EscrowAccount)
	}
	for addr, pk := range g.AccountKeys {
		if len(pk) != ed25519.PublicKeySize {
			return fmt.Errorf("genesis: account %q pubKey must be %d bytes", addr, ed25519.PublicKeySize)
		}
	}
	return nil
}

func ParseGenesis(raw []byte) (GenesisState, error) {
	var g GenesisState
	if len(raw) == 0 {
		return g, fmt.Errorf("genesis: empty app_state")
	}
	if err := json.Unmarshal(raw, &g); err != nil {
		return g, fmt.Errorf("genesis: %w", err)
	}
	return g, g.Validate()
}

// apply seeds a fresh state from g.
func (g GenesisState) apply(st *state.State) error {
	pk, err := sealed.ParsePublicKeyHex(g.OraclePubKey)
	if err != nil {
		return err
	}
	st.Owner = g.Owner
	st.Contract = g.Contract
	if st.Contract == "" {
		st.Contract = DefaultContract
	}
	st.OraclePubKey = pk
	if g.Params != nil {
		st.Params = *g.Params
	}
	st.FaucetEnabled = g.Faucet
	for addr, amt := range g.Balances {
		if err := st.Credit(addr, amt); err != nil {
			return err
		}
	}
	for addr, key := range g.AccountKeys {
		st.AccountKeys[addr] = append([]byte(nil), key...)
	}
	return nil
}
