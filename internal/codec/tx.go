package codec

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strconv"
)

// Tx types routed by the application.
const (
	TypeBankMint            = "bank/mint"
	TypeAuthRegisterAccount = "auth/register_account"

	TypeCreateGame        = "wager/create_game"
	TypeJoinGame          = "wager/join_game"
	TypeSubmitMove        = "wager/submit_move"
	TypeFulfillDecryption = "wager/fulfill_decryption"
	TypeExpireGame        = "wager/expire_game"
	TypeBatchExpire       = "wager/batch_expire"
	TypeWithdraw          = "wager/withdraw"
	TypeWithdrawFees      = "wager/withdraw_fees"

	TypePause             = "admin/pause"
	TypeUnpause           = "admin/unpause"
	TypeSetFeeRate        = "admin/set_fee_rate"
	TypeSetFeeRecipient   = "admin/set_fee_recipient"
	TypeSetStakeBounds    = "admin/set_stake_bounds"
	TypeEmergencyWithdraw = "admin/emergency_withdraw"
	TypeTransferOwnership = "admin/transfer_ownership"
)

// TxEnvelope is the transaction container. CometBFT transactions are opaque
// bytes; ours are JSON.
type TxEnvelope struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`

	// Funds are moved from the signer's bank account into escrow before the
	// message executes. Only create/join accept a non-zero amount.
	Funds uint64 `json:"funds,omitempty"`

	// Nonce must increase per signer. Sig is Ed25519 over SignBytes.
	Nonce  string `json:"nonce,omitempty"`
	Signer string `json:"signer,omitempty"`
	Sig    []byte `json:"sig,omitempty"`
}

func DecodeTxEnvelope(txBytes []byte) (TxEnvelope, error) {
	var env TxEnvelope
	if err := json.Unmarshal(txBytes, &env); err != nil {
		return TxEnvelope{}, fmt.Errorf("invalid tx json: %w", err)
	}
	if env.Type == "" {
		return TxEnvelope{}, fmt.Errorf("missing tx.type")
	}
	return env, nil
}

const txAuthDomain = "orps/tx/v1"

// SignBytes = DOMAIN || 0x00 || type || 0x00 || nonce || 0x00 || signer || 0x00 || u64be(funds) || sha256(value)
func SignBytes(typ string, value []byte, funds uint64, nonce string, signer string) []byte {
	sum := sha256.Sum256(value)
	out := make([]byte, 0, len(txAuthDomain)+len(typ)+len(nonce)+len(signer)+4+8+sha256.Size)
	out = append(out, txAuthDomain...)
	out = append(out, 0)
	out = append(out, typ...)
	out = append(out, 0)
	out = append(out, nonce...)
	out = append(out, 0)
	out = append(out, signer...)
	out = append(out, 0)
	out = binary.BigEndian.AppendUint64(out, funds)
	out = append(out, sum[:]...)
	return out
}

// NewTx builds an envelope around msg. Sign it with SignEnvelope when the
// type requires auth.
func NewTx(typ string, msg any, funds uint64) (TxEnvelope, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return TxEnvelope{}, fmt.Errorf("encode %s: %w", typ, err)
	}
	return TxEnvelope{Type: typ, Value: raw, Funds: funds}, nil
}

func SignEnvelope(env *TxEnvelope, signer string, nonce uint64, priv ed25519.PrivateKey) {
	env.Signer = signer
	env.Nonce = strconv.FormatUint(nonce, 10)
	env.Sig = ed25519.Sign(priv, SignBytes(env.Type, env.Value, env.Funds, env.Nonce, env.Signer))
}

func (env TxEnvelope) Encode() ([]byte, error) {
	return json.Marshal(env)
}

// ---- Bank ----

type BankMintTx struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

// ---- Auth ----

type AuthRegisterAccountTx struct {
	Account string `json:"account"`
	PubKey  []byte `json:"pubKey"` // base64 (32 bytes)
}

// ---- Wager ----

type CreateGameTx struct {
	Creator         string `json:"creator"`
	Stake           uint64 `json:"stake"`
	MoveTimeoutSecs uint64 `json:"moveTimeoutSecs"`
	Move            []byte `json:"move"`
	Proof           []byte `json:"proof"`
}

type JoinGameTx struct {
	Player string `json:"player"`
	GameID uint64 `json:"gameId"`
	Move   []byte `json:"move"`
	Proof  []byte `json:"proof"`
}

type SubmitMoveTx struct {
	Player string `json:"player"`
	GameID uint64 `json:"gameId"`
	Move   []byte `json:"move"`
	Proof  []byte `json:"proof"`
}

type FulfillDecryptionTx struct {
	CorrelationID string `json:"correlationId"`
	Outcome       uint64 `json:"outcome"`
	Proof         []byte `json:"proof"`
}

type ExpireGameTx struct {
	GameID uint64 `json:"gameId"`
}

type BatchExpireTx struct {
	GameIDs []uint64 `json:"gameIds"`
	// Atomic rejects the whole batch if any id cannot be expired.
	Atomic bool `json:"atomic,omitempty"`
}

type WithdrawTx struct {
	Account string `json:"account"`
}

type WithdrawFeesTx struct {
	Owner     string `json:"owner"`
	Recipient string `json:"recipient,omitempty"`
}

// ---- Admin ----

// AdminTx carries pause, unpause and emergency withdraw.
type AdminTx struct {
	Owner string `json:"owner"`
}

type SetFeeRateTx struct {
	Owner  string `json:"owner"`
	FeeBps uint32 `json:"feeBps"`
}

type SetFeeRecipientTx struct {
	Owner     string `json:"owner"`
	Recipient string `json:"recipient"`
}

type SetStakeBoundsTx struct {
	Owner    string `json:"owner"`
	MinStake uint64 `json:"minStake"`
	MaxStake uint64 `json:"maxStake"`
}

type TransferOwnershipTx struct {
	Owner    string `json:"owner"`
	NewOwner string `json:"newOwner"`
}
