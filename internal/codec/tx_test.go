package codec

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeTxEnvelope_OK(t *testing.T) {
	b, err := json.Marshal(map[string]any{
		"type":  TypeJoinGame,
		"funds": 10_000_000,
		"value": map[string]any{"player": "bob", "gameId": 1},
	})
	require.NoError(t, err)

	env, err := DecodeTxEnvelope(b)
	require.NoError(t, err)
	require.Equal(t, TypeJoinGame, env.Type)
	require.Equal(t, uint64(10_000_000), env.Funds)

	var msg JoinGameTx
	require.NoError(t, json.Unmarshal(env.Value, &msg))
	require.Equal(t, "bob", msg.Player)
	require.Equal(t, uint64(1), msg.GameID)
}

func TestDecodeTxEnvelope_Errors(t *testing.T) {
	_, err := DecodeTxEnvelope([]byte(`{"value":{}}`))
	require.ErrorContains(t, err, "missing tx.type")

	_, err = DecodeTxEnvelope([]byte(`not json`))
	require.ErrorContains(t, err, "invalid tx json")
}

func TestSignEnvelope_CoversFunds(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	env, err := NewTx(TypeCreateGame, CreateGameTx{Creator: "alice", Stake: 5}, 5)
	require.NoError(t, err)
	SignEnvelope(&env, "alice", 1, priv)
	require.Equal(t, "1", env.Nonce)

	msg := SignBytes(env.Type, env.Value, env.Funds, env.Nonce, env.Signer)
	require.True(t, ed25519.Verify(pub, msg, env.Sig))

	// Changing the attached funds invalidates the signature.
	tampered := SignBytes(env.Type, env.Value, env.Funds+1, env.Nonce, env.Signer)
	require.False(t, ed25519.Verify(pub, tampered, env.Sig))

	raw, err := env.Encode()
	require.NoError(t, err)
	back, err := DecodeTxEnvelope(raw)
	require.NoError(t, err)
	require.True(t, bytes.Equal(env.Sig, back.Sig))
}

func TestSignBytes_FieldSeparation(t *testing.T) {
	a := SignBytes("t", []byte("v"), 0, "1", "ab")
	b := SignBytes("t", []byte("v"), 0, "1a", "b")
	require.NotEqual(t, a, b)
}
