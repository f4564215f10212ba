package wager

import (
	"encoding/binary"
	"sort"

	"github.com/google/uuid"

	"onchainrps/internal/state"
)

// correlationNamespace scopes correlation ids to this application; ids are
// UUIDv5 over the request sequence number, so every replica derives the same
// id for the same request.
var correlationNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("orps/decryption-request"))

// requestDecryption registers a pending decryption job and returns its
// correlation id.
func requestDecryption(ctx *Context, gameID uint64, handles [][]byte) string {
	st := ctx.State
	seq := st.NextRequestSeq
	st.NextRequestSeq++

	var b [8]byte
	binary.BigEndian.PutUint64(b[:], seq)
	cid := uuid.NewSHA1(correlationNamespace, b[:]).String()

	cp := make([][]byte, len(handles))
	for i, h := range handles {
		cp[i] = append([]byte(nil), h...)
	}
	st.Requests[cid] = &state.DecryptionRequest{
		CorrelationID: cid,
		GameID:        gameID,
		Handles:       cp,
		RequestedAt:   ctx.Now,
	}
	return cid
}

// PendingRequests lists requests an oracle may still answer, oldest first.
func (k *Keeper) PendingRequests(ctx *Context) []*state.DecryptionRequest {
	out := make([]*state.DecryptionRequest, 0)
	for _, r := range ctx.State.Requests {
		if r.Pending() {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RequestedAt != out[j].RequestedAt {
			return out[i].RequestedAt < out[j].RequestedAt
		}
		return out[i].GameID < out[j].GameID
	})
	return out
}

func (k *Keeper) GetRequest(ctx *Context, correlationID string) (*state.DecryptionRequest, error) {
	r, ok := ctx.State.Requests[correlationID]
	if !ok {
		return nil, ErrUnknownRequest.Wrapf("correlation id %q", correlationID)
	}
	return r, nil
}
