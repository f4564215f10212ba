package relayer

import (
	"context"

	cmtbytes "github.com/cometbft/cometbft/libs/bytes"
	rpchttp "github.com/cometbft/cometbft/rpc/client/http"
	ctypes "github.com/cometbft/cometbft/rpc/core/types"
	cmttypes "github.com/cometbft/cometbft/types"
)

// ChainClient is the slice of the CometBFT RPC client the relayer uses.
type ChainClient interface {
	ABCIQuery(ctx context.Context, path string, data cmtbytes.HexBytes) (*ctypes.ResultABCIQuery, error)
	BroadcastTxCommit(ctx context.Context, tx cmttypes.Tx) (*ctypes.ResultBroadcastTxCommit, error)
}

var _ ChainClient = (*rpchttp.HTTP)(nil)

// Dial connects to a node's RPC endpoint, e.g. "tcp://127.0.0.1:26657".
func Dial(remote string) (ChainClient, error) {
	return rpchttp.New(remote)
}
