package blockchain

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// Sui JSON-RPC method names.
const (
	methodGetOwnedObjects      = "suix_getOwnedObjects"
	methodGetCoins             = "suix_getCoins"
	methodGetReferenceGasPrice = "suix_getReferenceGasPrice"
	methodDryRun               = "sui_dryRunTransactionBlock"
	methodExecute              = "sui_executeTransactionBlock"
)

// SuiCoinType is the type tag of the native gas coin.
const SuiCoinType = "0x2::sui::SUI"

// pageLimit is the page size requested from paginated endpoints.
const pageLimit = 50

// Client is a Sui fullnode client. It is safe for concurrent use; the
// underlying JSON-RPC client holds no per-call state.
type Client struct {
	rpc *rpc.Client
}

// Dial connects to a fullnode JSON-RPC endpoint (http, https, ws or wss).
// Per-call deadlines come from the contexts passed to each method.
func Dial(ctx context.Context, endpoint string) (*Client, error) {
	c, err := rpc.DialOptions(ctx, endpoint, rpc.WithHTTPClient(&http.Client{}))
	if err != nil {
		zap.L().Error("Failed to dial fullnode", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, err
	}
	return NewClient(c), nil
}

// NewClient wraps an existing JSON-RPC client, e.g. an in-process one.
func NewClient(c *rpc.Client) *Client {
	return &Client{rpc: c}
}

// Close releases the underlying connection.
func (c *Client) Close() {
	if c.rpc != nil {
		c.rpc.Close()
	}
}

// call performs one JSON-RPC round trip and annotates failures with the method.
func (c *Client) call(ctx context.Context, result any, method string, args ...any) error {
	if c == nil || c.rpc == nil {
		return fmt.Errorf("%s: fullnode client not configured", method)
	}
	start := time.Now()
	err := c.rpc.CallContext(ctx, result, method, args...)
	if err != nil {
		zap.L().Debug("fullnode call failed",
			zap.String("method", method),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return fmt.Errorf("%s: %w", method, err)
	}
	zap.L().Debug("fullnode call", zap.String("method", method), zap.Duration("elapsed", time.Since(start)))
	return nil
}
