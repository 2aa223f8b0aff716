package sdk

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/suinft/nft-studio-go/pkg/storage"
)

// Health reports whether the fullnode and the IPFS node answer.
type Health struct {
	Fullnode    string `json:"fullnode"`
	GasPrice    uint64 `json:"reference_gas_price,omitempty"`
	IPFS        string `json:"ipfs"`
	IPFSVersion string `json:"ipfs_version,omitempty"`
}

const (
	healthOK          = "ok"
	healthUnavailable = "unavailable"
	healthUnknown     = "unknown"
)

// Ready reports whether chain operations can be served. IPFS is optional:
// without it only uploads fail.
func (h Health) Ready() bool {
	return h.Fullnode == healthOK
}

// Heartbeat checks the fullnode with a reference gas price query and the
// IPFS node with a version request, both within the chain-read timeout.
func (c *Core) Heartbeat(ctx context.Context) Health {
	ctx, cancel := context.WithTimeout(ctx, c.Timeouts.WithDefaults().ChainRead)
	defer cancel()

	h := Health{Fullnode: healthUnavailable, IPFS: healthUnknown}
	if c.chain != nil {
		price, err := c.chain.GetReferenceGasPrice(ctx)
		if err != nil {
			zap.L().Warn("fullnode heartbeat failed", zap.Error(err))
		} else {
			h.Fullnode, h.GasPrice = healthOK, price
		}
	}

	if c.storage != nil {
		version, err := c.storage.Ping(ctx)
		switch {
		case err == nil:
			h.IPFS, h.IPFSVersion = healthOK, version
		case errors.Is(err, storage.ErrPingUnsupported):
		default:
			zap.L().Warn("ipfs heartbeat failed", zap.Error(err))
			h.IPFS = healthUnavailable
		}
	}
	return h
}
