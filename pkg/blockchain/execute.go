package blockchain

import (
	"context"
	"encoding/base64"
	"errors"

	"go.uber.org/zap"
)

// ExecutionSuccess is the effects status of a successful transaction.
const ExecutionSuccess = "success"

// ExecutionStatus reports whether a transaction (or simulation) succeeded.
type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// GasCostSummary is the gas breakdown of a transaction in MIST.
type GasCostSummary struct {
	ComputationCost         StringUint64 `json:"computationCost"`
	StorageCost             StringUint64 `json:"storageCost"`
	StorageRebate           StringUint64 `json:"storageRebate"`
	NonRefundableStorageFee StringUint64 `json:"nonRefundableStorageFee"`
}

// Total returns computation + storage - rebate. It may be negative when the
// rebate exceeds the charges.
func (g GasCostSummary) Total() int64 {
	return int64(g.ComputationCost) + int64(g.StorageCost) - int64(g.StorageRebate)
}

// TransactionEffects is the subset of effects the studio reads.
type TransactionEffects struct {
	Status  ExecutionStatus `json:"status"`
	GasUsed GasCostSummary  `json:"gasUsed"`
}

// DryRunResponse is the result of sui_dryRunTransactionBlock.
type DryRunResponse struct {
	Effects TransactionEffects `json:"effects"`
}

// ExecuteOptions selects the parts of the response the fullnode returns.
type ExecuteOptions struct {
	ShowEffects       bool `json:"showEffects"`
	ShowEvents        bool `json:"showEvents"`
	ShowObjectChanges bool `json:"showObjectChanges"`
}

// ExecuteResponse is the result of sui_executeTransactionBlock.
type ExecuteResponse struct {
	Digest  string              `json:"digest"`
	Effects *TransactionEffects `json:"effects,omitempty"`
	Errors  []string            `json:"errors,omitempty"`
}

// Succeeded reports whether the effects were returned with a success status.
func (r ExecuteResponse) Succeeded() bool {
	return r.Effects != nil && r.Effects.Status.Status == ExecutionSuccess
}

// DryRunTransaction simulates txBytes without committing it.
func (c *Client) DryRunTransaction(ctx context.Context, txBytes []byte) (*DryRunResponse, error) {
	var resp DryRunResponse
	if err := c.call(ctx, &resp, methodDryRun, base64.StdEncoding.EncodeToString(txBytes)); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ExecuteTransaction submits a signed transaction and waits for local
// execution. signature is the serialized, base64-encoded user signature.
func (c *Client) ExecuteTransaction(ctx context.Context, txBytes []byte, signature string) (*ExecuteResponse, error) {
	if signature == "" {
		return nil, errors.New("transaction is not signed")
	}
	opts := ExecuteOptions{ShowEffects: true, ShowEvents: true, ShowObjectChanges: true}
	var resp ExecuteResponse
	err := c.call(ctx, &resp, methodExecute,
		base64.StdEncoding.EncodeToString(txBytes),
		[]string{signature},
		opts,
		"WaitForLocalExecution")
	if err != nil {
		return nil, err
	}
	zap.L().Info("transaction executed", zap.String("digest", resp.Digest), zap.Bool("success", resp.Succeeded()))
	return &resp, nil
}
