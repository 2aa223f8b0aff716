package sdk

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/suinft/nft-studio-go/pkg/blockchain"
	"github.com/suinft/nft-studio-go/pkg/model"
)

// Sample values used when an estimate is requested with blank inputs.
const (
	SampleName        = "Sample NFT"
	SampleDescription = "Sample description"
	SampleImageURL    = "https://example.com/sample.png"
)

// Precondition and fallback reasons reported by the estimator.
const (
	ReasonWalletNotConnected = "Wallet not connected"
	ReasonNoCapability       = "No mint capability available"
	ReasonUnableToEstimate   = "Unable to estimate gas, using typical costs"
)

// EstimateInput carries the draft values a mint would use.
type EstimateInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"img_url"`
}

func (in EstimateInput) withSamples() EstimateInput {
	if strings.TrimSpace(in.Name) == "" {
		in.Name = SampleName
	}
	if strings.TrimSpace(in.Description) == "" {
		in.Description = SampleDescription
	}
	if strings.TrimSpace(in.ImageURL) == "" {
		in.ImageURL = SampleImageURL
	}
	return in
}

// Estimator simulates a mint to predict its gas cost.
type Estimator struct {
	chain  ChainWriter
	budget uint64
}

// NewEstimator returns an Estimator; a zero budget means model.GasBudget.
func NewEstimator(chain ChainWriter, budget uint64) *Estimator {
	if budget == 0 {
		budget = model.GasBudget
	}
	return &Estimator{chain: chain, budget: budget}
}

// Estimate dry-runs a call of the form (capability, sender, image, name,
// description). It never returns an error: every outcome is a terminal
// GasEstimate state. Preconditions short-circuit without a network call.
func (e *Estimator) Estimate(ctx context.Context, signer blockchain.Signer, capability model.CapabilityState,
	contract model.ContractConfig, in EstimateInput) model.GasEstimate {

	if signer == nil {
		return precondition(ReasonWalletNotConnected)
	}
	capObj, ok := capability.Object()
	if !ok {
		return precondition(ReasonNoCapability)
	}
	capRef, err := blockchain.ObjectRefFromOwned(capObj)
	if err != nil {
		zap.L().Warn("capability object has no usable reference", zap.String("id", capObj.ObjectID), zap.Error(err))
		return unableToEstimate()
	}

	in = in.withSamples()
	sender := signer.Address()
	txBytes, err := buildMoveCall(ctx, e.chain, sender, contract.Target(), e.budget, func(tx *blockchain.Transaction) []blockchain.Argument {
		return []blockchain.Argument{
			tx.Object(capRef),
			tx.PureAddress(sender),
			tx.PureString(in.ImageURL),
			tx.PureString(in.Name),
			tx.PureString(in.Description),
		}
	})
	if err != nil {
		zap.L().Warn("gas estimation failed to build transaction", zap.Error(err))
		return unableToEstimate()
	}

	resp, err := e.chain.DryRunTransaction(ctx, txBytes)
	if err != nil {
		zap.L().Warn("gas estimation dry run failed", zap.Error(err))
		return unableToEstimate()
	}

	status := resp.Effects.Status
	if status.Status != blockchain.ExecutionSuccess {
		msg := status.Error
		if msg == "" {
			msg = "Transaction simulation failed"
		}
		zap.L().Info("gas estimation simulated failure", zap.String("error", msg))
		return model.GasEstimate{
			Status:          model.EstimateFailed,
			Error:           msg,
			Fallback:        true,
			FallbackMessage: model.TypicalCostMessage,
		}
	}

	return CostBreakdown(resp.Effects.GasUsed)
}

// CostBreakdown converts a simulated gas summary into a SUI-denominated
// estimate. The total is the summary's net MIST charge, so it equals
// computation + storage - rebate exactly.
func CostBreakdown(g blockchain.GasCostSummary) model.GasEstimate {
	computation := blockchain.MistToSui(uint64(g.ComputationCost))
	storage := blockchain.MistToSui(uint64(g.StorageCost))
	rebate := blockchain.MistToSui(uint64(g.StorageRebate))
	return model.GasEstimate{
		Status:          model.EstimateSucceeded,
		TotalCost:       blockchain.MistToSui(g.Total()),
		ComputationCost: computation,
		StorageCost:     storage,
		StorageRebate:   rebate,
	}
}

func precondition(reason string) model.GasEstimate {
	return model.GasEstimate{
		Status:          model.EstimatePrecondition,
		Error:           reason,
		Fallback:        true,
		FallbackMessage: model.TypicalCostMessage,
	}
}

func unableToEstimate() model.GasEstimate {
	return model.GasEstimate{
		Status:          model.EstimateFailed,
		Error:           ReasonUnableToEstimate,
		Fallback:        true,
		FallbackMessage: model.TypicalCostMessage,
	}
}
