package sdk

import (
	"context"
	"fmt"

	"github.com/suinft/nft-studio-go/pkg/blockchain"
)

// ChainWriter is the subset of the fullnode client needed to build, simulate
// and submit transactions.
type ChainWriter interface {
	GetCoins(ctx context.Context, owner string) ([]blockchain.Coin, error)
	GetReferenceGasPrice(ctx context.Context) (uint64, error)
	DryRunTransaction(ctx context.Context, txBytes []byte) (*blockchain.DryRunResponse, error)
	ExecuteTransaction(ctx context.Context, txBytes []byte, signature string) (*blockchain.ExecuteResponse, error)
}

// Chain is everything the studio needs from a fullnode.
type Chain interface {
	ObjectReader
	ChainWriter
}

// buildMoveCall assembles a single-call programmable transaction from sender,
// paying gas from sender's SUI coins at the reference price.
func buildMoveCall(ctx context.Context, chain ChainWriter, sender blockchain.Address, target string, budget uint64,
	args func(tx *blockchain.Transaction) []blockchain.Argument) ([]byte, error) {

	tx := blockchain.NewTransaction()
	if _, err := tx.MoveCall(target, args(tx)...); err != nil {
		return nil, err
	}

	coins, err := chain.GetCoins(ctx, sender.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list gas coins: %w", err)
	}
	payment, err := blockchain.SelectGasCoins(coins, budget)
	if err != nil {
		return nil, err
	}
	price, err := chain.GetReferenceGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get reference gas price: %w", err)
	}

	tx.SetSender(sender)
	tx.SetGasPayment(payment)
	tx.SetGasPrice(price)
	tx.SetGasBudget(budget)
	return tx.Build()
}
