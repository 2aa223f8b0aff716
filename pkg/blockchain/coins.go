package blockchain

import (
	"context"
	"errors"
	"fmt"
)

// maxGasPayment is the protocol limit on gas payment objects per transaction.
const maxGasPayment = 255

// ErrInsufficientGas is returned when an account's SUI coins cannot cover the budget.
var ErrInsufficientGas = errors.New("insufficient SUI balance to cover the gas budget")

// Coin is one SUI coin object owned by an account.
type Coin struct {
	CoinType     string       `json:"coinType"`
	CoinObjectID string       `json:"coinObjectId"`
	Version      StringUint64 `json:"version"`
	Digest       string       `json:"digest"`
	Balance      StringUint64 `json:"balance"`
}

// Ref returns the object reference used to pay gas with c.
func (c Coin) Ref() (ObjectRef, error) {
	return NewObjectRef(c.CoinObjectID, uint64(c.Version), c.Digest)
}

// CoinPage is one page of suix_getCoins.
type CoinPage struct {
	Data        []Coin  `json:"data"`
	NextCursor  *string `json:"nextCursor"`
	HasNextPage bool    `json:"hasNextPage"`
}

// GetCoins returns every SUI coin owned by owner.
func (c *Client) GetCoins(ctx context.Context, owner string) ([]Coin, error) {
	var (
		out    []Coin
		cursor *string
	)
	for {
		var page CoinPage
		if err := c.call(ctx, &page, methodGetCoins, owner, SuiCoinType, cursor, pageLimit); err != nil {
			return nil, err
		}
		out = append(out, page.Data...)
		if !page.HasNextPage || page.NextCursor == nil {
			return out, nil
		}
		if cursor != nil && *cursor == *page.NextCursor {
			return out, nil
		}
		next := *page.NextCursor
		cursor = &next
	}
}

// GetReferenceGasPrice returns the current epoch's reference gas price in MIST.
func (c *Client) GetReferenceGasPrice(ctx context.Context) (uint64, error) {
	var price StringUint64
	if err := c.call(ctx, &price, methodGetReferenceGasPrice); err != nil {
		return 0, err
	}
	return uint64(price), nil
}

// SelectGasCoins picks coins in the given order until their balances cover
// budget. It fails when the coins run out or more than 255 would be needed.
func SelectGasCoins(coins []Coin, budget uint64) ([]ObjectRef, error) {
	var (
		refs  []ObjectRef
		total uint64
	)
	for _, coin := range coins {
		if total >= budget {
			break
		}
		if len(refs) == maxGasPayment {
			return nil, fmt.Errorf("%w: more than %d coins required", ErrInsufficientGas, maxGasPayment)
		}
		ref, err := coin.Ref()
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
		total += uint64(coin.Balance)
	}
	if total < budget || len(refs) == 0 {
		return nil, fmt.Errorf("%w: have %d MIST, need %d", ErrInsufficientGas, total, budget)
	}
	return refs, nil
}
