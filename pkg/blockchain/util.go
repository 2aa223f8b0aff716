package blockchain

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// suiDecimals is the number of MIST decimals in one SUI.
const suiDecimals = 9

// MistToSui converts an amount in MIST to SUI with exact decimal precision.
//
// Supported input types for ivalue: string, uint64, int64, int, *big.Int.
// Any other type, or a malformed string, results in decimal.Zero and logs an
// error.
func MistToSui(ivalue any) decimal.Decimal {
	value := new(big.Int)
	switch v := ivalue.(type) {
	case string:
		if _, ok := value.SetString(v, 10); !ok {
			zap.L().Error("Failed to parse MIST amount", zap.String("value", v))
			return decimal.Zero
		}
	case uint64:
		value.SetUint64(v)
	case int64:
		value.SetInt64(v)
	case int:
		value.SetInt64(int64(v))
	case *big.Int:
		if v == nil {
			return decimal.Zero
		}
		value.Set(v)
	default:
		zap.L().Error("Unsupported type", zap.String("type", fmt.Sprintf("%T", ivalue)))
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value, -suiDecimals)
}
