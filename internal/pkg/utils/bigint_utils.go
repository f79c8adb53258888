package utils

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// ToNaturalUnit shifts an amount expressed in the smallest indivisible unit
// (wei for ETH) by the chain's decimals. The division is exact.
// Example: amount=2500000000000000000, decimals=18 => 2.5
func ToNaturalUnit(amount decimal.Decimal, decimals int32) decimal.Decimal {
	if decimals <= 0 {
		return amount
	}
	return amount.Shift(-decimals)
}

// BigIntToDecimal wraps an on-chain integer balance without losing precision.
func BigIntToDecimal(amount *big.Int) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, 0)
}
