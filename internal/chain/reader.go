// Package chain models the external contract-read capability. Every
// read returns a CallResult: a value or a reverted flag, never an
// error the caller is allowed to propagate.
package chain

import (
	"context"

	"github.com/shopspring/decimal"
)

// CallResult is the outcome of one external try-call.
type CallResult[T any] struct {
	Value    T
	Reverted bool
}

func Value[T any](v T) CallResult[T] {
	return CallResult[T]{Value: v}
}

func Revert[T any]() CallResult[T] {
	return CallResult[T]{Reverted: true}
}

// OrElse returns the call value, or def when the call reverted.
func (r CallResult[T]) OrElse(def T) T {
	if r.Reverted {
		return def
	}
	return r.Value
}

// TokenMetadata is the on-chain identity of a token contract.
type TokenMetadata struct {
	Name     string
	Symbol   string
	Decimals int32
}

// Reader is the value-or-failure view of the chain the engine runs
// against. All mantissa-valued results keep their raw fixed-point
// scale; the engine owns the conversions.
type Reader interface {
	TotalSupply(ctx context.Context, market string) CallResult[decimal.Decimal]
	ExchangeRateStored(ctx context.Context, market string) CallResult[decimal.Decimal]
	TotalBorrows(ctx context.Context, market string) CallResult[decimal.Decimal]
	SupplyRate(ctx context.Context, market string) CallResult[decimal.Decimal]
	BorrowRate(ctx context.Context, market string) CallResult[decimal.Decimal]
	UnderlyingPrice(ctx context.Context, oracle, market string) CallResult[decimal.Decimal]
	Underlying(ctx context.Context, market string) CallResult[string]
	ReserveFactorMantissa(ctx context.Context, market string) CallResult[decimal.Decimal]
	LiquidationIncentiveMantissa(ctx context.Context, controller string) CallResult[decimal.Decimal]
	TokenMetadata(ctx context.Context, token string) CallResult[TokenMetadata]
	RewardSpeed(ctx context.Context, side, rewardToken, market string) CallResult[decimal.Decimal]
}
