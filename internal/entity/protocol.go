package entity

import "github.com/shopspring/decimal"

// LendingProtocol is the singleton totals record, keyed by the
// controller contract address. Totals are recomputed by summing over
// MarketIDs after every market update.
type LendingProtocol struct {
	ID      string
	Name    string
	Slug    string
	Network string

	PriceOracle          string
	LiquidationIncentive decimal.Decimal

	CumulativeUniqueUsers int64
	MarketIDs             []string

	TotalValueLockedUSD    decimal.Decimal
	TotalDepositBalanceUSD decimal.Decimal
	TotalBorrowBalanceUSD  decimal.Decimal

	CumulativeDepositUSD             decimal.Decimal
	CumulativeBorrowUSD              decimal.Decimal
	CumulativeLiquidateUSD           decimal.Decimal
	CumulativeTotalRevenueUSD        decimal.Decimal
	CumulativeProtocolSideRevenueUSD decimal.Decimal
	CumulativeSupplySideRevenueUSD   decimal.Decimal
}
