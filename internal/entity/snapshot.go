package entity

import "github.com/shopspring/decimal"

// MarketSnapshot is one hourly or daily record per (market, bucket).
// Point-in-time fields carry last-writer-wins copies of the market;
// the USD volume and revenue fields accumulate over the period.
type MarketSnapshot struct {
	ID       string
	Protocol string
	Market   string

	TotalValueLockedUSD    decimal.Decimal
	TotalDepositBalanceUSD decimal.Decimal
	TotalBorrowBalanceUSD  decimal.Decimal
	CumulativeDepositUSD   decimal.Decimal
	CumulativeBorrowUSD    decimal.Decimal
	CumulativeLiquidateUSD decimal.Decimal

	InputTokenBalance   decimal.Decimal
	InputTokenPriceUSD  decimal.Decimal
	OutputTokenSupply   decimal.Decimal
	OutputTokenPriceUSD decimal.Decimal
	ExchangeRate        decimal.Decimal
	LenderRate          decimal.Decimal
	BorrowerRate        decimal.Decimal

	// period accumulators
	DepositUSD   decimal.Decimal
	WithdrawUSD  decimal.Decimal
	BorrowUSD    decimal.Decimal
	RepayUSD     decimal.Decimal
	LiquidateUSD decimal.Decimal

	TotalRevenueUSD        decimal.Decimal
	ProtocolSideRevenueUSD decimal.Decimal
	SupplySideRevenueUSD   decimal.Decimal

	BlockNumber int64
	Timestamp   int64
}

// FinancialsSnapshot is the protocol-wide daily record. Daily fields
// are recomputed as the sum of the same day's per-market daily
// snapshot accumulators.
type FinancialsSnapshot struct {
	ID       string
	Protocol string

	TotalValueLockedUSD    decimal.Decimal
	TotalDepositBalanceUSD decimal.Decimal
	TotalBorrowBalanceUSD  decimal.Decimal

	CumulativeDepositUSD             decimal.Decimal
	CumulativeBorrowUSD              decimal.Decimal
	CumulativeLiquidateUSD           decimal.Decimal
	CumulativeTotalRevenueUSD        decimal.Decimal
	CumulativeProtocolSideRevenueUSD decimal.Decimal
	CumulativeSupplySideRevenueUSD   decimal.Decimal

	DailyDepositUSD   decimal.Decimal
	DailyWithdrawUSD  decimal.Decimal
	DailyBorrowUSD    decimal.Decimal
	DailyRepayUSD     decimal.Decimal
	DailyLiquidateUSD decimal.Decimal

	DailyTotalRevenueUSD        decimal.Decimal
	DailyProtocolSideRevenueUSD decimal.Decimal
	DailySupplySideRevenueUSD   decimal.Decimal

	BlockNumber int64
	Timestamp   int64
}
