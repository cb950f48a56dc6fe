// Package event defines the typed chain events the engine consumes
// and the notifications it emits on the in-process bus.
package event

import (
	"github.com/shopspring/decimal"

	"github.com/openlend/lendsight/internal/entity"
)

// Block carries the chain context every event arrives with.
type Block struct {
	Number    int64
	Timestamp int64
}

type MarketListed struct {
	Block
	Market string
}

type AccrueInterest struct {
	Block
	Market string
}

type Mint struct {
	Block
	Market   string
	Minter   string
	Amount   decimal.Decimal
	TxHash   string
	LogIndex int
}

type Redeem struct {
	Block
	Market   string
	Redeemer string
	Amount   decimal.Decimal
	TxHash   string
	LogIndex int
}

type Borrow struct {
	Block
	Market   string
	Borrower string
	Amount   decimal.Decimal
	TxHash   string
	LogIndex int
}

type RepayBorrow struct {
	Block
	Market   string
	Payer    string
	Amount   decimal.Decimal
	TxHash   string
	LogIndex int
}

type LiquidateBorrow struct {
	Block
	Market     string
	Liquidator string
	Borrower   string
	// SeizeAmount is denominated in output (share) tokens.
	SeizeAmount decimal.Decimal
	TxHash      string
	LogIndex    int
}

type NewReserveFactor struct {
	Block
	Market   string
	Mantissa decimal.Decimal
}

type NewCollateralFactor struct {
	Block
	Market   string
	Mantissa decimal.Decimal
}

type NewLiquidationIncentive struct {
	Block
	Mantissa decimal.Decimal
}

type NewPriceOracle struct {
	Block
	Oracle string
}

// MarketStats is the per-market slice of a StatsUpdated notification.
type MarketStats struct {
	TotalValueLockedUSD   decimal.Decimal
	TotalBorrowBalanceUSD decimal.Decimal
	LenderRate            decimal.Decimal
	BorrowerRate          decimal.Decimal
	CumulativeDepositUSD  decimal.Decimal
}

// StatsUpdated is emitted periodically by the watcher for the web
// stream.
type StatsUpdated struct {
	Markets map[string]MarketStats
}

// FinancialsUpdated is emitted by the engine after each financials
// snapshot write so outbound publishers can forward it.
type FinancialsUpdated struct {
	Snapshot entity.FinancialsSnapshot
}
