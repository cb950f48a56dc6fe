package entity

import (
	"strconv"

	"github.com/shopspring/decimal"
)

type PositionKind string

const (
	PositionDeposit   PositionKind = "DEPOSIT"
	PositionWithdraw  PositionKind = "WITHDRAW"
	PositionBorrow    PositionKind = "BORROW"
	PositionRepay     PositionKind = "REPAY"
	PositionLiquidate PositionKind = "LIQUIDATE"
)

// PositionEvent records one user-initiated action, keyed by
// txHash "-" logIndex.
type PositionEvent struct {
	ID       string
	Kind     PositionKind
	Hash     string
	LogIndex int

	Protocol string
	Market   string
	Asset    string
	From     string
	To       string

	Amount    decimal.Decimal // native units
	AmountUSD decimal.Decimal

	BlockNumber int64
	Timestamp   int64
}

func PositionID(hash string, logIndex int) string {
	return hash + "-" + strconv.Itoa(logIndex)
}
