package entity

import "github.com/shopspring/decimal"

type RateSide string

const (
	RateSideLender   RateSide = "LENDER"
	RateSideBorrower RateSide = "BORROWER"
)

type RateType string

const RateTypeVariable RateType = "VARIABLE"

// InterestRate holds a single current annualized percentage rate for
// one side of a market.
type InterestRate struct {
	ID     string
	Side   RateSide
	Type   RateType
	Market string
	Rate   decimal.Decimal
}

func RateID(side RateSide, typ RateType, marketID string) string {
	return string(side) + "-" + string(typ) + "-" + marketID
}

// RewardKey addresses one reward emission stream of a market.
type RewardKey struct {
	Side  RateSide
	Token string // reward token address
}

type RewardEmission struct {
	Amount    decimal.Decimal // annualized, native reward token units
	AmountUSD decimal.Decimal
}

// Market is keyed by the market contract address. Amounts suffixed USD
// are human-scale decimals; InputTokenBalance and OutputTokenSupply
// stay in native token units.
type Market struct {
	ID          string
	Name        string
	Protocol    string
	InputToken  string // underlying asset address
	OutputToken string // share token address

	// point-in-time
	InputTokenBalance      decimal.Decimal
	InputTokenPriceUSD     decimal.Decimal
	OutputTokenSupply      decimal.Decimal
	OutputTokenPriceUSD    decimal.Decimal
	ExchangeRate           decimal.Decimal // one output token in input tokens
	TotalValueLockedUSD    decimal.Decimal
	TotalDepositBalanceUSD decimal.Decimal
	TotalBorrowBalanceUSD  decimal.Decimal

	// cumulative, never decreasing
	CumulativeDepositUSD             decimal.Decimal
	CumulativeBorrowUSD              decimal.Decimal
	CumulativeLiquidateUSD           decimal.Decimal
	CumulativeTotalRevenueUSD        decimal.Decimal
	CumulativeProtocolSideRevenueUSD decimal.Decimal
	CumulativeSupplySideRevenueUSD   decimal.Decimal

	// risk parameters, percent except ReserveFactor which is a fraction
	MaximumLTV           decimal.Decimal
	LiquidationThreshold decimal.Decimal
	LiquidationPenalty   decimal.Decimal
	ReserveFactor        decimal.Decimal

	LenderRateID   string
	BorrowerRateID string

	RewardEmissions map[RewardKey]RewardEmission

	// AccrualTimestamp is monotonically non-decreasing; accruals at or
	// before it are no-ops.
	AccrualTimestamp int64
	CreatedBlock     int64
	CreatedTimestamp int64
}
