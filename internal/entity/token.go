package entity

import "github.com/shopspring/decimal"

// Token is created once per distinct address. Identity fields are
// immutable, price fields are refreshed on every accrual.
type Token struct {
	ID             string // contract address
	Name           string
	Symbol         string
	Decimals       int32
	LastPriceUSD   decimal.Decimal
	LastPriceBlock int64
}
