package engine

import "github.com/shopspring/decimal"

// mantissaDecimals is the fixed-point scale of on-chain rate and
// factor mantissas.
const mantissaDecimals int32 = 18

var hundred = decimal.NewFromInt(100)

// fromMantissa converts a raw integer-valued mantissa into its
// human-readable decimal by shifting exp places down.
func fromMantissa(raw decimal.Decimal, exp int32) decimal.Decimal {
	return raw.Shift(-exp)
}

// priceFromOracle scales an oracle answer into a USD price. Oracle
// answers carry 36 - underlyingDecimals fractional places.
func priceFromOracle(raw decimal.Decimal, underlyingDecimals int32) decimal.Decimal {
	return fromMantissa(raw, 36-underlyingDecimals)
}

// exchangeRateFromMantissa scales a stored exchange rate. The raw
// value carries 18 + underlyingDecimals - outputDecimals fractional
// places.
func exchangeRateFromMantissa(raw decimal.Decimal, underlyingDecimals, outputDecimals int32) decimal.Decimal {
	return fromMantissa(raw, mantissaDecimals+underlyingDecimals-outputDecimals)
}

// annualize turns a per-period rate mantissa into an APY percentage.
func (e *Engine) annualize(ratePerPeriod decimal.Decimal) decimal.Decimal {
	return fromMantissa(ratePerPeriod, mantissaDecimals).
		Mul(e.cfg.periodsPerYear()).
		Mul(hundred)
}

// perSecondRate converts a per-period rate mantissa into a per-second
// fraction, used when accruing revenue over an elapsed timestamp span.
func (e *Engine) perSecondRate(ratePerPeriod decimal.Decimal) decimal.Decimal {
	rate := fromMantissa(ratePerPeriod, mantissaDecimals)
	if e.cfg.RateBasis == RateBasisPerBlock {
		blocksPerDay := decimal.NewFromInt(e.cfg.BlocksPerDay)
		if blocksPerDay.IsZero() {
			return decimal.Zero
		}
		return rate.Mul(blocksPerDay).Div(decimal.NewFromInt(secondsPerDay))
	}
	return rate
}
