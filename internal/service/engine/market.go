package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/openlend/lendsight/internal/chain"
	"github.com/openlend/lendsight/internal/event"
	"github.com/openlend/lendsight/internal/observability"
	"github.com/openlend/lendsight/internal/store"
)

// Readings bundles the per-market chain reads taken at one accrual.
// Each field may independently be reverted; a reverted reading leaves
// the corresponding market field unchanged.
type Readings struct {
	TotalSupply     chain.CallResult[decimal.Decimal]
	ExchangeRate    chain.CallResult[decimal.Decimal]
	TotalBorrows    chain.CallResult[decimal.Decimal]
	SupplyRate      chain.CallResult[decimal.Decimal]
	BorrowRate      chain.CallResult[decimal.Decimal]
	UnderlyingPrice chain.CallResult[decimal.Decimal]
}

// HandleAccrueInterest refreshes one market from chain state, then
// re-derives protocol totals and the market and financials snapshots.
// An accrual at or before the market's last accrual timestamp is
// silently dropped.
func (e *Engine) HandleAccrueInterest(ctx context.Context, ev event.AccrueInterest) error {
	market, err := e.store.Market(ctx, ev.Market)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.log.Warn("market not found", "handler", "AccrueInterest", "market", ev.Market)
			return nil
		}
		return fmt.Errorf("load market: %w", err)
	}
	if ev.Timestamp <= market.AccrualTimestamp {
		return nil
	}

	protocol, err := e.store.Protocol(ctx, e.cfg.ControllerAddress)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.log.Warn("protocol not found", "handler", "AccrueInterest")
			return nil
		}
		return fmt.Errorf("load protocol: %w", err)
	}

	readings := Readings{
		TotalSupply:     e.reader.TotalSupply(ctx, ev.Market),
		ExchangeRate:    e.reader.ExchangeRateStored(ctx, ev.Market),
		TotalBorrows:    e.reader.TotalBorrows(ctx, ev.Market),
		SupplyRate:      e.reader.SupplyRate(ctx, ev.Market),
		BorrowRate:      e.reader.BorrowRate(ctx, ev.Market),
		UnderlyingPrice: e.reader.UnderlyingPrice(ctx, protocol.PriceOracle, ev.Market),
	}
	if err := e.UpdateMarket(ctx, ev.Market, ev.Number, ev.Timestamp, readings); err != nil {
		return err
	}
	if err := e.RecomputeProtocolTotals(ctx); err != nil {
		return err
	}
	if err := e.SnapshotMarket(ctx, ev.Market, ev.Number, ev.Timestamp); err != nil {
		return err
	}
	return e.SnapshotFinancials(ctx, ev.Number, ev.Timestamp)
}

// UpdateMarket rewrites a market's point-in-time state from the given
// readings and accrues revenue for the elapsed span. Reverted readings
// keep the previous value; in particular a reverted price read leaves
// the last known price in force.
func (e *Engine) UpdateMarket(ctx context.Context, marketID string, blockNumber, blockTimestamp int64, r Readings) error {
	market, err := e.store.Market(ctx, marketID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.log.Warn("market not found", "handler", "UpdateMarket", "market", marketID)
			return nil
		}
		return fmt.Errorf("load market: %w", err)
	}
	if blockTimestamp <= market.AccrualTimestamp {
		return nil
	}
	token, err := e.store.Token(ctx, market.InputToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.log.Warn("input token not found", "market", marketID, "token", market.InputToken)
			return nil
		}
		return fmt.Errorf("load input token: %w", err)
	}

	price := market.InputTokenPriceUSD
	if r.UnderlyingPrice.Reverted {
		e.log.Warn("price read reverted, keeping last price", "market", marketID, "price", price)
		observability.RevertedReads.WithLabelValues("underlyingPrice").Inc()
	} else {
		price = priceFromOracle(r.UnderlyingPrice.Value, token.Decimals)
		token.LastPriceUSD = price
		token.LastPriceBlock = blockNumber
		if err := e.store.PutToken(ctx, token); err != nil {
			return fmt.Errorf("store input token: %w", err)
		}
	}
	market.InputTokenPriceUSD = price

	if r.TotalSupply.Reverted {
		observability.RevertedReads.WithLabelValues("totalSupply").Inc()
	} else {
		market.OutputTokenSupply = r.TotalSupply.Value
	}

	depositUSD := fromMantissa(market.InputTokenBalance, token.Decimals).Mul(price)
	market.TotalValueLockedUSD = depositUSD
	market.TotalDepositBalanceUSD = depositUSD

	if r.ExchangeRate.Reverted {
		observability.RevertedReads.WithLabelValues("exchangeRateStored").Inc()
	} else {
		output, err := e.store.Token(ctx, market.OutputToken)
		switch {
		case err == nil:
			rate := exchangeRateFromMantissa(r.ExchangeRate.Value, token.Decimals, output.Decimals)
			market.ExchangeRate = rate
			market.OutputTokenPriceUSD = rate.Mul(price)
		case errors.Is(err, store.ErrNotFound):
			e.log.Warn("output token not found", "market", marketID, "token", market.OutputToken)
		default:
			return fmt.Errorf("load output token: %w", err)
		}
	}

	if r.TotalBorrows.Reverted {
		observability.RevertedReads.WithLabelValues("totalBorrows").Inc()
	} else {
		market.TotalBorrowBalanceUSD = fromMantissa(r.TotalBorrows.Value, token.Decimals).Mul(price)
	}

	if r.SupplyRate.Reverted {
		observability.RevertedReads.WithLabelValues("supplyRatePerPeriod").Inc()
	} else if err := e.setRate(ctx, market.LenderRateID, e.annualize(r.SupplyRate.Value)); err != nil {
		return err
	}
	if r.BorrowRate.Reverted {
		observability.RevertedReads.WithLabelValues("borrowRatePerPeriod").Inc()
	} else {
		if err := e.setRate(ctx, market.BorrowerRateID, e.annualize(r.BorrowRate.Value)); err != nil {
			return err
		}
	}

	if !r.TotalBorrows.Reverted && !r.BorrowRate.Reverted {
		elapsed := decimal.NewFromInt(blockTimestamp - market.AccrualTimestamp)
		totalDelta := market.TotalBorrowBalanceUSD.
			Mul(e.perSecondRate(r.BorrowRate.Value)).
			Mul(elapsed)
		protocolDelta := totalDelta.Mul(market.ReserveFactor)
		supplyDelta := totalDelta.Sub(protocolDelta)

		market.CumulativeTotalRevenueUSD = market.CumulativeTotalRevenueUSD.Add(totalDelta)
		market.CumulativeProtocolSideRevenueUSD = market.CumulativeProtocolSideRevenueUSD.Add(protocolDelta)
		market.CumulativeSupplySideRevenueUSD = market.CumulativeSupplySideRevenueUSD.Add(supplyDelta)

		if err := e.accumulateRevenue(ctx, market, blockTimestamp, totalDelta, protocolDelta, supplyDelta); err != nil {
			return err
		}
	}

	if len(e.cfg.RewardStreams) > 0 {
		e.updateRewards(ctx, market)
	}

	market.AccrualTimestamp = blockTimestamp
	if err := e.store.PutMarket(ctx, market); err != nil {
		return fmt.Errorf("store market: %w", err)
	}
	return nil
}

func (e *Engine) setRate(ctx context.Context, rateID string, value decimal.Decimal) error {
	rate, err := e.store.Rate(ctx, rateID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.log.Warn("rate not found", "rate", rateID)
			return nil
		}
		return fmt.Errorf("load rate: %w", err)
	}
	rate.Rate = value
	if err := e.store.PutRate(ctx, rate); err != nil {
		return fmt.Errorf("store rate: %w", err)
	}
	return nil
}
