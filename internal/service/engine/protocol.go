package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/openlend/lendsight/internal/store"
)

// RecomputeProtocolTotals re-derives the protocol record by summing
// over all registered markets. Markets that fail to load are skipped
// so one bad entry cannot poison the totals.
func (e *Engine) RecomputeProtocolTotals(ctx context.Context) error {
	protocol, err := e.store.Protocol(ctx, e.cfg.ControllerAddress)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.log.Warn("protocol not found", "handler", "RecomputeProtocolTotals")
			return nil
		}
		return fmt.Errorf("load protocol: %w", err)
	}

	var (
		tvl, deposits, borrows             decimal.Decimal
		cumDeposit, cumBorrow, cumLiq      decimal.Decimal
		cumTotal, cumProtocol, cumSupply   decimal.Decimal
	)
	for _, id := range protocol.MarketIDs {
		market, err := e.store.Market(ctx, id)
		if err != nil {
			e.log.Warn("market skipped in totals", "market", id)
			continue
		}
		tvl = tvl.Add(market.TotalValueLockedUSD)
		deposits = deposits.Add(market.TotalDepositBalanceUSD)
		borrows = borrows.Add(market.TotalBorrowBalanceUSD)
		cumDeposit = cumDeposit.Add(market.CumulativeDepositUSD)
		cumBorrow = cumBorrow.Add(market.CumulativeBorrowUSD)
		cumLiq = cumLiq.Add(market.CumulativeLiquidateUSD)
		cumTotal = cumTotal.Add(market.CumulativeTotalRevenueUSD)
		cumProtocol = cumProtocol.Add(market.CumulativeProtocolSideRevenueUSD)
		cumSupply = cumSupply.Add(market.CumulativeSupplySideRevenueUSD)
	}

	protocol.TotalValueLockedUSD = tvl
	protocol.TotalDepositBalanceUSD = deposits
	protocol.TotalBorrowBalanceUSD = borrows
	protocol.CumulativeDepositUSD = cumDeposit
	protocol.CumulativeBorrowUSD = cumBorrow
	protocol.CumulativeLiquidateUSD = cumLiq
	protocol.CumulativeTotalRevenueUSD = cumTotal
	protocol.CumulativeProtocolSideRevenueUSD = cumProtocol
	protocol.CumulativeSupplySideRevenueUSD = cumSupply

	if err := e.store.PutProtocol(ctx, protocol); err != nil {
		return fmt.Errorf("store protocol: %w", err)
	}
	return nil
}
