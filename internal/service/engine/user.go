package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/openlend/lendsight/internal/entity"
	"github.com/openlend/lendsight/internal/event"
	"github.com/openlend/lendsight/internal/store"
)

// userAction carries the common shape of the five position handlers.
type userAction struct {
	kind     entity.PositionKind
	market   string
	from     string
	to       string
	amount   decimal.Decimal
	txHash   string
	logIndex int
	block    event.Block
}

// HandleMint records a deposit: underlying flows into the market and
// the depositor receives share tokens.
func (e *Engine) HandleMint(ctx context.Context, ev event.Mint) error {
	return e.applyUserAction(ctx, userAction{
		kind:     entity.PositionDeposit,
		market:   ev.Market,
		from:     ev.Minter,
		to:       ev.Market,
		amount:   ev.Amount,
		txHash:   ev.TxHash,
		logIndex: ev.LogIndex,
		block:    ev.Block,
	})
}

// HandleRedeem records a withdrawal of underlying from the market.
func (e *Engine) HandleRedeem(ctx context.Context, ev event.Redeem) error {
	return e.applyUserAction(ctx, userAction{
		kind:     entity.PositionWithdraw,
		market:   ev.Market,
		from:     ev.Market,
		to:       ev.Redeemer,
		amount:   ev.Amount,
		txHash:   ev.TxHash,
		logIndex: ev.LogIndex,
		block:    ev.Block,
	})
}

// HandleBorrow records underlying borrowed out of the market.
func (e *Engine) HandleBorrow(ctx context.Context, ev event.Borrow) error {
	return e.applyUserAction(ctx, userAction{
		kind:     entity.PositionBorrow,
		market:   ev.Market,
		from:     ev.Market,
		to:       ev.Borrower,
		amount:   ev.Amount,
		txHash:   ev.TxHash,
		logIndex: ev.LogIndex,
		block:    ev.Block,
	})
}

// HandleRepayBorrow records a borrow repayment.
func (e *Engine) HandleRepayBorrow(ctx context.Context, ev event.RepayBorrow) error {
	return e.applyUserAction(ctx, userAction{
		kind:     entity.PositionRepay,
		market:   ev.Market,
		from:     ev.Payer,
		to:       ev.Market,
		amount:   ev.Amount,
		txHash:   ev.TxHash,
		logIndex: ev.LogIndex,
		block:    ev.Block,
	})
}

// applyUserAction writes the position record, moves the market's
// balances and cumulatives, accumulates period volume and usage, and
// refreshes the financials snapshot. Amounts are valued at the
// market's current input token price.
func (e *Engine) applyUserAction(ctx context.Context, a userAction) error {
	protocol, err := e.store.Protocol(ctx, e.cfg.ControllerAddress)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.log.Warn("protocol not found", "handler", string(a.kind))
			return nil
		}
		return fmt.Errorf("load protocol: %w", err)
	}
	market, err := e.store.Market(ctx, a.market)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.log.Warn("market not found", "handler", string(a.kind), "market", a.market)
			return nil
		}
		return fmt.Errorf("load market: %w", err)
	}
	token, err := e.store.Token(ctx, market.InputToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.log.Warn("input token not found", "handler", string(a.kind), "token", market.InputToken)
			return nil
		}
		return fmt.Errorf("load input token: %w", err)
	}

	amountUSD := fromMantissa(a.amount, token.Decimals).Mul(market.InputTokenPriceUSD)
	position := &entity.PositionEvent{
		ID:          entity.PositionID(a.txHash, a.logIndex),
		Kind:        a.kind,
		Hash:        a.txHash,
		LogIndex:    a.logIndex,
		Protocol:    protocol.ID,
		Market:      market.ID,
		Asset:       market.InputToken,
		From:        a.from,
		To:          a.to,
		Amount:      a.amount,
		AmountUSD:   amountUSD,
		BlockNumber: a.block.Number,
		Timestamp:   a.block.Timestamp,
	}
	if err := e.store.PutPosition(ctx, position); err != nil {
		return fmt.Errorf("store position: %w", err)
	}

	switch a.kind {
	case entity.PositionDeposit:
		market.InputTokenBalance = market.InputTokenBalance.Add(a.amount)
		market.CumulativeDepositUSD = market.CumulativeDepositUSD.Add(amountUSD)
	case entity.PositionWithdraw:
		market.InputTokenBalance = market.InputTokenBalance.Sub(a.amount)
	case entity.PositionBorrow:
		market.CumulativeBorrowUSD = market.CumulativeBorrowUSD.Add(amountUSD)
	}
	if err := e.store.PutMarket(ctx, market); err != nil {
		return fmt.Errorf("store market: %w", err)
	}

	actor := a.from
	if a.kind == entity.PositionWithdraw || a.kind == entity.PositionBorrow {
		actor = a.to
	}
	return e.finishUserAction(ctx, market.ID, a.block, actor, amountUSD, a.kind)
}

// HandleLiquidateBorrow records a liquidation. The seized amount is
// denominated in the market's share token, so it is valued at the
// output token price rather than the underlying price.
func (e *Engine) HandleLiquidateBorrow(ctx context.Context, ev event.LiquidateBorrow) error {
	protocol, err := e.store.Protocol(ctx, e.cfg.ControllerAddress)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.log.Warn("protocol not found", "handler", "LiquidateBorrow")
			return nil
		}
		return fmt.Errorf("load protocol: %w", err)
	}
	market, err := e.store.Market(ctx, ev.Market)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.log.Warn("market not found", "handler", "LiquidateBorrow", "market", ev.Market)
			return nil
		}
		return fmt.Errorf("load market: %w", err)
	}
	output, err := e.store.Token(ctx, market.OutputToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.log.Warn("output token not found", "handler", "LiquidateBorrow", "token", market.OutputToken)
			return nil
		}
		return fmt.Errorf("load output token: %w", err)
	}

	amountUSD := fromMantissa(ev.SeizeAmount, output.Decimals).Mul(market.OutputTokenPriceUSD)
	position := &entity.PositionEvent{
		ID:          entity.PositionID(ev.TxHash, ev.LogIndex),
		Kind:        entity.PositionLiquidate,
		Hash:        ev.TxHash,
		LogIndex:    ev.LogIndex,
		Protocol:    protocol.ID,
		Market:      market.ID,
		Asset:       market.OutputToken,
		From:        ev.Liquidator,
		To:          ev.Borrower,
		Amount:      ev.SeizeAmount,
		AmountUSD:   amountUSD,
		BlockNumber: ev.Number,
		Timestamp:   ev.Timestamp,
	}
	if err := e.store.PutPosition(ctx, position); err != nil {
		return fmt.Errorf("store position: %w", err)
	}

	market.CumulativeLiquidateUSD = market.CumulativeLiquidateUSD.Add(amountUSD)
	if err := e.store.PutMarket(ctx, market); err != nil {
		return fmt.Errorf("store market: %w", err)
	}

	return e.finishUserAction(ctx, market.ID, ev.Block, ev.Liquidator, amountUSD, entity.PositionLiquidate)
}

func (e *Engine) finishUserAction(ctx context.Context, marketID string, block event.Block, actor string, amountUSD decimal.Decimal, kind entity.PositionKind) error {
	if err := e.RecomputeProtocolTotals(ctx); err != nil {
		return err
	}
	if err := e.AccumulateVolume(ctx, marketID, block.Timestamp, amountUSD, kind); err != nil {
		return err
	}
	if err := e.SnapshotFinancials(ctx, block.Number, block.Timestamp); err != nil {
		return err
	}
	return e.RecordUsage(ctx, block.Number, block.Timestamp, actor, kind)
}
