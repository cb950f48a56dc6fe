package engine

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/openlend/lendsight/internal/entity"
	"github.com/openlend/lendsight/internal/event"
)

// priced lists the market and runs one accrual so user actions see a
// live price.
func priced(t *testing.T) *Engine {
	t.Helper()
	eng, _ := listAndSeed(t, 6)
	err := eng.HandleAccrueInterest(context.Background(), event.AccrueInterest{Block: block(10, 2000), Market: testMarket})
	assert.NoError(t, err)
	return eng
}

func TestMintRecordsPosition(t *testing.T) {
	eng := priced(t)
	ctx := context.Background()

	err := eng.HandleMint(ctx, event.Mint{
		Block: block(15, 2500), Market: testMarket, Minter: "0xalice",
		Amount: decimal.New(1, 9), TxHash: "0xaaa", LogIndex: 3,
	})
	assert.NoError(t, err)

	pos, err := eng.store.Position(ctx, "0xaaa-3")
	assert.NoError(t, err)
	assert.Equal(t, entity.PositionDeposit, pos.Kind)
	assert.Equal(t, "0xalice", pos.From)
	assert.Equal(t, testMarket, pos.To)
	assert.Equal(t, testUnderlying, pos.Asset)
	assertDecimal(t, "1000", pos.AmountUSD)

	market, err := eng.store.Market(ctx, testMarket)
	assert.NoError(t, err)
	assertDecimal(t, "1000000000", market.InputTokenBalance)
	assertDecimal(t, "1000", market.CumulativeDepositUSD)

	hourly, err := eng.store.MarketSnapshot(ctx, testMarket+"-"+hourlyBucketID(2500))
	assert.NoError(t, err)
	assertDecimal(t, "1000", hourly.DepositUSD)

	usage, err := eng.store.UsageSnapshot(ctx, dailyBucketID(2500))
	assert.NoError(t, err)
	assert.Equal(t, int64(1), usage.DepositCount)

	protocol, err := eng.store.Protocol(ctx, testController)
	assert.NoError(t, err)
	assertDecimal(t, "1000", protocol.CumulativeDepositUSD)
	assert.Equal(t, int64(1), protocol.CumulativeUniqueUsers)
}

func TestRedeemMovesBalanceOut(t *testing.T) {
	eng := priced(t)
	ctx := context.Background()

	assert.NoError(t, eng.HandleMint(ctx, event.Mint{
		Block: block(15, 2500), Market: testMarket, Minter: "0xalice",
		Amount: decimal.New(1, 9), TxHash: "0xaaa", LogIndex: 0,
	}))
	assert.NoError(t, eng.HandleRedeem(ctx, event.Redeem{
		Block: block(16, 2600), Market: testMarket, Redeemer: "0xalice",
		Amount: decimal.New(4, 8), TxHash: "0xbbb", LogIndex: 0,
	}))

	market, err := eng.store.Market(ctx, testMarket)
	assert.NoError(t, err)
	assertDecimal(t, "600000000", market.InputTokenBalance)
	// withdrawals do not move the deposit cumulative
	assertDecimal(t, "1000", market.CumulativeDepositUSD)

	pos, err := eng.store.Position(ctx, "0xbbb-0")
	assert.NoError(t, err)
	assert.Equal(t, entity.PositionWithdraw, pos.Kind)
	assert.Equal(t, testMarket, pos.From)
	assert.Equal(t, "0xalice", pos.To)
	assertDecimal(t, "400", pos.AmountUSD)
}

func TestBorrowAndRepay(t *testing.T) {
	eng := priced(t)
	ctx := context.Background()

	assert.NoError(t, eng.HandleBorrow(ctx, event.Borrow{
		Block: block(15, 2500), Market: testMarket, Borrower: "0xbob",
		Amount: decimal.New(2, 8), TxHash: "0xccc", LogIndex: 0,
	}))
	assert.NoError(t, eng.HandleRepayBorrow(ctx, event.RepayBorrow{
		Block: block(16, 2600), Market: testMarket, Payer: "0xbob",
		Amount: decimal.New(1, 8), TxHash: "0xddd", LogIndex: 0,
	}))

	market, err := eng.store.Market(ctx, testMarket)
	assert.NoError(t, err)
	assertDecimal(t, "200", market.CumulativeBorrowUSD)

	daily, err := eng.store.MarketSnapshot(ctx, testMarket+"-"+dailyBucketID(2600))
	assert.NoError(t, err)
	assertDecimal(t, "200", daily.BorrowUSD)
	assertDecimal(t, "100", daily.RepayUSD)

	usage, err := eng.store.UsageSnapshot(ctx, dailyBucketID(2600))
	assert.NoError(t, err)
	assert.Equal(t, int64(1), usage.BorrowCount)
	assert.Equal(t, int64(1), usage.RepayCount)
	assert.Equal(t, int64(1), usage.CumulativeUniqueUsers)
}

func TestLiquidateValuedAtOutputTokenPrice(t *testing.T) {
	eng := priced(t)
	ctx := context.Background()

	// 500 share tokens seized at the 0.02 USD output token price
	err := eng.HandleLiquidateBorrow(ctx, event.LiquidateBorrow{
		Block: block(15, 2500), Market: testMarket,
		Liquidator: "0xliq", Borrower: "0xbob",
		SeizeAmount: decimal.New(5, 10), TxHash: "0xeee", LogIndex: 1,
	})
	assert.NoError(t, err)

	pos, err := eng.store.Position(ctx, "0xeee-1")
	assert.NoError(t, err)
	assert.Equal(t, entity.PositionLiquidate, pos.Kind)
	assert.Equal(t, testMarket, pos.Asset)
	assert.Equal(t, "0xliq", pos.From)
	assert.Equal(t, "0xbob", pos.To)
	assertDecimal(t, "10", pos.AmountUSD)

	market, err := eng.store.Market(ctx, testMarket)
	assert.NoError(t, err)
	assertDecimal(t, "10", market.CumulativeLiquidateUSD)

	usage, err := eng.store.UsageSnapshot(ctx, dailyBucketID(2500))
	assert.NoError(t, err)
	assert.Equal(t, int64(1), usage.LiquidateCount)
}

func TestUserActionUnknownMarketAbsorbed(t *testing.T) {
	eng := priced(t)
	err := eng.HandleMint(context.Background(), event.Mint{
		Block: block(15, 2500), Market: "0xnope", Minter: "0xalice",
		Amount: decimal.New(1, 9), TxHash: "0xfff", LogIndex: 0,
	})
	assert.NoError(t, err)
}
