package engine

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/openlend/lendsight/internal/chain"
	"github.com/openlend/lendsight/internal/entity"
	"github.com/openlend/lendsight/internal/event"
)

// listAndSeed registers the test market and installs a full read set:
// 1 USD price, 0.02 exchange rate, 500 underlying units borrowed and
// per-second rates of 5e-9 supply and 1e-8 borrow.
func listAndSeed(t *testing.T, underlyingDecimals int32) (*Engine, *chain.StaticReader) {
	t.Helper()
	eng, reader := newTestEngine()
	seedMarket(reader, underlyingDecimals)

	reader.SetPrice(testMarket, decimal.New(1, 36-underlyingDecimals))
	reader.SetExchangeRate(testMarket, decimal.New(2, mantissaDecimals+underlyingDecimals-8-2))
	reader.SetSupplyRate(testMarket, decimal.New(5, 9))
	reader.SetBorrowRate(testMarket, decimal.New(1, 10))
	reader.SetTotalSupply(testMarket, decimal.New(1, 13))
	reader.SetTotalBorrows(testMarket, decimal.New(5, underlyingDecimals+2))

	err := eng.HandleMarketListed(context.Background(), event.MarketListed{Block: block(1, 1000), Market: testMarket})
	assert.NoError(t, err)
	return eng, reader
}

func TestAccrueUpdatesMarketState(t *testing.T) {
	eng, _ := listAndSeed(t, 6)
	ctx := context.Background()

	err := eng.HandleAccrueInterest(ctx, event.AccrueInterest{Block: block(10, 2000), Market: testMarket})
	assert.NoError(t, err)

	market, err := eng.store.Market(ctx, testMarket)
	assert.NoError(t, err)
	assertDecimal(t, "1", market.InputTokenPriceUSD)
	assertDecimal(t, "0.02", market.ExchangeRate)
	assertDecimal(t, "0.02", market.OutputTokenPriceUSD)
	assertDecimal(t, "500", market.TotalBorrowBalanceUSD)
	assertDecimal(t, "0", market.TotalValueLockedUSD)
	assert.Equal(t, int64(2000), market.AccrualTimestamp)

	lender, err := eng.store.Rate(ctx, market.LenderRateID)
	assert.NoError(t, err)
	assertDecimal(t, "15.768", lender.Rate)
	borrower, err := eng.store.Rate(ctx, market.BorrowerRateID)
	assert.NoError(t, err)
	assertDecimal(t, "31.536", borrower.Rate)

	// 500 USD borrowed for 1000s at 1e-8 per second
	assertDecimal(t, "0.005", market.CumulativeTotalRevenueUSD)
	assertDecimal(t, "0.0005", market.CumulativeProtocolSideRevenueUSD)
	assertDecimal(t, "0.0045", market.CumulativeSupplySideRevenueUSD)

	token, err := eng.store.Token(ctx, testUnderlying)
	assert.NoError(t, err)
	assertDecimal(t, "1", token.LastPriceUSD)
	assert.Equal(t, int64(10), token.LastPriceBlock)
}

func TestAccrueAfterDepositTracksTVL(t *testing.T) {
	eng, _ := listAndSeed(t, 6)
	ctx := context.Background()

	assert.NoError(t, eng.HandleAccrueInterest(ctx, event.AccrueInterest{Block: block(10, 2000), Market: testMarket}))
	assert.NoError(t, eng.HandleMint(ctx, event.Mint{
		Block: block(15, 2500), Market: testMarket, Minter: "0xalice",
		Amount: decimal.New(1, 9), TxHash: "0xaaa", LogIndex: 0,
	}))
	assert.NoError(t, eng.HandleAccrueInterest(ctx, event.AccrueInterest{Block: block(20, 3000), Market: testMarket}))

	market, err := eng.store.Market(ctx, testMarket)
	assert.NoError(t, err)
	assertDecimal(t, "1000", market.TotalValueLockedUSD)
	assertDecimal(t, "1000", market.TotalDepositBalanceUSD)
	// 0.005 from the first span plus 0.0025 from the 500s second span
	assertDecimal(t, "0.0075", market.CumulativeTotalRevenueUSD)

	protocol, err := eng.store.Protocol(ctx, testController)
	assert.NoError(t, err)
	assertDecimal(t, "1000", protocol.TotalValueLockedUSD)
	assertDecimal(t, "500", protocol.TotalBorrowBalanceUSD)
	assertDecimal(t, "1000", protocol.CumulativeDepositUSD)
	assertDecimal(t, "0.0075", protocol.CumulativeTotalRevenueUSD)

	fin, err := eng.store.FinancialsSnapshot(ctx, dailyBucketID(3000))
	assert.NoError(t, err)
	assertDecimal(t, "1000", fin.DailyDepositUSD)
	assertDecimal(t, "0.0075", fin.DailyTotalRevenueUSD)
	assertDecimal(t, "0.00075", fin.DailyProtocolSideRevenueUSD)
	assertDecimal(t, "0.00675", fin.DailySupplySideRevenueUSD)
	assert.Equal(t, int64(20), fin.BlockNumber)
}

func TestAccrueStaleTimestampIsNoop(t *testing.T) {
	eng, _ := listAndSeed(t, 6)
	ctx := context.Background()

	assert.NoError(t, eng.HandleAccrueInterest(ctx, event.AccrueInterest{Block: block(10, 2000), Market: testMarket}))
	before, err := eng.store.Market(ctx, testMarket)
	assert.NoError(t, err)

	assert.NoError(t, eng.HandleAccrueInterest(ctx, event.AccrueInterest{Block: block(11, 2000), Market: testMarket}))
	assert.NoError(t, eng.HandleAccrueInterest(ctx, event.AccrueInterest{Block: block(12, 1500), Market: testMarket}))

	after, err := eng.store.Market(ctx, testMarket)
	assert.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAccrueRevertedPriceKeepsLastPrice(t *testing.T) {
	eng, reader := listAndSeed(t, 6)
	ctx := context.Background()

	assert.NoError(t, eng.HandleAccrueInterest(ctx, event.AccrueInterest{Block: block(10, 2000), Market: testMarket}))
	assert.NoError(t, eng.HandleMint(ctx, event.Mint{
		Block: block(15, 2500), Market: testMarket, Minter: "0xalice",
		Amount: decimal.New(1, 9), TxHash: "0xaaa", LogIndex: 0,
	}))

	reader.ClearPrice(testMarket)
	assert.NoError(t, eng.HandleAccrueInterest(ctx, event.AccrueInterest{Block: block(20, 3000), Market: testMarket}))

	market, err := eng.store.Market(ctx, testMarket)
	assert.NoError(t, err)
	assertDecimal(t, "1", market.InputTokenPriceUSD)
	assertDecimal(t, "1000", market.TotalValueLockedUSD)
}

func TestAccrueMissingOutputTokenKeepsExchangeRate(t *testing.T) {
	eng, _ := newTestEngine()
	ctx := context.Background()

	// market whose output token record was never written
	assert.NoError(t, eng.store.PutToken(ctx, &entity.Token{
		ID: testUnderlying, Name: "Dai", Symbol: "DAI", Decimals: 6,
	}))
	assert.NoError(t, eng.store.PutMarket(ctx, &entity.Market{
		ID:              testMarket,
		InputToken:      testUnderlying,
		OutputToken:     testMarket,
		ExchangeRate:    decimal.RequireFromString("0.02"),
		RewardEmissions: map[entity.RewardKey]entity.RewardEmission{},
	}))

	err := eng.UpdateMarket(ctx, testMarket, 10, 2000, Readings{
		TotalSupply:     chain.Revert[decimal.Decimal](),
		ExchangeRate:    chain.Value(decimal.New(3, 16)),
		TotalBorrows:    chain.Revert[decimal.Decimal](),
		SupplyRate:      chain.Revert[decimal.Decimal](),
		BorrowRate:      chain.Revert[decimal.Decimal](),
		UnderlyingPrice: chain.Revert[decimal.Decimal](),
	})
	assert.NoError(t, err)

	market, err := eng.store.Market(ctx, testMarket)
	assert.NoError(t, err)
	assertDecimal(t, "0.02", market.ExchangeRate)
	assert.Equal(t, int64(2000), market.AccrualTimestamp)
}

func TestAccrueUnknownMarketAbsorbed(t *testing.T) {
	eng, _ := newTestEngine()
	err := eng.HandleAccrueInterest(context.Background(), event.AccrueInterest{Block: block(1, 1000), Market: "0xnope"})
	assert.NoError(t, err)
}

func TestRevenueSplitConserved(t *testing.T) {
	eng, _ := listAndSeed(t, 6)
	ctx := context.Background()

	assert.NoError(t, eng.HandleAccrueInterest(ctx, event.AccrueInterest{Block: block(10, 2000), Market: testMarket}))

	market, err := eng.store.Market(ctx, testMarket)
	assert.NoError(t, err)
	sum := market.CumulativeProtocolSideRevenueUSD.Add(market.CumulativeSupplySideRevenueUSD)
	assert.True(t, sum.Equal(market.CumulativeTotalRevenueUSD), "split %s != total %s", sum, market.CumulativeTotalRevenueUSD)
}
