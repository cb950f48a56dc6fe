package engine

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/openlend/lendsight/internal/chain"
	"github.com/openlend/lendsight/internal/entity"
	"github.com/openlend/lendsight/internal/event"
	"github.com/openlend/lendsight/internal/store/memory"
	"github.com/openlend/lendsight/pkg/ebus"
)

const (
	testController = "0xc0ffee"
	testMarket     = "0xcdai"
	testUnderlying = "0xdai"
)

func newTestEngine(streams ...RewardStream) (*Engine, *chain.StaticReader) {
	reader := chain.NewStaticReader()
	eng := New(memory.New(), reader, ebus.New(), Config{
		ControllerAddress:   testController,
		ProtocolName:        "Compound",
		ProtocolSlug:        "compound",
		Network:             "ETHEREUM",
		NativeTokenDecimals: 18,
		SecondsPerYear:      31536000,
		BlocksPerDay:        7200,
		RateBasis:           RateBasisPerSecond,
		RewardStreams:       streams,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return eng, reader
}

// seedMarket installs the reads a listing needs: metadata for both
// tokens, the underlying pointer and a 10% reserve factor.
func seedMarket(reader *chain.StaticReader, underlyingDecimals int32) {
	reader.SetTokenMetadata(testMarket, chain.TokenMetadata{
		Name: "Compound Dai", Symbol: "cDAI", Decimals: 8,
	})
	reader.SetTokenMetadata(testUnderlying, chain.TokenMetadata{
		Name: "Dai", Symbol: "DAI", Decimals: underlyingDecimals,
	})
	reader.SetUnderlying(testMarket, testUnderlying)
	reader.SetReserveFactor(testMarket, decimal.New(1, 17))
	reader.SetLiquidationIncentive(testController, decimal.New(108, 16))
}

func block(number, ts int64) event.Block {
	return event.Block{Number: number, Timestamp: ts}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(decimal.RequireFromString(want)), "want %s, got %s", want, got)
}

func TestMarketListedRegistersEverything(t *testing.T) {
	eng, reader := newTestEngine()
	seedMarket(reader, 18)
	ctx := context.Background()

	err := eng.HandleMarketListed(ctx, event.MarketListed{Block: block(1, 1000), Market: testMarket})
	assert.NoError(t, err)

	market, err := eng.store.Market(ctx, testMarket)
	assert.NoError(t, err)
	assert.Equal(t, testUnderlying, market.InputToken)
	assert.Equal(t, testMarket, market.OutputToken)
	assert.Equal(t, int64(1000), market.AccrualTimestamp)
	assertDecimal(t, "0.1", market.ReserveFactor)
	assertDecimal(t, "108", market.LiquidationPenalty)

	input, err := eng.store.Token(ctx, testUnderlying)
	assert.NoError(t, err)
	assert.Equal(t, "DAI", input.Symbol)
	assert.Equal(t, int32(18), input.Decimals)

	output, err := eng.store.Token(ctx, testMarket)
	assert.NoError(t, err)
	assert.Equal(t, "cDAI", output.Symbol)
	assert.Equal(t, int32(8), output.Decimals)

	lender, err := eng.store.Rate(ctx, market.LenderRateID)
	assert.NoError(t, err)
	assert.Equal(t, entity.RateSideLender, lender.Side)
	borrower, err := eng.store.Rate(ctx, market.BorrowerRateID)
	assert.NoError(t, err)
	assert.Equal(t, entity.RateSideBorrower, borrower.Side)

	protocol, err := eng.store.Protocol(ctx, testController)
	assert.NoError(t, err)
	assert.Equal(t, []string{testMarket}, protocol.MarketIDs)
	assertDecimal(t, "108", protocol.LiquidationIncentive)
}

func TestMarketListedIdempotent(t *testing.T) {
	eng, reader := newTestEngine()
	seedMarket(reader, 18)
	ctx := context.Background()

	ev := event.MarketListed{Block: block(1, 1000), Market: testMarket}
	assert.NoError(t, eng.HandleMarketListed(ctx, ev))
	assert.NoError(t, eng.HandleMarketListed(ctx, ev))

	protocol, err := eng.store.Protocol(ctx, testController)
	assert.NoError(t, err)
	assert.Len(t, protocol.MarketIDs, 1)
}

func TestMarketListedNoUnderlyingRegistersNativeMarket(t *testing.T) {
	eng, reader := newTestEngine()
	reader.SetTokenMetadata(testMarket, chain.TokenMetadata{Name: "Compound Ether", Symbol: "cETH", Decimals: 8})
	reader.SetTokenMetadata(nativeAssetID, chain.TokenMetadata{Name: "Ether", Symbol: "ETH"})
	ctx := context.Background()

	err := eng.HandleMarketListed(ctx, event.MarketListed{Block: block(1, 1000), Market: testMarket})
	assert.NoError(t, err)

	market, err := eng.store.Market(ctx, testMarket)
	assert.NoError(t, err)
	assert.Equal(t, nativeAssetID, market.InputToken)

	input, err := eng.store.Token(ctx, nativeAssetID)
	assert.NoError(t, err)
	assert.Equal(t, "ETH", input.Symbol)
	assert.Equal(t, int32(18), input.Decimals)

	protocol, err := eng.store.Protocol(ctx, testController)
	assert.NoError(t, err)
	assert.Equal(t, []string{testMarket}, protocol.MarketIDs)
}

func TestMarketListedUnknownMetadataFallsBack(t *testing.T) {
	eng, reader := newTestEngine()
	reader.SetUnderlying(testMarket, testUnderlying)
	ctx := context.Background()

	err := eng.HandleMarketListed(ctx, event.MarketListed{Block: block(1, 1000), Market: testMarket})
	assert.NoError(t, err)

	input, err := eng.store.Token(ctx, testUnderlying)
	assert.NoError(t, err)
	assert.Equal(t, "unknown", input.Name)
	assert.Equal(t, int32(0), input.Decimals)
}

func TestRiskParamHandlers(t *testing.T) {
	eng, reader := newTestEngine()
	seedMarket(reader, 18)
	ctx := context.Background()
	assert.NoError(t, eng.HandleMarketListed(ctx, event.MarketListed{Block: block(1, 1000), Market: testMarket}))

	err := eng.HandleNewCollateralFactor(ctx, event.NewCollateralFactor{
		Block: block(2, 1100), Market: testMarket, Mantissa: decimal.New(8, 17),
	})
	assert.NoError(t, err)

	err = eng.HandleNewReserveFactor(ctx, event.NewReserveFactor{
		Block: block(3, 1200), Market: testMarket, Mantissa: decimal.New(25, 16),
	})
	assert.NoError(t, err)

	err = eng.HandleNewLiquidationIncentive(ctx, event.NewLiquidationIncentive{
		Block: block(4, 1300), Mantissa: decimal.New(11, 17),
	})
	assert.NoError(t, err)

	err = eng.HandleNewPriceOracle(ctx, event.NewPriceOracle{
		Block: block(5, 1400), Oracle: "0x0racle",
	})
	assert.NoError(t, err)

	market, err := eng.store.Market(ctx, testMarket)
	assert.NoError(t, err)
	assertDecimal(t, "80", market.MaximumLTV)
	assertDecimal(t, "80", market.LiquidationThreshold)
	assertDecimal(t, "0.25", market.ReserveFactor)
	assertDecimal(t, "110", market.LiquidationPenalty)

	protocol, err := eng.store.Protocol(ctx, testController)
	assert.NoError(t, err)
	assertDecimal(t, "110", protocol.LiquidationIncentive)
	assert.Equal(t, "0x0racle", protocol.PriceOracle)
}

func TestRiskParamHandlersAbsorbUnknownMarket(t *testing.T) {
	eng, _ := newTestEngine()
	ctx := context.Background()

	err := eng.HandleNewReserveFactor(ctx, event.NewReserveFactor{
		Block: block(1, 1000), Market: "0xnope", Mantissa: decimal.New(1, 17),
	})
	assert.NoError(t, err)

	err = eng.HandleNewCollateralFactor(ctx, event.NewCollateralFactor{
		Block: block(1, 1000), Market: "0xnope", Mantissa: decimal.New(1, 17),
	})
	assert.NoError(t, err)
}
