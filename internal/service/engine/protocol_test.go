package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openlend/lendsight/internal/event"
)

func TestRecomputeTotalsSkipsUnloadableMarket(t *testing.T) {
	eng, _ := listAndSeed(t, 6)
	ctx := context.Background()

	assert.NoError(t, eng.HandleAccrueInterest(ctx, event.AccrueInterest{Block: block(10, 2000), Market: testMarket}))

	protocol, err := eng.store.Protocol(ctx, testController)
	assert.NoError(t, err)
	protocol.MarketIDs = append(protocol.MarketIDs, "0xghost")
	assert.NoError(t, eng.store.PutProtocol(ctx, protocol))

	assert.NoError(t, eng.RecomputeProtocolTotals(ctx))

	protocol, err = eng.store.Protocol(ctx, testController)
	assert.NoError(t, err)
	assertDecimal(t, "500", protocol.TotalBorrowBalanceUSD)
	assertDecimal(t, "0.005", protocol.CumulativeTotalRevenueUSD)
	assertDecimal(t, "0.0005", protocol.CumulativeProtocolSideRevenueUSD)
	assertDecimal(t, "0.0045", protocol.CumulativeSupplySideRevenueUSD)
}
