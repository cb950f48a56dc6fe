package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/openlend/lendsight/internal/entity"
	"github.com/openlend/lendsight/internal/store"
)

func TestNotFound(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.Market(ctx, "0xmissing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Token(ctx, "0xmissing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.FinancialsSnapshot(ctx, "19000")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Account(ctx, "0xmissing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	market := &entity.Market{
		ID:                 "0xmkt",
		InputToken:         "0xdai",
		InputTokenPriceUSD: decimal.NewFromInt(1),
		RewardEmissions:    map[entity.RewardKey]entity.RewardEmission{},
	}
	assert.NoError(t, s.PutMarket(ctx, market))

	got, err := s.Market(ctx, "0xmkt")
	assert.NoError(t, err)
	assert.Equal(t, market, got)
}

func TestCopySemantics(t *testing.T) {
	s := New()
	ctx := context.Background()

	market := &entity.Market{
		ID:              "0xmkt",
		RewardEmissions: map[entity.RewardKey]entity.RewardEmission{},
	}
	assert.NoError(t, s.PutMarket(ctx, market))

	// mutating the caller's copy must not leak into the store
	market.InputToken = "0xchanged"
	market.RewardEmissions[entity.RewardKey{Side: entity.RateSideLender, Token: "0xcomp"}] = entity.RewardEmission{}

	got, err := s.Market(ctx, "0xmkt")
	assert.NoError(t, err)
	assert.Equal(t, "", got.InputToken)
	assert.Empty(t, got.RewardEmissions)

	// and mutating a read copy must not leak either
	got.InputToken = "0xother"
	again, err := s.Market(ctx, "0xmkt")
	assert.NoError(t, err)
	assert.Equal(t, "", again.InputToken)
}

func TestProtocolMarketIDsCopied(t *testing.T) {
	s := New()
	ctx := context.Background()

	protocol := &entity.LendingProtocol{ID: "0xctrl", MarketIDs: []string{"0xa"}}
	assert.NoError(t, s.PutProtocol(ctx, protocol))

	protocol.MarketIDs = append(protocol.MarketIDs, "0xb")

	got, err := s.Protocol(ctx, "0xctrl")
	assert.NoError(t, err)
	assert.Equal(t, []string{"0xa"}, got.MarketIDs)
}
