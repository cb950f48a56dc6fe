// Package engine is the market accrual and aggregation core: it
// consumes typed chain events and maintains market, protocol, snapshot
// and usage records in the entity store. Handlers run to completion,
// one event at a time, in chain order. Domain failures (missing
// entities, reverted reads) are absorbed here and never abort the
// event stream; only infrastructure failures propagate.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/openlend/lendsight/internal/chain"
	"github.com/openlend/lendsight/internal/entity"
	"github.com/openlend/lendsight/internal/event"
	"github.com/openlend/lendsight/internal/store"
	"github.com/openlend/lendsight/pkg/ebus"
)

type RateBasis string

const (
	RateBasisPerSecond RateBasis = "per_second"
	RateBasisPerBlock  RateBasis = "per_block"
)

// RewardStream names one reward emission the deployment tracks.
type RewardStream struct {
	Side  entity.RateSide
	Token string
}

// Config carries the per-deployment constants.
type Config struct {
	ControllerAddress   string
	ProtocolName        string
	ProtocolSlug        string
	Network             string
	NativeTokenDecimals int32
	SecondsPerYear      int64
	BlocksPerDay        int64
	RateBasis           RateBasis
	RewardStreams       []RewardStream
}

func (c Config) periodsPerYear() decimal.Decimal {
	if c.RateBasis == RateBasisPerBlock {
		return decimal.NewFromInt(c.BlocksPerDay * 365)
	}
	return decimal.NewFromInt(c.SecondsPerYear)
}

type Engine struct {
	store  store.Store
	reader chain.Reader
	bus    *ebus.EBus
	cfg    Config
	log    *slog.Logger
}

func New(st store.Store, rd chain.Reader, bus *ebus.EBus, cfg Config, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		store:  st,
		reader: rd,
		bus:    bus,
		cfg:    cfg,
		log:    log,
	}
}

// Stats exposes the current per-market headline numbers for the
// watcher and the web stream.
func (e *Engine) Stats(ctx context.Context) (map[string]event.MarketStats, error) {
	protocol, err := e.store.Protocol(ctx, e.cfg.ControllerAddress)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return map[string]event.MarketStats{}, nil
		}
		return nil, fmt.Errorf("load protocol: %w", err)
	}

	stats := make(map[string]event.MarketStats, len(protocol.MarketIDs))
	for _, id := range protocol.MarketIDs {
		market, err := e.store.Market(ctx, id)
		if err != nil {
			continue
		}
		ms := event.MarketStats{
			TotalValueLockedUSD:   market.TotalValueLockedUSD,
			TotalBorrowBalanceUSD: market.TotalBorrowBalanceUSD,
			CumulativeDepositUSD:  market.CumulativeDepositUSD,
		}
		if r, err := e.store.Rate(ctx, market.LenderRateID); err == nil {
			ms.LenderRate = r.Rate
		}
		if r, err := e.store.Rate(ctx, market.BorrowerRateID); err == nil {
			ms.BorrowerRate = r.Rate
		}
		stats[id] = ms
	}
	return stats, nil
}
