package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/openlend/lendsight/internal/chain"
	"github.com/openlend/lendsight/internal/entity"
	"github.com/openlend/lendsight/internal/event"
	"github.com/openlend/lendsight/internal/observability"
	"github.com/openlend/lendsight/internal/store"
)

// Markets for the chain's native asset carry no underlying() method,
// the read reverts on them. Such markets are keyed to the zero address
// and take their decimals from deployment configuration.
const nativeAssetID = "0x0000000000000000000000000000000000000000"

func (e *Engine) getOrCreateProtocol(ctx context.Context) (*entity.LendingProtocol, error) {
	protocol, err := e.store.Protocol(ctx, e.cfg.ControllerAddress)
	if err == nil {
		return protocol, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load protocol: %w", err)
	}

	protocol = &entity.LendingProtocol{
		ID:      e.cfg.ControllerAddress,
		Name:    e.cfg.ProtocolName,
		Slug:    e.cfg.ProtocolSlug,
		Network: e.cfg.Network,
	}
	incentive := e.reader.LiquidationIncentiveMantissa(ctx, e.cfg.ControllerAddress)
	if incentive.Reverted {
		e.log.Warn("liquidation incentive read reverted", "protocol", protocol.ID)
		observability.RevertedReads.WithLabelValues("liquidationIncentiveMantissa").Inc()
	} else {
		protocol.LiquidationIncentive = fromMantissa(incentive.Value, mantissaDecimals).Mul(hundred)
	}
	if err := e.store.PutProtocol(ctx, protocol); err != nil {
		return nil, fmt.Errorf("store protocol: %w", err)
	}
	return protocol, nil
}

// HandleMarketListed registers a newly listed market together with its
// input and output tokens and its two interest rate records. A repeat
// listing of a known market is a no-op.
func (e *Engine) HandleMarketListed(ctx context.Context, ev event.MarketListed) error {
	if _, err := e.store.Token(ctx, ev.Market); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("load output token: %w", err)
	}

	protocol, err := e.getOrCreateProtocol(ctx)
	if err != nil {
		return err
	}

	underlying := e.reader.Underlying(ctx, ev.Market)
	underlyingID := underlying.Value
	var inputMeta chain.TokenMetadata
	if underlying.Reverted {
		observability.RevertedReads.WithLabelValues("underlying").Inc()
		e.log.Info("no underlying, registering native asset market", "market", ev.Market)
		underlyingID = nativeAssetID
		inputMeta = e.readTokenMetadata(ctx, nativeAssetID)
		inputMeta.Decimals = e.cfg.NativeTokenDecimals
	} else {
		inputMeta = e.readTokenMetadata(ctx, underlying.Value)
	}

	outputMeta := e.readTokenMetadata(ctx, ev.Market)

	outputToken := &entity.Token{
		ID:       ev.Market,
		Name:     outputMeta.Name,
		Symbol:   outputMeta.Symbol,
		Decimals: outputMeta.Decimals,
	}
	if err := e.store.PutToken(ctx, outputToken); err != nil {
		return fmt.Errorf("store output token: %w", err)
	}
	inputToken := &entity.Token{
		ID:       underlyingID,
		Name:     inputMeta.Name,
		Symbol:   inputMeta.Symbol,
		Decimals: inputMeta.Decimals,
	}
	if err := e.store.PutToken(ctx, inputToken); err != nil {
		return fmt.Errorf("store input token: %w", err)
	}

	lenderRate := &entity.InterestRate{
		ID:     entity.RateID(entity.RateSideLender, entity.RateTypeVariable, ev.Market),
		Side:   entity.RateSideLender,
		Type:   entity.RateTypeVariable,
		Market: ev.Market,
	}
	borrowerRate := &entity.InterestRate{
		ID:     entity.RateID(entity.RateSideBorrower, entity.RateTypeVariable, ev.Market),
		Side:   entity.RateSideBorrower,
		Type:   entity.RateTypeVariable,
		Market: ev.Market,
	}
	if err := e.store.PutRate(ctx, lenderRate); err != nil {
		return fmt.Errorf("store lender rate: %w", err)
	}
	if err := e.store.PutRate(ctx, borrowerRate); err != nil {
		return fmt.Errorf("store borrower rate: %w", err)
	}

	market := &entity.Market{
		ID:                 ev.Market,
		Name:               outputMeta.Name,
		Protocol:           protocol.ID,
		InputToken:         underlyingID,
		OutputToken:        ev.Market,
		LenderRateID:       lenderRate.ID,
		BorrowerRateID:     borrowerRate.ID,
		LiquidationPenalty: protocol.LiquidationIncentive,
		RewardEmissions:    map[entity.RewardKey]entity.RewardEmission{},
		CreatedBlock:       ev.Number,
		CreatedTimestamp:   ev.Timestamp,
		AccrualTimestamp:   ev.Timestamp,
	}
	reserve := e.reader.ReserveFactorMantissa(ctx, ev.Market)
	if reserve.Reverted {
		e.log.Warn("reserve factor read reverted", "market", ev.Market)
		observability.RevertedReads.WithLabelValues("reserveFactorMantissa").Inc()
	} else {
		market.ReserveFactor = fromMantissa(reserve.Value, mantissaDecimals)
	}
	if err := e.store.PutMarket(ctx, market); err != nil {
		return fmt.Errorf("store market: %w", err)
	}

	protocol.MarketIDs = append(protocol.MarketIDs, ev.Market)
	if err := e.store.PutProtocol(ctx, protocol); err != nil {
		return fmt.Errorf("store protocol: %w", err)
	}

	observability.MarketsListed.Inc()
	e.log.Info("market listed",
		"market", ev.Market,
		"symbol", outputMeta.Symbol,
		"underlying", underlyingID,
	)
	return nil
}

func (e *Engine) readTokenMetadata(ctx context.Context, token string) chain.TokenMetadata {
	meta := e.reader.TokenMetadata(ctx, token)
	if meta.Reverted {
		e.log.Warn("token metadata read reverted", "token", token)
		observability.RevertedReads.WithLabelValues("tokenMetadata").Inc()
		return chain.TokenMetadata{Name: "unknown", Symbol: "unknown"}
	}
	return meta.Value
}

// HandleNewReserveFactor updates the share of borrow interest routed
// to protocol reserves.
func (e *Engine) HandleNewReserveFactor(ctx context.Context, ev event.NewReserveFactor) error {
	market, err := e.store.Market(ctx, ev.Market)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.log.Warn("market not found", "handler", "NewReserveFactor", "market", ev.Market)
			return nil
		}
		return fmt.Errorf("load market: %w", err)
	}
	market.ReserveFactor = fromMantissa(ev.Mantissa, mantissaDecimals)
	if err := e.store.PutMarket(ctx, market); err != nil {
		return fmt.Errorf("store market: %w", err)
	}
	return nil
}

// HandleNewCollateralFactor sets a market's maximum LTV and
// liquidation threshold, both expressed as percentages. The two
// track the same on-chain factor.
func (e *Engine) HandleNewCollateralFactor(ctx context.Context, ev event.NewCollateralFactor) error {
	market, err := e.store.Market(ctx, ev.Market)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.log.Warn("market not found", "handler", "NewCollateralFactor", "market", ev.Market)
			return nil
		}
		return fmt.Errorf("load market: %w", err)
	}
	factor := fromMantissa(ev.Mantissa, mantissaDecimals).Mul(hundred)
	market.MaximumLTV = factor
	market.LiquidationThreshold = factor
	if err := e.store.PutMarket(ctx, market); err != nil {
		return fmt.Errorf("store market: %w", err)
	}
	return nil
}

// HandleNewLiquidationIncentive stores the protocol-wide incentive and
// propagates it to every known market's liquidation penalty.
func (e *Engine) HandleNewLiquidationIncentive(ctx context.Context, ev event.NewLiquidationIncentive) error {
	protocol, err := e.getOrCreateProtocol(ctx)
	if err != nil {
		return err
	}
	incentive := fromMantissa(ev.Mantissa, mantissaDecimals).Mul(hundred)
	protocol.LiquidationIncentive = incentive
	if err := e.store.PutProtocol(ctx, protocol); err != nil {
		return fmt.Errorf("store protocol: %w", err)
	}
	for _, id := range protocol.MarketIDs {
		market, err := e.store.Market(ctx, id)
		if err != nil {
			e.log.Warn("market not found while updating penalty", "market", id)
			continue
		}
		market.LiquidationPenalty = incentive
		if err := e.store.PutMarket(ctx, market); err != nil {
			return fmt.Errorf("store market: %w", err)
		}
	}
	return nil
}

// HandleNewPriceOracle repoints subsequent price reads at a new oracle.
func (e *Engine) HandleNewPriceOracle(ctx context.Context, ev event.NewPriceOracle) error {
	protocol, err := e.getOrCreateProtocol(ctx)
	if err != nil {
		return err
	}
	protocol.PriceOracle = ev.Oracle
	if err := e.store.PutProtocol(ctx, protocol); err != nil {
		return fmt.Errorf("store protocol: %w", err)
	}
	return nil
}
