package engine

import (
	"context"

	"github.com/openlend/lendsight/internal/entity"
	"github.com/openlend/lendsight/internal/observability"
)

// updateRewards refreshes every configured reward emission on the
// market from the current on-chain speeds. A reverted speed read
// leaves the stream's previous emission in place.
func (e *Engine) updateRewards(ctx context.Context, market *entity.Market) {
	if market.RewardEmissions == nil {
		market.RewardEmissions = map[entity.RewardKey]entity.RewardEmission{}
	}
	for _, stream := range e.cfg.RewardStreams {
		speed := e.reader.RewardSpeed(ctx, string(stream.Side), stream.Token, market.ID)
		if speed.Reverted {
			e.log.Warn("reward speed read reverted",
				"market", market.ID,
				"side", stream.Side,
				"token", stream.Token,
			)
			observability.RevertedReads.WithLabelValues("rewardSpeed").Inc()
			continue
		}

		key := entity.RewardKey{Side: stream.Side, Token: stream.Token}
		emission := entity.RewardEmission{
			Amount: speed.Value.Mul(e.cfg.periodsPerYear()),
		}
		if token, err := e.store.Token(ctx, stream.Token); err == nil {
			emission.AmountUSD = fromMantissa(emission.Amount, token.Decimals).Mul(token.LastPriceUSD)
		} else {
			emission.AmountUSD = market.RewardEmissions[key].AmountUSD
		}
		market.RewardEmissions[key] = emission
	}
}
