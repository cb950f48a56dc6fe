package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/IBM/sarama"

	"github.com/openlend/lendsight/config"
	"github.com/openlend/lendsight/internal/chain"
	"github.com/openlend/lendsight/internal/entity"
	"github.com/openlend/lendsight/internal/event"
	"github.com/openlend/lendsight/internal/repository"
	"github.com/openlend/lendsight/internal/service/consumer"
	"github.com/openlend/lendsight/internal/service/engine"
	"github.com/openlend/lendsight/internal/service/interrupter"
	"github.com/openlend/lendsight/internal/service/simulator"
	"github.com/openlend/lendsight/internal/service/watcher"
	"github.com/openlend/lendsight/internal/service/web"
	"github.com/openlend/lendsight/internal/store/memory"
	"github.com/openlend/lendsight/pkg/app"
	"github.com/openlend/lendsight/pkg/ebus"
	"github.com/openlend/lendsight/pkg/utils"
)

func main() {
	configPath := flag.String("config", "", "path to yaml config")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(log)

	cfg := utils.Must(config.Load(*configPath))
	eBus := ebus.New()

	kafkaCl := utils.Must(sarama.NewClient(cfg.Kafka.Brokers, cfg.Kafka.SaramaConfig()))
	defer kafkaCl.Close()
	prod := utils.Must(sarama.NewSyncProducerFromClient(kafkaCl))
	defer prod.Close()

	eventsRepo := repository.NewEvents(prod, cfg.Kafka.EventTopic)
	snapshotsRepo := repository.NewSnapshots(prod, cfg.Kafka.FinancialsTopic)

	reader := chain.NewStaticReader()
	streams := make([]engine.RewardStream, 0, len(cfg.Deployment.RewardStreams))
	for _, s := range cfg.Deployment.RewardStreams {
		streams = append(streams, engine.RewardStream{
			Side:  entity.RateSide(s.Side),
			Token: s.Token,
		})
	}
	core := engine.New(memory.New(), reader, eBus, engine.Config{
		ControllerAddress:   cfg.Deployment.ControllerAddress,
		ProtocolName:        cfg.Deployment.ProtocolName,
		ProtocolSlug:        cfg.Deployment.ProtocolSlug,
		Network:             cfg.Deployment.Network,
		NativeTokenDecimals: cfg.Deployment.NativeTokenDecimals,
		SecondsPerYear:      cfg.Deployment.SecondsPerYear,
		BlocksPerDay:        cfg.Deployment.BlocksPerDay,
		RateBasis:           engine.RateBasis(cfg.Deployment.RateBasis),
		RewardStreams:       streams,
	}, log)

	cons := utils.Must(consumer.NewConsumer(kafkaCl, cfg.Kafka.EventTopic, cfg.Kafka.EventGroup, eBus))
	webServ := web.New(cfg.Web.Addr)
	watch := watcher.NewWatcher(eBus).
		EmitEvery(time.Second, func(ctx context.Context) (any, error) {
			stats, err := core.Stats(ctx)
			if err != nil {
				return nil, err
			}
			return event.StatsUpdated{Markets: stats}, nil
		})

	eBus.
		Subscribe(event.MarketListed{}, ebus.Typed(core.HandleMarketListed)).
		Subscribe(event.AccrueInterest{}, ebus.Typed(core.HandleAccrueInterest)).
		Subscribe(event.Mint{}, ebus.Typed(core.HandleMint)).
		Subscribe(event.Redeem{}, ebus.Typed(core.HandleRedeem)).
		Subscribe(event.Borrow{}, ebus.Typed(core.HandleBorrow)).
		Subscribe(event.RepayBorrow{}, ebus.Typed(core.HandleRepayBorrow)).
		Subscribe(event.LiquidateBorrow{}, ebus.Typed(core.HandleLiquidateBorrow)).
		Subscribe(event.NewReserveFactor{}, ebus.Typed(core.HandleNewReserveFactor)).
		Subscribe(event.NewCollateralFactor{}, ebus.Typed(core.HandleNewCollateralFactor)).
		Subscribe(event.NewLiquidationIncentive{}, ebus.Typed(core.HandleNewLiquidationIncentive)).
		Subscribe(event.NewPriceOracle{}, ebus.Typed(core.HandleNewPriceOracle)).
		Subscribe(event.FinancialsUpdated{}, watcher.LogAny[any]).
		Subscribe(event.StatsUpdated{}, ebus.Typed(webServ.UpdateStats)).
		Subscribe(event.FinancialsUpdated{}, ebus.Typed(webServ.UpdateFinancials)).
		Subscribe(event.FinancialsUpdated{}, ebus.Typed(snapshotsRepo.HandleFinancials))

	runner := app.NewApp().
		WithService(watch).
		WithService(cons).
		WithService(webServ).
		WithService(interrupter.Interrupter{})

	if cfg.Simulator.Enabled {
		runner = runner.WithService(simulator.NewSimulator(eventsRepo, reader,
			simulator.MarketSpec{
				Address:    "0x4ddc2d193948926d02f9b1fe9e1daa0718270ed5",
				Underlying: "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
				Name:       "Wrapped Ether",
				Symbol:     "WETH",
				Decimals:   18,
				PriceUSD:   2400,
			},
			simulator.MarketSpec{
				Address:    "0x39aa39c021dfbae8fac545936693ac917d5e7563",
				Underlying: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
				Name:       "USD Coin",
				Symbol:     "USDC",
				Decimals:   6,
				PriceUSD:   1,
			},
		))
	}

	err := runner.Run(context.Background())
	log.Error("shutdown", "error", err)
	os.Exit(1)
}
