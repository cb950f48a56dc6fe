// Package simulator drives the pipeline without a chain connection:
// it seeds a static reader with plausible market state and publishes a
// stream of listing, accrual and position events.
package simulator

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openlend/lendsight/internal/chain"
	"github.com/openlend/lendsight/internal/event"
)

// Publisher is the outbound side the simulator feeds, normally the
// Kafka events repository.
type Publisher interface {
	Publish(ctx context.Context, ev any) error
}

// MarketSpec describes one simulated market.
type MarketSpec struct {
	Address    string
	Underlying string
	Name       string
	Symbol     string
	Decimals   int32
	PriceUSD   int64
}

type Simulator struct {
	pub     Publisher
	reader  *chain.StaticReader
	markets []MarketSpec

	block int64
	ts    int64
}

func NewSimulator(pub Publisher, reader *chain.StaticReader, markets ...MarketSpec) *Simulator {
	return &Simulator{
		pub:     pub,
		reader:  reader,
		markets: markets,
		block:   1,
		ts:      time.Now().Unix(),
	}
}

func (s *Simulator) Run(ctx context.Context) error {
	s.seed()

	for _, m := range s.markets {
		if err := s.pub.Publish(ctx, event.MarketListed{Block: s.tick(), Market: m.Address}); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m := s.markets[rand.Intn(len(s.markets))]
			if err := s.emitRound(ctx, m); err != nil {
				return err
			}
		}
	}
}

// seed installs metadata, prices, rates and balances for every market
// so reads taken during replay succeed.
func (s *Simulator) seed() {
	for _, m := range s.markets {
		s.reader.SetTokenMetadata(m.Address, chain.TokenMetadata{
			Name:     "Lendsight " + m.Name,
			Symbol:   "l" + m.Symbol,
			Decimals: 8,
		})
		s.reader.SetTokenMetadata(m.Underlying, chain.TokenMetadata{
			Name:     m.Name,
			Symbol:   m.Symbol,
			Decimals: m.Decimals,
		})
		s.reader.SetUnderlying(m.Address, m.Underlying)
		s.reader.SetPrice(m.Address, decimal.NewFromInt(m.PriceUSD).Shift(36-m.Decimals))
		s.reader.SetReserveFactor(m.Address, decimal.New(1, 17))
		s.reader.SetExchangeRate(m.Address, decimal.New(2, int32(17)+m.Decimals-8))
		s.reader.SetSupplyRate(m.Address, decimal.New(95, 7))
		s.reader.SetBorrowRate(m.Address, decimal.New(127, 7))
		s.reader.SetTotalSupply(m.Address, decimal.New(5, 13))
		s.reader.SetTotalBorrows(m.Address, decimal.New(4, m.Decimals+5))
	}
}

func (s *Simulator) emitRound(ctx context.Context, m MarketSpec) error {
	amount := decimal.NewFromInt(int64(rand.Intn(900) + 100)).Shift(m.Decimals)
	user := uuid.NewString()

	deposit := event.Mint{
		Block:    s.tick(),
		Market:   m.Address,
		Minter:   user,
		Amount:   amount,
		TxHash:   uuid.NewString(),
		LogIndex: 0,
	}
	if err := s.pub.Publish(ctx, deposit); err != nil {
		return err
	}

	borrow := event.Borrow{
		Block:    s.tick(),
		Market:   m.Address,
		Borrower: user,
		Amount:   amount.Div(decimal.NewFromInt(2)),
		TxHash:   uuid.NewString(),
		LogIndex: 0,
	}
	if err := s.pub.Publish(ctx, borrow); err != nil {
		return err
	}

	return s.pub.Publish(ctx, event.AccrueInterest{Block: s.tick(), Market: m.Address})
}

func (s *Simulator) tick() event.Block {
	s.block++
	s.ts += 12
	return event.Block{Number: s.block, Timestamp: s.ts}
}
