package web

import (
	"sync"

	"github.com/openlend/lendsight/internal/entity"
	"github.com/openlend/lendsight/internal/event"
)

type state struct {
	markets    map[string]event.MarketStats
	financials entity.FinancialsSnapshot
	mx         sync.RWMutex
}

func newState() *state {
	return &state{
		markets: make(map[string]event.MarketStats),
	}
}

func (s *state) update(markets map[string]event.MarketStats) {
	s.mx.Lock()
	defer s.mx.Unlock()

	s.markets = markets
}

func (s *state) updateFinancials(snap entity.FinancialsSnapshot) {
	s.mx.Lock()
	defer s.mx.Unlock()

	s.financials = snap
}

func (s *state) market(id string) (event.MarketStats, bool) {
	s.mx.RLock()
	defer s.mx.RUnlock()

	m, ok := s.markets[id]
	return m, ok
}

func (s *state) allMarkets() map[string]event.MarketStats {
	s.mx.RLock()
	defer s.mx.RUnlock()

	out := make(map[string]event.MarketStats, len(s.markets))
	for k, v := range s.markets {
		out[k] = v
	}
	return out
}

func (s *state) latestFinancials() entity.FinancialsSnapshot {
	s.mx.RLock()
	defer s.mx.RUnlock()

	return s.financials
}
