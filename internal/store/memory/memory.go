// Package memory is the in-memory store.Store implementation used by
// the default wiring and by tests.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/openlend/lendsight/internal/entity"
	"github.com/openlend/lendsight/internal/store"
)

// Store keeps every entity in a keyed map. Values are copied on the
// way in and out so callers can mutate freely between Put calls.
type Store struct {
	mu sync.RWMutex

	tokens     map[string]entity.Token
	markets    map[string]entity.Market
	rates      map[string]entity.InterestRate
	protocols  map[string]entity.LendingProtocol
	accounts   map[string]entity.Account
	active     map[string]entity.ActiveAccount
	marketSnap map[string]entity.MarketSnapshot
	finSnap    map[string]entity.FinancialsSnapshot
	usageSnap  map[string]entity.UsageSnapshot
	positions  map[string]entity.PositionEvent
}

func New() *Store {
	return &Store{
		tokens:     make(map[string]entity.Token),
		markets:    make(map[string]entity.Market),
		rates:      make(map[string]entity.InterestRate),
		protocols:  make(map[string]entity.LendingProtocol),
		accounts:   make(map[string]entity.Account),
		active:     make(map[string]entity.ActiveAccount),
		marketSnap: make(map[string]entity.MarketSnapshot),
		finSnap:    make(map[string]entity.FinancialsSnapshot),
		usageSnap:  make(map[string]entity.UsageSnapshot),
		positions:  make(map[string]entity.PositionEvent),
	}
}

func (s *Store) Token(_ context.Context, id string) (*entity.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

func (s *Store) PutToken(_ context.Context, t *entity.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[t.ID] = *t
	return nil
}

func (s *Store) Market(_ context.Context, id string) (*entity.Market, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.markets[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyMarket(m), nil
}

func (s *Store) PutMarket(_ context.Context, m *entity.Market) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markets[m.ID] = *copyMarket(*m)
	return nil
}

func (s *Store) Rate(_ context.Context, id string) (*entity.InterestRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rates[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (s *Store) PutRate(_ context.Context, r *entity.InterestRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[r.ID] = *r
	return nil
}

func (s *Store) Protocol(_ context.Context, id string) (*entity.LendingProtocol, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.protocols[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p.MarketIDs = slices.Clone(p.MarketIDs)
	return &p, nil
}

func (s *Store) PutProtocol(_ context.Context, p *entity.LendingProtocol) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	cp.MarketIDs = slices.Clone(p.MarketIDs)
	s.protocols[p.ID] = cp
	return nil
}

func (s *Store) Account(_ context.Context, id string) (*entity.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func (s *Store) PutAccount(_ context.Context, a *entity.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = *a
	return nil
}

func (s *Store) ActiveAccount(_ context.Context, id string) (*entity.ActiveAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.active[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func (s *Store) PutActiveAccount(_ context.Context, a *entity.ActiveAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[a.ID] = *a
	return nil
}

func (s *Store) MarketSnapshot(_ context.Context, id string) (*entity.MarketSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sn, ok := s.marketSnap[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &sn, nil
}

func (s *Store) PutMarketSnapshot(_ context.Context, sn *entity.MarketSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marketSnap[sn.ID] = *sn
	return nil
}

func (s *Store) FinancialsSnapshot(_ context.Context, id string) (*entity.FinancialsSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sn, ok := s.finSnap[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &sn, nil
}

func (s *Store) PutFinancialsSnapshot(_ context.Context, sn *entity.FinancialsSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finSnap[sn.ID] = *sn
	return nil
}

func (s *Store) UsageSnapshot(_ context.Context, id string) (*entity.UsageSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sn, ok := s.usageSnap[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &sn, nil
}

func (s *Store) PutUsageSnapshot(_ context.Context, sn *entity.UsageSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usageSnap[sn.ID] = *sn
	return nil
}

func (s *Store) Position(_ context.Context, id string) (*entity.PositionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.positions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *Store) PutPosition(_ context.Context, p *entity.PositionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions[p.ID] = *p
	return nil
}

func copyMarket(m entity.Market) *entity.Market {
	cp := m
	if m.RewardEmissions != nil {
		cp.RewardEmissions = make(map[entity.RewardKey]entity.RewardEmission, len(m.RewardEmissions))
		for k, v := range m.RewardEmissions {
			cp.RewardEmissions[k] = v
		}
	}
	return &cp
}

var _ store.Store = (*Store)(nil)
