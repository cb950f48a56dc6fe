package chain

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// StaticReader serves readings from in-memory tables. A key that was
// never set reads as reverted, which makes degraded-oracle and
// partial-data scenarios trivial to stage. Used by the simulator and
// by tests; production bindings live outside this repository.
type StaticReader struct {
	mu sync.RWMutex

	totalSupply    map[string]decimal.Decimal
	exchangeRate   map[string]decimal.Decimal
	totalBorrows   map[string]decimal.Decimal
	supplyRate     map[string]decimal.Decimal
	borrowRate     map[string]decimal.Decimal
	price          map[string]decimal.Decimal // keyed by market
	underlying     map[string]string
	reserveFactor  map[string]decimal.Decimal
	liqIncentive   map[string]decimal.Decimal
	metadata       map[string]TokenMetadata
	rewardSpeed    map[string]decimal.Decimal // side "-" token "-" market
}

func NewStaticReader() *StaticReader {
	return &StaticReader{
		totalSupply:   make(map[string]decimal.Decimal),
		exchangeRate:  make(map[string]decimal.Decimal),
		totalBorrows:  make(map[string]decimal.Decimal),
		supplyRate:    make(map[string]decimal.Decimal),
		borrowRate:    make(map[string]decimal.Decimal),
		price:         make(map[string]decimal.Decimal),
		underlying:    make(map[string]string),
		reserveFactor: make(map[string]decimal.Decimal),
		liqIncentive:  make(map[string]decimal.Decimal),
		metadata:      make(map[string]TokenMetadata),
		rewardSpeed:   make(map[string]decimal.Decimal),
	}
}

func (s *StaticReader) SetTotalSupply(market string, v decimal.Decimal) {
	s.set(s.totalSupply, market, v)
}

func (s *StaticReader) SetExchangeRate(market string, v decimal.Decimal) {
	s.set(s.exchangeRate, market, v)
}

func (s *StaticReader) SetTotalBorrows(market string, v decimal.Decimal) {
	s.set(s.totalBorrows, market, v)
}

func (s *StaticReader) SetSupplyRate(market string, v decimal.Decimal) {
	s.set(s.supplyRate, market, v)
}

func (s *StaticReader) SetBorrowRate(market string, v decimal.Decimal) {
	s.set(s.borrowRate, market, v)
}

func (s *StaticReader) SetPrice(market string, v decimal.Decimal) {
	s.set(s.price, market, v)
}

func (s *StaticReader) ClearPrice(market string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.price, market)
}

func (s *StaticReader) SetUnderlying(market, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.underlying[market] = token
}

func (s *StaticReader) SetReserveFactor(market string, v decimal.Decimal) {
	s.set(s.reserveFactor, market, v)
}

func (s *StaticReader) SetLiquidationIncentive(controller string, v decimal.Decimal) {
	s.set(s.liqIncentive, controller, v)
}

func (s *StaticReader) SetTokenMetadata(token string, md TokenMetadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata[token] = md
}

func (s *StaticReader) SetRewardSpeed(side, rewardToken, market string, v decimal.Decimal) {
	s.set(s.rewardSpeed, rewardKey(side, rewardToken, market), v)
}

func (s *StaticReader) TotalSupply(_ context.Context, market string) CallResult[decimal.Decimal] {
	return s.get(s.totalSupply, market)
}

func (s *StaticReader) ExchangeRateStored(_ context.Context, market string) CallResult[decimal.Decimal] {
	return s.get(s.exchangeRate, market)
}

func (s *StaticReader) TotalBorrows(_ context.Context, market string) CallResult[decimal.Decimal] {
	return s.get(s.totalBorrows, market)
}

func (s *StaticReader) SupplyRate(_ context.Context, market string) CallResult[decimal.Decimal] {
	return s.get(s.supplyRate, market)
}

func (s *StaticReader) BorrowRate(_ context.Context, market string) CallResult[decimal.Decimal] {
	return s.get(s.borrowRate, market)
}

func (s *StaticReader) UnderlyingPrice(_ context.Context, _ string, market string) CallResult[decimal.Decimal] {
	return s.get(s.price, market)
}

func (s *StaticReader) Underlying(_ context.Context, market string) CallResult[string] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.underlying[market]
	if !ok {
		return Revert[string]()
	}
	return Value(v)
}

func (s *StaticReader) ReserveFactorMantissa(_ context.Context, market string) CallResult[decimal.Decimal] {
	return s.get(s.reserveFactor, market)
}

func (s *StaticReader) LiquidationIncentiveMantissa(_ context.Context, controller string) CallResult[decimal.Decimal] {
	return s.get(s.liqIncentive, controller)
}

func (s *StaticReader) TokenMetadata(_ context.Context, token string) CallResult[TokenMetadata] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	md, ok := s.metadata[token]
	if !ok {
		return Revert[TokenMetadata]()
	}
	return Value(md)
}

func (s *StaticReader) RewardSpeed(_ context.Context, side, rewardToken, market string) CallResult[decimal.Decimal] {
	return s.get(s.rewardSpeed, rewardKey(side, rewardToken, market))
}

func (s *StaticReader) set(m map[string]decimal.Decimal, key string, v decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m[key] = v
}

func (s *StaticReader) get(m map[string]decimal.Decimal, key string) CallResult[decimal.Decimal] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := m[key]
	if !ok {
		return Revert[decimal.Decimal]()
	}
	return Value(v)
}

func rewardKey(side, token, market string) string {
	return side + "-" + token + "-" + market
}

var _ Reader = (*StaticReader)(nil)
