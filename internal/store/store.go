// Package store defines the entity repository interfaces the engine
// runs against. The production backing store is an external
// collaborator; this package only fixes the contract and the
// sentinel errors.
package store

import (
	"context"
	"errors"

	"github.com/openlend/lendsight/internal/entity"
)

// ErrNotFound is returned when the requested entity does not exist.
var ErrNotFound = errors.New("not found")

type TokenStore interface {
	Token(ctx context.Context, id string) (*entity.Token, error)
	PutToken(ctx context.Context, t *entity.Token) error
}

type MarketStore interface {
	Market(ctx context.Context, id string) (*entity.Market, error)
	PutMarket(ctx context.Context, m *entity.Market) error
}

type RateStore interface {
	Rate(ctx context.Context, id string) (*entity.InterestRate, error)
	PutRate(ctx context.Context, r *entity.InterestRate) error
}

type ProtocolStore interface {
	Protocol(ctx context.Context, id string) (*entity.LendingProtocol, error)
	PutProtocol(ctx context.Context, p *entity.LendingProtocol) error
}

type AccountStore interface {
	Account(ctx context.Context, id string) (*entity.Account, error)
	PutAccount(ctx context.Context, a *entity.Account) error
	ActiveAccount(ctx context.Context, id string) (*entity.ActiveAccount, error)
	PutActiveAccount(ctx context.Context, a *entity.ActiveAccount) error
}

type SnapshotStore interface {
	MarketSnapshot(ctx context.Context, id string) (*entity.MarketSnapshot, error)
	PutMarketSnapshot(ctx context.Context, s *entity.MarketSnapshot) error
	FinancialsSnapshot(ctx context.Context, id string) (*entity.FinancialsSnapshot, error)
	PutFinancialsSnapshot(ctx context.Context, s *entity.FinancialsSnapshot) error
	UsageSnapshot(ctx context.Context, id string) (*entity.UsageSnapshot, error)
	PutUsageSnapshot(ctx context.Context, s *entity.UsageSnapshot) error
}

type PositionStore interface {
	Position(ctx context.Context, id string) (*entity.PositionEvent, error)
	PutPosition(ctx context.Context, p *entity.PositionEvent) error
}

// Store is the full repository surface the engine needs.
type Store interface {
	TokenStore
	MarketStore
	RateStore
	ProtocolStore
	AccountStore
	SnapshotStore
	PositionStore
}
