package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/openlend/lendsight/internal/entity"
	"github.com/openlend/lendsight/internal/observability"
	"github.com/openlend/lendsight/internal/store"
)

// RecordUsage counts one user action into the hourly and daily usage
// snapshots and maintains the unique and active account sets.
func (e *Engine) RecordUsage(ctx context.Context, blockNumber, ts int64, account string, kind entity.PositionKind) error {
	protocol, err := e.store.Protocol(ctx, e.cfg.ControllerAddress)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.log.Warn("protocol not found", "handler", "RecordUsage")
			return nil
		}
		return fmt.Errorf("load protocol: %w", err)
	}

	if _, err := e.store.Account(ctx, account); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("load account: %w", err)
		}
		if err := e.store.PutAccount(ctx, &entity.Account{ID: account}); err != nil {
			return fmt.Errorf("store account: %w", err)
		}
		protocol.CumulativeUniqueUsers++
		if err := e.store.PutProtocol(ctx, protocol); err != nil {
			return fmt.Errorf("store protocol: %w", err)
		}
		observability.UniqueUsers.Set(float64(protocol.CumulativeUniqueUsers))
	}

	for _, bucket := range []string{hourlyBucketID(ts), dailyBucketID(ts)} {
		snap, err := e.store.UsageSnapshot(ctx, bucket)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("load usage snapshot: %w", err)
			}
			snap = &entity.UsageSnapshot{ID: bucket, Protocol: protocol.ID}
		}

		activeID := account + "-" + bucket
		if _, err := e.store.ActiveAccount(ctx, activeID); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("load active account: %w", err)
			}
			if err := e.store.PutActiveAccount(ctx, &entity.ActiveAccount{ID: activeID}); err != nil {
				return fmt.Errorf("store active account: %w", err)
			}
			snap.ActiveUsers++
		}

		snap.CumulativeUniqueUsers = protocol.CumulativeUniqueUsers
		snap.TransactionCount++
		switch kind {
		case entity.PositionDeposit:
			snap.DepositCount++
		case entity.PositionWithdraw:
			snap.WithdrawCount++
		case entity.PositionBorrow:
			snap.BorrowCount++
		case entity.PositionRepay:
			snap.RepayCount++
		case entity.PositionLiquidate:
			snap.LiquidateCount++
		}
		snap.BlockNumber = blockNumber
		snap.Timestamp = ts
		if err := e.store.PutUsageSnapshot(ctx, snap); err != nil {
			return fmt.Errorf("store usage snapshot: %w", err)
		}
		observability.SnapshotWrites.WithLabelValues("usage").Inc()
	}
	return nil
}
