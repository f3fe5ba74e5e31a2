package app

import (
	"context"
	"errors"
	"fmt"

	"souk-inventory/internal/config"
	"souk-inventory/internal/core"
	"souk-inventory/internal/db"
	"souk-inventory/internal/events"
	"souk-inventory/internal/memstore"
	"souk-inventory/internal/seed"

	"go.uber.org/zap"
)

// NewEngine wires the core services over store and returns the application facade.
func NewEngine(store core.Store, policy core.ReorderPolicy, autoReorderOnRead bool,
	publisher events.Publisher, logger *zap.Logger) ApplicationService {
	ledger := core.NewStockLedger(store)
	capacity := core.NewCapacityOracle(store)
	orders := core.NewPurchaseOrderService(store, policy, ledger, capacity, publisher, logger)
	reorder := core.NewReorderService(store, policy, capacity, orders, publisher, logger)
	inventory := core.NewInventoryService(store, ledger, orders, reorder, autoReorderOnRead, publisher, logger)

	var pinger Pinger
	if p, ok := store.(Pinger); ok {
		pinger = p
	}
	return NewAppService(inventory, orders, pinger)
}

// Runtime is a fully wired service plus the resources it holds.
type Runtime struct {
	Service ApplicationService
	Store   core.Store
	close   []func() error
}

// Close releases the store and the event publisher.
func (r *Runtime) Close() error {
	var errs error
	for i := len(r.close) - 1; i >= 0; i-- {
		errs = errors.Join(errs, r.close[i]())
	}
	r.close = nil
	return errs
}

// Bootstrap opens the configured store and event publisher and wires the engine.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Runtime, error) {
	rt := &Runtime{}

	switch cfg.StoreDriver {
	case config.DriverMemory:
		store := memstore.New()
		seed.Memory(store)
		rt.Store = store
		logger.Info("using in-memory store with demo data")
	default:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		rt.close = append(rt.close, func() error { pool.Close(); return nil })
		rt.Store = db.NewStore(pool)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.Info("publishing purchase order events",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic),
		)
	}
	rt.close = append(rt.close, publisher.Close)

	rt.Service = NewEngine(rt.Store, cfg.ReorderPolicy(), cfg.AutoReorderOnRead, publisher, logger)
	return rt, nil
}
