package main

import (
	"context"
	"fmt"

	"digital-wallet/config"
	"digital-wallet/internal/adapter/storage/memory"
	pgStorage "digital-wallet/internal/adapter/storage/postgres"
	"digital-wallet/internal/core/ports"

	"github.com/rs/zerolog"
)

// storage is the set of repositories behind the services, for one driver.
type storage struct {
	users        ports.UserRepository
	wallets      ports.WalletRepository
	merchants    ports.MerchantRepository
	items        ports.ItemRepository
	transactions ports.TransactionRepository
	idempotency  ports.IdempotencyRepository
	audit        ports.AuditRepository
	transactor   ports.DBTransactor
	health       ports.HealthChecker
	close        func()
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case "memory":
		log.Warn().Msg("Using in-memory storage: data is lost on exit")
		return openMemory(), nil
	case "postgres":
		return openPostgres(ctx, cfg.Database, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func openMemory() *storage {
	s := memory.NewStore()
	return &storage{
		users:        memory.NewUserRepo(s),
		wallets:      memory.NewWalletRepo(s),
		merchants:    memory.NewMerchantRepo(s),
		items:        memory.NewItemRepo(s),
		transactions: memory.NewTransactionRepo(s),
		idempotency:  memory.NewIdempotencyRepo(s),
		audit:        memory.NewAuditRepo(s),
		transactor:   memory.NewTransactor(s),
		health:       memory.HealthCheck{},
		close:        func() {},
	}
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*storage, error) {
	isolation, err := pgStorage.ParseIsolation(cfg.Isolation)
	if err != nil {
		return nil, err
	}

	if cfg.MigrateOnStart {
		if err := pgStorage.Migrate(cfg.MigrationURL(), log); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	pool, err := pgStorage.NewPool(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	log.Info().Str("isolation", cfg.Isolation).Dur("lock_timeout", cfg.LockTimeout).Msg("PostgreSQL connected")

	return &storage{
		users:        pgStorage.NewUserRepo(pool),
		wallets:      pgStorage.NewWalletRepo(pool),
		merchants:    pgStorage.NewMerchantRepo(pool),
		items:        pgStorage.NewItemRepo(pool),
		transactions: pgStorage.NewTransactionRepo(pool),
		idempotency:  pgStorage.NewIdempotencyRepo(pool),
		audit:        pgStorage.NewAuditRepo(pool),
		transactor: pgStorage.NewTransactor(pool,
			pgStorage.WithIsolation(isolation),
			pgStorage.WithLockTimeout(cfg.LockTimeout),
		),
		health: pgStorage.NewHealthCheck(pool),
		close:  pool.Close,
	}, nil
}
