package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	goredis "github.com/redis/go-redis/v9"

	"github.com/colinjianingxie/walletfreak-sub000/benefits"
	"github.com/colinjianingxie/walletfreak-sub000/config"
	"github.com/colinjianingxie/walletfreak-sub000/factory"
	"github.com/colinjianingxie/walletfreak-sub000/logger"
	"github.com/colinjianingxie/walletfreak-sub000/store/memory"
	"github.com/colinjianingxie/walletfreak-sub000/store/redis"
	"github.com/colinjianingxie/walletfreak-sub000/store/sqlite"
)

// app holds the wired dependencies shared by subcommands.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	service *benefits.Service
	closers []func() error
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, closeLog, err := logger.New(cfg.Logger, cfg.Server.Mode)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &app{cfg: cfg, logger: log, closers: []func() error{closeLog}}

	catalog, err := factory.NewLoader(cfg.Catalog.Strict, logger.WithComponent(log, "catalog")).LoadFile(cfg.Catalog.Path)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	cards, usage, err := a.openStores(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.service = benefits.NewService(catalog, cards, usage)
	a.service.Logger = logger.WithComponent(log, "benefits")
	return a, nil
}

// openStores picks storage per usage.backend. Cards live in SQLite for
// both the sqlite and redis backends.
func (a *app) openStores(ctx context.Context) (benefits.CardStore, benefits.UsageStore, error) {
	if a.cfg.Usage.Backend == config.BackendMemory {
		st := memory.New()
		a.logger.Warn("using in-memory storage, data is lost on exit")
		return st, st, nil
	}

	if dir := filepath.Dir(a.cfg.Database.Path); dir != "." && a.cfg.Database.Path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create data dir: %w", err)
		}
	}
	db, err := sqlite.New(a.cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a.closers = append(a.closers, db.Close)

	if a.cfg.Usage.Backend != config.BackendRedis {
		return db, db, nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	a.closers = append(a.closers, client.Close)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", a.cfg.Redis.Addr, err)
	}
	a.logger.Info("usage stored in redis", "addr", a.cfg.Redis.Addr)
	return db, redis.NewUsageStore(client), nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
