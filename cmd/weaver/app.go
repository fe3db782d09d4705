package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/toyz/weaver/internal/config"
	"github.com/toyz/weaver/internal/demo"
	"github.com/toyz/weaver/pkg/errors"
	"github.com/toyz/weaver/pkg/storage/redis"
	sqlstore "github.com/toyz/weaver/pkg/storage/sql"
	"github.com/toyz/weaver/pkg/weaver"
	"github.com/toyz/weaver/pkg/weaver/adapters"
)

// application is a configured app with the resources to release on exit
type application struct {
	app     *weaver.App
	closers []func() error
}

func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

// buildApp wires storage, the demo routes and the web server from cfg
func buildApp(ctx context.Context, cfg *config.Config, log *zap.Logger, apiKey string) (*application, error) {
	out := &application{}
	deps := demo.Deps{APIKey: apiKey}

	if cfg.SQL.Enabled {
		a := sqlstore.NewAdapter()
		if err := a.Initialize(ctx, sqlstore.WithConfig(cfg.SQL.Config)); err != nil {
			return nil, err
		}
		sqlstore.Default.Set(a)
		out.closers = append(out.closers, a.Close)
		store := demo.NewSQLStore(nil)
		if err := demo.Ready(ctx, store); err != nil {
			out.Close()
			return nil, fmt.Errorf("migrate notes: %w", err)
		}
		deps.Notes = store
		log.Info("sql storage ready", zap.String("driver", cfg.SQL.Driver))
	} else {
		deps.Notes = demo.NewMemoryStore()
	}

	if cfg.Redis.Enabled {
		a := redis.NewAdapter()
		if err := a.Initialize(ctx, redis.WithConfig(cfg.Redis.Config)); err != nil {
			out.Close()
			return nil, err
		}
		redis.Default.Set(a)
		out.closers = append(out.closers, a.Close)
		deps.Cache = &redis.KeyVal{Prefix: "notes"}
		log.Info("redis cache ready", zap.String("prefix", cfg.Redis.Prefix))
	}

	routes, err := demo.Routes(deps)
	if err != nil {
		out.Close()
		return nil, err
	}
	server, err := adapters.New(cfg.Server.Adapter)
	if err != nil {
		out.Close()
		return nil, err
	}

	handler := errors.NewHandler()
	handler.OnHandle(func(err errors.AppError) {
		if err.StatusCode() >= 500 {
			log.Error("unhandled error", zap.Error(err))
		}
	})

	serverCfg := cfg.Server
	out.app, err = weaver.NewApp(weaver.AppConfig{
		Server: server,
		Config: &serverCfg,
		Routes: routes,
		Errors: handler,
		Logger: log,
	})
	if err != nil {
		out.Close()
		return nil, err
	}
	return out, nil
}
