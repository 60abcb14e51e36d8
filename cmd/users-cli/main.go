package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pribylovaa/go-user-directory/internal/cache"
	"github.com/pribylovaa/go-user-directory/internal/cache/redis"
	"github.com/pribylovaa/go-user-directory/internal/cache/sqlite"
	"github.com/pribylovaa/go-user-directory/internal/client"
	"github.com/pribylovaa/go-user-directory/internal/config"
	"github.com/pribylovaa/go-user-directory/internal/pkg/redact"
	"github.com/pribylovaa/go-user-directory/internal/view"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoadClient(configPath)

	// stdout занят интерфейсом, логи пишем в stderr.
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	openCtx, openCancel := context.WithTimeout(ctx, 10*time.Second)
	p, err := openPersister(openCtx, cfg.Cache)
	openCancel()
	if err != nil {
		log.Error("cache_open_failed", slog.String("driver", cfg.Cache.Driver), slog.String("err", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if cerr := p.Close(); cerr != nil {
			log.Warn("cache_close_failed", slog.String("err", cerr.Error()))
		}
	}()

	log.Debug("cache_opened", slog.String("driver", cfg.Cache.Driver))

	api := client.New(cfg.API.BaseURL, cfg.Timeouts.Request)
	app := view.NewApp(api, cache.New(p, cfg.Cache.Key), os.Stdin, os.Stdout, log)

	fmt.Println("User Management System. Type \"help\" for commands.")
	app.Run(ctx)
}

// openPersister открывает хранилище кэша выбранного драйвера.
func openPersister(ctx context.Context, c config.CacheConfig) (cache.Persister, error) {
	switch c.Driver {
	case config.CacheSQLite:
		p, err := sqlite.New(ctx, c.Path)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.CacheRedis:
		p, err := redis.New(ctx, c.RedisURL, "")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", redact.URL(c.RedisURL), err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", c.Driver)
	}
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	default:
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}
