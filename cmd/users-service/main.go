package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/pribylovaa/go-user-directory/internal/config"
	userhttp "github.com/pribylovaa/go-user-directory/internal/http"
	"github.com/pribylovaa/go-user-directory/internal/pkg/redact"
	"github.com/pribylovaa/go-user-directory/internal/service"
	"github.com/pribylovaa/go-user-directory/internal/storage"
	"github.com/pribylovaa/go-user-directory/internal/storage/memory"
	"github.com/pribylovaa/go-user-directory/internal/storage/mongo"
	"github.com/pribylovaa/go-user-directory/internal/storage/postgres"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

var errNotReady = errors.New("not ready")

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting users-service", "env", cfg.Env, "driver", cfg.DB.Driver)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	connectCtx, connectCancel := context.WithTimeout(rootCtx, cfg.Timeouts.Connect)
	st, err := openStorage(connectCtx, cfg.DB)
	connectCancel()
	if err != nil {
		log.Error("store_connect_failed",
			slog.String("driver", cfg.DB.Driver),
			slog.String("url", redact.URL(cfg.DB.URL)),
			slog.String("err", err.Error()),
		)
		os.Exit(1)
	}

	log.Info("store_connected", slog.String("driver", cfg.DB.Driver), slog.String("url", redact.URL(cfg.DB.URL)))

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if cerr := st.Close(closeCtx); cerr != nil {
			log.Warn("store_close_failed", slog.String("err", cerr.Error()))
		}
	}()

	svc := service.New(st)

	var ready atomic.Bool

	handler := userhttp.NewRouter(svc, userhttp.Options{
		Logger:     log,
		Timeout:    cfg.Timeouts.Service,
		CORSOrigin: cfg.CORS.AllowedOrigin,
		Ready: func(ctx context.Context) error {
			if !ready.Load() {
				return errNotReady
			}

			return svc.Ready(ctx)
		},
	})

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	ready.Store(true)
	log.Info("service_ready")

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	ready.Store(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.Shutdown)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	log.Info("service_stopped")
}

// openStorage подключает хранилище выбранного драйвера.
func openStorage(ctx context.Context, db config.DBConfig) (storage.UsersStorage, error) {
	switch db.Driver {
	case config.DriverMongo:
		st, err := mongo.New(ctx, db.URL)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.DriverPostgres:
		st, err := postgres.New(ctx, db.URL)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown db driver %q", db.Driver)
	}
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
