package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/sync/errgroup"

	"fibermeta/internal/api"
	"fibermeta/internal/config"
	internaldb "fibermeta/internal/db"
	"fibermeta/internal/db/repository"
	"fibermeta/internal/domain"
	"fibermeta/internal/fiber"
	"fibermeta/internal/service"
	"fibermeta/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("metaserver exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = config.LoadDotEnv(".env")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	writeDB, readDB, err := internaldb.OpenSQLitePair(cfg.MetaDBPath, cfg.ReadPoolSize)
	if err != nil {
		return err
	}
	defer writeDB.Close()
	defer readDB.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fs := storage.LocalFilesystem{}
	boot := internaldb.NewBootstrapper(writeDB, fs, cfg.StorageRoot, logger.With("component", "bootstrap"))
	if err := boot.Run(ctx); err != nil {
		var corrupted *domain.CorruptedCatalogError
		if errors.As(err, &corrupted) {
			logger.Error("catalog store is partially initialized, refusing to start", "error", err)
		}
		return err
	}

	repo := repository.NewCatalogRepo(writeDB, readDB, logger.With("component", "repository"))
	svc := service.NewMetastoreService(repo, fs, fiber.NewRegistry(), cfg.StorageRoot,
		logger.With("component", "metastore"))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.NewRouter(api.NewHandler(svc), cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("metaserver listening", "addr", cfg.ListenAddr, "db", cfg.MetaDBPath, "root", cfg.StorageRoot)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
