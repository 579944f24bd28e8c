// cmd/cashback/main.go
package main

import (
	"cashback/internal/commands"
	"cashback/internal/config"
	"cashback/internal/period"
	"cashback/internal/service"
	"cashback/internal/storage/postgres"
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	cfg := config.MustLoad()

	pool, err := pgxpool.New(context.Background(), cfg.DBConn)
	if err != nil {
		slog.Error("Не удалось подключиться к БД", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	store := postgres.NewStorage(pool)
	svc := service.New(store, period.SystemClock{})

	if err := commands.NewRootCommand(svc).Execute(); err != nil {
		os.Exit(1)
	}
}
