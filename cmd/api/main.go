// cmd/api/main.go
package main

import (
	"cashback/internal/config"
	"cashback/internal/handler"
	"cashback/internal/period"
	"cashback/internal/service"
	"cashback/internal/storage/postgres"
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.MustLoad()

	pool, err := pgxpool.New(context.Background(), cfg.DBConn)
	if err != nil {
		slog.Error("Не удалось подключиться к БД", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("Ping БД не удался", "error", err)
		os.Exit(1)
	}

	store := postgres.NewStorage(pool)
	svc := service.New(store, period.SystemClock{})

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	cashbackHandler := handler.NewCashbackHandler(svc)
	v1 := router.Group("/api/v1")
	{
		v1.POST("/banks", cashbackHandler.AddBank)
		v1.POST("/cards", cashbackHandler.AddCard)
		v1.GET("/cards", cashbackHandler.ListCards)
		v1.POST("/cashback", cashbackHandler.AddCashback)
		v1.DELETE("/cashback", cashbackHandler.RemoveCashback)
		v1.POST("/transactions", cashbackHandler.AddTransaction)
		v1.GET("/estimate", cashbackHandler.EstimateCashback)
		v1.GET("/choose", cashbackHandler.Choose)
	}

	slog.Info("🚀 Сервер запущен", "port", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		slog.Error("Сервер завершил работу с ошибкой", "error", err)
	}
}
