package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Xelaphir/shawa/internal/adapter/handler"
	"github.com/Xelaphir/shawa/internal/adapter/metrics"
	"github.com/Xelaphir/shawa/internal/adapter/storage"
	"github.com/Xelaphir/shawa/internal/config"
	"github.com/Xelaphir/shawa/internal/core/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("open mysql")
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("ping mysql")
	}
	log.Info().Msg("connected to mysql")

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("ping redis")
	}
	log.Info().Msg("connected to redis")

	// Adapters
	store := storage.NewMySQLAdapter(db)
	cache := storage.NewRedisAdapter(rdb, cfg.CacheTTL)

	// Services
	draftService := service.NewDraftService(store, store)
	ledgerService := service.NewLedgerService(store, store, cache)
	exchangeService := service.NewExchangeService(store, store, store, cache, cfg.QueueSize)
	orderService := service.NewOrderService(store, store)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)

	// Trade settlement workers: every sold lot earns the seller vouchers.
	var wg sync.WaitGroup
	for i := 0; i < cfg.WorkerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			settleLoop(id, exchangeService)
		}(i)
	}
	log.Info().Int("workers", cfg.WorkerCount).Msg("started trade settlement workers")

	// HTTP server
	httpHandler := handler.NewHTTPHandler(draftService, ledgerService, exchangeService, orderService, cache, m)
	mux := http.NewServeMux()
	httpHandler.Register(mux)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Info().Msg("http server stopped")

	// Drain the trade queue before closing connections so no sold lot loses
	// its voucher grant.
	exchangeService.Close()
	wg.Wait()
	log.Info().Msg("trade workers stopped")

	rdb.Close()
	db.Close()
	log.Info().Msg("connections closed")
}

func settleLoop(id int, exchange *service.ExchangeService) {
	for event := range exchange.TradeEvents() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		if err := exchange.SettleTrade(ctx, event); err != nil {
			log.Error().Err(err).Int("worker", id).Str("lot", event.LotID).
				Msg("settle trade")
		} else {
			log.Info().Int("worker", id).Str("lot", event.LotID).
				Int64("seller", event.SellerID).Msg("trade settled")
		}

		cancel()
	}
}
