package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"marketdash/api"
	"marketdash/feed"
	"marketdash/logging"
	"marketdash/pkg/cache"
	"marketdash/pkg/config"
	"marketdash/pkg/metrics"
	"marketdash/pkg/middleware"
	"marketdash/service"
)

func main() {
	cfg := config.LoadConfig()
	logger := logging.SetupLogger(cfg.LogLevel, cfg.LogFile)
	defer logger.Sync()

	var quotes feed.QuoteFeed
	if cfg.AlphaVantageAPIKey != "" {
		quotes = feed.NewAlphaVantage(cfg.AlphaVantageAPIKey, cfg.AlphaVantageURL)
	} else {
		logger.Warn("ALPHA_VANTAGE_API_KEY not set, quote requests will serve mock data")
	}

	var news feed.NewsFeed
	if cfg.NewsAPIKey != "" {
		news = feed.NewNewsAPI(cfg.NewsAPIKey, cfg.NewsAPIURL)
	} else {
		logger.Warn("NEWS_API_KEY not set, news requests will serve mock data")
	}

	var llm feed.CompletionFeed
	if cfg.OpenAIAPIKey != "" {
		llm = feed.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	} else {
		logger.Warn("OPENAI_API_KEY not set, analysis will be computed locally")
	}

	var store cache.Store = cache.NewMemory()
	if cfg.RedisAddr != "" {
		redisStore, err := cache.NewRedis(cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unreachable, using in-memory cache",
				zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			defer redisStore.Close()
			store = redisStore
		}
	}

	collector := metrics.NewSimpleCollector(logger)
	svc := service.NewService(quotes, news, llm, store, collector, logger, cfg.HistoryCacheTTL)

	limiter := middleware.NewSlidingWindowLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	router := api.SetupRouter(svc, limiter, cfg.AllowedOrigins, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  90 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}
