package service

import (
	"time"

	"go.uber.org/zap"

	"marketdash/feed"
	"marketdash/pkg/cache"
	"marketdash/pkg/metrics"
)

// Service assembles endpoint responses from the provider feeds, applying the
// mock fallbacks when a provider is rate limited or not configured. Any feed
// may be nil, which routes every call for that provider to the mock path.
type Service struct {
	quotes feed.QuoteFeed
	news   feed.NewsFeed
	llm    feed.CompletionFeed

	store      cache.Store
	collector  metrics.Collector
	logger     *zap.Logger
	historyTTL time.Duration

	now func() time.Time
}

func NewService(quotes feed.QuoteFeed, news feed.NewsFeed, llm feed.CompletionFeed,
	store cache.Store, collector metrics.Collector, logger *zap.Logger,
	historyTTL time.Duration) *Service {
	return &Service{
		quotes:     quotes,
		news:       news,
		llm:        llm,
		store:      store,
		collector:  collector,
		logger:     logger,
		historyTTL: historyTTL,
		now:        time.Now,
	}
}

func (s *Service) countFallback(provider, reason string) {
	s.collector.IncrementCounter("provider_fallback_total",
		map[string]string{"provider": provider, "reason": reason})
}
