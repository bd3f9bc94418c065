package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"marketdash/feed"
	"marketdash/models"
	"marketdash/pkg/cache"
	"marketdash/pkg/metrics"
)

// stubQuotes implements feed.QuoteFeed with per-method hooks and call counts.
type stubQuotes struct {
	quoteFn    func(ctx context.Context, symbol string) (*models.Quote, error)
	overviewFn func(ctx context.Context, symbol string) (*models.Fundamentals, error)
	dailyFn    func(ctx context.Context, symbol string) ([]models.HistoryPoint, error)
	intradayFn func(ctx context.Context, symbol string) ([]models.HistoryPoint, error)

	dailyCalls    int
	intradayCalls int
}

func (s *stubQuotes) GlobalQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	return s.quoteFn(ctx, symbol)
}

func (s *stubQuotes) CompanyOverview(ctx context.Context, symbol string) (*models.Fundamentals, error) {
	return s.overviewFn(ctx, symbol)
}

func (s *stubQuotes) DailySeries(ctx context.Context, symbol string) ([]models.HistoryPoint, error) {
	s.dailyCalls++
	return s.dailyFn(ctx, symbol)
}

func (s *stubQuotes) IntradaySeries(ctx context.Context, symbol string) ([]models.HistoryPoint, error) {
	s.intradayCalls++
	return s.intradayFn(ctx, symbol)
}

// stubNews implements feed.NewsFeed, recording every query it received.
type stubNews struct {
	searchFn func(ctx context.Context, q feed.NewsSearch) ([]models.NewsArticle, error)
	queries  []feed.NewsSearch
}

func (s *stubNews) Search(ctx context.Context, q feed.NewsSearch) ([]models.NewsArticle, error) {
	s.queries = append(s.queries, q)
	return s.searchFn(ctx, q)
}

// stubLLM implements feed.CompletionFeed with a canned response.
type stubLLM struct {
	response string
	err      error
	prompts  []string
}

func (s *stubLLM) Complete(_ context.Context, _, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func newTestService(quotes feed.QuoteFeed, news feed.NewsFeed, llm feed.CompletionFeed) *Service {
	svc := NewService(quotes, news, llm, cache.NewMemory(), metrics.Nop{}, zap.NewNop(), time.Hour)
	svc.now = func() time.Time {
		return time.Date(2025, 6, 4, 15, 0, 0, 0, time.UTC) // a Wednesday
	}
	return svc
}
