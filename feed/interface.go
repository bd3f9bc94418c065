package feed

import (
	"context"
	"time"

	"marketdash/models"
)

const (
	ProviderAlphaVantage = "alphavantage"
	ProviderNewsAPI      = "newsapi"
	ProviderOpenAI       = "openai"
	ProviderMock         = "mock"
)

// QuoteFeed provides real-time quotes, fundamentals and price series.
type QuoteFeed interface {
	GlobalQuote(ctx context.Context, symbol string) (*models.Quote, error)
	CompanyOverview(ctx context.Context, symbol string) (*models.Fundamentals, error)
	DailySeries(ctx context.Context, symbol string) ([]models.HistoryPoint, error)
	IntradaySeries(ctx context.Context, symbol string) ([]models.HistoryPoint, error)
}

// NewsSearch describes one article search.
type NewsSearch struct {
	Query    string
	Domains  []string // allow-list; empty means any
	From     time.Time
	PageSize int
}

// NewsFeed searches recent financial news.
type NewsFeed interface {
	Search(ctx context.Context, q NewsSearch) ([]models.NewsArticle, error)
}

// CompletionFeed asks a language-model endpoint for a completion.
type CompletionFeed interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}
