package models

import "time"

// Sentiment labels produced by the analysis layer.
const (
	SentimentBullish = "bullish"
	SentimentBearish = "bearish"
	SentimentNeutral = "neutral"
)

// NewsArticle is a normalized article from the news-search provider.
// URL is the identity key for de-duplication. Content is truncated to
// MaxContentLen characters before leaving the feed layer.
type NewsArticle struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
	Source      string    `json:"source"`
	Content     string    `json:"content,omitempty"`
	Symbols     []string  `json:"symbols,omitempty"`
}

// MaxContentLen caps article content carried through to responses.
const MaxContentLen = 500

// NewsAnalysis is the per-symbol completion result. SentimentScore is always
// within [-1, 1] and Sentiment is one of the sentiment constants, even when
// the upstream completion response was malformed.
type NewsAnalysis struct {
	Summary        string   `json:"summary"`
	Sentiment      string   `json:"sentiment"`
	SentimentScore float64  `json:"sentiment_score"`
	KeyPoints      []string `json:"key_points"`
	Reasoning      string   `json:"reasoning"`
	ArticleCount   int      `json:"article_count"`
}

// TrendingStock is one entry of MarketAnalysis.TrendingStocks.
type TrendingStock struct {
	Symbol    string `json:"symbol"`
	Reason    string `json:"reason"`
	Sentiment string `json:"sentiment"`
}

// HighImpactEvent is one entry of MarketAnalysis.HighImpactEvents.
type HighImpactEvent struct {
	Event     string `json:"event"`
	Impact    string `json:"impact"`
	Timeframe string `json:"timeframe"`
}

// MarketAnalysis is the market-wide completion result.
type MarketAnalysis struct {
	MarketSentiment  string            `json:"market_sentiment"`
	TrendingStocks   []TrendingStock   `json:"trending_stocks"`
	KeyThemes        []string          `json:"key_themes"`
	DailySummary     string            `json:"daily_summary"`
	HighImpactEvents []HighImpactEvent `json:"high_impact_events"`
	ArticleCount     int               `json:"article_count"`
	LastUpdated      time.Time         `json:"last_updated"`
}

// NewsResponse is the payload of GET /api/news/{symbol}.
type NewsResponse struct {
	Symbol      string        `json:"symbol"`
	Analysis    NewsAnalysis  `json:"analysis"`
	RawArticles []NewsArticle `json:"raw_articles"`
	LastUpdated time.Time     `json:"last_updated"`
	IsMockData  bool          `json:"is_mock_data"`
}

// MarketInsights is the payload of GET /api/market/insights.
type MarketInsights struct {
	Analysis    MarketAnalysis `json:"analysis"`
	RawArticles []NewsArticle  `json:"raw_articles"`
	LastUpdated time.Time      `json:"last_updated"`
	DaysBack    int            `json:"days_back"`
	IsMockData  bool           `json:"is_mock_data"`
}

// MarketIndex is one entry of the GET /api/market/overview snapshot.
type MarketIndex struct {
	Name          string  `json:"name"`
	Value         float64 `json:"value"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}
