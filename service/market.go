package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"go.uber.org/zap"

	"marketdash/feed"
	"marketdash/models"
	apperrors "marketdash/pkg/errors"
)

// marketQueries are the broad-topic searches that feed the market-wide
// insights pipeline.
var marketQueries = []string{
	"stock market earnings",
	"Federal Reserve interest rates",
	"merger OR acquisition",
	"IPO OR \"initial public offering\"",
	"inflation OR recession economy",
	"stock market rally OR selloff",
}

// tickerPattern matches standalone uppercase tokens that look like symbols.
var tickerPattern = regexp.MustCompile(`\b[A-Z]{2,5}\b`)

// tickerStopwords are uppercase tokens that look like symbols but are not.
var tickerStopwords = map[string]struct{}{
	"CEO": {}, "CFO": {}, "CTO": {}, "IPO": {}, "GDP": {}, "SEC": {},
	"ETF": {}, "NYSE": {}, "FED": {}, "USA": {}, "US": {}, "UK": {},
	"EU": {}, "AI": {}, "API": {}, "TV": {}, "PC": {}, "OR": {},
	"AND": {}, "THE": {}, "NEW": {}, "WSJ": {}, "CNBC": {},
}

const (
	marketArticleCap    = 25
	marketRawArticleCap = 10
)

// MarketOverview returns the static major-index snapshot.
func (s *Service) MarketOverview() map[string]models.MarketIndex {
	return map[string]models.MarketIndex{
		"^GSPC": {Name: "S&P 500", Value: 5500.25, Change: 12.50, ChangePercent: 0.23},
		"^DJI":  {Name: "Dow Jones", Value: 38750.80, Change: -45.20, ChangePercent: -0.12},
		"^IXIC": {Name: "NASDAQ", Value: 17250.45, Change: 85.30, ChangePercent: 0.50},
	}
}

// MarketInsights aggregates broad financial news over the trailing daysBack
// days and runs the market-wide completion analysis over it.
func (s *Service) MarketInsights(ctx context.Context, daysBack int) (*models.MarketInsights, error) {
	articles, isMock, err := s.marketArticles(ctx, daysBack)
	if err != nil {
		return nil, err
	}

	analysis := s.analyzeMarketNews(ctx, articles)

	raw := articles
	if len(raw) > marketRawArticleCap {
		raw = raw[:marketRawArticleCap]
	}
	return &models.MarketInsights{
		Analysis:    analysis,
		RawArticles: raw,
		LastUpdated: s.now().UTC(),
		DaysBack:    daysBack,
		IsMockData:  isMock,
	}, nil
}

func (s *Service) marketArticles(ctx context.Context, daysBack int) ([]models.NewsArticle, bool, error) {
	if s.news == nil {
		s.countFallback(feed.ProviderNewsAPI, "not_configured")
		return feed.MockMarketArticles(s.now()), true, nil
	}

	from := s.now().AddDate(0, 0, -daysBack)
	var merged []models.NewsArticle
	for _, q := range marketQueries {
		batch, err := s.news.Search(ctx, feed.NewsSearch{
			Query:    q,
			Domains:  financialDomains,
			From:     from,
			PageSize: 10,
		})
		if err != nil {
			if apperrors.IsRateLimited(err) || apperrors.IsUnavailable(err) {
				s.logger.Warn("news provider unavailable, serving mock market articles", zap.Error(err))
				s.countFallback(feed.ProviderNewsAPI, "rate_limited")
				return feed.MockMarketArticles(s.now()), true, nil
			}
			return nil, false, err
		}
		merged = append(merged, batch...)
	}

	merged = dedupeByURL(merged)
	for i := range merged {
		merged[i].Symbols = extractTickers(merged[i].Title + " " + merged[i].Description)
	}
	if len(merged) > marketArticleCap {
		merged = merged[:marketArticleCap]
	}
	return merged, false, nil
}

// extractTickers pulls likely ticker symbols out of free text.
func extractTickers(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tok := range tickerPattern.FindAllString(text, -1) {
		if _, stop := tickerStopwords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

// analyzeMarketNews runs the market-wide completion analysis, degrading to a
// locally computed summary on any failure.
func (s *Service) analyzeMarketNews(ctx context.Context, articles []models.NewsArticle) models.MarketAnalysis {
	if s.llm == nil || len(articles) == 0 {
		return s.degradedMarketAnalysis(articles)
	}

	digest := buildDigest(articles, 15)
	prompt := fmt.Sprintf(`Analyze the following market news articles and respond with ONLY a JSON object matching this schema:
{"market_sentiment": "bullish"|"bearish"|"neutral", "trending_stocks": [{"symbol": string, "reason": string, "sentiment": string}], "key_themes": [string], "daily_summary": string, "high_impact_events": [{"event": string, "impact": string, "timeframe": string}]}

Articles:
%s`, digest)

	raw, err := s.llm.Complete(ctx, "You are a financial market analyst. Respond with strict JSON only.", prompt)
	if err != nil {
		s.logger.Warn("market completion failed, using degraded analysis", zap.Error(err))
		s.countFallback(feed.ProviderOpenAI, "completion_failed")
		return s.degradedMarketAnalysis(articles)
	}

	var parsed models.MarketAnalysis
	if err := parseStrictJSON(raw, &parsed); err != nil {
		s.logger.Warn("market completion returned unparseable JSON, using degraded analysis", zap.Error(err))
		s.countFallback(feed.ProviderOpenAI, "bad_json")
		return s.degradedMarketAnalysis(articles)
	}

	parsed.MarketSentiment = normalizeSentiment(parsed.MarketSentiment)
	for i := range parsed.TrendingStocks {
		parsed.TrendingStocks[i].Sentiment = normalizeSentiment(parsed.TrendingStocks[i].Sentiment)
	}
	parsed.ArticleCount = len(articles)
	parsed.LastUpdated = s.now().UTC()
	return parsed
}

// degradedMarketAnalysis derives trending symbols and themes from the
// articles alone when no completion analysis is available.
func (s *Service) degradedMarketAnalysis(articles []models.NewsArticle) models.MarketAnalysis {
	counts := make(map[string]int)
	for _, a := range articles {
		for _, sym := range a.Symbols {
			counts[sym]++
		}
	}
	type symCount struct {
		sym string
		n   int
	}
	ranked := make([]symCount, 0, len(counts))
	for sym, n := range counts {
		ranked = append(ranked, symCount{sym, n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].n != ranked[j].n {
			return ranked[i].n > ranked[j].n
		}
		return ranked[i].sym < ranked[j].sym
	})

	trending := make([]models.TrendingStock, 0, 5)
	for _, rc := range ranked {
		if len(trending) == 5 {
			break
		}
		trending = append(trending, models.TrendingStock{
			Symbol:    rc.sym,
			Reason:    fmt.Sprintf("mentioned in %d recent articles", rc.n),
			Sentiment: models.SentimentNeutral,
		})
	}

	themes := make([]string, 0, 5)
	for _, a := range articles {
		if len(themes) == 5 {
			break
		}
		themes = append(themes, a.Title)
	}

	return models.MarketAnalysis{
		MarketSentiment: models.SentimentNeutral,
		TrendingStocks:  trending,
		KeyThemes:       themes,
		DailySummary:    fmt.Sprintf("Market summary based on %d recent articles.", len(articles)),
		ArticleCount:    len(articles),
		LastUpdated:     s.now().UTC(),
	}
}
