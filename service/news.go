package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"marketdash/feed"
	"marketdash/models"
	apperrors "marketdash/pkg/errors"
)

// financialDomains is the allow-list used for strict per-symbol searches.
var financialDomains = []string{
	"reuters.com", "bloomberg.com", "cnbc.com", "marketwatch.com",
	"finance.yahoo.com", "wsj.com", "fool.com", "seekingalpha.com",
	"barrons.com", "investors.com",
}

// symbolQueries are the keyword-combination searches run per symbol.
var symbolQueries = []string{
	"%s earnings OR revenue",
	"%s stock OR shares",
	"%s analyst OR \"price target\"",
	"%s financial OR quarterly",
}

// financialKeywords gate the strict filter: an article must mention at least
// one of these to count as financial coverage of the symbol.
var financialKeywords = []string{
	"earnings", "revenue", "stock", "shares", "analyst", "price target",
	"quarterly", "financial", "profit", "guidance", "dividend", "trading",
}

// titleExclusions drop consumer/product stories that mention a ticker
// without being about the company's stock.
var titleExclusions = []string{"iphone", "ipad", "game", "gaming", "recipe", "review"}

const (
	symbolNewsLookback = 7 * 24 * time.Hour
	strictArticleCap   = 10
	relaxedArticleCap  = 5
	rawArticleCap      = 5
)

// GetNews returns the per-symbol news analysis payload.
func (s *Service) GetNews(ctx context.Context, symbol string) (*models.NewsResponse, error) {
	articles, isMock, err := s.symbolArticles(ctx, symbol)
	if err != nil {
		return nil, err
	}

	analysis := s.analyzeSymbolNews(ctx, symbol, articles)

	raw := articles
	if len(raw) > rawArticleCap {
		raw = raw[:rawArticleCap]
	}
	return &models.NewsResponse{
		Symbol:      symbol,
		Analysis:    analysis,
		RawArticles: raw,
		LastUpdated: s.now().UTC(),
		IsMockData:  isMock,
	}, nil
}

// symbolArticles runs the strict keyword searches, falls back to a relaxed
// bare-symbol query when strict filtering yields nothing, and substitutes the
// fixed mock set on a rate-limit or missing-key signature.
func (s *Service) symbolArticles(ctx context.Context, symbol string) ([]models.NewsArticle, bool, error) {
	if s.news == nil {
		s.countFallback(feed.ProviderNewsAPI, "not_configured")
		return feed.MockSymbolArticles(symbol, s.now()), true, nil
	}

	from := s.now().Add(-symbolNewsLookback)
	var merged []models.NewsArticle
	for _, tmpl := range symbolQueries {
		batch, err := s.news.Search(ctx, feed.NewsSearch{
			Query:    fmt.Sprintf(tmpl, symbol),
			Domains:  financialDomains,
			From:     from,
			PageSize: 20,
		})
		if err != nil {
			if apperrors.IsRateLimited(err) || apperrors.IsUnavailable(err) {
				s.logger.Warn("news provider unavailable, serving mock articles",
					zap.String("symbol", symbol), zap.Error(err))
				s.countFallback(feed.ProviderNewsAPI, "rate_limited")
				return feed.MockSymbolArticles(symbol, s.now()), true, nil
			}
			return nil, false, err
		}
		merged = append(merged, batch...)
	}

	strict := make([]models.NewsArticle, 0, len(merged))
	for _, a := range merged {
		if keepStrict(a, symbol) {
			strict = append(strict, a)
		}
	}
	strict = dedupeByURL(strict)
	if len(strict) > strictArticleCap {
		strict = strict[:strictArticleCap]
	}
	if len(strict) > 0 {
		return strict, false, nil
	}

	// Strict filtering found nothing; retry with a bare symbol query and a
	// relaxed accept rule.
	relaxed, err := s.news.Search(ctx, feed.NewsSearch{
		Query:    symbol,
		From:     from,
		PageSize: 20,
	})
	if err != nil {
		if apperrors.IsRateLimited(err) || apperrors.IsUnavailable(err) {
			s.countFallback(feed.ProviderNewsAPI, "rate_limited")
			return feed.MockSymbolArticles(symbol, s.now()), true, nil
		}
		return nil, false, err
	}
	kept := make([]models.NewsArticle, 0, len(relaxed))
	for _, a := range relaxed {
		if mentionsSymbol(a, symbol) {
			kept = append(kept, a)
		}
	}
	kept = dedupeByURL(kept)
	if len(kept) > relaxedArticleCap {
		kept = kept[:relaxedArticleCap]
	}
	return kept, false, nil
}

// keepStrict applies the strict per-symbol accept rule.
func keepStrict(a models.NewsArticle, symbol string) bool {
	if !mentionsSymbol(a, symbol) {
		return false
	}
	title := strings.ToLower(a.Title)
	for _, term := range titleExclusions {
		if strings.Contains(title, term) {
			return false
		}
	}
	text := strings.ToLower(a.Title + " " + a.Description)
	for _, kw := range financialKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func mentionsSymbol(a models.NewsArticle, symbol string) bool {
	needle := strings.ToLower(symbol)
	return strings.Contains(strings.ToLower(a.Title), needle) ||
		strings.Contains(strings.ToLower(a.Description), needle)
}

// dedupeByURL sorts newest-first and drops later duplicates, so for two
// articles sharing a URL the latest-published one is retained.
func dedupeByURL(articles []models.NewsArticle) []models.NewsArticle {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
	seen := make(map[string]struct{}, len(articles))
	out := articles[:0]
	for _, a := range articles {
		if _, dup := seen[a.URL]; dup {
			continue
		}
		seen[a.URL] = struct{}{}
		out = append(out, a)
	}
	return out
}

// analyzeSymbolNews asks the completion provider for a strict-JSON analysis
// of the article digest, degrading to a locally computed summary on any
// failure. The result always satisfies the sentiment invariants.
func (s *Service) analyzeSymbolNews(ctx context.Context, symbol string, articles []models.NewsArticle) models.NewsAnalysis {
	if s.llm == nil || len(articles) == 0 {
		return degradedSymbolAnalysis(symbol, articles)
	}

	digest := buildDigest(articles, 5)
	prompt := fmt.Sprintf(`Analyze the following news articles about %s and respond with ONLY a JSON object matching this schema:
{"summary": string, "sentiment": "bullish"|"bearish"|"neutral", "sentiment_score": number between -1.0 and 1.0, "key_points": [string], "reasoning": string}

Articles:
%s`, symbol, digest)

	raw, err := s.llm.Complete(ctx, "You are a financial news analyst. Respond with strict JSON only.", prompt)
	if err != nil {
		s.logger.Warn("completion failed, using degraded analysis",
			zap.String("symbol", symbol), zap.Error(err))
		s.countFallback(feed.ProviderOpenAI, "completion_failed")
		return degradedSymbolAnalysis(symbol, articles)
	}

	var parsed models.NewsAnalysis
	if err := parseStrictJSON(raw, &parsed); err != nil {
		s.logger.Warn("completion returned unparseable JSON, using degraded analysis",
			zap.String("symbol", symbol), zap.Error(err))
		s.countFallback(feed.ProviderOpenAI, "bad_json")
		return degradedSymbolAnalysis(symbol, articles)
	}

	parsed.Sentiment = normalizeSentiment(parsed.Sentiment)
	parsed.SentimentScore = clampScore(parsed.SentimentScore)
	parsed.ArticleCount = len(articles)
	return parsed
}

// degradedSymbolAnalysis builds a neutral analysis purely from the articles
// already fetched.
func degradedSymbolAnalysis(symbol string, articles []models.NewsArticle) models.NewsAnalysis {
	points := make([]string, 0, 5)
	for _, a := range articles {
		if len(points) == 5 {
			break
		}
		points = append(points, a.Title)
	}
	return models.NewsAnalysis{
		Summary:        fmt.Sprintf("Recent news coverage for %s based on %d articles.", symbol, len(articles)),
		Sentiment:      models.SentimentNeutral,
		SentimentScore: 0,
		KeyPoints:      points,
		Reasoning:      "Automated summary; completion analysis unavailable.",
		ArticleCount:   len(articles),
	}
}

// buildDigest renders a bounded-size text digest of the top n articles.
func buildDigest(articles []models.NewsArticle, n int) string {
	if len(articles) > n {
		articles = articles[:n]
	}
	var b strings.Builder
	for i, a := range articles {
		fmt.Fprintf(&b, "%d. %s (%s, %s)\n", i+1, a.Title, a.Source,
			a.PublishedAt.Format("2006-01-02"))
		if a.Description != "" {
			fmt.Fprintf(&b, "   %s\n", a.Description)
		}
	}
	return b.String()
}
