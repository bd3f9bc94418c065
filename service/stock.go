package service

import (
	"context"

	"go.uber.org/zap"

	"marketdash/feed"
	"marketdash/models"
	apperrors "marketdash/pkg/errors"
)

// GetStock returns the merged quote + fundamentals for one symbol. A quota
// signature from the quote call substitutes a synthetic quote; an overview
// failure only omits the fundamentals fields.
func (s *Service) GetStock(ctx context.Context, symbol string) (*models.Quote, error) {
	if s.quotes == nil {
		s.countFallback(feed.ProviderAlphaVantage, "not_configured")
		return feed.MockQuote(symbol), nil
	}

	quote, err := s.quotes.GlobalQuote(ctx, symbol)
	if err != nil {
		if apperrors.IsRateLimited(err) || apperrors.IsUnavailable(err) {
			s.logger.Warn("quote provider rate limited, serving mock data",
				zap.String("symbol", symbol), zap.Error(err))
			s.countFallback(feed.ProviderAlphaVantage, "rate_limited")
			return feed.MockQuote(symbol), nil
		}
		return nil, err
	}

	// Overview is best-effort: on failure the quote ships without
	// fundamentals, it never fails the request.
	fundamentals, err := s.quotes.CompanyOverview(ctx, symbol)
	if err != nil {
		s.logger.Warn("overview unavailable, omitting fundamentals",
			zap.String("symbol", symbol), zap.Error(err))
		return quote, nil
	}
	mergeFundamentals(quote, fundamentals)
	return quote, nil
}

func mergeFundamentals(q *models.Quote, f *models.Fundamentals) {
	if f.CompanyName != "" {
		q.CompanyName = f.CompanyName
	}
	if f.FiftyTwoWeekHigh != nil {
		q.FiftyTwoWeekHigh = *f.FiftyTwoWeekHigh
	}
	if f.FiftyTwoWeekLow != nil {
		q.FiftyTwoWeekLow = *f.FiftyTwoWeekLow
	}
	q.MarketCap = f.MarketCap
	q.PERatio = f.PERatio
	q.PEGRatio = f.PEGRatio
	q.BookValue = f.BookValue
	q.DividendYield = f.DividendYield
	q.DividendPerShare = f.DividendPerShare
	q.EPS = f.EPS
	q.Beta = f.Beta
	q.Sector = f.Sector
	q.Industry = f.Industry
	q.Description = f.Description
}
