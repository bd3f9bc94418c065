package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"marketdash/feed"
	"marketdash/models"
	apperrors "marketdash/pkg/errors"
	"marketdash/utils"
)

// GetHistory returns the price series for (symbol, period). The cache is
// consulted before any outbound call; both real and synthetic series are
// cached so a rate-limited provider is not hammered every request.
func (s *Service) GetHistory(ctx context.Context, symbol, period string) (*models.HistorySeries, error) {
	key := "history:" + symbol + ":" + period

	if raw, ok := s.store.Get(ctx, key); ok {
		var cached models.HistorySeries
		if err := json.Unmarshal(raw, &cached); err == nil {
			s.collector.IncrementCounter("history_cache_hits_total", nil)
			return &cached, nil
		}
		s.logger.Warn("dropping undecodable cache entry", zap.String("key", key))
	}

	series, err := s.fetchHistory(ctx, symbol, period)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(series); err == nil {
		s.store.Set(ctx, key, raw, s.historyTTL)
	}
	return series, nil
}

func (s *Service) fetchHistory(ctx context.Context, symbol, period string) (*models.HistorySeries, error) {
	if s.quotes == nil {
		s.countFallback(feed.ProviderAlphaVantage, "not_configured")
		return feed.MockSeries(symbol, period, s.now()), nil
	}

	var points []models.HistoryPoint
	var err error
	if period == "1d" {
		points, err = s.quotes.IntradaySeries(ctx, symbol)
		if err == nil {
			points = filterToLastSession(points)
		}
	} else {
		points, err = s.quotes.DailySeries(ctx, symbol)
		if err == nil {
			points = filterByLookback(points, utils.PeriodLookbackDays[period], s.now())
		}
	}
	if err != nil {
		if apperrors.IsRateLimited(err) || apperrors.IsUnavailable(err) {
			s.logger.Warn("series provider rate limited, serving mock data",
				zap.String("symbol", symbol), zap.String("period", period), zap.Error(err))
			s.countFallback(feed.ProviderAlphaVantage, "rate_limited")
			return feed.MockSeries(symbol, period, s.now()), nil
		}
		return nil, err
	}

	series := &models.HistorySeries{
		Symbol: symbol,
		Period: period,
		Data:   points,
	}
	series.PeriodHigh, series.PeriodLow = feed.SeriesRange(points)
	return series, nil
}

// filterToLastSession keeps only the bars of the most recent completed
// trading session: 09:30-16:00 US Eastern on the session day implied by the
// newest bar, walking back over weekends and pre-market timestamps.
func filterToLastSession(points []models.HistoryPoint) []models.HistoryPoint {
	if len(points) == 0 {
		return points
	}
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return points
	}

	latest := points[len(points)-1].Date.In(loc)
	session := feed.PriorTradingDay(latest)
	open := time.Date(session.Year(), session.Month(), session.Day(), 9, 30, 0, 0, loc)
	close := time.Date(session.Year(), session.Month(), session.Day(), 16, 0, 0, 0, loc)

	kept := make([]models.HistoryPoint, 0, len(points))
	for _, p := range points {
		t := p.Date.In(loc)
		if !t.Before(open) && !t.After(close) {
			kept = append(kept, p)
		}
	}
	return kept
}

// filterByLookback keeps daily bars within the trailing lookback window.
func filterByLookback(points []models.HistoryPoint, days int, now time.Time) []models.HistoryPoint {
	cutoff := now.AddDate(0, 0, -days)
	kept := make([]models.HistoryPoint, 0, len(points))
	for _, p := range points {
		if p.Date.After(cutoff) {
			kept = append(kept, p)
		}
	}
	return kept
}
