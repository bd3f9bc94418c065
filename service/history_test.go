package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"marketdash/models"
	apperrors "marketdash/pkg/errors"
	"marketdash/pkg/metrics"
)

func dailyBars(now time.Time, days int) []models.HistoryPoint {
	points := make([]models.HistoryPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		points = append(points, models.HistoryPoint{
			Date:  time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
			Open:  100, High: 105 + float64(i), Low: 95 - float64(i), Close: 102,
			Volume: 1000,
		})
	}
	return points
}

func TestGetHistory_DailyLookbackAndRange(t *testing.T) {
	now := time.Date(2025, 6, 4, 15, 0, 0, 0, time.UTC)
	quotes := &stubQuotes{
		dailyFn: func(_ context.Context, _ string) ([]models.HistoryPoint, error) {
			return dailyBars(now, 200), nil
		},
	}

	svc := newTestService(quotes, nil, nil)
	series, err := svc.GetHistory(context.Background(), "AAPL", "3m")
	require.NoError(t, err)

	require.Equal(t, "AAPL", series.Symbol)
	require.Equal(t, "3m", series.Period)
	require.False(t, series.IsMockData)
	require.LessOrEqual(t, len(series.Data), 90, "3m must not include bars older than 90 days")
	require.NotEmpty(t, series.Data)

	for i := 1; i < len(series.Data); i++ {
		require.True(t, series.Data[i].Date.After(series.Data[i-1].Date))
	}

	wantHigh, wantLow := series.Data[0].High, series.Data[0].Low
	for _, p := range series.Data[1:] {
		if p.High > wantHigh {
			wantHigh = p.High
		}
		if p.Low < wantLow {
			wantLow = p.Low
		}
	}
	require.Equal(t, wantHigh, series.PeriodHigh)
	require.Equal(t, wantLow, series.PeriodLow)
}

func TestGetHistory_IntradayKeepsOnlyLastSession(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Two sessions of 5-minute bars plus pre-market noise on the second day.
	var bars []models.HistoryPoint
	for _, day := range []int{3, 4} { // Tue, Wed June 2025
		start := time.Date(2025, 6, day, 9, 0, 0, 0, loc) // 09:00, before the open
		for i := 0; i < 90; i++ {
			bars = append(bars, models.HistoryPoint{
				Date: start.Add(time.Duration(i) * 5 * time.Minute),
				Open: 100, High: 101, Low: 99, Close: 100, Volume: 10,
			})
		}
	}

	quotes := &stubQuotes{
		intradayFn: func(_ context.Context, _ string) ([]models.HistoryPoint, error) {
			return bars, nil
		},
	}

	svc := newTestService(quotes, nil, nil)
	series, err := svc.GetHistory(context.Background(), "AAPL", "1d")
	require.NoError(t, err)
	require.NotEmpty(t, series.Data)

	open := time.Date(2025, 6, 4, 9, 30, 0, 0, loc)
	close := time.Date(2025, 6, 4, 16, 0, 0, 0, loc)
	for _, p := range series.Data {
		ts := p.Date.In(loc)
		require.Equal(t, 4, ts.Day(), "only the latest session's bars survive")
		require.False(t, ts.Before(open), "pre-market bars must be dropped")
		require.False(t, ts.After(close), "post-close bars must be dropped")
	}
}

func TestGetHistory_CacheHitSkipsProvider(t *testing.T) {
	now := time.Date(2025, 6, 4, 15, 0, 0, 0, time.UTC)
	quotes := &stubQuotes{
		dailyFn: func(_ context.Context, _ string) ([]models.HistoryPoint, error) {
			return dailyBars(now, 30), nil
		},
	}

	svc := newTestService(quotes, nil, nil)

	first, err := svc.GetHistory(context.Background(), "AAPL", "1w")
	require.NoError(t, err)
	second, err := svc.GetHistory(context.Background(), "AAPL", "1w")
	require.NoError(t, err)

	require.Equal(t, 1, quotes.dailyCalls, "repeat request within the TTL must be served from cache")
	require.Equal(t, first, second)
}

// ttlStore is a cache.Store with an injectable clock, so expiry can be
// driven without sleeping.
type ttlStore struct {
	now   func() time.Time
	items map[string]ttlEntry
}

type ttlEntry struct {
	val []byte
	exp time.Time
}

func newTTLStore(now func() time.Time) *ttlStore {
	return &ttlStore{now: now, items: make(map[string]ttlEntry)}
}

func (s *ttlStore) Get(_ context.Context, key string) ([]byte, bool) {
	e, ok := s.items[key]
	if !ok || s.now().After(e.exp) {
		return nil, false
	}
	return e.val, true
}

func (s *ttlStore) Set(_ context.Context, key string, val []byte, ttl time.Duration) {
	s.items[key] = ttlEntry{val: val, exp: s.now().Add(ttl)}
}

func TestGetHistory_RefreshesAfterTTL(t *testing.T) {
	base := time.Date(2025, 6, 4, 15, 0, 0, 0, time.UTC)
	now := base
	quotes := &stubQuotes{
		dailyFn: func(_ context.Context, _ string) ([]models.HistoryPoint, error) {
			return dailyBars(base, 30), nil
		},
	}

	svc := NewService(quotes, nil, nil, newTTLStore(func() time.Time { return now }),
		metrics.Nop{}, zap.NewNop(), time.Hour)
	svc.now = func() time.Time { return base }

	_, err := svc.GetHistory(context.Background(), "AAPL", "1w")
	require.NoError(t, err)

	now = now.Add(59 * time.Minute)
	_, err = svc.GetHistory(context.Background(), "AAPL", "1w")
	require.NoError(t, err)
	require.Equal(t, 1, quotes.dailyCalls, "a call inside the TTL is served from cache")

	now = now.Add(2 * time.Minute)
	_, err = svc.GetHistory(context.Background(), "AAPL", "1w")
	require.NoError(t, err)
	require.Equal(t, 2, quotes.dailyCalls, "a call after the TTL goes back to the provider")
}

func TestGetHistory_CacheKeyedByPeriod(t *testing.T) {
	now := time.Date(2025, 6, 4, 15, 0, 0, 0, time.UTC)
	quotes := &stubQuotes{
		dailyFn: func(_ context.Context, _ string) ([]models.HistoryPoint, error) {
			return dailyBars(now, 400), nil
		},
	}

	svc := newTestService(quotes, nil, nil)

	short, err := svc.GetHistory(context.Background(), "AAPL", "1w")
	require.NoError(t, err)
	long, err := svc.GetHistory(context.Background(), "AAPL", "1y")
	require.NoError(t, err)

	require.Equal(t, 2, quotes.dailyCalls)
	require.Greater(t, len(long.Data), len(short.Data))
}

func TestGetHistory_QuotaFallsBackToMock(t *testing.T) {
	quotes := &stubQuotes{
		dailyFn: func(_ context.Context, _ string) ([]models.HistoryPoint, error) {
			return nil, apperrors.New(apperrors.ErrCodeProviderRateLimited, "quota exceeded")
		},
	}

	svc := newTestService(quotes, nil, nil)
	series, err := svc.GetHistory(context.Background(), "AAPL", "1y")
	require.NoError(t, err)
	require.True(t, series.IsMockData)
	require.Len(t, series.Data, 365)
}

func TestGetHistory_OtherErrorsPropagate(t *testing.T) {
	quotes := &stubQuotes{
		intradayFn: func(_ context.Context, _ string) ([]models.HistoryPoint, error) {
			return nil, apperrors.New(apperrors.ErrCodeInvalidResponse, "missing intraday time series")
		},
	}

	svc := newTestService(quotes, nil, nil)
	_, err := svc.GetHistory(context.Background(), "AAPL", "1d")
	require.Error(t, err)
	require.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidResponse))
}

func TestGetHistory_NoProviderServesMock(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	series, err := svc.GetHistory(context.Background(), "MSFT", "1w")
	require.NoError(t, err)
	require.True(t, series.IsMockData)
	require.Len(t, series.Data, 7)
}
