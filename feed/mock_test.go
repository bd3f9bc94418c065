package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMockQuote_Deterministic(t *testing.T) {
	a := MockQuote("AAPL")
	b := MockQuote("AAPL")
	require.Equal(t, a, b, "same symbol must yield the same synthetic quote")

	other := MockQuote("TSLA")
	require.NotEqual(t, a.CurrentPrice, other.CurrentPrice)
}

func TestMockQuote_Invariants(t *testing.T) {
	q := MockQuote("MSFT")
	require.True(t, q.IsMockData)
	require.Equal(t, "MSFT", q.Symbol)
	require.Equal(t, "MSFT Inc.", q.CompanyName)
	require.Greater(t, q.CurrentPrice, 0.0)
	require.Greater(t, q.FiftyTwoWeekHigh, q.CurrentPrice)
	require.Less(t, q.FiftyTwoWeekLow, q.CurrentPrice)
	require.NotNil(t, q.MarketCap)
	require.NotNil(t, q.PERatio)

	wantPct := round2(q.Change / q.CurrentPrice * 100)
	require.InDelta(t, wantPct, q.ChangePercent, 0.02, "change_percent must derive from change")
}

func TestMockSeries_BarCounts(t *testing.T) {
	now := time.Date(2025, 6, 4, 15, 0, 0, 0, time.UTC) // a Wednesday
	for period, want := range mockIntervals {
		s := MockSeries("AAPL", period, now)
		require.Len(t, s.Data, want, "period %s", period)
		require.True(t, s.IsMockData)
		require.Equal(t, period, s.Period)
	}
}

func TestMockSeries_AscendingAndRange(t *testing.T) {
	now := time.Date(2025, 6, 4, 15, 0, 0, 0, time.UTC)
	s := MockSeries("NVDA", "3m", now)

	for i := 1; i < len(s.Data); i++ {
		require.True(t, s.Data[i].Date.After(s.Data[i-1].Date))
	}

	high, low := SeriesRange(s.Data)
	require.Equal(t, high, s.PeriodHigh)
	require.Equal(t, low, s.PeriodLow)
	require.GreaterOrEqual(t, high, low)
}

func TestMockSeries_IntradaySession(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// A Wednesday afternoon: the session is the same day.
	now := time.Date(2025, 6, 4, 15, 0, 0, 0, loc)
	s := MockSeries("AAPL", "1d", now)
	require.Len(t, s.Data, 78)

	first := s.Data[0].Date.In(loc)
	require.Equal(t, time.Wednesday, first.Weekday())
	require.Equal(t, 9, first.Hour())
	require.Equal(t, 30, first.Minute())

	last := s.Data[len(s.Data)-1].Date.In(loc)
	require.Equal(t, 15, last.Hour())
	require.Equal(t, 55, last.Minute())
}

func TestPriorTradingDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Saturday resolves to Friday.
	sat := time.Date(2025, 6, 7, 12, 0, 0, 0, loc)
	require.Equal(t, time.Friday, PriorTradingDay(sat).Weekday())

	// Monday pre-market resolves to Friday.
	monEarly := time.Date(2025, 6, 9, 8, 0, 0, 0, loc)
	require.Equal(t, time.Friday, PriorTradingDay(monEarly).Weekday())

	// Monday after the open stays Monday.
	monOpen := time.Date(2025, 6, 9, 10, 0, 0, 0, loc)
	require.Equal(t, time.Monday, PriorTradingDay(monOpen).Weekday())
}

func TestSeriesRange_Empty(t *testing.T) {
	high, low := SeriesRange(nil)
	require.Zero(t, high)
	require.Zero(t, low)
}

func TestMockArticles(t *testing.T) {
	now := time.Date(2025, 6, 4, 15, 0, 0, 0, time.UTC)

	symArticles := MockSymbolArticles("AAPL", now)
	require.Len(t, symArticles, 3)
	seen := map[string]struct{}{}
	for _, a := range symArticles {
		require.Contains(t, a.Title, "AAPL")
		require.NotEmpty(t, a.URL)
		_, dup := seen[a.URL]
		require.False(t, dup, "mock article URLs must be unique")
		seen[a.URL] = struct{}{}
		require.True(t, a.PublishedAt.Before(now))
	}

	mktArticles := MockMarketArticles(now)
	require.Len(t, mktArticles, 6)
}
