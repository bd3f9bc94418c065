package feed

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"marketdash/models"
)

// Synthetic data generators. These stand in for each provider when the real
// call fails with a rate-limit or unavailable signature, so the dashboard
// stays populated. Values are randomized around a per-symbol base price but
// the seed is derived from the inputs, so repeated calls keep a stable shape.

// basePrices anchors mock prices for well-known tickers.
var basePrices = map[string]float64{
	"AAPL":  175.50,
	"GOOGL": 140.25,
	"MSFT":  380.80,
	"AMZN":  155.30,
	"TSLA":  250.75,
	"META":  485.20,
	"NVDA":  495.60,
	"NFLX":  445.10,
	"AMD":   122.40,
	"INTC":  43.15,
}

const defaultBasePrice = 100.0

// mockIntervals is the period-specific bar count for synthetic series:
// 5-minute bars over one 6.5h session, then daily bars.
var mockIntervals = map[string]int{
	"1d": 78,
	"1w": 7,
	"3m": 90,
	"1y": 365,
}

// mockVolatility is the per-step price drift fraction for each period.
var mockVolatility = map[string]float64{
	"1d": 0.002,
	"1w": 0.01,
	"3m": 0.02,
	"1y": 0.025,
}

func basePrice(symbol string) float64 {
	if p, ok := basePrices[symbol]; ok {
		return p
	}
	return defaultBasePrice
}

func seededRand(parts ...string) *rand.Rand {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// MockQuote builds a synthetic Quote. change_percent is derived from the
// generated change, never sourced independently.
func MockQuote(symbol string) *models.Quote {
	rng := seededRand("quote", symbol)
	price := basePrice(symbol) * (1 + (rng.Float64()-0.5)*0.02)
	change := price * (rng.Float64() - 0.5) * 0.04

	marketCap := price * 1e9 * (1 + rng.Float64())
	pe := 15 + rng.Float64()*25
	eps := price / pe
	beta := 0.8 + rng.Float64()*0.8

	return &models.Quote{
		Symbol:           symbol,
		CompanyName:      symbol + " Inc.",
		CurrentPrice:     round2(price),
		Change:           round2(change),
		ChangePercent:    round2(change / price * 100),
		Volume:           int64(1e6 + rng.Intn(50_000_000)),
		FiftyTwoWeekHigh: round2(price * 1.25),
		FiftyTwoWeekLow:  round2(price * 0.75),
		MarketCap:        &marketCap,
		PERatio:          &pe,
		EPS:              &eps,
		Beta:             &beta,
		Sector:           "Technology",
		Industry:         "Consumer Electronics",
		IsMockData:       true,
	}
}

// MockSeries builds a synthetic HistorySeries: a seeded random walk around
// the symbol's base price with period-scaled volatility. 1d produces 5-minute
// bars across the most recent session; other periods produce daily bars.
func MockSeries(symbol, period string, now time.Time) *models.HistorySeries {
	count := mockIntervals[period]
	vol := mockVolatility[period]
	rng := seededRand("series", symbol, period)

	var start time.Time
	var step time.Duration
	if period == "1d" {
		loc, _ := time.LoadLocation("America/New_York")
		session := PriorTradingDay(now.In(loc))
		start = time.Date(session.Year(), session.Month(), session.Day(), 9, 30, 0, 0, loc)
		step = 5 * time.Minute
	} else {
		day := now.UTC().Truncate(24 * time.Hour)
		start = day.AddDate(0, 0, -count+1)
		step = 24 * time.Hour
	}

	price := basePrice(symbol)
	points := make([]models.HistoryPoint, 0, count)
	for i := 0; i < count; i++ {
		drift := price * vol * (rng.Float64()*2 - 1)
		open := price
		close := price + drift
		high := maxF(open, close) * (1 + rng.Float64()*vol)
		low := minF(open, close) * (1 - rng.Float64()*vol)
		points = append(points, models.HistoryPoint{
			Date:   start.Add(time.Duration(i) * step),
			Open:   round2(open),
			High:   round2(high),
			Low:    round2(low),
			Close:  round2(close),
			Volume: int64(100_000 + rng.Intn(5_000_000)),
		})
		price = close
	}

	series := &models.HistorySeries{
		Symbol:     symbol,
		Period:     period,
		Data:       points,
		IsMockData: true,
	}
	series.PeriodHigh, series.PeriodLow = SeriesRange(points)
	return series
}

// PriorTradingDay walks back from t to the most recent weekday whose session
// has already opened: weekend and pre-market times resolve to the previous
// trading day.
func PriorTradingDay(t time.Time) time.Time {
	day := t
	open := time.Date(day.Year(), day.Month(), day.Day(), 9, 30, 0, 0, day.Location())
	if day.Before(open) {
		day = day.AddDate(0, 0, -1)
	}
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

// SeriesRange returns max(high), min(low) over the points, or 0/0 on empty
// input. An empty filtered set is an explicit edge case, not an error.
func SeriesRange(points []models.HistoryPoint) (high, low float64) {
	if len(points) == 0 {
		return 0, 0
	}
	high, low = points[0].High, points[0].Low
	for _, p := range points[1:] {
		if p.High > high {
			high = p.High
		}
		if p.Low < low {
			low = p.Low
		}
	}
	return high, low
}

// MockSymbolArticles is the fixed fallback article set for one symbol.
func MockSymbolArticles(symbol string, now time.Time) []models.NewsArticle {
	return []models.NewsArticle{
		{
			Title:       fmt.Sprintf("%s Reports Strong Quarterly Earnings, Beats Analyst Estimates", symbol),
			Description: fmt.Sprintf("%s announced quarterly results that exceeded Wall Street expectations, driven by steady revenue growth.", symbol),
			URL:         fmt.Sprintf("https://example.com/news/%s-earnings", symbol),
			PublishedAt: now.Add(-6 * time.Hour),
			Source:      "Market Wire",
		},
		{
			Title:       fmt.Sprintf("Analysts Raise Price Target on %s Stock", symbol),
			Description: fmt.Sprintf("Several analysts lifted their price targets on %s shares following upbeat guidance.", symbol),
			URL:         fmt.Sprintf("https://example.com/news/%s-price-target", symbol),
			PublishedAt: now.Add(-20 * time.Hour),
			Source:      "Financial Daily",
		},
		{
			Title:       fmt.Sprintf("%s Shares Move on Heavy Trading Volume", symbol),
			Description: fmt.Sprintf("Trading volume in %s spiked as investors weighed the latest quarterly financial results.", symbol),
			URL:         fmt.Sprintf("https://example.com/news/%s-volume", symbol),
			PublishedAt: now.Add(-42 * time.Hour),
			Source:      "Street Report",
		},
	}
}

// MockMarketArticles is the larger fixed fallback set for market-wide news.
func MockMarketArticles(now time.Time) []models.NewsArticle {
	return []models.NewsArticle{
		{
			Title:       "Stocks Rally as Fed Signals Pause on Rate Hikes",
			Description: "Major indexes climbed after the Federal Reserve indicated it may hold interest rates steady.",
			URL:         "https://example.com/news/fed-pause",
			PublishedAt: now.Add(-3 * time.Hour),
			Source:      "Market Wire",
			Symbols:     []string{"SPY"},
		},
		{
			Title:       "Tech Earnings Season Kicks Off With Upbeat Forecasts",
			Description: "Large-cap technology companies begin reporting quarterly earnings this week with optimistic guidance.",
			URL:         "https://example.com/news/tech-earnings",
			PublishedAt: now.Add(-8 * time.Hour),
			Source:      "Financial Daily",
			Symbols:     []string{"AAPL", "MSFT"},
		},
		{
			Title:       "Energy Sector Leads Gains as Oil Prices Stabilize",
			Description: "Energy stocks outperformed the broader market as crude prices found support.",
			URL:         "https://example.com/news/energy-gains",
			PublishedAt: now.Add(-14 * time.Hour),
			Source:      "Street Report",
			Symbols:     []string{"XOM"},
		},
		{
			Title:       "Merger Activity Picks Up in Financial Services",
			Description: "Deal-making accelerated this quarter with several mid-cap acquisitions announced.",
			URL:         "https://example.com/news/ma-activity",
			PublishedAt: now.Add(-26 * time.Hour),
			Source:      "Market Wire",
		},
		{
			Title:       "Treasury Yields Dip Ahead of Inflation Data",
			Description: "Bond yields eased as traders positioned ahead of this week's consumer price report.",
			URL:         "https://example.com/news/yields-dip",
			PublishedAt: now.Add(-30 * time.Hour),
			Source:      "Financial Daily",
		},
		{
			Title:       "IPO Market Shows Signs of Life With New Listings",
			Description: "Two technology startups priced above their expected ranges in this week's public offerings.",
			URL:         "https://example.com/news/ipo-market",
			PublishedAt: now.Add(-40 * time.Hour),
			Source:      "Street Report",
		},
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
