package models

import "time"

// Quote is the merged real-time quote plus optional company fundamentals.
// Fundamentals come from a best-effort overview call; when that call fails
// the pointer fields stay nil and marshal as JSON null.
type Quote struct {
	Symbol           string   `json:"symbol"`
	CompanyName      string   `json:"company_name"`
	CurrentPrice     float64  `json:"current_price"`
	Change           float64  `json:"change"`
	ChangePercent    float64  `json:"change_percent"`
	Volume           int64    `json:"volume"`
	FiftyTwoWeekHigh float64  `json:"52_week_high"`
	FiftyTwoWeekLow  float64  `json:"52_week_low"`
	MarketCap        *float64 `json:"market_cap"`
	PERatio          *float64 `json:"pe_ratio"`
	PEGRatio         *float64 `json:"peg_ratio"`
	BookValue        *float64 `json:"book_value"`
	DividendYield    *float64 `json:"dividend_yield"`
	DividendPerShare *float64 `json:"dividend_per_share"`
	EPS              *float64 `json:"eps"`
	Beta             *float64 `json:"beta"`
	Sector           string   `json:"sector,omitempty"`
	Industry         string   `json:"industry,omitempty"`
	Description      string   `json:"description,omitempty"`
	IsMockData       bool     `json:"is_mock_data"`
}

// Fundamentals holds the company-overview fields merged into a Quote.
type Fundamentals struct {
	CompanyName      string
	FiftyTwoWeekHigh *float64
	FiftyTwoWeekLow  *float64
	MarketCap        *float64
	PERatio          *float64
	PEGRatio         *float64
	BookValue        *float64
	DividendYield    *float64
	DividendPerShare *float64
	EPS              *float64
	Beta             *float64
	Sector           string
	Industry         string
	Description      string
}

// HistoryPoint is a single OHLCV bar. Date carries either a trading day or
// an intraday timestamp depending on the requested period.
type HistoryPoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// HistorySeries is an ascending-by-time bar sequence for one symbol and period.
type HistorySeries struct {
	Symbol     string         `json:"symbol"`
	Period     string         `json:"period"`
	Data       []HistoryPoint `json:"data"`
	PeriodHigh float64        `json:"period_high"`
	PeriodLow  float64        `json:"period_low"`
	IsMockData bool           `json:"is_mock_data"`
}
