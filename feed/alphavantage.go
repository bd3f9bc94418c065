package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"go.uber.org/zap"

	"marketdash/models"
	apperrors "marketdash/pkg/errors"
)

const defaultTimeZone = "US/Eastern"

// AlphaVantage implements QuoteFeed against the Alpha Vantage HTTP API.
type AlphaVantage struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewAlphaVantage(apiKey, baseURL string) *AlphaVantage {
	return &AlphaVantage{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *AlphaVantage) query(ctx context.Context, params url.Values) ([]byte, error) {
	params.Set("apikey", a.apiKey)
	queryURL := a.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeFetchFailed, "build request")
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeFetchFailed, "alpha vantage request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeFetchFailed, "read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.New(apperrors.ErrCodeFetchFailed,
			fmt.Sprintf("alpha vantage returned status %d", resp.StatusCode))
	}
	if err := classifyAlphaVantage(body); err != nil {
		return nil, err
	}
	return body, nil
}

// classifyAlphaVantage maps Alpha Vantage failure signatures to typed errors.
// This is the only place this provider's error bodies are inspected; the
// formats can change without notice, so keep all signature knowledge here.
func classifyAlphaVantage(body []byte) error {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInvalidResponse, "non-JSON response")
	}
	if raw, ok := payload["Error Message"]; ok {
		var msg string
		_ = json.Unmarshal(raw, &msg)
		return apperrors.New(apperrors.ErrCodeFetchFailed, msg)
	}
	// "Note" and "Information" carry the free-tier quota/frequency text.
	if _, ok := payload["Note"]; ok {
		return apperrors.New(apperrors.ErrCodeProviderRateLimited, "alpha vantage quota exceeded")
	}
	if _, ok := payload["Information"]; ok {
		return apperrors.New(apperrors.ErrCodeProviderRateLimited, "alpha vantage quota exceeded")
	}
	return nil
}

// GlobalQuote fetches the real-time quote for one symbol.
func (a *AlphaVantage) GlobalQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", symbol)

	body, err := a.query(ctx, params)
	if err != nil {
		return nil, err
	}

	var payload struct {
		GlobalQuote map[string]string `json:"Global Quote"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInvalidResponse, "decode quote")
	}
	if len(payload.GlobalQuote) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidResponse, "missing Global Quote")
	}
	q := payload.GlobalQuote

	quote := &models.Quote{
		Symbol:           fieldOr(q["01. symbol"], symbol),
		CompanyName:      symbol + " Inc.", // quote endpoint has no company name
		CurrentPrice:     parseFloat(q["05. price"]),
		Change:           parseFloat(q["09. change"]),
		ChangePercent:    parseFloat(q["10. change percent"]),
		Volume:           parseInt(q["06. volume"]),
		FiftyTwoWeekHigh: parseFloat(q["03. high"]),
		FiftyTwoWeekLow:  parseFloat(q["04. low"]),
	}
	return quote, nil
}

// CompanyOverview fetches company fundamentals. Callers treat a failure here
// as best-effort: the Quote simply ships without fundamentals.
func (a *AlphaVantage) CompanyOverview(ctx context.Context, symbol string) (*models.Fundamentals, error) {
	params := url.Values{}
	params.Set("function", "OVERVIEW")
	params.Set("symbol", symbol)

	body, err := a.query(ctx, params)
	if err != nil {
		return nil, err
	}

	var ov map[string]string
	if err := json.Unmarshal(body, &ov); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInvalidResponse, "decode overview")
	}
	if ov["Symbol"] == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidResponse, "empty overview")
	}

	return &models.Fundamentals{
		CompanyName:      fieldOr(ov["Name"], symbol+" Inc."),
		FiftyTwoWeekHigh: optFloat(ov["52WeekHigh"]),
		FiftyTwoWeekLow:  optFloat(ov["52WeekLow"]),
		MarketCap:        optFloat(ov["MarketCapitalization"]),
		PERatio:          optFloat(ov["PERatio"]),
		PEGRatio:         optFloat(ov["PEGRatio"]),
		BookValue:        optFloat(ov["BookValue"]),
		DividendYield:    optFloat(ov["DividendYield"]),
		DividendPerShare: optFloat(ov["DividendPerShare"]),
		EPS:              optFloat(ov["EPS"]),
		Beta:             optFloat(ov["Beta"]),
		Sector:           ov["Sector"],
		Industry:         ov["Industry"],
		Description:      ov["Description"],
	}, nil
}

// DailySeries fetches the full daily bar series, ascending by date.
func (a *AlphaVantage) DailySeries(ctx context.Context, symbol string) ([]models.HistoryPoint, error) {
	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", symbol)
	params.Set("outputsize", "full")

	body, err := a.query(ctx, params)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Series map[string]map[string]string `json:"Time Series (Daily)"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInvalidResponse, "decode daily series")
	}
	if payload.Series == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidResponse, "missing daily time series")
	}

	points := make([]models.HistoryPoint, 0, len(payload.Series))
	for date, bar := range payload.Series {
		t, err := time.ParseInLocation("2006-01-02", date, time.UTC)
		if err != nil {
			zap.L().Warn("skipping bar with bad date", zap.String("date", date), zap.Error(err))
			continue
		}
		points = append(points, barToPoint(t, bar))
	}
	sortPoints(points)
	return points, nil
}

// IntradaySeries fetches 5-minute bars, ascending by timestamp, in the
// exchange time zone reported by the provider.
func (a *AlphaVantage) IntradaySeries(ctx context.Context, symbol string) ([]models.HistoryPoint, error) {
	params := url.Values{}
	params.Set("function", "TIME_SERIES_INTRADAY")
	params.Set("symbol", symbol)
	params.Set("interval", "5min")
	params.Set("outputsize", "full")

	body, err := a.query(ctx, params)
	if err != nil {
		return nil, err
	}

	var payload struct {
		MetaData map[string]string            `json:"Meta Data"`
		Series   map[string]map[string]string `json:"Time Series (5min)"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInvalidResponse, "decode intraday series")
	}
	if payload.Series == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidResponse, "missing intraday time series")
	}

	tz := payload.MetaData["6. Time Zone"]
	if tz == "" {
		tz = defaultTimeZone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc, _ = time.LoadLocation(defaultTimeZone)
	}

	points := make([]models.HistoryPoint, 0, len(payload.Series))
	for ts, bar := range payload.Series {
		t, err := time.ParseInLocation("2006-01-02 15:04:05", ts, loc)
		if err != nil {
			zap.L().Warn("skipping bar with bad timestamp", zap.String("timestamp", ts), zap.Error(err))
			continue
		}
		points = append(points, barToPoint(t, bar))
	}
	sortPoints(points)
	return points, nil
}

func barToPoint(t time.Time, bar map[string]string) models.HistoryPoint {
	return models.HistoryPoint{
		Date:   t,
		Open:   parseFloat(bar["1. open"]),
		High:   parseFloat(bar["2. high"]),
		Low:    parseFloat(bar["3. low"]),
		Close:  parseFloat(bar["4. close"]),
		Volume: parseInt(bar["5. volume"]),
	}
}

func sortPoints(points []models.HistoryPoint) {
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
}
