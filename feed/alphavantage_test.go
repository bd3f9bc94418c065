package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "marketdash/pkg/errors"
)

func newAlphaVantageServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NotEmpty(t, r.URL.Query().Get("apikey"), "requests must carry the api key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func TestGlobalQuote_ParsesFields(t *testing.T) {
	srv := newAlphaVantageServer(t, `{
		"Global Quote": {
			"01. symbol": "AAPL",
			"03. high": "176.10",
			"04. low": "172.25",
			"05. price": "175.50",
			"06. volume": "51234567",
			"09. change": "-1.25",
			"10. change percent": "-0.71%"
		}
	}`)
	defer srv.Close()

	av := NewAlphaVantage("demo", srv.URL)
	q, err := av.GlobalQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	require.Equal(t, "AAPL", q.Symbol)
	require.Equal(t, 175.50, q.CurrentPrice)
	require.Equal(t, -1.25, q.Change)
	require.Equal(t, -0.71, q.ChangePercent, "percent sign must be stripped")
	require.Equal(t, int64(51234567), q.Volume)
	require.False(t, q.IsMockData)
}

func TestGlobalQuote_MissingBlockIsInvalidResponse(t *testing.T) {
	srv := newAlphaVantageServer(t, `{}`)
	defer srv.Close()

	av := NewAlphaVantage("demo", srv.URL)
	_, err := av.GlobalQuote(context.Background(), "AAPL")
	require.Error(t, err)
	require.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidResponse))
}

func TestGlobalQuote_QuotaNoteIsRateLimited(t *testing.T) {
	srv := newAlphaVantageServer(t, `{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 25 requests per day."}`)
	defer srv.Close()

	av := NewAlphaVantage("demo", srv.URL)
	_, err := av.GlobalQuote(context.Background(), "AAPL")
	require.Error(t, err)
	require.True(t, apperrors.IsRateLimited(err))
}

func TestGlobalQuote_InformationIsRateLimited(t *testing.T) {
	srv := newAlphaVantageServer(t, `{"Information": "premium endpoint"}`)
	defer srv.Close()

	av := NewAlphaVantage("demo", srv.URL)
	_, err := av.GlobalQuote(context.Background(), "AAPL")
	require.Error(t, err)
	require.True(t, apperrors.IsRateLimited(err))
}

func TestGlobalQuote_ErrorMessageIsFetchFailed(t *testing.T) {
	srv := newAlphaVantageServer(t, `{"Error Message": "Invalid API call."}`)
	defer srv.Close()

	av := NewAlphaVantage("demo", srv.URL)
	_, err := av.GlobalQuote(context.Background(), "BOGUS")
	require.Error(t, err)
	require.True(t, apperrors.HasCode(err, apperrors.ErrCodeFetchFailed))
	require.False(t, apperrors.IsRateLimited(err))
}

func TestCompanyOverview_NoneBecomesNil(t *testing.T) {
	srv := newAlphaVantageServer(t, `{
		"Symbol": "AAPL",
		"Name": "Apple Inc",
		"MarketCapitalization": "2800000000000",
		"PERatio": "None",
		"PEGRatio": "-",
		"DividendYield": "0.0055",
		"52WeekHigh": "199.62",
		"52WeekLow": "164.08",
		"Sector": "TECHNOLOGY"
	}`)
	defer srv.Close()

	av := NewAlphaVantage("demo", srv.URL)
	f, err := av.CompanyOverview(context.Background(), "AAPL")
	require.NoError(t, err)

	require.Equal(t, "Apple Inc", f.CompanyName)
	require.Nil(t, f.PERatio, `"None" must map to a null field, not zero`)
	require.Nil(t, f.PEGRatio)
	require.NotNil(t, f.MarketCap)
	require.Equal(t, 2.8e12, *f.MarketCap)
	require.NotNil(t, f.DividendYield)
	require.Equal(t, 0.0055, *f.DividendYield)
	require.NotNil(t, f.FiftyTwoWeekHigh)
	require.Equal(t, 199.62, *f.FiftyTwoWeekHigh)
	require.Equal(t, "TECHNOLOGY", f.Sector)
}

func TestCompanyOverview_EmptyIsInvalidResponse(t *testing.T) {
	srv := newAlphaVantageServer(t, `{}`)
	defer srv.Close()

	av := NewAlphaVantage("demo", srv.URL)
	_, err := av.CompanyOverview(context.Background(), "AAPL")
	require.Error(t, err)
	require.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidResponse))
}

func TestDailySeries_SortedAscending(t *testing.T) {
	srv := newAlphaVantageServer(t, `{
		"Time Series (Daily)": {
			"2025-05-30": {"1. open": "172.0", "2. high": "176.0", "3. low": "171.0", "4. close": "175.5", "5. volume": "100"},
			"2025-05-28": {"1. open": "170.0", "2. high": "173.0", "3. low": "169.5", "4. close": "171.2", "5. volume": "200"},
			"2025-05-29": {"1. open": "171.2", "2. high": "174.0", "3. low": "170.0", "4. close": "172.0", "5. volume": "300"}
		}
	}`)
	defer srv.Close()

	av := NewAlphaVantage("demo", srv.URL)
	points, err := av.DailySeries(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, points, 3)
	for i := 1; i < len(points); i++ {
		require.True(t, points[i].Date.After(points[i-1].Date), "points must be ascending by date")
	}
	require.Equal(t, 171.2, points[0].Close)
	require.Equal(t, int64(200), points[0].Volume)
}

func TestIntradaySeries_UsesReportedTimeZone(t *testing.T) {
	srv := newAlphaVantageServer(t, `{
		"Meta Data": {"6. Time Zone": "US/Eastern"},
		"Time Series (5min)": {
			"2025-05-30 09:30:00": {"1. open": "172.0", "2. high": "172.5", "3. low": "171.8", "4. close": "172.2", "5. volume": "1000"},
			"2025-05-30 09:35:00": {"1. open": "172.2", "2. high": "172.8", "3. low": "172.0", "4. close": "172.6", "5. volume": "900"}
		}
	}`)
	defer srv.Close()

	av := NewAlphaVantage("demo", srv.URL)
	points, err := av.IntradaySeries(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, points, 2)

	first := points[0].Date
	require.Equal(t, "US/Eastern", first.Location().String())
	require.Equal(t, 9, first.Hour())
	require.Equal(t, 30, first.Minute())
}

func TestQuery_NonJSONBodyIsInvalidResponse(t *testing.T) {
	srv := newAlphaVantageServer(t, `<html>maintenance</html>`)
	defer srv.Close()

	av := NewAlphaVantage("demo", srv.URL)
	_, err := av.GlobalQuote(context.Background(), "AAPL")
	require.Error(t, err)
	require.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidResponse))
}
