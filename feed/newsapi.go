package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"marketdash/models"
	apperrors "marketdash/pkg/errors"
)

// NewsAPI implements NewsFeed against a NewsAPI-style search endpoint.
type NewsAPI struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewNewsAPI(apiKey, baseURL string) *NewsAPI {
	return &NewsAPI{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Content     string `json:"content"`
	} `json:"articles"`
}

// Search runs one article search and normalizes the result.
func (n *NewsAPI) Search(ctx context.Context, q NewsSearch) ([]models.NewsArticle, error) {
	params := url.Values{}
	params.Set("q", q.Query)
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("apiKey", n.apiKey)
	if len(q.Domains) > 0 {
		params.Set("domains", strings.Join(q.Domains, ","))
	}
	if !q.From.IsZero() {
		params.Set("from", q.From.UTC().Format("2006-01-02"))
	}
	if q.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(q.PageSize))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		n.baseURL+"/everything?"+params.Encode(), nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeFetchFailed, "build request")
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeFetchFailed, "news request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeFetchFailed, "read response body")
	}

	var payload newsAPIResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInvalidResponse, "non-JSON response")
	}
	if err := classifyNewsAPI(resp.StatusCode, payload); err != nil {
		return nil, err
	}

	articles := make([]models.NewsArticle, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		published, err := time.Parse(time.RFC3339, a.PublishedAt)
		if err != nil {
			published = time.Time{}
		}
		content := truncateRunes(a.Content, models.MaxContentLen)
		articles = append(articles, models.NewsArticle{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			PublishedAt: published,
			Source:      a.Source.Name,
			Content:     content,
		})
	}
	return articles, nil
}

// truncateRunes caps s at max bytes without splitting a multi-byte rune.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// classifyNewsAPI maps this provider's failure signatures to typed errors.
// All signature knowledge for the news provider lives here.
func classifyNewsAPI(statusCode int, payload newsAPIResponse) error {
	if payload.Status == "ok" {
		return nil
	}
	switch payload.Code {
	case "rateLimited":
		return apperrors.New(apperrors.ErrCodeProviderRateLimited, "news provider rate limited")
	case "apiKeyInvalid", "apiKeyMissing", "apiKeyDisabled":
		return apperrors.New(apperrors.ErrCodeProviderUnavailable, "news provider key rejected")
	}
	if statusCode == http.StatusTooManyRequests {
		return apperrors.New(apperrors.ErrCodeProviderRateLimited, "news provider rate limited")
	}
	return apperrors.New(apperrors.ErrCodeFetchFailed,
		fmt.Sprintf("news provider error: %s", fieldOr(payload.Message, "unknown")))
}
