package service

import (
	"encoding/json"
	"strings"

	"marketdash/models"
	apperrors "marketdash/pkg/errors"
)

// parseStrictJSON decodes a completion response that is expected to be a bare
// JSON object. If direct decoding fails it makes one repair attempt by
// slicing out the substring between the first '{' and the last '}', which
// recovers objects wrapped in markdown fences or chatty preamble.
func parseStrictJSON(raw string, v any) error {
	if err := json.Unmarshal([]byte(raw), v); err == nil {
		return nil
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return apperrors.New(apperrors.ErrCodeInvalidResponse, "completion response contains no JSON object")
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), v); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInvalidResponse, "completion response is not valid JSON")
	}
	return nil
}

// clampScore forces a sentiment score into [-1, 1].
func clampScore(score float64) float64 {
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}

// normalizeSentiment maps any unrecognized label to neutral.
func normalizeSentiment(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case models.SentimentBullish:
		return models.SentimentBullish
	case models.SentimentBearish:
		return models.SentimentBearish
	default:
		return models.SentimentNeutral
	}
}
