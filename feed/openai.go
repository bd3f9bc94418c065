package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "marketdash/pkg/errors"
)

// OpenAI implements CompletionFeed against an OpenAI-compatible
// chat-completions endpoint.
type OpenAI struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewOpenAI(apiKey, baseURL, model string) *OpenAI {
	return &OpenAI{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Complete sends one chat completion and returns the raw assistant text.
// No retries: a failed completion degrades at the service layer instead.
func (o *OpenAI) Complete(ctx context.Context, system, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.3,
	}
	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeFetchFailed, "encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.baseURL+"/chat/completions", bytes.NewReader(encoded))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeFetchFailed, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeFetchFailed, "completion request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeFetchFailed, "read response body")
	}

	var payload chatResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInvalidResponse, "non-JSON response")
	}
	if err := classifyOpenAI(resp.StatusCode, payload); err != nil {
		return "", err
	}
	if len(payload.Choices) == 0 {
		return "", apperrors.New(apperrors.ErrCodeInvalidResponse, "completion returned no choices")
	}
	return payload.Choices[0].Message.Content, nil
}

// classifyOpenAI maps completion-endpoint failure signatures to typed errors.
func classifyOpenAI(statusCode int, payload chatResponse) error {
	if payload.Error == nil && statusCode == http.StatusOK {
		return nil
	}
	if statusCode == http.StatusTooManyRequests {
		return apperrors.New(apperrors.ErrCodeProviderRateLimited, "completion provider rate limited")
	}
	if payload.Error != nil {
		switch payload.Error.Type {
		case "insufficient_quota", "rate_limit_error":
			return apperrors.New(apperrors.ErrCodeProviderRateLimited, "completion quota exceeded")
		case "invalid_api_key", "authentication_error":
			return apperrors.New(apperrors.ErrCodeProviderUnavailable, "completion provider key rejected")
		}
		return apperrors.New(apperrors.ErrCodeFetchFailed,
			fmt.Sprintf("completion provider error: %s", payload.Error.Message))
	}
	return apperrors.New(apperrors.ErrCodeFetchFailed,
		fmt.Sprintf("completion provider returned status %d", statusCode))
}
