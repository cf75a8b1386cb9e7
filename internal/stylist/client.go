// Package stylist refines heuristic outfit suggestions through a remote
// text-generation model and reconciles the model's free-text answer against
// the literal wardrobe. Every failure path is recoverable; callers fall
// back to the combinatorial ranker.
package stylist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	defaultGeminiModel   = "gemini-1.5-flash"
)

// StatusError is a non-2xx response from the generation endpoint. Only 503
// (model overloaded) is retryable; everything else is terminal for the call.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("stylist: generation request failed: status=%d body=%s", e.Status, e.Body)
}

// IsOverloaded reports whether err is the retryable 503 case.
func IsOverloaded(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusServiceUnavailable
}

// Client calls the Gemini generateContent endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	retry      RetryPolicy
}

// NewClient constructs a generation client. The API key is required.
func NewClient(apiKey, baseURL string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("stylist: generation api key cannot be empty")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultGeminiBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   defaultGeminiModel,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		retry: RetryPolicy{
			MaxAttempts: 3,
			Backoff:     LinearBackoff(2 * time.Second),
			Retryable:   IsOverloaded,
		},
	}, nil
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends a single natural-language prompt and returns the model's
// text answer, retrying only when the service reports itself overloaded.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	var text string
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		var callErr error
		text, callErr = c.generateOnce(ctx, prompt)
		return callErr
	})
	return text, err
}

func (c *Client) generateOnce(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("stylist: encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("stylist: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("stylist: generation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", &StatusError{Status: resp.StatusCode, Body: string(body)}
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("stylist: decode response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("stylist: empty generation response")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
