// Package genai is a small client for the Gemini generateContent REST API.
// A Client is bound to one credential at construction; nothing here reads
// credentials from globals or the environment.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.5-flash"

	maxResponseSize = 1 << 20
	pingPrompt      = "Reply with the single word: ok"
)

type Config struct {
	BaseURL       string
	Model         string
	Timeout       time.Duration
	RatePerMinute int
}

// Factory builds per-credential clients that share one HTTP client and one
// outbound rate limiter.
type Factory struct {
	baseURL    string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewFactory(cfg Config) *Factory {
	baseURL := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), max(cfg.RatePerMinute/2, 1))
	}

	return &Factory{
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}
}

func (factory *Factory) New(credential string) *Client {
	return &Client{
		credential: strings.TrimSpace(credential),
		endpoint:   fmt.Sprintf("%s/models/%s:generateContent", factory.baseURL, factory.model),
		httpClient: factory.httpClient,
		limiter:    factory.limiter,
	}
}

type Client struct {
	credential string
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
	MaxOutputTokens  int    `json:"maxOutputTokens,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (client *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return client.generate(ctx, prompt, nil, true)
}

// GenerateJSON asks the service for an application/json body and returns the
// raw text; callers decode it.
func (client *Client) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return client.generate(ctx, prompt, &generationConfig{ResponseMimeType: "application/json"}, true)
}

// Ping issues the smallest useful request. Any well-formed answer counts as
// success. It is not subject to the shared content limiter, so a local
// rate-limit hit can never be reported as a rejected credential.
func (client *Client) Ping(ctx context.Context) error {
	_, err := client.generate(ctx, pingPrompt, &generationConfig{MaxOutputTokens: 8}, false)
	return err
}

func (client *Client) generate(ctx context.Context, prompt string, config *generationConfig, limited bool) (string, error) {
	if client.credential == "" {
		return "", ErrMissingCredential
	}
	if limited && client.limiter != nil && !client.limiter.Allow() {
		return "", ErrRateLimited
	}

	payload, err := json.Marshal(generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: config,
	})
	if err != nil {
		return "", fmt.Errorf("genai: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, client.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("genai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", client.credential)

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("genai: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("genai: read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var decoded errorResponse
		if json.Unmarshal(body, &decoded) == nil {
			statusErr.Status = decoded.Error.Status
			statusErr.Message = decoded.Error.Message
		}
		return "", statusErr
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(decoded.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrMalformedResponse)
	}

	var text strings.Builder
	for _, piece := range decoded.Candidates[0].Content.Parts {
		text.WriteString(piece.Text)
	}
	return strings.TrimSpace(text.String()), nil
}
