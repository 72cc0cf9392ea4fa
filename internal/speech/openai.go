package speech

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

	"github.com/avero-hq/avero/internal/common"
	"github.com/avero-hq/avero/internal/config"
)

const (
	defaultBaseURL = "https://api.openai.com"
	defaultModel   = "tts-1"
	defaultVoice   = "alloy"

	// maxInputLength is the provider's limit on characters per request.
	maxInputLength = 4096
)

// ErrEmptyText is returned when there is nothing to speak.
var ErrEmptyText = errors.New("no text to synthesize")

// openAIClient calls the OpenAI text-to-speech endpoint.
type openAIClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	voice      string
	retry      common.RetryOptions
}

func newOpenAIClient(cfg config.SpeechConfig) (*openAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required: %w", common.ErrMissingConfig)
	}

	c := &openAIClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		voice:   cfg.Voice,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		retry: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     5 * time.Second,
		},
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if c.voice == "" {
		c.voice = defaultVoice
	}
	return c, nil
}

type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

// Synthesize returns MP3 audio for text.
func (c *openAIClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if len(text) > maxInputLength {
		text = text[:maxInputLength]
	}

	body, err := json.Marshal(speechRequest{
		Model:          c.model,
		Input:          text,
		Voice:          c.voice,
		ResponseFormat: "mp3",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var audio []byte
	err = common.WithRetry(ctx, func() error {
		var reqErr error
		audio, reqErr = c.do(ctx, body)
		return reqErr
	}, c.retry)
	if err != nil {
		return nil, err
	}
	return audio, nil
}

func (c *openAIClient) do(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, &common.RetryableError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &common.RetryableError{Err: ctx.Err()}
		}
		return nil, &common.RetryableError{Err: fmt.Errorf("request failed: %w", err), Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &common.RetryableError{Err: fmt.Errorf("failed to read response: %w", err), Retryable: true}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return data, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &common.RetryableError{Err: fmt.Errorf("%w: %s", common.ErrRateLimit, apiMessage(data)), Retryable: true}
	case resp.StatusCode >= 500:
		return nil, &common.RetryableError{
			Err:       fmt.Errorf("%w: OpenAI API error (status %d): %s", common.ErrUpstream, resp.StatusCode, apiMessage(data)),
			Retryable: true,
		}
	default:
		return nil, &common.RetryableError{
			Err: fmt.Errorf("%w: OpenAI API error (status %d): %s", common.ErrUpstream, resp.StatusCode, apiMessage(data)),
		}
	}
}

// apiMessage extracts the error message from an OpenAI error body, falling
// back to the raw body.
func apiMessage(body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return strings.TrimSpace(string(body))
}
