package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
)

// Config configures an OpenAI compatible chat completion client.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration

	// MaxFailures is the number of consecutive provider failures that opens the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before letting a probe through.
	OpenTimeout time.Duration

	HTTPClient *http.Client
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
	} `json:"error,omitempty"`
}

// OpenAI calls /chat/completions on an OpenAI compatible API behind a circuit breaker.
type OpenAI struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

func NewOpenAI(cfg Config, logger *slog.Logger) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}

	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	logger = logger.With("module", "llm")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return !apiErr.retryable()
			}

			return err == nil || errors.Is(err, ErrEmptyCompletion) || errors.Is(err, context.Canceled)
		},
	})

	return &OpenAI{
		cfg:     cfg,
		http:    httpClient,
		breaker: breaker,
		logger:  logger,
	}, nil
}

// Predict sends prompt as a single user message and returns the first choice.
func (o *OpenAI) Predict(ctx context.Context, prompt string) (string, error) {
	out, err := o.breaker.Execute(func() (any, error) {
		return o.complete(ctx, prompt)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if err != nil {
		return "", err
	}

	return out.(string), nil
}

// State returns the circuit breaker state.
func (o *OpenAI) State() gobreaker.State {
	return o.breaker.State()
}

func (o *OpenAI) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       o.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: o.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	url := strings.TrimRight(o.cfg.BaseURL, "/") + "/chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build completion request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read completion response: %w", err)
	}

	var decoded chatResponse
	decodeErr := json.Unmarshal(data, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr == nil && decoded.Error != nil {
			apiErr.Message = decoded.Error.Message
		}

		o.logger.ErrorContext(ctx, "Completion request failed", "status", resp.StatusCode, "message", apiErr.Message)

		return "", apiErr
	}

	if decodeErr != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", decodeErr)
	}

	if len(decoded.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	return decoded.Choices[0].Message.Content, nil
}

var _ Model = (*OpenAI)(nil)
