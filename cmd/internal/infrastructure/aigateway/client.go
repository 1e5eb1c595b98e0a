package aigateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/sashabaranov/go-openai"
)

var (
	ErrMissingCredential = errors.New("ai gateway credential is not configured")
	ErrRateLimited       = errors.New("ai gateway rate limit exceeded")
	ErrPaymentRequired   = errors.New("ai gateway requires payment")
	ErrEmptyCompletion   = errors.New("ai gateway returned no choices")
)

// MissingCredentialError names the environment variable that should have
// held the key. It matches ErrMissingCredential with errors.Is.
type MissingCredentialError struct {
	Env string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("%s is not configured", e.Env)
}

func (e *MissingCredentialError) Is(target error) bool {
	return target == ErrMissingCredential
}

// UpstreamError is any non-2xx answer that is not a rate limit or a billing issue.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("ai gateway returned status %d", e.Status)
}

type Config struct {
	APIKey  string
	BaseURL string

	// KeyEnv is only used to build the missing credential message.
	KeyEnv string
}

// CompletionRequest is a single system + user exchange.
type CompletionRequest struct {
	Model       string
	System      string
	User        string
	Temperature float32

	// JSON asks the gateway for a json_object response format.
	JSON bool
}

// Client talks to an OpenAI-compatible chat completion gateway.
type Client struct {
	client *openai.Client
	apiKey string
	keyEnv string
}

func NewClient(cfg Config) *Client {
	conf := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		conf.BaseURL = cfg.BaseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(conf),
		apiKey: cfg.APIKey,
		keyEnv: cfg.KeyEnv,
	}
}

// Complete returns the content of the first choice. Nothing is retried.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if c.apiKey == "" {
		return "", &MissingCredentialError{Env: c.keyEnv}
	}

	chatReq := openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: req.Temperature,
	}
	if req.JSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", classify(err)
	}
	log.Debugf("ai gateway completion with %s took %v (%d tokens)", req.Model, time.Since(start), resp.Usage.TotalTokens)

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

func classify(err error) error {
	status, body := 0, ""

	// RequestError may wrap an APIError without a status, so it goes first.
	var reqErr *openai.RequestError
	var apiErr *openai.APIError
	switch {
	case errors.As(err, &reqErr):
		status, body = reqErr.HTTPStatusCode, string(reqErr.Body)
	case errors.As(err, &apiErr):
		status, body = apiErr.HTTPStatusCode, apiErr.Message
	default:
		return fmt.Errorf("ai gateway request failed: %w", err)
	}

	switch status {
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusPaymentRequired:
		return ErrPaymentRequired
	}
	return &UpstreamError{Status: status, Body: body}
}
