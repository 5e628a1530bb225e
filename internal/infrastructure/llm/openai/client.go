package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mhyrr/fara-tracker/internal/core/domain"
	"github.com/mhyrr/fara-tracker/internal/infrastructure/resilience"
)

// Client talks to an OpenAI-compatible chat-completions endpoint.
// Temperature is fixed low: extraction consistency beats creativity.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
}

func New(baseURL, apiKey, model string, temperature float64, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		httpClient:  &http.Client{Timeout: timeout},
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
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	request := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: c.temperature,
	}

	var response chatResponse
	if err := c.postJSON(ctx, "/chat/completions", request, &response, "extract"); err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("empty completion choices")
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

// Extractor asks the model for structured filing facts and returns the
// untyped parsed response. Field mapping and fallbacks live upstream.
type Extractor struct {
	client   *Client
	executor *resilience.Executor
}

func NewExtractor(client *Client, executor *resilience.Executor) *Extractor {
	return &Extractor{client: client, executor: executor}
}

func (e *Extractor) Extract(ctx context.Context, text string, doc domain.DocumentRecord) (domain.RawFacts, error) {
	var raw string
	err := e.executor.Execute(ctx, "llm_extract", func(callCtx context.Context) error {
		completed, callErr := e.client.complete(callCtx, systemPrompt, buildDocumentPrompt(text, doc))
		if callErr != nil {
			return callErr
		}
		raw = completed
		return nil
	}, classifyModelError)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "model call", err)
	}

	payload, err := locateJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("locate json in model response: %w", err)
	}

	var facts domain.RawFacts
	if err := json.Unmarshal([]byte(payload), &facts); err != nil {
		return nil, fmt.Errorf("decode model json: %w", err)
	}
	return facts, nil
}
