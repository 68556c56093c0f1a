package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	domain "github.com/trustlit/trustlit-server/internal/domain/analysis"
	"github.com/trustlit/trustlit-server/internal/domain/imaging"
)

const (
	maxTokens     = 4096
	chatMaxTokens = 500
	chatTemp      = 0.7

	// Per-call cap. The three-rung ladder plus backoffs must finish well
	// inside the server's write timeout.
	callTimeout = 30 * time.Second
)

type Client struct {
	*openai.Client
	Model     string
	ChatModel string
}

func NewClient(apiKey, model, chatModel string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.HTTPClient = &http.Client{Timeout: callTimeout}
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: model, ChatModel: chatModel}
}

// Complete issues one multimodal chat completion: the attempt's prompt pair
// plus the front and back label photos at the attempt's detail level.
func (c *Client) Complete(ctx context.Context, attempt domain.Attempt, front, back *imaging.Image) (string, error) {
	model := c.Model
	if model == "" {
		model = openai.GPT4o
	}
	req := openai.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: attempt.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: attempt.SystemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: attempt.UserPrompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    front.DataURL(),
							Detail: imageDetail(attempt.Detail),
						},
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    back.DataURL(),
							Detail: imageDetail(attempt.Detail),
						},
					},
				},
			},
		},
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", domain.ErrUpstreamUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}

// Chat issues a single-turn text completion for the assistant endpoint.
func (c *Client) Chat(ctx context.Context, system, user string) (string, error) {
	model := c.ChatModel
	if model == "" {
		model = openai.GPT4oMini
	}
	resp, err := c.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   chatMaxTokens,
		Temperature: chatTemp,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func imageDetail(d domain.ImageDetail) openai.ImageURLDetail {
	if d == domain.DetailLow {
		return openai.ImageURLDetailLow
	}
	return openai.ImageURLDetailHigh
}

// mapError folds provider errors into the domain taxonomy so the
// orchestrator can distinguish quota and credential failures from plain
// transport ones.
func mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if code, ok := apiErr.Code.(string); ok {
			switch code {
			case "insufficient_quota":
				return fmt.Errorf("%w: %v", domain.ErrQuotaExceeded, err)
			case "invalid_api_key":
				return fmt.Errorf("%w: %v", domain.ErrInvalidCredentials, err)
			}
		}
		switch apiErr.HTTPStatusCode {
		case 429:
			return fmt.Errorf("%w: %v", domain.ErrQuotaExceeded, err)
		case 401:
			return fmt.Errorf("%w: %v", domain.ErrInvalidCredentials, err)
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
}
