package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	domai "github.com/bryanwahyu/aarogyam/internal/domain/ai"
	"github.com/bryanwahyu/aarogyam/internal/infra/ai/prompt"
)

const defaultMaxTokens = 2048

type Client struct {
	*openai.Client
	Model     string
	MaxTokens int
	// AttachImage sends the uploaded image as an image part of the user message.
	AttachImage bool
	// Structured asks for a JSON object carrying a separate headline field.
	Structured bool
}

func NewClient(apiKey, baseURL, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: model, MaxTokens: defaultMaxTokens}
}

func (c *Client) Analyze(ctx context.Context, in domai.Request) (domai.Response, error) {
	model := c.Model
	if model == "" {
		model = "gpt-4"
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt(c.Structured)},
			c.userMessage(in),
		},
	}
	if c.Structured {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return domai.Response{}, classify(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return domai.Response{}, errors.New("model returned no choices")
	}

	content := resp.Choices[0].Message.Content
	if c.Structured {
		if s, ok := prompt.ParseStructured(content); ok {
			return domai.Response{Text: s.Report, Headline: s.Headline}, nil
		}
	}
	return domai.Response{Text: content}, nil
}

func (c *Client) userMessage(in domai.Request) openai.ChatCompletionMessage {
	if !c.AttachImage || len(in.Image) == 0 {
		return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: in.Prompt}
	}
	contentType := in.ImageType
	if contentType == "" {
		contentType = http.DetectContentType(in.Image)
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(in.Image))
	return openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: in.Prompt},
			{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
				URL:    dataURL,
				Detail: openai.ImageURLDetailAuto,
			}},
		},
	}
}

// classify maps provider errors onto the domain taxonomy.
func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domai.ErrTimeout, err)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", domai.ErrQuotaExceeded, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", domai.ErrQuotaExceeded, reqErr.Err)
	}
	return fmt.Errorf("failed to create chat completion: %w", err)
}
