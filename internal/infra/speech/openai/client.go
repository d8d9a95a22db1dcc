package openai

import (
	"context"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"

	domain "github.com/bryanwahyu/aarogyam/internal/domain/speech"
)

// Client synthesizes speech with the OpenAI audio API. The model picks the
// pronunciation from the text, so lang is not sent.
type Client struct {
	*openai.Client
	Voice string
}

func NewClient(apiKey, baseURL, voice string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}
	return &Client{Client: openai.NewClientWithConfig(cfg), Voice: voice}
}

func (c *Client) Synthesize(ctx context.Context, text, _ string) (domain.Audio, error) {
	resp, err := c.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          openai.SpeechVoice(c.Voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return domain.Audio{}, fmt.Errorf("failed to create speech: %w", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return domain.Audio{}, err
	}
	return domain.Audio{Data: data, ContentType: "audio/mpeg"}, nil
}
