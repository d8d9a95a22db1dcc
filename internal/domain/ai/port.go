package ai

import "context"

// Request is what the analysis requester sends to the model service.
// Image is optional; when empty only the prompt text is sent.
type Request struct {
	Prompt    string
	Image     []byte
	ImageType string
}

// Response carries the free-text report. Headline is set only when the model
// was asked for, and returned, a structured headline field.
type Response struct {
	Text     string
	Headline string
}

type Client interface {
	Analyze(ctx context.Context, req Request) (Response, error)
}
