package gtx

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// maxChunk keeps each request URL comfortably below the endpoint's limit.
const maxChunk = 4000

// Client uses the free translate_a/single endpoint (client=gtx), the same
// service googletrans talks to.
type Client struct {
	URL  string
	http *resty.Client
}

func New(url string, timeout time.Duration) *Client {
	if url == "" {
		url = "https://translate.googleapis.com/translate_a/single"
	}
	return &Client{URL: url, http: resty.New().SetTimeout(timeout)}
}

func (c *Client) Translate(ctx context.Context, text, source, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	parts := chunkLines(text, maxChunk)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t, err := c.translateChunk(ctx, p, source, target)
		if err != nil {
			return "", err
		}
		out = append(out, t)
	}
	return strings.Join(out, "\n"), nil
}

func (c *Client) translateChunk(ctx context.Context, text, source, target string) (string, error) {
	resp, err := c.http.R().SetContext(ctx).
		SetQueryParams(map[string]string{
			"client": "gtx",
			"sl":     source,
			"tl":     target,
			"dt":     "t",
			"q":      text,
		}).
		Get(c.URL)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("gtx translate: %s; body: %s", resp.Status(), resp.String())
	}
	return parse(resp.Body())
}

// parse reads the sentence array at index 0: [[["translated","source",...],...],...]
func parse(body []byte) (string, error) {
	var raw []any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("gtx decode: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("gtx decode: empty response")
	}
	sentences, ok := raw[0].([]any)
	if !ok {
		return "", fmt.Errorf("gtx decode: unexpected shape")
	}
	var b strings.Builder
	for _, s := range sentences {
		seg, ok := s.([]any)
		if !ok || len(seg) == 0 {
			continue
		}
		if str, ok := seg[0].(string); ok {
			b.WriteString(str)
		}
	}
	return b.String(), nil
}

// chunkLines groups whole lines into pieces of at most limit bytes. A single
// line longer than limit becomes its own piece.
func chunkLines(text string, limit int) []string {
	lines := strings.Split(text, "\n")
	var out []string
	var cur strings.Builder
	for _, line := range lines {
		if cur.Len() > 0 && cur.Len()+len(line)+1 > limit {
			out = append(out, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
	}
	out = append(out, cur.String())
	return out
}
