package cloud

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// Client wraps the Google Cloud Translation (v2) API.
type Client struct {
	client *translate.Client
}

// New builds a client from a service account file. An empty path falls back
// to Application Default Credentials.
func New(ctx context.Context, credentialsFile string) (*Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	cli, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("cloud translate client: %w", err)
	}
	return &Client{client: cli}, nil
}

func (c *Client) Translate(ctx context.Context, text, source, target string) (string, error) {
	src, dst, err := tags(source, target)
	if err != nil {
		return "", err
	}
	out, err := c.client.Translate(ctx, []string{text}, dst, &translate.Options{
		Source: src,
		Format: translate.Text,
	})
	if err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", errors.New("cloud translate returned no translations")
	}
	return out[0].Text, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func tags(source, target string) (language.Tag, language.Tag, error) {
	src, err := language.Parse(source)
	if err != nil {
		return language.Und, language.Und, fmt.Errorf("source language %q: %w", source, err)
	}
	dst, err := language.Parse(target)
	if err != nil {
		return language.Und, language.Und, fmt.Errorf("target language %q: %w", target, err)
	}
	return src, dst, nil
}
