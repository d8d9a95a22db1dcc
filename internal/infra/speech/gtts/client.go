package gtts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	domain "github.com/bryanwahyu/aarogyam/internal/domain/speech"
)

// maxChunk is the longest text the translate_tts endpoint accepts per call.
const maxChunk = 200

// Client synthesizes speech through Google Translate's public TTS endpoint,
// the same one gTTS uses.
type Client struct {
	URL  string
	http *resty.Client
}

func New(url string, timeout time.Duration) *Client {
	if url == "" {
		url = "https://translate.google.com/translate_tts"
	}
	return &Client{URL: url, http: resty.New().SetTimeout(timeout)}
}

func (c *Client) Synthesize(ctx context.Context, text, lang string) (domain.Audio, error) {
	chunks := split(text, maxChunk)
	if len(chunks) == 0 {
		return domain.Audio{}, errors.New("nothing to synthesize")
	}

	// mp3 frames concatenate cleanly, so chunks are joined byte-wise
	var buf bytes.Buffer
	for i, chunk := range chunks {
		resp, err := c.http.R().SetContext(ctx).
			SetQueryParams(map[string]string{
				"ie":      "UTF-8",
				"client":  "tw-ob",
				"tl":      lang,
				"q":       chunk,
				"total":   strconv.Itoa(len(chunks)),
				"idx":     strconv.Itoa(i),
				"textlen": strconv.Itoa(len(chunk)),
			}).
			Get(c.URL)
		if err != nil {
			return domain.Audio{}, err
		}
		if resp.IsError() {
			return domain.Audio{}, fmt.Errorf("gtts chunk %d: %s", i, resp.Status())
		}
		buf.Write(resp.Body())
	}
	return domain.Audio{Data: buf.Bytes(), ContentType: "audio/mpeg"}, nil
}

// split breaks text on whitespace into pieces no longer than limit runes.
// Words longer than limit are cut.
func split(text string, limit int) []string {
	var out []string
	var cur []rune
	flush := func() {
		if s := strings.TrimSpace(string(cur)); s != "" {
			out = append(out, s)
		}
		cur = cur[:0]
	}
	for _, word := range strings.Fields(text) {
		w := []rune(word)
		for len(w) > limit {
			flush()
			out = append(out, string(w[:limit]))
			w = w[limit:]
		}
		if len(cur)+len(w)+1 > limit {
			flush()
		}
		if len(cur) > 0 {
			cur = append(cur, ' ')
		}
		cur = append(cur, w...)
	}
	flush()
	return out
}
