package gtts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestSynthesize(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		q := r.URL.Query()
		if q.Get("tl") != "en" || q.Get("client") != "tw-ob" {
			t.Errorf("unexpected query %v", q)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3" + q.Get("idx")))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	audio, err := c.Synthesize(context.Background(), "Disease: Pneumonia, Urgency of treatment: High. ", "en")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected one call, got %d", calls)
	}
	if string(audio.Data) != "ID30" || audio.ContentType != "audio/mpeg" {
		t.Errorf("unexpected audio %q %q", audio.Data, audio.ContentType)
	}
}

func TestSynthesize_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if _, err := c.Synthesize(context.Background(), "hello", "en"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSynthesize_Empty(t *testing.T) {
	c := New("http://unused.invalid", time.Second)
	if _, err := c.Synthesize(context.Background(), "   ", "en"); err == nil {
		t.Fatal("expected error for empty text")
	}
}

func TestSplit(t *testing.T) {
	long := strings.Repeat("word ", 100)
	chunks := split(long, 200)
	if len(chunks) < 3 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if utf8.RuneCountInString(c) > 200 {
			t.Errorf("chunk too long: %d", len(c))
		}
	}
	if strings.Join(chunks, " ") != strings.TrimSpace(long) {
		t.Error("chunks lost words")
	}

	giant := strings.Repeat("x", 450)
	chunks = split(giant, 200)
	if len(chunks) != 3 || len(chunks[2]) != 50 {
		t.Errorf("unexpected split of long word: %d chunks", len(chunks))
	}
}
