package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Model != "gpt-4o-mini" || len(body.Messages) != 2 {
			t.Errorf("unexpected request %+v", body)
		}
		if !strings.Contains(body.Messages[0].Content, `"hi"`) {
			t.Errorf("target code missing from prompt: %q", body.Messages[0].Content)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"role": "assistant", "content": " निमोनिया \n"}}},
		})
	}))
	defer srv.Close()

	c := NewClient("sk-test", srv.URL+"/v1", "gpt-4o-mini")
	got, err := c.Translate(context.Background(), "Pneumonia", "en", "hi")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "निमोनिया" {
		t.Errorf("unexpected translation %q", got)
	}
}

func TestTranslate_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	c := NewClient("sk-test", srv.URL+"/v1", "gpt-4o-mini")
	if _, err := c.Translate(context.Background(), "Pneumonia", "en", "hi"); err == nil {
		t.Fatal("expected error")
	}
}
