package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bryanwahyu/aarogyam/internal/domain/ai"
)

type fakeClient struct {
	resp ai.Response
	err  error
	got  ai.Request
}

func (f *fakeClient) Analyze(ctx context.Context, req ai.Request) (ai.Response, error) {
	f.got = req
	return f.resp, f.err
}

func TestAnalyze_Success(t *testing.T) {
	fc := &fakeClient{resp: ai.Response{Text: "**Pneumonia**", Headline: "Pneumonia"}}
	svc := NewService(fc, "prompt", time.Second, nil)

	got := svc.Analyze(context.Background(), []byte("img"), "image/png")
	if got.Failed || got.Text != "**Pneumonia**" || got.Headline != "Pneumonia" {
		t.Fatalf("unexpected analysis %+v", got)
	}
	if fc.got.Prompt != "prompt" || string(fc.got.Image) != "img" || fc.got.ImageType != "image/png" {
		t.Errorf("unexpected request %+v", fc.got)
	}
}

func TestAnalyze_FailureBecomesErrorText(t *testing.T) {
	cases := []error{
		errors.New("connection refused"),
		fmt.Errorf("%w: insufficient_quota", ai.ErrQuotaExceeded),
		errors.New("401 invalid api key"),
	}
	for _, cause := range cases {
		svc := NewService(&fakeClient{err: cause}, "prompt", time.Second, nil)
		got := svc.Analyze(context.Background(), nil, "")
		if !got.Failed {
			t.Errorf("%v: expected Failed", cause)
		}
		if !strings.HasPrefix(got.Text, "Error:") {
			t.Errorf("%v: text %q lacks Error: prefix", cause, got.Text)
		}
		if !strings.Contains(got.Text, cause.Error()) {
			t.Errorf("%v: detail missing from %q", cause, got.Text)
		}
	}
}

func TestAnalyze_TimeoutIsDistinct(t *testing.T) {
	svc := NewService(&fakeClient{err: ai.ErrTimeout}, "prompt", 3*time.Second, nil)
	got := svc.Analyze(context.Background(), nil, "")
	if got.Text != "Error: analysis timed out after 3s" {
		t.Errorf("unexpected text %q", got.Text)
	}
}

func TestAnalyze_CallerDeadlineWithoutOwnTimeout(t *testing.T) {
	svc := NewService(&fakeClient{err: context.DeadlineExceeded}, "prompt", 0, nil)
	got := svc.Analyze(context.Background(), nil, "")
	if !got.Failed || strings.Contains(got.Text, "after 0s") {
		t.Fatalf("unexpected text %q", got.Text)
	}
	if got.Text != "Error: analysis timed out: context deadline exceeded" {
		t.Errorf("unexpected text %q", got.Text)
	}
}
