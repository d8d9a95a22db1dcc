package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/aarogyam/internal/domain/ai"
	"github.com/bryanwahyu/aarogyam/internal/domain/report"
)

// Service is the analysis requester. It never returns an error: failures
// come back as a degraded report whose text starts with "Error:".
type Service struct {
	client  ai.Client
	prompt  string
	timeout time.Duration
	log     *zap.SugaredLogger
}

func NewService(client ai.Client, prompt string, timeout time.Duration, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{client: client, prompt: prompt, timeout: timeout, log: log}
}

func (s *Service) Analyze(ctx context.Context, image []byte, imageType string) report.Analysis {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.client.Analyze(ctx, ai.Request{Prompt: s.prompt, Image: image, ImageType: imageType})
	if err != nil {
		s.log.Errorw("analysis request failed", "error", err)
		switch {
		case errors.Is(err, ai.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
			if s.timeout <= 0 {
				// deadline came from the caller, not from us
				return report.Failure(fmt.Sprintf("analysis timed out: %v", err))
			}
			return report.Failure(fmt.Sprintf("analysis timed out after %s", s.timeout))
		default:
			return report.Failure(err.Error())
		}
	}
	return report.Analysis{Text: resp.Text, Headline: resp.Headline}
}
