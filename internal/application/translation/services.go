package translation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/aarogyam/internal/domain/locale"
	domain "github.com/bryanwahyu/aarogyam/internal/domain/translation"
)

// Result of one translate action. On failure Text holds the untranslated
// source and Error the reason, so the caller can show both.
type Result struct {
	Language locale.Language `json:"language"`
	Text     string          `json:"text"`
	Failed   bool            `json:"failed"`
	Error    string          `json:"error,omitempty"`
}

type Service struct {
	translator domain.Translator
	timeout    time.Duration
	log        *zap.SugaredLogger
}

func NewService(t domain.Translator, timeout time.Duration, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{translator: t, timeout: timeout, log: log}
}

// Translate converts text from English into the named language. The only
// error returned is locale.ErrUnsupportedLanguage; service failures are
// reported inside Result.
func (s *Service) Translate(ctx context.Context, text, languageName string) (Result, error) {
	lang, err := locale.Lookup(languageName)
	if err != nil {
		return Result{}, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	out, err := s.translator.Translate(ctx, text, locale.SourceCode, lang.Code)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s", domain.ErrTimeout, s.timeout)
		}
		s.log.Errorw("translation failed", "language", lang.Code, "error", err)
		return Result{Language: lang, Text: text, Failed: true, Error: err.Error()}, nil
	}
	return Result{Language: lang, Text: out}, nil
}
