package location

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	domain "github.com/bryanwahyu/aarogyam/internal/domain/location"
)

// Service resolves a caller's approximate city. Failures are swallowed into
// the Unknown hint and logged for operators.
type Service struct {
	lookup  domain.Lookup
	timeout time.Duration
	log     *zap.SugaredLogger
}

func NewService(lookup domain.Lookup, timeout time.Duration, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{lookup: lookup, timeout: timeout, log: log}
}

func (s *Service) Resolve(ctx context.Context, ip string) domain.Hint {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	city, err := s.lookup.City(ctx, ip)
	if errors.Is(err, context.DeadlineExceeded) {
		s.log.Warnw("location lookup timed out, using unknown", "ip", ip, "timeout", s.timeout)
		return domain.Unknown()
	}
	if err != nil {
		s.log.Warnw("location lookup failed, using unknown", "ip", ip, "error", err)
		return domain.Unknown()
	}
	if city == "" {
		s.log.Warnw("location lookup returned no city", "ip", ip)
	}
	return domain.City(city)
}
