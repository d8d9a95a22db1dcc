package hospital

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	domain "github.com/bryanwahyu/aarogyam/internal/domain/hospital"
	"github.com/bryanwahyu/aarogyam/internal/domain/location"
)

// Service builds the placeholder hospital record around a live area lookup.
type Service struct {
	geo     domain.Geocoder
	name    string
	phone   string
	timeout time.Duration
	log     *zap.SugaredLogger
}

func NewService(geo domain.Geocoder, name, phone string, timeout time.Duration, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{geo: geo, name: name, phone: phone, timeout: timeout, log: log}
}

// Locate returns domain.ErrNotFound when the city is unknown or has no
// geocoding match. Other errors are transport failures.
func (s *Service) Locate(ctx context.Context, hint location.Hint) (domain.Record, error) {
	if !hint.Known {
		return domain.Record{}, fmt.Errorf("%w: location unknown", domain.ErrNotFound)
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	at, err := s.geo.Geocode(ctx, hint.City)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Record{}, err
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.Record{}, fmt.Errorf("%w: geocode %q after %s", domain.ErrTimeout, hint.City, s.timeout)
		}
		return domain.Record{}, fmt.Errorf("geocode %q: %w", hint.City, err)
	}

	rec := domain.Record{Name: s.name, Phone: s.phone, Area: domain.UnknownArea}
	addr, err := s.geo.Reverse(ctx, at)
	if err != nil {
		s.log.Warnw("reverse geocode failed, using unknown area", "city", hint.City, "error", err)
		return rec, nil
	}
	if addr.Suburb != "" {
		rec.Area = addr.Suburb
		rec.AreaKnown = true
	}
	return rec, nil
}
