package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/aarogyam/internal/application"
	apptranslation "github.com/bryanwahyu/aarogyam/internal/application/translation"
	"github.com/bryanwahyu/aarogyam/internal/domain/hospital"
	"github.com/bryanwahyu/aarogyam/internal/domain/location"
	"github.com/bryanwahyu/aarogyam/internal/domain/report"
	domain "github.com/bryanwahyu/aarogyam/internal/domain/session"
)

// NoHospitalNote is shown when the locator finds nothing.
const NoHospitalNote = "Unable to find nearby hospitals."

type LocationResolver interface {
	Resolve(ctx context.Context, ip string) location.Hint
}

type Analyzer interface {
	Analyze(ctx context.Context, image []byte, imageType string) report.Analysis
}

type HospitalLocator interface {
	Locate(ctx context.Context, hint location.Hint) (hospital.Record, error)
}

type Announcer interface {
	Announce(ctx context.Context, id domain.ID, disease, urgency string) *domain.Announcement
	Release(ctx context.Context, key string)
}

type Translator interface {
	Translate(ctx context.Context, text, languageName string) (apptranslation.Result, error)
}

// Service implements the interaction use-cases. Actions on one session run
// one at a time; different sessions proceed concurrently.
type Service struct {
	Repo       domain.Repository
	Locations  LocationResolver
	Analyzer   Analyzer
	Hospitals  HospitalLocator
	Announcer  Announcer
	Translator Translator
	Clock      application.Clock
	TTL        time.Duration
	Log        *zap.SugaredLogger

	locks sync.Map // domain.ID -> *sync.Mutex
}

func (s *Service) logger() *zap.SugaredLogger {
	if s.Log == nil {
		return zap.NewNop().Sugar()
	}
	return s.Log
}

func (s *Service) lock(id domain.ID) func() {
	mu, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// Create opens a session and resolves the caller's location once.
func (s *Service) Create(ctx context.Context, ip string) (*domain.Session, error) {
	hint := s.Locations.Resolve(ctx, ip)
	sess := domain.New(domain.ID(uuid.New().String()), hint, s.Clock.Now())
	if err := s.Repo.Save(ctx, sess); err != nil {
		return nil, err
	}
	s.logger().Infow("session created", "sessionID", sess.ID, "location", hint.String(), "defaultLanguage", sess.DefaultLanguage)
	return sess, nil
}

func (s *Service) Get(ctx context.Context, id domain.ID) (*domain.Session, error) {
	return s.Repo.Get(ctx, id)
}

// UploadImage stores a new image and invalidates everything derived from the
// previous one.
func (s *Service) UploadImage(ctx context.Context, id domain.ID, img domain.Image) (*domain.Session, error) {
	unlock := s.lock(id)
	defer unlock()

	sess, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	stale := sess.AudioKey()
	if img.UploadedAt.IsZero() {
		img.UploadedAt = s.Clock.Now()
	}
	sess.LoadImage(img, s.Clock.Now())
	if err := s.Repo.Save(ctx, sess); err != nil {
		return nil, err
	}
	s.Announcer.Release(ctx, stale)
	return sess, nil
}

// Analyze runs the requester, extractor, hospital locator and announcer in
// order. External failures never abort the action; they are recorded on the
// session instead.
func (s *Service) Analyze(ctx context.Context, id domain.ID) (*domain.Session, error) {
	unlock := s.lock(id)
	defer unlock()

	sess, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	stale := sess.AudioKey()
	if err := sess.Analyzing(); err != nil {
		return nil, err
	}

	analysis := s.Analyzer.Analyze(ctx, sess.Image.Data, sess.Image.ContentType)
	disease := report.DiseaseOf(analysis)
	if !disease.Found {
		s.logger().Warnw("no headline finding in analysis", "sessionID", id)
	}
	out := domain.AnalysisOutcome{
		Analysis: analysis,
		Disease:  disease,
		Urgency:  report.UrgencyHigh,
	}

	rec, err := s.Hospitals.Locate(ctx, sess.Location)
	switch {
	case err == nil:
		out.Hospital = &rec
		out.Announcement = s.Announcer.Announce(ctx, id, disease.Label(), out.Urgency)
	case errors.Is(err, hospital.ErrNotFound):
		out.HospitalNote = NoHospitalNote
	default:
		s.logger().Errorw("hospital lookup failed", "sessionID", id, "error", err)
		out.HospitalNote = fmt.Sprintf("%s (%v)", NoHospitalNote, err)
	}

	if err := sess.RecordAnalysis(out, s.Clock.Now()); err != nil {
		return nil, err
	}
	if err := s.Repo.Save(ctx, sess); err != nil {
		return nil, err
	}
	s.Announcer.Release(ctx, stale)
	s.logger().Infow("analysis recorded", "sessionID", id, "failed", analysis.Failed, "disease", disease.Label())
	return sess, nil
}

// Translate reads the stored analysis and never modifies it. A failed
// translation leaves the session state unchanged.
func (s *Service) Translate(ctx context.Context, id domain.ID, languageName string) (*domain.Session, apptranslation.Result, error) {
	unlock := s.lock(id)
	defer unlock()

	sess, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, apptranslation.Result{}, err
	}
	text, err := sess.AnalysisText()
	if err != nil {
		return nil, apptranslation.Result{}, err
	}

	res, err := s.Translator.Translate(ctx, text, languageName)
	if err != nil {
		return nil, apptranslation.Result{}, err
	}
	if res.Failed {
		return sess, res, nil
	}

	if err := sess.RecordTranslation(domain.Translation{Language: res.Language, Text: res.Text}, s.Clock.Now()); err != nil {
		return nil, apptranslation.Result{}, err
	}
	if err := s.Repo.Save(ctx, sess); err != nil {
		return nil, apptranslation.Result{}, err
	}
	return sess, res, nil
}

// Sweep drops sessions idle for longer than TTL and releases their audio.
// A session whose action is still running is left for the next sweep.
func (s *Service) Sweep(ctx context.Context) int {
	if s.TTL <= 0 {
		return 0
	}
	// sessions with an action in flight are skipped; the rest stay locked
	// until they are gone from both the repository and the lock table
	held := map[domain.ID]*sync.Mutex{}
	busy := func(id domain.ID) bool {
		v, ok := s.locks.Load(id)
		if !ok {
			return false
		}
		m := v.(*sync.Mutex)
		if !m.TryLock() {
			return true
		}
		held[id] = m
		return false
	}
	expired, err := s.Repo.Expire(ctx, s.Clock.Now().Add(-s.TTL), busy)
	for id, m := range held {
		s.locks.Delete(id)
		m.Unlock()
	}
	if err != nil {
		s.logger().Errorw("session sweep failed", "error", err)
		return 0
	}
	for _, sess := range expired {
		s.Announcer.Release(ctx, sess.AudioKey())
	}
	if len(expired) > 0 {
		s.logger().Infow("expired sessions released", "count", len(expired))
	}
	return len(expired)
}

// RunSweeper calls Sweep periodically until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}
