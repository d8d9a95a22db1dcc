package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bryanwahyu/aarogyam/internal/application"
	apptranslation "github.com/bryanwahyu/aarogyam/internal/application/translation"
	"github.com/bryanwahyu/aarogyam/internal/domain/hospital"
	"github.com/bryanwahyu/aarogyam/internal/domain/locale"
	"github.com/bryanwahyu/aarogyam/internal/domain/location"
	"github.com/bryanwahyu/aarogyam/internal/domain/report"
	domain "github.com/bryanwahyu/aarogyam/internal/domain/session"
	"github.com/bryanwahyu/aarogyam/internal/infra/db/memory"
)

type fakeLocations struct{ city string }

func (f fakeLocations) Resolve(ctx context.Context, ip string) location.Hint {
	return location.City(f.city)
}

type fakeAnalyzer struct{ result report.Analysis }

func (f fakeAnalyzer) Analyze(ctx context.Context, image []byte, imageType string) report.Analysis {
	return f.result
}

type fakeHospitals struct{ err error }

func (f fakeHospitals) Locate(ctx context.Context, hint location.Hint) (hospital.Record, error) {
	if f.err != nil {
		return hospital.Record{}, f.err
	}
	return hospital.Record{Name: "City Medical Center", Area: "Mylapore", Phone: "+1-234-567-8901", AreaKnown: true}, nil
}

type fakeAnnouncer struct {
	mu       sync.Mutex
	n        int
	live     map[string]bool
	released []string
}

func newFakeAnnouncer() *fakeAnnouncer { return &fakeAnnouncer{live: map[string]bool{}} }

func (f *fakeAnnouncer) Announce(ctx context.Context, id domain.ID, disease, urgency string) *domain.Announcement {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	key := fmt.Sprintf("sessions/%s/%d.mp3", id, f.n)
	f.live[key] = true
	return &domain.Announcement{
		Text:     fmt.Sprintf("Disease: %s, Urgency of treatment: %s. ", disease, urgency),
		AudioKey: key,
		AudioURL: "/v1/audio/" + key,
	}
}

func (f *fakeAnnouncer) Release(ctx context.Context, key string) {
	if key == "" {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.live, key)
	f.released = append(f.released, key)
}

type fakeTranslator struct{ fail bool }

func (f fakeTranslator) Translate(ctx context.Context, text, languageName string) (apptranslation.Result, error) {
	lang, err := locale.Lookup(languageName)
	if err != nil {
		return apptranslation.Result{}, err
	}
	if f.fail {
		return apptranslation.Result{Language: lang, Text: text, Failed: true, Error: "503"}, nil
	}
	return apptranslation.Result{Language: lang, Text: lang.Code + ":" + text}, nil
}

type fixture struct {
	svc       *Service
	clock     *application.FixedClock
	announcer *fakeAnnouncer
	repo      *memory.SessionRepository
}

func newFixture(analysis report.Analysis, hospitalErr error, translateFails bool) *fixture {
	clock := &application.FixedClock{T: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	ann := newFakeAnnouncer()
	repo := memory.NewSessionRepository()
	return &fixture{
		svc: &Service{
			Repo:       repo,
			Locations:  fakeLocations{city: "Chennai"},
			Analyzer:   fakeAnalyzer{result: analysis},
			Hospitals:  fakeHospitals{err: hospitalErr},
			Announcer:  ann,
			Translator: fakeTranslator{fail: translateFails},
			Clock:      clock,
			TTL:        time.Hour,
		},
		clock:     clock,
		announcer: ann,
		repo:      repo,
	}
}

func png() domain.Image {
	return domain.Image{Data: []byte{0x89, 'P', 'N', 'G'}, ContentType: "image/png", Filename: "xray.png"}
}

func TestCreate_DefaultLanguage(t *testing.T) {
	f := newFixture(report.Analysis{}, nil, false)
	sess, err := f.svc.Create(context.Background(), "49.204.1.1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if sess.Location.String() != "Chennai" || sess.DefaultLanguage != "Tamil" {
		t.Errorf("unexpected session %+v", sess)
	}
	if sess.State != domain.StateIdle {
		t.Errorf("expected idle, got %s", sess.State)
	}
}

func TestAnalyze_RequiresImage(t *testing.T) {
	f := newFixture(report.Analysis{Text: "x"}, nil, false)
	sess, _ := f.svc.Create(context.Background(), "")
	if _, err := f.svc.Analyze(context.Background(), sess.ID); !errors.Is(err, domain.ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
	if _, err := f.svc.Analyze(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFullFlow(t *testing.T) {
	f := newFixture(report.Analysis{Text: "**Pneumonia**\nDetails..."}, nil, false)
	ctx := context.Background()

	sess, _ := f.svc.Create(ctx, "")
	if _, err := f.svc.UploadImage(ctx, sess.ID, png()); err != nil {
		t.Fatalf("UploadImage failed: %v", err)
	}

	got, err := f.svc.Analyze(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if got.State != domain.StateAnalyzed {
		t.Errorf("expected analyzed, got %s", got.State)
	}
	if got.Disease.Label() != "Pneumonia" || got.Urgency != "High" {
		t.Errorf("unexpected headline %+v urgency %q", got.Disease, got.Urgency)
	}
	if got.Hospital == nil || got.Hospital.Area != "Mylapore" {
		t.Errorf("unexpected hospital %+v", got.Hospital)
	}
	if got.Announcement == nil || got.Announcement.Text != "Disease: Pneumonia, Urgency of treatment: High. " {
		t.Errorf("unexpected announcement %+v", got.Announcement)
	}

	_, first, err := f.svc.Translate(ctx, sess.ID, "Tamil")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	after, second, err := f.svc.Translate(ctx, sess.ID, "Tamil")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if first != second {
		t.Errorf("repeated translation differs: %+v vs %+v", first, second)
	}
	if after.State != domain.StateTranslated {
		t.Errorf("expected translated, got %s", after.State)
	}
	if after.Analysis.Text != "**Pneumonia**\nDetails..." {
		t.Errorf("translation mutated stored analysis: %q", after.Analysis.Text)
	}

	_, hindi, _ := f.svc.Translate(ctx, sess.ID, "Hindi")
	if hindi.Language.Code != "hi" {
		t.Errorf("expected hi, got %+v", hindi.Language)
	}
}

func TestAnalyze_ModelFailureIsDegraded(t *testing.T) {
	f := newFixture(report.Failure("quota exceeded"), nil, false)
	ctx := context.Background()
	sess, _ := f.svc.Create(ctx, "")
	_, _ = f.svc.UploadImage(ctx, sess.ID, png())

	got, err := f.svc.Analyze(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Analyze must not fail on model errors: %v", err)
	}
	if !got.Analysis.Failed || got.Analysis.Text != "Error: quota exceeded" {
		t.Errorf("unexpected analysis %+v", got.Analysis)
	}
	if got.Disease.Label() != report.UnknownDisease {
		t.Errorf("expected Unknown Disease, got %q", got.Disease.Label())
	}
}

func TestAnalyze_HospitalNotFound(t *testing.T) {
	f := newFixture(report.Analysis{Text: "**Fracture**"}, fmt.Errorf("%w: no match", hospital.ErrNotFound), false)
	ctx := context.Background()
	sess, _ := f.svc.Create(ctx, "")
	_, _ = f.svc.UploadImage(ctx, sess.ID, png())

	got, err := f.svc.Analyze(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if got.Hospital != nil || got.HospitalNote != NoHospitalNote {
		t.Errorf("expected not-found note, got %+v / %q", got.Hospital, got.HospitalNote)
	}
	if got.Announcement != nil {
		t.Error("no announcement expected without a hospital")
	}
}

func TestAnalyze_HospitalTransportErrorIsReported(t *testing.T) {
	f := newFixture(report.Analysis{Text: "**Fracture**"}, errors.New("dial tcp: timeout"), false)
	ctx := context.Background()
	sess, _ := f.svc.Create(ctx, "")
	_, _ = f.svc.UploadImage(ctx, sess.ID, png())

	got, err := f.svc.Analyze(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if got.HospitalNote == NoHospitalNote || got.HospitalNote == "" {
		t.Errorf("expected detailed note, got %q", got.HospitalNote)
	}
}

func TestReanalyzeReleasesPreviousAudio(t *testing.T) {
	f := newFixture(report.Analysis{Text: "**Pneumonia**"}, nil, false)
	ctx := context.Background()
	sess, _ := f.svc.Create(ctx, "")
	_, _ = f.svc.UploadImage(ctx, sess.ID, png())

	first, _ := f.svc.Analyze(ctx, sess.ID)
	second, _ := f.svc.Analyze(ctx, sess.ID)
	if first.AudioKey() == second.AudioKey() {
		t.Fatal("expected a fresh audio key")
	}
	if len(f.announcer.live) != 1 || !f.announcer.live[second.AudioKey()] {
		t.Errorf("stale audio not released: %v", f.announcer.live)
	}
}

func TestUploadInvalidatesAnalysis(t *testing.T) {
	f := newFixture(report.Analysis{Text: "**Pneumonia**"}, nil, false)
	ctx := context.Background()
	sess, _ := f.svc.Create(ctx, "")
	_, _ = f.svc.UploadImage(ctx, sess.ID, png())
	_, _ = f.svc.Analyze(ctx, sess.ID)

	got, err := f.svc.UploadImage(ctx, sess.ID, png())
	if err != nil {
		t.Fatalf("UploadImage failed: %v", err)
	}
	if got.State != domain.StateImageLoaded || got.Analysis != nil {
		t.Errorf("expected fresh image state, got %s", got.State)
	}
	if len(f.announcer.live) != 0 {
		t.Errorf("audio not released on re-upload: %v", f.announcer.live)
	}
	if _, _, err := f.svc.Translate(ctx, sess.ID, "Hindi"); !errors.Is(err, domain.ErrNoAnalysis) {
		t.Errorf("expected ErrNoAnalysis, got %v", err)
	}
}

func TestTranslate_FailureKeepsState(t *testing.T) {
	f := newFixture(report.Analysis{Text: "**Pneumonia**"}, nil, true)
	ctx := context.Background()
	sess, _ := f.svc.Create(ctx, "")
	_, _ = f.svc.UploadImage(ctx, sess.ID, png())
	_, _ = f.svc.Analyze(ctx, sess.ID)

	got, res, err := f.svc.Translate(ctx, sess.ID, "Telugu")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if !res.Failed || res.Text != "**Pneumonia**" {
		t.Errorf("expected fallback to source, got %+v", res)
	}
	if got.State != domain.StateAnalyzed {
		t.Errorf("failed translation changed state to %s", got.State)
	}
}

func TestTranslate_UnsupportedLanguage(t *testing.T) {
	f := newFixture(report.Analysis{Text: "**Pneumonia**"}, nil, false)
	ctx := context.Background()
	sess, _ := f.svc.Create(ctx, "")
	_, _ = f.svc.UploadImage(ctx, sess.ID, png())
	_, _ = f.svc.Analyze(ctx, sess.ID)

	if _, _, err := f.svc.Translate(ctx, sess.ID, "French"); !errors.Is(err, locale.ErrUnsupportedLanguage) {
		t.Fatalf("expected ErrUnsupportedLanguage, got %v", err)
	}
}

func TestSweep(t *testing.T) {
	f := newFixture(report.Analysis{Text: "**Pneumonia**"}, nil, false)
	ctx := context.Background()
	old, _ := f.svc.Create(ctx, "")
	_, _ = f.svc.UploadImage(ctx, old.ID, png())
	_, _ = f.svc.Analyze(ctx, old.ID)

	f.clock.T = f.clock.T.Add(2 * time.Hour)
	fresh, _ := f.svc.Create(ctx, "")

	if n := f.svc.Sweep(ctx); n != 1 {
		t.Fatalf("expected 1 expired session, got %d", n)
	}
	if _, err := f.svc.Get(ctx, old.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expired session still present: %v", err)
	}
	if _, err := f.svc.Get(ctx, fresh.ID); err != nil {
		t.Errorf("fresh session swept: %v", err)
	}
	if len(f.announcer.live) != 0 {
		t.Errorf("expired audio not released: %v", f.announcer.live)
	}
}

func TestConcurrentSessionsGetOwnAudio(t *testing.T) {
	f := newFixture(report.Analysis{Text: "**Pneumonia**"}, nil, false)
	ctx := context.Background()

	const n = 8
	ids := make([]domain.ID, n)
	for i := range ids {
		s, _ := f.svc.Create(ctx, "")
		_, _ = f.svc.UploadImage(ctx, s.ID, png())
		ids[i] = s.ID
	}

	var wg sync.WaitGroup
	keys := make([]string, n)
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id domain.ID) {
			defer wg.Done()
			s, err := f.svc.Analyze(ctx, id)
			if err != nil {
				t.Errorf("Analyze failed: %v", err)
				return
			}
			keys[i] = s.AudioKey()
		}(i, id)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, k := range keys {
		if k == "" || seen[k] {
			t.Fatalf("duplicate or missing audio key %q", k)
		}
		seen[k] = true
	}
}

type gatedAnalyzer struct {
	started chan struct{}
	release chan struct{}
}

func (g gatedAnalyzer) Analyze(ctx context.Context, image []byte, imageType string) report.Analysis {
	close(g.started)
	<-g.release
	return report.Analysis{Text: "**Pneumonia**"}
}

func TestSweepSkipsSessionWithActionInFlight(t *testing.T) {
	f := newFixture(report.Analysis{}, nil, false)
	ctx := context.Background()
	sess, _ := f.svc.Create(ctx, "")
	_, _ = f.svc.UploadImage(ctx, sess.ID, png())

	gate := gatedAnalyzer{started: make(chan struct{}), release: make(chan struct{})}
	f.svc.Analyzer = gate
	f.clock.T = f.clock.T.Add(2 * time.Hour)

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Analyze(ctx, sess.ID)
		done <- err
	}()
	<-gate.started

	if n := f.svc.Sweep(ctx); n != 0 {
		t.Fatalf("swept %d sessions while an analysis was running", n)
	}
	if _, err := f.svc.Get(ctx, sess.ID); err != nil {
		t.Fatalf("session vanished during analysis: %v", err)
	}

	close(gate.release)
	if err := <-done; err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	got, err := f.svc.Get(ctx, sess.ID)
	if err != nil || got.State != domain.StateAnalyzed {
		t.Fatalf("expected analyzed session, got %+v, %v", got, err)
	}
	if n := f.svc.Sweep(ctx); n != 0 {
		t.Errorf("session touched by the analysis was swept: %d", n)
	}
}
