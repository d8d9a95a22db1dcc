package session

import (
	"errors"
	"time"

	"github.com/bryanwahyu/aarogyam/internal/domain/hospital"
	"github.com/bryanwahyu/aarogyam/internal/domain/locale"
	"github.com/bryanwahyu/aarogyam/internal/domain/location"
	"github.com/bryanwahyu/aarogyam/internal/domain/report"
)

var (
	ErrNotFound   = errors.New("session not found")
	ErrNoImage    = errors.New("no image uploaded")
	ErrNoAnalysis = errors.New("no analysis to translate")
)

type ID string

// State enum
type State string

const (
	StateIdle        State = "idle"
	StateImageLoaded State = "image_loaded"
	StateAnalyzed    State = "analyzed"
	StateTranslated  State = "translated"
)

type Image struct {
	Data        []byte
	ContentType string
	Filename    string
	UploadedAt  time.Time
}

type Translation struct {
	Language locale.Language `json:"language"`
	Text     string          `json:"text"`
}

// Announcement is the spoken summary of the last analysis. AudioURL is empty
// when synthesis failed or no hospital was found.
type Announcement struct {
	Text     string `json:"text"`
	AudioKey string `json:"-"`
	AudioURL string `json:"audio_url,omitempty"`
}

// Session is the whole interaction state of one user.
type Session struct {
	ID              ID
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Location        location.Hint
	DefaultLanguage string
	State           State

	Image        *Image
	Analysis     *report.Analysis
	Disease      report.Disease
	Urgency      string
	Hospital     *hospital.Record
	// HospitalNote explains why Hospital is nil after an analysis.
	HospitalNote string
	Announcement *Announcement
	Translation  *Translation
}

func New(id ID, hint location.Hint, now time.Time) *Session {
	return &Session{
		ID:              id,
		CreatedAt:       now,
		UpdatedAt:       now,
		Location:        hint,
		DefaultLanguage: locale.DefaultFor(hint.City),
		State:           StateIdle,
	}
}

// AudioKey returns the key of the stored audio artifact, if any.
func (s *Session) AudioKey() string {
	if s.Announcement == nil {
		return ""
	}
	return s.Announcement.AudioKey
}

// LoadImage replaces the image and drops every result derived from the
// previous one so a stale report is never shown next to a new image.
func (s *Session) LoadImage(img Image, now time.Time) {
	s.Image = &img
	s.clearResults()
	s.State = StateImageLoaded
	s.UpdatedAt = now
}

// Analyzing drops the previous results before a new analysis is recorded.
func (s *Session) Analyzing() error {
	if s.Image == nil {
		return ErrNoImage
	}
	s.clearResults()
	return nil
}

type AnalysisOutcome struct {
	Analysis     report.Analysis
	Disease      report.Disease
	Urgency      string
	Hospital     *hospital.Record
	HospitalNote string
	Announcement *Announcement
}

func (s *Session) RecordAnalysis(out AnalysisOutcome, now time.Time) error {
	if s.Image == nil {
		return ErrNoImage
	}
	a := out.Analysis
	s.Analysis = &a
	s.Disease = out.Disease
	s.Urgency = out.Urgency
	s.Hospital = out.Hospital
	s.HospitalNote = out.HospitalNote
	s.Announcement = out.Announcement
	s.Translation = nil
	s.State = StateAnalyzed
	s.UpdatedAt = now
	return nil
}

// AnalysisText is the single source for translation.
func (s *Session) AnalysisText() (string, error) {
	if s.Analysis == nil || s.Analysis.Text == "" {
		return "", ErrNoAnalysis
	}
	return s.Analysis.Text, nil
}

func (s *Session) RecordTranslation(t Translation, now time.Time) error {
	if s.Analysis == nil {
		return ErrNoAnalysis
	}
	s.Translation = &t
	s.State = StateTranslated
	s.UpdatedAt = now
	return nil
}

func (s *Session) clearResults() {
	s.Analysis = nil
	s.Disease = report.Disease{}
	s.Urgency = ""
	s.Hospital = nil
	s.HospitalNote = ""
	s.Announcement = nil
	s.Translation = nil
}
