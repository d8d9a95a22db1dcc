package httpserver

import (
	"time"

	"github.com/bryanwahyu/aarogyam/internal/domain/hospital"
	"github.com/bryanwahyu/aarogyam/internal/domain/locale"
	"github.com/bryanwahyu/aarogyam/internal/domain/report"
	"github.com/bryanwahyu/aarogyam/internal/domain/session"
)

type imageView struct {
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int       `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// sessionView is the JSON shape of a session. Image bytes are never echoed.
type sessionView struct {
	ID                   string                `json:"id"`
	State                session.State         `json:"state"`
	Location             string                `json:"location"`
	LocationKnown        bool                  `json:"location_known"`
	DefaultLanguage      string                `json:"default_language"`
	DefaultLanguageIndex int                   `json:"default_language_index"`
	Image                *imageView            `json:"image,omitempty"`
	Analysis             *report.Analysis      `json:"analysis,omitempty"`
	Disease              *report.Disease       `json:"disease,omitempty"`
	Urgency              string                `json:"urgency,omitempty"`
	Hospital             *hospital.Record      `json:"hospital,omitempty"`
	HospitalNote         string                `json:"hospital_note,omitempty"`
	Announcement         *session.Announcement `json:"announcement,omitempty"`
	Translation          *session.Translation  `json:"translation,omitempty"`
	CreatedAt            time.Time             `json:"created_at"`
	UpdatedAt            time.Time             `json:"updated_at"`
}

func newSessionView(s *session.Session) sessionView {
	v := sessionView{
		ID:                   string(s.ID),
		State:                s.State,
		Location:             s.Location.String(),
		LocationKnown:        s.Location.Known,
		DefaultLanguage:      s.DefaultLanguage,
		DefaultLanguageIndex: locale.IndexOf(s.DefaultLanguage),
		Analysis:             s.Analysis,
		Urgency:              s.Urgency,
		Hospital:             s.Hospital,
		HospitalNote:         s.HospitalNote,
		Announcement:         s.Announcement,
		Translation:          s.Translation,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
	if s.Image != nil {
		v.Image = &imageView{
			Filename:    s.Image.Filename,
			ContentType: s.Image.ContentType,
			Size:        len(s.Image.Data),
			UploadedAt:  s.Image.UploadedAt,
		}
	}
	if s.Analysis != nil {
		d := report.Disease{Name: s.Disease.Label(), Found: s.Disease.Found}
		v.Disease = &d
	}
	return v
}
