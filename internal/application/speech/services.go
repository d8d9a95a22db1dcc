package speech

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/aarogyam/internal/domain/session"
	domain "github.com/bryanwahyu/aarogyam/internal/domain/speech"
)

// Announcer speaks the headline summary. Every clip gets its own key, so
// concurrent sessions never share an artifact.
type Announcer struct {
	synth   domain.Synthesizer
	store   domain.ArtifactStore
	lang    string
	timeout time.Duration
	log     *zap.SugaredLogger
}

func NewAnnouncer(synth domain.Synthesizer, store domain.ArtifactStore, lang string, timeout time.Duration, log *zap.SugaredLogger) *Announcer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if lang == "" {
		lang = "en"
	}
	return &Announcer{synth: synth, store: store, lang: lang, timeout: timeout, log: log}
}

// Announce always returns the text. Audio is attached only when synthesis and
// storage both succeed; otherwise the failure is logged and playback skipped.
func (a *Announcer) Announce(ctx context.Context, id session.ID, disease, urgency string) *session.Announcement {
	ann := &session.Announcement{Text: domain.AnnouncementText(disease, urgency)}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	audio, err := a.synth.Synthesize(ctx, ann.Text, a.lang)
	if errors.Is(err, context.DeadlineExceeded) {
		a.log.Errorw("speech synthesis timed out, skipping playback", "sessionID", id, "timeout", a.timeout)
		return ann
	}
	if err != nil {
		a.log.Errorw("speech synthesis failed, skipping playback", "sessionID", id, "error", err)
		return ann
	}

	key := fmt.Sprintf("sessions/%s/%s.mp3", id, uuid.New().String())
	url, err := a.store.Put(ctx, key, audio)
	if err != nil {
		a.log.Errorw("storing speech artifact failed, skipping playback", "sessionID", id, "key", key, "error", err)
		return ann
	}
	ann.AudioKey = key
	ann.AudioURL = url
	return ann
}

// Release deletes a previously stored clip. Empty keys are ignored.
func (a *Announcer) Release(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := a.store.Delete(ctx, key); err != nil {
		a.log.Warnw("failed to release speech artifact", "key", key, "error", err)
	}
}
