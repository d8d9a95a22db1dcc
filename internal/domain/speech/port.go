package speech

import (
	"context"
	"fmt"
)

// Audio is a synthesized clip held in memory.
type Audio struct {
	Data        []byte
	ContentType string
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) (Audio, error)
}

// ArtifactStore keeps audio clips under per-request keys and hands back a
// URL the browser can play.
type ArtifactStore interface {
	Put(ctx context.Context, key string, audio Audio) (string, error)
	Delete(ctx context.Context, key string) error
}

// AnnouncementText is the sentence read aloud after an analysis.
func AnnouncementText(disease, urgency string) string {
	return fmt.Sprintf("Disease: %s, Urgency of treatment: %s. ", disease, urgency)
}
