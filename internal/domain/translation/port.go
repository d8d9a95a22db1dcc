package translation

import (
	"context"
	"errors"
)

// ErrTimeout marks a translation that exceeded its deadline.
var ErrTimeout = errors.New("translation timed out")

type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}
