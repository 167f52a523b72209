package screenshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrEmptyImage is returned when there is nothing to store
var ErrEmptyImage = errors.New("empty screenshot image")

// Store persists screenshots and returns the stored file name
type Store interface {
	Save(ctx context.Context, image []byte) (string, error)
}

// Filename returns a unique screenshot name: screenshot_<unix>_<ulid>.png
func Filename(t time.Time) string {
	id := ulid.MustNew(ulid.Timestamp(t), ulid.DefaultEntropy())
	return fmt.Sprintf("screenshot_%d_%s.png", t.Unix(), id)
}
