package archive

import (
	"context"
	"fmt"
	"time"
)

// Unavailable stands in for a backend that could not be opened. Load yields
// a fresh archive with the open error, and Save reports the same error, so
// a run still completes and records the failure.
type Unavailable struct {
	Err error
}

// NewUnavailable wraps err, which must be non-nil.
func NewUnavailable(err error) *Unavailable {
	return &Unavailable{Err: fmt.Errorf("archive unavailable: %w", err)}
}

func (u *Unavailable) Load(ctx context.Context) (*Archive, error) {
	return New(time.Now()), u.Err
}

func (u *Unavailable) Save(ctx context.Context, a *Archive) error {
	return u.Err
}

var _ Store = (*Unavailable)(nil)
