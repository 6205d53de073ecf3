package mediaprobe

import (
	"context"
	"errors"
	"fmt"
	"time"

	ffprobe "gopkg.in/vansante/go-ffprobe.v2"
)

var ErrUnprobeable = errors.New("unable to probe video duration")

// Repo resolves a video asset's duration with ffprobe. The binary must be on
// PATH.
type Repo struct {
	timeout time.Duration
}

func NewRepo(timeout time.Duration) *Repo {
	return &Repo{timeout: timeout}
}

func (r *Repo) ProbeDuration(ctx context.Context, url string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	data, err := ffprobe.ProbeURL(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnprobeable, err)
	}

	if data.Format == nil || data.Format.DurationSeconds <= 0 {
		return 0, ErrUnprobeable
	}

	return data.Format.DurationSeconds, nil
}
