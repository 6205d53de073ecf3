package subtitle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cinesync/server/internal/domain"
)

type iFetcher interface {
	FetchCues(ctx context.Context, url string) ([]domain.SubtitleCue, error)
}

// CachedRepo caches parsed cues in redis keyed by url. The same subtitle file
// is fetched at show creation and again when the scheduler sets the room up;
// the cache keeps the second hit off the origin.
type CachedRepo struct {
	fetcher iFetcher
	rc      *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
}

func NewCachedRepo(fetcher iFetcher, rc *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedRepo {
	return &CachedRepo{
		fetcher: fetcher,
		rc:      rc,
		ttl:     ttl,
		logger:  logger,
	}
}

func cacheKey(url string) string {
	return "subtitle:" + url
}

func (r *CachedRepo) FetchCues(ctx context.Context, url string) ([]domain.SubtitleCue, error) {
	cached, err := r.rc.Get(ctx, cacheKey(url)).Bytes()
	if err == nil {
		var cues []domain.SubtitleCue
		if err := json.Unmarshal(cached, &cues); err == nil && len(cues) > 0 {
			return cues, nil
		}
		// corrupt entry, fall through to refetch
		r.logger.WarnContext(ctx, "dropping corrupt subtitle cache entry", "url", url)
	} else if err != redis.Nil {
		r.logger.WarnContext(ctx, "subtitle cache read failed", "url", url, "error", err)
	}

	cues, err := r.fetcher.FetchCues(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cues: %w", err)
	}

	payload, err := json.Marshal(cues)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cues: %w", err)
	}

	if err := r.rc.Set(ctx, cacheKey(url), payload, r.ttl).Err(); err != nil {
		// cache write failure is not a fetch failure
		r.logger.WarnContext(ctx, "subtitle cache write failed", "url", url, "error", err)
	}

	return cues, nil
}
