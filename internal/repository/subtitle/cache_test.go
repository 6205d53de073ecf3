package subtitle

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/cinesync/server/internal/domain"
)

type countingFetcher struct {
	calls int
	cues  []domain.SubtitleCue
	err   error
}

func (f *countingFetcher) FetchCues(ctx context.Context, url string) ([]domain.SubtitleCue, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.cues, nil
}

func newCacheHarness(t *testing.T, fetcher *countingFetcher) *CachedRepo {
	t.Helper()

	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rc.Close() })

	return NewCachedRepo(fetcher, rc, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCachedRepoFetchesOnceForSameURL(t *testing.T) {
	fetcher := &countingFetcher{cues: []domain.SubtitleCue{
		{Id: 1, StartTime: "00:00:01,000", EndTime: "00:00:02,000", Text: "hi"},
	}}
	repo := newCacheHarness(t, fetcher)
	ctx := context.Background()

	first, err := repo.FetchCues(ctx, "https://cdn.example.com/a.srt")
	require.NoError(t, err)

	second, err := repo.FetchCues(ctx, "https://cdn.example.com/a.srt")
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, 1, fetcher.calls)
}

func TestCachedRepoDoesNotCacheFailures(t *testing.T) {
	fetcher := &countingFetcher{err: ErrNoCues}
	repo := newCacheHarness(t, fetcher)
	ctx := context.Background()

	_, err := repo.FetchCues(ctx, "https://cdn.example.com/a.srt")
	require.ErrorIs(t, err, ErrNoCues)

	_, err = repo.FetchCues(ctx, "https://cdn.example.com/a.srt")
	require.ErrorIs(t, err, ErrNoCues)
	require.Equal(t, 2, fetcher.calls)
}
