package show

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/cinesync/server/internal/domain"
	showrepo "github.com/cinesync/server/internal/repository/show"
	"github.com/cinesync/server/internal/repository/subtitle"
)

type fakeRepo struct {
	shows      map[int64]domain.Show
	nextId     int64
	activeCode string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{shows: make(map[int64]domain.Show), nextId: 1}
}

func (r *fakeRepo) Create(ctx context.Context, params *showrepo.CreateParams) (domain.Show, error) {
	show := domain.Show{
		Id:            r.nextId,
		PassCode:      params.PassCode,
		Title:         params.Title,
		MovieURL:      params.MovieURL,
		SubtitleURL:   params.SubtitleURL,
		StartTime:     params.StartTime,
		Duration:      params.Duration,
		SmartSync:     params.SmartSync,
		VotingEnabled: params.VotingEnabled,
		Status:        domain.ShowStatusProcessing,
	}
	r.shows[show.Id] = show
	r.nextId++
	return show, nil
}

func (r *fakeRepo) GetById(ctx context.Context, id int64) (domain.Show, error) {
	show, ok := r.shows[id]
	if !ok {
		return domain.Show{}, showrepo.ErrNotFound
	}
	return show, nil
}

func (r *fakeRepo) List(ctx context.Context) ([]domain.Show, error) {
	out := make([]domain.Show, 0, len(r.shows))
	for _, show := range r.shows {
		out = append(out, show)
	}
	return out, nil
}

func (r *fakeRepo) ExistsActive(ctx context.Context, passCode string) (bool, error) {
	return passCode == r.activeCode, nil
}

func (r *fakeRepo) UpdateStatus(ctx context.Context, id int64, status domain.ShowStatus) error {
	show, ok := r.shows[id]
	if !ok {
		return showrepo.ErrNotFound
	}
	show.Status = status
	r.shows[id] = show
	return nil
}

func (r *fakeRepo) SoftDelete(ctx context.Context, id int64) error {
	if _, ok := r.shows[id]; !ok {
		return showrepo.ErrNotFound
	}
	delete(r.shows, id)
	return nil
}

type fakeSubtitles struct{ err error }

func (f fakeSubtitles) FetchCues(ctx context.Context, url string) ([]domain.SubtitleCue, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []domain.SubtitleCue{{Id: 1, StartTime: "00:00:01,000", EndTime: "00:00:02,000", Text: "hi"}}, nil
}

type fakeProbe struct {
	duration float64
	err      error
}

func (f fakeProbe) ProbeDuration(ctx context.Context, url string) (float64, error) {
	return f.duration, f.err
}

func newTestService(repo *fakeRepo, subs fakeSubtitles, probe fakeProbe, clock clockwork.Clock) *service {
	return NewService(repo, subs, probe, clock, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func validParams(clock clockwork.Clock) CreateParams {
	return CreateParams{
		PassCode:      "orion",
		Title:         "Blade Runner",
		MovieURL:      "https://cdn.example.com/blade-runner.mp4",
		SubtitleURL:   "https://cdn.example.com/blade-runner.srt",
		StartTime:     clock.Now().Add(time.Hour),
		VotingEnabled: true,
	}
}

func TestCreateProbesDuration(t *testing.T) {
	clock := clockwork.NewFakeClock()
	repo := newFakeRepo()
	svc := newTestService(repo, fakeSubtitles{}, fakeProbe{duration: 7242.5}, clock)

	show, err := svc.Create(context.Background(), validParams(clock))
	require.NoError(t, err)
	require.Equal(t, domain.ShowStatusProcessing, show.Status)
	require.InDelta(t, 7242.5, show.Duration, 0.001)
}

func TestCreateRejectsNearStartTime(t *testing.T) {
	clock := clockwork.NewFakeClock()
	svc := newTestService(newFakeRepo(), fakeSubtitles{}, fakeProbe{duration: 100}, clock)

	params := validParams(clock)
	params.StartTime = clock.Now().Add(4 * time.Minute)

	_, err := svc.Create(context.Background(), params)
	require.ErrorIs(t, err, ErrStartTimeTooEarly)
}

func TestCreateRejectsDuplicatePassCode(t *testing.T) {
	clock := clockwork.NewFakeClock()
	repo := newFakeRepo()
	repo.activeCode = "orion"
	svc := newTestService(repo, fakeSubtitles{}, fakeProbe{duration: 100}, clock)

	_, err := svc.Create(context.Background(), validParams(clock))
	require.ErrorIs(t, err, ErrPassCodeInUse)
}

func TestCreateRejectsBadSubtitle(t *testing.T) {
	clock := clockwork.NewFakeClock()
	svc := newTestService(newFakeRepo(), fakeSubtitles{err: subtitle.ErrNoCues}, fakeProbe{duration: 100}, clock)

	_, err := svc.Create(context.Background(), validParams(clock))
	require.ErrorIs(t, err, subtitle.ErrNoCues)
}

func TestCreateSkipsSubtitleCheckWhenAbsent(t *testing.T) {
	clock := clockwork.NewFakeClock()
	svc := newTestService(newFakeRepo(), fakeSubtitles{err: subtitle.ErrUnreachable}, fakeProbe{duration: 100}, clock)

	params := validParams(clock)
	params.SubtitleURL = ""

	_, err := svc.Create(context.Background(), params)
	require.NoError(t, err)
}

func TestResubmitOnlyErroredShows(t *testing.T) {
	clock := clockwork.NewFakeClock()
	repo := newFakeRepo()
	svc := newTestService(repo, fakeSubtitles{}, fakeProbe{duration: 100}, clock)

	created, err := svc.Create(context.Background(), validParams(clock))
	require.NoError(t, err)

	_, err = svc.Resubmit(context.Background(), created.Id)
	require.ErrorIs(t, err, ErrNotResubmittable)

	require.NoError(t, repo.UpdateStatus(context.Background(), created.Id, domain.ShowStatusError))

	resubmitted, err := svc.Resubmit(context.Background(), created.Id)
	require.NoError(t, err)
	require.Equal(t, domain.ShowStatusProcessing, resubmitted.Status)
}
