package show

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/cinesync/server/internal/domain"
	showrepo "github.com/cinesync/server/internal/repository/show"
)

const minStartLead = 5 * time.Minute

type iShowRepo interface {
	Create(ctx context.Context, params *showrepo.CreateParams) (domain.Show, error)
	GetById(ctx context.Context, id int64) (domain.Show, error)
	List(ctx context.Context) ([]domain.Show, error)
	ExistsActive(ctx context.Context, passCode string) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ShowStatus) error
	SoftDelete(ctx context.Context, id int64) error
}

type iSubtitleRepo interface {
	FetchCues(ctx context.Context, url string) ([]domain.SubtitleCue, error)
}

type iMediaProbe interface {
	ProbeDuration(ctx context.Context, url string) (float64, error)
}

// service manages show records: operator-facing create/list/delete plus the
// resubmission path that sends an errored show back through scheduling.
type service struct {
	showRepo     iShowRepo
	subtitleRepo iSubtitleRepo
	mediaProbe   iMediaProbe
	clock        clockwork.Clock
	logger       *slog.Logger
}

func NewService(
	showRepo iShowRepo,
	subtitleRepo iSubtitleRepo,
	mediaProbe iMediaProbe,
	clock clockwork.Clock,
	logger *slog.Logger,
) *service {
	return &service{
		showRepo:     showRepo,
		subtitleRepo: subtitleRepo,
		mediaProbe:   mediaProbe,
		clock:        clock,
		logger:       logger,
	}
}

type CreateParams struct {
	PassCode      string
	Title         string
	MovieURL      string
	SubtitleURL   string
	StartTime     time.Time
	SmartSync     bool
	VotingEnabled bool
}

// Create validates a new show and persists it in the processing state, where
// the scheduler picks it up. The duration is probed from the movie asset, not
// supplied by the caller.
func (s *service) Create(ctx context.Context, params CreateParams) (domain.Show, error) {
	if params.StartTime.Before(s.clock.Now().Add(minStartLead)) {
		return domain.Show{}, ErrStartTimeTooEarly
	}

	taken, err := s.showRepo.ExistsActive(ctx, params.PassCode)
	if err != nil {
		return domain.Show{}, fmt.Errorf("failed to check pass code: %w", err)
	}
	if taken {
		return domain.Show{}, ErrPassCodeInUse
	}

	if params.SubtitleURL != "" {
		if _, err := s.subtitleRepo.FetchCues(ctx, params.SubtitleURL); err != nil {
			return domain.Show{}, fmt.Errorf("failed to validate subtitle: %w", err)
		}
	}

	duration, err := s.mediaProbe.ProbeDuration(ctx, params.MovieURL)
	if err != nil {
		return domain.Show{}, fmt.Errorf("failed to probe movie duration: %w", err)
	}

	show, err := s.showRepo.Create(ctx, &showrepo.CreateParams{
		PassCode:      params.PassCode,
		Title:         params.Title,
		MovieURL:      params.MovieURL,
		SubtitleURL:   params.SubtitleURL,
		StartTime:     params.StartTime,
		Duration:      duration,
		SmartSync:     params.SmartSync,
		VotingEnabled: params.VotingEnabled,
	})
	if err != nil {
		return domain.Show{}, fmt.Errorf("failed to create show: %w", err)
	}

	s.logger.Info("show created",
		"show_id", show.Id,
		"pass_code", show.PassCode,
		"start_time", show.StartTime,
		"duration", show.Duration,
	)

	return show, nil
}

func (s *service) List(ctx context.Context) ([]domain.Show, error) {
	shows, err := s.showRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list shows: %w", err)
	}

	return shows, nil
}

func (s *service) GetById(ctx context.Context, id int64) (domain.Show, error) {
	show, err := s.showRepo.GetById(ctx, id)
	if err != nil {
		return domain.Show{}, fmt.Errorf("failed to get show: %w", err)
	}

	return show, nil
}

func (s *service) SoftDelete(ctx context.Context, id int64) error {
	if err := s.showRepo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete show: %w", err)
	}

	s.logger.Info("show deleted", "show_id", id)

	return nil
}

// Resubmit sends an errored show back to processing so the scheduler retries
// its validation. Scheduler failures are terminal; this is the only retry
// path.
func (s *service) Resubmit(ctx context.Context, id int64) (domain.Show, error) {
	show, err := s.showRepo.GetById(ctx, id)
	if err != nil {
		return domain.Show{}, fmt.Errorf("failed to get show: %w", err)
	}

	if show.Status != domain.ShowStatusError {
		return domain.Show{}, ErrNotResubmittable
	}

	if err := s.showRepo.UpdateStatus(ctx, id, domain.ShowStatusProcessing); err != nil {
		return domain.Show{}, fmt.Errorf("failed to resubmit show: %w", err)
	}

	show.Status = domain.ShowStatusProcessing

	s.logger.Info("show resubmitted", "show_id", id)

	return show, nil
}
