package watch

import (
	"context"
	"errors"
	"fmt"

	"github.com/cinesync/server/internal/domain"
	showrepo "github.com/cinesync/server/internal/repository/show"
)

// scheduleOnce claims at most one processing show per tick and promotes it to
// scheduled with a live room, or marks it error. The single-flight guard
// keeps a slow subtitle fetch from overlapping the next tick.
func (s *service) scheduleOnce(ctx context.Context) {
	if !s.scheduling.CompareAndSwap(false, true) {
		return
	}
	defer s.scheduling.Store(false)

	show, err := s.showRepo.FindOneByStatus(ctx, domain.ShowStatusProcessing)
	if err != nil {
		if !errors.Is(err, showrepo.ErrNotFound) {
			s.logger.Error("failed to poll for processing shows", "error", err)
		}
		return
	}

	if err := s.setUpShow(ctx, show); err != nil {
		s.logger.Error("failed to set up show, marking it error",
			"show_id", show.Id,
			"pass_code", show.PassCode,
			"error", err,
		)
		if err := s.showRepo.UpdateStatus(ctx, show.Id, domain.ShowStatusError); err != nil {
			s.logger.Error("failed to mark show error", "show_id", show.Id, "error", err)
		}
		return
	}

	if err := s.showRepo.UpdateStatus(ctx, show.Id, domain.ShowStatusScheduled); err != nil {
		s.logger.Error("failed to mark show scheduled", "show_id", show.Id, "error", err)
		return
	}

	s.logger.Info("show scheduled",
		"show_id", show.Id,
		"pass_code", show.PassCode,
		"start_time", show.StartTime,
	)
}

// setUpShow validates the show's subtitle source and registers its room. A
// missing subtitle url disables subtitles, it is not a failure.
func (s *service) setUpShow(ctx context.Context, show domain.Show) error {
	var cues []domain.SubtitleCue

	if show.SubtitleURL != "" {
		var err error
		cues, err = s.subtitleRepo.FetchCues(ctx, show.SubtitleURL)
		if err != nil {
			return fmt.Errorf("failed to fetch subtitle cues: %w", err)
		}
	}

	s.createRoom(show, cues)

	return nil
}

// Recover re-instantiates rooms for every show that was already scheduled or
// watching when the process went down. A show that can no longer be set up is
// marked error without aborting the others.
func (s *service) Recover(ctx context.Context) error {
	shows, err := s.showRepo.FindByStatuses(ctx, []domain.ShowStatus{
		domain.ShowStatusScheduled,
		domain.ShowStatusWatching,
	})
	if err != nil {
		return fmt.Errorf("failed to load recoverable shows: %w", err)
	}

	for _, show := range shows {
		if err := s.setUpShow(ctx, show); err != nil {
			s.logger.Error("failed to recover show, marking it error",
				"show_id", show.Id,
				"pass_code", show.PassCode,
				"error", err,
			)
			if err := s.showRepo.UpdateStatus(ctx, show.Id, domain.ShowStatusError); err != nil {
				s.logger.Error("failed to mark show error", "show_id", show.Id, "error", err)
			}
			continue
		}

		s.logger.Info("show recovered",
			"show_id", show.Id,
			"pass_code", show.PassCode,
			"status", show.Status.String(),
		)
	}

	return nil
}
