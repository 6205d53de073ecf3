package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cinesync/server/internal/domain"
	"github.com/cinesync/server/internal/repository/show"
)

const showColumns = "id, pass_code, title, movie_url, subtitle_url, start_time, duration, smart_sync, voting_enabled, status, finished_at, created_at, updated_at"

func scanShow(row interface{ Scan(dest ...any) error }) (domain.Show, error) {
	var s domain.Show
	var finishedAt sql.NullTime
	if err := row.Scan(
		&s.Id,
		&s.PassCode,
		&s.Title,
		&s.MovieURL,
		&s.SubtitleURL,
		&s.StartTime,
		&s.Duration,
		&s.SmartSync,
		&s.VotingEnabled,
		&s.Status,
		&finishedAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return domain.Show{}, err
	}

	if finishedAt.Valid {
		s.FinishedAt = &finishedAt.Time
	}

	return s, nil
}

func (r *repo) Create(ctx context.Context, params *show.CreateParams) (domain.Show, error) {
	const query = `INSERT INTO shows (pass_code, title, movie_url, subtitle_url, start_time, duration, smart_sync, voting_enabled, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		params.PassCode,
		params.Title,
		params.MovieURL,
		params.SubtitleURL,
		params.StartTime,
		params.Duration,
		params.SmartSync,
		params.VotingEnabled,
		domain.ShowStatusProcessing,
	)
	if err != nil {
		return domain.Show{}, fmt.Errorf("failed to insert show: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.Show{}, fmt.Errorf("failed to get inserted id: %w", err)
	}

	return r.GetById(ctx, id)
}

func (r *repo) GetById(ctx context.Context, id int64) (domain.Show, error) {
	query := fmt.Sprintf("SELECT %s FROM shows WHERE id = ? AND deleted_at IS NULL", showColumns)

	s, err := scanShow(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Show{}, show.ErrNotFound
	}

	return s, err
}

// FindOneByStatus returns the earliest-starting show with the given status.
func (r *repo) FindOneByStatus(ctx context.Context, status domain.ShowStatus) (domain.Show, error) {
	query := fmt.Sprintf("SELECT %s FROM shows WHERE status = ? AND deleted_at IS NULL ORDER BY start_time LIMIT 1", showColumns)

	s, err := scanShow(r.db.QueryRowContext(ctx, query, status))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Show{}, show.ErrNotFound
	}

	return s, err
}

func (r *repo) FindByStatuses(ctx context.Context, statuses []domain.ShowStatus) ([]domain.Show, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
	query := fmt.Sprintf("SELECT %s FROM shows WHERE status IN (%s) AND deleted_at IS NULL ORDER BY start_time", showColumns, placeholders)

	args := make([]any, 0, len(statuses))
	for _, status := range statuses {
		args = append(args, status)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query shows: %w", err)
	}
	defer rows.Close()

	var shows []domain.Show
	for rows.Next() {
		s, err := scanShow(rows)
		if err != nil {
			return nil, err
		}
		shows = append(shows, s)
	}

	return shows, rows.Err()
}

func (r *repo) List(ctx context.Context) ([]domain.Show, error) {
	query := fmt.Sprintf("SELECT %s FROM shows WHERE deleted_at IS NULL ORDER BY start_time DESC", showColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query shows: %w", err)
	}
	defer rows.Close()

	var shows []domain.Show
	for rows.Next() {
		s, err := scanShow(rows)
		if err != nil {
			return nil, err
		}
		shows = append(shows, s)
	}

	return shows, rows.Err()
}

// ExistsActive reports whether an undeleted processing, scheduled or watching
// show already holds the given pass code.
func (r *repo) ExistsActive(ctx context.Context, passCode string) (bool, error) {
	const query = "SELECT EXISTS(SELECT 1 FROM shows WHERE pass_code = ? AND status IN (?, ?, ?) AND deleted_at IS NULL)"

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, passCode,
		domain.ShowStatusProcessing,
		domain.ShowStatusScheduled,
		domain.ShowStatusWatching,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check pass code: %w", err)
	}

	return exists, nil
}

func (r *repo) UpdateStatus(ctx context.Context, id int64, status domain.ShowStatus) error {
	const query = "UPDATE shows SET status = ? WHERE id = ? AND deleted_at IS NULL"

	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update show status: %w", err)
	}

	return checkAffected(res)
}

// UpdateFinished marks the show finished and records the moment playback
// ended. finished_at is written once; later transitions never touch it.
func (r *repo) UpdateFinished(ctx context.Context, id int64, finishedAt time.Time) error {
	const query = "UPDATE shows SET status = ?, finished_at = ? WHERE id = ? AND deleted_at IS NULL"

	res, err := r.db.ExecContext(ctx, query, domain.ShowStatusFinished, finishedAt, id)
	if err != nil {
		return fmt.Errorf("failed to finish show: %w", err)
	}

	return checkAffected(res)
}

func (r *repo) UpdateStartTime(ctx context.Context, id int64, startTime time.Time) error {
	const query = "UPDATE shows SET start_time = ? WHERE id = ? AND deleted_at IS NULL"

	res, err := r.db.ExecContext(ctx, query, startTime, id)
	if err != nil {
		return fmt.Errorf("failed to update show start time: %w", err)
	}

	return checkAffected(res)
}

func (r *repo) SoftDelete(ctx context.Context, id int64) error {
	const query = "UPDATE shows SET deleted_at = NOW(3) WHERE id = ? AND deleted_at IS NULL"

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete show: %w", err)
	}

	return checkAffected(res)
}

func checkAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return show.ErrNotFound
	}

	return nil
}
