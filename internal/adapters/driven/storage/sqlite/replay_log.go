package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/tillsync/internal/core/domain"
	"github.com/custodia-labs/tillsync/internal/core/ports/driven"
)

// replayLog implements driven.ReplayLog over the replay_runs table.
type replayLog struct {
	store *Store
}

var _ driven.ReplayLog = (*replayLog)(nil)

// Record appends a run and returns its ID.
func (l *replayLog) Record(ctx context.Context, run *domain.ReplayRun) (int64, error) {
	if run == nil {
		return 0, domain.ErrInvalidInput
	}

	res, err := l.store.db.ExecContext(ctx, `
		INSERT INTO replay_runs (started_at, ended_at, attempted, synced, failed, dropped, skipped, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, formatTime(run.StartedAt), formatTime(run.EndedAt),
		run.Report.Attempted, run.Report.Synced, run.Report.Failed, run.Report.Dropped,
		string(run.Skipped), nullString(run.Error))
	if err != nil {
		return 0, fmt.Errorf("recording replay run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading replay run id: %w", err)
	}
	run.ID = id
	return id, nil
}

// Recent returns up to limit runs, newest first.
func (l *replayLog) Recent(ctx context.Context, limit int) ([]domain.ReplayRun, error) {
	rows, err := l.store.db.QueryContext(ctx, `
		SELECT id, started_at, ended_at, attempted, synced, failed, dropped, skipped, error
		FROM replay_runs ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying replay runs: %w", err)
	}
	defer rows.Close()

	runs := make([]domain.ReplayRun, 0)
	for rows.Next() {
		run, err := scanReplayRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating replay runs: %w", err)
	}
	return runs, nil
}

// Trim deletes all but the newest keep runs.
func (l *replayLog) Trim(ctx context.Context, keep int) error {
	_, err := l.store.db.ExecContext(ctx, `
		DELETE FROM replay_runs
		WHERE id NOT IN (SELECT id FROM replay_runs ORDER BY id DESC LIMIT ?)
	`, keep)
	if err != nil {
		return fmt.Errorf("trimming replay runs: %w", err)
	}
	return nil
}

func scanReplayRun(row rowScanner) (domain.ReplayRun, error) {
	var run domain.ReplayRun
	var startedAt, endedAt, skipped string
	var errMsg sql.NullString

	if err := row.Scan(&run.ID, &startedAt, &endedAt,
		&run.Report.Attempted, &run.Report.Synced, &run.Report.Failed, &run.Report.Dropped,
		&skipped, &errMsg); err != nil {
		return domain.ReplayRun{}, fmt.Errorf("scanning replay run: %w", err)
	}

	run.StartedAt = parseTime(startedAt)
	run.EndedAt = parseTime(endedAt)
	run.Report.StartedAt = run.StartedAt
	run.Report.EndedAt = run.EndedAt
	run.Skipped = domain.ReplaySkip(skipped)
	run.Error = errMsg.String
	return run, nil
}
