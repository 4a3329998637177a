package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yabaduma/retheme/internal/models"
)

// Run repository errors.
var (
	ErrRunNotFound = errors.New("run not found")
	ErrInvalidRun  = errors.New("invalid run")
	ErrAmbiguousID = errors.New("run id prefix matches more than one run")
)

// timeFormat is fixed width so stored timestamps sort as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// RunRepository persists pipeline runs and their step results.
type RunRepository struct {
	db *DB
}

// NewRunRepository creates a new RunRepository.
func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// RunQuery filters List results.
type RunQuery struct {
	Since      *time.Time // runs started at or after this time
	FailedOnly bool
	Limit      int
}

// Create stores a run with its steps. An empty ID is filled in.
func (r *RunRepository) Create(ctx context.Context, run *models.Run) error {
	if run == nil || run.StartedAt.IsZero() {
		return ErrInvalidRun
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = run.StartedAt
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, wallpaper, palette, succeeded, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.StartedAt.UTC().Format(timeFormat),
		run.FinishedAt.UTC().Format(timeFormat),
		run.Wallpaper,
		run.Palette,
		boolToInt(run.Succeeded),
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, step := range run.Steps {
		errText := ""
		if step.Err != nil {
			errText = step.Err.Error()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_steps (run_id, position, name, kind, status, reason, error, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, run.ID, i, step.Name, string(step.Kind), string(step.Status), step.Reason, errText, step.Duration.Milliseconds())
		if err != nil {
			return fmt.Errorf("failed to insert step %q: %w", step.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// Get retrieves a run with its steps.
func (r *RunRepository) Get(ctx context.Context, id string) (*models.Run, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, wallpaper, palette, succeeded, error
		FROM runs WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	if err := r.loadSteps(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// GetByPrefix retrieves the single run whose ID starts with prefix.
func (r *RunRepository) GetByPrefix(ctx context.Context, prefix string) (*models.Run, error) {
	if prefix == "" || strings.ContainsAny(prefix, "%_") {
		return nil, ErrRunNotFound
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM runs WHERE id LIKE ? LIMIT 2`, prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	switch len(ids) {
	case 0:
		return nil, ErrRunNotFound
	case 1:
		return r.Get(ctx, ids[0])
	default:
		return nil, ErrAmbiguousID
	}
}

// List returns runs newest first.
func (r *RunRepository) List(ctx context.Context, q RunQuery) ([]*models.Run, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, started_at, finished_at, wallpaper, palette, succeeded, error
		FROM runs WHERE 1=1`
	args := []any{}
	if q.Since != nil {
		query += ` AND started_at >= ?`
		args = append(args, q.Since.UTC().Format(timeFormat))
	}
	if q.FailedOnly {
		query += ` AND succeeded = 0`
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	rows.Close()

	for _, run := range runs {
		if err := r.loadSteps(ctx, run); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// Prune keeps the newest keep runs and deletes the rest.
func (r *RunRepository) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY started_at DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected, nil
}

func (r *RunRepository) loadSteps(ctx context.Context, run *models.Run) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, kind, status, reason, error, duration_ms
		FROM run_steps WHERE run_id = ? ORDER BY position
	`, run.ID)
	if err != nil {
		return fmt.Errorf("failed to query steps: %w", err)
	}
	defer rows.Close()

	run.Steps = []models.StepResult{}
	for rows.Next() {
		var (
			step       models.StepResult
			kind       string
			status     string
			errText    string
			durationMS int64
		)
		if err := rows.Scan(&step.Name, &kind, &status, &step.Reason, &errText, &durationMS); err != nil {
			return fmt.Errorf("failed to scan step: %w", err)
		}
		step.Kind = models.StepKind(kind)
		step.Status, err = models.ParseStatus(status)
		if err != nil {
			return err
		}
		if errText != "" {
			step.Err = errors.New(errText)
		}
		step.Duration = time.Duration(durationMS) * time.Millisecond
		run.Steps = append(run.Steps, step)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.Run, error) {
	var (
		run        models.Run
		startedAt  string
		finishedAt string
		succeeded  int
	)
	if err := row.Scan(&run.ID, &startedAt, &finishedAt, &run.Wallpaper, &run.Palette, &succeeded, &run.Error); err != nil {
		return nil, err
	}

	var err error
	if run.StartedAt, err = time.Parse(timeFormat, startedAt); err != nil {
		return nil, fmt.Errorf("failed to parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(timeFormat, finishedAt); err != nil {
		return nil, fmt.Errorf("failed to parse finished_at: %w", err)
	}
	run.Succeeded = succeeded != 0
	return &run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
