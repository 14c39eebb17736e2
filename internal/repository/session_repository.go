package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobscout/internal/database"
	"jobscout/internal/domain/scrape"

	"github.com/google/uuid"
)

func durationFromMillis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// Focus areas are stored as a single comma-joined column.
func joinFocus(areas []string) string {
	return strings.Join(areas, ",")
}

func splitFocus(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ",")
}

type SessionRepository interface {
	// Record stores the finished session and its per-source outcomes in one
	// transaction.
	Record(ctx context.Context, s scrape.Session) error
	Get(ctx context.Context, id string) (scrape.Session, error)
	ListRecent(ctx context.Context, limit int) ([]scrape.Session, error)
}

type PostgresSessionRepository struct {
	db database.DB
}

func NewPostgresSessionRepository(db database.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

func (r *PostgresSessionRepository) Record(ctx context.Context, s scrape.Session) error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("empty session id")
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO scrape_sessions (id, focus_areas, started_at, completed_at, total_found, total_saved, success)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (id) DO UPDATE SET
			completed_at = EXCLUDED.completed_at,
			total_found = EXCLUDED.total_found,
			total_saved = EXCLUDED.total_saved,
			success = EXCLUDED.success`,
		s.ID, joinFocus(s.FocusAreas), s.StartedAt.UTC(), s.CompletedAt.UTC(), s.TotalFound, s.TotalSaved, s.Success,
	)
	if err != nil {
		return err
	}

	for i, src := range s.Sources {
		_, err = tx.Exec(ctx,
			`INSERT INTO source_results (id, session_id, position, source_name, category, jobs_found, jobs_saved, success, error, duration_ms)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			uuid.New(), s.ID, i, src.SourceName, src.Category, src.JobsFound, src.JobsSaved,
			src.Success, src.Error, src.Duration.Milliseconds(),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PostgresSessionRepository) Get(ctx context.Context, id string) (scrape.Session, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, focus_areas, started_at, completed_at, total_found, total_saved, success
		 FROM scrape_sessions WHERE id = $1`, id)

	var s scrape.Session
	var focus string
	if err := row.Scan(&s.ID, &focus, &s.StartedAt, &s.CompletedAt, &s.TotalFound, &s.TotalSaved, &s.Success); err != nil {
		return scrape.Session{}, err
	}
	s.FocusAreas = splitFocus(focus)

	rows, err := r.db.Query(ctx,
		`SELECT source_name, category, jobs_found, jobs_saved, success, error, duration_ms
		 FROM source_results WHERE session_id = $1 ORDER BY position`, id)
	if err != nil {
		return scrape.Session{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var src scrape.SourceResult
		var durationMS int64
		if err := rows.Scan(&src.SourceName, &src.Category, &src.JobsFound, &src.JobsSaved, &src.Success, &src.Error, &durationMS); err != nil {
			return scrape.Session{}, err
		}
		src.Duration = durationFromMillis(durationMS)
		s.Sources = append(s.Sources, src)
	}
	if err := rows.Err(); err != nil {
		return scrape.Session{}, err
	}
	return s, nil
}

func (r *PostgresSessionRepository) ListRecent(ctx context.Context, limit int) ([]scrape.Session, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 200 {
		limit = 200
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, focus_areas, started_at, completed_at, total_found, total_saved, success
		 FROM scrape_sessions ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]scrape.Session, 0, limit)
	for rows.Next() {
		var s scrape.Session
		var focus string
		if err := rows.Scan(&s.ID, &focus, &s.StartedAt, &s.CompletedAt, &s.TotalFound, &s.TotalSaved, &s.Success); err != nil {
			return nil, err
		}
		s.FocusAreas = splitFocus(focus)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
