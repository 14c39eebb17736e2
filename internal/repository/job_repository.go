package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobscout/internal/database"
	"jobscout/internal/domain/job"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// JobFilter restricts ListActive. Zero values mean no restriction.
type JobFilter struct {
	Company     string
	SourceName  string
	JobType     string
	RemoteOnly  bool
	PostedAfter *time.Time
	Limit       int
	Offset      int
}

type JobRepository interface {
	// SaveBatch upserts postings by fingerprint inside tx and returns how
	// many were new. Existing rows get missing metadata backfilled and
	// their last_seen_at refreshed.
	SaveBatch(ctx context.Context, tx database.Tx, postings []job.Posting) (int, error)
	ListActive(ctx context.Context, f JobFilter) ([]job.Posting, error)
	GetByID(ctx context.Context, id uuid.UUID) (job.Posting, error)
	DeactivateOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type PostgresJobRepository struct {
	db database.DB
}

func NewPostgresJobRepository(db database.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

const insertJobSQL = `
INSERT INTO jobs (
	id, fingerprint, title, company, location, description,
	salary_min, salary_max, salary_period, job_type, experience_level,
	remote, company_size, technologies, source_name, source_url,
	external_id, posted_at, first_seen_at, last_seen_at, is_active
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,true)
ON CONFLICT (fingerprint) DO UPDATE SET
	last_seen_at = EXCLUDED.last_seen_at,
	is_active = true,
	location = COALESCE(jobs.location, EXCLUDED.location),
	description = COALESCE(jobs.description, EXCLUDED.description),
	salary_min = COALESCE(jobs.salary_min, EXCLUDED.salary_min),
	salary_max = COALESCE(jobs.salary_max, EXCLUDED.salary_max),
	salary_period = COALESCE(NULLIF(jobs.salary_period, ''), EXCLUDED.salary_period),
	job_type = COALESCE(jobs.job_type, EXCLUDED.job_type),
	experience_level = COALESCE(jobs.experience_level, EXCLUDED.experience_level),
	company_size = COALESCE(jobs.company_size, EXCLUDED.company_size),
	posted_at = COALESCE(jobs.posted_at, EXCLUDED.posted_at)
RETURNING (xmax = 0)`

func (r *PostgresJobRepository) SaveBatch(ctx context.Context, tx database.Tx, postings []job.Posting) (int, error) {
	if tx == nil {
		return 0, fmt.Errorf("nil tx")
	}
	saved := 0
	now := time.Now().UTC()
	for i := range postings {
		p := &postings[i]
		if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Company) == "" {
			continue
		}
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		firstSeen := p.FirstSeenAt
		if firstSeen.IsZero() {
			firstSeen = now
		}

		var inserted bool
		row := tx.QueryRow(ctx, insertJobSQL,
			p.ID, p.Fingerprint(), p.Title, p.Company, p.Location, p.Description,
			p.SalaryMin, p.SalaryMax, p.SalaryPeriod, p.JobType, p.ExperienceLevel,
			p.Remote, p.CompanySize, p.Technologies, p.SourceName, p.SourceURL,
			p.ExternalID, p.PostedAt, firstSeen, now,
		)
		if err := row.Scan(&inserted); err != nil {
			return saved, fmt.Errorf("save job %q at %q: %w", p.Title, p.Company, err)
		}
		if inserted {
			saved++
		}
	}
	return saved, nil
}

func (r *PostgresJobRepository) ListActive(ctx context.Context, f JobFilter) ([]job.Posting, error) {
	if f.Limit <= 0 {
		f.Limit = 100
	}
	if f.Limit > 1000 {
		f.Limit = 1000
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	where := []string{"is_active = true"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if s := strings.TrimSpace(f.Company); s != "" {
		where = append(where, "LOWER(company) LIKE "+arg("%"+strings.ToLower(s)+"%"))
	}
	if s := strings.TrimSpace(f.SourceName); s != "" {
		where = append(where, "source_name = "+arg(s))
	}
	if s := strings.TrimSpace(f.JobType); s != "" {
		where = append(where, "job_type = "+arg(s))
	}
	if f.RemoteOnly {
		where = append(where, "remote = true")
	}
	if f.PostedAfter != nil {
		where = append(where, "posted_at >= "+arg(*f.PostedAfter))
	}

	query := `SELECT id, fingerprint, title, company, location, description,
	salary_min, salary_max, COALESCE(salary_period, ''), job_type, experience_level,
	remote, company_size, technologies, source_name, source_url,
	external_id, posted_at, first_seen_at
FROM jobs
WHERE ` + strings.Join(where, " AND ") + `
ORDER BY posted_at DESC NULLS LAST, first_seen_at DESC
LIMIT ` + arg(f.Limit) + ` OFFSET ` + arg(f.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]job.Posting, 0)
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresJobRepository) GetByID(ctx context.Context, id uuid.UUID) (job.Posting, error) {
	row := r.db.QueryRow(ctx, `SELECT id, fingerprint, title, company, location, description,
	salary_min, salary_max, COALESCE(salary_period, ''), job_type, experience_level,
	remote, company_size, technologies, source_name, source_url,
	external_id, posted_at, first_seen_at
FROM jobs WHERE id = $1`, id)
	p, err := scanPosting(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
			return job.Posting{}, job.ErrNotFound
		}
		return job.Posting{}, err
	}
	return p, nil
}

func (r *PostgresJobRepository) DeactivateOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.db.Exec(ctx,
		`UPDATE jobs SET is_active = false WHERE is_active = true AND last_seen_at < $1`,
		cutoff.UTC(),
	)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPosting(s scanner) (job.Posting, error) {
	var p job.Posting
	var fingerprint string
	err := s.Scan(
		&p.ID, &fingerprint, &p.Title, &p.Company, &p.Location, &p.Description,
		&p.SalaryMin, &p.SalaryMax, &p.SalaryPeriod, &p.JobType, &p.ExperienceLevel,
		&p.Remote, &p.CompanySize, &p.Technologies, &p.SourceName, &p.SourceURL,
		&p.ExternalID, &p.PostedAt, &p.FirstSeenAt,
	)
	if err != nil {
		return job.Posting{}, err
	}
	return p, nil
}
