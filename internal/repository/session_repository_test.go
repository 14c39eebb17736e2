package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"jobscout/internal/database"
	"jobscout/internal/domain/scrape"
)

type memSession struct {
	id          string
	focus       string
	startedAt   time.Time
	completedAt time.Time
	totalFound  int
	totalSaved  int
	success     bool
}

type memResult struct {
	position   int
	sourceName string
	category   string
	jobsFound  int
	jobsSaved  int
	success    bool
	errMsg     string
	durationMS int64
}

// memSessionDB captures Record writes and serves Get reads. Source results
// are stored newest-first so a read without ORDER BY position comes back in
// the wrong order.
type memSessionDB struct {
	session   *memSession
	results   []memResult
	committed bool
}

func (d *memSessionDB) Ping(ctx context.Context) error { return nil }
func (d *memSessionDB) Close() error                   { return nil }
func (d *memSessionDB) SQLDB() *sql.DB                 { return nil }

func (d *memSessionDB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return 0, fmt.Errorf("unexpected exec outside tx: %s", query)
}

func (d *memSessionDB) Begin(ctx context.Context) (database.Tx, error) {
	return &memSessionTx{db: d}, nil
}

func (d *memSessionDB) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return memSessionRow{db: d}
}

func (d *memSessionDB) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	if !strings.Contains(query, "FROM source_results") {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	rows := make([]memResult, len(d.results))
	copy(rows, d.results)
	if strings.Contains(query, "ORDER BY position") {
		for i := 0; i < len(rows); i++ {
			for j := i + 1; j < len(rows); j++ {
				if rows[j].position < rows[i].position {
					rows[i], rows[j] = rows[j], rows[i]
				}
			}
		}
	}
	return &memResultRows{rows: rows}, nil
}

type memSessionTx struct {
	db *memSessionDB
}

func (t *memSessionTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	switch {
	case strings.Contains(query, "INSERT INTO scrape_sessions"):
		t.db.session = &memSession{
			id:          args[0].(string),
			focus:       args[1].(string),
			startedAt:   args[2].(time.Time),
			completedAt: args[3].(time.Time),
			totalFound:  args[4].(int),
			totalSaved:  args[5].(int),
			success:     args[6].(bool),
		}
	case strings.Contains(query, "INSERT INTO source_results"):
		r := memResult{
			position:   args[2].(int),
			sourceName: args[3].(string),
			category:   args[4].(string),
			jobsFound:  args[5].(int),
			jobsSaved:  args[6].(int),
			success:    args[7].(bool),
			errMsg:     args[8].(string),
			durationMS: args[9].(int64),
		}
		t.db.results = append([]memResult{r}, t.db.results...)
	default:
		return 0, fmt.Errorf("unexpected insert: %s", query)
	}
	return 1, nil
}

func (t *memSessionTx) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return nil
}

func (t *memSessionTx) Commit(ctx context.Context) error {
	t.db.committed = true
	return nil
}

func (t *memSessionTx) Rollback(ctx context.Context) error { return nil }

type memSessionRow struct {
	db *memSessionDB
}

func (r memSessionRow) Scan(dest ...any) error {
	s := r.db.session
	if s == nil {
		return sql.ErrNoRows
	}
	*(dest[0].(*string)) = s.id
	*(dest[1].(*string)) = s.focus
	*(dest[2].(*time.Time)) = s.startedAt
	*(dest[3].(*time.Time)) = s.completedAt
	*(dest[4].(*int)) = s.totalFound
	*(dest[5].(*int)) = s.totalSaved
	*(dest[6].(*bool)) = s.success
	return nil
}

type memResultRows struct {
	rows []memResult
	i    int
}

func (r *memResultRows) Close() {}
func (r *memResultRows) Err() error {
	return nil
}

func (r *memResultRows) Next() bool {
	r.i++
	return r.i <= len(r.rows)
}

func (r *memResultRows) Scan(dest ...any) error {
	row := r.rows[r.i-1]
	*(dest[0].(*string)) = row.sourceName
	*(dest[1].(*string)) = row.category
	*(dest[2].(*int)) = row.jobsFound
	*(dest[3].(*int)) = row.jobsSaved
	*(dest[4].(*bool)) = row.success
	*(dest[5].(*string)) = row.errMsg
	*(dest[6].(*int64)) = row.durationMS
	return nil
}

func TestSessionRepository_RoundTripKeepsSourceOrder(t *testing.T) {
	db := &memSessionDB{}
	repo := NewPostgresSessionRepository(db)

	started := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	session := scrape.Session{
		ID:          "search_20260830_090000_abcd1234",
		FocusAreas:  []string{"internship", "h1b"},
		StartedAt:   started,
		CompletedAt: started.Add(3 * time.Minute),
		TotalFound:  9,
		TotalSaved:  6,
		Success:     true,
		Sources: []scrape.SourceResult{
			{SourceName: "github_lists", Category: "github", JobsFound: 4, JobsSaved: 3, Success: true, Duration: 1200 * time.Millisecond},
			{SourceName: "board", Category: "api", JobsFound: 5, JobsSaved: 3, Success: true, Duration: 800 * time.Millisecond},
			{SourceName: "company:acme", Category: "company_direct", Success: false, Error: "upstream 503", Duration: 400 * time.Millisecond},
		},
	}

	if err := repo.Record(context.Background(), session); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if !db.committed {
		t.Fatalf("record must commit the transaction")
	}

	got, err := repo.Get(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if len(got.FocusAreas) != 2 || got.FocusAreas[0] != "internship" || got.FocusAreas[1] != "h1b" {
		t.Fatalf("focus areas lost on round-trip: %v", got.FocusAreas)
	}
	if len(got.Sources) != 3 {
		t.Fatalf("expected 3 source results, got %d", len(got.Sources))
	}
	for i, want := range []string{"github_lists", "board", "company:acme"} {
		if got.Sources[i].SourceName != want {
			t.Fatalf("source order lost: position %d is %q, want %q", i, got.Sources[i].SourceName, want)
		}
	}
	if got.Sources[2].Error != "upstream 503" || got.Sources[2].Success {
		t.Fatalf("failed source not carried: %+v", got.Sources[2])
	}
	if got.Sources[0].Duration != 1200*time.Millisecond {
		t.Fatalf("duration lost: %v", got.Sources[0].Duration)
	}
}
