package coordinator

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"jobscout/internal/database"
	"jobscout/internal/domain/job"
	"jobscout/internal/domain/scrape"
	"jobscout/internal/repository"
	"jobscout/internal/scraper"

	"github.com/google/uuid"
)

type fakeSource struct {
	name     string
	category string
	postings []job.Posting
	err      error

	mu        sync.Mutex
	fetchedAt []time.Time
	gotFocus  []string
}

func (s *fakeSource) Name() string     { return s.name }
func (s *fakeSource) Category() string { return s.category }

func (s *fakeSource) Fetch(ctx context.Context, focus []string) ([]job.Posting, error) {
	s.mu.Lock()
	s.fetchedAt = append(s.fetchedAt, time.Now())
	s.gotFocus = focus
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.postings, nil
}

type fakeTx struct{}

func (fakeTx) Exec(ctx context.Context, query string, args ...any) (int64, error)   { return 0, nil }
func (fakeTx) QueryRow(ctx context.Context, query string, args ...any) database.Row { return nil }
func (fakeTx) Commit(ctx context.Context) error                                     { return nil }
func (fakeTx) Rollback(ctx context.Context) error                                   { return nil }

type fakeDB struct{}

func (fakeDB) Ping(ctx context.Context) error { return nil }
func (fakeDB) Close() error                   { return nil }
func (fakeDB) SQLDB() *sql.DB                 { return nil }
func (fakeDB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return 0, nil
}
func (fakeDB) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	return nil, fmt.Errorf("not implemented")
}
func (fakeDB) QueryRow(ctx context.Context, query string, args ...any) database.Row { return nil }
func (fakeDB) Begin(ctx context.Context) (database.Tx, error)                       { return fakeTx{}, nil }

type fakeJobRepo struct {
	mu      sync.Mutex
	saved   []job.Posting
	saveErr error
}

func (r *fakeJobRepo) SaveBatch(ctx context.Context, tx database.Tx, postings []job.Posting) (int, error) {
	if r.saveErr != nil {
		return 0, r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, postings...)
	return len(postings), nil
}

func (r *fakeJobRepo) ListActive(ctx context.Context, f repository.JobFilter) ([]job.Posting, error) {
	return nil, nil
}

func (r *fakeJobRepo) GetByID(ctx context.Context, id uuid.UUID) (job.Posting, error) {
	return job.Posting{}, fmt.Errorf("not implemented")
}

func (r *fakeJobRepo) DeactivateOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	recorded []scrape.Session
}

func (r *fakeSessionRepo) Record(ctx context.Context, s scrape.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recorded = append(r.recorded, s)
	return nil
}

func (r *fakeSessionRepo) Get(ctx context.Context, id string) (scrape.Session, error) {
	return scrape.Session{}, fmt.Errorf("not found")
}

func (r *fakeSessionRepo) ListRecent(ctx context.Context, limit int) ([]scrape.Session, error) {
	return nil, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	sessions []scrape.Session
}

func (n *fakeNotifier) SessionCompleted(s scrape.Session) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sessions = append(n.sessions, s)
}

func posting(title, company string) job.Posting {
	return job.Posting{Title: title, Company: company, SourceName: "test", SourceURL: "https://example.com/" + title}
}

// notifier is interface-typed so a nil argument stays a nil interface.
func newTestCoordinator(jobs *fakeJobRepo, sessions *fakeSessionRepo, notifier Notifier, opts Options) *Coordinator {
	return New(fakeDB{}, jobs, sessions, log.New(io.Discard, "", 0), notifier, opts)
}

func TestRun_DeduplicatesAcrossSources(t *testing.T) {
	shared := posting("Software Engineer Intern", "Acme")
	github := &fakeSource{name: "gh", category: scraper.CategoryGitHub, postings: []job.Posting{shared, posting("Backend Intern", "Beta")}}
	api := &fakeSource{name: "board", category: scraper.CategoryAPI, postings: []job.Posting{shared}}

	jobs := &fakeJobRepo{}
	sessions := &fakeSessionRepo{}
	c := newTestCoordinator(jobs, sessions, nil, Options{})
	c.Register(github)
	c.Register(api)

	s, err := c.Run(context.Background(), RunParams{FocusAreas: []string{scraper.FocusInternship}})
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if s.TotalFound != 3 {
		t.Fatalf("expected 3 found pre-dedup, got %d", s.TotalFound)
	}
	if s.TotalSaved != 2 {
		t.Fatalf("expected 2 saved post-dedup, got %d", s.TotalSaved)
	}
	if len(jobs.saved) != 2 {
		t.Fatalf("repo received %d postings", len(jobs.saved))
	}
	if !s.Success {
		t.Fatalf("expected session success")
	}
	if len(sessions.recorded) != 1 {
		t.Fatalf("session should have been recorded once")
	}
}

func TestRun_SourceFailureIsIsolated(t *testing.T) {
	ok1 := &fakeSource{name: "gh", category: scraper.CategoryGitHub, postings: []job.Posting{posting("A", "C1")}}
	ok2 := &fakeSource{name: "ext", category: scraper.CategoryExternal, postings: []job.Posting{posting("B", "C2")}}
	bad := &fakeSource{name: "board", category: scraper.CategoryAPI, err: fmt.Errorf("upstream 503")}
	ok3 := &fakeSource{name: "company:acme", category: scraper.CategoryCompany, postings: []job.Posting{posting("C", "C3")}}

	c := newTestCoordinator(&fakeJobRepo{}, &fakeSessionRepo{}, nil, Options{})
	for _, src := range []scraper.Source{ok1, ok2, bad, ok3} {
		c.Register(src)
	}

	s, err := c.Run(context.Background(), RunParams{})
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if len(s.Sources) != 4 {
		t.Fatalf("expected 4 source results, got %d", len(s.Sources))
	}
	if !s.Success {
		t.Fatalf("one failing source must not fail the session")
	}
	var failed *scrape.SourceResult
	for i := range s.Sources {
		if s.Sources[i].SourceName == "board" {
			failed = &s.Sources[i]
		}
	}
	if failed == nil || failed.Success {
		t.Fatalf("board source should be recorded as failed")
	}
	if !strings.Contains(failed.Error, "upstream 503") {
		t.Fatalf("failure cause lost: %q", failed.Error)
	}
}

func TestRun_PersistFailureMarksSourceFailed(t *testing.T) {
	src := &fakeSource{name: "gh", category: scraper.CategoryGitHub, postings: []job.Posting{posting("A", "C1")}}
	jobs := &fakeJobRepo{saveErr: fmt.Errorf("constraint violation")}

	c := newTestCoordinator(jobs, &fakeSessionRepo{}, nil, Options{})
	c.Register(src)

	s, err := c.Run(context.Background(), RunParams{})
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if s.Sources[0].JobsSaved != 0 || s.Sources[0].Success {
		t.Fatalf("unexpected source result: %+v", s.Sources[0])
	}
	if !strings.Contains(s.Sources[0].Error, "constraint violation") {
		t.Fatalf("persistence failure cause lost: %q", s.Sources[0].Error)
	}
}

func TestRun_AllSourcesFailingStillCompletes(t *testing.T) {
	fetchFail := &fakeSource{name: "gh", category: scraper.CategoryGitHub, err: fmt.Errorf("connection refused")}
	persistFail := &fakeSource{name: "board", category: scraper.CategoryAPI, postings: []job.Posting{posting("A", "C1")}}
	jobs := &fakeJobRepo{saveErr: fmt.Errorf("constraint violation")}

	c := newTestCoordinator(jobs, &fakeSessionRepo{}, nil, Options{})
	c.Register(fetchFail)
	c.Register(persistFail)

	s, err := c.Run(context.Background(), RunParams{})
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if !s.Success {
		t.Fatalf("session success tracks coordinator health, not source outcomes")
	}
	if len(s.Sources) != 2 {
		t.Fatalf("expected 2 source results, got %d", len(s.Sources))
	}
	for _, r := range s.Sources {
		if r.Success || r.Error == "" {
			t.Fatalf("source failure not recorded: %+v", r)
		}
	}
	if s.TotalSaved != 0 {
		t.Fatalf("nothing should have been saved, got %d", s.TotalSaved)
	}
}

func TestRun_FocusGatingSkipsListPhases(t *testing.T) {
	github := &fakeSource{name: "gh", category: scraper.CategoryGitHub, postings: []job.Posting{posting("A", "C1")}}
	ext := &fakeSource{name: "ext", category: scraper.CategoryExternal, postings: []job.Posting{posting("B", "C2")}}
	api := &fakeSource{name: "board", category: scraper.CategoryAPI, postings: []job.Posting{posting("C", "C3")}}

	c := newTestCoordinator(&fakeJobRepo{}, &fakeSessionRepo{}, nil, Options{})
	c.Register(github)
	c.Register(ext)
	c.Register(api)

	s, err := c.Run(context.Background(), RunParams{FocusAreas: []string{scraper.FocusH1B}})
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if len(s.Sources) != 1 || s.Sources[0].SourceName != "board" {
		t.Fatalf("expected only the api phase to run, got %+v", s.Sources)
	}
	if len(github.fetchedAt) != 0 || len(ext.fetchedAt) != 0 {
		t.Fatalf("list phases must not be fetched for h1b focus")
	}
}

func TestRun_CancelledContextSkipsPhases(t *testing.T) {
	src := &fakeSource{name: "gh", category: scraper.CategoryGitHub, postings: []job.Posting{posting("A", "C1")}}
	c := newTestCoordinator(&fakeJobRepo{}, &fakeSessionRepo{}, nil, Options{})
	c.Register(src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := c.Run(ctx, RunParams{})
	if err == nil {
		t.Fatalf("expected context error")
	}
	if len(s.Sources) != 0 {
		t.Fatalf("no phase should have run, got %d results", len(s.Sources))
	}
	if s.Success {
		t.Fatalf("a cancelled run skipped phases and must not report success")
	}
}

func TestRun_CapsJobsPerSource(t *testing.T) {
	var many []job.Posting
	for i := 0; i < 10; i++ {
		many = append(many, posting(fmt.Sprintf("Role %d", i), "Acme"))
	}
	src := &fakeSource{name: "gh", category: scraper.CategoryGitHub, postings: many}

	jobs := &fakeJobRepo{}
	c := newTestCoordinator(jobs, &fakeSessionRepo{}, nil, Options{MaxJobsPerSource: 3})
	c.Register(src)

	s, err := c.Run(context.Background(), RunParams{})
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if s.TotalFound != 3 || s.TotalSaved != 3 {
		t.Fatalf("cap not applied: found=%d saved=%d", s.TotalFound, s.TotalSaved)
	}
}

func TestRun_CompanySourcesSpacedByDelay(t *testing.T) {
	a := &fakeSource{name: "company:a", category: scraper.CategoryCompany, postings: []job.Posting{posting("A", "CA")}}
	b := &fakeSource{name: "company:b", category: scraper.CategoryCompany, postings: []job.Posting{posting("B", "CB")}}

	c := newTestCoordinator(&fakeJobRepo{}, &fakeSessionRepo{}, nil, Options{CompanyDelay: 60 * time.Millisecond})
	c.Register(a)
	c.Register(b)

	if _, err := c.Run(context.Background(), RunParams{}); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if len(a.fetchedAt) != 1 || len(b.fetchedAt) != 1 {
		t.Fatalf("both company sources should have been fetched once")
	}
	if gap := b.fetchedAt[0].Sub(a.fetchedAt[0]); gap < 50*time.Millisecond {
		t.Fatalf("expected politeness gap between companies, got %v", gap)
	}
}

type prioritizedSource struct {
	fakeSource
	priority bool
}

func (s *prioritizedSource) HighPriority() bool { return s.priority }

func TestRun_PriorityOnlyFiltersCompanyPhase(t *testing.T) {
	high := &prioritizedSource{fakeSource: fakeSource{name: "company:high", category: scraper.CategoryCompany, postings: []job.Posting{posting("A", "CA")}}, priority: true}
	low := &prioritizedSource{fakeSource: fakeSource{name: "company:low", category: scraper.CategoryCompany, postings: []job.Posting{posting("B", "CB")}}}
	api := &fakeSource{name: "board", category: scraper.CategoryAPI, postings: []job.Posting{posting("C", "CC")}}

	c := newTestCoordinator(&fakeJobRepo{}, &fakeSessionRepo{}, nil, Options{})
	c.Register(high)
	c.Register(low)
	c.Register(api)

	s, err := c.Run(context.Background(), RunParams{PriorityOnly: true})
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if len(low.fetchedAt) != 0 {
		t.Fatalf("low-priority company source must be skipped")
	}
	if len(high.fetchedAt) != 1 || len(api.fetchedAt) != 1 {
		t.Fatalf("priority company source and non-company phases should still run")
	}
	names := make(map[string]bool)
	for _, r := range s.Sources {
		names[r.SourceName] = true
	}
	if !names["company:high"] || names["company:low"] {
		t.Fatalf("unexpected source results: %+v", s.Sources)
	}
}

func TestRun_NotifiesOnCompletion(t *testing.T) {
	src := &fakeSource{name: "gh", category: scraper.CategoryGitHub, postings: []job.Posting{posting("A", "C1")}}
	notifier := &fakeNotifier{}

	c := newTestCoordinator(&fakeJobRepo{}, &fakeSessionRepo{}, notifier, Options{})
	c.Register(src)

	s, err := c.Run(context.Background(), RunParams{})
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if len(notifier.sessions) != 1 || notifier.sessions[0].ID != s.ID {
		t.Fatalf("notifier should have received the finished session")
	}
	if !strings.HasPrefix(s.ID, "search_") {
		t.Fatalf("unexpected session id format: %q", s.ID)
	}
}
