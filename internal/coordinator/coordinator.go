package coordinator

import (
	"context"
	"log"
	"time"

	"jobscout/internal/database"
	"jobscout/internal/domain/job"
	"jobscout/internal/domain/scrape"
	"jobscout/internal/metrics"
	"jobscout/internal/repository"
	"jobscout/internal/scraper"

	"golang.org/x/sync/errgroup"
)

// phaseOrder fixes the order source categories run in. Curated lists first:
// they are cheap, high signal and seed the dedup set before the noisier
// sources run.
var phaseOrder = []string{
	scraper.CategoryGitHub,
	scraper.CategoryExternal,
	scraper.CategoryAPI,
	scraper.CategoryCompany,
}

// RunParams selects what a session covers. An empty FocusAreas slice, or one
// containing "all", runs every phase. PriorityOnly narrows the company phase
// to sources flagged high priority.
type RunParams struct {
	FocusAreas   []string
	PriorityOnly bool
}

// Notifier receives the finished session for fan-out to connected clients.
type Notifier interface {
	SessionCompleted(s scrape.Session)
}

type Options struct {
	// CompanyDelay spaces out successive company-direct sources.
	CompanyDelay time.Duration
	// MaxJobsPerSource caps what a single source may contribute.
	MaxJobsPerSource int
}

// Coordinator runs all registered sources in category phases, deduplicates
// their output within the session and persists each source's postings in
// its own transaction. One source failing never aborts the session.
type Coordinator struct {
	db       database.DB
	jobs     repository.JobRepository
	sessions repository.SessionRepository
	logger   *log.Logger
	notifier Notifier
	opts     Options

	sources map[string][]scraper.Source
	now     func() time.Time
}

func New(db database.DB, jobs repository.JobRepository, sessions repository.SessionRepository, logger *log.Logger, notifier Notifier, opts Options) *Coordinator {
	if opts.MaxJobsPerSource <= 0 {
		opts.MaxJobsPerSource = 100
	}
	return &Coordinator{
		db:       db,
		jobs:     jobs,
		sessions: sessions,
		logger:   logger,
		notifier: notifier,
		opts:     opts,
		sources:  make(map[string][]scraper.Source),
		now:      time.Now,
	}
}

// Register adds a source to its category's phase. Call before Run.
func (c *Coordinator) Register(src scraper.Source) {
	if c == nil || src == nil {
		return
	}
	c.sources[src.Category()] = append(c.sources[src.Category()], src)
}

// Run executes one full session for the given parameters. The returned
// session is also persisted; a persistence failure of the session record is
// logged but does not fail the run.
func (c *Coordinator) Run(ctx context.Context, params RunParams) (scrape.Session, error) {
	started := c.now().UTC()
	session := scrape.Session{
		ID:         scrape.NewSessionID(started),
		FocusAreas: params.FocusAreas,
		StartedAt:  started,
	}
	c.logger.Printf("scrape session started id=%s focus=%v priority_only=%v", session.ID, params.FocusAreas, params.PriorityOnly)

	dedup := newDedupSet()
	for _, category := range phaseOrder {
		if ctx.Err() != nil {
			c.logger.Printf("scrape session cancelled id=%s phase=%s", session.ID, category)
			break
		}
		if !phaseApplies(category, params.FocusAreas) {
			continue
		}
		results := c.runPhase(ctx, category, params, dedup)
		session.Sources = append(session.Sources, results...)
	}

	for _, src := range session.Sources {
		session.TotalFound += src.JobsFound
		session.TotalSaved += src.JobsSaved
	}
	// Success reports coordinator health, not source outcomes: a run where
	// every source failed still attempted them all. Only a cancelled run,
	// which skipped phases, is unsuccessful.
	session.Success = ctx.Err() == nil
	session.CompletedAt = c.now().UTC()

	metrics.RecordSession(session.Success, session.TotalSaved)
	if err := c.sessions.Record(ctx, session); err != nil {
		c.logger.Printf("session record failed id=%s err=%v", session.ID, err)
	}
	if c.notifier != nil {
		c.notifier.SessionCompleted(session)
	}

	c.logger.Printf("scrape session finished id=%s found=%d saved=%d sources=%d success=%v duration=%s",
		session.ID, session.TotalFound, session.TotalSaved, len(session.Sources), session.Success,
		session.CompletedAt.Sub(session.StartedAt))
	return session, ctx.Err()
}

// phaseApplies skips the curated-list phases when the requested focus areas
// contain neither internship nor new-grad roles.
func phaseApplies(category string, focus []string) bool {
	switch category {
	case scraper.CategoryGitHub, scraper.CategoryExternal:
		return scraper.FocusApplies(focus, scraper.FocusInternship, scraper.FocusNewGrad)
	default:
		return true
	}
}

type fetchOutcome struct {
	source   scraper.Source
	postings []job.Posting
	err      error
	duration time.Duration
}

// runPhase fetches every source in the category, then deduplicates and
// persists the results sequentially. Company-direct sources run one at a
// time with a politeness delay; the other phases fan out.
func (c *Coordinator) runPhase(ctx context.Context, category string, params RunParams, dedup *dedupSet) []scrape.SourceResult {
	srcs := c.sources[category]
	if category == scraper.CategoryCompany && params.PriorityOnly {
		srcs = priorityOnly(srcs)
	}
	if len(srcs) == 0 {
		return nil
	}

	var outcomes []fetchOutcome
	if category == scraper.CategoryCompany {
		outcomes = c.fetchSequential(ctx, srcs, params.FocusAreas)
	} else {
		outcomes = c.fetchConcurrent(ctx, srcs, params.FocusAreas)
	}

	results := make([]scrape.SourceResult, 0, len(outcomes))
	for _, o := range outcomes {
		results = append(results, c.persist(ctx, category, o, dedup))
	}
	return results
}

func priorityOnly(srcs []scraper.Source) []scraper.Source {
	kept := make([]scraper.Source, 0, len(srcs))
	for _, src := range srcs {
		if p, ok := src.(scraper.Prioritized); ok && p.HighPriority() {
			kept = append(kept, src)
		}
	}
	return kept
}

func (c *Coordinator) fetchConcurrent(ctx context.Context, srcs []scraper.Source, focus []string) []fetchOutcome {
	outcomes := make([]fetchOutcome, len(srcs))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range srcs {
		i, src := i, src
		g.Go(func() error {
			start := time.Now()
			postings, err := src.Fetch(gctx, focus)
			outcomes[i] = fetchOutcome{source: src, postings: postings, err: err, duration: time.Since(start)}
			// Errors stay in the outcome: one source must not cancel its
			// siblings.
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (c *Coordinator) fetchSequential(ctx context.Context, srcs []scraper.Source, focus []string) []fetchOutcome {
	outcomes := make([]fetchOutcome, 0, len(srcs))
	for i, src := range srcs {
		if ctx.Err() != nil {
			break
		}
		if i > 0 && c.opts.CompanyDelay > 0 {
			timer := time.NewTimer(c.opts.CompanyDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return outcomes
			case <-timer.C:
			}
		}
		start := time.Now()
		postings, err := src.Fetch(ctx, focus)
		outcomes = append(outcomes, fetchOutcome{source: src, postings: postings, err: err, duration: time.Since(start)})
	}
	return outcomes
}

// persist turns one fetch outcome into a SourceResult: cap, dedup, save in
// a dedicated transaction. Any failure marks the source failed and rolls
// its postings back without touching other sources' work.
func (c *Coordinator) persist(ctx context.Context, category string, o fetchOutcome, dedup *dedupSet) scrape.SourceResult {
	name := o.source.Name()
	result := scrape.SourceResult{
		SourceName: name,
		Category:   category,
		Duration:   o.duration,
	}
	metrics.RecordSourceDuration(category, o.duration.Seconds())

	if o.err != nil {
		result.Error = o.err.Error()
		metrics.RecordSourceFailure(name)
		c.logger.Printf("source failed name=%s err=%v", name, o.err)
		return result
	}

	postings := o.postings
	if len(postings) > c.opts.MaxJobsPerSource {
		postings = postings[:c.opts.MaxJobsPerSource]
	}
	result.JobsFound = len(postings)
	metrics.RecordJobsFound(name, len(postings))

	fresh := dedup.Filter(postings)
	if len(fresh) == 0 {
		result.Success = true
		c.logger.Printf("source done name=%s found=%d saved=0", name, result.JobsFound)
		return result
	}

	saved, err := c.saveTx(ctx, fresh)
	if err != nil {
		result.Error = err.Error()
		metrics.RecordSourceFailure(name)
		c.logger.Printf("source persist failed name=%s err=%v", name, err)
		return result
	}

	result.JobsSaved = saved
	result.Success = true
	metrics.RecordJobsSaved(name, saved)
	c.logger.Printf("source done name=%s found=%d saved=%d", name, result.JobsFound, saved)
	return result
}

func (c *Coordinator) saveTx(ctx context.Context, postings []job.Posting) (int, error) {
	tx, err := c.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	saved, err := c.jobs.SaveBatch(ctx, tx, postings)
	if err != nil {
		_ = tx.Rollback(ctx)
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return saved, nil
}
