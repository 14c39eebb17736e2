package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"jobscout/internal/domain/job"
)

// searchTermsByFocus expands a focus area into board API search queries.
var searchTermsByFocus = map[string][]string{
	FocusInternship: {"software engineering intern", "swe intern", "backend intern"},
	FocusNewGrad:    {"new grad software engineer", "junior software engineer", "entry level developer"},
	FocusRemote:     {"remote software engineer", "remote backend engineer"},
	FocusH1B:        {"software engineer visa sponsorship"},
	FocusAll:        {"software engineer", "backend engineer", "full stack developer"},
}

// searchTerms unions the term lists of every requested focus tag, keeping
// first-seen order. No usable tag falls back to the "all" terms.
func searchTerms(focus []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, tag := range focus {
		for _, term := range searchTermsByFocus[tag] {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			out = append(out, term)
		}
	}
	if len(out) == 0 {
		return searchTermsByFocus[FocusAll]
	}
	return out
}

// slidingWindow caps requests to at most limit per window.
type slidingWindow struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	sent   []time.Time
}

func newSlidingWindow(limit int, window time.Duration) *slidingWindow {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &slidingWindow{limit: limit, window: window}
}

// Wait blocks until a request slot is available or ctx is done.
func (w *slidingWindow) Wait(ctx context.Context) error {
	for {
		w.mu.Lock()
		now := time.Now()
		cutoff := now.Add(-w.window)
		kept := w.sent[:0]
		for _, t := range w.sent {
			if t.After(cutoff) {
				kept = append(kept, t)
			}
		}
		w.sent = kept
		if len(w.sent) < w.limit {
			w.sent = append(w.sent, now)
			w.mu.Unlock()
			return nil
		}
		sleep := w.sent[0].Add(w.window).Sub(now)
		w.mu.Unlock()

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// BoardAPIScraper queries a public remote-job board API. The response shape
// follows the Remotive format.
type BoardAPIScraper struct {
	client       *http.Client
	gate         Gate
	logger       *log.Logger
	limiter      *slidingWindow
	apiBase      string
	maxRetries   int
	retryBackoff time.Duration
	maxJobs      int
}

func NewBoardAPIScraper(gate Gate, logger *log.Logger, rateLimit int, rateWindow time.Duration) *BoardAPIScraper {
	return NewBoardAPIScraperWithBaseURL(gate, logger, rateLimit, rateWindow, "https://remotive.com/api")
}

func NewBoardAPIScraperWithBaseURL(gate Gate, logger *log.Logger, rateLimit int, rateWindow time.Duration, apiBase string) *BoardAPIScraper {
	return &BoardAPIScraper{
		client:       &http.Client{Timeout: 30 * time.Second},
		gate:         gate,
		logger:       logger,
		limiter:      newSlidingWindow(rateLimit, rateWindow),
		apiBase:      strings.TrimRight(apiBase, "/"),
		maxRetries:   3,
		retryBackoff: 2 * time.Second,
		maxJobs:      200,
	}
}

func (s *BoardAPIScraper) Name() string     { return "remote_board" }
func (s *BoardAPIScraper) Category() string { return CategoryAPI }

type boardAPIJob struct {
	ID                        int64    `json:"id"`
	Title                     string   `json:"title"`
	CompanyName               string   `json:"company_name"`
	CandidateRequiredLocation string   `json:"candidate_required_location"`
	URL                       string   `json:"url"`
	JobType                   string   `json:"job_type"`
	Salary                    string   `json:"salary"`
	Description               string   `json:"description"`
	PublicationDate           string   `json:"publication_date"`
	Tags                      []string `json:"tags"`
}

func (s *BoardAPIScraper) Fetch(ctx context.Context, focus []string) ([]job.Posting, error) {
	terms := searchTerms(focus)

	seen := map[int64]struct{}{}
	var out []job.Posting
	for _, term := range terms {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		jobs, err := s.search(ctx, term)
		if err != nil {
			s.logger.Printf("board api search failed term=%q err=%v", term, err)
			continue
		}
		for _, bj := range jobs {
			if _, ok := seen[bj.ID]; ok {
				continue
			}
			seen[bj.ID] = struct{}{}
			out = append(out, s.convert(bj))
			if len(out) >= s.maxJobs {
				return out, nil
			}
		}
	}
	return out, nil
}

func (s *BoardAPIScraper) search(ctx context.Context, term string) ([]boardAPIJob, error) {
	endpoint := fmt.Sprintf("%s/remote-jobs?search=%s&limit=100", s.apiBase, url.QueryEscape(term))
	if err := s.gate.Allow(ctx, endpoint); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * s.retryBackoff
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		jobs, retryable, err := s.doSearch(ctx, endpoint)
		if err == nil {
			return jobs, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		s.logger.Printf("board api retrying attempt=%d err=%v", attempt+1, err)
	}
	return nil, fmt.Errorf("board api exhausted retries: %w", lastErr)
}

func (s *BoardAPIScraper) doSearch(ctx context.Context, endpoint string) ([]boardAPIJob, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("board api status %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("board api status %d", resp.StatusCode)
	}

	var payload struct {
		Jobs []boardAPIJob `json:"jobs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, false, err
	}
	return payload.Jobs, false, nil
}

func (s *BoardAPIScraper) convert(bj boardAPIJob) job.Posting {
	p := job.Posting{
		Title:       strings.TrimSpace(bj.Title),
		Company:     strings.TrimSpace(bj.CompanyName),
		SourceName:  s.Name(),
		SourceURL:   normalizeURL(bj.URL),
		ExternalID:  job.StrPtr(fmt.Sprintf("rb-%d", bj.ID)),
		Remote:      true,
		FirstSeenAt: time.Now().UTC(),
	}
	if loc := strings.TrimSpace(bj.CandidateRequiredLocation); loc != "" {
		p.Location = job.StrPtr(loc)
	} else {
		p.Location = job.StrPtr("Remote")
	}
	if desc := cleanMarkdown(bj.Description); desc != "" {
		p.Description = job.StrPtr(desc)
	}
	if bj.PublicationDate != "" {
		p.PostedAt = parsePostedDate(bj.PublicationDate)
	}
	switch strings.ToLower(bj.JobType) {
	case "internship":
		p.JobType = job.StrPtr(job.TypeInternship)
	case "part_time", "part-time":
		p.JobType = job.StrPtr(job.TypePartTime)
	case "contract", "freelance":
		p.JobType = job.StrPtr(job.TypeContract)
	default:
		p.JobType = job.StrPtr(job.TypeFullTime)
	}
	if min, max, period := parseSalaryRange(bj.Salary); min != nil || max != nil {
		p.SalaryMin = min
		p.SalaryMax = max
		if period != nil {
			p.SalaryPeriod = *period
		}
	}
	p.ExperienceLevel = job.StrPtr(mapExperienceLevel(bj.Title))
	p.Technologies = extractTechnologies(bj.Title + " " + strings.Join(bj.Tags, " "))
	return p
}
