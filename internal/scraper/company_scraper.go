package scraper

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"jobscout/internal/domain/job"

	"github.com/gocolly/colly/v2"
)

// CompanyScraper crawls a custom careers portal: a listing page for posting
// links, then each detail page. Portals that render listings client side get
// a headless retry.
type CompanyScraper struct {
	gate        Gate
	logger      *log.Logger
	target      CompanyTarget
	allowedHost string
	headless    HeadlessFetcher
	maxJobs     int
}

func NewCompanyScraper(gate Gate, logger *log.Logger, target CompanyTarget, headless HeadlessFetcher) *CompanyScraper {
	return &CompanyScraper{
		gate:        gate,
		logger:      logger,
		target:      target,
		allowedHost: hostFromBaseURL(target.CareersURL),
		headless:    headless,
		maxJobs:     50,
	}
}

func (s *CompanyScraper) Name() string     { return "company:" + s.target.Key }
func (s *CompanyScraper) Category() string { return CategoryCompany }

func (s *CompanyScraper) HighPriority() bool { return s.target.HighPriority }

// detailWorkers fetch detail pages in parallel. The gate still spaces
// requests per host, so this bounds in-flight work rather than request rate.
const detailWorkers = 3

// detailRPS caps detail-page fetches even when the gate is a bypass.
const detailRPS = 5

func (s *CompanyScraper) Fetch(ctx context.Context, focus []string) ([]job.Posting, error) {
	links, err := s.listingLinks(ctx)
	if err != nil {
		return nil, &AdapterError{Source: s.Name(), Err: err}
	}
	if len(links) == 0 && s.headless != nil {
		links, err = s.headless.Links(ctx, s.target.CareersURL, s.target.LinkSelector)
		if err != nil {
			s.logger.Printf("headless fallback failed company=%s err=%v", s.target.Key, err)
		}
	}
	if len(links) > s.maxJobs {
		links = links[:s.maxJobs]
	}

	pool := NewWorkerPool(detailWorkers, len(links))
	pool.SetRateLimit(detailRPS)
	results := pool.Run(ctx)
	for _, link := range links {
		link := link
		pool.Submit(func(tctx context.Context) ([]job.Posting, error) {
			p, err := s.scrapeDetail(tctx, link)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", link, err)
			}
			return []job.Posting{p}, nil
		})
	}
	pool.Close()

	var out []job.Posting
	for res := range results {
		if res.Err != nil {
			s.logger.Printf("company detail failed company=%s err=%v", s.target.Key, res.Err)
			continue
		}
		for _, p := range res.Postings {
			if s.keep(p, focus) {
				out = append(out, p)
			}
		}
	}
	return out, ctx.Err()
}

func (s *CompanyScraper) listingLinks(ctx context.Context) ([]string, error) {
	if err := s.gate.Allow(ctx, s.target.CareersURL); err != nil {
		return nil, err
	}

	c := colly.NewCollector(
		colly.AllowedDomains(s.allowedHost),
	)
	_ = c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 1, RandomDelay: 600 * time.Millisecond, Delay: 400 * time.Millisecond})

	selector := s.target.LinkSelector
	if selector == "" {
		selector = "a[href]"
	}

	seen := map[string]struct{}{}
	var links []string
	var reqErr error

	c.OnRequest(func(r *colly.Request) {
		for k, v := range httpHeaders() {
			r.Headers.Set(k, v)
		}
	})

	c.OnHTML(selector, func(e *colly.HTMLElement) {
		abs := normalizeURL(e.Request.AbsoluteURL(strings.TrimSpace(e.Attr("href"))))
		if abs == "" {
			return
		}
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		links = append(links, abs)
	})

	c.OnError(func(r *colly.Response, err error) {
		reqErr = err
	})

	if err := c.Visit(s.target.CareersURL); err != nil {
		return nil, err
	}
	c.Wait()
	if reqErr != nil {
		return nil, reqErr
	}
	return links, nil
}

func (s *CompanyScraper) scrapeDetail(ctx context.Context, jobURL string) (job.Posting, error) {
	if err := s.gate.Allow(ctx, jobURL); err != nil {
		return job.Posting{}, err
	}

	c := colly.NewCollector(
		colly.AllowedDomains(s.allowedHost),
	)
	_ = c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 1, RandomDelay: 600 * time.Millisecond, Delay: 400 * time.Millisecond})

	titleSel := pickNonEmpty(s.target.TitleSelector, "h1")
	locSel := pickNonEmpty(s.target.LocationSelector, ".location")
	bodySel := pickNonEmpty(s.target.BodySelector, "body")

	var title, location, body string
	var reqErr error

	c.OnRequest(func(r *colly.Request) {
		for k, v := range httpHeaders() {
			r.Headers.Set(k, v)
		}
	})
	c.OnHTML(titleSel, func(e *colly.HTMLElement) {
		if title == "" {
			title = strings.TrimSpace(e.Text)
		}
	})
	c.OnHTML(locSel, func(e *colly.HTMLElement) {
		if location == "" {
			location = strings.TrimSpace(e.Text)
		}
	})
	c.OnHTML(bodySel, func(e *colly.HTMLElement) {
		if body == "" {
			body = strings.TrimSpace(e.Text)
		}
	})
	c.OnError(func(r *colly.Response, err error) {
		reqErr = err
	})

	if err := c.Visit(jobURL); err != nil {
		return job.Posting{}, err
	}
	c.Wait()
	if reqErr != nil {
		return job.Posting{}, reqErr
	}

	p := job.Posting{
		Title:       title,
		Company:     s.target.Name,
		SourceName:  s.Name(),
		SourceURL:   jobURL,
		Remote:      looksRemote(location) || looksRemote(title),
		FirstSeenAt: time.Now().UTC(),
	}
	if location != "" {
		p.Location = job.StrPtr(location)
	}
	if body != "" {
		p.Description = job.StrPtr(body)
	}
	if strings.Contains(strings.ToLower(title), "intern") {
		p.JobType = job.StrPtr(job.TypeInternship)
	} else {
		p.JobType = job.StrPtr(job.TypeFullTime)
	}
	p.ExperienceLevel = job.StrPtr(mapExperienceLevel(title))
	p.Technologies = extractTechnologies(title + " " + body)
	if s.target.CompanySize != "" {
		p.CompanySize = job.StrPtr(s.target.CompanySize)
	}
	return p, nil
}

func (s *CompanyScraper) keep(p job.Posting, focus []string) bool {
	if strings.TrimSpace(p.Title) == "" {
		return false
	}
	lower := strings.ToLower(p.Title)
	if HasFocus(focus, FocusInternship) && !strings.Contains(lower, "intern") {
		return false
	}
	if len(s.target.Keywords) == 0 {
		return true
	}
	haystack := lower + " " + strings.ToLower(p.DescriptionOrEmpty())
	for _, kw := range s.target.Keywords {
		if strings.Contains(haystack, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
