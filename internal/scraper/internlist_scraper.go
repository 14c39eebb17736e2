package scraper

import (
	"context"
	"log"
	"strings"
	"time"

	"jobscout/internal/domain/job"

	"github.com/gocolly/colly/v2"
)

// internListCategories maps site category pages to the tech areas they cover.
var internListCategories = map[string]string{
	"/swe":          "Software Engineering",
	"/data-science": "Data Science",
	"/ml-ai":        "Machine Learning",
}

// InternListScraper walks an aggregator site's category pages and collects
// internship cards. Listing pages only, no detail crawl.
type InternListScraper struct {
	gate        Gate
	logger      *log.Logger
	baseURL     string
	allowedHost string
	maxJobs     int
}

func NewInternListScraper(gate Gate, logger *log.Logger) *InternListScraper {
	return NewInternListScraperWithBaseURL(gate, logger, "https://www.intern-list.com")
}

func NewInternListScraperWithBaseURL(gate Gate, logger *log.Logger, baseURL string) *InternListScraper {
	s := &InternListScraper{
		gate:    gate,
		logger:  logger,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		maxJobs: 300,
	}
	if s.baseURL == "" {
		s.baseURL = "https://www.intern-list.com"
	}
	s.allowedHost = hostFromBaseURL(s.baseURL)
	return s
}

func (s *InternListScraper) Name() string     { return "intern_list" }
func (s *InternListScraper) Category() string { return CategoryExternal }

func (s *InternListScraper) Fetch(ctx context.Context, focus []string) ([]job.Posting, error) {
	if !FocusApplies(focus, FocusInternship, FocusNewGrad) {
		return nil, nil
	}
	var out []job.Posting
	for path, area := range internListCategories {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		pageURL := s.baseURL + path
		postings, err := s.scrapeCategory(ctx, pageURL, area)
		if err != nil {
			s.logger.Printf("intern list category failed url=%s err=%v", pageURL, err)
			continue
		}
		out = append(out, postings...)
		if len(out) >= s.maxJobs {
			out = out[:s.maxJobs]
			break
		}
	}
	return out, nil
}

func (s *InternListScraper) scrapeCategory(ctx context.Context, pageURL, area string) ([]job.Posting, error) {
	if err := s.gate.Allow(ctx, pageURL); err != nil {
		return nil, err
	}

	c := colly.NewCollector(
		colly.AllowedDomains(s.allowedHost),
	)
	_ = c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 1, RandomDelay: 500 * time.Millisecond, Delay: 300 * time.Millisecond})

	var out []job.Posting
	var reqErr error

	c.OnRequest(func(r *colly.Request) {
		for k, v := range httpHeaders() {
			r.Headers.Set(k, v)
		}
	})

	c.OnHTML("div.job-card, article.job, li.job-listing", func(e *colly.HTMLElement) {
		title := strings.TrimSpace(e.ChildText("h3, h2, .job-title"))
		company := strings.TrimSpace(e.ChildText(".company, .company-name"))
		location := strings.TrimSpace(e.ChildText(".location, .job-location"))
		link := strings.TrimSpace(e.ChildAttr("a", "href"))
		if title == "" || company == "" {
			return
		}
		p := job.Posting{
			Title:       title,
			Company:     company,
			SourceName:  "intern_list",
			SourceURL:   normalizeURL(e.Request.AbsoluteURL(link)),
			JobType:     job.StrPtr(job.TypeInternship),
			Remote:      looksRemote(location),
			FirstSeenAt: time.Now().UTC(),
		}
		if location != "" {
			p.Location = job.StrPtr(location)
		}
		p.ExperienceLevel = job.StrPtr(job.LevelEntry)
		p.Technologies = extractTechnologies(title + " " + area)
		out = append(out, p)
	})

	c.OnError(func(r *colly.Response, err error) {
		reqErr = err
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, err
	}
	c.Wait()
	if reqErr != nil {
		return nil, reqErr
	}
	return out, nil
}
