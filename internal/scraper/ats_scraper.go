package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"jobscout/internal/domain/job"
)

// ATSScraper pulls postings from hosted applicant tracking boards that expose
// public JSON APIs. Greenhouse and Lever are supported; Workday and custom
// portals fall through to the HTML scraper.
type ATSScraper struct {
	client         *http.Client
	gate           Gate
	logger         *log.Logger
	target         CompanyTarget
	greenhouseBase string
	leverBase      string
}

func NewATSScraper(gate Gate, logger *log.Logger, target CompanyTarget) *ATSScraper {
	return &ATSScraper{
		client:         &http.Client{Timeout: 25 * time.Second},
		gate:           gate,
		logger:         logger,
		target:         target,
		greenhouseBase: "https://boards-api.greenhouse.io",
		leverBase:      "https://api.lever.co",
	}
}

func (s *ATSScraper) Name() string     { return "ats:" + s.target.Key }
func (s *ATSScraper) Category() string { return CategoryCompany }

func (s *ATSScraper) HighPriority() bool { return s.target.HighPriority }

func (s *ATSScraper) Fetch(ctx context.Context, focus []string) ([]job.Posting, error) {
	switch s.target.ATS {
	case ATSGreenhouse:
		return s.fetchGreenhouse(ctx, focus)
	case ATSLever:
		return s.fetchLever(ctx, focus)
	default:
		return nil, &AdapterError{Source: s.Name(), Err: fmt.Errorf("unsupported ats %q", s.target.ATS)}
	}
}

type greenhouseJob struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	AbsoluteURL string `json:"absolute_url"`
	UpdatedAt   string `json:"updated_at"`
	Content     string `json:"content"`
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
}

func (s *ATSScraper) fetchGreenhouse(ctx context.Context, focus []string) ([]job.Posting, error) {
	url := fmt.Sprintf("%s/v1/boards/%s/jobs?content=true", s.greenhouseBase, s.target.BoardSlug)
	var payload struct {
		Jobs []greenhouseJob `json:"jobs"`
	}
	if err := s.getJSON(ctx, url, &payload); err != nil {
		return nil, &AdapterError{Source: s.Name(), Err: err}
	}

	var out []job.Posting
	for _, g := range payload.Jobs {
		if !s.roleMatches(g.Title, focus) {
			continue
		}
		p := job.Posting{
			Title:       strings.TrimSpace(g.Title),
			Company:     s.target.Name,
			SourceName:  s.Name(),
			SourceURL:   normalizeURL(g.AbsoluteURL),
			ExternalID:  job.StrPtr(fmt.Sprintf("gh-%d", g.ID)),
			Remote:      looksRemote(g.Location.Name),
			FirstSeenAt: time.Now().UTC(),
		}
		if loc := strings.TrimSpace(g.Location.Name); loc != "" {
			p.Location = job.StrPtr(loc)
		}
		if desc := cleanMarkdown(g.Content); desc != "" {
			p.Description = job.StrPtr(desc)
		}
		if g.UpdatedAt != "" {
			p.PostedAt = parsePostedDate(g.UpdatedAt)
		}
		s.annotate(&p)
		out = append(out, p)
	}
	s.logger.Printf("greenhouse board fetched company=%s jobs=%d kept=%d", s.target.Key, len(payload.Jobs), len(out))
	return out, nil
}

type leverJob struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	HostedURL  string `json:"hostedUrl"`
	CreatedAt  int64  `json:"createdAt"`
	Categories struct {
		Location   string `json:"location"`
		Commitment string `json:"commitment"`
		Team       string `json:"team"`
	} `json:"categories"`
	DescriptionPlain string `json:"descriptionPlain"`
}

func (s *ATSScraper) fetchLever(ctx context.Context, focus []string) ([]job.Posting, error) {
	url := fmt.Sprintf("%s/v0/postings/%s?mode=json", s.leverBase, s.target.BoardSlug)
	var payload []leverJob
	if err := s.getJSON(ctx, url, &payload); err != nil {
		return nil, &AdapterError{Source: s.Name(), Err: err}
	}

	var out []job.Posting
	for _, l := range payload {
		if !s.roleMatches(l.Text, focus) {
			continue
		}
		p := job.Posting{
			Title:       strings.TrimSpace(l.Text),
			Company:     s.target.Name,
			SourceName:  s.Name(),
			SourceURL:   normalizeURL(l.HostedURL),
			ExternalID:  job.StrPtr("lv-" + l.ID),
			Remote:      looksRemote(l.Categories.Location),
			FirstSeenAt: time.Now().UTC(),
		}
		if loc := strings.TrimSpace(l.Categories.Location); loc != "" {
			p.Location = job.StrPtr(loc)
		}
		if desc := strings.TrimSpace(l.DescriptionPlain); desc != "" {
			p.Description = job.StrPtr(desc)
		}
		if l.CreatedAt > 0 {
			ts := time.UnixMilli(l.CreatedAt).UTC()
			p.PostedAt = &ts
		}
		if strings.EqualFold(l.Categories.Commitment, "internship") || strings.EqualFold(l.Categories.Commitment, "intern") {
			p.JobType = job.StrPtr(job.TypeInternship)
		}
		s.annotate(&p)
		out = append(out, p)
	}
	s.logger.Printf("lever board fetched company=%s jobs=%d kept=%d", s.target.Key, len(payload), len(out))
	return out, nil
}

// roleMatches keeps postings that mention one of the company's configured
// keywords and, for internship focus, actually look like intern roles.
func (s *ATSScraper) roleMatches(title string, focus []string) bool {
	lower := strings.ToLower(title)
	matched := len(s.target.Keywords) == 0
	for _, kw := range s.target.Keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	if HasFocus(focus, FocusInternship) {
		return strings.Contains(lower, "intern")
	}
	return true
}

func (s *ATSScraper) annotate(p *job.Posting) {
	if p.JobType == nil {
		if strings.Contains(strings.ToLower(p.Title), "intern") {
			p.JobType = job.StrPtr(job.TypeInternship)
		} else {
			p.JobType = job.StrPtr(job.TypeFullTime)
		}
	}
	p.ExperienceLevel = job.StrPtr(mapExperienceLevel(p.Title))
	p.Technologies = extractTechnologies(p.Title + " " + p.DescriptionOrEmpty())
	if s.target.CompanySize != "" {
		p.CompanySize = job.StrPtr(s.target.CompanySize)
	}
}

func (s *ATSScraper) getJSON(ctx context.Context, url string, dst any) error {
	if err := s.gate.Allow(ctx, url); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ats api status %d for %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
