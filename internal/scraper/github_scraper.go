package scraper

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"jobscout/internal/domain/job"
)

// GitHubRepo identifies one curated job-list repository.
type GitHubRepo struct {
	Owner  string
	Repo   string
	Branch string
	Focus  []string
}

// DefaultGitHubRepos are the curated internship and new-grad lists polled in
// phase one.
var DefaultGitHubRepos = []GitHubRepo{
	{Owner: "SimplifyJobs", Repo: "Summer2026-Internships", Branch: "dev", Focus: []string{FocusInternship, FocusAll}},
	{Owner: "SimplifyJobs", Repo: "New-Grad-Positions", Branch: "dev", Focus: []string{FocusNewGrad, FocusAll}},
	{Owner: "ReaVNaiL", Repo: "New-Grad-2026", Branch: "main", Focus: []string{FocusNewGrad, FocusAll}},
}

// GitHubScraper fetches curated README job lists through the GitHub contents
// API, falling back to raw.githubusercontent.com when the API is unavailable.
type GitHubScraper struct {
	client  *http.Client
	gate    Gate
	logger  *log.Logger
	repos   []GitHubRepo
	token   string
	apiBase string
	rawBase string
	maxJobs int
}

func NewGitHubScraper(gate Gate, logger *log.Logger, token string, repos []GitHubRepo) *GitHubScraper {
	if len(repos) == 0 {
		repos = DefaultGitHubRepos
	}
	return &GitHubScraper{
		client:  &http.Client{Timeout: 20 * time.Second},
		gate:    gate,
		logger:  logger,
		repos:   repos,
		token:   token,
		apiBase: "https://api.github.com",
		rawBase: "https://raw.githubusercontent.com",
		maxJobs: 500,
	}
}

func (s *GitHubScraper) Name() string     { return "github_lists" }
func (s *GitHubScraper) Category() string { return CategoryGitHub }

func (s *GitHubScraper) Fetch(ctx context.Context, focus []string) ([]job.Posting, error) {
	var out []job.Posting
	for _, repo := range s.repos {
		if !FocusApplies(focus, repo.Focus...) {
			continue
		}
		readme, err := s.readme(ctx, repo)
		if err != nil {
			s.logger.Printf("github readme fetch failed repo=%s/%s err=%v", repo.Owner, repo.Repo, err)
			continue
		}
		postings := s.parseReadme(readme, repo)
		s.logger.Printf("github readme parsed repo=%s/%s jobs=%d", repo.Owner, repo.Repo, len(postings))
		out = append(out, postings...)
		if len(out) >= s.maxJobs {
			out = out[:s.maxJobs]
			break
		}
	}
	return out, nil
}

func (s *GitHubScraper) readme(ctx context.Context, repo GitHubRepo) (string, error) {
	body, err := s.readmeFromAPI(ctx, repo)
	if err == nil {
		return body, nil
	}
	return s.readmeFromRaw(ctx, repo)
}

func (s *GitHubScraper) readmeFromAPI(ctx context.Context, repo GitHubRepo) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/contents/README.md?ref=%s", s.apiBase, repo.Owner, repo.Repo, repo.Branch)
	if err := s.gate.Allow(ctx, url); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github api status %d", resp.StatusCode)
	}
	var payload struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.Encoding != "base64" {
		return "", fmt.Errorf("unexpected content encoding %q", payload.Encoding)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(payload.Content, "\n", ""))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (s *GitHubScraper) readmeFromRaw(ctx context.Context, repo GitHubRepo) (string, error) {
	url := fmt.Sprintf("%s/%s/%s/%s/README.md", s.rawBase, repo.Owner, repo.Repo, repo.Branch)
	if err := s.gate.Allow(ctx, url); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("raw readme status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// parseReadme extracts postings from markdown tables of the shape
// | Company | Role | Location | ... | and from bullet lists of the shape
// - [Company](url) - Role - Location.
func (s *GitHubScraper) parseReadme(readme string, repo GitHubRepo) []job.Posting {
	source := fmt.Sprintf("github:%s/%s", repo.Owner, repo.Repo)
	var out []job.Posting
	lastCompany := ""
	for _, line := range strings.Split(readme, "\n") {
		line = strings.TrimSpace(line)
		if p, ok := s.parseTableRow(line, source, &lastCompany); ok {
			out = append(out, p)
			continue
		}
		if p, ok := s.parseListItem(line, source); ok {
			out = append(out, p)
		}
	}
	return out
}

func (s *GitHubScraper) parseTableRow(line, source string, lastCompany *string) (job.Posting, bool) {
	if !strings.HasPrefix(line, "|") || !strings.HasSuffix(line, "|") {
		return job.Posting{}, false
	}
	cells := splitTableRow(line)
	if len(cells) < 3 {
		return job.Posting{}, false
	}
	company := cleanMarkdown(cells[0])
	role := cleanMarkdown(cells[1])
	location := cleanMarkdown(cells[2])
	if isTableChrome(company) || isTableChrome(role) {
		return job.Posting{}, false
	}
	// Lists collapse repeated companies into an arrow marker.
	if company == "" || company == "↳" {
		company = *lastCompany
	} else {
		*lastCompany = company
	}
	if company == "" || role == "" {
		return job.Posting{}, false
	}
	url := firstMarkdownLink(line)
	return s.posting(company, role, location, url, source), true
}

func (s *GitHubScraper) parseListItem(line, source string) (job.Posting, bool) {
	if !strings.HasPrefix(line, "- ") && !strings.HasPrefix(line, "* ") {
		return job.Posting{}, false
	}
	body := strings.TrimSpace(line[2:])
	parts := strings.SplitN(body, " - ", 3)
	if len(parts) < 2 {
		return job.Posting{}, false
	}
	company := cleanMarkdown(parts[0])
	role := cleanMarkdown(parts[1])
	location := ""
	if len(parts) == 3 {
		location = cleanMarkdown(parts[2])
	}
	if company == "" || role == "" {
		return job.Posting{}, false
	}
	return s.posting(company, role, location, firstMarkdownLink(line), source), true
}

func (s *GitHubScraper) posting(company, role, location, url, source string) job.Posting {
	p := job.Posting{
		Title:       role,
		Company:     company,
		SourceName:  source,
		SourceURL:   url,
		Remote:      looksRemote(location) || looksRemote(role),
		FirstSeenAt: time.Now().UTC(),
	}
	if location != "" {
		p.Location = job.StrPtr(location)
	}
	lower := strings.ToLower(role)
	if strings.Contains(lower, "intern") {
		p.JobType = job.StrPtr(job.TypeInternship)
	} else {
		p.JobType = job.StrPtr(job.TypeFullTime)
	}
	p.ExperienceLevel = job.StrPtr(mapExperienceLevel(role))
	p.Technologies = extractTechnologies(role)
	return p
}

func splitTableRow(line string) []string {
	trimmed := strings.Trim(line, "|")
	raw := strings.Split(trimmed, "|")
	cells := make([]string, 0, len(raw))
	for _, c := range raw {
		cells = append(cells, strings.TrimSpace(c))
	}
	return cells
}

func isTableChrome(cell string) bool {
	if cell == "" {
		return false
	}
	lower := strings.ToLower(cell)
	if lower == "company" || lower == "name" || lower == "role" || lower == "position" {
		return true
	}
	return strings.Trim(cell, "-: ") == ""
}
