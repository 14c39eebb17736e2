package scraper

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"jobscout/internal/domain/job"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestGitHubScraper_ParsesTableAndListReadme(t *testing.T) {
	readme := strings.Join([]string{
		"# Summer Internships",
		"| Company | Role | Location | Application |",
		"| ------- | ---- | -------- | ----------- |",
		"| [Stripe](https://stripe.com) | Software Engineering Intern | San Francisco, CA | [Apply](https://stripe.com/jobs/listing/123) |",
		"| ↳ | Backend Intern | Remote | [Apply](https://stripe.com/jobs/listing/124) |",
		"",
		"- [Ramp](https://ramp.com/careers/1) - New Grad Software Engineer - New York, NY",
	}, "\n")

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/lists/contents/README.md", func(w http.ResponseWriter, r *http.Request) {
		encoded := base64.StdEncoding.EncodeToString([]byte(readme))
		fmt.Fprintf(w, `{"content":%q,"encoding":"base64"}`, encoded)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	s := NewGitHubScraper(BypassGate{}, testLogger(), "", []GitHubRepo{
		{Owner: "acme", Repo: "lists", Branch: "main", Focus: []string{FocusInternship, FocusAll}},
	})
	s.apiBase = server.URL
	s.rawBase = server.URL

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	jobs, err := s.Fetch(ctx, []string{FocusInternship})
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(jobs))
	}
	if jobs[0].Company != "Stripe" || jobs[0].Title != "Software Engineering Intern" {
		t.Fatalf("unexpected first job: %+v", jobs[0])
	}
	if jobs[1].Company != "Stripe" {
		t.Fatalf("arrow row should inherit company, got %q", jobs[1].Company)
	}
	if !jobs[1].Remote {
		t.Fatalf("expected remote for second row")
	}
	if jobs[2].Company != "Ramp" || jobs[2].JobType == nil || *jobs[2].JobType != "full-time" {
		t.Fatalf("unexpected list item job: %+v", jobs[2])
	}
}

func TestGitHubScraper_RawFallbackWhenAPIFails(t *testing.T) {
	var rawHits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/acme/lists/main/README.md", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&rawHits, 1)
		fmt.Fprintln(w, "- [Acme](https://acme.dev/jobs/1) - Software Engineer Intern - Remote")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	s := NewGitHubScraper(BypassGate{}, testLogger(), "", []GitHubRepo{
		{Owner: "acme", Repo: "lists", Branch: "main", Focus: []string{FocusAll}},
	})
	s.apiBase = server.URL
	s.rawBase = server.URL

	jobs, err := s.Fetch(context.Background(), []string{FocusAll})
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if atomic.LoadInt32(&rawHits) != 1 {
		t.Fatalf("expected raw fallback to be used")
	}
	if len(jobs) != 1 || jobs[0].Company != "Acme" {
		t.Fatalf("unexpected jobs: %+v", jobs)
	}
}

func TestGitHubScraper_SkipsRepoOutsideFocus(t *testing.T) {
	s := NewGitHubScraper(BypassGate{}, testLogger(), "", []GitHubRepo{
		{Owner: "acme", Repo: "newgrad", Branch: "main", Focus: []string{FocusNewGrad}},
	})
	s.apiBase = "http://127.0.0.1:0"
	s.rawBase = "http://127.0.0.1:0"

	jobs, err := s.Fetch(context.Background(), []string{FocusH1B})
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("expected no jobs for non-matching focus, got %d", len(jobs))
	}
}

func TestATSScraper_Greenhouse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/boards/stripe/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("content") != "true" {
			t.Errorf("expected content=true query")
		}
		fmt.Fprint(w, `{"jobs":[
			{"id":101,"title":"Software Engineer, Payments","absolute_url":"https://boards.greenhouse.io/stripe/jobs/101","updated_at":"2026-08-20T10:00:00Z","content":"Build with Go and Kubernetes","location":{"name":"San Francisco, CA"}},
			{"id":102,"title":"Account Executive","absolute_url":"https://boards.greenhouse.io/stripe/jobs/102","location":{"name":"New York"}}
		]}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	target := CompanyTarget{Key: "stripe", Name: "Stripe", ATS: ATSGreenhouse, BoardSlug: "stripe", Keywords: []string{"software engineer"}, CompanySize: "enterprise"}
	s := NewATSScraper(BypassGate{}, testLogger(), target)
	s.greenhouseBase = server.URL

	jobs, err := s.Fetch(context.Background(), []string{FocusAll})
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected keyword filter to keep 1 job, got %d", len(jobs))
	}
	j := jobs[0]
	if j.ExternalID == nil || *j.ExternalID != "gh-101" {
		t.Fatalf("unexpected external id: %v", j.ExternalID)
	}
	if j.CompanySize == nil || *j.CompanySize != "enterprise" {
		t.Fatalf("expected company size from target")
	}
	if j.PostedAt == nil {
		t.Fatalf("expected posted date to be parsed")
	}
	if len(j.Technologies) == 0 {
		t.Fatalf("expected technologies extracted from content")
	}
}

func TestATSScraper_LeverInternshipFocus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v0/postings/plaid", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"id":"a1","text":"Software Engineer Intern","hostedUrl":"https://jobs.lever.co/plaid/a1","createdAt":1755600000000,"categories":{"location":"Remote - US","commitment":"Internship"},"descriptionPlain":"Work on APIs"},
			{"id":"a2","text":"Senior Software Engineer","hostedUrl":"https://jobs.lever.co/plaid/a2","categories":{"location":"New York","commitment":"Full-time"}}
		]`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	target := CompanyTarget{Key: "plaid", Name: "Plaid", ATS: ATSLever, BoardSlug: "plaid", Keywords: []string{"software engineer"}}
	s := NewATSScraper(BypassGate{}, testLogger(), target)
	s.leverBase = server.URL

	jobs, err := s.Fetch(context.Background(), []string{FocusInternship})
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected only the intern role, got %d", len(jobs))
	}
	j := jobs[0]
	if j.JobType == nil || *j.JobType != "internship" {
		t.Fatalf("expected internship job type, got %v", j.JobType)
	}
	if !j.Remote {
		t.Fatalf("expected remote location to be detected")
	}
	if j.PostedAt == nil {
		t.Fatalf("expected createdAt millis to be converted")
	}
}

func TestATSScraper_UnsupportedATS(t *testing.T) {
	s := NewATSScraper(BypassGate{}, testLogger(), CompanyTarget{Key: "nvidia", ATS: ATSWorkday})
	if _, err := s.Fetch(context.Background(), []string{FocusAll}); err == nil {
		t.Fatalf("expected error for unsupported ats")
	}
}

func TestBoardAPIScraper_SearchDedupAndRetry(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/remote-jobs", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"jobs":[
			{"id":7,"title":"Backend Engineer","company_name":"Acme","candidate_required_location":"USA","url":"https://remotive.com/jobs/7","job_type":"full_time","salary":"$120,000 - $150,000","publication_date":"2026-08-25T00:00:00","tags":["go","postgresql"]},
			{"id":8,"title":"Platform Intern","company_name":"Beta","url":"https://remotive.com/jobs/8","job_type":"internship","salary":""}
		]}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	s := NewBoardAPIScraperWithBaseURL(BypassGate{}, testLogger(), 100, time.Minute, server.URL)
	s.retryBackoff = 10 * time.Millisecond

	jobs, err := s.Fetch(context.Background(), []string{FocusRemote})
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	// Two search terms for remote focus return identical payloads; ids dedup.
	if len(jobs) != 2 {
		t.Fatalf("expected 2 deduplicated jobs, got %d", len(jobs))
	}
	backend := -1
	for i := range jobs {
		if jobs[i].Title == "Backend Engineer" {
			backend = i
			break
		}
	}
	if backend < 0 {
		t.Fatalf("backend job missing: %+v", jobs)
	}
	j := jobs[backend]
	if j.SalaryMin == nil || *j.SalaryMin != 120000 || j.SalaryMax == nil || *j.SalaryMax != 150000 {
		t.Fatalf("unexpected salary range: %v %v", j.SalaryMin, j.SalaryMax)
	}
	if j.SalaryPeriod != job.SalaryPeriodAnnual {
		t.Fatalf("unexpected salary period: %q", j.SalaryPeriod)
	}
	if !j.Remote {
		t.Fatalf("board jobs should be remote")
	}
	if j.Location == nil || *j.Location != "USA" {
		t.Fatalf("unexpected location: %v", j.Location)
	}
}

func TestBoardAPIScraper_GivesUpOnClientError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	s := NewBoardAPIScraperWithBaseURL(BypassGate{}, testLogger(), 100, time.Minute, server.URL)
	jobs, err := s.Fetch(context.Background(), []string{FocusH1B})
	if err != nil {
		t.Fatalf("per-term failures are logged, not returned: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("expected no jobs, got %d", len(jobs))
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("404 must not be retried, got %d calls", got)
	}
}

func TestSlidingWindow_BlocksUntilSlotFrees(t *testing.T) {
	w := newSlidingWindow(2, 120*time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := w.Wait(ctx); err != nil {
			t.Fatalf("wait error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Fatalf("third request should have waited for the window, elapsed %v", elapsed)
	}
}

func TestSlidingWindow_RespectsContextCancel(t *testing.T) {
	w := newSlidingWindow(1, time.Hour)
	if err := w.Wait(context.Background()); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := w.Wait(ctx); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestInternListScraper_ScrapesCategoryCards(t *testing.T) {
	page := `<html><body>
		<div class="job-card">
			<h3>Software Engineering Intern</h3>
			<span class="company">Acme Corp</span>
			<span class="location">Remote</span>
			<a href="/jobs/123">Apply</a>
		</div>
		<div class="job-card">
			<h3></h3>
			<span class="company">Empty Title Inc</span>
		</div>
	</body></html>`
	mux := http.NewServeMux()
	for path := range internListCategories {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, page)
		})
	}
	server := httptest.NewServer(mux)
	defer server.Close()

	s := NewInternListScraperWithBaseURL(BypassGate{}, testLogger(), server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	jobs, err := s.Fetch(ctx, []string{FocusInternship})
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if len(jobs) != len(internListCategories) {
		t.Fatalf("expected one card per category, got %d", len(jobs))
	}
	j := jobs[0]
	if j.Company != "Acme Corp" || !j.Remote {
		t.Fatalf("unexpected job: %+v", j)
	}
	if j.JobType == nil || *j.JobType != "internship" {
		t.Fatalf("expected internship type")
	}
	if !strings.Contains(j.SourceURL, "/jobs/123") {
		t.Fatalf("expected absolute detail url, got %q", j.SourceURL)
	}
}

func TestInternListScraper_SkipsOutsideFocus(t *testing.T) {
	s := NewInternListScraperWithBaseURL(BypassGate{}, testLogger(), "http://127.0.0.1:0")
	jobs, err := s.Fetch(context.Background(), []string{FocusH1B})
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if jobs != nil {
		t.Fatalf("expected nil for non-matching focus")
	}
}

func TestCompanyScraper_ListingAndDetail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/careers", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a class="posting" href="/careers/42">Software Engineer Intern</a>
			<a class="posting" href="/careers/42">duplicate</a>
		</body></html>`)
	})
	mux.HandleFunc("/careers/42", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<h1>Software Engineer Intern</h1>
			<span class="location">Seattle, WA</span>
			<div class="desc">Build services in Go on AWS</div>
		</body></html>`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	target := CompanyTarget{
		Key:              "acme",
		Name:             "Acme",
		CareersURL:       server.URL + "/careers",
		ATS:              ATSCustom,
		LinkSelector:     "a.posting",
		TitleSelector:    "h1",
		LocationSelector: "span.location",
		BodySelector:     "div.desc",
		Keywords:         []string{"software engineer"},
		CompanySize:      "startup",
	}
	s := NewCompanyScraper(BypassGate{}, testLogger(), target, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	jobs, err := s.Fetch(ctx, []string{FocusInternship})
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job after link dedup, got %d", len(jobs))
	}
	j := jobs[0]
	if j.Title != "Software Engineer Intern" || j.Company != "Acme" {
		t.Fatalf("unexpected job: %+v", j)
	}
	if j.Location == nil || *j.Location != "Seattle, WA" {
		t.Fatalf("unexpected location: %v", j.Location)
	}
	if j.JobType == nil || *j.JobType != "internship" {
		t.Fatalf("expected internship type")
	}
}

func TestPoliteGate_RobotsDisallow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	g := NewPoliteGate(server.Client(), UserAgent, 0, 0)

	if err := g.Allow(context.Background(), server.URL+"/public/page"); err != nil {
		t.Fatalf("allowed path rejected: %v", err)
	}
	if err := g.Allow(context.Background(), server.URL+"/private/page"); err != ErrDisallowedByRobots {
		t.Fatalf("expected robots disallow, got %v", err)
	}
}

func TestPoliteGate_SpacesRequestsPerHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nAllow: /\n")
	}))
	defer server.Close()

	g := NewPoliteGate(server.Client(), UserAgent, 80*time.Millisecond, 80*time.Millisecond)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := g.Allow(context.Background(), server.URL+"/page"); err != nil {
			t.Fatalf("allow error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Fatalf("expected spacing between requests, elapsed %v", elapsed)
	}
}
