package scraper

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"jobscout/internal/domain/job"
)

// techVocabulary is the fixed set of technology terms adapters recognize in
// free text. Matches land in Posting.Technologies normalized to these names.
var techVocabulary = []string{
	"python", "java", "javascript", "typescript", "go", "rust", "c++", "c#",
	"react", "vue", "angular", "node.js", "django", "flask", "spring",
	"sql", "postgresql", "mysql", "mongodb", "redis",
	"aws", "azure", "gcp", "docker", "kubernetes", "terraform",
	"git", "linux", "graphql", "rest",
}

func extractTechnologies(text string) []string {
	text = strings.ToLower(text)
	out := make([]string, 0, 4)
	for _, tech := range techVocabulary {
		if strings.Contains(text, tech) {
			out = append(out, tech)
		}
	}
	return out
}

// mapExperienceLevel folds free-form seniority text onto the canonical
// entry/mid/senior/lead hierarchy. Unrecognized input maps to entry: the
// sources this system watches skew overwhelmingly early-career.
func mapExperienceLevel(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "principal"), strings.Contains(s, "staff"),
		strings.Contains(s, "architect"), strings.Contains(s, "director"),
		strings.Contains(s, "manager"):
		return job.LevelLead
	case strings.Contains(s, "senior"), strings.Contains(s, "sr."):
		return job.LevelSenior
	case strings.Contains(s, "mid"), strings.Contains(s, "intermediate"):
		return job.LevelMid
	default:
		return job.LevelEntry
	}
}

var postedDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"Jan 2, 2006",
	"Jan 02",
	"01/02/2006",
	"2006/01/02",
}

// parsePostedDate tries the date shapes seen across sources; layouts without
// a year assume the current one.
func parsePostedDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range postedDateLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if t.Year() == 0 {
			now := time.Now().UTC()
			t = t.AddDate(now.Year(), 0, 0)
			if t.After(now) {
				t = t.AddDate(-1, 0, 0)
			}
		}
		t = t.UTC()
		return &t
	}
	return nil
}

func looksRemote(text string) bool {
	s := strings.ToLower(text)
	return strings.Contains(s, "remote") ||
		strings.Contains(s, "work from home") ||
		strings.Contains(s, "wfh") ||
		strings.Contains(s, "distributed")
}

var markdownLinkRe = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)
var markdownMarkupRe = regexp.MustCompile("[*_`~]")
var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// cleanMarkdown strips link syntax, emphasis markers and inline HTML,
// keeping the visible text.
func cleanMarkdown(s string) string {
	s = markdownLinkRe.ReplaceAllString(s, "$1")
	s = htmlTagRe.ReplaceAllString(s, "")
	s = markdownMarkupRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// firstMarkdownLink returns the first link target in a markdown or HTML
// fragment, or "".
func firstMarkdownLink(s string) string {
	if m := markdownLinkRe.FindStringSubmatch(s); len(m) == 3 {
		return strings.TrimSpace(m[2])
	}
	if m := hrefRe.FindStringSubmatch(s); len(m) == 2 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

var hrefRe = regexp.MustCompile(`href="([^"]+)"`)

func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""
	return u.String()
}

func pickNonEmpty(a, b string) string {
	a = strings.TrimSpace(a)
	if a != "" {
		return a
	}
	return strings.TrimSpace(b)
}

var salaryRangeRe = regexp.MustCompile(`(?i)\$?\s*(\d[\d,]*)(k)?\s*(?:-|to|–)\s*\$?\s*(\d[\d,]*)(k)?`)

// parseSalaryRange pulls a numeric range out of free-text salary strings such
// as "$120,000 - $150,000" or "100k-140k" or "$40 - $55 per hour".
func parseSalaryRange(raw string) (*int, *int, *string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil, nil
	}
	m := salaryRangeRe.FindStringSubmatch(raw)
	if len(m) < 5 {
		return nil, nil, nil
	}
	min := parseSalaryNumber(m[1], m[2] != "")
	max := parseSalaryNumber(m[3], m[4] != "")
	if min == 0 || max == 0 || max < min {
		return nil, nil, nil
	}
	period := job.SalaryPeriodAnnual
	lower := strings.ToLower(raw)
	if strings.Contains(lower, "hour") || strings.Contains(lower, "/hr") || max < 500 {
		period = job.SalaryPeriodHourly
	}
	return job.IntPtr(min), job.IntPtr(max), job.StrPtr(period)
}

func parseSalaryNumber(raw string, thousands bool) int {
	raw = strings.ReplaceAll(raw, ",", "")
	n := 0
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	if thousands {
		n *= 1000
	}
	return n
}
