package ranking

import (
	"regexp"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// techSynonyms groups technology terms by category. Matching any synonym or
// the category name itself counts as a hit for a keyword in that group.
var techSynonyms = map[string][]string{
	"javascript": {"js", "node.js", "nodejs", "react", "vue", "angular"},
	"python":     {"django", "flask", "fastapi", "pandas", "numpy"},
	"java":       {"spring", "springboot", "maven", "gradle"},
	"database":   {"sql", "mysql", "postgresql", "mongodb", "redis"},
	"cloud":      {"aws", "azure", "gcp", "docker", "kubernetes"},
	"frontend":   {"html", "css", "react", "vue", "angular", "typescript"},
	"backend":    {"api", "rest", "microservices", "server"},
}

var locationSynonyms = map[string][]string{
	"remote":        {"work from home", "wfh", "telecommute", "distributed"},
	"san francisco": {"sf", "bay area", "silicon valley"},
	"new york":      {"nyc", "manhattan", "brooklyn"},
	"los angeles":   {"la", "hollywood", "santa monica"},
}

var experienceSynonyms = map[string][]string{
	"entry":  {"junior", "entry-level", "new grad", "graduate", "associate", "0-2 years"},
	"mid":    {"mid-level", "intermediate", "2-5 years", "3-7 years"},
	"senior": {"senior", "sr", "lead", "5+ years", "7+ years"},
	"lead":   {"lead", "principal", "architect", "manager", "director"},
}

// fuzzyMatchThreshold is on the 0-100 similarity scale; keywords shorter than
// minFuzzyKeywordLen never go through the fuzzy path.
const (
	fuzzyMatchThreshold = 85
	minFuzzyKeywordLen  = 3
)

var levenshtein = metrics.NewLevenshtein()

// similarity returns string similarity on a 0-100 scale.
func similarity(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	return int(strutil.Similarity(a, b, levenshtein) * 100)
}

// partialSimilarity slides the shorter string over the longer one and returns
// the best window similarity on a 0-100 scale.
func partialSimilarity(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == len(long) {
		return similarity(short, long)
	}

	best := 0
	for i := 0; i+len(short) <= len(long); i++ {
		s := similarity(short, long[i:i+len(short)])
		if s > best {
			best = s
		}
		if best == 100 {
			break
		}
	}
	return best
}

func wordBoundaryMatch(keyword, text string) bool {
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

// keywordMatches reports whether keyword occurs in text. Strategies are tried
// in order and any one hit counts: substring containment, word-boundary
// match, technology synonym table, fuzzy similarity against single words.
// Both arguments are expected lower-cased.
func keywordMatches(keyword, text string) bool {
	if keyword == "" || text == "" {
		return false
	}

	if strings.Contains(text, keyword) {
		return true
	}

	if wordBoundaryMatch(keyword, text) {
		return true
	}

	for category, synonyms := range techSynonyms {
		inGroup := keyword == category
		for _, syn := range synonyms {
			if keyword == syn {
				inGroup = true
				break
			}
		}
		if !inGroup {
			continue
		}
		for _, candidate := range append([]string{category}, synonyms...) {
			if strings.Contains(text, candidate) || wordBoundaryMatch(candidate, text) {
				return true
			}
		}
	}

	if len(keyword) > minFuzzyKeywordLen {
		for _, word := range strings.Fields(text) {
			if similarity(keyword, word) > fuzzyMatchThreshold {
				return true
			}
		}
	}

	return false
}
