package ranking

import (
	"errors"
	"sort"
	"strings"
	"time"

	"jobscout/internal/domain/job"
	"jobscout/internal/domain/preferences"
)

var ErrInvalidPreferences = errors.New("user preferences must be provided")

// Tunable scoring constants. These encode product judgment, not algorithmic
// necessity; the invariant is only that every factor stays in [0,1].
const (
	requiredKeywordBlend  = 0.4
	preferredKeywordBlend = 0.6
	techBonusPerMatch     = 0.1
	excludedPenaltyEach   = 0.2

	missingLocationScore  = 0.5
	locationSynonymScore  = 0.9
	locationFuzzyMinRatio = 0.8

	missingSalaryScore = 0.3
	salaryMinBonus     = 0.2
	overpayScore       = 0.7
	hoursPerYear       = 2080

	missingExperienceScore = 0.7
	experienceSynonymScore = 0.9
	experienceStepPenalty  = 0.3
	experienceMismatch     = 0.3

	companyBaseScore = 0.7
	companySizeBonus = 0.3

	missingPostDateScore = 0.5
)

// Result is the immutable outcome of scoring one posting against one set of
// preferences. Exposed in a serializable form for downstream notifiers.
type Result struct {
	Job             job.Posting       `json:"job"`
	OverallScore    float64           `json:"overall_score"`
	KeywordScore    float64           `json:"keyword_score"`
	LocationScore   float64           `json:"location_score"`
	SalaryScore     float64           `json:"salary_score"`
	ExperienceScore float64           `json:"experience_score"`
	CompanyScore    float64           `json:"company_score"`
	FreshnessScore  float64           `json:"freshness_score"`
	Explanations    map[string]string `json:"explanations"`
}

// Ranker scores postings against user preferences. It performs no I/O and a
// single instance is safe for concurrent use.
type Ranker struct {
	defaults *preferences.Preferences
	now      func() time.Time
}

func NewRanker(defaults *preferences.Preferences) *Ranker {
	return &Ranker{defaults: defaults, now: time.Now}
}

// Rank scores one posting. When prefs is nil the ranker falls back to the
// defaults it was constructed with; with neither it fails.
func (r *Ranker) Rank(posting job.Posting, prefs *preferences.Preferences) (Result, error) {
	p, err := r.resolve(prefs)
	if err != nil {
		return Result{}, err
	}
	return r.rankAt(posting, p, r.now().UTC()), nil
}

// BatchRank scores every posting against one frozen reference instant, so a
// batch is reproducible, and returns results sorted by overall score
// descending. Ties keep input order.
func (r *Ranker) BatchRank(postings []job.Posting, prefs *preferences.Preferences) ([]Result, error) {
	p, err := r.resolve(prefs)
	if err != nil {
		return nil, err
	}

	ref := r.now().UTC()
	out := make([]Result, 0, len(postings))
	for _, posting := range postings {
		out = append(out, r.rankAt(posting, p, ref))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OverallScore > out[j].OverallScore
	})
	return out, nil
}

func (r *Ranker) resolve(prefs *preferences.Preferences) (preferences.Preferences, error) {
	if prefs != nil {
		return *prefs, nil
	}
	if r.defaults != nil {
		return *r.defaults, nil
	}
	return preferences.Preferences{}, ErrInvalidPreferences
}

func (r *Ranker) rankAt(posting job.Posting, p preferences.Preferences, ref time.Time) Result {
	keyword := scoreKeywords(posting, p)
	location := scoreLocation(posting, p)
	salary := scoreSalary(posting, p)
	experience := scoreExperience(posting, p)
	company := scoreCompany(posting, p)
	freshness := scoreFreshness(posting, ref)

	overall := keyword*p.Weight(preferences.FactorKeywords) +
		location*p.Weight(preferences.FactorLocation) +
		salary*p.Weight(preferences.FactorSalary) +
		experience*p.Weight(preferences.FactorExperience) +
		company*p.Weight(preferences.FactorCompany) +
		freshness*p.Weight(preferences.FactorFreshness)

	return Result{
		Job:             posting,
		OverallScore:    clamp01(overall),
		KeywordScore:    keyword,
		LocationScore:   location,
		SalaryScore:     salary,
		ExperienceScore: experience,
		CompanyScore:    company,
		FreshnessScore:  freshness,
		Explanations:    explain(keyword, location, salary, experience, company, freshness),
	}
}

// scoreKeywords blends required coverage, weighted preferred coverage, a
// technology bonus and excluded-keyword penalties.
func scoreKeywords(posting job.Posting, p preferences.Preferences) float64 {
	corpus := strings.ToLower(posting.Title + " " + posting.DescriptionOrEmpty())

	requiredScore := 1.0
	if len(p.RequiredKeywords) > 0 {
		matches := 0
		for _, kw := range p.RequiredKeywords {
			if keywordMatches(strings.ToLower(kw), corpus) {
				matches++
			}
		}
		requiredScore = float64(matches) / float64(len(p.RequiredKeywords))
		if requiredScore > 1 {
			requiredScore = 1
		}
	}

	preferredScore := 0.0
	totalWeight := 0.0
	for _, kw := range p.PreferredKeywords {
		w := p.KeywordWeight(kw)
		totalWeight += w
		if keywordMatches(strings.ToLower(kw), corpus) {
			preferredScore += w
		}
	}
	if totalWeight > 0 {
		preferredScore /= totalWeight
	}

	excludedPenalty := 0.0
	for _, kw := range p.ExcludedKeywords {
		if keywordMatches(strings.ToLower(kw), corpus) {
			excludedPenalty += excludedPenaltyEach
		}
	}

	techBonus := 0.0
	for _, tech := range p.PreferredTechnologies {
		for _, declared := range posting.Technologies {
			if keywordMatches(strings.ToLower(tech), strings.ToLower(declared)) {
				techBonus += techBonusPerMatch
				break
			}
		}
	}

	return clamp01(requiredScore*requiredKeywordBlend + preferredScore*preferredKeywordBlend + techBonus - excludedPenalty)
}

func scoreLocation(posting job.Posting, p preferences.Preferences) float64 {
	loc := strings.ToLower(posting.LocationOrEmpty())
	if loc == "" {
		return missingLocationScore
	}

	if p.RemoteAcceptable && posting.Remote {
		return 1.0
	}

	best := 0.0
	for _, pref := range p.PreferredLocations {
		pref = strings.ToLower(strings.TrimSpace(pref))
		if pref == "" {
			continue
		}

		if pref == loc {
			return 1.0
		}

		sim := float64(partialSimilarity(pref, loc)) / 100.0
		if sim > locationFuzzyMinRatio && sim > best {
			best = sim
		}

		for _, syn := range locationSynonyms[pref] {
			if strings.Contains(loc, syn) && locationSynonymScore > best {
				best = locationSynonymScore
			}
		}
	}
	return best
}

func scoreSalary(posting job.Posting, p preferences.Preferences) float64 {
	if p.MinSalary == nil && p.MaxSalary == nil {
		return 1.0
	}
	if posting.SalaryMin == nil && posting.SalaryMax == nil {
		return missingSalaryScore
	}

	jobMin := 0
	if posting.SalaryMin != nil {
		jobMin = *posting.SalaryMin
	}
	jobMax := jobMin
	if posting.SalaryMax != nil {
		jobMax = *posting.SalaryMax
	}
	if posting.SalaryPeriod == job.SalaryPeriodHourly {
		jobMin *= hoursPerYear
		jobMax *= hoursPerYear
	}

	userMin := 0
	if p.MinSalary != nil {
		userMin = *p.MinSalary
	}
	userMax := int(^uint(0) >> 1)
	userRange := userMax - userMin
	if p.MaxSalary != nil {
		userMax = *p.MaxSalary
		userRange = userMax - userMin
	}

	overlapStart := maxInt(jobMin, userMin)
	overlapEnd := minInt(jobMax, userMax)

	if overlapStart <= overlapEnd {
		jobRange := maxInt(1, jobMax-jobMin)
		userRange = maxInt(1, userRange)
		score := float64(overlapEnd-overlapStart) / float64(minInt(jobRange, userRange))
		if jobMin >= userMin {
			score += salaryMinBonus
		}
		return clamp01(score)
	}

	if jobMax < userMin {
		if userMin <= 0 {
			return 0
		}
		gap := float64(userMin-jobMax) / float64(userMin)
		return clamp01(1 - gap)
	}

	// Job pays above the requested ceiling.
	return overpayScore
}

var experienceHierarchy = []string{job.LevelEntry, job.LevelMid, job.LevelSenior, job.LevelLead}

func scoreExperience(posting job.Posting, p preferences.Preferences) float64 {
	if posting.ExperienceLevel == nil || len(p.ExperienceLevels) == 0 {
		return missingExperienceScore
	}
	jobExp := strings.ToLower(strings.TrimSpace(*posting.ExperienceLevel))
	if jobExp == "" {
		return missingExperienceScore
	}

	for _, userExp := range p.ExperienceLevels {
		if strings.ToLower(strings.TrimSpace(userExp)) == jobExp {
			return 1.0
		}
	}

	for _, userExp := range p.ExperienceLevels {
		for _, syn := range experienceSynonyms[strings.ToLower(strings.TrimSpace(userExp))] {
			if strings.Contains(jobExp, syn) || partialSimilarity(syn, jobExp) > 80 {
				return experienceSynonymScore
			}
		}
	}

	jobIdx := -1
	for i, level := range experienceHierarchy {
		if strings.Contains(jobExp, level) {
			jobIdx = i
			break
		}
	}
	if jobIdx >= 0 {
		for _, userExp := range p.ExperienceLevels {
			userIdx := indexOf(experienceHierarchy, strings.ToLower(strings.TrimSpace(userExp)))
			if userIdx < 0 {
				continue
			}
			distance := jobIdx - userIdx
			if distance < 0 {
				distance = -distance
			}
			if distance <= 1 {
				score := 1.0 - float64(distance)*experienceStepPenalty
				if score < 0.5 {
					score = 0.5
				}
				return score
			}
		}
	}

	return experienceMismatch
}

// scoreCompany short-circuits to zero for excluded companies before any
// bonus is considered.
func scoreCompany(posting job.Posting, p preferences.Preferences) float64 {
	company := strings.ToLower(posting.Company)
	if company != "" {
		for _, excluded := range p.ExcludedCompanies {
			excluded = strings.ToLower(strings.TrimSpace(excluded))
			if excluded != "" && strings.Contains(company, excluded) {
				return 0.0
			}
		}
	}

	score := companyBaseScore
	if posting.CompanySize != nil && len(p.PreferredCompanyTypes) > 0 {
		size := strings.ToLower(strings.TrimSpace(*posting.CompanySize))
		for _, preferred := range p.PreferredCompanyTypes {
			if strings.ToLower(strings.TrimSpace(preferred)) == size {
				score += companySizeBonus
				break
			}
		}
	}
	return clamp01(score)
}

func scoreFreshness(posting job.Posting, ref time.Time) float64 {
	if posting.PostedAt == nil || posting.PostedAt.IsZero() {
		return missingPostDateScore
	}

	age := ref.Sub(posting.PostedAt.UTC())
	if age < 0 {
		age = 0
	}
	days := int(age.Hours() / 24)

	switch {
	case days <= 1:
		return 1.0
	case days <= 7:
		return 0.9
	case days <= 30:
		return 0.7
	case days <= 60:
		return 0.5
	default:
		return 0.2
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func indexOf(list []string, v string) int {
	for i, item := range list {
		if item == v {
			return i
		}
	}
	return -1
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
