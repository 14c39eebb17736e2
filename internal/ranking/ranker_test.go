package ranking

import (
	"testing"
	"time"

	"jobscout/internal/domain/job"
	"jobscout/internal/domain/preferences"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func internPosting() job.Posting {
	return job.Posting{
		Title:        "Python Software Engineer Intern",
		Company:      "Acme",
		Location:     job.StrPtr("Remote"),
		Remote:       true,
		Technologies: []string{"python"},
	}
}

func TestRank_ScoresStayInRange(t *testing.T) {
	r := NewRanker(nil)
	prefs := preferences.Internship()

	postings := []job.Posting{
		internPosting(),
		{Title: "Senior Staff Architect", Company: "MegaCorp"},
		{Title: "", Company: ""},
		{
			Title:        "Lead Director of Everything",
			Company:      "Evil Inc",
			SalaryMin:    job.IntPtr(1),
			SalaryMax:    job.IntPtr(2),
			SalaryPeriod: job.SalaryPeriodHourly,
		},
	}

	for _, p := range postings {
		res, err := r.Rank(p, &prefs)
		if err != nil {
			t.Fatalf("rank: %v", err)
		}
		factors := map[string]float64{
			"overall":    res.OverallScore,
			"keyword":    res.KeywordScore,
			"location":   res.LocationScore,
			"salary":     res.SalaryScore,
			"experience": res.ExperienceScore,
			"company":    res.CompanyScore,
			"freshness":  res.FreshnessScore,
		}
		for name, v := range factors {
			if v < 0 || v > 1 {
				t.Fatalf("%s score out of range for %q: %v", name, p.Title, v)
			}
		}
		if len(res.Explanations) != 6 {
			t.Fatalf("expected six factor explanations, got %d", len(res.Explanations))
		}
	}
}

func TestRank_NoPreferencesAnywhereFails(t *testing.T) {
	r := NewRanker(nil)
	if _, err := r.Rank(internPosting(), nil); err != ErrInvalidPreferences {
		t.Fatalf("expected ErrInvalidPreferences, got %v", err)
	}

	defaults := preferences.Internship()
	r = NewRanker(&defaults)
	if _, err := r.Rank(internPosting(), nil); err != nil {
		t.Fatalf("constructor defaults should be used, got %v", err)
	}
}

func TestScoreKeywords_EmptyRequiredDefaultsToFull(t *testing.T) {
	p := preferences.Preferences{
		PreferredKeywords: []string{"python"},
		KeywordWeights:    map[string]float64{"python": 1.0},
	}
	posting := job.Posting{Title: "Python Developer", Company: "Acme"}

	got := scoreKeywords(posting, p)
	// required defaults to 1.0 at weight 0.4, preferred fully matched at 0.6.
	if got < 0.99 {
		t.Fatalf("expected full blend score, got %v", got)
	}

	missing := job.Posting{Title: "Accountant", Company: "Acme"}
	got = scoreKeywords(missing, p)
	if got < 0.39 || got > 0.41 {
		t.Fatalf("expected bare required contribution 0.4, got %v", got)
	}
}

func TestScoreKeywords_InternScenario(t *testing.T) {
	p := preferences.Preferences{
		RequiredKeywords:  []string{"intern"},
		PreferredKeywords: []string{"python"},
		KeywordWeights:    map[string]float64{"python": 0.9},
		RemoteAcceptable:  true,
	}

	got := scoreKeywords(internPosting(), p)
	if got < 0.9 {
		t.Fatalf("expected keyword score >= 0.9, got %v", got)
	}

	if loc := scoreLocation(internPosting(), p); loc != 1.0 {
		t.Fatalf("remote job with remote acceptable must score 1.0, got %v", loc)
	}
}

func TestScoreKeywords_ExcludedPenaltyAndSynonyms(t *testing.T) {
	p := preferences.Preferences{
		PreferredKeywords: []string{"javascript"},
		ExcludedKeywords:  []string{"senior"},
	}
	posting := job.Posting{
		Title:       "Senior React Developer",
		Company:     "Acme",
		Description: job.StrPtr("We build UIs with react and node.js"),
	}

	// javascript matches via the react/node.js synonym group: 1.0*0.6,
	// required defaults to 0.4, minus one excluded penalty of 0.2.
	got := scoreKeywords(posting, p)
	if got < 0.79 || got > 0.81 {
		t.Fatalf("expected 0.8, got %v", got)
	}
}

func TestScoreLocation_Table(t *testing.T) {
	prefs := preferences.Preferences{
		PreferredLocations: []string{"San Francisco", "New York"},
	}

	cases := []struct {
		name     string
		location string
		want     float64
	}{
		{"exact", "san francisco", 1.0},
		{"synonym", "hybrid - bay area office", 0.9},
		{"synonym nyc", "NYC (Midtown)", 0.9},
		{"no match", "Gotham", 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			posting := job.Posting{Title: "x", Company: "y", Location: job.StrPtr(tc.location)}
			got := scoreLocation(posting, prefs)
			if got != tc.want {
				t.Fatalf("location %q: want %v got %v", tc.location, tc.want, got)
			}
		})
	}

	if got := scoreLocation(job.Posting{Title: "x", Company: "y"}, prefs); got != 0.5 {
		t.Fatalf("missing location must score 0.5, got %v", got)
	}
}

func TestScoreSalary(t *testing.T) {
	noBounds := preferences.Preferences{}
	withSalary := job.Posting{SalaryMin: job.IntPtr(10), SalaryMax: job.IntPtr(20)}
	if got := scoreSalary(withSalary, noBounds); got != 1.0 {
		t.Fatalf("no declared bounds must score 1.0, got %v", got)
	}

	bounded := preferences.Preferences{MinSalary: job.IntPtr(70000), MaxSalary: job.IntPtr(180000)}
	if got := scoreSalary(job.Posting{}, bounded); got != missingSalaryScore {
		t.Fatalf("missing job salary must score %v, got %v", missingSalaryScore, got)
	}

	// No overlap, job underpays: 1 - (70000-60000)/70000.
	under := job.Posting{SalaryMin: job.IntPtr(50000), SalaryMax: job.IntPtr(60000)}
	got := scoreSalary(under, preferences.Preferences{MinSalary: job.IntPtr(70000)})
	want := 1.0 - 10000.0/70000.0
	if got < want-0.001 || got > want+0.001 {
		t.Fatalf("underpay: want %v got %v", want, got)
	}

	// No overlap, job pays above the ceiling.
	over := job.Posting{SalaryMin: job.IntPtr(300000), SalaryMax: job.IntPtr(400000)}
	if got := scoreSalary(over, bounded); got != overpayScore {
		t.Fatalf("overpay: want %v got %v", overpayScore, got)
	}

	// Hourly conversion: 40/h * 2080 = 83200 annual, inside the range, and
	// job minimum above user minimum earns the bonus.
	hourly := job.Posting{
		SalaryMin:    job.IntPtr(40),
		SalaryMax:    job.IntPtr(50),
		SalaryPeriod: job.SalaryPeriodHourly,
	}
	if got := scoreSalary(hourly, bounded); got != 1.0 {
		t.Fatalf("hourly overlap with bonus should clamp to 1.0, got %v", got)
	}
}

func TestScoreExperience(t *testing.T) {
	p := preferences.Preferences{ExperienceLevels: []string{"entry"}}

	if got := scoreExperience(job.Posting{}, p); got != missingExperienceScore {
		t.Fatalf("missing job level: want %v got %v", missingExperienceScore, got)
	}

	exact := job.Posting{ExperienceLevel: job.StrPtr("Entry")}
	if got := scoreExperience(exact, p); got != 1.0 {
		t.Fatalf("exact label: want 1.0 got %v", got)
	}

	synonym := job.Posting{ExperienceLevel: job.StrPtr("new grad position")}
	if got := scoreExperience(synonym, p); got != experienceSynonymScore {
		t.Fatalf("synonym: want %v got %v", experienceSynonymScore, got)
	}

	adjacent := job.Posting{ExperienceLevel: job.StrPtr("mid")}
	if got := scoreExperience(adjacent, p); got != 0.7 {
		t.Fatalf("adjacent level: want 0.7 got %v", got)
	}

	far := job.Posting{ExperienceLevel: job.StrPtr("lead")}
	if got := scoreExperience(far, p); got != experienceMismatch {
		t.Fatalf("distant level: want %v got %v", experienceMismatch, got)
	}
}

func TestScoreCompany_ExclusionShortCircuits(t *testing.T) {
	p := preferences.Preferences{
		ExcludedCompanies:     []string{"evil"},
		PreferredCompanyTypes: []string{"startup"},
	}
	posting := job.Posting{
		Title:       "Engineer",
		Company:     "Evil Startup Labs",
		CompanySize: job.StrPtr("startup"),
	}

	if got := scoreCompany(posting, p); got != 0.0 {
		t.Fatalf("excluded company must zero out the score, got %v", got)
	}

	clean := posting
	clean.Company = "Friendly Startup Labs"
	if got := scoreCompany(clean, p); got != 1.0 {
		t.Fatalf("base 0.7 plus size bonus should reach 1.0, got %v", got)
	}
}

func TestScoreFreshness_Buckets(t *testing.T) {
	ref := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		daysOld int
		want    float64
	}{
		{0, 1.0}, {1, 1.0}, {5, 0.9}, {20, 0.7}, {45, 0.5}, {90, 0.2},
	}
	for _, tc := range cases {
		posted := ref.AddDate(0, 0, -tc.daysOld)
		p := job.Posting{PostedAt: &posted}
		if got := scoreFreshness(p, ref); got != tc.want {
			t.Fatalf("age %dd: want %v got %v", tc.daysOld, tc.want, got)
		}
	}

	if got := scoreFreshness(job.Posting{}, ref); got != missingPostDateScore {
		t.Fatalf("missing posted date: want %v got %v", missingPostDateScore, got)
	}
}

func TestBatchRank_SortedAndStable(t *testing.T) {
	prefs := preferences.Preferences{
		RequiredKeywords: []string{"engineer"},
		RankingWeights:   map[string]float64{preferences.FactorKeywords: 1.0},
	}

	r := NewRanker(nil)
	r.now = fixedClock(time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC))

	postings := []job.Posting{
		{Title: "Accountant", Company: "TieA"},
		{Title: "Engineer", Company: "Winner"},
		{Title: "Bookkeeper", Company: "TieB"},
	}

	out, err := r.BatchRank(postings, &prefs)
	if err != nil {
		t.Fatalf("batch rank: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 results, got %d", len(out))
	}
	if out[0].Job.Company != "Winner" {
		t.Fatalf("expected highest score first, got %q", out[0].Job.Company)
	}
	for i := 1; i < len(out); i++ {
		if out[i-1].OverallScore < out[i].OverallScore {
			t.Fatalf("results not sorted descending at %d", i)
		}
	}
	// Equal scores keep input order.
	if out[1].Job.Company != "TieA" || out[2].Job.Company != "TieB" {
		t.Fatalf("tie order not stable: %q, %q", out[1].Job.Company, out[2].Job.Company)
	}
}

func TestBatchRank_FreezesReferenceTime(t *testing.T) {
	prefs := preferences.Preferences{
		RankingWeights: map[string]float64{preferences.FactorFreshness: 1.0},
	}

	ref := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	r := NewRanker(nil)
	r.now = fixedClock(ref)

	posted := ref.AddDate(0, 0, -3)
	p := job.Posting{Title: "Engineer", Company: "Acme", PostedAt: &posted}

	first, err := r.BatchRank([]job.Posting{p}, &prefs)
	if err != nil {
		t.Fatalf("batch rank: %v", err)
	}
	second, err := r.BatchRank([]job.Posting{p}, &prefs)
	if err != nil {
		t.Fatalf("batch rank: %v", err)
	}
	if first[0].OverallScore != second[0].OverallScore {
		t.Fatalf("same clock must reproduce the same freshness score")
	}
	if first[0].FreshnessScore != 0.9 {
		t.Fatalf("3-day-old posting should land in the week bucket, got %v", first[0].FreshnessScore)
	}
}
