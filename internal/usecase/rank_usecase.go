package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"jobscout/internal/domain/preferences"
	"jobscout/internal/infrastructure/cache"
	"jobscout/internal/metrics"
	"jobscout/internal/ranking"
	"jobscout/internal/repository"
)

// RankCache is the slice of the cache the ranker needs.
type RankCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// MatchNotifier is told when a fresh ranking run produced high-tier matches.
// Cache hits stay silent so repeat requests do not re-announce.
type MatchNotifier interface {
	HighMatches(count int, topScore float64)
}

type RankParams struct {
	Preferences *preferences.Preferences
	Filter      repository.JobFilter
}

// RankedJobs is a ranked view over the active postings, with tier counts
// against the configured thresholds.
type RankedJobs struct {
	Results       []ranking.Result `json:"results"`
	Total         int              `json:"total"`
	HighMatches   int              `json:"high_matches"`
	MediumMatches int              `json:"medium_matches"`
	RankedAt      time.Time        `json:"ranked_at"`
}

type RankUsecase interface {
	RankJobs(ctx context.Context, params RankParams) (RankedJobs, error)
}

type Rank struct {
	jobs     repository.JobRepository
	ranker   *ranking.Ranker
	cache    RankCache
	notifier MatchNotifier
	logger   *log.Logger

	cacheTTL        time.Duration
	highThreshold   float64
	mediumThreshold float64
}

func NewRankUsecase(jobs repository.JobRepository, ranker *ranking.Ranker, rc RankCache, notifier MatchNotifier, logger *log.Logger, highThreshold, mediumThreshold float64) *Rank {
	if highThreshold <= 0 {
		highThreshold = 0.8
	}
	if mediumThreshold <= 0 {
		mediumThreshold = 0.6
	}
	return &Rank{
		jobs:            jobs,
		ranker:          ranker,
		cache:           rc,
		notifier:        notifier,
		logger:          logger,
		cacheTTL:        10 * time.Minute,
		highThreshold:   highThreshold,
		mediumThreshold: mediumThreshold,
	}
}

func (u *Rank) RankJobs(ctx context.Context, params RankParams) (RankedJobs, error) {
	key := cache.RankKey(paramsDigest(params))

	if u.cache != nil {
		var cached RankedJobs
		hit, err := u.cache.GetJSON(ctx, key, &cached)
		if err == nil && hit {
			metrics.RecordCacheHit()
			return cached, nil
		}
		metrics.RecordCacheMiss()
	}

	postings, err := u.jobs.ListActive(ctx, params.Filter)
	if err != nil {
		return RankedJobs{}, err
	}

	results, err := u.ranker.BatchRank(postings, params.Preferences)
	if err != nil {
		return RankedJobs{}, err
	}
	metrics.RecordRankRequest(len(results))

	out := RankedJobs{
		Results:  results,
		Total:    len(results),
		RankedAt: time.Now().UTC(),
	}
	for _, r := range results {
		switch {
		case r.OverallScore >= u.highThreshold:
			out.HighMatches++
		case r.OverallScore >= u.mediumThreshold:
			out.MediumMatches++
		}
	}

	if u.notifier != nil && out.HighMatches > 0 {
		u.notifier.HighMatches(out.HighMatches, results[0].OverallScore)
	}

	if u.cache != nil {
		if err := u.cache.SetJSON(ctx, key, out, u.cacheTTL); err != nil && u.logger != nil {
			u.logger.Printf("rank cache write failed key=%s err=%v", key, err)
		}
	}
	return out, nil
}

// paramsDigest keys the cache on the full request: same preferences and
// filter, same ranked view.
func paramsDigest(params RankParams) string {
	b, err := json.Marshal(params)
	if err != nil {
		return "unkeyed"
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
