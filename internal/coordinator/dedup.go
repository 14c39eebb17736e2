package coordinator

import (
	"sync"

	"jobscout/internal/domain/job"
)

// dedupSet tracks posting fingerprints seen during one session, so the same
// job surfacing from two sources is stored once.
type dedupSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func newDedupSet() *dedupSet {
	return &dedupSet{seen: make(map[string]struct{})}
}

// Filter returns the postings whose fingerprints were not seen before and
// marks them as seen. A duplicate within the same batch folds its metadata
// into the kept posting; duplicates of an earlier batch are dropped, since
// the kept posting is already persisted.
func (d *dedupSet) Filter(postings []job.Posting) []job.Posting {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]job.Posting, 0, len(postings))
	kept := make(map[string]int)
	for _, p := range postings {
		fp := p.Fingerprint()
		if i, ok := kept[fp]; ok {
			out[i].Merge(p)
			continue
		}
		if _, ok := d.seen[fp]; ok {
			continue
		}
		d.seen[fp] = struct{}{}
		kept[fp] = len(out)
		out = append(out, p)
	}
	return out
}

func (d *dedupSet) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
