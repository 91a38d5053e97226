// Package match resolves player names from the external scoring source
// against the roster/free-agent pool. Matching trades recall for
// precision: a wrong match silently corrupts value computation, so any
// ambiguity resolves to "no match", never to a guess.
package match

import (
	"sort"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/sirupsen/logrus"

	"github.com/courtvision/lineup-service/internal/namekey"
	"github.com/courtvision/lineup-service/pkg/logger"
)

// Tier identifies which strategy resolved a match.
type Tier int

const (
	TierNone Tier = iota
	TierExact
	TierFuzzy
	TierInitial
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierFuzzy:
		return "fuzzy"
	case TierInitial:
		return "initial"
	default:
		return "none"
	}
}

// Candidate is one pool entry with its comparison keys precomputed.
type Candidate struct {
	DisplayName string
	Key         string
	InitialKey  string
}

// Result is the tagged outcome of a single match attempt. Index is the
// position of the matched candidate in the pool, -1 for no match.
type Result struct {
	Tier  Tier
	Index int
	Ratio float64
}

// Matched reports whether any tier resolved a unique candidate.
func (r Result) Matched() bool {
	return r.Tier != TierNone && r.Index >= 0
}

// Matcher applies the three-tier name matching strategy.
type Matcher struct {
	threshold float64
	lev       *metrics.Levenshtein
	log       *logrus.Entry
}

// NewMatcher creates a matcher with the given fuzzy-ratio acceptance
// threshold on a 0-100 scale.
func NewMatcher(fuzzyThreshold int) *Matcher {
	return &Matcher{
		threshold: float64(fuzzyThreshold),
		lev:       metrics.NewLevenshtein(),
		log:       logger.WithComponent("matcher"),
	}
}

// BuildCandidates precomputes comparison keys for a pool of display
// names. Names that fail normalization produce empty keys and are never
// matched.
func BuildCandidates(displayNames []string) []Candidate {
	pool := make([]Candidate, len(displayNames))
	for i, name := range displayNames {
		key, err := namekey.Normalize(name)
		if err != nil {
			key = ""
		}
		pool[i] = Candidate{
			DisplayName: name,
			Key:         key,
			InitialKey:  namekey.LastInitialKey(name),
		}
	}
	return pool
}

// Match resolves a source name against the candidate pool. Tiers are
// tried in strict order; the first tier producing exactly one candidate
// wins. No unique candidate at any tier returns a TierNone result.
func (m *Matcher) Match(sourceName string, pool []Candidate) Result {
	return m.match(sourceName, pool, nil)
}

func (m *Matcher) match(sourceName string, pool []Candidate, used map[int]bool) Result {
	key, err := namekey.Normalize(sourceName)
	if err != nil {
		return Result{Tier: TierNone, Index: -1}
	}

	// Tier 1: exact normalized match. Duplicate keys in the pool are
	// ambiguous and fall through.
	exactIdx := -1
	exactCount := 0
	for i, c := range pool {
		if used[i] || c.Key == "" {
			continue
		}
		if c.Key == key {
			exactIdx = i
			exactCount++
		}
	}
	if exactCount == 1 {
		return Result{Tier: TierExact, Index: exactIdx, Ratio: 100}
	}

	// Tier 2: fuzzy ratio at or above the threshold, unique.
	fuzzyIdx := -1
	fuzzyCount := 0
	bestRatio := 0.0
	for i, c := range pool {
		if used[i] || c.Key == "" {
			continue
		}
		ratio := strutil.Similarity(key, c.Key, m.lev) * 100
		if ratio >= m.threshold {
			fuzzyCount++
			if ratio > bestRatio || fuzzyIdx < 0 {
				fuzzyIdx = i
			}
		}
		if ratio > bestRatio {
			bestRatio = ratio
		}
	}
	if fuzzyCount == 1 {
		return Result{Tier: TierFuzzy, Index: fuzzyIdx, Ratio: bestRatio}
	}

	// Tier 3: last name + first initial, unique.
	initKey := namekey.LastInitialKey(sourceName)
	initIdx := -1
	initCount := 0
	for i, c := range pool {
		if used[i] || c.InitialKey == "" {
			continue
		}
		if c.InitialKey == initKey {
			initIdx = i
			initCount++
		}
	}
	if initCount == 1 {
		return Result{Tier: TierInitial, Index: initIdx, Ratio: bestRatio}
	}

	return Result{Tier: TierNone, Index: -1, Ratio: bestRatio}
}

// MatchAll resolves every source name against the pool, consuming each
// candidate at most once. Source names are processed in sorted order so
// the outcome is deterministic regardless of input ordering. Returns the
// candidate-index -> source-name mapping plus the unmatched source names.
func (m *Matcher) MatchAll(sourceNames []string, pool []Candidate) (map[int]string, []string) {
	ordered := make([]string, len(sourceNames))
	copy(ordered, sourceNames)
	sort.Strings(ordered)

	matched := make(map[int]string)
	used := make(map[int]bool)
	var unmatched []string

	for _, name := range ordered {
		res := m.match(name, pool, used)
		if !res.Matched() {
			unmatched = append(unmatched, name)
			continue
		}
		matched[res.Index] = name
		used[res.Index] = true
	}

	m.log.WithFields(logrus.Fields{
		"source_names": len(sourceNames),
		"matched":      len(matched),
		"unmatched":    len(unmatched),
	}).Debug("Name matching complete")

	return matched, unmatched
}
