package resolve

import (
	"sort"

	"go.uber.org/zap"
)

// MatchType describes how a lookup resolved.
type MatchType string

const (
	MatchExact  MatchType = "exact"
	MatchPrefix MatchType = "prefix"
)

// Fuzzy matching parameters: names shorter than minFuzzyLen never fuzzy-match,
// and probes are capped at probeCap characters.
const (
	minFuzzyLen = 8
	probeCap    = 15
)

// Identity is the resolved canonical identity for a normalized company name.
type Identity struct {
	CustomerID    int
	CanonicalName string
	CustomerType  string
	SourceRank    int
	Match         MatchType
}

// Entry is one (company name, customer id) pair contributed by a source.
type Entry struct {
	CompanyName  string
	CustomerID   int
	CustomerType string
}

// IdentityMap maps normalized company names to identities. Built once per run
// from ranked sources; lookups never mutate it.
type IdentityMap struct {
	entries map[string]Identity
	// sorted keys, kept for deterministic fuzzy scans
	keys        []string
	sourceCount map[string]int
}

// Builder accumulates ranked sources for an IdentityMap. Sources must be
// added from most to least authoritative; the first source to claim a
// normalized key wins and later sources cannot overwrite it.
type Builder struct {
	m        *IdentityMap
	nextRank int
}

// NewBuilder creates an empty identity map builder.
func NewBuilder() *Builder {
	return &Builder{
		m: &IdentityMap{
			entries:     make(map[string]Identity),
			sourceCount: make(map[string]int),
		},
	}
}

// AddSource merges one source's entries at the next rank. Entries with an
// empty name or a zero customer id are skipped at this ingestion boundary.
func (b *Builder) AddSource(name string, entries []Entry) *Builder {
	rank := b.nextRank
	b.nextRank++

	added := 0
	for _, e := range entries {
		key := Normalize(e.CompanyName)
		if key == "" || e.CustomerID == 0 {
			continue
		}
		if _, claimed := b.m.entries[key]; claimed {
			continue
		}
		b.m.entries[key] = Identity{
			CustomerID:    e.CustomerID,
			CanonicalName: e.CompanyName,
			CustomerType:  e.CustomerType,
			SourceRank:    rank,
		}
		b.m.keys = append(b.m.keys, key)
		added++
	}
	b.m.sourceCount[name] = added

	zap.L().Debug("identity map: source merged",
		zap.String("source", name),
		zap.Int("rank", rank),
		zap.Int("entries", len(entries)),
		zap.Int("added", added),
	)
	return b
}

// Build finalizes the map. The builder must not be reused afterwards.
func (b *Builder) Build() *IdentityMap {
	sort.Strings(b.m.keys)
	return b.m
}

// Size returns the number of distinct normalized names in the map.
func (m *IdentityMap) Size() int { return len(m.entries) }

// SourceCounts returns how many keys each source contributed.
func (m *IdentityMap) SourceCounts() map[string]int { return m.sourceCount }

// Lookup resolves a company name to an identity. Exact match on the
// normalized name first; otherwise, for names of at least 8 normalized
// characters, a prefix probe of up to 15 characters is compared against every
// key. All candidates are collected and ranked by (overlap length desc,
// key asc) so the result does not depend on map iteration order.
// Returns nil when nothing matches.
func (m *IdentityMap) Lookup(companyName string) *Identity {
	key := Normalize(companyName)
	if key == "" {
		return nil
	}

	if id, ok := m.entries[key]; ok {
		id.Match = MatchExact
		return &id
	}

	if len(key) < minFuzzyLen {
		return nil
	}

	probe := key
	if len(probe) > probeCap {
		probe = probe[:probeCap]
	}

	best := ""
	bestOverlap := 0
	for _, candidate := range m.keys {
		overlap, ok := prefixOverlap(probe, candidate)
		if !ok {
			continue
		}
		// keys are sorted asc, so strict > keeps the lowest key on ties
		if overlap > bestOverlap {
			best = candidate
			bestOverlap = overlap
		}
	}
	if best == "" {
		return nil
	}

	id := m.entries[best]
	id.Match = MatchPrefix
	return &id
}

// prefixOverlap reports whether probe and key match under the prefix rule:
// the probe is a prefix of the key, or the key's own probe (its first 15
// characters at most) is a prefix of the probe. Returns the overlap length.
func prefixOverlap(probe, key string) (int, bool) {
	keyProbe := key
	if len(keyProbe) > probeCap {
		keyProbe = keyProbe[:probeCap]
	}

	switch {
	case len(probe) <= len(key) && key[:len(probe)] == probe:
		return len(probe), true
	case len(keyProbe) <= len(probe) && probe[:len(keyProbe)] == keyProbe:
		return len(keyProbe), true
	default:
		return 0, false
	}
}
