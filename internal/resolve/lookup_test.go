package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildMap(t *testing.T, sources ...[]Entry) *IdentityMap {
	t.Helper()
	b := NewBuilder()
	for i, entries := range sources {
		b.AddSource(sourceName(i), entries)
	}
	return b.Build()
}

func sourceName(i int) string {
	names := []string{"mapping_file", "customers", "art_requests", "orders"}
	if i < len(names) {
		return names[i]
	}
	return "extra"
}

func TestLookup_ExactMatch(t *testing.T) {
	m := buildMap(t, []Entry{{CompanyName: "Acme Inc", CustomerID: 100}})

	id := m.Lookup("ACME, Inc.")
	require.NotNil(t, id)
	assert.Equal(t, 100, id.CustomerID)
	assert.Equal(t, "Acme Inc", id.CanonicalName)
	assert.Equal(t, MatchExact, id.Match)
}

func TestLookup_HigherRankWins(t *testing.T) {
	// Rank 0 claims "acme" first; rank 1's conflicting id is ignored.
	m := buildMap(t,
		[]Entry{{CompanyName: "Acme Inc", CustomerID: 100}},
		[]Entry{{CompanyName: "ACME", CustomerID: 200}},
	)

	id := m.Lookup("acme")
	require.NotNil(t, id)
	assert.Equal(t, 100, id.CustomerID)
	assert.Equal(t, 0, id.SourceRank)
}

func TestLookup_RankIndependentOfEntryOrder(t *testing.T) {
	// Swapping which source comes first flips the winner: authority is
	// positional, not data-dependent.
	m := buildMap(t,
		[]Entry{{CompanyName: "ACME", CustomerID: 200}},
		[]Entry{{CompanyName: "Acme Inc", CustomerID: 100}},
	)

	id := m.Lookup("acme")
	require.NotNil(t, id)
	assert.Equal(t, 200, id.CustomerID)
}

func TestLookup_MissReturnsNil(t *testing.T) {
	m := buildMap(t, []Entry{{CompanyName: "Acme Inc", CustomerID: 100}})
	assert.Nil(t, m.Lookup("Totally Unrelated Name"))
}

func TestLookup_ShortNamesNeverFuzzy(t *testing.T) {
	m := buildMap(t, []Entry{{CompanyName: "Acme Fabrication", CustomerID: 100}})
	// "acmef" is 5 normalized chars, below the fuzzy floor, and not exact.
	assert.Nil(t, m.Lookup("acmef"))
}

func TestLookup_PrefixMatch(t *testing.T) {
	m := buildMap(t, []Entry{{CompanyName: "Northwest Embroidery", CustomerID: 310}})

	id := m.Lookup("Northwest Embroidery Services")
	require.NotNil(t, id)
	assert.Equal(t, 310, id.CustomerID)
	assert.Equal(t, MatchPrefix, id.Match)
}

func TestLookup_ProbePrefixOfKey(t *testing.T) {
	m := buildMap(t, []Entry{{CompanyName: "Evergreen Landscaping", CustomerID: 42}})

	// Normalized probe "evergreen land" (14 chars) is a prefix of the key.
	id := m.Lookup("Evergreen Land")
	require.NotNil(t, id)
	assert.Equal(t, 42, id.CustomerID)
	assert.Equal(t, MatchPrefix, id.Match)
}

func TestLookup_FuzzyTieBreakIsDeterministic(t *testing.T) {
	// Both keys share the 15-char probe "pacific northwe"; the
	// lexicographically smaller key must win every time.
	for range 20 {
		m := buildMap(t, []Entry{
			{CompanyName: "Pacific Northwest Builders", CustomerID: 2},
			{CompanyName: "Pacific Northwest Apparel", CustomerID: 1},
		})
		id := m.Lookup("Pacific Northwest Printing")
		require.NotNil(t, id)
		assert.Equal(t, 1, id.CustomerID)
	}
}

func TestLookup_DoesNotMutateMap(t *testing.T) {
	m := buildMap(t, []Entry{{CompanyName: "Acme Inc", CustomerID: 100}})
	before := m.Size()

	m.Lookup("acme")
	m.Lookup("Acme Incorporated Worldwide")
	m.Lookup("missing")

	assert.Equal(t, before, m.Size())
}

func TestBuilder_SkipsEmptyAndZeroEntries(t *testing.T) {
	m := buildMap(t, []Entry{
		{CompanyName: "", CustomerID: 5},
		{CompanyName: "Acme Inc", CustomerID: 0},
		{CompanyName: "Real Customer Co", CustomerID: 9},
	})
	assert.Equal(t, 1, m.Size())
	assert.Equal(t, 1, m.SourceCounts()["mapping_file"])
}
