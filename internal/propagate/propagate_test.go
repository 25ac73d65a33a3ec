package propagate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_MajorityWins(t *testing.T) {
	plan := Build(Opts{Table: "ArtRequests"}, []Row{
		{CompanyName: "Acme Inc", CustomerID: 100},
		{CompanyName: "Acme Inc", CustomerID: 100},
		{CompanyName: "ACME", CustomerID: 100},
		{CompanyName: "Acme Inc", CustomerID: 200},
		{CompanyName: "Acme Inc.", CustomerID: 0},
	})

	require.Len(t, plan.Ops, 2) // one spelling, two sentinels
	assert.Equal(t, 100, plan.Ops[0].SetID)
	assert.Equal(t, 100, plan.Ops[1].SetID)
}

func TestBuild_TieGoesToSmallestID(t *testing.T) {
	plan := Build(Opts{Table: "ArtRequests"}, []Row{
		{CompanyName: "Acme", CustomerID: 200},
		{CompanyName: "Acme", CustomerID: 100},
		{CompanyName: "Acme", CustomerID: 0},
	})
	require.NotEmpty(t, plan.Ops)
	assert.Equal(t, 100, plan.Ops[0].SetID)
}

func TestBuild_NeverTouchesFilledRows(t *testing.T) {
	// Every row already has an identifier: nothing to update.
	plan := Build(Opts{Table: "ArtRequests"}, []Row{
		{CompanyName: "Acme", CustomerID: 100},
		{CompanyName: "Acme", CustomerID: 200},
	})
	assert.Empty(t, plan.Ops)
	assert.Equal(t, 0, plan.RowsFillable)
	assert.Equal(t, 1, plan.Groups)
}

func TestBuild_GroupWithNoKnownIDIsSkipped(t *testing.T) {
	plan := Build(Opts{Table: "ArtRequests"}, []Row{
		{CompanyName: "Mystery Shop", CustomerID: 0},
		{CompanyName: "Mystery Shop", CustomerID: 0},
	})
	assert.Empty(t, plan.Ops)
	assert.Equal(t, 0, plan.GroupsFillable)
}

func TestBuild_OpsPerLiteralSpellingAndSentinel(t *testing.T) {
	// Three rows missing an id under two distinct spellings: two spellings
	// x two sentinels = four ops, regardless of row counts.
	plan := Build(Opts{Table: "ArtRequests"}, []Row{
		{CompanyName: "Acme Inc", CustomerID: 100},
		{CompanyName: "Acme Inc", CustomerID: 0},
		{CompanyName: "ACME, Inc.", CustomerID: 0},
		{CompanyName: "ACME, Inc.", CustomerID: 0},
	})

	require.Len(t, plan.Ops, 4)
	assert.Equal(t, 3, plan.RowsFillable)
	assert.Equal(t, 1, plan.PerSpelling["Acme Inc"])
	assert.Equal(t, 2, plan.PerSpelling["ACME, Inc."])

	// Each spelling carries a null probe and a zero probe.
	bySpelling := map[string][]Sentinel{}
	for _, op := range plan.Ops {
		bySpelling[op.Spelling] = append(bySpelling[op.Spelling], op.Sentinel)
	}
	assert.ElementsMatch(t, []Sentinel{SentinelNull, SentinelZero}, bySpelling["Acme Inc"])
	assert.ElementsMatch(t, []Sentinel{SentinelNull, SentinelZero}, bySpelling["ACME, Inc."])
}

func TestBuild_WhereClausesTargetLiterals(t *testing.T) {
	plan := Build(Opts{Table: "ArtRequests"}, []Row{
		{CompanyName: "Acme Inc", CustomerID: 100},
		{CompanyName: "Acme Inc", CustomerID: 0},
	})

	require.Len(t, plan.Ops, 2)
	assert.Equal(t, "CompanyName='Acme Inc' AND ID_Customer IS NULL", plan.Ops[0].Where)
	assert.Equal(t, "CompanyName='Acme Inc' AND ID_Customer=0", plan.Ops[1].Where)
	assert.Equal(t, map[string]any{"ID_Customer": 100}, plan.Ops[0].Fields())
}

func TestBuild_GroupsByNormalizedName(t *testing.T) {
	// "Acme Inc" and "ACME" are one group; "Coast Guard" is another.
	plan := Build(Opts{Table: "ArtRequests"}, []Row{
		{CompanyName: "Acme Inc", CustomerID: 100},
		{CompanyName: "ACME", CustomerID: 0},
		{CompanyName: "Coast Guard", CustomerID: 55},
	})
	assert.Equal(t, 2, plan.Groups)
	require.Len(t, plan.Ops, 2)
	assert.Equal(t, "ACME", plan.Ops[0].Spelling)
}

func TestBuild_DeterministicOrdering(t *testing.T) {
	rows := []Row{
		{CompanyName: "Zebra Print", CustomerID: 9},
		{CompanyName: "Zebra Print", CustomerID: 0},
		{CompanyName: "Acme Inc", CustomerID: 100},
		{CompanyName: "Acme Inc", CustomerID: 0},
	}
	first := Build(Opts{Table: "T"}, rows)
	for range 10 {
		again := Build(Opts{Table: "T"}, rows)
		assert.Equal(t, first.Ops, again.Ops)
	}
	// sorted by normalized group key: acme before zebra
	assert.Equal(t, "Acme Inc", first.Ops[0].Spelling)
}
