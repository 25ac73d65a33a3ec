// Package propagate implements self-join customer-ID backfill: within one
// table, rows sharing a normalized company name inherit the identifier the
// group already agrees on.
package propagate

import (
	"sort"

	"go.uber.org/zap"

	"github.com/nwcapparel/catalog-sync/internal/resolve"
	"github.com/nwcapparel/catalog-sync/pkg/caspio"
)

// Sentinel names the two representations of "no identifier" in the store.
type Sentinel string

const (
	SentinelNull Sentinel = "null"
	SentinelZero Sentinel = "zero"
)

// Row is the slice of a source row the propagator needs: the literal company
// spelling and the identifier (0 meaning empty under either sentinel).
type Row struct {
	CompanyName string
	CustomerID  int
}

// Opts configures a propagation plan.
type Opts struct {
	Table     string
	NameField string // defaults to CompanyName
	IDField   string // defaults to ID_Customer
}

// UpdateOp is one pending store update. The store matches literal strings
// only, so each distinct spelling in a group gets its own predicate, and each
// spelling is probed under both empty-value sentinels.
type UpdateOp struct {
	Table    string
	Spelling string
	Sentinel Sentinel
	Where    string
	IDField  string
	SetID    int
}

// Fields returns the partial update payload for the op.
func (op UpdateOp) Fields() map[string]any {
	return map[string]any{op.IDField: op.SetID}
}

// Plan is the dry-run output: every pending update plus counters.
type Plan struct {
	Ops            []UpdateOp
	Groups         int            // groups examined
	GroupsFillable int            // groups with a winner and at least one empty row
	RowsFillable   int            // rows that would receive an identifier
	PerSpelling    map[string]int // empty rows per literal spelling
}

// Build groups rows by normalized company name, elects each group's majority
// identifier, and emits update ops for the rows still missing one. Rows with
// a non-empty identifier are never touched. Ties on the majority count go to
// the smallest identifier, so a plan is reproducible across runs.
func Build(opts Opts, rows []Row) *Plan {
	if opts.NameField == "" {
		opts.NameField = "CompanyName"
	}
	if opts.IDField == "" {
		opts.IDField = "ID_Customer"
	}

	type group struct {
		idCounts map[int]int
		empties  map[string]int // literal spelling -> empty row count
		fillable int
	}
	groups := make(map[string]*group)

	for _, r := range rows {
		key := resolve.Normalize(r.CompanyName)
		if key == "" {
			continue
		}
		g := groups[key]
		if g == nil {
			g = &group{idCounts: make(map[int]int), empties: make(map[string]int)}
			groups[key] = g
		}
		if r.CustomerID != 0 {
			g.idCounts[r.CustomerID]++
		} else {
			g.empties[r.CompanyName]++
			g.fillable++
		}
	}

	plan := &Plan{PerSpelling: make(map[string]int)}
	plan.Groups = len(groups)

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		g := groups[key]
		best := electID(g.idCounts)
		if best == 0 || g.fillable == 0 {
			continue
		}

		plan.GroupsFillable++
		plan.RowsFillable += g.fillable

		spellings := make([]string, 0, len(g.empties))
		for s := range g.empties {
			spellings = append(spellings, s)
		}
		sort.Strings(spellings)

		for _, spelling := range spellings {
			plan.PerSpelling[spelling] += g.empties[spelling]
			plan.Ops = append(plan.Ops,
				UpdateOp{
					Table:    opts.Table,
					Spelling: spelling,
					Sentinel: SentinelNull,
					Where:    caspio.Where().Eq(opts.NameField, spelling).IsNull(opts.IDField).String(),
					IDField:  opts.IDField,
					SetID:    best,
				},
				UpdateOp{
					Table:    opts.Table,
					Spelling: spelling,
					Sentinel: SentinelZero,
					Where:    caspio.Where().Eq(opts.NameField, spelling).Eq(opts.IDField, 0).String(),
					IDField:  opts.IDField,
					SetID:    best,
				},
			)
		}
	}

	zap.L().Info("propagation plan built",
		zap.String("table", opts.Table),
		zap.Int("groups", plan.Groups),
		zap.Int("groups_fillable", plan.GroupsFillable),
		zap.Int("rows_fillable", plan.RowsFillable),
		zap.Int("ops", len(plan.Ops)),
	)
	return plan
}

// electID picks the identifier with the highest occurrence count. Equal
// counts resolve to the numerically smallest identifier.
func electID(counts map[int]int) int {
	best, bestCount := 0, 0
	for id, n := range counts {
		if n > bestCount || (n == bestCount && best != 0 && id < best) {
			best, bestCount = id, n
		}
	}
	return best
}
