package merge

import (
	"sort"

	"go.uber.org/zap"

	"github.com/nwcapparel/catalog-sync/internal/model"
	"github.com/nwcapparel/catalog-sync/internal/resolve"
)

// Input carries the fetched source rows for one merge run. Backbone rows map
// one-to-one to output variants; secondary rows are indexed by design number.
type Input struct {
	Backbone  []model.SourceRow
	Secondary map[string][]model.SourceRow
}

// Stats is the mandatory enrichment summary for a merge run.
type Stats struct {
	BackboneRows    int            `json:"backbone_rows"`
	SourceRows      map[string]int `json:"source_rows"`
	Appended        map[string]int `json:"appended"`
	IDsFrom         map[string]int `json:"ids_from"`
	PrefixMatches   int            `json:"prefix_matches"`
	IndirectCompany int            `json:"indirect_company"`
	NamesCorrected  int            `json:"names_corrected"`
	StillMissing    int            `json:"still_missing"`
	TotalRecords    int            `json:"total_records"`
	CoveragePct     float64        `json:"coverage_pct"`
}

// idFromLookup labels identifiers filled from the identity map in IDsFrom.
const idFromLookup = "lookup"

// Merger assembles unified catalog records from the configured sources.
type Merger struct {
	chains *Chains
	idents *resolve.IdentityMap
	log    *zap.Logger
}

// NewMerger creates a merger over the given chain config and identity map.
func NewMerger(chains *Chains, idents *resolve.IdentityMap) *Merger {
	return &Merger{
		chains: chains,
		idents: idents,
		log:    zap.L().With(zap.String("component", "merge")),
	}
}

// secEntry is the collapsed view of one design number within one secondary
// source. Duplicate rows collapse first-occurrence-wins per field, with a
// non-empty value beating an empty one.
type secEntry struct {
	fields     map[string]string
	customerID int
}

type secIndex map[string]map[int]*secEntry

// Run merges the inputs into unified records. Every backbone row yields one
// record; secondary sources contribute records only for design numbers not
// already emitted.
func (m *Merger) Run(in Input) ([]model.UnifiedRecord, *Stats) {
	stats := &Stats{
		BackboneRows: len(in.Backbone),
		SourceRows:   map[string]int{m.chains.Backbone: len(in.Backbone)},
		Appended:     map[string]int{},
		IDsFrom:      map[string]int{},
	}
	idx := m.indexSecondaries(in.Secondary, stats)

	out := make([]model.UnifiedRecord, 0, len(in.Backbone))
	emitted := make(map[int]bool, len(in.Backbone))
	variantSeq := make(map[int]int)

	for _, row := range in.Backbone {
		key := row.NaturalKey()
		rec := m.assemble(row, key, idx, 0, stats)
		rec.VariantIndex = variantSeq[key]
		variantSeq[key]++
		rec.SourcedFrom = m.chains.Backbone
		out = append(out, rec)
		emitted[key] = true
	}

	for i, source := range m.chains.Precedence {
		byKey := idx[source]
		keys := make([]int, 0, len(byKey))
		for k := range byKey {
			if !emitted[k] {
				keys = append(keys, k)
			}
		}
		sort.Ints(keys)
		for _, key := range keys {
			rec := m.assemble(nil, key, idx, i+1, stats)
			rec.SourcedFrom = source
			out = append(out, rec)
			emitted[key] = true
			stats.Appended[source]++
		}
	}

	stats.TotalRecords = len(out)
	if stats.TotalRecords > 0 {
		stats.CoveragePct = float64(stats.TotalRecords-stats.StillMissing) / float64(stats.TotalRecords) * 100
	}
	m.log.Info("merge complete",
		zap.Int("backbone_rows", stats.BackboneRows),
		zap.Int("total_records", stats.TotalRecords),
		zap.Int("still_missing", stats.StillMissing),
		zap.Float64("coverage_pct", stats.CoveragePct),
	)
	return out, stats
}

// assemble resolves every configured field for one output record. row is the
// backbone row, or nil during the secondary append pass. minPrecedence skips
// chain links from the backbone and higher-precedence sources so an appended
// record only draws on its own source and lower ones.
func (m *Merger) assemble(row model.SourceRow, key int, idx secIndex, minPrecedence int, stats *Stats) model.UnifiedRecord {
	vals := make(map[string]string, len(m.chains.Fields))
	companyLink := -1
	for _, spec := range m.chains.Fields {
		v, link := m.resolveField(spec, row, key, idx, minPrecedence)
		if spec.MaxLen > 0 {
			v = model.Clamp(v, spec.MaxLen)
		}
		vals[spec.Name] = v
		if spec.Name == companyField {
			companyLink = link
		}
	}

	company := vals[companyField]
	id, idSource := m.resolveID(row, key, idx, minPrecedence)
	custType := ""

	if company != "" {
		if ident := m.idents.Lookup(company); ident != nil {
			if id == 0 && ident.CustomerID != 0 {
				id = ident.CustomerID
				idSource = idFromLookup
				if ident.Match == resolve.MatchPrefix {
					stats.PrefixMatches++
				}
				if companyLink > 0 {
					stats.IndirectCompany++
				}
			}
			if ident.CanonicalName != "" && ident.CanonicalName != company {
				company = model.Clamp(ident.CanonicalName, m.chains.Company().MaxLen)
				stats.NamesCorrected++
			}
			if ident.CustomerID == id {
				custType = ident.CustomerType
			}
		}
	}

	if id == 0 {
		stats.StillMissing++
	} else {
		stats.IDsFrom[idSource]++
	}

	return model.UnifiedRecord{
		DesignNumber: key,
		CompanyName:  company,
		IDCustomer:   id,
		CustomerType: custType,
		Title:        vals["Title"],
		StyleNumber:  vals["StyleNumber"],
		GarmentColor: vals["GarmentColor"],
		StitchCount:  model.SafeInt(vals["StitchCount"]),
		ImageURL:     vals["ImageURL"],
		Notes:        vals["Notes"],
	}
}

// resolveField walks a chain and returns the first non-empty value along with
// the index of the winning link, or -1 when every link is empty.
func (m *Merger) resolveField(spec FieldSpec, row model.SourceRow, key int, idx secIndex, minPrecedence int) (string, int) {
	for i, link := range spec.Chain {
		if m.chains.sourceIndex(link.Source) < minPrecedence {
			continue
		}
		var v string
		if link.Source == m.chains.Backbone {
			if row == nil {
				continue
			}
			v = row.Field(link.Field)
		} else if e, ok := idx[link.Source][key]; ok {
			v = e.fields[link.Field]
		}
		if v != "" {
			return v, i
		}
	}
	return "", -1
}

// resolveID finds a direct identifier before the identity map is consulted:
// the backbone row's own, then each secondary source in precedence order.
func (m *Merger) resolveID(row model.SourceRow, key int, idx secIndex, minPrecedence int) (int, string) {
	if row != nil && row.CustomerID() != 0 {
		return row.CustomerID(), m.chains.Backbone
	}
	for i, source := range m.chains.Precedence {
		if i+1 < minPrecedence {
			continue
		}
		if e, ok := idx[source][key]; ok && e.customerID != 0 {
			return e.customerID, source
		}
	}
	return 0, ""
}

func (m *Merger) indexSecondaries(secondary map[string][]model.SourceRow, stats *Stats) secIndex {
	// fields each source can contribute, per the chain config
	contrib := make(map[string]map[string]bool)
	for _, spec := range m.chains.Fields {
		for _, link := range spec.Chain {
			if link.Source == m.chains.Backbone {
				continue
			}
			if contrib[link.Source] == nil {
				contrib[link.Source] = make(map[string]bool)
			}
			contrib[link.Source][link.Field] = true
		}
	}

	idx := make(secIndex, len(secondary))
	for source, rows := range secondary {
		stats.SourceRows[source] = len(rows)
		byKey := make(map[int]*secEntry)
		for _, row := range rows {
			key := row.NaturalKey()
			if key == 0 {
				continue
			}
			e, ok := byKey[key]
			if !ok {
				e = &secEntry{fields: make(map[string]string)}
				byKey[key] = e
			}
			for f := range contrib[source] {
				if e.fields[f] == "" {
					e.fields[f] = row.Field(f)
				}
			}
			if e.customerID == 0 {
				e.customerID = row.CustomerID()
			}
		}
		idx[source] = byKey
	}
	return idx
}
