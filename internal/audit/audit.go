// Package audit classifies order-attribution conflicts against the resolved
// customer ownership map built from the sales rep rosters.
package audit

import (
	"sort"

	"go.uber.org/zap"

	"github.com/nwcapparel/catalog-sync/internal/model"
)

// CatchAllOwner is the bucket absorbing customers on no rep's roster but
// still house-managed.
const CatchAllOwner = "House"

// Roster is one ranked customer-to-owner assignment source.
type Roster struct {
	Owner       string
	CustomerIDs []int
}

// Ownership maps a customer id to its owning rep (or CatchAllOwner).
// Customers absent from the map are unassigned.
type Ownership map[int]string

// BuildOwnership merges ranked rosters into one ownership map. Earlier
// rosters win contested customers; the catch-all list is merged last and
// never displaces a tracked rep.
func BuildOwnership(tracked []Roster, catchAll []int) Ownership {
	own := make(Ownership)
	for _, r := range tracked {
		for _, id := range r.CustomerIDs {
			if id == 0 {
				continue
			}
			if _, claimed := own[id]; !claimed {
				own[id] = r.Owner
			}
		}
	}
	for _, id := range catchAll {
		if id == 0 {
			continue
		}
		if _, claimed := own[id]; !claimed {
			own[id] = CatchAllOwner
		}
	}
	return own
}

// CustomerSummary aggregates one customer's orders within a conflict bucket.
type CustomerSummary struct {
	CustomerID  int      `json:"customer_id"`
	Owner       string   `json:"owner"` // "" when unassigned
	OrderCount  int      `json:"order_count"`
	TotalAmount float64  `json:"total_amount"`
	Writers     []string `json:"writers"`
}

// Report is the outcome of one audit run. Outbound and Inbound are keyed by
// the tracked rep being evaluated; buckets are sorted by total amount
// descending.
type Report struct {
	Outbound     map[string][]CustomerSummary `json:"outbound"`
	Inbound      map[string][]CustomerSummary `json:"inbound"`
	Unassigned   []CustomerSummary            `json:"unassigned"`
	OrderCount   int                          `json:"order_count"`
	DupesDropped int                          `json:"dupes_dropped"`
}

// Auditor evaluates orders against an ownership map for a set of tracked reps.
type Auditor struct {
	ownership Ownership
	tracked   []string
	log       *zap.Logger
}

// NewAuditor creates an auditor. tracked names the reps to evaluate; the
// catch-all bucket is part of the ownership map but is never evaluated as a
// rep itself.
func NewAuditor(ownership Ownership, tracked []string) *Auditor {
	return &Auditor{
		ownership: ownership,
		tracked:   tracked,
		log:       zap.L().With(zap.String("component", "audit")),
	}
}

// Run classifies the order stream. Orders are deduplicated by order id first;
// overlapping date-chunked fetches routinely return the same order twice.
func (a *Auditor) Run(orders []model.OrderRow) *Report {
	deduped := model.DedupeOrders(orders)
	rep := &Report{
		Outbound:     make(map[string][]CustomerSummary, len(a.tracked)),
		Inbound:      make(map[string][]CustomerSummary, len(a.tracked)),
		OrderCount:   len(deduped),
		DupesDropped: len(orders) - len(deduped),
	}

	for _, owner := range a.tracked {
		var outbound, inbound []model.OrderRow
		for _, o := range deduped {
			assigned := a.ownership[o.IDCustomer]
			switch {
			case o.Writer == owner && assigned != owner:
				outbound = append(outbound, o)
			case assigned == owner && o.Writer != "" && o.Writer != owner:
				inbound = append(inbound, o)
			}
		}
		rep.Outbound[owner] = a.aggregate(outbound)
		rep.Inbound[owner] = a.aggregate(inbound)
	}

	var unassigned []model.OrderRow
	for _, o := range deduped {
		if _, ok := a.ownership[o.IDCustomer]; !ok {
			unassigned = append(unassigned, o)
		}
	}
	rep.Unassigned = a.aggregate(unassigned)

	a.log.Info("audit complete",
		zap.Int("orders", rep.OrderCount),
		zap.Int("dupes_dropped", rep.DupesDropped),
		zap.Int("reps", len(a.tracked)),
		zap.Int("unassigned_customers", len(rep.Unassigned)),
	)
	return rep
}

// aggregate folds orders into per-customer summaries sorted by total amount
// descending, then customer id for a stable order.
func (a *Auditor) aggregate(orders []model.OrderRow) []CustomerSummary {
	byCustomer := make(map[int]*CustomerSummary)
	writers := make(map[int]map[string]bool)
	for _, o := range orders {
		s, ok := byCustomer[o.IDCustomer]
		if !ok {
			s = &CustomerSummary{CustomerID: o.IDCustomer, Owner: a.ownership[o.IDCustomer]}
			byCustomer[o.IDCustomer] = s
			writers[o.IDCustomer] = make(map[string]bool)
		}
		s.OrderCount++
		s.TotalAmount += o.Subtotal
		if o.Writer != "" {
			writers[o.IDCustomer][o.Writer] = true
		}
	}

	out := make([]CustomerSummary, 0, len(byCustomer))
	for id, s := range byCustomer {
		for w := range writers[id] {
			s.Writers = append(s.Writers, w)
		}
		sort.Strings(s.Writers)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalAmount != out[j].TotalAmount {
			return out[i].TotalAmount > out[j].TotalAmount
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	return out
}
