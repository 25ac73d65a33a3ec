package model

import "time"

// OrderRow is one order attribution row from the ODBC orders table.
type OrderRow struct {
	IDOrder    int
	IDCustomer int
	Writer     string // CustomerServiceRep on the order
	Subtotal   float64
	Placed     time.Time
}

// OrderRowFromRecord validates a raw order row. The order date arrives as a
// Caspio date string; parse failures leave Placed zero rather than erroring.
func OrderRowFromRecord(r Record) OrderRow {
	row := OrderRow{
		IDOrder:    r.Int("ID_Order"),
		IDCustomer: r.Int("id_Customer"),
		Writer:     r.Str("CustomerServiceRep"),
		Subtotal:   r.Float("cur_Subtotal"),
	}
	if s := r.Str("date_OrderPlaced"); s != "" {
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				row.Placed = t
				break
			}
		}
	}
	return row
}

// DedupeOrders drops duplicate orders by ID_Order, keeping the first
// occurrence. Overlapping date-chunked fetches can return the same order in
// two chunks.
func DedupeOrders(orders []OrderRow) []OrderRow {
	seen := make(map[int]bool, len(orders))
	out := orders[:0:0]
	for _, o := range orders {
		if o.IDOrder != 0 && seen[o.IDOrder] {
			continue
		}
		seen[o.IDOrder] = true
		out = append(out, o)
	}
	return out
}
