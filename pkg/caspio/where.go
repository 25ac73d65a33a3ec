package caspio

import (
	"fmt"
	"strings"
	"time"
)

// Criteria builds a q.where expression as a conjunction of field terms.
// The record store matches on literal values only, so callers that need
// name-insensitive matching must issue one predicate per literal spelling.
type Criteria struct {
	terms []string
}

// Where starts an empty criteria set.
func Where() *Criteria {
	return &Criteria{}
}

// Eq adds a `field = value` term. Strings are quoted with embedded single
// quotes doubled; integers and floats are rendered bare.
func (c *Criteria) Eq(field string, value any) *Criteria {
	switch v := value.(type) {
	case string:
		c.terms = append(c.terms, fmt.Sprintf("%s='%s'", field, strings.ReplaceAll(v, "'", "''")))
	default:
		c.terms = append(c.terms, fmt.Sprintf("%s=%v", field, v))
	}
	return c
}

// IsNull adds a `field IS NULL` term.
func (c *Criteria) IsNull(field string) *Criteria {
	c.terms = append(c.terms, field+" IS NULL")
	return c
}

// After adds a `field > 'date'` term in the store's date literal format.
func (c *Criteria) After(field string, t time.Time) *Criteria {
	c.terms = append(c.terms, fmt.Sprintf("%s>'%s'", field, t.Format("2006-01-02")))
	return c
}

// NotAfter adds a `field <= 'date'` term.
func (c *Criteria) NotAfter(field string, t time.Time) *Criteria {
	c.terms = append(c.terms, fmt.Sprintf("%s<='%s'", field, t.Format("2006-01-02")))
	return c
}

// String renders the conjunction. Empty criteria render as "".
func (c *Criteria) String() string {
	return strings.Join(c.terms, " AND ")
}
