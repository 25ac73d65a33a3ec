// Package report renders the structured completion report every run emits.
package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summary is the completion report for one run. It is stored as the run's
// report JSON and rendered to the terminal.
type Summary struct {
	RunID        string         `json:"run_id"`
	Kind         string         `json:"kind"`
	Live         bool           `json:"live"`
	SourceCounts map[string]int `json:"source_counts,omitempty"`
	Counters     map[string]int `json:"counters,omitempty"`
	CoveragePct  float64        `json:"coverage_pct,omitempty"`
	StillMissing int            `json:"still_missing,omitempty"`
	// PendingBySpelling counts the rows each literal spelling would update.
	PendingBySpelling map[string]int `json:"pending_by_spelling,omitempty"`
	// Pending is a bounded sample of the operations a live run would apply.
	Pending []string      `json:"pending,omitempty"`
	Errors  []string      `json:"errors,omitempty"` // bounded sample
	Elapsed time.Duration `json:"elapsed"`
}

// Marshal returns the report as JSON for the run-history store.
func (s *Summary) Marshal() ([]byte, error) {
	b, err := json.Marshal(s)
	return b, eris.Wrap(err, "report: marshal")
}

// printer formats counts with thousands separators.
var printer = message.NewPrinter(language.AmericanEnglish)

// Render formats the report for the terminal.
func (s *Summary) Render() string {
	var b strings.Builder
	mode := "dry-run"
	if s.Live {
		mode = "live"
	}
	fmt.Fprintf(&b, "%s (%s) run %s\n", s.Kind, mode, s.RunID)
	fmt.Fprintf(&b, "elapsed: %s\n", s.Elapsed.Round(time.Millisecond))

	if len(s.SourceCounts) > 0 {
		b.WriteString("sources:\n")
		for _, k := range sortedKeys(s.SourceCounts) {
			printer.Fprintf(&b, "  %-20s %d\n", k, s.SourceCounts[k])
		}
	}
	if len(s.Counters) > 0 {
		b.WriteString("results:\n")
		for _, k := range sortedKeys(s.Counters) {
			printer.Fprintf(&b, "  %-20s %d\n", k, s.Counters[k])
		}
	}
	if s.CoveragePct > 0 || s.StillMissing > 0 {
		printer.Fprintf(&b, "identity coverage: %.1f%% (%d still missing)\n", s.CoveragePct, s.StillMissing)
	}
	if len(s.PendingBySpelling) > 0 {
		b.WriteString("pending rows by spelling:\n")
		for _, k := range sortedKeys(s.PendingBySpelling) {
			printer.Fprintf(&b, "  %-20s %d\n", k, s.PendingBySpelling[k])
		}
	}
	if len(s.Pending) > 0 {
		printer.Fprintf(&b, "pending operations (%d sampled):\n", len(s.Pending))
		for _, p := range s.Pending {
			fmt.Fprintf(&b, "  %s\n", p)
		}
	}
	if len(s.Errors) > 0 {
		printer.Fprintf(&b, "errors (%d sampled):\n", len(s.Errors))
		for _, e := range s.Errors {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}
	return b.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
