// Package resolve implements company-name normalization and the ranked
// identity lookup map used to reconcile customer identity across sources.
package resolve

import (
	"strings"
)

// noiseTokens are standalone words dropped during normalization. They are
// matched on word boundaries only: "Coast" must not lose its "co".
var noiseTokens = map[string]bool{
	"inc":  true,
	"llc":  true,
	"ltd":  true,
	"corp": true,
	"co":   true,
	"the":  true,
	"and":  true,
}

// punctReplacer strips the punctuation characters that appear in company
// names. Applied before token removal so "Corp." still matches "corp".
var punctReplacer = strings.NewReplacer(
	".", "", ",", "", ";", "", ":", "",
	"!", "", "?", "", "'", "", `"`, "",
	"(", "", ")", "", "[", "", "]", "",
	"{", "", "}", "",
)

// Normalize canonicalizes a company name for matching. It lowercases, trims,
// strips punctuation, collapses whitespace, and removes standalone legal and
// filler tokens (inc, llc, ltd, corp, co, the, and). Pure and idempotent.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}

	// Fields splits on every whitespace run, so tabs and newlines collapse
	// the same as spaces.
	words := strings.Fields(punctReplacer.Replace(name))
	kept := words[:0]
	for _, w := range words {
		if noiseTokens[w] {
			continue
		}
		kept = append(kept, w)
	}

	return strings.Join(kept, " ")
}
