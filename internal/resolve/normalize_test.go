package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_Empty(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "", Normalize("   "))
}

func TestNormalize_LowercasesAndTrims(t *testing.T) {
	assert.Equal(t, "acme embroidery", Normalize("  ACME Embroidery  "))
}

func TestNormalize_SuffixTokens(t *testing.T) {
	assert.Equal(t, "acme", Normalize("ACME Inc."))
	assert.Equal(t, "acme", Normalize("Acme LLC"))
	assert.Equal(t, "acme", Normalize("Acme, Ltd."))
	assert.Equal(t, "acme", Normalize("acme"))
}

func TestNormalize_PunctuationBeforeTokens(t *testing.T) {
	// "Corp." must lose its period before the token check, or it would
	// survive as "corp.".
	assert.Equal(t, "acme", Normalize("Acme Corp."))
}

func TestNormalize_WordBoundaryOnly(t *testing.T) {
	// "co" is a token only as a standalone word; "Coast" keeps its letters.
	assert.Equal(t, "coast guard", Normalize("Coast Guard"))
	assert.NotEqual(t, Normalize("Ct Guard"), Normalize("Coast Guard"))
	assert.Equal(t, "incline village", Normalize("Incline Village"))
}

func TestNormalize_FillerWords(t *testing.T) {
	assert.Equal(t, "shirt shop", Normalize("The Shirt Shop Co."))
	assert.Equal(t, "smith jones", Normalize("Smith and Jones"))
}

func TestNormalize_CollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "pacific northwest apparel", Normalize("Pacific   Northwest\tApparel"))
	// A single tab or newline collapses too, so spellings differing only in
	// the kind of whitespace share a key.
	assert.Equal(t, Normalize("Pacific Northwest Apparel"), Normalize("Pacific\tNorthwest\nApparel"))
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"ACME Inc.", "The Shirt Shop Co.", "Coast Guard", "  Smith & Sons, LLC  ",
		"", "co", "Pacific   Northwest Apparel",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}
