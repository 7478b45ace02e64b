package utils

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// NewNaturalCollator returns a collator that orders digits numerically
// ("file2" < "file10") and ignores accents and width.
// A Collator is not safe for concurrent use; create one per sort.
func NewNaturalCollator() *collate.Collator {
	return collate.New(language.Und, collate.Numeric, collate.IgnoreDiacritics, collate.IgnoreWidth)
}

// NaturalCompare compares a and b with c, breaking collation ties byte-wise
// so distinct names never compare equal.
func NaturalCompare(c *collate.Collator, a, b string) int {
	if r := c.CompareString(a, b); r != 0 {
		return r
	}
	return strings.Compare(a, b)
}

// SortNatural sorts names in place in natural order.
func SortNatural(names []string) {
	c := NewNaturalCollator()
	slices.SortFunc(names, func(a, b string) int {
		return NaturalCompare(c, a, b)
	})
}
