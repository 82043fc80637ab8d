package caching

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds a query to lowercase letters and digits only. Accents are
// stripped, so "Café?" and "cafe" normalize identically.
func Normalize(query string) string {
	folder := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, query)
	if err != nil {
		folded = query
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Fingerprint is the fixed-length cache key of a query: the hex SHA-256 of its normalized form.
func Fingerprint(query string) string {
	sum := sha256.Sum256([]byte(Normalize(query)))
	return hex.EncodeToString(sum[:])
}
