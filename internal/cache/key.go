package cache

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const maxStemRunes = 80

// Key returns the cache key for a card. Names are compared case-insensitively
// with runs of whitespace collapsed. A pinned printing (set code and
// collector number) gets its own key, since its artwork differs.
func Key(name, setCode, collectorNumber string) string {
	key := normalize(name)
	setCode = normalize(setCode)
	collectorNumber = normalize(collectorNumber)
	if setCode != "" && collectorNumber != "" {
		key += "|" + setCode + "|" + collectorNumber
	}
	return key
}

func normalize(s string) string {
	s = strings.Join(strings.Fields(norm.NFC.String(s)), " ")
	return norm.NFC.String(cases.Fold().String(s))
}

// fileName maps a key to a file name that is safe on every platform. The
// md5 suffix keeps keys that sanitize to the same stem apart.
func fileName(key string) string {
	var b strings.Builder
	n := 0
	lastUnderscore := false
	for _, r := range key {
		if n >= maxStemRunes {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore {
			b.WriteRune('_')
			lastUnderscore = true
		}
		n++
	}
	stem := strings.Trim(b.String(), "_")
	if stem == "" {
		stem = "card"
	}

	sum := md5.Sum([]byte(key))
	return stem + "-" + hex.EncodeToString(sum[:])[:8] + entrySuffix
}
