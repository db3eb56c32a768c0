package utils

import (
	"strings"
)

// diacriticFold maps accented Latin letters onto their ASCII base so
// that slugs stay URL-stable for Romanian (and general Latin-1)
// titles: "Cătălin" -> "catalin".
var diacriticFold = map[rune]rune{
	'ă': 'a', 'â': 'a', 'á': 'a', 'à': 'a', 'ä': 'a', 'ã': 'a', 'å': 'a',
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e',
	'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i',
	'ó': 'o', 'ò': 'o', 'ô': 'o', 'ö': 'o', 'õ': 'o',
	'ú': 'u', 'ù': 'u', 'û': 'u', 'ü': 'u',
	'ș': 's', 'ş': 's', 'ß': 's',
	'ț': 't', 'ţ': 't',
	'ç': 'c', 'ñ': 'n', 'ý': 'y',
}

// Slugify derives a URL slug from an event title: lowercase, strip
// diacritics, collapse every non-alphanumeric run into a single
// hyphen, trim leading/trailing hyphens.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // swallow leading separators

	for _, r := range strings.ToLower(title) {
		if folded, ok := diacriticFold[r]; ok {
			r = folded
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	return strings.TrimRight(b.String(), "-")
}
