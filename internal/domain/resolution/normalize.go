package resolution

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FieldKind selects which normalization rules apply to a free-text field.
type FieldKind int

const (
	FieldName FieldKind = iota
	FieldAddress
	FieldCity
	FieldState
	FieldZip
)

// StreetSynonyms collapses street-type variants to one canonical token.
// Both the long and short form map to the same output so normalization is
// idempotent.
var StreetSynonyms = map[string]string{
	"ste":       "suite",
	"suite":     "suite",
	"apt":       "apt",
	"apartment": "apt",
	"rd":        "rd",
	"road":      "rd",
	"st":        "st",
	"street":    "st",
	"ave":       "ave",
	"avenue":    "ave",
	"blvd":      "blvd",
	"boulevard": "blvd",
	"dr":        "dr",
	"drive":     "dr",
	"hwy":       "hwy",
	"highway":   "hwy",
}

// NameStopTokens are corporate-suffix tokens removed from business names
// before comparison.
var NameStopTokens = map[string]bool{
	"llc":         true,
	"inc":         true,
	"co":          true,
	"company":     true,
	"corp":        true,
	"corporation": true,
	"ltd":         true,
	"store":       true,
}

// NameStopPhrases are multi-word retail-category phrases removed from
// business names before comparison.
var NameStopPhrases = []string{
	"smoke shop",
	"vape shop",
}

// AddressNoisePhrases are phrases that carry no location information and are
// dropped from addresses before comparison.
var AddressNoisePhrases = []string{
	"in store",
}

// Normalize turns a free-text field into its canonical comparison form.
// It is pure, deterministic and idempotent; the output is only ever used as
// a map key and is never displayed.
func Normalize(kind FieldKind, s string) string {
	switch kind {
	case FieldName:
		return NormalizeName(s)
	case FieldAddress:
		return NormalizeAddress(s)
	case FieldCity:
		return NormalizeCity(s)
	case FieldState:
		return NormalizeState(s)
	case FieldZip:
		return NormalizeZip(s)
	default:
		return collapseSpaces(strings.ToLower(s))
	}
}

// NormalizeName canonicalizes a business name: lowercase, "&" to "and",
// punctuation stripped, corporate suffixes and retail-category phrases
// removed.
func NormalizeName(s string) string {
	s = foldDiacritics(strings.ToLower(s))
	s = strings.ReplaceAll(s, "&", " and ")
	s = stripPunctuation(s)
	s = removePhrases(s, NameStopPhrases)

	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if !NameStopTokens[f] {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}

// NormalizeAddress canonicalizes a street address: lowercase, line breaks
// collapsed, punctuation stripped, street-type synonyms unified.
func NormalizeAddress(s string) string {
	s = foldDiacritics(strings.ToLower(s))
	s = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(s)
	s = stripPunctuation(s)
	s = removePhrases(s, AddressNoisePhrases)

	fields := strings.Fields(s)
	for i, f := range fields {
		if canonical, ok := StreetSynonyms[f]; ok {
			fields[i] = canonical
		}
	}
	return strings.Join(fields, " ")
}

// NormalizeCity canonicalizes a city name.
func NormalizeCity(s string) string {
	return collapseSpaces(foldDiacritics(strings.ToLower(s)))
}

// NormalizeState canonicalizes a state name or code.
func NormalizeState(s string) string {
	return collapseSpaces(foldDiacritics(strings.ToLower(s)))
}

// NormalizeZip reduces a postal code to its five-digit form.
func NormalizeZip(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == 5 {
				break
			}
		}
	}
	return b.String()
}

var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldDiacritics(s string) string {
	folded, _, err := transform.String(diacriticFolder, s)
	if err != nil {
		return s
	}
	return folded
}

func stripPunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return b.String()
}

func removePhrases(s string, phrases []string) string {
	s = " " + collapseSpaces(s) + " "
	for _, p := range phrases {
		s = strings.ReplaceAll(s, " "+p+" ", " ")
	}
	return strings.TrimSpace(s)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
