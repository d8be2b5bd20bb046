package catalog

import "strings"

// FallbackCode is issued when nothing in the lookup table matches.
const FallbackCode = "GENERIC-EQUIP"

// codeTable maps free-text keywords to catalog product codes. It is an
// ordered slice, not a map: the first matching keyword wins and the result
// must be identical on every call for the same input. More specific
// keywords come before the generic nouns they contain.
var codeTable = []struct {
	keyword string
	code    string
}{
	{"cat 320", "CAT320-NG"},
	{"wheel loader", "KOM-WA380"},
	{"wa380", "KOM-WA380"},
	{"komatsu", "KOM-WA380"},
	{"mini excavator", "KUB-KX040"},
	{"kubota", "KUB-KX040"},
	{"kx040", "KUB-KX040"},
	{"bulldozer", "CAT-D6"},
	{"d6", "CAT-D6"},
	{"excavator", "CAT320-NG"},
	{"loader", "KOM-WA380"},
}

// ResolveCode maps a free-text product name to a catalog product code by
// case-insensitive substring match against the keyword table.
func ResolveCode(productName string) string {
	name := strings.ToLower(productName)
	for _, entry := range codeTable {
		if strings.Contains(name, entry.keyword) {
			return entry.code
		}
	}
	return FallbackCode
}

// ResolveCodes maps each product name independently; the result is
// index-aligned with the input.
func ResolveCodes(productNames []string) []string {
	codes := make([]string, 0, len(productNames))
	for _, name := range productNames {
		codes = append(codes, ResolveCode(name))
	}
	if len(codes) == 0 {
		return []string{FallbackCode}
	}
	return codes
}
