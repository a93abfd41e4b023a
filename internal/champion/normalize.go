package champion

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Key is the canonical comparison form of a champion name.
// Two names denote the same champion iff their keys are equal.
type Key string

// Empty is the key of an empty or punctuation-only name. It never matches a catalog entry.
const Empty Key = ""

// overrides rewrites compacted names whose spellings differ between the game client,
// the skin asset tree and Data Dragon. Every value must be a fixed point of Normalize.
var overrides = map[string]Key{
	// compound and renamed champions
	"nunu":       "nunuwillump",
	"renata":     "renataglasc",
	"monkeyking": "wukong",

	// punctuated or spaced names, collapsed by the generic rule already
	"velkoz":      "velkoz",
	"khazix":      "khazix",
	"chogath":     "chogath",
	"drmundo":     "drmundo",
	"jarvaniv":    "jarvaniv",
	"kogmaw":      "kogmaw",
	"leesin":      "leesin",
	"masteryi":    "masteryi",
	"missfortune": "missfortune",
	"reksai":      "reksai",
	"renataglasc": "renataglasc",
	"tahmkench":   "tahmkench",
	"xinzhao":     "xinzhao",
	"aurelionsol": "aurelionsol",
	"belveth":     "belveth",
	"ksante":      "ksante",
	"kaisa":       "kaisa",
	"nunuwillump": "nunuwillump",
	"wukong":      "wukong",
}

// Normalize maps a champion display name, client alias or asset directory name to its Key.
// It never fails: unknown names fall through the generic rule and simply won't match.
func Normalize(name string) Key {
	compact := Compact(name)
	if compact == "" {
		return Empty
	}
	if key, ok := overrides[compact]; ok {
		return key
	}
	return Key(compact)
}

// Compact lower-cases, folds diacritics and drops every character that is not a letter
// or digit in any script, so CJK and Cyrillic names keep their letters. It is the generic rule behind Normalize without the
// champion overrides, and is also used to compare skin names.
func Compact(name string) string {
	if name == "" {
		return ""
	}

	// transformers carry state, so each call builds its own chain
	lower := strings.ToLower(name)
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, lower)
	if err != nil {
		folded = lower
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// Same reports whether two names denote the same champion.
func Same(a, b string) bool {
	ka := Normalize(a)
	return ka != Empty && ka == Normalize(b)
}

// String returns the key as a plain string.
func (k Key) String() string {
	return string(k)
}
