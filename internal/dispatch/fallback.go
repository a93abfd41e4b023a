package dispatch

import "github.com/tristan-derez/league-skin-picker/internal/champion"

// fallbackNames maps the compacted game-client alias of a champion to the
// punctuated spelling skin packs use for its directory.
var fallbackNames = map[string]string{
	"nunu":        "Nunu & Willump",
	"velkoz":      "Vel'Koz",
	"khazix":      "Kha'Zix",
	"chogath":     "Cho'Gath",
	"drmundo":     "Dr. Mundo",
	"jarvaniv":    "Jarvan IV",
	"kogmaw":      "Kog'Maw",
	"leesin":      "Lee Sin",
	"masteryi":    "Master Yi",
	"missfortune": "Miss Fortune",
	"reksai":      "Rek'Sai",
	"renata":      "Renata Glasc",
	"tahmkench":   "Tahm Kench",
	"xinzhao":     "Xin Zhao",
	"aurelionsol": "Aurelion Sol",
	"belveth":     "Bel'Veth",
	"ksante":      "K'Sante",
	"kaisa":       "Kai'Sa",
	"monkeyking":  "Wukong",
}

// FallbackName returns the directory spelling to retry with when an install under
// name failed, or name itself when there is no alternative.
func FallbackName(name string) string {
	if alt, exists := fallbackNames[champion.Compact(name)]; exists {
		return alt
	}
	return name
}
