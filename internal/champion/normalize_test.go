package champion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Key
	}{
		{"plain", "Ezreal", "ezreal"},
		{"upper", "EZREAL", "ezreal"},
		{"apostrophe", "Kai'Sa", "kaisa"},
		{"typographic apostrophe", "Kai’Sa", "kaisa"},
		{"period and space", "Dr. Mundo", "drmundo"},
		{"roman numeral", "Jarvan IV", "jarvaniv"},
		{"nunu alias", "Nunu", "nunuwillump"},
		{"nunu directory", "Nunu & Willump", "nunuwillump"},
		{"renata alias", "Renata", "renataglasc"},
		{"renata display", "Renata Glasc", "renataglasc"},
		{"wukong alias", "MonkeyKing", "wukong"},
		{"wukong display", "Wukong", "wukong"},
		{"accented", "Kha’Zíx", "khazix"},
		{"unknown champion", "Some New Champ", "somenewchamp"},
		{"digits kept", "Test 2", "test2"},
		{"chinese", "阿狸", "阿狸"},
		{"chinese with space", "星之守护者 阿狸", "星之守护者阿狸"},
		{"cyrillic", "Ангел", "ангел"},
		{"cyrillic breve folded", "Кай'Са", "каиса"},
		{"korean", "아리", "아리"},
		{"empty", "", Empty},
		{"punctuation only", " '.& ", Empty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeRenameUnification(t *testing.T) {
	pairs := [][2]string{
		{"Nunu & Willump", "Nunu"},
		{"Vel'Koz", "Velkoz"},
		{"VELKOZ", "Vel'Koz"},
		{"Kha'Zix", "Khazix"},
		{"Cho'Gath", "Chogath"},
		{"Dr. Mundo", "DrMundo"},
		{"Jarvan IV", "JarvanIV"},
		{"Kog'Maw", "KogMaw"},
		{"Lee Sin", "LeeSin"},
		{"Master Yi", "MasterYi"},
		{"Miss Fortune", "MissFortune"},
		{"Rek'Sai", "RekSai"},
		{"Renata Glasc", "Renata"},
		{"Tahm Kench", "TahmKench"},
		{"Xin Zhao", "XinZhao"},
		{"Aurelion Sol", "AurelionSol"},
		{"Bel'Veth", "Belveth"},
		{"K'Sante", "KSante"},
		{"Kai'Sa", "Kaisa"},
		{"Wukong", "MonkeyKing"},
	}

	for _, p := range pairs {
		t.Run(p[0], func(t *testing.T) {
			assert.Equal(t, Normalize(p[0]), Normalize(p[1]))
			assert.True(t, Same(p[0], p[1]))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"", "Ezreal", "Nunu", "Nunu & Willump", "Vel'Koz", "Renata", "MonkeyKing",
		"Dr. Mundo", "K'Sante", "ÅÉÎ", "unknown-thing 42",
		"阿狸", "星之守护者 阿狸", "Ангел", "Кай'Са", "아리",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(string(once)), "input %q", in)
	}
}

func TestOverrideTargetsAreFixedPoints(t *testing.T) {
	for from, to := range overrides {
		assert.Equal(t, to, Normalize(string(to)), "override %q -> %q", from, to)
		assert.Equal(t, string(to), Compact(string(to)), "override target %q is not compact", to)
	}
}

func TestSameRejectsEmpty(t *testing.T) {
	assert.False(t, Same("", ""))
	assert.False(t, Same("'", "."))
	assert.False(t, Same("Ezreal", "Zed"))
}

func TestCompact(t *testing.T) {
	assert.Equal(t, "strikerezreal", Compact("Striker Ezreal"))
	assert.Equal(t, "projectashe", Compact("PROJECT: Ashe"))
	assert.Equal(t, "kdaallout", Compact("K/DA ALL OUT"))
	assert.Equal(t, "", Compact(""))
	assert.Equal(t, "星之守护者阿狸", Compact("星之守护者 阿狸"))
}

func BenchmarkNormalize(b *testing.B) {
	names := []string{"Ezreal", "Nunu & Willump", "Vel'Koz", "Dr. Mundo", "Kai’Sa"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, name := range names {
			Normalize(name)
		}
	}
}
