package skins

import (
	"os"
	"path/filepath"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tristan-derez/league-skin-picker/internal/champion"
)

// makeTree lays out champion directories under a fresh root. Names ending in
// ".zip" become files, anything else a directory.
func makeTree(t *testing.T, tree map[string][]string) string {
	t.Helper()
	root := t.TempDir()
	for dir, items := range tree {
		championPath := filepath.Join(root, dir)
		require.NoError(t, os.MkdirAll(championPath, 0o755))
		for _, item := range items {
			p := filepath.Join(championPath, item)
			if filepath.Ext(item) == "" {
				require.NoError(t, os.MkdirAll(p, 0o755))
				continue
			}
			require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
		}
	}
	return root
}

func TestBuild(t *testing.T) {
	root := makeTree(t, map[string][]string{
		"Ahri":           {"Dynasty Ahri.zip", "Arcade Ahri", "chromas", "readme.txt"},
		"Nunu & Willump": {"Sasquatch Nunu.zip", "Chromas"},
		"Vel'Koz":        {"Battlecast Vel'Koz.zip"},
		"Dr. Mundo":      {},
		"'.":             {"Ghost.zip"},
	})
	require.NoError(t, os.WriteFile(filepath.Join(root, "stray.zip"), []byte("x"), 0o644))

	idx := Build(root)
	assert.Equal(t, 4, idx.Len())

	ahri, ok := idx.Find("Ahri")
	require.True(t, ok)
	assert.Equal(t, "Ahri", ahri.Directory)
	assert.Equal(t, []string{"Arcade Ahri", "Dynasty Ahri"}, ahri.SkinNames())

	nunu, ok := idx.Find("Nunu")
	require.True(t, ok)
	assert.Equal(t, "Nunu & Willump", nunu.Directory)
	assert.Equal(t, []string{"Sasquatch Nunu"}, nunu.SkinNames())

	velkoz, ok := idx.Lookup(champion.Normalize("Velkoz"))
	require.True(t, ok)
	assert.Equal(t, "Vel'Koz", velkoz.Directory)

	mundo, ok := idx.Find("DrMundo")
	require.True(t, ok)
	assert.Empty(t, mundo.SkinNames())

	_, ok = idx.Lookup(champion.Empty)
	assert.False(t, ok)
}

func TestBuild_MissingRoot(t *testing.T) {
	idx := Build(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Equal(t, 0, idx.Len())
	_, ok := idx.Find("Ahri")
	assert.False(t, ok)
}

func TestBuild_NonLatinNames(t *testing.T) {
	root := makeTree(t, map[string][]string{
		"阿狸":    {"星之守护者", "灵魂莲华 阿狸.zip"},
		"Ангел": {"Тёмный.zip"},
		"Ahri":  {"Arcade Ahri.zip"},
	})

	idx := Build(root)
	require.Equal(t, 3, idx.Len())

	ahri, ok := idx.Find("阿狸")
	require.True(t, ok)
	assert.Equal(t, "阿狸", ahri.Directory)
	assert.ElementsMatch(t, []string{"星之守护者", "灵魂莲华 阿狸"}, ahri.SkinNames())

	_, ok = idx.Find("АНГЕЛ")
	assert.True(t, ok)
}

func TestBuild_FollowsSymlinks(t *testing.T) {
	target := makeTree(t, map[string][]string{
		"Ezreal": {"Pulsefire Ezreal.zip"},
	})
	root := makeTree(t, map[string][]string{
		"Ahri": {"Arcade Ahri.zip"},
	})
	require.NoError(t, os.Symlink(filepath.Join(target, "Ezreal"), filepath.Join(root, "Ezreal")))
	require.NoError(t, os.Symlink(
		filepath.Join(target, "Ezreal", "Pulsefire Ezreal.zip"),
		filepath.Join(root, "Ahri", "Linked.zip"),
	))
	require.NoError(t, os.Symlink(filepath.Join(target, "missing.zip"), filepath.Join(root, "Ahri", "Dangling.zip")))

	idx := Build(root)
	require.Equal(t, 2, idx.Len())

	ezreal, ok := idx.Find("Ezreal")
	require.True(t, ok)
	assert.Equal(t, []string{"Pulsefire Ezreal"}, ezreal.SkinNames())

	ahri, ok := idx.Find("Ahri")
	require.True(t, ok)
	assert.Equal(t, []string{"Arcade Ahri", "Linked"}, ahri.SkinNames())
}

// Every enumerated directory must be reachable through its own normalized name,
// and the entry must remember the exact on-disk spelling.
func TestBuild_RoundTrip(t *testing.T) {
	dirs := []string{"Ahri", "Nunu & Willump", "Vel'Koz", "Kha'Zix", "Dr. Mundo", "Jarvan IV", "Renata Glasc", "Wukong"}
	tree := make(map[string][]string, len(dirs))
	for _, d := range dirs {
		tree[d] = []string{"Base.zip"}
	}
	idx := Build(makeTree(t, tree))

	require.Equal(t, len(dirs), idx.Len())
	for _, d := range dirs {
		entry, ok := idx.Lookup(champion.Normalize(d))
		require.True(t, ok, d)
		assert.Equal(t, d, entry.Directory)
	}
}

func TestBuild_DuplicateKeysKeepOne(t *testing.T) {
	root := makeTree(t, map[string][]string{
		"Velkoz":  {"A.zip"},
		"Vel'Koz": {"B.zip"},
	})

	idx := Build(root)
	assert.Equal(t, 1, idx.Len())
	entry, ok := idx.Find("velkoz")
	require.True(t, ok)
	assert.Contains(t, []string{"Velkoz", "Vel'Koz"}, entry.Directory)
}

func TestIndexKeysSorted(t *testing.T) {
	idx := NewIndex(
		Entry{Key: "zed", Directory: "Zed"},
		Entry{Key: "ahri", Directory: "Ahri"},
		Entry{Key: champion.Empty, Directory: "'"},
	)
	assert.Equal(t, []champion.Key{"ahri", "zed"}, idx.Keys())
}

func TestEntrySkinNamesNilSet(t *testing.T) {
	assert.Equal(t, []string{}, Entry{}.SkinNames())
	e := Entry{Skins: mapset.NewThreadUnsafeSet("b", "a")}
	assert.Equal(t, []string{"a", "b"}, e.SkinNames())
}

func TestHolder(t *testing.T) {
	root := makeTree(t, map[string][]string{"Ahri": {"Dynasty Ahri.zip"}})

	h := NewHolder(Index{})
	assert.Equal(t, 0, h.Load().Len())

	idx := h.Reload(root)
	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, 1, h.Load().Len())

	old := h.Swap(NewIndex())
	assert.Equal(t, 1, old.Len())
	assert.Equal(t, 0, h.Load().Len())

	var zero Holder
	assert.Equal(t, 0, zero.Load().Len())
}
