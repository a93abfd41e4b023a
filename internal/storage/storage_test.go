package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tristan-derez/league-skin-picker/internal/config"
)

func newTestStorage(t *testing.T) (*Storage, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.ChampionCatalogPath = filepath.Join(dir, "data", "champion.json")
	cfg.SkinCatalogPath = filepath.Join(dir, "data", "skins.json")
	cfg.VersionPath = filepath.Join(dir, "data", "version")
	cfg.ImageDir = filepath.Join(dir, "id_skins")
	cfg.InstalledDir = filepath.Join(dir, "installed")
	cfg.ProfilesDir = filepath.Join(dir, "profiles")

	s, err := New(cfg)
	require.NoError(t, err)
	return s, dir
}

func TestNew_CreatesDirectories(t *testing.T) {
	_, dir := newTestStorage(t)

	for _, sub := range []string{"data", "id_skins", "installed", "profiles"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		require.NoError(t, err, sub)
		assert.True(t, info.IsDir(), sub)
	}
}

func TestChampions(t *testing.T) {
	s, _ := newTestStorage(t)

	assert.False(t, s.HasChampions())
	_, err := s.LoadChampions()
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	records := []ChampionRecord{
		{ID: 62, Name: "Wukong", Alias: "MonkeyKing"},
		{ID: 20, Name: "Nunu & Willump", Alias: "Nunu"},
	}
	require.NoError(t, s.SaveChampions(records))
	assert.True(t, s.HasChampions())

	loaded, err := s.LoadChampions()
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestSkinCatalog(t *testing.T) {
	s, _ := newTestStorage(t)

	empty, err := s.LoadSkinCatalog()
	require.NoError(t, err)
	assert.Empty(t, empty)

	catalog := SkinCatalog{
		"Ahri": {{ID: 103001, Name: "Dynasty Ahri", Num: 1}},
		"Zed":  {{ID: 238001, Name: "Shockblade Zed", Num: 1}, {ID: 238002, Name: "SKT T1 Zed", Num: 2}},
	}
	require.NoError(t, s.SaveSkinCatalog(catalog))

	loaded, err := s.LoadSkinCatalog()
	require.NoError(t, err)
	assert.Equal(t, catalog, loaded)
	assert.ElementsMatch(t, []int{103001, 238001, 238002}, loaded.IDs())
}

func TestSkinCatalog_Corrupt(t *testing.T) {
	s, _ := newTestStorage(t)
	require.NoError(t, os.WriteFile(s.skinPath, []byte("{not json"), 0o644))

	_, err := s.LoadSkinCatalog()
	assert.ErrorContains(t, err, "decode")
}

func TestVersion(t *testing.T) {
	s, _ := newTestStorage(t)

	v, err := s.ReadVersion()
	require.NoError(t, err)
	assert.Equal(t, "", v)

	require.NoError(t, s.WriteVersion("14.20.1"))
	v, err = s.ReadVersion()
	require.NoError(t, err)
	assert.Equal(t, "14.20.1", v)
}

func TestImages(t *testing.T) {
	s, dir := newTestStorage(t)

	assert.Equal(t, filepath.Join(dir, "id_skins", "103001.jpg"), s.ImagePath(103001))
	assert.False(t, s.HasImage(103001))

	require.NoError(t, s.SaveImage(103001, []byte{0xff, 0xd8, 0xff}))
	assert.True(t, s.HasImage(103001))
}
