package skins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tristan-derez/league-skin-picker/internal/storage"
)

func TestMetadataLookup(t *testing.T) {
	m := NewMetadata(storage.SkinCatalog{
		"MonkeyKing": {{ID: 62001, Name: "Volcanic Wukong", Num: 1}},
		"Nunu":       {{ID: 20001, Name: "Sasquatch Nunu & Willump", Num: 1}},
		"Ahri":       {{ID: 103001, Name: "Dynasty Ahri", Num: 1}, {ID: 0, Name: "", Num: 2}},
	})
	assert.Equal(t, 3, m.Len())

	meta, ok := m.Lookup("Wukong", "Volcanic Wukong")
	require.True(t, ok)
	assert.Equal(t, Meta{ID: 62001, Num: 1}, meta)

	meta, ok = m.Lookup("Nunu & Willump", "sasquatch nunu willump")
	require.True(t, ok)
	assert.Equal(t, 20001, meta.ID)

	_, ok = m.Lookup("Ahri", "Unknown Ahri")
	assert.False(t, ok)
	_, ok = m.Lookup("Zed", "Shockblade Zed")
	assert.False(t, ok)
}

func TestMetadataHolder(t *testing.T) {
	h := NewMetadataHolder(Metadata{})
	assert.Equal(t, 0, h.Load().Len())

	h.Swap(NewMetadata(storage.SkinCatalog{"Ahri": {{ID: 103001, Name: "Dynasty Ahri", Num: 1}}}))
	_, ok := h.Load().Lookup("Ahri", "Dynasty Ahri")
	assert.True(t, ok)

	var zero MetadataHolder
	assert.Equal(t, 0, zero.Load().Len())
}

func TestMetadataLookupNonLatin(t *testing.T) {
	m := NewMetadata(storage.SkinCatalog{
		"阿狸": {{ID: 103015, Name: "星之守护者 阿狸", Num: 15}},
	})

	meta, ok := m.Lookup("阿狸", "星之守护者阿狸")
	require.True(t, ok)
	assert.Equal(t, 103015, meta.ID)
}
