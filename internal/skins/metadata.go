package skins

import (
	"sync/atomic"

	"github.com/tristan-derez/league-skin-picker/internal/champion"
	"github.com/tristan-derez/league-skin-picker/internal/storage"
)

// Meta is the Data Dragon information about one skin.
type Meta struct {
	ID  int
	Num int
}

// Metadata joins skin names from the asset tree with the downloaded skin catalog.
// Champions are matched by canonical key, skins by their compacted names.
type Metadata struct {
	byChampion map[champion.Key]map[string]Meta
}

// NewMetadata indexes a skin catalog keyed by Data Dragon champion id.
func NewMetadata(catalog storage.SkinCatalog) Metadata {
	m := Metadata{byChampion: make(map[champion.Key]map[string]Meta, len(catalog))}
	for championID, records := range catalog {
		key := champion.Normalize(championID)
		if key == champion.Empty {
			continue
		}
		skinsByName, ok := m.byChampion[key]
		if !ok {
			skinsByName = make(map[string]Meta, len(records))
			m.byChampion[key] = skinsByName
		}
		for _, r := range records {
			name := champion.Compact(r.Name)
			if name == "" {
				continue
			}
			skinsByName[name] = Meta{ID: r.ID, Num: r.Num}
		}
	}
	return m
}

// Lookup returns the metadata of skinName for the champion called championName.
func (m Metadata) Lookup(championName, skinName string) (Meta, bool) {
	skinsByName, ok := m.byChampion[champion.Normalize(championName)]
	if !ok {
		return Meta{}, false
	}
	meta, ok := skinsByName[champion.Compact(skinName)]
	return meta, ok
}

// Len returns the number of champions with metadata.
func (m Metadata) Len() int {
	return len(m.byChampion)
}

// MetadataHolder publishes the live Metadata, swapped whole on reload.
type MetadataHolder struct {
	current atomic.Pointer[Metadata]
}

// NewMetadataHolder returns a holder serving m.
func NewMetadataHolder(m Metadata) *MetadataHolder {
	h := &MetadataHolder{}
	h.current.Store(&m)
	return h
}

// Load returns the current metadata.
func (h *MetadataHolder) Load() Metadata {
	if m := h.current.Load(); m != nil {
		return *m
	}
	return Metadata{}
}

// Swap installs m.
func (h *MetadataHolder) Swap(m Metadata) {
	h.current.Store(&m)
}
