package skins

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/tristan-derez/league-skin-picker/internal/champion"
)

// ArchiveExt is the extension of packaged skins inside a champion directory.
const ArchiveExt = ".zip"

// chromaDir holds color variants of skins; chromas are not selectable.
const chromaDir = "chromas"

// Entry is everything the asset tree knows about one champion.
type Entry struct {
	Key       champion.Key
	Directory string // on-disk name exactly as enumerated, used to build asset paths
	Skins     mapset.Set[string]
}

// SkinNames returns the entry's skins sorted for display.
func (e Entry) SkinNames() []string {
	if e.Skins == nil {
		return []string{}
	}
	names := e.Skins.ToSlice()
	slices.Sort(names)
	return names
}

// Index maps canonical champion keys to their asset tree entries.
// An Index is never modified after Build returns it.
type Index struct {
	entries map[champion.Key]Entry
}

// Lookup returns the entry for key. The empty key never matches.
func (i Index) Lookup(key champion.Key) (Entry, bool) {
	if key == champion.Empty || i.entries == nil {
		return Entry{}, false
	}
	e, ok := i.entries[key]
	return e, ok
}

// Find normalizes name and looks it up.
func (i Index) Find(name string) (Entry, bool) {
	return i.Lookup(champion.Normalize(name))
}

// Len returns the number of champions in the index.
func (i Index) Len() int {
	return len(i.entries)
}

// Keys returns all champion keys, sorted.
func (i Index) Keys() []champion.Key {
	keys := make([]champion.Key, 0, len(i.entries))
	for k := range i.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// NewIndex builds an Index from already enumerated entries. Later entries with a
// key already present replace earlier ones.
func NewIndex(entries ...Entry) Index {
	m := make(map[champion.Key]Entry, len(entries))
	for _, e := range entries {
		if e.Key == champion.Empty {
			continue
		}
		m[e.Key] = e
	}
	return Index{entries: m}
}

// Build walks the immediate subdirectories of root, one per champion, and collects the
// skins each one holds: sub-directories and zip archives (extension stripped), minus
// the chromas directory. A missing root yields an empty index.
func Build(root string) Index {
	championDirs, err := os.ReadDir(root)
	if err != nil {
		slog.Warn("skin directory not readable, using empty catalog", "root", root, "error", err)
		return Index{entries: map[champion.Key]Entry{}}
	}

	entries := make(map[champion.Key]Entry, len(championDirs))
	for _, dir := range championDirs {
		if !entryType(root, dir).IsDir() {
			continue
		}

		key := champion.Normalize(dir.Name())
		if key == champion.Empty {
			slog.Warn("skipping champion directory with empty key", "directory", dir.Name())
			continue
		}

		skinSet, err := readSkins(filepath.Join(root, dir.Name()))
		if err != nil {
			slog.Warn("failed to read champion directory", "directory", dir.Name(), "error", err)
			continue
		}

		if prev, exists := entries[key]; exists {
			slog.Debug("champion directories share a key, keeping the last one",
				"key", key, "previous", prev.Directory, "current", dir.Name())
		}

		entries[key] = Entry{Key: key, Directory: dir.Name(), Skins: skinSet}
	}

	slog.Info("skin directory scanned", "root", root, "champions", len(entries))
	return Index{entries: entries}
}

func readSkins(championPath string) (mapset.Set[string], error) {
	items, err := os.ReadDir(championPath)
	if err != nil {
		return nil, err
	}

	skinSet := mapset.NewThreadUnsafeSet[string]()
	for _, item := range items {
		name := item.Name()
		if strings.EqualFold(name, chromaDir) {
			continue
		}

		mode := entryType(championPath, item)
		switch {
		case mode.IsDir():
			skinSet.Add(name)
		case mode.IsRegular() && strings.HasSuffix(name, ArchiveExt):
			skinSet.Add(strings.TrimSuffix(name, ArchiveExt))
		}
	}
	return skinSet, nil
}

// entryType resolves symlinks so linked champion directories and archives are indexed
// like real ones. A dangling link reports as irregular and is ignored.
func entryType(parent string, entry fs.DirEntry) fs.FileMode {
	mode := entry.Type()
	if mode&fs.ModeSymlink == 0 {
		return mode
	}
	info, err := os.Stat(filepath.Join(parent, entry.Name()))
	if err != nil {
		return fs.ModeIrregular
	}
	return info.Mode().Type()
}

// Holder publishes the live Index. Readers never observe a partially built index:
// a rebuild is swapped in whole.
type Holder struct {
	current atomic.Pointer[Index]
}

// NewHolder returns a Holder serving idx.
func NewHolder(idx Index) *Holder {
	h := &Holder{}
	h.current.Store(&idx)
	return h
}

// Load returns the current index.
func (h *Holder) Load() Index {
	if idx := h.current.Load(); idx != nil {
		return *idx
	}
	return Index{}
}

// Swap installs idx and returns the one it replaced.
func (h *Holder) Swap(idx Index) Index {
	if old := h.current.Swap(&idx); old != nil {
		return *old
	}
	return Index{}
}

// Reload rebuilds the index from root and swaps it in.
func (h *Holder) Reload(root string) Index {
	idx := Build(root)
	h.Swap(idx)
	return idx
}
