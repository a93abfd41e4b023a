package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tristan-derez/league-skin-picker/internal/config"
)

// ChampionRecord is one row of champion.json, as served by the game client.
type ChampionRecord struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Alias string `json:"alias"`
}

// SkinRecord is one non-base skin of a champion as listed by Data Dragon.
type SkinRecord struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Num  int    `json:"num"`
}

// SkinCatalog maps Data Dragon champion ids to their skins.
type SkinCatalog map[string][]SkinRecord

// IDs returns every skin id in the catalog.
func (c SkinCatalog) IDs() []int {
	var ids []int
	for _, records := range c {
		for _, r := range records {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// Storage owns the flat files the picker keeps between runs.
type Storage struct {
	championPath string
	skinPath     string
	versionPath  string
	imageDir     string
}

// New creates a Storage over the paths in config, creating the directories it writes into.
func New(config *config.Config) (*Storage, error) {
	storage := &Storage{
		championPath: config.ChampionCatalogPath,
		skinPath:     config.SkinCatalogPath,
		versionPath:  config.VersionPath,
		imageDir:     config.ImageDir,
	}
	if err := storage.initDirs(config.InstalledDir, config.ProfilesDir); err != nil {
		return nil, fmt.Errorf("error initializing storage: %w", err)
	}

	return storage, nil
}

func (s *Storage) initDirs(extra ...string) error {
	dirs := append([]string{s.imageDir}, extra...)
	for _, p := range []string{s.championPath, s.skinPath, s.versionPath} {
		dirs = append(dirs, filepath.Dir(p))
	}
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	slog.Debug("storage directories ready", "images", s.imageDir)
	return nil
}

// HasChampions reports whether champion.json already exists.
func (s *Storage) HasChampions() bool {
	_, err := os.Stat(s.championPath)
	return err == nil
}

// LoadChampions reads champion.json. A missing file is returned as fs.ErrNotExist.
func (s *Storage) LoadChampions() ([]ChampionRecord, error) {
	var records []ChampionRecord
	if err := readJSON(s.championPath, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// SaveChampions replaces champion.json.
func (s *Storage) SaveChampions(records []ChampionRecord) error {
	return writeJSON(s.championPath, records)
}

// LoadSkinCatalog reads skins.json. A missing file yields an empty catalog.
func (s *Storage) LoadSkinCatalog() (SkinCatalog, error) {
	catalog := SkinCatalog{}
	if err := readJSON(s.skinPath, &catalog); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return SkinCatalog{}, nil
		}
		return nil, err
	}
	return catalog, nil
}

// SaveSkinCatalog replaces skins.json.
func (s *Storage) SaveSkinCatalog(catalog SkinCatalog) error {
	return writeJSON(s.skinPath, catalog)
}

// ReadVersion returns the Data Dragon version the catalog was last synced against,
// or "" if it never was.
func (s *Storage) ReadVersion() (string, error) {
	data, err := os.ReadFile(s.versionPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read version: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// WriteVersion records the Data Dragon version the catalog is now synced against.
func (s *Storage) WriteVersion(version string) error {
	return writeAtomic(s.versionPath, []byte(version))
}

// ImagePath returns where the splash image of skin id is cached.
func (s *Storage) ImagePath(id int) string {
	return filepath.Join(s.imageDir, strconv.Itoa(id)+".jpg")
}

// HasImage reports whether the splash image of skin id is cached.
func (s *Storage) HasImage(id int) bool {
	info, err := os.Stat(s.ImagePath(id))
	return err == nil && info.Size() > 0
}

// SaveImage caches the splash image of skin id.
func (s *Storage) SaveImage(id int, data []byte) error {
	return writeAtomic(s.ImagePath(id), data)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return writeAtomic(path, data)
}

// writeAtomic writes through a temporary file so readers never see half a file.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
