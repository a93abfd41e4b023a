package catalogsync

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sourcegraph/conc/pool"
	"github.com/tristan-derez/league-skin-picker/internal/ddragon"
	"github.com/tristan-derez/league-skin-picker/internal/storage"
)

const (
	DefaultWorkers = 32
	// attempts per champion detail or splash download
	maxAttempts = 5
)

// DataDragon is the static data the sync reads.
type DataDragon interface {
	LatestVersion(ctx context.Context) (string, error)
	Champions(ctx context.Context, version string) (map[string]ddragon.ChampionSummary, error)
	ChampionSkins(ctx context.Context, version, championID string) ([]ddragon.Skin, error)
	Splash(ctx context.Context, championID string, num int) ([]byte, error)
}

// Store keeps the synced catalog, its version and the splash images.
type Store interface {
	ReadVersion() (string, error)
	WriteVersion(version string) error
	LoadSkinCatalog() (storage.SkinCatalog, error)
	SaveSkinCatalog(storage.SkinCatalog) error
	HasImage(id int) bool
	SaveImage(id int, data []byte) error
}

// Report summarizes one sync pass.
type Report struct {
	Version  string
	Checked  int // champions or images looked at
	Updated  int // champions rewritten or images downloaded
	Skipped  int // images already present
	Failed   int
	UpToDate bool
	Duration time.Duration
}

type Syncer struct {
	dd            DataDragon
	store         Store
	workers       int
	retryInterval time.Duration
	progress      bool
}

type Option func(*Syncer)

func WithWorkers(n int) Option {
	return func(s *Syncer) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithRetryInterval sets the pause between attempts of a failed fetch.
func WithRetryInterval(d time.Duration) Option {
	return func(s *Syncer) { s.retryInterval = d }
}

// WithProgress draws terminal progress bars while syncing.
func WithProgress(enabled bool) Option {
	return func(s *Syncer) { s.progress = enabled }
}

func New(dd DataDragon, store Store, opts ...Option) *Syncer {
	s := &Syncer{
		dd:            dd,
		store:         store,
		workers:       DefaultWorkers,
		retryInterval: time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckVersion compares the newest game version with the one the catalog was last
// synced against.
func (s *Syncer) CheckVersion(ctx context.Context) (latest string, upToDate bool, err error) {
	latest, err = s.dd.LatestVersion(ctx)
	if err != nil {
		return "", false, fmt.Errorf("fetch latest version: %w", err)
	}
	current, err := s.store.ReadVersion()
	if err != nil {
		return latest, false, err
	}
	slog.Info("game version checked", "current", current, "latest", latest)
	return latest, current == latest, nil
}

// Run syncs the skin catalog and splash images when the game version changed,
// then records the new version. With force it syncs regardless of version.
func (s *Syncer) Run(ctx context.Context, force bool) (Report, error) {
	version, upToDate, err := s.CheckVersion(ctx)
	if err != nil {
		return Report{}, err
	}
	if upToDate && !force {
		slog.Info("skin catalog is up to date", "version", version)
		return Report{Version: version, UpToDate: true}, nil
	}

	skinReport, err := s.SyncSkins(ctx, version)
	if err != nil {
		return skinReport, err
	}
	if _, err := s.DownloadSplashes(ctx); err != nil {
		return skinReport, err
	}

	if skinReport.Failed > 0 {
		slog.Warn("some champions failed to sync, version not recorded", "failed", skinReport.Failed)
		return skinReport, nil
	}
	if err := s.store.WriteVersion(version); err != nil {
		return skinReport, fmt.Errorf("record version: %w", err)
	}
	return skinReport, nil
}

type championResult struct {
	id    string
	skins []storage.SkinRecord
	err   error
}

// SyncSkins fetches the skins of every champion of version and rewrites the
// champions that gained skin ids. Base skins are left out.
func (s *Syncer) SyncSkins(ctx context.Context, version string) (Report, error) {
	start := time.Now()
	report := Report{Version: version}

	local, err := s.store.LoadSkinCatalog()
	if err != nil {
		return report, fmt.Errorf("load skin catalog: %w", err)
	}
	if local == nil {
		local = storage.SkinCatalog{}
	}

	champions, err := s.dd.Champions(ctx, version)
	if err != nil {
		return report, fmt.Errorf("fetch champion list: %w", err)
	}

	bar := startProgress(s.progress, "Checking skins", len(champions))
	p := pool.NewWithResults[championResult]().WithMaxGoroutines(s.workers)
	for championID := range champions {
		championID := championID
		p.Go(func() championResult {
			defer bar.Increment()
			skins, err := s.fetchSkins(ctx, version, championID)
			return championResult{id: championID, skins: skins, err: err}
		})
	}
	results := p.Wait()
	bar.Stop()

	if err := ctx.Err(); err != nil {
		return report, err
	}

	for _, r := range results {
		report.Checked++
		if r.err != nil {
			report.Failed++
			slog.Warn("failed to fetch champion skins", "champion", r.id, "error", r.err)
			continue
		}
		if hasNewSkins(local[r.id], r.skins) {
			local[r.id] = r.skins
			report.Updated++
		}
	}

	if report.Updated > 0 {
		if err := s.store.SaveSkinCatalog(local); err != nil {
			return report, fmt.Errorf("save skin catalog: %w", err)
		}
	}

	report.Duration = time.Since(start)
	slog.Info("skin catalog synced", "version", version, "champions", report.Checked,
		"updated", report.Updated, "failed", report.Failed, "duration", report.Duration)
	return report, nil
}

func (s *Syncer) fetchSkins(ctx context.Context, version, championID string) ([]storage.SkinRecord, error) {
	var records []storage.SkinRecord
	err := s.retry(ctx, func() error {
		skins, err := s.dd.ChampionSkins(ctx, version, championID)
		if err != nil {
			return err
		}
		records = records[:0]
		for _, skin := range skins {
			if skin.Num == 0 {
				continue
			}
			id, err := strconv.Atoi(skin.ID)
			if err != nil {
				return backoff.Permanent(fmt.Errorf("skin %q has a non-numeric id %q", skin.Name, skin.ID))
			}
			records = append(records, storage.SkinRecord{ID: id, Name: skin.Name, Num: skin.Num})
		}
		return nil
	})
	return records, err
}

// hasNewSkins reports whether fetched holds a skin id missing from local.
func hasNewSkins(local, fetched []storage.SkinRecord) bool {
	known := make(map[int]bool, len(local))
	for _, r := range local {
		known[r.ID] = true
	}
	for _, r := range fetched {
		if !known[r.ID] {
			return true
		}
	}
	return false
}

type splashTask struct {
	championID string
	id         int
	num        int
}

// DownloadSplashes fetches the splash art of every catalogued skin that is not
// cached yet.
func (s *Syncer) DownloadSplashes(ctx context.Context) (Report, error) {
	start := time.Now()
	var report Report

	catalog, err := s.store.LoadSkinCatalog()
	if err != nil {
		return report, fmt.Errorf("load skin catalog: %w", err)
	}

	var tasks []splashTask
	for championID, records := range catalog {
		for _, r := range records {
			report.Checked++
			if s.store.HasImage(r.ID) {
				report.Skipped++
				continue
			}
			tasks = append(tasks, splashTask{championID: championID, id: r.ID, num: r.Num})
		}
	}
	slog.Info("splash images to download", "cached", report.Skipped, "missing", len(tasks))

	bar := startProgress(s.progress, "Downloading skins", len(tasks))
	p := pool.NewWithResults[error]().WithMaxGoroutines(s.workers)
	for _, task := range tasks {
		task := task
		p.Go(func() error {
			defer bar.Increment()
			err := s.retry(ctx, func() error {
				data, err := s.dd.Splash(ctx, task.championID, task.num)
				if err != nil {
					return err
				}
				return s.store.SaveImage(task.id, data)
			})
			if err != nil {
				slog.Debug("splash download failed", "champion", task.championID, "skin", task.id, "error", err)
			}
			return err
		})
	}
	for _, err := range p.Wait() {
		if err != nil {
			report.Failed++
		} else {
			report.Updated++
		}
	}
	bar.Stop()

	report.Duration = time.Since(start)
	slog.Info("splash images downloaded", "downloaded", report.Updated, "failed", report.Failed, "duration", report.Duration)
	return report, ctx.Err()
}

func (s *Syncer) retry(ctx context.Context, operation func() error) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.retryInterval), maxAttempts-1),
		ctx,
	)
	return backoff.Retry(func() error {
		err := operation()
		if err != nil && !ddragon.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}
