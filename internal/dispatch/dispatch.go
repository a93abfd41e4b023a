package dispatch

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tristan-derez/league-skin-picker/internal/modtools"
	"github.com/tristan-derez/league-skin-picker/internal/skins"
)

// Installer runs the packaging tool steps of an install.
type Installer interface {
	Import(ctx context.Context, archive string) error
	SaveProfile(ctx context.Context, skin string) error
	RunOverlay(ctx context.Context) (modtools.Handle, error)
	Cancel(h modtools.Handle) error
}

// Result describes a completed dispatch.
type Result struct {
	Path    string          // archive that was imported
	Retried bool            // the fallback directory was needed
	Overlay modtools.Handle // zero if the overlay failed to launch
}

// Dispatcher turns a (champion, skin) selection into an installed skin with a
// running overlay. One dispatch runs at a time.
type Dispatcher struct {
	installer Installer
	root      string
	fallback  func(string) string
	directory func(string) (string, bool)

	mu      sync.Mutex
	overlay modtools.Handle
}

type Option func(*Dispatcher)

// WithFallback replaces the directory spelling table used for the single retry.
func WithFallback(fallback func(string) string) Option {
	return func(d *Dispatcher) { d.fallback = fallback }
}

// WithDirectories resolves a champion name to its indexed asset directory. It is
// consulted for the retry only when the spelling table has no entry for the name.
func WithDirectories(lookup func(name string) (string, bool)) Option {
	return func(d *Dispatcher) { d.directory = lookup }
}

// New returns a Dispatcher installing archives found under root.
func New(installer Installer, root string, opts ...Option) *Dispatcher {
	d := &Dispatcher{installer: installer, root: root, fallback: FallbackName}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) archivePath(championDir, skin string) string {
	return filepath.Join(d.root, championDir, skin+skins.ArchiveExt)
}

// alternate returns the directory spelling to retry with, or display itself when
// there is none.
func (d *Dispatcher) alternate(display string) string {
	if alt := d.fallback(display); alt != display {
		return alt
	}
	if d.directory != nil {
		if dir, ok := d.directory(display); ok && dir != "" {
			return dir
		}
	}
	return display
}

func validName(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

// Dispatch installs skin for the champion shown as display and starts the overlay.
// A failed import is retried once under the fallback directory spelling (the table,
// then the indexed directory), and only when that spelling differs. A failed overlay launch is logged, not returned.
func (d *Dispatcher) Dispatch(ctx context.Context, display, skin string) (Result, error) {
	if !validName(display) || !validName(skin) {
		return Result{}, ErrInvalidSelection
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	logger := slog.With("champion", display, "skin", skin)

	res := Result{Path: d.archivePath(display, skin)}
	if err := d.installer.Import(ctx, res.Path); err != nil {
		alt := d.alternate(display)
		if alt == display {
			return res, &InstallError{Path: res.Path, Err: err}
		}

		logger.Warn("import failed, retrying with alternate directory", "path", res.Path, "alternate", alt, "error", err)
		res.Path = d.archivePath(alt, skin)
		res.Retried = true
		if err := d.installer.Import(ctx, res.Path); err != nil {
			return res, &InstallError{Path: res.Path, Err: err}
		}
	}

	if err := d.installer.SaveProfile(ctx, skin); err != nil {
		return res, &ProfileError{Skin: skin, Err: err}
	}

	if d.overlay.Valid() {
		if err := d.installer.Cancel(d.overlay); err != nil {
			logger.Debug("previous overlay already gone", "error", err)
		}
		d.overlay = modtools.Handle{}
	}

	h, err := d.installer.RunOverlay(ctx)
	if err != nil {
		logger.Error("failed to launch overlay", "error", err)
		return res, nil
	}
	d.overlay = h
	res.Overlay = h

	logger.Info("skin installed", "path", res.Path, "retried", res.Retried)
	return res, nil
}
