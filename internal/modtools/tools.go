package modtools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// ProfileName is the single profile the picker writes and runs.
const ProfileName = "Default Profile"

// ToolError is a failed packaging tool invocation.
type ToolError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("mod-tools %s failed", e.Args[0])
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

type Config struct {
	Executable   string
	InstalledDir string
	ProfilesDir  string
	GamePath     string
	Timeout      time.Duration
}

// Tools drives the external packaging tool. Import and SaveProfile run to completion
// under Timeout; the overlay runs in the background under the Registry.
type Tools struct {
	cfg      Config
	registry *Registry
}

func New(cfg Config, registry *Registry) *Tools {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &Tools{cfg: cfg, registry: registry}
}

// ModName is the installed name of a skin archive or skin name.
func ModName(skin string) string {
	return slug.Make(strings.TrimSuffix(filepath.Base(skin), ".zip"))
}

func (t *Tools) profilePath() string {
	return filepath.Join(t.cfg.ProfilesDir, ProfileName)
}

func (t *Tools) gameFlag() string {
	return "--game:" + t.cfg.GamePath
}

// Import unpacks a skin archive into the installed directory.
func (t *Tools) Import(ctx context.Context, archive string) error {
	return t.run(ctx,
		"import",
		archive,
		filepath.Join(t.cfg.InstalledDir, ModName(archive)),
		t.gameFlag(),
	)
}

// SaveProfile builds the overlay profile enabling only skin.
func (t *Tools) SaveProfile(ctx context.Context, skin string) error {
	return t.run(ctx,
		"mkoverlay",
		t.cfg.InstalledDir,
		t.profilePath(),
		t.gameFlag(),
		"--mods:"+ModName(skin),
		"--noTFT",
	)
}

// RunOverlay starts the overlay in the background. The process outlives ctx and
// must be stopped through the Registry.
func (t *Tools) RunOverlay(_ context.Context) (Handle, error) {
	cmd := exec.Command(t.cfg.Executable,
		"runoverlay",
		t.profilePath(),
		t.profilePath()+".config",
		t.gameFlag(),
		"--opts:none",
	)
	return t.registry.Start("overlay", cmd)
}

// Cancel stops a running overlay.
func (t *Tools) Cancel(h Handle) error {
	return t.registry.Cancel(h)
}

func (t *Tools) run(ctx context.Context, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.cfg.Executable, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// grandchildren may hold the output pipes open after a timeout kill
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	slog.Debug("mod-tools finished", "command", args[0], "duration", time.Since(start), "output", strings.TrimSpace(stdout.String()))

	if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("timed out after %s: %w", t.cfg.Timeout, ctx.Err())
	}
	if err != nil || stderr.Len() > 0 {
		return &ToolError{Args: args, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return nil
}
