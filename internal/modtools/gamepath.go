package modtools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// ErrGameNotFound is returned when no game directory was configured or detected.
var ErrGameNotFound = errors.New("game path not found, start the League client first")

var gameProcesses = map[string]bool{
	"LeagueClient.exe":      true,
	"League of Legends.exe": true,
	"LeagueClient":          true,
	"League of Legends":     true,
}

// ResolveGamePath returns configured if set, otherwise the directory detected
// from the running client.
func ResolveGamePath(ctx context.Context, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	return DetectGamePath(ctx)
}

// DetectGamePath finds the Game directory next to a running client executable.
func DetectGamePath(ctx context.Context) (string, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("list processes: %w", err)
	}

	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || !gameProcesses[name] {
			continue
		}
		exe, err := p.ExeWithContext(ctx)
		if err != nil {
			continue
		}
		if dir := GameDirFromExecutable(exe); dir != "" {
			return dir, nil
		}
	}

	return "", ErrGameNotFound
}

// GameDirFromExecutable maps a client executable path to the Game directory that
// the packaging tool expects. It returns "" for an executable that does not exist.
func GameDirFromExecutable(exe string) string {
	if _, err := os.Stat(exe); err != nil {
		return ""
	}
	dir := filepath.Dir(exe)
	if strings.HasPrefix(filepath.Base(exe), "LeagueClient") {
		dir = strings.Replace(dir, "LeagueClient", "Game", 1)
	}
	return dir
}
