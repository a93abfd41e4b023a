package modtools

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTool writes a shell script standing in for mod-tools. It appends its
// arguments to a log file, one invocation per line, then runs body.
func fakeTool(t *testing.T, body string) (exe, argLog string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tool is a shell script")
	}
	dir := t.TempDir()
	exe = filepath.Join(dir, "mod-tools")
	argLog = filepath.Join(dir, "args.log")
	script := "#!/bin/sh\necho \"$*\" >> '" + argLog + "'\n" + body + "\n"
	require.NoError(t, os.WriteFile(exe, []byte(script), 0o755))
	return exe, argLog
}

func readArgs(t *testing.T, argLog string) []string {
	t.Helper()
	data, err := os.ReadFile(argLog)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func newTools(exe string, timeout time.Duration) *Tools {
	return New(Config{
		Executable:   exe,
		InstalledDir: "installed",
		ProfilesDir:  "profiles",
		GamePath:     "/games/League/Game",
		Timeout:      timeout,
	}, NewRegistry())
}

func TestModName(t *testing.T) {
	assert.Equal(t, "striker-ezreal", ModName("skins/Ezreal/Striker Ezreal.zip"))
	assert.Equal(t, "striker-ezreal", ModName("Striker Ezreal"))
	assert.Equal(t, ModName("skins/Vel'Koz/Arclight Vel'Koz.zip"), ModName("Arclight Vel'Koz"))
}

func TestImportAndSaveProfileArguments(t *testing.T) {
	exe, argLog := fakeTool(t, "exit 0")
	tools := newTools(exe, 5*time.Second)
	ctx := context.Background()

	require.NoError(t, tools.Import(ctx, "skins/Ezreal/Striker Ezreal.zip"))
	require.NoError(t, tools.SaveProfile(ctx, "Striker Ezreal"))

	args := readArgs(t, argLog)
	require.Len(t, args, 2)
	assert.Equal(t, "import skins/Ezreal/Striker Ezreal.zip installed/striker-ezreal --game:/games/League/Game", args[0])
	assert.Equal(t, "mkoverlay installed profiles/Default Profile --game:/games/League/Game --mods:striker-ezreal --noTFT", args[1])
}

func TestRunFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("exit code", func(t *testing.T) {
		exe, _ := fakeTool(t, "exit 3")
		err := newTools(exe, 5*time.Second).Import(ctx, "a.zip")
		var toolErr *ToolError
		require.True(t, errors.As(err, &toolErr))
		assert.Equal(t, "import", toolErr.Args[0])
	})

	t.Run("stderr output", func(t *testing.T) {
		exe, _ := fakeTool(t, "echo 'bad archive' >&2")
		err := newTools(exe, 5*time.Second).Import(ctx, "a.zip")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad archive")
	})

	t.Run("timeout", func(t *testing.T) {
		exe, _ := fakeTool(t, "exec sleep 10")
		start := time.Now()
		err := newTools(exe, 200*time.Millisecond).SaveProfile(ctx, "x")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("missing executable", func(t *testing.T) {
		err := newTools(filepath.Join(t.TempDir(), "nope"), time.Second).Import(ctx, "a.zip")
		assert.Error(t, err)
	})
}

func TestRunOverlayAndCancel(t *testing.T) {
	exe, argLog := fakeTool(t, "echo overlay ready\nexec sleep 30")
	tools := newTools(exe, 5*time.Second)

	h, err := tools.RunOverlay(context.Background())
	require.NoError(t, err)
	require.True(t, h.Valid())

	require.Eventually(t, func() bool {
		_, err := os.Stat(argLog)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "runoverlay profiles/Default Profile profiles/Default Profile.config --game:/games/League/Game --opts:none", readArgs(t, argLog)[0])

	require.NoError(t, tools.Cancel(h))
	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("overlay still running after cancel")
	}
	assert.ErrorIs(t, tools.Cancel(h), ErrUnknownHandle)
}

func TestGameDirFromExecutable(t *testing.T) {
	root := t.TempDir()
	clientDir := filepath.Join(root, "LeagueClient")
	require.NoError(t, os.MkdirAll(clientDir, 0o755))
	exe := filepath.Join(clientDir, "LeagueClient.exe")
	require.NoError(t, os.WriteFile(exe, nil, 0o644))

	assert.Equal(t, filepath.Join(root, "Game"), GameDirFromExecutable(exe))
	assert.Equal(t, "", GameDirFromExecutable(filepath.Join(root, "missing.exe")))
}

func TestResolveGamePathConfigured(t *testing.T) {
	path, err := ResolveGamePath(context.Background(), "/configured/Game")
	require.NoError(t, err)
	assert.Equal(t, "/configured/Game", path)
}
