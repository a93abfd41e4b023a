package modtools

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/process"
)

// DefaultKillGrace is how long a terminated process tree gets before it is killed.
const DefaultKillGrace = 5 * time.Second

// ErrUnknownHandle is returned when cancelling a process the registry no longer owns.
var ErrUnknownHandle = errors.New("unknown process handle")

// Handle identifies a background process owned by a Registry.
type Handle struct {
	ID   string
	done <-chan struct{}
}

// Done is closed once the process has exited.
func (h Handle) Done() <-chan struct{} {
	return h.done
}

// Valid reports whether h refers to a started process.
func (h Handle) Valid() bool {
	return h.ID != ""
}

type running struct {
	name string
	cmd  *exec.Cmd
	done chan struct{}
}

// Registry owns long-running child processes: it streams their output to the log
// and stops whole process trees, terminating first and killing after a grace period.
type Registry struct {
	mu        sync.Mutex
	procs     map[string]*running
	killGrace time.Duration
	wg        sync.WaitGroup
}

func NewRegistry() *Registry {
	return &Registry{procs: map[string]*running{}, killGrace: DefaultKillGrace}
}

// Start launches cmd and tracks it until it exits.
func (r *Registry) Start(name string, cmd *exec.Cmd) (Handle, error) {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Handle{}, fmt.Errorf("%s stdout: %w", name, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Handle{}, fmt.Errorf("%s stderr: %w", name, err)
	}

	if err := cmd.Start(); err != nil {
		return Handle{}, fmt.Errorf("start %s: %w", name, err)
	}

	proc := &running{name: name, cmd: cmd, done: make(chan struct{})}
	id := uuid.NewString()

	r.mu.Lock()
	r.procs[id] = proc
	r.mu.Unlock()

	logger := slog.With("process", name, "pid", cmd.Process.Pid, "handle", id)
	logger.Info("process started")

	var streams sync.WaitGroup
	streams.Add(2)
	go func() { defer streams.Done(); logLines(stdout, logger, slog.LevelInfo) }()
	go func() { defer streams.Done(); logLines(stderr, logger, slog.LevelWarn) }()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		streams.Wait()
		err := cmd.Wait()

		r.mu.Lock()
		delete(r.procs, id)
		r.mu.Unlock()
		close(proc.done)

		if err != nil {
			logger.Warn("process exited", "error", err)
			return
		}
		logger.Info("process exited")
	}()

	return Handle{ID: id, done: proc.done}, nil
}

func logLines(rd io.Reader, logger *slog.Logger, level slog.Level) {
	scanner := bufio.NewScanner(rd)
	for scanner.Scan() {
		logger.Log(context.Background(), level, scanner.Text())
	}
}

// Running returns the number of live processes.
func (r *Registry) Running() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.procs)
}

// Cancel stops the process tree behind h and waits for it to exit.
func (r *Registry) Cancel(h Handle) error {
	r.mu.Lock()
	proc, ok := r.procs[h.ID]
	r.mu.Unlock()
	if !ok {
		return ErrUnknownHandle
	}

	r.stop(proc)
	return nil
}

func (r *Registry) stop(proc *running) {
	pid := int32(proc.cmd.Process.Pid)
	logger := slog.With("process", proc.name, "pid", pid)

	tree := processTree(pid)
	for _, p := range tree {
		if err := p.Terminate(); err != nil {
			logger.Debug("terminate failed", "child", p.Pid, "error", err)
		}
	}

	select {
	case <-proc.done:
		return
	case <-time.After(r.killGrace):
	}

	logger.Warn("process did not exit after terminate, killing", "grace", r.killGrace)
	for _, p := range tree {
		_ = p.Kill()
	}
	_ = proc.cmd.Process.Kill()
	<-proc.done
}

// processTree returns the descendants of pid, deepest first, followed by pid itself.
func processTree(pid int32) []*process.Process {
	root, err := process.NewProcess(pid)
	if err != nil {
		return nil
	}

	var tree []*process.Process
	var walk func(p *process.Process)
	walk = func(p *process.Process) {
		children, err := p.Children()
		if err == nil {
			for _, child := range children {
				walk(child)
			}
		}
		tree = append(tree, p)
	}
	walk(root)
	return tree
}

// Shutdown stops every live process, giving up when ctx is done.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	procs := make([]*running, 0, len(r.procs))
	for _, p := range r.procs {
		procs = append(procs, p)
	}
	r.mu.Unlock()

	var stops sync.WaitGroup
	for _, p := range procs {
		stops.Add(1)
		go func(p *running) {
			defer stops.Done()
			r.stop(p)
		}(p)
	}

	done := make(chan struct{})
	go func() {
		stops.Wait()
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("processes still running at shutdown: %w", ctx.Err())
	}
}
