package catalogsync

import (
	"sync"

	"github.com/pterm/pterm"
)

// progress counts finished tasks, on a terminal bar when enabled.
type progress struct {
	mu  sync.Mutex
	bar *pterm.ProgressbarPrinter
}

func startProgress(enabled bool, title string, total int) *progress {
	p := &progress{}
	if !enabled || total == 0 {
		return p
	}
	bar, err := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle(title).
		WithShowElapsedTime(true).
		WithShowCount(true).
		Start()
	if err == nil {
		p.bar = bar
	}
	return p
}

func (p *progress) Increment() {
	if p.bar == nil {
		return
	}
	p.mu.Lock()
	p.bar.Increment()
	p.mu.Unlock()
}

func (p *progress) Stop() {
	if p.bar == nil {
		return
	}
	p.mu.Lock()
	_, _ = p.bar.Stop()
	p.mu.Unlock()
}
