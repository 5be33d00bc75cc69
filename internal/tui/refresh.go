package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Refresher forwards state-change notifications to a running program as
// RefreshMsg. Notify never blocks, so observers may fire from inside
// App.Update; pending notifications collapse into one refresh.
type Refresher struct {
	pending chan struct{}
}

// NewRefresher creates an idle Refresher; call Run to start delivering.
func NewRefresher() *Refresher {
	return &Refresher{pending: make(chan struct{}, 1)}
}

// Notify schedules a refresh.
func (r *Refresher) Notify() {
	select {
	case r.pending <- struct{}{}:
	default:
	}
}

// Run delivers refreshes to p until ctx is done.
func (r *Refresher) Run(ctx context.Context, p *tea.Program) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.pending:
			p.Send(RefreshMsg{})
		}
	}
}
