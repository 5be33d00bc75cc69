package tui

import (
	"context"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lostfound-desk/internal/alert"
	"lostfound-desk/internal/intake"
	"lostfound-desk/internal/workflow"
)

func TestRefresher_NotifyCoalesces(t *testing.T) {
	r := NewRefresher()
	r.Notify()
	r.Notify()
	r.Notify()
	assert.Len(t, r.pending, 1)
}

// The observers run inside App.Update; a running program must keep taking
// messages while they fire.
func TestProgram_ObserversDoNotStallEventLoop(t *testing.T) {
	fb := &fakeBackend{records: twoRecords()}
	refresher := NewRefresher()
	q := alert.New(time.Hour, alert.WithObserver(func(alert.Alert) { refresher.Notify() }))
	c := intake.NewCoordinator(fb, q, nil)
	w := workflow.New(fb, q,
		workflow.WithCloseDelay(0),
		workflow.WithObserver(func(workflow.Snapshot) { refresher.Notify() }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app := NewApp(ctx, c, w, q)
	program := tea.NewProgram(app,
		tea.WithContext(ctx),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
	)
	go refresher.Run(ctx, program)

	finished := make(chan tea.Model, 1)
	go func() {
		m, _ := program.Run()
		finished <- m
	}()

	sent := make(chan struct{})
	go func() {
		program.Send(keyF2)
		program.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")})
		program.Send(keyCtrlL)
		program.Send(keyEsc)
		program.Send(tea.Quit())
		close(sent)
	}()

	select {
	case <-sent:
	case <-time.After(2 * time.Second):
		t.Fatal("event loop stopped taking messages")
	}

	select {
	case m := <-finished:
		require.Same(t, app, m)
	case <-time.After(2 * time.Second):
		t.Fatal("program did not exit")
	}

	snap := w.Snapshot()
	assert.Empty(t, snap.Identifier)
	assert.False(t, snap.Performed)
	assert.False(t, q.Current().Open, "esc dismissed the clear notice")
}
