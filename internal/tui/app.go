package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"lostfound-desk/internal/alert"
	"lostfound-desk/internal/intake"
	"lostfound-desk/internal/model"
	"lostfound-desk/internal/workflow"
)

type screen int

const (
	screenIntake screen = iota
	screenSearch
)

// RefreshMsg asks the app to re-read the flows it renders. Observers send
// it from other goroutines when a timer or a background call changes state.
type RefreshMsg struct{}

type submitDoneMsg struct {
	outcome intake.Outcome
	err     error
}

type searchDoneMsg struct{ err error }

type updateDoneMsg struct{ err error }

// AppOption customises an App.
type AppOption func(*App)

// WithLocation sets the zone record timestamps are shown in.
func WithLocation(loc *time.Location) AppOption {
	return func(a *App) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// WithLogger sets the logger for UI events.
func WithLogger(l *zap.Logger) AppOption {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// App is the desk terminal: an intake form and a search screen sharing one
// alert line.
type App struct {
	ctx    context.Context
	intake *intake.Coordinator
	flow   *workflow.Workflow
	alerts *alert.Queue
	logger *zap.Logger
	loc    *time.Location

	screen screen
	width  int
	height int

	// intake form
	inputs  map[model.Field]*textinput.Model
	touched map[model.Field]bool
	focus   int // index into model.Fields; len(model.Fields) is the submit button

	// search screen
	search       textinput.Model
	results      table.Model
	tableFocused bool
}

// NewApp builds the terminal app over the two flows and the alert queue.
func NewApp(ctx context.Context, c *intake.Coordinator, w *workflow.Workflow, q *alert.Queue, opts ...AppOption) *App {
	a := &App{
		ctx:     ctx,
		intake:  c,
		flow:    w,
		alerts:  q,
		logger:  zap.NewNop(),
		loc:     time.Local,
		inputs:  make(map[model.Field]*textinput.Model),
		touched: make(map[model.Field]bool),
	}
	for _, opt := range opts {
		opt(a)
	}

	for _, f := range model.Fields {
		if f.IsSelector() {
			continue
		}
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 120
		switch f {
		case model.FieldRUT:
			in.Placeholder = "12.345.678-9"
		case model.FieldPhone:
			in.Placeholder = "+56 9 1234 5678"
		case model.FieldEmail:
			in.Placeholder = "nombre@correo.cl"
		case model.FieldNotes:
			in.Placeholder = "Opcional"
			in.CharLimit = 500
		}
		a.inputs[f] = &in
	}
	a.inputs[model.Fields[0]].Focus()

	a.search = textinput.New()
	a.search.Prompt = "RUT: "
	a.search.Placeholder = "12.345.678-9"
	a.search.CharLimit = 20

	a.results = table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 5},
			{Title: "Nombre", Width: 22},
			{Title: "Tipo", Width: 12},
			{Title: "Talla", Width: 5},
			{Title: "Estado", Width: 9},
			{Title: "Devolución", Width: 36},
			{Title: "Registro", Width: 16},
		}),
		table.WithHeight(8),
	)
	return a
}

func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil
	case RefreshMsg:
		a.syncResults()
		return a, nil
	case submitDoneMsg:
		return a, a.handleSubmitDone(msg)
	case searchDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, workflow.ErrBusy) {
			a.logger.Debug("search finished with error", zap.Error(msg.err))
		}
		a.syncResults()
		return a, nil
	case updateDoneMsg:
		a.syncResults()
		return a, nil
	case tea.KeyMsg:
		return a, a.handleKey(msg)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "f1":
		a.switchScreen(screenIntake)
		return nil
	case "f2":
		a.switchScreen(screenSearch)
		return nil
	case "esc":
		if a.flow.Snapshot().Dialog != workflow.DialogClosed {
			// Refused while the update is in flight.
			_ = a.flow.CloseStatusDialog()
			return nil
		}
		a.alerts.Close(alert.ReasonExplicit)
		return nil
	}

	if a.screen == screenIntake {
		return a.handleIntakeKey(msg)
	}
	return a.handleSearchKey(msg)
}

func (a *App) switchScreen(s screen) {
	if a.screen == s {
		return
	}
	a.screen = s
	if s == screenSearch {
		a.blurIntake()
		a.tableFocused = false
		a.results.Blur()
		a.search.Focus()
		return
	}
	a.search.Blur()
	a.results.Blur()
	a.focusIntake(a.focus)
}

func (a *App) View() string {
	var b strings.Builder
	b.WriteString(a.renderHeader())
	b.WriteString("\n\n")
	if al := a.alerts.Current(); al.Open {
		tone := toneStyle(severityTone(al.Severity))
		b.WriteString(alertBox.BorderForeground(tone.GetForeground()).Render(
			tone.Bold(true).Render(al.Severity.Title()) + "  " + al.Message,
		))
		b.WriteString("\n")
	}
	if a.screen == screenIntake {
		b.WriteString(a.renderIntake())
	} else {
		b.WriteString(a.renderSearch())
	}
	return b.String()
}

func (a *App) renderHeader() string {
	tabs := []string{"F1 Registrar prenda", "F2 Buscar por RUT"}
	for i, t := range tabs {
		if screen(i) == a.screen {
			tabs[i] = activeTabStyle.Render(t)
		} else {
			tabs[i] = tabStyle.Render(t)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, titleStyle.Render("Objetos Perdidos"), strings.Join(tabs, ""))
}
