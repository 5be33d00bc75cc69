package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"lostfound-desk/internal/model"
	"lostfound-desk/internal/workflow"
)

func (a *App) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	snap := a.flow.Snapshot()
	if snap.Dialog != workflow.DialogClosed {
		return a.handleDialogKey(msg, snap)
	}

	switch msg.String() {
	case "ctrl+l":
		a.flow.ClearSearch()
		a.search.SetValue("")
		a.tableFocused = false
		a.results.Blur()
		a.search.Focus()
		a.syncResults()
		return nil
	case "tab", "shift+tab":
		a.tableFocused = !a.tableFocused && len(a.results.Rows()) > 0
		if a.tableFocused {
			a.search.Blur()
			a.results.Focus()
		} else {
			a.results.Blur()
			a.search.Focus()
		}
		return nil
	}

	if a.tableFocused {
		if msg.String() == "enter" {
			return a.openSelected()
		}
		var cmd tea.Cmd
		a.results, cmd = a.results.Update(msg)
		return cmd
	}

	if msg.String() == "enter" {
		if snap.Phase == workflow.Searching {
			return nil
		}
		flow, ctx, rut := a.flow, a.ctx, a.search.Value()
		return func() tea.Msg {
			return searchDoneMsg{err: flow.Search(ctx, rut)}
		}
	}

	updated, cmd := a.search.Update(msg)
	if updated.Value() != a.search.Value() {
		if err := a.flow.SetIdentifier(updated.Value()); err != nil {
			return nil
		}
	}
	a.search = updated
	return cmd
}

func (a *App) openSelected() tea.Cmd {
	rows := a.results.SelectedRow()
	if rows == nil {
		return nil
	}
	id, err := strconv.ParseInt(rows[0], 10, 64)
	if err != nil {
		return nil
	}
	for _, g := range a.flow.Results() {
		if g.ID == id {
			if err := a.flow.OpenStatusDialog(g); err != nil {
				a.logger.Debug("status dialog refused", zap.Error(err))
			}
			return nil
		}
	}
	return nil
}

func (a *App) handleDialogKey(msg tea.KeyMsg, snap workflow.Snapshot) tea.Cmd {
	if snap.Dialog == workflow.DialogUpdating || snap.Pending == nil {
		return nil
	}
	switch msg.String() {
	case "left", "up", "h", "k":
		a.cycleStatus(snap.Pending.Proposed, -1)
	case "right", "down", "l", "j", " ":
		a.cycleStatus(snap.Pending.Proposed, 1)
	case "enter":
		flow, ctx := a.flow, a.ctx
		return func() tea.Msg {
			return updateDoneMsg{err: flow.ConfirmStatusUpdate(ctx)}
		}
	}
	return nil
}

func (a *App) cycleStatus(current model.ReturnStatus, step int) {
	n := len(model.ReturnStatuses)
	idx := -1
	for i, s := range model.ReturnStatuses {
		if s == current {
			idx = i
		}
	}
	switch {
	case idx < 0 && step < 0:
		idx = n - 1
	case idx < 0:
		idx = 0
	default:
		idx = ((idx+step)%n + n) % n
	}
	_ = a.flow.SetProposedStatus(model.ReturnStatuses[idx])
}

func (a *App) syncResults() {
	garments := a.flow.Results()
	rows := make([]table.Row, 0, len(garments))
	for _, g := range garments {
		rows = append(rows, table.Row{
			strconv.FormatInt(g.ID, 10),
			g.OwnerName,
			string(g.Type),
			string(g.Size),
			string(g.Condition),
			g.ReturnStatus.Label(),
			a.formatTime(g.CreatedAt),
		})
	}
	a.results.SetRows(rows)
	if len(rows) == 0 && a.tableFocused {
		a.tableFocused = false
		a.results.Blur()
		if a.screen == screenSearch {
			a.search.Focus()
		}
	}
}

func (a *App) formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(a.loc).Format("02-01-2006 15:04")
}

func (a *App) renderSearch() string {
	snap := a.flow.Snapshot()
	var b strings.Builder

	b.WriteString(a.search.View())
	if snap.Phase == workflow.Searching {
		b.WriteString("  ")
		b.WriteString(mutedText.Render("Buscando..."))
	}
	b.WriteString("\n\n")

	if snap.Performed && snap.Phase != workflow.Searching {
		if len(snap.Results) == 0 {
			b.WriteString(mutedText.Render("No se encontraron prendas para el RUT ingresado"))
			b.WriteString("\n")
		} else {
			b.WriteString(fmt.Sprintf("%d prenda(s) encontrada(s)\n", len(snap.Results)))
			b.WriteString(a.results.View())
			b.WriteString("\n")
		}
	}

	if snap.Dialog != workflow.DialogClosed && snap.Pending != nil {
		b.WriteString(a.renderDialog(snap))
		b.WriteString("\n")
	}

	help := "enter buscar · tab ir a resultados · ctrl+l limpiar · esc cerrar aviso"
	if a.tableFocused {
		help = "↑↓ mover · enter cambiar estado · tab volver al RUT"
	}
	if snap.Dialog != workflow.DialogClosed {
		help = "←→ elegir estado · enter confirmar · esc cancelar"
	}
	b.WriteString(helpStyle.Render(help))
	return b.String()
}

func (a *App) renderDialog(snap workflow.Snapshot) string {
	t := snap.Pending
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Cambiar estado de la prenda #%d", t.Record.ID)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s · %s · %s\n", t.Record.OwnerName, t.Record.Type, t.Record.Size))
	b.WriteString("Estado actual: ")
	b.WriteString(toneStyle(t.Record.ReturnStatus.Tone()).Render(t.Record.ReturnStatus.Label()))
	b.WriteString("\n\n")

	for _, s := range model.ReturnStatuses {
		marker := "  "
		line := string(s)
		if s == t.Proposed {
			marker = "› "
			line = toneStyle(s.Tone()).Bold(true).Render(line)
		}
		b.WriteString(marker + line + "\n")
	}

	if t.Proposed.IsSet() && t.Proposed != t.Record.ReturnStatus {
		b.WriteString("\n")
		b.WriteString(mutedText.Render(t.Preview()))
		b.WriteString("\n")
	}
	if snap.Dialog == workflow.DialogUpdating {
		b.WriteString("\n")
		b.WriteString(mutedText.Render("Actualizando..."))
	}
	return dialogStyle.Render(b.String())
}
