package tui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"lostfound-desk/internal/intake"
	"lostfound-desk/internal/model"
)

func (a *App) focusedField() (model.Field, bool) {
	if a.focus < 0 || a.focus >= len(model.Fields) {
		return 0, false
	}
	return model.Fields[a.focus], true
}

func (a *App) blurIntake() {
	for _, in := range a.inputs {
		in.Blur()
	}
}

func (a *App) focusIntake(i int) {
	n := len(model.Fields) + 1
	i = ((i % n) + n) % n
	if f, ok := a.focusedField(); ok && i != a.focus {
		a.touched[f] = true
	}
	a.focus = i
	a.blurIntake()
	if f, ok := a.focusedField(); ok {
		if in, ok := a.inputs[f]; ok {
			in.Focus()
		}
	}
}

func (a *App) handleIntakeKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		a.focusIntake(a.focus + 1)
		return nil
	case "shift+tab", "up":
		a.focusIntake(a.focus - 1)
		return nil
	case "ctrl+s":
		return a.submit()
	case "enter":
		if a.focus == len(model.Fields) {
			return a.submit()
		}
		a.focusIntake(a.focus + 1)
		return nil
	}

	f, ok := a.focusedField()
	if !ok {
		return nil
	}
	if f.IsSelector() {
		switch msg.String() {
		case "left", "h":
			a.cycleSelector(f, -1)
		case "right", "l", " ":
			a.cycleSelector(f, 1)
		}
		return nil
	}

	in := a.inputs[f]
	updated, cmd := in.Update(msg)
	if updated.Value() == in.Value() {
		*in = updated
		return cmd
	}
	if err := a.intake.SetField(f, updated.Value()); err != nil {
		// The form is frozen while a submission is in flight.
		return nil
	}
	*in = updated
	return cmd
}

func selectorOptions(f model.Field) []string {
	var out []string
	switch f {
	case model.FieldType:
		for _, v := range model.GarmentTypes {
			out = append(out, string(v))
		}
	case model.FieldSize:
		for _, v := range model.Sizes {
			out = append(out, string(v))
		}
	case model.FieldCondition:
		for _, v := range model.Conditions {
			out = append(out, string(v))
		}
	}
	return out
}

func (a *App) cycleSelector(f model.Field, step int) {
	opts := selectorOptions(f)
	if len(opts) == 0 {
		return
	}
	current := a.intake.Draft().Get(f)
	idx := -1
	for i, o := range opts {
		if o == current {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && step < 0:
		idx = len(opts) - 1
	case idx < 0:
		idx = 0
	default:
		idx = ((idx+step)%len(opts) + len(opts)) % len(opts)
	}
	if err := a.intake.SetField(f, opts[idx]); err == nil {
		a.touched[f] = true
	}
}

func (a *App) submit() tea.Cmd {
	if a.intake.Busy() {
		return nil
	}
	for _, f := range model.RequiredFields {
		a.touched[f] = true
	}
	c, ctx := a.intake, a.ctx
	return func() tea.Msg {
		out, err := c.Submit(ctx)
		return submitDoneMsg{outcome: out, err: err}
	}
}

func (a *App) handleSubmitDone(msg submitDoneMsg) tea.Cmd {
	if errors.Is(msg.err, intake.ErrBusy) {
		return nil
	}
	if !msg.outcome.OK() {
		return nil
	}
	// The coordinator reset the draft; mirror it into the inputs.
	draft := a.intake.Draft()
	for f, in := range a.inputs {
		in.SetValue(draft.Get(f))
	}
	a.touched = make(map[model.Field]bool)
	a.focus = 0
	a.blurIntake()
	if a.screen == screenIntake {
		return a.inputs[model.Fields[0]].Focus()
	}
	return nil
}

func (a *App) renderIntake() string {
	var b strings.Builder
	draft := a.intake.Draft()
	errs := a.intake.FieldErrors()

	for i, f := range model.Fields {
		label := f.Label()
		if f != model.FieldNotes {
			label += " *"
		}
		style := labelStyle
		if i == a.focus {
			style = focusedLabel
		}
		b.WriteString(style.Render(label))
		if f.IsSelector() {
			b.WriteString(renderSelector(draft.Get(f), i == a.focus))
		} else {
			b.WriteString(a.inputs[f].View())
		}
		b.WriteString("\n")
		if msg, ok := errs[f]; ok && a.touched[f] {
			b.WriteString(errorText.Render(msg))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	button := "Registrar Prenda"
	style := buttonStyle
	switch {
	case a.intake.Busy():
		button = "Registrando..."
		style = disabledButton
	case !a.intake.Submittable():
		style = disabledButton
	}
	if a.focus == len(model.Fields) {
		style = style.Underline(true)
	}
	b.WriteString(style.Render(button))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab/↑↓ mover · ←→ elegir opción · ctrl+s registrar · esc cerrar aviso · ctrl+c salir"))
	return b.String()
}

func renderSelector(value string, focused bool) string {
	if value == "" {
		text := "Seleccione..."
		if focused {
			text = "‹ " + text + " ›"
		}
		return mutedText.Render(text)
	}
	if focused {
		return "‹ " + value + " ›"
	}
	return value
}
