// Package workflow holds the search result set and the dialog-gated
// return-status transition protocol.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"lostfound-desk/internal/alert"
	"lostfound-desk/internal/backend"
	"lostfound-desk/internal/logging"
	"lostfound-desk/internal/model"
)

var (
	// ErrBusy is returned when a control is used while its flow is in flight.
	ErrBusy = errors.New("workflow: operation in progress")
	// ErrNoDialog is returned when the status dialog is not open.
	ErrNoDialog = errors.New("workflow: status dialog is closed")
)

// API is the part of the backend the workflow needs. *backend.Client
// satisfies it.
type API interface {
	SearchByRUT(ctx context.Context, rut string) (*backend.SearchResult, error)
	UpdateReturnStatus(ctx context.Context, id int64, status model.ReturnStatus) (*model.StatusUpdateResponse, error)
}

// Alerter surfaces one message at a time. *alert.Queue satisfies it.
type Alerter interface {
	Show(message string, severity alert.Severity)
}

// SearchPhase is the state of the search flow.
type SearchPhase int

const (
	SearchIdle SearchPhase = iota
	Searching
	ResultsEmpty
	ResultsPresent
)

func (p SearchPhase) String() string {
	switch p {
	case Searching:
		return "searching"
	case ResultsEmpty:
		return "results-empty"
	case ResultsPresent:
		return "results-present"
	default:
		return "idle"
	}
}

// DialogPhase is the state of the status dialog.
type DialogPhase int

const (
	DialogClosed DialogPhase = iota
	DialogOpen
	DialogUpdating
)

func (p DialogPhase) String() string {
	switch p {
	case DialogOpen:
		return "open"
	case DialogUpdating:
		return "updating"
	default:
		return "closed"
	}
}

// Transition is the proposal held by an open dialog. Record is a snapshot
// taken when the dialog opened; later searches never change it.
type Transition struct {
	Record   model.Garment
	Proposed model.ReturnStatus
}

// Preview is the confirmation line shown under the status selector.
func (t Transition) Preview() string {
	if !t.Proposed.IsSet() {
		return ""
	}
	return fmt.Sprintf("La prenda cambiará su estado a: %q", string(t.Proposed))
}

// Snapshot is a consistent copy of the workflow state for rendering.
type Snapshot struct {
	Identifier string
	Phase      SearchPhase
	Performed  bool
	Results    []model.Garment
	Dialog     DialogPhase
	Pending    *Transition
}

// Option customises a Workflow.
type Option func(*Workflow)

// WithCloseDelay sets how long a successful update stays visible before the
// dialog closes.
func WithCloseDelay(d time.Duration) Option {
	return func(w *Workflow) { w.closeDelay = d }
}

// WithClock replaces time.Now for patch timestamps.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Workflow) { w.logger = l }
}

// WithObserver registers fn to be called, outside the lock, after every
// state change.
func WithObserver(fn func(Snapshot)) Option {
	return func(w *Workflow) { w.observer = fn }
}

// Workflow owns the search result set and the pending status transition.
// Search and update are tracked separately and never block each other.
type Workflow struct {
	mu sync.Mutex

	identifier string
	phase      SearchPhase
	performed  bool
	results    []model.Garment
	searchGen  uint64

	dialog     DialogPhase
	pending    Transition
	dialogGen  uint64
	closeTimer *time.Timer

	api        API
	alerts     Alerter
	closeDelay time.Duration
	now        func() time.Time
	logger     *zap.Logger
	observer   func(Snapshot)
}

// New creates an idle Workflow.
func New(api API, alerts Alerter, opts ...Option) *Workflow {
	w := &Workflow{
		api:        api,
		alerts:     alerts,
		results:    []model.Garment{},
		closeDelay: 500 * time.Millisecond,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = logging.OrNop(w.logger)
	return w
}

// Snapshot returns a copy of the current state.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// Results returns a copy of the current result set.
func (w *Workflow) Results() []model.Garment {
	w.mu.Lock()
	defer w.mu.Unlock()
	return cloneAll(w.results)
}

// Performed reports whether a search has run since the last clear.
func (w *Workflow) Performed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.performed
}

// SetIdentifier edits the search input. The input is locked while searching.
func (w *Workflow) SetIdentifier(identifier string) error {
	w.mu.Lock()
	if w.phase == Searching {
		w.mu.Unlock()
		return ErrBusy
	}
	w.identifier = identifier
	w.mu.Unlock()
	w.notify()
	return nil
}

// Search replaces the result set with the garments registered under
// identifier. Failures clear the result set; every outcome is surfaced
// through the alerter.
func (w *Workflow) Search(ctx context.Context, identifier string) error {
	rut := strings.TrimSpace(identifier)
	if rut == "" {
		w.alerts.Show("Por favor ingrese un RUT para buscar", alert.SeverityError)
		return &backend.Error{Kind: backend.KindValidation}
	}

	w.mu.Lock()
	if w.phase == Searching {
		w.mu.Unlock()
		return ErrBusy
	}
	w.searchGen++
	gen := w.searchGen
	w.identifier = identifier
	w.phase = Searching
	w.performed = true
	w.mu.Unlock()
	w.notify()

	res, err := w.api.SearchByRUT(ctx, rut)

	w.mu.Lock()
	if gen != w.searchGen {
		w.mu.Unlock()
		w.logger.Debug("dropping stale search result", zap.String("rut", rut))
		return err
	}
	var (
		message  string
		severity alert.Severity
	)
	if err != nil {
		w.results = []model.Garment{}
		w.phase = ResultsEmpty
		message, severity = searchFailureMessage(err), alert.SeverityError
	} else {
		w.results = res.Garments
		if w.results == nil {
			w.results = []model.Garment{}
		}
		if len(w.results) == 0 {
			w.phase = ResultsEmpty
			message, severity = res.Message, alert.SeverityInfo
			if message == "" {
				message = "No se encontraron prendas"
			}
		} else {
			w.phase = ResultsPresent
			message = fmt.Sprintf("Se encontraron %d prenda(s) para el RUT %s", len(w.results), rut)
			severity = alert.SeveritySuccess
		}
	}
	count := len(w.results)
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn("search failed", zap.String("rut", rut), zap.String("kind", string(backend.KindOf(err))), zap.Error(err))
	} else {
		w.logger.Info("search completed", zap.String("rut", rut), zap.Int("count", count))
	}
	w.alerts.Show(message, severity)
	w.notify()
	return err
}

func searchFailureMessage(err error) string {
	be, _ := backend.AsError(err)
	switch backend.KindOf(err) {
	case backend.KindTimeout:
		return "La búsqueda tardó demasiado. Intente nuevamente."
	case backend.KindRouteNotFound:
		return "Endpoint no encontrado. Verifique la configuración del servidor."
	case backend.KindBadRequest:
		if be.Message != "" {
			return be.Message
		}
		return "Solicitud inválida. Verifique el RUT"
	case backend.KindUnreachable, backend.KindConnection:
		return "No se pudo conectar con el servidor. Verifique su conexión."
	case backend.KindMalformed:
		return "Respuesta inválida del servidor"
	case backend.KindServer:
		if be.Status == 500 {
			return "Error interno del servidor"
		}
		return fmt.Sprintf("Error del servidor: %d", be.Status)
	default:
		return "Error al buscar prendas"
	}
}

// ClearSearch resets the identifier, the result set and the performed
// flag. A search still in flight is discarded when it lands.
func (w *Workflow) ClearSearch() {
	w.mu.Lock()
	w.searchGen++
	w.identifier = ""
	w.results = []model.Garment{}
	w.performed = false
	w.phase = SearchIdle
	w.mu.Unlock()

	w.alerts.Show("Búsqueda limpiada", alert.SeverityInfo)
	w.notify()
}

// OpenStatusDialog opens the dialog for a snapshot of record, seeded with
// its current return status.
func (w *Workflow) OpenStatusDialog(record model.Garment) error {
	w.mu.Lock()
	if w.dialog == DialogUpdating {
		w.mu.Unlock()
		return ErrBusy
	}
	w.resetDialogLocked()
	w.dialog = DialogOpen
	w.pending = Transition{Record: record.Clone(), Proposed: record.ReturnStatus}
	w.mu.Unlock()
	w.notify()
	return nil
}

// SetProposedStatus changes the status the open dialog will submit.
func (w *Workflow) SetProposedStatus(status model.ReturnStatus) error {
	w.mu.Lock()
	switch w.dialog {
	case DialogUpdating:
		w.mu.Unlock()
		return ErrBusy
	case DialogClosed:
		w.mu.Unlock()
		return ErrNoDialog
	}
	w.pending.Proposed = status
	w.mu.Unlock()
	w.notify()
	return nil
}

// CloseStatusDialog cancels the pending transition. It is refused while
// the update is in flight.
func (w *Workflow) CloseStatusDialog() error {
	w.mu.Lock()
	if w.dialog == DialogUpdating {
		w.mu.Unlock()
		return ErrBusy
	}
	w.resetDialogLocked()
	w.mu.Unlock()
	w.notify()
	return nil
}

// ForceCloseStatusDialog discards the pending transition in any state. An
// update already in flight still lands in the result set.
func (w *Workflow) ForceCloseStatusDialog() {
	w.mu.Lock()
	w.resetDialogLocked()
	w.mu.Unlock()
	w.notify()
}

// ConfirmStatusUpdate sends the proposed status for the selected record.
// On success the record is patched in the result set and the dialog closes
// after the close delay; on failure nothing is patched and the dialog
// stays open.
func (w *Workflow) ConfirmStatusUpdate(ctx context.Context) error {
	w.mu.Lock()
	if w.dialog == DialogUpdating {
		w.mu.Unlock()
		return ErrBusy
	}
	if w.dialog == DialogClosed || w.pending.Record.ID == 0 || !w.pending.Proposed.IsSet() {
		w.mu.Unlock()
		w.alerts.Show("Por favor seleccione un estado válido", alert.SeverityWarning)
		return &backend.Error{Kind: backend.KindValidation}
	}
	w.dialog = DialogUpdating
	gen := w.dialogGen
	id, status := w.pending.Record.ID, w.pending.Proposed
	w.mu.Unlock()
	w.notify()

	resp, err := w.api.UpdateReturnStatus(ctx, id, status)

	w.mu.Lock()
	current := gen == w.dialogGen
	if current {
		w.dialog = DialogOpen
	}
	if err == nil {
		now := w.now()
		for i := range w.results {
			if w.results[i].ID == id {
				w.results[i] = w.results[i].WithReturnStatus(status, now)
			}
		}
		if current {
			w.scheduleCloseLocked(gen)
		}
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn("status update failed",
			zap.Int64("id", id),
			zap.String("status", string(status)),
			zap.String("kind", string(backend.KindOf(err))),
			zap.Error(err),
		)
		w.alerts.Show(updateFailureMessage(err), alert.SeverityError)
		w.notify()
		return err
	}

	fields := []zap.Field{zap.Int64("id", id), zap.String("status", string(status))}
	if resp.EmailStatus != nil {
		fields = append(fields, zap.Bool("email_sent", resp.EmailStatus.Sent), zap.String("email_reason", resp.EmailStatus.Reason))
	}
	w.logger.Info("return status updated", fields...)

	message := resp.Message
	if message == "" {
		message = fmt.Sprintf("Estado actualizado a: %q", string(status))
	}
	w.alerts.Show(message, alert.SeveritySuccess)
	w.notify()
	return nil
}

func updateFailureMessage(err error) string {
	switch backend.KindOf(err) {
	case backend.KindTimeout:
		return "La actualización tardó demasiado. Intente nuevamente."
	case backend.KindUnreachable, backend.KindConnection:
		return "No se pudo conectar con el servidor"
	}
	if be, ok := backend.AsError(err); ok && be.Message != "" {
		return be.Message
	}
	return "Error al actualizar el estado"
}

func (w *Workflow) scheduleCloseLocked(gen uint64) {
	if w.closeDelay <= 0 {
		w.resetDialogLocked()
		return
	}
	w.closeTimer = time.AfterFunc(w.closeDelay, func() {
		w.mu.Lock()
		if gen != w.dialogGen || w.dialog != DialogOpen {
			w.mu.Unlock()
			return
		}
		w.resetDialogLocked()
		w.mu.Unlock()
		w.notify()
	})
}

// resetDialogLocked closes the dialog and invalidates any delayed close or
// in-flight completion bound to the previous one.
func (w *Workflow) resetDialogLocked() {
	w.dialogGen++
	if w.closeTimer != nil {
		w.closeTimer.Stop()
		w.closeTimer = nil
	}
	w.dialog = DialogClosed
	w.pending = Transition{}
}

func (w *Workflow) snapshotLocked() Snapshot {
	s := Snapshot{
		Identifier: w.identifier,
		Phase:      w.phase,
		Performed:  w.performed,
		Results:    cloneAll(w.results),
		Dialog:     w.dialog,
	}
	if w.dialog != DialogClosed {
		p := w.pending
		p.Record = p.Record.Clone()
		s.Pending = &p
	}
	return s
}

func (w *Workflow) notify() {
	if w.observer == nil {
		return
	}
	w.observer(w.Snapshot())
}

func cloneAll(in []model.Garment) []model.Garment {
	out := make([]model.Garment, len(in))
	for i, g := range in {
		out[i] = g.Clone()
	}
	return out
}
