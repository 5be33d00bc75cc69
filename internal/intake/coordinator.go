package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"lostfound-desk/internal/alert"
	"lostfound-desk/internal/backend"
	"lostfound-desk/internal/logging"
	"lostfound-desk/internal/model"
)

// ErrBusy is returned when the draft is touched while a submission is in flight.
var ErrBusy = errors.New("intake: submission in progress")

// Creator issues the create request. *backend.Client satisfies it.
type Creator interface {
	CreateGarment(ctx context.Context, payload model.CreatePayload) (*model.CreatedGarment, error)
}

// Alerter surfaces one message at a time. *alert.Queue satisfies it.
type Alerter interface {
	Show(message string, severity alert.Severity)
}

type state int

const (
	stateEditing state = iota
	stateSubmitting
)

// Outcome is what a submission ended in. Kind is empty on success.
type Outcome struct {
	Severity alert.Severity
	Message  string
	ID       int64
	Kind     backend.Kind
}

// OK reports whether the garment was registered.
func (o Outcome) OK() bool { return o.Kind == "" && o.ID > 0 }

// Coordinator owns the intake draft and its single in-flight submission.
type Coordinator struct {
	mu     sync.Mutex
	draft  model.Draft
	state  state
	api    Creator
	alerts Alerter
	logger *zap.Logger
}

// NewCoordinator creates a Coordinator with an empty draft.
func NewCoordinator(api Creator, alerts Alerter, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		api:    api,
		alerts: alerts,
		logger: logging.OrNop(logger),
	}
}

// Draft returns a copy of the current draft.
func (c *Coordinator) Draft() model.Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// SetField updates one field of the draft. Inputs are frozen while a
// submission is in flight.
func (c *Coordinator) SetField(f model.Field, v string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == stateSubmitting {
		return ErrBusy
	}
	c.draft = c.draft.Set(f, v)
	return nil
}

// Busy reports whether a submission is in flight.
func (c *Coordinator) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateSubmitting
}

// Submittable reports whether the current draft passes validation.
func (c *Coordinator) Submittable() bool {
	return IsSubmittable(c.Draft())
}

// FieldErrors returns the per-field errors of the current draft.
func (c *Coordinator) FieldErrors() map[model.Field]string {
	return FieldErrors(c.Draft())
}

// Submit validates the draft and, if it passes, sends it to the backend.
// The resulting message is always shown; the returned error is ErrBusy or
// the backend failure, for callers that want to branch on it.
func (c *Coordinator) Submit(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	if c.state == stateSubmitting {
		c.mu.Unlock()
		return Outcome{}, ErrBusy
	}
	draft := c.draft
	if !IsSubmittable(draft) {
		c.mu.Unlock()
		out := Outcome{
			Severity: alert.SeverityError,
			Message:  "Por favor complete todos los campos obligatorios",
			Kind:     backend.KindValidation,
		}
		c.alerts.Show(out.Message, out.Severity)
		return out, &backend.Error{Kind: backend.KindValidation}
	}
	c.state = stateSubmitting
	c.mu.Unlock()

	created, err := c.api.CreateGarment(ctx, draft.Payload())

	c.mu.Lock()
	c.state = stateEditing
	var out Outcome
	if err == nil {
		c.draft = model.Draft{}
		out = Outcome{
			Severity: alert.SeveritySuccess,
			Message:  fmt.Sprintf("¡Prenda registrada exitosamente! ID: %d", created.ID),
			ID:       created.ID,
		}
	} else {
		out = failureOutcome(err)
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("garment submission failed",
			zap.String("rut", draft.RUT),
			zap.String("kind", string(out.Kind)),
			zap.Error(err),
		)
	} else {
		c.logger.Info("garment registered", zap.Int64("id", created.ID), zap.String("rut", draft.RUT))
	}
	c.alerts.Show(out.Message, out.Severity)
	return out, err
}

func failureOutcome(err error) Outcome {
	out := Outcome{Severity: alert.SeverityError, Kind: backend.KindOf(err)}
	be, _ := backend.AsError(err)

	switch out.Kind {
	case backend.KindConflict:
		out.Severity = alert.SeverityWarning
		out.Message = "Ya existe una prenda similar registrada para este cliente"
	case backend.KindRouteNotFound:
		out.Message = "Error: La ruta del servidor no fue encontrada. Verifique que el servidor esté configurado correctamente."
	case backend.KindMalformed:
		out.Message = "Error: la respuesta del servidor no es válida"
	case backend.KindUnreachable:
		out.Message = "Error: No se puede conectar al servidor. Verifique que esté en ejecución."
	case backend.KindConnection:
		out.Message = "Error de conexión con el servidor. Intente nuevamente."
	case backend.KindTimeout:
		out.Message = "El registro tardó demasiado. Intente nuevamente."
	case backend.KindBadRequest, backend.KindServer:
		if be.Message != "" {
			out.Message = be.Message
		} else {
			out.Message = fmt.Sprintf("Error del servidor: %d", be.Status)
		}
	default:
		out.Kind = backend.KindServer
		out.Message = "Error al registrar la prenda"
	}
	return out
}
