package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"lostfound-desk/config"
	"lostfound-desk/internal/logging"
	"lostfound-desk/internal/model"
)

// ErrQueueFull is returned by Dispatch when every worker is busy and the
// queue has no room left.
var ErrQueueFull = errors.New("notification: mail queue is full")

// Email is one message to a garment owner.
type Email struct {
	GarmentID int64
	To        string
	Subject   string
	Body      string
}

// Sender delivers an email.
type Sender interface {
	Send(ctx context.Context, from string, msg Email) error
}

// LogSender writes emails to the log instead of delivering them.
type LogSender struct {
	Logger *zap.Logger
}

// Send logs msg.
func (s *LogSender) Send(_ context.Context, from string, msg Email) error {
	logging.OrNop(s.Logger).Info("email",
		zap.String("from", from),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int64("garment_id", msg.GarmentID),
	)
	return nil
}

// WorkerPool manages a pool of workers for sending owner emails.
type WorkerPool struct {
	enabled bool
	size    int
	from    string
	jobs    chan Email
	sender  Sender
	logger  *zap.Logger
}

// NewWorkerPool creates a new worker pool. A nil sender logs emails.
func NewWorkerPool(cfg config.MailerConfig, sender Sender, logger *zap.Logger) *WorkerPool {
	logger = logging.OrNop(logger)
	if sender == nil {
		sender = &LogSender{Logger: logger}
	}
	return &WorkerPool{
		enabled: cfg.Enabled,
		size:    cfg.PoolSize,
		from:    cfg.From,
		jobs:    make(chan Email, cfg.QueueSize),
		sender:  sender,
		logger:  logger,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.logger.Debug("mail worker started", zap.Int("worker", id))
	for {
		select {
		case msg := <-wp.jobs:
			if err := wp.sender.Send(ctx, wp.from, msg); err != nil {
				wp.logger.Error("failed to send email",
					zap.Int("worker", id),
					zap.Int64("garment_id", msg.GarmentID),
					zap.String("to", msg.To),
					zap.Error(err),
				)
			}
		case <-ctx.Done():
			wp.logger.Debug("mail worker shutting down", zap.Int("worker", id))
			return
		}
	}
}

// Dispatch queues msg without blocking.
func (wp *WorkerPool) Dispatch(msg Email) error {
	select {
	case wp.jobs <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Email {
	return wp.jobs
}

// Notify queues the owner email for a garment that just changed status and
// reports what happened. Only "found, pending return" and "returned" are
// announced to the owner.
func (wp *WorkerPool) Notify(g model.Garment) model.EmailStatus {
	if !wp.enabled {
		return model.EmailStatus{Reason: "Envío de correos deshabilitado"}
	}
	msg, ok := OwnerEmail(g)
	if !ok {
		return model.EmailStatus{Reason: "El estado no requiere notificación"}
	}
	if msg.To == "" {
		return model.EmailStatus{Reason: "La prenda no tiene correo registrado"}
	}
	if err := wp.Dispatch(msg); err != nil {
		wp.logger.Warn("email not queued", zap.Int64("garment_id", g.ID), zap.Error(err))
		return model.EmailStatus{Reason: "Cola de correos llena"}
	}
	return model.EmailStatus{Sent: true}
}

// OwnerEmail builds the message announcing g's current return status. It
// reports false for statuses the owner is not told about.
func OwnerEmail(g model.Garment) (Email, bool) {
	msg := Email{GarmentID: g.ID, To: strings.TrimSpace(g.Email)}
	item := fmt.Sprintf("%s (talla %s)", strings.ToLower(string(g.Type)), g.Size)

	switch g.ReturnStatus {
	case model.StatusPendingReturn:
		msg.Subject = "Encontramos tu prenda"
		msg.Body = fmt.Sprintf("Hola %s, encontramos tu %s. Puedes retirarla en la oficina de objetos perdidos presentando tu RUT %s.",
			g.OwnerName, item, g.RUT)
	case model.StatusReturned:
		msg.Subject = "Prenda devuelta"
		msg.Body = fmt.Sprintf("Hola %s, registramos la devolución de tu %s. ¡Gracias!", g.OwnerName, item)
	default:
		return Email{}, false
	}
	return msg, true
}
