package api

import (
	"time"

	"go.uber.org/zap"

	"lostfound-desk/internal/logging"
	"lostfound-desk/internal/model"
	"lostfound-desk/internal/store"
)

// Notifier tells an owner about a status change. *notification.WorkerPool
// satisfies it.
type Notifier interface {
	Notify(g model.Garment) model.EmailStatus
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store  store.Store
	mailer Notifier
	logger *zap.Logger
	now    func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, mailer Notifier, logger *zap.Logger) *Handler {
	return &Handler{
		store:  s,
		mailer: mailer,
		logger: logging.OrNop(logger),
		now:    time.Now,
	}
}
