package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lostfound-desk/internal/logging"
	"lostfound-desk/internal/model"
	"lostfound-desk/internal/parse"
)

// Store defines the interface for all database operations.
type Store interface {
	CreateGarment(ctx context.Context, g *model.Garment) error
	FindByRUT(ctx context.Context, rut string) ([]model.Garment, error)
	UpdateReturnStatus(ctx context.Context, id int64, status model.ReturnStatus, at time.Time) (*model.Garment, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB, logger *zap.Logger) Store {
	return &gormStore{db: db, logger: logging.OrNop(logger)}
}

// CreateGarment inserts g and fills in its id. A garment that repeats the
// owner, type, size and condition of one still waiting to be returned is
// rejected with ErrDuplicate.
func (s *gormStore) CreateGarment(ctx context.Context, g *model.Garment) error {
	g.RUTKey = parse.RUT(g.RUT)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&model.Garment{}).
			Where("rut_key = ? AND tipo_prenda = ? AND talla = ? AND estado = ?", g.RUTKey, g.Type, g.Size, g.Condition).
			Where("(estado_devolucion IS NULL OR estado_devolucion = ?)", model.StatusPendingReturn).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check for duplicate garment: %w", err)
		}
		if count > 0 {
			s.logger.Info("duplicate garment rejected", zap.String("rut", g.RUTKey), zap.String("tipo_prenda", string(g.Type)))
			return ErrDuplicate
		}

		if err := tx.Create(g).Error; err != nil {
			return fmt.Errorf("failed to create garment for %s: %w", g.RUTKey, err)
		}
		return nil
	})
}

// FindByRUT lists the garments of one owner, newest first. The identifier
// is matched after canonicalisation, so "12.345.678-9" finds "123456789".
func (s *gormStore) FindByRUT(ctx context.Context, rut string) ([]model.Garment, error) {
	garments := []model.Garment{}
	err := s.db.WithContext(ctx).
		Where("rut_key = ?", parse.RUT(rut)).
		Order("created_at DESC, id DESC").
		Find(&garments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search garments for %q: %w", rut, err)
	}
	return garments, nil
}

// UpdateReturnStatus sets the return status of a garment and stamps the
// change time. Any status may follow any other.
func (s *gormStore) UpdateReturnStatus(ctx context.Context, id int64, status model.ReturnStatus, at time.Time) (*model.Garment, error) {
	var g model.Garment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&g, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load garment %d: %w", id, err)
		}
		err := tx.Model(&g).Updates(map[string]any{
			"estado_devolucion": status,
			"fecha_devolucion":  at,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update garment %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.ReturnStatus = status
	g.ReturnedAt = &at
	return &g, nil
}
