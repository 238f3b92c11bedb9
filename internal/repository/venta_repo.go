package repository

import (
	"context"
	"errors"

	"cuadrecaja/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VentaRepository interface {
	// CreateVenta inserts the venta with its items and pagos. Must run inside
	// the same transaction that locks and updates the period accumulators.
	CreateVenta(tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	ListByPeriodo(ctx context.Context, periodoID uuid.UUID, page, limit int) ([]model.Venta, int64, error)
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) CreateVenta(tx *gorm.DB, v *model.Venta) error {
	return tx.Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Pagos").
		First(&v, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *ventaRepo) ListByPeriodo(ctx context.Context, periodoID uuid.UUID, page, limit int) ([]model.Venta, int64, error) {
	var total int64
	q := r.db.WithContext(ctx).Model(&model.Venta{}).Where("cierre_periodo_id = ?", periodoID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ventas []model.Venta
	err := q.Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&ventas).Error
	return ventas, total, err
}
