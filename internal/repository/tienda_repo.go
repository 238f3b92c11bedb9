package repository

import (
	"context"
	"errors"

	"cuadrecaja/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TiendaRepository interface {
	Create(ctx context.Context, t *model.Tienda) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Tienda, error)
	ListByNegocio(ctx context.Context, negocioID uuid.UUID) ([]model.Tienda, error)
}

type tiendaRepo struct{ db *gorm.DB }

func NewTiendaRepository(db *gorm.DB) TiendaRepository { return &tiendaRepo{db: db} }

func (r *tiendaRepo) Create(ctx context.Context, t *model.Tienda) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *tiendaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Tienda, error) {
	var t model.Tienda
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tiendaRepo) ListByNegocio(ctx context.Context, negocioID uuid.UUID) ([]model.Tienda, error) {
	var tiendas []model.Tienda
	err := r.db.WithContext(ctx).
		Where("negocio_id = ? AND activo = true", negocioID).
		Order("nombre ASC").
		Find(&tiendas).Error
	return tiendas, err
}
