package repository

import (
	"context"
	"errors"

	"cuadrecaja/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CierreRepository persists accounting periods. Methods taking a tx run inside
// the transaction opened by WithTx; passing the db handle returned there keeps
// the FOR UPDATE lock held for the whole critical section.
//
// "Latest period" lookups order by fecha_inicio DESC and return (nil, nil)
// when the tienda has no period history.
type CierreRepository interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	FindUltimoPeriodo(ctx context.Context, tiendaID uuid.UUID) (*model.CierrePeriodo, error)
	// FindUltimoPeriodoForUpdate locks the latest period row (SELECT ... FOR UPDATE).
	// Must be called inside WithTx.
	FindUltimoPeriodoForUpdate(tx *gorm.DB, tiendaID uuid.UUID) (*model.CierrePeriodo, error)
	CreatePeriodo(tx *gorm.DB, p *model.CierrePeriodo) error
	UpdatePeriodo(tx *gorm.DB, p *model.CierrePeriodo) error
	FindPeriodoByID(ctx context.Context, id uuid.UUID) (*model.CierrePeriodo, error)
	ListPeriodos(ctx context.Context, tiendaID uuid.UUID, page, limit int) ([]model.CierrePeriodo, int64, error)
}

type cierreRepo struct{ db *gorm.DB }

func NewCierreRepository(db *gorm.DB) CierreRepository { return &cierreRepo{db: db} }

func (r *cierreRepo) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *cierreRepo) FindUltimoPeriodo(ctx context.Context, tiendaID uuid.UUID) (*model.CierrePeriodo, error) {
	var p model.CierrePeriodo
	err := r.db.WithContext(ctx).
		Where("tienda_id = ?", tiendaID).
		Order("fecha_inicio DESC").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *cierreRepo) FindUltimoPeriodoForUpdate(tx *gorm.DB, tiendaID uuid.UUID) (*model.CierrePeriodo, error) {
	var p model.CierrePeriodo
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tienda_id = ?", tiendaID).
		Order("fecha_inicio DESC").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translateLockError(err)
	}
	return &p, nil
}

func (r *cierreRepo) CreatePeriodo(tx *gorm.DB, p *model.CierrePeriodo) error {
	return tx.Create(p).Error
}

func (r *cierreRepo) UpdatePeriodo(tx *gorm.DB, p *model.CierrePeriodo) error {
	return tx.Save(p).Error
}

func (r *cierreRepo) FindPeriodoByID(ctx context.Context, id uuid.UUID) (*model.CierrePeriodo, error) {
	var p model.CierrePeriodo
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *cierreRepo) ListPeriodos(ctx context.Context, tiendaID uuid.UUID, page, limit int) ([]model.CierrePeriodo, int64, error) {
	var total int64
	q := r.db.WithContext(ctx).Model(&model.CierrePeriodo{}).Where("tienda_id = ?", tiendaID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var periodos []model.CierrePeriodo
	err := q.Order("fecha_inicio DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&periodos).Error
	return periodos, total, err
}
