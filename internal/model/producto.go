package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is the minimal catalog entry the sales recorder needs:
// sale price and acquisition cost, both per unit.
type Producto struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TiendaID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Nombre    string          `gorm:"not null"`
	Precio    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Costo     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Activo    bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
