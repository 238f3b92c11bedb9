package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CierrePeriodo is a bounded accounting interval for one tienda.
// FechaFin is nil while the period is open and stamped exactly once on close;
// the row is immutable afterwards. At most one open period may exist per
// tienda — enforced by a locked read inside the open/close transactions, plus
// a partial unique index (tienda_id WHERE fecha_fin IS NULL) as a second line
// of defense.
type CierrePeriodo struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TiendaID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	FechaInicio time.Time  `gorm:"not null;index"`
	FechaFin    *time.Time

	// Accumulators populated by the sales recorder while the period is open.
	TotalVentas        decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalGanancia      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalInversion     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalTransferencia decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EstaAbierto reports whether the period is still accepting sales.
func (p *CierrePeriodo) EstaAbierto() bool { return p.FechaFin == nil }
