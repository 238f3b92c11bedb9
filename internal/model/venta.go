package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venta is a sale recorded against the open period of a tienda.
// Ganancia and Inversion are computed at registration time from the catalog
// prices so the period accumulators never need to re-derive them.
type Venta struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TiendaID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	CierrePeriodoID uuid.UUID       `gorm:"type:uuid;not null;index"`
	UsuarioID       uuid.UUID       `gorm:"type:uuid;not null"`
	Total           decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	DescuentoTotal  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Ganancia        decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Inversion       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	// Transferencia is the portion of Total paid by bank transfer.
	Transferencia decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	CreatedAt     time.Time

	Items []VentaItem `gorm:"foreignKey:VentaID"`
	Pagos []VentaPago `gorm:"foreignKey:VentaID"`
}

// VentaItem is one catalog line of a sale, priced at registration time.
type VentaItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad   int             `gorm:"not null"`
	Precio     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Costo      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descuento  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(14,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

// VentaPago records how a sale was paid.
// Metodo: "efectivo" | "transferencia"
type VentaPago struct {
	ID      uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Metodo  string          `gorm:"type:varchar(20);not null"`
	Monto   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}
