package model

import (
	"time"

	"github.com/google/uuid"
)

// Tienda is a sales location belonging to a negocio.
// Periods, products and sales all hang off a tienda.
type Tienda struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NegocioID uuid.UUID `gorm:"type:uuid;not null;index"`
	Nombre    string    `gorm:"not null"`
	Activo    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
