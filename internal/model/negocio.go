package model

import (
	"time"

	"github.com/google/uuid"
)

// Negocio is the tenant: a business owning one or more tiendas.
type Negocio struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"not null"`
	Activo    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Tiendas []Tienda `gorm:"foreignKey:NegocioID"`
}
