package dto

import "github.com/shopspring/decimal"

type CrearTiendaRequest struct {
	Nombre string `json:"nombre" validate:"required,min=2"`
}

type TiendaResponse struct {
	ID      string `json:"id"`
	Nombre  string `json:"nombre"`
	Activo  bool   `json:"activo"`
}

type CrearProductoRequest struct {
	TiendaID string          `json:"tienda_id" validate:"required,uuid"`
	Nombre   string          `json:"nombre"    validate:"required,min=2"`
	Precio   decimal.Decimal `json:"precio"    validate:"required,gt=0"`
	Costo    decimal.Decimal `json:"costo"     validate:"min=0"`
}

type ProductoResponse struct {
	ID       string          `json:"id"`
	TiendaID string          `json:"tienda_id"`
	Nombre   string          `json:"nombre"`
	Precio   decimal.Decimal `json:"precio"`
	Costo    decimal.Decimal `json:"costo"`
	Activo   bool            `json:"activo"`
}
