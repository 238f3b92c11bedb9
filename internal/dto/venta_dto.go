package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type VentaItemRequest struct {
	ProductoID string          `json:"producto_id" validate:"required,uuid"`
	Cantidad   int             `json:"cantidad"    validate:"required,min=1"`
	Descuento  decimal.Decimal `json:"descuento"   validate:"min=0"`
}

type VentaPagoRequest struct {
	Metodo string          `json:"metodo" validate:"required,oneof=efectivo transferencia"`
	Monto  decimal.Decimal `json:"monto"  validate:"required,gt=0"`
}

type RegistrarVentaRequest struct {
	TiendaID string             `json:"tienda_id" validate:"required,uuid"`
	Items    []VentaItemRequest `json:"items"     validate:"required,min=1,dive"`
	Pagos    []VentaPagoRequest `json:"pagos"     validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type VentaItemResponse struct {
	ProductoID string          `json:"producto_id"`
	Cantidad   int             `json:"cantidad"`
	Precio     decimal.Decimal `json:"precio"`
	Descuento  decimal.Decimal `json:"descuento"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID              string              `json:"id"`
	TiendaID        string              `json:"tienda_id"`
	CierrePeriodoID string              `json:"cierre_periodo_id"`
	Total           decimal.Decimal     `json:"total"`
	DescuentoTotal  decimal.Decimal     `json:"descuento_total"`
	Ganancia        decimal.Decimal     `json:"ganancia"`
	Transferencia   decimal.Decimal     `json:"transferencia"`
	Items           []VentaItemResponse `json:"items"`
	CreatedAt       string              `json:"created_at"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
	Total int64           `json:"total"`
}
