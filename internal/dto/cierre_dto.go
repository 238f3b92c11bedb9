package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"cuadrecaja/internal/model"
)

// ─── Response DTOs ───────────────────────────────────────────────────────────

// PeriodoResponse is the wire representation of a CierrePeriodo.
type PeriodoResponse struct {
	ID                 string          `json:"id"`
	TiendaID           string          `json:"tienda_id"`
	FechaInicio        string          `json:"fecha_inicio"`
	FechaFin           *string         `json:"fecha_fin"`
	TotalVentas        decimal.Decimal `json:"total_ventas"`
	TotalGanancia      decimal.Decimal `json:"total_ganancia"`
	TotalInversion     decimal.Decimal `json:"total_inversion"`
	TotalTransferencia decimal.Decimal `json:"total_transferencia"`
	EstaAbierto        bool            `json:"esta_abierto"`
}

// PeriodoActualResponse wraps the "current period" query. Periodo is null when
// the tienda has no period history — that case is a success, not an error.
type PeriodoActualResponse struct {
	Periodo     *PeriodoResponse `json:"periodo"`
	EstaAbierto bool             `json:"esta_abierto"`
	Mensaje     string           `json:"mensaje,omitempty"`
}

// HistorialPeriodosResponse is one page of period history, newest first.
type HistorialPeriodosResponse struct {
	Data  []PeriodoResponse `json:"data"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
	Total int64             `json:"total"`
}

// NewPeriodoResponse converts a model row to its wire shape.
func NewPeriodoResponse(p *model.CierrePeriodo) *PeriodoResponse {
	resp := &PeriodoResponse{
		ID:                 p.ID.String(),
		TiendaID:           p.TiendaID.String(),
		FechaInicio:        p.FechaInicio.UTC().Format(time.RFC3339),
		TotalVentas:        p.TotalVentas,
		TotalGanancia:      p.TotalGanancia,
		TotalInversion:     p.TotalInversion,
		TotalTransferencia: p.TotalTransferencia,
		EstaAbierto:        p.EstaAbierto(),
	}
	if p.FechaFin != nil {
		fin := p.FechaFin.UTC().Format(time.RFC3339)
		resp.FechaFin = &fin
	}
	return resp
}
