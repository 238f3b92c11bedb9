package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cuadrecaja/internal/dto"
	"cuadrecaja/internal/model"
	"cuadrecaja/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrSinPeriodoAbierto = errors.New("no hay un período abierto para esta tienda")
	ErrPagoInsuficiente  = errors.New("el monto total de pagos es insuficiente")
)

type VentaService interface {
	RegistrarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	ListarPorPeriodo(ctx context.Context, periodoID uuid.UUID, page, limit int) (*dto.VentaListResponse, error)
}

type ventaService struct {
	repo         repository.VentaRepository
	cierreRepo   repository.CierreRepository
	productoRepo repository.ProductoRepository
}

func NewVentaService(
	repo repository.VentaRepository,
	cierreRepo repository.CierreRepository,
	productoRepo repository.ProductoRepository,
) VentaService {
	return &ventaService{repo: repo, cierreRepo: cierreRepo, productoRepo: productoRepo}
}

// ── RegistrarVenta ────────────────────────────────────────────────────────────
// ACID flow:
//  1. Resolve products and compute totals (pre-flight, outside the TX).
//  2. Validate payment sufficiency.
//  3. BEGIN TX: lock the latest period row FOR UPDATE, require it open,
//     insert venta+items+pagos, add the sale into the period accumulators.
//  4. COMMIT.
//
// The period lock makes the accumulator update atomic with the open check: a
// concurrent CerrarPeriodo either runs before (sale rejected) or after (sale
// counted) — never in between.

func (s *ventaService) RegistrarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	tiendaID, err := uuid.Parse(req.TiendaID)
	if err != nil {
		return nil, fmt.Errorf("tienda_id inválido: %w", err)
	}

	type resolvedItem struct {
		productoID uuid.UUID
		precio     decimal.Decimal
		costo      decimal.Decimal
		cantidad   int
		descuento  decimal.Decimal
		subtotal   decimal.Decimal
	}

	var resolved []resolvedItem
	total := decimal.Zero
	descuentoTotal := decimal.Zero
	ganancia := decimal.Zero
	inversion := decimal.Zero

	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("producto_id inválido: %w", err)
		}
		p, err := s.productoRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, err
		}
		if p == nil || !p.Activo {
			return nil, fmt.Errorf("producto %s no encontrado o inactivo", item.ProductoID)
		}
		cant := decimal.NewFromInt(int64(item.Cantidad))
		lineSubtotal := p.Precio.Mul(cant).Sub(item.Descuento)
		lineCosto := p.Costo.Mul(cant)

		total = total.Add(lineSubtotal)
		descuentoTotal = descuentoTotal.Add(item.Descuento)
		ganancia = ganancia.Add(lineSubtotal.Sub(lineCosto))
		inversion = inversion.Add(lineCosto)

		resolved = append(resolved, resolvedItem{
			productoID: pid,
			precio:     p.Precio,
			costo:      p.Costo,
			cantidad:   item.Cantidad,
			descuento:  item.Descuento,
			subtotal:   lineSubtotal,
		})
	}

	totalPagos := decimal.Zero
	transferencia := decimal.Zero
	for _, pago := range req.Pagos {
		totalPagos = totalPagos.Add(pago.Monto)
		if pago.Metodo == "transferencia" {
			transferencia = transferencia.Add(pago.Monto)
		}
	}
	if totalPagos.LessThan(total) {
		return nil, ErrPagoInsuficiente
	}

	var venta model.Venta
	txErr := s.cierreRepo.WithTx(ctx, func(tx *gorm.DB) error {
		periodo, err := s.cierreRepo.FindUltimoPeriodoForUpdate(tx, tiendaID)
		if err != nil {
			return err
		}
		if periodo == nil || !periodo.EstaAbierto() {
			return ErrSinPeriodoAbierto
		}

		venta = model.Venta{
			TiendaID:        tiendaID,
			CierrePeriodoID: periodo.ID,
			UsuarioID:       usuarioID,
			Total:           total,
			DescuentoTotal:  descuentoTotal,
			Ganancia:        ganancia,
			Inversion:       inversion,
			Transferencia:   transferencia,
		}
		for _, it := range resolved {
			venta.Items = append(venta.Items, model.VentaItem{
				ProductoID: it.productoID,
				Cantidad:   it.cantidad,
				Precio:     it.precio,
				Costo:      it.costo,
				Descuento:  it.descuento,
				Subtotal:   it.subtotal,
			})
		}
		for _, pago := range req.Pagos {
			venta.Pagos = append(venta.Pagos, model.VentaPago{Metodo: pago.Metodo, Monto: pago.Monto})
		}
		if err := s.repo.CreateVenta(tx, &venta); err != nil {
			return err
		}

		periodo.TotalVentas = periodo.TotalVentas.Add(total)
		periodo.TotalGanancia = periodo.TotalGanancia.Add(ganancia)
		periodo.TotalInversion = periodo.TotalInversion.Add(inversion)
		periodo.TotalTransferencia = periodo.TotalTransferencia.Add(transferencia)
		return s.cierreRepo.UpdatePeriodo(tx, periodo)
	})
	if txErr != nil {
		return nil, txErr
	}

	return ventaToResponse(&venta), nil
}

func (s *ventaService) ListarPorPeriodo(ctx context.Context, periodoID uuid.UUID, page, limit int) (*dto.VentaListResponse, error) {
	ventas, total, err := s.repo.ListByPeriodo(ctx, periodoID, page, limit)
	if err != nil {
		return nil, err
	}
	resp := &dto.VentaListResponse{Page: page, Limit: limit, Total: total}
	for i := range ventas {
		resp.Data = append(resp.Data, *ventaToResponse(&ventas[i]))
	}
	return resp, nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	resp := &dto.VentaResponse{
		ID:              v.ID.String(),
		TiendaID:        v.TiendaID.String(),
		CierrePeriodoID: v.CierrePeriodoID.String(),
		Total:           v.Total,
		DescuentoTotal:  v.DescuentoTotal,
		Ganancia:        v.Ganancia,
		Transferencia:   v.Transferencia,
		CreatedAt:       v.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, it := range v.Items {
		resp.Items = append(resp.Items, dto.VentaItemResponse{
			ProductoID: it.ProductoID.String(),
			Cantidad:   it.Cantidad,
			Precio:     it.Precio,
			Descuento:  it.Descuento,
			Subtotal:   it.Subtotal,
		})
	}
	return resp
}
