package service

import (
	"context"
	"errors"

	"cuadrecaja/internal/dto"
	"cuadrecaja/internal/model"
	"cuadrecaja/internal/repository"

	"github.com/google/uuid"
)

type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ListarPorTienda(ctx context.Context, tiendaID uuid.UUID) ([]dto.ProductoResponse, error)
}

type productoService struct {
	repo       repository.ProductoRepository
	tiendaRepo repository.TiendaRepository
}

func NewProductoService(repo repository.ProductoRepository, tiendaRepo repository.TiendaRepository) ProductoService {
	return &productoService{repo: repo, tiendaRepo: tiendaRepo}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	tiendaID, err := uuid.Parse(req.TiendaID)
	if err != nil {
		return nil, errors.New("tienda_id inválido")
	}
	tienda, err := s.tiendaRepo.FindByID(ctx, tiendaID)
	if err != nil {
		return nil, err
	}
	if tienda == nil || !tienda.Activo {
		return nil, errors.New("tienda no encontrada o inactiva")
	}

	producto := &model.Producto{
		TiendaID: tiendaID,
		Nombre:   req.Nombre,
		Precio:   req.Precio,
		Costo:    req.Costo,
		Activo:   true,
	}
	if err := s.repo.Create(ctx, producto); err != nil {
		return nil, err
	}
	return productoToResponse(producto), nil
}

func (s *productoService) ListarPorTienda(ctx context.Context, tiendaID uuid.UUID) ([]dto.ProductoResponse, error) {
	productos, err := s.repo.ListByTienda(ctx, tiendaID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ProductoResponse, len(productos))
	for i := range productos {
		resp[i] = *productoToResponse(&productos[i])
	}
	return resp, nil
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	return &dto.ProductoResponse{
		ID:       p.ID.String(),
		TiendaID: p.TiendaID.String(),
		Nombre:   p.Nombre,
		Precio:   p.Precio,
		Costo:    p.Costo,
		Activo:   p.Activo,
	}
}
