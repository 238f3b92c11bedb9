package service

import (
	"context"

	"cuadrecaja/internal/dto"
	"cuadrecaja/internal/model"
	"cuadrecaja/internal/repository"

	"github.com/google/uuid"
)

type TiendaService interface {
	Crear(ctx context.Context, negocioID uuid.UUID, req dto.CrearTiendaRequest) (*dto.TiendaResponse, error)
	Listar(ctx context.Context, negocioID uuid.UUID) ([]dto.TiendaResponse, error)
}

type tiendaService struct {
	repo repository.TiendaRepository
}

func NewTiendaService(repo repository.TiendaRepository) TiendaService {
	return &tiendaService{repo: repo}
}

func (s *tiendaService) Crear(ctx context.Context, negocioID uuid.UUID, req dto.CrearTiendaRequest) (*dto.TiendaResponse, error) {
	tienda := &model.Tienda{
		NegocioID: negocioID,
		Nombre:    req.Nombre,
		Activo:    true,
	}
	if err := s.repo.Create(ctx, tienda); err != nil {
		return nil, err
	}
	return &dto.TiendaResponse{ID: tienda.ID.String(), Nombre: tienda.Nombre, Activo: tienda.Activo}, nil
}

func (s *tiendaService) Listar(ctx context.Context, negocioID uuid.UUID) ([]dto.TiendaResponse, error) {
	tiendas, err := s.repo.ListByNegocio(ctx, negocioID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.TiendaResponse, len(tiendas))
	for i, t := range tiendas {
		resp[i] = dto.TiendaResponse{ID: t.ID.String(), Nombre: t.Nombre, Activo: t.Activo}
	}
	return resp, nil
}
