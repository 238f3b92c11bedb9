package service

import (
	"context"
	"errors"
	"time"

	"cuadrecaja/internal/model"
	"cuadrecaja/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Domain errors of the period lifecycle. Handlers translate them to HTTP
// statuses with errors.Is; the messages are safe to surface verbatim.
var (
	ErrTiendaRequerida = errors.New("se requiere el identificador de la tienda")
	ErrPeriodoAbierto  = errors.New("ya existe un período abierto para esta tienda")
	ErrPeriodoCerrado  = errors.New("el período ya fue cerrado")
	ErrSinPeriodo      = errors.New("la tienda no tiene períodos")
)

// ResumenDispatcher enqueues the async closing-summary job. Nil-safe: a nil
// dispatcher disables the feature (unit tests, deployments without SMTP).
type ResumenDispatcher interface {
	EnqueueResumen(ctx context.Context, periodoID uuid.UUID) error
}

type CierreService interface {
	// AbrirPeriodo opens a new period for the tienda. The latest period row is
	// read under a FOR UPDATE lock inside one transaction, so under concurrent
	// calls exactly one creates the row and the rest see ErrPeriodoAbierto.
	AbrirPeriodo(ctx context.Context, tiendaID uuid.UUID) (*model.CierrePeriodo, error)
	// ObtenerPeriodoActual returns the latest period (open or closed), or
	// (nil, nil) when the tienda has no history. Read-only, no locking.
	ObtenerPeriodoActual(ctx context.Context, tiendaID uuid.UUID) (*model.CierrePeriodo, error)
	// CerrarPeriodo stamps fecha_fin on the open period, under the same
	// locking discipline as AbrirPeriodo. Closing twice is an error.
	CerrarPeriodo(ctx context.Context, tiendaID uuid.UUID) (*model.CierrePeriodo, error)
	Historial(ctx context.Context, tiendaID uuid.UUID, page, limit int) ([]model.CierrePeriodo, int64, error)
	ObtenerPeriodo(ctx context.Context, id uuid.UUID) (*model.CierrePeriodo, error)
}

type cierreService struct {
	repo       repository.CierreRepository
	dispatcher ResumenDispatcher
}

func NewCierreService(repo repository.CierreRepository, dispatcher ResumenDispatcher) CierreService {
	return &cierreService{repo: repo, dispatcher: dispatcher}
}

// ── AbrirPeriodo ──────────────────────────────────────────────────────────────

func (s *cierreService) AbrirPeriodo(ctx context.Context, tiendaID uuid.UUID) (*model.CierrePeriodo, error) {
	if tiendaID == uuid.Nil {
		return nil, ErrTiendaRequerida
	}

	var creado *model.CierrePeriodo
	err := s.repo.WithTx(ctx, func(tx *gorm.DB) error {
		// Lock the latest period row for the whole critical section. Without
		// the lock two concurrent opens can both observe "no open period" and
		// both insert (check-then-act race).
		ultimo, err := s.repo.FindUltimoPeriodoForUpdate(tx, tiendaID)
		if err != nil {
			return err
		}
		if ultimo != nil && ultimo.EstaAbierto() {
			return ErrPeriodoAbierto
		}

		nuevo := &model.CierrePeriodo{
			TiendaID:           tiendaID,
			FechaInicio:        time.Now().UTC(),
			TotalVentas:        decimal.Zero,
			TotalGanancia:      decimal.Zero,
			TotalInversion:     decimal.Zero,
			TotalTransferencia: decimal.Zero,
		}
		if err := s.repo.CreatePeriodo(tx, nuevo); err != nil {
			return err
		}
		creado = nuevo
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("tienda_id", tiendaID.String()).
		Str("periodo_id", creado.ID.String()).
		Msg("período abierto")
	return creado, nil
}

// ── ObtenerPeriodoActual ──────────────────────────────────────────────────────

func (s *cierreService) ObtenerPeriodoActual(ctx context.Context, tiendaID uuid.UUID) (*model.CierrePeriodo, error) {
	if tiendaID == uuid.Nil {
		return nil, ErrTiendaRequerida
	}
	return s.repo.FindUltimoPeriodo(ctx, tiendaID)
}

// ── CerrarPeriodo ─────────────────────────────────────────────────────────────

func (s *cierreService) CerrarPeriodo(ctx context.Context, tiendaID uuid.UUID) (*model.CierrePeriodo, error) {
	if tiendaID == uuid.Nil {
		return nil, ErrTiendaRequerida
	}

	var cerrado *model.CierrePeriodo
	err := s.repo.WithTx(ctx, func(tx *gorm.DB) error {
		// Same lock as AbrirPeriodo: two concurrent closes must not both pass
		// the already-closed check.
		ultimo, err := s.repo.FindUltimoPeriodoForUpdate(tx, tiendaID)
		if err != nil {
			return err
		}
		if ultimo == nil {
			return ErrSinPeriodo
		}
		if !ultimo.EstaAbierto() {
			return ErrPeriodoCerrado
		}

		fin := time.Now().UTC()
		ultimo.FechaFin = &fin
		if err := s.repo.UpdatePeriodo(tx, ultimo); err != nil {
			return err
		}
		cerrado = ultimo
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("tienda_id", tiendaID.String()).
		Str("periodo_id", cerrado.ID.String()).
		Str("total_ventas", cerrado.TotalVentas.String()).
		Msg("período cerrado")

	// The close is committed; a summary-email failure must not undo it.
	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueResumen(ctx, cerrado.ID); err != nil {
			log.Error().Err(err).Str("periodo_id", cerrado.ID.String()).
				Msg("no se pudo encolar el resumen de cierre")
		}
	}
	return cerrado, nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *cierreService) Historial(ctx context.Context, tiendaID uuid.UUID, page, limit int) ([]model.CierrePeriodo, int64, error) {
	if tiendaID == uuid.Nil {
		return nil, 0, ErrTiendaRequerida
	}
	return s.repo.ListPeriodos(ctx, tiendaID, page, limit)
}

func (s *cierreService) ObtenerPeriodo(ctx context.Context, id uuid.UUID) (*model.CierrePeriodo, error) {
	p, err := s.repo.FindPeriodoByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrSinPeriodo
	}
	return p, nil
}
