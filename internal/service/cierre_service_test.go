package service_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"cuadrecaja/internal/model"
	"cuadrecaja/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory CierreRepository ───────────────────────────────────────────────
// WithTx holds a mutex for the whole callback, which is exactly the
// serialization the row lock provides in Postgres: concurrent transactions on
// the same store queue up behind each other.

type fakeCierreRepo struct {
	mu       sync.Mutex
	periodos []model.CierrePeriodo
}

func newFakeCierreRepo() *fakeCierreRepo { return &fakeCierreRepo{} }

func (r *fakeCierreRepo) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(nil)
}

func (r *fakeCierreRepo) ultimo(tiendaID uuid.UUID) *model.CierrePeriodo {
	var latest *model.CierrePeriodo
	for i := range r.periodos {
		p := &r.periodos[i]
		if p.TiendaID != tiendaID {
			continue
		}
		if latest == nil || p.FechaInicio.After(latest.FechaInicio) {
			latest = p
		}
	}
	if latest == nil {
		return nil
	}
	cp := *latest
	return &cp
}

func (r *fakeCierreRepo) FindUltimoPeriodo(_ context.Context, tiendaID uuid.UUID) (*model.CierrePeriodo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ultimo(tiendaID), nil
}

func (r *fakeCierreRepo) FindUltimoPeriodoForUpdate(_ *gorm.DB, tiendaID uuid.UUID) (*model.CierrePeriodo, error) {
	// Caller already holds the tx mutex
	return r.ultimo(tiendaID), nil
}

func (r *fakeCierreRepo) CreatePeriodo(_ *gorm.DB, p *model.CierrePeriodo) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	r.periodos = append(r.periodos, *p)
	return nil
}

func (r *fakeCierreRepo) UpdatePeriodo(_ *gorm.DB, p *model.CierrePeriodo) error {
	for i := range r.periodos {
		if r.periodos[i].ID == p.ID {
			r.periodos[i] = *p
			return nil
		}
	}
	return errors.New("periodo not found")
}

func (r *fakeCierreRepo) FindPeriodoByID(_ context.Context, id uuid.UUID) (*model.CierrePeriodo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.periodos {
		if r.periodos[i].ID == id {
			cp := r.periodos[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCierreRepo) ListPeriodos(_ context.Context, tiendaID uuid.UUID, page, limit int) ([]model.CierrePeriodo, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []model.CierrePeriodo
	for _, p := range r.periodos {
		if p.TiendaID == tiendaID {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].FechaInicio.After(all[j].FechaInicio) })
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

// fakeDispatcher records enqueued summary jobs.
type fakeDispatcher struct {
	mu       sync.Mutex
	enqueued []uuid.UUID
	fail     bool
}

func (d *fakeDispatcher) EnqueueResumen(_ context.Context, periodoID uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return errors.New("redis down")
	}
	d.enqueued = append(d.enqueued, periodoID)
	return nil
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestAbrirPeriodo(t *testing.T) {
	repo := newFakeCierreRepo()
	svc := service.NewCierreService(repo, nil)
	tiendaID := uuid.New()

	p, err := svc.AbrirPeriodo(context.Background(), tiendaID)
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, tiendaID, p.TiendaID)
	assert.True(t, p.EstaAbierto())
	assert.Nil(t, p.FechaFin)
	assert.True(t, p.TotalVentas.IsZero())
	assert.True(t, p.TotalGanancia.IsZero())
	assert.True(t, p.TotalInversion.IsZero())
	assert.True(t, p.TotalTransferencia.IsZero())
	assert.False(t, p.FechaInicio.IsZero())
}

func TestAbrirPeriodo_YaAbierto(t *testing.T) {
	repo := newFakeCierreRepo()
	svc := service.NewCierreService(repo, nil)
	tiendaID := uuid.New()

	_, err := svc.AbrirPeriodo(context.Background(), tiendaID)
	require.NoError(t, err)

	_, err = svc.AbrirPeriodo(context.Background(), tiendaID)
	assert.ErrorIs(t, err, service.ErrPeriodoAbierto)
	assert.Len(t, repo.periodos, 1)
}

func TestAbrirPeriodo_TiendaRequerida(t *testing.T) {
	svc := service.NewCierreService(newFakeCierreRepo(), nil)
	_, err := svc.AbrirPeriodo(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, service.ErrTiendaRequerida)
}

// Under concurrent opens on the same store, exactly one caller creates the
// period and the rest observe it as already open.
func TestAbrirPeriodo_Concurrente(t *testing.T) {
	repo := newFakeCierreRepo()
	svc := service.NewCierreService(repo, nil)
	tiendaID := uuid.New()

	const n = 25
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.AbrirPeriodo(context.Background(), tiendaID)
		}(i)
	}
	wg.Wait()

	ganadores := 0
	for _, err := range errs {
		if err == nil {
			ganadores++
		} else {
			assert.ErrorIs(t, err, service.ErrPeriodoAbierto)
		}
	}
	assert.Equal(t, 1, ganadores)
	assert.Len(t, repo.periodos, 1)
}

// Opening stores independently: one per store, no cross-store interference.
func TestAbrirPeriodo_TiendasIndependientes(t *testing.T) {
	repo := newFakeCierreRepo()
	svc := service.NewCierreService(repo, nil)

	tiendaA := uuid.New()
	tiendaB := uuid.New()

	_, err := svc.AbrirPeriodo(context.Background(), tiendaA)
	require.NoError(t, err)
	_, err = svc.AbrirPeriodo(context.Background(), tiendaB)
	require.NoError(t, err)

	_, err = svc.AbrirPeriodo(context.Background(), tiendaA)
	assert.ErrorIs(t, err, service.ErrPeriodoAbierto)
}

func TestObtenerPeriodoActual_SinHistorial(t *testing.T) {
	svc := service.NewCierreService(newFakeCierreRepo(), nil)
	p, err := svc.ObtenerPeriodoActual(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestCicloCompleto(t *testing.T) {
	repo := newFakeCierreRepo()
	disp := &fakeDispatcher{}
	svc := service.NewCierreService(repo, disp)
	tiendaID := uuid.New()
	ctx := context.Background()

	abierto, err := svc.AbrirPeriodo(ctx, tiendaID)
	require.NoError(t, err)

	actual, err := svc.ObtenerPeriodoActual(ctx, tiendaID)
	require.NoError(t, err)
	require.NotNil(t, actual)
	assert.Equal(t, abierto.ID, actual.ID)
	assert.True(t, actual.EstaAbierto())

	cerrado, err := svc.CerrarPeriodo(ctx, tiendaID)
	require.NoError(t, err)
	assert.Equal(t, abierto.ID, cerrado.ID)
	require.NotNil(t, cerrado.FechaFin)
	assert.False(t, cerrado.FechaFin.Before(cerrado.FechaInicio))

	// Summary job enqueued for the closed period
	assert.Equal(t, []uuid.UUID{cerrado.ID}, disp.enqueued)

	// The latest period is now the closed one, not nil
	actual, err = svc.ObtenerPeriodoActual(ctx, tiendaID)
	require.NoError(t, err)
	require.NotNil(t, actual)
	assert.False(t, actual.EstaAbierto())

	// Reopening starts a fresh row with zeroed accumulators
	nuevo, err := svc.AbrirPeriodo(ctx, tiendaID)
	require.NoError(t, err)
	assert.NotEqual(t, cerrado.ID, nuevo.ID)
	assert.True(t, nuevo.TotalVentas.IsZero())
	assert.Len(t, repo.periodos, 2)
}

func TestCerrarPeriodo_SinPeriodo(t *testing.T) {
	svc := service.NewCierreService(newFakeCierreRepo(), nil)
	_, err := svc.CerrarPeriodo(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrSinPeriodo)
}

func TestCerrarPeriodo_DobleCierre(t *testing.T) {
	repo := newFakeCierreRepo()
	svc := service.NewCierreService(repo, nil)
	tiendaID := uuid.New()
	ctx := context.Background()

	_, err := svc.AbrirPeriodo(ctx, tiendaID)
	require.NoError(t, err)
	_, err = svc.CerrarPeriodo(ctx, tiendaID)
	require.NoError(t, err)

	_, err = svc.CerrarPeriodo(ctx, tiendaID)
	assert.ErrorIs(t, err, service.ErrPeriodoCerrado)
}

// Under concurrent closes, exactly one succeeds.
func TestCerrarPeriodo_Concurrente(t *testing.T) {
	repo := newFakeCierreRepo()
	svc := service.NewCierreService(repo, nil)
	tiendaID := uuid.New()
	ctx := context.Background()

	_, err := svc.AbrirPeriodo(ctx, tiendaID)
	require.NoError(t, err)

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CerrarPeriodo(ctx, tiendaID)
		}(i)
	}
	wg.Wait()

	ganadores := 0
	for _, err := range errs {
		if err == nil {
			ganadores++
		} else {
			assert.ErrorIs(t, err, service.ErrPeriodoCerrado)
		}
	}
	assert.Equal(t, 1, ganadores)
}

// A failed enqueue must not undo the close: it is already committed.
func TestCerrarPeriodo_ResumenFalla(t *testing.T) {
	repo := newFakeCierreRepo()
	disp := &fakeDispatcher{fail: true}
	svc := service.NewCierreService(repo, disp)
	tiendaID := uuid.New()
	ctx := context.Background()

	_, err := svc.AbrirPeriodo(ctx, tiendaID)
	require.NoError(t, err)

	cerrado, err := svc.CerrarPeriodo(ctx, tiendaID)
	require.NoError(t, err)
	assert.NotNil(t, cerrado.FechaFin)

	actual, err := svc.ObtenerPeriodoActual(ctx, tiendaID)
	require.NoError(t, err)
	assert.False(t, actual.EstaAbierto())
}

func TestHistorial_OrdenDescendente(t *testing.T) {
	repo := newFakeCierreRepo()
	svc := service.NewCierreService(repo, nil)
	tiendaID := uuid.New()
	ctx := context.Background()

	// Three full cycles; open timestamps strictly increase
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		p, err := svc.AbrirPeriodo(ctx, tiendaID)
		require.NoError(t, err)
		ids = append(ids, p.ID)
		_, err = svc.CerrarPeriodo(ctx, tiendaID)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	periodos, total, err := svc.Historial(ctx, tiendaID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, periodos, 3)
	// Most recent first
	assert.Equal(t, ids[2], periodos[0].ID)
	assert.Equal(t, ids[1], periodos[1].ID)
	assert.Equal(t, ids[0], periodos[2].ID)

	// Pagination
	page2, total, err := svc.Historial(ctx, tiendaID, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page2, 1)
	assert.Equal(t, ids[0], page2[0].ID)
}

func TestObtenerPeriodo_NoExiste(t *testing.T) {
	svc := service.NewCierreService(newFakeCierreRepo(), nil)
	_, err := svc.ObtenerPeriodo(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrSinPeriodo)
}
