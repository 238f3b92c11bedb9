package service_test

import (
	"context"
	"testing"
	"time"

	"cuadrecaja/internal/dto"
	"cuadrecaja/internal/model"
	"cuadrecaja/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory VentaRepository / ProductoRepository ───────────────────────────

type fakeVentaRepo struct {
	ventas []model.Venta
}

func (r *fakeVentaRepo) CreateVenta(_ *gorm.DB, v *model.Venta) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.CreatedAt = time.Now()
	r.ventas = append(r.ventas, *v)
	return nil
}

func (r *fakeVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	for i := range r.ventas {
		if r.ventas[i].ID == id {
			v := r.ventas[i]
			return &v, nil
		}
	}
	return nil, nil
}

func (r *fakeVentaRepo) ListByPeriodo(_ context.Context, periodoID uuid.UUID, page, limit int) ([]model.Venta, int64, error) {
	var result []model.Venta
	for _, v := range r.ventas {
		if v.CierrePeriodoID == periodoID {
			result = append(result, v)
		}
	}
	return result, int64(len(result)), nil
}

type fakeProductoRepo struct {
	productos map[uuid.UUID]*model.Producto
}

func newFakeProductoRepo() *fakeProductoRepo {
	return &fakeProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *fakeProductoRepo) Create(_ context.Context, p *model.Producto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return nil
}

func (r *fakeProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (r *fakeProductoRepo) ListByTienda(_ context.Context, tiendaID uuid.UUID) ([]model.Producto, error) {
	var result []model.Producto
	for _, p := range r.productos {
		if p.TiendaID == tiendaID {
			result = append(result, *p)
		}
	}
	return result, nil
}

// ── Setup helper ─────────────────────────────────────────────────────────────

type ventaTestEnv struct {
	cierreRepo   *fakeCierreRepo
	ventaRepo    *fakeVentaRepo
	productoRepo *fakeProductoRepo
	cierreSvc    service.CierreService
	ventaSvc     service.VentaService
	tiendaID     uuid.UUID
	usuarioID    uuid.UUID
}

func newVentaTestEnv(t *testing.T) *ventaTestEnv {
	t.Helper()
	env := &ventaTestEnv{
		cierreRepo:   newFakeCierreRepo(),
		ventaRepo:    &fakeVentaRepo{},
		productoRepo: newFakeProductoRepo(),
		tiendaID:     uuid.New(),
		usuarioID:    uuid.New(),
	}
	env.cierreSvc = service.NewCierreService(env.cierreRepo, nil)
	env.ventaSvc = service.NewVentaService(env.ventaRepo, env.cierreRepo, env.productoRepo)
	return env
}

func (env *ventaTestEnv) crearProducto(t *testing.T, precio, costo string) *model.Producto {
	t.Helper()
	p := &model.Producto{
		TiendaID: env.tiendaID,
		Nombre:   "Producto de prueba",
		Precio:   decimal.RequireFromString(precio),
		Costo:    decimal.RequireFromString(costo),
		Activo:   true,
	}
	require.NoError(t, env.productoRepo.Create(context.Background(), p))
	return p
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ── Tests ────────────────────────────────────────────────────────────────────

func TestRegistrarVenta_SinPeriodoAbierto(t *testing.T) {
	env := newVentaTestEnv(t)
	p := env.crearProducto(t, "250", "150")

	req := dto.RegistrarVentaRequest{
		TiendaID: env.tiendaID.String(),
		Items:    []dto.VentaItemRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		Pagos:    []dto.VentaPagoRequest{{Metodo: "efectivo", Monto: dec("250")}},
	}
	_, err := env.ventaSvc.RegistrarVenta(context.Background(), env.usuarioID, req)
	assert.ErrorIs(t, err, service.ErrSinPeriodoAbierto)
}

func TestRegistrarVenta_PeriodoCerrado(t *testing.T) {
	env := newVentaTestEnv(t)
	p := env.crearProducto(t, "250", "150")
	ctx := context.Background()

	_, err := env.cierreSvc.AbrirPeriodo(ctx, env.tiendaID)
	require.NoError(t, err)
	_, err = env.cierreSvc.CerrarPeriodo(ctx, env.tiendaID)
	require.NoError(t, err)

	req := dto.RegistrarVentaRequest{
		TiendaID: env.tiendaID.String(),
		Items:    []dto.VentaItemRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		Pagos:    []dto.VentaPagoRequest{{Metodo: "efectivo", Monto: dec("250")}},
	}
	_, err = env.ventaSvc.RegistrarVenta(ctx, env.usuarioID, req)
	assert.ErrorIs(t, err, service.ErrSinPeriodoAbierto)
}

func TestRegistrarVenta_ActualizaAcumuladores(t *testing.T) {
	env := newVentaTestEnv(t)
	p := env.crearProducto(t, "250", "150")
	ctx := context.Background()

	_, err := env.cierreSvc.AbrirPeriodo(ctx, env.tiendaID)
	require.NoError(t, err)

	req := dto.RegistrarVentaRequest{
		TiendaID: env.tiendaID.String(),
		Items:    []dto.VentaItemRequest{{ProductoID: p.ID.String(), Cantidad: 2}},
		Pagos:    []dto.VentaPagoRequest{{Metodo: "efectivo", Monto: dec("500")}},
	}
	venta, err := env.ventaSvc.RegistrarVenta(ctx, env.usuarioID, req)
	require.NoError(t, err)

	assert.True(t, venta.Total.Equal(dec("500")), "total = %s", venta.Total)
	assert.True(t, venta.Ganancia.Equal(dec("200")), "ganancia = %s", venta.Ganancia)

	periodo, err := env.cierreSvc.ObtenerPeriodoActual(ctx, env.tiendaID)
	require.NoError(t, err)
	assert.True(t, periodo.TotalVentas.Equal(dec("500")))
	assert.True(t, periodo.TotalGanancia.Equal(dec("200")))
	assert.True(t, periodo.TotalInversion.Equal(dec("300")))
	assert.True(t, periodo.TotalTransferencia.IsZero())
}

func TestRegistrarVenta_AcumulaVariasVentas(t *testing.T) {
	env := newVentaTestEnv(t)
	p := env.crearProducto(t, "100", "60")
	ctx := context.Background()

	_, err := env.cierreSvc.AbrirPeriodo(ctx, env.tiendaID)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		req := dto.RegistrarVentaRequest{
			TiendaID: env.tiendaID.String(),
			Items:    []dto.VentaItemRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
			Pagos:    []dto.VentaPagoRequest{{Metodo: "efectivo", Monto: dec("100")}},
		}
		_, err := env.ventaSvc.RegistrarVenta(ctx, env.usuarioID, req)
		require.NoError(t, err)
	}

	periodo, err := env.cierreSvc.ObtenerPeriodoActual(ctx, env.tiendaID)
	require.NoError(t, err)
	assert.True(t, periodo.TotalVentas.Equal(dec("300")))
	assert.True(t, periodo.TotalGanancia.Equal(dec("120")))
	assert.True(t, periodo.TotalInversion.Equal(dec("180")))
}

func TestRegistrarVenta_Transferencia(t *testing.T) {
	env := newVentaTestEnv(t)
	p := env.crearProducto(t, "500", "300")
	ctx := context.Background()

	_, err := env.cierreSvc.AbrirPeriodo(ctx, env.tiendaID)
	require.NoError(t, err)

	// Mixed payment: only the transfer portion feeds TotalTransferencia
	req := dto.RegistrarVentaRequest{
		TiendaID: env.tiendaID.String(),
		Items:    []dto.VentaItemRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		Pagos: []dto.VentaPagoRequest{
			{Metodo: "efectivo", Monto: dec("200")},
			{Metodo: "transferencia", Monto: dec("300")},
		},
	}
	venta, err := env.ventaSvc.RegistrarVenta(ctx, env.usuarioID, req)
	require.NoError(t, err)
	assert.True(t, venta.Transferencia.Equal(dec("300")))

	periodo, err := env.cierreSvc.ObtenerPeriodoActual(ctx, env.tiendaID)
	require.NoError(t, err)
	assert.True(t, periodo.TotalVentas.Equal(dec("500")))
	assert.True(t, periodo.TotalTransferencia.Equal(dec("300")))
}

func TestRegistrarVenta_Descuento(t *testing.T) {
	env := newVentaTestEnv(t)
	p := env.crearProducto(t, "250", "150")
	ctx := context.Background()

	_, err := env.cierreSvc.AbrirPeriodo(ctx, env.tiendaID)
	require.NoError(t, err)

	req := dto.RegistrarVentaRequest{
		TiendaID: env.tiendaID.String(),
		Items:    []dto.VentaItemRequest{{ProductoID: p.ID.String(), Cantidad: 2, Descuento: dec("50")}},
		Pagos:    []dto.VentaPagoRequest{{Metodo: "efectivo", Monto: dec("450")}},
	}
	venta, err := env.ventaSvc.RegistrarVenta(ctx, env.usuarioID, req)
	require.NoError(t, err)

	// 2×250 − 50 de descuento
	assert.True(t, venta.Total.Equal(dec("450")))
	assert.True(t, venta.DescuentoTotal.Equal(dec("50")))
	// La ganancia absorbe el descuento: 450 − 300 de costo
	assert.True(t, venta.Ganancia.Equal(dec("150")))
}

func TestRegistrarVenta_PagoInsuficiente(t *testing.T) {
	env := newVentaTestEnv(t)
	p := env.crearProducto(t, "250", "150")
	ctx := context.Background()

	_, err := env.cierreSvc.AbrirPeriodo(ctx, env.tiendaID)
	require.NoError(t, err)

	req := dto.RegistrarVentaRequest{
		TiendaID: env.tiendaID.String(),
		Items:    []dto.VentaItemRequest{{ProductoID: p.ID.String(), Cantidad: 2}},
		Pagos:    []dto.VentaPagoRequest{{Metodo: "efectivo", Monto: dec("400")}},
	}
	_, err = env.ventaSvc.RegistrarVenta(ctx, env.usuarioID, req)
	assert.ErrorIs(t, err, service.ErrPagoInsuficiente)

	// Nothing persisted, accumulators untouched
	assert.Empty(t, env.ventaRepo.ventas)
	periodo, err := env.cierreSvc.ObtenerPeriodoActual(ctx, env.tiendaID)
	require.NoError(t, err)
	assert.True(t, periodo.TotalVentas.IsZero())
}

func TestRegistrarVenta_ProductoInactivo(t *testing.T) {
	env := newVentaTestEnv(t)
	p := env.crearProducto(t, "250", "150")
	p.Activo = false
	ctx := context.Background()

	_, err := env.cierreSvc.AbrirPeriodo(ctx, env.tiendaID)
	require.NoError(t, err)

	req := dto.RegistrarVentaRequest{
		TiendaID: env.tiendaID.String(),
		Items:    []dto.VentaItemRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		Pagos:    []dto.VentaPagoRequest{{Metodo: "efectivo", Monto: dec("250")}},
	}
	_, err = env.ventaSvc.RegistrarVenta(ctx, env.usuarioID, req)
	assert.Error(t, err)
}

func TestRegistrarVenta_VentaLigadaAlPeriodo(t *testing.T) {
	env := newVentaTestEnv(t)
	p := env.crearProducto(t, "100", "60")
	ctx := context.Background()

	periodo, err := env.cierreSvc.AbrirPeriodo(ctx, env.tiendaID)
	require.NoError(t, err)

	req := dto.RegistrarVentaRequest{
		TiendaID: env.tiendaID.String(),
		Items:    []dto.VentaItemRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		Pagos:    []dto.VentaPagoRequest{{Metodo: "efectivo", Monto: dec("100")}},
	}
	venta, err := env.ventaSvc.RegistrarVenta(ctx, env.usuarioID, req)
	require.NoError(t, err)
	assert.Equal(t, periodo.ID.String(), venta.CierrePeriodoID)

	listado, err := env.ventaSvc.ListarPorPeriodo(ctx, periodo.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), listado.Total)
	require.Len(t, listado.Data, 1)
	assert.Equal(t, venta.ID, listado.Data[0].ID)
}
