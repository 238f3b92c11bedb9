package router

import (
	"time"

	"cuadrecaja/internal/config"
	"cuadrecaja/internal/handler"
	"cuadrecaja/internal/middleware"
	"cuadrecaja/internal/repository"
	"cuadrecaja/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher service.ResumenDispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	tiendaRepo := repository.NewTiendaRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	cierreRepo := repository.NewCierreRepository(db)
	ventaRepo := repository.NewVentaRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	tiendaSvc := service.NewTiendaService(tiendaRepo)
	productoSvc := service.NewProductoService(productoRepo, tiendaRepo)
	cierreSvc := service.NewCierreService(cierreRepo, dispatcher)
	ventaSvc := service.NewVentaService(ventaRepo, cierreRepo, productoRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	tiendasH := handler.NewTiendasHandler(tiendaSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	cierresH := handler.NewCierresHandler(cierreSvc, cfg.PDFStoragePath)
	ventasH := handler.NewVentasHandler(ventaSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: vendedor, supervisor, administrador — declared per-endpoint
		periodos := v1.Group("/periodos/:tiendaId")
		{
			periodos.POST("/abrir", middleware.RequireRole("vendedor", "supervisor", "administrador"), cierresH.Abrir)
			periodos.GET("/actual", middleware.RequireRole("vendedor", "supervisor", "administrador"), cierresH.Actual)
			// Closing a period is a supervised operation
			periodos.PUT("/cerrar", middleware.RequireRole("supervisor", "administrador"), cierresH.Cerrar)
			periodos.GET("/historial", middleware.RequireRole("supervisor", "administrador"), cierresH.Historial)
			periodos.GET("/reporte/:id", middleware.RequireRole("supervisor", "administrador"), cierresH.Reporte)
		}

		v1.POST("/ventas", middleware.RequireRole("vendedor", "supervisor", "administrador"), ventasH.Registrar)
		v1.GET("/ventas", middleware.RequireRole("vendedor", "supervisor", "administrador"), ventasH.Listar)

		v1.GET("/productos", middleware.RequireRole("vendedor", "supervisor", "administrador"), productosH.Listar)
		v1.POST("/productos", middleware.RequireRole("administrador"), productosH.Crear)

		tiendas := v1.Group("/tiendas", middleware.RequireRole("administrador"))
		{
			tiendas.POST("", tiendasH.Crear)
			tiendas.GET("", tiendasH.Listar)
		}

		usuarios := v1.Group("/usuarios", middleware.RequireRole("administrador"))
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
