package router

import (
	"time"

	"stockmaster/internal/config"
	"stockmaster/internal/handler"
	"stockmaster/internal/infra"
	"stockmaster/internal/middleware"
	"stockmaster/internal/model"
	"stockmaster/internal/repository"
	"stockmaster/internal/service"
	"stockmaster/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis.
// rdb and dispatcher may be nil: search caching and invoice emails are then disabled.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))

	// ── Infrastructure ───────────────────────────────────────────────────────
	var cache infra.Cache = infra.NoopCache{}
	if rdb != nil {
		cache = infra.NewRedisCache(rdb)
	}
	var notifier service.FacturaNotifier
	if dispatcher != nil {
		notifier = dispatcher
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	movimientoStockRepo := repository.NewMovimientoStockRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	devolucionRepo := repository.NewDevolucionRepository(db)
	proveedorRepo := repository.NewProveedorRepository(db)
	compraRepo := repository.NewCompraRepository(db)
	ordenRepo := repository.NewOrdenCompraRepository(db)
	reporteRepo := repository.NewReporteRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	inventarioSvc := service.NewInventarioService(productoRepo, movimientoStockRepo, cache)
	productoSvc := service.NewProductoService(productoRepo, inventarioSvc, cache,
		time.Duration(cfg.SearchCacheTTLSeconds)*time.Second)
	ventaSvc := service.NewVentaService(ventaRepo, productoRepo, inventarioSvc, notifier, cfg)
	devolucionSvc := service.NewDevolucionService(devolucionRepo, ventaRepo, inventarioSvc)
	proveedorSvc := service.NewProveedorService(proveedorRepo)
	compraSvc := service.NewCompraService(compraRepo, ordenRepo, proveedorRepo, productoRepo, inventarioSvc)
	reporteSvc := service.NewReporteService(reporteRepo, cfg.UmbralBajoStock)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	inventarioH := handler.NewInventarioHandler(inventarioSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	devolucionesH := handler.NewDevolucionesHandler(devolucionSvc)
	proveedoresH := handler.NewProveedoresHandler(proveedorSvc)
	comprasH := handler.NewComprasHandler(compraSvc)
	reportesH := handler.NewReportesHandler(reporteSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Login and self-registration share one attempt budget per IP.
	credenciales := middleware.LoginRateLimiter(cfg.LoginRateLimitPerMinute)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", credenciales, authH.Login)
		auth.POST("/refresh", authH.Refresh)
		auth.POST("/registro", credenciales, authH.Registro)
	}

	// Protected routes: any authenticated role unless stated otherwise
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	adminOnly := middleware.RequireRole(model.RolAdmin)
	{
		v1.GET("/productos", productosH.Listar)
		v1.GET("/productos/buscar", productosH.Buscar)
		v1.GET("/productos/codigo/:codigo", productosH.ObtenerPorCodigo)
		v1.GET("/productos/:id", productosH.ObtenerPorID)
		prods := v1.Group("/productos", adminOnly)
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
			prods.PATCH("/:id/reactivar", productosH.Reactivar)
			prods.DELETE("/:id/definitivo", productosH.Eliminar)
		}

		inv := v1.Group("/inventario")
		{
			inv.GET("/movimientos", inventarioH.ListarMovimientos)
			inv.POST("/movimientos", inventarioH.RegistrarMovimiento)
			inv.DELETE("/movimientos/:id", adminOnly, inventarioH.EliminarMovimiento)
			inv.GET("/conciliacion", adminOnly, inventarioH.Conciliar)
		}

		v1.GET("/proveedores", proveedoresH.Listar)
		v1.GET("/proveedores/:id", proveedoresH.ObtenerPorID)
		prov := v1.Group("/proveedores", adminOnly)
		{
			prov.POST("", proveedoresH.Crear)
			prov.PUT("/:id", proveedoresH.Actualizar)
			prov.DELETE("/:id", proveedoresH.Desactivar)
			prov.PATCH("/:id/reactivar", proveedoresH.Reactivar)
		}

		v1.GET("/compras", comprasH.ListarCompras)
		v1.POST("/compras", comprasH.CrearCompra)
		v1.GET("/compras/:id", comprasH.ObtenerCompra)

		ordenes := v1.Group("/ordenes-compra")
		{
			ordenes.GET("", comprasH.ListarOrdenes)
			ordenes.POST("", comprasH.CrearOrden)
			ordenes.PATCH("/:id/recibir", comprasH.RecibirOrden)
			ordenes.PATCH("/:id/cancelar", adminOnly, comprasH.CancelarOrden)
		}

		ventas := v1.Group("/ventas")
		{
			ventas.POST("", ventasH.Finalizar)
			ventas.GET("", ventasH.ListarVentas)
			ventas.GET("/:id", ventasH.ObtenerVenta)
			ventas.GET("/:id/factura", ventasH.Factura)
			ventas.GET("/:id/devolubles", devolucionesH.Devolubles)
			ventas.POST("/:id/devoluciones", devolucionesH.Procesar)
		}
		v1.GET("/devoluciones", devolucionesH.Listar)

		rep := v1.Group("/reportes", adminOnly)
		{
			rep.GET("/dashboard", reportesH.Dashboard)
			rep.GET("/ventas-periodo", reportesH.VentasPeriodo)
			rep.GET("/top-productos", reportesH.TopProductos)
			rep.GET("/bajo-stock", reportesH.BajoStock)
			rep.GET("/ventas-por-cajero", reportesH.VentasPorCajero)
			rep.GET("/export/ventas-csv", reportesH.ExportVentasCSV)
		}

		usuarios := v1.Group("/usuarios", adminOnly)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}
	}

	// Swagger UI only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
