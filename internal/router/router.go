package router

import (
	"time"

	"farmacuadra/internal/config"
	"farmacuadra/internal/handler"
	"farmacuadra/internal/infra"
	"farmacuadra/internal/middleware"
	"farmacuadra/internal/model"
	"farmacuadra/internal/repository"
	"farmacuadra/internal/service"
	"farmacuadra/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis/POS
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, posCB *infra.CircuitBreaker) *gin.Engine {
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

	// ── Infrastructure ───────────────────────────────────────────────────────
	posClient := infra.NewPOSClient(cfg.POSAPIURL, cfg.POSAPIToken, posCB)

	// ── Repositories ─────────────────────────────────────────────────────────
	rectRepo := repository.NewRectificacionRepository(db)
	borradorRepo := repository.NewBorradorRepository(rdb)
	localRepo := repository.NewLocalRepository(db)

	// Worker dispatcher — injected into the service that enqueues async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	cuadraturaSvc := service.NewCuadraturaService(posClient, rectRepo, borradorRepo)
	borradorSvc := service.NewBorradorService(borradorRepo)
	rectificacionSvc := service.NewRectificacionService(posClient, rectRepo, borradorSvc, cfg.MetodosPago, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	cuadraturasH := handler.NewCuadraturasHandler(cuadraturaSvc)
	rectificacionesH := handler.NewRectificacionesHandler(rectificacionSvc, cfg.PDFStoragePath)
	borradoresH := handler.NewBorradoresHandler(borradorSvc)
	localesH := handler.NewLocalesHandler(localRepo)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, posCB))

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	ambosRoles := middleware.RequireRole(model.RolAdministrador, model.RolSuperadministrador)
	v1 := r.Group("/v1", jwtMW)
	{
		cuadraturas := v1.Group("/cuadraturas", ambosRoles)
		{
			cuadraturas.GET("", cuadraturasH.Listar)
			cuadraturas.GET("/sesiones/:id/apertura", cuadraturasH.Apertura)
		}

		rect := v1.Group("/rectificaciones")
		{
			rect.POST("/vista", ambosRoles, rectificacionesH.Vista)
			// Submitting is the store administrator's act; the decision
			// belongs to the superadministrador.
			rect.POST("", middleware.RequireRole(model.RolAdministrador), rectificacionesH.Enviar)
			rect.POST("/:id/decision", middleware.RequireRole(model.RolSuperadministrador), rectificacionesH.Decidir)
			rect.GET("/:id/acta", ambosRoles, rectificacionesH.Acta)
		}

		v1.GET("/locales", ambosRoles, localesH.Listar)

		borradores := v1.Group("/borradores")
		{
			borradores.PUT("/:sesionId", middleware.RequireRole(model.RolAdministrador), borradoresH.Guardar)
			borradores.GET("/:sesionId", ambosRoles, borradoresH.Obtener)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
