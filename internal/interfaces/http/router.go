package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jvalencia-dev/almacen-api/internal/application/auth"
	"github.com/jvalencia-dev/almacen-api/internal/application/ledger"
	"github.com/jvalencia-dev/almacen-api/internal/application/reporting"
	"github.com/jvalencia-dev/almacen-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	TenantUC    *usecase.TenantUseCase
	MaterialUC  *usecase.MaterialUseCase
	Ledger      *ledger.UseCase
	ReportingUC *reporting.UseCase
	AuthUC      *auth.AuthUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Tenants (público por ahora; el alta de tenant precede a cualquier login)
	tenants := api.Group("/tenants")
	tenantHandler := NewTenantHandler(deps.TenantUC)
	tenants.Post("/", tenantHandler.Create)
	tenants.Get("/", tenantHandler.List)
	tenants.Get("/:id", tenantHandler.GetByID)
	tenants.Patch("/:id/plan", tenantHandler.UpdatePlan)

	// Rutas protegidas (requieren Bearer Token; el plan del tenant se
	// resuelve contra la DB en cada petición)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.TenantUC))

	// Materials (protegido)
	materials := protected.Group("/materials")
	materialHandler := NewMaterialHandler(deps.MaterialUC)
	materials.Post("/", materialHandler.Create)
	materials.Get("/", materialHandler.List)
	materials.Get("/:id", materialHandler.GetByID)
	materials.Delete("/:id", materialHandler.Delete)

	// Inventory movements (protegido)
	invGroup := protected.Group("/inventory")
	movementHandler := NewMovementHandler(deps.Ledger)
	invGroup.Post("/movements", movementHandler.Register)

	// Reports (protegido; el gate exige plan PRO)
	reports := protected.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportingUC)
	reports.Get("/summary", reportHandler.Summary)
	reports.Get("/export", reportHandler.Export)
}
