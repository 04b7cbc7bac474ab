package http

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jvalencia-dev/almacen-api/internal/application/dto"
	"github.com/jvalencia-dev/almacen-api/internal/domain"
	"github.com/jvalencia-dev/almacen-api/internal/domain/entity"
	pkgjwt "github.com/jvalencia-dev/almacen-api/pkg/jwt"
	"github.com/rs/zerolog/log"
)

// Locals keys para la identidad resuelta en Fiber.
const (
	LocalUserID   = "user_id"
	LocalTenantID = "tenant_id"
	LocalRole     = "role"
	LocalPlan     = "plan"
)

// planResolver contrato mínimo para resolver el plan del tenant en cada request.
// Lo implementa *usecase.TenantUseCase; la interfaz evita el import circular.
type planResolver interface {
	ResolvePlan(ctx context.Context, tenantID string) (string, error)
}

// AuthMiddleware valida el Bearer Token JWT, extrae userID/tenantID/role y
// resuelve el plan del tenant contra la DB. El plan NUNCA se toma del token:
// puede cambiar entre peticiones y el gating se evalúa por request.
func AuthMiddleware(jwtSecret string, plans planResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		userID, tenantID, role, err := pkgjwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "token sin rol"})
		}

		plan, err := plans.ResolvePlan(c.Context(), tenantID)
		if err != nil {
			// Tenant ausente es 401; un fallo de infraestructura (DB caída)
			// no es culpa del token y debe salir como 500
			if errors.Is(err, domain.ErrUnauthorized) {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNKNOWN_TENANT", Message: "tenant del token no existe"})
			}
			log.Error().Err(err).Msg("resolver plan del tenant")
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
		}

		c.Locals(LocalUserID, userID)
		c.Locals(LocalTenantID, tenantID)
		c.Locals(LocalRole, role)
		c.Locals(LocalPlan, plan)
		return c.Next()
	}
}

// RequestContext construye el contexto de identidad explícito que consumen
// los casos de uso. Usar después de AuthMiddleware.
func RequestContext(c *fiber.Ctx) entity.RequestContext {
	return entity.RequestContext{
		TenantID: localString(c, LocalTenantID),
		UserID:   localString(c, LocalUserID),
		Role:     localString(c, LocalRole),
		Plan:     localString(c, LocalPlan),
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string { return localString(c, LocalUserID) }

// GetTenantID devuelve el TenantID del contexto (después del middleware de auth).
func GetTenantID(c *fiber.Ctx) string { return localString(c, LocalTenantID) }

// GetRole devuelve el rol del contexto (después del middleware de auth).
func GetRole(c *fiber.Ctx) string { return localString(c, LocalRole) }

func localString(c *fiber.Ctx, key string) string {
	v := c.Locals(key)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
