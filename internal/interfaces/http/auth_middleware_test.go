package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvalencia-dev/almacen-api/internal/domain"
	apphttp "github.com/jvalencia-dev/almacen-api/internal/interfaces/http"
	pkgjwt "github.com/jvalencia-dev/almacen-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testTenantID  = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "almacen-api-test"
	testExpMin    = 60
)

// fakePlans resuelve siempre el plan indicado (o falla si el tenant "no existe").
type fakePlans struct {
	plan string
	err  error
}

func (f *fakePlans) ResolvePlan(context.Context, string) (string, error) {
	return f.plan, f.err
}

// buildTestApp construye una app Fiber mínima con AuthMiddleware y un handler
// que expone la identidad resuelta (incluido el plan, que viene de la DB y
// nunca del token).
func buildTestApp(plans *fakePlans) *fiber.App {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret, plans), func(c *fiber.Ctx) error {
		rc := apphttp.RequestContext(c)
		return c.JSON(fiber.Map{
			"user_id":   rc.UserID,
			"tenant_id": rc.TenantID,
			"role":      rc.Role,
			"plan":      rc.Plan,
		})
	})
	return app
}

// tokenForRole genera un JWT con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testTenantID, role, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// doRequest lanza una petición GET /me y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: token válido → 200 con la identidad completa y el plan resuelto de la DB.
func TestAuthMiddleware_ExtraeClaimsYResuelvePlan(t *testing.T) {
	app := buildTestApp(&fakePlans{plan: "PRO"})
	resp := doRequest(t, app, tokenForRole(t, "ADMIN"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testTenantID, body["tenant_id"])
	assert.Equal(t, "ADMIN", body["role"])
	assert.Equal(t, "PRO", body["plan"], "el plan viene de la DB, no del token")
}

// Caso 2: sin header Authorization → 401 MISSING_TOKEN.
func TestAuthMiddleware_SinAuthHeader_Retorna401(t *testing.T) {
	app := buildTestApp(&fakePlans{plan: "FREE"})
	resp := doRequest(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

// Caso 3: token inválido / malformado → 401 INVALID_TOKEN.
func TestAuthMiddleware_TokenInvalido_Retorna401(t *testing.T) {
	app := buildTestApp(&fakePlans{plan: "FREE"})
	resp := doRequest(t, app, "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INVALID_TOKEN")
}

// Caso 4: token sin claim de rol → 401 MISSING_ROLE.
func TestAuthMiddleware_TokenSinRol_Retorna401(t *testing.T) {
	app := buildTestApp(&fakePlans{plan: "FREE"})
	resp := doRequest(t, app, tokenForRole(t, ""))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_ROLE")
}

// Caso 5: el tenant del token ya no existe → 401 UNKNOWN_TENANT.
func TestAuthMiddleware_TenantInexistente_Retorna401(t *testing.T) {
	app := buildTestApp(&fakePlans{err: domain.ErrUnauthorized})
	resp := doRequest(t, app, tokenForRole(t, "ADMIN"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "UNKNOWN_TENANT")
}

// Caso 5b: un fallo de infraestructura al resolver el plan (DB caída) no es
// culpa del token: debe salir como 500 INTERNAL, nunca como 401.
func TestAuthMiddleware_ErrorDeInfraAlResolverPlan_Retorna500(t *testing.T) {
	app := buildTestApp(&fakePlans{err: errors.New("dial tcp: connection refused")})
	resp := doRequest(t, app, tokenForRole(t, "ADMIN"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INTERNAL")
	assert.NotContains(t, string(body), "UNKNOWN_TENANT")
	assert.NotContains(t, string(body), "connection refused",
		"el detalle de infraestructura no debe llegar al cliente")
}

// Caso 6: el plan se resuelve en CADA petición: si el tenant sube de plan,
// la siguiente petición con el mismo token ya ve PRO.
func TestAuthMiddleware_PlanPorRequest_NoCacheado(t *testing.T) {
	plans := &fakePlans{plan: "FREE"}
	app := buildTestApp(plans)
	token := tokenForRole(t, "USER")

	resp := doRequest(t, app, token)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, "FREE", body["plan"])

	// Upgrade del tenant entre peticiones, mismo token
	plans.plan = "PRO"

	resp = doRequest(t, app, token)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, "PRO", body["plan"],
		"mismo token, plan nuevo: el middleware no debe cachear el plan")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests JWT pkg — integridad del generate/parse con role
// ──────────────────────────────────────────────────────────────────────────────

func TestJWT_GenerateAndParse_ConRole(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testTenantID, "USER", testIssuer, testExpMin)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, tenantID, role, err := pkgjwt.Parse(testJWTSecret, tok)
	require.NoError(t, err)

	assert.Equal(t, testUserID, userID)
	assert.Equal(t, testTenantID, tenantID)
	assert.Equal(t, "USER", role)
}

func TestJWT_TokenExpirado_RetornaError(t *testing.T) {
	// Token con expiración -1 minuto (ya expirado)
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testTenantID, "ADMIN", testIssuer, -1)
	require.NoError(t, err)

	_, _, _, err = pkgjwt.Parse(testJWTSecret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestJWT_SecretIncorrecto_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testTenantID, "ADMIN", testIssuer, testExpMin)
	require.NoError(t, err)

	_, _, _, err = pkgjwt.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err, "secret incorrecto debe invalidar el token")
}
