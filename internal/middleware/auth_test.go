package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"farmacuadra/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secretoPrueba = "secreto-de-prueba"

func init() { gin.SetMode(gin.TestMode) }

func tokenFirmado(t *testing.T, rol string, secreto string) string {
	t.Helper()
	claims := &JWTClaims{
		UserID: "uid-1",
		Email:  "admin@farmacia.cl",
		Nombre: "Admin Local",
		Rol:    rol,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secreto))
	require.NoError(t, err)
	return token
}

func routerProtegido(roles ...string) *gin.Engine {
	r := gin.New()
	grupo := r.Group("/", JWTAuth(secretoPrueba))
	if len(roles) > 0 {
		grupo.Use(RequireRole(roles...))
	}
	grupo.GET("/recurso", func(c *gin.Context) {
		actor := GetActor(c)
		c.JSON(http.StatusOK, gin.H{"email": actor.Email, "rol": actor.Rol})
	})
	return r
}

func TestJWTAuthSinToken(t *testing.T) {
	r := routerProtegido()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/recurso", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthFirmaInvalida(t *testing.T) {
	r := routerProtegido()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/recurso", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFirmado(t, model.RolAdministrador, "otro-secreto"))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthTokenValidoExponeElActor(t *testing.T) {
	r := routerProtegido()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/recurso", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFirmado(t, model.RolAdministrador, secretoPrueba))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin@farmacia.cl")
	assert.Contains(t, w.Body.String(), model.RolAdministrador)
}

func TestRequireRoleRechazaRolAjeno(t *testing.T) {
	r := routerProtegido(model.RolSuperadministrador)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/recurso", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFirmado(t, model.RolAdministrador, secretoPrueba))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRolePermiteRolListado(t *testing.T) {
	r := routerProtegido(model.RolAdministrador, model.RolSuperadministrador)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/recurso", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFirmado(t, model.RolSuperadministrador, secretoPrueba))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
