package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"farmacuadra/internal/dto"
	"farmacuadra/internal/middleware"
	"farmacuadra/internal/model"
	"farmacuadra/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCuadraturaSvc struct {
	vista *dto.VistaJerarquica
	err   error
}

func (f *fakeCuadraturaSvc) CargarSesiones(_ context.Context) (*dto.VistaJerarquica, error) {
	return f.vista, f.err
}

func (f *fakeCuadraturaSvc) Filtrar(vista *dto.VistaJerarquica, estado string) *dto.VistaJerarquica {
	return vista
}

func (f *fakeCuadraturaSvc) SeleccionarSesion(resumen dto.SesionResumen, rol string) dto.AperturaSesion {
	if resumen.EstadoRectificacion == model.EstadoSinRectificar && rol == model.RolAdministrador {
		return dto.AperturaSesion{Modo: service.ModoCrear}
	}
	return dto.AperturaSesion{Modo: service.ModoSoloLectura, VerBorrador: resumen.TieneBorrador}
}

func conClaims(rol string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ClaimsKey, &middleware.JWTClaims{
			UserID: "uid-1", Email: "test@farmacia.cl", Rol: rol,
		})
	}
}

func TestAperturaResuelveElModo(t *testing.T) {
	h := NewCuadraturasHandler(&fakeCuadraturaSvc{})
	r := gin.New()
	r.GET("/v1/cuadraturas/sesiones/:id/apertura", conClaims(model.RolAdministrador), h.Apertura)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/cuadraturas/sesiones/7/apertura", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var apertura dto.AperturaSesion
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apertura))
	assert.Equal(t, service.ModoCrear, apertura.Modo)
}

func TestAperturaConEstadoYBorrador(t *testing.T) {
	h := NewCuadraturasHandler(&fakeCuadraturaSvc{})
	r := gin.New()
	r.GET("/v1/cuadraturas/sesiones/:id/apertura", conClaims(model.RolSuperadministrador), h.Apertura)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/v1/cuadraturas/sesiones/7/apertura?estado=sin_rectificar&borrador=true", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var apertura dto.AperturaSesion
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apertura))
	assert.Equal(t, service.ModoSoloLectura, apertura.Modo)
	assert.True(t, apertura.VerBorrador)
}

func TestAperturaIDInvalido(t *testing.T) {
	h := NewCuadraturasHandler(&fakeCuadraturaSvc{})
	r := gin.New()
	r.GET("/v1/cuadraturas/sesiones/:id/apertura", conClaims(model.RolAdministrador), h.Apertura)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/cuadraturas/sesiones/abc/apertura", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListarDevuelveLaVistaFiltrada(t *testing.T) {
	vista := &dto.VistaJerarquica{Locales: []dto.NodoLocal{{Nombre: "Farmacia Centro"}}}
	h := NewCuadraturasHandler(&fakeCuadraturaSvc{vista: vista})
	r := gin.New()
	r.GET("/v1/cuadraturas", conClaims(model.RolAdministrador), h.Listar)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/cuadraturas?estado=pendiente", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Farmacia Centro")
}
