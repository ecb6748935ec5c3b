package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"farmacuadra/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() { gin.SetMode(gin.TestMode) }

func TestResponderErrorMapeaLaTaxonomia(t *testing.T) {
	casos := []struct {
		nombre string
		err    error
		status int
	}{
		{"validacion", &service.ErrValidacion{Detalle: "montos invalidos"}, http.StatusUnprocessableEntity},
		{"externo", &service.ErrExterno{Causa: errors.New("pos caido")}, http.StatusBadGateway},
		{"permiso", service.ErrPermisoDenegado, http.StatusForbidden},
		{"no encontrada", service.ErrSolicitudNoEncontrada, http.StatusNotFound},
		{"resuelta", service.ErrSolicitudResuelta, http.StatusConflict},
		{"confirmacion", service.ErrConfirmacionRequerida, http.StatusBadRequest},
		{"persistencia", &service.ErrPersistencia{Causa: errors.New("db")}, http.StatusInternalServerError},
		{"desconocido", errors.New("algo"), http.StatusInternalServerError},
	}

	for _, caso := range casos {
		t.Run(caso.nombre, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			responderError(c, caso.err)
			assert.Equal(t, caso.status, w.Code)
		})
	}
}

func TestResponderErrorValidacionIncluyeCampos(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	responderError(c, &service.ErrValidacion{
		Detalle: "Debe ingresar un monto valido para: Klap",
		Campos:  map[string]string{"montos_fisicos_por_metodo.Klap": "monto requerido"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Debe ingresar un monto valido para: Klap")
	assert.Contains(t, w.Body.String(), "montos_fisicos_por_metodo.Klap")
}
