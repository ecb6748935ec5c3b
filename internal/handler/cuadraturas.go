package handler

import (
	"net/http"
	"strconv"

	"farmacuadra/internal/apierror"
	"farmacuadra/internal/dto"
	"farmacuadra/internal/middleware"
	"farmacuadra/internal/model"
	"farmacuadra/internal/service"

	"github.com/gin-gonic/gin"
)

type CuadraturasHandler struct{ svc service.CuadraturaService }

func NewCuadraturasHandler(svc service.CuadraturaService) *CuadraturasHandler {
	return &CuadraturasHandler{svc: svc}
}

// Listar godoc
// @Summary Lista las sesiones POS agrupadas por local, mes y dia
// @Tags cuadraturas
// @Produce json
// @Security BearerAuth
// @Param estado query string false "Filtro de estado" Enums(aprobada, rechazada, pendiente, borrador, sin_rectificar)
// @Success 200 {object} dto.VistaJerarquica
// @Failure 502 {object} apierror.APIError
// @Router /v1/cuadraturas [get]
func (h *CuadraturasHandler) Listar(c *gin.Context) {
	vista, err := h.svc.CargarSesiones(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.Filtrar(vista, c.Query("estado")))
}

// Apertura godoc
// @Summary Resuelve el modo de apertura de una sesion para el rol del usuario
// @Tags cuadraturas
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID de sesion POS"
// @Param estado query string false "Estado de rectificacion conocido"
// @Param borrador query bool false "La sesion tiene borrador"
// @Success 200 {object} dto.AperturaSesion
// @Failure 400 {object} apierror.APIError
// @Router /v1/cuadraturas/sesiones/{id}/apertura [get]
func (h *CuadraturasHandler) Apertura(c *gin.Context) {
	sesionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || sesionID <= 0 {
		c.JSON(http.StatusBadRequest, apierror.New("ID de sesion invalido"))
		return
	}

	estado := c.DefaultQuery("estado", model.EstadoSinRectificar)
	tieneBorrador, _ := strconv.ParseBool(c.DefaultQuery("borrador", "false"))

	resumen := dto.SesionResumen{
		Sesion:              model.SesionMinima(sesionID, ""),
		EstadoRectificacion: estado,
		TieneBorrador:       tieneBorrador,
	}
	claims := middleware.GetClaims(c)
	c.JSON(http.StatusOK, h.svc.SeleccionarSesion(resumen, claims.Rol))
}
