package handler

import (
	"net/http"

	"farmacuadra/internal/apierror"
	"farmacuadra/internal/dto"
	"farmacuadra/internal/infra"
	"farmacuadra/internal/middleware"
	"farmacuadra/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RectificacionesHandler struct {
	svc         service.RectificacionService
	storagePath string
}

func NewRectificacionesHandler(svc service.RectificacionService, storagePath string) *RectificacionesHandler {
	return &RectificacionesHandler{svc: svc, storagePath: storagePath}
}

// Vista godoc
// @Summary Construye la vista de rectificacion de una sesion
// @Tags rectificaciones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.VistaRequest true "Estado de navegacion desde el listado"
// @Success 200 {object} dto.VistaRectificacion
// @Failure 404 {object} apierror.APIError
// @Failure 502 {object} apierror.APIError
// @Router /v1/rectificaciones/vista [post]
func (h *RectificacionesHandler) Vista(c *gin.Context) {
	var req dto.VistaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	vista, err := h.svc.Cargar(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, vista)
}

// Enviar godoc
// @Summary Envia una solicitud de rectificacion (inmutable tras el envio)
// @Tags rectificaciones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.EnviarRectificacionRequest true "Formulario completo"
// @Success 201 {object} model.SolicitudRectificacion
// @Failure 422 {object} apierror.ValidationError
// @Failure 403 {object} apierror.APIError
// @Router /v1/rectificaciones [post]
func (h *RectificacionesHandler) Enviar(c *gin.Context) {
	var req dto.EnviarRectificacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	solicitud, err := h.svc.Enviar(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, solicitud)
}

// Decidir godoc
// @Summary Aprueba o rechaza una solicitud pendiente
// @Tags rectificaciones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de solicitud"
// @Param body body dto.DecisionRequest true "Decision"
// @Success 200 {object} model.SolicitudRectificacion
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/rectificaciones/{id}/decision [post]
func (h *RectificacionesHandler) Decidir(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de solicitud invalido"))
		return
	}
	var req dto.DecisionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	solicitud, err := h.svc.Decidir(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, solicitud)
}

// Acta godoc
// @Summary Descarga el acta PDF de una solicitud
// @Tags rectificaciones
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "ID de solicitud"
// @Success 200 {file} binary
// @Failure 404 {object} apierror.APIError
// @Router /v1/rectificaciones/{id}/acta [get]
func (h *RectificacionesHandler) Acta(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de solicitud invalido"))
		return
	}
	solicitud, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	ruta, err := infra.GenerateActaPDF(solicitud, h.storagePath)
	if err != nil {
		responderError(c, err)
		return
	}
	c.FileAttachment(ruta, "acta_"+solicitud.ID.String()+".pdf")
}
