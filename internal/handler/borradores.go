package handler

import (
	"net/http"
	"strconv"
	"time"

	"farmacuadra/internal/apierror"
	"farmacuadra/internal/dto"
	"farmacuadra/internal/middleware"
	"farmacuadra/internal/model"
	"farmacuadra/internal/repository"
	"farmacuadra/internal/service"

	"github.com/gin-gonic/gin"
)

type BorradoresHandler struct{ svc service.BorradorService }

func NewBorradoresHandler(svc service.BorradorService) *BorradoresHandler {
	return &BorradoresHandler{svc: svc}
}

// Guardar godoc
// @Summary Guarda el borrador colaborativo de una sesion (sobrescritura total)
// @Tags borradores
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sesionId path int true "ID de sesion POS"
// @Param body body dto.BorradorRequest true "Estado del formulario"
// @Success 204
// @Failure 403 {object} apierror.APIError
// @Router /v1/borradores/{sesionId} [put]
func (h *BorradoresHandler) Guardar(c *gin.Context) {
	sesionID, err := strconv.ParseInt(c.Param("sesionId"), 10, 64)
	if err != nil || sesionID <= 0 {
		c.JSON(http.StatusBadRequest, apierror.New("ID de sesion invalido"))
		return
	}
	var req dto.BorradorRequest
	if !bindAndValidate(c, &req) {
		return
	}

	borrador := &model.BorradorRectificacion{
		SesionID:               sesionID,
		SaldoFisicoEfectivo:    req.SaldoFisicoEfectivo,
		MontosFisicosPorMetodo: req.MontosFisicosPorMetodo,
		GastosRendidos:         convertirGastosBorrador(req.GastosRendidos),
		BoletasPendientes:      convertirBoletasBorrador(req.BoletasPendientes),
	}
	if len(req.JustificacionesPorMetodo) > 0 {
		borrador.JustificacionesPorMetodo = make(map[string][]model.Justificacion, len(req.JustificacionesPorMetodo))
		for metodo, justs := range req.JustificacionesPorMetodo {
			borrador.JustificacionesPorMetodo[metodo] = convertirJustificacionesBorrador(justs)
		}
	}

	// Solo un administrador componiendo una solicitud nueva puede escribir.
	err = h.svc.Guardar(c.Request.Context(), middleware.GetActor(c), service.ModoCrear, borrador)
	if err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Obtener godoc
// @Summary Obtiene el borrador colaborativo de una sesion
// @Tags borradores
// @Produce json
// @Security BearerAuth
// @Param sesionId path int true "ID de sesion POS"
// @Success 200 {object} model.BorradorRectificacion
// @Failure 404 {object} apierror.APIError
// @Router /v1/borradores/{sesionId} [get]
func (h *BorradoresHandler) Obtener(c *gin.Context) {
	sesionID, err := strconv.ParseInt(c.Param("sesionId"), 10, 64)
	if err != nil || sesionID <= 0 {
		c.JSON(http.StatusBadRequest, apierror.New("ID de sesion invalido"))
		return
	}
	borrador, err := h.svc.Obtener(c.Request.Context(), sesionID, false)
	if err != nil {
		if err == repository.ErrBorradorNoEncontrado {
			c.JSON(http.StatusNotFound, apierror.New("No existe borrador para esta sesion"))
			return
		}
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, borrador)
}

func convertirJustificacionesBorrador(entradas []dto.JustificacionEntrada) []model.Justificacion {
	justs := make([]model.Justificacion, 0, len(entradas))
	for _, e := range entradas {
		justs = append(justs, model.Justificacion{
			Monto:    e.Monto,
			Motivo:   e.Motivo,
			Tipo:     e.Tipo,
			CreadaEn: time.Now().UTC(),
		})
	}
	return justs
}

func convertirGastosBorrador(entradas []dto.GastoEntrada) []model.GastoRendido {
	if entradas == nil {
		return nil
	}
	gastos := make([]model.GastoRendido, 0, len(entradas))
	for _, e := range entradas {
		gastos = append(gastos, model.GastoRendido{
			Monto:             e.Monto,
			NumeroComprobante: e.NumeroComprobante,
			Motivo:            e.Motivo,
			CreadoEn:          time.Now().UTC(),
		})
	}
	return gastos
}

func convertirBoletasBorrador(entradas []dto.BoletaEntrada) []model.BoletaPendiente {
	if entradas == nil {
		return nil
	}
	boletas := make([]model.BoletaPendiente, 0, len(entradas))
	for _, e := range entradas {
		boletas = append(boletas, model.BoletaPendiente{
			Monto:        e.Monto,
			NumeroBoleta: e.NumeroBoleta,
			Estado:       e.Estado,
			CreadaEn:     time.Now().UTC(),
		})
	}
	return boletas
}
