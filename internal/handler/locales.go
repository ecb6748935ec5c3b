package handler

import (
	"net/http"

	"farmacuadra/internal/repository"

	"github.com/gin-gonic/gin"
)

type LocalesHandler struct{ repo repository.LocalRepository }

func NewLocalesHandler(repo repository.LocalRepository) *LocalesHandler {
	return &LocalesHandler{repo: repo}
}

// Listar godoc
// @Summary Lista los locales activos de la cadena
// @Tags locales
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Local
// @Router /v1/locales [get]
func (h *LocalesHandler) Listar(c *gin.Context) {
	locales, err := h.repo.Listar(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, locales)
}
