package handler

import (
	"errors"
	"net/http"
	"reflect"

	"farmacuadra/internal/apierror"
	"farmacuadra/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation("", fields))
		return false
	}
	return true
}

// responderError maps the service error taxonomy to HTTP statuses.
func responderError(c *gin.Context, err error) {
	var validacion *service.ErrValidacion
	if errors.As(err, &validacion) {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(validacion.Detalle, validacion.Campos))
		return
	}

	var externo *service.ErrExterno
	if errors.As(err, &externo) {
		c.JSON(http.StatusBadGateway, apierror.New(externo.Error()))
		return
	}

	switch {
	case errors.Is(err, service.ErrPermisoDenegado):
		c.JSON(http.StatusForbidden, apierror.New(err.Error()))
	case errors.Is(err, service.ErrSolicitudNoEncontrada):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrSolicitudResuelta):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, service.ErrConfirmacionRequerida):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	default:
		var persistencia *service.ErrPersistencia
		if errors.As(err, &persistencia) {
			c.JSON(http.StatusInternalServerError, apierror.New(persistencia.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
	}
}
