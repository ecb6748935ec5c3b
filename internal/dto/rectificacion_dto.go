package dto

import (
	"farmacuadra/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// VistaRequest is the routing state the listing page hands to the detail
// view: session snapshot (absent when navigated directly by URL), mode,
// known solicitud id and whether a draft preview was requested.
type VistaRequest struct {
	SesionID    int64            `json:"sesion_id"     validate:"required,gt=0"`
	Sesion      *model.SesionPOS `json:"sesion"`
	Modo        string           `json:"modo"          validate:"required,oneof=crear revisar solo_lectura"`
	SolicitudID string           `json:"solicitud_id"  validate:"omitempty,uuid"`
	VerBorrador bool             `json:"ver_borrador"`
}

// JustificacionEntrada is a modal-entered justification line.
type JustificacionEntrada struct {
	Monto  decimal.Decimal `json:"monto"  validate:"required"`
	Motivo string          `json:"motivo" validate:"required,max=100"`
	Tipo   string          `json:"tipo"   validate:"required,oneof=faltante sobrante"`
}

// GastoEntrada is a rendered-expense line.
type GastoEntrada struct {
	Monto             decimal.Decimal `json:"monto"              validate:"required"`
	NumeroComprobante string          `json:"numero_comprobante" validate:"required"`
	Motivo            string          `json:"motivo"             validate:"required,max=50"`
}

// BoletaEntrada is a pending-receipt line.
type BoletaEntrada struct {
	Monto        decimal.Decimal `json:"monto"         validate:"required"`
	NumeroBoleta string          `json:"numero_boleta" validate:"required"`
	Estado       string          `json:"estado"        validate:"required,oneof=pendiente rectificacion"`
}

// EnviarRectificacionRequest carries the full form state on submit.
// Amount inputs travel as strings so a blank field is distinguishable
// from an explicit zero; the service collects every missing/invalid
// method before reporting.
type EnviarRectificacionRequest struct {
	SesionID int64            `json:"sesion_id" validate:"required,gt=0"`
	Sesion   *model.SesionPOS `json:"sesion"`

	SaldoFisicoEfectivo    string            `json:"saldo_fisico_efectivo"`
	MontosFisicosPorMetodo map[string]string `json:"montos_fisicos_por_metodo"`

	JustificacionesPorMetodo map[string][]JustificacionEntrada `json:"justificaciones_por_metodo"`
	GastosRendidos           []GastoEntrada                    `json:"gastos_rendidos"`
	BoletasPendientes        []BoletaEntrada                   `json:"boletas_pendientes"`

	// Confirmado acknowledges the "cannot be edited after submission"
	// confirmation step; the write never fires without it.
	Confirmado bool `json:"confirmado"`
}

// DecisionRequest resolves a pending solicitud.
type DecisionRequest struct {
	Accion     string `json:"accion"     validate:"required,oneof=aprobar rechazar"`
	Comentario string `json:"comentario" validate:"omitempty,max=100"`
}

// BorradorRequest is the draft snapshot saved by "guardar borrador".
// The editor identity comes from the JWT, never from the body.
type BorradorRequest struct {
	SaldoFisicoEfectivo      *string                           `json:"saldo_fisico_efectivo"`
	MontosFisicosPorMetodo   map[string]string                 `json:"montos_fisicos_por_metodo"`
	JustificacionesPorMetodo map[string][]JustificacionEntrada `json:"justificaciones_por_metodo"`
	GastosRendidos           []GastoEntrada                    `json:"gastos_rendidos"`
	BoletasPendientes        []BoletaEntrada                   `json:"boletas_pendientes"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// DetalleMetodo is one payment-method row of the reconciliation view.
type DetalleMetodo struct {
	Nombre          string                `json:"nombre"`
	MontoSistema    decimal.Decimal       `json:"montoSistema"`
	MontoFisico     string                `json:"montoFisico"` // "" = not yet entered
	Justificaciones []model.Justificacion `json:"justificaciones,omitempty"`
	DiferenciaBruta decimal.Decimal       `json:"diferenciaBruta"`
	DiferenciaNeta  decimal.Decimal       `json:"diferenciaNeta"`
	Justificable    bool                  `json:"justificable"`
}

// ResumenDiferencias carries the computed cash figures.
type ResumenDiferencias struct {
	EfectivoBruta      decimal.Decimal `json:"efectivoBruta"`
	EfectivoConBoletas decimal.Decimal `json:"efectivoConBoletas"`
	EfectivoNeta       decimal.Decimal `json:"efectivoNeta"`
	DiferenciaGastos   decimal.Decimal `json:"diferenciaGastos"`
}

// VistaRectificacion is the reconciliation view model for one session.
type VistaRectificacion struct {
	Modo   string          `json:"modo"`
	Sesion model.SesionPOS `json:"sesion"`

	SaldoFisicoEfectivo     string                  `json:"saldoFisicoEfectivo"` // "" = not yet entered
	JustificacionesEfectivo []model.Justificacion   `json:"justificacionesEfectivo,omitempty"`
	Metodos                 []DetalleMetodo         `json:"metodos"`
	GastosRendidos          []model.GastoRendido    `json:"gastosRendidos,omitempty"`
	BoletasPendientes       []model.BoletaPendiente `json:"boletasPendientes,omitempty"`

	Solicitud *model.SolicitudRectificacion `json:"solicitud,omitempty"`

	BorradorAplicado bool                 `json:"borradorAplicado"`
	UltimaEdicion    *model.UltimaEdicion `json:"ultimaEdicionBorrador,omitempty"`

	Diferencias ResumenDiferencias `json:"diferencias"`
}
