package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de una solicitud de rectificacion. Una sesion sin solicitud
// autoritativa se reporta como EstadoSinRectificar.
const (
	EstadoPendiente     = "pendiente"
	EstadoAprobada      = "aprobada"
	EstadoRechazada     = "rechazada"
	EstadoSinRectificar = "sin_rectificar"
)

// Tipos de justificacion. Los montos se guardan siempre positivos; el
// signo lo aporta el tipo (ver Efecto).
const (
	TipoFaltante = "faltante"
	TipoSobrante = "sobrante"
)

// Estados de una boleta pendiente.
const (
	EstadoBoletaPendiente     = "pendiente"
	EstadoBoletaRectificacion = "rectificacion"
)

// Limites de texto en sub-entradas.
const (
	MaxMotivoJustificacion = 100
	MaxMotivoGasto         = 50
	MaxMotivoRechazo       = 100
)

// Justificacion itemiza una porcion de la diferencia de un metodo de pago.
type Justificacion struct {
	Monto    decimal.Decimal `json:"monto"`
	Motivo   string          `json:"motivo"`
	Tipo     string          `json:"tipo"` // faltante | sobrante
	CreadaEn time.Time       `json:"creadaEn"`
}

// Efecto returns the signed contribution of the justification: a faltante
// adds its amount back (closing a negative gap), a sobrante subtracts it.
// The net difference reaches zero once every gap is fully justified.
func (j Justificacion) Efecto() decimal.Decimal {
	if j.Tipo == TipoSobrante {
		return j.Monto.Neg()
	}
	return j.Monto
}

// GastoRendido is an expense voucher rendered against the cash drawer.
type GastoRendido struct {
	Monto             decimal.Decimal `json:"monto"`
	NumeroComprobante string          `json:"numeroComprobante"`
	Motivo            string          `json:"motivo"`
	CreadoEn          time.Time       `json:"creadoEn"`
}

// BoletaPendiente is a receipt not yet settled at session close.
type BoletaPendiente struct {
	Monto        decimal.Decimal `json:"monto"`
	NumeroBoleta string          `json:"numeroBoleta"`
	Estado       string          `json:"estado"` // pendiente | rectificacion
	CreadaEn     time.Time       `json:"creadaEn"`
}

// Efecto returns the receipt's net contribution to the cash difference:
// +monto while pending, -monto once sent to rectification.
func (b BoletaPendiente) Efecto() decimal.Decimal {
	if b.Estado == EstadoBoletaRectificacion {
		return b.Monto.Neg()
	}
	return b.Monto
}

// AjusteSaldoEfectivo records the physically counted cash at submission.
type AjusteSaldoEfectivo struct {
	MontoAjustado decimal.Decimal `json:"montoAjustado"`
}

// JustificacionesMetodo groups the entered physical amount and its
// itemized justifications for one payment method.
type JustificacionesMetodo struct {
	MontoFisicoIngresado decimal.Decimal `json:"montoFisicoIngresado"`
	Justificaciones      []Justificacion `json:"justificaciones,omitempty"`
}

// DetalleRectificacion is the editable payload of a solicitud, persisted
// as a single JSONB column.
type DetalleRectificacion struct {
	AjusteSaldoEfectivo      AjusteSaldoEfectivo              `json:"ajusteSaldoEfectivo"`
	JustificacionesPorMetodo map[string]JustificacionesMetodo `json:"justificacionesPorMetodo,omitempty"`
	GastosRendidos           []GastoRendido                   `json:"gastosRendidos,omitempty"`
	BoletasPendientes        []BoletaPendiente                `json:"boletasPendientes,omitempty"`
}

func (d DetalleRectificacion) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *DetalleRectificacion) Scan(value any) error {
	if value == nil {
		*d = DetalleRectificacion{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			b = []byte(s)
		} else {
			return errors.New("detalle_rectificacion: tipo de columna inesperado")
		}
	}
	return json.Unmarshal(b, d)
}

// SolicitudRectificacion is the immutable-once-decided correction request.
// The session fields are denormalized at submission time so later POS
// edits never retroactively change an audited request.
type SolicitudRectificacion struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SesionID int64     `gorm:"not null;index" json:"sesionId"`

	// Snapshot of the session at submission
	SesionNombre        string          `gorm:"not null" json:"sesionNombre"`
	LocalNombre         string          `json:"localNombre"`
	UsuarioNombre       string          `json:"usuarioNombre"`
	InicioSesion        *time.Time      `json:"inicioSesion"`
	CierreSesion        *time.Time      `json:"cierreSesion"`
	SaldoInicial        decimal.Decimal `gorm:"type:decimal(14,2)" json:"saldoInicial"`
	SaldoFinalTeorico   decimal.Decimal `gorm:"type:decimal(14,2)" json:"saldoFinalTeorico"`
	SaldoFinalReal      decimal.Decimal `gorm:"type:decimal(14,2)" json:"saldoFinalReal"`
	TransaccionesReales decimal.Decimal `gorm:"type:decimal(14,2)" json:"transaccionesReales"`

	Detalle DetalleRectificacion `gorm:"type:jsonb;not null" json:"detalle"`

	EnviadaPorEmail string    `gorm:"not null" json:"enviadaPorEmail"`
	EnviadaPorUID   string    `gorm:"not null" json:"enviadaPorUid"`
	EnviadaEn       time.Time `gorm:"not null;index" json:"enviadaEn"`

	Estado            string     `gorm:"type:varchar(20);not null;default:'pendiente';index" json:"estado"`
	AprobadaPorUID    *string    `json:"aprobadaPorUid,omitempty"`
	AprobadaPorNombre *string    `json:"aprobadaPorNombre,omitempty"`
	AprobadaEn        *time.Time `json:"aprobadaEn,omitempty"`
	MotivoRechazo     *string    `json:"motivoRechazo,omitempty"`
}

func (SolicitudRectificacion) TableName() string { return "solicitudes_rectificacion" }

// EsFinal reports whether the solicitud reached a terminal state. Once
// final no role may transition it again.
func (s *SolicitudRectificacion) EsFinal() bool {
	return s.Estado == EstadoAprobada || s.Estado == EstadoRechazada
}
