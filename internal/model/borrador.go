package model

import "time"

// UltimaEdicion identifies the last editor of a collaborative draft.
type UltimaEdicion struct {
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
}

// BorradorRectificacion is the single collaborative draft of a session,
// stored as JSON in Redis at borradores:{sesionID}. Form amounts travel
// as strings so that "left blank" stays distinguishable from "0".
//
// Last-write-wins: concurrent editors can clobber each other. Accepted
// limitation for the one-admin-per-store usage pattern.
type BorradorRectificacion struct {
	SesionID int64 `json:"sesionId"`

	// Main form values — nil means "the draft does not define this field"
	SaldoFisicoEfectivo *string `json:"saldoFisicoEfectivo,omitempty"`

	// Per-method entered physical amounts, keyed by method display name
	MontosFisicosPorMetodo map[string]string `json:"montosFisicosPorMetodo,omitempty"`

	JustificacionesPorMetodo map[string][]Justificacion `json:"justificacionesPorMetodo,omitempty"`
	GastosRendidos           []GastoRendido             `json:"gastosRendidos,omitempty"`
	BoletasPendientes        []BoletaPendiente          `json:"boletasPendientes,omitempty"`

	UltimaEdicion UltimaEdicion `json:"ultimaEdicion"`
}
