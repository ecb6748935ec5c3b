package dto

import "farmacuadra/internal/model"

// ─── Hierarchical session listing ────────────────────────────────────────────

// SesionResumen is one POS session enriched with its reconciliation state.
type SesionResumen struct {
	Sesion              model.SesionPOS `json:"sesion"`
	EstadoRectificacion string          `json:"estadoRectificacion"`
	TieneBorrador       bool            `json:"tieneBorrador"`
	SolicitudID         string          `json:"solicitudId,omitempty"`
}

// NodoDia groups the sessions of one calendar day ("09", zero-padded).
type NodoDia struct {
	Dia      string          `json:"dia"`
	Sesiones []SesionResumen `json:"sesiones"`
}

// NodoMes groups days under a "YYYY-MM" key, most recent month first.
type NodoMes struct {
	Clave string    `json:"clave"`
	Dias  []NodoDia `json:"dias"`
}

// NodoLocal groups months under a store display name.
type NodoLocal struct {
	Nombre string    `json:"nombre"`
	Meses  []NodoMes `json:"meses"`
}

// VistaJerarquica is the store → month → day session tree.
type VistaJerarquica struct {
	Locales []NodoLocal `json:"locales"`
}

// FiltroBorrador is the derived status filter: unrectified sessions that
// have a collaborative draft.
const FiltroBorrador = "borrador"

// AperturaSesion tells the caller how to open a session for its role.
type AperturaSesion struct {
	Modo        string `json:"modo"`
	VerBorrador bool   `json:"verBorrador"`
}
