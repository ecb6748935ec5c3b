package model

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Wire-format helpers for records coming from the POS accounting API.
// That API serializes absent values as JSON `false`, many2one references
// as `[id, "label"]` pairs and datetimes as "2006-01-02 15:04:05".

// ReferenciaPOS is an id+label pair ([id, "label"] on the wire).
type ReferenciaPOS struct {
	ID     int64
	Nombre string
}

func (r *ReferenciaPOS) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if esAusente(data) {
		*r = ReferenciaPOS{}
		return nil
	}
	var par []any
	if err := json.Unmarshal(data, &par); err != nil {
		return err
	}
	if len(par) > 0 {
		if id, ok := par[0].(float64); ok {
			r.ID = int64(id)
		}
	}
	if len(par) > 1 {
		if nombre, ok := par[1].(string); ok {
			r.Nombre = nombre
		}
	}
	return nil
}

func (r ReferenciaPOS) Vacia() bool { return r.ID == 0 && r.Nombre == "" }

// FechaPOS decodes the POS datetime format; absent values decode to nil
// through the pointer form used in SesionPOS.
type FechaPOS struct {
	time.Time
}

const formatoFechaPOS = "2006-01-02 15:04:05"

func (f *FechaPOS) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if esAusente(data) {
		f.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse(formatoFechaPOS, s)
	if err != nil {
		return err
	}
	f.Time = t
	return nil
}

// MontoPOS is a decimal that decodes `false`/`null` as zero. Every
// downstream computation treats absent amounts as zero, never as an error.
type MontoPOS struct {
	decimal.Decimal
}

func (m *MontoPOS) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if esAusente(data) {
		m.Decimal = decimal.Zero
		return nil
	}
	return m.Decimal.UnmarshalJSON(data)
}

// SesionPOS is a point-of-sale session as reported by the accounting
// system. Read-only: created and closed by the POS, never mutated here.
type SesionPOS struct {
	ID      int64         `json:"id"`
	Nombre  string        `json:"name"`
	Usuario ReferenciaPOS `json:"user_id"`
	Local   ReferenciaPOS `json:"crm_team_id"`
	Inicio  *FechaPOS     `json:"start_at"`
	Cierre  *FechaPOS     `json:"stop_at"`

	SaldoInicial        MontoPOS `json:"cash_register_balance_start"`
	SaldoFinalReal      MontoPOS `json:"cash_register_balance_end_real"`
	SaldoFinalTeorico   MontoPOS `json:"cash_register_balance_end"`
	DiferenciaEfectivo  MontoPOS `json:"cash_register_difference"`
	TransaccionesReales MontoPOS `json:"cash_real_transaction"`
}

// SesionMinima builds the placeholder used when a user navigates directly
// by URL and only the session id is known. All financial fields stay at
// zero and must flow through every computation without failing.
func SesionMinima(id int64, nombre string) SesionPOS {
	return SesionPOS{ID: id, Nombre: nombre}
}

func esAusente(data []byte) bool {
	return bytes.Equal(data, []byte("false")) || bytes.Equal(data, []byte("null"))
}
