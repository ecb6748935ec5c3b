package model

import "time"

// Local is reference data for a pharmacy store, used for display labels.
type Local struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Nombre    string    `gorm:"not null" json:"nombre"`
	Direccion *string   `json:"direccion,omitempty"`
	Activo    bool      `gorm:"not null;default:true" json:"activo"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (Local) TableName() string { return "locales" }

// LocalDesconocido labels sessions whose store reference is absent.
const LocalDesconocido = "Local Desconocido"
