package repository

import (
	"context"
	"errors"

	"farmacuadra/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNoEncontrado is returned when a ledger record does not exist.
var ErrNoEncontrado = errors.New("registro no encontrado")

type RectificacionRepository interface {
	Crear(ctx context.Context, s *model.SolicitudRectificacion) error
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.SolicitudRectificacion, error)
	// Listar returns every solicitud; the aggregator derives the
	// authoritative latest-per-session in memory.
	Listar(ctx context.Context) ([]model.SolicitudRectificacion, error)
	// UltimaPorSesion is the URL-direct fallback: latest solicitud of a
	// session by enviada_en.
	UltimaPorSesion(ctx context.Context, sesionID int64) (*model.SolicitudRectificacion, error)
	// ActualizarDecision writes the one-shot approval metadata as a
	// partial update; the record is never rewritten whole.
	ActualizarDecision(ctx context.Context, id uuid.UUID, campos map[string]any) error
}

type rectificacionRepo struct{ db *gorm.DB }

func NewRectificacionRepository(db *gorm.DB) RectificacionRepository {
	return &rectificacionRepo{db: db}
}

func (r *rectificacionRepo) Crear(ctx context.Context, s *model.SolicitudRectificacion) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *rectificacionRepo) ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.SolicitudRectificacion, error) {
	var s model.SolicitudRectificacion
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoEncontrado
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *rectificacionRepo) Listar(ctx context.Context) ([]model.SolicitudRectificacion, error) {
	var solicitudes []model.SolicitudRectificacion
	err := r.db.WithContext(ctx).Find(&solicitudes).Error
	return solicitudes, err
}

func (r *rectificacionRepo) UltimaPorSesion(ctx context.Context, sesionID int64) (*model.SolicitudRectificacion, error) {
	var s model.SolicitudRectificacion
	err := r.db.WithContext(ctx).
		Where("sesion_id = ?", sesionID).
		Order("enviada_en DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoEncontrado
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *rectificacionRepo) ActualizarDecision(ctx context.Context, id uuid.UUID, campos map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&model.SolicitudRectificacion{}).
		Where("id = ?", id).
		Updates(campos)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoEncontrado
	}
	return nil
}
