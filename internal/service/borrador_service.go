package service

import (
	"context"
	"errors"
	"time"

	"farmacuadra/internal/model"
	"farmacuadra/internal/repository"

	"github.com/rs/zerolog/log"
)

// Draft lookups tolerate read-after-write propagation delay with a small
// bounded retry; nothing else in the system retries automatically.
const (
	reintentosBorrador = 3
	esperaReintento    = 200 * time.Millisecond
)

// BorradorService is the collaboration layer over the single draft per
// session. Saves are full overwrites (last-write-wins, accepted
// limitation); the draft is destroyed only after a successful submit.
type BorradorService interface {
	// Guardar persists the draft. Only an administrador composing a new
	// solicitud (modo crear) may write; superadministradores read only.
	Guardar(ctx context.Context, actor model.Actor, modo string, b *model.BorradorRectificacion) error
	// Obtener returns the draft if present. When esperado is true the
	// lookup retries a few times before giving up and proceeding without.
	Obtener(ctx context.Context, sesionID int64, esperado bool) (*model.BorradorRectificacion, error)
	Eliminar(ctx context.Context, sesionID int64) error
}

type borradorService struct {
	repo repository.BorradorRepository
}

func NewBorradorService(repo repository.BorradorRepository) BorradorService {
	return &borradorService{repo: repo}
}

func (s *borradorService) Guardar(ctx context.Context, actor model.Actor, modo string, b *model.BorradorRectificacion) error {
	if actor.Rol != model.RolAdministrador || modo != ModoCrear {
		return ErrPermisoDenegado
	}
	b.UltimaEdicion = model.UltimaEdicion{
		Email:     actor.Email,
		Timestamp: time.Now().UTC(),
	}
	if err := s.repo.Guardar(ctx, b); err != nil {
		return &ErrPersistencia{Causa: err}
	}
	log.Info().Int64("sesion_id", b.SesionID).Str("editor", actor.Email).
		Msg("borrador guardado")
	return nil
}

func (s *borradorService) Obtener(ctx context.Context, sesionID int64, esperado bool) (*model.BorradorRectificacion, error) {
	intentos := 1
	if esperado {
		intentos = reintentosBorrador
	}

	var ultimoErr error
	for i := 0; i < intentos; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(esperaReintento):
			}
		}
		b, err := s.repo.Obtener(ctx, sesionID)
		if err == nil {
			return b, nil
		}
		ultimoErr = err
		if !errors.Is(err, repository.ErrBorradorNoEncontrado) {
			break
		}
	}
	return nil, ultimoErr
}

func (s *borradorService) Eliminar(ctx context.Context, sesionID int64) error {
	return s.repo.Eliminar(ctx, sesionID)
}
