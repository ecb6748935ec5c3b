package service

import (
	"context"
	"sort"
	"time"

	"farmacuadra/internal/model"
	"farmacuadra/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ── In-memory POS client ─────────────────────────────────────────────────────

type fakePOS struct {
	sesiones    []model.SesionPOS
	errSesiones error
	totales     map[int64]map[string]decimal.Decimal
	errTotales  error
}

func (f *fakePOS) ListarSesiones(_ context.Context) ([]model.SesionPOS, error) {
	if f.errSesiones != nil {
		return nil, f.errSesiones
	}
	return f.sesiones, nil
}

func (f *fakePOS) TotalesPorMetodo(_ context.Context, sesionID int64) (map[string]decimal.Decimal, error) {
	if f.errTotales != nil {
		return nil, f.errTotales
	}
	return f.totales[sesionID], nil
}

// ── In-memory RectificacionRepository ────────────────────────────────────────

type fakeRectRepo struct {
	solicitudes map[uuid.UUID]*model.SolicitudRectificacion
	errCrear    error
	errListar   error
}

func newFakeRectRepo() *fakeRectRepo {
	return &fakeRectRepo{solicitudes: make(map[uuid.UUID]*model.SolicitudRectificacion)}
}

func (r *fakeRectRepo) Crear(_ context.Context, s *model.SolicitudRectificacion) error {
	if r.errCrear != nil {
		return r.errCrear
	}
	copia := *s
	r.solicitudes[s.ID] = &copia
	return nil
}

func (r *fakeRectRepo) ObtenerPorID(_ context.Context, id uuid.UUID) (*model.SolicitudRectificacion, error) {
	s, ok := r.solicitudes[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	copia := *s
	return &copia, nil
}

func (r *fakeRectRepo) Listar(_ context.Context) ([]model.SolicitudRectificacion, error) {
	if r.errListar != nil {
		return nil, r.errListar
	}
	todas := make([]model.SolicitudRectificacion, 0, len(r.solicitudes))
	for _, s := range r.solicitudes {
		todas = append(todas, *s)
	}
	// Deterministic scan order so tests never depend on map iteration
	sort.Slice(todas, func(i, j int) bool { return todas[i].ID.String() < todas[j].ID.String() })
	return todas, nil
}

func (r *fakeRectRepo) UltimaPorSesion(_ context.Context, sesionID int64) (*model.SolicitudRectificacion, error) {
	var ultima *model.SolicitudRectificacion
	for _, s := range r.solicitudes {
		if s.SesionID != sesionID {
			continue
		}
		if ultima == nil || s.EnviadaEn.After(ultima.EnviadaEn) {
			ultima = s
		}
	}
	if ultima == nil {
		return nil, repository.ErrNoEncontrado
	}
	copia := *ultima
	return &copia, nil
}

func (r *fakeRectRepo) ActualizarDecision(_ context.Context, id uuid.UUID, campos map[string]any) error {
	s, ok := r.solicitudes[id]
	if !ok {
		return repository.ErrNoEncontrado
	}
	if estado, ok := campos["estado"].(string); ok {
		s.Estado = estado
	}
	if motivo, ok := campos["motivo_rechazo"].(*string); ok {
		s.MotivoRechazo = motivo
	}
	return nil
}

// ── In-memory BorradorRepository ─────────────────────────────────────────────

type fakeBorradorRepo struct {
	borradores map[int64]*model.BorradorRectificacion
	errExiste  error
	errGuardar error
	// fallosObtener makes that many Obtener calls report "not found"
	// before the stored draft becomes visible (propagation-delay stand-in).
	fallosObtener int
	llamadas      int
}

func newFakeBorradorRepo() *fakeBorradorRepo {
	return &fakeBorradorRepo{borradores: make(map[int64]*model.BorradorRectificacion)}
}

func (r *fakeBorradorRepo) Guardar(_ context.Context, b *model.BorradorRectificacion) error {
	if r.errGuardar != nil {
		return r.errGuardar
	}
	copia := *b
	r.borradores[b.SesionID] = &copia
	return nil
}

func (r *fakeBorradorRepo) Obtener(_ context.Context, sesionID int64) (*model.BorradorRectificacion, error) {
	r.llamadas++
	if r.fallosObtener > 0 {
		r.fallosObtener--
		return nil, repository.ErrBorradorNoEncontrado
	}
	b, ok := r.borradores[sesionID]
	if !ok {
		return nil, repository.ErrBorradorNoEncontrado
	}
	copia := *b
	return &copia, nil
}

func (r *fakeBorradorRepo) Eliminar(_ context.Context, sesionID int64) error {
	delete(r.borradores, sesionID)
	return nil
}

func (r *fakeBorradorRepo) Existe(_ context.Context, sesionID int64) (bool, error) {
	if r.errExiste != nil {
		return false, r.errExiste
	}
	_, ok := r.borradores[sesionID]
	return ok, nil
}

var _ repository.BorradorRepository = (*fakeBorradorRepo)(nil)
var _ repository.RectificacionRepository = (*fakeRectRepo)(nil)

// ── Notificador spy ──────────────────────────────────────────────────────────

type fakeNotificador struct {
	envios     []*model.SolicitudRectificacion
	decisiones []*model.SolicitudRectificacion
}

func (f *fakeNotificador) NotificarEnvio(_ context.Context, s *model.SolicitudRectificacion) {
	f.envios = append(f.envios, s)
}

func (f *fakeNotificador) NotificarDecision(_ context.Context, s *model.SolicitudRectificacion) {
	f.decisiones = append(f.decisiones, s)
}

// ── Builders ─────────────────────────────────────────────────────────────────

func sesionDePrueba(id int64, local string, inicio time.Time, teorico, real int64) model.SesionPOS {
	s := model.SesionPOS{
		ID:     id,
		Nombre: "POS/" + inicio.Format("20060102"),
		Local:  model.ReferenciaPOS{ID: 1, Nombre: local},
		Usuario: model.ReferenciaPOS{
			ID: 9, Nombre: "Cajera Prueba",
		},
		SaldoFinalTeorico: model.MontoPOS{Decimal: decimal.NewFromInt(teorico)},
		SaldoFinalReal:    model.MontoPOS{Decimal: decimal.NewFromInt(real)},
	}
	if !inicio.IsZero() {
		s.Inicio = &model.FechaPOS{Time: inicio}
	}
	return s
}

func actorAdmin() model.Actor {
	return model.Actor{UID: "uid-admin", Email: "admin@farmacia.cl", Nombre: "Admin Local", Rol: model.RolAdministrador}
}

func actorSuper() model.Actor {
	return model.Actor{UID: "uid-super", Email: "super@farmacia.cl", Nombre: "Super Admin", Rol: model.RolSuperadministrador}
}
