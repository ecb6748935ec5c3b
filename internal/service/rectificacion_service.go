package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"farmacuadra/internal/config"
	"farmacuadra/internal/dto"
	"farmacuadra/internal/infra"
	"farmacuadra/internal/model"
	"farmacuadra/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Notificador enqueues workflow notifications. Implemented by the worker
// dispatcher; failures are logged, never surfaced — a notification must
// not break a submission.
type Notificador interface {
	NotificarEnvio(ctx context.Context, s *model.SolicitudRectificacion)
	NotificarDecision(ctx context.Context, s *model.SolicitudRectificacion)
}

// RectificacionService owns the lifecycle of a single session's
// reconciliation: load, compute, validate, submit, approve/reject.
type RectificacionService interface {
	Cargar(ctx context.Context, req dto.VistaRequest) (*dto.VistaRectificacion, error)
	Enviar(ctx context.Context, actor model.Actor, req dto.EnviarRectificacionRequest) (*model.SolicitudRectificacion, error)
	Decidir(ctx context.Context, actor model.Actor, solicitudID uuid.UUID, req dto.DecisionRequest) (*model.SolicitudRectificacion, error)
	Obtener(ctx context.Context, solicitudID uuid.UUID) (*model.SolicitudRectificacion, error)
}

type rectificacionService struct {
	pos            infra.POSClient
	rectRepo       repository.RectificacionRepository
	borradores     BorradorService
	metodos        []config.MetodoPago
	metodoEfectivo string
	notificador    Notificador
	ahora          func() time.Time
}

func NewRectificacionService(pos infra.POSClient, rectRepo repository.RectificacionRepository,
	borradores BorradorService, metodos []config.MetodoPago, notificador Notificador) RectificacionService {
	return &rectificacionService{
		pos:            pos,
		rectRepo:       rectRepo,
		borradores:     borradores,
		metodos:        metodos,
		metodoEfectivo: "Efectivo",
		notificador:    notificador,
		ahora:          func() time.Time { return time.Now().UTC() },
	}
}

// Cargar builds the reconciliation view for one session: base data, then
// draft merge, then a single commit (see carga.go for the sequencing).
func (s *rectificacionService) Cargar(ctx context.Context, req dto.VistaRequest) (*dto.VistaRectificacion, error) {
	c := &cargador{svc: s, estado: cargaBase}
	return c.cargar(ctx, req)
}

func (s *rectificacionService) Obtener(ctx context.Context, solicitudID uuid.UUID) (*model.SolicitudRectificacion, error) {
	sol, err := s.rectRepo.ObtenerPorID(ctx, solicitudID)
	if errors.Is(err, repository.ErrNoEncontrado) {
		return nil, ErrSolicitudNoEncontrada
	}
	if err != nil {
		return nil, &ErrPersistencia{Causa: err}
	}
	return sol, nil
}

// Enviar validates the full form, persists the immutable solicitud with
// estado pendiente and clears the session's draft. On a ledger write
// failure the draft is left untouched so the user can retry.
func (s *rectificacionService) Enviar(ctx context.Context, actor model.Actor, req dto.EnviarRectificacionRequest) (*model.SolicitudRectificacion, error) {
	if actor.Rol != model.RolAdministrador {
		return nil, ErrPermisoDenegado
	}
	if !req.Confirmado {
		return nil, ErrConfirmacionRequerida
	}

	montos, err := s.validarEnvio(req)
	if err != nil {
		return nil, err
	}

	solicitud := s.construirSolicitud(actor, req, montos)
	if err := s.rectRepo.Crear(ctx, solicitud); err != nil {
		// Draft deliberately NOT cleared: entered data survives for retry.
		return nil, &ErrPersistencia{Causa: err}
	}

	if err := s.borradores.Eliminar(ctx, req.SesionID); err != nil {
		log.Warn().Err(err).Int64("sesion_id", req.SesionID).
			Msg("rectificacion: solicitud creada pero no se pudo eliminar el borrador")
	}

	log.Info().Str("solicitud_id", solicitud.ID.String()).Int64("sesion_id", req.SesionID).
		Str("enviada_por", actor.Email).Msg("solicitud de rectificacion enviada")

	if s.notificador != nil {
		s.notificador.NotificarEnvio(ctx, solicitud)
	}
	return solicitud, nil
}

// montosValidados carries the parsed amounts of a valid submission.
type montosValidados struct {
	saldoFisico decimal.Decimal
	porMetodo   map[string]decimal.Decimal
}

// validarEnvio checks every required amount and sub-entry, collecting ALL
// offenders before reporting so the user sees one consolidated error
// naming each invalid method.
func (s *rectificacionService) validarEnvio(req dto.EnviarRectificacionRequest) (*montosValidados, error) {
	campos := make(map[string]string)
	var metodosInvalidos []string

	montos := &montosValidados{porMetodo: make(map[string]decimal.Decimal)}

	saldo, ok := parsearMonto(req.SaldoFisicoEfectivo)
	if !ok {
		campos["saldo_fisico_efectivo"] = "monto requerido"
		metodosInvalidos = append(metodosInvalidos, s.metodoEfectivo)
	}
	montos.saldoFisico = saldo

	for _, metodo := range s.metodos {
		if metodo.Nombre == s.metodoEfectivo {
			continue
		}
		monto, ok := parsearMonto(req.MontosFisicosPorMetodo[metodo.Nombre])
		if !ok {
			campos["montos_fisicos_por_metodo."+metodo.Nombre] = "monto requerido"
			metodosInvalidos = append(metodosInvalidos, metodo.Nombre)
			continue
		}
		montos.porMetodo[metodo.Nombre] = monto
	}

	for metodo, justs := range req.JustificacionesPorMetodo {
		for i, j := range justs {
			if problema := validarMontoEntrada(j.Monto); problema != "" {
				campos[fmt.Sprintf("justificaciones_por_metodo.%s[%d].monto", metodo, i)] = problema
			}
			if len(j.Motivo) > model.MaxMotivoJustificacion {
				campos[fmt.Sprintf("justificaciones_por_metodo.%s[%d].motivo", metodo, i)] = "maximo 100 caracteres"
			}
		}
	}
	for i, g := range req.GastosRendidos {
		if problema := validarMontoEntrada(g.Monto); problema != "" {
			campos[fmt.Sprintf("gastos_rendidos[%d].monto", i)] = problema
		}
		if len(g.Motivo) > model.MaxMotivoGasto {
			campos[fmt.Sprintf("gastos_rendidos[%d].motivo", i)] = "maximo 50 caracteres"
		}
	}
	for i, b := range req.BoletasPendientes {
		if problema := validarMontoEntrada(b.Monto); problema != "" {
			campos[fmt.Sprintf("boletas_pendientes[%d].monto", i)] = problema
		}
	}

	if len(campos) > 0 {
		detalle := "Error de validacion"
		if len(metodosInvalidos) > 0 {
			detalle = "Debe ingresar un monto valido para: " + strings.Join(metodosInvalidos, ", ")
		}
		return nil, &ErrValidacion{Detalle: detalle, Campos: campos}
	}
	return montos, nil
}

// validarMontoEntrada enforces the modal rules: positive and integral
// (CLP has no cents).
func validarMontoEntrada(monto decimal.Decimal) string {
	if monto.LessThanOrEqual(decimal.Zero) {
		return "debe ser mayor a cero"
	}
	if !monto.IsInteger() {
		return "debe ser un monto entero"
	}
	return ""
}

// construirSolicitud assembles the immutable snapshot: session fields are
// denormalized at this moment so later POS edits never change the audited
// record.
func (s *rectificacionService) construirSolicitud(actor model.Actor, req dto.EnviarRectificacionRequest, montos *montosValidados) *model.SolicitudRectificacion {
	sesion := model.SesionMinima(req.SesionID, fmt.Sprintf("Sesion %d", req.SesionID))
	if req.Sesion != nil {
		sesion = *req.Sesion
	}

	ahora := s.ahora()

	porMetodo := make(map[string]model.JustificacionesMetodo, len(montos.porMetodo)+1)
	porMetodo[s.metodoEfectivo] = model.JustificacionesMetodo{
		MontoFisicoIngresado: montos.saldoFisico,
		Justificaciones:      convertirJustificaciones(req.JustificacionesPorMetodo[s.metodoEfectivo], ahora),
	}
	for nombre, monto := range montos.porMetodo {
		porMetodo[nombre] = model.JustificacionesMetodo{
			MontoFisicoIngresado: monto,
			Justificaciones:      convertirJustificaciones(req.JustificacionesPorMetodo[nombre], ahora),
		}
	}

	detalle := model.DetalleRectificacion{
		AjusteSaldoEfectivo:      model.AjusteSaldoEfectivo{MontoAjustado: montos.saldoFisico},
		JustificacionesPorMetodo: porMetodo,
		GastosRendidos:           convertirGastos(req.GastosRendidos, ahora),
		BoletasPendientes:        convertirBoletas(req.BoletasPendientes, ahora),
	}

	solicitud := &model.SolicitudRectificacion{
		ID:                  uuid.New(),
		SesionID:            sesion.ID,
		SesionNombre:        sesion.Nombre,
		LocalNombre:         sesion.Local.Nombre,
		UsuarioNombre:       sesion.Usuario.Nombre,
		SaldoInicial:        sesion.SaldoInicial.Decimal,
		SaldoFinalTeorico:   sesion.SaldoFinalTeorico.Decimal,
		SaldoFinalReal:      sesion.SaldoFinalReal.Decimal,
		TransaccionesReales: sesion.TransaccionesReales.Decimal,
		Detalle:             detalle,
		EnviadaPorEmail:     actor.Email,
		EnviadaPorUID:       actor.UID,
		EnviadaEn:           ahora,
		Estado:              model.EstadoPendiente,
	}
	if solicitud.LocalNombre == "" {
		solicitud.LocalNombre = model.LocalDesconocido
	}
	if sesion.Inicio != nil {
		t := sesion.Inicio.Time
		solicitud.InicioSesion = &t
	}
	if sesion.Cierre != nil {
		t := sesion.Cierre.Time
		solicitud.CierreSesion = &t
	}
	return solicitud
}

func convertirJustificaciones(entradas []dto.JustificacionEntrada, ahora time.Time) []model.Justificacion {
	if len(entradas) == 0 {
		return nil
	}
	justs := make([]model.Justificacion, 0, len(entradas))
	for _, e := range entradas {
		justs = append(justs, model.Justificacion{
			Monto:    e.Monto,
			Motivo:   e.Motivo,
			Tipo:     e.Tipo,
			CreadaEn: ahora,
		})
	}
	return justs
}

func convertirGastos(entradas []dto.GastoEntrada, ahora time.Time) []model.GastoRendido {
	if len(entradas) == 0 {
		return nil
	}
	gastos := make([]model.GastoRendido, 0, len(entradas))
	for _, e := range entradas {
		gastos = append(gastos, model.GastoRendido{
			Monto:             e.Monto,
			NumeroComprobante: e.NumeroComprobante,
			Motivo:            e.Motivo,
			CreadoEn:          ahora,
		})
	}
	return gastos
}

func convertirBoletas(entradas []dto.BoletaEntrada, ahora time.Time) []model.BoletaPendiente {
	if len(entradas) == 0 {
		return nil
	}
	boletas := make([]model.BoletaPendiente, 0, len(entradas))
	for _, e := range entradas {
		boletas = append(boletas, model.BoletaPendiente{
			Monto:        e.Monto,
			NumeroBoleta: e.NumeroBoleta,
			Estado:       e.Estado,
			CreadaEn:     ahora,
		})
	}
	return boletas
}

// Decidir resolves a pending solicitud exactly once. Rejection requires a
// comment; the decision metadata is written as a partial update and the
// local copy is patched from the write's own payload (never a fresh read,
// avoiding a race with ledger propagation).
func (s *rectificacionService) Decidir(ctx context.Context, actor model.Actor, solicitudID uuid.UUID, req dto.DecisionRequest) (*model.SolicitudRectificacion, error) {
	if actor.Rol != model.RolSuperadministrador {
		return nil, ErrPermisoDenegado
	}

	solicitud, err := s.Obtener(ctx, solicitudID)
	if err != nil {
		return nil, err
	}
	if solicitud.Estado != model.EstadoPendiente {
		return nil, ErrSolicitudResuelta
	}

	estado := model.EstadoAprobada
	var motivo *string
	if req.Accion == "rechazar" {
		estado = model.EstadoRechazada
		comentario := strings.TrimSpace(req.Comentario)
		if comentario == "" {
			return nil, &ErrValidacion{
				Detalle: "El rechazo requiere un comentario",
				Campos:  map[string]string{"comentario": "requerido"},
			}
		}
		if len(comentario) > model.MaxMotivoRechazo {
			return nil, &ErrValidacion{
				Detalle: "El comentario no puede superar 100 caracteres",
				Campos:  map[string]string{"comentario": "maximo 100 caracteres"},
			}
		}
		motivo = &comentario
	}

	ahora := s.ahora()
	campos := map[string]any{
		"estado":              estado,
		"aprobada_por_uid":    actor.UID,
		"aprobada_por_nombre": actor.Nombre,
		"aprobada_en":         ahora,
		"motivo_rechazo":      motivo,
	}
	if err := s.rectRepo.ActualizarDecision(ctx, solicitudID, campos); err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, ErrSolicitudNoEncontrada
		}
		return nil, &ErrPersistencia{Causa: err}
	}

	solicitud.Estado = estado
	solicitud.AprobadaPorUID = &actor.UID
	solicitud.AprobadaPorNombre = &actor.Nombre
	solicitud.AprobadaEn = &ahora
	solicitud.MotivoRechazo = motivo

	log.Info().Str("solicitud_id", solicitudID.String()).Str("estado", estado).
		Str("resuelta_por", actor.Email).Msg("solicitud de rectificacion resuelta")

	if s.notificador != nil {
		s.notificador.NotificarDecision(ctx, solicitud)
	}
	return solicitud, nil
}
