package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"farmacuadra/internal/dto"
	"farmacuadra/internal/model"
	"farmacuadra/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Load sequence of the reconciliation view, modeled as an explicit finite
// state machine instead of ad-hoc boolean flags: base data is assembled,
// then the draft (if any) is merged on top, then the view is committed in
// a single step. No intermediate state ever escapes the cargador, so a
// caller can never observe base data that a draft value is about to
// override.
type estadoCarga int

const (
	cargaBase estadoCarga = iota
	cargaFusionBorrador
	cargaLista
	cargaError
)

func (e estadoCarga) String() string {
	switch e {
	case cargaBase:
		return "cargando"
	case cargaFusionBorrador:
		return "fusionando_borrador"
	case cargaLista:
		return "lista"
	case cargaError:
		return "error"
	default:
		return "desconocido"
	}
}

// transicionesValidas is the single source of truth for legal transitions.
var transicionesValidas = map[estadoCarga][]estadoCarga{
	cargaBase:           {cargaFusionBorrador, cargaError},
	cargaFusionBorrador: {cargaLista, cargaError},
}

type cargador struct {
	svc    *rectificacionService
	estado estadoCarga
	vista  *dto.VistaRectificacion
}

// transicion is the single state-transition function of the loader.
func (c *cargador) transicion(hacia estadoCarga) error {
	for _, permitida := range transicionesValidas[c.estado] {
		if permitida == hacia {
			c.estado = hacia
			return nil
		}
	}
	return fmt.Errorf("carga: transicion invalida %s -> %s", c.estado, hacia)
}

// cargar runs the full sequence and returns the committed view.
func (c *cargador) cargar(ctx context.Context, req dto.VistaRequest) (*dto.VistaRectificacion, error) {
	if err := c.cargarBase(ctx, req); err != nil {
		c.estado = cargaError
		return nil, err
	}
	if err := c.transicion(cargaFusionBorrador); err != nil {
		return nil, err
	}

	c.fusionarBorrador(ctx, req)

	if err := c.transicion(cargaLista); err != nil {
		return nil, err
	}
	c.calcular()
	return c.vista, nil
}

// cargarBase resolves the session, the per-method system totals and the
// existing solicitud (if any) into the base view.
func (c *cargador) cargarBase(ctx context.Context, req dto.VistaRequest) error {
	sesion := resolverSesion(req)

	totales, err := c.svc.pos.TotalesPorMetodo(ctx, sesion.ID)
	if err != nil {
		return &ErrExterno{Causa: err}
	}

	solicitud, err := c.resolverSolicitud(ctx, req)
	if err != nil {
		return err
	}

	vista := &dto.VistaRectificacion{
		Modo:      req.Modo,
		Sesion:    sesion,
		Solicitud: solicitud,
	}

	// Cash field: create mode starts blank to force explicit entry;
	// otherwise show the persisted adjustment or the POS-counted balance.
	if req.Modo != ModoCrear {
		if solicitud != nil {
			vista.SaldoFisicoEfectivo = solicitud.Detalle.AjusteSaldoEfectivo.MontoAjustado.String()
		} else {
			vista.SaldoFisicoEfectivo = sesion.SaldoFinalReal.String()
		}
	}
	if solicitud != nil {
		if efectivo, ok := solicitud.Detalle.JustificacionesPorMetodo[c.svc.metodoEfectivo]; ok {
			vista.JustificacionesEfectivo = efectivo.Justificaciones
		}
		vista.GastosRendidos = solicitud.Detalle.GastosRendidos
		vista.BoletasPendientes = solicitud.Detalle.BoletasPendientes
	}

	for _, metodo := range c.svc.metodos {
		if metodo.Nombre == c.svc.metodoEfectivo {
			continue
		}
		sistema := decimal.Zero
		for _, etiqueta := range metodo.Etiquetas {
			if monto, ok := totales[etiqueta]; ok {
				sistema = sistema.Add(monto)
			}
		}

		fila := dto.DetalleMetodo{Nombre: metodo.Nombre, MontoSistema: sistema}
		if req.Modo != ModoCrear {
			fila.MontoFisico = sistema.String()
			if solicitud != nil {
				if det, ok := solicitud.Detalle.JustificacionesPorMetodo[metodo.Nombre]; ok {
					fila.MontoFisico = det.MontoFisicoIngresado.String()
					fila.Justificaciones = det.Justificaciones
				}
			}
		}
		vista.Metodos = append(vista.Metodos, fila)
	}

	c.vista = vista
	return nil
}

// resolverSesion uses the caller-provided snapshot or synthesizes the
// minimal placeholder for direct-by-URL navigation.
func resolverSesion(req dto.VistaRequest) model.SesionPOS {
	if req.Sesion != nil {
		return *req.Sesion
	}
	return model.SesionMinima(req.SesionID, fmt.Sprintf("Sesion %d", req.SesionID))
}

// resolverSolicitud loads the solicitud by id when known, otherwise falls
// back to scanning by session id — the path taken by administrators who
// navigate directly by URL.
func (c *cargador) resolverSolicitud(ctx context.Context, req dto.VistaRequest) (*model.SolicitudRectificacion, error) {
	if req.SolicitudID != "" {
		id, err := uuid.Parse(req.SolicitudID)
		if err != nil {
			return nil, ErrSolicitudNoEncontrada
		}
		sol, err := c.svc.rectRepo.ObtenerPorID(ctx, id)
		if errors.Is(err, repository.ErrNoEncontrado) {
			if req.Modo == ModoCrear {
				return nil, nil
			}
			return nil, ErrSolicitudNoEncontrada
		}
		if err != nil {
			return nil, &ErrPersistencia{Causa: err}
		}
		return sol, nil
	}

	if req.Modo == ModoCrear {
		return nil, nil
	}
	sol, err := c.svc.rectRepo.UltimaPorSesion(ctx, req.SesionID)
	if errors.Is(err, repository.ErrNoEncontrado) {
		// A view-only look at a still-unrectified session is legal.
		return nil, nil
	}
	if err != nil {
		return nil, &ErrPersistencia{Causa: err}
	}
	return sol, nil
}

// fusionarBorrador merges the collaborative draft on top of the base
// view. The draft wins for every field it defines. Failures here never
// abort the load: the view proceeds without the draft.
func (c *cargador) fusionarBorrador(ctx context.Context, req dto.VistaRequest) {
	if req.Modo != ModoCrear && !req.VerBorrador {
		return
	}

	borrador, err := c.svc.borradores.Obtener(ctx, req.SesionID, req.VerBorrador)
	if err != nil {
		if !errors.Is(err, repository.ErrBorradorNoEncontrado) {
			log.Warn().Err(err).Int64("sesion_id", req.SesionID).
				Msg("rectificacion: no se pudo leer el borrador; se continua sin el")
		}
		return
	}

	v := c.vista
	if borrador.SaldoFisicoEfectivo != nil {
		v.SaldoFisicoEfectivo = *borrador.SaldoFisicoEfectivo
	}
	if justs, ok := borrador.JustificacionesPorMetodo[c.svc.metodoEfectivo]; ok {
		v.JustificacionesEfectivo = justs
	}
	for i := range v.Metodos {
		if monto, ok := borrador.MontosFisicosPorMetodo[v.Metodos[i].Nombre]; ok {
			v.Metodos[i].MontoFisico = monto
		}
		if justs, ok := borrador.JustificacionesPorMetodo[v.Metodos[i].Nombre]; ok {
			v.Metodos[i].Justificaciones = justs
		}
	}
	if borrador.GastosRendidos != nil {
		v.GastosRendidos = borrador.GastosRendidos
	}
	if borrador.BoletasPendientes != nil {
		v.BoletasPendientes = borrador.BoletasPendientes
	}
	v.BorradorAplicado = true
	v.UltimaEdicion = &borrador.UltimaEdicion
}

// calcular recomputes every discrepancy figure from the merged state.
// Blank amount fields compute as zero (a placeholder session must never
// fail a computation).
func (c *cargador) calcular() {
	v := c.vista

	fisico, _ := parsearMonto(v.SaldoFisicoEfectivo)
	bruta, conBoletas, neta := calcularEfectivo(
		fisico, v.Sesion.SaldoFinalTeorico.Decimal,
		v.GastosRendidos, v.BoletasPendientes, v.JustificacionesEfectivo)

	v.Diferencias = dto.ResumenDiferencias{
		EfectivoBruta:      bruta,
		EfectivoConBoletas: conBoletas,
		EfectivoNeta:       neta,
		DiferenciaGastos:   calcularDiferenciaGastos(v.Sesion.TransaccionesReales.Decimal, v.GastosRendidos),
	}

	for i := range v.Metodos {
		fila := &v.Metodos[i]
		fisicoFila, _ := parsearMonto(fila.MontoFisico)
		fila.DiferenciaBruta, fila.DiferenciaNeta = calcularMetodo(fisicoFila, fila.MontoSistema, fila.Justificaciones)
		fila.Justificable = v.Modo == ModoCrear && !fila.DiferenciaBruta.IsZero() && len(fila.Justificaciones) == 0
	}
}

// parsearMonto parses a form amount. Blank is not an error — it reports
// ok=false and computes as zero.
func parsearMonto(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
