package service

import (
	"context"
	"sort"
	"strconv"

	"farmacuadra/internal/dto"
	"farmacuadra/internal/infra"
	"farmacuadra/internal/model"
	"farmacuadra/internal/repository"

	"github.com/rs/zerolog/log"
)

// Page modes of the reconciliation detail view.
const (
	ModoCrear       = "crear"
	ModoRevisar     = "revisar"
	ModoSoloLectura = "solo_lectura"
)

// CuadraturaService produces the filterable, hierarchical (store → month
// → day) view of POS sessions enriched with reconciliation status.
type CuadraturaService interface {
	CargarSesiones(ctx context.Context) (*dto.VistaJerarquica, error)
	Filtrar(vista *dto.VistaJerarquica, estado string) *dto.VistaJerarquica
	SeleccionarSesion(resumen dto.SesionResumen, rol string) dto.AperturaSesion
}

type cuadraturaService struct {
	pos        infra.POSClient
	rectRepo   repository.RectificacionRepository
	borradores repository.BorradorRepository
}

func NewCuadraturaService(pos infra.POSClient, rectRepo repository.RectificacionRepository,
	borradores repository.BorradorRepository) CuadraturaService {
	return &cuadraturaService{pos: pos, rectRepo: rectRepo, borradores: borradores}
}

// CargarSesiones fetches the full session history, derives each session's
// reconciliation status from the latest solicitud and probes for drafts.
// The draft probe is best-effort: one session's failure is logged and
// treated as "no draft", never aborting the whole load.
func (s *cuadraturaService) CargarSesiones(ctx context.Context) (*dto.VistaJerarquica, error) {
	sesiones, err := s.pos.ListarSesiones(ctx)
	if err != nil {
		return nil, &ErrExterno{Causa: err}
	}

	solicitudes, err := s.rectRepo.Listar(ctx)
	if err != nil {
		return nil, &ErrPersistencia{Causa: err}
	}

	ultimas := ultimasPorSesion(solicitudes)

	resumenes := make([]dto.SesionResumen, 0, len(sesiones))
	for _, sesion := range sesiones {
		resumen := dto.SesionResumen{
			Sesion:              sesion,
			EstadoRectificacion: model.EstadoSinRectificar,
		}
		if ultima, ok := ultimas[sesion.ID]; ok {
			resumen.EstadoRectificacion = ultima.Estado
			resumen.SolicitudID = ultima.ID.String()
		} else {
			existe, err := s.borradores.Existe(ctx, sesion.ID)
			if err != nil {
				log.Warn().Err(err).Int64("sesion_id", sesion.ID).
					Msg("cuadraturas: no se pudo consultar el borrador de la sesion")
			}
			resumen.TieneBorrador = existe
		}
		resumenes = append(resumenes, resumen)
	}

	return agrupar(resumenes), nil
}

// ultimasPorSesion picks, per session, the solicitud with the greatest
// enviada_en regardless of scan order.
func ultimasPorSesion(solicitudes []model.SolicitudRectificacion) map[int64]model.SolicitudRectificacion {
	ultimas := make(map[int64]model.SolicitudRectificacion)
	for _, sol := range solicitudes {
		actual, ok := ultimas[sol.SesionID]
		if !ok || sol.EnviadaEn.After(actual.EnviadaEn) || sol.EnviadaEn.Equal(actual.EnviadaEn) {
			ultimas[sol.SesionID] = sol
		}
	}
	return ultimas
}

// agrupar builds the store → month → day tree. Sessions without a start
// timestamp are dropped (not errored). Stores ascend lexicographically,
// months descend by "YYYY-MM" key, days descend numerically.
func agrupar(resumenes []dto.SesionResumen) *dto.VistaJerarquica {
	type claveDia struct{ local, mes, dia string }
	porDia := make(map[claveDia][]dto.SesionResumen)

	for _, r := range resumenes {
		if r.Sesion.Inicio == nil || r.Sesion.Inicio.IsZero() {
			continue
		}
		local := r.Sesion.Local.Nombre
		if local == "" {
			local = model.LocalDesconocido
		}
		clave := claveDia{
			local: local,
			mes:   r.Sesion.Inicio.Format("2006-01"),
			dia:   r.Sesion.Inicio.Format("02"),
		}
		porDia[clave] = append(porDia[clave], r)
	}

	porLocal := make(map[string]map[string]map[string][]dto.SesionResumen)
	for clave, sesiones := range porDia {
		if porLocal[clave.local] == nil {
			porLocal[clave.local] = make(map[string]map[string][]dto.SesionResumen)
		}
		if porLocal[clave.local][clave.mes] == nil {
			porLocal[clave.local][clave.mes] = make(map[string][]dto.SesionResumen)
		}
		porLocal[clave.local][clave.mes][clave.dia] = sesiones
	}

	vista := &dto.VistaJerarquica{}
	locales := make([]string, 0, len(porLocal))
	for nombre := range porLocal {
		locales = append(locales, nombre)
	}
	sort.Strings(locales)

	for _, nombreLocal := range locales {
		nodoLocal := dto.NodoLocal{Nombre: nombreLocal}

		meses := make([]string, 0, len(porLocal[nombreLocal]))
		for mes := range porLocal[nombreLocal] {
			meses = append(meses, mes)
		}
		sort.Sort(sort.Reverse(sort.StringSlice(meses)))

		for _, mes := range meses {
			nodoMes := dto.NodoMes{Clave: mes}

			dias := make([]string, 0, len(porLocal[nombreLocal][mes]))
			for dia := range porLocal[nombreLocal][mes] {
				dias = append(dias, dia)
			}
			sort.Slice(dias, func(i, j int) bool {
				di, _ := strconv.Atoi(dias[i])
				dj, _ := strconv.Atoi(dias[j])
				return di > dj
			})

			for _, dia := range dias {
				nodoMes.Dias = append(nodoMes.Dias, dto.NodoDia{
					Dia:      dia,
					Sesiones: porLocal[nombreLocal][mes][dia],
				})
			}
			nodoLocal.Meses = append(nodoLocal.Meses, nodoMes)
		}
		vista.Locales = append(vista.Locales, nodoLocal)
	}
	return vista
}

// Filtrar returns a copy of the view keeping only sessions matching the
// status filter. "borrador" is derived (unrectified + has draft); any
// other non-empty value filters by exact status. Emptied day/month/store
// nodes are pruned so they never render as empty shells.
func (s *cuadraturaService) Filtrar(vista *dto.VistaJerarquica, estado string) *dto.VistaJerarquica {
	if estado == "" {
		return vista
	}

	coincide := func(r dto.SesionResumen) bool {
		if estado == dto.FiltroBorrador {
			return r.EstadoRectificacion == model.EstadoSinRectificar && r.TieneBorrador
		}
		return r.EstadoRectificacion == estado
	}

	filtrada := &dto.VistaJerarquica{}
	for _, local := range vista.Locales {
		nodoLocal := dto.NodoLocal{Nombre: local.Nombre}
		for _, mes := range local.Meses {
			nodoMes := dto.NodoMes{Clave: mes.Clave}
			for _, dia := range mes.Dias {
				var sesiones []dto.SesionResumen
				for _, r := range dia.Sesiones {
					if coincide(r) {
						sesiones = append(sesiones, r)
					}
				}
				if len(sesiones) > 0 {
					nodoMes.Dias = append(nodoMes.Dias, dto.NodoDia{Dia: dia.Dia, Sesiones: sesiones})
				}
			}
			if len(nodoMes.Dias) > 0 {
				nodoLocal.Meses = append(nodoLocal.Meses, nodoMes)
			}
		}
		if len(nodoLocal.Meses) > 0 {
			filtrada.Locales = append(filtrada.Locales, nodoLocal)
		}
	}
	return filtrada
}

// SeleccionarSesion resolves the initial page mode for a session + role.
//
//	sin_rectificar + administrador            → crear
//	sin_rectificar + superadministrador       → solo_lectura (+borrador si existe)
//	pendiente      + superadministrador       → revisar
//	cualquier otro caso                       → solo_lectura
func (s *cuadraturaService) SeleccionarSesion(resumen dto.SesionResumen, rol string) dto.AperturaSesion {
	switch resumen.EstadoRectificacion {
	case model.EstadoSinRectificar:
		if rol == model.RolAdministrador {
			return dto.AperturaSesion{Modo: ModoCrear}
		}
		return dto.AperturaSesion{Modo: ModoSoloLectura, VerBorrador: resumen.TieneBorrador}
	case model.EstadoPendiente:
		if rol == model.RolSuperadministrador {
			return dto.AperturaSesion{Modo: ModoRevisar}
		}
		return dto.AperturaSesion{Modo: ModoSoloLectura}
	default:
		return dto.AperturaSesion{Modo: ModoSoloLectura}
	}
}
