package service

import (
	"errors"
	"fmt"
)

// Sentinels for the workflow guard failures. Handlers translate these to
// HTTP statuses; none of them is ever swallowed.
var (
	ErrPermisoDenegado       = errors.New("permisos insuficientes para esta operacion")
	ErrSolicitudResuelta     = errors.New("la solicitud ya fue resuelta y no admite una nueva decision")
	ErrSolicitudNoEncontrada = errors.New("solicitud asociada no encontrada")
	ErrConfirmacionRequerida = errors.New("el envio requiere confirmacion explicita")
)

// ErrValidacion aggregates every offending field of a submission so the
// user sees one consolidated message instead of fixing fields one by one.
type ErrValidacion struct {
	Detalle string
	Campos  map[string]string
}

func (e *ErrValidacion) Error() string { return e.Detalle }

// ErrExterno wraps a failure of the POS accounting RPC (network, non-2xx,
// open circuit). Surfaced as a page-level error, retryable by the user.
type ErrExterno struct {
	Causa error
}

func (e *ErrExterno) Error() string {
	return fmt.Sprintf("servicio contable no disponible: %v", e.Causa)
}

func (e *ErrExterno) Unwrap() error { return e.Causa }

// ErrPersistencia wraps a ledger write failure. Distinct from validation:
// the user's entered data is preserved (the draft is NOT cleared) so the
// submission can be retried without re-entering everything.
type ErrPersistencia struct {
	Causa error
}

func (e *ErrPersistencia) Error() string {
	return fmt.Sprintf("no se pudo guardar en el libro de rectificaciones: %v", e.Causa)
}

func (e *ErrPersistencia) Unwrap() error { return e.Causa }
