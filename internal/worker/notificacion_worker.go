package worker

// notificacion_worker.go
// Processes notification jobs from QueueNotificacion: builds the email,
// generates the acta PDF and sends it to the configured inbox list.

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"farmacuadra/internal/infra"
	"farmacuadra/internal/model"

	"github.com/rs/zerolog/log"
)

// NotificacionWorker sends workflow notification emails with the acta
// PDF attached.
type NotificacionWorker struct {
	mailer        *infra.Mailer
	storagePath   string
	destinatarios []string
}

func NewNotificacionWorker(mailer *infra.Mailer, storagePath string, destinatarios []string) *NotificacionWorker {
	return &NotificacionWorker{mailer: mailer, storagePath: storagePath, destinatarios: destinatarios}
}

// Process sends the notification email for a submitted or resolved
// solicitud. Returns an error so the pool can retry or dead-letter.
func (w *NotificacionWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload NotificacionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("notificacion_worker: invalid payload")
		// Malformed payloads never succeed on retry
		return nil
	}
	if len(w.destinatarios) == 0 {
		log.Warn().Msg("notificacion_worker: no recipients configured, skipping")
		return nil
	}

	s := payload.Solicitud
	subject, body := w.componer(payload.Evento, &s)

	pdfPath := ""
	ruta, err := infra.GenerateActaPDF(&s, w.storagePath)
	if err != nil {
		log.Error().Err(err).Str("solicitud_id", s.ID.String()).Msg("notificacion_worker: acta generation failed, sending without attachment")
	} else {
		pdfPath = ruta
	}

	if err := w.mailer.SendNotificacion(w.destinatarios, subject, body, pdfPath); err != nil {
		return fmt.Errorf("notificacion_worker: send email: %w", err)
	}
	log.Info().Str("solicitud_id", s.ID.String()).Str("evento", payload.Evento).Msg("notificacion_worker: email sent")
	return nil
}

func (w *NotificacionWorker) componer(evento string, s *model.SolicitudRectificacion) (string, string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Sesion: %s\n", s.SesionNombre)
	fmt.Fprintf(&b, "Local: %s\n", s.LocalNombre)
	fmt.Fprintf(&b, "Enviada por: %s (%s)\n", s.UsuarioNombre, s.EnviadaPorEmail)
	fmt.Fprintf(&b, "Fecha de envio: %s\n", s.EnviadaEn.Format("02-01-2006 15:04"))

	if evento == "decision" {
		subject := fmt.Sprintf("Rectificacion %s: %s", s.Estado, s.SesionNombre)
		if s.AprobadaPorNombre != nil {
			fmt.Fprintf(&b, "Resuelta por: %s\n", *s.AprobadaPorNombre)
		}
		if s.MotivoRechazo != nil && *s.MotivoRechazo != "" {
			fmt.Fprintf(&b, "Motivo de rechazo: %s\n", *s.MotivoRechazo)
		}
		return subject, b.String()
	}

	subject := fmt.Sprintf("Nueva solicitud de rectificacion: %s", s.SesionNombre)
	b.WriteString("\nSe adjunta el acta con el detalle de la rectificacion.\n")
	return subject, b.String()
}
