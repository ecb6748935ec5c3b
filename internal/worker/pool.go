package worker

import (
	"context"
	"encoding/json"
	"time"

	"farmacuadra/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const QueueNotificacion = "jobs:notificaciones"

const maxAttempts = 3

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// NotificacionPayload carries the full solicitud so the worker can build
// the email body and the acta without touching the database.
type NotificacionPayload struct {
	Evento    string                       `json:"evento"` // envio | decision
	Solicitud model.SolicitudRectificacion `json:"solicitud"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// NotificarEnvio enqueues a submission notification. Errors are logged,
// never returned: a failed notification must not break the submission.
func (d *Dispatcher) NotificarEnvio(ctx context.Context, s *model.SolicitudRectificacion) {
	d.enqueue(ctx, "envio", s)
}

// NotificarDecision enqueues an approval/rejection notification.
func (d *Dispatcher) NotificarDecision(ctx context.Context, s *model.SolicitudRectificacion) {
	d.enqueue(ctx, "decision", s)
}

func (d *Dispatcher) enqueue(ctx context.Context, evento string, s *model.SolicitudRectificacion) {
	payload, err := json.Marshal(NotificacionPayload{Evento: evento, Solicitud: *s})
	if err != nil {
		log.Error().Err(err).Str("evento", evento).Msg("dispatcher: failed to marshal payload")
		return
	}
	encoded, err := json.Marshal(Job{Type: "notificacion", Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("evento", evento).Msg("dispatcher: failed to marshal job")
		return
	}
	if err := d.rdb.LPush(ctx, QueueNotificacion, encoded).Err(); err != nil {
		log.Error().Err(err).Str("evento", evento).Msg("dispatcher: failed to enqueue notification")
		return
	}
	log.Info().Str("evento", evento).Str("solicitud_id", s.ID.String()).Msg("notification enqueued")
}

// StartWorkerPool launches numWorkers goroutines consuming the
// notification queue. Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, notificaciones *NotificacionWorker) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, notificaciones)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, notificaciones *NotificacionWorker) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueNotificacion).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, result[0], result[1], notificaciones)
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, queue, raw string, notificaciones *NotificacionWorker) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	err := notificaciones.Process(ctx, job.Payload)
	if err == nil {
		return
	}

	job.Attempts++
	if job.Attempts >= maxAttempts {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		return
	}

	encoded, mErr := json.Marshal(job)
	if mErr != nil {
		log.Error().Err(mErr).Msg("failed to re-marshal job for retry")
		return
	}
	if pErr := rdb.LPush(ctx, queue, encoded).Err(); pErr != nil {
		log.Error().Err(pErr).Msg("failed to re-enqueue job")
		return
	}
	log.Warn().Err(err).Int("attempts", job.Attempts).Str("type", job.Type).Msg("job failed, re-enqueued")
}
