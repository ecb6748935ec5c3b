package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"farmacuadra/internal/model"

	"github.com/redis/go-redis/v9"
)

// ErrBorradorNoEncontrado is returned when no draft exists for a session.
var ErrBorradorNoEncontrado = errors.New("borrador no encontrado")

// BorradorRepository persists the single collaborative draft per session
// as a JSON document at borradores:{sesionID}. Saves are full overwrites
// (last-write-wins); delete removes the key.
type BorradorRepository interface {
	Guardar(ctx context.Context, b *model.BorradorRectificacion) error
	Obtener(ctx context.Context, sesionID int64) (*model.BorradorRectificacion, error)
	Eliminar(ctx context.Context, sesionID int64) error
	Existe(ctx context.Context, sesionID int64) (bool, error)
}

type borradorRepo struct{ rdb *redis.Client }

func NewBorradorRepository(rdb *redis.Client) BorradorRepository {
	return &borradorRepo{rdb: rdb}
}

func claveBorrador(sesionID int64) string {
	return fmt.Sprintf("borradores:%d", sesionID)
}

func (r *borradorRepo) Guardar(ctx context.Context, b *model.BorradorRectificacion) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("borrador: marshal: %w", err)
	}
	return r.rdb.Set(ctx, claveBorrador(b.SesionID), data, 0).Err()
}

func (r *borradorRepo) Obtener(ctx context.Context, sesionID int64) (*model.BorradorRectificacion, error) {
	data, err := r.rdb.Get(ctx, claveBorrador(sesionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrBorradorNoEncontrado
	}
	if err != nil {
		return nil, err
	}
	var b model.BorradorRectificacion
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("borrador: unmarshal: %w", err)
	}
	return &b, nil
}

func (r *borradorRepo) Eliminar(ctx context.Context, sesionID int64) error {
	return r.rdb.Del(ctx, claveBorrador(sesionID)).Err()
}

func (r *borradorRepo) Existe(ctx context.Context, sesionID int64) (bool, error) {
	n, err := r.rdb.Exists(ctx, claveBorrador(sesionID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
