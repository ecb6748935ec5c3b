package repository

import (
	"context"
	"errors"

	"farmacuadra/internal/model"

	"gorm.io/gorm"
)

// LocalRepository serves read-only store reference data (display labels).
type LocalRepository interface {
	ObtenerPorID(ctx context.Context, id int64) (*model.Local, error)
	Listar(ctx context.Context) ([]model.Local, error)
}

type localRepo struct{ db *gorm.DB }

func NewLocalRepository(db *gorm.DB) LocalRepository { return &localRepo{db: db} }

func (r *localRepo) ObtenerPorID(ctx context.Context, id int64) (*model.Local, error) {
	var l model.Local
	err := r.db.WithContext(ctx).First(&l, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoEncontrado
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *localRepo) Listar(ctx context.Context) ([]model.Local, error) {
	var locales []model.Local
	err := r.db.WithContext(ctx).Where("activo = ?", true).Order("nombre ASC").Find(&locales).Error
	return locales, err
}
