package service

import (
	"context"
	"testing"

	"farmacuadra/internal/model"
	"farmacuadra/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardarBorradorSoloAdministradorEnModoCrear(t *testing.T) {
	repo := newFakeBorradorRepo()
	svc := NewBorradorService(repo)
	borrador := &model.BorradorRectificacion{SesionID: 7}

	err := svc.Guardar(context.Background(), actorSuper(), ModoCrear, borrador)
	assert.ErrorIs(t, err, ErrPermisoDenegado)

	err = svc.Guardar(context.Background(), actorAdmin(), ModoRevisar, borrador)
	assert.ErrorIs(t, err, ErrPermisoDenegado)

	err = svc.Guardar(context.Background(), actorAdmin(), ModoCrear, borrador)
	require.NoError(t, err)
}

func TestGuardarBorradorSellaUltimaEdicion(t *testing.T) {
	repo := newFakeBorradorRepo()
	svc := NewBorradorService(repo)

	err := svc.Guardar(context.Background(), actorAdmin(), ModoCrear,
		&model.BorradorRectificacion{SesionID: 7})
	require.NoError(t, err)

	guardado := repo.borradores[7]
	require.NotNil(t, guardado)
	assert.Equal(t, "admin@farmacia.cl", guardado.UltimaEdicion.Email)
	assert.False(t, guardado.UltimaEdicion.Timestamp.IsZero())
}

func TestGuardarBorradorSobrescribeCompleto(t *testing.T) {
	// Ultima escritura gana: el segundo guardado reemplaza todo el estado,
	// incluidos los campos que el primero habia llenado.
	repo := newFakeBorradorRepo()
	svc := NewBorradorService(repo)

	saldo := "5000"
	require.NoError(t, svc.Guardar(context.Background(), actorAdmin(), ModoCrear,
		&model.BorradorRectificacion{SesionID: 7, SaldoFisicoEfectivo: &saldo}))

	otro := model.Actor{UID: "uid-2", Email: "colega@farmacia.cl", Rol: model.RolAdministrador}
	require.NoError(t, svc.Guardar(context.Background(), otro, ModoCrear,
		&model.BorradorRectificacion{SesionID: 7, MontosFisicosPorMetodo: map[string]string{"Klap": "100"}}))

	guardado := repo.borradores[7]
	assert.Nil(t, guardado.SaldoFisicoEfectivo)
	assert.Equal(t, "100", guardado.MontosFisicosPorMetodo["Klap"])
	assert.Equal(t, "colega@farmacia.cl", guardado.UltimaEdicion.Email)
}

func TestObtenerBorradorReintentaCuandoSeEspera(t *testing.T) {
	repo := newFakeBorradorRepo()
	repo.borradores[7] = &model.BorradorRectificacion{SesionID: 7}
	// Las dos primeras lecturas no lo ven (retardo de propagacion)
	repo.fallosObtener = 2

	svc := NewBorradorService(repo)
	b, err := svc.Obtener(context.Background(), 7, true)
	require.NoError(t, err)
	assert.Equal(t, int64(7), b.SesionID)
	assert.Equal(t, 3, repo.llamadas)
}

func TestObtenerBorradorNoReintentaSinExpectativa(t *testing.T) {
	repo := newFakeBorradorRepo()
	repo.borradores[7] = &model.BorradorRectificacion{SesionID: 7}
	repo.fallosObtener = 1

	svc := NewBorradorService(repo)
	_, err := svc.Obtener(context.Background(), 7, false)
	assert.ErrorIs(t, err, repository.ErrBorradorNoEncontrado)
	assert.Equal(t, 1, repo.llamadas)
}

func TestObtenerBorradorAgotaReintentos(t *testing.T) {
	repo := newFakeBorradorRepo()
	repo.fallosObtener = 10

	svc := NewBorradorService(repo)
	_, err := svc.Obtener(context.Background(), 7, true)
	assert.ErrorIs(t, err, repository.ErrBorradorNoEncontrado)
	assert.Equal(t, reintentosBorrador, repo.llamadas)
}

func TestEliminarBorrador(t *testing.T) {
	repo := newFakeBorradorRepo()
	repo.borradores[7] = &model.BorradorRectificacion{SesionID: 7}

	svc := NewBorradorService(repo)
	require.NoError(t, svc.Eliminar(context.Background(), 7))
	_, ok := repo.borradores[7]
	assert.False(t, ok)
}
