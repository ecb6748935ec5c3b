package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerAbreTrasFallasConsecutivas(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 3, SuccessThreshold: 1, OpenTimeout: time.Minute,
	})
	falla := errors.New("boom")

	for i := 0; i < 3; i++ {
		assert.Equal(t, CBClosed, cb.State())
		err := cb.Execute(func() error { return falla })
		assert.ErrorIs(t, err, falla)
	}

	assert.Equal(t, CBOpen, cb.State())
	err := cb.Execute(func() error { return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreakerExitoReiniciaElContador(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 2, SuccessThreshold: 1, OpenTimeout: time.Minute,
	})
	falla := errors.New("boom")

	require.Error(t, cb.Execute(func() error { return falla }))
	require.NoError(t, cb.Execute(func() error { return nil }))
	require.Error(t, cb.Execute(func() error { return falla }))

	// Nunca hubo dos fallas consecutivas
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreakerMedioAbiertoYRecuperacion(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1, SuccessThreshold: 2, OpenTimeout: 10 * time.Millisecond,
	})

	require.Error(t, cb.Execute(func() error { return errors.New("boom") }))
	assert.Equal(t, CBOpen, cb.State())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, CBHalfOpen, cb.State())

	// Dos sondas exitosas cierran el circuito
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreakerSondaFallidaReabre(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1, SuccessThreshold: 1, OpenTimeout: 10 * time.Millisecond,
	})

	require.Error(t, cb.Execute(func() error { return errors.New("boom") }))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, CBHalfOpen, cb.State())

	require.Error(t, cb.Execute(func() error { return errors.New("boom") }))
	assert.Equal(t, CBOpen, cb.State())
}
