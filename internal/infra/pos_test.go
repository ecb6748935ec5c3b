package infra

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nuevoClienteDePrueba(t *testing.T, handler http.HandlerFunc) *HTTPPOSClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewPOSClient(srv.URL, "token-prueba", NewCircuitBreaker(DefaultCBConfig()))
}

func TestListarSesionesFormaDeLaConsulta(t *testing.T) {
	var recibida POSQuery
	var auth string
	cliente := nuevoClienteDePrueba(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/query", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&recibida))
		w.Write([]byte("[]"))
	})

	_, err := cliente.ListarSesiones(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer token-prueba", auth)
	assert.Equal(t, "pos.session", recibida.Model)
	assert.Equal(t, "search_read", recibida.Method)
	assert.Equal(t, "start_at desc", recibida.Order)
	assert.Contains(t, recibida.Fields, "cash_register_balance_end_real")
}

func TestListarSesionesDecodificaFormatoDelPOS(t *testing.T) {
	// El POS serializa ausencias como `false`, referencias como [id,"label"]
	// y fechas como "2006-01-02 15:04:05".
	cuerpo := `[{
		"id": 7,
		"name": "POS/00042",
		"user_id": [9, "Cajera Prueba"],
		"crm_team_id": [1, "Farmacia Centro"],
		"start_at": "2026-07-09 09:00:00",
		"stop_at": false,
		"cash_register_balance_start": 50000,
		"cash_register_balance_end_real": 97000,
		"cash_register_balance_end": 100000.0,
		"cash_register_difference": -3000,
		"cash_real_transaction": false
	}]`
	cliente := nuevoClienteDePrueba(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(cuerpo))
	})

	sesiones, err := cliente.ListarSesiones(context.Background())
	require.NoError(t, err)
	require.Len(t, sesiones, 1)

	s := sesiones[0]
	assert.Equal(t, int64(7), s.ID)
	assert.Equal(t, "Farmacia Centro", s.Local.Nombre)
	assert.Equal(t, "Cajera Prueba", s.Usuario.Nombre)
	require.NotNil(t, s.Inicio)
	assert.Equal(t, "2026-07-09", s.Inicio.Format("2006-01-02"))
	// stop_at: false → fecha cero
	assert.True(t, s.Cierre.IsZero())
	assert.Equal(t, "100000", s.SaldoFinalTeorico.String())
	// cash_real_transaction: false → cero, nunca error
	assert.True(t, s.TransaccionesReales.IsZero())
}

func TestTotalesPorMetodoAgrupaPorEtiqueta(t *testing.T) {
	var recibida POSQuery
	cuerpo := `[
		{"payment_method_id": [1, "Efectivo"], "amount": 97000},
		{"payment_method_id": [2, "Klap"], "amount": 20000},
		{"payment_method_id": [2, "Klap"], "amount": 5000}
	]`
	cliente := nuevoClienteDePrueba(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&recibida))
		w.Write([]byte(cuerpo))
	})

	totales, err := cliente.TotalesPorMetodo(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, "pos.payment", recibida.Model)
	assert.Equal(t, "read_group", recibida.Method)
	assert.Equal(t, []string{"payment_method_id"}, recibida.GroupBy)
	require.Len(t, recibida.Filters, 2)
	assert.Equal(t, "session_id", recibida.Filters[0][0])

	assert.Equal(t, "97000", totales["Efectivo"].String())
	// Buckets repetidos de la misma etiqueta se suman
	assert.Equal(t, "25000", totales["Klap"].String())
}

func TestErrorDelPOSConMensaje(t *testing.T) {
	cliente := nuevoClienteDePrueba(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"message": "odoo session expired"}`))
	})

	_, err := cliente.ListarSesiones(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "odoo session expired")
	assert.Contains(t, err.Error(), "502")
}

func TestErrorDelPOSSinCuerpo(t *testing.T) {
	cliente := nuevoClienteDePrueba(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := cliente.ListarSesiones(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
}
