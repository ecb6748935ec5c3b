package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"farmacuadra/internal/model"

	"github.com/shopspring/decimal"
)

// POSQuery is the generic query envelope of the accounting system's RPC:
// a single POST endpoint multiplexing search_read / read_group calls.
type POSQuery struct {
	Model   string   `json:"model"`
	Fields  []string `json:"fields"`
	Method  string   `json:"method"` // search_read | read_group
	Filters [][]any  `json:"filters,omitempty"`
	GroupBy []string `json:"groupby,omitempty"`
	Limit   int      `json:"limit,omitempty"`
	Order   string   `json:"order,omitempty"`
}

// posError is the optional JSON body of a non-2xx response.
type posError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// POSClient is the surface the services consume; it exists so tests can
// substitute an in-memory fake.
type POSClient interface {
	// ListarSesiones returns the full session history, most recent first.
	ListarSesiones(ctx context.Context) ([]model.SesionPOS, error)
	// TotalesPorMetodo aggregates payment amounts of one session grouped
	// by the POS payment-method label.
	TotalesPorMetodo(ctx context.Context, sesionID int64) (map[string]decimal.Decimal, error)
}

// HTTPPOSClient talks to the accounting system's query RPC with a bearer
// token. Calls go through the circuit breaker so a dead accounting host
// fast-fails instead of piling up timeouts.
type HTTPPOSClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	breaker    *CircuitBreaker
}

func NewPOSClient(baseURL, token string, breaker *CircuitBreaker) *HTTPPOSClient {
	return &HTTPPOSClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		breaker:    breaker,
	}
}

var camposSesion = []string{
	"id", "name", "user_id", "crm_team_id", "start_at", "stop_at",
	"cash_register_balance_start", "cash_register_balance_end_real",
	"cash_register_balance_end", "cash_register_difference",
	"cash_real_transaction",
}

// ListarSesiones fetches every pos.session ordered by start time
// descending. No date bound: the listing covers full history.
func (c *HTTPPOSClient) ListarSesiones(ctx context.Context) ([]model.SesionPOS, error) {
	query := POSQuery{
		Model:  "pos.session",
		Fields: camposSesion,
		Method: "search_read",
		Order:  "start_at desc",
	}

	var sesiones []model.SesionPOS
	if err := c.consultar(ctx, query, &sesiones); err != nil {
		return nil, err
	}
	return sesiones, nil
}

// grupoPago is one read_group bucket of pos.payment.
type grupoPago struct {
	MetodoPago model.ReferenciaPOS `json:"payment_method_id"`
	Monto      model.MontoPOS      `json:"amount"`
}

// TotalesPorMetodo sums payments of a session grouped by method label,
// restricted to settled order states.
func (c *HTTPPOSClient) TotalesPorMetodo(ctx context.Context, sesionID int64) (map[string]decimal.Decimal, error) {
	query := POSQuery{
		Model:  "pos.payment",
		Fields: []string{"amount", "payment_method_id"},
		Method: "read_group",
		Filters: [][]any{
			{"session_id", "=", sesionID},
			{"pos_order_id.state", "in", []string{"paid", "invoiced", "done"}},
		},
		GroupBy: []string{"payment_method_id"},
	}

	var grupos []grupoPago
	if err := c.consultar(ctx, query, &grupos); err != nil {
		return nil, err
	}

	totales := make(map[string]decimal.Decimal, len(grupos))
	for _, g := range grupos {
		totales[g.MetodoPago.Nombre] = totales[g.MetodoPago.Nombre].Add(g.Monto.Decimal)
	}
	return totales, nil
}

// consultar executes one RPC through the circuit breaker and decodes the
// response array into dest.
func (c *HTTPPOSClient) consultar(ctx context.Context, query POSQuery, dest any) error {
	return c.breaker.Execute(func() error {
		body, err := json.Marshal(query)
		if err != nil {
			return fmt.Errorf("pos: marshal query: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/query", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("pos: create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("pos: servicio contable inalcanzable: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return decodificarErrorPOS(resp)
		}

		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return fmt.Errorf("pos: decode response: %w", err)
		}
		return nil
	})
}

// decodificarErrorPOS extracts a human-readable message from a non-2xx
// response; the body may carry {message} or {error}, or nothing at all.
func decodificarErrorPOS(resp *http.Response) error {
	var cuerpo posError
	if err := json.NewDecoder(resp.Body).Decode(&cuerpo); err == nil {
		if cuerpo.Message != "" {
			return fmt.Errorf("pos: %s (HTTP %d)", cuerpo.Message, resp.StatusCode)
		}
		if cuerpo.Error != "" {
			return fmt.Errorf("pos: %s (HTTP %d)", cuerpo.Error, resp.StatusCode)
		}
	}
	return fmt.Errorf("pos: el servicio contable respondio HTTP %d", resp.StatusCode)
}
