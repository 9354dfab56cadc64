package kalium

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultTimeout bounds every backend call.
const DefaultTimeout = 10 * time.Second

// RequestIDHeader correlates console and backend logs.
const RequestIDHeader = "X-Request-ID"

const maxBodyBytes = 1 << 20

type requestIDKey struct{}

// ContextWithRequestID makes calls made with ctx reuse the inbound request id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// CallObserver receives the outcome of every backend call.
type CallObserver interface {
	ObserveCall(operation string, status int, elapsed time.Duration)
}

type noopObserver struct{}

func (noopObserver) ObserveCall(string, int, time.Duration) {}

// Client talks to the Kalium REST backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	observer   CallObserver
	requestID  func() string
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the default traced HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout bounds each request. Non-positive values keep the default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 && c.httpClient != nil {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithObserver records call metrics.
func WithObserver(observer CallObserver) Option {
	return func(c *Client) {
		if observer != nil {
			c.observer = observer
		}
	}
}

// WithRequestIDSource overrides how request ids are generated.
func WithRequestIDSource(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.requestID = fn
		}
	}
}

// NewClient builds a client for baseURL, e.g. http://localhost:8080/api.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("kalium base URL is required")
	}
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		observer:  noopObserver{},
		requestID: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// GetReturn fetches a return with its nested delivery and state.
func (c *Client) GetReturn(ctx context.Context, returnID int64) (*Devolucion, error) {
	path, err := pathWithID("/devoluciones/%s", returnID)
	if err != nil {
		return nil, err
	}
	var out Devolucion
	if err := c.do(ctx, "GetReturn", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListReturnStates fetches the return states lookup.
func (c *Client) ListReturnStates(ctx context.Context) ([]EstadoDevolucion, error) {
	var out []EstadoDevolucion
	if err := c.do(ctx, "ListReturnStates", http.MethodGet, "/estados-devolucion", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListDeliveryItems fetches the items handed out in a delivery.
func (c *Client) ListDeliveryItems(ctx context.Context, deliveryID int64) ([]EntregaInsumo, error) {
	path, err := pathWithID("/entregas/%s/insumos", deliveryID)
	if err != nil {
		return nil, err
	}
	var out []EntregaInsumo
	if err := c.do(ctx, "ListDeliveryItems", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListReturnDetails fetches the detail lines recorded for a return.
func (c *Client) ListReturnDetails(ctx context.Context, returnID int64) ([]DevolucionDetalle, error) {
	path, err := pathWithID("/devoluciones/%s/detalles", returnID)
	if err != nil {
		return nil, err
	}
	var out []DevolucionDetalle
	if err := c.do(ctx, "ListReturnDetails", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AllItemsReviewed asks the backend whether every delivered item has a detail line.
func (c *Client) AllItemsReviewed(ctx context.Context, returnID int64) (bool, error) {
	path, err := pathWithID("/devoluciones/%s/revisados", returnID)
	if err != nil {
		return false, err
	}
	var out bool
	if err := c.do(ctx, "AllItemsReviewed", http.MethodGet, path, nil, &out); err != nil {
		return false, err
	}
	return out, nil
}

// AddReturnDetail upserts the detail line of one item.
func (c *Client) AddReturnDetail(ctx context.Context, detail NuevoDetalle) (*DevolucionDetalle, error) {
	if strings.TrimSpace(detail.EstadoInsumoDevuelto) == "" {
		return nil, errors.New("estadoInsumoDevuelto is required")
	}
	var out DevolucionDetalle
	if err := c.do(ctx, "AddReturnDetail", http.MethodPost, "/devoluciones/detalles", detail, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ApproveReturn approves a return.
func (c *Client) ApproveReturn(ctx context.Context, returnID int64) (*Devolucion, error) {
	path, err := pathWithID("/devoluciones/%s/aprobar", returnID)
	if err != nil {
		return nil, err
	}
	var out Devolucion
	if err := c.do(ctx, "ApproveReturn", http.MethodPatch, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RejectReturn rejects a return with a reason.
func (c *Client) RejectReturn(ctx context.Context, returnID int64, reason string) (*Devolucion, error) {
	path, err := pathWithID("/devoluciones/%s/rechazar", returnID)
	if err != nil {
		return nil, err
	}
	var out Devolucion
	if err := c.do(ctx, "RejectReturn", http.MethodPatch, path, rechazoBody{Motivo: reason}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login checks credentials and returns the account with its role.
func (c *Client) Login(ctx context.Context, email, password string) (*Usuario, error) {
	var out Usuario
	if err := c.do(ctx, "Login", http.MethodPost, "/usuarios/login", loginBody{Correo: email, Contrasena: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, operation, method, path string, body, out any) error {
	if c == nil || c.httpClient == nil {
		return errors.New("kalium client not configured")
	}
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", operation, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID, _ := ctx.Value(requestIDKey{}).(string)
	if requestID == "" {
		requestID = c.requestID()
	}
	req.Header.Set(RequestIDHeader, requestID)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observer.ObserveCall(operation, 0, time.Since(started))
		return fmt.Errorf("call kalium %s: %w", operation, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.observer.ObserveCall(operation, resp.StatusCode, time.Since(started))
	if err != nil {
		return fmt.Errorf("read kalium %s response: %w", operation, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &APIError{Operation: operation, Status: resp.StatusCode, Message: errorMessage(raw)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode kalium %s response: %w", operation, err)
	}
	return nil
}

func pathWithID(pattern string, id int64) (string, error) {
	param, err := runtime.StyleParamWithLocation("simple", false, "id", runtime.ParamLocationPath, id)
	if err != nil {
		return "", fmt.Errorf("encode id path parameter: %w", err)
	}
	return fmt.Sprintf(pattern, param), nil
}
