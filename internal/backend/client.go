// Package backend is the HTTP client for the remote brand-management REST
// API. Every authorized call attaches the session's bearer token; mutations
// that may carry a logo are encoded as multipart/form-data, everything else
// as JSON. The layer performs no retries and no caching: callers receive the
// decoded payload or a typed error, nothing more.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/utafrali/brandhub/internal/domain"
	apperrors "github.com/utafrali/brandhub/pkg/errors"
)

// Client is the backend surface the handlers depend on.
type Client interface {
	// Login exchanges credentials for a bearer access token.
	Login(ctx context.Context, email, password string) (string, error)

	// Register creates a new account. The caller logs in separately.
	Register(ctx context.Context, email, password string) error

	// ListBrands returns the caller's full brand collection in backend order.
	ListBrands(ctx context.Context, token string) ([]domain.Brand, error)

	// GetBrand fetches a single brand, used to pre-fill the edit form.
	GetBrand(ctx context.Context, token, id string) (*domain.Brand, error)

	// CreateBrand submits a new brand. logo may be nil, in which case no
	// file part is sent.
	CreateBrand(ctx context.Context, token string, form domain.BrandForm, logo *Upload) (*domain.Brand, error)

	// UpdateBrand patches an existing brand. A nil logo omits the file part
	// so the backend retains the stored image.
	UpdateBrand(ctx context.Context, token, id string, form domain.BrandForm, logo *Upload) (*domain.Brand, error)

	// DeleteBrand removes a brand and its stored logo.
	DeleteBrand(ctx context.Context, token, id string) error
}

// Upload describes a logo file chosen by the user.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// Config holds backend client configuration.
type Config struct {
	// BaseURL is the backend API root, e.g. "https://api.example.com".
	BaseURL string

	// Timeout bounds every request so a hung backend can never wedge a
	// submission indefinitely.
	Timeout time.Duration

	// Breaker settings. The breaker trips on transport failures and 5xx
	// responses only; client errors pass through untouched.
	BreakerMaxRequests  uint32
	BreakerInterval     time.Duration
	BreakerTimeout      time.Duration
	BreakerFailureRatio float64
	BreakerMinRequests  uint32
}

// DefaultConfig returns sensible defaults for the backend client.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:             baseURL,
		Timeout:             15 * time.Second,
		BreakerMaxRequests:  1,
		BreakerInterval:     60 * time.Second,
		BreakerTimeout:      30 * time.Second,
		BreakerFailureRatio: 0.5,
		BreakerMinRequests:  5,
	}
}

// HTTPClient is the production Client implementation.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	logger     *slog.Logger
}

var _ Client = (*HTTPClient)(nil)

// New creates a backend client with connection pooling and a circuit breaker.
func New(cfg Config, logger *slog.Logger) *HTTPClient {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	settings := gobreaker.Settings{
		Name:        "backend-api",
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.BreakerMinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.BreakerFailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			breakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	}

	return &HTTPClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Transport: transport, Timeout: cfg.Timeout},
		breaker:    gobreaker.NewCircuitBreaker[*http.Response](settings),
		logger:     logger,
	}
}

// --- Auth operations ---

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login performs POST /auth/login and returns the issued access token.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (string, error) {
	resp, err := c.postJSON(ctx, "/auth/login", loginRequest{Email: email, Password: password})
	if err != nil {
		return "", err
	}

	var out loginResponse
	if err := decodeBody(resp, &out); err != nil {
		return "", apperrors.Wrap(err, "decode login response")
	}
	if out.AccessToken == "" {
		return "", apperrors.Internal(fmt.Errorf("login response missing access_token"))
	}
	return out.AccessToken, nil
}

// Register performs POST /auth/register. The response body (the created user)
// is discarded; the caller only needs success or failure.
func (c *HTTPClient) Register(ctx context.Context, email, password string) error {
	resp, err := c.postJSON(ctx, "/auth/register", loginRequest{Email: email, Password: password})
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

// --- Brand operations ---

// ListBrands performs GET /brands. The backend returns a bare JSON array;
// order is preserved as-is.
func (c *HTTPClient) ListBrands(ctx context.Context, token string) ([]domain.Brand, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/brands", nil, "", token)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var brands []domain.Brand
	if err := decodeBody(resp, &brands); err != nil {
		return nil, apperrors.Wrap(err, "decode brand list")
	}
	return brands, nil
}

// GetBrand performs GET /brands/{id}.
func (c *HTTPClient) GetBrand(ctx context.Context, token, id string) (*domain.Brand, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/brands/"+id, nil, "", token)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var brand domain.Brand
	if err := decodeBody(resp, &brand); err != nil {
		return nil, apperrors.Wrap(err, "decode brand")
	}
	return &brand, nil
}

// CreateBrand performs POST /brands with a multipart body.
func (c *HTTPClient) CreateBrand(ctx context.Context, token string, form domain.BrandForm, logo *Upload) (*domain.Brand, error) {
	return c.submitBrand(ctx, http.MethodPost, "/brands", token, form, logo)
}

// UpdateBrand performs PATCH /brands/{id} with a multipart body. When logo is
// nil no file part is written and the backend keeps the existing image.
func (c *HTTPClient) UpdateBrand(ctx context.Context, token, id string, form domain.BrandForm, logo *Upload) (*domain.Brand, error) {
	return c.submitBrand(ctx, http.MethodPatch, "/brands/"+id, token, form, logo)
}

// DeleteBrand performs DELETE /brands/{id}.
func (c *HTTPClient) DeleteBrand(ctx context.Context, token, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/brands/"+id, nil, "", token)
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

func (c *HTTPClient) submitBrand(ctx context.Context, method, path, token string, form domain.BrandForm, logo *Upload) (*domain.Brand, error) {
	body, contentType, err := encodeBrandForm(form, logo)
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, method, path, body, contentType, token)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var brand domain.Brand
	if err := decodeBody(resp, &brand); err != nil {
		return nil, apperrors.Wrap(err, "decode brand")
	}
	return &brand, nil
}

// encodeBrandForm builds the multipart payload: the five text fields in
// descriptor order plus an optional logo file part carrying its content type.
func encodeBrandForm(form domain.BrandForm, logo *Upload) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, field := range domain.BrandFields {
		if err := w.WriteField(field.Name, form.Value(field.Name)); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", field.Name, err)
		}
	}

	if logo != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="logo"; filename=%q`, logo.Filename))
		header.Set("Content-Type", logo.ContentType)

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("create logo part: %w", err)
		}
		if _, err := io.Copy(part, logo.Data); err != nil {
			return nil, "", fmt.Errorf("copy logo data: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// --- Request plumbing ---

func (c *HTTPClient) postJSON(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body), "application/json", "")
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader, contentType, token string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// do executes the request through the circuit breaker and maps non-2xx
// responses to typed errors. Transport failures and 5xx responses count as
// breaker failures; 4xx responses are the caller's problem and pass through.
func (c *HTTPClient) do(req *http.Request) (*http.Response, error) {
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			drain(resp)
			return nil, fmt.Errorf("backend server error %d", resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, apperrors.Unavailable("backend circuit open")
		}
		return nil, apperrors.Unavailable(err.Error())
	}

	if resp.StatusCode >= 400 {
		return nil, parseResponseError(resp)
	}
	return resp, nil
}

func decodeBody(resp *http.Response, dst any) error {
	defer func() { _ = resp.Body.Close() }()
	return json.NewDecoder(resp.Body).Decode(dst)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	_ = resp.Body.Close()
}
