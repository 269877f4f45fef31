// Package client is the HTTP implementation of the reconcile.Gateway
// interface. It talks to the warehouse API exclusively as a JSON client:
// every response is the {success, data, error} envelope, and success=false
// is the only failure signal that matters.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/phamnguyen125rune/Smart-Warehouse-Management/reconcile"
)

// ErrUnauthorized means the session is gone; the caller must log in again.
var ErrUnauthorized = errors.New("unauthorized")

// APIError carries the server's error message verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client implements reconcile.Gateway against the REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.Mutex
	token string

	// onUnauthorized runs once per 401 so the app can tear the session down.
	onUnauthorized func()
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithUnauthorizedHook registers the session-teardown callback.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// OCR uploads can take a while; the timeout is deliberately generous.
		httpClient: &http.Client{Timeout: 3 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// ClearToken drops the stored credential, e.g. after a 401.
func (c *Client) ClearToken() {
	c.SetToken("")
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// do sends the request and decodes the envelope into out (when non-nil).
// Transport failures wrap the cause; API failures surface the server's
// message verbatim. No retries: callers decide what is worth repeating.
func (c *Client) do(req *http.Request, out interface{}) error {
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.ClearToken()
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return ErrUnauthorized
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response %s %s: %w", req.Method, req.URL.Path, err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("invalid response (status %d)", resp.StatusCode),
		}
	}

	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = fmt.Sprintf("request failed (status %d)", resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response %s %s: %w", req.Method, req.URL.Path, err)
		}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

type loginRequest struct {
	EmployeeId string `json:"employee_id"`
	Password   string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login authenticates and stores the bearer token for later calls.
func (c *Client) Login(ctx context.Context, employeeId string, password string) error {
	var result loginResponse
	err := c.postJSON(ctx, "/api/auth/login", loginRequest{
		EmployeeId: employeeId,
		Password:   password,
	}, &result)
	if err != nil {
		return err
	}
	c.SetToken(result.Token)
	return nil
}

// UploadInvoice sends the scanned invoice for OCR and pre-matching.
func (c *Client) UploadInvoice(ctx context.Context, filename string, content []byte) (*reconcile.OCRResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/ocr/invoice", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result reconcile.OCRResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) FetchProducts(ctx context.Context) ([]reconcile.ProductRef, error) {
	var products []reconcile.ProductRef
	if err := c.getJSON(ctx, "/api/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) SubmitImportSlip(ctx context.Context, req *reconcile.ImportSlipRequest) error {
	return c.postJSON(ctx, "/api/slips/import", req, nil)
}

func (c *Client) SubmitExportSlip(ctx context.Context, req *reconcile.ExportSlipRequest) error {
	return c.postJSON(ctx, "/api/slips/export", req, nil)
}

var _ reconcile.Gateway = (*Client)(nil)
