// Package client speaks the OD backend's HTTP contract: the tRPC form
// procedures and the login endpoint. It holds no state beyond the bearer
// token and never retries.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/me/odflow/internal/logging"
	"github.com/me/odflow/pkg/model"
)

const (
	pathStudentForms = "/trpc/user.student.form.list"
	pathTeacherForms = "/trpc/user.teacher.form.list"
	pathCreateForm   = "/trpc/user.student.form.create"
	pathDecide       = "/trpc/user.teacher.form.acceptOrReject"
	pathLogin        = "/api/auth/login"
)

// Client is an HTTP client for the OD backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.Component(logger, "client")
	}
}

// WithToken sets the bearer token sent with every call.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logging.Component(nil, "client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token. An empty token stops sending one.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListStudentForms returns every form created by studentID, in server order.
func (c *Client) ListStudentForms(ctx context.Context, studentID string) ([]model.Form, error) {
	return c.listForms(ctx, pathStudentForms, studentID)
}

// ListTeacherForms returns every form naming teacherID in at least one request.
func (c *Client) ListTeacherForms(ctx context.Context, teacherID string) ([]model.Form, error) {
	return c.listForms(ctx, pathTeacherForms, teacherID)
}

func (c *Client) listForms(ctx context.Context, path, userID string) ([]model.Form, error) {
	if userID == "" {
		return nil, model.ErrNotSignedIn
	}
	input, err := json.Marshal(userID)
	if err != nil {
		return nil, fmt.Errorf("encode input: %w", err)
	}
	var forms []model.Form
	if err := c.procedure(ctx, http.MethodGet, path+"?input="+url.QueryEscape(string(input)), nil, &forms, opList); err != nil {
		return nil, err
	}
	if forms == nil {
		forms = []model.Form{}
	}
	return forms, nil
}

// CreateForm submits a new OD request. The backend's response body is not
// guaranteed; the returned form is nil when it sent none.
func (c *Client) CreateForm(ctx context.Context, in model.CreateFormInput) (*model.Form, error) {
	if len(in.Dates) == 0 {
		return nil, model.NewValidationError("at least one date is required")
	}
	var raw json.RawMessage
	if err := c.procedure(ctx, http.MethodPost, pathCreateForm, in, &raw, opCreate); err != nil {
		return nil, err
	}
	return decodeOptionalForm(raw)
}

// Decide records an accept or reject on one request of a form.
func (c *Client) Decide(ctx context.Context, in model.DecisionInput) (*model.Form, error) {
	if !in.Status.IsDecision() {
		return nil, model.NewValidationError("status must be ACCEPTED or REJECTED, got %q", in.Status)
	}
	var raw json.RawMessage
	if err := c.procedure(ctx, http.MethodPost, pathDecide, in, &raw, opDecide); err != nil {
		return nil, err
	}
	return decodeOptionalForm(raw)
}

func decodeOptionalForm(raw json.RawMessage) (*model.Form, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, nil
	}
	var f model.Form
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return nil, fmt.Errorf("decode form: %w", err)
	}
	return &f, nil
}

// procedure calls a tRPC procedure and unwraps {"result":{"data":...}} into out.
func (c *Client) procedure(ctx context.Context, method, path string, in, out any, op operation) error {
	status, body, err := c.do(ctx, method, path, in, true)
	if err != nil {
		return err
	}

	var env model.Envelope
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &env); err != nil {
			if status >= 400 {
				return remoteError(op, status, &model.RemoteError{Message: strings.TrimSpace(string(body))})
			}
			return &model.APIError{Kind: model.KindInternal, Message: "malformed response", HTTPStatus: status, Err: err}
		}
	}
	if status >= 400 || env.Error != nil {
		return remoteError(op, status, env.Error)
	}
	if env.Result == nil || len(env.Result.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Result.Data, out); err != nil {
		return &model.APIError{Kind: model.KindInternal, Message: "decode result", HTTPStatus: status, Err: err}
	}
	return nil
}

// do performs one HTTP round trip. logBody=false keeps credentials out of
// debug logs.
func (c *Client) do(ctx context.Context, method, path string, in any, logBody bool) (int, []byte, error) {
	endpoint := c.baseURL + path

	var bodyReader io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
		if logBody {
			c.logger.Debug("HTTP request body", "body", string(data))
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := "req_" + uuid.New().String()[:8]
	req.Header.Set("X-Request-ID", reqID)
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	c.logger.Debug("HTTP request", "method", method, "url", endpoint, "request_id", reqID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, nil, ctxErr
		}
		return 0, nil, model.NewTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, model.NewTransportError(fmt.Errorf("read response: %w", err))
	}

	if logBody {
		c.logger.Debug("HTTP response", "status", resp.StatusCode, "request_id", reqID, "body", string(body))
	} else {
		c.logger.Debug("HTTP response", "status", resp.StatusCode, "request_id", reqID)
	}
	return resp.StatusCode, body, nil
}

// IsCanceled reports whether err came from a cancelled or expired context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
