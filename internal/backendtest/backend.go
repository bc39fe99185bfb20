// Package backendtest is an in-memory implementation of the OD backend's HTTP
// contract for tests. It models just enough of the server to exercise the
// client: accounts, form creation with one pending request per approver, and
// single-shot decisions.
package backendtest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/me/odflow/internal/logging"
	"github.com/me/odflow/pkg/model"
)

const signingKey = "backendtest"

type account struct {
	password string
	user     model.User
}

// Backend is a fake OD server. All methods are safe for concurrent use.
type Backend struct {
	router chi.Router
	logger *slog.Logger

	mu        sync.Mutex
	accounts  map[string]account
	approvers map[string][]string
	forms     []model.Form
	failNext  []int
	calls     map[string]int
	now       func() time.Time
	tokenTTL  time.Duration
	delay     time.Duration

	lastRequestID string
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger logs every request at DEBUG.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backend) {
		b.logger = logging.Component(logger, "backendtest")
	}
}

// New returns an empty Backend.
func New(opts ...Option) *Backend {
	b := &Backend{
		router:    chi.NewRouter(),
		logger:    logging.Discard(),
		accounts:  make(map[string]account),
		approvers: make(map[string][]string),
		calls:     make(map[string]int),
		now:       time.Now,
		tokenTTL:  24 * time.Hour,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.routes()
	return b
}

// NewServer starts b on an httptest server closed at test cleanup and returns
// its URL.
func NewServer(t testing.TB, opts ...Option) (*Backend, string) {
	t.Helper()
	b := New(opts...)
	ts := httptest.NewServer(b.Handler())
	t.Cleanup(ts.Close)
	return b, ts.URL
}

// Handler returns the http.Handler for this backend.
func (b *Backend) Handler() http.Handler {
	return b.router
}

func (b *Backend) routes() {
	r := b.router
	r.Use(middleware.Recoverer)
	r.Use(b.requestID)
	r.Use(logRequests(b.logger))
	r.Use(b.countCalls)
	r.Use(b.injectFailures)

	r.Post("/api/auth/login", b.handleLogin)
	r.Route("/trpc", func(r chi.Router) {
		r.Get("/user.student.form.list", b.handleStudentList)
		r.Get("/user.teacher.form.list", b.handleTeacherList)
		r.Post("/user.student.form.create", b.handleCreate)
		r.Post("/user.teacher.form.acceptOrReject", b.handleDecide)
	})
}

// AddUser registers a user that can log in with username and password.
func (b *Backend) AddUser(username, password string, user model.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts[username] = account{password: password, user: user}
}

// SetApprovers names the teachers who receive a request when studentID
// submits a form.
func (b *Backend) SetApprovers(studentID string, teacherIDs ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.approvers[studentID] = teacherIDs
}

// SeedForm appends a form as if it had been created earlier.
func (b *Backend) SeedForm(f model.Form) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.forms = append(b.forms, f)
}

// Forms returns a copy of all stored forms in creation order.
func (b *Backend) Forms() []model.Form {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.Form, len(b.forms))
	for i, f := range b.forms {
		out[i] = cloneForm(f)
	}
	return out
}

// FailNext makes the next request answer with status. Calls queue.
func (b *Backend) FailNext(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failNext = append(b.failNext, status)
}

// Calls returns how many requests hit path.
func (b *Backend) Calls(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

// LastRequestID returns the X-Request-ID of the most recent request.
func (b *Backend) LastRequestID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastRequestID
}

// SetClock replaces the time source used for createdAt and token expiry.
func (b *Backend) SetClock(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
}

// SetDelay holds every response for d before handling it.
func (b *Backend) SetDelay(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.delay = d
}

// SetTokenTTL changes the lifetime of issued tokens.
func (b *Backend) SetTokenTTL(ttl time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokenTTL = ttl
}

func (b *Backend) countCalls(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[r.URL.Path]++
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		status := 0
		if len(b.failNext) > 0 {
			status = b.failNext[0]
			b.failNext = b.failNext[1:]
		}
		delay := b.delay
		b.mu.Unlock()
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if status != 0 {
			respondError(w, status, codeFor(status), "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}

	b.mu.Lock()
	acct, ok := b.accounts[req.Username]
	now, ttl := b.now(), b.tokenTTL
	b.mu.Unlock()
	if !ok || acct.password != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   acct.user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}).SignedString([]byte(signingKey))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":  acct.user,
		"token": token,
	})
}

func (b *Backend) handleStudentList(w http.ResponseWriter, r *http.Request) {
	id, ok := inputID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	out := []model.Form{}
	for _, f := range b.forms {
		if f.RequesterID == id {
			out = append(out, cloneForm(f))
		}
	}
	b.mu.Unlock()
	respondData(w, out)
}

func (b *Backend) handleTeacherList(w http.ResponseWriter, r *http.Request) {
	id, ok := inputID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	out := []model.Form{}
	for _, f := range b.forms {
		for _, req := range f.Requests {
			if req.RequestedID == id {
				f = cloneForm(f)
				f.Requester = b.requester(f.RequesterID)
				out = append(out, f)
				break
			}
		}
	}
	b.mu.Unlock()
	respondData(w, out)
}

func (b *Backend) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in model.CreateFormInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid body")
		return
	}
	if in.RequesterID == "" || len(in.Dates) == 0 {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "requesterId and dates are required")
		return
	}

	b.mu.Lock()
	f := model.Form{
		ID:          uuid.NewString(),
		RequesterID: in.RequesterID,
		Reason:      in.Reason,
		Category:    in.Category,
		FormType:    in.FormType,
		Dates:       in.Dates,
		CreatedAt:   b.now().UTC(),
		Requests:    []model.Request{},
	}
	for _, teacherID := range b.approvers[in.RequesterID] {
		f.Requests = append(f.Requests, model.Request{
			ID:          uuid.NewString(),
			RequestedID: teacherID,
			Status:      model.StatusPending,
		})
	}
	b.forms = append(b.forms, f)
	out := cloneForm(f)
	b.mu.Unlock()

	respondData(w, out)
}

func (b *Backend) handleDecide(w http.ResponseWriter, r *http.Request) {
	var in model.DecisionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid body")
		return
	}
	if !in.Status.IsDecision() {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "status must be ACCEPTED or REJECTED")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for fi := range b.forms {
		f := &b.forms[fi]
		for ri := range f.Requests {
			req := &f.Requests[ri]
			if req.ID != in.RequestID {
				continue
			}
			switch {
			case f.RequesterID != in.RequesterID:
				respondError(w, http.StatusBadRequest, "BAD_REQUEST", "requesterId does not match the form")
			case req.RequestedID != in.RequestedID:
				respondError(w, http.StatusForbidden, "FORBIDDEN", "request is addressed to another teacher")
			case req.Status != model.StatusPending:
				respondError(w, http.StatusConflict, "CONFLICT", "request already "+strings.ToLower(string(req.Status)))
			default:
				req.Status = in.Status
				if in.Status == model.StatusRejected && in.ReasonForRejection != nil {
					reason := *in.ReasonForRejection
					req.ReasonForRejection = &reason
				}
				respondData(w, cloneForm(*f))
			}
			return
		}
	}
	respondError(w, http.StatusNotFound, "NOT_FOUND", "request "+in.RequestID+" not found")
}

// requester must be called with b.mu held.
func (b *Backend) requester(userID string) *model.Requester {
	for _, acct := range b.accounts {
		if acct.user.ID == userID {
			return &model.Requester{
				Name:    acct.user.DisplayName(),
				Student: &model.StudentProfile{Section: acct.user.Section, Year: acct.user.Year},
			}
		}
	}
	return nil
}

// inputID decodes the JSON-quoted ?input= parameter.
func inputID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	if err := json.Unmarshal([]byte(r.URL.Query().Get("input")), &id); err != nil || id == "" {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "input must be a JSON string")
		return "", false
	}
	return id, true
}

func respondData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, model.Envelope{Result: &model.Result{Data: mustMarshal(data)}})
}

func respondError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, model.Envelope{Error: &model.RemoteError{
		Message: msg,
		Code:    -32600,
		Data:    model.RemoteErrorData{Code: code, HTTPStatus: status},
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

func codeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	}
	return "INTERNAL_SERVER_ERROR"
}

func cloneForm(f model.Form) model.Form {
	f.Dates = append([]time.Time(nil), f.Dates...)
	if f.Requester != nil {
		r := *f.Requester
		if r.Student != nil {
			st := *r.Student
			r.Student = &st
		}
		f.Requester = &r
	}
	reqs := make([]model.Request, len(f.Requests))
	copy(reqs, f.Requests)
	for i := range reqs {
		if reqs[i].ReasonForRejection != nil {
			s := *reqs[i].ReasonForRejection
			reqs[i].ReasonForRejection = &s
		}
	}
	f.Requests = reqs
	return f
}
