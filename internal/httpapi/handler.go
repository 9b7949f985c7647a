// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

// Package httpapi serves the administrative HTTP API: user lookup, user
// permission edits, and the permission catalogue.
//
// Every response is a JSON envelope {"success": bool, "data"|"message"}.
// When an admin token is configured, requests must present it in the
// Authorization header, either bare or as "Bearer <token>". The configured
// value may be an argon2id hash of the token.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/purerosefallen/YuzuDice/internal/access"
	"github.com/purerosefallen/YuzuDice/internal/auth"
	"github.com/purerosefallen/YuzuDice/internal/identity"
	"github.com/purerosefallen/YuzuDice/internal/observability"
	"github.com/purerosefallen/YuzuDice/pkg/errutil"
)

// maxBodyBytes bounds POST bodies.
const maxBodyBytes = 64 << 10

// Handler holds the dependencies of the admin routes.
type Handler struct {
	users   identity.UserRepository
	tokens  *auth.Verifier
	metrics *observability.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithAdminToken requires secret on every /api request. secret may be the
// token or its auth.HashToken hash. Empty leaves the API open.
func WithAdminToken(secret string) Option {
	return func(h *Handler) { h.tokens = auth.NewVerifier(secret) }
}

// WithMetrics counts requests on m.APIRequestsTotal.
func WithMetrics(m *observability.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

// WithClock overrides the time source used for audit stamps.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// New creates a Handler over users.
func New(users identity.UserRepository, opts ...Option) *Handler {
	h := &Handler{
		users:  users,
		tokens: auth.NewVerifier(""),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the router serving /api.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.countRequests)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed.")
	})

	// The token check runs after routing so rejected requests are still
	// counted under their route pattern.
	r.Group(func(api chi.Router) {
		api.Use(h.requireToken)
		api.Get("/api/user", h.getUser)
		api.Post("/api/user", h.setUser)
		api.Get("/api/permissions", h.listPermissions)
	})
	return r
}

func (h *Handler) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.metrics.APIRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}

func (h *Handler) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		presented := strings.TrimSpace(r.Header.Get("Authorization"))
		presented = strings.TrimPrefix(presented, "Bearer ")
		ok, err := h.tokens.Verify(presented)
		if err != nil {
			errutil.LogError(r.Context(), h.logger, "admin token hash is malformed", err)
		}
		if !ok {
			h.logger.WarnContext(r.Context(), "admin API request rejected",
				"path", r.URL.Path, "remote", r.RemoteAddr)
			writeError(w, http.StatusForbidden, "Forbidden.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// userView is the wire shape of a user.
type userView struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Permissions     uint32    `json:"permissions"`
	PermissionNames []string  `json:"permissionNames"`
	BanReason       string    `json:"banReason,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func viewUser(u *identity.User) userView {
	names := access.NamesOf(u.Permissions)
	if names == nil {
		names = []string{}
	}
	return userView{
		ID:              u.ID,
		Name:            u.Name,
		Permissions:     uint32(u.Permissions),
		PermissionNames: names,
		BanReason:       u.BanReason,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	users, err := h.users.List(r.Context(), identity.UserFilter{
		ID:   q.Get("id"),
		Name: q.Get("name"),
	})
	if err != nil {
		errutil.LogError(r.Context(), h.logger, "user lookup failed", err)
		writeError(w, http.StatusInternalServerError, "Database fail.")
		return
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, viewUser(u))
	}
	writeData(w, http.StatusOK, views)
}

// setUserRequest is the body of POST /api/user. Permissions replaces the
// whole set when present; AddPerm and RemovePerm then apply on top.
type setUserRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Permissions *int64 `json:"permissions"`
	AddPerm     string `json:"addperm"`
	RemovePerm  string `json:"removeperm"`
}

func (h *Handler) setUser(w http.ResponseWriter, r *http.Request) {
	var req setUserRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed body: "+err.Error())
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "User id is required.")
		return
	}

	edit, msg := parseEdit(req)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	ctx := r.Context()
	user, _, err := h.users.FindOrCreate(ctx, &identity.User{ID: req.ID})
	if err != nil {
		errutil.LogError(ctx, h.logger, "user load failed", err, "user_id", req.ID)
		writeError(w, http.StatusInternalServerError, "Database fail.")
		return
	}

	edit.apply(user)
	user.Touch(h.now())
	if err := h.users.Update(ctx, user); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, identity.ErrNotFound) {
			status = http.StatusNotFound
		}
		errutil.LogError(ctx, h.logger, "user update failed", err, "user_id", req.ID)
		writeError(w, status, "Database fail.")
		return
	}

	h.logger.InfoContext(ctx, "user updated via admin API",
		"user_id", user.ID, "permissions", access.NamesOf(user.Permissions))
	writeData(w, http.StatusOK, viewUser(user))
}

// userEdit is a validated setUserRequest.
type userEdit struct {
	name        string
	replace     bool
	permissions access.Permission
	add         access.Permission
	remove      access.Permission
}

func parseEdit(req setUserRequest) (userEdit, string) {
	e := userEdit{name: req.Name}
	if req.Permissions != nil {
		p := *req.Permissions
		if p < 0 {
			return e, "Permission cannot be less than zero: " + strconv.FormatInt(p, 10)
		}
		if p > int64(^uint32(0)) {
			return e, "Permission out of range: " + strconv.FormatInt(p, 10)
		}
		e.replace = true
		e.permissions = access.Permission(p)
	}
	if req.AddPerm != "" {
		p, ok := access.Lookup(req.AddPerm)
		if !ok {
			return e, "Permission not found: " + req.AddPerm
		}
		e.add = p
	}
	if req.RemovePerm != "" {
		p, ok := access.Lookup(req.RemovePerm)
		if !ok {
			return e, "Permission not found: " + req.RemovePerm
		}
		e.remove = p
	}
	return e, ""
}

func (e userEdit) apply(u *identity.User) {
	if e.name != "" {
		u.Name = e.name
	}
	if e.replace {
		u.Permissions = e.permissions
	}
	u.Permissions = u.Permissions.Add(e.add).Remove(e.remove)
}

type permissionView struct {
	Name  string `json:"name"`
	Value uint32 `json:"value"`
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("match")
	names, err := access.Match(pattern)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pattern: "+pattern)
		return
	}

	views := make([]permissionView, 0, len(names))
	for _, n := range names {
		p, _ := access.Lookup(n)
		views = append(views, permissionView{Name: n, Value: uint32(p)})
	}
	writeData(w, http.StatusOK, views)
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
