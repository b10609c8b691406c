// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

// Package api exposes the authentication service over HTTP under /api/auth.
package api

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/oops"

	"github.com/magicsessions/magicsessions/internal/auth"
)

// BasePath is where the authentication routes are mounted.
const BasePath = "/api/auth"

// Password reset acknowledgements.
const (
	MsgResetRequested = "If the email is registered, a password reset link has been sent."
	MsgPasswordReset  = "Password has been reset successfully"
)

// Handler serves the authentication endpoints.
type Handler struct {
	svc    AuthService
	resets PasswordResetter
	tokens TokenValidator
	logger *slog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithHandlerLogger sets the logger used for internal errors.
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithPasswordReset enables the password reset endpoints.
func WithPasswordReset(resets PasswordResetter) HandlerOption {
	return func(h *Handler) {
		h.resets = resets
	}
}

// NewHandler creates a Handler.
func NewHandler(svc AuthService, tokens TokenValidator, opts ...HandlerOption) (*Handler, error) {
	if svc == nil {
		return nil, oops.Code("API_CONFIG").Errorf("auth service is required")
	}
	if tokens == nil {
		return nil, oops.Code("API_CONFIG").Errorf("token validator is required")
	}
	h := &Handler{svc: svc, tokens: tokens, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Routes returns the authentication routes, relative to BasePath.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/refresh", h.refresh)
	r.Post("/verify-email", h.verifyEmail)
	r.Post("/resend-verification", h.resendVerification)

	if h.resets != nil {
		r.Post("/password-reset/request", h.requestPasswordReset)
		r.Post("/password-reset/confirm", h.confirmPasswordReset)
	}

	r.Group(func(r chi.Router) {
		r.Use(h.RequireBearer)
		r.Post("/logout", h.logout)
		r.Post("/logout-all", h.logoutAll)
		r.Get("/sessions", h.sessions)
		r.Get("/me", h.me)
	})

	return r
}

// NewRouter builds the root router with the standard middleware stack.
// Extra middleware (such as request metrics) runs before routing.
func NewRouter(h *Handler, mw ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(mw...)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, MessageResponse{Message: "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, MessageResponse{Message: "method not allowed"})
	})

	r.Mount(BasePath, h.Routes())
	return r
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.svc.Register(r.Context(), auth.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/users/"+result.ID.String())
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.svc.Login(r.Context(), auth.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		IPAddress:  clientIP(r),
		DeviceInfo: r.UserAgent(),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// logout maps every failure except authentication to 400.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	ack, err := h.svc.Logout(r.Context(), req.RefreshToken)
	if err != nil {
		status := http.StatusBadRequest
		if auth.KindOf(err) == auth.KindUnauthorized {
			status = http.StatusUnauthorized
		}
		h.writeErrorStatus(w, r, status, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

func (h *Handler) logoutAll(w http.ResponseWriter, r *http.Request) {
	userID, err := ClaimsFromContext(r.Context()).UserID()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	revoked, err := h.svc.LogoutAll(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LogoutAllResponse{Message: auth.MsgLoggedOutAll, Revoked: revoked})
}

func (h *Handler) sessions(w http.ResponseWriter, r *http.Request) {
	userID, err := ClaimsFromContext(r.Context()).UserID()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	sessions, err := h.svc.Sessions(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []auth.SessionInfo{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *Handler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	ack, err := h.svc.VerifyEmail(r.Context(), req.Token)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

func (h *Handler) resendVerification(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	ack, err := h.svc.ResendVerification(r.Context(), req.Email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ack)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.CurrentUser(ClaimsFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// requestPasswordReset always answers 202 once the body is well formed.
func (h *Handler) requestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.resets.RequestReset(r.Context(), req.Email); err != nil {
		h.logger.ErrorContext(r.Context(), "password reset request failed",
			"error", err,
			"request_id", middleware.GetReqID(r.Context()))
	}
	writeJSON(w, http.StatusAccepted, MessageResponse{Message: MsgResetRequested})
}

func (h *Handler) confirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.resets.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: MsgPasswordReset})
}

// clientIP returns the caller address without its port. RealIP has already
// replaced RemoteAddr when a proxy header was present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
