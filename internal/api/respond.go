// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/oops"

	"github.com/magicsessions/magicsessions/internal/auth"
	"github.com/magicsessions/magicsessions/pkg/errutil"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

const msgInternal = "internal server error"

type validatable interface {
	Validate() error
}

// decode reads a single JSON object from the body into dst and validates it.
// Failures come back as AUTH_INVALID_INPUT errors.
func decode(w http.ResponseWriter, r *http.Request, dst validatable) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)

	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return oops.Code(auth.CodeInvalidInput).Errorf("request body too large")
		}
		return oops.Code(auth.CodeInvalidInput).Errorf("malformed JSON request body")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return oops.Code(auth.CodeInvalidInput).Errorf("request body must contain a single JSON object")
	}
	if err := dst.Validate(); err != nil {
		return oops.Code(auth.CodeInvalidInput).Wrap(err)
	}
	return nil
}

// statusFor maps an error kind to an HTTP status.
func statusFor(kind auth.Kind) int {
	switch kind {
	case auth.KindValidation:
		return http.StatusBadRequest
	case auth.KindConflict:
		return http.StatusConflict
	case auth.KindUnauthorized:
		return http.StatusUnauthorized
	case auth.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError translates err to a status and message body. Internal errors
// are logged and replaced by a generic message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	h.writeErrorStatus(w, r, statusFor(auth.KindOf(err)), err)
}

func (h *Handler) writeErrorStatus(w http.ResponseWriter, r *http.Request, status int, err error) {
	msg := auth.PublicMessage(err)
	if auth.KindOf(err) == auth.KindInternal {
		errutil.LogError(r.Context(), h.logger, "request failed", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()))
		msg = msgInternal
	}
	writeJSON(w, status, MessageResponse{Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	//nolint:errcheck // client may disconnect; nothing useful to do with the error
	json.NewEncoder(w).Encode(body)
}
