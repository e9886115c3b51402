package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/angelmondragon/opspulse-backend/internal/auditlog"
	pkgerrors "github.com/angelmondragon/opspulse-backend/pkg/errors"
	"github.com/angelmondragon/opspulse-backend/pkg/logger"
)

// Audit error types recorded when the error carries no explicit one.
const (
	ErrorTypeUnauthorized = "unauthorized"
	ErrorTypeRateLimited  = "rate_limited"
	ErrorTypeInvalid      = "invalid_request"
	ErrorTypeServer       = "server_error"
)

// WriteSuccess wraps data in the {"data": ...} envelope.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, SuccessEnvelope{Data: data})
}

// WriteJSON writes payload without an envelope. The dashboard reads the
// analytics and copilot bodies directly.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	writeJSON(w, status, payload)
}

func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	switch typed.Code() {
	case pkgerrors.CodeValidation,
		pkgerrors.CodeUnauthorized,
		pkgerrors.CodeNotFound,
		pkgerrors.CodeRateLimit:
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	payload := ErrorEnvelope{
		Error: APIError{
			Code:    string(typed.Code()),
			Message: msg,
		},
	}

	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload.Error.Details = details
		}
	}

	auditlog.EntryFrom(ctx).SetErrorType(errorType(typed))

	if logg != nil {
		dump := pkgerrors.Dump(err)

		ctx = logg.WithFields(ctx, map[string]any{
			"error":         dump.TopMessage,
			"error_code":    dump.Code,
			"error_chain":   dump.Chain,
			"pg_code":       dump.PGCode,
			"pg_message":    dump.PGMessage,
			"pg_table":      dump.PGTable,
			"pg_constraint": dump.PGConstraint,
		})
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.rejected")
		}
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

// errorType prefers an explicit error_type detail, then maps the code.
func errorType(e *pkgerrors.Error) string {
	if dm, ok := e.Details().(map[string]any); ok {
		if v, ok := dm["error_type"].(string); ok && v != "" {
			return v
		}
	}
	switch e.Code() {
	case pkgerrors.CodeUnauthorized:
		return ErrorTypeUnauthorized
	case pkgerrors.CodeRateLimit:
		return ErrorTypeRateLimited
	case pkgerrors.CodeValidation, pkgerrors.CodeNotFound:
		return ErrorTypeInvalid
	default:
		return ErrorTypeServer
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
