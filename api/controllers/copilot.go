package controllers

import (
	"net/http"

	"github.com/angelmondragon/opspulse-backend/api/middleware"
	"github.com/angelmondragon/opspulse-backend/api/responses"
	"github.com/angelmondragon/opspulse-backend/api/validators"
	"github.com/angelmondragon/opspulse-backend/internal/auditlog"
	"github.com/angelmondragon/opspulse-backend/internal/copilot"
	pkgerrors "github.com/angelmondragon/opspulse-backend/pkg/errors"
	"github.com/angelmondragon/opspulse-backend/pkg/logger"
)

// copilotRequest accepts loosely typed fields: a non-string query reads as
// empty and non-string extra points are dropped.
type copilotRequest struct {
	Query           any `json:"query"`
	PromptVersion   any `json:"prompt_version"`
	ExtraDataPoints any `json:"extra_data_points"`
}

func (b copilotRequest) strings() (query, version string, extra []string) {
	query, _ = b.Query.(string)
	version, _ = b.PromptVersion.(string)
	if list, ok := b.ExtraDataPoints.([]any); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				extra = append(extra, s)
			}
		}
	}
	return query, version, extra
}

// Copilot answers a question. Auth and rate limiting run as middleware.
func Copilot(svc copilot.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		entry := auditlog.EntryFrom(ctx)

		var body copilotRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		rawQuery, rawVersion, extra := body.strings()
		version := copilot.NormalizePromptVersion(rawVersion)
		entry.SetPromptVersion(version)

		query, err := copilot.ValidateQuery(rawQuery)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out, err := svc.Answer(ctx, copilot.Request{Query: query, PromptVersion: version, ExtraDataPoints: extra})
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Copilot request failed."))
			return
		}

		entry.SetModelUsed(out.ModelUsed)
		entry.SetErrorType(out.ErrorType)
		entry.SetSchemaPass(out.SchemaPass)

		meta := out.Response.Meta
		w.Header().Set(middleware.HeaderMode, meta.Mode)
		w.Header().Set(middleware.HeaderFallback, meta.FallbackReason)
		w.Header().Set(middleware.HeaderPromptVersion, meta.PromptVersion)
		if out.ModelUsed != "" {
			w.Header().Set(middleware.HeaderModelUsed, out.ModelUsed)
		}
		if logg != nil && meta.FallbackReason != copilot.ReasonNone {
			logg.Info(logg.WithFields(ctx, map[string]any{
				"fallback_reason": meta.FallbackReason,
				"model":           out.ModelUsed,
				"prompt_version":  meta.PromptVersion,
			}), "copilot.fallback")
		}
		responses.WriteJSON(w, http.StatusOK, out.Response)
	}
}
