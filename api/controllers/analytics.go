package controllers

import (
	"math"
	"net/http"

	"github.com/angelmondragon/opspulse-backend/api/responses"
	"github.com/angelmondragon/opspulse-backend/api/validators"
	"github.com/angelmondragon/opspulse-backend/internal/analytics"
	"github.com/angelmondragon/opspulse-backend/internal/analytics/types"
	"github.com/angelmondragon/opspulse-backend/pkg/logger"
)

func Revenue(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.Revenue(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, report)
	}
}

func Forecast(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.Forecast(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, report)
	}
}

func Anomalies(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.Anomalies(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, report)
	}
}

// Activity serves one page of the activity feed. A malformed page or an
// unknown sortBy is a 400; pageSize falls back to the default and pages past
// the end clamp to the last one.
func Activity(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageNum, err := validators.ParseQueryInt(r, "page", 1, 1, math.MaxInt32)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		q := r.URL.Query()
		page, err := svc.Activity(r.Context(), types.ActivityQuery{
			Page:     pageNum,
			PageSize: validators.QueryIntOr(r, "pageSize", analytics.DefaultPageSize),
			SortBy:   q.Get("sortBy"),
			SortDir:  q.Get("sortDir"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, page)
	}
}

func Clients(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.Clients(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, report)
	}
}
