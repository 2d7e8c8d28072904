// internal/api/usagereports/handlers.go
package usagereports

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtside/internal/api/apiutil"
	"github.com/codr1/Courtside/internal/api/authz"
	"github.com/codr1/Courtside/internal/finance"
	"github.com/codr1/Courtside/internal/usage"
)

const (
	minReportYear = 2000
	maxReportYear = 2100
)

var (
	aggregator *usage.Aggregator
	recalc     *finance.Recalculator
	now        = time.Now
)

type listResponse struct {
	Year    int            `json:"year"`
	Reports []usage.Report `json:"reports"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(agg *usage.Aggregator, fin *finance.Recalculator) {
	if agg == nil || fin == nil {
		return
	}
	aggregator = agg
	recalc = fin
}

// GET /api/v1/usage-reports?year=2025&member=Maria%20Santos
func HandleUsageReports(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if !apiutil.RequireRole(w, r, authz.RoleAdmin) {
		return
	}
	if aggregator == nil {
		logger.Error().Msg("Usage aggregator not initialized")
		apiutil.WriteError(w, r, errors.New("usage aggregator not initialized"))
		return
	}

	year, err := yearFromQuery(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	if member := strings.TrimSpace(r.URL.Query().Get("member")); member != "" {
		report, err := aggregator.Get(r.Context(), member, year)
		if errors.Is(err, usage.ErrReportNotFound) {
			apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusNotFound, Message: "no usage recorded for member in " + strconv.Itoa(year), Err: err})
			return
		}
		if err != nil {
			apiutil.WriteError(w, r, err)
			return
		}
		if err := apiutil.WriteJSON(w, http.StatusOK, report); err != nil {
			logger.Error().Err(err).Msg("Failed to write usage report")
		}
		return
	}

	reports, err := aggregator.ListByYear(r.Context(), year)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, listResponse{Year: year, Reports: reports}); err != nil {
		logger.Error().Err(err).Msg("Failed to write usage reports")
	}
}

// GET /api/v1/financial-report
func HandleFinancialReport(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if !apiutil.RequireRole(w, r, authz.RoleAdmin) {
		return
	}
	if recalc == nil {
		logger.Error().Msg("Finance recalculator not initialized")
		apiutil.WriteError(w, r, errors.New("finance recalculator not initialized"))
		return
	}

	report, err := recalc.Current(r.Context())
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, report); err != nil {
		logger.Error().Err(err).Msg("Failed to write financial report")
	}
}

func yearFromQuery(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("year"))
	if raw == "" {
		return now().UTC().Year(), nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < minReportYear || year > maxReportYear {
		return 0, apiutil.FieldError{Field: "year", Reason: "must be a year between 2000 and 2100"}
	}
	return year, nil
}
