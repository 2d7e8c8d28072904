// internal/api/manualusage/handlers.go
package manualusage

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/codr1/Courtside/internal/api/apiutil"
	"github.com/codr1/Courtside/internal/api/authz"
	"github.com/codr1/Courtside/internal/payments"
)

const manualUsageTimeout = 10 * time.Second

var service *payments.Service

type playerRequest struct {
	Name   string          `json:"name" validate:"required,max=100"`
	Amount decimal.Decimal `json:"amount"`
}

type manualUsageRequest struct {
	Date          string          `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime     int             `json:"startTime" validate:"required"`
	EndTime       int             `json:"endTime" validate:"required"`
	Players       []playerRequest `json:"players" validate:"required,min=1,max=20,dive"`
	PaymentMethod string          `json:"paymentMethod" validate:"omitempty,oneof=cash bank_transfer gcash coins"`
	Notes         string          `json:"notes" validate:"max=500"`
}

type manualUsageResponse struct {
	Payments []payments.Payment `json:"payments"`
	Count    int                `json:"count"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *payments.Service) {
	if svc == nil {
		return
	}
	service = svc
}

// POST /api/v1/manual-court-usage
func HandleCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if !apiutil.RequireRole(w, r, authz.RoleSuperadmin) {
		return
	}
	if service == nil {
		logger.Error().Msg("Payment service not initialized")
		apiutil.WriteError(w, r, errors.New("payment service not initialized"))
		return
	}
	actor, err := apiutil.ActorFromRequest(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	var req manualUsageRequest
	if err := apiutil.DecodeAndValidate(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	in := payments.ManualUsageInput{
		Date:          strings.TrimSpace(req.Date),
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		PaymentMethod: payments.Method(req.PaymentMethod),
		Notes:         req.Notes,
	}
	for _, p := range req.Players {
		in.Players = append(in.Players, payments.ManualPlayerInput{Name: p.Name, Amount: p.Amount})
	}

	ctx, cancel := context.WithTimeout(r.Context(), manualUsageTimeout)
	defer cancel()

	created, err := service.CreateManualCourtUsage(ctx, actor, in)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	logger.Info().
		Str("date", in.Date).
		Int("payments", len(created)).
		Msg("Manual court usage recorded")
	if err := apiutil.WriteJSON(w, http.StatusCreated, manualUsageResponse{Payments: created, Count: len(created)}); err != nil {
		logger.Error().Err(err).Msg("Failed to write manual usage response")
	}
}
