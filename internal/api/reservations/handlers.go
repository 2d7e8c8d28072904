// internal/api/reservations/handlers.go
package reservations

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/codr1/Courtside/internal/api/apiutil"
	"github.com/codr1/Courtside/internal/api/authz"
	appdb "github.com/codr1/Courtside/internal/db"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
	"github.com/codr1/Courtside/internal/payments"
	"github.com/codr1/Courtside/internal/pricing"
)

var (
	store      *appdb.DB
	calculator *pricing.Calculator
)

const (
	reservationQueryTimeout = 5 * time.Second
	maxPlayers              = 8
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB, calc *pricing.Calculator) {
	if database == nil || calc == nil {
		return
	}
	store = database
	calculator = calc
}

type reservationRequest struct {
	UserID          int64            `json:"userId" validate:"omitempty,gt=0"`
	Date            string           `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSlot        int              `json:"timeSlot" validate:"gte=0,lte=23"`
	Duration        int              `json:"duration" validate:"omitempty,gte=1,lte=12"`
	Players         []string         `json:"players" validate:"required,min=1,max=8,dive,max=100"`
	TotalFee        *decimal.Decimal `json:"totalFee"`
	ReservationType string           `json:"reservationType" validate:"omitempty,oneof=regular blocked"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=cancelled completed"`
}

type reservationResponse struct {
	ID              int64              `json:"id"`
	UserID          int64              `json:"userId"`
	Date            string             `json:"date"`
	TimeSlot        int64              `json:"timeSlot"`
	Duration        int64              `json:"duration"`
	EndTimeSlot     int64              `json:"endTimeSlot"`
	Players         []string           `json:"players"`
	Status          string             `json:"status"`
	PaymentStatus   string             `json:"paymentStatus"`
	TotalFee        decimal.Decimal    `json:"totalFee"`
	ReservationType string             `json:"reservationType"`
	FeeBreakdown    *pricing.Breakdown `json:"feeBreakdown,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

var errSlotTaken = apiutil.HandlerError{Status: http.StatusConflict, Message: "court is already booked for that time"}

// POST /api/v1/reservations
func HandleReservationCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	database := loadDB()
	if database == nil || calculator == nil {
		logger.Error().Msg("Reservation handlers not initialized")
		apiutil.WriteError(w, r, errors.New("reservation handlers not initialized"))
		return
	}
	user, err := authz.RequireUser(r.Context())
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	var req reservationRequest
	if err := apiutil.DecodeAndValidate(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if req.Duration == 0 {
		req.Duration = 1
	}
	if req.ReservationType == "" {
		req.ReservationType = "regular"
	}
	if req.TotalFee != nil && req.TotalFee.IsNegative() {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "totalFee", Reason: "must not be negative"})
		return
	}
	players := normalizePlayers(req.Players)

	ownerID := user.ID
	if req.UserID != 0 && req.UserID != user.ID {
		if !authz.IsAdmin(user) {
			apiutil.WriteError(w, r, authz.ErrForbidden)
			return
		}
		ownerID = req.UserID
	}

	ctx, cancel := context.WithTimeout(r.Context(), reservationQueryTimeout)
	defer cancel()

	var created dbgen.Reservation
	var breakdown *pricing.Breakdown
	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		qtx := txdb.Queries

		if _, err := qtx.GetUserByID(ctx, ownerID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return payments.ErrUserNotFound
			}
			return fmt.Errorf("load reservation owner: %w", err)
		}

		// Quote first so slot errors win over availability.
		members, err := memberNames(ctx, qtx)
		if err != nil {
			return err
		}
		quote, err := calculator.ComputeFee(req.TimeSlot, req.Duration, players, members)
		if err != nil {
			return err
		}
		fee := quote.Amount
		if req.TotalFee != nil {
			fee = *req.TotalFee
		}
		breakdown = &quote.Breakdown

		overlapping, err := qtx.CountOverlappingReservations(ctx, dbgen.CountOverlappingReservationsParams{
			Date:        req.Date,
			EndTimeSlot: int64(req.TimeSlot + req.Duration),
			TimeSlot:    int64(req.TimeSlot),
			ExcludeID:   0,
		})
		if err != nil {
			return fmt.Errorf("check availability: %w", err)
		}
		if overlapping > 0 {
			return errSlotTaken
		}

		encodedPlayers, err := json.Marshal(players)
		if err != nil {
			return fmt.Errorf("encode players: %w", err)
		}
		now := time.Now().UTC()
		created, err = qtx.CreateReservation(ctx, dbgen.CreateReservationParams{
			UserID:          ownerID,
			Date:            req.Date,
			TimeSlot:        int64(req.TimeSlot),
			Duration:        int64(req.Duration),
			EndTimeSlot:     int64(req.TimeSlot + req.Duration),
			Players:         string(encodedPlayers),
			Status:          payments.ReservationStatusPending,
			PaymentStatus:   payments.ReservationPaymentPending,
			TotalFee:        fee,
			ReservationType: req.ReservationType,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if err != nil {
			if appdb.IsConstraintError(err) {
				return apiutil.HandlerError{Status: http.StatusConflict, Message: errSlotTaken.Message, Err: err}
			}
			return fmt.Errorf("create reservation: %w", err)
		}
		return nil
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	logger.Info().
		Int64("reservation_id", created.ID).
		Int64("user_id", ownerID).
		Str("date", created.Date).
		Int64("time_slot", created.TimeSlot).
		Str("total_fee", created.TotalFee.StringFixed(2)).
		Msg("Reservation created")

	resp := toResponse(created)
	resp.FeeBreakdown = breakdown
	if err := apiutil.WriteJSON(w, http.StatusCreated, resp); err != nil {
		logger.Error().Err(err).Int64("reservation_id", created.ID).Msg("Failed to write reservation response")
	}
}

// PUT /api/v1/reservations/{id}/status
func HandleReservationStatus(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if !apiutil.RequireRole(w, r, authz.RoleAdmin) {
		return
	}
	database := loadDB()
	if database == nil {
		logger.Error().Msg("Reservation handlers not initialized")
		apiutil.WriteError(w, r, errors.New("reservation handlers not initialized"))
		return
	}

	id, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	var req statusRequest
	if err := apiutil.DecodeAndValidate(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reservationQueryTimeout)
	defer cancel()

	var updated dbgen.Reservation
	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		qtx := txdb.Queries
		current, err := qtx.GetReservationByID(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return payments.ErrReservationNotFound
		}
		if err != nil {
			return fmt.Errorf("load reservation: %w", err)
		}
		switch current.Status {
		case req.Status:
			updated = current
			return nil
		case payments.ReservationStatusCancelled, payments.ReservationStatusCompleted:
			return apiutil.FieldError{Field: "status", Reason: "cannot change a " + current.Status + " reservation"}
		}

		updated, err = qtx.UpdateReservationStatus(ctx, dbgen.UpdateReservationStatusParams{
			Status:    req.Status,
			UpdatedAt: time.Now().UTC(),
			ID:        id,
		})
		if err != nil {
			return fmt.Errorf("update reservation status: %w", err)
		}
		return nil
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	logger.Info().
		Int64("reservation_id", id).
		Str("status", updated.Status).
		Msg("Reservation status changed")
	if err := apiutil.WriteJSON(w, http.StatusOK, toResponse(updated)); err != nil {
		logger.Error().Err(err).Int64("reservation_id", id).Msg("Failed to write reservation response")
	}
}

func memberNames(ctx context.Context, q *dbgen.Queries) ([]string, error) {
	rows, err := q.ListActiveMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.FullName)
	}
	return names, nil
}

func normalizePlayers(players []string) []string {
	normalized := make([]string, 0, len(players))
	for _, p := range players {
		if p = strings.Join(strings.Fields(p), " "); p != "" {
			normalized = append(normalized, p)
		}
	}
	return normalized
}

func toResponse(res dbgen.Reservation) reservationResponse {
	var players []string
	if err := json.Unmarshal([]byte(res.Players), &players); err != nil || players == nil {
		players = []string{}
	}
	return reservationResponse{
		ID:              res.ID,
		UserID:          res.UserID,
		Date:            res.Date,
		TimeSlot:        res.TimeSlot,
		Duration:        res.Duration,
		EndTimeSlot:     res.EndTimeSlot,
		Players:         players,
		Status:          res.Status,
		PaymentStatus:   res.PaymentStatus,
		TotalFee:        res.TotalFee,
		ReservationType: res.ReservationType,
		CreatedAt:       res.CreatedAt,
		UpdatedAt:       res.UpdatedAt,
	}
}

func loadDB() *appdb.DB {
	return store
}
