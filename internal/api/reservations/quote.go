package reservations

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtside/internal/api/apiutil"
	"github.com/codr1/Courtside/internal/api/authz"
)

// GET /api/v1/fees/quote?timeSlot=18&duration=2&players=Ana&players=Ben
//
// players may also be a single comma separated value.
func HandleFeeQuote(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if _, err := authz.RequireUser(r.Context()); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	database := loadDB()
	if database == nil || calculator == nil {
		logger.Error().Msg("Reservation handlers not initialized")
		apiutil.WriteError(w, r, errors.New("reservation handlers not initialized"))
		return
	}

	if strings.TrimSpace(r.URL.Query().Get("timeSlot")) == "" {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "timeSlot", Reason: "is required"})
		return
	}
	timeSlot, err := apiutil.QueryInt(r, "timeSlot", 0)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	duration, err := apiutil.QueryInt(r, "duration", 1)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	var players []string
	for _, value := range r.URL.Query()["players"] {
		players = append(players, strings.Split(value, ",")...)
	}
	players = normalizePlayers(players)
	if len(players) > maxPlayers {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "players", Reason: "must be at most 8"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reservationQueryTimeout)
	defer cancel()

	members, err := memberNames(ctx, database.Queries)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	quote, err := calculator.ComputeFee(timeSlot, duration, players, members)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, quote); err != nil {
		logger.Error().Err(err).Msg("Failed to write fee quote")
	}
}
