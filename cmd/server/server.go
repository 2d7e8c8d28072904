// cmd/server/server.go
package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/codr1/Courtside/internal/api"
	"github.com/codr1/Courtside/internal/api/manualusage"
	paymentsapi "github.com/codr1/Courtside/internal/api/payments"
	"github.com/codr1/Courtside/internal/api/reservations"
	"github.com/codr1/Courtside/internal/api/usagereports"
	"github.com/codr1/Courtside/internal/config"
	"github.com/codr1/Courtside/internal/scheduler"
)

func newServer(cfg *config.Config, a *app) *http.Server {
	router := http.NewServeMux()

	// The last middleware wraps outermost, so the request ID is set before
	// logging and auth run.
	handler := api.ChainMiddleware(
		router,
		api.WithAuth(a.db.Queries),
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
	)

	initHandlers(a)
	registerRoutes(router, a)

	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func initHandlers(a *app) {
	paymentsapi.InitHandlers(paymentsapi.Deps{
		Service:    a.payments,
		Reconciler: a.multiHour,
		Cleaner:    a.cleaner,
		Lookback:   a.reconcileLookback(),
		JobStatus:  scheduler.Status,
	})
	manualusage.InitHandlers(a.payments)
	reservations.InitHandlers(a.db, a.calculator)
	usagereports.InitHandlers(a.usage, a.finance)
}

func registerRoutes(mux *http.ServeMux, a *app) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Payment routes
	mux.HandleFunc("POST /api/v1/payments", a.throttle(paymentsapi.HandleCreate))
	mux.HandleFunc("GET /api/v1/payments", paymentsapi.HandleList)
	mux.HandleFunc("GET /api/v1/payments/mine", paymentsapi.HandleListMine)
	mux.HandleFunc("GET /api/v1/payments/overdue", paymentsapi.HandleListOverdue)
	mux.HandleFunc("GET /api/v1/payments/stats", paymentsapi.HandleStats)
	mux.HandleFunc("POST /api/v1/payments/cleanup-orphans", paymentsapi.HandleCleanupOrphans)
	mux.HandleFunc("GET /api/v1/maintenance/jobs", paymentsapi.HandleMaintenanceJobs)
	mux.HandleFunc("GET /api/v1/payments/{id}", paymentsapi.HandleGet)
	mux.HandleFunc("PUT /api/v1/payments/{id}", paymentsapi.HandleUpdate)
	mux.HandleFunc("PUT /api/v1/payments/{id}/approve", paymentsapi.HandleApprove)
	mux.HandleFunc("PUT /api/v1/payments/{id}/process", paymentsapi.HandleProcess)
	mux.HandleFunc("PUT /api/v1/payments/{id}/record", paymentsapi.HandleRecord)
	mux.HandleFunc("PUT /api/v1/payments/{id}/unrecord", paymentsapi.HandleUnrecord)
	mux.HandleFunc("POST /api/v1/payments/{id}/cancel", paymentsapi.HandleCancel)

	// Manual court usage
	mux.HandleFunc("POST /api/v1/manual-court-usage", a.throttle(manualusage.HandleCreate))

	// Reservation routes
	mux.HandleFunc("POST /api/v1/reservations", a.throttle(reservations.HandleReservationCreate))
	mux.HandleFunc("PUT /api/v1/reservations/{id}/status", reservations.HandleReservationStatus)
	mux.HandleFunc("GET /api/v1/fees/quote", reservations.HandleFeeQuote)

	// Reports
	mux.HandleFunc("GET /api/v1/usage-reports", usagereports.HandleUsageReports)
	mux.HandleFunc("GET /api/v1/financial-report", usagereports.HandleFinancialReport)
}
