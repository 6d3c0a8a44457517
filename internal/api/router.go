package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/praneelbora/expensease/internal/auth"
	"github.com/praneelbora/expensease/internal/middleware"
	"github.com/praneelbora/expensease/internal/receipt"
	"github.com/praneelbora/expensease/internal/service"
)

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(
	authSvc *service.AuthService,
	expenseSvc *service.ExpenseService,
	groupSvc *service.GroupService,
	settlementSvc *service.SettlementService,
	summarySvc *service.SummaryService,
	tokens *auth.TokenIssuer,
) http.Handler {
	h := &Handlers{
		authSvc:       authSvc,
		expenseSvc:    expenseSvc,
		groupSvc:      groupSvc,
		settlementSvc: settlementSvc,
		summarySvc:    summarySvc,
		scans:         receipt.NewRegistry(),
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.RequestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints.
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		// Everything else requires a valid token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(tokens))

			r.Get("/auth/me", h.CurrentUser)
			r.Post("/payment-methods", h.AddPaymentMethod)
			r.Get("/payment-methods", h.ListPaymentMethods)

			r.Post("/expenses/preview", h.PreviewSplit)
			r.Post("/expenses", h.CreateExpense)
			r.Get("/expenses", h.ListExpenses)
			r.Get("/expenses/{id}", h.GetExpense)

			r.Post("/groups", h.CreateGroup)
			r.Get("/groups/{id}", h.GetGroup)
			r.Post("/groups/{id}/members", h.AddGroupMembers)
			r.Get("/groups/{id}/expenses", h.ListGroupExpenses)
			r.Get("/groups/{id}/balances", h.GroupBalances)

			r.Post("/settlements", h.RecordSettlement)
			r.Get("/settlements", h.ListSettlements)
			r.Get("/settlements/suggestions", h.SuggestSettlements)

			r.Get("/summary", h.GetSummary)

			r.Post("/scan/sessions", h.BeginScan)
			r.Get("/scan/sessions/current", h.CurrentScan)
			r.Post("/scan/sessions/{sessionId}/parse-result", h.AttachParseResult)
			r.Post("/scan/sessions/{sessionId}/participants", h.SetScanParticipants)
			r.Post("/scan/sessions/{sessionId}/items/{index}/assign", h.AssignScanItem)
			r.Post("/scan/sessions/{sessionId}/finalize", h.FinalizeScan)
		})
	})

	return r
}
