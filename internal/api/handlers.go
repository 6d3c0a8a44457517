package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/praneelbora/expensease/internal/auth"
	"github.com/praneelbora/expensease/internal/calculator"
	"github.com/praneelbora/expensease/internal/middleware"
	"github.com/praneelbora/expensease/internal/models"
	"github.com/praneelbora/expensease/internal/money"
	"github.com/praneelbora/expensease/internal/receipt"
	"github.com/praneelbora/expensease/internal/service"
	"github.com/praneelbora/expensease/internal/storage"
	"github.com/praneelbora/expensease/internal/summary"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	authSvc       *service.AuthService
	expenseSvc    *service.ExpenseService
	groupSvc      *service.GroupService
	settlementSvc *service.SettlementService
	summarySvc    *service.SummaryService
	scans         *receipt.Registry
}

// userScans resolves the authenticated user's own session manager; scan
// sessions are never shared across accounts.
func (h *Handlers) userScans(r *http.Request) *receipt.Manager {
	return h.scans.For(middleware.GetUserID(r.Context()))
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps domain errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrAuthRequired),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, auth.ErrEmailExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, receipt.ErrStaleSession),
		errors.Is(err, receipt.ErrFinalized),
		errors.Is(err, receipt.ErrNotReady):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, money.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPayerRequired),
		errors.Is(err, calculator.ErrNoParticipants),
		errors.Is(err, calculator.ErrAllocationMismatch),
		errors.Is(err, calculator.ErrUnassignedItem),
		errors.Is(err, calculator.ErrPaidAmountMismatch),
		errors.Is(err, calculator.ErrPaymentMethodRequired),
		errors.Is(err, calculator.ErrCurrencyMismatch):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}
		}
	}
	return t
}

// --- split payload ---

type itemPayload struct {
	Name      string   `json:"name"`
	Amount    float64  `json:"amount"`
	Consumers []string `json:"consumers"`
}

type payerPayload struct {
	Paying          bool     `json:"paying"`
	Amount          *float64 `json:"amount,omitempty"`
	PaymentMethodID string   `json:"paymentMethodId,omitempty"`
	MethodCount     int      `json:"methodCount,omitempty"`
}

type splitPayload struct {
	Currency             string                  `json:"currency"`
	Amount               float64                 `json:"amount"`
	Mode                 string                  `json:"mode,omitempty"`
	Weights              map[string]float64      `json:"weights,omitempty"`
	ExtraMode            string                  `json:"extraMode,omitempty"`
	Participants         []string                `json:"participants"`
	Items                []itemPayload           `json:"items,omitempty"`
	Payers               map[string]payerPayload `json:"payers,omitempty"`
	Tax                  float64                 `json:"tax,omitempty"`
	Tip                  float64                 `json:"tip,omitempty"`
	ServiceCharge        float64                 `json:"serviceCharge,omitempty"`
	ServiceChargePercent float64                 `json:"serviceChargePercent,omitempty"`
}

func (p splitPayload) toSplitInput() (calculator.SplitInput, error) {
	grandTotal, err := money.FromDecimal(p.Amount, p.Currency)
	if err != nil {
		return calculator.SplitInput{}, err
	}
	tax, err := money.FromDecimal(p.Tax, p.Currency)
	if err != nil {
		return calculator.SplitInput{}, err
	}
	tip, err := money.FromDecimal(p.Tip, p.Currency)
	if err != nil {
		return calculator.SplitInput{}, err
	}
	serviceCharge, err := money.FromDecimal(p.ServiceCharge, p.Currency)
	if err != nil {
		return calculator.SplitInput{}, err
	}

	in := calculator.SplitInput{
		Mode:         calculator.SplitMode(p.Mode),
		Weights:      p.Weights,
		ExtraMode:    calculator.ExtraSplitMode(p.ExtraMode),
		Participants: p.Participants,
		GrandTotal:   grandTotal,
		Extras: calculator.ExtrasTotals{
			Tax:            tax,
			Tip:            tip,
			ServiceCharge:  serviceCharge,
			ServicePercent: p.ServiceChargePercent,
		},
	}

	for _, item := range p.Items {
		amt, err := money.FromDecimal(item.Amount, p.Currency)
		if err != nil {
			return calculator.SplitInput{}, err
		}
		in.Items = append(in.Items, models.LineItem{
			Name:      item.Name,
			Amount:    amt,
			Consumers: item.Consumers,
		})
	}

	if len(p.Payers) > 0 {
		in.Payers = make(map[string]calculator.PayerInput, len(p.Payers))
		for id, payer := range p.Payers {
			pi := calculator.PayerInput{
				Paying:          payer.Paying,
				PaymentMethodID: payer.PaymentMethodID,
				MethodCount:     payer.MethodCount,
			}
			if payer.Amount != nil {
				amt, err := money.FromDecimal(*payer.Amount, p.Currency)
				if err != nil {
					return calculator.SplitInput{}, err
				}
				pi.Amount = &amt
			}
			in.Payers[id] = pi
		}
	}
	return in, nil
}

// --- auth ---

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.authSvc.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.authSvc.CurrentUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// --- payment methods ---

func (h *Handlers) AddPaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label string `json:"label"`
		Kind  string `json:"kind"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	method, err := h.authSvc.AddPaymentMethod(r.Context(), middleware.GetUserID(r.Context()), req.Label, req.Kind)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, method)
}

func (h *Handlers) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.authSvc.ListPaymentMethods(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"paymentMethods": methods})
}

// --- expenses ---

func (h *Handlers) PreviewSplit(w http.ResponseWriter, r *http.Request) {
	var req splitPayload
	if !decodeJSON(w, r, &req) {
		return
	}

	in, err := req.toSplitInput()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rows, err := h.expenseSvc.PreviewSplit(in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"splits": rows})
}

func (h *Handlers) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description"`
		Category    string `json:"category"`
		GroupID     string `json:"groupId"`
		Date        string `json:"date"`
		splitPayload
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	in, err := req.toSplitInput()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	expense, err := h.expenseSvc.CreateExpense(r.Context(), middleware.GetUserID(r.Context()), service.ExpenseInput{
		Description: req.Description,
		Category:    req.Category,
		GroupID:     req.GroupID,
		Date:        parseDate(req.Date),
		Split:       in,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

func (h *Handlers) GetExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := h.expenseSvc.GetExpense(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (h *Handlers) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.expenseSvc.ListExpenses(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": expenses})
}

// --- groups ---

func (h *Handlers) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string   `json:"name"`
		Members []string `json:"members"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	group, err := h.groupSvc.CreateGroup(r.Context(), middleware.GetUserID(r.Context()), req.Name, req.Members)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (h *Handlers) GetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.groupSvc.GetGroup(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (h *Handlers) AddGroupMembers(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Members []string `json:"members"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	group, err := h.groupSvc.AddMembers(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), req.Members)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (h *Handlers) ListGroupExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.expenseSvc.ListGroupExpenses(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": expenses})
}

func (h *Handlers) GroupBalances(w http.ResponseWriter, r *http.Request) {
	view, err := h.groupSvc.Balances(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// --- settlements ---

func (h *Handlers) RecordSettlement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GroupID    string  `json:"groupId"`
		FromUserID string  `json:"fromUserId"`
		ToUserID   string  `json:"toUserId"`
		Amount     float64 `json:"amount"`
		Currency   string  `json:"currency"`
		Note       string  `json:"note"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	amount, err := money.FromDecimal(req.Amount, req.Currency)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	settlement, err := h.settlementSvc.Record(r.Context(), middleware.GetUserID(r.Context()), service.SettlementInput{
		GroupID:    req.GroupID,
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		Amount:     amount,
		Note:       req.Note,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, settlement)
}

func (h *Handlers) ListSettlements(w http.ResponseWriter, r *http.Request) {
	settlements, err := h.settlementSvc.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"settlements": settlements})
}

func (h *Handlers) SuggestSettlements(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.settlementSvc.Suggest(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

// --- summary ---

func (h *Handlers) GetSummary(w http.ResponseWriter, r *http.Request) {
	report, err := h.summarySvc.Report(
		r.Context(),
		middleware.GetUserID(r.Context()),
		summary.Range(r.URL.Query().Get("range")),
		time.Now(),
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// --- receipt scan sessions ---

func sessionID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "sessionId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return 0, false
	}
	return id, true
}

func (h *Handlers) BeginScan(w http.ResponseWriter, r *http.Request) {
	id := h.userScans(r).Begin()
	writeJSON(w, http.StatusCreated, map[string]any{"sessionId": id, "state": receipt.StateChoosing})
}

func (h *Handlers) CurrentScan(w http.ResponseWriter, r *http.Request) {
	s := h.userScans(r).Current()
	if s == nil {
		writeError(w, http.StatusNotFound, "no active scan session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId":    s.ID,
		"state":        s.State(),
		"currency":     s.Currency,
		"merchant":     s.Merchant,
		"items":        s.Items,
		"participants": s.Participants,
	})
}

func (h *Handlers) AttachParseResult(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var parsed receipt.ParsedReceipt
	if !decodeJSON(w, r, &parsed) {
		return
	}

	scans := h.userScans(r)
	if err := scans.AttachParseResult(id, parsed); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": scans.Current().State()})
}

func (h *Handlers) SetScanParticipants(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req struct {
		Participants []string `json:"participants"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	scans := h.userScans(r)
	if err := scans.SetParticipants(id, req.Participants); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": scans.Current().State()})
}

func (h *Handlers) AssignScanItem(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item index")
		return
	}
	var req struct {
		Consumers []string `json:"consumers"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	scans := h.userScans(r)
	if err := scans.AssignItem(id, index, req.Consumers); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": scans.Current().State()})
}

func (h *Handlers) FinalizeScan(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req struct {
		ExtraMode string                  `json:"extraMode"`
		Payers    map[string]payerPayload `json:"payers"`
		Amount    float64                 `json:"amount"`
		Currency  string                  `json:"currency"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	grandTotal, err := money.FromDecimal(req.Amount, req.Currency)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	payers := make(map[string]calculator.PayerInput, len(req.Payers))
	for pid, payer := range req.Payers {
		pi := calculator.PayerInput{
			Paying:          payer.Paying,
			PaymentMethodID: payer.PaymentMethodID,
			MethodCount:     payer.MethodCount,
		}
		if payer.Amount != nil {
			amt, convErr := money.FromDecimal(*payer.Amount, req.Currency)
			if convErr != nil {
				writeServiceError(w, convErr)
				return
			}
			pi.Amount = &amt
		}
		payers[pid] = pi
	}

	rows, err := h.userScans(r).Finalize(id, calculator.ExtraSplitMode(req.ExtraMode), payers, grandTotal)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"splits": rows})
}
