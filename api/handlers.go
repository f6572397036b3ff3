/*
handlers.go - HTTP API handlers for the fund ledger

PURPOSE:
  Exposes the fund ledger via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the ledger facade.

ENDPOINTS:
  Auth:
    POST   /api/login                       Authenticate a member

  Members:
    GET    /api/members                     List all members
    POST   /api/members                     Enroll a member
    GET    /api/members/{id}                Get member details
    GET    /api/members/{id}/totals         Lifetime per-type sums
    GET    /api/members/{id}/history        Daily balance/points history
    GET    /api/members/{id}/transactions   Member's log entries

  Transactions:
    GET    /api/transactions                Full log, most recent first
    POST   /api/transactions                Append (possibly backdated)

  Fund:
    GET    /api/fund/balance                Fund-wide balance total

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Member not found
  - 409: Duplicate tracking code or member
  - 500: Storage failures

SECURITY NOTE:
  Login verifies credentials but issues no session; endpoints are public.
  Put this behind a reverse proxy that authenticates, or add middleware.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - ledger/facade.go: The operations these handlers wrap
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/sandogh/fund-engine/ledger"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds the API's single dependency, the ledger facade.
type Handler struct {
	fund *ledger.Facade
}

// NewHandler creates a handler over the facade.
func NewHandler(fund *ledger.Facade) *Handler {
	return &Handler{fund: fund}
}

// =============================================================================
// AUTH ENDPOINTS
// =============================================================================

// Login authenticates a member by username and credential.
// POST /api/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Username == "" || req.Credential == "" {
		writeError(w, http.StatusBadRequest, "username and credential are required", nil)
		return
	}

	m, ok, err := h.fund.Authenticate(r.Context(), req.Username, req.Credential)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "authentication failed", err)
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid username or credential", nil)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Member: h.toMemberDTO(*m)})
}

// =============================================================================
// MEMBER ENDPOINTS
// =============================================================================

// ListMembers returns all members ordered by name.
// GET /api/members
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.fund.ListMembers(r.Context())
	if err != nil {
		writeDomainError(w, "failed to list members", err)
		return
	}
	dtos := make([]MemberDTO, 0, len(members))
	for _, m := range members {
		dtos = append(dtos, h.toMemberDTO(m))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RegisterMember enrolls a new member.
// POST /api/members
func (h *Handler) RegisterMember(w http.ResponseWriter, r *http.Request) {
	var req RegisterMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Name == "" || req.Username == "" || req.Credential == "" {
		writeError(w, http.StatusBadRequest, "name, username and credential are required", nil)
		return
	}

	id, err := h.fund.Register(r.Context(), req.Name, req.EnrolledOn, req.Username, req.Credential)
	if err != nil {
		writeDomainError(w, "failed to register member", err)
		return
	}

	m, err := h.fund.Member(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to load member", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toMemberDTO(*m))
}

// GetMember returns one member.
// GET /api/members/{id}
func (h *Handler) GetMember(w http.ResponseWriter, r *http.Request) {
	id := ledger.MemberID(chi.URLParam(r, "id"))
	m, err := h.fund.Member(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to load member", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toMemberDTO(*m))
}

// GetTotals returns a member's lifetime contribution and dues sums.
// GET /api/members/{id}/totals
func (h *Handler) GetTotals(w http.ResponseWriter, r *http.Request) {
	id := ledger.MemberID(chi.URLParam(r, "id"))
	totals, err := h.fund.Totals(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to compute totals", err)
		return
	}
	writeJSON(w, http.StatusOK, TotalsDTO{
		MemberID:                  string(id),
		CapitalContributed:        totals.CapitalContributed.IntPart(),
		CapitalContributedDisplay: formatToman(totals.CapitalContributed),
		RecurringDuesPaid:         totals.RecurringDuesPaid.IntPart(),
		RecurringDuesPaidDisplay:  formatToman(totals.RecurringDuesPaid),
	})
}

// GetHistory returns a member's daily accrual history, most recent first.
// GET /api/members/{id}/history
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id := ledger.MemberID(chi.URLParam(r, "id"))
	entries, err := h.fund.DailyHistory(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to load history", err)
		return
	}
	dtos := make([]HistoryEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, HistoryEntryDTO{
			Date:           e.LocalDay,
			DateCanonical:  e.Day.String(),
			Balance:        e.Balance.IntPart(),
			BalanceDisplay: formatToman(e.Balance),
			PointsEarned:   e.Earned,
			PointsTotal:    e.Cumulative,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetMemberTransactions returns one member's log entries.
// GET /api/members/{id}/transactions
func (h *Handler) GetMemberTransactions(w http.ResponseWriter, r *http.Request) {
	h.listTransactions(w, r, ledger.MemberID(chi.URLParam(r, "id")))
}

// =============================================================================
// TRANSACTION ENDPOINTS
// =============================================================================

// ListTransactions returns the full log, most recent first.
// GET /api/transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	h.listTransactions(w, r, "")
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request, id ledger.MemberID) {
	txs, err := h.fund.ListTransactions(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to list transactions", err)
		return
	}
	dtos := make([]TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		dtos = append(dtos, h.toTransactionDTO(tx))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RecordTransaction appends a transaction and recomputes the member's
// snapshots before responding.
// POST /api/transactions
func (h *Handler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req RecordTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.MemberName == "" {
		writeError(w, http.StatusBadRequest, "member_name is required", nil)
		return
	}

	txID, err := h.fund.RecordTransaction(
		r.Context(),
		req.MemberName,
		req.Date,
		decimal.NewFromInt(req.Amount),
		ledger.TransactionType(req.Type),
		req.Description,
		req.TrackingCode,
	)
	if err != nil {
		writeDomainError(w, "failed to record transaction", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": string(txID)})
}

// =============================================================================
// FUND ENDPOINTS
// =============================================================================

// GetFundBalance totals every member's balance on demand.
// GET /api/fund/balance
func (h *Handler) GetFundBalance(w http.ResponseWriter, r *http.Request) {
	members, err := h.fund.ListMembers(r.Context())
	if err != nil {
		writeDomainError(w, "failed to list members", err)
		return
	}
	total, err := h.fund.FundTotalBalance(r.Context())
	if err != nil {
		writeDomainError(w, "failed to total fund balance", err)
		return
	}
	writeJSON(w, http.StatusOK, FundBalanceDTO{
		Total:        total.IntPart(),
		TotalDisplay: formatToman(total),
		Members:      len(members),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) toMemberDTO(m ledger.Member) MemberDTO {
	balance := m.CurrentBalance.Add(m.InitialCapital)
	return MemberDTO{
		ID:                  string(m.ID),
		Name:                m.Name,
		Username:            m.Username,
		EnrolledOn:          h.fund.Calendar().ToLocal(m.EnrolledOn),
		EnrolledOnCanonical: m.EnrolledOn.String(),
		Balance:             balance.IntPart(),
		BalanceDisplay:      formatToman(balance),
		Points:              m.Points,
	}
}

func (h *Handler) toTransactionDTO(tx ledger.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:            string(tx.ID),
		MemberID:      string(tx.MemberID),
		Date:          h.fund.Calendar().ToLocal(tx.PostedOn),
		DateCanonical: tx.PostedOn.String(),
		Amount:        tx.Amount.IntPart(),
		AmountDisplay: formatToman(tx.Amount),
		Type:          string(tx.Type),
		Description:   tx.Description,
		TrackingCode:  tx.TrackingCode,
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps ledger errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case ledger.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, ledger.ErrDuplicateTrackingCode) || errors.Is(err, ledger.ErrDuplicateMember):
		writeError(w, http.StatusConflict, message, err)
	case ledger.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
