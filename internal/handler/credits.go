package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"kiroku/internal/domain/services"
	"kiroku/internal/httputil"
)

// CreditHandler handles credit ledger HTTP requests
type CreditHandler struct {
	creditService services.CreditService
	logger        *slog.Logger
}

// NewCreditHandler creates a new credit handler
func NewCreditHandler(creditService services.CreditService, logger *slog.Logger) *CreditHandler {
	return &CreditHandler{
		creditService: creditService,
		logger:        logger,
	}
}

// GetBalance summarizes the user's live grants
// GET /api/credits/balance
func (h *CreditHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	balance, err := h.creditService.GetBalance(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, balance)
}

// grantRequest is the transport shape of a credit grant
type grantRequest struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

// CreateGrant allocates credits to the authenticated user.
// The purchase flow lives outside this service; this endpoint records its
// outcome.
// POST /api/credits/grants
func (h *CreditHandler) CreateGrant(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req grantRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	grant, err := h.creditService.Grant(r.Context(), userID, req.Amount, req.Reason)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, grant)
}

// ListUsage lists recent usage rows, newest first
// GET /api/credits/usage?limit=...
func (h *CreditHandler) ListUsage(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	usage, err := h.creditService.ListUsage(r.Context(), userID, limit)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, usage)
}
