package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nemt/internal/domain"
	"nemt/internal/service"
)

// PaymentHandler handles HTTP requests for payment attempts.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// PaymentAttemptResponse is the HTTP response for a single attempt in the
// audit trail. Charges are never retried implicitly, so every row here
// maps to one explicit actor action.
type PaymentAttemptResponse struct {
	ID            string  `json:"id"`
	TripID        string  `json:"trip_id"`
	Kind          string  `json:"kind"`
	Amount        float64 `json:"amount"`
	Succeeded     bool    `json:"succeeded"`
	FailureReason string  `json:"failure_reason,omitempty"`
	ProviderTxnID string  `json:"provider_txn_id,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

func toAttemptResponse(a *domain.PaymentAttempt) PaymentAttemptResponse {
	return PaymentAttemptResponse{
		ID:            a.ID,
		TripID:        a.TripID,
		Kind:          string(a.Kind),
		Amount:        a.Amount,
		Succeeded:     a.Succeeded,
		FailureReason: a.FailureReason,
		ProviderTxnID: a.ProviderTxnID,
		CreatedAt:     fmtTime(a.CreatedAt),
	}
}

// GetAttempt handles GET /v1/payments/:id
func (h *PaymentHandler) GetAttempt(c *gin.Context) {
	attempt, err := h.paymentService.GetAttempt(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toAttemptResponse(attempt))
}

// ListTripAttempts handles GET /v1/trips/:id/payments
func (h *PaymentHandler) ListTripAttempts(c *gin.Context) {
	attempts, err := h.paymentService.ListAttempts(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]PaymentAttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		response = append(response, toAttemptResponse(a))
	}

	respondJSON(c, http.StatusOK, response)
}
