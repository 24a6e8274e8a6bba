package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nemt/internal/redis"
	"nemt/internal/service"
)

// QuoteHandler handles HTTP requests for price quotes.
type QuoteHandler struct {
	quoteService *service.QuoteService
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(quoteService *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// QuoteResponse is the HTTP response for a price quote. Quotes expire;
// a stale quote ID comes back 404 and the client re-quotes.
type QuoteResponse struct {
	QuoteID   string        `json:"quote_id"`
	Breakdown BreakdownInfo `json:"breakdown"`
	Region    RegionInfo    `json:"region"`
	CreatedAt string        `json:"created_at"`
}

func toQuoteResponse(quote *redis.CachedQuote) QuoteResponse {
	items := make([]LineItemInfo, 0, len(quote.Breakdown.Items))
	for _, it := range quote.Breakdown.Items {
		items = append(items, LineItemInfo{Name: it.Name, Amount: it.Amount})
	}

	return QuoteResponse{
		QuoteID: quote.ID,
		Breakdown: BreakdownInfo{
			Items:    items,
			Subtotal: quote.Breakdown.Subtotal,
			Total:    quote.Breakdown.Total,
		},
		Region: RegionInfo{
			PickupRegion:      quote.Region.PickupRegion,
			DestinationRegion: quote.Region.DestinationRegion,
			BothHomeRegion:    quote.Region.BothHomeRegion,
			RegionsOut:        quote.Region.RegionsOut,
			DistanceMiles:     quote.Region.DistanceMiles,
			DistanceEstimated: quote.Region.DistanceEstimated,
		},
		CreatedAt: fmtTime(quote.CreatedAt),
	}
}

// CreateQuote handles POST /v1/quotes
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	quote, err := h.quoteService.Quote(c.Request.Context(), req.toDomain())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toQuoteResponse(quote))
}

// GetQuote handles GET /v1/quotes/:id
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	quote, err := h.quoteService.GetQuote(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toQuoteResponse(quote))
}
