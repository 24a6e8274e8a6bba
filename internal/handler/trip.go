package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nemt/internal/domain"
	"nemt/internal/middleware"
	"nemt/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// CreateTripRequest is the HTTP request body for booking a trip.
type CreateTripRequest struct {
	PickupAddress          string    `json:"pickup_address" binding:"required"`
	DestinationAddress     string    `json:"destination_address" binding:"required"`
	PickupAt               time.Time `json:"pickup_at" binding:"required"`
	RoundTrip              bool      `json:"round_trip"`
	ReturnAt               time.Time `json:"return_at"`
	Wheelchair             string    `json:"wheelchair"`
	WheelchairRental       bool      `json:"wheelchair_rental"`
	WeightLbs              float64   `json:"weight_lbs" binding:"required"`
	ExtraPassengers        int       `json:"extra_passengers"`
	Emergency              bool      `json:"emergency"`
	Veteran                bool      `json:"veteran"`
	EstimatedDistanceMiles float64   `json:"estimated_distance_miles"`
}

// toDomain converts the request body into a TripRequest.
func (r CreateTripRequest) toDomain() domain.TripRequest {
	wheelchair := domain.WheelchairMode(r.Wheelchair)
	if r.Wheelchair == "" {
		wheelchair = domain.WheelchairNone
	}

	return domain.TripRequest{
		PickupAddress:          r.PickupAddress,
		DestinationAddress:     r.DestinationAddress,
		PickupAt:               r.PickupAt,
		RoundTrip:              r.RoundTrip,
		ReturnAt:               r.ReturnAt,
		Wheelchair:             wheelchair,
		WheelchairRental:       r.WheelchairRental,
		WeightLbs:              r.WeightLbs,
		ExtraPassengers:        r.ExtraPassengers,
		Emergency:              r.Emergency,
		Veteran:                r.Veteran,
		EstimatedDistanceMiles: r.EstimatedDistanceMiles,
	}
}

// TripResponse is the HTTP response for trip operations.
type TripResponse struct {
	TripID        string            `json:"trip_id"`
	ClientID      string            `json:"client_id"`
	DriverID      string            `json:"driver_id,omitempty"`
	Status        string            `json:"status"`
	PaymentStatus string            `json:"payment_status"`
	PaymentError  string            `json:"payment_error,omitempty"`
	Price         float64           `json:"price"`
	Breakdown     BreakdownInfo     `json:"breakdown"`
	Region        RegionInfo        `json:"region"`
	Refunded      float64           `json:"refunded_amount,omitempty"`
	Rating        int               `json:"rating,omitempty"`
	Review        string            `json:"review,omitempty"`
	CancelReason  string            `json:"cancel_reason,omitempty"`
	Timestamps    map[string]string `json:"timestamps"`
}

// BreakdownInfo mirrors the itemized price for billing display.
type BreakdownInfo struct {
	Items    []LineItemInfo `json:"items"`
	Subtotal float64        `json:"subtotal"`
	Total    float64        `json:"total"`
}

// LineItemInfo is one named price component.
type LineItemInfo struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// RegionInfo describes the resolved route.
type RegionInfo struct {
	PickupRegion      string  `json:"pickup_region,omitempty"`
	DestinationRegion string  `json:"destination_region,omitempty"`
	BothHomeRegion    bool    `json:"both_home_region"`
	RegionsOut        int     `json:"regions_out"`
	DistanceMiles     float64 `json:"distance_miles"`
	DistanceEstimated bool    `json:"distance_estimated,omitempty"`
}

func toTripResponse(trip *domain.Trip) TripResponse {
	items := make([]LineItemInfo, 0, len(trip.Breakdown.Items))
	for _, it := range trip.Breakdown.Items {
		items = append(items, LineItemInfo{Name: it.Name, Amount: it.Amount})
	}

	timestamps := map[string]string{
		"created_at": fmtTime(trip.CreatedAt),
	}
	addTime(timestamps, "approved_at", trip.ApprovedAt)
	addTime(timestamps, "charged_at", trip.ChargedAt)
	addTime(timestamps, "cancelled_at", trip.CancelledAt)
	addTime(timestamps, "completed_at", trip.CompletedAt)
	addTime(timestamps, "rated_at", trip.RatedAt)

	return TripResponse{
		TripID:        trip.ID,
		ClientID:      trip.ClientID,
		DriverID:      trip.DriverID,
		Status:        string(trip.Status),
		PaymentStatus: string(trip.PaymentStatus),
		PaymentError:  trip.PaymentFailureReason,
		Price:         trip.Price,
		Breakdown: BreakdownInfo{
			Items:    items,
			Subtotal: trip.Breakdown.Subtotal,
			Total:    trip.Breakdown.Total,
		},
		Region: RegionInfo{
			PickupRegion:      trip.Region.PickupRegion,
			DestinationRegion: trip.Region.DestinationRegion,
			BothHomeRegion:    trip.Region.BothHomeRegion,
			RegionsOut:        trip.Region.RegionsOut,
			DistanceMiles:     trip.Region.DistanceMiles,
			DistanceEstimated: trip.Region.DistanceEstimated,
		},
		Refunded:     trip.RefundedAmount,
		Rating:       trip.Rating,
		Review:       trip.Review,
		CancelReason: trip.CancelReason,
		Timestamps:   timestamps,
	}
}

func fmtTime(t time.Time) string {
	return t.Format("2006-01-02T15:04:05Z07:00")
}

func addTime(m map[string]string, key string, t time.Time) {
	if !t.IsZero() {
		m[key] = fmtTime(t)
	}
}

// CreateTrip handles POST /v1/trips
func (h *TripHandler) CreateTrip(c *gin.Context) {
	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	actor := middleware.ActorFrom(c)

	trip, err := h.tripService.CreateTrip(c.Request.Context(), service.CreateTripInput{
		ClientID: actor.ID,
		Request:  req.toDomain(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toTripResponse(trip))
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripService.GetTrip(c.Request.Context(), c.Param("id"), middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// GetAll handles GET /v1/trips
func (h *TripHandler) GetAll(c *gin.Context) {
	trips, err := h.tripService.ListTrips(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		response = append(response, toTripResponse(trip))
	}

	respondJSON(c, http.StatusOK, response)
}

// Approve handles POST /v1/trips/:id/approve
func (h *TripHandler) Approve(c *gin.Context) {
	trip, err := h.tripService.Approve(c.Request.Context(), c.Param("id"), middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// RetryPayment handles POST /v1/trips/:id/retry-payment
func (h *TripHandler) RetryPayment(c *gin.Context) {
	trip, err := h.tripService.RetryPayment(c.Request.Context(), c.Param("id"), middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// MarkInProgress handles POST /v1/trips/:id/start
func (h *TripHandler) MarkInProgress(c *gin.Context) {
	trip, err := h.tripService.MarkInProgress(c.Request.Context(), c.Param("id"), middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// Complete handles POST /v1/trips/:id/complete
func (h *TripHandler) Complete(c *gin.Context) {
	trip, err := h.tripService.Complete(c.Request.Context(), c.Param("id"), middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// RateRequest is the HTTP request body for rating a completed trip.
type RateRequest struct {
	Rating int    `json:"rating" binding:"required"`
	Review string `json:"review"`
}

// Rate handles POST /v1/trips/:id/rate
func (h *TripHandler) Rate(c *gin.Context) {
	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	trip, err := h.tripService.Rate(c.Request.Context(), c.Param("id"), middleware.ActorFrom(c), req.Rating, req.Review)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// CancelRequest is the HTTP request body for cancelling a trip.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// Cancel handles POST /v1/trips/:id/cancel
func (h *TripHandler) Cancel(c *gin.Context) {
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	trip, err := h.tripService.Cancel(c.Request.Context(), c.Param("id"), middleware.ActorFrom(c), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}
