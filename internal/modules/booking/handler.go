package booking

import (
	"errors"
	"net/http"
	"strconv"

	"weddinghub/internal/domain"
	"weddinghub/internal/gateway"
	"weddinghub/internal/modules/commission"
	"weddinghub/internal/pkg/reqctx"
	"weddinghub/internal/pkg/response"
	"weddinghub/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.Create)
	rg.GET("/bookings", h.ListMine)
	rg.GET("/bookings/:id", h.GetByID)
	rg.PATCH("/bookings/:id/status", h.UpdateStatus)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking request", fields)
		return
	}

	clientID := c.GetInt64("user_id")
	b, err := h.service.Create(c.Request.Context(), clientID, req, reqctx.Actor(c), reqctx.Meta(c))
	if err != nil {
		switch {
		case errors.Is(err, commission.ErrInvalidAmount):
			response.Error(c, http.StatusBadRequest, "INVALID_AMOUNT", "Gross amount must be positive")
		case errors.Is(err, commission.ErrUnknownTier):
			response.Error(c, http.StatusUnprocessableEntity, "UNKNOWN_TIER", "Vendor tier has no commission rate")
		case errors.Is(err, ErrVendorNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Vendor not found")
		case errors.Is(err, gateway.ErrRejected):
			// Funds did not move; the request can be fixed and retried.
			response.Error(c, http.StatusPaymentRequired, "GATEWAY_REJECTED", "Charge was declined; no funds were taken")
		case errors.Is(err, gateway.ErrUnavailable):
			response.Error(c, http.StatusBadGateway, "GATEWAY_UNAVAILABLE", "Charge outcome unknown; retry with the same idempotency key")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create booking")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load booking")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) ListMine(c *gin.Context) {
	userID := c.GetInt64("user_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	var (
		out []domain.Booking
		err error
	)
	if c.GetString("role") == "vendor" {
		out, err = h.service.ListByVendor(c.Request.Context(), userID, limit, offset)
	} else {
		out, err = h.service.ListByClient(c.Request.Context(), userID, limit, offset)
	}
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list bookings")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bookings": out})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid status request", fields)
		return
	}

	b, err := h.service.UpdateStatus(c.Request.Context(), id, domain.BookingStatus(req.Status), req.Reason, reqctx.Actor(c), reqctx.Meta(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
		case errors.Is(err, ErrInvalidTransition):
			response.Error(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
		case errors.Is(err, ErrConcurrentModification):
			response.Error(c, http.StatusConflict, "CONCURRENT_MODIFICATION", "Booking changed concurrently; reload and retry")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update booking status")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}
