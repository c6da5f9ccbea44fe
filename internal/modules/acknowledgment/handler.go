package acknowledgment

import (
	"errors"
	"net/http"
	"strconv"

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
	rg.POST("/bookings/:id/acknowledgments", h.Acknowledge)
	rg.GET("/bookings/:id/acknowledgments", h.ListByBooking)
	rg.GET("/acknowledgments/:id/verify", h.Verify)
}

func (h *Handler) Acknowledge(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	var req AcknowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid acknowledgment request", fields)
		return
	}

	ack, err := h.service.Acknowledge(c.Request.Context(), bookingID, req, reqctx.Actor(c), reqctx.Meta(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Referenced audit entry not found")
		case errors.Is(err, ErrAuditEntryMismatch):
			response.Error(c, http.StatusConflict, "AUDIT_ENTRY_MISMATCH", "Audit entry belongs to a different booking")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to store acknowledgment")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"acknowledgment": ack})
}

func (h *Handler) ListByBooking(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	out, err := h.service.ListByBooking(c.Request.Context(), bookingID, limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list acknowledgments")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"acknowledgments": out})
}

func (h *Handler) Verify(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid acknowledgment ID")
		return
	}

	result, err := h.service.Verify(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Acknowledgment not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Verification failed")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"verification": result})
}
