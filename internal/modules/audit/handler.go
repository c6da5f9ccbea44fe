package audit

import (
	"net/http"
	"strconv"

	"weddinghub/internal/domain"
	"weddinghub/internal/pkg/response"
	"weddinghub/internal/repository"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	recorder *Recorder
}

func NewHandler(recorder *Recorder) *Handler {
	return &Handler{recorder: recorder}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/bookings/:id/audit", h.List)
}

func (h *Handler) List(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := repository.ListFilter{
		Action:             domain.AuditAction(c.Query("action_type")),
		InvolvesClientOnly: c.Query("involves_client") == "true",
	}

	entries, err := h.recorder.List(c.Request.Context(), bookingID, filter, limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list audit entries")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"entries": entries})
}
