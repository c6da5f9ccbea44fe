package escrow

import (
	"errors"
	"net/http"
	"strconv"

	"weddinghub/internal/gateway"
	"weddinghub/internal/pkg/reqctx"
	"weddinghub/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings/:id/escrow/release", h.Release)
	rg.GET("/bookings/:id/escrow/releases", h.ListReleases)
}

// RegisterAdminRoutes holds the refund path: returning held funds to the
// client overrides the vendor's claim, so only operators may trigger it.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings/:id/escrow/refund", h.Refund)
}

type transitionRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) Release(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	var req transitionRequest
	_ = c.ShouldBindJSON(&req)

	rel, err := h.service.Release(c.Request.Context(), id, reqctx.Actor(c), req.Reason, reqctx.Meta(c))
	if err != nil {
		h.writeTransitionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"release": rel})
}

func (h *Handler) Refund(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	var req transitionRequest
	_ = c.ShouldBindJSON(&req)

	b, err := h.service.Refund(c.Request.Context(), id, reqctx.Actor(c), req.Reason, reqctx.Meta(c))
	if err != nil {
		h.writeTransitionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) ListReleases(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	out, err := h.service.ListReleases(c.Request.Context(), id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list escrow releases")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"releases": out})
}

// Money-moving failures must say whether funds are known-unmoved (safe to
// retry) or unknown (reconcile first), never a generic error.
func (h *Handler) writeTransitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, ErrAlreadyFinalized):
		response.Error(c, http.StatusConflict, "ALREADY_FINALIZED", "Escrow is already in a terminal state")
	case errors.Is(err, gateway.ErrRejected):
		response.Error(c, http.StatusPaymentRequired, "GATEWAY_REJECTED", "Transfer was rejected; no funds moved")
	case errors.Is(err, ErrTransferFailed):
		response.Error(c, http.StatusBadGateway, "TRANSFER_FAILED", "Transfer outcome unknown; escrow stays held and the operation is safe to retry")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Escrow transition failed")
	}
}
