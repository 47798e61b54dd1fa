package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/promopay/promopay/internal/server/http/dto"
)

// AdminHandler exposes the arbitration surface.
type AdminHandler struct {
	facade AdminFacade
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(facade AdminFacade) *AdminHandler {
	return &AdminHandler{facade: facade}
}

// Contested handles GET /api/admin/contested.
func (h *AdminHandler) Contested(c *gin.Context) {
	orders, err := h.facade.ContestedOrders(c.Request.Context())
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}

	c.JSON(http.StatusOK, response)
}

// Arbitrate handles POST /api/admin/orders/:id/arbitrate.
func (h *AdminHandler) Arbitrate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	var req dto.ArbitrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if req.Decision != dto.DecisionFavorInfluencer && req.Decision != dto.DecisionFavorMerchant {
		respondError(c, http.StatusUnprocessableEntity, "UNKNOWN_DECISION")
		return
	}

	order, err := h.facade.Arbitrate(c.Request.Context(), id, req.Decision == dto.DecisionFavorInfluencer, CurrentActor(c), req.Text)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(*order))
}
