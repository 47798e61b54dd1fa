package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/promopay/promopay/internal/adapter/payment"
	domainErrors "github.com/promopay/promopay/internal/domain/errors"
	"github.com/promopay/promopay/internal/domain/model"
	"github.com/promopay/promopay/internal/server/http/dto"
	"github.com/promopay/promopay/internal/server/http/middleware"
)

// CurrentActor extracts the authenticated actor from context.
func CurrentActor(c *gin.Context) model.Actor {
	var actor model.Actor
	if val, ok := c.Get(middleware.ActorIDContextKey); ok {
		actor.UserID, _ = val.(int64)
	}
	if val, ok := c.Get(middleware.ActorRoleContextKey); ok {
		role, _ := val.(string)
		actor.Role = model.Role(role)
	}
	return actor
}

func respondError(c *gin.Context, status int, code string) {
	c.JSON(status, dto.ErrorResponse{Error: code})
}

// respondDomainError maps domain errors to HTTP statuses with a typed body.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND")
	case errors.Is(err, domainErrors.ErrNotYourOrder):
		respondError(c, http.StatusForbidden, "NOT_YOUR_ORDER")
	case errors.Is(err, domainErrors.ErrInvalidState):
		respondError(c, http.StatusConflict, "INVALID_STATE")
	case errors.Is(err, domainErrors.ErrAlreadyResolved):
		respondError(c, http.StatusConflict, "ALREADY_RESOLVED")
	case errors.Is(err, domainErrors.ErrStaleOrder):
		respondError(c, http.StatusConflict, "CONCURRENT_UPDATE")
	case errors.Is(err, domainErrors.ErrDeadlineNotReached):
		respondError(c, http.StatusConflict, "DEADLINE_NOT_REACHED")
	case errors.Is(err, domainErrors.ErrEvidenceRequired):
		respondError(c, http.StatusUnprocessableEntity, "EVIDENCE_REQUIRED")
	case errors.Is(err, domainErrors.ErrInvalidAmount):
		respondError(c, http.StatusUnprocessableEntity, "INVALID_ORDER")
	case errors.Is(err, domainErrors.ErrInvalidRole):
		respondError(c, http.StatusUnprocessableEntity, "INVALID_ROLE")
	case errors.Is(err, payment.ErrAuthorizationExpired):
		respondError(c, http.StatusBadGateway, "AUTHORIZATION_EXPIRED")
	case errors.Is(err, payment.ErrAlreadyCaptured):
		respondError(c, http.StatusConflict, "ALREADY_CAPTURED")
	default:
		respondError(c, http.StatusInternalServerError, "INTERNAL")
	}
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:              order.ID.String(),
		MerchantID:      order.MerchantID,
		InfluencerID:    order.InfluencerID,
		Title:           order.Title,
		Description:     order.Description,
		DeliveryDays:    order.DeliveryDays,
		TotalAmount:     order.TotalAmount,
		CommissionRate:  order.CommissionRate,
		NetAmount:       order.NetAmount,
		PlatformFee:     order.PlatformFee(),
		Status:          string(order.Status),
		CreatedAt:       order.CreatedAt,
		AcceptedAt:      order.AcceptedAt,
		DeliveredAt:     order.DeliveredAt,
		CompletedAt:     order.CompletedAt,
		ContestedAt:     order.ContestedAt,
		Evidence:        order.Evidence,
		AdminDecision:   order.AdminDecision,
		AdminDecisionAt: order.AdminDecisionAt,
	}
}
