package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/promopay/promopay/internal/server/http/dto"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw webhook body.
const SignatureHeader = "X-Provider-Signature"

// WebhookHandler ingests payment provider callbacks.
type WebhookHandler struct {
	facade WebhookFacade
	secret string
}

// NewWebhookHandler constructs WebhookHandler. An empty secret disables
// signature verification.
func NewWebhookHandler(facade WebhookFacade, secret string) *WebhookHandler {
	return &WebhookHandler{facade: facade, secret: secret}
}

// ProviderEvent handles POST /api/webhooks/payment.
func (h *WebhookHandler) ProviderEvent(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if h.secret != "" && !h.verify(body, c.GetHeader(SignatureHeader)) {
		c.Status(http.StatusUnauthorized)
		return
	}

	var req dto.ProviderEventRequest
	if err := json.Unmarshal(body, &req); err != nil || req.ID == "" || req.Type == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := h.facade.HandleProviderEvent(c.Request.Context(), req.ID, req.Type, req.AuthorizationID); err != nil {
		respondDomainError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

func (h *WebhookHandler) verify(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(bytes.TrimSpace(body))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
