package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"devhub/internal/reconcile"
	"devhub/internal/transport/http/middleware"
	"devhub/internal/webhook"
)

// WebhookHandler receives identity-provider callbacks.
//
// Failure taxonomy matters here: transport/authenticity problems (missing
// headers, bad body, bad signature) are client errors, anything that goes
// wrong after verification is a server error. The provider retries 5xx on
// its side; we never retry ourselves.
type WebhookHandler struct {
	secret          string
	verifier        webhook.Verifier
	clerkConfigured bool
	svc             *reconcile.Service
	log             *zap.Logger
}

func NewWebhookHandler(secret string, verifier webhook.Verifier, clerkConfigured bool, svc *reconcile.Service, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		secret:          secret,
		verifier:        verifier,
		clerkConfigured: clerkConfigured,
		svc:             svc,
		log:             log,
	}
}

func (h *WebhookHandler) MountAPI(g *gin.RouterGroup) {
	g.GET("/webhooks/clerk", h.Probe)
	g.POST("/webhooks/clerk", h.Handle)
}

// Probe answers configuration diagnostics for webhook setup. No side effects.
func (h *WebhookHandler) Probe(c *gin.Context) {
	message := "Webhook secret not configured. For local testing, expose this port with a tunnel and configure the webhook in the Clerk dashboard"
	if h.secret != "" {
		message = "Webhook secret is configured. Ready to receive events."
	}
	c.JSON(http.StatusOK, gin.H{
		"status":                  "ok",
		"endpoint":                "/api/v1/webhooks/clerk",
		"webhookSecretConfigured": h.secret != "",
		"clerkConfigured":         h.clerkConfigured,
		"message":                 message,
		"troubleshooting": gin.H{
			"checkWebhookUrl": "Verify the webhook URL in the Clerk dashboard matches your tunnel URL",
			"checkTunnel":     "Ensure the tunnel is running and forwarding to the api port",
			"checkSecret":     "Verify APP_CLERK_WEBHOOKSECRET matches the signing secret from the dashboard",
			"testSignUp":      "Create a new user via sign-up and watch the api logs for webhook deliveries",
		},
		"instructions": gin.H{
			"local": []string{
				"1. Expose the api port with a tunnel",
				"2. Add the tunnel URL + /api/v1/webhooks/clerk as a webhook endpoint in the Clerk dashboard",
				"3. Subscribe to user.created, user.updated, user.deleted",
				"4. Copy the signing secret into the clerk.webhooksecret config key",
				"5. Restart the api and create a user via sign-up",
			},
			"production": "Configure the webhook in the Clerk dashboard with the production endpoint URL",
		},
	})
}

func (h *WebhookHandler) Handle(c *gin.Context) {
	if h.secret == "" || h.verifier == nil {
		h.log.Error("webhook rejected: signing secret not configured")
		c.String(http.StatusInternalServerError, "Webhook secret not configured")
		return
	}

	hdrs := webhook.Headers{
		ID:        c.GetHeader(webhook.HeaderID),
		Timestamp: c.GetHeader(webhook.HeaderTimestamp),
		Signature: c.GetHeader(webhook.HeaderSignature),
	}
	if hdrs.ID == "" || hdrs.Timestamp == "" || hdrs.Signature == "" {
		// Not a genuine provider callback; drop it.
		h.log.Warn("webhook rejected: missing svix headers")
		c.String(http.StatusBadRequest, "Missing svix headers")
		return
	}

	body, err := c.GetRawData()
	if err != nil || !json.Valid(body) {
		h.log.Warn("webhook rejected: unreadable or non-JSON body", zap.Error(err))
		c.String(http.StatusBadRequest, "Invalid request body")
		return
	}

	evt, err := h.verifier.Verify(body, hdrs)
	if err != nil {
		h.log.Warn("webhook rejected: verification failed", zap.Error(err))
		c.String(http.StatusBadRequest, "Invalid signature")
		return
	}

	if err := h.svc.HandleEvent(c.Request.Context(), evt); err != nil {
		middleware.CountWebhookEvent(evt.Type, "failed")
		h.log.Error("webhook processing failed", zap.String("type", evt.Type), zap.Error(err))
		c.String(http.StatusInternalServerError, "Webhook processing failed")
		return
	}
	middleware.CountWebhookEvent(evt.Type, "processed")
	c.String(http.StatusOK, "Webhook processed")
}
