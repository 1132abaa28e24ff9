package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Smear6uard/CloseOut/internal/config"
	"github.com/Smear6uard/CloseOut/internal/dto"
	"github.com/Smear6uard/CloseOut/internal/models"
	"github.com/Smear6uard/CloseOut/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// maxWebhookAge is the accepted clock skew between the webhook-timestamp
// header and server time, in either direction.
const maxWebhookAge = 300 * time.Second

type WebhookHandler struct {
	billing *services.BillingService
	cfg     *config.Config
}

func NewWebhookHandler(billing *services.BillingService, cfg *config.Config) *WebhookHandler {
	return &WebhookHandler{billing: billing, cfg: cfg}
}

// HandlePolar processes Polar subscription lifecycle events delivered in the
// Standard Webhooks format. Unknown event types are acknowledged with 200 so
// Polar does not retry them.
func (h *WebhookHandler) HandlePolar(c *fiber.Ctx) error {
	if h.cfg.PolarWebhookSecret == "" {
		slog.Error("polar webhook received but POLAR_WEBHOOK_SECRET is not set")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Webhook secret not configured",
		})
	}

	webhookID := c.Get("webhook-id")
	webhookTimestamp := c.Get("webhook-timestamp")
	webhookSignature := c.Get("webhook-signature")
	if webhookID == "" || webhookTimestamp == "" || webhookSignature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Missing webhook headers",
		})
	}

	ts, err := strconv.ParseInt(webhookTimestamp, 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid webhook timestamp",
		})
	}
	age := time.Since(time.Unix(ts, 0))
	if age < 0 {
		age = -age
	}
	if age > maxWebhookAge {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Webhook timestamp outside tolerance",
		})
	}

	body := c.Body()
	ok, err := verifyWebhookSignature(h.cfg.PolarWebhookSecret, webhookID, webhookTimestamp, body, webhookSignature)
	if err != nil {
		slog.Error("polar webhook secret is malformed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Webhook secret not configured",
		})
	}
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid webhook signature",
		})
	}

	var event dto.PolarWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid webhook payload",
		})
	}

	switch event.Type {
	case "subscription.created", "subscription.updated":
		return h.applySubscription(c, &event, true)
	case "subscription.canceled", "subscription.revoked":
		return h.applySubscription(c, &event, false)
	default:
		slog.Info("ignoring polar webhook event", "type", event.Type)
		return c.SendString("OK")
	}
}

func (h *WebhookHandler) applySubscription(c *fiber.Ctx, event *dto.PolarWebhookEvent, active bool) error {
	rawUserID, ok := event.Data.Metadata["convexUserId"]
	if !ok || rawUserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Missing user metadata",
		})
	}
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user metadata",
		})
	}

	plan := models.PlanFree
	var subscriptionID *string
	if active {
		if event.Data.Status == "active" {
			plan = h.billing.PlanFromProduct(event.Data.ProductID)
		}
		subscriptionID = &event.Data.ID
	}

	if err := h.billing.ApplySubscriptionChange(userID, plan, event.Data.CustomerID, subscriptionID); err != nil {
		slog.Error("failed to apply subscription change",
			"event", event.Type, "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process webhook",
		})
	}

	slog.Info("applied polar subscription event",
		"event", event.Type, "user_id", userID, "plan", plan)
	return c.SendString("OK")
}

// verifyWebhookSignature checks the Standard Webhooks HMAC-SHA256 signature.
// The secret is base64 after an optional "whsec_" prefix; the signed content
// is "{id}.{timestamp}.{body}" and the header may carry multiple
// space-separated candidates of the form "v1,<base64 mac>".
func verifyWebhookSignature(secret, id, timestamp string, body []byte, sigHeader string) (bool, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, "whsec_"))
	if err != nil {
		return false, err
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(id + "." + timestamp + "."))
	mac.Write(body)
	expected := "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))

	for _, candidate := range strings.Fields(sigHeader) {
		if hmac.Equal([]byte(candidate), []byte(expected)) {
			return true, nil
		}
	}
	return false, nil
}
