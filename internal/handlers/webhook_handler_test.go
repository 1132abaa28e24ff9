package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/Smear6uard/CloseOut/internal/config"
	"github.com/Smear6uard/CloseOut/internal/models"
	"github.com/Smear6uard/CloseOut/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testWebhookKey = "closeout-webhook-test-key"

func testWebhookSecret() string {
	return "whsec_" + base64.StdEncoding.EncodeToString([]byte(testWebhookKey))
}

func newWebhookFixture(t *testing.T) (*fiber.App, *gorm.DB, *models.User) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.Exec(`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		token_identifier TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL,
		name TEXT,
		image_url TEXT,
		plan TEXT NOT NULL DEFAULT 'free',
		punch_item_limit INTEGER NOT NULL DEFAULT 25,
		punch_items_created_this_month INTEGER NOT NULL DEFAULT 0,
		current_period_start DATETIME NOT NULL,
		polar_customer_id TEXT,
		polar_subscription_id TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error; err != nil {
		t.Fatalf("create users table: %v", err)
	}

	user := models.User{
		ID:                 uuid.New(),
		TokenIdentifier:    "user|webhook",
		Email:              "webhook@example.com",
		Plan:               models.PlanFree,
		PunchItemLimit:     models.PlanLimitTable[models.PlanFree].PunchItemsPerMonth,
		CurrentPeriodStart: time.Now(),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	cfg := &config.Config{
		PolarWebhookSecret: testWebhookSecret(),
		PolarProProductID:  "prod_pro",
		PolarTeamProductID: "prod_team",
	}
	handler := NewWebhookHandler(services.NewBillingService(db, cfg), cfg)

	app := fiber.New()
	app.Post("/api/webhook/polar", handler.HandlePolar)
	return app, db, &user
}

func signPayload(id, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookKey))
	fmt.Fprintf(mac, "%s.%s.", id, timestamp)
	mac.Write(body)
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func signedRequest(t *testing.T, body []byte) *http.Request {
	t.Helper()

	id := "msg_" + uuid.NewString()
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/polar", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("webhook-id", id)
	req.Header.Set("webhook-timestamp", ts)
	req.Header.Set("webhook-signature", signPayload(id, ts, body))
	return req
}

func subscriptionEvent(t *testing.T, eventType, status, productID string, userID uuid.UUID) []byte {
	t.Helper()

	body, err := json.Marshal(map[string]interface{}{
		"type": eventType,
		"data": map[string]interface{}{
			"id":          "sub_123",
			"product_id":  productID,
			"customer_id": "cus_456",
			"status":      status,
			"metadata":    map[string]string{"convexUserId": userID.String()},
		},
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return body
}

func TestHandlePolarRejectsMissingHeaders(t *testing.T) {
	app, _, user := newWebhookFixture(t)

	body := subscriptionEvent(t, "subscription.created", "active", "prod_pro", user.ID)
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/polar", bytes.NewReader(body))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandlePolarRejectsStaleTimestamp(t *testing.T) {
	app, _, user := newWebhookFixture(t)

	body := subscriptionEvent(t, "subscription.created", "active", "prod_pro", user.ID)
	id := "msg_stale"
	ts := strconv.FormatInt(time.Now().Add(-301*time.Second).Unix(), 10)
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/polar", bytes.NewReader(body))
	req.Header.Set("webhook-id", id)
	req.Header.Set("webhook-timestamp", ts)
	req.Header.Set("webhook-signature", signPayload(id, ts, body))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandlePolarRejectsTamperedBody(t *testing.T) {
	app, _, user := newWebhookFixture(t)

	body := subscriptionEvent(t, "subscription.created", "active", "prod_pro", user.ID)
	id := "msg_tampered"
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	tampered := bytes.Replace(body, []byte("prod_pro"), []byte("prod_team"), 1)
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/polar", bytes.NewReader(tampered))
	req.Header.Set("webhook-id", id)
	req.Header.Set("webhook-timestamp", ts)
	req.Header.Set("webhook-signature", signPayload(id, ts, body))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
}

func TestHandlePolarAppliesActiveSubscription(t *testing.T) {
	app, db, user := newWebhookFixture(t)

	body := subscriptionEvent(t, "subscription.created", "active", "prod_pro", user.ID)
	resp, err := app.Test(signedRequest(t, body))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var reloaded models.User
	if err := db.First(&reloaded, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.Plan != models.PlanPro {
		t.Errorf("plan = %q, want pro", reloaded.Plan)
	}
	if reloaded.PolarSubscriptionID == nil || *reloaded.PolarSubscriptionID != "sub_123" {
		t.Errorf("subscription id = %v, want sub_123", reloaded.PolarSubscriptionID)
	}
	if reloaded.PolarCustomerID == nil || *reloaded.PolarCustomerID != "cus_456" {
		t.Errorf("customer id = %v, want cus_456", reloaded.PolarCustomerID)
	}
}

func TestHandlePolarReplayIsIdempotent(t *testing.T) {
	app, db, user := newWebhookFixture(t)

	body := subscriptionEvent(t, "subscription.created", "active", "prod_pro", user.ID)
	for i := 0; i < 2; i++ {
		resp, err := app.Test(signedRequest(t, body))
		if err != nil {
			t.Fatalf("app.Test #%d: %v", i+1, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status #%d = %d, want 200", i+1, resp.StatusCode)
		}
	}

	var reloaded models.User
	if err := db.First(&reloaded, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.Plan != models.PlanPro {
		t.Errorf("plan = %q after replay, want pro", reloaded.Plan)
	}
}

func TestHandlePolarCancelDowngradesToFree(t *testing.T) {
	app, db, user := newWebhookFixture(t)

	created := subscriptionEvent(t, "subscription.created", "active", "prod_team", user.ID)
	if resp, err := app.Test(signedRequest(t, created)); err != nil || resp.StatusCode != fiber.StatusOK {
		t.Fatalf("create event failed: %v status=%v", err, resp)
	}

	canceled := subscriptionEvent(t, "subscription.canceled", "canceled", "prod_team", user.ID)
	resp, err := app.Test(signedRequest(t, canceled))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var reloaded models.User
	if err := db.First(&reloaded, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.Plan != models.PlanFree {
		t.Errorf("plan = %q after cancel, want free", reloaded.Plan)
	}
	if reloaded.PolarSubscriptionID != nil {
		t.Errorf("subscription id = %v after cancel, want nil", reloaded.PolarSubscriptionID)
	}
	if reloaded.PolarCustomerID == nil || *reloaded.PolarCustomerID != "cus_456" {
		t.Errorf("customer id = %v after cancel, want cus_456 retained", reloaded.PolarCustomerID)
	}
}

func TestHandlePolarIgnoresUnknownEventType(t *testing.T) {
	app, db, user := newWebhookFixture(t)

	body := subscriptionEvent(t, "order.created", "active", "prod_pro", user.ID)
	resp, err := app.Test(signedRequest(t, body))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	var reloaded models.User
	if err := db.First(&reloaded, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.Plan != models.PlanFree {
		t.Errorf("plan = %q, unknown event must not change state", reloaded.Plan)
	}
}

func TestHandlePolarRejectsMissingMetadata(t *testing.T) {
	app, _, _ := newWebhookFixture(t)

	body, err := json.Marshal(map[string]interface{}{
		"type": "subscription.created",
		"data": map[string]interface{}{
			"id":          "sub_123",
			"product_id":  "prod_pro",
			"customer_id": "cus_456",
			"status":      "active",
		},
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}

	resp, err := app.Test(signedRequest(t, body))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	secret := testWebhookSecret()
	body := []byte(`{"type":"subscription.created"}`)
	sig := signPayload("msg_1", "1700000000", body)

	ok, err := verifyWebhookSignature(secret, "msg_1", "1700000000", body, sig)
	if err != nil || !ok {
		t.Fatalf("valid signature rejected: ok=%v err=%v", ok, err)
	}

	ok, err = verifyWebhookSignature(secret, "msg_1", "1700000000", body, "v1,bogus "+sig)
	if err != nil || !ok {
		t.Fatalf("multi-candidate header rejected: ok=%v err=%v", ok, err)
	}

	ok, err = verifyWebhookSignature(secret, "msg_2", "1700000000", body, sig)
	if err != nil || ok {
		t.Fatalf("signature for other id accepted: ok=%v err=%v", ok, err)
	}

	if _, err := verifyWebhookSignature("whsec_%%notbase64%%", "msg_1", "1700000000", body, sig); err == nil {
		t.Fatal("malformed secret did not error")
	}
}
