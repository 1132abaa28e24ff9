package services

import (
	"testing"
	"time"

	"github.com/Smear6uard/CloseOut/internal/dto"
	"github.com/Smear6uard/CloseOut/internal/models"
)

func TestSyncCreatesNewUserOnFreePlan(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	user, err := svc.Sync("user|new", &dto.SyncUserRequest{Email: "new@example.com", Name: "New User"})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if user.Plan != models.PlanFree {
		t.Errorf("plan = %q, want free", user.Plan)
	}
	if user.PunchItemLimit != models.PlanLimitTable[models.PlanFree].PunchItemsPerMonth {
		t.Errorf("limit = %d, want %d", user.PunchItemLimit, models.PlanLimitTable[models.PlanFree].PunchItemsPerMonth)
	}
	if user.CurrentPeriodStart.IsZero() {
		t.Error("period start not set")
	}
}

func TestSyncUpdatesProfileWithoutTouchingBilling(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	existing := seedUser(t, db, "user|existing")
	if err := db.Model(&models.User{}).Where("id = ?", existing.ID).Updates(map[string]interface{}{
		"plan":             models.PlanPro,
		"punch_item_limit": models.PlanLimitTable[models.PlanPro].PunchItemsPerMonth,
	}).Error; err != nil {
		t.Fatalf("upgrade user: %v", err)
	}

	user, err := svc.Sync("user|existing", &dto.SyncUserRequest{Email: "renamed@example.com", Name: "Renamed"})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if user.ID != existing.ID {
		t.Errorf("Sync created a second user: %s != %s", user.ID, existing.ID)
	}
	if user.Email != "renamed@example.com" || user.Name != "Renamed" {
		t.Errorf("profile not refreshed: %+v", user)
	}
	if user.Plan != models.PlanPro {
		t.Errorf("plan = %q, sync must not touch billing", user.Plan)
	}
}

func TestSyncRejectsEmptyIdentifier(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	if _, err := svc.Sync("", &dto.SyncUserRequest{Email: "x@example.com"}); err != ErrNotAuthenticated {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
}

func TestUsageReportsZeroAfterPeriodLapse(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	user := seedUser(t, db, "user|usage")
	user.PunchItemsCreatedThisMonth = 12

	usage := svc.Usage(user)
	if usage.PunchItemsCreatedThisMonth != 12 {
		t.Errorf("count = %d, want 12", usage.PunchItemsCreatedThisMonth)
	}

	user.CurrentPeriodStart = time.Now().Add(-31 * 24 * time.Hour)
	usage = svc.Usage(user)
	if usage.PunchItemsCreatedThisMonth != 0 {
		t.Errorf("count = %d after lapsed period, want 0", usage.PunchItemsCreatedThisMonth)
	}
	if usage.PunchItemLimit != user.PunchItemLimit {
		t.Errorf("limit = %d, want %d", usage.PunchItemLimit, user.PunchItemLimit)
	}
}
