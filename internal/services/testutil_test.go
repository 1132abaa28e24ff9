package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Smear6uard/CloseOut/internal/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// The production schema relies on postgres-only defaults (gen_random_uuid,
// jsonb), so tests create the tables directly. Services set all ids
// explicitly and never depend on column defaults.
var testSchema = []string{
	`CREATE TABLE users (
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
	)`,
	`CREATE TABLE projects (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		address TEXT,
		description TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE punch_items (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		status TEXT NOT NULL DEFAULT 'open',
		priority TEXT NOT NULL DEFAULT 'medium',
		trade TEXT NOT NULL,
		location TEXT,
		assigned_to TEXT,
		due_date DATETIME,
		defect_photo_url TEXT,
		completion_photo_url TEXT,
		ai_tags TEXT,
		ai_comparison_result TEXT,
		completed_at DATETIME,
		verified_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE activity_logs (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		punch_item_id TEXT,
		user_id TEXT NOT NULL,
		action TEXT NOT NULL,
		details TEXT,
		created_at DATETIME
	)`,
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	for _, stmt := range testSchema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create test schema: %v", err)
		}
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, tokenIdentifier string) *models.User {
	t.Helper()

	user := models.User{
		ID:                 uuid.New(),
		TokenIdentifier:    tokenIdentifier,
		Email:              tokenIdentifier + "@example.com",
		Plan:               models.PlanFree,
		PunchItemLimit:     models.PlanLimitTable[models.PlanFree].PunchItemsPerMonth,
		CurrentPeriodStart: time.Now(),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &user
}

func seedProject(t *testing.T, db *gorm.DB, userID uuid.UUID, name string) *models.Project {
	t.Helper()

	project := models.Project{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
		Status: models.ProjectActive,
	}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return &project
}

// fakeAnnotator records dispatch calls so tests can assert on them without a
// real worker.
type fakeAnnotator struct {
	classified []uuid.UUID
	compared   []uuid.UUID
}

func (f *fakeAnnotator) DispatchClassify(punchItemID uuid.UUID, _ string) {
	f.classified = append(f.classified, punchItemID)
}

func (f *fakeAnnotator) DispatchCompare(punchItemID uuid.UUID, _, _ string) {
	f.compared = append(f.compared, punchItemID)
}

func newPunchItemFixture(t *testing.T) (*gorm.DB, *PunchItemService, *fakeAnnotator, *models.User, *models.Project) {
	t.Helper()

	db := newTestDB(t)
	annotator := &fakeAnnotator{}
	svc := NewPunchItemService(db, NewAuthzService(db), annotator)
	user := seedUser(t, db, "user|owner")
	project := seedProject(t, db, user.ID, "Main St Renovation")
	return db, svc, annotator, user, project
}
