package services

import (
	"errors"
	"testing"

	"github.com/Smear6uard/CloseOut/internal/dto"
	"github.com/Smear6uard/CloseOut/internal/models"
)

func newProjectFixture(t *testing.T) (*ProjectService, *PunchItemService, *models.User, *models.Project, *fakeAnnotator) {
	t.Helper()

	db := newTestDB(t)
	authz := NewAuthzService(db)
	annotator := &fakeAnnotator{}
	projectSvc := NewProjectService(db, authz)
	itemSvc := NewPunchItemService(db, authz, annotator)
	user := seedUser(t, db, "user|project-owner")
	project := seedProject(t, db, user.ID, "Harbor Tower")
	return projectSvc, itemSvc, user, project, annotator
}

func TestListCountsItemsByStatus(t *testing.T) {
	projectSvc, itemSvc, user, project, _ := newProjectFixture(t)

	open, err := itemSvc.Create(user, project.ID, &dto.CreatePunchItemRequest{Title: "Open item"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_ = open

	done, err := itemSvc.Create(user, project.ID, &dto.CreatePunchItemRequest{Title: "Done item"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := itemSvc.UpdateStatus(done.ID, user.ID, models.StatusComplete); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	projects, err := projectSvc.List(user.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("projects = %d, want 1", len(projects))
	}
	got := projects[0]
	if got.Total != 2 || got.Open != 1 || got.Completed != 1 {
		t.Errorf("counts = total %d open %d completed %d, want 2/1/1", got.Total, got.Open, got.Completed)
	}
}

func TestReportSummaryAndCompletionPercentage(t *testing.T) {
	projectSvc, itemSvc, user, project, _ := newProjectFixture(t)

	for i, status := range []string{models.StatusOpen, models.StatusComplete, models.StatusComplete} {
		item, err := itemSvc.Create(user, project.ID, &dto.CreatePunchItemRequest{Title: "Item", Trade: "Painting"})
		if err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
		if status != models.StatusOpen {
			if _, err := itemSvc.UpdateStatus(item.ID, user.ID, status); err != nil {
				t.Fatalf("UpdateStatus %d: %v", i, err)
			}
		}
	}

	report, err := projectSvc.Report(project.ID, user.ID)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if report.Summary.Total != 3 || report.Summary.Open != 1 || report.Summary.Complete != 2 {
		t.Errorf("summary = %+v, want total 3 open 1 complete 2", report.Summary)
	}
	if report.Summary.CompletionPercentage != 67 {
		t.Errorf("completion = %d%%, want 67", report.Summary.CompletionPercentage)
	}
	if len(report.ItemsByTrade["Painting"]) != 3 {
		t.Errorf("items by trade = %d, want 3", len(report.ItemsByTrade["Painting"]))
	}
}

func TestRemoveCascadesToItemsAndActivity(t *testing.T) {
	projectSvc, itemSvc, user, project, _ := newProjectFixture(t)

	item, err := itemSvc.Create(user, project.ID, &dto.CreatePunchItemRequest{Title: "Doomed item"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := projectSvc.Remove(project.ID, user.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	db := projectSvc.db
	var items, logs int64
	if err := db.Model(&models.PunchItem{}).Where("project_id = ?", project.ID).Count(&items).Error; err != nil {
		t.Fatalf("count items: %v", err)
	}
	if err := db.Model(&models.ActivityLog{}).Where("project_id = ?", project.ID).Count(&logs).Error; err != nil {
		t.Fatalf("count activity: %v", err)
	}
	if items != 0 || logs != 0 {
		t.Errorf("orphans after Remove: %d items, %d activity rows", items, logs)
	}
	if _, err := itemSvc.Get(item.ID, user.ID); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("Get deleted item err = %v, want ErrItemNotFound", err)
	}
}

func TestProjectAccessDeniedForNonOwner(t *testing.T) {
	projectSvc, _, _, project, _ := newProjectFixture(t)
	intruder := seedUser(t, projectSvc.db, "user|stranger")

	if _, err := projectSvc.Get(project.ID, intruder.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("Get err = %v, want ErrForbidden", err)
	}
	if err := projectSvc.Remove(project.ID, intruder.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("Remove err = %v, want ErrForbidden", err)
	}
}
