package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-review-backend/internal/domain"
)

func newJobRepoDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("job_repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(&domain.ReviewSource{}, &domain.SyncJob{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	seedSource(t, db, "s1", "b1")
	return db
}

func seedJob(t *testing.T, db *gorm.DB, id string, jt domain.JobType, st domain.JobStatus, createdAt time.Time) *domain.SyncJob {
	t.Helper()
	j := &domain.SyncJob{ID: id, SourceID: "s1", Type: jt, Status: st, CreatedAt: createdAt}
	if err := db.Create(j).Error; err != nil {
		t.Fatalf("seed job %s: %v", id, err)
	}
	return j
}

func TestCreateSyncJob_StartsPending(t *testing.T) {
	db := newJobRepoDB(t)

	j, err := CreateSyncJob(context.Background(), db, "s1", domain.JobTypeManual)
	if err != nil {
		t.Fatalf("CreateSyncJob: %v", err)
	}
	if j.ID == "" || j.Status != domain.JobStatusPending || j.Type != domain.JobTypeManual {
		t.Fatalf("unexpected job: %+v", j)
	}
	if j.FetchedCount != 0 || j.NewCount != 0 || j.UpdatedCount != 0 {
		t.Fatalf("counters must start at zero: %+v", j)
	}
}

func TestGetActiveJob_FindsNonTerminalOnly(t *testing.T) {
	db := newJobRepoDB(t)
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	seedJob(t, db, "done", domain.JobTypeScheduled, domain.JobStatusCompleted, base)
	seedJob(t, db, "dead", domain.JobTypeManual, domain.JobStatusFailed, base.Add(time.Hour))

	if _, err := GetActiveJob(context.Background(), db, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound with only terminal jobs, got %v", err)
	}

	seedJob(t, db, "run", domain.JobTypeManual, domain.JobStatusInProgress, base.Add(2*time.Hour))
	got, err := GetActiveJob(context.Background(), db, "s1")
	if err != nil {
		t.Fatalf("GetActiveJob: %v", err)
	}
	if got.ID != "run" {
		t.Fatalf("unexpected active job: %+v", got)
	}
}

func TestLastManualJob_ExcludesFailedAndOtherTypes(t *testing.T) {
	db := newJobRepoDB(t)
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	seedJob(t, db, "sched", domain.JobTypeScheduled, domain.JobStatusCompleted, base.Add(3*time.Hour))
	seedJob(t, db, "m-old", domain.JobTypeManual, domain.JobStatusCompleted, base)
	seedJob(t, db, "m-fail", domain.JobTypeManual, domain.JobStatusFailed, base.Add(2*time.Hour))

	// The newest counting manual job is m-old: the failed one is ignored,
	// and scheduled jobs never count against the manual cooldown.
	got, err := LastManualJob(context.Background(), db, "s1")
	if err != nil {
		t.Fatalf("LastManualJob: %v", err)
	}
	if got.ID != "m-old" {
		t.Fatalf("expected m-old, got %+v", got)
	}

	// With no counting manual job at all, ErrNotFound.
	if err := db.Unscoped().Delete(&domain.SyncJob{}, "id = ?", "m-old").Error; err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := LastManualJob(context.Background(), db, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestJobTransitions_AreGuarded(t *testing.T) {
	db := newJobRepoDB(t)
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	seedJob(t, db, "j1", domain.JobTypeManual, domain.JobStatusPending, now)

	// pending -> in_progress
	if err := MarkJobStarted(context.Background(), db, "j1", now.Add(time.Second)); err != nil {
		t.Fatalf("MarkJobStarted: %v", err)
	}
	var got domain.SyncJob
	if err := db.First(&got, "id = ?", "j1").Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Status != domain.JobStatusInProgress || got.StartedAt == nil {
		t.Fatalf("start not applied: %+v", got)
	}

	// Starting again is a no-op guarded by the WHERE clause.
	if err := MarkJobStarted(context.Background(), db, "j1", now.Add(2*time.Second)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double start, got %v", err)
	}

	// in_progress -> completed
	if err := MarkJobCompleted(context.Background(), db, "j1", now.Add(time.Minute)); err != nil {
		t.Fatalf("MarkJobCompleted: %v", err)
	}
	if err := db.First(&got, "id = ?", "j1").Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Status != domain.JobStatusCompleted || got.CompletedAt == nil {
		t.Fatalf("completion not applied: %+v", got)
	}

	// Terminal jobs never change again.
	if err := MarkJobFailed(context.Background(), db, "j1", "late failure", now.Add(2*time.Minute)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound failing a completed job, got %v", err)
	}
	if err := db.First(&got, "id = ?", "j1").Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Status != domain.JobStatusCompleted {
		t.Fatalf("terminal status must not change, got %s", got.Status)
	}
}

func TestMarkJobFailed_FromPendingAndRunning(t *testing.T) {
	db := newJobRepoDB(t)
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	// A pending job can fail directly (e.g. submission rejected).
	seedJob(t, db, "p1", domain.JobTypeManual, domain.JobStatusPending, now)
	if err := MarkJobFailed(context.Background(), db, "p1", "pool stopped", now); err != nil {
		t.Fatalf("MarkJobFailed(pending): %v", err)
	}
	var got domain.SyncJob
	if err := db.First(&got, "id = ?", "p1").Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Status != domain.JobStatusFailed || got.ErrorMessage == nil || *got.ErrorMessage != "pool stopped" {
		t.Fatalf("failure not recorded: %+v", got)
	}

	// A running job fails with its provider error.
	seedJob(t, db, "p2", domain.JobTypeScheduled, domain.JobStatusInProgress, now)
	if err := MarkJobFailed(context.Background(), db, "p2", "provider 503", now.Add(time.Minute)); err != nil {
		t.Fatalf("MarkJobFailed(running): %v", err)
	}
}

func TestAddJobProgress_Increments(t *testing.T) {
	db := newJobRepoDB(t)
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	seedJob(t, db, "j1", domain.JobTypeInitial, domain.JobStatusInProgress, now)

	if err := AddJobProgress(context.Background(), db, "j1", 10, 7, 2); err != nil {
		t.Fatalf("AddJobProgress: %v", err)
	}
	if err := AddJobProgress(context.Background(), db, "j1", 5, 1, 0); err != nil {
		t.Fatalf("AddJobProgress(2): %v", err)
	}

	var got domain.SyncJob
	if err := db.First(&got, "id = ?", "j1").Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.FetchedCount != 15 || got.NewCount != 8 || got.UpdatedCount != 2 {
		t.Fatalf("counters = %d/%d/%d; want 15/8/2", got.FetchedCount, got.NewCount, got.UpdatedCount)
	}

	if err := AddJobProgress(context.Background(), db, "missing", 1, 1, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListSourceJobsPage_PaginationAndOrder(t *testing.T) {
	db := newJobRepoDB(t)
	base := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

	for i := 1; i <= 5; i++ {
		seedJob(t, db, fmt.Sprintf("j%d", i), domain.JobTypeScheduled, domain.JobStatusCompleted, base.Add(time.Duration(i)*time.Second))
	}

	total, err := CountSourceJobs(context.Background(), db, "s1")
	if err != nil || total != 5 {
		t.Fatalf("CountSourceJobs = %d, %v; want 5", total, err)
	}

	// Offset 1, limit 2 => the 2nd and 3rd newest => j4, j3.
	page, err := ListSourceJobsPage(context.Background(), db, "s1", 1, 2)
	if err != nil {
		t.Fatalf("ListSourceJobsPage: %v", err)
	}
	if len(page) != 2 || page[0].ID != "j4" || page[1].ID != "j3" {
		t.Fatalf("unexpected page slice: %+v", page)
	}
}

func TestListStuckJobs_FiltersByStartTime(t *testing.T) {
	db := newJobRepoDB(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	old := now.Add(-time.Hour)
	recent := now.Add(-time.Minute)

	j1 := seedJob(t, db, "stuck", domain.JobTypeManual, domain.JobStatusInProgress, old)
	db.Model(j1).Update("started_at", old)
	j2 := seedJob(t, db, "fresh", domain.JobTypeManual, domain.JobStatusInProgress, recent)
	db.Model(j2).Update("started_at", recent)
	j3 := seedJob(t, db, "done", domain.JobTypeManual, domain.JobStatusCompleted, old)
	db.Model(j3).Update("started_at", old)

	got, err := ListStuckJobs(context.Background(), db, now.Add(-30*time.Minute))
	if err != nil {
		t.Fatalf("ListStuckJobs: %v", err)
	}
	if len(got) != 1 || got[0].ID != "stuck" {
		t.Fatalf("expected only the stuck job, got %+v", got)
	}
}
