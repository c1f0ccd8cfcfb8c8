package domain

import (
	"testing"
	"time"

	"gorm.io/gorm"
)

// freshIdemTable rebuilds the idempotency table from the model tags, so the
// assertions below exercise the declared schema rather than a copy of it.
func freshIdemTable(t *testing.T) *gorm.DB {
	t.Helper()
	db := openModelDB(t)
	if err := db.Migrator().DropTable(&Idempotency{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}
	if err := db.AutoMigrate(&Idempotency{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestIdempotency_MigrationBuildsDeclaredSchema(t *testing.T) {
	db := freshIdemTable(t)
	m := db.Migrator()

	if !m.HasTable(&Idempotency{}) {
		t.Fatalf("expected table %q to exist", Idempotency{}.TableName())
	}
	if !m.HasIndex(&Idempotency{}, "ux_user_source_key") {
		t.Fatalf("expected composite unique index ux_user_source_key")
	}
	for _, col := range []string{"id", "user_id", "source_id", "key", "job_id", "status", "created_at", "expires_at"} {
		if !m.HasColumn(&Idempotency{}, col) {
			t.Fatalf("expected column %q", col)
		}
	}
}

func TestIdempotency_ColumnsRejectNull(t *testing.T) {
	db := freshIdemTable(t)
	now := time.Now().UTC()

	cols := []string{"id", "user_id", "source_id", "key", "job_id", "status", "created_at", "expires_at"}
	base := []any{"", "u1", "s1", "k1", "j1", 202, now, now.Add(time.Hour)}
	const insert = `INSERT INTO idempotency ("id","user_id","source_id","key","job_id","status","created_at","expires_at") VALUES (?,?,?,?,?,?,?,?)`

	for i := 1; i < len(cols); i++ {
		vals := make([]any, len(base))
		copy(vals, base)
		vals[0] = "null-" + cols[i]
		vals[i] = nil
		if err := db.Exec(insert, vals...).Error; err == nil {
			t.Fatalf("inserting NULL %s must violate NOT NULL", cols[i])
		}
	}
}

func TestIdempotency_TupleUniqueAndRoundTrips(t *testing.T) {
	db := freshIdemTable(t)
	now := time.Now().UTC()

	rec := &Idempotency{
		ID:        "id-1",
		UserID:    "u1",
		SourceID:  "s1",
		Key:       "k1",
		JobID:     "j1",
		Status:    202,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}

	var got Idempotency
	if err := db.First(&got, "id = ?", "id-1").Error; err != nil {
		t.Fatalf("readback: %v", err)
	}
	if got.UserID != "u1" || got.SourceID != "s1" || got.Key != "k1" || got.JobID != "j1" || got.Status != 202 {
		t.Fatalf("unexpected row: %+v", got)
	}
	if !got.ExpiresAt.After(got.CreatedAt) {
		t.Fatalf("ExpiresAt %v must be after CreatedAt %v", got.ExpiresAt, got.CreatedAt)
	}

	// Same (user, source, key) under a different primary key must be refused.
	dup := &Idempotency{
		ID:        "id-2",
		UserID:    "u1",
		SourceID:  "s1",
		Key:       "k1",
		JobID:     "j2",
		Status:    200,
		CreatedAt: now,
		ExpiresAt: now.Add(2 * time.Hour),
	}
	if err := db.Create(dup).Error; err == nil {
		t.Fatalf("expected UNIQUE violation on (user_id, source_id, key)")
	}
}
