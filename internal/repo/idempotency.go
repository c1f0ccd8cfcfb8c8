// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file stores the replay records behind the manual
// sync trigger: one row per (user, source, Idempotency-Key) tuple, pointing
// at the job the original trigger created, valid until its TTL runs out.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-review-backend/internal/domain"
)

// ErrDuplicate reports that the (user_id, source_id, key) tuple is already
// recorded. Callers treat it as a lost race and replay the winner's job.
var ErrDuplicate = errors.New("duplicate")

// isUniqueViolation spots unique-index failures across the error shapes the
// glebarez driver produces; its plain-text SQLite errors do not always map
// to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "constraint failed: unique")
}

// GetIdempotency returns the record for the tuple when it is still inside
// its TTL window as of now, or ErrNotFound. A blank sourceID can never have
// been recorded, so it short-circuits without a query.
func GetIdempotency(ctx context.Context, db *gorm.DB, userID, sourceID, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(sourceID) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("user_id = ? AND source_id = ? AND key = ?", userID, sourceID, key).
		Where("expires_at > ?", now).
		Take(&rec).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, err
	}
	return &rec, nil
}

// CreateIdempotency records jobID as the canonical result for the tuple,
// valid for ttl from now. A concurrent insert of the same tuple surfaces as
// ErrDuplicate.
func CreateIdempotency(ctx context.Context, db *gorm.DB, userID, sourceID, key, jobID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	now := time.Now().UTC()
	rec := &domain.Idempotency{
		ID:        uuid.NewString(),
		UserID:    userID,
		SourceID:  sourceID,
		Key:       key,
		JobID:     jobID,
		Status:    status,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// PurgeIdempotency deletes records whose TTL window closed at or before now
// and reports how many rows went. Expired rows are invisible to
// GetIdempotency already; this keeps the table from growing without bound.
func PurgeIdempotency(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&domain.Idempotency{})
	return res.RowsAffected, res.Error
}
