package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/klatt42/gifted-tudor/model"
)

const jobTimeout = 2 * time.Minute

// ResetBrokenStreaks zeroes the streak counter for students who missed a
// day. RecordActivity would restart their streak at 1 anyway; this keeps
// the displayed value honest between activities. Day boundaries here are
// UTC since the job runs once for all timezones.
func (m *CronManager) ResetBrokenStreaks() {
	jobName := "reset_broken_streaks"
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	res := m.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("streak > 0 AND last_activity_date < CURRENT_DATE - INTERVAL '1 day'").
		UpdateColumn("streak", 0)
	if res.Error != nil {
		m.logJobError(jobName, res.Error)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("reset %d broken streaks", res.RowsAffected))
}

// ArchiveIdleSessions marks tutor sessions with no activity for a week as
// archived.
func (m *CronManager) ArchiveIdleSessions() {
	jobName := "archive_idle_sessions"
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -7)

	res := m.db.WithContext(ctx).
		Model(&model.TutorSession{}).
		Where("status = ?", "active").
		Where("last_message_at < ? OR (last_message_at IS NULL AND created_at < ?)", cutoff, cutoff).
		UpdateColumn("status", "archived")
	if res.Error != nil {
		m.logJobError(jobName, res.Error)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("archived %d idle sessions", res.RowsAffected))
}

// CleanupOldData removes expired token blacklist entries and cron job logs
// older than 30 days.
func (m *CronManager) CleanupOldData() {
	jobName := "cleanup_old_data"
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	tokens := m.db.WithContext(ctx).
		Unscoped().
		Where("expires_at < ?", time.Now()).
		Delete(&model.JWTTokenBlacklist{})
	if tokens.Error != nil {
		m.logJobError(jobName, tokens.Error)
		return
	}

	logs := m.db.WithContext(ctx).
		Unscoped().
		Where("created_at < ?", time.Now().AddDate(0, 0, -30)).
		Delete(&model.CronJobLog{})
	if logs.Error != nil {
		m.logJobError(jobName, logs.Error)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("removed %d expired tokens, %d old job logs", tokens.RowsAffected, logs.RowsAffected))
}

// VerifyXPCounters cross-checks the denormalized xp column against the
// transaction ledger and reports drift. Report-only: the ledger is the
// source of truth and drift means a code defect worth investigating.
func (m *CronManager) VerifyXPCounters() {
	jobName := "verify_xp_counters"
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	var mismatched int64
	err := m.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM students s
		WHERE s.deleted_at IS NULL
		  AND s.xp <> COALESCE(
			(SELECT SUM(t.amount) FROM xp_transactions t WHERE t.student_id = s.id), 0)
	`).Scan(&mismatched).Error
	if err != nil {
		m.logJobError(jobName, err)
		return
	}

	if mismatched > 0 {
		m.logJobError(jobName, fmt.Errorf("%d students have xp counters out of sync with their ledger", mismatched))
		return
	}

	m.logJobComplete(jobName, "all xp counters match the ledger")
}
