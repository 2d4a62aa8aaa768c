package sqlite

import (
	"database/sql"
	"time"

	"github.com/spikewise/spikewise/internal/domain"
)

// ─── Log Repository ─────────────────────────────────────────────────────────

// InsertLog creates a new consumption event record.
func (d *DB) InsertLog(l domain.LogEntry) error {
	_, err := d.db.Exec(
		`INSERT INTO logs (id, device_id, type, intensity, created_at, action, insight, action_completed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.DeviceID, l.Type, l.Intensity, l.CreatedAt.Unix(),
		l.Action, l.Insight, l.ActionCompleted,
	)
	return err
}

// GetLog retrieves a single log by ID. Returns domain.ErrLogNotFound.
func (d *DB) GetLog(id string) (*domain.LogEntry, error) {
	row := d.db.QueryRow(
		`SELECT id, device_id, type, intensity, created_at, action, insight, action_completed
		 FROM logs WHERE id = ?`, id,
	)
	return scanLog(row)
}

// ListLogs returns the newest logs for a device, most recent first.
func (d *DB) ListLogs(deviceID string, limit int) ([]domain.LogEntry, error) {
	rows, err := d.db.Query(
		`SELECT id, device_id, type, intensity, created_at, action, insight, action_completed
		 FROM logs WHERE device_id = ? ORDER BY created_at DESC LIMIT ?`,
		deviceID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.LogEntry
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

// SetLogAdvice fills the action/insight pair after scoring. This is the one
// post-creation mutation the insight flow performs.
func (d *DB) SetLogAdvice(id string, advice domain.Advice) error {
	result, err := d.db.Exec(
		`UPDATE logs SET action = ?, insight = ? WHERE id = ?`,
		advice.Action, advice.Insight, id,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrLogNotFound
	}
	return nil
}

// CompleteLog flips action_completed, guarded so a concurrent duplicate
// request cannot apply the bonus twice. Returns domain.ErrAlreadyCompleted
// when the flag was already set.
func (d *DB) CompleteLog(id string) error {
	result, err := d.db.Exec(
		`UPDATE logs SET action_completed = 1 WHERE id = ? AND action_completed = 0`, id,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		// Distinguish missing from already-done
		if _, err := d.GetLog(id); err != nil {
			return err
		}
		return domain.ErrAlreadyCompleted
	}
	return nil
}

func scanLog(s scanner) (*domain.LogEntry, error) {
	var l domain.LogEntry
	var createdAt int64

	err := s.Scan(&l.ID, &l.DeviceID, &l.Type, &l.Intensity,
		&createdAt, &l.Action, &l.Insight, &l.ActionCompleted)
	if err == sql.ErrNoRows {
		return nil, domain.ErrLogNotFound
	}
	if err != nil {
		return nil, err
	}

	l.CreatedAt = time.Unix(createdAt, 0)
	return &l, nil
}
