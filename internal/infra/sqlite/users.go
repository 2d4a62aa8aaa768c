package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/spikewise/spikewise/internal/domain"
)

// ─── User Repository ────────────────────────────────────────────────────────

// InsertUser creates a new user record. Returns domain.ErrUserExists when the
// device is already registered.
func (d *DB) InsertUser(u domain.User) error {
	_, err := d.db.Exec(
		`INSERT INTO users (device_id, age, gender, height_cm, weight_kg, activity_level, target_sugar, bmi, streak, points, last_log_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.DeviceID, u.Age, u.Gender, u.HeightCM, u.WeightKG,
		string(u.ActivityLevel), u.TargetSugar, u.BMI,
		u.Streak, u.Points, nullableUnix(u.LastLogDate), u.CreatedAt.Unix(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserExists
		}
		return err
	}
	return nil
}

// GetUser retrieves a user with their badge set. Returns domain.ErrUserNotFound
// for unknown devices.
func (d *DB) GetUser(deviceID string) (*domain.User, error) {
	row := d.db.QueryRow(
		`SELECT device_id, age, gender, height_cm, weight_kg, activity_level, target_sugar, bmi, streak, points, last_log_date, created_at
		 FROM users WHERE device_id = ?`, deviceID,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, err
	}

	badges, err := d.listBadges(deviceID)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	u.Badges = badges
	return u, nil
}

// UpdateUserState persists the reward deltas computed for one event:
// streak, points balance, and last log date.
func (d *DB) UpdateUserState(deviceID string, streak int, points int64, lastLog time.Time) error {
	result, err := d.db.Exec(
		`UPDATE users SET streak = ?, points = ?, last_log_date = ? WHERE device_id = ?`,
		streak, points, lastLog.Unix(), deviceID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// AddPoints bumps the user's balance by a flat amount (completion bonus path).
func (d *DB) AddPoints(deviceID string, amount int64) error {
	result, err := d.db.Exec(
		`UPDATE users SET points = points + ? WHERE device_id = ?`,
		amount, deviceID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// InsertBadge records a badge award. Idempotent: re-awarding an owned badge
// is a no-op at the schema level.
func (d *DB) InsertBadge(deviceID string, b domain.Badge) error {
	_, err := d.db.Exec(
		`INSERT OR IGNORE INTO badges (device_id, name, icon, awarded_at) VALUES (?, ?, ?, ?)`,
		deviceID, b.Name, b.Icon, b.AwardedAt.Unix(),
	)
	return err
}

func (d *DB) listBadges(deviceID string) ([]domain.Badge, error) {
	rows, err := d.db.Query(
		`SELECT name, icon, awarded_at FROM badges WHERE device_id = ? ORDER BY awarded_at ASC`,
		deviceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var badges []domain.Badge
	for rows.Next() {
		var b domain.Badge
		var awardedAt int64
		if err := rows.Scan(&b.Name, &b.Icon, &awardedAt); err != nil {
			return nil, err
		}
		b.AwardedAt = time.Unix(awardedAt, 0)
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func scanUser(s scanner) (*domain.User, error) {
	var u domain.User
	var activity string
	var lastLog sql.NullInt64
	var createdAt int64

	err := s.Scan(&u.DeviceID, &u.Age, &u.Gender, &u.HeightCM, &u.WeightKG,
		&activity, &u.TargetSugar, &u.BMI,
		&u.Streak, &u.Points, &lastLog, &createdAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	u.ActivityLevel = domain.ActivityLevel(activity)
	u.CreatedAt = time.Unix(createdAt, 0)
	if lastLog.Valid {
		u.LastLogDate = time.Unix(lastLog.Int64, 0)
	}
	return &u, nil
}

func nullableUnix(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite reports constraint failures in the error text;
	// matching on it avoids importing driver internals.
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}
