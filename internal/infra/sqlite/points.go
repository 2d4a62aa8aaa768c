package sqlite

import (
	"database/sql"
	"time"

	"github.com/spikewise/spikewise/internal/domain"
)

// ─── Points Ledger ──────────────────────────────────────────────────────────

// InsertPointsEntry appends a ledger row and returns its ID.
func (d *DB) InsertPointsEntry(e domain.PointsEntry) (int64, error) {
	result, err := d.db.Exec(
		`INSERT INTO points_ledger (device_id, timestamp, source, amount, log_id, balance)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.DeviceID, e.Timestamp.Unix(), string(e.Source), e.Amount,
		nullableString(e.LogID), e.Balance,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// PointsHistory returns recent ledger entries for a device, newest first.
func (d *DB) PointsHistory(deviceID string, limit int) ([]domain.PointsEntry, error) {
	rows, err := d.db.Query(
		`SELECT id, device_id, timestamp, source, amount, log_id, balance
		 FROM points_ledger WHERE device_id = ? ORDER BY timestamp DESC, id DESC LIMIT ?`,
		deviceID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.PointsEntry
	for rows.Next() {
		var e domain.PointsEntry
		var ts int64
		var source string
		var logID sql.NullString
		if err := rows.Scan(&e.ID, &e.DeviceID, &ts, &source, &e.Amount, &logID, &e.Balance); err != nil {
			return nil, err
		}
		e.Timestamp = time.Unix(ts, 0)
		e.Source = domain.PointsSource(source)
		if logID.Valid {
			e.LogID = logID.String
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
