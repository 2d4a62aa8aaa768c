// Package points implements the append-only points ledger.
// Every point award writes a ledger row alongside the balance kept on the
// user record, so the running total stays auditable.
package points

import (
	"fmt"
	"time"

	"github.com/spikewise/spikewise/internal/domain"
	"github.com/spikewise/spikewise/internal/infra/sqlite"
)

// Service manages the points economy for all devices.
type Service struct {
	db *sqlite.DB
}

// NewService creates a points service.
func NewService(db *sqlite.DB) *Service {
	return &Service{db: db}
}

// Record appends a ledger entry for an award. newBalance is the user's
// balance after the award was applied.
func (s *Service) Record(deviceID string, source domain.PointsSource, amount int64, logID string, newBalance int64, at time.Time) error {
	if amount <= 0 {
		return fmt.Errorf("award amount must be positive, got %d", amount)
	}

	_, err := s.db.InsertPointsEntry(domain.PointsEntry{
		DeviceID:  deviceID,
		Timestamp: at,
		Source:    source,
		Amount:    amount,
		LogID:     logID,
		Balance:   newBalance,
	})
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// History returns recent ledger entries for a device, newest first.
func (s *Service) History(deviceID string, limit int) ([]domain.PointsEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.db.PointsHistory(deviceID, limit)
}
