// Package health provides liveness checks for the daemon: the SQLite store
// and the data directory it writes to.
package health

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spikewise/spikewise/internal/infra/sqlite"
)

// Check defines a single named health check.
type Check struct {
	Name    string
	CheckFn func(ctx context.Context) error
}

// Status is the result of one check.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Report aggregates one run of all checks.
type Report struct {
	Healthy bool     `json:"healthy"`
	Checks  []Status `json:"checks"`
}

// Checker runs the daemon's health checks on demand.
type Checker struct {
	checks []Check
}

// NewChecker creates a checker over the store and its data directory.
func NewChecker(db *sqlite.DB, dataDir string) *Checker {
	return &Checker{
		checks: []Check{
			{
				Name: "sqlite",
				CheckFn: func(ctx context.Context) error {
					return db.Ping()
				},
			},
			{
				Name: "data_dir",
				CheckFn: func(ctx context.Context) error {
					return checkDataDir(dataDir)
				},
			},
		},
	}
}

// Check runs every check once and returns the aggregate report.
func (c *Checker) Check(ctx context.Context) Report {
	report := Report{Healthy: true, Checks: make([]Status, len(c.checks))}
	for i, check := range c.checks {
		s := Status{Name: check.Name, CheckedAt: time.Now(), Healthy: true}
		if err := check.CheckFn(ctx); err != nil {
			s.Healthy = false
			s.Error = err.Error()
			report.Healthy = false
		}
		report.Checks[i] = s
	}
	return report
}

func checkDataDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("check data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}
