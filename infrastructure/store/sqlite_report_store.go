// Package store persists compliance reports.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/ahrav/go-as1100/internal/domain"
	"github.com/ahrav/go-as1100/internal/ports"
)

var _ ports.ReportStore = (*SQLiteReportStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS compliance_reports (
	report_id      TEXT PRIMARY KEY,
	drawing        TEXT NOT NULL,
	weighted_score REAL NOT NULL,
	overall_passed INTEGER NOT NULL,
	threshold_used REAL NOT NULL,
	report_json    TEXT NOT NULL,
	created_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_compliance_reports_created
	ON compliance_reports (created_at DESC);
`

// DefaultListLimit caps List when no positive limit is given.
const DefaultListLimit = 50

// createdAtLayout is a fixed-width UTC timestamp, so text order in the
// created_at column matches time order. RFC 3339 with trimmed fractions
// does not have that property.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteReportStore keeps reports in a SQLite database. The full report
// is stored as JSON next to a few columns used for listing.
type SQLiteReportStore struct {
	db *sql.DB
}

// NewSQLiteReportStore opens the database at path, which may be
// ":memory:", and creates the schema.
func NewSQLiteReportStore(path string) (*SQLiteReportStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteReportStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteReportStore) Close() error {
	return s.db.Close()
}

// Save inserts the report. Reports are immutable, so saving an ID that
// already exists fails.
func (s *SQLiteReportStore) Save(ctx context.Context, report *domain.ComplianceReport) error {
	if report == nil || report.ID == "" {
		return ports.NewStoreError("", "save", fmt.Errorf("%w: report ID", domain.ErrEmptyValue))
	}

	blob, err := json.Marshal(report)
	if err != nil {
		return ports.NewStoreError(report.ID, "save", fmt.Errorf("marshal report: %w", err))
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO compliance_reports
		 (report_id, drawing, weighted_score, overall_passed, threshold_used, report_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.ID,
		report.Drawing,
		report.WeightedScore,
		report.OverallPassed,
		report.ThresholdUsed,
		string(blob),
		report.CreatedAt.UTC().Format(createdAtLayout),
	)
	if err != nil {
		return ports.NewStoreError(report.ID, "save", fmt.Errorf("insert report: %w", err))
	}
	return nil
}

// Get returns the report with the given ID.
func (s *SQLiteReportStore) Get(ctx context.Context, id string) (*domain.ComplianceReport, error) {
	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT report_json FROM compliance_reports WHERE report_id = ?`, id,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.NewStoreError(id, "get", ports.ErrReportNotFound)
	}
	if err != nil {
		return nil, ports.NewStoreError(id, "get", fmt.Errorf("query report: %w", err))
	}

	report, err := decodeReport(blob)
	if err != nil {
		return nil, ports.NewStoreError(id, "get", err)
	}
	return report, nil
}

// List returns up to limit reports, newest first. A limit of zero or less
// selects DefaultListLimit.
func (s *SQLiteReportStore) List(ctx context.Context, limit int) ([]*domain.ComplianceReport, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT report_json FROM compliance_reports
		 ORDER BY created_at DESC, report_id ASC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, ports.NewStoreError("", "list", fmt.Errorf("query reports: %w", err))
	}
	defer rows.Close()

	var reports []*domain.ComplianceReport
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, ports.NewStoreError("", "list", fmt.Errorf("scan report: %w", err))
		}
		report, err := decodeReport(blob)
		if err != nil {
			return nil, ports.NewStoreError("", "list", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, ports.NewStoreError("", "list", fmt.Errorf("iterate reports: %w", err))
	}
	return reports, nil
}

func decodeReport(blob string) (*domain.ComplianceReport, error) {
	var report domain.ComplianceReport
	if err := json.Unmarshal([]byte(blob), &report); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &report, nil
}
