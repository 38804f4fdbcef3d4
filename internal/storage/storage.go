// Package storage persists audit reports to sqlite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/page-audit/auditor/internal/analysis"
	"github.com/page-audit/auditor/internal/report"
	"github.com/page-audit/auditor/internal/rules"
	"github.com/page-audit/auditor/internal/scoring"
)

// ErrNotFound is returned when a report id does not exist.
var ErrNotFound = errors.New("report not found")

// Summary is the list-view projection of a stored report.
type Summary struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	GeneratedAt time.Time `json:"generatedAt"`
	Overall     float64   `json:"overall"`
	IssueCount  int       `json:"issueCount"`
}

// Store is a sqlite-backed report history.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the report database at path.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sqlite handles one writer at a time; a single connection avoids
	// SQLITE_BUSY churn under concurrent saves.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveReport persists a report and its issue list in one transaction.
func (s *Store) SaveReport(ctx context.Context, r *report.Report) error {
	analysisJSON, err := json.Marshal(r.Analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	var suggestionsJSON []byte
	if r.Suggestions != nil {
		suggestionsJSON, err = json.Marshal(r.Suggestions)
		if err != nil {
			return fmt.Errorf("failed to marshal suggestions: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reports (id, url, generated_at, overall, technical, content, performance, analysis, suggestions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.URL, r.GeneratedAt.UTC(),
		r.Score.Overall, r.Score.Technical, r.Score.Content, r.Score.Performance,
		string(analysisJSON), nullableString(suggestionsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO report_issues (report_id, position, rule_id, category, severity, title, description, recommendation, current_value, expected_value, impact, locator)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare issue insert: %w", err)
	}
	defer stmt.Close()

	for i, issue := range r.Issues {
		_, err = stmt.ExecContext(ctx,
			r.ID, i, issue.ID, string(issue.Category), int(issue.Severity),
			issue.Title, issue.Description, issue.Recommendation,
			issue.CurrentValue, issue.ExpectedValue, issue.Impact, issue.Locator,
		)
		if err != nil {
			return fmt.Errorf("failed to insert issue: %w", err)
		}
	}

	return tx.Commit()
}

// GetReport loads a full report by id.
func (s *Store) GetReport(ctx context.Context, id string) (*report.Report, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, url, generated_at, overall, technical, content, performance, analysis, suggestions
		FROM reports WHERE id = ?`, id)

	var r report.Report
	var score scoring.SEOScore
	var analysisJSON string
	var suggestionsJSON sql.NullString

	err := row.Scan(&r.ID, &r.URL, &r.GeneratedAt,
		&score.Overall, &score.Technical, &score.Content, &score.Performance,
		&analysisJSON, &suggestionsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	score.Timestamp = r.GeneratedAt
	r.Score = &score

	var a analysis.PageAnalysis
	if err := json.Unmarshal([]byte(analysisJSON), &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}
	r.Analysis = &a

	if suggestionsJSON.Valid {
		var sugg report.AISuggestions
		if err := json.Unmarshal([]byte(suggestionsJSON.String), &sugg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal suggestions: %w", err)
		}
		r.Suggestions = &sugg
	}

	r.Issues, err = s.loadIssues(ctx, id)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) loadIssues(ctx context.Context, reportID string) ([]scoring.SEOIssue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rule_id, category, severity, title, description, recommendation, current_value, expected_value, impact, locator
		FROM report_issues WHERE report_id = ? ORDER BY position`, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to load issues: %w", err)
	}
	defer rows.Close()

	var issues []scoring.SEOIssue
	for rows.Next() {
		var issue scoring.SEOIssue
		var category string
		var severity int
		err := rows.Scan(&issue.ID, &category, &severity,
			&issue.Title, &issue.Description, &issue.Recommendation,
			&issue.CurrentValue, &issue.ExpectedValue, &issue.Impact, &issue.Locator)
		if err != nil {
			return nil, fmt.Errorf("failed to scan issue: %w", err)
		}
		issue.Category = rules.Category(category)
		issue.Severity = rules.Severity(severity)
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

// ListReports returns report summaries newest first, optionally filtered by
// URL. limit <= 0 means no limit.
func (s *Store) ListReports(ctx context.Context, url string, limit int) ([]Summary, error) {
	query := `
		SELECT r.id, r.url, r.generated_at, r.overall, COUNT(i.id)
		FROM reports r
		LEFT JOIN report_issues i ON i.report_id = r.id`
	args := []interface{}{}
	if url != "" {
		query += " WHERE r.url = ?"
		args = append(args, url)
	}
	query += " GROUP BY r.id ORDER BY r.generated_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.URL, &sum.GeneratedAt, &sum.Overall, &sum.IssueCount); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// PruneOlderThan deletes reports generated before the cutoff and returns how
// many were removed.
func (s *Store) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE generated_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune reports: %w", err)
	}
	return res.RowsAffected()
}

func nullableString(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
