package storage

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	id           TEXT PRIMARY KEY,
	url          TEXT NOT NULL,
	generated_at DATETIME NOT NULL,
	overall      REAL NOT NULL,
	technical    REAL NOT NULL,
	content      REAL NOT NULL,
	performance  REAL NOT NULL,
	analysis     TEXT NOT NULL,
	suggestions  TEXT
);

CREATE INDEX IF NOT EXISTS idx_reports_url ON reports(url);
CREATE INDEX IF NOT EXISTS idx_reports_generated_at ON reports(generated_at);

CREATE TABLE IF NOT EXISTS report_issues (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	report_id      TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
	position       INTEGER NOT NULL,
	rule_id        TEXT NOT NULL,
	category       TEXT NOT NULL,
	severity       INTEGER NOT NULL,
	title          TEXT NOT NULL,
	description    TEXT NOT NULL,
	recommendation TEXT NOT NULL,
	current_value  TEXT NOT NULL,
	expected_value TEXT NOT NULL,
	impact         TEXT NOT NULL,
	locator        TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_report_issues_report ON report_issues(report_id);
`
