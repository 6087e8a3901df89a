// Package store persists analysis runs and their articles in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/0ne-nine9/arbitr/internal/dates"
	"github.com/0ne-nine9/arbitr/internal/model"
)

// timeLayout sorts lexically in time order
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store is a SQLite-backed archive of analyzed articles. Articles are keyed
// by URL; re-analyzing a URL replaces its stored row.
type Store struct {
	db *sql.DB
}

// Run is one recorded analysis run
type Run struct {
	ID           string
	CreatedAt    time.Time
	ArticleCount int
}

// Open opens or creates the database at path. ":memory:" opens a private
// in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := initSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	article_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS articles (
	id TEXT PRIMARY KEY,
	url TEXT UNIQUE,
	title TEXT NOT NULL DEFAULT '',
	snippet TEXT NOT NULL DEFAULT '',
	date_text TEXT NOT NULL DEFAULT '',
	date TEXT,
	date_source TEXT NOT NULL DEFAULT '',
	full_content TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT '',
	error TEXT NOT NULL DEFAULT '',
	attack_method TEXT NOT NULL DEFAULT 'unknown',
	analysis TEXT NOT NULL DEFAULT '{}',
	fetch_meta TEXT,
	run_id TEXT REFERENCES runs(id) ON DELETE SET NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_articles_date ON articles(date);
CREATE INDEX IF NOT EXISTS idx_articles_method ON articles(attack_method);
CREATE INDEX IF NOT EXISTS idx_articles_run ON articles(run_id);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveResults records a run and upserts its articles in one transaction.
// It returns the new run ID.
func (s *Store) SaveResults(ctx context.Context, results model.Results) (string, error) {
	runID := model.NewArticleID()
	stamp := results.Timestamp
	if stamp.IsZero() {
		stamp = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, article_count) VALUES (?, ?, ?)`,
		runID, stamp.UTC().Format(timeLayout), len(results.Articles),
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO articles (
	id, url, title, snippet, date_text, date, date_source, full_content,
	source, error, attack_method, analysis, fetch_meta, run_id, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(url) DO UPDATE SET
	title = excluded.title,
	snippet = excluded.snippet,
	date_text = excluded.date_text,
	date = excluded.date,
	date_source = excluded.date_source,
	full_content = excluded.full_content,
	source = excluded.source,
	error = excluded.error,
	attack_method = excluded.attack_method,
	analysis = excluded.analysis,
	fetch_meta = excluded.fetch_meta,
	run_id = excluded.run_id,
	updated_at = excluded.updated_at`)
	if err != nil {
		return "", fmt.Errorf("prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	updated := stamp.UTC().Format(timeLayout)
	for i := range results.Articles {
		a := &results.Articles[i]
		if a.ID == "" {
			a.ID = model.NewArticleID()
		}

		analysis, err := json.Marshal(a.Analysis)
		if err != nil {
			return "", fmt.Errorf("encode analysis for %s: %w", a.URL, err)
		}
		var fetchMeta any
		if a.FetchMeta != nil {
			raw, err := json.Marshal(a.FetchMeta)
			if err != nil {
				return "", fmt.Errorf("encode fetch meta for %s: %w", a.URL, err)
			}
			fetchMeta = string(raw)
		}

		if _, err := stmt.ExecContext(ctx,
			a.ID, nullString(a.URL), a.Title, a.Snippet, a.DateText, nullString(a.Date.String()),
			a.DateSource, a.FullContent, a.Source, a.Error,
			string(model.ParseAttackMethod(string(a.AttackMethod))), string(analysis), fetchMeta,
			runID, updated,
		); err != nil {
			return "", fmt.Errorf("upsert %s: %w", a.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

// Articles returns stored articles in insertion order. A non-empty runID
// limits them to the articles last written by that run.
func (s *Store) Articles(ctx context.Context, runID string) ([]model.Article, error) {
	query := `
SELECT id, url, title, snippet, date_text, date, date_source, full_content,
	source, error, attack_method, analysis, fetch_meta
FROM articles`
	var args []any
	if runID != "" {
		query += " WHERE run_id = ?"
		args = append(args, runID)
	}
	query += " ORDER BY rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := []model.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}
	return articles, nil
}

func scanArticle(rows *sql.Rows) (model.Article, error) {
	var (
		a                   model.Article
		url, date, fetchRaw sql.NullString
		method, analysis    string
	)
	if err := rows.Scan(
		&a.ID, &url, &a.Title, &a.Snippet, &a.DateText, &date, &a.DateSource,
		&a.FullContent, &a.Source, &a.Error, &method, &analysis, &fetchRaw,
	); err != nil {
		return a, fmt.Errorf("scan article: %w", err)
	}

	a.URL = url.String
	d, err := dates.Parse(date.String)
	if err != nil {
		return a, fmt.Errorf("article %s: %w", a.ID, err)
	}
	a.Date = d

	if err := json.Unmarshal([]byte(analysis), &a.Analysis); err != nil {
		return a, fmt.Errorf("decode analysis for %s: %w", a.ID, err)
	}
	a.AttackMethod = model.ParseAttackMethod(method)
	if fetchRaw.Valid {
		a.FetchMeta = &model.FetchMeta{}
		if err := json.Unmarshal([]byte(fetchRaw.String), a.FetchMeta); err != nil {
			return a, fmt.Errorf("decode fetch meta for %s: %w", a.ID, err)
		}
	}
	return a, nil
}

// Runs lists recorded runs, newest first
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, article_count FROM runs ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var (
			r       Run
			created string
		)
		if err := rows.Scan(&r.ID, &created, &r.ArticleCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("run %s: parse created_at: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Counts returns the number of stored articles per attack method
func (s *Store) Counts(ctx context.Context) (map[model.AttackMethod]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT attack_method, COUNT(*) FROM articles GROUP BY attack_method`)
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[model.AttackMethod]int)
	for rows.Next() {
		var (
			method string
			n      int
		)
		if err := rows.Scan(&method, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[model.ParseAttackMethod(method)] += n
	}
	return counts, rows.Err()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
