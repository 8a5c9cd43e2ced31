package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"spamsniffer/internal/domain"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// SQLStore keeps scan history in PostgreSQL or SQLite. Queries are written
// with "?" placeholders and rebound for the active driver.
type SQLStore struct {
	db *sqlx.DB
}

// scanRow is the flat table layout of a domain.Scan.
type scanRow struct {
	ID          string    `db:"id"`
	Source      string    `db:"source"`
	EmailID     string    `db:"email_id"`
	Subject     string    `db:"subject"`
	Sender      string    `db:"sender"`
	TextHash    string    `db:"text_hash"`
	IsSpam      bool      `db:"is_spam"`
	SpamScore   float64   `db:"spam_score"`
	SpamType    string    `db:"spam_type"`
	Description string    `db:"description"`
	Summary     string    `db:"summary"`
	CreatedAt   time.Time `db:"created_at"`
}

const scanColumns = `id, source, email_id, subject, sender, text_hash,
	is_spam, spam_score, spam_type, description, summary, created_at`

// NewSQLStore opens the database and applies pending migrations.
func NewSQLStore(driver, dsn string) (*SQLStore, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s db: %w", driver, err)
	}

	if driver == DriverSQLite {
		// a second connection to ":memory:" would see an empty database
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling WAL mode: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s db: %w", driver, err)
	}

	s := &SQLStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) runMigrations() error {
	if _, err := s.db.Exec("CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)"); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	var current int
	if err := s.db.Get(&current, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := s.db.Beginx()
		if err != nil {
			return fmt.Errorf("beginning migration v%d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
		if _, err := tx.Exec(s.db.Rebind("INSERT INTO schema_version (version) VALUES (?)"), m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Save inserts a scan. A missing ID gets a new UUID; re-saving an existing
// ID is a no-op.
func (s *SQLStore) Save(ctx context.Context, scan domain.Scan) error {
	if scan.ID == "" {
		scan.ID = uuid.New().String()
	}
	if scan.CreatedAt.IsZero() {
		scan.CreatedAt = time.Now()
	}

	query := s.db.Rebind(`
		INSERT INTO scans (` + scanColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`)

	_, err := s.db.ExecContext(ctx, query,
		scan.ID, string(scan.Source), scan.EmailID, scan.Subject, scan.From, scan.TextHash,
		scan.Verdict.IsSpam, scan.Verdict.SpamScore, string(scan.Verdict.SpamType),
		scan.Verdict.Description, scan.Verdict.Summary, scan.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving scan %s: %w", scan.ID, err)
	}
	return nil
}

func (s *SQLStore) FindByID(ctx context.Context, id string) (*domain.Scan, error) {
	var row scanRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind("SELECT "+scanColumns+" FROM scans WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting scan %s: %w", id, err)
	}

	scan := row.toDomain()
	return &scan, nil
}

// FindAll lists scans newest first.
func (s *SQLStore) FindAll(ctx context.Context, limit, offset int) ([]domain.Scan, error) {
	var rows []scanRow
	query := s.db.Rebind("SELECT " + scanColumns + " FROM scans ORDER BY created_at DESC, id LIMIT ? OFFSET ?")
	if err := s.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("listing scans: %w", err)
	}

	scans := make([]domain.Scan, len(rows))
	for i, r := range rows {
		scans[i] = r.toDomain()
	}
	return scans, nil
}

func (s *SQLStore) GetStats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.GetContext(ctx, &st, `
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN is_spam THEN 1 ELSE 0 END), 0) AS spam
		FROM scans`)
	if err != nil {
		return Stats{}, fmt.Errorf("reading stats: %w", err)
	}
	return st, nil
}

func (r scanRow) toDomain() domain.Scan {
	return domain.Scan{
		ID:       r.ID,
		Source:   domain.Source(r.Source),
		EmailID:  r.EmailID,
		Subject:  r.Subject,
		From:     r.Sender,
		TextHash: r.TextHash,
		Verdict: domain.Verdict{
			IsSpam:      r.IsSpam,
			SpamScore:   r.SpamScore,
			Description: r.Description,
			Summary:     r.Summary,
			SpamType:    domain.SpamType(r.SpamType),
		},
		CreatedAt: r.CreatedAt,
	}
}
