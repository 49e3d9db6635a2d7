package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jgoulah/hydroscraper/pkg/models"
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// Row is a stored daily reading plus its bookkeeping columns.
type Row struct {
	ID        int
	Reading   models.DailyElectricity
	CreatedAt time.Time
	Published bool
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS daily_usage (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		kwh REAL NOT NULL,
		cost REAL NOT NULL,
		is_estimate INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		published INTEGER DEFAULT 0,
		UNIQUE(date)
	);
	CREATE INDEX IF NOT EXISTS idx_daily_usage_date ON daily_usage(date);
	CREATE INDEX IF NOT EXISTS idx_daily_usage_published ON daily_usage(published);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// InsertDaily inserts a daily reading, ignoring duplicate dates. Each
// successful refresh re-offers the same trailing days; the UNIQUE
// constraint keeps one row per date.
func (db *DB) InsertDaily(reading models.DailyElectricity) error {
	query := `
	INSERT OR IGNORE INTO daily_usage (date, kwh, cost, is_estimate, created_at)
	VALUES (?, ?, ?, ?, ?)
	`

	dateStr := reading.Interval.Start.Format("2006-01-02")
	createdAt := time.Now().UTC().Format(time.RFC3339)

	_, err := db.conn.Exec(query, dateStr, reading.Consumption, reading.Cost, boolToInt(reading.IsEstimate), createdAt)
	if err != nil {
		return fmt.Errorf("inserting daily usage: %w", err)
	}

	return nil
}

// ListDaily retrieves all stored readings, newest first
func (db *DB) ListDaily() ([]Row, error) {
	return db.list(`
	SELECT id, date, kwh, cost, is_estimate, created_at, published
	FROM daily_usage
	ORDER BY date DESC
	`)
}

// ListUnpublished retrieves readings not yet pushed downstream, oldest first
// so backfill arrives in order
func (db *DB) ListUnpublished() ([]Row, error) {
	return db.list(`
	SELECT id, date, kwh, cost, is_estimate, created_at, published
	FROM daily_usage
	WHERE published = 0
	ORDER BY date ASC
	`)
}

func (db *DB) list(query string) ([]Row, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying daily usage: %w", err)
	}
	defer rows.Close()

	var results []Row
	for rows.Next() {
		var r Row
		var dateStr, createdStr string
		var estimate, published int

		if err := rows.Scan(&r.ID, &dateStr, &r.Reading.Consumption, &r.Reading.Cost, &estimate, &createdStr, &published); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("parsing date: %w", err)
		}
		r.Reading.Interval = models.Interval{Start: date, End: date}
		r.Reading.IsEstimate = estimate != 0
		r.Published = published != 0

		if created, err := time.Parse(time.RFC3339, createdStr); err == nil {
			r.CreatedAt = created
		}

		results = append(results, r)
	}

	return results, rows.Err()
}

// HasDate checks if a reading exists for a given date
func (db *DB) HasDate(date time.Time) (bool, error) {
	var count int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM daily_usage WHERE date = ?`, date.Format("2006-01-02")).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("querying daily usage: %w", err)
	}
	return count > 0, nil
}

// MarkPublished marks a reading as published
func (db *DB) MarkPublished(id int) error {
	_, err := db.conn.Exec(`UPDATE daily_usage SET published = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("marking record as published: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
