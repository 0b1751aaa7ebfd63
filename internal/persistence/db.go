// Package persistence keeps the farm journal in SQLite: narrative events,
// oracle consultations and per-session summaries. The journal is
// write-mostly history; a new server never restores a farm from it.
package persistence

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hollowfarm/internal/farm"
)

// DB wraps a SQLite connection for the journal.
type DB struct {
	conn    *sqlx.DB
	session string
}

// Open opens or creates a SQLite database at the given path and starts a
// new session.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer; SQLite serialises anyway.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, session: uuid.NewString()}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if _, err := conn.Exec(
		"INSERT INTO sessions (id, started_at) VALUES (?, ?)",
		db.session, time.Now().UTC(),
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("start session: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Session returns the ID stamped on rows written by this process.
func (db *DB) Session() string {
	return db.session
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		started_at TIMESTAMP NOT NULL,
		ended_at TIMESTAMP,
		final_tick INTEGER,
		gold INTEGER,
		level INTEGER
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session TEXT NOT NULL,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS consultations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session TEXT NOT NULL,
		tick INTEGER NOT NULL,
		level INTEGER NOT NULL,
		weather TEXT NOT NULL,
		text TEXT NOT NULL,
		effect TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS farm_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	CREATE INDEX IF NOT EXISTS idx_events_session ON events(session);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveEvents appends events to the journal.
func (db *DB) SaveEvents(events []farm.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(
		"INSERT INTO events (session, tick, description, category) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.Exec(db.session, e.Tick, e.Description, e.Category); err != nil {
			return fmt.Errorf("insert event at tick %d: %w", e.Tick, err)
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent N events across all sessions,
// newest first.
func (db *DB) RecentEvents(limit int) ([]farm.Event, error) {
	var events []farm.Event
	err := db.conn.Select(&events,
		"SELECT tick, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}

// Consultation is one journaled oracle visit.
type Consultation struct {
	Session string `json:"session" db:"session"`
	Tick    uint64 `json:"tick" db:"tick"`
	Level   int    `json:"level" db:"level"`
	Weather string `json:"weather" db:"weather"`
	Text    string `json:"text" db:"text"`
	Effect  string `json:"effect" db:"effect"`
}

// SaveConsultation records an oracle visit.
func (db *DB) SaveConsultation(c Consultation) error {
	c.Session = db.session
	_, err := db.conn.NamedExec(`INSERT INTO consultations
		(session, tick, level, weather, text, effect)
		VALUES (:session, :tick, :level, :weather, :text, :effect)`, c)
	return err
}

// RecentConsultations returns the most recent N oracle visits, newest first.
func (db *DB) RecentConsultations(limit int) ([]Consultation, error) {
	var out []Consultation
	err := db.conn.Select(&out,
		"SELECT session, tick, level, weather, text, effect FROM consultations ORDER BY id DESC LIMIT ?",
		limit,
	)
	return out, err
}

// EndSession stamps the closing figures of this process's farm.
func (db *DB) EndSession(s farm.Snapshot) error {
	_, err := db.conn.Exec(
		"UPDATE sessions SET ended_at = ?, final_tick = ?, gold = ?, level = ? WHERE id = ?",
		time.Now().UTC(), s.Tick, s.Gold, s.Level, db.session,
	)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	slog.Info("session closed", "session", db.session, "tick", s.Tick, "gold", s.Gold, "level", s.Level)
	return nil
}

// SessionCount returns how many sessions the journal has seen.
func (db *DB) SessionCount() (int, error) {
	var n int
	err := db.conn.Get(&n, "SELECT COUNT(*) FROM sessions")
	return n, err
}

// Meta keys written by SaveProgress.
const (
	MetaLastTick    = "last_tick"
	MetaLastSpeed   = "last_speed"
	MetaLastSession = "last_session"
)

// SaveProgress records where the running farm has got to, so the next
// process can report how the previous one ended.
func (db *DB) SaveProgress(tick uint64, speed float64) error {
	for k, v := range map[string]string{
		MetaLastTick:    strconv.FormatUint(tick, 10),
		MetaLastSpeed:   strconv.FormatFloat(speed, 'f', -1, 64),
		MetaLastSession: db.session,
	} {
		if err := db.SaveMeta(k, v); err != nil {
			return fmt.Errorf("save %s: %w", k, err)
		}
	}
	return nil
}

// PreviousProgress returns the last tick recorded by another session.
// ok is false on a fresh journal.
func (db *DB) PreviousProgress() (tick uint64, ok bool) {
	session, err := db.GetMeta(MetaLastSession)
	if err != nil || session == db.session {
		return 0, false
	}
	v, err := db.GetMeta(MetaLastTick)
	if err != nil {
		return 0, false
	}
	tick, err = strconv.ParseUint(v, 10, 64)
	return tick, err == nil
}

// SaveMeta stores a key-value pair in farm metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO farm_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM farm_meta WHERE key = ?", key)
	return value, err
}
