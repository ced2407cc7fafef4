package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/amishk599/avradar/internal/model"
	_ "modernc.org/sqlite"
)

var _ model.SubscriberStore = (*SQLiteStore)(nil)

// SQLiteStore persists subscribed chat IDs in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// subscribers table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS subscribers (
		chat_id       INTEGER PRIMARY KEY,
		subscribed_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating subscribers table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Add subscribes chatID. It reports false when the chat was already subscribed.
func (s *SQLiteStore) Add(chatID int64) (bool, error) {
	res, err := s.db.Exec(
		"INSERT OR IGNORE INTO subscribers (chat_id, subscribed_at) VALUES (?, ?)",
		chatID, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("adding subscriber %d: %w", chatID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("adding subscriber %d: %w", chatID, err)
	}
	return n > 0, nil
}

// Remove unsubscribes chatID. It reports false when the chat was not subscribed.
func (s *SQLiteStore) Remove(chatID int64) (bool, error) {
	res, err := s.db.Exec("DELETE FROM subscribers WHERE chat_id = ?", chatID)
	if err != nil {
		return false, fmt.Errorf("removing subscriber %d: %w", chatID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("removing subscriber %d: %w", chatID, err)
	}
	return n > 0, nil
}

// Has returns true if chatID is subscribed.
func (s *SQLiteStore) Has(chatID int64) (bool, error) {
	var exists int
	err := s.db.QueryRow("SELECT 1 FROM subscribers WHERE chat_id = ?", chatID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking subscriber %d: %w", chatID, err)
	}
	return true, nil
}

// List returns every subscribed chat ID, oldest subscription first.
func (s *SQLiteStore) List() ([]int64, error) {
	rows, err := s.db.Query("SELECT chat_id FROM subscribers ORDER BY subscribed_at, chat_id")
	if err != nil {
		return nil, fmt.Errorf("listing subscribers: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning subscriber: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing subscribers: %w", err)
	}
	return ids, nil
}

// Count returns the number of subscribed chats.
func (s *SQLiteStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM subscribers").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting subscribers: %w", err)
	}
	return count, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
