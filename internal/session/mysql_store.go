// internal/session/mysql_store.go
//
// MySQL-backed Store.
//
// Context
// -------
// One row per browser session:
//
//	panel_session (id CHAR(36) PK, page_size INT, page_number INT,
//	               updated_at DATETIME)
//
// Save is an upsert, so the first save of a session inserts and every later
// one overwrites.  Purge drops rows that have not been touched for a while;
// the session Manager calls it from its evictor.
//
// Notes
// -----
//   - The *sqlx.DB is owned by the caller when passed to NewMySQLStore;
//     Close closes it anyway since the store is its only user in cmd/web.
//   - Max line length 100 columns.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/playeradmin/internal/panel"
)

const mysqlSchema = `CREATE TABLE IF NOT EXISTS panel_session (
    id          CHAR(36)  NOT NULL PRIMARY KEY,
    page_size   INT       NOT NULL,
    page_number INT       NOT NULL,
    updated_at  DATETIME  NOT NULL,
    KEY idx_panel_session_updated (updated_at)
)`

// MySQLStore persists state in the panel_session table.
type MySQLStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewMySQLStore wraps db.  Call Migrate once before first use.
func NewMySQLStore(db *sqlx.DB) *MySQLStore {
	return &MySQLStore{db: db, now: time.Now}
}

// Migrate creates the table when missing.
func (s *MySQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, mysqlSchema); err != nil {
		return fmt.Errorf("migrate panel_session: %w", err)
	}
	return nil
}

type sessionRow struct {
	PageSize   int `db:"page_size"`
	PageNumber int `db:"page_number"`
}

func (s *MySQLStore) Load(ctx context.Context, id string) (panel.PaginationState, bool, error) {
	const q = `SELECT page_size, page_number FROM panel_session WHERE id = ?`

	var row sessionRow
	if err := s.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return panel.PaginationState{}, false, nil
		}
		return panel.PaginationState{}, false, fmt.Errorf("load session %s: %w", id, err)
	}
	return panel.PaginationState{PageSize: row.PageSize, PageNumber: row.PageNumber}, true, nil
}

func (s *MySQLStore) Save(ctx context.Context, id string, st panel.PaginationState) error {
	const q = `INSERT INTO panel_session (id, page_size, page_number, updated_at)
               VALUES (?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE page_size = VALUES(page_size),
                                       page_number = VALUES(page_number),
                                       updated_at = VALUES(updated_at)`

	if _, err := s.db.ExecContext(ctx, q, id, st.PageSize, st.PageNumber, s.now().UTC()); err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}
	return nil
}

// Purge deletes sessions idle since before cutoff and reports how many.
func (s *MySQLStore) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM panel_session WHERE updated_at < ?`

	res, err := s.db.ExecContext(ctx, q, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return res.RowsAffected()
}

func (s *MySQLStore) Close() error { return s.db.Close() }
