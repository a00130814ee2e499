// Package persistence stores exported spiral tables in SQLite.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/gravitas-015/hexcore/hex"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/gravitas-games/hexspiral/internal/spiral"
)

// ErrNoCell is returned when a lookup matches no stored cell.
var ErrNoCell = errors.New("cell not in table")

// DB wraps a SQLite connection holding a spiral table.
type DB struct {
	conn *sqlx.DB
}

type cellRow struct {
	Idx  int64 `db:"idx"`
	Q    int   `db:"q"`
	R    int   `db:"r"`
	S    int   `db:"s"`
	Ring int   `db:"ring"`
}

func (row cellRow) cell() spiral.Cell {
	return spiral.Cell{Index: uint64(row.Idx), Cube: hex.Cube{Q: row.Q, R: row.R, S: row.S}}
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS spiral_cells (
		idx INTEGER PRIMARY KEY,
		q INTEGER NOT NULL,
		r INTEGER NOT NULL,
		s INTEGER NOT NULL,
		ring INTEGER NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_spiral_cells_cube ON spiral_cells(q, r, s);
	CREATE INDEX IF NOT EXISTS idx_spiral_cells_ring ON spiral_cells(ring);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveCells writes cells to the table (full replace).
func (db *DB) SaveCells(cells []spiral.Cell) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM spiral_cells"); err != nil {
		return err
	}

	stmt, err := tx.Preparex("INSERT INTO spiral_cells (idx, q, r, s, ring) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range cells {
		if _, err := stmt.Exec(int64(c.Index), c.Cube.Q, c.Cube.R, c.Cube.S, c.Cube.Length()); err != nil {
			return fmt.Errorf("insert cell %d: %w", c.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Debug().Int("cells", len(cells)).Msg("spiral table saved")
	return nil
}

// LookupCube returns the stored coordinate of index x.
func (db *DB) LookupCube(x uint64) (hex.Cube, error) {
	var row cellRow
	err := db.conn.Get(&row, "SELECT idx, q, r, s, ring FROM spiral_cells WHERE idx = ?", int64(x))
	if errors.Is(err, sql.ErrNoRows) {
		return hex.Cube{}, fmt.Errorf("index %d: %w", x, ErrNoCell)
	}
	if err != nil {
		return hex.Cube{}, err
	}
	return row.cell().Cube, nil
}

// LookupIndex returns the stored index of c.
func (db *DB) LookupIndex(c hex.Cube) (uint64, error) {
	var row cellRow
	err := db.conn.Get(&row, "SELECT idx, q, r, s, ring FROM spiral_cells WHERE q = ? AND r = ? AND s = ?", c.Q, c.R, c.S)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("cube %v: %w", c, ErrNoCell)
	}
	if err != nil {
		return 0, err
	}
	return row.cell().Index, nil
}

// Ring returns the stored cells of ring n in spiral order.
func (db *DB) Ring(n int) ([]spiral.Cell, error) {
	var rows []cellRow
	if err := db.conn.Select(&rows, "SELECT idx, q, r, s, ring FROM spiral_cells WHERE ring = ? ORDER BY idx", n); err != nil {
		return nil, err
	}
	cells := make([]spiral.Cell, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, row.cell())
	}
	return cells, nil
}

// Count returns the number of stored cells.
func (db *DB) Count() (int, error) {
	var n int
	err := db.conn.Get(&n, "SELECT COUNT(*) FROM spiral_cells")
	return n, err
}

// MaxRing returns the outermost stored ring, or -1 for an empty table.
func (db *DB) MaxRing() (int, error) {
	var n sql.NullInt64
	if err := db.conn.Get(&n, "SELECT MAX(ring) FROM spiral_cells"); err != nil {
		return 0, err
	}
	if !n.Valid {
		return -1, nil
	}
	return int(n.Int64), nil
}
