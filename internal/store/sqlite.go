package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"variant-tracker/internal/types"
)

// SQLiteStore is the sqlite-backed order store.
type SQLiteStore struct {
	db     *sql.DB
	logger types.Logger
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// schema exists.
func NewSQLiteStore(path string, logger types.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows one writer at a time. The tracking job saves orders
	// from a bounded worker pool, so writes must queue on a single
	// connection instead of surfacing SQLITE_BUSY to healthy orders.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS orders (
		"id" TEXT NOT NULL PRIMARY KEY,
		"retailer_id" TEXT NOT NULL,
		"product_identifier" TEXT NOT NULL,
		"name" TEXT NOT NULL,
		"color" TEXT NOT NULL DEFAULT '',
		"size" TEXT NOT NULL,
		"search_count" INTEGER NOT NULL DEFAULT 0,
		"version" INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS order_history (
		"id" INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
		"order_id" TEXT NOT NULL REFERENCES orders(id),
		"position" INTEGER NOT NULL,
		"price" REAL NOT NULL,
		"available" INTEGER NOT NULL,
		"reason" TEXT NOT NULL,
		"captured_at" DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_history_order ON order_history(order_id, position);`

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create tables: %w", err)
	}

	logger.Debug("order store initialized")
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Create inserts a new tracked order. An empty id gets a generated uuid.
func (s *SQLiteStore) Create(ctx context.Context, order *types.TrackedOrder) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (id, retailer_id, product_identifier, name, color, size, search_count, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)`,
		order.ID, order.RetailerID, order.ProductIdentifier,
		order.Name, order.Color, order.Size, order.SearchCount,
	)
	if err != nil {
		return fmt.Errorf("insert order %s: %w", order.ID, err)
	}
	return nil
}

// ListTracked loads every tracked order with its full history, history in
// insertion order.
func (s *SQLiteStore) ListTracked(ctx context.Context) ([]types.TrackedOrder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, retailer_id, product_identifier, name, color, size, search_count, version
		FROM orders ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []types.TrackedOrder
	for rows.Next() {
		var o types.TrackedOrder
		if err := rows.Scan(&o.ID, &o.RetailerID, &o.ProductIdentifier,
			&o.Name, &o.Color, &o.Size, &o.SearchCount, &o.Version); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		history, err := s.loadHistory(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].History = history
	}
	return orders, nil
}

func (s *SQLiteStore) loadHistory(ctx context.Context, orderID string) ([]types.Observation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT price, available, reason, captured_at
		FROM order_history WHERE order_id = ? ORDER BY position`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load history for %s: %w", orderID, err)
	}
	defer rows.Close()

	var history []types.Observation
	for rows.Next() {
		var obs types.Observation
		if err := rows.Scan(&obs.Price, &obs.Available, &obs.Reason, &obs.CapturedAt); err != nil {
			return nil, fmt.Errorf("scan history row for %s: %w", orderID, err)
		}
		history = append(history, obs)
	}
	return history, rows.Err()
}

// Save writes the order's counter and any newly appended observations in
// one transaction. The version check makes the read-modify-write safe
// against concurrent writers: a stale order fails with ErrVersionConflict
// and nothing is persisted.
func (s *SQLiteStore) Save(ctx context.Context, order *types.TrackedOrder) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save for %s: %w", order.ID, err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE orders SET search_count = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		order.SearchCount, order.ID, order.Version,
	)
	if err != nil {
		return fmt.Errorf("update order %s: %w", order.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("save order %s: %w", order.ID, ErrVersionConflict)
	}

	var persisted int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM order_history WHERE order_id = ?`, order.ID,
	).Scan(&persisted); err != nil {
		return fmt.Errorf("count history for %s: %w", order.ID, err)
	}

	for i := persisted; i < len(order.History); i++ {
		obs := order.History[i]
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_history (order_id, position, price, available, reason, captured_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			order.ID, i, obs.Price, obs.Available, string(obs.Reason), obs.CapturedAt,
		); err != nil {
			return fmt.Errorf("append observation for %s: %w", order.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save for %s: %w", order.ID, err)
	}
	order.Version++
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
