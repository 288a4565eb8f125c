package checkout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

type sqliteRepo struct{ db *sql.DB }

// NewSQLiteRepository creates the order tables if needed and returns the repo.
func NewSQLiteRepository(db *sql.DB) (Repository, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS orders (
		  id                 TEXT PRIMARY KEY,
		  order_number       TEXT NOT NULL UNIQUE,
		  customer           TEXT NOT NULL,
		  items              TEXT NOT NULL,
		  subtotal           INTEGER NOT NULL,
		  discounted_subtotal INTEGER NOT NULL,
		  discount           INTEGER NOT NULL,
		  shipping           INTEGER NOT NULL,
		  total              INTEGER NOT NULL,
		  currency           TEXT NOT NULL,
		  created_at         TEXT NOT NULL,
		  estimated_delivery TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS failed_notifications (
		  id           TEXT PRIMARY KEY,
		  order_number TEXT NOT NULL,
		  customer     TEXT NOT NULL,
		  items        TEXT NOT NULL,
		  total        INTEGER NOT NULL,
		  attempts     INTEGER NOT NULL,
		  last_error   TEXT NOT NULL,
		  fingerprint  TEXT NOT NULL DEFAULT '',
		  created_at   TEXT NOT NULL
		)`)
	if err != nil {
		return nil, fmt.Errorf("create checkout tables: %w", err)
	}
	return &sqliteRepo{db: db}, nil
}

func (r *sqliteRepo) SaveOrder(ctx context.Context, o *Order) error {
	customer, err := json.Marshal(o.Customer)
	if err != nil {
		return fmt.Errorf("marshal customer: %w", err)
	}
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO orders
		  (id, order_number, customer, items, subtotal, discounted_subtotal,
		   discount, shipping, total, currency, created_at, estimated_delivery)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		o.ID.String(), o.OrderNumber, string(customer), string(items),
		o.Breakdown.Subtotal, o.Breakdown.DiscountedSubtotal, o.Breakdown.Discount,
		o.Breakdown.Shipping, o.Breakdown.Total, o.Currency,
		o.CreatedAt.UTC().Format(time.RFC3339Nano),
		o.EstimatedDelivery.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *sqliteRepo) LastOrder(ctx context.Context) (*Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id,order_number,customer,items,subtotal,discounted_subtotal,
		       discount,shipping,total,currency,created_at,estimated_delivery
		FROM orders ORDER BY created_at DESC, rowid DESC LIMIT 1`)
	return scanOrder(row.Scan)
}

func (r *sqliteRepo) GetOrderByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id,order_number,customer,items,subtotal,discounted_subtotal,
		       discount,shipping,total,currency,created_at,estimated_delivery
		FROM orders WHERE order_number=?`, orderNumber)
	return scanOrder(row.Scan)
}

func (r *sqliteRepo) AppendFailedNotification(ctx context.Context, fn *FailedNotification) error {
	customer, err := json.Marshal(fn.Customer)
	if err != nil {
		return fmt.Errorf("marshal customer: %w", err)
	}
	items, err := json.Marshal(fn.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO failed_notifications
		  (id, order_number, customer, items, total, attempts, last_error, fingerprint, created_at)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		fn.ID.String(), fn.OrderNumber, string(customer), string(items),
		fn.Total, fn.Attempts, fn.LastError, fn.Fingerprint,
		fn.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert failed notification: %w", err)
	}

	// FIFO cap: keep only the newest entries.
	_, err = tx.ExecContext(ctx, `
		DELETE FROM failed_notifications WHERE rowid NOT IN
		  (SELECT rowid FROM failed_notifications ORDER BY created_at DESC, rowid DESC LIMIT ?)`,
		FailedLogCap)
	if err != nil {
		return fmt.Errorf("evict failed notifications: %w", err)
	}
	return tx.Commit()
}

func (r *sqliteRepo) ListFailedNotifications(ctx context.Context) ([]*FailedNotification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id,order_number,customer,items,total,attempts,last_error,fingerprint,created_at
		FROM failed_notifications ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*FailedNotification
	for rows.Next() {
		var (
			fn               FailedNotification
			id, customer     string
			items, createdAt string
		)
		err := rows.Scan(&id, &fn.OrderNumber, &customer, &items, &fn.Total,
			&fn.Attempts, &fn.LastError, &fn.Fingerprint, &createdAt)
		if err != nil {
			return nil, err
		}
		fn.ID, _ = uuid.Parse(id)
		if err := json.Unmarshal([]byte(customer), &fn.Customer); err != nil {
			log.Printf("checkout: corrupt customer in failed notification %s: %v", id, err)
		}
		if err := json.Unmarshal([]byte(items), &fn.Items); err != nil {
			log.Printf("checkout: corrupt items in failed notification %s: %v", id, err)
		}
		fn.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, &fn)
	}
	return out, rows.Err()
}

// scanOrder reads one order row. A missing or unreadable record is reported
// as ErrOrderNotFound, never as a fatal error.
func scanOrder(scan func(...interface{}) error) (*Order, error) {
	var (
		o                    Order
		id, customer, items  string
		createdAt, estimated string
	)
	err := scan(&id, &o.OrderNumber, &customer, &items,
		&o.Breakdown.Subtotal, &o.Breakdown.DiscountedSubtotal, &o.Breakdown.Discount,
		&o.Breakdown.Shipping, &o.Breakdown.Total, &o.Currency, &createdAt, &estimated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	o.ID, _ = uuid.Parse(id)
	if err := json.Unmarshal([]byte(customer), &o.Customer); err != nil {
		log.Printf("checkout: corrupt customer in stored order %s: %v", o.OrderNumber, err)
		return nil, ErrOrderNotFound
	}
	if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
		log.Printf("checkout: corrupt items in stored order %s: %v", o.OrderNumber, err)
		return nil, ErrOrderNotFound
	}
	o.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	o.EstimatedDelivery, _ = time.Parse(time.RFC3339Nano, estimated)
	return &o, nil
}
