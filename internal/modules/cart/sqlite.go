package cart

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

type sqliteRepo struct{ db *sql.DB }

// NewSQLiteRepository creates the cart table if needed and returns the repo.
func NewSQLiteRepository(db *sql.DB) (Repository, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS cart_items (
		  product_id INTEGER NOT NULL,
		  size       TEXT NOT NULL DEFAULT '',
		  name       TEXT NOT NULL,
		  brand      TEXT NOT NULL,
		  unit_price INTEGER NOT NULL,
		  image_url  TEXT NOT NULL DEFAULT '',
		  quantity   INTEGER NOT NULL,
		  PRIMARY KEY (product_id, size)
		)`)
	if err != nil {
		return nil, fmt.Errorf("create cart_items table: %w", err)
	}
	return &sqliteRepo{db: db}, nil
}

func (r *sqliteRepo) Load(ctx context.Context) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id,size,name,brand,unit_price,image_url,quantity
		FROM cart_items ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		err := rows.Scan(&it.ProductID, &it.Size, &it.Name, &it.Brand,
			&it.UnitPrice, &it.ImageURL, &it.Quantity)
		if err != nil {
			// A row we cannot read is treated as absent, not fatal.
			log.Printf("cart: skipping unreadable stored row: %v", err)
			continue
		}
		if it.Quantity < 1 {
			continue
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *sqliteRepo) Save(ctx context.Context, items []Item) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items`); err != nil {
		return fmt.Errorf("clear cart_items: %w", err)
	}
	for _, it := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO cart_items (product_id, size, name, brand, unit_price, image_url, quantity)
			VALUES (?,?,?,?,?,?,?)`,
			it.ProductID, it.Size, it.Name, it.Brand, it.UnitPrice, it.ImageURL, it.Quantity)
		if err != nil {
			return fmt.Errorf("insert cart item %d/%s: %w", it.ProductID, it.Size, err)
		}
	}
	return tx.Commit()
}
