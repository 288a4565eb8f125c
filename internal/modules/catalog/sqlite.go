package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
)

// ErrProductNotFound is returned when a product id is not in the catalog.
var ErrProductNotFound = errors.New("product not found in catalog")

type sqliteRepo struct{ db *sql.DB }

// NewSQLiteRepository creates the catalog table if needed and returns the repo.
func NewSQLiteRepository(db *sql.DB) (Repository, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS products (
		  id        INTEGER PRIMARY KEY,
		  name      TEXT NOT NULL,
		  brand     TEXT NOT NULL,
		  price     INTEGER NOT NULL,
		  image_url TEXT NOT NULL DEFAULT '',
		  sizes     TEXT NOT NULL DEFAULT '[]',
		  on_sale   INTEGER NOT NULL DEFAULT 0
		)`)
	if err != nil {
		return nil, fmt.Errorf("create products table: %w", err)
	}
	return &sqliteRepo{db: db}, nil
}

func (r *sqliteRepo) Seed(ctx context.Context, products []*Product) error {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, p := range products {
		sizes, err := json.Marshal(p.Sizes)
		if err != nil {
			return fmt.Errorf("marshal sizes for product %d: %w", p.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO products (id, name, brand, price, image_url, sizes, on_sale)
			VALUES (?,?,?,?,?,?,?)`,
			p.ID, p.Name, p.Brand, p.Price, p.ImageURL, string(sizes), p.OnSale)
		if err != nil {
			return fmt.Errorf("insert product %d: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

func (r *sqliteRepo) GetByID(ctx context.Context, id int64) (*Product, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id,name,brand,price,image_url,sizes,on_sale
		FROM products WHERE id=?`, id)
	p, err := scanProduct(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (r *sqliteRepo) List(ctx context.Context, brand string) ([]*Product, error) {
	query := `SELECT id,name,brand,price,image_url,sizes,on_sale FROM products`
	args := []interface{}{}
	if brand != "" {
		query += ` WHERE brand=?`
		args = append(args, brand)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func scanProduct(scan func(...interface{}) error) (*Product, error) {
	p := &Product{}
	var sizes string
	err := scan(&p.ID, &p.Name, &p.Brand, &p.Price, &p.ImageURL, &sizes, &p.OnSale)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(sizes), &p.Sizes); err != nil {
		// A corrupt sizes column degrades to "no listed sizes".
		log.Printf("catalog: corrupt sizes for product %d: %v", p.ID, err)
		p.Sizes = nil
	}
	return p, nil
}
