package storage

import (
	"context"
	"database/sql"
	"time"
)

const productColumns = `id, user_id, title, url, retailer, retailer_product_id,
	current_price, currency, image_url, description, available, created_at, updated_at`

func scanProduct(row interface{ Scan(...interface{}) error }) (*Product, error) {
	var p Product
	var image, desc sql.NullString
	var available int
	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.URL, &p.Retailer, &p.RetailerProductID,
		&p.CurrentPrice, &p.Currency, &image, &desc, &available, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFoundErr(err)
	}
	p.ImageURL = image.String
	p.Description = desc.String
	p.Available = available == 1
	return &p, nil
}

// CreateProduct inserts the product and its first price-history point in
// one transaction, so a product never exists without its opening point.
func (d *DB) CreateProduct(ctx context.Context, p *Product) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `INSERT INTO products
		(user_id, title, url, retailer, retailer_product_id, current_price, currency,
		 image_url, description, available, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		p.UserID, p.Title, p.URL, p.Retailer, p.RetailerProductID, p.CurrentPrice, p.Currency,
		nullIfEmpty(p.ImageURL), nullIfEmpty(p.Description), boolToInt(p.Available), now, now)
	if err != nil {
		return err
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO price_history (product_id, price, currency, recorded_at) VALUES (?,?,?,?)`,
		p.ID, p.CurrentPrice, p.Currency, now)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (d *DB) GetProduct(ctx context.Context, id int64) (*Product, error) {
	row := d.sql.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	return scanProduct(row)
}

// GetProductByListing looks a listing up globally by its natural
// identity, ignoring per-user disambiguation suffixes.
func (d *DB) GetProductByListing(ctx context.Context, retailer, retailerProductID string) (*Product, error) {
	row := d.sql.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products
		WHERE retailer = ? AND (retailer_product_id = ? OR retailer_product_id LIKE ? || '-u%')
		ORDER BY id LIMIT 1`,
		retailer, retailerProductID, retailerProductID)
	return scanProduct(row)
}

// GetProductByListingForUser finds the given user's row for a listing.
func (d *DB) GetProductByListingForUser(ctx context.Context, retailer, retailerProductID string, userID int64) (*Product, error) {
	row := d.sql.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products
		WHERE retailer = ? AND user_id = ?
		AND (retailer_product_id = ? OR retailer_product_id LIKE ? || '-u%')
		LIMIT 1`,
		retailer, userID, retailerProductID, retailerProductID)
	return scanProduct(row)
}

func (d *DB) ListProducts(ctx context.Context, userID int64) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY id`
	args := []interface{}{}
	if userID != 0 {
		query = `SELECT ` + productColumns + ` FROM products WHERE user_id = ? ORDER BY id`
		args = append(args, userID)
	}
	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// ListProductIDs returns the ids of a user's products, or of every
// product when userID is 0.
func (d *DB) ListProductIDs(ctx context.Context, userID int64) ([]int64, error) {
	query := `SELECT id FROM products ORDER BY id`
	args := []interface{}{}
	if userID != 0 {
		query = `SELECT id FROM products WHERE user_id = ? ORDER BY id`
		args = append(args, userID)
	}
	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteProduct removes a product; history and alerts cascade.
func (d *DB) DeleteProduct(ctx context.Context, id int64) error {
	res, err := d.sql.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
