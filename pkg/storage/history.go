package storage

import (
	"context"
	"time"
)

// RecordPrice updates the product row and appends the matching history
// point in a single transaction: either both reflect the new price or
// neither does.
func (d *DB) RecordPrice(ctx context.Context, productID int64, price float64, currency string, available bool) error {
	now := time.Now().UTC()

	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE products SET current_price = ?, currency = ?, available = ?, updated_at = ? WHERE id = ?`,
		price, currency, boolToInt(available), now, productID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		err = ErrNotFound
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO price_history (product_id, price, currency, recorded_at) VALUES (?,?,?,?)`,
		productID, price, currency, now)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// PriceHistory returns the newest points first. limit <= 0 means all.
func (d *DB) PriceHistory(ctx context.Context, productID int64, limit int) ([]PricePoint, error) {
	query := `SELECT id, product_id, price, currency, recorded_at FROM price_history
		WHERE product_id = ? ORDER BY recorded_at DESC, id DESC`
	args := []interface{}{productID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []PricePoint
	for rows.Next() {
		var p PricePoint
		if err := rows.Scan(&p.ID, &p.ProductID, &p.Price, &p.Currency, &p.RecordedAt); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (d *DB) PriceStats(ctx context.Context, productID int64) (PriceStats, error) {
	var s PriceStats
	err := d.sql.QueryRowContext(ctx,
		`SELECT COALESCE(MIN(price), 0), COALESCE(MAX(price), 0), COALESCE(AVG(price), 0), COUNT(*)
		 FROM price_history WHERE product_id = ?`, productID).
		Scan(&s.Min, &s.Max, &s.Avg, &s.Count)
	return s, err
}
