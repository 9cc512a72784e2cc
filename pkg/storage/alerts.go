package storage

import (
	"context"
	"time"
)

const alertColumns = `id, product_id, user_id, target_price, is_triggered, created_at, updated_at`

func scanAlert(row interface{ Scan(...interface{}) error }) (*Alert, error) {
	var a Alert
	var triggered int
	err := row.Scan(&a.ID, &a.ProductID, &a.UserID, &a.TargetPrice, &triggered, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, notFoundErr(err)
	}
	a.IsTriggered = triggered == 1
	return &a, nil
}

func (d *DB) CreateAlert(ctx context.Context, a *Alert) error {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	res, err := d.sql.ExecContext(ctx,
		`INSERT INTO alerts (product_id, user_id, target_price, is_triggered, created_at, updated_at)
		 VALUES (?,?,?,0,?,?)`,
		a.ProductID, a.UserID, a.TargetPrice, now, now)
	if err != nil {
		return err
	}
	a.ID, err = res.LastInsertId()
	return err
}

func (d *DB) GetAlert(ctx context.Context, id int64) (*Alert, error) {
	row := d.sql.QueryRowContext(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id = ?`, id)
	return scanAlert(row)
}

func (d *DB) ListAlertsByUser(ctx context.Context, userID int64) ([]Alert, error) {
	return d.listAlerts(ctx, `SELECT `+alertColumns+` FROM alerts WHERE user_id = ? ORDER BY id`, userID)
}

// ArmedAlertsAtOrAbove returns a product's untriggered alerts whose
// target price is satisfied by the given price.
func (d *DB) ArmedAlertsAtOrAbove(ctx context.Context, productID int64, price float64) ([]Alert, error) {
	return d.listAlerts(ctx,
		`SELECT `+alertColumns+` FROM alerts
		 WHERE product_id = ? AND is_triggered = 0 AND target_price >= ? ORDER BY id`,
		productID, price)
}

func (d *DB) listAlerts(ctx context.Context, query string, args ...interface{}) ([]Alert, error) {
	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *a)
	}
	return alerts, rows.Err()
}

// MarkTriggered flips an armed alert to triggered. The is_triggered
// guard in the WHERE clause makes the false→true transition atomic:
// false means the alert was already triggered (or gone) and must not be
// re-fired.
func (d *DB) MarkTriggered(ctx context.Context, alertID int64) (bool, error) {
	res, err := d.sql.ExecContext(ctx,
		`UPDATE alerts SET is_triggered = 1, updated_at = ? WHERE id = ? AND is_triggered = 0`,
		time.Now().UTC(), alertID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ResetAlert re-arms a triggered alert.
func (d *DB) ResetAlert(ctx context.Context, alertID int64) error {
	_, err := d.sql.ExecContext(ctx,
		`UPDATE alerts SET is_triggered = 0, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), alertID)
	return err
}

func (d *DB) UpdateAlertTarget(ctx context.Context, alertID int64, targetPrice float64) error {
	res, err := d.sql.ExecContext(ctx,
		`UPDATE alerts SET target_price = ?, updated_at = ? WHERE id = ?`,
		targetPrice, time.Now().UTC(), alertID)
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

func (d *DB) DeleteAlert(ctx context.Context, alertID int64) error {
	res, err := d.sql.ExecContext(ctx, `DELETE FROM alerts WHERE id = ?`, alertID)
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
