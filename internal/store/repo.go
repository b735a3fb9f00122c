package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"demo/interview/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Repo struct {
	Pool PgxIface
}

func New(pool PgxIface) *Repo { return &Repo{Pool: pool} }

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (r *Repo) CreateOrder(ctx context.Context, o model.Order) error {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, start_date, is_active, created_at)
		VALUES ($1,$2,$3,$4)
	`, o.ID, o.StartDate, o.IsActive, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	if err := insertTags(ctx, tx, o.Tags); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repo) UpsertOrder(ctx context.Context, o model.Order) error {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// is_active is left out of the update set: ingest never reactivates.
	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, start_date, is_active, created_at)
		VALUES ($1,$2,TRUE,$3)
		ON CONFLICT (id) DO UPDATE SET start_date=EXCLUDED.start_date
	`, o.ID, o.StartDate, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert order: %w", err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM order_tags WHERE order_id=$1`, o.ID)
	if err != nil {
		return fmt.Errorf("delete tags: %w", err)
	}
	if err := insertTags(ctx, tx, o.Tags); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertTags(ctx context.Context, db execer, tags []model.OrderTag) error {
	for _, t := range tags {
		_, err := db.Exec(ctx, `
			INSERT INTO order_tags (id, order_id, label, created_at)
			VALUES ($1,$2,$3,$4)
		`, t.ID, t.OrderID, t.Label, t.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert tag: %w", err)
		}
	}
	return nil
}

func (r *Repo) GetOrder(ctx context.Context, id string) (model.Order, bool, error) {
	var o model.Order
	err := r.Pool.QueryRow(ctx, `
		SELECT id, start_date, is_active, created_at
		FROM orders
		WHERE id=$1`, id).Scan(&o.ID, &o.StartDate, &o.IsActive, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, false, nil
		}
		return model.Order{}, false, err
	}

	tags, err := r.tagsByOrder(ctx, []string{o.ID})
	if err != nil {
		return model.Order{}, false, err
	}
	o.Tags = tags[o.ID]
	return o, true, nil
}

func (r *Repo) ListOrders(ctx context.Context) ([]model.Order, error) {
	return r.queryOrders(ctx, `
		SELECT id, start_date, is_active, created_at
		FROM orders
		ORDER BY created_at, id`)
}

func (r *Repo) ListOrdersInRange(ctx context.Context, from, to time.Time) ([]model.Order, error) {
	return r.queryOrders(ctx, `
		SELECT id, start_date, is_active, created_at
		FROM orders
		WHERE start_date BETWEEN $1 AND $2
		ORDER BY created_at, id`, from, to)
}

func (r *Repo) queryOrders(ctx context.Context, sql string, args ...any) ([]model.Order, error) {
	rows, err := r.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Order{}
	var ids []string
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.StartDate, &o.IsActive, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	tags, err := r.tagsByOrder(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Tags = tags[out[i].ID]
	}
	return out, nil
}

func (r *Repo) tagsByOrder(ctx context.Context, orderIDs []string) (map[string][]model.OrderTag, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT id, order_id, label, created_at
		FROM order_tags
		WHERE order_id = ANY($1)
		ORDER BY created_at, id`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]model.OrderTag, len(orderIDs))
	for rows.Next() {
		var t model.OrderTag
		if err := rows.Scan(&t.ID, &t.OrderID, &t.Label, &t.CreatedAt); err != nil {
			return nil, err
		}
		out[t.OrderID] = append(out[t.OrderID], t)
	}
	return out, rows.Err()
}

func (r *Repo) DeactivateOrder(ctx context.Context, id string) (model.Order, bool, error) {
	var (
		o         model.Order
		wasActive bool
	)
	err := r.Pool.QueryRow(ctx, `
		WITH prev AS (
		  SELECT id, is_active FROM orders WHERE id=$1 FOR UPDATE
		)
		UPDATE orders o SET is_active=FALSE
		FROM prev
		WHERE o.id = prev.id
		RETURNING o.id, o.start_date, o.is_active, o.created_at, prev.is_active`, id).
		Scan(&o.ID, &o.StartDate, &o.IsActive, &o.CreatedAt, &wasActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, false, model.ErrOrderNotFound
		}
		return model.Order{}, false, fmt.Errorf("deactivate order: %w", err)
	}

	tags, err := r.tagsByOrder(ctx, []string{o.ID})
	if err != nil {
		return model.Order{}, false, err
	}
	o.Tags = tags[o.ID]
	return o, wasActive, nil
}

func (r *Repo) CreateTag(ctx context.Context, t model.OrderTag) error {
	if err := insertTags(ctx, r.Pool, []model.OrderTag{t}); err != nil {
		if isForeignKeyViolation(err) {
			return model.ErrOrderNotFound
		}
		return err
	}
	return nil
}

func (r *Repo) ListTags(ctx context.Context) ([]model.OrderTag, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT id, order_id, label, created_at
		FROM order_tags
		ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.OrderTag{}
	for rows.Next() {
		var t model.OrderTag
		if err := rows.Scan(&t.ID, &t.OrderID, &t.Label, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
