package supply

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediplus/clinic/internal/platform/db"
)

type supplyRepoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &supplyRepoPG{pool: pool}
}

func (r *supplyRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const supplyCols = `id, name, category, stock, unit_cost_usd`

func (r *supplyRepoPG) scanSupply(row pgx.Row) (*Supply, error) {
	var s Supply
	if err := row.Scan(&s.ID, &s.Name, &s.Category, &s.Stock, &s.UnitCostUSD); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *supplyRepoPG) Create(ctx context.Context, s *Supply) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO supply (name, category, stock, unit_cost_usd)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		s.Name, s.Category, s.Stock, s.UnitCostUSD,
	).Scan(&s.ID)
}

func (r *supplyRepoPG) GetByID(ctx context.Context, id int64) (*Supply, error) {
	s, err := r.scanSupply(r.conn(ctx).QueryRow(ctx, `SELECT `+supplyCols+` FROM supply WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	return s, err
}

func (r *supplyRepoPG) List(ctx context.Context) ([]*Supply, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+supplyCols+` FROM supply ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Supply
	for rows.Next() {
		s, err := r.scanSupply(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *supplyRepoPG) UpdateStock(ctx context.Context, id int64, stock int) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE supply SET stock = $2 WHERE id = $1`, id, stock)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *supplyRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM supply WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
