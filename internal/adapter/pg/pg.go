package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stock-settlement/internal/domain"
	"stock-settlement/internal/port"
)

var _ port.Repository = (*PgRepo)(nil)

// portfolioID pins the singleton aggregate to one row.
const portfolioID = "portfolio"

type PgRepo struct {
	pool *pgxpool.Pool
}

// call Close when finished working with the database.
func NewPgRepo(ctx context.Context, dsn string) (*PgRepo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	return &PgRepo{pool: pool}, nil
}

func (p *PgRepo) Close(ctx context.Context) {
	if p.pool != nil {
		p.pool.Close()
	}
}

func (p *PgRepo) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var o domain.Order
	var side, status string
	err := p.pool.QueryRow(ctx, `
SELECT order_id, symbol, side, quantity, status, created_at
FROM orders
WHERE order_id = $1
`, orderID).Scan(&o.OrderID, &o.Symbol, &side, &o.Quantity, &status, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	o.Side = domain.Side(side)
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

func (p *PgRepo) SaveOrder(ctx context.Context, o *domain.Order) error {
	if o == nil {
		return errors.New("nil order")
	}
	_, err := p.pool.Exec(ctx, saveOrderSQL,
		o.OrderID, o.Symbol, string(o.Side), o.Quantity, string(o.Status), o.CreatedAt)
	return err
}

const saveOrderSQL = `
INSERT INTO orders(order_id, symbol, side, quantity, status, created_at)
VALUES($1,$2,$3,$4,$5,$6)
ON CONFLICT (order_id) DO UPDATE SET
  symbol = EXCLUDED.symbol,
  side = EXCLUDED.side,
  quantity = EXCLUDED.quantity,
  status = EXCLUDED.status
`

func (p *PgRepo) LoadPortfolio(ctx context.Context) (*domain.Portfolio, error) {
	var data string
	var pf domain.Portfolio
	err := p.pool.QueryRow(ctx, `
SELECT holdings_json, last_updated, revision
FROM portfolio
WHERE id = $1
`, portfolioID).Scan(&data, &pf.LastUpdated, &pf.Revision)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &pf.Holdings); err != nil {
		return nil, fmt.Errorf("pg: decode holdings: %w", err)
	}
	if pf.Holdings == nil {
		pf.Holdings = make(map[string]int64)
	}
	return &pf, nil
}

// ApplySettlement writes the portfolio and the order's terminal status
// in a single transaction. The portfolio upsert is guarded by the
// revision the caller read, so a concurrent writer forces a retry
// instead of a lost update.
func (p *PgRepo) ApplySettlement(ctx context.Context, o *domain.Order, pf *domain.Portfolio) error {
	return p.withTx(ctx, func(tx pgx.Tx) error {
		b, err := json.Marshal(pf.Holdings)
		if err != nil {
			return fmt.Errorf("pg: encode holdings: %w", err)
		}
		res, err := tx.Exec(ctx, `
INSERT INTO portfolio(id, holdings_json, last_updated, revision)
VALUES($1,$2,$3,1)
ON CONFLICT (id) DO UPDATE SET
  holdings_json = EXCLUDED.holdings_json,
  last_updated = EXCLUDED.last_updated,
  revision = portfolio.revision + 1
WHERE portfolio.revision = $4
`, portfolioID, string(b), pf.LastUpdated, pf.Revision)
		if err != nil {
			return err
		}
		if res.RowsAffected() == 0 {
			return port.ErrRevisionConflict
		}
		_, err = tx.Exec(ctx, saveOrderSQL,
			o.OrderID, o.Symbol, string(o.Side), o.Quantity, string(o.Status), o.CreatedAt)
		return err
	})
}

func (p *PgRepo) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	committed = true
	return nil
}
