package paper

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/pkg/logger"
)

// Repository persists the paper-trading ledger and serves the per-ticker
// win/loss history the adaptive layer learns from.
// ⭐ SSOT: 모의매매 원장은 여기서만
type Repository struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// NewRepository creates a paper trade repository
func NewRepository(pool *pgxpool.Pool, log *logger.Logger) *Repository {
	return &Repository{pool: pool, logger: log}
}

// Trade is one row of the paper ledger.
type Trade struct {
	ID        int64      `json:"id"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	Side      string     `json:"side"`
	Quantity  int64      `json:"quantity"`
	Price     int64      `json:"price"`
	Score     float64    `json:"score"`
	ExitPrice *int64     `json:"exit_price,omitempty"`
	ProfitPct *float64   `json:"profit_pct,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

// Execute records an order in the ledger. Implements contracts.OrderExecutor
// for paper mode — 실주문은 절대 나가지 않는다.
func (r *Repository) Execute(ctx context.Context, order contracts.Order) error {
	query := `
		INSERT INTO trading.paper_trades (stock_code, stock_name, side, quantity, price, score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`

	_, err := r.pool.Exec(ctx, query,
		order.Code, order.Name, string(order.Side), order.Quantity, order.Price, order.Score,
	)
	if err != nil {
		return fmt.Errorf("record paper trade: %w", err)
	}

	r.logger.WithFields(map[string]interface{}{
		"code":     order.Code,
		"side":     order.Side,
		"quantity": order.Quantity,
		"price":    order.Price,
	}).Info("Paper trade recorded")

	return nil
}

// CloseTrade marks a position closed and stores its outcome.
// profit_pct 부호가 승/패 판정의 원천이다.
func (r *Repository) CloseTrade(ctx context.Context, id int64, exitPrice int64) error {
	query := `
		UPDATE trading.paper_trades
		SET exit_price = $2,
			profit_pct = (($2 - price)::numeric / NULLIF(price, 0)) * 100,
			closed_at = NOW()
		WHERE id = $1 AND closed_at IS NULL
	`

	tag, err := r.pool.Exec(ctx, query, id, exitPrice)
	if err != nil {
		return fmt.Errorf("close paper trade %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("paper trade %d not found or already closed", id)
	}
	return nil
}

// GetOpenTrades returns positions without an exit.
func (r *Repository) GetOpenTrades(ctx context.Context) ([]*Trade, error) {
	query := `
		SELECT id, stock_code, stock_name, side, quantity, price, score, created_at
		FROM trading.paper_trades
		WHERE closed_at IS NULL AND side = 'buy'
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []*Trade
	for rows.Next() {
		var t Trade
		if err := rows.Scan(&t.ID, &t.Code, &t.Name, &t.Side, &t.Quantity, &t.Price, &t.Score, &t.CreatedAt); err != nil {
			return nil, err
		}
		trades = append(trades, &t)
	}
	return trades, rows.Err()
}

// HasOpenPosition reports whether a ticker has an unclosed buy.
// 트레이딩 루프의 재매수 방지 체크.
func (r *Repository) HasOpenPosition(ctx context.Context, code string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM trading.paper_trades
			WHERE stock_code = $1 AND side = 'buy' AND closed_at IS NULL
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// GetOutcomes aggregates closed trades into per-ticker win/loss counts.
// Implements contracts.OutcomeRepository.
func (r *Repository) GetOutcomes(ctx context.Context) (map[string]contracts.TradeOutcome, error) {
	query := `
		SELECT stock_code,
			COUNT(*) FILTER (WHERE profit_pct > 0)  AS wins,
			COUNT(*) FILTER (WHERE profit_pct <= 0) AS losses
		FROM trading.paper_trades
		WHERE closed_at IS NOT NULL
		GROUP BY stock_code
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	outcomes := make(map[string]contracts.TradeOutcome)
	for rows.Next() {
		var o contracts.TradeOutcome
		if err := rows.Scan(&o.Code, &o.Wins, &o.Losses); err != nil {
			return nil, err
		}
		outcomes[o.Code] = o
	}
	return outcomes, rows.Err()
}

// DailySummary aggregates today's paper activity for the report job.
type DailySummary struct {
	Trades   int     `json:"trades"`
	Closed   int     `json:"closed"`
	WinRate  float64 `json:"win_rate"`
	AvgPct   float64 `json:"avg_pct"`
	BestCode string  `json:"best_code"`
}

// GetDailySummary returns today's ledger aggregate.
func (r *Repository) GetDailySummary(ctx context.Context) (*DailySummary, error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE closed_at IS NOT NULL),
			COALESCE(AVG(CASE WHEN profit_pct > 0 THEN 1.0 ELSE 0.0 END) FILTER (WHERE closed_at IS NOT NULL), 0) * 100,
			COALESCE(AVG(profit_pct) FILTER (WHERE closed_at IS NOT NULL), 0),
			COALESCE((SELECT stock_code FROM trading.paper_trades
				WHERE created_at >= CURRENT_DATE AND profit_pct IS NOT NULL
				ORDER BY profit_pct DESC LIMIT 1), '')
		FROM trading.paper_trades
		WHERE created_at >= CURRENT_DATE
	`

	var s DailySummary
	err := r.pool.QueryRow(ctx, query).Scan(&s.Trades, &s.Closed, &s.WinRate, &s.AvgPct, &s.BestCode)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
