package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/craftline/forecast-backend/internal/domain"
	"github.com/craftline/forecast-backend/internal/repository"
	"github.com/jmoiron/sqlx"
)

type consumptionRepository struct {
	db *DB
}

// NewConsumptionRepository returns the postgres-backed consumption store
// reading the production output log and the inventory transaction ledger.
func NewConsumptionRepository(db *DB) repository.ConsumptionRepository {
	return &consumptionRepository{db: db}
}

func (r *consumptionRepository) StockedOutputEvents(ctx context.Context, materialID int64, from, to time.Time) ([]domain.StockedOutputEvent, error) {
	query := `
		SELECT product_id, date, quantity_produced, material_id, material_quantity
		FROM production_output_log
		WHERE material_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date
	`

	var events []domain.StockedOutputEvent
	if err := r.db.SelectContext(ctx, &events, query, materialID, from, to); err != nil {
		return nil, fmt.Errorf("error getting stocked output events for material %d: %w", materialID, err)
	}

	return events, nil
}

func (r *consumptionRepository) LedgerEvents(ctx context.Context, materialID int64, from, to time.Time) ([]domain.LedgerEvent, error) {
	query := `
		SELECT material_id, occurred_at, quantity, movement_type
		FROM inventory_transactions
		WHERE material_id = $1 AND occurred_at >= $2 AND occurred_at <= $3
		ORDER BY occurred_at
	`

	var events []domain.LedgerEvent
	if err := r.db.SelectContext(ctx, &events, query, materialID, from, to); err != nil {
		return nil, fmt.Errorf("error getting ledger events for material %d: %w", materialID, err)
	}

	return events, nil
}

func (r *consumptionRepository) InsertLedgerEvents(ctx context.Context, events []domain.LedgerEvent) error {
	if len(events) == 0 {
		return nil
	}

	query := `
		INSERT INTO inventory_transactions (material_id, occurred_at, quantity, movement_type)
		VALUES (:material_id, :occurred_at, :quantity, :movement_type)
	`

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, query, events); err != nil {
			return fmt.Errorf("error inserting ledger events: %w", err)
		}
		return nil
	})
}

type orderRepository struct {
	db *DB
}

// NewOrderRepository returns the postgres-backed accepted-order reader.
func NewOrderRepository(db *DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) AcceptedLines(ctx context.Context, productID int64, from, to time.Time) ([]domain.OrderLine, error) {
	query := `
		SELECT product_id, quantity, order_date
		FROM accepted_order_lines
		WHERE product_id = $1 AND order_date >= $2 AND order_date <= $3
		ORDER BY order_date
	`

	var lines []domain.OrderLine
	if err := r.db.SelectContext(ctx, &lines, query, productID, from, to); err != nil {
		return nil, fmt.Errorf("error getting order lines for product %d: %w", productID, err)
	}

	return lines, nil
}
