package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"shopwave/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `
	o.id, o.order_number, o.user_id, o.email, o.status,
	o.subtotal::text, o.total_discount::text, o.total_shipping::text,
	o.platform_fee::text, o.total::text, o.coins_earned,
	o.payment_method, o.payment_id, o.shipping_address,
	o.created_at, o.updated_at`

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	var subtotal, discount, shipping, fee, total string
	var address []byte

	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.Email, &o.Status,
		&subtotal, &discount, &shipping, &fee, &total, &o.CoinsEarned,
		&o.PaymentMethod, &o.PaymentID, &address,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if o.Subtotal, err = parseNumeric(subtotal); err != nil {
		return nil, err
	}
	if o.TotalDiscount, err = parseNumeric(discount); err != nil {
		return nil, err
	}
	if o.TotalShipping, err = parseNumeric(shipping); err != nil {
		return nil, err
	}
	if o.PlatformFee, err = parseNumeric(fee); err != nil {
		return nil, err
	}
	if o.Total, err = parseNumeric(total); err != nil {
		return nil, err
	}

	if len(address) > 0 {
		if err := json.Unmarshal(address, &o.ShippingAddress); err != nil {
			return nil, fmt.Errorf("decode shipping address: %w", err)
		}
	}
	return &o, nil
}

// Create stores the order and its items, then credits the earned coins to
// the customer, all in one transaction.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order, customerName string) error {
	address, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("encode shipping address: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (
			order_number, user_id, email, status,
			subtotal, total_discount, total_shipping, platform_fee, total,
			coins_earned, payment_method, payment_id, shipping_address
		) VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7::numeric, $8::numeric, $9::numeric, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`,
		order.OrderNumber, order.UserID, order.Email, order.Status,
		order.Subtotal.String(), order.TotalDiscount.String(), order.TotalShipping.String(),
		order.PlatformFee.String(), order.Total.String(),
		order.CoinsEarned, order.PaymentMethod, order.PaymentID, address,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, product_id, name, image, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric)
			RETURNING id`,
			order.ID, item.ProductID, item.Name, item.Image, item.Quantity,
			item.UnitPrice.String(), item.LineTotal.String(),
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("insert order item %s: %w", item.ProductID, err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO customers (user_id, email, full_name, coins)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			email = COALESCE(NULLIF(EXCLUDED.email, ''), customers.email),
			full_name = COALESCE(NULLIF(EXCLUDED.full_name, ''), customers.full_name),
			coins = customers.coins + EXCLUDED.coins,
			updated_at = NOW()`,
		order.UserID, order.Email, customerName, order.CoinsEarned,
	)
	if err != nil {
		return fmt.Errorf("credit customer: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	return nil
}

func orderWhere(filter models.OrderFilter) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}

	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("o.user_id = $%d", len(args)))
	}
	if filter.Status != "" && !strings.EqualFold(filter.Status, "all") {
		args = append(args, strings.ToLower(filter.Status))
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(o.order_number ILIKE $%d OR o.email ILIKE $%d)", len(args), len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// List returns one page of orders, newest first, without items.
func (r *OrderRepository) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int, error) {
	where, args := orderWhere(filter)

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM orders o"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := "SELECT" + orderColumns + " FROM orders o" + where +
		fmt.Sprintf(" ORDER BY o.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, total, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	order, err := scanOrder(r.db.QueryRow(ctx, "SELECT"+orderColumns+" FROM orders o WHERE o.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order %d: %w", id, err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, name, image, quantity, unit_price::text, line_total::text
		FROM order_items WHERE order_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	order.Items = []models.OrderItem{}
	for rows.Next() {
		var it models.OrderItem
		var unit, line string
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Image, &it.Quantity, &unit, &line); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if it.UnitPrice, err = parseNumeric(unit); err != nil {
			return nil, err
		}
		if it.LineTotal, err = parseNumeric(line); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return order, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.db.Exec(ctx, `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("update order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats aggregates revenue over orders that were not cancelled.
func (r *OrderRepository) Stats(ctx context.Context) (models.OrderStats, error) {
	var stats models.OrderStats
	var revenue, avg string

	err := r.db.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(total), 0)::text,
			COUNT(*),
			COUNT(DISTINCT user_id),
			COALESCE(ROUND(AVG(total), 2), 0)::text
		FROM orders
		WHERE status <> $1`, models.OrderStatusCancelled,
	).Scan(&revenue, &stats.TotalOrders, &stats.TotalCustomers, &avg)
	if err != nil {
		return stats, fmt.Errorf("order stats: %w", err)
	}

	if stats.TotalRevenue, err = parseNumeric(revenue); err != nil {
		return stats, err
	}
	if stats.AvgOrderValue, err = parseNumeric(avg); err != nil {
		return stats, err
	}
	return stats, nil
}

func (r *OrderRepository) TopProducts(ctx context.Context, limit int) ([]models.TopProduct, error) {
	rows, err := r.db.Query(ctx, `
		SELECT i.product_id, MAX(i.name), SUM(i.quantity), SUM(i.line_total)::text
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		WHERE o.status <> $1
		GROUP BY i.product_id
		ORDER BY SUM(i.line_total) DESC
		LIMIT $2`, models.OrderStatusCancelled, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()

	top := []models.TopProduct{}
	for rows.Next() {
		var tp models.TopProduct
		var revenue string
		if err := rows.Scan(&tp.ProductID, &tp.Name, &tp.UnitsSold, &revenue); err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		if tp.Revenue, err = parseNumeric(revenue); err != nil {
			return nil, err
		}
		top = append(top, tp)
	}
	return top, rows.Err()
}

func (r *OrderRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
