package repositories

import (
	"context"
	"errors"
	"fmt"

	"shopwave/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRepository struct {
	db *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{db: db}
}

const customerQuery = `
	SELECT
		c.id, c.user_id, c.email, c.full_name, c.coins,
		COUNT(o.id),
		COALESCE(SUM(o.total) FILTER (WHERE o.status <> 'cancelled'), 0)::text,
		c.created_at, c.updated_at
	FROM customers c
	LEFT JOIN orders o ON o.user_id = c.user_id`

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	var c models.Customer
	var spent string
	if err := row.Scan(&c.ID, &c.UserID, &c.Email, &c.FullName, &c.Coins, &c.OrdersCount, &spent, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if c.TotalSpent, err = parseNumeric(spent); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) List(ctx context.Context, search string, limit, offset int) ([]models.Customer, int, error) {
	where := ""
	args := []interface{}{}
	if search != "" {
		args = append(args, "%"+search+"%")
		where = " WHERE c.email ILIKE $1 OR c.full_name ILIKE $1"
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM customers c"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	query := customerQuery + where +
		fmt.Sprintf(" GROUP BY c.id ORDER BY c.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate customers: %w", err)
	}
	return customers, total, nil
}

func (r *CustomerRepository) FindByUserID(ctx context.Context, userID string) (*models.Customer, error) {
	c, err := scanCustomer(r.db.QueryRow(ctx, customerQuery+" WHERE c.user_id = $1 GROUP BY c.id", userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find customer %s: %w", userID, err)
	}
	return c, nil
}
