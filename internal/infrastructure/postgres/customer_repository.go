package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vendalink/vendalink-api/internal/domain/entity"
	"github.com/vendalink/vendalink-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo mantém o índice derivado de clientes por loja.
type CustomerRepo struct {
	q Querier
}

func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// UpsertFromOrder atualiza a linha do cliente (store_id, email) após um pedido
// ser gravado. Os agregados são recomputados a partir da tabela de pedidos em
// vez de incrementados, então re-sincronizar o mesmo pedido não conta em
// dobro. Pedidos sem e-mail não indexam cliente.
func (r *CustomerRepo) UpsertFromOrder(ctx context.Context, order *entity.Order) error {
	if order.CustomerEmail == "" {
		return nil
	}
	query := `
		INSERT INTO store_customers (id, store_id, email, name, phone, city, state,
			order_count, total_spent, last_order_at, created_at, updated_at)
		SELECT $1, o.store_id, $2, $3, $4, $5, $6,
			COUNT(*), COALESCE(SUM(o.total), 0), MAX(o.order_created_at), now(), now()
		FROM orders o
		WHERE o.store_id = $7 AND o.customer_email = $2
		GROUP BY o.store_id
		ON CONFLICT (store_id, email) DO UPDATE SET
			name          = EXCLUDED.name,
			phone         = COALESCE(NULLIF(EXCLUDED.phone, ''), store_customers.phone),
			city          = EXCLUDED.city,
			state         = EXCLUDED.state,
			order_count   = EXCLUDED.order_count,
			total_spent   = EXCLUDED.total_spent,
			last_order_at = EXCLUDED.last_order_at,
			updated_at    = now()`
	_, err := r.q.Exec(ctx, query,
		uuid.NewString(), order.CustomerEmail, order.CustomerName,
		order.CustomerPhone, order.CustomerCity, order.CustomerState,
		order.StoreID,
	)
	if err != nil {
		return fmt.Errorf("upsert store customer: %w", err)
	}
	return nil
}

// ListByCompany lista clientes do tenant, opcionalmente por loja, maiores
// compradores primeiro.
func (r *CustomerRepo) ListByCompany(ctx context.Context, companyID, storeID string, limit, offset int) ([]*entity.StoreCustomer, error) {
	query := `
		SELECT c.id, c.store_id, c.email, c.name, c.phone, c.city, c.state,
			c.order_count, c.total_spent, c.last_order_at, c.created_at, c.updated_at
		FROM store_customers c
		JOIN stores s ON s.id = c.store_id
		WHERE s.company_id = $1`
	args := []any{companyID}
	if storeID != "" {
		args = append(args, storeID)
		query += ` AND c.store_id = $2`
	}
	query += ` ORDER BY c.total_spent DESC, c.email
		LIMIT ` + strconv.Itoa(limit) + ` OFFSET ` + strconv.Itoa(offset)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list store customers: %w", err)
	}
	defer rows.Close()
	var list []*entity.StoreCustomer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan store customer: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func scanCustomer(row pgx.Row) (*entity.StoreCustomer, error) {
	var c entity.StoreCustomer
	var name, phone, city, state *string
	err := row.Scan(
		&c.ID, &c.StoreID, &c.Email, &name, &phone, &city, &state,
		&c.OrderCount, &c.TotalSpent, &c.LastOrderAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Name = derefStr(name)
	c.Phone = derefStr(phone)
	c.City = derefStr(city)
	c.State = derefStr(state)
	return &c, nil
}
