package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/vendalink/vendalink-api/internal/domain/entity"
	"github.com/vendalink/vendalink-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementação de OrderRepository (usável com pool ou tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, store_id, external_id, external_order_id, external_shipment_id,
	external_pack_id, marketplace, status, status_normalized, total, order_created_at,
	customer_name, customer_email, customer_phone, customer_city, customer_state,
	customer_address, customer_zip_code, raw_data, created_at, updated_at`

// Upsert insere ou atualiza pela constraint (store_id, external_id) num único
// statement: duas sincronizações concorrentes do mesmo pedido serializam no
// índice único e ambas terminam na mesma linha. id e created_at nunca mudam
// no caminho de update; referências externas só são sobrescritas quando o
// payload novo as traz (COALESCE), porque o marketplace pode omiti-las em
// re-syncs parciais.
func (r *OrderRepo) Upsert(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	query := `
		INSERT INTO orders (id, store_id, external_id, external_order_id, external_shipment_id,
			external_pack_id, marketplace, status, status_normalized, total, order_created_at,
			customer_name, customer_email, customer_phone, customer_city, customer_state,
			customer_address, customer_zip_code, raw_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (store_id, external_id) DO UPDATE SET
			external_order_id    = COALESCE(EXCLUDED.external_order_id, orders.external_order_id),
			external_shipment_id = COALESCE(EXCLUDED.external_shipment_id, orders.external_shipment_id),
			external_pack_id     = COALESCE(EXCLUDED.external_pack_id, orders.external_pack_id),
			status               = EXCLUDED.status,
			status_normalized    = EXCLUDED.status_normalized,
			total                = EXCLUDED.total,
			order_created_at     = EXCLUDED.order_created_at,
			customer_name        = EXCLUDED.customer_name,
			customer_email       = EXCLUDED.customer_email,
			customer_phone       = EXCLUDED.customer_phone,
			customer_city        = EXCLUDED.customer_city,
			customer_state       = EXCLUDED.customer_state,
			customer_address     = EXCLUDED.customer_address,
			customer_zip_code    = EXCLUDED.customer_zip_code,
			raw_data             = EXCLUDED.raw_data,
			updated_at           = now()
		RETURNING ` + orderColumns
	persisted, err := scanOrder(r.q.QueryRow(ctx, query,
		order.ID, order.StoreID, order.ExternalID,
		nullIfEmpty(order.ExternalOrderID), nullIfEmpty(order.ExternalShipmentID),
		nullIfEmpty(order.ExternalPackID), order.Marketplace, order.Status,
		order.StatusNormalized, order.Total, order.OrderCreatedAt,
		nullIfEmpty(order.CustomerName), nullIfEmpty(order.CustomerEmail),
		nullIfEmpty(order.CustomerPhone), nullIfEmpty(order.CustomerCity),
		nullIfEmpty(order.CustomerState), nullIfEmpty(order.CustomerAddress),
		nullIfEmpty(order.CustomerZipCode), order.RawData,
		order.CreatedAt, order.UpdatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("upsert order: %w", err)
	}
	return persisted, nil
}

// GetByIDForCompany devolve o pedido apenas se a loja dele pertence à empresa;
// (nil, nil) para inexistente ou fora do tenant, sem distinção.
func (r *OrderRepo) GetByIDForCompany(ctx context.Context, id, companyID string) (*entity.Order, error) {
	query := `
		SELECT ` + prefixColumns("o", orderColumns) + `
		FROM orders o
		JOIN stores s ON s.id = o.store_id
		WHERE o.id = $1 AND s.company_id = $2`
	o, err := scanOrder(r.q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// List lista pedidos do tenant com os filtros opcionais, mais recentes primeiro.
func (r *OrderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]*entity.Order, error) {
	where, args := buildOrderFilter(filter)
	query := `
		SELECT ` + prefixColumns("o", orderColumns) + `
		FROM orders o
		JOIN stores s ON s.id = o.store_id
		WHERE ` + where + `
		ORDER BY o.order_created_at DESC
		LIMIT ` + strconv.Itoa(filter.Limit) + ` OFFSET ` + strconv.Itoa(filter.Offset)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// CountByFilter conta os pedidos do filtro (total da paginação).
func (r *OrderRepo) CountByFilter(ctx context.Context, filter repository.OrderFilter) (int, error) {
	where, args := buildOrderFilter(filter)
	query := `SELECT COUNT(*) FROM orders o JOIN stores s ON s.id = o.store_id WHERE ` + where
	var count int
	if err := r.q.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return count, nil
}

// buildOrderFilter monta o WHERE parametrizado; CompanyID sempre presente.
func buildOrderFilter(filter repository.OrderFilter) (string, []any) {
	conds := []string{"s.company_id = $1"}
	args := []any{filter.CompanyID}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.StoreID != "" {
		add("o.store_id = $%d", filter.StoreID)
	}
	if filter.Status != "" {
		add("o.status_normalized = $%d", filter.Status)
	}
	if filter.From != nil {
		add("o.order_created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("o.order_created_at <= $%d", *filter.To)
	}
	return strings.Join(conds, " AND "), args
}

// prefixColumns prefixa cada coluna com o alias da tabela.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	var externalOrderID, externalShipmentID, externalPackID *string
	var customerName, customerEmail, customerPhone, customerCity *string
	var customerState, customerAddress, customerZipCode *string
	err := row.Scan(
		&o.ID, &o.StoreID, &o.ExternalID, &externalOrderID, &externalShipmentID,
		&externalPackID, &o.Marketplace, &o.Status, &o.StatusNormalized, &o.Total,
		&o.OrderCreatedAt, &customerName, &customerEmail, &customerPhone,
		&customerCity, &customerState, &customerAddress, &customerZipCode,
		&o.RawData, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.ExternalOrderID = derefStr(externalOrderID)
	o.ExternalShipmentID = derefStr(externalShipmentID)
	o.ExternalPackID = derefStr(externalPackID)
	o.CustomerName = derefStr(customerName)
	o.CustomerEmail = derefStr(customerEmail)
	o.CustomerPhone = derefStr(customerPhone)
	o.CustomerCity = derefStr(customerCity)
	o.CustomerState = derefStr(customerState)
	o.CustomerAddress = derefStr(customerAddress)
	o.CustomerZipCode = derefStr(customerZipCode)
	return &o, nil
}
