package orders

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
)

type ItemInput struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type Repo struct{ DB *pgxpool.Pool }

// CreateOrderTx: cek stok + insert order + potong stok dalam satu tx.
// Row produk di-lock FOR UPDATE urut product_id (hindari deadlock antar
// order yang bersilangan). Gagal satu item = rollback semua.
func (r *Repo) CreateOrderTx(ctx context.Context, customerID string, items []ItemInput) (Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	sorted := make([]ItemInput, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	// lock + cek stok; sekalian ambil harga dari table products
	// (jangan trust harga dari client)
	prices := make(map[string]int, len(sorted))
	total := 0
	for _, it := range sorted {
		var name string
		var price, stock int
		err := tx.QueryRow(ctx,
			`SELECT name, price_cents, stock FROM products WHERE id=$1 FOR UPDATE`,
			it.ProductID).Scan(&name, &price, &stock)
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, &ProductNotFoundError{ProductID: it.ProductID}
		}
		if err != nil {
			return Order{}, err
		}
		if stock < it.Qty {
			return Order{}, &InsufficientStockError{
				ProductID: it.ProductID,
				Name:      name,
				Requested: it.Qty,
				Available: stock,
			}
		}
		prices[it.ProductID] = price
		total += price * it.Qty
	}

	o := Order{
		ID:            uuid.NewString(),
		Number:        ulid.Make().String(),
		CustomerID:    customerID,
		Status:        StatusNew,
		TotalCents:    total,
		StockReserved: true,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO orders(id, number, customer_id, status, total_cents, stock_reserved)
		VALUES ($1,$2,$3,$4,$5,TRUE)
		RETURNING created_at, updated_at`,
		o.ID, o.Number, o.CustomerID, o.Status, o.TotalCents).
		Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}

	for _, it := range sorted {
		item := OrderItem{
			ID:         uuid.NewString(),
			OrderID:    o.ID,
			ProductID:  it.ProductID,
			Qty:        it.Qty,
			PriceCents: prices[it.ProductID],
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(id, order_id, product_id, qty, price_cents)
			VALUES ($1,$2,$3,$4,$5)`,
			item.ID, item.OrderID, item.ProductID, item.Qty, item.PriceCents); err != nil {
			return Order{}, err
		}
		if _, err := tx.Exec(ctx,
			`UPDATE products SET stock = stock - $2, updated_at = now() WHERE id=$1`,
			it.ProductID, it.Qty); err != nil {
			return Order{}, err
		}
		o.Items = append(o.Items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, err
	}
	return o, nil
}

// UpdateStatusTx ganti status order; kalau baru pertama kali masuk PAID
// dan stok belum pernah dipotong (stock_reserved=FALSE, mis. order yang
// dibuat manual oleh admin), potong stok per item. Status sebelumnya
// dibaca di dalam tx dengan FOR UPDATE, jadi dua update bersamaan
// serialize di row order dan tidak bisa dua-duanya lihat "belum PAID".
func (r *Repo) UpdateStatusTx(ctx context.Context, orderID string, next Status) (Order, Status, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var prev Status
	var reserved bool
	err = tx.QueryRow(ctx,
		`SELECT status, stock_reserved FROM orders WHERE id=$1 FOR UPDATE`,
		orderID).Scan(&prev, &reserved)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, "", ErrOrderNotFound
	}
	if err != nil {
		return Order{}, "", err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`,
		orderID, next); err != nil {
		return Order{}, "", err
	}

	if NeedsStockDecrement(prev, next, reserved) {
		items, err := loadItems(ctx, tx, orderID)
		if err != nil {
			return Order{}, "", err
		}
		// urut product_id, sama seperti CreateOrderTx
		sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
		for _, it := range items {
			// CHECK (stock >= 0) di schema yang jaga kalau hasilnya minus;
			// tx batal seluruhnya dan status ikut batal.
			if _, err := tx.Exec(ctx,
				`UPDATE products SET stock = stock - $2, updated_at = now() WHERE id=$1`,
				it.ProductID, it.Qty); err != nil {
				return Order{}, "", err
			}
		}
		if _, err := tx.Exec(ctx,
			`UPDATE orders SET stock_reserved=TRUE WHERE id=$1`, orderID); err != nil {
			return Order{}, "", err
		}
	}

	o, err := getOrder(ctx, tx, orderID)
	if err != nil {
		return Order{}, "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return Order{}, "", err
	}
	return o, prev, nil
}

func (r *Repo) GetOrder(ctx context.Context, orderID string) (Order, error) {
	return getOrder(ctx, r.DB, orderID)
}

func (r *Repo) GetOrderStatus(ctx context.Context, orderID string) (Status, error) {
	var s Status
	err := r.DB.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, orderID).Scan(&s)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrOrderNotFound
	}
	if err != nil {
		return "", err
	}
	return s, nil
}

func (r *Repo) ListOrders(ctx context.Context, limit, offset int) ([]Order, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.DB.Query(ctx, `
		SELECT id, number, customer_id, status, total_cents, stock_reserved, created_at, updated_at
		FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.Number, &o.CustomerID, &o.Status, &o.TotalCents,
			&o.StockReserved, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// querier cocok buat pool maupun tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getOrder(ctx context.Context, q querier, orderID string) (Order, error) {
	var o Order
	err := q.QueryRow(ctx, `
		SELECT id, number, customer_id, status, total_cents, stock_reserved, created_at, updated_at
		FROM orders WHERE id=$1`, orderID).
		Scan(&o.ID, &o.Number, &o.CustomerID, &o.Status, &o.TotalCents,
			&o.StockReserved, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	if err != nil {
		return Order{}, err
	}
	o.Items, err = loadItems(ctx, q, orderID)
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

func loadItems(ctx context.Context, q querier, orderID string) ([]OrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, product_id, qty, price_cents
		FROM order_items WHERE order_id=$1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Qty, &it.PriceCents); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
