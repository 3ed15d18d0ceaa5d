package orders

import "time"

type Order struct {
	ID            string      `json:"id"`
	Number        string      `json:"number"`
	CustomerID    string      `json:"customer_id"`
	Status        Status      `json:"status"`
	TotalCents    int         `json:"total_cents"`
	StockReserved bool        `json:"-"`
	Items         []OrderItem `json:"items"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

type OrderItem struct {
	ID         string `json:"id"`
	OrderID    string `json:"-"`
	ProductID  string `json:"product_id"`
	Qty        int    `json:"qty"`
	PriceCents int    `json:"price_cents"`
}
