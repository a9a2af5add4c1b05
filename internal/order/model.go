package order

import "time"

// Line is one entry within an order. Unit price is snapshotted from the
// product at placement time; later product changes do not affect the order.
type Line struct {
	ProductID      string  `json:"product_id"`
	BoughtQuantity int     `json:"bought_quantity"`
	UnitPrice      float64 `json:"unit_price"`
	LineTotal      float64 `json:"line_total"`
}

type Order struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Items       []Line         `json:"items"`
	TotalAmount float64        `json:"total_amount"`
	UserAddress map[string]any `json:"user_address,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ItemRequest is one requested line of a new order.
type ItemRequest struct {
	ProductID      string `json:"product_id"`
	BoughtQuantity int    `json:"bought_quantity"`
}

// Page is a limit/offset window over a listing.
type Page struct {
	Limit  int
	Offset int
}

func DefaultPage() Page {
	return Page{Limit: 10, Offset: 0}
}
