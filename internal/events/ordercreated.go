package events

import "time"

const EventTypeOrderCreated = "OrderCreated"

// OrderLine mirrors an order line as carried on the wire.
type OrderLine struct {
	ProductID      string  `json:"productId"`
	BoughtQuantity int     `json:"boughtQuantity"`
	UnitPrice      float64 `json:"unitPrice"`
}

// OrderCreated is emitted after an order has been committed to the store.
type OrderCreated struct {
	EventType   string      `json:"eventType"`
	OrderID     string      `json:"orderId"`
	UserID      string      `json:"userId"`
	TotalAmount float64     `json:"totalAmount"`
	Items       []OrderLine `json:"items"`
	Timestamp   time.Time   `json:"timestamp"`
}
