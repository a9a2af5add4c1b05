package product

import "time"

type Product struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Price      float64        `json:"price"`
	Quantity   int            `json:"quantity"`
	Attributes map[string]any `json:"attributes,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Filter narrows a product listing. Name matches by case-insensitive
// substring; Size matches the "size" key of the attributes document exactly.
type Filter struct {
	Name string
	Size string
}

// Page is a limit/offset window over a listing.
type Page struct {
	Limit  int
	Offset int
}

// DefaultPage mirrors the API defaults of limit=10, offset=0.
func DefaultPage() Page {
	return Page{Limit: 10, Offset: 0}
}
