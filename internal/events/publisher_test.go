package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// The wire field names are a contract with downstream consumers; renaming a
// struct field must not silently change them.
func TestOrderCreatedWireFormat(t *testing.T) {
	ev := OrderCreated{
		EventType:   EventTypeOrderCreated,
		OrderID:     "o1",
		UserID:      "user-1",
		TotalAmount: 30.0,
		Items:       []OrderLine{{ProductID: "p1", BoughtQuantity: 3, UnitPrice: 10.0}},
		Timestamp:   time.Unix(1700000000, 0).UTC(),
	}

	body, err := json.Marshal(ev)
	require.NoError(t, err)

	var asMap map[string]any
	require.NoError(t, json.Unmarshal(body, &asMap))

	for _, field := range []string{"eventType", "orderId", "userId", "totalAmount", "items", "timestamp"} {
		require.Contains(t, asMap, field)
	}

	items, ok := asMap["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	line, ok := items[0].(map[string]any)
	require.True(t, ok)
	for _, field := range []string{"productId", "boughtQuantity", "unitPrice"} {
		require.Contains(t, line, field)
	}
}
