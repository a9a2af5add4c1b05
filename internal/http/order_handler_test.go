package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joshithach18/ecommerce-backend/internal/order"
)

type fakeOrderRepo struct {
	createFunc func(ctx context.Context, userID string, items []order.ItemRequest, userAddress map[string]any) (order.Order, error)
	listFunc   func(ctx context.Context, userID string, page order.Page) ([]order.Order, error)

	lastUserID string
	lastPage   order.Page
}

func (f *fakeOrderRepo) Create(ctx context.Context, userID string, items []order.ItemRequest, userAddress map[string]any) (order.Order, error) {
	if f.createFunc != nil {
		return f.createFunc(ctx, userID, items, userAddress)
	}
	return order.Order{ID: "o1", UserID: userID, UserAddress: userAddress}, nil
}

func (f *fakeOrderRepo) ListByUser(ctx context.Context, userID string, page order.Page) ([]order.Order, error) {
	f.lastUserID = userID
	f.lastPage = page
	if f.listFunc != nil {
		return f.listFunc(ctx, userID, page)
	}
	return []order.Order{}, nil
}

type fakePublisher struct {
	published []*order.Order
	err       error
}

func (p *fakePublisher) PublishOrderCreated(_ context.Context, o *order.Order) error {
	p.published = append(p.published, o)
	return p.err
}

func TestCreateOrder_Created(t *testing.T) {
	repo := &fakeOrderRepo{
		createFunc: func(_ context.Context, userID string, items []order.ItemRequest, addr map[string]any) (order.Order, error) {
			require.Equal(t, "user-1", userID)
			require.Len(t, items, 1)
			require.Equal(t, "p1", items[0].ProductID)
			require.Equal(t, 3, items[0].BoughtQuantity)
			return order.Order{
				ID:          "o1",
				UserID:      userID,
				Items:       []order.Line{{ProductID: "p1", BoughtQuantity: 3, UnitPrice: 10.0, LineTotal: 30.0}},
				TotalAmount: 30.0,
				UserAddress: addr,
			}, nil
		},
	}
	pub := &fakePublisher{}
	router := newTestRouter(&fakeProductRepo{}, repo, pub)

	body := bytes.NewBufferString(`{
		"user_id": "user-1",
		"items": [{"product_id": "p1", "bought_quantity": 3}],
		"user_address": {"street": "123 Main Street", "city": "New York"}
	}`)
	req := httptest.NewRequest(http.MethodPost, "/orders", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var o order.Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&o))
	assert.Equal(t, "o1", o.ID)
	assert.Equal(t, 30.0, o.TotalAmount)
	assert.Equal(t, "New York", o.UserAddress["city"])

	require.Len(t, pub.published, 1)
	assert.Equal(t, "o1", pub.published[0].ID)
}

func TestCreateOrder_PublishFailureDoesNotFailRequest(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	router := newTestRouter(&fakeProductRepo{}, &fakeOrderRepo{}, pub)

	body := bytes.NewBufferString(`{"user_id":"user-1","items":[{"product_id":"p1","bought_quantity":1}]}`)
	req := httptest.NewRequest(http.MethodPost, "/orders", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, pub.published, 1)
}

func TestCreateOrder_ProductNotFound(t *testing.T) {
	repo := &fakeOrderRepo{
		createFunc: func(context.Context, string, []order.ItemRequest, map[string]any) (order.Order, error) {
			return order.Order{}, fmt.Errorf("product p9: %w", order.ErrProductNotFound)
		},
	}
	pub := &fakePublisher{}
	router := newTestRouter(&fakeProductRepo{}, repo, pub)

	body := bytes.NewBufferString(`{"user_id":"user-1","items":[{"product_id":"p9","bought_quantity":1}]}`)
	req := httptest.NewRequest(http.MethodPost, "/orders", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"product_not_found"`)
	assert.Empty(t, pub.published)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	repo := &fakeOrderRepo{
		createFunc: func(context.Context, string, []order.ItemRequest, map[string]any) (order.Order, error) {
			return order.Order{}, &order.InsufficientStockError{
				ProductID: "p1", Name: "Widget", Requested: 10, Available: 2,
			}
		},
	}
	router := newTestRouter(&fakeProductRepo{}, repo, nil)

	body := bytes.NewBufferString(`{"user_id":"user-1","items":[{"product_id":"p1","bought_quantity":10}]}`)
	req := httptest.NewRequest(http.MethodPost, "/orders", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"insufficient_stock"`)
	assert.Contains(t, rec.Body.String(), "requested 10, available 2")
}

func TestCreateOrder_ValidationFailure(t *testing.T) {
	repo := &fakeOrderRepo{
		createFunc: func(context.Context, string, []order.ItemRequest, map[string]any) (order.Order, error) {
			return order.Order{}, &order.ValidationError{Field: "items", Reason: "must not be empty"}
		},
	}
	router := newTestRouter(&fakeProductRepo{}, repo, nil)

	body := bytes.NewBufferString(`{"user_id":"user-1","items":[]}`)
	req := httptest.NewRequest(http.MethodPost, "/orders", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"validation_failed"`)
}

func TestCreateOrder_MalformedBody(t *testing.T) {
	router := newTestRouter(&fakeProductRepo{}, &fakeOrderRepo{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(`{`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListOrdersByUser(t *testing.T) {
	repo := &fakeOrderRepo{
		listFunc: func(_ context.Context, userID string, _ order.Page) ([]order.Order, error) {
			return []order.Order{{ID: "o1", UserID: userID, TotalAmount: 30.0}}, nil
		},
	}
	router := newTestRouter(&fakeProductRepo{}, repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/orders/user-1?limit=2&offset=4", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", repo.lastUserID)
	assert.Equal(t, order.Page{Limit: 2, Offset: 4}, repo.lastPage)

	var resp struct {
		Orders []order.Order `json:"orders"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, "o1", resp.Orders[0].ID)
}

func TestListOrdersByUser_BadPagination(t *testing.T) {
	router := newTestRouter(&fakeProductRepo{}, &fakeOrderRepo{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/orders/user-1?limit=abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
