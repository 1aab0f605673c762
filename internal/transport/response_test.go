package transport

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/ambition_store/internal/models"
)

func TestNewOrderResponse_Shape(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	o := models.Order{
		ID:       5,
		StatusID: models.StatusPending,
		Status:   models.OrderStatus{ID: models.StatusPending, Name: "pending"},
		Items: []models.OrderItem{
			{ID: 1, ProductID: 1, Product: models.Product{ID: 1, Name: "Mug"}, UnitPrice: 1000, Quantity: 2},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}

	raw, err := json.Marshal(Data("order", NewOrderResponse(o)))
	require.NoError(t, err)

	var got map[string]map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	order := got["data"]["order"]

	assert.EqualValues(t, 2000, order["total_price"])
	assert.Equal(t, map[string]any{"id": float64(1), "name": "pending"}, order["status"])

	items := order["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.EqualValues(t, 1000, item["unit-price"])
	assert.EqualValues(t, 2, item["quantity"])
	assert.Equal(t, map[string]any{"id": float64(1), "name": "Mug"}, item["product"])
}

func TestNewProductResponse_Shape(t *testing.T) {
	t.Parallel()

	p := models.Product{
		ID:         3,
		CategoryID: 2,
		Category:   models.Category{ID: 2, Name: "Kitchen"},
		Name:       "Mug",
		ImageURL:   "https://img/mug.png",
		Price:      1000,
		IsSoldout:  true,
	}
	raw, err := json.Marshal(NewProductResponse(p))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"category":{"id":2,"name":"Kitchen"},"name":"Mug","image_url":"https://img/mug.png","price":1000,"is_soldout":true}`, string(raw))
}

func TestNewUserResponse_HidesSecrets(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(NewUserResponse(models.User{ID: 1, Name: "kim", Email: "a@b.com", PasswordHash: "hash"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"kim","email":"a@b.com"}`, string(raw))
}

func TestNewOrdersResponse_EmptyIsArray(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(NewOrdersResponse(nil))
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(raw))
}
