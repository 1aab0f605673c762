package transport

import (
	"time"

	"github.com/Skotchmaster/ambition_store/internal/models"
)

type UserResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type EmailValidationResponse struct {
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type CategoryResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type ProductResponse struct {
	ID        uint             `json:"id"`
	Category  CategoryResponse `json:"category"`
	Name      string           `json:"name"`
	ImageURL  string           `json:"image_url"`
	Price     int64            `json:"price"`
	IsSoldout bool             `json:"is_soldout"`
}

type OrderStatusResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type ProductRefResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type OrderItemResponse struct {
	ID        uint               `json:"id"`
	Product   ProductRefResponse `json:"product"`
	UnitPrice int64              `json:"unit-price"`
	Quantity  int                `json:"quantity"`
}

type OrderResponse struct {
	ID         uint                `json:"id"`
	Status     OrderStatusResponse `json:"status"`
	Items      []OrderItemResponse `json:"items"`
	TotalPrice int64               `json:"total_price"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

func NewUserResponse(u models.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

func NewEmailValidationResponse(ev models.EmailValidation) EmailValidationResponse {
	return EmailValidationResponse{Email: ev.Email, CreatedAt: ev.CreatedAt}
}

func NewCategoryResponse(c models.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name}
}

func NewCategoriesResponse(cs []models.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, NewCategoryResponse(c))
	}
	return out
}

func NewProductResponse(p models.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		Category:  NewCategoryResponse(p.Category),
		Name:      p.Name,
		ImageURL:  p.ImageURL,
		Price:     p.Price,
		IsSoldout: p.IsSoldout,
	}
}

func NewProductsResponse(ps []models.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, NewProductResponse(p))
	}
	return out
}

func NewOrderItemResponse(it models.OrderItem) OrderItemResponse {
	return OrderItemResponse{
		ID:        it.ID,
		Product:   ProductRefResponse{ID: it.ProductID, Name: it.Product.Name},
		UnitPrice: it.UnitPrice,
		Quantity:  it.Quantity,
	}
}

func NewOrderResponse(o models.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, NewOrderItemResponse(it))
	}
	return OrderResponse{
		ID:         o.ID,
		Status:     OrderStatusResponse{ID: o.StatusID, Name: o.Status.Name},
		Items:      items,
		TotalPrice: o.TotalPrice(),
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

func NewOrdersResponse(orders []models.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, NewOrderResponse(o))
	}
	return out
}

// Data wraps a payload in the {"data": {key: v}} envelope.
func Data(key string, v any) map[string]any {
	return map[string]any{"data": map[string]any{key: v}}
}
