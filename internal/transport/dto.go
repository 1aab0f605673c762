package transport

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Skotchmaster/ambition_store/internal/errs"
	"github.com/Skotchmaster/ambition_store/internal/models"
	"github.com/Skotchmaster/ambition_store/internal/util"
)

type EmailValidationRequest struct {
	Email string
}

type SignupRequest struct {
	Email          string
	Password       string
	Name           string
	ValidationCode string
}

type LoginRequest struct {
	Email    string
	Password string
}

type CreateCategoryRequest struct {
	Name string
}

type CreateProductRequest struct {
	CategoryID uint
	Name       string
	ImageURL   string
	Price      int64
	Soldout    bool
}

// PatchProductRequest carries only the fields the client sent.
type PatchProductRequest struct {
	CategoryID *uint
	Name       *string
	ImageURL   *string
	Price      *int64
	Soldout    *bool
}

func (r PatchProductRequest) Empty() bool {
	return r.CategoryID == nil && r.Name == nil && r.ImageURL == nil && r.Price == nil && r.Soldout == nil
}

type ProductQuery struct {
	CategoryID *uint
	Soldout    *bool
	Page       int
	Size       int
}

type SearchQuery struct {
	Q    string
	Page int
	Size int
}

type OrderItemRequest struct {
	ProductID uint
	Quantity  int
}

type CreateOrderRequest struct {
	Items []OrderItemRequest
}

type OrderQuery struct {
	Status *uint
	Year   *int
	Month  *int
}

type PatchOrderRequest struct {
	Status uint
}

func ParseEmailValidation(r *http.Request) (EmailValidationRequest, error) {
	src, err := bodySource(r)
	if err != nil {
		return EmailValidationRequest{}, err
	}
	email, err := requireEmail(src, "email")
	if err != nil {
		return EmailValidationRequest{}, err
	}
	return EmailValidationRequest{Email: email}, nil
}

func ParseSignup(r *http.Request) (SignupRequest, error) {
	src, err := bodySource(r)
	if err != nil {
		return SignupRequest{}, err
	}
	email, err := requireEmail(src, "email")
	if err != nil {
		return SignupRequest{}, err
	}
	password, err := requireText(src, "password")
	if err != nil {
		return SignupRequest{}, err
	}
	name, err := requireText(src, "name")
	if err != nil {
		return SignupRequest{}, err
	}
	if validate.Var(name, "max=16") != nil {
		return SignupRequest{}, errs.Malformed("name")
	}
	code, err := requireText(src, "validation-code")
	if err != nil {
		return SignupRequest{}, err
	}
	return SignupRequest{
		Email:          email,
		Password:       password,
		Name:           strings.TrimSpace(name),
		ValidationCode: strings.TrimSpace(code),
	}, nil
}

func ParseLogin(r *http.Request) (LoginRequest, error) {
	src, err := bodySource(r)
	if err != nil {
		return LoginRequest{}, err
	}
	email, err := requireEmail(src, "email")
	if err != nil {
		return LoginRequest{}, err
	}
	password, err := requireText(src, "password")
	if err != nil {
		return LoginRequest{}, err
	}
	return LoginRequest{Email: email, Password: password}, nil
}

func ParseCreateCategory(r *http.Request) (CreateCategoryRequest, error) {
	src, err := bodySource(r)
	if err != nil {
		return CreateCategoryRequest{}, err
	}
	name, err := requireText(src, "name")
	if err != nil {
		return CreateCategoryRequest{}, err
	}
	if validate.Var(name, "max=100") != nil {
		return CreateCategoryRequest{}, errs.Malformed("name")
	}
	return CreateCategoryRequest{Name: strings.TrimSpace(name)}, nil
}

func ParseCreateProduct(r *http.Request) (CreateProductRequest, error) {
	src, err := bodySource(r)
	if err != nil {
		return CreateProductRequest{}, err
	}

	var req CreateProductRequest
	if req.CategoryID, err = requireID(src, "category-id"); err != nil {
		return CreateProductRequest{}, err
	}
	if req.Name, err = requireText(src, "name"); err != nil {
		return CreateProductRequest{}, err
	}
	if validate.Var(req.Name, "max=100") != nil {
		return CreateProductRequest{}, errs.Malformed("name")
	}
	if req.Price, err = requirePrice(src, "price"); err != nil {
		return CreateProductRequest{}, err
	}
	if req.ImageURL, err = requireText(src, "image-url"); err != nil {
		return CreateProductRequest{}, err
	}
	soldout, ok, err := src.boolean("soldout")
	if err != nil {
		return CreateProductRequest{}, err
	}
	if !ok {
		return CreateProductRequest{}, errs.Missing("soldout")
	}
	req.Soldout = soldout
	req.Name = strings.TrimSpace(req.Name)
	return req, nil
}

func ParsePatchProduct(r *http.Request) (PatchProductRequest, error) {
	src, err := bodySource(r)
	if err != nil {
		return PatchProductRequest{}, err
	}

	var req PatchProductRequest
	if req.CategoryID, err = optionalID(src, "category-id"); err != nil {
		return PatchProductRequest{}, err
	}
	if name, ok, err := src.text("name"); err != nil {
		return PatchProductRequest{}, err
	} else if ok {
		name = strings.TrimSpace(name)
		if name == "" || validate.Var(name, "max=100") != nil {
			return PatchProductRequest{}, errs.Malformed("name")
		}
		req.Name = &name
	}
	if img, ok, err := src.text("image-url"); err != nil {
		return PatchProductRequest{}, err
	} else if ok {
		req.ImageURL = &img
	}
	if price, ok, err := src.integer("price"); err != nil {
		return PatchProductRequest{}, err
	} else if ok {
		if price < 0 || price > MaxPrice {
			return PatchProductRequest{}, errs.Malformed("price")
		}
		req.Price = &price
	}
	if soldout, ok, err := src.boolean("soldout"); err != nil {
		return PatchProductRequest{}, err
	} else if ok {
		req.Soldout = &soldout
	}
	return req, nil
}

func ParseProductQuery(q url.Values) (ProductQuery, error) {
	src := formSource(q)

	var (
		out ProductQuery
		err error
	)
	if out.CategoryID, err = optionalID(src, "category-id"); err != nil {
		return ProductQuery{}, err
	}
	if soldout, ok, err := src.boolean("soldout"); err != nil {
		return ProductQuery{}, err
	} else if ok {
		out.Soldout = &soldout
	}
	if out.Page, out.Size, err = pageParams(src); err != nil {
		return ProductQuery{}, err
	}
	return out, nil
}

func ParseSearchQuery(q url.Values) (SearchQuery, error) {
	src := formSource(q)

	text, err := requireText(src, "q")
	if err != nil {
		return SearchQuery{}, err
	}
	page, size, err := pageParams(src)
	if err != nil {
		return SearchQuery{}, err
	}
	return SearchQuery{Q: strings.TrimSpace(text), Page: page, Size: size}, nil
}

func ParseCreateOrder(r *http.Request) (CreateOrderRequest, error) {
	src, err := bodySource(r)
	if err != nil {
		return CreateOrderRequest{}, err
	}

	items, ok, err := src.list("items")
	if err != nil {
		return CreateOrderRequest{}, err
	}
	if !ok {
		return CreateOrderRequest{}, errs.Missing("items")
	}
	if len(items) == 0 {
		return CreateOrderRequest{}, errs.Malformed("items")
	}

	out := CreateOrderRequest{Items: make([]OrderItemRequest, 0, len(items))}
	for _, it := range items {
		productID, err := requireID(it, "product-id")
		if err != nil {
			return CreateOrderRequest{}, err
		}
		qty, ok, err := it.integer("quantity")
		if err != nil {
			return CreateOrderRequest{}, err
		}
		if !ok {
			return CreateOrderRequest{}, errs.Missing("quantity")
		}
		if qty < 1 || qty > maxQuantity {
			return CreateOrderRequest{}, errs.Malformed("quantity")
		}
		out.Items = append(out.Items, OrderItemRequest{ProductID: productID, Quantity: int(qty)})
	}
	return out, nil
}

const maxQuantity = 1_000_000

// MaxPrice is the largest accepted product price.
const MaxPrice = 1<<31 - 1

func ParseOrderQuery(q url.Values) (OrderQuery, error) {
	src := formSource(q)

	var out OrderQuery
	if status, ok, err := optionalStatus(src, "status"); err != nil {
		return OrderQuery{}, err
	} else if ok {
		out.Status = &status
	}

	year, hasYear, err := src.integer("year")
	if err != nil {
		return OrderQuery{}, err
	}
	if hasYear {
		if year < 1 || year > 9999 {
			return OrderQuery{}, errs.Malformed("year")
		}
		y := int(year)
		out.Year = &y
	}

	month, hasMonth, err := src.integer("month")
	if err != nil {
		return OrderQuery{}, err
	}
	if hasMonth {
		if month < 1 || month > 12 {
			return OrderQuery{}, errs.Malformed("month")
		}
		if !hasYear {
			return OrderQuery{}, errs.Missing("year")
		}
		m := int(month)
		out.Month = &m
	}
	return out, nil
}

func ParsePatchOrder(r *http.Request) (PatchOrderRequest, error) {
	src, err := bodySource(r)
	if err != nil {
		return PatchOrderRequest{}, err
	}
	status, ok, err := optionalStatus(src, "status")
	if err != nil {
		return PatchOrderRequest{}, err
	}
	if !ok {
		return PatchOrderRequest{}, errs.Missing("status")
	}
	return PatchOrderRequest{Status: status}, nil
}

// ParseID reads a positive numeric path id.
func ParseID(raw string) (uint, error) {
	if raw == "" {
		return 0, errs.Missing("id")
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, errs.Malformed("id")
	}
	return uint(n), nil
}

func requireText(src source, key string) (string, error) {
	v, ok, err := src.text(key)
	if err != nil {
		return "", err
	}
	if !ok || strings.TrimSpace(v) == "" {
		return "", errs.Missing(key)
	}
	return v, nil
}

func requireEmail(src source, key string) (string, error) {
	v, err := requireText(src, key)
	if err != nil {
		return "", err
	}
	v = strings.TrimSpace(v)
	if validate.Var(v, "email,max=64") != nil {
		return "", errs.Malformed(key)
	}
	return v, nil
}

func requirePrice(src source, key string) (int64, error) {
	v, ok, err := src.integer(key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errs.Missing(key)
	}
	if v < 0 || v > MaxPrice {
		return 0, errs.Malformed(key)
	}
	return v, nil
}

func requireID(src source, key string) (uint, error) {
	id, err := optionalID(src, key)
	if err != nil {
		return 0, err
	}
	if id == nil {
		return 0, errs.Missing(key)
	}
	return *id, nil
}

func optionalID(src source, key string) (*uint, error) {
	v, ok, err := src.integer(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if v < 1 {
		return nil, errs.Malformed(key)
	}
	id := uint(v)
	return &id, nil
}

// optionalStatus accepts a status id or its name.
func optionalStatus(src source, key string) (uint, bool, error) {
	raw, ok, err := src.scalar(key)
	if err != nil || !ok {
		return 0, ok, err
	}
	raw = strings.TrimSpace(raw)
	if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
		if !models.ValidStatus(uint(n)) {
			return 0, true, errs.Malformed(key)
		}
		return uint(n), true, nil
	}
	id, found := models.StatusIDByName(raw)
	if !found {
		return 0, true, errs.Malformed(key)
	}
	return id, true, nil
}

func pageParams(src source) (int, int, error) {
	page, size := 1, util.DefaultPageSize
	if v, ok, err := src.integer("page"); err != nil {
		return 0, 0, err
	} else if ok {
		if v < 1 {
			return 0, 0, errs.Malformed("page")
		}
		page = int(v)
	}
	if v, ok, err := src.integer("size"); err != nil {
		return 0, 0, err
	} else if ok {
		if v < 1 {
			return 0, 0, errs.Malformed("size")
		}
		size = int(v)
	}
	return page, size, nil
}
