package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/Skotchmaster/ambition_store/internal/errs"
	"github.com/Skotchmaster/ambition_store/internal/metrics"
	"github.com/Skotchmaster/ambition_store/internal/models"
	"github.com/Skotchmaster/ambition_store/internal/mykafka"
	"github.com/Skotchmaster/ambition_store/internal/repo"
	"github.com/Skotchmaster/ambition_store/internal/transport"
	"github.com/Skotchmaster/ambition_store/pkg/logging"
)

type OrderService struct {
	Repo     *repo.GormRepo
	Producer mykafka.Publisher
	Now      func() time.Time
}

func (s *OrderService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// CreateOrder prices every line from the current product price and writes
// the order and its items in one transaction. A missing product aborts the
// whole order.
func (s *OrderService) CreateOrder(ctx context.Context, req transport.CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, errs.Malformed("items")
	}

	now := s.now()
	order := models.Order{StatusID: models.StatusPending, CreatedAt: now, UpdatedAt: now}

	var total int64
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		ids := make([]uint, 0, len(req.Items))
		for _, it := range req.Items {
			ids = append(ids, it.ProductID)
		}
		products, err := tx.GetProductsByIDs(ctx, ids)
		if err != nil {
			return err
		}
		prices := make(map[uint]int64, len(products))
		for _, p := range products {
			prices[p.ID] = p.Price
		}

		for _, it := range req.Items {
			if it.Quantity < 1 {
				return errs.Malformed("quantity")
			}
			price, ok := prices[it.ProductID]
			if !ok {
				return fmt.Errorf("%w: product %d", errs.ErrNotFound, it.ProductID)
			}
			if total, ok = addLine(total, price, it.Quantity); !ok {
				return errs.Malformed("quantity")
			}
			order.Items = append(order.Items, models.OrderItem{
				ProductID: it.ProductID,
				UnitPrice: price,
				Quantity:  it.Quantity,
			})
		}
		return tx.CreateOrder(ctx, &order)
	})
	if err != nil {
		return nil, err
	}

	created, err := s.Repo.GetOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	metrics.RecordOrder(total)
	mykafka.Publish(ctx, s.Producer, mykafka.TopicOrderEvents, strconv.FormatUint(uint64(created.ID), 10), map[string]any{
		"type":       "order_created",
		"orderID":    created.ID,
		"totalPrice": total,
		"items":      len(created.Items),
	})
	logging.FromContext(ctx).Info("order_created", "order_id", created.ID, "total_price", total)
	return created, nil
}

// addLine adds price*qty to total, reporting false when the sum leaves int64.
func addLine(total, price int64, qty int) (int64, bool) {
	q := int64(qty)
	if price < 0 || q < 0 {
		return total, false
	}
	if price != 0 && q > (math.MaxInt64-total)/price {
		return total, false
	}
	return total + price*q, true
}

func (s *OrderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, notFound(err, "order")
	}
	return o, nil
}

// QueryOrders filters by status and by creation year, optionally narrowed to
// one month of that year. Ranges are half-open in UTC.
func (s *OrderService) QueryOrders(ctx context.Context, q transport.OrderQuery) ([]models.Order, error) {
	f := repo.OrderFilter{StatusID: q.Status}

	if q.Month != nil && q.Year == nil {
		return nil, errs.Missing("year")
	}
	if q.Year != nil {
		var from, until time.Time
		if q.Month != nil {
			from = time.Date(*q.Year, time.Month(*q.Month), 1, 0, 0, 0, 0, time.UTC)
			until = from.AddDate(0, 1, 0)
		} else {
			from = time.Date(*q.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
			until = from.AddDate(1, 0, 0)
		}
		f.From, f.Until = &from, &until
	}
	return s.Repo.QueryOrders(ctx, f)
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uint, req transport.PatchOrderRequest) (*models.Order, error) {
	if !models.ValidStatus(req.Status) {
		return nil, errs.Malformed("status")
	}
	if err := s.Repo.UpdateOrderStatus(ctx, id, req.Status, s.now()); err != nil {
		return nil, notFound(err, "order")
	}

	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, notFound(err, "order")
	}

	mykafka.Publish(ctx, s.Producer, mykafka.TopicOrderEvents, strconv.FormatUint(uint64(o.ID), 10), map[string]any{
		"type":    "order_status_changed",
		"orderID": o.ID,
		"status":  o.Status.Name,
	})
	return o, nil
}
