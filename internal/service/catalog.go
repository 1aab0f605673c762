package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Skotchmaster/ambition_store/internal/errs"
	"github.com/Skotchmaster/ambition_store/internal/models"
	"github.com/Skotchmaster/ambition_store/internal/mykafka"
	"github.com/Skotchmaster/ambition_store/internal/repo"
	"github.com/Skotchmaster/ambition_store/internal/search"
	"github.com/Skotchmaster/ambition_store/internal/transport"
	"github.com/Skotchmaster/ambition_store/internal/util"
	"github.com/Skotchmaster/ambition_store/pkg/logging"
)

type CatalogService struct {
	Repo     *repo.GormRepo
	Index    search.Index
	Producer mykafka.Publisher
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, req transport.CreateCategoryRequest) (*models.Category, error) {
	c := models.Category{Name: req.Name}
	if err := s.Repo.CreateCategory(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}
	return p, nil
}

// QueryProducts filters by category and sold-out flag. An unknown category
// is reported as errs.ErrNotFound rather than an empty page.
func (s *CatalogService) QueryProducts(ctx context.Context, q transport.ProductQuery) (int64, []models.Product, error) {
	if q.CategoryID != nil {
		if _, err := s.Repo.GetCategory(ctx, *q.CategoryID); err != nil {
			return 0, nil, notFound(err, "category")
		}
	}
	offset, limit := util.Calculate(q.Page, q.Size)
	return s.Repo.QueryProducts(ctx, repo.ProductFilter{CategoryID: q.CategoryID, Soldout: q.Soldout}, offset, limit)
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	if req.Price < 0 || req.Price > transport.MaxPrice {
		return nil, errs.Malformed("price")
	}
	cat, err := s.Repo.GetCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, notFound(err, "category")
	}
	if err := s.ensureNameFree(ctx, req.Name, 0); err != nil {
		return nil, err
	}

	p := models.Product{
		CategoryID: cat.ID,
		Name:       req.Name,
		ImageURL:   req.ImageURL,
		Price:      req.Price,
		IsSoldout:  req.Soldout,
	}
	if err := s.Repo.CreateProduct(ctx, &p); err != nil {
		if repo.IsDuplicate(err) {
			return nil, fmt.Errorf("%w: product name already used", errs.ErrConflict)
		}
		return nil, err
	}
	p.Category = *cat

	s.afterWrite(ctx, p, "product_created")
	return &p, nil
}

// PatchProduct overwrites only the fields present in req. An empty patch
// returns the stored product untouched.
func (s *CatalogService) PatchProduct(ctx context.Context, id uint, req transport.PatchProductRequest) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}
	if req.Empty() {
		return p, nil
	}

	if req.CategoryID != nil {
		cat, err := s.Repo.GetCategory(ctx, *req.CategoryID)
		if err != nil {
			return nil, notFound(err, "category")
		}
		p.CategoryID = cat.ID
		p.Category = *cat
	}
	if req.Name != nil {
		if err := s.ensureNameFree(ctx, *req.Name, p.ID); err != nil {
			return nil, err
		}
		p.Name = *req.Name
	}
	if req.ImageURL != nil {
		p.ImageURL = *req.ImageURL
	}
	if req.Price != nil {
		if *req.Price < 0 || *req.Price > transport.MaxPrice {
			return nil, errs.Malformed("price")
		}
		p.Price = *req.Price
	}
	if req.Soldout != nil {
		p.IsSoldout = *req.Soldout
	}

	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		if repo.IsDuplicate(err) {
			return nil, fmt.Errorf("%w: product name already used", errs.ErrConflict)
		}
		return nil, err
	}

	s.afterWrite(ctx, *p, "product_updated")
	return p, nil
}

// SearchProducts asks the search index first and falls back to a name match
// in the database when no index is configured or the index fails.
func (s *CatalogService) SearchProducts(ctx context.Context, q transport.SearchQuery) (int64, []models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.search")
	offset, limit := util.Calculate(q.Page, q.Size)

	if s.Index != nil {
		total, ids, err := s.Index.Search(ctx, q.Q, offset, limit)
		if err == nil {
			items, err := s.productsInOrder(ctx, ids)
			if err != nil {
				return 0, nil, err
			}
			return total, items, nil
		}
		l.Warn("search_index_failed", "reason", "falling back to database", "error", err)
	}
	return s.Repo.SearchProductsByName(ctx, q.Q, offset, limit)
}

func (s *CatalogService) productsInOrder(ctx context.Context, ids []uint) ([]models.Product, error) {
	found, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	items := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			items = append(items, p)
		}
	}
	return items, nil
}

func (s *CatalogService) ensureNameFree(ctx context.Context, name string, excludeID uint) error {
	taken, err := s.Repo.ProductNameTaken(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: product name already used", errs.ErrConflict)
	}
	return nil
}

func (s *CatalogService) afterWrite(ctx context.Context, p models.Product, eventType string) {
	if s.Index != nil {
		if err := s.Index.IndexProduct(ctx, p); err != nil {
			logging.FromContext(ctx).Warn("search_index_failed", "product_id", p.ID, "error", err)
		}
	}
	mykafka.Publish(ctx, s.Producer, mykafka.TopicProductEvents, strconv.FormatUint(uint64(p.ID), 10), map[string]any{
		"type":      eventType,
		"productID": p.ID,
		"name":      p.Name,
		"price":     p.Price,
	})
}
