// Package catalog provides the product catalog with cache-aside reads.
package catalog

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/example/beverage-storefront/domain/apperror"
	"github.com/example/beverage-storefront/domain/product"
	"github.com/example/beverage-storefront/domain/user"
	"github.com/example/beverage-storefront/modules/cache"
	"github.com/example/beverage-storefront/pkg/pagination"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	defaultListLimit = 12
	maxListLimit     = 100
	maxNameLength    = 100
)

// Service provides catalog operations with caching.
type Service struct {
	repo    product.Repository
	cache   cache.CacheService
	sfGroup singleflight.Group
}

// NewService creates a new catalog service.
func NewService(repo product.Repository, c cache.CacheService) *Service {
	if c == nil {
		c = cache.NewNoopCacheService()
	}
	return &Service{
		repo:  repo,
		cache: c,
	}
}

func cacheKeyByID(id string) string {
	return "product:" + id
}

func cacheKeyList(f product.ListFilter) string {
	minPrice, maxPrice := "-", "-"
	if f.MinPrice != nil {
		minPrice = fmt.Sprint(*f.MinPrice)
	}
	if f.MaxPrice != nil {
		maxPrice = fmt.Sprint(*f.MaxPrice)
	}
	return fmt.Sprintf("list:%s:%q:%s:%s:%t:%d:%d",
		f.Category, strings.ToLower(f.Search), minPrice, maxPrice, f.IncludeInactive, f.Offset, f.Limit)
}

type cachedList struct {
	Products []product.Product `json:"products"`
	Total    int64             `json:"total"`
}

// List returns a page of products. Only admins may include inactive products.
func (s *Service) List(ctx context.Context, req ListProductsRequest) (*ListProductsResponse, error) {
	if req.Category != "" && !req.Category.Valid() {
		return nil, apperror.InvalidInput("unknown category %q", req.Category)
	}
	if req.MinPrice != nil && req.MaxPrice != nil && *req.MinPrice > *req.MaxPrice {
		return nil, apperror.InvalidInput("min_price must not exceed max_price")
	}

	p := pagination.New(req.Page, req.Limit, defaultListLimit, maxListLimit)
	filter := product.ListFilter{
		Category:        req.Category,
		Search:          strings.TrimSpace(req.Search),
		MinPrice:        req.MinPrice,
		MaxPrice:        req.MaxPrice,
		IncludeInactive: req.IncludeInactive && req.Role == user.RoleAdmin,
		Offset:          p.Offset(),
		Limit:           p.Limit,
	}

	cacheKey := cacheKeyList(filter)
	var cached cachedList
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		log.Printf("[catalog] Cache error for list: %v", err)
	}

	if !found {
		val, err, _ := s.sfGroup.Do(cacheKey, func() (any, error) {
			products, total, err := s.repo.List(ctx, filter)
			if err != nil {
				return nil, err
			}
			return cachedList{Products: products, Total: total}, nil
		})
		if err != nil {
			return nil, err
		}
		cached = val.(cachedList)

		if err := s.cache.Set(ctx, cacheKey, cached); err != nil {
			log.Printf("[catalog] Warning: failed to cache list: %v", err)
		}
	}

	if cached.Products == nil {
		cached.Products = []product.Product{}
	}
	return &ListProductsResponse{
		Products:   cached.Products,
		Total:      cached.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages(cached.Total),
	}, nil
}

// Get returns a product by ID using cache-aside with singleflight.
func (s *Service) Get(ctx context.Context, req GetProductRequest) (*product.Product, error) {
	p, err := s.getCached(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive && req.Role != user.RoleAdmin {
		return nil, apperror.NotFound("product %s not found", req.ID)
	}
	return p, nil
}

func (s *Service) getCached(ctx context.Context, id string) (*product.Product, error) {
	cacheKey := cacheKeyByID(id)

	var cached product.Product
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		log.Printf("[catalog] Cache error for product %s: %v", id, err)
	}
	if found {
		return &cached, nil
	}

	val, err, _ := s.sfGroup.Do(cacheKey, func() (any, error) {
		return s.repo.FindByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	p := val.(*product.Product)

	if err := s.cache.Set(ctx, cacheKey, p); err != nil {
		log.Printf("[catalog] Warning: failed to cache product %s: %v", id, err)
	}
	// singleflight callers share the pointer
	out := *p
	return &out, nil
}

// Create adds a product. Admin only.
func (s *Service) Create(ctx context.Context, req CreateProductRequest) (*product.Product, error) {
	if req.Role != user.RoleAdmin {
		return nil, apperror.Forbidden("admin role required")
	}

	p := &product.Product{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		Category:    req.Category,
		Image:       strings.TrimSpace(req.Image),
		Stock:       req.Stock,
		Volume:      strings.TrimSpace(req.Volume),
		Brand:       strings.TrimSpace(req.Brand),
		IsActive:    true,
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.invalidateLists(ctx)
	log.Printf("[catalog] Created product %s (%s)", p.ID, p.Name)
	return p, nil
}

// Update applies the set fields of req. Admin only.
func (s *Service) Update(ctx context.Context, req UpdateProductRequest) (*product.Product, error) {
	if req.Role != user.RoleAdmin {
		return nil, apperror.Forbidden("admin role required")
	}

	p, err := s.repo.FindByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	// Only the fields the request sets are written, so a concurrent checkout's
	// stock decrement is never overwritten by a stale read.
	changes := make(map[string]any)
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
		changes["name"] = p.Name
	}
	if req.Description != nil {
		p.Description = strings.TrimSpace(*req.Description)
		changes["description"] = p.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
		changes["price"] = p.Price
	}
	if req.Category != nil {
		p.Category = *req.Category
		changes["category"] = p.Category
	}
	if req.Image != nil {
		p.Image = strings.TrimSpace(*req.Image)
		changes["image"] = p.Image
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
		changes["stock"] = p.Stock
	}
	if req.Volume != nil {
		p.Volume = strings.TrimSpace(*req.Volume)
		changes["volume"] = p.Volume
	}
	if req.Brand != nil {
		p.Brand = strings.TrimSpace(*req.Brand)
		changes["brand"] = p.Brand
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
		changes["is_active"] = p.IsActive
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, p.ID, changes); err != nil {
		return nil, err
	}

	s.Invalidate(ctx, p.ID)
	updated, err := s.repo.FindByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	log.Printf("[catalog] Updated product %s", p.ID)
	return updated, nil
}

// Delete soft-deletes a product. Admin only.
func (s *Service) Delete(ctx context.Context, req DeleteProductRequest) error {
	if req.Role != user.RoleAdmin {
		return apperror.Forbidden("admin role required")
	}
	if err := s.repo.Delete(ctx, req.ID); err != nil {
		return err
	}

	s.Invalidate(ctx, req.ID)
	log.Printf("[catalog] Deleted product %s", req.ID)
	return nil
}

// Count returns the number of non-deleted products.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// Invalidate drops the cached product entries and every cached listing.
func (s *Service) Invalidate(ctx context.Context, ids ...string) {
	for _, id := range ids {
		if err := s.cache.Delete(ctx, cacheKeyByID(id)); err != nil {
			log.Printf("[catalog] Warning: failed to invalidate cache for %s: %v", id, err)
		}
	}
	s.invalidateLists(ctx)
}

// invalidateLists flushes the cache database; listing keys depend on every
// filter combination so they cannot be enumerated.
func (s *Service) invalidateLists(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Printf("[catalog] Warning: failed to invalidate cache: %v", err)
	}
}

func validateProduct(p *product.Product) error {
	switch {
	case p.Name == "":
		return apperror.InvalidInput("name is required")
	case utf8.RuneCountInString(p.Name) > maxNameLength:
		return apperror.InvalidInput("name must be at most %d characters", maxNameLength)
	case p.Description == "":
		return apperror.InvalidInput("description is required")
	case p.Price < 0:
		return apperror.InvalidInput("price must not be negative")
	case !p.Category.Valid():
		return apperror.InvalidInput("unknown category %q", p.Category)
	case p.Stock < 0:
		return apperror.InvalidInput("stock must not be negative")
	case p.Volume == "":
		return apperror.InvalidInput("volume is required")
	case p.Brand == "":
		return apperror.InvalidInput("brand is required")
	}
	return nil
}
