package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/beverage-storefront/domain/product"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// CatalogPort is the port other modules use to reach the catalog.
type CatalogPort interface {
	ListProducts(ctx context.Context, req *ListProductsRequest) (*ListProductsResponse, error)
	GetProduct(ctx context.Context, req *GetProductRequest) (*product.Product, error)
	CreateProduct(ctx context.Context, req *CreateProductRequest) (*product.Product, error)
	UpdateProduct(ctx context.Context, req *UpdateProductRequest) (*product.Product, error)
	DeleteProduct(ctx context.Context, req *DeleteProductRequest) error
	CountProducts(ctx context.Context) (int64, error)
}

// catalogAdapter wraps the catalog ServiceContainer.
type catalogAdapter struct {
	container mono.ServiceContainer
}

// NewCatalogAdapter creates a new adapter for catalog services.
func NewCatalogAdapter(container mono.ServiceContainer) CatalogPort {
	if container == nil {
		panic("catalog adapter requires non-nil ServiceContainer")
	}
	return &catalogAdapter{container: container}
}

// callService invokes a request-reply service and decodes its reply into resp.
func callService[T any](ctx context.Context, container mono.ServiceContainer, service string, req any, resp *T) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

func (a *catalogAdapter) ListProducts(ctx context.Context, req *ListProductsRequest) (*ListProductsResponse, error) {
	var resp ListProductsResponse
	if err := callService(ctx, a.container, "list-products", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *catalogAdapter) GetProduct(ctx context.Context, req *GetProductRequest) (*product.Product, error) {
	var resp product.Product
	if err := callService(ctx, a.container, "get-product", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *catalogAdapter) CreateProduct(ctx context.Context, req *CreateProductRequest) (*product.Product, error) {
	var resp product.Product
	if err := callService(ctx, a.container, "create-product", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *catalogAdapter) UpdateProduct(ctx context.Context, req *UpdateProductRequest) (*product.Product, error) {
	var resp product.Product
	if err := callService(ctx, a.container, "update-product", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *catalogAdapter) DeleteProduct(ctx context.Context, req *DeleteProductRequest) error {
	var resp DeleteProductResponse
	if err := callService(ctx, a.container, "delete-product", req, &resp); err != nil {
		return err
	}
	if !resp.Deleted {
		return fmt.Errorf("product not deleted: %s", req.ID)
	}
	return nil
}

func (a *catalogAdapter) CountProducts(ctx context.Context) (int64, error) {
	var resp CountProductsResponse
	if err := callService(ctx, a.container, "count-products", &CountProductsRequest{}, &resp); err != nil {
		return 0, err
	}
	return resp.Total, nil
}
