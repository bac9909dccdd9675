package gateway

import (
	"context"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/oakmart/checkout/internal/domain/checkout"
)

// CatalogClient reads single products from the product collaborator.
type CatalogClient struct {
	client
}

var _ checkout.ProductFetcher = (*CatalogClient)(nil)

// NewCatalogClient creates a product collaborator client.
func NewCatalogClient(cfg Config) *CatalogClient {
	return &CatalogClient{client: newClient(cfg)}
}

type productResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	SalePrice decimal.Decimal `json:"salePrice"`
	OnSale    bool            `json:"onSale"`
}

// FetchProduct loads the product record used to build a BUY_NOW line item.
func (c *CatalogClient) FetchProduct(ctx context.Context, userID, productID string) (*checkout.Product, error) {
	var resp productResponse
	if err := c.get(ctx, "/product/"+url.PathEscape(productID), userID, &resp); err != nil {
		return nil, err
	}
	return &checkout.Product{
		ID:        resp.ID,
		Name:      resp.Name,
		Image:     resp.Image,
		Price:     resp.Price,
		SalePrice: resp.SalePrice,
		OnSale:    resp.OnSale,
	}, nil
}
