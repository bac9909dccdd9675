package gateway

import (
	"context"

	"github.com/oakmart/checkout/internal/domain/checkout"
)

// CartClient reads the user's persisted cart from the cart collaborator.
type CartClient struct {
	client
}

var _ checkout.CartFetcher = (*CartClient)(nil)

// NewCartClient creates a cart collaborator client.
func NewCartClient(cfg Config) *CartClient {
	return &CartClient{client: newClient(cfg)}
}

type cartResponse struct {
	Items []checkout.LineItem `json:"items"`
}

// FetchCart returns the cart items as stored; quantities and prices are the
// cart service's snapshots.
func (c *CartClient) FetchCart(ctx context.Context, userID string) ([]checkout.LineItem, error) {
	var resp cartResponse
	if err := c.get(ctx, "/cart", userID, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}
