package gateway

import (
	"context"

	"github.com/oakmart/checkout/internal/domain/order"
)

// OrderClient creates orders in the order collaborator, the single source of
// truth for order identity.
type OrderClient struct {
	client
}

var _ order.Creator = (*OrderClient)(nil)

// NewOrderClient creates an order collaborator client.
func NewOrderClient(cfg Config) *OrderClient {
	return &OrderClient{client: newClient(cfg)}
}

type createOrderResponse struct {
	Data struct {
		ID     string       `json:"id"`
		Status order.Status `json:"status"`
	} `json:"data"`
}

// CreateOrder submits the order creation request. An answer without an id is
// passed up as an empty Receipt; the submitter rejects it.
func (c *OrderClient) CreateOrder(ctx context.Context, userID string, req order.CreateRequest) (order.Receipt, error) {
	var resp createOrderResponse
	if err := c.post(ctx, "/orders", userID, req, &resp); err != nil {
		return order.Receipt{}, err
	}
	return order.Receipt{ID: resp.Data.ID, Status: resp.Data.Status}, nil
}
