package gateway

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/oakmart/checkout/internal/domain/checkout"
	"github.com/oakmart/checkout/internal/domain/payment"
)

// PaymentClient obtains redirect URLs from the payment collaborator. Only
// the redirect contract matters here; the gateway's own protocol is out of
// scope.
type PaymentClient struct {
	client
}

var _ payment.URLRequester = (*PaymentClient)(nil)

// NewPaymentClient creates a payment collaborator client.
func NewPaymentClient(cfg Config) *PaymentClient {
	return &PaymentClient{client: newClient(cfg)}
}

type createPaymentRequest struct {
	OrderID       string          `json:"orderId"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	PaymentMethod string          `json:"paymentMethod"`
}

type createPaymentResponse struct {
	PaymentURL string `json:"paymentUrl"`
}

// PaymentURL requests an externally issued payment URL for the order. A 2xx
// answer without a URL is a broken contract and is treated as a rejection.
func (c *PaymentClient) PaymentURL(ctx context.Context, userID, orderID string, amount decimal.Decimal, description string, method checkout.PaymentMethod) (string, error) {
	req := createPaymentRequest{
		OrderID:       orderID,
		Amount:        amount,
		Description:   description,
		PaymentMethod: string(method),
	}

	var resp createPaymentResponse
	if err := c.post(ctx, "/payments/create", userID, req, &resp); err != nil {
		return "", err
	}
	if resp.PaymentURL == "" {
		return "", &RemoteError{Status: http.StatusBadGateway, Message: "payment service returned no payment URL"}
	}
	return resp.PaymentURL, nil
}
