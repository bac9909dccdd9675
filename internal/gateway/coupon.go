package gateway

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/oakmart/checkout/internal/domain/discount"
)

// CouponClient validates coupon codes against the coupon collaborator, which
// owns all eligibility policy (time boxing, per-user limits, minimum order).
type CouponClient struct {
	client
}

var _ discount.Validator = (*CouponClient)(nil)

// NewCouponClient creates a coupon collaborator client.
func NewCouponClient(cfg Config) *CouponClient {
	return &CouponClient{client: newClient(cfg)}
}

type validateRequest struct {
	Code     string          `json:"code"`
	UserID   string          `json:"userId"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type validateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		ID                 string          `json:"id"`
		Code               string          `json:"code"`
		Type               discount.Type   `json:"type"`
		DiscountPercentage decimal.Decimal `json:"discountPercentage"`
		DiscountValue      decimal.Decimal `json:"discountValue"`
	} `json:"data"`
}

// ValidateCoupon asks the collaborator for a verdict and authoritative terms.
// A no-go verdict comes back as a RemoteError with the server's reason
// verbatim, whether it arrived as an HTTP error or a success=false body.
func (c *CouponClient) ValidateCoupon(ctx context.Context, code, userID string, subtotal decimal.Decimal) (discount.Terms, error) {
	req := validateRequest{Code: code, UserID: userID, Subtotal: subtotal}

	var resp validateResponse
	if err := c.post(ctx, "/coupon/validate", userID, req, &resp); err != nil {
		return discount.Terms{}, err
	}
	if !resp.Success {
		return discount.Terms{}, &RemoteError{Status: http.StatusUnprocessableEntity, Message: resp.Message}
	}

	return discount.Terms{
		ID:      resp.Data.ID,
		Code:    resp.Data.Code,
		Type:    resp.Data.Type,
		Percent: resp.Data.DiscountPercentage,
		Value:   resp.Data.DiscountValue,
	}, nil
}
