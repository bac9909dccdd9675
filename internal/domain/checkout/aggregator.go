package checkout

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for source resolution.
var (
	ErrUnknownMode     = errors.New("unknown checkout mode")
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
)

// Product is the slice of the catalog record the aggregator needs to build
// a BUY_NOW line item.
type Product struct {
	ID        string
	Name      string
	Image     string
	Price     decimal.Decimal
	SalePrice decimal.Decimal
	OnSale    bool
}

// CartFetcher loads the user's persisted cart from the cart collaborator.
type CartFetcher interface {
	FetchCart(ctx context.Context, userID string) ([]LineItem, error)
}

// ProductFetcher loads a single product from the catalog collaborator on
// behalf of userID.
type ProductFetcher interface {
	FetchProduct(ctx context.Context, userID, productID string) (*Product, error)
}

// Aggregator resolves the authoritative list of line items for a checkout
// attempt from one of the three entry modes. It never mutates quantities;
// quantity edits are a cart operation that happens before checkout.
type Aggregator struct {
	carts    CartFetcher
	products ProductFetcher
}

// NewAggregator creates an Aggregator over the cart and catalog collaborators.
func NewAggregator(carts CartFetcher, products ProductFetcher) *Aggregator {
	return &Aggregator{carts: carts, products: products}
}

// Resolve produces the ordered item list for the given source. An empty
// result is a valid state, not an error: the session is built but blocked
// from payment until items exist.
func (a *Aggregator) Resolve(ctx context.Context, userID string, src Source) ([]LineItem, error) {
	switch src.Mode {
	case ModeCart:
		items, err := a.carts.FetchCart(ctx, userID)
		if err != nil {
			return nil, errors.Wrap(err, "fetch cart")
		}
		return items, nil

	case ModeBuyNow:
		if src.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		p, err := a.products.FetchProduct(ctx, userID, src.ProductID)
		if err != nil {
			// A failed product fetch aborts the whole checkout; the
			// caller routes the user back to the catalog.
			return nil, errors.Wrap(err, "fetch product")
		}
		unit := p.Price
		if p.OnSale {
			unit = p.SalePrice
		}
		return []LineItem{{
			ProductID:     p.ID,
			ProductName:   p.Name,
			ProductImage:  p.Image,
			UnitPrice:     unit,
			Quantity:      src.Quantity,
			OriginalPrice: p.Price,
		}}, nil

	case ModeSelection:
		// Caller-supplied snapshots are trusted verbatim; only shape is
		// checked here.
		for _, li := range src.Items {
			if li.Quantity <= 0 {
				return nil, ErrInvalidQuantity
			}
		}
		return src.Items, nil

	default:
		return nil, ErrUnknownMode
	}
}
