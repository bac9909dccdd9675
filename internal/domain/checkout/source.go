package checkout

// Mode identifies where the items of a checkout attempt come from.
type Mode string

const (
	// ModeCart checks out the user's whole persisted cart.
	ModeCart Mode = "CART"
	// ModeBuyNow checks out a single product, bypassing the cart.
	ModeBuyNow Mode = "BUY_NOW"
	// ModeSelection checks out a caller-selected subset of already
	// hydrated cart items.
	ModeSelection Mode = "SELECTED_SUBSET"
)

// Source is a tagged union describing the item source of a checkout attempt.
// Exactly one of the mode-specific fields is meaningful, selected by Mode.
// Use the constructors; a zero Source is invalid.
type Source struct {
	Mode Mode

	// BUY_NOW inputs.
	ProductID string
	Quantity  int

	// SELECTED_SUBSET input: pre-filtered, already hydrated items taken
	// verbatim without a re-fetch.
	Items []LineItem
}

// CartSource selects the user's persisted cart as the item source.
func CartSource() Source {
	return Source{Mode: ModeCart}
}

// BuyNowSource selects a single product with the given quantity.
func BuyNowSource(productID string, quantity int) Source {
	return Source{Mode: ModeBuyNow, ProductID: productID, Quantity: quantity}
}

// SelectionSource selects a caller-supplied subset of cart items.
func SelectionSource(items []LineItem) Source {
	return Source{Mode: ModeSelection, Items: items}
}
