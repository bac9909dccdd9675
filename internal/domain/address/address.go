package address

import (
	"regexp"
	"strings"

	"github.com/go-faster/errors"
)

// phonePattern is the 10-digit local format: a leading zero and nine digits.
var phonePattern = regexp.MustCompile(`^0\d{9}$`)

// Address is a shipping destination. District is optional; every other
// location field is required.
type Address struct {
	ID            string `json:"id"`
	RecipientName string `json:"recipientName"`
	Phone         string `json:"phone"`
	StreetAddress string `json:"streetAddress"`
	Ward          string `json:"ward"`
	District      string `json:"district,omitempty"`
	Province      string `json:"province"`
	IsDefault     bool   `json:"isDefault"`
}

// ValidationError reports which field of a candidate address is unusable.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "address " + e.Field + ": " + e.Reason
}

// Validate checks required fields and the phone format.
func (a Address) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"recipientName", a.RecipientName},
		{"phone", a.Phone},
		{"streetAddress", a.StreetAddress},
		{"ward", a.Ward},
		{"province", a.Province},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ValidationError{Field: r.field, Reason: "required"}
		}
	}
	if !phonePattern.MatchString(a.Phone) {
		return &ValidationError{Field: "phone", Reason: "must be 10 digits starting with 0"}
	}
	return nil
}

// ErrEmptyBook is returned when a default address is requested from a book
// with no entries; checkout is blocked until one is added.
var ErrEmptyBook = errors.New("no shipping addresses")

// Flatten renders the address as the single shipping string the order
// request carries: "street, ward[, district], province". A missing district
// must not leave a double comma behind.
func (a Address) Flatten() string {
	parts := []string{a.StreetAddress, a.Ward, a.District, a.Province}
	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
