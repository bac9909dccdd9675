package discount

import (
	"os"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
)

// Codebook is a bloom filter over every coupon code ever issued, compiled
// offline by cmd/codebook-build from the raw code dumps. A negative answer
// is definitive; a positive answer may be a false positive.
type Codebook struct {
	filter *bloom.BloomFilter
}

// NewCodebook wraps an already-built filter. Used by tests and the builder.
func NewCodebook(filter *bloom.BloomFilter) *Codebook {
	return &Codebook{filter: filter}
}

// LoadCodebook reads a serialized bloom filter from path.
func LoadCodebook(path string) (*Codebook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open codebook")
	}
	defer f.Close()

	filter := &bloom.BloomFilter{}
	if _, err := filter.ReadFrom(f); err != nil {
		return nil, errors.Wrap(err, "read codebook")
	}
	return &Codebook{filter: filter}, nil
}

// MightContain reports whether code could be an issued coupon code.
func (c *Codebook) MightContain(code string) bool {
	return c.filter.TestString(code)
}
