package discount

import (
	"context"
	"testing"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockValidator struct {
	terms Terms
	err   error
	calls int
}

func (m *mockValidator) ValidateCoupon(_ context.Context, _, _ string, _ decimal.Decimal) (Terms, error) {
	m.calls++
	if m.err != nil {
		return Terms{}, m.err
	}
	return m.terms, nil
}

// --- Tests ---

func TestApply_Percentage(t *testing.T) {
	terms := Terms{Code: "TENOFF", Type: TypePercentage, Percent: decimal.NewFromInt(10)}

	amount, err := Apply(terms, decimal.NewFromInt(350_000), decimal.NewFromInt(30_000))
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromInt(35_000)), "got %s", amount)
}

func TestApply_PercentageFloors(t *testing.T) {
	// 15% of 99,999 is 14,999.85; fractional VND is floored away.
	terms := Terms{Type: TypePercentage, Percent: decimal.NewFromInt(15)}

	amount, err := Apply(terms, decimal.NewFromInt(99_999), decimal.NewFromInt(30_000))
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromInt(14_999)), "got %s", amount)
}

func TestApply_FixedCappedAtSubtotal(t *testing.T) {
	terms := Terms{Type: TypeFixed, Value: decimal.NewFromInt(50_000)}

	amount, err := Apply(terms, decimal.NewFromInt(20_000), decimal.NewFromInt(30_000))
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromInt(20_000)), "got %s", amount)
}

func TestApply_FreeShippingIsFlatConstant(t *testing.T) {
	terms := Terms{Type: TypeFreeShipping}

	amount, err := Apply(terms, decimal.NewFromInt(500_000), decimal.NewFromInt(30_000))
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromInt(30_000)), "got %s", amount)
}

func TestApply_FreeShippingCappedAtSubtotal(t *testing.T) {
	terms := Terms{Type: TypeFreeShipping}

	amount, err := Apply(terms, decimal.NewFromInt(10_000), decimal.NewFromInt(30_000))
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromInt(10_000)), "got %s", amount)
}

func TestApply_UnsupportedType(t *testing.T) {
	_, err := Apply(Terms{Type: "BOGOF"}, decimal.NewFromInt(100), decimal.Zero)
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestApply_NeverNegative(t *testing.T) {
	tests := []struct {
		name  string
		terms Terms
	}{
		{"negative fixed value", Terms{Type: TypeFixed, Value: decimal.NewFromInt(-500)}},
		{"negative percent", Terms{Type: TypePercentage, Percent: decimal.NewFromInt(-10)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := Apply(tt.terms, decimal.NewFromInt(10_000), decimal.NewFromInt(30_000))
			require.NoError(t, err)
			assert.False(t, amount.IsNegative())
			assert.True(t, amount.Equal(decimal.Zero), "got %s", amount)
		})
	}
}

func TestApply_Deterministic(t *testing.T) {
	terms := Terms{Type: TypePercentage, Percent: decimal.NewFromInt(33)}
	subtotal := decimal.NewFromInt(123_457)
	fee := decimal.NewFromInt(30_000)

	first, err := Apply(terms, subtotal, fee)
	require.NoError(t, err)
	second, err := Apply(terms, subtotal, fee)
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
}

func TestEngine_AppliesRemoteTerms(t *testing.T) {
	v := &mockValidator{terms: Terms{
		ID:      "c1",
		Code:    "TENOFF",
		Type:    TypePercentage,
		Percent: decimal.NewFromInt(10),
	}}
	e := NewEngine(v, nil, decimal.NewFromInt(30_000))

	applied, err := e.Apply(context.Background(), "TENOFF", "u1", decimal.NewFromInt(200_000))
	require.NoError(t, err)
	assert.Equal(t, "TENOFF", applied.Terms.Code)
	assert.True(t, applied.Amount.Equal(decimal.NewFromInt(20_000)), "got %s", applied.Amount)
}

func TestEngine_PropagatesValidatorError(t *testing.T) {
	wantErr := errors.New("coupon usage limit reached")
	e := NewEngine(&mockValidator{err: wantErr}, nil, decimal.NewFromInt(30_000))

	_, err := e.Apply(context.Background(), "TENOFF", "u1", decimal.NewFromInt(200_000))
	require.ErrorIs(t, err, wantErr)
}

func TestEngine_CodebookShortCircuitsDefiniteNegative(t *testing.T) {
	filter := bloom.NewWithEstimates(100, 0.001)
	filter.AddString("REALCODE")
	v := &mockValidator{terms: Terms{Type: TypeFixed, Value: decimal.NewFromInt(5_000)}}
	e := NewEngine(v, NewCodebook(filter), decimal.NewFromInt(30_000))

	_, err := e.Apply(context.Background(), "NEVERWAS", "u1", decimal.NewFromInt(100_000))
	require.ErrorIs(t, err, ErrUnknownCode)
	assert.Zero(t, v.calls, "collaborator must not be called for a definite negative")

	// A code present in the codebook still goes to the collaborator.
	_, err = e.Apply(context.Background(), "REALCODE", "u1", decimal.NewFromInt(100_000))
	require.NoError(t, err)
	assert.Equal(t, 1, v.calls)
}
