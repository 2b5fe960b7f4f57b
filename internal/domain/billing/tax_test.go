package billing

import (
	"testing"

	"github.com/retailpos/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillingMode_IsValid(t *testing.T) {
	tests := []struct {
		mode    BillingMode
		isValid bool
	}{
		{BillingModeWithTax, true},
		{BillingModeWithoutTax, true},
		{BillingMode("TAXED"), false},
		{BillingMode(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.mode.IsValid())
		})
	}
}

func TestCompute_WithTax(t *testing.T) {
	// 2000 HT at 20% VAT -> 400 tax, 2400 TTC
	breakdown, err := Compute(valueobject.NewMoneyMADFromFloat(2000), BillingModeWithTax)
	require.NoError(t, err)

	assert.Equal(t, "2000.00", breakdown.PreTax.StringFixed(2))
	assert.Equal(t, "400.00", breakdown.Tax.StringFixed(2))
	assert.Equal(t, "2400.00", breakdown.TaxInclusive.StringFixed(2))
}

func TestCompute_WithoutTax(t *testing.T) {
	breakdown, err := Compute(valueobject.NewMoneyMADFromFloat(2000), BillingModeWithoutTax)
	require.NoError(t, err)

	assert.True(t, breakdown.Tax.IsZero())
	assert.Equal(t, "2000.00", breakdown.TaxInclusive.StringFixed(2))
}

func TestCompute_InvalidMode(t *testing.T) {
	_, err := Compute(valueobject.NewMoneyMADFromFloat(100), BillingMode("PERCENT"))
	assert.Error(t, err)
}

func TestCompute_NoMidComputationRounding(t *testing.T) {
	// 33.335 * 0.20 = 6.667 exactly; rounding must happen only in Rounded()
	breakdown, err := Compute(valueobject.NewMoneyMADFromFloat(33.335), BillingModeWithTax)
	require.NoError(t, err)

	assert.Equal(t, "6.667", breakdown.Tax.StringFixed(3))

	rounded := breakdown.Rounded()
	assert.Equal(t, "6.67", rounded.Tax.StringFixed(2))
	assert.Equal(t, "40.00", rounded.TaxInclusive.StringFixed(2))
}

func TestCompute_ZeroAmount(t *testing.T) {
	breakdown, err := Compute(valueobject.ZeroMAD(), BillingModeWithTax)
	require.NoError(t, err)
	assert.True(t, breakdown.Tax.IsZero())
	assert.True(t, breakdown.TaxInclusive.IsZero())
}
