package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("valid money", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.50), MAD)
		require.NoError(t, err)
		assert.Equal(t, MAD, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("empty currency rejected", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(10), "")
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	a := NewMoneyMADFromFloat(100)
	b := NewMoneyMADFromFloat(40.5)

	t.Run("add", func(t *testing.T) {
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.Equal(t, "140.50", sum.StringFixed(2))
	})

	t.Run("subtract", func(t *testing.T) {
		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.Equal(t, "59.50", diff.StringFixed(2))
	})

	t.Run("multiply", func(t *testing.T) {
		product := b.Multiply(decimal.NewFromInt(2))
		assert.Equal(t, "81.00", product.StringFixed(2))
	})

	t.Run("negate and abs", func(t *testing.T) {
		neg := a.Negate()
		assert.True(t, neg.IsNegative())
		assert.True(t, neg.Abs().Equals(a))
	})

	t.Run("currency mismatch", func(t *testing.T) {
		euro := Zero(EUR)
		_, err := a.Add(euro)
		assert.Error(t, err)
		_, err = a.Subtract(euro)
		assert.Error(t, err)
	})
}

func TestMoney_EqualsWithinTolerance(t *testing.T) {
	payable := NewMoneyMADFromFloat(2400)

	tests := []struct {
		name   string
		amount float64
		within bool
	}{
		{"exact", 2400, true},
		{"one cent under", 2399.99, true},
		{"one cent over", 2400.01, true},
		{"beyond tolerance under", 2399.98, false},
		{"beyond tolerance over", 2400.02, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := payable.EqualsWithinTolerance(NewMoneyMADFromFloat(tt.amount))
			require.NoError(t, err)
			assert.Equal(t, tt.within, ok)
		})
	}

	t.Run("currency mismatch", func(t *testing.T) {
		_, err := payable.EqualsWithinTolerance(Zero(EUR))
		assert.Error(t, err)
	})
}

func TestMoney_JSON(t *testing.T) {
	m := NewMoneyMADFromFloat(12.34)
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoney_Scan(t *testing.T) {
	t.Run("string value", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan("42.75"))
		assert.Equal(t, "42.75", m.StringFixed(2))
		assert.Equal(t, DefaultCurrency, m.Currency())
	})

	t.Run("nil value", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan(nil))
		assert.True(t, m.IsZero())
	})

	t.Run("invalid value", func(t *testing.T) {
		var m Money
		assert.Error(t, m.Scan("not-a-number"))
	})
}
