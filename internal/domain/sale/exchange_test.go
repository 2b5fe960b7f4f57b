package sale

import (
	"testing"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exchangeLine(price float64, qty int64) ExchangeLine {
	return ExchangeLine{
		ProductID:   uuid.New(),
		ProductType: "article",
		UnitPrice:   decimal.NewFromFloat(price),
		Quantity:    decimal.NewFromInt(qty),
	}
}

func TestEvaluateDifference(t *testing.T) {
	tests := []struct {
		name     string
		oldLine  ExchangeLine
		newLine  ExchangeLine
		expected string
	}{
		{
			name:     "store owes client",
			oldLine:  exchangeLine(800, 1),
			newLine:  exchangeLine(500, 1),
			expected: "-300.00",
		},
		{
			name:     "client owes store",
			oldLine:  exchangeLine(500, 1),
			newLine:  exchangeLine(800, 1),
			expected: "300.00",
		},
		{
			name:     "even swap",
			oldLine:  exchangeLine(500, 2),
			newLine:  exchangeLine(1000, 1),
			expected: "0.00",
		},
		{
			name:     "plain return refunds the old total",
			oldLine:  exchangeLine(800, 2),
			newLine:  ExchangeLine{},
			expected: "-1600.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff := EvaluateDifference(tt.oldLine, tt.newLine)
			assert.Equal(t, tt.expected, diff.Amount().StringFixed(2))
		})
	}
}

func TestNewExchange(t *testing.T) {
	t.Run("valid exchange", func(t *testing.T) {
		e, err := NewExchange(uuid.New(), exchangeLine(800, 1), exchangeLine(500, 1))
		require.NoError(t, err)
		assert.Equal(t, ExchangeStatusPending, e.Status)
		assert.Equal(t, "-300.00", e.Difference.StringFixed(2))
		assert.False(t, e.IsPlainReturn())
		assert.False(t, e.ClientOwesStore())
	})

	t.Run("missing client", func(t *testing.T) {
		_, err := NewExchange(uuid.Nil, exchangeLine(800, 1), ExchangeLine{})
		assert.Error(t, err)
	})

	t.Run("empty returned line", func(t *testing.T) {
		_, err := NewExchange(uuid.New(), ExchangeLine{}, exchangeLine(500, 1))
		assert.Error(t, err)
	})

	t.Run("non-positive returned quantity", func(t *testing.T) {
		bad := exchangeLine(800, 1)
		bad.Quantity = decimal.Zero
		_, err := NewExchange(uuid.New(), bad, ExchangeLine{})
		assert.Error(t, err)
	})
}

func TestNewReturn(t *testing.T) {
	e, err := NewReturn(uuid.New(), exchangeLine(800, 1))
	require.NoError(t, err)
	assert.True(t, e.IsPlainReturn())
	assert.Equal(t, "-800.00", e.Difference.StringFixed(2))
	assert.Nil(t, e.NewProductID)
}

func TestExchange_Finalize(t *testing.T) {
	t.Run("cash refund", func(t *testing.T) {
		e, err := NewReturn(uuid.New(), exchangeLine(800, 1))
		require.NoError(t, err)

		require.NoError(t, e.Finalize(PaymentKindCash, nil))
		assert.Equal(t, ExchangeStatusFinalized, e.Status)
		assert.Equal(t, PaymentKindCash, e.Resolution)
		assert.NotNil(t, e.FinalizedAt)
		assert.Len(t, e.GetDomainEvents(), 1)
	})

	t.Run("bank transfer requires account", func(t *testing.T) {
		e, err := NewReturn(uuid.New(), exchangeLine(800, 1))
		require.NoError(t, err)

		err = e.Finalize(PaymentKindBankTransfer, nil)
		assert.ErrorIs(t, err, shared.ErrMissingInstrumentDetail)
		assert.Equal(t, ExchangeStatusPending, e.Status)
	})

	t.Run("bank transfer with account", func(t *testing.T) {
		e, err := NewReturn(uuid.New(), exchangeLine(800, 1))
		require.NoError(t, err)

		accountID := uuid.New()
		require.NoError(t, e.Finalize(PaymentKindBankTransfer, &accountID))
		assert.Equal(t, &accountID, e.AccountID)
	})

	t.Run("already finalized", func(t *testing.T) {
		e, err := NewReturn(uuid.New(), exchangeLine(800, 1))
		require.NoError(t, err)
		require.NoError(t, e.Finalize(PaymentKindCash, nil))

		assert.Error(t, e.Finalize(PaymentKindCash, nil))
	})

	t.Run("invalid instrument", func(t *testing.T) {
		e, err := NewReturn(uuid.New(), exchangeLine(800, 1))
		require.NoError(t, err)

		assert.Error(t, e.Finalize(PaymentKind("STORE_CREDIT"), nil))
	})
}

func TestExchange_Cancel(t *testing.T) {
	e, err := NewReturn(uuid.New(), exchangeLine(800, 1))
	require.NoError(t, err)

	require.NoError(t, e.Cancel())
	assert.Equal(t, ExchangeStatusCancelled, e.Status)
	assert.Error(t, e.Cancel())
	assert.Error(t, e.Finalize(PaymentKindCash, nil))
}
