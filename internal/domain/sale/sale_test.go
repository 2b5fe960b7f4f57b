package sale

import (
	"testing"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/billing"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func createTestSale(t *testing.T, mode billing.BillingMode) *Sale {
	s, err := NewSale(uuid.New(), "Test Client", mode)
	require.NoError(t, err)
	return s
}

func addTestLine(t *testing.T, s *Sale, name string, qty, price, available float64) *SaleLine {
	line, err := s.AddLine(uuid.New(), "article", name,
		decimal.NewFromFloat(qty),
		valueobject.NewMoneyMADFromFloat(price),
		decimal.NewFromFloat(available))
	require.NoError(t, err)
	return line
}

func cashEntry(amount float64) PaymentEntry {
	return PaymentEntry{Kind: PaymentKindCash, Amount: valueobject.NewMoneyMADFromFloat(amount)}
}

// ============================================
// SaleStatus Tests
// ============================================

func TestSaleStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  SaleStatus
		isValid bool
	}{
		{SaleStatusBuilding, true},
		{SaleStatusReviewed, true},
		{SaleStatusConfirmed, true},
		{SaleStatusCommitted, true},
		{SaleStatusAborted, true},
		{SaleStatus("DRAFT"), false},
		{SaleStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestSaleStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     SaleStatus
		to       SaleStatus
		canTrans bool
	}{
		{SaleStatusBuilding, SaleStatusReviewed, true},
		{SaleStatusBuilding, SaleStatusAborted, true},
		{SaleStatusBuilding, SaleStatusConfirmed, false},
		{SaleStatusBuilding, SaleStatusCommitted, false},
		{SaleStatusReviewed, SaleStatusConfirmed, true},
		{SaleStatusReviewed, SaleStatusBuilding, true},
		{SaleStatusReviewed, SaleStatusAborted, true},
		{SaleStatusReviewed, SaleStatusCommitted, false},
		{SaleStatusConfirmed, SaleStatusCommitted, true},
		{SaleStatusConfirmed, SaleStatusAborted, true},
		{SaleStatusConfirmed, SaleStatusBuilding, false},
		// Terminal states
		{SaleStatusCommitted, SaleStatusAborted, false},
		{SaleStatusAborted, SaleStatusBuilding, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

// ============================================
// Cart behaviour (BUILDING state)
// ============================================

func TestNewSale(t *testing.T) {
	t.Run("valid sale", func(t *testing.T) {
		s := createTestSale(t, billing.BillingModeWithTax)
		assert.Equal(t, SaleStatusBuilding, s.Status)
		assert.True(t, s.TotalPayable.IsZero())
		assert.Len(t, s.GetDomainEvents(), 1)
	})

	t.Run("missing client", func(t *testing.T) {
		_, err := NewSale(uuid.Nil, "X", billing.BillingModeWithTax)
		assert.Error(t, err)
	})

	t.Run("invalid billing mode", func(t *testing.T) {
		_, err := NewSale(uuid.New(), "X", billing.BillingMode("TAXED"))
		assert.Error(t, err)
	})
}

func TestSale_AddLine(t *testing.T) {
	t.Run("adds and recomputes totals", func(t *testing.T) {
		s := createTestSale(t, billing.BillingModeWithTax)
		addTestLine(t, s, "Widget", 2, 1000, 10)

		assert.Equal(t, "2000.00", s.Subtotal.StringFixed(2))
		assert.Equal(t, "400.00", s.TaxAmount.StringFixed(2))
		assert.Equal(t, "2400.00", s.TotalPayable.StringFixed(2))
	})

	t.Run("insufficient stock leaves sale unchanged", func(t *testing.T) {
		s := createTestSale(t, billing.BillingModeWithTax)
		_, err := s.AddLine(uuid.New(), "article", "Widget",
			decimal.NewFromInt(5),
			valueobject.NewMoneyMADFromFloat(100),
			decimal.NewFromInt(3))

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, 0, s.LineCount())
		assert.True(t, s.Subtotal.IsZero())
	})

	t.Run("duplicate product rejected", func(t *testing.T) {
		s := createTestSale(t, billing.BillingModeWithTax)
		line := addTestLine(t, s, "Widget", 1, 100, 10)

		_, err := s.AddLine(line.ProductID, "article", "Widget",
			decimal.NewFromInt(1),
			valueobject.NewMoneyMADFromFloat(100),
			decimal.NewFromInt(10))
		assert.Error(t, err)
	})

	t.Run("rejected outside building", func(t *testing.T) {
		s := createTestSale(t, billing.BillingModeWithTax)
		addTestLine(t, s, "Widget", 1, 100, 10)
		require.NoError(t, s.Review())

		_, err := s.AddLine(uuid.New(), "article", "Gadget",
			decimal.NewFromInt(1),
			valueobject.NewMoneyMADFromFloat(50),
			decimal.NewFromInt(10))
		assert.Error(t, err)
	})
}

func TestSale_UpdateLineQuantity(t *testing.T) {
	t.Run("updates totals", func(t *testing.T) {
		s := createTestSale(t, billing.BillingModeWithoutTax)
		line := addTestLine(t, s, "Widget", 1, 100, 10)

		require.NoError(t, s.UpdateLineQuantity(line.ID, decimal.NewFromInt(3), decimal.NewFromInt(10)))
		assert.Equal(t, "300.00", s.Subtotal.StringFixed(2))
	})

	t.Run("beyond availability rejected, cart unchanged", func(t *testing.T) {
		s := createTestSale(t, billing.BillingModeWithoutTax)
		line := addTestLine(t, s, "Widget", 2, 100, 10)

		err := s.UpdateLineQuantity(line.ID, decimal.NewFromInt(11), decimal.NewFromInt(10))
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.True(t, s.GetLine(line.ID).Quantity.Equal(decimal.NewFromInt(2)))
		assert.Equal(t, "200.00", s.Subtotal.StringFixed(2))
	})

	t.Run("unknown line", func(t *testing.T) {
		s := createTestSale(t, billing.BillingModeWithoutTax)
		err := s.UpdateLineQuantity(uuid.New(), decimal.NewFromInt(1), decimal.NewFromInt(10))
		assert.Error(t, err)
	})
}

func TestSale_RemoveLine(t *testing.T) {
	s := createTestSale(t, billing.BillingModeWithTax)
	line := addTestLine(t, s, "Widget", 2, 1000, 10)
	addTestLine(t, s, "Gadget", 1, 500, 5)

	require.NoError(t, s.RemoveLine(line.ID))
	assert.Equal(t, 1, s.LineCount())
	assert.Equal(t, "500.00", s.Subtotal.StringFixed(2))
}

func TestSale_ApplyDiscount(t *testing.T) {
	t.Run("flat discount reduces payable", func(t *testing.T) {
		s := createTestSale(t, billing.BillingModeWithTax)
		addTestLine(t, s, "Widget", 2, 1000, 10)

		require.NoError(t, s.ApplyDiscount(valueobject.NewMoneyMADFromFloat(500)))
		// discounted subtotal 1500, tax 300, payable 1800
		assert.Equal(t, "1500.00", s.DiscountedSubtotal().StringFixed(2))
		assert.Equal(t, "300.00", s.TaxAmount.StringFixed(2))
		assert.Equal(t, "1800.00", s.TotalPayable.StringFixed(2))
	})

	t.Run("discount above subtotal rejected", func(t *testing.T) {
		s := createTestSale(t, billing.BillingModeWithTax)
		addTestLine(t, s, "Widget", 1, 100, 10)

		err := s.ApplyDiscount(valueobject.NewMoneyMADFromFloat(101))
		assert.ErrorIs(t, err, shared.ErrInvalidDiscount)
	})

	t.Run("negative discount rejected", func(t *testing.T) {
		s := createTestSale(t, billing.BillingModeWithTax)
		addTestLine(t, s, "Widget", 1, 100, 10)

		err := s.ApplyDiscount(valueobject.NewMoneyMADFromFloat(-1))
		assert.ErrorIs(t, err, shared.ErrInvalidDiscount)
	})
}

// ============================================
// Billing scenarios
// ============================================

func TestSale_TotalsWithTax(t *testing.T) {
	// cart [{1000 HT, qty 2}], WITH_TAX, no discount -> 2000 / 400 / 2400
	s := createTestSale(t, billing.BillingModeWithTax)
	addTestLine(t, s, "Widget", 2, 1000, 10)

	assert.Equal(t, "2000.00", s.Subtotal.StringFixed(2))
	assert.Equal(t, "400.00", s.TaxAmount.StringFixed(2))
	assert.Equal(t, "2400.00", s.TotalPayable.StringFixed(2))

	line := s.GetLineByProduct(s.Lines[0].ProductID)
	assert.Equal(t, "2400.00", line.InclusiveTotal.StringFixed(2))
}

func TestSale_TotalsWithoutTax(t *testing.T) {
	// same cart, WITHOUT_TAX -> payable 2000, tax 0
	s := createTestSale(t, billing.BillingModeWithoutTax)
	addTestLine(t, s, "Widget", 2, 1000, 10)

	assert.True(t, s.TaxAmount.IsZero())
	assert.Equal(t, "2000.00", s.TotalPayable.StringFixed(2))
}

// ============================================
// Lifecycle
// ============================================

func TestSale_Review(t *testing.T) {
	t.Run("freezes the cart", func(t *testing.T) {
		s := createTestSale(t, billing.BillingModeWithTax)
		addTestLine(t, s, "Widget", 1, 100, 10)

		require.NoError(t, s.Review())
		assert.Equal(t, SaleStatusReviewed, s.Status)
		assert.NotNil(t, s.ReviewedAt)
		assert.Error(t, s.ApplyDiscount(valueobject.NewMoneyMADFromFloat(10)))
	})

	t.Run("empty cart cannot be reviewed", func(t *testing.T) {
		s := createTestSale(t, billing.BillingModeWithTax)
		assert.Error(t, s.Review())
	})
}

func TestSale_Reopen(t *testing.T) {
	s := createTestSale(t, billing.BillingModeWithTax)
	addTestLine(t, s, "Widget", 1, 100, 10)
	require.NoError(t, s.Review())

	require.NoError(t, s.Reopen())
	assert.Equal(t, SaleStatusBuilding, s.Status)
	assert.Nil(t, s.ReviewedAt)
	assert.True(t, s.CanModify())
}

func TestSale_ConfirmAndCommit(t *testing.T) {
	s := createTestSale(t, billing.BillingModeWithTax)
	addTestLine(t, s, "Widget", 2, 1000, 10)
	require.NoError(t, s.Review())
	require.NoError(t, s.Confirm())
	assert.NotNil(t, s.ConfirmedAt)

	require.NoError(t, s.AttachPayments([]PaymentEntry{cashEntry(2400)}))
	require.NoError(t, s.MarkCommitted("tok-1"))

	assert.Equal(t, SaleStatusCommitted, s.Status)
	assert.Equal(t, "tok-1", s.CommitToken)
	assert.NotNil(t, s.CommittedAt)
	assert.True(t, s.IsCommitted())
}

func TestSale_AttachPayments(t *testing.T) {
	t.Run("mismatching sum rejected", func(t *testing.T) {
		s := createTestSale(t, billing.BillingModeWithTax)
		addTestLine(t, s, "Widget", 2, 1000, 10)
		require.NoError(t, s.Review())
		require.NoError(t, s.Confirm())

		err := s.AttachPayments([]PaymentEntry{cashEntry(2000)})
		assert.ErrorIs(t, err, shared.ErrPaymentMismatch)
	})

	t.Run("within tolerance accepted", func(t *testing.T) {
		s := createTestSale(t, billing.BillingModeWithTax)
		addTestLine(t, s, "Widget", 2, 1000, 10)
		require.NoError(t, s.Review())
		require.NoError(t, s.Confirm())

		require.NoError(t, s.AttachPayments([]PaymentEntry{cashEntry(2399.99)}))
		assert.Equal(t, "2399.99", s.PaymentsTotal().StringFixed(2))
	})

	t.Run("only on confirmed sales", func(t *testing.T) {
		s := createTestSale(t, billing.BillingModeWithTax)
		addTestLine(t, s, "Widget", 2, 1000, 10)
		assert.Error(t, s.AttachPayments([]PaymentEntry{cashEntry(2400)}))
	})
}

func TestSale_MarkCommitted(t *testing.T) {
	t.Run("requires payments", func(t *testing.T) {
		s := createTestSale(t, billing.BillingModeWithTax)
		addTestLine(t, s, "Widget", 2, 1000, 10)
		require.NoError(t, s.Review())
		require.NoError(t, s.Confirm())

		assert.Error(t, s.MarkCommitted("tok"))
	})

	t.Run("requires token", func(t *testing.T) {
		s := createTestSale(t, billing.BillingModeWithTax)
		addTestLine(t, s, "Widget", 2, 1000, 10)
		require.NoError(t, s.Review())
		require.NoError(t, s.Confirm())
		require.NoError(t, s.AttachPayments([]PaymentEntry{cashEntry(2400)}))

		assert.Error(t, s.MarkCommitted(""))
	})
}

func TestSale_Abort(t *testing.T) {
	t.Run("from building", func(t *testing.T) {
		s := createTestSale(t, billing.BillingModeWithTax)
		require.NoError(t, s.Abort("changed mind"))
		assert.Equal(t, SaleStatusAborted, s.Status)
		assert.Equal(t, "changed mind", s.AbortReason)
	})

	t.Run("requires reason", func(t *testing.T) {
		s := createTestSale(t, billing.BillingModeWithTax)
		assert.Error(t, s.Abort(""))
	})

	t.Run("not from committed", func(t *testing.T) {
		s := createTestSale(t, billing.BillingModeWithTax)
		addTestLine(t, s, "Widget", 2, 1000, 10)
		require.NoError(t, s.Review())
		require.NoError(t, s.Confirm())
		require.NoError(t, s.AttachPayments([]PaymentEntry{cashEntry(2400)}))
		require.NoError(t, s.MarkCommitted("tok"))

		assert.Error(t, s.Abort("too late"))
	})
}

func TestSale_PayableIsDeterministic(t *testing.T) {
	// same cart, discount and mode always produce the same payable
	build := func() *Sale {
		s, err := NewSale(uuid.MustParse("5db8e02e-1a3d-4a6a-9c32-000000000001"), "Client", billing.BillingModeWithTax)
		require.NoError(t, err)
		pid := uuid.MustParse("5db8e02e-1a3d-4a6a-9c32-000000000002")
		_, err = s.AddLine(pid, "article", "Widget", decimal.NewFromInt(3), valueobject.NewMoneyMADFromFloat(99.99), decimal.NewFromInt(100))
		require.NoError(t, err)
		require.NoError(t, s.ApplyDiscount(valueobject.NewMoneyMADFromFloat(50)))
		return s
	}

	a, b := build(), build()
	assert.True(t, a.TotalPayable.Equal(b.TotalPayable))
	assert.True(t, a.TaxAmount.Equal(b.TaxAmount))
}
