package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestMovement(t *testing.T, direction MovementDirection, amount float64) *Movement {
	m, err := NewMovement(uuid.New(), direction, valueobject.NewMoneyMADFromFloat(amount),
		Origin{Kind: OriginKindSale, Ref: uuid.New()}, "vente comptoir")
	require.NoError(t, err)
	return m
}

func TestNewMovement(t *testing.T) {
	t.Run("created validated", func(t *testing.T) {
		m := createTestMovement(t, MovementDirectionCredit, 2400)
		assert.Equal(t, MovementStatusValidated, m.Status)
		assert.True(t, m.IsValidated())
		assert.NotNil(t, m.OriginRef)
	})

	t.Run("manual origin has no ref", func(t *testing.T) {
		m, err := NewMovement(uuid.New(), MovementDirectionDebit, valueobject.NewMoneyMADFromFloat(100), ManualOrigin(), "ajustement")
		require.NoError(t, err)
		assert.Nil(t, m.OriginRef)
	})

	t.Run("validation failures", func(t *testing.T) {
		tests := []struct {
			name      string
			accountID uuid.UUID
			direction MovementDirection
			amount    float64
			origin    Origin
		}{
			{"missing account", uuid.Nil, MovementDirectionCredit, 100, ManualOrigin()},
			{"invalid direction", uuid.New(), MovementDirection("IN"), 100, ManualOrigin()},
			{"zero amount", uuid.New(), MovementDirectionCredit, 0, ManualOrigin()},
			{"negative amount", uuid.New(), MovementDirectionCredit, -50, ManualOrigin()},
			{"invalid origin", uuid.New(), MovementDirectionCredit, 100, Origin{Kind: OriginKind("IMPORT")}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewMovement(tt.accountID, tt.direction, valueobject.NewMoneyMADFromFloat(tt.amount), tt.origin, "x")
				assert.Error(t, err)
			})
		}
	})
}

func TestMovement_SignedAmount(t *testing.T) {
	credit := createTestMovement(t, MovementDirectionCredit, 2400)
	debit := createTestMovement(t, MovementDirectionDebit, 500)

	assert.Equal(t, "2400.00", credit.SignedAmount().StringFixed(2))
	assert.Equal(t, "-500.00", debit.SignedAmount().StringFixed(2))
}

func TestMovement_Cancel(t *testing.T) {
	t.Run("validated movements cannot be cancelled", func(t *testing.T) {
		m := createTestMovement(t, MovementDirectionCredit, 100)
		assert.Error(t, m.Cancel())
	})

	t.Run("pending movements can", func(t *testing.T) {
		m := createTestMovement(t, MovementDirectionCredit, 100)
		m.Status = MovementStatusPending
		require.NoError(t, m.Cancel())
		assert.Equal(t, MovementStatusCancelled, m.Status)
	})
}

func TestMovement_Reverse(t *testing.T) {
	t.Run("produces the opposite movement", func(t *testing.T) {
		m := createTestMovement(t, MovementDirectionCredit, 2400)

		reversal, err := m.Reverse("annulation vente")
		require.NoError(t, err)

		assert.Equal(t, MovementDirectionDebit, reversal.Direction)
		assert.True(t, reversal.Amount.Equal(m.Amount))
		assert.Equal(t, MovementStatusValidated, reversal.Status)
		require.NotNil(t, reversal.ReversesID)
		assert.Equal(t, m.ID, *reversal.ReversesID)

		// original plus reversal net to zero
		assert.True(t, m.SignedAmount().Add(reversal.SignedAmount()).IsZero())
	})

	t.Run("debit reverses to credit", func(t *testing.T) {
		m := createTestMovement(t, MovementDirectionDebit, 500)
		reversal, err := m.Reverse("correction")
		require.NoError(t, err)
		assert.Equal(t, MovementDirectionCredit, reversal.Direction)
	})

	t.Run("only validated rows reverse", func(t *testing.T) {
		m := createTestMovement(t, MovementDirectionCredit, 100)
		m.Status = MovementStatusRejected
		_, err := m.Reverse("x")
		assert.Error(t, err)
	})
}
