package billing

import (
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// BillingMode selects whether VAT is charged on a sale.
// The mode is chosen once per sale and applied uniformly to every line;
// it is never inferred from data.
type BillingMode string

const (
	BillingModeWithTax    BillingMode = "WITH_TAX"
	BillingModeWithoutTax BillingMode = "WITHOUT_TAX"
)

// IsValid checks if the mode is a valid BillingMode
func (m BillingMode) IsValid() bool {
	switch m {
	case BillingModeWithTax, BillingModeWithoutTax:
		return true
	}
	return false
}

// String returns the string representation of BillingMode
func (m BillingMode) String() string {
	return string(m)
}

// VATRate is the value-added tax rate applied in WITH_TAX mode (20%)
var VATRate = decimal.NewFromFloat(0.20)

// TaxBreakdown is the result of applying a billing mode to a pre-tax amount.
// Amounts are kept at full precision; only the presentation values returned
// by Rounded are reduced to 2 decimals, so per-line rounding error cannot
// compound across a sale.
type TaxBreakdown struct {
	PreTax       valueobject.Money
	Tax          valueobject.Money
	TaxInclusive valueobject.Money
}

// Rounded returns the breakdown with every amount rounded to 2 decimals,
// suitable for storage and display.
func (b TaxBreakdown) Rounded() TaxBreakdown {
	return TaxBreakdown{
		PreTax:       b.PreTax.Round(2),
		Tax:          b.Tax.Round(2),
		TaxInclusive: b.TaxInclusive.Round(2),
	}
}

// Compute converts a pre-tax amount into a tax-inclusive amount under the
// given billing mode.
//
// WITH_TAX:    tax = pretax * VATRate, inclusive = pretax * (1 + VATRate)
// WITHOUT_TAX: tax = 0, inclusive = pretax
func Compute(pretax valueobject.Money, mode BillingMode) (TaxBreakdown, error) {
	if !mode.IsValid() {
		return TaxBreakdown{}, shared.NewDomainError("INVALID_BILLING_MODE", "Billing mode must be WITH_TAX or WITHOUT_TAX")
	}

	if mode == BillingModeWithoutTax {
		return TaxBreakdown{
			PreTax:       pretax,
			Tax:          valueobject.Zero(pretax.Currency()),
			TaxInclusive: pretax,
		}, nil
	}

	tax := pretax.Multiply(VATRate)
	return TaxBreakdown{
		PreTax:       pretax,
		Tax:          tax,
		TaxInclusive: pretax.MustAdd(tax),
	}, nil
}
