package sale

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/billing"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// SaleStatus represents the status of a sale
type SaleStatus string

const (
	SaleStatusBuilding  SaleStatus = "BUILDING"
	SaleStatusReviewed  SaleStatus = "REVIEWED"
	SaleStatusConfirmed SaleStatus = "CONFIRMED"
	SaleStatusCommitted SaleStatus = "COMMITTED"
	SaleStatusAborted   SaleStatus = "ABORTED"
)

// IsValid checks if the status is a valid SaleStatus
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusBuilding, SaleStatusReviewed, SaleStatusConfirmed, SaleStatusCommitted, SaleStatusAborted:
		return true
	}
	return false
}

// String returns the string representation of SaleStatus
func (s SaleStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// ABORTED is reachable from any non-terminal state; COMMITTED only from
// CONFIRMED; both are terminal.
func (s SaleStatus) CanTransitionTo(target SaleStatus) bool {
	switch s {
	case SaleStatusBuilding:
		return target == SaleStatusReviewed || target == SaleStatusAborted
	case SaleStatusReviewed:
		return target == SaleStatusConfirmed || target == SaleStatusBuilding || target == SaleStatusAborted
	case SaleStatusConfirmed:
		return target == SaleStatusCommitted || target == SaleStatusAborted
	case SaleStatusCommitted, SaleStatusAborted:
		return false
	}
	return false
}

// IsTerminal returns true for COMMITTED and ABORTED
func (s SaleStatus) IsTerminal() bool {
	return s == SaleStatusCommitted || s == SaleStatusAborted
}

// SaleLine represents a line item in a sale.
// Lines are mutable while the sale is BUILDING and frozen afterwards;
// once the sale is committed they never change.
type SaleLine struct {
	ID             uuid.UUID
	SaleID         uuid.UUID
	ProductID      uuid.UUID
	ProductType    string
	ProductName    string
	Quantity       decimal.Decimal // > 0
	UnitPrice      decimal.Decimal // pre-tax price per unit
	PreTaxTotal    decimal.Decimal // Quantity * UnitPrice
	InclusiveTotal decimal.Decimal // PreTaxTotal with VAT applied per the sale's billing mode
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName returns the table name for GORM
func (SaleLine) TableName() string {
	return "sale_lines"
}

func newSaleLine(saleID, productID uuid.UUID, productType, productName string, quantity decimal.Decimal, unitPrice valueobject.Money) (*SaleLine, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &SaleLine{
		ID:          uuid.New(),
		SaleID:      saleID,
		ProductID:   productID,
		ProductType: productType,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice.Amount(),
		PreTaxTotal: quantity.Mul(unitPrice.Amount()),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (l *SaleLine) updateQuantity(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	l.Quantity = quantity
	l.PreTaxTotal = quantity.Mul(l.UnitPrice)
	l.UpdatedAt = time.Now()
	return nil
}

// GetPreTaxTotalMoney returns the pre-tax line total as Money
func (l *SaleLine) GetPreTaxTotalMoney() valueobject.Money {
	return valueobject.NewMoneyMAD(l.PreTaxTotal)
}

// Sale is the aggregate root for a point-of-sale transaction.
// While BUILDING it behaves as the shopping cart: lines and discount are
// mutable and every mutation recomputes the totals. Review freezes the
// snapshot, Confirm is the operator acknowledgement, and the commit engine
// persists the whole unit atomically before marking it COMMITTED.
type Sale struct {
	shared.BaseAggregateRoot
	ClientID       uuid.UUID
	ClientName     string
	BillingMode    billing.BillingMode
	Subtotal       decimal.Decimal // Σ pre-tax line totals
	DiscountAmount decimal.Decimal // flat currency amount, never a percentage
	TaxAmount      decimal.Decimal // derived from billing mode and discounted subtotal only
	TotalPayable   decimal.Decimal // max(0, Subtotal - Discount) + TaxAmount
	Status         SaleStatus
	CommitToken    string // client-generated idempotency token, set at commit
	Lines          []SaleLine
	Payments       []Payment
	ReviewedAt     *time.Time
	ConfirmedAt    *time.Time
	CommittedAt    *time.Time
	AbortedAt      *time.Time
	AbortReason    string
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// NewSale opens a new sale for a client under an explicit billing mode
func NewSale(clientID uuid.UUID, clientName string, mode billing.BillingMode) (*Sale, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if clientName == "" {
		return nil, shared.NewDomainError("INVALID_CLIENT_NAME", "Client name cannot be empty")
	}
	if !mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_BILLING_MODE", "Billing mode must be WITH_TAX or WITHOUT_TAX")
	}

	s := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          clientID,
		ClientName:        clientName,
		BillingMode:       mode,
		Subtotal:          decimal.Zero,
		DiscountAmount:    decimal.Zero,
		TaxAmount:         decimal.Zero,
		TotalPayable:      decimal.Zero,
		Status:            SaleStatusBuilding,
		Lines:             make([]SaleLine, 0),
		Payments:          make([]Payment, 0),
	}

	s.AddDomainEvent(NewSaleOpenedEvent(s))

	return s, nil
}

// AddLine adds a line to the sale. availableQty is the stock figure read
// from the stock gateway at the time of the call; the authoritative check
// happens again at commit time.
func (s *Sale) AddLine(productID uuid.UUID, productType, productName string, quantity decimal.Decimal, unitPrice valueobject.Money, availableQty decimal.Decimal) (*SaleLine, error) {
	if s.Status != SaleStatusBuilding {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add lines to a non-building sale")
	}

	for idx := range s.Lines {
		if s.Lines[idx].ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already in the sale, update its quantity instead")
		}
	}

	if quantity.GreaterThan(availableQty) {
		return nil, shared.ErrInsufficientStock
	}

	line, err := newSaleLine(s.ID, productID, productType, productName, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	s.Lines = append(s.Lines, *line)
	s.recalculateTotals()
	s.UpdatedAt = time.Now()

	return line, nil
}

// UpdateLineQuantity changes the quantity of an existing line, subject to
// the same availability check as AddLine. The quantity is the new absolute
// figure for the line, not a delta; callers adjusting relatively compute
// the target quantity first. On failure the sale is unchanged.
func (s *Sale) UpdateLineQuantity(lineID uuid.UUID, quantity decimal.Decimal, availableQty decimal.Decimal) error {
	if s.Status != SaleStatusBuilding {
		return shared.NewDomainError("INVALID_STATE", "Cannot update lines of a non-building sale")
	}

	for idx := range s.Lines {
		if s.Lines[idx].ID == lineID {
			if quantity.GreaterThan(availableQty) {
				return shared.ErrInsufficientStock
			}
			if err := s.Lines[idx].updateQuantity(quantity); err != nil {
				return err
			}
			s.recalculateTotals()
			s.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("LINE_NOT_FOUND", "Sale line not found")
}

// RemoveLine removes a line from the sale
func (s *Sale) RemoveLine(lineID uuid.UUID) error {
	if s.Status != SaleStatusBuilding {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove lines from a non-building sale")
	}

	for idx, line := range s.Lines {
		if line.ID == lineID {
			s.Lines = append(s.Lines[:idx], s.Lines[idx+1:]...)
			s.recalculateTotals()
			s.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("LINE_NOT_FOUND", "Sale line not found")
}

// ApplyDiscount applies a flat discount to the sale
func (s *Sale) ApplyDiscount(discount valueobject.Money) error {
	if s.Status != SaleStatusBuilding {
		return shared.NewDomainError("INVALID_STATE", "Cannot apply discount to a non-building sale")
	}
	if discount.Amount().IsNegative() {
		return shared.ErrInvalidDiscount
	}
	if discount.Amount().GreaterThan(s.Subtotal) {
		return shared.ErrInvalidDiscount
	}

	s.DiscountAmount = discount.Amount()
	s.recalculateTotals()
	s.UpdatedAt = time.Now()

	return nil
}

// DiscountedSubtotal returns max(0, Subtotal - Discount)
func (s *Sale) DiscountedSubtotal() decimal.Decimal {
	discounted := s.Subtotal.Sub(s.DiscountAmount)
	if discounted.IsNegative() {
		return decimal.Zero
	}
	return discounted
}

// Review freezes the cart into a snapshot for operator review.
// Requires at least one line.
func (s *Sale) Review() error {
	if !s.Status.CanTransitionTo(SaleStatusReviewed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot review sale in %s status", s.Status))
	}
	if len(s.Lines) == 0 {
		return shared.NewDomainError("NO_LINES", "Cannot review a sale without lines")
	}

	now := time.Now()
	s.Status = SaleStatusReviewed
	s.ReviewedAt = &now
	s.UpdatedAt = now

	return nil
}

// Reopen sends a reviewed sale back to BUILDING so the operator can edit it
func (s *Sale) Reopen() error {
	if !s.Status.CanTransitionTo(SaleStatusBuilding) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reopen sale in %s status", s.Status))
	}

	s.Status = SaleStatusBuilding
	s.ReviewedAt = nil
	s.UpdatedAt = time.Now()

	return nil
}

// Confirm records the operator acknowledgement that the snapshot is final.
// It is purely a human-error guard and performs no extra validation.
func (s *Sale) Confirm() error {
	if !s.Status.CanTransitionTo(SaleStatusConfirmed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot confirm sale in %s status", s.Status))
	}

	now := time.Now()
	s.Status = SaleStatusConfirmed
	s.ConfirmedAt = &now
	s.UpdatedAt = now

	return nil
}

// AttachPayments records a validated payment allocation on the sale.
// The allocation must already have passed Allocator.Validate; this method
// re-checks the sum so the invariant cannot be bypassed.
func (s *Sale) AttachPayments(entries []PaymentEntry) error {
	if s.Status != SaleStatusConfirmed {
		return shared.NewDomainError("INVALID_STATE", "Payments can only be attached to a confirmed sale")
	}

	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Amount.Amount())
	}
	if sum.Sub(s.TotalPayable).Abs().GreaterThan(valueobject.CentTolerance) {
		return shared.ErrPaymentMismatch
	}

	payments := make([]Payment, 0, len(entries))
	for _, e := range entries {
		payments = append(payments, newPayment(s.ID, e))
	}
	s.Payments = payments
	s.UpdatedAt = time.Now()

	return nil
}

// MarkCommitted transitions the sale to COMMITTED. Called by the commit
// engine once the whole persistence unit has succeeded; token is the
// client-generated idempotency token the unit was keyed by.
func (s *Sale) MarkCommitted(token string) error {
	if !s.Status.CanTransitionTo(SaleStatusCommitted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot commit sale in %s status", s.Status))
	}
	if len(s.Payments) == 0 {
		return shared.NewDomainError("NO_PAYMENTS", "Cannot commit a sale without a payment allocation")
	}
	if token == "" {
		return shared.NewDomainError("INVALID_TOKEN", "Commit token is required")
	}

	now := time.Now()
	s.Status = SaleStatusCommitted
	s.CommitToken = token
	s.CommittedAt = &now
	s.UpdatedAt = now

	s.AddDomainEvent(NewSaleCommittedEvent(s))

	return nil
}

// Abort abandons the sale. Allowed from any non-terminal state; once the
// commit unit has started acting on a CONFIRMED sale, failure handling is
// rollback, not abort.
func (s *Sale) Abort(reason string) error {
	if !s.Status.CanTransitionTo(SaleStatusAborted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot abort sale in %s status", s.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Abort reason is required")
	}

	now := time.Now()
	s.Status = SaleStatusAborted
	s.AbortedAt = &now
	s.AbortReason = reason
	s.UpdatedAt = now

	s.AddDomainEvent(NewSaleAbortedEvent(s, reason))

	return nil
}

// recalculateTotals recomputes subtotal, tax and total payable from the
// current lines and discount. Tax is always derived from the billing mode
// and the discounted subtotal, never stored independently of that rule.
func (s *Sale) recalculateTotals() {
	subtotal := decimal.Zero
	for _, line := range s.Lines {
		subtotal = subtotal.Add(line.PreTaxTotal)
	}
	s.Subtotal = subtotal

	// Clamp discount if lines shrank below it
	if s.DiscountAmount.GreaterThan(s.Subtotal) {
		s.DiscountAmount = s.Subtotal
	}

	discounted := s.DiscountedSubtotal()
	breakdown, _ := billing.Compute(valueobject.NewMoneyMAD(discounted), s.BillingMode)
	s.TaxAmount = breakdown.Tax.Amount()
	s.TotalPayable = breakdown.TaxInclusive.Amount()

	// Line-level tax-inclusive totals follow the sale's billing mode
	for idx := range s.Lines {
		lineBreakdown, _ := billing.Compute(valueobject.NewMoneyMAD(s.Lines[idx].PreTaxTotal), s.BillingMode)
		s.Lines[idx].InclusiveTotal = lineBreakdown.TaxInclusive.Amount()
	}
}

// GetSubtotalMoney returns the subtotal as Money
func (s *Sale) GetSubtotalMoney() valueobject.Money {
	return valueobject.NewMoneyMAD(s.Subtotal)
}

// GetTotalPayableMoney returns the total payable as Money
func (s *Sale) GetTotalPayableMoney() valueobject.Money {
	return valueobject.NewMoneyMAD(s.TotalPayable)
}

// GetTaxAmountMoney returns the tax amount as Money
func (s *Sale) GetTaxAmountMoney() valueobject.Money {
	return valueobject.NewMoneyMAD(s.TaxAmount)
}

// PaymentsTotal returns the sum of attached payment amounts
func (s *Sale) PaymentsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// LineCount returns the number of lines in the sale
func (s *Sale) LineCount() int {
	return len(s.Lines)
}

// GetLine returns a line by its ID
func (s *Sale) GetLine(lineID uuid.UUID) *SaleLine {
	for idx := range s.Lines {
		if s.Lines[idx].ID == lineID {
			return &s.Lines[idx]
		}
	}
	return nil
}

// GetLineByProduct returns a line by product ID
func (s *Sale) GetLineByProduct(productID uuid.UUID) *SaleLine {
	for idx := range s.Lines {
		if s.Lines[idx].ProductID == productID {
			return &s.Lines[idx]
		}
	}
	return nil
}

// IsCommitted returns true if the sale is committed
func (s *Sale) IsCommitted() bool {
	return s.Status == SaleStatusCommitted
}

// CanModify returns true if cart mutations are allowed
func (s *Sale) CanModify() bool {
	return s.Status == SaleStatusBuilding
}
