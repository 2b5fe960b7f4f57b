package supplier

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/ledger"
	"github.com/retailpos/backend/internal/domain/sale"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/shared/valueobject"
	"github.com/retailpos/backend/internal/domain/supplier"
	"github.com/shopspring/decimal"
)

// BalanceService tracks what the store owes its suppliers: purchases add
// to the debt, payments settle it, and the balance is always the
// projection Σ total − Σ paid over the supplier's purchases.
type BalanceService struct {
	purchaseRepo   supplier.PurchaseRepository
	paymentRepo    supplier.PaymentRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
}

// NewBalanceService creates a new BalanceService
func NewBalanceService(
	purchaseRepo supplier.PurchaseRepository,
	paymentRepo supplier.PaymentRepository,
	txScope TransactionScope,
) *BalanceService {
	return &BalanceService{
		purchaseRepo: purchaseRepo,
		paymentRepo:  paymentRepo,
		txScope:      txScope,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *BalanceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// RecordPurchase records a supplier purchase. An initial payment settles
// part of it on the spot through the same path as RecordPayment: a payment
// row is appended and, for cash and bank transfer, one debit movement is
// posted. Purchase, payment and movement commit in one transaction.
func (s *BalanceService) RecordPurchase(ctx context.Context, req RecordPurchaseRequest) (*PurchaseResponse, error) {
	purchase, err := supplier.NewPurchase(req.SupplierID, req.Reference,
		valueobject.NewMoneyMAD(req.Total), valueobject.NewMoneyMAD(decimal.Zero))
	if err != nil {
		return nil, err
	}

	var initialPayment *supplier.Payment
	if req.InitialPayment != nil && !req.InitialPayment.IsZero() {
		if req.InitialPayment.IsNegative() {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Initial payment cannot be negative")
		}
		initialPayment, err = supplier.NewPayment(req.SupplierID, &purchase.ID,
			valueobject.NewMoneyMAD(*req.InitialPayment),
			sale.PaymentKind(req.InitialPaymentKind), req.InitialPaymentAccountID)
		if err != nil {
			return nil, err
		}
		initialPayment.Label = "acompte " + req.Reference
	}

	var posted *ledger.Movement
	txErr := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.Purchases().Save(ctx, purchase); err != nil {
			return err
		}
		if initialPayment != nil {
			movement, err := s.settle(ctx, repos, purchase, initialPayment)
			if err != nil {
				return err
			}
			posted = movement
		}
		return nil
	})
	if txErr != nil {
		if domainErr := shared.IsDomainError(txErr); domainErr != nil {
			return nil, domainErr
		}
		return nil, shared.ErrPersistence
	}

	s.publishMovementEvents(ctx, posted)

	response := ToPurchaseResponse(purchase)
	return &response, nil
}

// GetPurchase retrieves a purchase by ID
func (s *BalanceService) GetPurchase(ctx context.Context, purchaseID uuid.UUID) (*PurchaseResponse, error) {
	purchase, err := s.purchaseRepo.FindByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseResponse(purchase)
	return &response, nil
}

// ListPurchases retrieves the purchases of a supplier
func (s *BalanceService) ListPurchases(ctx context.Context, supplierID uuid.UUID, filter PurchaseListFilter) ([]PurchaseResponse, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}

	purchases, err := s.purchaseRepo.FindBySupplier(ctx, supplierID, domainFilter)
	if err != nil {
		return nil, err
	}
	return ToPurchaseResponses(purchases), nil
}

// RecordPayment settles (part of) what the store owes a supplier. When the
// payment targets a purchase, the paid amount grows and the status is
// re-derived; overpayment beyond the remaining amount is rejected. Cash and
// bank-transfer payments post one debit movement on the named account. The
// purchase update, the payment append and the movement are one atomic
// unit: a failure at any point rolls all of them back.
func (s *BalanceService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*PaymentResponse, error) {
	kind := sale.PaymentKind(req.Kind)
	amount := valueobject.NewMoneyMAD(req.Amount)

	payment, err := supplier.NewPayment(req.SupplierID, req.PurchaseID, amount, kind, req.AccountID)
	if err != nil {
		return nil, err
	}
	if req.Label != "" {
		payment.Label = req.Label
	}

	var posted *ledger.Movement
	txErr := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var purchase *supplier.Purchase
		if req.PurchaseID != nil {
			loaded, err := repos.Purchases().FindByID(ctx, *req.PurchaseID)
			if err != nil {
				return err
			}
			purchase = loaded
			if purchase.SupplierID != req.SupplierID {
				return shared.NewDomainError("INVALID_SUPPLIER", "Purchase does not belong to this supplier")
			}
		}

		movement, err := s.settle(ctx, repos, purchase, payment)
		if err != nil {
			return err
		}
		posted = movement
		return nil
	})
	if txErr != nil {
		if domainErr := shared.IsDomainError(txErr); domainErr != nil {
			return nil, domainErr
		}
		return nil, shared.ErrPersistence
	}

	s.publishMovementEvents(ctx, posted)

	response := ToPaymentResponse(payment)
	return &response, nil
}

// settle applies one payment inside the current transaction: the purchase
// paid amount grows when a purchase is targeted, the payment row is
// appended, and cash/bank-transfer instruments post exactly one debit
// movement on the named account.
func (s *BalanceService) settle(
	ctx context.Context,
	repos TransactionalRepositories,
	purchase *supplier.Purchase,
	payment *supplier.Payment,
) (*ledger.Movement, error) {
	amount := valueobject.NewMoneyMAD(payment.Amount)

	if purchase != nil {
		if err := purchase.ApplyPayment(amount); err != nil {
			return nil, err
		}
		if err := repos.Purchases().SaveWithLock(ctx, purchase); err != nil {
			return nil, err
		}
	}

	if err := repos.Payments().Append(ctx, payment); err != nil {
		return nil, err
	}

	if !payment.PostsMovement() {
		return nil, nil
	}

	return ledger.PostValidated(ctx, repos.Accounts(), repos.Movements(),
		*payment.AccountID, ledger.MovementDirectionDebit, amount,
		ledger.Origin{Kind: ledger.OriginKindSupplierPayment, Ref: payment.ID},
		"paiement fournisseur "+payment.SupplierID.String())
}

// ListPayments retrieves the payments made to a supplier
func (s *BalanceService) ListPayments(ctx context.Context, supplierID uuid.UUID) ([]PaymentResponse, error) {
	payments, err := s.paymentRepo.FindBySupplier(ctx, supplierID, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}

	responses := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, ToPaymentResponse(&payments[i]))
	}
	return responses, nil
}

// BalanceFor computes the supplier balance from the purchase set. The
// figure is always re-derived, never read from a stored running total.
func (s *BalanceService) BalanceFor(ctx context.Context, supplierID uuid.UUID) (*BalanceResponse, error) {
	filter := shared.DefaultFilter()
	filter.PageSize = 0 // all purchases, the balance covers the full history

	purchases, err := s.purchaseRepo.FindBySupplier(ctx, supplierID, filter)
	if err != nil {
		return nil, err
	}

	balance := supplier.BalanceOf(supplierID, purchases)
	return &BalanceResponse{
		SupplierID: balance.SupplierID,
		TotalDue:   balance.TotalDue,
		TotalPaid:  balance.TotalPaid,
		NetOwed:    balance.NetOwed,
	}, nil
}

func (s *BalanceService) publishMovementEvents(ctx context.Context, movement *ledger.Movement) {
	if s.eventPublisher == nil || movement == nil {
		return
	}
	for _, event := range movement.GetDomainEvents() {
		// Event handling is best-effort and never gates the operation
		_ = s.eventPublisher.Publish(ctx, event)
	}
	movement.ClearDomainEvents()
}
