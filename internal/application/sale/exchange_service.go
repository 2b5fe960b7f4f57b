package sale

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/ledger"
	"github.com/retailpos/backend/internal/domain/sale"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ExchangeService reconciles returns and exchanges: it evaluates the
// signed price difference between the returned item and its replacement
// and settles it as one compensating payment or refund.
type ExchangeService struct {
	exchangeRepo   sale.ExchangeRepository
	stock          sale.StockGateway
	allocator      *sale.Allocator
	txScope        TransactionScope
	cashAccountID  uuid.UUID
	eventPublisher shared.EventPublisher
}

// NewExchangeService creates a new ExchangeService
func NewExchangeService(
	exchangeRepo sale.ExchangeRepository,
	stock sale.StockGateway,
	allocator *sale.Allocator,
	txScope TransactionScope,
	cashAccountID uuid.UUID,
) *ExchangeService {
	return &ExchangeService{
		exchangeRepo:  exchangeRepo,
		stock:         stock,
		allocator:     allocator,
		txScope:       txScope,
		cashAccountID: cashAccountID,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ExchangeService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Open registers a pending return or exchange. Unit prices are read from
// the catalog at call time; for an exchange the replacement must be in
// stock.
func (s *ExchangeService) Open(ctx context.Context, req OpenExchangeRequest) (*ExchangeResponse, error) {
	oldLine, err := s.resolveLine(ctx, req.OldLine)
	if err != nil {
		return nil, err
	}

	newLine := sale.ExchangeLine{}
	if req.NewLine != nil {
		newLine, err = s.resolveLine(ctx, *req.NewLine)
		if err != nil {
			return nil, err
		}
	}

	exchange, err := sale.NewExchange(req.ClientID, oldLine, newLine)
	if err != nil {
		return nil, err
	}

	if err := s.exchangeRepo.Save(ctx, exchange); err != nil {
		return nil, err
	}

	response := ToExchangeResponse(exchange)
	return &response, nil
}

// GetByID retrieves an exchange by ID
func (s *ExchangeService) GetByID(ctx context.Context, exchangeID uuid.UUID) (*ExchangeResponse, error) {
	exchange, err := s.exchangeRepo.FindByID(ctx, exchangeID)
	if err != nil {
		return nil, err
	}
	response := ToExchangeResponse(exchange)
	return &response, nil
}

// Evaluate previews the signed difference of an exchange without
// persisting anything
func (s *ExchangeService) Evaluate(ctx context.Context, req OpenExchangeRequest) (decimal.Decimal, error) {
	oldLine, err := s.resolveLine(ctx, req.OldLine)
	if err != nil {
		return decimal.Zero, err
	}

	newLine := sale.ExchangeLine{}
	if req.NewLine != nil {
		newLine, err = s.resolveLine(ctx, *req.NewLine)
		if err != nil {
			return decimal.Zero, err
		}
	}

	return sale.EvaluateDifference(oldLine, newLine).Amount(), nil
}

// Finalize settles a pending exchange as one atomic unit: the absolute
// difference is validated through the payment allocator, stock is put back
// for the returned item and taken for the replacement, and the difference
// posts one movement on the ledger, CREDIT when the client paid the store
// and DEBIT when the store refunded.
func (s *ExchangeService) Finalize(ctx context.Context, exchangeID uuid.UUID, req FinalizeExchangeRequest) (*ExchangeResponse, error) {
	exchange, err := s.exchangeRepo.FindByID(ctx, exchangeID)
	if err != nil {
		return nil, err
	}

	instrument := sale.PaymentKind(req.Instrument)
	difference := exchange.GetDifferenceMoney()

	if !difference.IsZero() {
		entry := sale.PaymentEntry{
			Kind:          instrument,
			Amount:        difference.Abs(),
			AccountID:     req.AccountID,
			ChequeNumber:  req.ChequeNumber,
			ChequeDueDate: req.ChequeDueDate,
		}
		if err := s.allocator.Validate(ctx, difference.Abs(), []sale.PaymentEntry{entry}); err != nil {
			return nil, err
		}
	}

	if err := exchange.Finalize(instrument, req.AccountID); err != nil {
		return nil, err
	}

	var movement *ledger.Movement

	txErr := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		// Returned item goes back on the shelf, replacement leaves it
		if err := repos.Stock().Increment(ctx, exchange.OldProductID, exchange.OldQuantity); err != nil {
			return err
		}
		if exchange.NewProductID != nil {
			if err := repos.Stock().Decrement(ctx, *exchange.NewProductID, exchange.NewQuantity); err != nil {
				return err
			}
		}

		if err := repos.Exchanges().SaveWithLock(ctx, exchange); err != nil {
			return err
		}

		if difference.IsZero() || !instrument.PostsMovement() {
			return nil
		}

		accountID, err := s.settlementAccount(instrument, req.AccountID)
		if err != nil {
			return err
		}

		direction := ledger.MovementDirectionCredit
		if difference.IsNegative() {
			direction = ledger.MovementDirectionDebit
		}

		posted, err := ledger.PostValidated(ctx, repos.Accounts(), repos.Movements(),
			accountID, direction, difference.Abs(),
			ledger.Origin{Kind: ledger.OriginKindExchange, Ref: exchange.ID},
			"règlement échange "+exchange.ID.String())
		if err != nil {
			return err
		}
		movement = posted
		return nil
	})
	if txErr != nil {
		if domainErr := shared.IsDomainError(txErr); domainErr != nil {
			return nil, domainErr
		}
		return nil, shared.ErrPersistence
	}

	s.publishEvents(ctx, exchange)
	s.publishMovement(ctx, movement)

	response := ToExchangeResponse(exchange)
	return &response, nil
}

// Cancel abandons a pending exchange
func (s *ExchangeService) Cancel(ctx context.Context, exchangeID uuid.UUID) (*ExchangeResponse, error) {
	exchange, err := s.exchangeRepo.FindByID(ctx, exchangeID)
	if err != nil {
		return nil, err
	}

	if err := exchange.Cancel(); err != nil {
		return nil, err
	}

	if err := s.exchangeRepo.SaveWithLock(ctx, exchange); err != nil {
		return nil, err
	}

	response := ToExchangeResponse(exchange)
	return &response, nil
}

func (s *ExchangeService) resolveLine(ctx context.Context, input ExchangeLineInput) (sale.ExchangeLine, error) {
	availability, err := s.stock.Availability(ctx, input.ProductID, input.ProductType)
	if err != nil {
		return sale.ExchangeLine{}, err
	}

	return sale.ExchangeLine{
		ProductID:   input.ProductID,
		ProductType: input.ProductType,
		UnitPrice:   availability.Price,
		Quantity:    input.Quantity,
	}, nil
}

func (s *ExchangeService) settlementAccount(instrument sale.PaymentKind, accountID *uuid.UUID) (uuid.UUID, error) {
	if accountID != nil && *accountID != uuid.Nil {
		return *accountID, nil
	}
	if instrument == sale.PaymentKindCash && s.cashAccountID != uuid.Nil {
		return s.cashAccountID, nil
	}
	return uuid.Nil, shared.ErrMissingInstrumentDetail
}

func (s *ExchangeService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range aggregate.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	aggregate.ClearDomainEvents()
}

func (s *ExchangeService) publishMovement(ctx context.Context, movement *ledger.Movement) {
	if s.eventPublisher == nil || movement == nil {
		return
	}
	for _, event := range movement.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	movement.ClearDomainEvents()
}
