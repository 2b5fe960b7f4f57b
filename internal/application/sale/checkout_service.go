package sale

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/billing"
	"github.com/retailpos/backend/internal/domain/ledger"
	"github.com/retailpos/backend/internal/domain/sale"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/shared/valueobject"
)

// CheckoutService drives a sale from the open cart to the committed,
// settled record. Cart mutations and the review/confirm guards are simple
// load-mutate-save cycles; Commit is the one atomic unit that persists the
// sale, decrements stock and posts the ledger movements together.
type CheckoutService struct {
	saleRepo       sale.SaleRepository
	stock          sale.StockGateway
	clients        sale.ClientDirectory
	allocator      *sale.Allocator
	txScope        TransactionScope
	idempotency    shared.IdempotencyStore
	idempotencyCfg shared.IdempotencyConfig
	cashAccountID  uuid.UUID
	eventPublisher shared.EventPublisher
}

// NewCheckoutService creates a new CheckoutService. cashAccountID is the
// ledger account cash settlements post to when a payment entry does not
// name one.
func NewCheckoutService(
	saleRepo sale.SaleRepository,
	stock sale.StockGateway,
	clients sale.ClientDirectory,
	allocator *sale.Allocator,
	txScope TransactionScope,
	idempotency shared.IdempotencyStore,
	cashAccountID uuid.UUID,
) *CheckoutService {
	return &CheckoutService{
		saleRepo:       saleRepo,
		stock:          stock,
		clients:        clients,
		allocator:      allocator,
		txScope:        txScope,
		idempotency:    idempotency,
		idempotencyCfg: shared.DefaultIdempotencyConfig(),
		cashAccountID:  cashAccountID,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *CheckoutService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyConfig overrides the default commit-token reservation
// settings
func (s *CheckoutService) SetIdempotencyConfig(cfg shared.IdempotencyConfig) {
	s.idempotencyCfg = cfg
}

// Open opens a new sale for a client
func (s *CheckoutService) Open(ctx context.Context, req OpenSaleRequest) (*SaleResponse, error) {
	client, err := s.clients.Client(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	newSale, err := sale.NewSale(client.ID, client.Name, billing.BillingMode(req.BillingMode))
	if err != nil {
		return nil, err
	}

	if err := s.saleRepo.Save(ctx, newSale); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, newSale)

	response := ToSaleResponse(newSale)
	return &response, nil
}

// GetByID retrieves a sale by ID
func (s *CheckoutService) GetByID(ctx context.Context, saleID uuid.UUID) (*SaleResponse, error) {
	loaded, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(loaded)
	return &response, nil
}

// List retrieves sales with filtering and pagination
func (s *CheckoutService) List(ctx context.Context, filter SaleListFilter) ([]SaleResponse, int64, error) {
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
	if filter.ClientID != nil {
		domainFilter.Filters["client_id"] = *filter.ClientID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}

	sales, err := s.saleRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.saleRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToSaleResponses(sales), total, nil
}

// AddLine adds a line to a building sale. The price and the availability
// figure come from the stock gateway at call time; availability is checked
// again atomically at commit.
func (s *CheckoutService) AddLine(ctx context.Context, saleID uuid.UUID, req AddLineRequest) (*SaleResponse, error) {
	loaded, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	availability, err := s.stock.Availability(ctx, req.ProductID, req.ProductType)
	if err != nil {
		return nil, err
	}

	_, err = loaded.AddLine(req.ProductID, req.ProductType, availability.Name,
		req.Quantity, valueobject.NewMoneyMAD(availability.Price), availability.Qty)
	if err != nil {
		return nil, err
	}

	if err := s.saleRepo.SaveWithLock(ctx, loaded); err != nil {
		return nil, err
	}

	response := ToSaleResponse(loaded)
	return &response, nil
}

// UpdateLine changes the quantity of a line
func (s *CheckoutService) UpdateLine(ctx context.Context, saleID, lineID uuid.UUID, req UpdateLineRequest) (*SaleResponse, error) {
	loaded, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	line := loaded.GetLine(lineID)
	if line == nil {
		return nil, shared.NewDomainError("LINE_NOT_FOUND", "Sale line not found")
	}

	availability, err := s.stock.Availability(ctx, line.ProductID, line.ProductType)
	if err != nil {
		return nil, err
	}

	if err := loaded.UpdateLineQuantity(lineID, req.Quantity, availability.Qty); err != nil {
		return nil, err
	}

	if err := s.saleRepo.SaveWithLock(ctx, loaded); err != nil {
		return nil, err
	}

	response := ToSaleResponse(loaded)
	return &response, nil
}

// RemoveLine removes a line from a building sale
func (s *CheckoutService) RemoveLine(ctx context.Context, saleID, lineID uuid.UUID) (*SaleResponse, error) {
	loaded, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	if err := loaded.RemoveLine(lineID); err != nil {
		return nil, err
	}

	if err := s.saleRepo.SaveWithLock(ctx, loaded); err != nil {
		return nil, err
	}

	response := ToSaleResponse(loaded)
	return &response, nil
}

// ApplyDiscount applies a flat discount to a building sale
func (s *CheckoutService) ApplyDiscount(ctx context.Context, saleID uuid.UUID, req ApplyDiscountRequest) (*SaleResponse, error) {
	loaded, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	if err := loaded.ApplyDiscount(valueobject.NewMoneyMAD(req.Amount)); err != nil {
		return nil, err
	}

	if err := s.saleRepo.SaveWithLock(ctx, loaded); err != nil {
		return nil, err
	}

	response := ToSaleResponse(loaded)
	return &response, nil
}

// Review freezes the cart snapshot
func (s *CheckoutService) Review(ctx context.Context, saleID uuid.UUID) (*SaleResponse, error) {
	return s.transition(ctx, saleID, (*sale.Sale).Review)
}

// Reopen sends a reviewed sale back to building
func (s *CheckoutService) Reopen(ctx context.Context, saleID uuid.UUID) (*SaleResponse, error) {
	return s.transition(ctx, saleID, (*sale.Sale).Reopen)
}

// Confirm records the operator acknowledgement of the reviewed snapshot
func (s *CheckoutService) Confirm(ctx context.Context, saleID uuid.UUID) (*SaleResponse, error) {
	return s.transition(ctx, saleID, (*sale.Sale).Confirm)
}

// Abort abandons a non-terminal sale
func (s *CheckoutService) Abort(ctx context.Context, saleID uuid.UUID, req AbortSaleRequest) (*SaleResponse, error) {
	loaded, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	if err := loaded.Abort(req.Reason); err != nil {
		return nil, err
	}

	if err := s.saleRepo.SaveWithLock(ctx, loaded); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, loaded)

	response := ToSaleResponse(loaded)
	return &response, nil
}

// Commit settles a confirmed sale as one atomic unit: the payment
// allocation is validated, stock is decremented with a commit-time
// re-check, the sale with its lines and payments is persisted, and one
// validated movement per cash/bank-transfer payment is posted with the
// affected balances refreshed, all in the same transaction. The
// client-generated token makes retries safe: a replayed token returns the
// already-committed sale instead of executing twice.
func (s *CheckoutService) Commit(ctx context.Context, saleID uuid.UUID, token string, req CommitSaleRequest) (*SaleResponse, error) {
	if token == "" {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Commit token is required")
	}

	loaded, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	// Replay of a token that already went through
	if loaded.IsCommitted() && loaded.CommitToken == token {
		response := ToSaleResponse(loaded)
		return &response, nil
	}

	entries := make([]sale.PaymentEntry, 0, len(req.Payments))
	for _, p := range req.Payments {
		entries = append(entries, p.ToPaymentEntry())
	}

	if err := s.allocator.Validate(ctx, loaded.GetTotalPayableMoney(), entries); err != nil {
		return nil, err
	}

	claimed, err := s.idempotency.Reserve(ctx, token, s.idempotencyCfg.TTL)
	if err != nil {
		return nil, err
	}
	if !claimed {
		// An earlier attempt holds the token: either it finished, in which
		// case the committed sale is returned, or it is still in flight.
		committed, findErr := s.saleRepo.FindByCommitToken(ctx, token)
		if findErr == nil && committed != nil {
			response := ToSaleResponse(committed)
			return &response, nil
		}
		return nil, shared.NewDomainError("COMMIT_IN_PROGRESS", "A commit with this token is already in progress")
	}

	postedMovements := make([]*ledger.Movement, 0, len(entries))

	txErr := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		// Commit-time availability re-check: the decrement is conditional
		// and fails when another terminal sold the stock in the meantime
		for i := range loaded.Lines {
			if err := repos.Stock().Decrement(ctx, loaded.Lines[i].ProductID, loaded.Lines[i].Quantity); err != nil {
				return err
			}
		}

		if err := loaded.AttachPayments(entries); err != nil {
			return err
		}
		if err := loaded.MarkCommitted(token); err != nil {
			return err
		}
		if err := repos.Sales().SaveWithLock(ctx, loaded); err != nil {
			return err
		}

		for i := range loaded.Payments {
			payment := &loaded.Payments[i]
			if !payment.Kind.PostsMovement() {
				continue
			}

			accountID, err := s.settlementAccount(payment)
			if err != nil {
				return err
			}

			movement, err := ledger.PostValidated(ctx, repos.Accounts(), repos.Movements(),
				accountID, ledger.MovementDirectionCredit, payment.GetAmountMoney(),
				ledger.Origin{Kind: ledger.OriginKindSale, Ref: loaded.ID},
				"règlement vente "+loaded.ID.String())
			if err != nil {
				return err
			}
			postedMovements = append(postedMovements, movement)
		}

		return nil
	})
	if txErr != nil {
		// Free the token so the client can retry once the cause is fixed
		_ = s.idempotency.Release(ctx, token)
		if domainErr := shared.IsDomainError(txErr); domainErr != nil {
			return nil, domainErr
		}
		return nil, shared.ErrPersistence
	}

	s.publishEvents(ctx, loaded)
	for _, movement := range postedMovements {
		s.publishMovementEvents(ctx, movement)
	}

	response := ToSaleResponse(loaded)
	return &response, nil
}

// settlementAccount resolves which ledger account a payment posts to
func (s *CheckoutService) settlementAccount(payment *sale.Payment) (uuid.UUID, error) {
	if payment.AccountID != nil && *payment.AccountID != uuid.Nil {
		return *payment.AccountID, nil
	}
	if payment.Kind == sale.PaymentKindCash && s.cashAccountID != uuid.Nil {
		return s.cashAccountID, nil
	}
	return uuid.Nil, shared.ErrMissingInstrumentDetail
}

func (s *CheckoutService) transition(ctx context.Context, saleID uuid.UUID, fn func(*sale.Sale) error) (*SaleResponse, error) {
	loaded, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	if err := fn(loaded); err != nil {
		return nil, err
	}

	if err := s.saleRepo.SaveWithLock(ctx, loaded); err != nil {
		return nil, err
	}

	response := ToSaleResponse(loaded)
	return &response, nil
}

func (s *CheckoutService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range aggregate.GetDomainEvents() {
		// Event handling is best-effort and never gates the operation
		_ = s.eventPublisher.Publish(ctx, event)
	}
	aggregate.ClearDomainEvents()
}

func (s *CheckoutService) publishMovementEvents(ctx context.Context, movement *ledger.Movement) {
	if s.eventPublisher == nil || movement == nil {
		return
	}
	for _, event := range movement.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	movement.ClearDomainEvents()
}
