package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/ledger"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/shared/valueobject"
)

// AccountSerializer serializes the read-aggregate-write cycle per account.
// Two concurrent postings to the same account run one after the other;
// postings to different accounts do not contend.
type AccountSerializer interface {
	WithAccount(accountID uuid.UUID, fn func() error) error
}

// PostingService is the single write path into the ledger. Every movement
// goes through it: sale settlements, supplier payments, exchange
// differences and manual operator entries.
type PostingService struct {
	accountRepo    ledger.AccountRepository
	movementRepo   ledger.MovementRepository
	txScope        TransactionScope
	serializer     AccountSerializer
	eventPublisher shared.EventPublisher
}

// NewPostingService creates a new PostingService
func NewPostingService(
	accountRepo ledger.AccountRepository,
	movementRepo ledger.MovementRepository,
	txScope TransactionScope,
	serializer AccountSerializer,
) *PostingService {
	return &PostingService{
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
		txScope:      txScope,
		serializer:   serializer,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PostingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateAccount opens a new account
func (s *PostingService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*AccountResponse, error) {
	account, err := ledger.NewAccount(req.Name, req.Bank, valueobject.NewMoneyMAD(req.InitialBalance))
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}

	response := ToAccountResponse(account)
	return &response, nil
}

// GetAccount retrieves an account by ID
func (s *PostingService) GetAccount(ctx context.Context, accountID uuid.UUID) (*AccountResponse, error) {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	response := ToAccountResponse(account)
	return &response, nil
}

// ListAccounts retrieves accounts with filtering
func (s *PostingService) ListAccounts(ctx context.Context, filter shared.Filter) ([]AccountResponse, error) {
	accounts, err := s.accountRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToAccountResponses(accounts), nil
}

// ListMovements retrieves the movement history of an account
func (s *PostingService) ListMovements(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]MovementResponse, error) {
	movements, err := s.movementRepo.FindByAccount(ctx, accountID, filter)
	if err != nil {
		return nil, err
	}
	return ToMovementResponses(movements), nil
}

// PostMovement appends a validated movement and refreshes the account
// balance inside one transaction, serialized per account. The balance is
// recomputed fresh from the movement set on every posting.
func (s *PostingService) PostMovement(
	ctx context.Context,
	accountID uuid.UUID,
	direction ledger.MovementDirection,
	amount valueobject.Money,
	origin ledger.Origin,
	label string,
) (*MovementResponse, error) {
	var movement *ledger.Movement

	err := s.serializer.WithAccount(accountID, func() error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			posted, err := ledger.PostValidated(ctx, repos.Accounts(), repos.Movements(), accountID, direction, amount, origin, label)
			if err != nil {
				return err
			}
			movement = posted
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, movement)

	response := ToMovementResponse(movement)
	return &response, nil
}

// PostManual posts an operator-entered movement on an account
func (s *PostingService) PostManual(ctx context.Context, accountID uuid.UUID, req PostMovementRequest) (*MovementResponse, error) {
	direction := ledger.MovementDirection(req.Direction)
	return s.PostMovement(ctx, accountID, direction, valueobject.NewMoneyMAD(req.Amount), ledger.ManualOrigin(), req.Label)
}

// ReverseMovement posts the compensating movement for a validated row.
// The original row is never edited; the reversal carries the link.
func (s *PostingService) ReverseMovement(ctx context.Context, movementID uuid.UUID, req ReverseMovementRequest) (*MovementResponse, error) {
	original, err := s.movementRepo.FindByID(ctx, movementID)
	if err != nil {
		return nil, err
	}

	var reversal *ledger.Movement

	err = s.serializer.WithAccount(original.AccountID, func() error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			account, err := repos.Accounts().FindByID(ctx, original.AccountID)
			if err != nil {
				return err
			}

			r, err := original.Reverse(req.Label)
			if err != nil {
				return err
			}

			if err := repos.Movements().Append(ctx, r); err != nil {
				return err
			}

			validatedSum, err := repos.Movements().SumValidatedByAccount(ctx, account.ID)
			if err != nil {
				return err
			}

			account.RefreshBalance(validatedSum)
			if err := repos.Accounts().SaveWithLock(ctx, account); err != nil {
				return err
			}

			r.AddDomainEvent(ledger.NewMovementPostedEvent(r, account.CurrentBalance))
			reversal = r
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, reversal)

	response := ToMovementResponse(reversal)
	return &response, nil
}

// RecomputeBalance re-derives an account balance from the movement history
// and persists the refreshed figure. Used as an audit operation; a drifted
// cached balance converges back to initial + Σ signed validated movements.
func (s *PostingService) RecomputeBalance(ctx context.Context, accountID uuid.UUID) (*BalanceResponse, error) {
	var response BalanceResponse

	err := s.serializer.WithAccount(accountID, func() error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			account, err := repos.Accounts().FindByID(ctx, accountID)
			if err != nil {
				return err
			}

			validatedSum, err := repos.Movements().SumValidatedByAccount(ctx, accountID)
			if err != nil {
				return err
			}

			account.RefreshBalance(validatedSum)
			if err := repos.Accounts().SaveWithLock(ctx, account); err != nil {
				return err
			}

			response = BalanceResponse{
				AccountID:      account.ID,
				InitialBalance: account.InitialBalance,
				ValidatedSum:   validatedSum,
				CurrentBalance: account.CurrentBalance,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return &response, nil
}

func (s *PostingService) publishEvents(ctx context.Context, movement *ledger.Movement) {
	if s.eventPublisher == nil || movement == nil {
		return
	}
	for _, event := range movement.GetDomainEvents() {
		// Event handling is best-effort and never gates the posting
		_ = s.eventPublisher.Publish(ctx, event)
	}
	movement.ClearDomainEvents()
}
