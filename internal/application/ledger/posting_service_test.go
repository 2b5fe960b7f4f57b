package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/ledger"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// In-memory fakes. The posting path is read-aggregate-write, so the fakes
// keep real state: copies on read, version check on SaveWithLock.
// =============================================================================

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]ledger.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uuid.UUID]ledger.Account)}
}

func (r *fakeAccountRepo) put(a *ledger.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[a.ID] = *a
}

func (r *fakeAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := a
	return &copied, nil
}

func (r *fakeAccountRepo) FindAll(_ context.Context, _ shared.Filter) ([]ledger.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ledger.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeAccountRepo) ListActive(_ context.Context) ([]ledger.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ledger.Account, 0)
	for _, a := range r.accounts {
		if a.IsActive() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) Save(_ context.Context, a *ledger.Account) error {
	r.put(a)
	return nil
}

func (r *fakeAccountRepo) SaveWithLock(_ context.Context, a *ledger.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.accounts[a.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version >= a.Version {
		return shared.ErrConcurrencyConflict
	}
	r.accounts[a.ID] = *a
	return nil
}

type fakeMovementRepo struct {
	mu        sync.Mutex
	movements []ledger.Movement
}

func (r *fakeMovementRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.movements {
		if r.movements[i].ID == id {
			copied := r.movements[i]
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeMovementRepo) FindByAccount(_ context.Context, accountID uuid.UUID, _ shared.Filter) ([]ledger.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ledger.Movement, 0)
	for _, m := range r.movements {
		if m.AccountID == accountID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) FindByOrigin(_ context.Context, kind ledger.OriginKind, ref uuid.UUID) ([]ledger.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ledger.Movement, 0)
	for _, m := range r.movements {
		if m.OriginKind == kind && m.OriginRef != nil && *m.OriginRef == ref {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) Append(_ context.Context, m *ledger.Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakeMovementRepo) SumValidatedByAccount(_ context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for i := range r.movements {
		if r.movements[i].AccountID == accountID && r.movements[i].IsValidated() {
			sum = sum.Add(r.movements[i].SignedAmount())
		}
	}
	return sum, nil
}

// testSerializer is a map of per-account mutexes, the same shape the
// persistence layer provides in production
type testSerializer struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newTestSerializer() *testSerializer {
	return &testSerializer{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (s *testSerializer) WithAccount(accountID uuid.UUID, fn func() error) error {
	s.mu.Lock()
	lock, ok := s.locks[accountID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[accountID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn()
}

type capturePublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *capturePublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func setupPostingService(t *testing.T, initial float64) (*PostingService, *ledger.Account, *fakeAccountRepo, *fakeMovementRepo) {
	accountRepo := newFakeAccountRepo()
	movementRepo := &fakeMovementRepo{}

	account, err := ledger.NewAccount("Caisse", "", valueobject.NewMoneyMADFromFloat(initial))
	require.NoError(t, err)
	accountRepo.put(account)

	scope := NewNoOpTransactionScope(accountRepo, movementRepo)
	service := NewPostingService(accountRepo, movementRepo, scope, newTestSerializer())
	return service, account, accountRepo, movementRepo
}

// =============================================================================
// Tests
// =============================================================================

func TestPostingService_PostMovement(t *testing.T) {
	ctx := context.Background()

	t.Run("credit then debit", func(t *testing.T) {
		service, account, accountRepo, _ := setupPostingService(t, 10000)

		_, err := service.PostMovement(ctx, account.ID, ledger.MovementDirectionCredit,
			valueobject.NewMoneyMADFromFloat(2400), ledger.ManualOrigin(), "vente comptoir")
		require.NoError(t, err)

		_, err = service.PostMovement(ctx, account.ID, ledger.MovementDirectionDebit,
			valueobject.NewMoneyMADFromFloat(500), ledger.ManualOrigin(), "achat fournitures")
		require.NoError(t, err)

		stored, err := accountRepo.FindByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, "11900.00", stored.CurrentBalance.StringFixed(2))
	})

	t.Run("inactive account is rejected", func(t *testing.T) {
		service, account, accountRepo, movementRepo := setupPostingService(t, 1000)

		stored, err := accountRepo.FindByID(ctx, account.ID)
		require.NoError(t, err)
		require.NoError(t, stored.Deactivate())
		accountRepo.put(stored)

		_, err = service.PostMovement(ctx, account.ID, ledger.MovementDirectionCredit,
			valueobject.NewMoneyMADFromFloat(100), ledger.ManualOrigin(), "x")
		assert.ErrorIs(t, err, shared.ErrInactiveAccount)
		assert.Empty(t, movementRepo.movements)
	})

	t.Run("unknown account", func(t *testing.T) {
		service, _, _, _ := setupPostingService(t, 1000)
		_, err := service.PostMovement(ctx, uuid.New(), ledger.MovementDirectionCredit,
			valueobject.NewMoneyMADFromFloat(100), ledger.ManualOrigin(), "x")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("invalid amount posts nothing", func(t *testing.T) {
		service, account, accountRepo, movementRepo := setupPostingService(t, 1000)

		_, err := service.PostMovement(ctx, account.ID, ledger.MovementDirectionCredit,
			valueobject.ZeroMAD(), ledger.ManualOrigin(), "x")
		assert.Error(t, err)
		assert.Empty(t, movementRepo.movements)

		stored, err := accountRepo.FindByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, "1000.00", stored.CurrentBalance.StringFixed(2))
	})

	t.Run("publishes a posted event", func(t *testing.T) {
		service, account, _, _ := setupPostingService(t, 1000)
		publisher := &capturePublisher{}
		service.SetEventPublisher(publisher)

		_, err := service.PostMovement(ctx, account.ID, ledger.MovementDirectionCredit,
			valueobject.NewMoneyMADFromFloat(250), ledger.ManualOrigin(), "depot")
		require.NoError(t, err)

		require.Len(t, publisher.events, 1)
		posted, ok := publisher.events[0].(*ledger.MovementPostedEvent)
		require.True(t, ok)
		assert.Equal(t, account.ID, posted.AccountID)
		assert.Equal(t, "1250.00", posted.NewBalance.StringFixed(2))
	})
}

func TestPostingService_PostManual(t *testing.T) {
	service, account, accountRepo, _ := setupPostingService(t, 500)

	resp, err := service.PostManual(context.Background(), account.ID, PostMovementRequest{
		Direction: "DEBIT",
		Amount:    decimal.NewFromFloat(120),
		Label:     "ajustement caisse",
	})
	require.NoError(t, err)
	assert.Equal(t, "MANUAL", resp.OriginKind)

	stored, err := accountRepo.FindByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, "380.00", stored.CurrentBalance.StringFixed(2))
}

func TestPostingService_ReverseMovement(t *testing.T) {
	ctx := context.Background()
	service, account, accountRepo, _ := setupPostingService(t, 10000)

	posted, err := service.PostMovement(ctx, account.ID, ledger.MovementDirectionCredit,
		valueobject.NewMoneyMADFromFloat(2400), ledger.ManualOrigin(), "vente")
	require.NoError(t, err)

	reversal, err := service.ReverseMovement(ctx, posted.ID, ReverseMovementRequest{Label: "annulation"})
	require.NoError(t, err)
	assert.Equal(t, "DEBIT", reversal.Direction)
	require.NotNil(t, reversal.ReversesID)
	assert.Equal(t, posted.ID, *reversal.ReversesID)

	// original and reversal net out, balance back to the initial figure
	stored, err := accountRepo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "10000.00", stored.CurrentBalance.StringFixed(2))
}

func TestPostingService_RecomputeBalance(t *testing.T) {
	ctx := context.Background()
	service, account, accountRepo, _ := setupPostingService(t, 10000)

	_, err := service.PostMovement(ctx, account.ID, ledger.MovementDirectionCredit,
		valueobject.NewMoneyMADFromFloat(2400), ledger.ManualOrigin(), "vente")
	require.NoError(t, err)

	// Corrupt the cached figure; recompute must converge back
	stored, err := accountRepo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	stored.CurrentBalance = decimal.NewFromFloat(999999)
	accountRepo.put(stored)

	balance, err := service.RecomputeBalance(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "10000.00", balance.InitialBalance.StringFixed(2))
	assert.Equal(t, "2400.00", balance.ValidatedSum.StringFixed(2))
	assert.Equal(t, "12400.00", balance.CurrentBalance.StringFixed(2))
}

func TestPostingService_ConcurrentPostings(t *testing.T) {
	// Serialized per account: N concurrent postings all land and the final
	// balance is exact, no lost update
	ctx := context.Background()
	service, account, accountRepo, movementRepo := setupPostingService(t, 0)

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.PostMovement(ctx, account.ID, ledger.MovementDirectionCredit,
				valueobject.NewMoneyMADFromFloat(1), ledger.ManualOrigin(), "encaissement")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := accountRepo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "50.00", stored.CurrentBalance.StringFixed(2))
	assert.Len(t, movementRepo.movements, n)
}

func TestPostingService_Accounts(t *testing.T) {
	ctx := context.Background()
	service, _, _, _ := setupPostingService(t, 0)

	created, err := service.CreateAccount(ctx, CreateAccountRequest{
		Name:           "BMCE courant",
		Bank:           "BMCE",
		InitialBalance: decimal.NewFromFloat(5000),
	})
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", created.Status)
	assert.Equal(t, "5000.00", created.CurrentBalance.StringFixed(2))

	fetched, err := service.GetAccount(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "BMCE courant", fetched.Name)

	all, err := service.ListAccounts(ctx, shared.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
