package sale

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/ledger"
	"github.com/retailpos/backend/internal/domain/sale"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// In-memory fakes shared by the checkout and exchange tests
// =============================================================================

type fakeSaleRepo struct {
	mu    sync.Mutex
	sales map[uuid.UUID]sale.Sale
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[uuid.UUID]sale.Sale)}
}

func copySale(s *sale.Sale) sale.Sale {
	copied := *s
	copied.Lines = append([]sale.SaleLine(nil), s.Lines...)
	copied.Payments = append([]sale.Payment(nil), s.Payments...)
	return copied
}

func (r *fakeSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*sale.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := copySale(&s)
	return &copied, nil
}

func (r *fakeSaleRepo) FindByCommitToken(_ context.Context, token string) (*sale.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.sales {
		s := r.sales[id]
		if s.CommitToken == token {
			copied := copySale(&s)
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeSaleRepo) FindAll(_ context.Context, _ shared.Filter) ([]sale.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sale.Sale, 0, len(r.sales))
	for id := range r.sales {
		out = append(out, r.sales[id])
	}
	return out, nil
}

func (r *fakeSaleRepo) FindByClient(_ context.Context, clientID uuid.UUID, _ shared.Filter) ([]sale.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sale.Sale, 0)
	for id := range r.sales {
		if r.sales[id].ClientID == clientID {
			out = append(out, r.sales[id])
		}
	}
	return out, nil
}

func (r *fakeSaleRepo) FindByStatus(_ context.Context, status sale.SaleStatus, _ shared.Filter) ([]sale.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sale.Sale, 0)
	for id := range r.sales {
		if r.sales[id].Status == status {
			out = append(out, r.sales[id])
		}
	}
	return out, nil
}

func (r *fakeSaleRepo) Save(_ context.Context, s *sale.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sales[s.ID] = copySale(s)
	return nil
}

func (r *fakeSaleRepo) SaveWithLock(_ context.Context, s *sale.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sales[s.ID]; !ok {
		return shared.ErrNotFound
	}
	r.sales[s.ID] = copySale(s)
	return nil
}

func (r *fakeSaleRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sales, id)
	return nil
}

func (r *fakeSaleRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.sales)), nil
}

func (r *fakeSaleRepo) CountByStatus(_ context.Context, status sale.SaleStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id := range r.sales {
		if r.sales[id].Status == status {
			n++
		}
	}
	return n, nil
}

type fakeExchangeRepo struct {
	mu        sync.Mutex
	exchanges map[uuid.UUID]sale.Exchange
}

func newFakeExchangeRepo() *fakeExchangeRepo {
	return &fakeExchangeRepo{exchanges: make(map[uuid.UUID]sale.Exchange)}
}

func (r *fakeExchangeRepo) FindByID(_ context.Context, id uuid.UUID) (*sale.Exchange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.exchanges[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := e
	return &copied, nil
}

func (r *fakeExchangeRepo) FindAll(_ context.Context, _ shared.Filter) ([]sale.Exchange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sale.Exchange, 0, len(r.exchanges))
	for id := range r.exchanges {
		out = append(out, r.exchanges[id])
	}
	return out, nil
}

func (r *fakeExchangeRepo) FindByClient(_ context.Context, clientID uuid.UUID, _ shared.Filter) ([]sale.Exchange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sale.Exchange, 0)
	for id := range r.exchanges {
		if r.exchanges[id].ClientID == clientID {
			out = append(out, r.exchanges[id])
		}
	}
	return out, nil
}

func (r *fakeExchangeRepo) Save(_ context.Context, e *sale.Exchange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exchanges[e.ID] = *e
	return nil
}

func (r *fakeExchangeRepo) SaveWithLock(_ context.Context, e *sale.Exchange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.exchanges[e.ID]; !ok {
		return shared.ErrNotFound
	}
	r.exchanges[e.ID] = *e
	return nil
}

type fakeStockGateway struct {
	mu       sync.Mutex
	products map[uuid.UUID]sale.ProductAvailability
}

func newFakeStockGateway() *fakeStockGateway {
	return &fakeStockGateway{products: make(map[uuid.UUID]sale.ProductAvailability)}
}

func (g *fakeStockGateway) add(id uuid.UUID, name string, price, qty float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.products[id] = sale.ProductAvailability{
		Name:  name,
		Price: decimal.NewFromFloat(price),
		Qty:   decimal.NewFromFloat(qty),
	}
}

func (g *fakeStockGateway) qty(id uuid.UUID) decimal.Decimal {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.products[id].Qty
}

func (g *fakeStockGateway) Availability(_ context.Context, productID uuid.UUID, _ string) (sale.ProductAvailability, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.products[productID]
	if !ok {
		return sale.ProductAvailability{}, shared.ErrNotFound
	}
	return p, nil
}

func (g *fakeStockGateway) Decrement(_ context.Context, productID uuid.UUID, qty decimal.Decimal) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.products[productID]
	if !ok {
		return shared.ErrNotFound
	}
	if p.Qty.LessThan(qty) {
		return shared.ErrInsufficientStock
	}
	p.Qty = p.Qty.Sub(qty)
	g.products[productID] = p
	return nil
}

func (g *fakeStockGateway) Increment(_ context.Context, productID uuid.UUID, qty decimal.Decimal) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.products[productID]
	if !ok {
		return shared.ErrNotFound
	}
	p.Qty = p.Qty.Add(qty)
	g.products[productID] = p
	return nil
}

type fakeClientDirectory struct {
	clients map[uuid.UUID]sale.ClientInfo
}

func (d *fakeClientDirectory) Client(_ context.Context, id uuid.UUID) (sale.ClientInfo, error) {
	c, ok := d.clients[id]
	if !ok {
		return sale.ClientInfo{}, shared.ErrNotFound
	}
	return c, nil
}

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

type fakeIdempotencyStore struct {
	mu     sync.Mutex
	tokens map[string]bool
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{tokens: make(map[string]bool)}
}

func (s *fakeIdempotencyStore) Reserve(_ context.Context, token string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokens[token] {
		return false, nil
	}
	s.tokens[token] = true
	return true, nil
}

func (s *fakeIdempotencyStore) Release(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

func (s *fakeIdempotencyStore) IsReserved(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[token], nil
}

func (s *fakeIdempotencyStore) Close() error { return nil }

// =============================================================================
// Fixture
// =============================================================================

type checkoutFixture struct {
	service     *CheckoutService
	saleRepo    *fakeSaleRepo
	stock       *fakeStockGateway
	accounts    *fakeAccountRepo
	movements   *fakeMovementRepo
	idempotency *fakeIdempotencyStore
	clientID    uuid.UUID
	cashAccount *ledger.Account
	bankAccount *ledger.Account
	widgetID    uuid.UUID
}

func setupCheckout(t *testing.T) *checkoutFixture {
	saleRepo := newFakeSaleRepo()
	exchangeRepo := newFakeExchangeRepo()
	stock := newFakeStockGateway()
	accounts := newFakeAccountRepo()
	movements := &fakeMovementRepo{}
	idempotency := newFakeIdempotencyStore()

	clientID := uuid.New()
	directory := &fakeClientDirectory{clients: map[uuid.UUID]sale.ClientInfo{
		clientID: {ID: clientID, Name: "Aicha Bennis"},
	}}

	cash, err := ledger.NewAccount("Caisse", "", valueobject.ZeroMAD())
	require.NoError(t, err)
	accounts.put(cash)

	bank, err := ledger.NewAccount("BMCE courant", "BMCE", valueobject.ZeroMAD())
	require.NoError(t, err)
	accounts.put(bank)

	widgetID := uuid.New()
	stock.add(widgetID, "Widget", 1000, 10)

	scope := NewNoOpTransactionScope(saleRepo, exchangeRepo, stock, accounts, movements)
	allocator := sale.NewAllocator(&repoAccountChecker{accounts: accounts})
	service := NewCheckoutService(saleRepo, stock, directory, allocator, scope, idempotency, cash.ID)

	return &checkoutFixture{
		service:     service,
		saleRepo:    saleRepo,
		stock:       stock,
		accounts:    accounts,
		movements:   movements,
		idempotency: idempotency,
		clientID:    clientID,
		cashAccount: cash,
		bankAccount: bank,
		widgetID:    widgetID,
	}
}

// repoAccountChecker adapts the account repository to the allocator port
type repoAccountChecker struct {
	accounts ledger.AccountRepository
}

func (c *repoAccountChecker) IsActive(ctx context.Context, accountID uuid.UUID) (bool, error) {
	account, err := c.accounts.FindByID(ctx, accountID)
	if err != nil {
		return false, nil
	}
	return account.IsActive(), nil
}

func (f *checkoutFixture) openWithLine(t *testing.T, mode string, qty float64) *SaleResponse {
	ctx := context.Background()
	opened, err := f.service.Open(ctx, OpenSaleRequest{ClientID: f.clientID, BillingMode: mode})
	require.NoError(t, err)

	withLine, err := f.service.AddLine(ctx, opened.ID, AddLineRequest{
		ProductID:   f.widgetID,
		ProductType: "article",
		Quantity:    decimal.NewFromFloat(qty),
	})
	require.NoError(t, err)
	return withLine
}

func (f *checkoutFixture) confirmed(t *testing.T, mode string, qty float64) *SaleResponse {
	ctx := context.Background()
	resp := f.openWithLine(t, mode, qty)

	_, err := f.service.Review(ctx, resp.ID)
	require.NoError(t, err)
	confirmed, err := f.service.Confirm(ctx, resp.ID)
	require.NoError(t, err)
	return confirmed
}

func cashPayments(amount float64) CommitSaleRequest {
	return CommitSaleRequest{Payments: []PaymentEntryInput{
		{Kind: "CASH", Amount: decimal.NewFromFloat(amount)},
	}}
}

// =============================================================================
// Tests
// =============================================================================

func TestCheckoutService_Open(t *testing.T) {
	f := setupCheckout(t)

	resp, err := f.service.Open(context.Background(), OpenSaleRequest{
		ClientID:    f.clientID,
		BillingMode: "WITH_TAX",
	})
	require.NoError(t, err)
	assert.Equal(t, "BUILDING", resp.Status)
	assert.Equal(t, "Aicha Bennis", resp.ClientName)

	t.Run("unknown client", func(t *testing.T) {
		_, err := f.service.Open(context.Background(), OpenSaleRequest{
			ClientID:    uuid.New(),
			BillingMode: "WITH_TAX",
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCheckoutService_AddLine(t *testing.T) {
	f := setupCheckout(t)

	resp := f.openWithLine(t, "WITH_TAX", 2)
	assert.Equal(t, "2000.00", resp.Subtotal.StringFixed(2))
	assert.Equal(t, "400.00", resp.TaxAmount.StringFixed(2))
	assert.Equal(t, "2400.00", resp.TotalPayable.StringFixed(2))
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, "Widget", resp.Lines[0].ProductName)

	t.Run("beyond availability leaves the cart unchanged", func(t *testing.T) {
		gadgetID := uuid.New()
		f.stock.add(gadgetID, "Gadget", 150, 3)

		_, err := f.service.AddLine(context.Background(), resp.ID, AddLineRequest{
			ProductID:   gadgetID,
			ProductType: "article",
			Quantity:    decimal.NewFromInt(5),
		})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)

		unchanged, err := f.service.GetByID(context.Background(), resp.ID)
		require.NoError(t, err)
		assert.Len(t, unchanged.Lines, 1)
		assert.Equal(t, "2400.00", unchanged.TotalPayable.StringFixed(2))
	})
}

func TestCheckoutService_WithoutTaxMode(t *testing.T) {
	f := setupCheckout(t)

	resp := f.openWithLine(t, "WITHOUT_TAX", 2)
	assert.True(t, resp.TaxAmount.IsZero())
	assert.Equal(t, "2000.00", resp.TotalPayable.StringFixed(2))
}

func TestCheckoutService_Commit(t *testing.T) {
	ctx := context.Background()

	t.Run("cash settlement end to end", func(t *testing.T) {
		f := setupCheckout(t)
		confirmed := f.confirmed(t, "WITH_TAX", 2)

		committed, err := f.service.Commit(ctx, confirmed.ID, "tok-1", cashPayments(2400))
		require.NoError(t, err)
		assert.Equal(t, "COMMITTED", committed.Status)
		assert.Equal(t, "tok-1", committed.CommitToken)
		require.Len(t, committed.Payments, 1)

		// stock decremented
		assert.Equal(t, "8", f.stock.qty(f.widgetID).String())

		// one credit movement on the cash account, balance refreshed
		saleID := committed.ID
		posted, err := f.movements.FindByOrigin(ctx, ledger.OriginKindSale, saleID)
		require.NoError(t, err)
		require.Len(t, posted, 1)
		assert.Equal(t, ledger.MovementDirectionCredit, posted[0].Direction)
		assert.Equal(t, "2400.00", posted[0].Amount.StringFixed(2))

		account, err := f.accounts.FindByID(ctx, f.cashAccount.ID)
		require.NoError(t, err)
		assert.Equal(t, "2400.00", account.CurrentBalance.StringFixed(2))
	})

	t.Run("mixed instruments post per entry", func(t *testing.T) {
		f := setupCheckout(t)
		confirmed := f.confirmed(t, "WITH_TAX", 2)

		bankID := f.bankAccount.ID
		req := CommitSaleRequest{Payments: []PaymentEntryInput{
			{Kind: "CASH", Amount: decimal.NewFromFloat(1400)},
			{Kind: "BANK_TRANSFER", Amount: decimal.NewFromFloat(1000), AccountID: &bankID},
		}}

		committed, err := f.service.Commit(ctx, confirmed.ID, "tok-2", req)
		require.NoError(t, err)
		assert.Equal(t, "COMMITTED", committed.Status)

		cash, err := f.accounts.FindByID(ctx, f.cashAccount.ID)
		require.NoError(t, err)
		assert.Equal(t, "1400.00", cash.CurrentBalance.StringFixed(2))

		bank, err := f.accounts.FindByID(ctx, f.bankAccount.ID)
		require.NoError(t, err)
		assert.Equal(t, "1000.00", bank.CurrentBalance.StringFixed(2))
	})

	t.Run("cheque settlement posts no movement", func(t *testing.T) {
		f := setupCheckout(t)
		confirmed := f.confirmed(t, "WITH_TAX", 2)

		due := time.Now().AddDate(0, 0, 30)
		req := CommitSaleRequest{Payments: []PaymentEntryInput{
			{Kind: "CHEQUE", Amount: decimal.NewFromFloat(2400), ChequeNumber: "CHQ-9", ChequeDueDate: &due},
		}}

		committed, err := f.service.Commit(ctx, confirmed.ID, "tok-3", req)
		require.NoError(t, err)
		assert.Equal(t, "COMMITTED", committed.Status)
		assert.Empty(t, f.movements.movements)
	})

	t.Run("replayed token returns the committed sale once", func(t *testing.T) {
		f := setupCheckout(t)
		confirmed := f.confirmed(t, "WITH_TAX", 2)

		first, err := f.service.Commit(ctx, confirmed.ID, "tok-4", cashPayments(2400))
		require.NoError(t, err)

		second, err := f.service.Commit(ctx, confirmed.ID, "tok-4", cashPayments(2400))
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "COMMITTED", second.Status)

		// no duplicate side effects
		assert.Equal(t, "8", f.stock.qty(f.widgetID).String())
		assert.Len(t, f.movements.movements, 1)
	})

	t.Run("payment mismatch never reserves the token", func(t *testing.T) {
		f := setupCheckout(t)
		confirmed := f.confirmed(t, "WITH_TAX", 2)

		_, err := f.service.Commit(ctx, confirmed.ID, "tok-5", cashPayments(2000))
		assert.ErrorIs(t, err, shared.ErrPaymentMismatch)

		reserved, err := f.idempotency.IsReserved(ctx, "tok-5")
		require.NoError(t, err)
		assert.False(t, reserved)
	})

	t.Run("bank transfer without account is rejected", func(t *testing.T) {
		f := setupCheckout(t)
		confirmed := f.confirmed(t, "WITH_TAX", 2)

		req := CommitSaleRequest{Payments: []PaymentEntryInput{
			{Kind: "CASH", Amount: decimal.NewFromFloat(1400)},
			{Kind: "BANK_TRANSFER", Amount: decimal.NewFromFloat(1000)},
		}}
		_, err := f.service.Commit(ctx, confirmed.ID, "tok-6", req)
		assert.ErrorIs(t, err, shared.ErrMissingInstrumentDetail)
	})

	t.Run("bank transfer to inactive account is rejected", func(t *testing.T) {
		f := setupCheckout(t)
		confirmed := f.confirmed(t, "WITH_TAX", 2)

		bank, err := f.accounts.FindByID(ctx, f.bankAccount.ID)
		require.NoError(t, err)
		require.NoError(t, bank.Deactivate())
		f.accounts.put(bank)

		bankID := f.bankAccount.ID
		req := CommitSaleRequest{Payments: []PaymentEntryInput{
			{Kind: "BANK_TRANSFER", Amount: decimal.NewFromFloat(2400), AccountID: &bankID},
		}}
		_, err = f.service.Commit(ctx, confirmed.ID, "tok-7", req)
		assert.ErrorIs(t, err, shared.ErrInactiveAccount)
	})

	t.Run("stale availability fails the commit and frees the token", func(t *testing.T) {
		f := setupCheckout(t)
		confirmed := f.confirmed(t, "WITH_TAX", 2)

		// another terminal took the stock between confirm and commit
		require.NoError(t, f.stock.Decrement(ctx, f.widgetID, decimal.NewFromInt(9)))

		_, err := f.service.Commit(ctx, confirmed.ID, "tok-8", cashPayments(2400))
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)

		// sale not committed, no movement posted, token free for retry
		stored, err := f.service.GetByID(ctx, confirmed.ID)
		require.NoError(t, err)
		assert.Equal(t, "CONFIRMED", stored.Status)
		assert.Empty(t, f.movements.movements)

		reserved, err := f.idempotency.IsReserved(ctx, "tok-8")
		require.NoError(t, err)
		assert.False(t, reserved)
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		f := setupCheckout(t)
		confirmed := f.confirmed(t, "WITH_TAX", 2)

		_, err := f.service.Commit(ctx, confirmed.ID, "", cashPayments(2400))
		require.Error(t, err)
		domainErr := shared.IsDomainError(err)
		require.NotNil(t, domainErr)
		assert.Equal(t, "INVALID_TOKEN", domainErr.Code)
	})

	t.Run("token held by an in-flight commit", func(t *testing.T) {
		f := setupCheckout(t)
		confirmed := f.confirmed(t, "WITH_TAX", 2)

		claimed, err := f.idempotency.Reserve(ctx, "tok-9", time.Hour)
		require.NoError(t, err)
		require.True(t, claimed)

		_, err = f.service.Commit(ctx, confirmed.ID, "tok-9", cashPayments(2400))
		require.Error(t, err)
		domainErr := shared.IsDomainError(err)
		require.NotNil(t, domainErr)
		assert.Equal(t, "COMMIT_IN_PROGRESS", domainErr.Code)
	})

	t.Run("commit requires a confirmed sale", func(t *testing.T) {
		f := setupCheckout(t)
		resp := f.openWithLine(t, "WITH_TAX", 2)

		_, err := f.service.Commit(ctx, resp.ID, "tok-10", cashPayments(2400))
		assert.Error(t, err)
	})
}

func TestCheckoutService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := setupCheckout(t)

	resp := f.openWithLine(t, "WITH_TAX", 1)

	reviewed, err := f.service.Review(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "REVIEWED", reviewed.Status)

	reopened, err := f.service.Reopen(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "BUILDING", reopened.Status)

	_, err = f.service.Review(ctx, resp.ID)
	require.NoError(t, err)
	confirmed, err := f.service.Confirm(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", confirmed.Status)

	aborted, err := f.service.Abort(ctx, resp.ID, AbortSaleRequest{Reason: "client parti"})
	require.NoError(t, err)
	assert.Equal(t, "ABORTED", aborted.Status)
	assert.Equal(t, "client parti", aborted.AbortReason)
}

func TestCheckoutService_Discount(t *testing.T) {
	ctx := context.Background()
	f := setupCheckout(t)

	resp := f.openWithLine(t, "WITH_TAX", 2)

	discounted, err := f.service.ApplyDiscount(ctx, resp.ID, ApplyDiscountRequest{
		Amount: decimal.NewFromFloat(500),
	})
	require.NoError(t, err)
	assert.Equal(t, "1800.00", discounted.TotalPayable.StringFixed(2))

	_, err = f.service.ApplyDiscount(ctx, resp.ID, ApplyDiscountRequest{
		Amount: decimal.NewFromFloat(2001),
	})
	assert.ErrorIs(t, err, shared.ErrInvalidDiscount)
}

func TestCheckoutService_UpdateAndRemoveLine(t *testing.T) {
	ctx := context.Background()
	f := setupCheckout(t)

	resp := f.openWithLine(t, "WITHOUT_TAX", 2)
	lineID := resp.Lines[0].ID

	updated, err := f.service.UpdateLine(ctx, resp.ID, lineID, UpdateLineRequest{
		Quantity: decimal.NewFromInt(3),
	})
	require.NoError(t, err)
	assert.Equal(t, "3000.00", updated.TotalPayable.StringFixed(2))

	_, err = f.service.UpdateLine(ctx, resp.ID, lineID, UpdateLineRequest{
		Quantity: decimal.NewFromInt(11),
	})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	removed, err := f.service.RemoveLine(ctx, resp.ID, lineID)
	require.NoError(t, err)
	assert.Empty(t, removed.Lines)
	assert.True(t, removed.TotalPayable.IsZero())
}
