package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc         func(ctx context.Context, account *domain.Account) error
	GetByFullNameFunc  func(ctx context.Context, fullName string) (*domain.Account, error)
	GetByFullNamesFunc func(ctx context.Context, fullNames []string) ([]*domain.Account, error)
	ListFunc           func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository(accounts ...*domain.Account) *MockAccountRepository {
	m := &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
	for _, a := range accounts {
		m.accounts[a.FullName] = a
	}
	return m
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.FullName]; ok {
		return domain.ErrAccountExists
	}
	m.accounts[account.FullName] = account
	return nil
}

func (m *MockAccountRepository) GetByFullName(ctx context.Context, fullName string) (*domain.Account, error) {
	if m.GetByFullNameFunc != nil {
		return m.GetByFullNameFunc(ctx, fullName)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[fullName]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByFullNames(ctx context.Context, fullNames []string) ([]*domain.Account, error) {
	if m.GetByFullNamesFunc != nil {
		return m.GetByFullNamesFunc(ctx, fullNames)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, name := range fullNames {
		if acc, ok := m.accounts[name]; ok {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	accounts := make([]*domain.Account, 0, len(m.accounts))
	for _, acc := range m.accounts {
		accounts = append(accounts, acc)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].FullName < accounts[j].FullName })
	return page(accounts, limit, offset), nil
}

// MockCurrencyRepository is a mock implementation of CurrencyRepository.
type MockCurrencyRepository struct {
	mu         sync.RWMutex
	currencies map[string]domain.Currency

	UpsertFunc    func(ctx context.Context, tx usecase.Transaction, currency *domain.Currency) error
	SetBaseFunc   func(ctx context.Context, tx usecase.Transaction, code string) error
	GetByCodeFunc func(ctx context.Context, code string) (*domain.Currency, error)
	ListFunc      func(ctx context.Context) ([]domain.Currency, error)
}

func NewMockCurrencyRepository(currencies ...domain.Currency) *MockCurrencyRepository {
	m := &MockCurrencyRepository{
		currencies: make(map[string]domain.Currency),
	}
	for _, c := range currencies {
		m.currencies[c.Code] = c
	}
	return m
}

func (m *MockCurrencyRepository) Upsert(ctx context.Context, tx usecase.Transaction, currency *domain.Currency) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, tx, currency)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currencies[currency.Code] = *currency
	return nil
}

func (m *MockCurrencyRepository) SetBase(ctx context.Context, tx usecase.Transaction, code string) error {
	if m.SetBaseFunc != nil {
		return m.SetBaseFunc(ctx, tx, code)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.currencies[code]; !ok {
		return domain.ErrCurrencyNotFound
	}
	for k, c := range m.currencies {
		c.IsBase = k == code
		m.currencies[k] = c
	}
	return nil
}

func (m *MockCurrencyRepository) GetByCode(ctx context.Context, code string) (*domain.Currency, error) {
	if m.GetByCodeFunc != nil {
		return m.GetByCodeFunc(ctx, code)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.currencies[code]; ok {
		return &c, nil
	}
	return nil, domain.ErrCurrencyNotFound
}

func (m *MockCurrencyRepository) List(ctx context.Context) ([]domain.Currency, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Currency, 0, len(m.currencies))
	for _, c := range m.currencies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// MockJournalRepository is a mock implementation of JournalRepository.
type MockJournalRepository struct {
	mu    sync.RWMutex
	byID  map[string]domain.Transaction
	byKey map[string]string
	order []string

	CreateFunc              func(ctx context.Context, tx usecase.Transaction, t *domain.Transaction, idempotencyKey string) error
	GetByIDFunc             func(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIdempotencyKeyFunc func(ctx context.Context, key string) (*domain.Transaction, error)
	ListFunc                func(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error)
}

func NewMockJournalRepository(txs ...domain.Transaction) *MockJournalRepository {
	m := &MockJournalRepository{
		byID:  make(map[string]domain.Transaction),
		byKey: make(map[string]string),
	}
	for _, t := range txs {
		m.byID[t.ID] = t
		m.order = append(m.order, t.ID)
	}
	return m
}

func (m *MockJournalRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction, idempotencyKey string) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, t, idempotencyKey)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if idempotencyKey != "" {
		if _, ok := m.byKey[idempotencyKey]; ok {
			return domain.ErrIdempotencyKeyInFlight
		}
		m.byKey[idempotencyKey] = t.ID
	}
	m.byID[t.ID] = *t
	m.order = append(m.order, t.ID)
	return nil
}

func (m *MockJournalRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.byID[id]; ok {
		return &t, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockJournalRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	if m.GetByIdempotencyKeyFunc != nil {
		return m.GetByIdempotencyKeyFunc(ctx, key)
	}
	m.mu.RLock()
	id, ok := m.byKey[key]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return m.GetByID(ctx, id)
}

func (m *MockJournalRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Transaction
	for _, id := range m.order {
		if t := m.byID[id]; filter.Matches(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

// MockRateEventRepository is an in-memory implementation of RateEventRepository.
type MockRateEventRepository struct {
	mu       sync.RWMutex
	events   map[string]domain.ExchangeRateEvent
	archived map[string]domain.ArchivedExchangeRateEvent

	CreateFunc       func(ctx context.Context, tx usecase.Transaction, events []domain.ExchangeRateEvent) error
	ArchiveByIDsFunc func(ctx context.Context, tx usecase.Transaction, ids []string, archivedAt time.Time) (int, error)
	DeleteByIDsFunc  func(ctx context.Context, tx usecase.Transaction, ids []string) (int, error)

	ArchiveCalls int
	DeleteCalls  int
}

func NewMockRateEventRepository(events ...domain.ExchangeRateEvent) *MockRateEventRepository {
	m := &MockRateEventRepository{
		events:   make(map[string]domain.ExchangeRateEvent),
		archived: make(map[string]domain.ArchivedExchangeRateEvent),
	}
	for _, e := range events {
		m.events[e.ID] = e
	}
	return m
}

func (m *MockRateEventRepository) Create(ctx context.Context, tx usecase.Transaction, events []domain.ExchangeRateEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, events)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range events {
		m.events[e.ID] = e
	}
	return nil
}

func (m *MockRateEventRepository) List(ctx context.Context, filter usecase.RateEventFilter) ([]domain.ExchangeRateEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.ExchangeRateEvent
	for _, e := range m.events {
		if filter.CurrencyCode == "" || e.CurrencyCode == filter.CurrencyCode {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].ID > out[j].ID
	})
	return page(out, filter.Limit, filter.Offset), nil
}

func (m *MockRateEventRepository) older(cutoff time.Time) []domain.ExchangeRateEvent {
	var out []domain.ExchangeRateEvent
	for _, e := range m.events {
		if e.OccurredAt.Before(cutoff) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.Before(out[j].OccurredAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *MockRateEventRepository) CountOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.older(cutoff)), nil
}

func (m *MockRateEventRepository) ListIDsOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for _, e := range m.older(cutoff) {
		if limit > 0 && len(ids) == limit {
			break
		}
		ids = append(ids, e.ID)
	}
	return ids, nil
}

func (m *MockRateEventRepository) ArchiveByIDs(ctx context.Context, tx usecase.Transaction, ids []string, archivedAt time.Time) (int, error) {
	m.mu.Lock()
	m.ArchiveCalls++
	m.mu.Unlock()
	if m.ArchiveByIDsFunc != nil {
		return m.ArchiveByIDsFunc(ctx, tx, ids, archivedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, id := range ids {
		e, ok := m.events[id]
		if !ok {
			continue
		}
		if _, done := m.archived[id]; done {
			continue
		}
		m.archived[id] = e.Archive(archivedAt)
		n++
	}
	return n, nil
}

func (m *MockRateEventRepository) DeleteByIDs(ctx context.Context, tx usecase.Transaction, ids []string) (int, error) {
	m.mu.Lock()
	m.DeleteCalls++
	m.mu.Unlock()
	if m.DeleteByIDsFunc != nil {
		return m.DeleteByIDsFunc(ctx, tx, ids)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, id := range ids {
		if _, ok := m.events[id]; ok {
			delete(m.events, id)
			n++
		}
	}
	return n, nil
}

// Events returns the live events ordered by ID.
func (m *MockRateEventRepository) Events() []domain.ExchangeRateEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.ExchangeRateEvent, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Archived returns the archived copy of the event with sourceID.
func (m *MockRateEventRepository) Archived(sourceID string) (domain.ArchivedExchangeRateEvent, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.archived[sourceID]
	return a, ok
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	mu  sync.Mutex
	Txs []*MockTransaction

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &MockTransaction{}
	m.Txs = append(m.Txs, tx)
	return tx, nil
}

// Committed returns how many transactions were committed.
func (m *MockTransactionManager) Committed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, tx := range m.Txs {
		if tx.Committed {
			n++
		}
	}
	return n
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	Committed bool

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockRetrier runs the operation once, or RetryFunc when set.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
	Calls     int
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	m.Calls++
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}

// MockMetricsRecorder counts the metrics it receives.
type MockMetricsRecorder struct {
	mu       sync.Mutex
	Posted   int
	Rejected map[string]int
	Reports  map[string]int
	Archived int
	Deleted  int
	Batches  int
}

func NewMockMetricsRecorder() *MockMetricsRecorder {
	return &MockMetricsRecorder{
		Rejected: make(map[string]int),
		Reports:  make(map[string]int),
	}
}

func (m *MockMetricsRecorder) TransactionPosted(lines int, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Posted++
}

func (m *MockMetricsRecorder) TransactionRejected(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rejected[reason]++
}

func (m *MockMetricsRecorder) BalanceReported(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reports[kind]++
}

func (m *MockMetricsRecorder) TTLBatchApplied(mode string, archived, deleted int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Batches++
	m.Archived += archived
	m.Deleted += deleted
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
	ReleaseFunc     func(ctx context.Context, key string) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte(usecase.IdempotencyPending)
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Stored returns the value held for key.
func (m *MockIdempotencyStore) Stored(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
