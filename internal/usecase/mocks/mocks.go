package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mpavlik/tillbook/internal/domain"
	"github.com/mpavlik/tillbook/internal/usecase"
)

// MockEntryRepository is a mock implementation of EntryRepository. Without
// overridden funcs it behaves as an in-memory ledger with sequential ids.
type MockEntryRepository struct {
	mu      sync.RWMutex
	entries map[int64]*domain.Entry
	nextID  int64

	CreateFunc               func(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) (int64, error)
	GetByIDFunc              func(ctx context.Context, id int64) (*domain.Entry, error)
	GetByIDForUpdateFunc     func(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Entry, error)
	GetBySaleIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, saleID int64) (*domain.Entry, error)
	TailFunc                 func(ctx context.Context) (*domain.Entry, error)
	TailForUpdateFunc        func(ctx context.Context, tx usecase.Transaction) (*domain.Entry, error)
	ListActiveForUpdateFunc  func(ctx context.Context, tx usecase.Transaction) ([]*domain.Entry, error)
	ListRecentFunc           func(ctx context.Context, limit int, ascending bool) ([]*domain.Entry, error)
	MarkDeletedFunc          func(ctx context.Context, tx usecase.Transaction, id int64, description string) error
	DetachUserFunc           func(ctx context.Context, tx usecase.Transaction, userID int64) error
	LockLedgerFunc           func(ctx context.Context, tx usecase.Transaction) error
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{
		entries: make(map[int64]*domain.Entry),
	}
}

func (m *MockEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) (int64, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	stored := *entry
	stored.ID = m.nextID
	m.entries[stored.ID] = &stored
	return stored.ID, nil
}

func (m *MockEntryRepository) GetByID(ctx context.Context, id int64) (*domain.Entry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockEntryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Entry, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockEntryRepository) GetBySaleIDForUpdate(ctx context.Context, tx usecase.Transaction, saleID int64) (*domain.Entry, error) {
	if m.GetBySaleIDForUpdateFunc != nil {
		return m.GetBySaleIDForUpdateFunc(ctx, tx, saleID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if e.SaleID != nil && *e.SaleID == saleID {
			copied := *e
			return &copied, nil
		}
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockEntryRepository) Tail(ctx context.Context) (*domain.Entry, error) {
	if m.TailFunc != nil {
		return m.TailFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tailLocked(), nil
}

func (m *MockEntryRepository) TailForUpdate(ctx context.Context, tx usecase.Transaction) (*domain.Entry, error) {
	if m.TailForUpdateFunc != nil {
		return m.TailForUpdateFunc(ctx, tx)
	}
	return m.Tail(ctx)
}

func (m *MockEntryRepository) ListActiveForUpdate(ctx context.Context, tx usecase.Transaction) ([]*domain.Entry, error) {
	if m.ListActiveForUpdateFunc != nil {
		return m.ListActiveForUpdateFunc(ctx, tx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.Entry
	for _, e := range m.sortedLocked() {
		if !e.Deleted {
			copied := *e
			entries = append(entries, &copied)
		}
	}
	return entries, nil
}

func (m *MockEntryRepository) ListRecent(ctx context.Context, limit int, ascending bool) ([]*domain.Entry, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, limit, ascending)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sorted := m.sortedLocked()
	if !ascending {
		for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
			sorted[i], sorted[j] = sorted[j], sorted[i]
		}
	}
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	entries := make([]*domain.Entry, 0, len(sorted))
	for _, e := range sorted {
		copied := *e
		entries = append(entries, &copied)
	}
	return entries, nil
}

func (m *MockEntryRepository) MarkDeleted(ctx context.Context, tx usecase.Transaction, id int64, description string) error {
	if m.MarkDeletedFunc != nil {
		return m.MarkDeletedFunc(ctx, tx, id, description)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return domain.ErrEntryNotFound
	}
	e.Deleted = true
	e.SaleID = nil
	e.Description = description
	return nil
}

func (m *MockEntryRepository) DetachUser(ctx context.Context, tx usecase.Transaction, userID int64) error {
	if m.DetachUserFunc != nil {
		return m.DetachUserFunc(ctx, tx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.UserID != nil && *e.UserID == userID {
			e.UserID = nil
		}
	}
	return nil
}

func (m *MockEntryRepository) LockLedger(ctx context.Context, tx usecase.Transaction) error {
	if m.LockLedgerFunc != nil {
		return m.LockLedgerFunc(ctx, tx)
	}
	return nil
}

func (m *MockEntryRepository) tailLocked() *domain.Entry {
	var tail *domain.Entry
	for _, e := range m.entries {
		if tail == nil || e.ID > tail.ID {
			tail = e
		}
	}
	if tail == nil {
		return nil
	}
	copied := *tail
	return &copied
}

func (m *MockEntryRepository) sortedLocked() []*domain.Entry {
	sorted := make([]*domain.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		sorted = append(sorted, e)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return sorted
}

// MockSaleRepository is a mock implementation of SaleRepository.
type MockSaleRepository struct {
	mu     sync.RWMutex
	sales  map[int64]*domain.Sale
	nextID int64

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, sale *domain.Sale) (int64, error)
	GetByIDFunc          func(ctx context.Context, id int64) (*domain.Sale, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Sale, error)
	ListFunc             func(ctx context.Context, limit, offset int) ([]*domain.Sale, error)
	ListForUpdateFunc    func(ctx context.Context, tx usecase.Transaction) ([]*domain.Sale, error)
	DeleteFunc           func(ctx context.Context, tx usecase.Transaction, id int64) error
	DetachUserFunc       func(ctx context.Context, tx usecase.Transaction, userID int64) error
}

func NewMockSaleRepository() *MockSaleRepository {
	return &MockSaleRepository{
		sales: make(map[int64]*domain.Sale),
	}
}

func (m *MockSaleRepository) Create(ctx context.Context, tx usecase.Transaction, sale *domain.Sale) (int64, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, sale)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	stored := *sale
	stored.ID = m.nextID
	m.sales[stored.ID] = &stored
	return stored.ID, nil
}

func (m *MockSaleRepository) GetByID(ctx context.Context, id int64) (*domain.Sale, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sales[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, domain.ErrSaleNotFound
}

func (m *MockSaleRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Sale, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockSaleRepository) List(ctx context.Context, limit, offset int) ([]*domain.Sale, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sorted := m.sortedLocked()
	if offset > len(sorted) {
		offset = len(sorted)
	}
	sorted = sorted[offset:]
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	sales := make([]*domain.Sale, 0, len(sorted))
	for _, s := range sorted {
		copied := *s
		sales = append(sales, &copied)
	}
	return sales, nil
}

func (m *MockSaleRepository) ListForUpdate(ctx context.Context, tx usecase.Transaction) ([]*domain.Sale, error) {
	if m.ListForUpdateFunc != nil {
		return m.ListForUpdateFunc(ctx, tx)
	}
	return m.List(ctx, 0, 0)
}

func (m *MockSaleRepository) Delete(ctx context.Context, tx usecase.Transaction, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sales[id]; !ok {
		return domain.ErrSaleNotFound
	}
	delete(m.sales, id)
	return nil
}

func (m *MockSaleRepository) DetachUser(ctx context.Context, tx usecase.Transaction, userID int64) error {
	if m.DetachUserFunc != nil {
		return m.DetachUserFunc(ctx, tx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sales {
		if s.UserID != nil && *s.UserID == userID {
			s.UserID = nil
		}
	}
	return nil
}

func (m *MockSaleRepository) sortedLocked() []*domain.Sale {
	sorted := make([]*domain.Sale, 0, len(m.sales))
	for _, s := range m.sales {
		sorted = append(sorted, s)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return sorted
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIdempotencyStore is a mock implementation of the middleware's
// IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
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
		m.data[key] = []byte("processing")
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
