package tests

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"nemt/internal/domain"
	"nemt/internal/redis"
	"nemt/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
	GetError    error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{
		trips: make(map[string]*domain.Trip),
	}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *trip
	return &copy, nil
}

func (m *MockTripRepository) GetByClientID(ctx context.Context, clientID string) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Trip, 0)
	for _, tr := range m.trips {
		if tr.ClientID == clientID {
			copy := *tr
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockTripRepository) GetAll(ctx context.Context) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Trip, 0, len(m.trips))
	for _, tr := range m.trips {
		copy := *tr
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockTripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[trip.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

// GetTrip returns the stored trip for test assertions.
func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trips[id]
}

// CountTrips returns the number of stored trips.
func (m *MockTripRepository) CountTrips() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.trips)
}

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	CreateCallCount int32
	CreateError     error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Phone == phone {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		copy := *u
		result = append(result, &copy)
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK PAYMENT ATTEMPT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentAttemptRepository is a mock implementation of
// PaymentAttemptRepository.
type MockPaymentAttemptRepository struct {
	mu       sync.RWMutex
	attempts []*domain.PaymentAttempt

	CreateCallCount int32
	CreateError     error
}

// NewMockPaymentAttemptRepository creates a new mock attempt repository.
func NewMockPaymentAttemptRepository() *MockPaymentAttemptRepository {
	return &MockPaymentAttemptRepository{}
}

func (m *MockPaymentAttemptRepository) Create(ctx context.Context, attempt *domain.PaymentAttempt) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *attempt
	m.attempts = append(m.attempts, &copy)
	return nil
}

func (m *MockPaymentAttemptRepository) GetByID(ctx context.Context, id string) (*domain.PaymentAttempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.attempts {
		if a.ID == id {
			copy := *a
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockPaymentAttemptRepository) ListByTripID(ctx context.Context, tripID string) ([]*domain.PaymentAttempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.PaymentAttempt, 0)
	for _, a := range m.attempts {
		if a.TripID == tripID {
			copy := *a
			result = append(result, &copy)
		}
	}
	return result, nil
}

// CountAttempts returns the number of recorded attempts for a trip.
func (m *MockPaymentAttemptRepository) CountAttempts(tripID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, a := range m.attempts {
		if a.TripID == tripID {
			n++
		}
	}
	return n
}

// ──────────────────────────────────────────────
// SCRIPTED PSP
// ──────────────────────────────────────────────

// ScriptedPSP is a PSP whose outcomes are scripted per test. The zero
// value approves everything.
type ScriptedPSP struct {
	mu sync.Mutex

	// Error injection: returned on the next matching call.
	ChargeError error
	RefundError error

	ChargeCallCount int32
	RefundCallCount int32

	LastChargeAmount float64
	LastRefundAmount float64
}

// NewScriptedPSP creates a new scripted PSP.
func NewScriptedPSP() *ScriptedPSP {
	return &ScriptedPSP{}
}

func (p *ScriptedPSP) Charge(ctx context.Context, instrumentRef string, amount float64) (string, error) {
	atomic.AddInt32(&p.ChargeCallCount, 1)
	p.mu.Lock()
	p.LastChargeAmount = amount
	err := p.ChargeError
	p.mu.Unlock()
	if err != nil {
		return "", err
	}
	return uuid.New().String(), nil
}

func (p *ScriptedPSP) Refund(ctx context.Context, instrumentRef string, amount float64) (string, error) {
	atomic.AddInt32(&p.RefundCallCount, 1)
	p.mu.Lock()
	p.LastRefundAmount = amount
	err := p.RefundError
	p.mu.Unlock()
	if err != nil {
		return "", err
	}
	return uuid.New().String(), nil
}

// ──────────────────────────────────────────────
// MOCK ROUTE SOURCE
// ──────────────────────────────────────────────

// MockRouteSource is a scripted RouteSource. Regions maps an address to
// its region; unmapped addresses resolve to an empty region.
type MockRouteSource struct {
	mu sync.Mutex

	DistanceMiles float64
	Regions       map[string]string

	// FailDistanceTimes makes the next N Distance calls fail with
	// DistanceError before recovering.
	FailDistanceTimes int
	DistanceError     error

	DistanceCallCount int32
	RegionCallCount   int32
}

// NewMockRouteSource creates a route source returning the given distance.
func NewMockRouteSource(miles float64) *MockRouteSource {
	return &MockRouteSource{
		DistanceMiles: miles,
		Regions:       make(map[string]string),
	}
}

func (m *MockRouteSource) Distance(ctx context.Context, origin, destination string) (float64, error) {
	atomic.AddInt32(&m.DistanceCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailDistanceTimes > 0 {
		m.FailDistanceTimes--
		return 0, m.DistanceError
	}
	return m.DistanceMiles, nil
}

func (m *MockRouteSource) Region(ctx context.Context, address string) (string, error) {
	atomic.AddInt32(&m.RegionCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Regions[address], nil
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is an in-memory LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	AcquireCallCount int32
	ReleaseCallCount int32
	AcquireError     error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]bool),
	}
}

// HoldLock pre-acquires the lock for a trip, simulating an in-flight
// payment.
func (m *MockLockStore) HoldLock(tripID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks[tripID] = true
}

func (m *MockLockStore) AcquirePaymentLock(ctx context.Context, tripID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[tripID] {
		return false, nil
	}
	m.locks[tripID] = true
	return true, nil
}

func (m *MockLockStore) ReleasePaymentLock(ctx context.Context, tripID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, tripID)
	return nil
}

// IsLocked reports whether the lock is currently held.
func (m *MockLockStore) IsLocked(tripID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locks[tripID]
}

// ──────────────────────────────────────────────
// MOCK CACHES
// ──────────────────────────────────────────────

// MockRouteCache is an in-memory RouteCacheInterface without TTL.
type MockRouteCache struct {
	mu     sync.Mutex
	routes map[string]*domain.RegionInfo

	GetCallCount int32
	SetCallCount int32
}

// NewMockRouteCache creates a new mock route cache.
func NewMockRouteCache() *MockRouteCache {
	return &MockRouteCache{
		routes: make(map[string]*domain.RegionInfo),
	}
}

func (m *MockRouteCache) GetRoute(ctx context.Context, pickup, destination string) (*domain.RegionInfo, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.routes[pickup+"|"+destination]
	if !ok {
		return nil, nil
	}
	copy := *info
	return &copy, nil
}

func (m *MockRouteCache) SetRoute(ctx context.Context, pickup, destination string, info *domain.RegionInfo) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *info
	m.routes[pickup+"|"+destination] = &copy
	return nil
}

// MockQuoteCache is an in-memory QuoteCacheInterface without TTL.
type MockQuoteCache struct {
	mu     sync.Mutex
	quotes map[string]*redis.CachedQuote
}

// NewMockQuoteCache creates a new mock quote cache.
func NewMockQuoteCache() *MockQuoteCache {
	return &MockQuoteCache{
		quotes: make(map[string]*redis.CachedQuote),
	}
}

func (m *MockQuoteCache) GetQuote(ctx context.Context, quoteID string) (*redis.CachedQuote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	quote, ok := m.quotes[quoteID]
	if !ok {
		return nil, nil
	}
	copy := *quote
	return &copy, nil
}

func (m *MockQuoteCache) SetQuote(ctx context.Context, quote *redis.CachedQuote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *quote
	m.quotes[quote.ID] = &copy
	return nil
}
