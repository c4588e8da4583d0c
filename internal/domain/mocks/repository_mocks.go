package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/user/webstat/internal/domain"
)

// MockEventRepository is a mock implementation of domain.EventRepository for testing.
type MockEventRepository struct {
	mu             sync.Mutex
	InsertedEvents []domain.TrackingEvent
	ListResult     []domain.TrackingEvent
	DistinctCount  int
	InsertErr      error
	ListErr        error
	DistinctErr    error
}

func (m *MockEventRepository) Insert(ctx context.Context, event domain.TrackingEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.InsertedEvents = append(m.InsertedEvents, event)
	return nil
}

func (m *MockEventRepository) ListBySiteAndRange(ctx context.Context, siteID uuid.UUID, from, to time.Time) ([]domain.TrackingEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.ListResult, nil
}

func (m *MockEventRepository) CountDistinctAddresses(ctx context.Context, siteID uuid.UUID, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DistinctErr != nil {
		return 0, m.DistinctErr
	}
	return m.DistinctCount, nil
}

// MockSiteRepository is a mock implementation of domain.SiteRepository.
type MockSiteRepository struct {
	mu            sync.Mutex
	SitesByDomain map[string]*domain.Site
	SitesByID     map[uuid.UUID]*domain.Site
	UserSites     []domain.Site
	CreatedSites  []domain.Site
	FindErr       error
	CreateErr     error
}

func (m *MockSiteRepository) FindByDomain(ctx context.Context, d string) (*domain.Site, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	if s, ok := m.SitesByDomain[d]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockSiteRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Site, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	if s, ok := m.SitesByID[id]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockSiteRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Site, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	return m.UserSites, nil
}

func (m *MockSiteRepository) Create(ctx context.Context, site *domain.Site) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.CreatedSites = append(m.CreatedSites, *site)
	if m.SitesByDomain == nil {
		m.SitesByDomain = make(map[string]*domain.Site)
	}
	m.SitesByDomain[site.Domain] = site
	return nil
}

// MockUserRepository is a mock implementation of domain.UserRepository.
type MockUserRepository struct {
	mu            sync.Mutex
	UsersByEmail  map[string]*domain.User
	FallbackOwner *domain.User
	FindErr       error
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	if u, ok := m.UsersByEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepository) FindFallbackOwner(ctx context.Context) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	if m.FallbackOwner == nil {
		return nil, domain.ErrNotFound
	}
	return m.FallbackOwner, nil
}

// MockPresenceRepository is a mock implementation of domain.PresenceRepository.
type MockPresenceRepository struct {
	mu          sync.Mutex
	Touched     map[uuid.UUID][]string
	ActiveCount int
	TouchErr    error
	CountErr    error
}

func (m *MockPresenceRepository) Touch(ctx context.Context, siteID uuid.UUID, addr string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.TouchErr != nil {
		return m.TouchErr
	}
	if m.Touched == nil {
		m.Touched = make(map[uuid.UUID][]string)
	}
	m.Touched[siteID] = append(m.Touched[siteID], addr)
	return nil
}

func (m *MockPresenceRepository) CountActive(ctx context.Context, siteID uuid.UUID, window time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CountErr != nil {
		return 0, m.CountErr
	}
	return m.ActiveCount, nil
}

// MockEventWAL is a mock implementation of domain.EventWAL.
type MockEventWAL struct {
	mu            sync.Mutex
	WrittenEvents []domain.TrackingEvent
	WriteErr      error
	Truncated     bool
}

func (m *MockEventWAL) Write(ctx context.Context, event domain.TrackingEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.WrittenEvents = append(m.WrittenEvents, event)
	return nil
}

func (m *MockEventWAL) Replay(ctx context.Context, handler func(event domain.TrackingEvent) error) error {
	m.mu.Lock()
	events := make([]domain.TrackingEvent, len(m.WrittenEvents))
	copy(events, m.WrittenEvents)
	m.mu.Unlock()
	for _, e := range events {
		if err := handler(e); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockEventWAL) Truncate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WrittenEvents = nil
	m.Truncated = true
	return nil
}
