package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/user/webstat/internal/domain"
	"github.com/user/webstat/internal/domain/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pageviewEnvelope(t *testing.T, data map[string]interface{}) domain.Envelope {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return domain.Envelope{EventType: domain.EventPageview, Data: raw}
}

func TestCollectUseCase_Collect(t *testing.T) {
	logger := discardLogger()
	siteID := uuid.New()

	t.Run("Successful Collection", func(t *testing.T) {
		eventRepo := &mocks.MockEventRepository{}
		siteRepo := &mocks.MockSiteRepository{
			SitesByDomain: map[string]*domain.Site{
				"example.com": {ID: siteID, Domain: "example.com"},
			},
		}
		userRepo := &mocks.MockUserRepository{}
		presence := &mocks.MockPresenceRepository{}
		uc := NewCollectUseCase(eventRepo, siteRepo, userRepo, presence, nil, nil, nil, logger)

		env := pageviewEnvelope(t, map[string]interface{}{
			"siteId": "example.com",
			"url":    "https://example.com/pricing",
			"ip":     "",
		})
		if err := uc.Collect(context.Background(), env, "203.0.113.7", "Mozilla/5.0"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(eventRepo.InsertedEvents) != 1 {
			t.Fatalf("expected 1 inserted event, got %d", len(eventRepo.InsertedEvents))
		}
		got := eventRepo.InsertedEvents[0]
		if got.SiteID != siteID {
			t.Errorf("inserted event has wrong site id: %s", got.SiteID)
		}
		if got.Type != domain.EventPageview {
			t.Errorf("inserted event has wrong type: %s", got.Type)
		}
		if got.IPAddress != "203.0.113.7" {
			t.Errorf("inserted event has wrong address: %s", got.IPAddress)
		}
		if got.UserAgent != "Mozilla/5.0" {
			t.Errorf("inserted event has wrong user agent: %s", got.UserAgent)
		}
		if got.URL != "https://example.com/pricing" {
			t.Errorf("inserted event has wrong url: %s", got.URL)
		}
		if got.CreatedAt.IsZero() {
			t.Error("expected CreatedAt to be set")
		}

		var payload map[string]interface{}
		if err := json.Unmarshal(got.Payload, &payload); err != nil {
			t.Fatalf("unmarshal stored payload: %v", err)
		}
		if payload["ip"] != "203.0.113.7" {
			t.Errorf("expected empty payload ip to be overwritten, got %v", payload["ip"])
		}

		if len(presence.Touched[siteID]) != 1 || presence.Touched[siteID][0] != "203.0.113.7" {
			t.Errorf("expected presence touch for the client address, got %v", presence.Touched[siteID])
		}
	})

	t.Run("Non-Empty Payload IP Is Preserved", func(t *testing.T) {
		eventRepo := &mocks.MockEventRepository{}
		siteRepo := &mocks.MockSiteRepository{
			SitesByDomain: map[string]*domain.Site{"example.com": {ID: siteID, Domain: "example.com"}},
		}
		uc := NewCollectUseCase(eventRepo, siteRepo, &mocks.MockUserRepository{}, nil, nil, nil, nil, logger)

		env := pageviewEnvelope(t, map[string]interface{}{"siteId": "example.com", "ip": "198.51.100.1"})
		if err := uc.Collect(context.Background(), env, "203.0.113.7", "ua"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var payload map[string]interface{}
		_ = json.Unmarshal(eventRepo.InsertedEvents[0].Payload, &payload)
		if payload["ip"] != "198.51.100.1" {
			t.Errorf("expected payload ip to survive, got %v", payload["ip"])
		}
	})

	t.Run("Fills In OS From User Agent", func(t *testing.T) {
		eventRepo := &mocks.MockEventRepository{}
		siteRepo := &mocks.MockSiteRepository{
			SitesByDomain: map[string]*domain.Site{"example.com": {ID: siteID, Domain: "example.com"}},
		}
		uc := NewCollectUseCase(eventRepo, siteRepo, &mocks.MockUserRepository{}, nil, nil, nil, nil, logger)

		env := pageviewEnvelope(t, map[string]interface{}{"siteId": "example.com"})
		if err := uc.Collect(context.Background(), env, "203.0.113.7", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var payload map[string]interface{}
		_ = json.Unmarshal(eventRepo.InsertedEvents[0].Payload, &payload)
		if payload["os"] != "Windows" || payload["osVersion"] != "10" {
			t.Errorf("expected server-side OS detection, got os=%v version=%v", payload["os"], payload["osVersion"])
		}
	})

	t.Run("Keeps Client-Reported OS", func(t *testing.T) {
		eventRepo := &mocks.MockEventRepository{}
		siteRepo := &mocks.MockSiteRepository{
			SitesByDomain: map[string]*domain.Site{"example.com": {ID: siteID, Domain: "example.com"}},
		}
		uc := NewCollectUseCase(eventRepo, siteRepo, &mocks.MockUserRepository{}, nil, nil, nil, nil, logger)

		env := pageviewEnvelope(t, map[string]interface{}{"siteId": "example.com", "os": "Android"})
		if err := uc.Collect(context.Background(), env, "203.0.113.7", "Mozilla/5.0 (Windows NT 10.0)"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var payload map[string]interface{}
		_ = json.Unmarshal(eventRepo.InsertedEvents[0].Payload, &payload)
		if payload["os"] != "Android" {
			t.Errorf("client-reported OS must win, got %v", payload["os"])
		}
	})

	t.Run("Unknown Event Type", func(t *testing.T) {
		uc := NewCollectUseCase(&mocks.MockEventRepository{}, &mocks.MockSiteRepository{}, &mocks.MockUserRepository{}, nil, nil, nil, nil, logger)

		env := domain.Envelope{EventType: "install", Data: []byte(`{}`)}
		err := uc.Collect(context.Background(), env, "203.0.113.7", "ua")
		if !errors.Is(err, ErrMalformedEvent) {
			t.Fatalf("expected ErrMalformedEvent, got %v", err)
		}
	})

	t.Run("Lazily Creates Site For Unseen Domain", func(t *testing.T) {
		owner := &domain.User{ID: uuid.New(), Email: "admin@example.com"}
		eventRepo := &mocks.MockEventRepository{}
		siteRepo := &mocks.MockSiteRepository{}
		userRepo := &mocks.MockUserRepository{FallbackOwner: owner}
		uc := NewCollectUseCase(eventRepo, siteRepo, userRepo, nil, nil, nil, nil, logger)

		env := pageviewEnvelope(t, map[string]interface{}{"siteId": "new-shop.vn"})
		if err := uc.Collect(context.Background(), env, "203.0.113.7", "ua"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(siteRepo.CreatedSites) != 1 {
			t.Fatalf("expected site to be created, got %d", len(siteRepo.CreatedSites))
		}
		created := siteRepo.CreatedSites[0]
		if created.Domain != "new-shop.vn" || created.Name != "new-shop.vn" {
			t.Errorf("unexpected created site: %+v", created)
		}
		if created.UserID != owner.ID {
			t.Errorf("expected site assigned to fallback owner, got %s", created.UserID)
		}
		if len(eventRepo.InsertedEvents) != 1 {
			t.Errorf("expected event inserted for new site, got %d", len(eventRepo.InsertedEvents))
		}
	})

	t.Run("Drops Event When No Fallback Owner Exists", func(t *testing.T) {
		eventRepo := &mocks.MockEventRepository{}
		uc := NewCollectUseCase(eventRepo, &mocks.MockSiteRepository{}, &mocks.MockUserRepository{}, nil, nil, nil, nil, logger)

		env := pageviewEnvelope(t, map[string]interface{}{"siteId": "orphan.example"})
		if err := uc.Collect(context.Background(), env, "203.0.113.7", "ua"); err != nil {
			t.Fatalf("expected silent drop to be acknowledged, got %v", err)
		}
		if len(eventRepo.InsertedEvents) != 0 {
			t.Errorf("expected no insert, got %d", len(eventRepo.InsertedEvents))
		}
	})

	t.Run("Falls Back To WAL When Store Insert Fails", func(t *testing.T) {
		eventRepo := &mocks.MockEventRepository{InsertErr: errors.New("connection refused")}
		siteRepo := &mocks.MockSiteRepository{
			SitesByDomain: map[string]*domain.Site{"example.com": {ID: siteID, Domain: "example.com"}},
		}
		walRepo := &mocks.MockEventWAL{}
		uc := NewCollectUseCase(eventRepo, siteRepo, &mocks.MockUserRepository{}, nil, walRepo, nil, nil, logger)

		env := pageviewEnvelope(t, map[string]interface{}{"siteId": "example.com"})
		if err := uc.Collect(context.Background(), env, "203.0.113.7", "ua"); err != nil {
			t.Fatalf("expected WAL fallback to acknowledge, got %v", err)
		}
		if len(walRepo.WrittenEvents) != 1 {
			t.Fatalf("expected 1 WAL event, got %d", len(walRepo.WrittenEvents))
		}

		// Store stays marked unavailable: the next event goes straight to WAL.
		env = pageviewEnvelope(t, map[string]interface{}{"siteId": "example.com"})
		if err := uc.Collect(context.Background(), env, "203.0.113.8", "ua"); err != nil {
			t.Fatalf("expected WAL fallback to acknowledge, got %v", err)
		}
		if len(walRepo.WrittenEvents) != 2 {
			t.Errorf("expected 2 WAL events, got %d", len(walRepo.WrittenEvents))
		}
	})

	t.Run("Insert Failure Without WAL Is An Error", func(t *testing.T) {
		eventRepo := &mocks.MockEventRepository{InsertErr: errors.New("connection refused")}
		siteRepo := &mocks.MockSiteRepository{
			SitesByDomain: map[string]*domain.Site{"example.com": {ID: siteID, Domain: "example.com"}},
		}
		uc := NewCollectUseCase(eventRepo, siteRepo, &mocks.MockUserRepository{}, nil, nil, nil, nil, logger)

		env := pageviewEnvelope(t, map[string]interface{}{"siteId": "example.com"})
		if err := uc.Collect(context.Background(), env, "203.0.113.7", "ua"); err == nil {
			t.Fatal("expected an error, got nil")
		}
	})
}
