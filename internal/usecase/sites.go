package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/user/webstat/internal/domain"
)

var (
	ErrInvalidDomain = errors.New("invalid site domain")
	ErrDomainTaken   = errors.New("domain already registered")
)

// SitesUseCase covers dashboard site listing and the explicit provisioning
// path that avoids the collector's fallback-owner shortcut.
type SitesUseCase struct {
	sites domain.SiteRepository
}

// NewSitesUseCase creates a new SitesUseCase.
func NewSitesUseCase(sites domain.SiteRepository) *SitesUseCase {
	return &SitesUseCase{sites: sites}
}

// List returns the caller's sites.
func (uc *SitesUseCase) List(ctx context.Context, userID uuid.UUID) ([]domain.Site, error) {
	return uc.sites.ListByUser(ctx, userID)
}

// Provision registers a site under the caller before any event arrives for
// its domain.
func (uc *SitesUseCase) Provision(ctx context.Context, userID uuid.UUID, siteDomain, name string) (*domain.Site, error) {
	siteDomain = strings.ToLower(strings.TrimSpace(siteDomain))
	if siteDomain == "" {
		return nil, ErrInvalidDomain
	}
	if name == "" {
		name = siteDomain
	}

	if _, err := uc.sites.FindByDomain(ctx, siteDomain); err == nil {
		return nil, ErrDomainTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check domain: %w", err)
	}

	site := &domain.Site{
		ID:        uuid.New(),
		UserID:    userID,
		Domain:    siteDomain,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.sites.Create(ctx, site); err != nil {
		return nil, fmt.Errorf("create site: %w", err)
	}
	return site, nil
}

// GetOwned returns the site only when it belongs to the caller; anything
// else is ErrNotFound so ownership is not probeable.
func (uc *SitesUseCase) GetOwned(ctx context.Context, userID, siteID uuid.UUID) (*domain.Site, error) {
	site, err := uc.sites.FindByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if site.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return site, nil
}
