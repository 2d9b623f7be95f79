package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"carledger/internal/core"
	applog "carledger/internal/log"
	"carledger/internal/storage"
)

// DefaultCompanyName is assigned when a profile is first read before any
// settings were saved.
const DefaultCompanyName = "Bitgard"

// ProfileService owns the single dealer profile record.
type ProfileService struct {
	storage *storage.SQLiteRepository
	logger  *applog.Logger
}

func NewProfileService(storage *storage.SQLiteRepository, logger *applog.Logger) *ProfileService {
	return &ProfileService{
		storage: storage,
		logger:  logger.WithComponent(applog.ComponentProfile),
	}
}

// Get returns the dealer profile, bootstrapping a default one on first
// read so callers never see "not found".
func (s *ProfileService) Get(ctx context.Context) (*core.DealerProfile, error) {
	profile, err := s.storage.GetDealerProfile(ctx)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("get dealer profile: %w", err)
	}

	profile = &core.DealerProfile{
		ID:          uuid.NewString(),
		CompanyName: DefaultCompanyName,
	}
	if err := s.storage.SaveDealerProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("bootstrap dealer profile: %w", err)
	}

	s.logger.InfoContext(ctx, "Dealer profile bootstrapped",
		applog.FieldAction, "bootstrap")
	return profile, nil
}

func (s *ProfileService) Update(ctx context.Context, in ProfileInput) (*core.DealerProfile, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	profile, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	profile.CompanyName = in.CompanyName
	profile.Address = in.Address
	profile.Phone = in.Phone
	profile.Email = in.Email

	if err := s.storage.SaveDealerProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("save dealer profile: %w", err)
	}

	s.logger.InfoContext(ctx, "Dealer profile updated")
	return profile, nil
}
