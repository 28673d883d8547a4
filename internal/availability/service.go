package availability

import (
	"context"
	"errors"
	"strings"
)

type Service interface {
	// Get returns the owner's settings, falling back to DefaultSettings when none are stored.
	Get(ctx context.Context, ownerID string) (*Settings, error)
	Update(ctx context.Context, ownerID string, patch Patch) (*Settings, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Get(ctx context.Context, ownerID string) (*Settings, error) {
	settings, err := s.repo.Get(ctx, ownerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			d := DefaultSettings(ownerID)
			return &d, nil
		}
		return nil, err
	}
	return settings, nil
}

func (s *service) Update(ctx context.Context, ownerID string, patch Patch) (*Settings, error) {
	current, err := s.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if patch.Timezone != nil {
		tz := strings.TrimSpace(*patch.Timezone)
		patch.Timezone = &tz
	}

	next := patch.Apply(*current)
	next.OwnerID = ownerID

	// Validate logical rules
	if err := Validate(next); err != nil {
		return nil, err
	}

	if err := s.repo.Upsert(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}
