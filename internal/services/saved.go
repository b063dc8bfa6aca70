package services

import (
	"context"
	"errors"

	"github.com/anonto42/scholarfolio/backend/internal/metrics"
	"github.com/anonto42/scholarfolio/backend/internal/models"
	"github.com/anonto42/scholarfolio/backend/internal/repositories"
	"github.com/rs/zerolog"
)

// SavedItems manages a user's savedItemIds and heals stale ids on read.
type SavedItems struct {
	users    repositories.Collection[models.UserProfile]
	resolver *WorkResolver
	log      zerolog.Logger
}

func NewSavedItems(stores *repositories.Registry, resolver *WorkResolver, logger zerolog.Logger) *SavedItems {
	return &SavedItems{
		users:    stores.Users,
		resolver: resolver,
		log:      logger.With().Str("component", "saved_items").Logger(),
	}
}

func (s *SavedItems) user(ctx context.Context, userID string) (*models.UserProfile, error) {
	u, err := s.users.Get(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, NotFound("user %s not found", userID)
	}
	return u, err
}

// List resolves every saved id in order. Ids that no longer resolve are
// dropped from the result and removed from the stored list. Works that have
// turned private are left out but stay saved.
func (s *SavedItems) List(ctx context.Context, userID string) ([]models.AcademicWork, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}

	owners := make(map[string]string)
	out := []models.AcademicWork{}
	var stale []string
	for _, id := range u.SavedItemIDs {
		resolved, err := s.resolver.Resolve(ctx, id)
		if errors.Is(err, ErrNotFound) {
			stale = append(stale, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		if !resolved.Work.VisibleTo(userID) {
			continue
		}
		work := resolved.Work
		if work.Type != models.WorkTypePublication {
			work.OwnerName = s.ownerName(ctx, owners, resolved.OwnerID)
		}
		out = append(out, work)
	}

	if len(stale) > 0 {
		err := s.users.Mutate(ctx, userID, func(p *models.UserProfile) error {
			kept := make([]string, 0, len(p.SavedItemIDs))
			for _, id := range p.SavedItemIDs {
				if !contains(stale, id) {
					kept = append(kept, id)
				}
			}
			p.SavedItemIDs = kept
			return nil
		})
		if err != nil {
			return nil, err
		}
		metrics.SavedItemsPruned.Add(float64(len(stale)))
		s.log.Info().Str("user_id", userID).Strs("stale_ids", stale).Msg("pruned stale saved items")
	}
	return out, nil
}

func (s *SavedItems) ownerName(ctx context.Context, cache map[string]string, ownerID string) string {
	if name, ok := cache[ownerID]; ok {
		return name
	}
	name := ""
	if owner, err := s.users.Get(ctx, ownerID); err == nil {
		name = owner.DisplayName()
	}
	cache[ownerID] = name
	return name
}

// Save adds an existing work the user can see to their saved items.
func (s *SavedItems) Save(ctx context.Context, userID, itemID string) error {
	if _, err := s.resolver.ResolveVisible(ctx, itemID, userID); err != nil {
		return err
	}
	err := s.users.Mutate(ctx, userID, func(u *models.UserProfile) error {
		if contains(u.SavedItemIDs, itemID) {
			return Conflict("item already saved")
		}
		u.SavedItemIDs = append(u.SavedItemIDs, itemID)
		return nil
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return NotFound("user %s not found", userID)
	}
	return err
}

// Unsave removes itemID without checking that it still resolves.
func (s *SavedItems) Unsave(ctx context.Context, userID, itemID string) error {
	err := s.users.Mutate(ctx, userID, func(u *models.UserProfile) error {
		u.SavedItemIDs = without(u.SavedItemIDs, itemID)
		return nil
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return NotFound("user %s not found", userID)
	}
	return err
}
