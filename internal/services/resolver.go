package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/scholarfolio/backend/internal/models"
	"github.com/anonto42/scholarfolio/backend/internal/repositories"
)

// ResolvedWork is the result of looking a work id up across the four collections
type ResolvedWork struct {
	Work         models.AcademicWork
	OwnerID      string
	ResourceType models.WorkType
}

// WorkResolver finds which work collection holds an id. It never writes.
type WorkResolver struct {
	stores *repositories.Registry
}

func NewWorkResolver(stores *repositories.Registry) *WorkResolver {
	return &WorkResolver{stores: stores}
}

// Resolve looks id up in every work collection.
func (r *WorkResolver) Resolve(ctx context.Context, id string) (*ResolvedWork, error) {
	return r.ResolveAmong(ctx, id, models.WorkTypes...)
}

// ResolveVisible resolves id and hides private works from everyone but their
// owner by reporting NotFound.
func (r *WorkResolver) ResolveVisible(ctx context.Context, id, viewerID string) (*ResolvedWork, error) {
	resolved, err := r.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	if !resolved.Work.VisibleTo(viewerID) {
		return nil, NotFound("work %s not found", id)
	}
	return resolved, nil
}

// ResolveAmong looks id up in the given collections only. Ids carrying a known
// type prefix go straight to that collection; other ids are probed in the
// given order and the first hit wins.
func (r *WorkResolver) ResolveAmong(ctx context.Context, id string, types ...models.WorkType) (*ResolvedWork, error) {
	if id == "" {
		return nil, NotFound("work id is empty")
	}
	if t, ok := models.WorkTypeFromID(id); ok {
		if !containsType(types, t) {
			return nil, NotFound("work %s not found", id)
		}
		types = []models.WorkType{t}
	}
	for _, t := range types {
		item, err := r.lookup(ctx, t, id)
		if errors.Is(err, repositories.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve %s in %s: %w", id, t, err)
		}
		base := item.Base()
		return &ResolvedWork{
			Work:         models.ToAcademicWork(item),
			OwnerID:      base.OwnerID,
			ResourceType: t,
		}, nil
	}
	return nil, NotFound("work %s not found", id)
}

func (r *WorkResolver) lookup(ctx context.Context, t models.WorkType, id string) (models.Academic, error) {
	switch t {
	case models.WorkTypePublication:
		return get(ctx, r.stores.Publications, id)
	case models.WorkTypeResearchProject:
		return get(ctx, r.stores.ResearchProjects, id)
	case models.WorkTypePortfolioItem:
		return get(ctx, r.stores.PortfolioItems, id)
	case models.WorkTypeStudentProject:
		return get(ctx, r.stores.StudentProjects, id)
	}
	return nil, fmt.Errorf("unknown work type %q", t)
}

// academicEntity is satisfied by the four stored work record types.
type academicEntity interface {
	repositories.Entity
	models.Academic
}

func get[T academicEntity](ctx context.Context, c repositories.Collection[T], id string) (models.Academic, error) {
	v, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return *v, nil
}

func containsType(types []models.WorkType, t models.WorkType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}
