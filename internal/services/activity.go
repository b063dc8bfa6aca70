package services

import (
	"context"
	"errors"
	"sort"

	"github.com/anonto42/scholarfolio/backend/internal/models"
	"github.com/anonto42/scholarfolio/backend/internal/repositories"
)

const defaultActivityLimit = 20

// ActivityEvent is a comment or like left by someone else on a lecturer's work
type ActivityEvent struct {
	Type      models.NotificationType `json:"type"`
	Actor     models.UserCompact      `json:"actor"`
	WorkID    string                  `json:"workId"`
	WorkTitle string                  `json:"workTitle"`
	WorkType  models.WorkType         `json:"workType"`
	CommentID string                  `json:"commentId,omitempty"`
	Content   string                  `json:"content,omitempty"`
	CreatedAt int64                   `json:"createdAt"`
}

// ActivityFeed lists recent engagement on a lecturer's works
type ActivityFeed struct {
	stores   *repositories.Registry
	resolver *WorkResolver
}

func NewActivityFeed(stores *repositories.Registry, resolver *WorkResolver) *ActivityFeed {
	return &ActivityFeed{stores: stores, resolver: resolver}
}

// ForLecturer returns at most limit events, newest first. Engagement on works
// that no longer resolve is skipped.
func (f *ActivityFeed) ForLecturer(ctx context.Context, lecturerID string, limit int) ([]ActivityEvent, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	works := make(map[string]*ResolvedWork)
	workFor := func(id string) (*ResolvedWork, error) {
		if w, ok := works[id]; ok {
			return w, nil
		}
		resolved, err := f.resolver.Resolve(ctx, id)
		if errors.Is(err, ErrNotFound) {
			works[id] = nil
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		works[id] = resolved
		return resolved, nil
	}

	events := []ActivityEvent{}
	comments, err := f.stores.Comments.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		if c.UserID == lecturerID {
			continue
		}
		w, err := workFor(c.PostID)
		if err != nil {
			return nil, err
		}
		if w == nil || w.OwnerID != lecturerID {
			continue
		}
		events = append(events, ActivityEvent{
			Type:      models.NotificationTypeComment,
			Actor:     models.UserCompact{ID: c.UserID},
			WorkID:    w.Work.ID,
			WorkTitle: w.Work.Title,
			WorkType:  w.ResourceType,
			CommentID: c.ID,
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
		})
	}

	likes, err := f.stores.Likes.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, like := range likes {
		if like.SubjectType != models.LikeSubjectPost || like.UserID == lecturerID {
			continue
		}
		w, err := workFor(like.PostID)
		if err != nil {
			return nil, err
		}
		if w == nil || w.OwnerID != lecturerID {
			continue
		}
		events = append(events, ActivityEvent{
			Type:      models.NotificationTypeLike,
			Actor:     models.UserCompact{ID: like.UserID},
			WorkID:    w.Work.ID,
			WorkTitle: w.Work.Title,
			WorkType:  w.ResourceType,
			CreatedAt: like.CreatedAt,
		})
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].CreatedAt > events[j].CreatedAt })
	if len(events) > limit {
		events = events[:limit]
	}

	actors := make(map[string]models.UserCompact)
	for i := range events {
		id := events[i].Actor.ID
		actor, ok := actors[id]
		if !ok {
			actor = models.UserCompact{ID: id}
			if u, err := f.stores.Users.Get(ctx, id); err == nil {
				actor = u.ToCompact()
			}
			actors[id] = actor
		}
		events[i].Actor = actor
	}
	return events, nil
}
