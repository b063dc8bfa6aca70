package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/anonto42/scholarfolio/backend/internal/models"
	"github.com/anonto42/scholarfolio/backend/internal/repositories"
)

// Inbox is a user's view of their own notifications
type Inbox struct {
	notifications repositories.Collection[models.Notification]
}

func NewInbox(stores *repositories.Registry) *Inbox {
	return &Inbox{notifications: stores.Notifications}
}

// GroupedNotifications buckets notifications by age
type GroupedNotifications struct {
	Today     []models.Notification `json:"today"`
	Yesterday []models.Notification `json:"yesterday"`
	ThisWeek  []models.Notification `json:"thisWeek"`
	Older     []models.Notification `json:"older"`
}

const olderGroupLimit = 50

func (b *Inbox) mine(ctx context.Context, userID string) ([]models.Notification, error) {
	all, err := b.notifications.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.Notification{}
	for _, n := range all {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

// List returns one page of the user's notifications, newest first, and the total count.
func (b *Inbox) List(ctx context.Context, userID string, page, limit int) ([]models.Notification, int, error) {
	mine, err := b.mine(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	pages := len(mine) / limit
	if len(mine)%limit != 0 {
		pages++
	}
	if page > pages {
		return []models.Notification{}, len(mine), nil
	}
	start := (page - 1) * limit
	end := start + limit
	if end > len(mine) {
		end = len(mine)
	}
	return mine[start:end], len(mine), nil
}

// Grouped splits the user's notifications into today, yesterday, the rest of
// the last week and older, relative to now.
func (b *Inbox) Grouped(ctx context.Context, userID string, now time.Time) (*GroupedNotifications, error) {
	mine, err := b.mine(ctx, userID)
	if err != nil {
		return nil, err
	}
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	weekStart := todayStart.AddDate(0, 0, -7)

	g := &GroupedNotifications{
		Today:     []models.Notification{},
		Yesterday: []models.Notification{},
		ThisWeek:  []models.Notification{},
		Older:     []models.Notification{},
	}
	for _, n := range mine {
		switch created := n.CreatedAt; {
		case created >= todayStart.UnixMilli():
			g.Today = append(g.Today, n)
		case created >= yesterdayStart.UnixMilli():
			g.Yesterday = append(g.Yesterday, n)
		case created >= weekStart.UnixMilli():
			g.ThisWeek = append(g.ThisWeek, n)
		default:
			if len(g.Older) < olderGroupLimit {
				g.Older = append(g.Older, n)
			}
		}
	}
	return g, nil
}

func (b *Inbox) UnreadCount(ctx context.Context, userID string) (int, error) {
	mine, err := b.mine(ctx, userID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, n := range mine {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (b *Inbox) owned(ctx context.Context, userID, id string) (*models.Notification, error) {
	n, err := b.notifications.Get(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, NotFound("notification %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, Forbidden("notification belongs to another user")
	}
	return n, nil
}

// SetRead flips the read flag of one of the user's notifications.
func (b *Inbox) SetRead(ctx context.Context, userID, id string, read bool) error {
	if _, err := b.owned(ctx, userID, id); err != nil {
		return err
	}
	return b.notifications.Patch(ctx, id, map[string]any{"isRead": read})
}

// SetReadMany flips the read flag of the given notifications, or of all the
// user's notifications when ids is empty. Ids of other users are ignored.
func (b *Inbox) SetReadMany(ctx context.Context, userID string, ids []string, read bool) error {
	targets, err := b.selectOwned(ctx, userID, ids)
	if err != nil {
		return err
	}
	for _, n := range targets {
		if n.IsRead == read {
			continue
		}
		if err := b.notifications.Patch(ctx, n.ID, map[string]any{"isRead": read}); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes one of the user's notifications.
func (b *Inbox) Delete(ctx context.Context, userID, id string) error {
	if _, err := b.owned(ctx, userID, id); err != nil {
		return err
	}
	_, err := b.notifications.Delete(ctx, id)
	return err
}

// DeleteMany removes the given notifications, or all of the user's when ids is empty.
func (b *Inbox) DeleteMany(ctx context.Context, userID string, ids []string) error {
	targets, err := b.selectOwned(ctx, userID, ids)
	if err != nil {
		return err
	}
	del := make([]string, 0, len(targets))
	for _, n := range targets {
		del = append(del, n.ID)
	}
	return b.notifications.DeleteMany(ctx, del)
}

func (b *Inbox) selectOwned(ctx context.Context, userID string, ids []string) ([]models.Notification, error) {
	mine, err := b.mine(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return mine, nil
	}
	out := []models.Notification{}
	for _, n := range mine {
		if contains(ids, n.ID) {
			out = append(out, n)
		}
	}
	return out, nil
}
