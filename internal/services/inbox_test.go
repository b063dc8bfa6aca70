package services

import (
	"testing"
	"time"

	"github.com/anonto42/scholarfolio/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNotifications(t *testing.T, f *fixture, userID string, createdAt ...int64) []string {
	t.Helper()
	ids := make([]string, 0, len(createdAt))
	for _, ts := range createdAt {
		n := models.Notification{ID: newID("ntf"), UserID: userID, Type: models.NotificationTypeSystem, CreatedAt: ts}
		require.NoError(t, f.stores.Notifications.Create(f.ctx, &n))
		ids = append(ids, n.ID)
	}
	return ids
}

func TestInboxPagingAndReadState(t *testing.T) {
	f := newFixture(t)
	ids := seedNotifications(t, f, "U1", 1, 2, 3, 4, 5)
	seedNotifications(t, f, "U2", 6)

	page, total, err := f.inbox.List(f.ctx, "U1", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, ids[4], page[0].ID)

	page, _, err = f.inbox.List(f.ctx, "U1", 3, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[0], page[0].ID)

	page, _, err = f.inbox.List(f.ctx, "U1", 9, 2)
	require.NoError(t, err)
	assert.Empty(t, page)

	page, total, err = f.inbox.List(f.ctx, "U1", 1<<62, 20)
	require.NoError(t, err)
	assert.Empty(t, page)
	assert.Equal(t, 5, total)

	page, _, err = f.inbox.List(f.ctx, "U1", 2, 1<<62)
	require.NoError(t, err)
	assert.Empty(t, page)

	unread, err := f.inbox.UnreadCount(f.ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, 5, unread)

	require.NoError(t, f.inbox.SetRead(f.ctx, "U1", ids[0], true))
	assert.ErrorIs(t, f.inbox.SetRead(f.ctx, "U2", ids[1], true), ErrForbidden)
	assert.ErrorIs(t, f.inbox.SetRead(f.ctx, "U1", "ntf_missing", true), ErrNotFound)

	unread, err = f.inbox.UnreadCount(f.ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, 4, unread)

	require.NoError(t, f.inbox.SetReadMany(f.ctx, "U1", nil, true))
	unread, err = f.inbox.UnreadCount(f.ctx, "U1")
	require.NoError(t, err)
	assert.Zero(t, unread)

	require.NoError(t, f.inbox.SetReadMany(f.ctx, "U1", []string{ids[2]}, false))
	unread, err = f.inbox.UnreadCount(f.ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	unread, err = f.inbox.UnreadCount(f.ctx, "U2")
	require.NoError(t, err)
	assert.Equal(t, 1, unread, "other inboxes are untouched")
}

func TestInboxDelete(t *testing.T) {
	f := newFixture(t)
	ids := seedNotifications(t, f, "U1", 1, 2, 3)
	theirs := seedNotifications(t, f, "U2", 4)

	assert.ErrorIs(t, f.inbox.Delete(f.ctx, "U1", theirs[0]), ErrForbidden)
	require.NoError(t, f.inbox.Delete(f.ctx, "U1", ids[0]))

	require.NoError(t, f.inbox.DeleteMany(f.ctx, "U1", []string{ids[1], theirs[0]}))
	_, total, err := f.inbox.List(f.ctx, "U1", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	_, total, err = f.inbox.List(f.ctx, "U2", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	require.NoError(t, f.inbox.DeleteMany(f.ctx, "U1", nil))
	_, total, err = f.inbox.List(f.ctx, "U1", 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestInboxGrouped(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	seedNotifications(t, f, "U1",
		now.Add(-time.Hour).UnixMilli(),
		now.Add(-20*time.Hour).UnixMilli(),
		now.AddDate(0, 0, -3).UnixMilli(),
		now.AddDate(0, 0, -30).UnixMilli(),
	)

	g, err := f.inbox.Grouped(f.ctx, "U1", now)
	require.NoError(t, err)
	assert.Len(t, g.Today, 1)
	assert.Len(t, g.Yesterday, 1)
	assert.Len(t, g.ThisWeek, 1)
	assert.Len(t, g.Older, 1)
}
