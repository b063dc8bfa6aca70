package services

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/scholarfolio/backend/internal/models"
	"github.com/anonto42/scholarfolio/backend/internal/repositories"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ctx       context.Context
	stores    *repositories.Registry
	resolver  *WorkResolver
	works     *WorkService
	courses   *CourseService
	ledger    *EngagementLedger
	saved     *SavedItems
	analytics *AnalyticsAggregator
	activity  *ActivityFeed
	inbox     *Inbox
	auth      *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).UnixMilli()
	previous := nowMillis
	nowMillis = func() int64 {
		clock++
		return clock
	}
	t.Cleanup(func() { nowMillis = previous })

	log := zerolog.Nop()
	stores := repositories.NewMemoryRegistry()
	resolver := NewWorkResolver(stores)
	references := NewReferenceMaintainer(stores, log)
	return &fixture{
		ctx:       context.Background(),
		stores:    stores,
		resolver:  resolver,
		works:     NewWorkService(stores, resolver, references, log),
		courses:   NewCourseService(stores, references, log),
		ledger:    NewEngagementLedger(stores, resolver, NewNotifier(stores, resolver, log), log),
		saved:     NewSavedItems(stores, resolver, log),
		analytics: NewAnalyticsAggregator(stores),
		activity:  NewActivityFeed(stores, resolver),
		inbox:     NewInbox(stores),
		auth:      NewAuthService(stores, "test-secret", time.Hour, log),
	}
}

func (f *fixture) user(t *testing.T, id string, role models.Role, name string) Actor {
	t.Helper()
	require.NoError(t, f.stores.Users.Create(f.ctx, &models.UserProfile{
		ID: id, Username: id, Email: id + "@uni.test", Name: name, Role: role,
	}))
	return Actor{ID: id, Role: role}
}

func (f *fixture) profile(t *testing.T, id string) *models.UserProfile {
	t.Helper()
	u, err := f.stores.Users.Get(f.ctx, id)
	require.NoError(t, err)
	return u
}

func (f *fixture) publication(t *testing.T, owner Actor, title string) *models.Publication {
	t.Helper()
	pub, err := f.works.CreatePublication(f.ctx, owner, models.CreatePublicationRequest{
		CreateWorkRequest: models.CreateWorkRequest{LecturerID: owner.ID, Title: title},
	})
	require.NoError(t, err)
	return pub
}

func (f *fixture) notificationsFor(t *testing.T, userID string) []models.Notification {
	t.Helper()
	list, _, err := f.inbox.List(f.ctx, userID, 1, 100)
	require.NoError(t, err)
	return list
}
