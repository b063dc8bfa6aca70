package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/anonto42/scholarfolio/backend/internal/models"
	"github.com/anonto42/scholarfolio/backend/internal/repositories"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeNotifiesOwnerOnce(t *testing.T) {
	f := newFixture(t)
	l1 := f.user(t, "L1", models.RoleLecturer, "Lena")
	s1 := f.user(t, "S1", models.RoleStudent, "Sam Student")
	p1 := f.publication(t, l1, "Deep Nets")

	_, err := f.ledger.AddLike(f.ctx, s1, p1.ID)
	require.NoError(t, err)

	_, err = f.ledger.AddLike(f.ctx, s1, p1.ID)
	assert.ErrorIs(t, err, ErrConflict)

	count, err := f.ledger.LikeCount(f.ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	inbox := f.notificationsFor(t, l1.ID)
	require.Len(t, inbox, 1)
	n := inbox[0]
	assert.Equal(t, models.NotificationTypeLike, n.Type)
	assert.Equal(t, s1.ID, n.ActorID)
	assert.Equal(t, "Sam Student", n.ActorName)
	assert.Equal(t, p1.ID, n.ResourceID)
	assert.Equal(t, models.WorkTypePublication, n.ResourceType)
	assert.Equal(t, "Deep Nets", n.ResourceTitle)
	assert.Equal(t, `Sam Student liked your publication "Deep Nets"`, n.Message)
	assert.False(t, n.IsRead)
}

func TestSelfEngagementIsNotNotified(t *testing.T) {
	f := newFixture(t)
	l1 := f.user(t, "L1", models.RoleLecturer, "Lena")
	p1 := f.publication(t, l1, "Deep Nets")

	_, err := f.ledger.AddLike(f.ctx, l1, p1.ID)
	require.NoError(t, err)
	_, err = f.ledger.AddComment(f.ctx, l1, p1.ID, "my own note", "")
	require.NoError(t, err)

	assert.Empty(t, f.notificationsFor(t, l1.ID))
}

func TestLikeOnMissingWork(t *testing.T) {
	f := newFixture(t)
	s1 := f.user(t, "S1", models.RoleStudent, "Sam")

	_, err := f.ledger.AddLike(f.ctx, s1, "pub_missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.ledger.AddComment(f.ctx, s1, "nowhere", "hi", "")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.ledger.RemoveLike(f.ctx, s1, "nowhere"), ErrNotFound)
}

func TestUnlikeWork(t *testing.T) {
	f := newFixture(t)
	l1 := f.user(t, "L1", models.RoleLecturer, "Lena")
	s1 := f.user(t, "S1", models.RoleStudent, "Sam")
	p1 := f.publication(t, l1, "Deep Nets")

	_, err := f.ledger.AddLike(f.ctx, s1, p1.ID)
	require.NoError(t, err)
	liked, err := f.ledger.HasLiked(f.ctx, p1.ID, s1.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	require.NoError(t, f.ledger.RemoveLike(f.ctx, s1, p1.ID))
	liked, err = f.ledger.HasLiked(f.ctx, p1.ID, s1.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.ErrorIs(t, f.ledger.RemoveLike(f.ctx, s1, p1.ID), ErrNotFound)
}

func TestReplyNotifiesOwnerAndParentAuthor(t *testing.T) {
	f := newFixture(t)
	l1 := f.user(t, "L1", models.RoleLecturer, "Lena")
	s1 := f.user(t, "S1", models.RoleStudent, "Sam")
	s2 := f.user(t, "S2", models.RoleStudent, "Sara")
	p1 := f.publication(t, l1, "Deep Nets")

	parent, err := f.ledger.AddComment(f.ctx, s1, p1.ID, "Great paper", "")
	require.NoError(t, err)
	require.Len(t, f.notificationsFor(t, l1.ID), 1)

	reply, err := f.ledger.AddComment(f.ctx, s2, p1.ID, "Agreed", parent.ID)
	require.NoError(t, err)
	assert.True(t, reply.IsReply())

	ownerInbox := f.notificationsFor(t, l1.ID)
	require.Len(t, ownerInbox, 2)
	assert.Equal(t, `Sara commented on your publication "Deep Nets"`, ownerInbox[0].Message)

	parentInbox := f.notificationsFor(t, s1.ID)
	require.Len(t, parentInbox, 1)
	assert.Equal(t, models.NotificationTypeComment, parentInbox[0].Type)
	assert.Equal(t, s2.ID, parentInbox[0].ActorID)
	assert.Equal(t, `Sara replied to your comment on the publication "Deep Nets"`, parentInbox[0].Message)
}

func TestReplyToOwnersCommentDeliversTwice(t *testing.T) {
	f := newFixture(t)
	l1 := f.user(t, "L1", models.RoleLecturer, "Lena")
	s1 := f.user(t, "S1", models.RoleStudent, "Sam")
	p1 := f.publication(t, l1, "Deep Nets")

	parent, err := f.ledger.AddComment(f.ctx, l1, p1.ID, "Questions welcome", "")
	require.NoError(t, err)
	_, err = f.ledger.AddComment(f.ctx, s1, p1.ID, "One question", parent.ID)
	require.NoError(t, err)

	assert.Len(t, f.notificationsFor(t, l1.ID), 2)
}

func TestReplyToMissingParent(t *testing.T) {
	f := newFixture(t)
	l1 := f.user(t, "L1", models.RoleLecturer, "Lena")
	s1 := f.user(t, "S1", models.RoleStudent, "Sam")
	p1 := f.publication(t, l1, "Deep Nets")

	_, err := f.ledger.AddComment(f.ctx, s1, p1.ID, "reply", "cmt_missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.ledger.AddComment(f.ctx, s1, p1.ID, "   ", "")
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestCommentLikeNotifiesCommentAuthor(t *testing.T) {
	f := newFixture(t)
	l1 := f.user(t, "L1", models.RoleLecturer, "Lena")
	s1 := f.user(t, "S1", models.RoleStudent, "Sam")
	s2 := f.user(t, "S2", models.RoleStudent, "Sara")
	p1 := f.publication(t, l1, "Deep Nets")

	comment, err := f.ledger.AddComment(f.ctx, s1, p1.ID, "Nice", "")
	require.NoError(t, err)

	_, err = f.ledger.LikeComment(f.ctx, s2, comment.ID)
	require.NoError(t, err)
	_, err = f.ledger.LikeComment(f.ctx, s2, comment.ID)
	assert.ErrorIs(t, err, ErrConflict)

	inbox := f.notificationsFor(t, s1.ID)
	require.Len(t, inbox, 1)
	assert.Equal(t, models.NotificationTypeLike, inbox[0].Type)
	assert.Equal(t, p1.ID, inbox[0].ResourceID)
	assert.Equal(t, `Sara liked your comment on the publication "Deep Nets"`, inbox[0].Message)

	comments, err := f.ledger.ListComments(f.ctx, s1.ID, p1.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, []string{s2.ID}, comments[0].LikeIDs)
	assert.Equal(t, "Sam", comments[0].Author.Name)

	require.NoError(t, f.ledger.UnlikeComment(f.ctx, s2, comment.ID))
	comments, err = f.ledger.ListComments(f.ctx, s1.ID, p1.ID)
	require.NoError(t, err)
	assert.Empty(t, comments[0].LikeIDs)
}

func TestUpdateComment(t *testing.T) {
	f := newFixture(t)
	l1 := f.user(t, "L1", models.RoleLecturer, "Lena")
	s1 := f.user(t, "S1", models.RoleStudent, "Sam")
	p1 := f.publication(t, l1, "Deep Nets")
	comment, err := f.ledger.AddComment(f.ctx, s1, p1.ID, "first", "")
	require.NoError(t, err)

	_, err = f.ledger.UpdateComment(f.ctx, l1, comment.ID, "edited by someone else")
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := f.ledger.UpdateComment(f.ctx, s1, comment.ID, "second")
	require.NoError(t, err)
	assert.Equal(t, "second", updated.Content)
}

func TestDeleteCommentAuthorization(t *testing.T) {
	f := newFixture(t)
	l1 := f.user(t, "L1", models.RoleLecturer, "Lena")
	l2 := f.user(t, "L2", models.RoleLecturer, "Lars")
	s1 := f.user(t, "S1", models.RoleStudent, "Sam")
	s2 := f.user(t, "S2", models.RoleStudent, "Sara")
	p1 := f.publication(t, l1, "Deep Nets")

	byS1, err := f.ledger.AddComment(f.ctx, s1, p1.ID, "one", "")
	require.NoError(t, err)
	_, err = f.ledger.LikeComment(f.ctx, s2, byS1.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, f.ledger.DeleteComment(f.ctx, s2, byS1.ID), ErrForbidden)
	assert.ErrorIs(t, f.ledger.DeleteComment(f.ctx, l2, byS1.ID), ErrForbidden)
	require.NoError(t, f.ledger.DeleteComment(f.ctx, l1, byS1.ID), "work owner may moderate")

	likes, err := f.stores.Likes.List(f.ctx)
	require.NoError(t, err)
	for _, like := range likes {
		assert.NotEqual(t, byS1.ID, like.PostID, "comment likes are removed with the comment")
	}

	bySelf, err := f.ledger.AddComment(f.ctx, s1, p1.ID, "two", "")
	require.NoError(t, err)
	require.NoError(t, f.ledger.DeleteComment(f.ctx, s1, bySelf.ID))
	assert.ErrorIs(t, f.ledger.DeleteComment(f.ctx, s1, bySelf.ID), ErrNotFound)
}

func TestCommentOnStudentProjectIsNotOwnerDeletable(t *testing.T) {
	f := newFixture(t)
	l1 := f.user(t, "L1", models.RoleLecturer, "Lena")
	s1 := f.user(t, "S1", models.RoleStudent, "Sam")
	course, err := f.courses.CreateCourse(f.ctx, l1, models.CreateCourseRequest{LecturerID: l1.ID, Title: "Intro"})
	require.NoError(t, err)
	project, err := f.works.CreateStudentProject(f.ctx, l1, models.CreateStudentProjectRequest{
		CreateWorkRequest: models.CreateWorkRequest{Title: "Robot"},
		CourseID:          course.ID,
	})
	require.NoError(t, err)

	comment, err := f.ledger.AddComment(f.ctx, s1, project.ID, "cool robot", "")
	require.NoError(t, err)
	inbox := f.notificationsFor(t, l1.ID)
	require.Len(t, inbox, 1)
	assert.Equal(t, `Sam commented on your student project "Robot"`, inbox[0].Message)

	assert.ErrorIs(t, f.ledger.DeleteComment(f.ctx, l1, comment.ID), ErrForbidden)
}

func TestNotificationSkippedWhenWorkVanishes(t *testing.T) {
	f := newFixture(t)
	l1 := f.user(t, "L1", models.RoleLecturer, "Lena")
	s1 := f.user(t, "S1", models.RoleStudent, "Sam")
	p1 := f.publication(t, l1, "Deep Nets")
	comment, err := f.ledger.AddComment(f.ctx, s1, p1.ID, "hello", "")
	require.NoError(t, err)
	require.NoError(t, f.works.DeleteWork(f.ctx, l1, p1.ID, ""))

	_, err = f.ledger.LikeComment(f.ctx, l1, comment.ID)
	require.NoError(t, err, "the like is recorded even though the fan-out cannot resolve the work")
	assert.Empty(t, f.notificationsFor(t, s1.ID))
}

func TestLikeRecordShape(t *testing.T) {
	f := newFixture(t)
	l1 := f.user(t, "L1", models.RoleLecturer, "Lena")
	s1 := f.user(t, "S1", models.RoleStudent, "Sam")
	p1 := f.publication(t, l1, "Deep Nets")

	like, err := f.ledger.AddLike(f.ctx, s1, p1.ID)
	require.NoError(t, err)
	raw, err := json.Marshal(like)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, p1.ID, fields["postId"])
	assert.Equal(t, s1.ID, fields["userId"])
	assert.Equal(t, "post", fields["subjectType"])
}

func TestPrivateWorkEngagementIsHidden(t *testing.T) {
	f := newFixture(t)
	l1 := f.user(t, "L1", models.RoleLecturer, "Lena")
	s1 := f.user(t, "S1", models.RoleStudent, "Sam")
	secret, err := f.works.CreatePublication(f.ctx, l1, models.CreatePublicationRequest{
		CreateWorkRequest: models.CreateWorkRequest{LecturerID: l1.ID, Title: "Secret", Visibility: models.VisibilityPrivate},
	})
	require.NoError(t, err)

	_, err = f.ledger.AddLike(f.ctx, s1, secret.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.ledger.AddComment(f.ctx, s1, secret.ID, "peek", "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.ledger.ListComments(f.ctx, s1.ID, secret.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	note, err := f.ledger.AddComment(f.ctx, l1, secret.ID, "draft note", "")
	require.NoError(t, err)
	_, err = f.ledger.LikeComment(f.ctx, s1, note.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	comments, err := f.ledger.ListComments(f.ctx, l1.ID, secret.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
	_, err = f.ledger.AddLike(f.ctx, l1, secret.ID)
	assert.NoError(t, err)
}

// brokenNotifications fails every notification write, by error or by panic.
type brokenNotifications struct {
	repositories.Collection[models.Notification]
	panics bool
}

func (b brokenNotifications) Create(context.Context, *models.Notification) error {
	if b.panics {
		panic("notification store unavailable")
	}
	return errors.New("notification store unavailable")
}

func TestNotificationFailureKeepsEngagement(t *testing.T) {
	for _, tc := range []struct {
		name   string
		panics bool
	}{
		{name: "error"},
		{name: "panic", panics: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			l1 := f.user(t, "L1", models.RoleLecturer, "Lena")
			s1 := f.user(t, "S1", models.RoleStudent, "Sam")
			s2 := f.user(t, "S2", models.RoleStudent, "Sara")
			p1 := f.publication(t, l1, "Deep Nets")

			broken := *f.stores
			broken.Notifications = brokenNotifications{Collection: f.stores.Notifications, panics: tc.panics}
			log := zerolog.Nop()
			ledger := NewEngagementLedger(&broken, f.resolver, NewNotifier(&broken, f.resolver, log), log)

			comment, err := ledger.AddComment(f.ctx, s1, p1.ID, "Nice", "")
			require.NoError(t, err)
			_, err = ledger.AddComment(f.ctx, s2, p1.ID, "Agreed", comment.ID)
			require.NoError(t, err)
			_, err = ledger.AddLike(f.ctx, s1, p1.ID)
			require.NoError(t, err)
			_, err = ledger.LikeComment(f.ctx, s2, comment.ID)
			require.NoError(t, err)

			comments, err := ledger.ListComments(f.ctx, s1.ID, p1.ID)
			require.NoError(t, err)
			require.Len(t, comments, 2)
			assert.Equal(t, []string{s2.ID}, comments[0].LikeIDs)
			liked, err := ledger.HasLiked(f.ctx, p1.ID, s1.ID)
			require.NoError(t, err)
			assert.True(t, liked)

			assert.Empty(t, f.notificationsFor(t, l1.ID))
			assert.Empty(t, f.notificationsFor(t, s1.ID))
		})
	}
}
