package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/scholarfolio/backend/internal/metrics"
	"github.com/anonto42/scholarfolio/backend/internal/models"
	"github.com/anonto42/scholarfolio/backend/internal/repositories"
	"github.com/rs/zerolog"
)

// Fan-out event names used in logs and metrics
const (
	eventComment     = "comment"
	eventReply       = "reply"
	eventPostLike    = "post_like"
	eventCommentLike = "comment_like"
)

// Notifier turns engagement events into notifications. It is best-effort:
// every failure is logged and swallowed, and nothing here can undo the
// engagement record that triggered it.
type Notifier struct {
	resolver      *WorkResolver
	users         repositories.Collection[models.UserProfile]
	comments      repositories.Collection[models.Comment]
	notifications repositories.Collection[models.Notification]
	log           zerolog.Logger
}

func NewNotifier(stores *repositories.Registry, resolver *WorkResolver, logger zerolog.Logger) *Notifier {
	return &Notifier{
		resolver:      resolver,
		users:         stores.Users,
		comments:      stores.Comments,
		notifications: stores.Notifications,
		log:           logger.With().Str("component", "notifier").Logger(),
	}
}

type actorInfo struct {
	id       string
	name     string
	photoURL string
}

func (n *Notifier) actorInfo(ctx context.Context, actorID string) actorInfo {
	info := actorInfo{id: actorID, name: "Someone"}
	if u, err := n.users.Get(ctx, actorID); err == nil {
		info.name = u.DisplayName()
		info.photoURL = u.PhotoURL
	}
	return info
}

// CommentAdded notifies the work owner, and for a reply also the parent
// comment's author. The two deliveries are independent and are not
// de-duplicated when they target the same user.
func (n *Notifier) CommentAdded(ctx context.Context, actorID string, comment models.Comment) {
	res, actor, ok := n.prepare(ctx, eventComment, actorID, comment.PostID)
	if !ok {
		return
	}
	n.guard(ctx, eventComment, comment.PostID, func(ctx context.Context) error {
		msg := fmt.Sprintf("%s commented on your %s \"%s\"", actor.name, res.ResourceType.Label(), res.Work.Title)
		return n.deliver(ctx, eventComment, res.OwnerID, actor, models.NotificationTypeComment, res, msg)
	})
	if !comment.IsReply() {
		return
	}
	n.guard(ctx, eventReply, comment.PostID, func(ctx context.Context) error {
		parent, err := n.comments.Get(ctx, comment.ParentID)
		if err != nil {
			return fmt.Errorf("load parent comment %s: %w", comment.ParentID, err)
		}
		msg := fmt.Sprintf("%s replied to your comment on the %s \"%s\"", actor.name, res.ResourceType.Label(), res.Work.Title)
		return n.deliver(ctx, eventReply, parent.UserID, actor, models.NotificationTypeComment, res, msg)
	})
}

// PostLiked notifies the owner of a liked work.
func (n *Notifier) PostLiked(ctx context.Context, actorID, postID string) {
	res, actor, ok := n.prepare(ctx, eventPostLike, actorID, postID)
	if !ok {
		return
	}
	n.guard(ctx, eventPostLike, postID, func(ctx context.Context) error {
		msg := fmt.Sprintf("%s liked your %s \"%s\"", actor.name, res.ResourceType.Label(), res.Work.Title)
		return n.deliver(ctx, eventPostLike, res.OwnerID, actor, models.NotificationTypeLike, res, msg)
	})
}

// CommentLiked notifies the author of a liked comment, carrying the metadata
// of the work the comment sits on.
func (n *Notifier) CommentLiked(ctx context.Context, actorID string, comment models.Comment) {
	res, actor, ok := n.prepare(ctx, eventCommentLike, actorID, comment.PostID)
	if !ok {
		return
	}
	n.guard(ctx, eventCommentLike, comment.PostID, func(ctx context.Context) error {
		msg := fmt.Sprintf("%s liked your comment on the %s \"%s\"", actor.name, res.ResourceType.Label(), res.Work.Title)
		return n.deliver(ctx, eventCommentLike, comment.UserID, actor, models.NotificationTypeLike, res, msg)
	})
}

// prepare resolves the resource and the actor. A resource that no longer
// resolves ends the fan-out silently.
func (n *Notifier) prepare(ctx context.Context, event, actorID, postID string) (res *ResolvedWork, actor actorInfo, ok bool) {
	n.guard(ctx, event, postID, func(ctx context.Context) error {
		resolved, err := n.resolver.Resolve(ctx, postID)
		if errors.Is(err, ErrNotFound) {
			metrics.Notifications.WithLabelValues(event, metrics.OutcomeUnresolved).Inc()
			n.log.Debug().Str("event", event).Str("resource_id", postID).Msg("resource not found, skipping notification")
			return nil
		}
		if err != nil {
			return err
		}
		res = resolved
		actor = n.actorInfo(ctx, actorID)
		ok = true
		return nil
	})
	return res, actor, ok
}

func (n *Notifier) deliver(ctx context.Context, event, recipientID string, actor actorInfo, t models.NotificationType, res *ResolvedWork, msg string) error {
	if recipientID == "" || recipientID == actor.id {
		metrics.Notifications.WithLabelValues(event, metrics.OutcomeSelf).Inc()
		return nil
	}
	notification := models.Notification{
		ID:            newID("ntf"),
		UserID:        recipientID,
		Type:          t,
		ActorID:       actor.id,
		ActorName:     actor.name,
		ActorPhotoURL: actor.photoURL,
		ResourceID:    res.Work.ID,
		ResourceType:  res.ResourceType,
		ResourceTitle: res.Work.Title,
		Message:       msg,
		CreatedAt:     nowMillis(),
	}
	if err := n.notifications.Create(ctx, &notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	metrics.Notifications.WithLabelValues(event, metrics.OutcomeCreated).Inc()
	return nil
}

// guard runs one fan-out step, logging (never returning) errors and panics.
func (n *Notifier) guard(ctx context.Context, event, resourceID string, step func(context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			metrics.Notifications.WithLabelValues(event, metrics.OutcomeFailed).Inc()
			n.log.Error().Interface("panic", r).Str("event", event).Str("resource_id", resourceID).Msg("notification fan-out panicked")
		}
	}()
	if err := step(ctx); err != nil {
		metrics.Notifications.WithLabelValues(event, metrics.OutcomeFailed).Inc()
		n.log.Error().Err(err).Str("event", event).Str("resource_id", resourceID).Msg("notification fan-out failed")
	}
}
