package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/anonto42/scholarfolio/backend/internal/models"
	"github.com/anonto42/scholarfolio/backend/internal/repositories"
	"github.com/rs/zerolog"
)

// EngagementLedger records comments and likes. Every write is persisted before
// the notifier runs.
//
// Likes on works and on comments share one record shape keyed by
// (subjectType, postId, userId). Uniqueness is a read-then-write check
// with no lock, so two concurrent likes can both pass it.
type EngagementLedger struct {
	stores   *repositories.Registry
	resolver *WorkResolver
	notifier *Notifier
	log      zerolog.Logger
}

func NewEngagementLedger(stores *repositories.Registry, resolver *WorkResolver, notifier *Notifier, logger zerolog.Logger) *EngagementLedger {
	return &EngagementLedger{
		stores:   stores,
		resolver: resolver,
		notifier: notifier,
		log:      logger.With().Str("component", "engagement").Logger(),
	}
}

// AddComment stores a comment (or a reply when parentID is set) on a work.
func (l *EngagementLedger) AddComment(ctx context.Context, actor Actor, postID, content, parentID string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, BadRequest("comment content is required")
	}
	if _, err := l.resolver.ResolveVisible(ctx, postID, actor.ID); err != nil {
		return nil, err
	}
	if parentID != "" {
		if _, err := l.getComment(ctx, parentID); err != nil {
			return nil, err
		}
	}
	now := nowMillis()
	comment := models.Comment{
		ID:        newID("cmt"),
		PostID:    postID,
		UserID:    actor.ID,
		Content:   content,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
		LikeIDs:   []string{},
	}
	if err := l.stores.Comments.Create(ctx, &comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	l.notifier.CommentAdded(ctx, actor.ID, comment)
	return &comment, nil
}

// checkVisible reports NotFound when postID is a private work the viewer does
// not own. Comments whose work is gone stay reachable.
func (l *EngagementLedger) checkVisible(ctx context.Context, postID, viewerID string) error {
	_, err := l.resolver.ResolveVisible(ctx, postID, viewerID)
	if err == nil || (errors.Is(err, ErrNotFound) && l.workMissing(ctx, postID)) {
		return nil
	}
	return err
}

func (l *EngagementLedger) workMissing(ctx context.Context, postID string) bool {
	_, err := l.resolver.Resolve(ctx, postID)
	return errors.Is(err, ErrNotFound)
}

func (l *EngagementLedger) getComment(ctx context.Context, id string) (*models.Comment, error) {
	comment, err := l.stores.Comments.Get(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, NotFound("comment %s not found", id)
	}
	return comment, err
}

// ListComments returns a work's comments oldest first, each with its likeIds
// and author.
func (l *EngagementLedger) ListComments(ctx context.Context, viewerID, postID string) ([]models.CommentWithAuthor, error) {
	if err := l.checkVisible(ctx, postID, viewerID); err != nil {
		return nil, err
	}
	comments, err := l.stores.Comments.List(ctx)
	if err != nil {
		return nil, err
	}
	likes, err := l.stores.Likes.List(ctx)
	if err != nil {
		return nil, err
	}
	likers := make(map[string][]string)
	for _, like := range likes {
		if like.SubjectType == models.LikeSubjectComment {
			likers[like.PostID] = append(likers[like.PostID], like.UserID)
		}
	}

	authors := make(map[string]models.UserCompact)
	out := []models.CommentWithAuthor{}
	for _, c := range comments {
		if c.PostID != postID {
			continue
		}
		c.LikeIDs = likers[c.ID]
		if c.LikeIDs == nil {
			c.LikeIDs = []string{}
		}
		author, ok := authors[c.UserID]
		if !ok {
			author = models.UserCompact{ID: c.UserID}
			if u, err := l.stores.Users.Get(ctx, c.UserID); err == nil {
				author = u.ToCompact()
			}
			authors[c.UserID] = author
		}
		out = append(out, models.CommentWithAuthor{Comment: c, Author: author})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

// UpdateComment edits the content of the actor's own comment.
func (l *EngagementLedger) UpdateComment(ctx context.Context, actor Actor, id, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, BadRequest("comment content is required")
	}
	comment, err := l.getComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.UserID != actor.ID {
		return nil, Forbidden("you are not authorized to update this comment")
	}
	err = l.stores.Comments.Mutate(ctx, id, func(c *models.Comment) error {
		c.Content = content
		c.UpdatedAt = nowMillis()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return l.getComment(ctx, id)
}

// DeleteComment removes a comment and its likes. The author may always delete;
// a lecturer may delete comments on their own publications, research projects
// and portfolio items. Comments on student projects are not covered by the
// owner path.
func (l *EngagementLedger) DeleteComment(ctx context.Context, actor Actor, id string) error {
	comment, err := l.getComment(ctx, id)
	if err != nil {
		return err
	}
	if comment.UserID != actor.ID && !l.ownsCommentedWork(ctx, actor, comment.PostID) {
		return Forbidden("you are not authorized to delete this comment")
	}
	if _, err := l.stores.Comments.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete comment %s: %w", id, err)
	}
	likes, err := l.findLikes(ctx, models.LikeSubjectComment, id)
	if err != nil {
		l.log.Error().Err(err).Str("comment_id", id).Msg("list comment likes for cleanup")
		return nil
	}
	if err := l.stores.Likes.DeleteMany(ctx, likes); err != nil {
		l.log.Error().Err(err).Str("comment_id", id).Msg("delete comment likes")
	}
	return nil
}

func (l *EngagementLedger) ownsCommentedWork(ctx context.Context, actor Actor, postID string) bool {
	if !actor.IsLecturer() {
		return false
	}
	resolved, err := l.resolver.ResolveAmong(ctx, postID, models.PerformanceWorkTypes...)
	if err != nil {
		return false
	}
	return resolved.OwnerID == actor.ID
}

func (l *EngagementLedger) findLike(ctx context.Context, subject models.LikeSubject, subjectID, userID string) (*models.Like, error) {
	likes, err := l.stores.Likes.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, like := range likes {
		if like.Matches(subject, subjectID, userID) {
			return &like, nil
		}
	}
	return nil, nil
}

func (l *EngagementLedger) findLikes(ctx context.Context, subject models.LikeSubject, subjectID string) ([]string, error) {
	likes, err := l.stores.Likes.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := []string{}
	for _, like := range likes {
		if like.SubjectType == subject && like.PostID == subjectID {
			ids = append(ids, like.ID)
		}
	}
	return ids, nil
}

func (l *EngagementLedger) addLike(ctx context.Context, subject models.LikeSubject, subjectID, userID string) (*models.Like, error) {
	existing, err := l.findLike(ctx, subject, subjectID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, Conflict("%s already liked by this user", subject)
	}
	like := models.Like{
		ID:          newID("like"),
		SubjectType: subject,
		PostID:      subjectID,
		UserID:      userID,
		CreatedAt:   nowMillis(),
	}
	if err := l.stores.Likes.Create(ctx, &like); err != nil {
		return nil, fmt.Errorf("create like: %w", err)
	}
	return &like, nil
}

func (l *EngagementLedger) removeLike(ctx context.Context, subject models.LikeSubject, subjectID, userID string) error {
	existing, err := l.findLike(ctx, subject, subjectID, userID)
	if err != nil {
		return err
	}
	if existing == nil {
		return NotFound("like not found")
	}
	if _, err := l.stores.Likes.Delete(ctx, existing.ID); err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	return nil
}

// AddLike likes a work. A second like from the same user is a Conflict.
func (l *EngagementLedger) AddLike(ctx context.Context, actor Actor, postID string) (*models.Like, error) {
	if _, err := l.resolver.ResolveVisible(ctx, postID, actor.ID); err != nil {
		return nil, err
	}
	like, err := l.addLike(ctx, models.LikeSubjectPost, postID, actor.ID)
	if err != nil {
		return nil, err
	}
	l.notifier.PostLiked(ctx, actor.ID, postID)
	return like, nil
}

// RemoveLike unlikes a work, reporting NotFound when there is no like.
func (l *EngagementLedger) RemoveLike(ctx context.Context, actor Actor, postID string) error {
	return l.removeLike(ctx, models.LikeSubjectPost, postID, actor.ID)
}

// LikeCount counts the likes on a work.
func (l *EngagementLedger) LikeCount(ctx context.Context, postID string) (int, error) {
	ids, err := l.findLikes(ctx, models.LikeSubjectPost, postID)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// HasLiked reports whether userID likes the work.
func (l *EngagementLedger) HasLiked(ctx context.Context, postID, userID string) (bool, error) {
	like, err := l.findLike(ctx, models.LikeSubjectPost, postID, userID)
	if err != nil {
		return false, err
	}
	return like != nil, nil
}

// LikeComment likes a comment and notifies its author.
func (l *EngagementLedger) LikeComment(ctx context.Context, actor Actor, commentID string) (*models.Like, error) {
	comment, err := l.getComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := l.checkVisible(ctx, comment.PostID, actor.ID); err != nil {
		return nil, err
	}
	like, err := l.addLike(ctx, models.LikeSubjectComment, commentID, actor.ID)
	if err != nil {
		return nil, err
	}
	l.notifier.CommentLiked(ctx, actor.ID, *comment)
	return like, nil
}

// UnlikeComment removes the actor's like from a comment.
func (l *EngagementLedger) UnlikeComment(ctx context.Context, actor Actor, commentID string) error {
	if _, err := l.getComment(ctx, commentID); err != nil {
		return err
	}
	return l.removeLike(ctx, models.LikeSubjectComment, commentID, actor.ID)
}
