package models

// Comment is left on any academic work. ParentID points at another comment
// on the same work when the comment is a reply.
type Comment struct {
	ID        string `json:"id" gorm:"primaryKey;size:64"`
	PostID    string `json:"postId" gorm:"index;size:64"`
	UserID    string `json:"userId" gorm:"index;size:64"`
	Content   string `json:"content" gorm:"type:text"`
	ParentID  string `json:"parentId,omitempty" gorm:"index;size:64"`
	CreatedAt int64  `json:"createdAt" gorm:"autoCreateTime:milli"`
	UpdatedAt int64  `json:"updatedAt" gorm:"autoUpdateTime:milli"`

	// LikeIDs is derived from comment likes on read, never stored.
	LikeIDs []string `json:"likeIds" gorm:"-"`
}

func (c Comment) EntityID() string { return c.ID }

// IsReply reports whether the comment answers another comment.
func (c Comment) IsReply() bool { return c.ParentID != "" }

// CommentWithAuthor is a comment enriched with its author for list responses
type CommentWithAuthor struct {
	Comment
	Author UserCompact `json:"author"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content  string `json:"content" validate:"required,min=1,max=2000"`
	ParentID string `json:"parentId,omitempty"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}
