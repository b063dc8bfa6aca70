package models

// LikeSubject is what a like points at
type LikeSubject string

const (
	LikeSubjectPost    LikeSubject = "post"
	LikeSubjectComment LikeSubject = "comment"
)

// Like is a single user's like on a work ("post") or a comment. PostID holds
// the work id for post likes and the comment id for comment likes.
// At most one like exists per (SubjectType, PostID, UserID).
type Like struct {
	ID          string      `json:"id" gorm:"primaryKey;size:64"`
	PostID      string      `json:"postId" gorm:"index:idx_like_subject;size:64"`
	UserID      string      `json:"userId" gorm:"index;size:64"`
	SubjectType LikeSubject `json:"subjectType" gorm:"index:idx_like_subject;size:16;default:post"`
	CreatedAt   int64       `json:"createdAt" gorm:"autoCreateTime:milli"`
}

func (l Like) EntityID() string { return l.ID }

// Matches reports whether l is the like of userID on the given subject.
func (l Like) Matches(subject LikeSubject, subjectID, userID string) bool {
	return l.SubjectType == subject && l.PostID == subjectID && l.UserID == userID
}
