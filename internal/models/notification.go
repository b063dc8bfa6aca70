package models

// NotificationType is the kind of event a notification reports
type NotificationType string

const (
	NotificationTypeComment NotificationType = "comment"
	NotificationTypeLike    NotificationType = "like"
	NotificationTypeSystem  NotificationType = "system"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID            string           `json:"id" gorm:"primaryKey;size:64"`
	UserID        string           `json:"userId" gorm:"index;size:64"` // recipient
	Type          NotificationType `json:"type" gorm:"size:20;index"`
	ActorID       string           `json:"actorId" gorm:"size:64"`
	ActorName     string           `json:"actorName"`
	ActorPhotoURL string           `json:"actorPhotoUrl,omitempty"`
	ResourceID    string           `json:"resourceId" gorm:"size:64"`
	ResourceType  WorkType         `json:"resourceType" gorm:"size:32"`
	ResourceTitle string           `json:"resourceTitle"`
	Message       string           `json:"message"`
	IsRead        bool             `json:"isRead" gorm:"default:false;index"`
	CreatedAt     int64            `json:"createdAt" gorm:"autoCreateTime:milli;index"`
}

func (n Notification) EntityID() string { return n.ID }

// SetReadRequest toggles the read flag of one notification
type SetReadRequest struct {
	IsRead bool `json:"isRead"`
}

// BulkNotificationRequest targets several notifications at once; empty IDs means all.
type BulkNotificationRequest struct {
	IDs []string `json:"ids,omitempty"`
}
