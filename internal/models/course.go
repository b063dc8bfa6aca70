package models

// Course groups student projects under a lecturer
type Course struct {
	ID                string   `json:"id" bson:"_id"`
	LecturerID        string   `json:"lecturerId" bson:"lecturerId"`
	Code              string   `json:"code,omitempty" bson:"code,omitempty"`
	Title             string   `json:"title" bson:"title"`
	Term              string   `json:"term,omitempty" bson:"term,omitempty"`
	StudentProjectIDs []string `json:"studentProjectIds" bson:"studentProjectIds"`
	CreatedAt         int64    `json:"createdAt" bson:"createdAt"`
}

func (c Course) EntityID() string { return c.ID }

type CreateCourseRequest struct {
	LecturerID string `json:"lecturerId"`
	Code       string `json:"code,omitempty" validate:"omitempty,max=20"`
	Title      string `json:"title" validate:"required,min=1,max=200"`
	Term       string `json:"term,omitempty" validate:"omitempty,max=40"`
}
