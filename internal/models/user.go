package models

import (
	"github.com/golang-jwt/jwt/v4"
)

// Role of a platform account
type Role string

const (
	RoleLecturer Role = "lecturer"
	RoleStudent  Role = "student"
)

// UserProfile is an account together with its denormalized reference lists.
// Lecturers own PublicationIDs, ProjectIDs, PortfolioItemIDs and CourseIDs;
// students own SavedItemIDs.
type UserProfile struct {
	ID          string `json:"id" bson:"_id"`
	Username    string `json:"username" bson:"username"`
	Email       string `json:"email" bson:"email"`
	Name        string `json:"name" bson:"name"`
	PhotoURL    string `json:"photoUrl,omitempty" bson:"photoUrl,omitempty"`
	Bio         string `json:"bio,omitempty" bson:"bio,omitempty"`
	Department  string `json:"department,omitempty" bson:"department,omitempty"`
	Role        Role   `json:"role" bson:"role"`
	Password    string `json:"-" bson:"password,omitempty"`
	FirebaseUID string `json:"firebaseUid,omitempty" bson:"firebaseUid,omitempty"`

	PublicationIDs   []string `json:"publicationIds" bson:"publicationIds"`
	ProjectIDs       []string `json:"projectIds" bson:"projectIds"`
	PortfolioItemIDs []string `json:"portfolioItemIds" bson:"portfolioItemIds"`
	CourseIDs        []string `json:"courseIds" bson:"courseIds"`
	SavedItemIDs     []string `json:"savedItemIds" bson:"savedItemIds"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
}

func (u UserProfile) EntityID() string { return u.ID }

// DisplayName falls back to the username when no name is set.
func (u UserProfile) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// UserCompact is the minimal author/actor info embedded in responses
type UserCompact struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoUrl,omitempty"`
	Role     Role   `json:"role"`
}

func (u UserProfile) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Name: u.DisplayName(), PhotoURL: u.PhotoURL, Role: u.Role}
}

type RegisterRequest struct {
	Username   string `json:"username" validate:"required,min=3,max=40,alphanum"`
	Email      string `json:"email" validate:"required,email"`
	Name       string `json:"name" validate:"required,min=2,max=80"`
	Password   string `json:"password" validate:"required,min=8"`
	Role       Role   `json:"role" validate:"required,oneof=lecturer student"`
	Department string `json:"department,omitempty" validate:"omitempty,max=120"`
}

type SignInRequest struct {
	Login    string `json:"login" validate:"required"` // username or email
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name       string `json:"name,omitempty" validate:"omitempty,min=2,max=80"`
	PhotoURL   string `json:"photoUrl,omitempty" validate:"omitempty,url"`
	Bio        string `json:"bio,omitempty" validate:"omitempty,max=1000"`
	Department string `json:"department,omitempty" validate:"omitempty,max=120"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}
