package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anonto42/scholarfolio/backend/internal/models"
	"github.com/anonto42/scholarfolio/backend/internal/repositories"
	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// FirebaseIdentity is what a verified Firebase ID token tells us about the caller
type FirebaseIdentity struct {
	UID   string
	Email string
	Name  string
}

// IdentityVerifier checks Firebase ID tokens
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*FirebaseIdentity, error)
}

// AuthResult is returned by every successful sign-in path
type AuthResult struct {
	Token string              `json:"token"`
	User  *models.UserProfile `json:"user"`
}

// AuthService manages accounts and issues local JWTs
type AuthService struct {
	users  repositories.Collection[models.UserProfile]
	secret []byte
	ttl    time.Duration
	log    zerolog.Logger
}

func NewAuthService(stores *repositories.Registry, secret string, ttl time.Duration, logger zerolog.Logger) *AuthService {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &AuthService{
		users:  stores.Users,
		secret: []byte(secret),
		ttl:    ttl,
		log:    logger.With().Str("component", "auth").Logger(),
	}
}

func (s *AuthService) findUser(ctx context.Context, match func(models.UserProfile) bool) (*models.UserProfile, error) {
	all, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if match(all[i]) {
			return &all[i], nil
		}
	}
	return nil, nil
}

// Register creates a local account with a bcrypt password hash.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := s.findUser(ctx, func(u models.UserProfile) bool {
		return strings.EqualFold(u.Username, req.Username) || strings.EqualFold(u.Email, email)
	})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, Conflict("username or email already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.UserProfile{
		ID:         newID("usr"),
		Username:   req.Username,
		Email:      email,
		Name:       req.Name,
		Department: req.Department,
		Role:       req.Role,
		Password:   string(hashed),
		CreatedAt:  nowMillis(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return s.result(user)
}

// SignIn authenticates by username or email.
func (s *AuthService) SignIn(ctx context.Context, login, password string) (*AuthResult, error) {
	login = strings.TrimSpace(login)
	user, err := s.findUser(ctx, func(u models.UserProfile) bool {
		return strings.EqualFold(u.Username, login) || strings.EqualFold(u.Email, login)
	})
	if err != nil {
		return nil, err
	}
	if user == nil || user.Password == "" {
		return nil, Unauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, Unauthorized("invalid credentials")
	}
	return s.result(user)
}

// FirebaseLogin exchanges a verified Firebase identity for a local JWT.
// Unknown identities are linked by email, or registered as students.
func (s *AuthService) FirebaseLogin(ctx context.Context, identity FirebaseIdentity) (*AuthResult, error) {
	if identity.UID == "" {
		return nil, Unauthorized("firebase identity has no uid")
	}
	email := strings.ToLower(identity.Email)

	user, err := s.findUser(ctx, func(u models.UserProfile) bool { return u.FirebaseUID == identity.UID })
	if err != nil {
		return nil, err
	}
	if user == nil && email != "" {
		user, err = s.findUser(ctx, func(u models.UserProfile) bool { return strings.EqualFold(u.Email, email) })
		if err != nil {
			return nil, err
		}
		if user != nil {
			if err := s.users.Patch(ctx, user.ID, map[string]any{"firebaseUid": identity.UID}); err != nil {
				return nil, err
			}
			user.FirebaseUID = identity.UID
		}
	}
	if user == nil {
		user = &models.UserProfile{
			ID:          newID("usr"),
			Username:    identity.UID,
			Email:       email,
			Name:        identity.Name,
			Role:        models.RoleStudent,
			FirebaseUID: identity.UID,
			CreatedAt:   nowMillis(),
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		s.log.Info().Str("user_id", user.ID).Msg("user created from firebase identity")
	}
	return s.result(user)
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	u, err := s.users.Get(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, NotFound("user %s not found", userID)
	}
	return u, err
}

// UpdateProfile sets the non-empty fields of req.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.UserProfile, error) {
	fields := map[string]any{}
	if req.Name != "" {
		fields["name"] = req.Name
	}
	if req.PhotoURL != "" {
		fields["photoUrl"] = req.PhotoURL
	}
	if req.Bio != "" {
		fields["bio"] = req.Bio
	}
	if req.Department != "" {
		fields["department"] = req.Department
	}
	if len(fields) > 0 {
		err := s.users.Patch(ctx, userID, fields)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NotFound("user %s not found", userID)
		}
		if err != nil {
			return nil, err
		}
	}
	return s.GetProfile(ctx, userID)
}

// IssueToken signs an HS256 token carrying the user's id and role.
func (s *AuthService) IssueToken(user *models.UserProfile) (string, error) {
	now := time.Now()
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseToken verifies a token issued by IssueToken and returns its actor.
func (s *AuthService) ParseToken(tokenString string) (Actor, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, Unauthorized("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid || claims.UserID == "" {
		return Actor{}, Unauthorized("invalid token")
	}
	return Actor{ID: claims.UserID, Role: claims.Role}, nil
}

func (s *AuthService) result(user *models.UserProfile) (*AuthResult, error) {
	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}
