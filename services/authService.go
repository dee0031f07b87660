package services

import (
	"context"
	"errors"
	"fmt"
	"internhub/models"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// CredentialStore is the account persistence used for signup and login.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// SignupRequest carries a new student account.
type SignupRequest struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// AuthService registers students and checks passwords.
type AuthService struct {
	users CredentialStore
	cost  int
	audit AuditLogger
}

func NewAuthService(users CredentialStore, cost int, audit AuditLogger) *AuthService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if audit == nil {
		audit = logAuditLogger{}
	}
	return &AuthService{users: users, cost: cost, audit: audit}
}

// Signup creates a STUDENT account. Instructors and admins are provisioned
// by the seed script.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: Email is already registered", models.ErrValidation)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     email,
		Password:  string(hashed),
		Role:      models.RoleStudent,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	err = s.audit.Record(ctx, AuditEntry{
		ActorID:     user.ID,
		ActorRole:   user.Role,
		Action:      models.ActionUserSignup,
		EntityType:  models.EntityUser,
		EntityID:    user.ID,
		Description: fmt.Sprintf("Student %s registered", user.Email),
	})
	if err != nil {
		log.Printf("[AUTH] audit %s failed: %v", models.ActionUserSignup, err)
	}
	return user, nil
}

// Login returns the account when the password matches. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: Invalid credentials", models.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: Invalid credentials", models.ErrUnauthorized)
	}
	return user, nil
}
