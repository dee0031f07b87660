package services

import (
	"context"
	"errors"
	"internhub/models"
	"internhub/repository"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSignupAndLogin(t *testing.T) {
	e := newEnv(t, Options{})
	auth := NewAuthService(repository.NewUserRepository(e.db), bcrypt.MinCost, e.audit)
	ctx := context.Background()

	user, err := auth.Signup(ctx, SignupRequest{FirstName: " Nora ", LastName: "Lind", Email: "Nora@Example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.Equal(t, "nora@example.com", user.Email)
	assert.Equal(t, "Nora", user.FirstName)
	assert.NotEqual(t, "s3cret-pass", user.Password)
	assert.Contains(t, e.audit.actions(), models.ActionUserSignup)

	_, err = auth.Signup(ctx, SignupRequest{FirstName: "Nora", Email: "NORA@example.com", Password: "another-pass"})
	assert.True(t, errors.Is(err, models.ErrValidation))
	assert.Equal(t, "Email is already registered", models.Message(err))

	got, err := auth.Login(ctx, "nora@EXAMPLE.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = auth.Login(ctx, "nora@example.com", "wrong")
	assert.True(t, errors.Is(err, models.ErrUnauthorized))
	_, err = auth.Login(ctx, "nobody@example.com", "s3cret-pass")
	assert.True(t, errors.Is(err, models.ErrUnauthorized))
	assert.Equal(t, "Invalid credentials", models.Message(err))
}
