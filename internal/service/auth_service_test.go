package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merocare/internal/validation"
)

func TestSignupAndLogin(t *testing.T) {
	db := openTestDB(t)
	auth := newTestAuthService(db)
	ctx := context.Background()

	user, err := auth.Signup(ctx, SignupInput{
		Email:      "  Asha@Example.com ",
		FullName:   "Asha Rai",
		Password:   "password123",
		Gender:     "Female",
		DOB:        "1990-04-12",
		BloodGroup: "O+",
	})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.Equal(t, "female", user.Gender)
	require.NotNil(t, user.DOB)
	assert.NotEqual(t, "password123", user.PasswordHash)

	token, loggedIn, err := auth.Login(ctx, "ASHA@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, loggedIn.ID)

	authed, err := auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	db := openTestDB(t)
	auth := newTestAuthService(db)

	signup(t, auth, "asha@example.com", "Asha Rai", "female")
	_, err := auth.Signup(context.Background(), SignupInput{
		Email:    "ASHA@example.com",
		FullName: "Someone Else",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignupValidation(t *testing.T) {
	db := openTestDB(t)
	auth := newTestAuthService(db)

	tests := []struct {
		name  string
		input SignupInput
		field string
	}{
		{"bad email", SignupInput{Email: "nope", FullName: "Asha Rai", Password: "password123"}, "email"},
		{"short password", SignupInput{Email: "a@example.com", FullName: "Asha Rai", Password: "short"}, "password"},
		{"bad dob", SignupInput{Email: "a@example.com", FullName: "Asha Rai", Password: "password123", DOB: "12/04/1990"}, "dob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Signup(context.Background(), tt.input)
			var verr validation.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestLoginFailures(t *testing.T) {
	db := openTestDB(t)
	auth := newTestAuthService(db)
	signup(t, auth, "asha@example.com", "Asha Rai", "female")

	_, _, err := auth.Login(context.Background(), "asha@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = auth.Login(context.Background(), "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateRejectsBadToken(t *testing.T) {
	db := openTestDB(t)
	auth := newTestAuthService(db)

	_, err := auth.Authenticate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestOAuthLogin(t *testing.T) {
	db := openTestDB(t)
	auth := newTestAuthService(db)
	ctx := context.Background()

	existing := signup(t, auth, "asha@example.com", "Asha Rai", "female")

	// Same email links the provider to the existing account
	token, user, err := auth.OAuthLogin(ctx, "google", "sub-1", "Asha@example.com", "Asha")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, existing.ID, user.ID)

	// Second login finds the account by provider subject
	_, again, err := auth.OAuthLogin(ctx, "google", "sub-1", "changed@example.com", "Asha")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, again.ID)

	// Unknown email creates an account named after the mailbox
	_, created, err := auth.OAuthLogin(ctx, "google", "sub-2", "bikash@example.com", "")
	require.NoError(t, err)
	assert.NotEqual(t, existing.ID, created.ID)
	assert.Equal(t, "bikash", created.FullName)

	// OAuth-only accounts cannot log in with a password
	_, _, err = auth.Login(ctx, "bikash@example.com", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
