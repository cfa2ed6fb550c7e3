package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- Mock implementations ---

type mockUserRepo struct {
	byEmail map[string]*User
	created *User
	err     error
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byEmail[u.Email]; ok {
		return ErrEmailTaken
	}
	u.ID = "u1"
	m.created = u
	return nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func hashOf(t *testing.T, password string) []byte {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return hash
}

func TestSignUp(t *testing.T) {
	t.Run("validates input", func(t *testing.T) {
		svc := NewService(&mockUserRepo{}, NewTokens([]byte("secret"), time.Hour))

		_, err := svc.SignUp(context.Background(), "not-an-email", "password")
		assert.ErrorIs(t, err, ErrEmailRequired)

		_, err = svc.SignUp(context.Background(), "a@b.com", "short")
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("normalizes email and hashes password", func(t *testing.T) {
		repo := &mockUserRepo{}
		svc := NewService(repo, NewTokens([]byte("secret"), time.Hour))

		u, err := svc.SignUp(context.Background(), "  Ana@Example.COM ", "hunter22")
		require.NoError(t, err)

		assert.Equal(t, "ana@example.com", u.Email)
		assert.NoError(t, bcrypt.CompareHashAndPassword(u.PasswordHash, []byte("hunter22")))
		assert.Same(t, u, repo.created)
	})

	t.Run("taken email", func(t *testing.T) {
		repo := &mockUserRepo{byEmail: map[string]*User{"ana@example.com": {}}}
		svc := NewService(repo, NewTokens([]byte("secret"), time.Hour))

		_, err := svc.SignUp(context.Background(), "ana@example.com", "hunter22")
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestSignIn(t *testing.T) {
	repo := &mockUserRepo{byEmail: map[string]*User{
		"ana@example.com": {ID: "u1", Email: "ana@example.com"},
	}}
	repo.byEmail["ana@example.com"].PasswordHash = hashOf(t, "hunter22")
	tokens := NewTokens([]byte("secret"), time.Hour)
	svc := NewService(repo, tokens)

	t.Run("issues a verifiable token", func(t *testing.T) {
		token, u, err := svc.SignIn(context.Background(), "Ana@Example.com", "hunter22")
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)

		claims, err := tokens.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.Subject)
		assert.Equal(t, "ana@example.com", claims.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.SignIn(context.Background(), "ana@example.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.SignIn(context.Background(), "ghost@example.com", "hunter22")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestTokens(t *testing.T) {
	user := &User{ID: "u1", Email: "ana@example.com"}

	t.Run("rejects foreign secret", func(t *testing.T) {
		issued, err := NewTokens([]byte("one"), time.Hour).Issue(user)
		require.NoError(t, err)

		_, err = NewTokens([]byte("two"), time.Hour).Verify(issued)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		tokens := NewTokens([]byte("secret"), time.Minute)
		issuedAt := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

		tokens.now = func() time.Time { return issuedAt }
		issued, err := tokens.Issue(user)
		require.NoError(t, err)

		tokens.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
		_, err = tokens.Verify(issued)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := NewTokens([]byte("secret"), time.Hour).Verify("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
