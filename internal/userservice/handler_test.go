package userservice

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Markelych32/blog-platform/internal/common"
)

type mockProducer struct {
	mu        sync.Mutex
	published [][]byte
}

func (p *mockProducer) Publish(ctx context.Context, msg []byte, key common.BindingKey, exchange common.Exchange) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, msg)
	return nil
}

func (p *mockProducer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

func setupTestEnvironment(t *testing.T) (*UserService, *sql.DB, *mockProducer, func() error) {
	db := common.TestDB("file://../../migrations", t)
	mb := &mockProducer{}

	s, err := NewUserService(db, mb, testSecret, common.SystemClock{})
	assert.NoError(t, err)

	cleanup := func() error {
		_, err := db.Exec("DELETE FROM users")
		return err
	}

	return s, db, mb, cleanup
}

func TestRegisterUser(t *testing.T) {
	s, _, mb, cleanup := setupTestEnvironment(t)

	testCases := []struct {
		name        string
		username    string
		email       string
		password    string
		expectedErr error
	}{
		{
			name:     "valid user",
			username: "testuser",
			email:    "testuser@example.com",
			password: "TestPassword123!",
		},
		{
			name:        "duplicate email",
			username:    "otheruser",
			email:       "TESTUSER@example.com",
			password:    "TestPassword123!",
			expectedErr: ErrDuplicateEmail,
		},
		{
			name:        "invalid email",
			username:    "testuser",
			email:       "not-an-email",
			password:    "TestPassword123!",
			expectedErr: common.ValidationError{},
		},
		{
			name:        "weak password",
			username:    "testuser",
			email:       "weak@example.com",
			password:    "password",
			expectedErr: common.ValidationError{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			user, err := s.RegisterUser(context.Background(), tc.username, tc.email, tc.password)

			switch tc.expectedErr.(type) {
			case nil:
				assert.NoError(t, err)
				assert.NotEqual(t, uuid.Nil, user.ID)
				assert.Equal(t, 1, mb.count())
			case common.ValidationError:
				var vErr common.ValidationError
				assert.ErrorAs(t, err, &vErr)
			default:
				assert.ErrorIs(t, err, tc.expectedErr)
			}
		})
	}

	assert.NoError(t, cleanup())
}

func TestAuthenticate(t *testing.T) {
	s, _, _, cleanup := setupTestEnvironment(t)

	_, err := s.RegisterUser(context.Background(), "testuser", "testuser@example.com", "TestPassword123!")
	assert.NoError(t, err)

	testCases := []struct {
		name        string
		email       string
		password    string
		expectedErr error
	}{
		{
			name:     "valid credentials",
			email:    "testuser@example.com",
			password: "TestPassword123!",
		},
		{
			name:     "case insensitive email",
			email:    "TestUser@Example.com",
			password: "TestPassword123!",
		},
		{
			name:        "wrong password",
			email:       "testuser@example.com",
			password:    "WrongPassword123!",
			expectedErr: ErrInvalidCredentials,
		},
		{
			name:        "unknown email",
			email:       "nobody@example.com",
			password:    "TestPassword123!",
			expectedErr: ErrInvalidCredentials,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			user, err := s.Authenticate(context.Background(), tc.email, tc.password)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, "testuser", user.Username)
		})
	}

	assert.NoError(t, cleanup())
}

func TestLoginAndValidateToken(t *testing.T) {
	s, db, _, cleanup := setupTestEnvironment(t)

	registered, err := s.RegisterUser(context.Background(), "testuser", "testuser@example.com", "TestPassword123!")
	assert.NoError(t, err)

	token, err := s.LoginUser(context.Background(), "testuser@example.com", "TestPassword123!")
	assert.NoError(t, err)
	assert.NotEmpty(t, token.Token)

	user, err := s.ValidateToken(context.Background(), token.Token)
	assert.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	// a token for a deleted account no longer authenticates
	_, err = db.Exec("DELETE FROM users WHERE id = $1", registered.ID)
	assert.NoError(t, err)

	_, err = s.ValidateToken(context.Background(), token.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	assert.NoError(t, cleanup())
}
