package userservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/Markelych32/blog-platform/internal/common"
)

// ErrInvalidCredentials deliberately covers both an unknown email and a wrong
// password so the caller cannot probe which identities exist.
var ErrInvalidCredentials = errors.New("invalid credentials")

var AnonymousUser = User{}

func (u *User) IsAnonymous() bool {
	return u == &AnonymousUser
}

func NewUserService(db *sql.DB, mb common.MessageProducer, secret []byte, clock common.Clock) (*UserService, error) {
	tm, err := newTokenMaker(secret, TokenTTL, clock)
	if err != nil {
		return nil, err
	}

	return &UserService{
		m:     newUserModel(db),
		mb:    mb,
		tm:    tm,
		clock: clock,
	}, nil
}

// RegisterUser creates a new user account and publishes a user.registered event.
func (s *UserService) RegisterUser(ctx context.Context, username, email, password string) (*User, error) {
	v := common.NewValidator()
	validateUsername(v, username)
	validateEmail(v, email)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	// The exists check gives a friendly error; the unique index on
	// LOWER(email) is the real guard against a concurrent registration.
	exists, err := s.m.existsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	u := User{
		Username: username,
		Email:    email,
		Password: Password{Plain: password},
	}

	if err := u.Password.set(u.Password.Plain); err != nil {
		return nil, err
	}

	if err := s.m.insert(ctx, &u); err != nil {
		return nil, err
	}

	data := struct {
		Email    string
		Username string
	}{
		Email:    u.Email,
		Username: u.Username,
	}

	emailData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	if err := s.mb.Publish(ctx, emailData, common.UserRegisteredKey, common.UserExchange); err != nil {
		return nil, err
	}

	return &u, nil
}

// Authenticate looks up the credentials by email and compares the secret
// against the stored hash. Lookup failure and mismatch are indistinguishable.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*User, error) {
	v := common.NewValidator()
	validateEmail(v, email)
	v.Check(password != "", "password", "must be provided")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	user, err := s.m.getByEmail(ctx, email)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRecordNotFound):
			return nil, ErrInvalidCredentials
		default:
			return nil, err
		}
	}

	ok, err := user.Password.compare(password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// IssueToken produces a signed token encoding the user's identity with an
// absolute expiry of issuance time plus TokenTTL.
func (s *UserService) IssueToken(user *User) (*AuthToken, error) {
	return s.tm.sign(user)
}

// LoginUser is the authenticate-then-issue flow used by the login endpoint.
func (s *UserService) LoginUser(ctx context.Context, email, password string) (*AuthToken, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	return s.IssueToken(user)
}

// ValidateToken verifies the signature and expiry and then resolves the
// encoded identity against the database. The re-lookup means a deleted
// account invalidates all of its outstanding tokens.
func (s *UserService) ValidateToken(ctx context.Context, token string) (*User, error) {
	v := common.NewValidator()
	ValidateToken(v, token)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	id, err := s.tm.parse(token)
	if err != nil {
		return nil, err
	}

	user, err := s.m.getByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRecordNotFound):
			return nil, ErrInvalidToken
		default:
			return nil, err
		}
	}

	return user, nil
}

// GetUserByID resolves a user by id. Used by the post service to check the
// author exists before a post is created.
func (s *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.m.getByID(ctx, id)
}
